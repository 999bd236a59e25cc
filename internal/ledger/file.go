package ledger

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileLedger stores ids one per line in an append-only text file. A missing
// file is an empty ledger.
type FileLedger struct {
	path string
}

// NewFileLedger creates a ledger backed by the file at path.
func NewFileLedger(path string) *FileLedger {
	return &FileLedger{path: path}
}

// Path returns the backing file path.
func (l *FileLedger) Path() string {
	return l.path
}

// HasPosted reports whether id appears on any line of the file.
func (l *FileLedger) HasPosted(ctx context.Context, id string) (bool, error) {
	ids, err := l.read()
	if err != nil {
		return false, err
	}
	_, ok := ids[id]
	return ok, nil
}

// RecordPosted appends id as a new line.
func (l *FileLedger) RecordPosted(ctx context.Context, id string) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("%w: create ledger directory: %w", ErrLedgerIO, err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrLedgerIO, l.path, err)
	}

	if _, err := f.WriteString(id + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("%w: append to %s: %w", ErrLedgerIO, l.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrLedgerIO, l.path, err)
	}
	return nil
}

// Reset truncates the file.
func (l *FileLedger) Reset(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("%w: create ledger directory: %w", ErrLedgerIO, err)
	}
	if err := os.WriteFile(l.path, nil, 0644); err != nil {
		return fmt.Errorf("%w: truncate %s: %w", ErrLedgerIO, l.path, err)
	}
	return nil
}

// IDs returns the distinct ids in the order they were first recorded.
func (l *FileLedger) IDs(ctx context.Context) ([]string, error) {
	lines, err := l.lines()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, id := range lines {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func (l *FileLedger) read() (map[string]struct{}, error) {
	lines, err := l.lines()
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(lines))
	for _, id := range lines {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (l *FileLedger) lines() ([]string, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrLedgerIO, l.path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrLedgerIO, l.path, err)
	}
	return lines, nil
}
