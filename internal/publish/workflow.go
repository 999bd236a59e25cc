// Package publish posts one image with a caption to a Bluesky account.
//
// A Workflow moves through Start, Authenticated, MediaUploaded and Published.
// Each step only runs from the state before it, so a record can never be
// created without a session and an uploaded blob. The first failing step
// stops the workflow in the Failed state; nothing is retried.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdulachik/skyposter/internal/bluesky"
	"github.com/abdulachik/skyposter/internal/imaging"
)

// State is a step of the workflow.
type State int

const (
	Start State = iota
	Authenticated
	MediaUploaded
	Published
	Failed
)

func (s State) String() string {
	switch s {
	case Start:
		return "start"
	case Authenticated:
		return "authenticated"
	case MediaUploaded:
		return "media_uploaded"
	case Published:
		return "published"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrState is returned when a step is run out of order.
var ErrState = errors.New("invalid workflow state")

// Network is the part of the Bluesky API the workflow needs.
type Network interface {
	CreateSession(ctx context.Context, identifier, password string) (*bluesky.Session, error)
	UploadBlob(ctx context.Context, s *bluesky.Session, data []byte, mimeType string) (*bluesky.BlobRef, error)
	CreateRecord(ctx context.Context, s *bluesky.Session, collection string, record any) (*bluesky.RecordRef, error)
}

// Credential identifies the account to post as.
type Credential struct {
	Handle      string
	AppPassword string
}

// Result describes the created post.
type Result struct {
	URI    string
	CID    string
	URL    string
	Handle string
	Record bluesky.PostRecord
}

// Workflow publishes a single post. It is not reusable.
type Workflow struct {
	net   Network
	cred  Credential
	now   func() time.Time
	state State

	session *bluesky.Session
	blob    *bluesky.BlobRef
	record  bluesky.PostRecord
}

// Option customizes a Workflow.
type Option func(*Workflow)

// WithClock sets the clock used for createdAt.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) {
		w.now = now
	}
}

// New creates a workflow posting as cred.
func New(net Network, cred Credential, opts ...Option) *Workflow {
	w := &Workflow{
		net:  net,
		cred: cred,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// State returns the current state.
func (w *Workflow) State() State {
	return w.state
}

// Run authenticates, uploads art and publishes caption with alt text.
func (w *Workflow) Run(ctx context.Context, art *imaging.Artifact, caption, alt string) (*Result, error) {
	if err := w.Authenticate(ctx); err != nil {
		return nil, err
	}
	if err := w.Upload(ctx, art); err != nil {
		return nil, err
	}
	return w.Submit(ctx, caption, alt, art.Width, art.Height)
}

// Authenticate exchanges the credential for a session.
func (w *Workflow) Authenticate(ctx context.Context) error {
	if err := w.expect(Start); err != nil {
		return err
	}

	session, err := w.net.CreateSession(ctx, w.cred.Handle, w.cred.AppPassword)
	if err != nil {
		return w.fail(fmt.Errorf("authenticate %s: %w", w.cred.Handle, err))
	}

	w.session = session
	w.state = Authenticated
	slog.Info("authenticated", "handle", w.cred.Handle, "did", session.DID)
	return nil
}

// Upload sends the normalized image bytes as a blob.
func (w *Workflow) Upload(ctx context.Context, art *imaging.Artifact) error {
	if err := w.expect(Authenticated); err != nil {
		return err
	}
	if art == nil || len(art.Data) == 0 {
		return w.fail(fmt.Errorf("%w: empty artifact", bluesky.ErrUpload))
	}

	blob, err := w.net.UploadBlob(ctx, w.session, art.Data, imaging.MimeType)
	if err != nil {
		return w.fail(fmt.Errorf("upload image: %w", err))
	}

	w.blob = blob
	w.state = MediaUploaded
	slog.Info("uploaded blob", "size", blob.Size, "mime_type", blob.MimeType)
	return nil
}

// Compose builds the post record for the uploaded blob without sending it.
func Compose(blob bluesky.BlobRef, caption, alt string, width, height int, now time.Time) (bluesky.PostRecord, error) {
	if width <= 0 || height <= 0 {
		return bluesky.PostRecord{}, fmt.Errorf("invalid aspect ratio %dx%d", width, height)
	}

	return bluesky.PostRecord{
		Type:      bluesky.PostCollection,
		Text:      caption,
		CreatedAt: bluesky.FormatTimestamp(now),
		Embed: &bluesky.ImagesEmbed{
			Type: bluesky.ImagesEmbedType,
			Images: []bluesky.Image{{
				Alt:   alt,
				Image: blob,
				AspectRatio: bluesky.AspectRatio{
					Width:  width,
					Height: height,
				},
			}},
		},
	}, nil
}

// Submit composes the record and creates it in the account's repo.
func (w *Workflow) Submit(ctx context.Context, caption, alt string, width, height int) (*Result, error) {
	if err := w.expect(MediaUploaded); err != nil {
		return nil, err
	}

	record, err := Compose(*w.blob, caption, alt, width, height, w.now())
	if err != nil {
		return nil, w.fail(fmt.Errorf("%w: %w", bluesky.ErrPublish, err))
	}

	ref, err := w.net.CreateRecord(ctx, w.session, bluesky.PostCollection, record)
	if err != nil {
		return nil, w.fail(fmt.Errorf("publish post: %w", err))
	}

	w.record = record
	w.state = Published

	handle := w.session.Handle
	if handle == "" {
		handle = w.cred.Handle
	}
	result := &Result{
		URI:    ref.URI,
		CID:    ref.CID,
		URL:    bluesky.PostURL(handle, ref.URI),
		Handle: handle,
		Record: record,
	}
	slog.Info("published post", "uri", result.URI, "url", result.URL)
	return result, nil
}

func (w *Workflow) expect(want State) error {
	if w.state != want {
		return fmt.Errorf("%w: in %s, need %s", ErrState, w.state, want)
	}
	return nil
}

func (w *Workflow) fail(err error) error {
	slog.Error("publish step failed", "state", w.state, "error", err)
	w.state = Failed
	return err
}
