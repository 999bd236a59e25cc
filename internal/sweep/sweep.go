// Package sweep runs the like ring: every account in a roster likes the
// latest post of every other account.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdulachik/skyposter/internal/bluesky"
)

// Network is the part of the Bluesky API the sweep needs.
type Network interface {
	CreateSession(ctx context.Context, identifier, password string) (*bluesky.Session, error)
	LatestPost(ctx context.Context, s *bluesky.Session, actor string) (*bluesky.RecordRef, error)
	CreateRecord(ctx context.Context, s *bluesky.Session, collection string, record any) (*bluesky.RecordRef, error)
}

// Member is one roster account.
type Member struct {
	Name        string
	Handle      string
	AppPassword string
}

// Sweeper runs sweeps over a fixed roster.
type Sweeper struct {
	net    Network
	roster []Member
	now    func() time.Time
}

// Config holds sweeper configuration.
type Config struct {
	Network Network
	Roster  []Member
	Now     func() time.Time // defaults to time.Now
}

// New creates a sweeper. Roster members repeating an earlier handle are
// dropped, so each liker authenticates once.
func New(cfg Config) *Sweeper {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Sweeper{
		net:    cfg.Network,
		roster: Dedupe(cfg.Roster),
		now:    now,
	}
}

// Dedupe keeps the first member for each handle, in roster order.
func Dedupe(roster []Member) []Member {
	seen := make(map[string]bool, len(roster))
	out := make([]Member, 0, len(roster))
	for _, m := range roster {
		if seen[m.Handle] {
			slog.Warn("duplicate roster handle ignored", "name", m.Name, "handle", m.Handle)
			continue
		}
		seen[m.Handle] = true
		out = append(out, m)
	}
	return out
}

// Run visits every ordered pair of distinct roster members in roster order.
// Each liker authenticates once. Failures are recorded and the sweep moves
// on; only context cancellation ends it early.
func (s *Sweeper) Run(ctx context.Context) (*Report, error) {
	report := &Report{Started: s.now()}
	defer func() { report.Finished = s.now() }()

	for _, liker := range s.roster {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		session, err := s.net.CreateSession(ctx, liker.Handle, liker.AppPassword)
		if err != nil {
			slog.Warn("liker authentication failed", "liker", liker.Handle, "error", err)
			for _, target := range s.targets(liker) {
				report.failed(liker.Handle, target.Handle, err, s.now())
			}
			continue
		}
		slog.Info("logged in", "liker", liker.Handle)

		for _, target := range s.targets(liker) {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			s.likeLatest(ctx, report, session, liker, target)
		}
	}

	return report, nil
}

func (s *Sweeper) likeLatest(ctx context.Context, report *Report, session *bluesky.Session, liker, target Member) {
	post, err := s.net.LatestPost(ctx, session, target.Handle)
	if err != nil {
		slog.Warn("fetch latest post failed", "liker", liker.Handle, "target", target.Handle, "error", err)
		report.failed(liker.Handle, target.Handle, err, s.now())
		return
	}
	if post == nil {
		slog.Info("no posts to like", "liker", liker.Handle, "target", target.Handle)
		report.skipped(liker.Handle, target.Handle, s.now())
		return
	}

	like := bluesky.NewLikeRecord(*post, s.now())
	if _, err := s.net.CreateRecord(ctx, session, bluesky.LikeCollection, like); err != nil {
		slog.Warn("like failed", "liker", liker.Handle, "target", target.Handle, "error", err)
		report.failed(liker.Handle, target.Handle, fmt.Errorf("like %s: %w", post.URI, err), s.now())
		return
	}

	slog.Info("liked post", "liker", liker.Handle, "target", target.Handle, "uri", post.URI)
	report.liked(liker.Handle, target.Handle, post.URI, s.now())
}

// targets returns every member with a different handle than liker.
func (s *Sweeper) targets(liker Member) []Member {
	out := make([]Member, 0, len(s.roster))
	for _, m := range s.roster {
		if m.Handle != liker.Handle {
			out = append(out, m)
		}
	}
	return out
}
