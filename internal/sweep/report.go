package sweep

import (
	"fmt"
	"time"
)

// Outcome is the result of one (liker, target) pair.
type Outcome int

const (
	Liked Outcome = iota
	Skipped
	FailedPair
)

func (o Outcome) String() string {
	switch o {
	case Liked:
		return "liked"
	case Skipped:
		return "skipped"
	case FailedPair:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// PairResult records what happened for one pair.
type PairResult struct {
	Liker   string
	Target  string
	Outcome Outcome
	PostURI string
	Err     error
	At      time.Time
}

// Report collects pair results of one sweep in the order they were attempted.
type Report struct {
	Started  time.Time
	Finished time.Time
	Pairs    []PairResult
}

func (r *Report) liked(liker, target, uri string, at time.Time) {
	r.Pairs = append(r.Pairs, PairResult{Liker: liker, Target: target, Outcome: Liked, PostURI: uri, At: at})
}

func (r *Report) skipped(liker, target string, at time.Time) {
	r.Pairs = append(r.Pairs, PairResult{Liker: liker, Target: target, Outcome: Skipped, At: at})
}

func (r *Report) failed(liker, target string, err error, at time.Time) {
	r.Pairs = append(r.Pairs, PairResult{Liker: liker, Target: target, Outcome: FailedPair, Err: err, At: at})
}

// Count returns how many pairs ended with outcome.
func (r *Report) Count(outcome Outcome) int {
	n := 0
	for _, p := range r.Pairs {
		if p.Outcome == outcome {
			n++
		}
	}
	return n
}

// Failures returns the failed pairs.
func (r *Report) Failures() []PairResult {
	var out []PairResult
	for _, p := range r.Pairs {
		if p.Outcome == FailedPair {
			out = append(out, p)
		}
	}
	return out
}

// AllFailed is true when at least one pair was attempted and none succeeded
// or was skipped.
func (r *Report) AllFailed() bool {
	return len(r.Pairs) > 0 && r.Count(FailedPair) == len(r.Pairs)
}

// Summary renders the counts on one line.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d pairs: %d liked, %d skipped, %d failed in %s",
		len(r.Pairs), r.Count(Liked), r.Count(Skipped), r.Count(FailedPair),
		r.Finished.Sub(r.Started).Round(time.Millisecond))
}
