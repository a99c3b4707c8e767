package sql

import (
	"fmt"
	"sync"
	"time"
)

// Stats summarizes the queries a Driver has run. Inspection issues a handful
// of catalog queries per table, so the slowest one is kept for the log.
type Stats struct {
	Queries int64
	Errors  int64
	Slow    int64
	Elapsed time.Duration

	Slowest         string
	SlowestDuration time.Duration
}

// Avg returns the mean query duration.
func (s Stats) Avg() time.Duration {
	if s.Queries == 0 {
		return 0
	}
	return s.Elapsed / time.Duration(s.Queries)
}

func (s Stats) String() string {
	return fmt.Sprintf("queries=%d errors=%d slow=%d elapsed=%s avg=%s",
		s.Queries, s.Errors, s.Slow, s.Elapsed, s.Avg())
}

type tally struct {
	mu sync.Mutex
	Stats
}

func (t *tally) add(query string, took, slow time.Duration, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Queries++
	t.Elapsed += took
	if err != nil {
		t.Errors++
	}
	if took > slow {
		t.Slow++
	}
	if took > t.SlowestDuration {
		t.Slowest, t.SlowestDuration = query, took
	}
}

func (t *tally) snapshot() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Stats
}
