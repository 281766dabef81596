package crawl

import "sync/atomic"

// State is a coordinate's position in the crawl lifecycle.
type State string

const (
	StateDiscovered State = "discovered"
	StateSkipped    State = "skipped"
	StateFetching   State = "fetching"
	StateFailed     State = "failed"
	StateResolved   State = "resolved"
)

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == StateSkipped || s == StateFailed || s == StateResolved
}

// Stats counts coordinates per terminal state.
type Stats struct {
	Discovered int64 `json:"discovered"`
	Skipped    int64 `json:"skipped"`
	Resolved   int64 `json:"resolved"`
	Failed     int64 `json:"failed"`
}

type counters struct {
	discovered, skipped, resolved, failed atomic.Int64
}

func (c *counters) add(s State) {
	switch s {
	case StateDiscovered:
		c.discovered.Add(1)
	case StateSkipped:
		c.skipped.Add(1)
	case StateResolved:
		c.resolved.Add(1)
	case StateFailed:
		c.failed.Add(1)
	}
}

func (c *counters) snapshot() Stats {
	return Stats{
		Discovered: c.discovered.Load(),
		Skipped:    c.skipped.Load(),
		Resolved:   c.resolved.Load(),
		Failed:     c.failed.Load(),
	}
}
