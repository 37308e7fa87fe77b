// Package watch is the polling side of the notification aggregator: it keeps
// the last observed pending total and reports when new surveys appear.
package watch

import (
	"fmt"
	"sync"
	"time"
)

// Notice is raised when the pending total grows between two observations.
type Notice struct {
	Delta    int
	Total    int
	Previous int
	At       time.Time
}

func (n Notice) Message() string {
	if n.Delta == 1 {
		return "1 nueva encuesta disponible"
	}
	return fmt.Sprintf("%d nuevas encuestas disponibles", n.Delta)
}

// Tracker caches the last seen total and when it was seen.
type Tracker struct {
	mu       sync.Mutex
	seen     bool
	total    int
	observed time.Time
}

// Observe records total. The first observation only seeds the cache; a
// decrease updates it silently.
func (t *Tracker) Observe(total int, at time.Time) (Notice, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	previous, seen := t.total, t.seen
	t.total, t.seen, t.observed = total, true, at

	if !seen || total <= previous {
		return Notice{}, false
	}
	return Notice{Delta: total - previous, Total: total, Previous: previous, At: at}, true
}

// Last returns the cached total and its observation time.
func (t *Tracker) Last() (total int, at time.Time, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total, t.observed, t.seen
}
