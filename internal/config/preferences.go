package config

import (
	"sync"

	"github.com/sunshinelabs/sunshined/internal/weather"
)

// Preferences holds the mutable runtime settings, currently just the tracked
// location. Interested components register an explicit callback instead of
// listening on shared global state.
type Preferences struct {
	mu   sync.RWMutex
	loc  weather.Location
	subs []func(weather.Location)
}

// NewPreferences creates Preferences seeded from the initial configuration.
func NewPreferences(loc weather.Location) *Preferences {
	return &Preferences{loc: loc}
}

// Location returns the currently tracked location.
func (p *Preferences) Location() weather.Location {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loc
}

// SetLocation replaces the tracked location and notifies subscribers.
// Callbacks run on the caller's goroutine, outside the lock.
func (p *Preferences) SetLocation(loc weather.Location) {
	p.mu.Lock()
	p.loc = loc
	subs := make([]func(weather.Location), len(p.subs))
	copy(subs, p.subs)
	p.mu.Unlock()

	for _, fn := range subs {
		fn(loc)
	}
}

// Subscribe registers a callback fired on every location change.
func (p *Preferences) Subscribe(fn func(weather.Location)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = append(p.subs, fn)
}
