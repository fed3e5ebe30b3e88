package weather

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"
)

// Service orchestrates one refresh cycle: fetch the raw forecast, parse it
// into rows, and upsert them into the store. A single worker runs the cycle;
// concurrent triggers for the same location are coalesced, not queued.
type Service struct {
	store   Store
	fetcher Fetcher
	group   singleflight.Group

	// now is swappable in tests; it anchors the today+i date assignment.
	now func() time.Time
}

// NewService creates a new Service.
func NewService(store Store, fetcher Fetcher) *Service {
	return &Service{
		store:   store,
		fetcher: fetcher,
		now:     time.Now,
	}
}

// Refresh runs one fetch-parse-upsert cycle for the location and returns the
// number of rows written. Callers that trigger a refresh while one is already
// in flight for the same location share its outcome.
//
// Any failure leaves previously cached rows untouched; there is no automatic
// retry beyond the fetcher's own transport-level backoff.
func (s *Service) Refresh(ctx context.Context, loc Location) (int, error) {
	v, err, shared := s.group.Do(loc.Key(), func() (interface{}, error) {
		return s.refresh(ctx, loc)
	})
	if shared {
		log.Printf("DEBUG: refresh for %s joined an in-flight cycle", loc.Key())
	}
	if err != nil {
		return 0, err
	}
	n, ok := v.(int)
	if !ok {
		return 0, fmt.Errorf("unexpected result type from refresh")
	}
	return n, nil
}

func (s *Service) refresh(ctx context.Context, loc Location) (int, error) {
	raw, err := s.fetcher.Fetch(ctx, loc)
	if err != nil {
		log.Printf("fetch failed for %s: %v", loc.Key(), err)
		return 0, err
	}

	days, err := Parse(raw, s.now().UTC())
	if err != nil {
		log.Printf("parse failed for %s: %v", loc.Key(), err)
		return 0, err
	}

	n, err := s.store.Upsert(days)
	if err != nil {
		// Per-statement atomicity only: rows written before the failure stay.
		log.Printf("ERROR: upsert failed for %s after %d rows: %v", loc.Key(), n, err)
		return n, err
	}

	log.Printf("INFO: refreshed %s: %d rows", loc.Key(), n)
	return n, nil
}

// RowsFrom delegates to the underlying store.
func (s *Service) RowsFrom(from int64) ([]WeatherDay, error) {
	return s.store.RowsFrom(from)
}

// ClearAndRefresh drops every cached row and reloads from the provider.
// Used when the tracked location changes and stale rows must not survive.
func (s *Service) ClearAndRefresh(ctx context.Context, loc Location) (int, error) {
	if err := s.store.Clear(); err != nil {
		return 0, fmt.Errorf("clearing store: %w", err)
	}
	return s.Refresh(ctx, loc)
}

// Task is an in-flight asynchronous refresh. Done is closed when the cycle
// finishes; Cancel abandons delivery by cancelling the fetch context, though
// a round-trip already past the transport layer runs to completion.
type Task struct {
	done   chan struct{}
	cancel context.CancelFunc

	rows int
	err  error
}

// RefreshAsync starts a refresh in the background and returns a handle the
// caller can wait on or cancel.
func (s *Service) RefreshAsync(ctx context.Context, loc Location) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		done:   make(chan struct{}),
		cancel: cancel,
	}

	go func() {
		defer close(t.done)
		defer cancel()
		t.rows, t.err = s.Refresh(ctx, loc)
	}()

	return t
}

// Done returns a channel closed when the refresh has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Cancel abandons the refresh. Safe to call more than once.
func (t *Task) Cancel() {
	t.cancel()
}

// Result blocks until the refresh finishes and reports its outcome.
func (t *Task) Result() (int, error) {
	<-t.done
	return t.rows, t.err
}
