// Package catalog holds the session-scoped lists of valid states and
// districts fetched from the upstream service, and the canonical matching
// used to reconcile detected region names against them.
package catalog

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/soochnamitra/dash-core/pkg/models/domain"
)

// RegionSource is the slice of the upstream client the catalog consumes.
type RegionSource interface {
	States(ctx context.Context) ([]string, error)
	Districts(ctx context.Context, state string) ([]string, error)
}

// LoadState distinguishes "not yet loaded" from "loaded (possibly empty)"
// from "failed". Callers must not collapse these into a boolean.
type LoadState int

const (
	NotLoaded LoadState = iota
	Loaded
	Failed
)

type Catalog struct {
	source RegionSource

	mu          sync.Mutex
	states      []string
	statesState LoadState
	statesErr   error
	statesReady chan struct{} // closed on first successful states load

	districtsFor   string // state the cached district list belongs to
	districts      []string
	districtsState LoadState
	districtsErr   error
}

func New(source RegionSource) *Catalog {
	return &Catalog{
		source:      source,
		statesReady: make(chan struct{}),
	}
}

// LoadStates fetches the state list. It is fetched once per session:
// calling again after a successful load is a no-op, calling again after a
// failure retries the original fetch.
func (c *Catalog) LoadStates(ctx context.Context) error {
	c.mu.Lock()
	if c.statesState == Loaded {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	states, err := c.source.States(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		// Reset to known-empty rather than leaving stale data around.
		c.states = nil
		c.statesState = Failed
		c.statesErr = err
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to load state list")
		return err
	}
	if c.statesState == Loaded {
		// A concurrent load won; keep its result.
		return nil
	}
	c.states = states
	c.statesState = Loaded
	c.statesErr = nil
	close(c.statesReady)
	return nil
}

// States returns the current state list with its load state.
func (c *Catalog) States() ([]string, LoadState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.states...), c.statesState, c.statesErr
}

// AwaitStates blocks until the state list has loaded successfully, or the
// context is done. Deferred reconciliation hangs off this instead of a
// fixed delay: detections arriving before the catalog are completed the
// moment it populates, never dropped. A failed load does not wake
// waiters. Retries are user-initiated, so the caller's context is the
// only bound on the wait; callers that cannot retry the load themselves
// must pass a deadline.
func (c *Catalog) AwaitStates(ctx context.Context) ([]string, error) {
	select {
	case <-c.statesReady:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.states...), nil
}

// LoadDistricts fetches the district list for an already-resolved state.
// Selecting a new state invalidates the previous list.
func (c *Catalog) LoadDistricts(ctx context.Context, state string) error {
	if state == "" {
		return &domain.ValidationError{Field: "state", Reason: "must not be empty"}
	}

	c.mu.Lock()
	if c.districtsFor == state && c.districtsState == Loaded {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	districts, err := c.source.Districts(ctx, state)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.districtsFor = state
	if err != nil {
		c.districts = nil
		c.districtsState = Failed
		c.districtsErr = err
		zerolog.Ctx(ctx).Error().Err(err).Str("state", state).Msg("failed to load district list")
		return err
	}
	c.districts = districts
	c.districtsState = Loaded
	c.districtsErr = nil
	return nil
}

// Districts returns the cached district list for the given state. The
// load state is NotLoaded when the cache belongs to a different state.
func (c *Catalog) Districts(state string) ([]string, LoadState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.districtsFor != state {
		return nil, NotLoaded, nil
	}
	return append([]string(nil), c.districts...), c.districtsState, c.districtsErr
}
