// Package dashboard coordinates the catalog, the locate flow, and the
// upstream snapshot fetch into the view model served to clients. The
// orchestrator is the single owner of the active selection and the held
// snapshot; both are mutated only in response to completed requests.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/soochnamitra/dash-core/pkg/format"
	"github.com/soochnamitra/dash-core/pkg/metrics"
	"github.com/soochnamitra/dash-core/pkg/models/api"
	"github.com/soochnamitra/dash-core/pkg/models/domain"
	"github.com/soochnamitra/dash-core/pkg/series"
	"github.com/soochnamitra/dash-core/pkg/services/catalog"
)

// ErrSuperseded marks a query whose response landed after a newer query
// had already been issued. Its result is disregarded; the latest request
// wins regardless of arrival order.
var ErrSuperseded = errors.New("query superseded by a newer request")

// SnapshotSource is the slice of the upstream client the orchestrator
// consumes.
type SnapshotSource interface {
	Dashboard(ctx context.Context, state, district string, months int) (*api.DashboardResponse, error)
	Refresh(ctx context.Context) error
}

// LoadingFlags exposes the three independent request lifecycles so a UI
// can show granular progress.
type LoadingFlags struct {
	States    bool
	Districts bool
	Snapshot  bool
}

type Orchestrator struct {
	source        SnapshotSource
	catalog       *catalog.Catalog
	clock         clockwork.Clock
	metrics       *metrics.Metrics
	defaultMonths int

	mu        sync.Mutex
	selection domain.Selection
	snapshot  *domain.DashboardSnapshot
	lastErr   error
	seq       uint64 // id of the most recently issued query
	loading   LoadingFlags
}

func NewOrchestrator(
	source SnapshotSource,
	cat *catalog.Catalog,
	clock clockwork.Clock,
	m *metrics.Metrics,
	defaultMonths int,
) *Orchestrator {
	if defaultMonths == 0 {
		defaultMonths = 12
	}
	return &Orchestrator{
		source:        source,
		catalog:       cat,
		clock:         clock,
		metrics:       m,
		defaultMonths: defaultMonths,
	}
}

// Catalog returns the region catalog owned by this orchestrator's session.
func (o *Orchestrator) Catalog() *catalog.Catalog {
	return o.catalog
}

// LoadStates populates the catalog's state list, tracking the loading flag.
func (o *Orchestrator) LoadStates(ctx context.Context) error {
	o.setLoading(func(f *LoadingFlags) { f.States = true })
	defer o.setLoading(func(f *LoadingFlags) { f.States = false })
	return o.catalog.LoadStates(ctx)
}

// SelectState commits a state selection and loads its district list. The
// previous district selection is cleared: districts are only meaningful
// within their state.
func (o *Orchestrator) SelectState(ctx context.Context, state string) error {
	if state == "" {
		return &domain.ValidationError{Field: "state", Reason: "must not be empty"}
	}

	o.mu.Lock()
	o.selection = domain.Selection{State: state}
	o.mu.Unlock()

	o.setLoading(func(f *LoadingFlags) { f.Districts = true })
	defer o.setLoading(func(f *LoadingFlags) { f.Districts = false })
	return o.catalog.LoadDistricts(ctx, state)
}

// SelectDistrict commits a district selection under the current state.
func (o *Orchestrator) SelectDistrict(district string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.selection.State == "" {
		return &domain.ValidationError{Field: "district", Reason: "select a state first"}
	}
	o.selection.District = district
	return nil
}

// Query fetches, normalizes, and holds a fresh snapshot for the given
// region. Empty state or district is rejected locally and never reaches
// the network. Responses superseded by a newer query are discarded.
func (o *Orchestrator) Query(ctx context.Context, state, district string, months int) (*domain.DashboardSnapshot, error) {
	if state == "" {
		return nil, &domain.ValidationError{Field: "state", Reason: "must not be empty"}
	}
	if district == "" {
		return nil, &domain.ValidationError{Field: "district", Reason: "must not be empty"}
	}
	if !validMonths(months) {
		return nil, &domain.ValidationError{Field: "months", Reason: "must be one of 1, 3, 6, 12"}
	}

	o.mu.Lock()
	o.seq++
	id := o.seq
	o.selection = domain.Selection{State: state, District: district}
	o.loading.Snapshot = true
	o.mu.Unlock()

	if o.metrics != nil {
		o.metrics.QueriesServed.Inc()
	}
	start := o.clock.Now()

	resp, err := o.source.Dashboard(ctx, state, district, months)

	if o.metrics != nil {
		o.metrics.QueryDuration.Observe(o.clock.Since(start).Seconds())
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if id != o.seq {
		// A newer query was issued while this one was in flight.
		zerolog.Ctx(ctx).Debug().Uint64("id", id).Uint64("latest", o.seq).
			Msg("discarding superseded dashboard response")
		return nil, ErrSuperseded
	}
	o.loading.Snapshot = false

	if err != nil {
		// Clear the snapshot but keep the selection: the user's dropdown
		// values survive a failed fetch.
		o.snapshot = nil
		o.lastErr = err
		return nil, err
	}

	snapshot := o.buildSnapshot(resp, months)
	o.snapshot = snapshot
	o.lastErr = nil
	return snapshot, nil
}

func (o *Orchestrator) buildSnapshot(resp *api.DashboardResponse, months int) *domain.DashboardSnapshot {
	return &domain.DashboardSnapshot{
		State:    resp.State,
		District: resp.District,
		KPIs: domain.KPIs{
			TotalExpenditure:      format.ToNumber(resp.KPIs.TotalExpenditure),
			TotalHouseholdsWorked: int64(format.ToNumber(resp.KPIs.TotalHouseholdsWorked)),
			TotalPersondays:       int64(format.ToNumber(resp.KPIs.TotalPersondays)),
			RecordsCount:          int64(format.ToNumber(resp.KPIs.RecordsCount)),
		},
		Series:      series.Normalize(resp.Series, months),
		FromCache:   resp.FromCache,
		LastUpdated: o.parseLastUpdated(resp.LastUpdated),
	}
}

// parseLastUpdated accepts the upstream's zone-less ISO timestamps and
// falls back to the current time when the field is absent or malformed.
func (o *Orchestrator) parseLastUpdated(raw string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return o.clock.Now()
}

// Snapshot returns the held snapshot and the last query error, if any.
func (o *Orchestrator) Snapshot() (*domain.DashboardSnapshot, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshot, o.lastErr
}

// Selection returns the active state/district pair.
func (o *Orchestrator) Selection() domain.Selection {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.selection
}

// Loading returns the three independent loading flags.
func (o *Orchestrator) Loading() LoadingFlags {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loading
}

// Refresh asks the backend to recompute its datasets. Fire and forget:
// the current snapshot is not invalidated.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	return o.source.Refresh(ctx)
}

// CommitResolved implements the locate committer: a resolved detection
// becomes the active selection, and a complete match triggers the metrics
// query automatically. A partial match leaves the district to the user.
func (o *Orchestrator) CommitResolved(ctx context.Context, state, district string, complete bool) {
	o.mu.Lock()
	o.selection = domain.Selection{State: state, District: district}
	o.mu.Unlock()

	if !complete {
		return
	}
	if _, err := o.Query(ctx, state, district, o.defaultMonths); err != nil && !errors.Is(err, ErrSuperseded) {
		zerolog.Ctx(ctx).Error().Err(err).
			Str("state", state).
			Str("district", district).
			Msg("auto-triggered query after location resolution failed")
	}
}

func (o *Orchestrator) setLoading(mutate func(*LoadingFlags)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	mutate(&o.loading)
}

func validMonths(months int) bool {
	switch months {
	case 1, 3, 6, 12:
		return true
	}
	return false
}
