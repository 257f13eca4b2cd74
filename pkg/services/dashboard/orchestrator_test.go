package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soochnamitra/dash-core/pkg/metrics"
	"github.com/soochnamitra/dash-core/pkg/models/api"
	"github.com/soochnamitra/dash-core/pkg/models/domain"
	"github.com/soochnamitra/dash-core/pkg/services/catalog"
)

type fakeSource struct {
	mu      sync.Mutex
	resp    *api.DashboardResponse
	err     error
	calls   int
	block   chan struct{} // when set, Dashboard blocks until closed
	refresh int
}

func (f *fakeSource) Dashboard(context.Context, string, string, int) (*api.DashboardResponse, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	resp, err := f.resp, f.err
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return resp, err
}

func (f *fakeSource) Refresh(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refresh++
	return nil
}

type regionSource struct {
	states    []string
	districts map[string][]string
}

func (s *regionSource) States(context.Context) ([]string, error) { return s.states, nil }
func (s *regionSource) Districts(_ context.Context, state string) ([]string, error) {
	return s.districts[state], nil
}

func sampleResponse() *api.DashboardResponse {
	return &api.DashboardResponse{
		State:    "KARNATAKA",
		District: "MYSURU",
		KPIs: api.KPIPayload{
			TotalExpenditure:      "1,500",
			TotalHouseholdsWorked: 42,
			TotalPersondays:       840,
			RecordsCount:          2,
		},
		Series: []api.SeriesRecord{
			{Month: "Jan", FinYear: "2023-24", Expenditure: "1,000", Households: 10},
			{Month: "Apr", FinYear: "2023-24", Expenditure: "500", Households: 5},
		},
		FromCache:   true,
		LastUpdated: "2025-10-01T12:00:00",
	}
}

func newOrchestrator(src *fakeSource) *Orchestrator {
	cat := catalog.New(&regionSource{
		states:    []string{"KARNATAKA"},
		districts: map[string][]string{"KARNATAKA": {"MYSURU"}},
	})
	return NewOrchestrator(src, cat, clockwork.NewFakeClock(), metrics.NewForTesting(), 12)
}

func TestOrchestrator_Query(t *testing.T) {
	src := &fakeSource{resp: sampleResponse()}
	o := newOrchestrator(src)

	snapshot, err := o.Query(context.Background(), "KARNATAKA", "MYSURU", 12)
	require.NoError(t, err)

	assert.Equal(t, "MYSURU", snapshot.District)
	assert.Equal(t, float64(1500), snapshot.KPIs.TotalExpenditure)
	assert.Equal(t, int64(42), snapshot.KPIs.TotalHouseholdsWorked)
	assert.True(t, snapshot.FromCache)
	assert.Equal(t, time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC), snapshot.LastUpdated)

	// Series comes back normalized: fiscal order, Apr before Jan.
	require.Len(t, snapshot.Series, 2)
	assert.Equal(t, "Apr", snapshot.Series[0].Month)
	assert.Equal(t, "Jan", snapshot.Series[1].Month)

	held, herr := o.Snapshot()
	assert.Same(t, snapshot, held)
	assert.NoError(t, herr)
}

func TestOrchestrator_QueryValidation(t *testing.T) {
	src := &fakeSource{resp: sampleResponse()}
	o := newOrchestrator(src)

	tests := []struct {
		name     string
		state    string
		district string
		months   int
	}{
		{"empty state", "", "MYSURU", 12},
		{"empty district", "KARNATAKA", "", 12},
		{"invalid months", "KARNATAKA", "MYSURU", 5},
		{"zero months", "KARNATAKA", "MYSURU", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.Query(context.Background(), tt.state, tt.district, tt.months)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
	assert.Zero(t, src.calls, "validation errors must never reach the network")
}

func TestOrchestrator_QueryFailureClearsSnapshotKeepsSelection(t *testing.T) {
	src := &fakeSource{resp: sampleResponse()}
	o := newOrchestrator(src)

	_, err := o.Query(context.Background(), "KARNATAKA", "MYSURU", 12)
	require.NoError(t, err)

	src.mu.Lock()
	src.resp = nil
	src.err = &domain.TransportError{Op: "dashboard", Status: 502}
	src.mu.Unlock()

	_, err = o.Query(context.Background(), "KARNATAKA", "MYSURU", 6)
	require.Error(t, err)

	snapshot, lastErr := o.Snapshot()
	assert.Nil(t, snapshot, "failed fetch clears the held snapshot")
	assert.Error(t, lastErr)
	assert.Equal(t, domain.Selection{State: "KARNATAKA", District: "MYSURU"}, o.Selection(),
		"dropdown selection survives a failed fetch")
}

func TestOrchestrator_SupersededResponseDiscarded(t *testing.T) {
	block := make(chan struct{})
	src := &fakeSource{resp: sampleResponse(), block: block}
	o := newOrchestrator(src)

	first := make(chan error, 1)
	go func() {
		_, err := o.Query(context.Background(), "KARNATAKA", "MYSURU", 12)
		first <- err
	}()

	// Wait for the first query to be in flight, then issue a newer one.
	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return src.calls == 1
	}, time.Second, 5*time.Millisecond)

	src.mu.Lock()
	src.block = nil
	src.mu.Unlock()

	snapshot, err := o.Query(context.Background(), "KARNATAKA", "MYSURU", 6)
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	// Now let the first (stale) response land: it must be discarded.
	close(block)
	assert.ErrorIs(t, <-first, ErrSuperseded)

	held, _ := o.Snapshot()
	assert.Same(t, snapshot, held, "the latest query's snapshot wins")
}

func TestOrchestrator_SelectStateClearsDistrict(t *testing.T) {
	src := &fakeSource{resp: sampleResponse()}
	o := newOrchestrator(src)
	ctx := context.Background()

	require.NoError(t, o.SelectState(ctx, "KARNATAKA"))
	require.NoError(t, o.SelectDistrict("MYSURU"))
	assert.True(t, o.Selection().Complete())

	require.NoError(t, o.SelectState(ctx, "KARNATAKA"))
	assert.Empty(t, o.Selection().District, "changing state invalidates the district")
}

func TestOrchestrator_SelectDistrictRequiresState(t *testing.T) {
	o := newOrchestrator(&fakeSource{})

	err := o.SelectDistrict("MYSURU")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestOrchestrator_CommitResolved(t *testing.T) {
	src := &fakeSource{resp: sampleResponse()}
	o := newOrchestrator(src)

	o.CommitResolved(context.Background(), "KARNATAKA", "MYSURU", true)

	assert.Equal(t, 1, src.calls, "complete resolution auto-triggers the query")
	snapshot, _ := o.Snapshot()
	require.NotNil(t, snapshot)
	assert.Equal(t, "MYSURU", snapshot.District)
}

func TestOrchestrator_CommitResolvedPartial(t *testing.T) {
	src := &fakeSource{resp: sampleResponse()}
	o := newOrchestrator(src)

	o.CommitResolved(context.Background(), "KARNATAKA", "", false)

	assert.Zero(t, src.calls, "partial resolution must not auto-trigger the query")
	assert.Equal(t, "KARNATAKA", o.Selection().State)
}

func TestOrchestrator_Refresh(t *testing.T) {
	src := &fakeSource{}
	o := newOrchestrator(src)

	require.NoError(t, o.Refresh(context.Background()))
	assert.Equal(t, 1, src.refresh)
}

func TestOrchestrator_MalformedLastUpdatedFallsBackToClock(t *testing.T) {
	src := &fakeSource{resp: sampleResponse()}
	src.resp.LastUpdated = "not-a-timestamp"

	cat := catalog.New(&regionSource{})
	clock := clockwork.NewFakeClockAt(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	o := NewOrchestrator(src, cat, clock, metrics.NewForTesting(), 12)

	snapshot, err := o.Query(context.Background(), "KARNATAKA", "MYSURU", 12)
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), snapshot.LastUpdated)
}

func TestSummaryDerivationIsPure(t *testing.T) {
	src := &fakeSource{resp: sampleResponse()}
	o := newOrchestrator(src)

	snapshot, err := o.Query(context.Background(), "KARNATAKA", "MYSURU", 12)
	require.NoError(t, err)

	before := *snapshot
	beforeSeries := append([]domain.MonthlySeriesPoint(nil), snapshot.Series...)

	_ = Summarize(snapshot)
	_ = KPICards(snapshot)
	_ = BuildView(snapshot)

	assert.Equal(t, before.KPIs, snapshot.KPIs)
	assert.Equal(t, beforeSeries, snapshot.Series)
}

func TestSummarize(t *testing.T) {
	s := &domain.DashboardSnapshot{
		State:    "KARNATAKA",
		District: "MYSURU",
		KPIs: domain.KPIs{
			TotalExpenditure:      250,
			TotalHouseholdsWorked: 42,
		},
		Series: make([]domain.MonthlySeriesPoint, 6),
	}

	got := Summarize(s)
	assert.Contains(t, got, "MYSURU, KARNATAKA")
	assert.Contains(t, got, "₹ 2.50 crore")
	assert.Contains(t, got, "42 households")
	assert.Contains(t, got, "6 reported months")

	assert.Empty(t, Summarize(nil))
}

func TestKPICards_Bilingual(t *testing.T) {
	s := &domain.DashboardSnapshot{
		KPIs: domain.KPIs{TotalExpenditure: 50, TotalHouseholdsWorked: 7, TotalPersondays: 99, RecordsCount: 3},
	}

	cards := KPICards(s)
	require.Len(t, cards, 4)

	assert.Equal(t, "₹ 50.00 lakh", cards[0].Value)
	for _, card := range cards {
		assert.NotEmpty(t, card.Label.En)
		assert.NotEmpty(t, card.Label.Hi)
		assert.NotEmpty(t, card.Hint.En)
		assert.NotEmpty(t, card.Hint.Hi)
	}

	assert.Nil(t, KPICards(nil))
}

func TestOrchestrator_QueryErrorIsNotSuperseded(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	o := newOrchestrator(src)

	_, err := o.Query(context.Background(), "KARNATAKA", "MYSURU", 3)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSuperseded)
}
