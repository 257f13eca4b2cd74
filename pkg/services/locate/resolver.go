// Package locate orchestrates device geolocation, reverse geocoding, and
// reconciliation of the detected place against the region catalog, gated
// by explicit user confirmation.
package locate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/soochnamitra/dash-core/pkg/metrics"
	"github.com/soochnamitra/dash-core/pkg/models/domain"
	"github.com/soochnamitra/dash-core/pkg/services/catalog"
)

type Phase int

const (
	Idle Phase = iota
	Detecting
	ReverseGeocoding
	AwaitingConfirmation
	Reconciling
	Resolved
	Declined
	FailedPhase
)

type FailureReason string

const (
	ReasonPermissionDenied FailureReason = "permission_denied"
	ReasonUnavailable      FailureReason = "unavailable"
	ReasonTimeout          FailureReason = "timeout"
	ReasonUnresolvable     FailureReason = "unresolvable"
	ReasonUnknownRegion    FailureReason = "unknown_region"
)

// ErrDetectionInFlight is returned when Detect is triggered while a
// previous detection is still running or awaiting confirmation. Callers
// treat it as a no-op, not a failure: it exists to swallow duplicate
// trigger events and avoid double permission prompts.
var ErrDetectionInFlight = errors.New("detection already in flight")

// ErrNoPendingDetection is returned by Confirm without a detection
// awaiting confirmation.
var ErrNoPendingDetection = errors.New("no detection awaiting confirmation")

// lockReleaseDelay absorbs duplicate input events (touch and click fired
// by the same control) after a detection reaches a terminal phase.
const lockReleaseDelay = 400 * time.Millisecond

// GeoSource yields the device's current coordinates. Failures carry a
// *domain.GeolocationError naming the kind.
type GeoSource interface {
	Current(ctx context.Context) (domain.Coordinates, error)
}

type Reverser interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (domain.Placement, error)
}

// Committer receives the reconciled selection. complete reports whether
// both state and district matched; only then does the committer trigger
// the metrics query automatically.
type Committer interface {
	CommitResolved(ctx context.Context, state, district string, complete bool)
}

// Outcome describes where a detection ended up. Miss is set when a
// detected name had no catalog match; the message is derived from it.
type Outcome struct {
	Phase           Phase
	Reason          FailureReason
	Message         string
	State           string
	District        string
	StateMatched    bool
	DistrictMatched bool
	Miss            *domain.ReconciliationMiss
}

type Resolver struct {
	geo       GeoSource
	reverser  Reverser
	catalog   *catalog.Catalog
	committer Committer
	clock     clockwork.Clock
	metrics   *metrics.Metrics

	mu        sync.Mutex
	phase     Phase
	locked    bool
	detection *domain.GeoDetectionResult
}

func NewResolver(
	geo GeoSource,
	reverser Reverser,
	cat *catalog.Catalog,
	committer Committer,
	clock clockwork.Clock,
	m *metrics.Metrics,
) *Resolver {
	return &Resolver{
		geo:       geo,
		reverser:  reverser,
		catalog:   cat,
		committer: committer,
		clock:     clock,
		metrics:   m,
		phase:     Idle,
	}
}

// Phase returns the resolver's current phase.
func (r *Resolver) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Detect runs geolocation and reverse geocoding, ending in
// AwaitingConfirmation with the detected candidate, or in a failure
// outcome naming the kind. Only an explicit user action should call it.
func (r *Resolver) Detect(ctx context.Context) (*domain.GeoDetectionResult, *Outcome, error) {
	r.mu.Lock()
	if r.locked {
		r.mu.Unlock()
		return nil, nil, ErrDetectionInFlight
	}
	r.locked = true
	r.phase = Detecting
	r.mu.Unlock()

	logger := zerolog.Ctx(ctx)

	coords, err := r.geo.Current(ctx)
	if err != nil {
		reason := classifyGeoError(err)
		logger.Warn().Err(err).Str("reason", string(reason)).Msg("geolocation failed")
		return nil, r.fail(reason), nil
	}

	r.setPhase(ReverseGeocoding)

	placement, err := r.reverser.ReverseGeocode(ctx, coords.Latitude, coords.Longitude)
	if err != nil {
		logger.Warn().Err(err).Msg("reverse geocoding failed")
		return nil, r.fail(ReasonUnresolvable), nil
	}

	district := StripAdminNoise(placement.District)
	state := strings.TrimSpace(placement.State)
	if district == "" || state == "" {
		return nil, r.fail(ReasonUnresolvable), nil
	}

	detection := &domain.GeoDetectionResult{
		RawLatitude:       coords.Latitude,
		RawLongitude:      coords.Longitude,
		CandidateState:    state,
		CandidateDistrict: district,
	}

	r.mu.Lock()
	r.detection = detection
	r.phase = AwaitingConfirmation
	r.mu.Unlock()

	return detection, nil, nil
}

// Confirm settles a pending detection with the user's explicit yes/no.
// Declining returns to Idle with no state mutation. Accepting reconciles
// the detection against the catalog, deferring until the catalog's state
// list is available rather than abandoning the detection.
func (r *Resolver) Confirm(ctx context.Context, accept bool) (*Outcome, error) {
	r.mu.Lock()
	if r.phase != AwaitingConfirmation || r.detection == nil {
		r.mu.Unlock()
		return nil, ErrNoPendingDetection
	}
	detection := r.detection
	r.detection = nil
	if !accept {
		r.phase = Declined
		r.mu.Unlock()
		r.countDetection("declined")
		r.settle()
		return &Outcome{Phase: Declined}, nil
	}
	r.phase = Reconciling
	r.mu.Unlock()

	return r.reconcile(ctx, detection)
}

func (r *Resolver) reconcile(ctx context.Context, detection *domain.GeoDetectionResult) (*Outcome, error) {
	outcome, err := r.reconcileAgainstCatalog(ctx, detection)
	if err != nil {
		return nil, err
	}

	switch {
	case !outcome.StateMatched:
		return r.fail(ReasonUnknownRegion), nil
	case outcome.DistrictMatched:
		r.setPhase(Resolved)
		r.committer.CommitResolved(ctx, outcome.State, outcome.District, true)
		r.countDetection("resolved")
	default:
		r.setPhase(Resolved)
		r.committer.CommitResolved(ctx, outcome.State, "", false)
		r.countDetection("partial")
	}
	r.settle()
	outcome.Phase = Resolved
	return outcome, nil
}

// reconcileAgainstCatalog matches a detection against the catalog without
// touching resolver state. It also backs the stateless locate endpoint,
// where confirmation happens on the client.
func (r *Resolver) reconcileAgainstCatalog(
	ctx context.Context,
	detection *domain.GeoDetectionResult,
) (*Outcome, error) {
	states, err := r.catalog.AwaitStates(ctx)
	if err != nil {
		return nil, fmt.Errorf("await state list: %w", err)
	}

	matchedState, ok := catalog.MatchCanonical(detection.CandidateState, states)
	if !ok {
		miss := &domain.ReconciliationMiss{Scope: "state", Name: detection.CandidateState}
		zerolog.Ctx(ctx).Info().Err(miss).Msg("reconciliation miss")
		return &Outcome{
			Miss:    miss,
			Message: fmt.Sprintf("Detected state %q is not in the catalog. Please select your region manually.", miss.Name),
		}, nil
	}

	// District match is best effort: a fetch failure or a miss both
	// downgrade to manual district selection.
	var matchedDistrict string
	var districtOK bool
	if err := r.catalog.LoadDistricts(ctx, matchedState); err == nil {
		districts, _, _ := r.catalog.Districts(matchedState)
		matchedDistrict, districtOK = catalog.MatchCanonical(detection.CandidateDistrict, districts)
	} else {
		zerolog.Ctx(ctx).Warn().Err(err).Str("state", matchedState).
			Msg("district list unavailable during reconciliation")
	}

	outcome := &Outcome{
		State:           matchedState,
		District:        matchedDistrict,
		StateMatched:    true,
		DistrictMatched: districtOK,
	}
	if !districtOK {
		miss := &domain.ReconciliationMiss{Scope: "district", Name: detection.CandidateDistrict}
		zerolog.Ctx(ctx).Info().Err(miss).Msg("reconciliation miss")
		outcome.Miss = miss
		outcome.Message = fmt.Sprintf("Matched state %q, but district %q was not found. Please pick your district manually.",
			matchedState, miss.Name)
	}
	return outcome, nil
}

// ResolveCoordinates reverse-geocodes and reconciles the given device
// coordinates without the confirmation gate or the detection lock. Used
// by clients that gather coordinates and confirm on their own.
func (r *Resolver) ResolveCoordinates(ctx context.Context, coords domain.Coordinates) (*domain.GeoDetectionResult, *Outcome, error) {
	placement, err := r.reverser.ReverseGeocode(ctx, coords.Latitude, coords.Longitude)
	if err != nil {
		return nil, nil, fmt.Errorf("reverse geocode: %w", err)
	}

	district := StripAdminNoise(placement.District)
	state := strings.TrimSpace(placement.State)
	if district == "" || state == "" {
		return nil, &Outcome{
			Phase:   FailedPhase,
			Reason:  ReasonUnresolvable,
			Message: failureMessage(ReasonUnresolvable),
		}, nil
	}

	detection := &domain.GeoDetectionResult{
		RawLatitude:       coords.Latitude,
		RawLongitude:      coords.Longitude,
		CandidateState:    state,
		CandidateDistrict: district,
	}

	// Nothing else in the stateless path schedules the state list load,
	// so a cold or failed catalog is loaded here rather than parking the
	// request until its context dies.
	if _, loadState, _ := r.catalog.States(); loadState != catalog.Loaded {
		if err := r.catalog.LoadStates(ctx); err != nil {
			return nil, nil, fmt.Errorf("load state list: %w", err)
		}
	}

	outcome, err := r.reconcileAgainstCatalog(ctx, detection)
	if err != nil {
		return nil, nil, err
	}
	if !outcome.StateMatched {
		outcome.Phase = FailedPhase
		outcome.Reason = ReasonUnknownRegion
	} else {
		outcome.Phase = Resolved
	}
	return detection, outcome, nil
}

// fail records a terminal failure, surfaces the kind-specific message,
// and returns the resolver to Idle.
func (r *Resolver) fail(reason FailureReason) *Outcome {
	r.mu.Lock()
	r.phase = FailedPhase
	r.detection = nil
	r.mu.Unlock()

	r.countDetection("failed")
	r.settle()
	return &Outcome{
		Phase:   FailedPhase,
		Reason:  reason,
		Message: failureMessage(reason),
	}
}

// settle returns the resolver to Idle and releases the detection lock a
// short fixed delay later, absorbing duplicate trigger events.
func (r *Resolver) settle() {
	r.mu.Lock()
	r.phase = Idle
	r.mu.Unlock()

	r.clock.AfterFunc(lockReleaseDelay, func() {
		r.mu.Lock()
		r.locked = false
		r.mu.Unlock()
	})
}

func (r *Resolver) setPhase(p Phase) {
	r.mu.Lock()
	r.phase = p
	r.mu.Unlock()
}

func (r *Resolver) countDetection(outcome string) {
	if r.metrics != nil {
		r.metrics.DetectionRuns.WithLabelValues(outcome).Inc()
	}
}

func classifyGeoError(err error) FailureReason {
	var gerr *domain.GeolocationError
	if errors.As(err, &gerr) {
		switch gerr.Kind {
		case domain.GeoPermissionDenied:
			return ReasonPermissionDenied
		case domain.GeoTimeout:
			return ReasonTimeout
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	return ReasonUnavailable
}

func failureMessage(reason FailureReason) string {
	switch reason {
	case ReasonPermissionDenied:
		return "Location permission was denied. You can still select your region manually."
	case ReasonTimeout:
		return "Locating your device took too long. Please try again or select your region manually."
	case ReasonUnavailable:
		return "Your device's position is unavailable right now. Please select your region manually."
	case ReasonUnresolvable:
		return "Could not work out a district and state for your position. Please select your region manually."
	case ReasonUnknownRegion:
		return "The detected region is not served by the catalog. Please select your region manually."
	default:
		return "Location detection failed. Please select your region manually."
	}
}
