package dashboard

import (
	"context"

	"github.com/soochnamitra/dash-core/pkg/models/api"
	"github.com/soochnamitra/dash-core/pkg/models/domain"
	"github.com/soochnamitra/dash-core/pkg/services/locate"
)

// HealthChecker probes the upstream data service.
type HealthChecker interface {
	Health(ctx context.Context) (*api.HealthResponse, error)
}

// Service is the request-facing surface over the orchestrator, catalog,
// and location resolver.
type Service struct {
	orchestrator *Orchestrator
	resolver     *locate.Resolver
	health       HealthChecker
}

func NewService(orchestrator *Orchestrator, resolver *locate.Resolver, health HealthChecker) *Service {
	return &Service{
		orchestrator: orchestrator,
		resolver:     resolver,
		health:       health,
	}
}

// States returns the catalog's state list, loading it on first use.
func (s *Service) States(ctx context.Context) ([]string, error) {
	if err := s.orchestrator.LoadStates(ctx); err != nil {
		return nil, err
	}
	states, _, err := s.orchestrator.Catalog().States()
	return states, err
}

// Districts returns the district list for a state, loading it on demand.
func (s *Service) Districts(ctx context.Context, state string) ([]string, error) {
	if err := s.orchestrator.Catalog().LoadDistricts(ctx, state); err != nil {
		return nil, err
	}
	districts, _, err := s.orchestrator.Catalog().Districts(state)
	return districts, err
}

// Dashboard queries a fresh snapshot and assembles the served view model.
func (s *Service) Dashboard(ctx context.Context, state, district string, months int) (*api.Dashboard, error) {
	snapshot, err := s.orchestrator.Query(ctx, state, district, months)
	if err != nil {
		return nil, err
	}
	return BuildView(snapshot), nil
}

// Locate reverse-geocodes device coordinates and reconciles them against
// the catalog. Confirmation stays with the caller: nothing is committed.
func (s *Service) Locate(ctx context.Context, coords domain.Coordinates) (*api.LocateResponse, error) {
	detection, outcome, err := s.resolver.ResolveCoordinates(ctx, coords)
	if err != nil {
		return nil, err
	}

	resp := &api.LocateResponse{Message: outcome.Message}
	if detection != nil {
		resp.DetectedState = detection.CandidateState
		resp.DetectedDistrict = detection.CandidateDistrict
	}
	resp.MatchedState = outcome.State
	resp.MatchedDistrict = outcome.District
	resp.StateMatched = outcome.StateMatched
	resp.DistrictMatched = outcome.DistrictMatched
	return resp, nil
}

// Refresh forwards the out-of-band recomputation request upstream.
func (s *Service) Refresh(ctx context.Context) error {
	return s.orchestrator.Refresh(ctx)
}

// Health probes upstream reachability.
func (s *Service) Health(ctx context.Context) error {
	_, err := s.health.Health(ctx)
	return err
}

// DefaultMonths reports the window used when a request does not name one.
func (s *Service) DefaultMonths() int {
	return s.orchestrator.defaultMonths
}
