package terminal

import (
	"context"
	"sync"

	"github.com/soochnamitra/dash-core/pkg/models/domain"
)

// CoordinateSource feeds the resolver coordinates taken from command
// flags instead of a device location API.
type CoordinateSource struct {
	mu     sync.Mutex
	coords domain.Coordinates
	set    bool
}

func NewCoordinateSource() *CoordinateSource {
	return &CoordinateSource{}
}

func (s *CoordinateSource) Set(lat, lon float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coords = domain.Coordinates{Latitude: lat, Longitude: lon}
	s.set = true
}

func (s *CoordinateSource) Current(_ context.Context) (domain.Coordinates, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return domain.Coordinates{}, &domain.GeolocationError{Kind: domain.GeoUnavailable}
	}
	return s.coords, nil
}
