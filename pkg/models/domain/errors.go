package domain

import "fmt"

// ValidationError marks input rejected locally, before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TransportError wraps any upstream fetch failure. It is always retryable
// from the user's perspective; the owning list is reset to known-empty.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: upstream returned status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// GeoErrorKind mirrors the error codes of the device geolocation API.
type GeoErrorKind string

const (
	GeoPermissionDenied GeoErrorKind = "permission_denied"
	GeoUnavailable      GeoErrorKind = "position_unavailable"
	GeoTimeout          GeoErrorKind = "timeout"
)

type GeolocationError struct {
	Kind GeoErrorKind
	Err  error
}

func (e *GeolocationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geolocation %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("geolocation %s", e.Kind)
}

func (e *GeolocationError) Unwrap() error { return e.Err }

// ReconciliationMiss records a detected name that has no catalog match.
// Not fatal: resolution downgrades to partial or manual selection.
type ReconciliationMiss struct {
	Scope string // "state" or "district"
	Name  string
}

func (e *ReconciliationMiss) Error() string {
	return fmt.Sprintf("detected %s %q not found in catalog", e.Scope, e.Name)
}
