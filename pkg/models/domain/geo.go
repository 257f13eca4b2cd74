package domain

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Placement is the best-effort output of a reverse-geocode lookup.
type Placement struct {
	District string
	State    string
}

// GeoDetectionResult is produced once per user-initiated detection and
// discarded after resolution succeeds or fails.
type GeoDetectionResult struct {
	RawLatitude       float64
	RawLongitude      float64
	CandidateState    string
	CandidateDistrict string
}
