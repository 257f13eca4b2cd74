package api

import "time"

// BilingualText carries the two fixed display languages side by side.
type BilingualText struct {
	En string `json:"en"`
	Hi string `json:"hi"`
}

// KPICard is one formatted KPI with its explanatory text.
type KPICard struct {
	Key   string        `json:"key"`
	Value string        `json:"value"`
	Label BilingualText `json:"label"`
	Hint  BilingualText `json:"hint"`
}

type SeriesPoint struct {
	Month       string  `json:"month"`
	FinYear     string  `json:"fin_year"`
	Expenditure float64 `json:"expenditure"`
	Households  int64   `json:"households"`
	Persondays  int64   `json:"persondays"`
}

// Dashboard is the served view model: KPIs, normalized series, and the
// provenance flag of the upstream snapshot.
type Dashboard struct {
	State       string        `json:"state"`
	District    string        `json:"district"`
	Summary     string        `json:"summary"`
	KPIs        []KPICard     `json:"kpis"`
	Series      []SeriesPoint `json:"series"`
	FromCache   bool          `json:"from_cache"`
	LastUpdated time.Time     `json:"last_updated"`
}

type LocateRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type LocateResponse struct {
	DetectedState    string `json:"detected_state"`
	DetectedDistrict string `json:"detected_district"`
	MatchedState     string `json:"matched_state,omitempty"`
	MatchedDistrict  string `json:"matched_district,omitempty"`
	StateMatched     bool   `json:"state_matched"`
	DistrictMatched  bool   `json:"district_matched"`
	Message          string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
