package api

// Wire types for the upstream SoochnaMitra data service. Numeric fields
// arrive loosely typed (numbers or strings with thousands separators), so
// they are declared `any` and coerced through format.ToNumber downstream.

type StatesResponse struct {
	States []string `json:"states"`
	Source string   `json:"source,omitempty"`
}

type DistrictsResponse struct {
	State     string   `json:"state"`
	Districts []string `json:"districts"`
	Source    string   `json:"source,omitempty"`
}

type SeriesRecord struct {
	Month       string `json:"month"`
	FinYear     string `json:"fin_year"`
	Expenditure any    `json:"expenditure"`
	Households  any    `json:"households"`
	Persondays  any    `json:"persondays"`
}

type KPIPayload struct {
	TotalExpenditure      any `json:"total_expenditure"`
	TotalHouseholdsWorked any `json:"total_households_worked"`
	TotalPersondays       any `json:"total_persondays"`
	RecordsCount          any `json:"records_count"`
}

type DashboardResponse struct {
	State       string         `json:"state"`
	District    string         `json:"district"`
	KPIs        KPIPayload     `json:"kpis"`
	Series      []SeriesRecord `json:"series"`
	FromCache   bool           `json:"from_cache"`
	LastUpdated string         `json:"last_updated"`
	Source      string         `json:"source,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}
