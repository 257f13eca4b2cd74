package domain

import "time"

type KPIs struct {
	TotalExpenditure      float64 // in lakh
	TotalHouseholdsWorked int64
	TotalPersondays       int64
	RecordsCount          int64
}

// DashboardSnapshot is the result of one metrics query. It is replaced
// wholesale on each successful fetch and never mutated in place.
type DashboardSnapshot struct {
	State       string
	District    string
	KPIs        KPIs
	Series      []MonthlySeriesPoint
	FromCache   bool
	LastUpdated time.Time
}
