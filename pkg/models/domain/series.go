package domain

// MonthlySeriesPoint is one month of district expenditure data.
// Identity key is (Month, FiscalYear); the normalizer enforces uniqueness.
type MonthlySeriesPoint struct {
	Month       string // 3-letter, e.g. "Apr"
	FiscalYear  string // e.g. "2023-24"
	Expenditure float64
	Households  int64
	Persondays  int64
}

// Key returns the composite identity used for deduplication.
func (p MonthlySeriesPoint) Key() string {
	return p.Month + "-" + p.FiscalYear
}
