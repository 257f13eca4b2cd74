// Package series turns the raw monthly records returned by the upstream
// service into a clean, bounded, chronologically ordered dataset.
package series

import (
	"sort"
	"strings"

	"github.com/soochnamitra/dash-core/pkg/format"
	"github.com/soochnamitra/dash-core/pkg/models/api"
	"github.com/soochnamitra/dash-core/pkg/models/domain"
)

// fiscalMonths orders month tokens by the Indian fiscal year (April-March).
var fiscalMonths = map[string]int{
	"Apr": 0, "May": 1, "Jun": 2, "Jul": 3, "Aug": 4, "Sep": 5,
	"Oct": 6, "Nov": 7, "Dec": 8, "Jan": 9, "Feb": 10, "Mar": 11,
}

// MonthIndex returns the fiscal-calendar position of a month token, or -1
// for an unknown token. Unknown months sort before all named months.
func MonthIndex(month string) int {
	idx, ok := fiscalMonths[month]
	if !ok {
		return -1
	}
	return idx
}

// Normalize projects, orders, deduplicates, and windows a raw monthly
// series. The output is deterministic for a given input regardless of
// input order: records sort by fiscal year then fiscal month position,
// duplicates of the same (month, fiscal year) keep the first occurrence in
// post-sort order, and the result is the tail of at most `months` entries.
func Normalize(records []api.SeriesRecord, months int) []domain.MonthlySeriesPoint {
	points := make([]domain.MonthlySeriesPoint, 0, len(records))
	for _, rec := range records {
		points = append(points, domain.MonthlySeriesPoint{
			Month:       strings.TrimSpace(rec.Month),
			FiscalYear:  strings.TrimSpace(rec.FinYear),
			Expenditure: format.ToNumber(rec.Expenditure),
			Households:  int64(format.ToNumber(rec.Households)),
			Persondays:  int64(format.ToNumber(rec.Persondays)),
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		if points[i].FiscalYear != points[j].FiscalYear {
			return points[i].FiscalYear < points[j].FiscalYear
		}
		return MonthIndex(points[i].Month) < MonthIndex(points[j].Month)
	})

	seen := make(map[string]struct{}, len(points))
	deduped := points[:0]
	for _, p := range points {
		if _, dup := seen[p.Key()]; dup {
			continue
		}
		seen[p.Key()] = struct{}{}
		deduped = append(deduped, p)
	}

	if months > 0 && len(deduped) > months {
		deduped = deduped[len(deduped)-months:]
	}
	return deduped
}
