package dashboard

import (
	"fmt"

	"github.com/soochnamitra/dash-core/pkg/format"
	"github.com/soochnamitra/dash-core/pkg/models/api"
	"github.com/soochnamitra/dash-core/pkg/models/domain"
)

// Summarize derives the one-line KPI sentence for a snapshot. Pure: the
// snapshot is never mutated.
func Summarize(s *domain.DashboardSnapshot) string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf("%s, %s: %s spent across %d households over %d reported months.",
		s.District, s.State,
		format.FormatCurrency(s.KPIs.TotalExpenditure),
		s.KPIs.TotalHouseholdsWorked,
		len(s.Series),
	)
}

// KPICards derives the formatted, bilingually annotated KPI cards from a
// snapshot. Pure: derivation never mutates the snapshot.
func KPICards(s *domain.DashboardSnapshot) []api.KPICard {
	if s == nil {
		return nil
	}
	return []api.KPICard{
		{
			Key:   "total_expenditure",
			Value: format.FormatCurrency(s.KPIs.TotalExpenditure),
			Label: api.BilingualText{En: "Total Expenditure", Hi: "कुल व्यय"},
			Hint: api.BilingualText{
				En: "Total funds spent in the district over the selected period.",
				Hi: "चयनित अवधि में जिले में खर्च की गई कुल धनराशि।",
			},
		},
		{
			Key:   "total_households_worked",
			Value: fmt.Sprintf("%d", s.KPIs.TotalHouseholdsWorked),
			Label: api.BilingualText{En: "Households Worked", Hi: "कार्यरत परिवार"},
			Hint: api.BilingualText{
				En: "Households that received employment under the scheme.",
				Hi: "योजना के अंतर्गत रोजगार पाने वाले परिवार।",
			},
		},
		{
			Key:   "total_persondays",
			Value: fmt.Sprintf("%d", s.KPIs.TotalPersondays),
			Label: api.BilingualText{En: "Persondays Generated", Hi: "सृजित व्यक्ति-दिवस"},
			Hint: api.BilingualText{
				En: "One personday is one person employed for one day.",
				Hi: "एक व्यक्ति-दिवस अर्थात एक व्यक्ति को एक दिन का रोजगार।",
			},
		},
		{
			Key:   "records_count",
			Value: fmt.Sprintf("%d", s.KPIs.RecordsCount),
			Label: api.BilingualText{En: "Records", Hi: "अभिलेख"},
			Hint: api.BilingualText{
				En: "Monthly records aggregated into these figures.",
				Hi: "इन आंकड़ों में सम्मिलित मासिक अभिलेख।",
			},
		},
	}
}

// BuildView assembles the served view model from a snapshot.
func BuildView(s *domain.DashboardSnapshot) *api.Dashboard {
	if s == nil {
		return nil
	}
	points := make([]api.SeriesPoint, 0, len(s.Series))
	for _, p := range s.Series {
		points = append(points, api.SeriesPoint{
			Month:       p.Month,
			FinYear:     p.FiscalYear,
			Expenditure: p.Expenditure,
			Households:  p.Households,
			Persondays:  p.Persondays,
		})
	}
	return &api.Dashboard{
		State:       s.State,
		District:    s.District,
		Summary:     Summarize(s),
		KPIs:        KPICards(s),
		Series:      points,
		FromCache:   s.FromCache,
		LastUpdated: s.LastUpdated,
	}
}
