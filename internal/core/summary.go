package core

import (
	"fmt"
	"strconv"
	"time"
)

// Summary is the aggregate of a month or a year of stream logs.
type Summary struct {
	Period string `json:"period"`
	Totals
	// Breakdown is set for monthly summaries.
	Breakdown []CategoryRow `json:"breakdown,omitempty"`
	// Trend is set for yearly summaries, one row per month with data.
	Trend []TrendRow `json:"trend,omitempty"`
}

// CategoryRow is one bar of the monthly breakdown chart.
type CategoryRow struct {
	Name     string `json:"name"`
	Subs     int    `json:"subs"`
	GiftSubs int    `json:"giftSubs"`
	// Amount is only set on the donations row.
	Amount *Money `json:"amount,omitempty"`
}

// TrendRow is one month of the yearly trend.
type TrendRow struct {
	Name           string `json:"name"`
	Month          int    `json:"month"`
	TotalSubs      int    `json:"totalSubs"`
	TotalGiftSubs  int    `json:"totalGiftSubs"`
	TotalDonations Money  `json:"totalDonations"`
}

// MonthOption is a month that has data, zero-based.
type MonthOption struct {
	Month int    `json:"month"`
	Name  string `json:"name"`
}

// ChartSlice is a named value of a pie chart.
type ChartSlice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Estimated creator revenue per sub, in dollars.
var tierPrices = map[Tier]float64{
	Tier1: 5,
	Tier2: 10,
	Tier3: 25,
}

// MonthName returns the English name of a zero-based month.
func MonthName(month0 int) string {
	return time.Month(month0 + 1).String()
}

// MonthPeriod formats the label of a zero-based month, e.g. "2024-03 (March)".
func MonthPeriod(year, month0 int) string {
	return fmt.Sprintf("%04d-%02d (%s)", year, month0+1, MonthName(month0))
}

// MonthSummary aggregates the activities of one month.
func MonthSummary(year, month0 int, activities []Activity) Summary {
	totals := Aggregate(activities)
	rows := make([]CategoryRow, 0, 5)
	for _, tier := range AllTiers() {
		rows = append(rows, CategoryRow{
			Name:     string(tier),
			Subs:     totals.Subs[tier],
			GiftSubs: totals.GiftSubs[tier],
		})
	}
	donations := totals.Donations
	rows = append(rows,
		CategoryRow{Name: "Prime Subs", Subs: totals.PrimeSubs},
		CategoryRow{Name: "Donations Value", Amount: &donations},
	)
	return Summary{
		Period:    MonthPeriod(year, month0),
		Totals:    totals,
		Breakdown: rows,
	}
}

// YearSummary folds monthly totals keyed by zero-based month. Months
// missing from the map contribute nothing and get no trend row.
func YearSummary(year int, months map[int]Totals) Summary {
	totals := NewTotals()
	var trend []TrendRow
	for m := 0; m < 12; m++ {
		mt, ok := months[m]
		if !ok {
			continue
		}
		totals = totals.Add(mt)
		trend = append(trend, TrendRow{
			Name:           MonthName(m),
			Month:          m,
			TotalSubs:      mt.TotalSubs(),
			TotalGiftSubs:  mt.TotalGiftSubs(),
			TotalDonations: mt.Donations,
		})
	}
	return Summary{
		Period: strconv.Itoa(year),
		Totals: totals,
		Trend:  trend,
	}
}

// SubsChart returns paid subs per tier plus prime subs.
func SubsChart(t Totals) []ChartSlice {
	out := make([]ChartSlice, 0, 4)
	for _, tier := range AllTiers() {
		out = append(out, ChartSlice{Name: string(tier), Value: float64(t.Subs[tier])})
	}
	return append(out, ChartSlice{Name: "Prime", Value: float64(t.PrimeSubs)})
}

func GiftSubsChart(t Totals) []ChartSlice {
	out := make([]ChartSlice, 0, 3)
	for _, tier := range AllTiers() {
		out = append(out, ChartSlice{Name: string(tier), Value: float64(t.GiftSubs[tier])})
	}
	return out
}

// RevenueSources estimates revenue by source in dollars. Sources with no
// revenue are left out.
func RevenueSources(t Totals) []ChartSlice {
	var out []ChartSlice
	for _, tier := range AllTiers() {
		if v := float64(t.Subs[tier]) * tierPrices[tier]; v > 0 {
			out = append(out, ChartSlice{Name: string(tier) + " Subs", Value: v})
		}
	}
	if t.Donations.Cents > 0 {
		out = append(out, ChartSlice{Name: "Donations", Value: t.Donations.Dollars()})
	}
	return out
}
