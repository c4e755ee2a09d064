package core

import (
	"math/rand"
	"reflect"
	"testing"
	"time"
)

func sampleActivities() []Activity {
	ts := time.Date(2024, 3, 5, 20, 0, 0, 0, time.UTC)
	return []Activity{
		{ID: "1", Timestamp: ts, Username: "a", Kind: KindSub, Tier: Tier1, Count: 2},
		{ID: "2", Timestamp: ts, Username: "b", Kind: KindGiftSub, Tier: Tier1, Count: 5},
		{ID: "3", Timestamp: ts, Username: "c", Kind: KindDonation, Amount: Money{Cents: 1550}},
		{ID: "4", Timestamp: ts, Username: "d", Kind: KindPrimeSub},
		{ID: "5", Timestamp: ts, Username: "e", Kind: KindSub, Tier: Tier3, Count: 1},
		{ID: "6", Timestamp: ts, Username: "f", Kind: "bits"},
	}
}

func TestAggregate(t *testing.T) {
	got := Aggregate(sampleActivities())
	if got.Subs[Tier1] != 2 || got.Subs[Tier2] != 0 || got.Subs[Tier3] != 1 {
		t.Fatalf("subs = %v", got.Subs)
	}
	if got.GiftSubs[Tier1] != 5 || got.GiftSubs.Total() != 5 {
		t.Fatalf("gift subs = %v", got.GiftSubs)
	}
	if got.Donations.Cents != 1550 {
		t.Fatalf("donations = %d", got.Donations.Cents)
	}
	if got.PrimeSubs != 1 {
		t.Fatalf("prime = %d", got.PrimeSubs)
	}
	if got.TotalSubs() != 4 {
		t.Fatalf("total subs = %d", got.TotalSubs())
	}
}

func TestAggregateEmpty(t *testing.T) {
	got := Aggregate(nil)
	if !got.IsEmpty() {
		t.Fatalf("expected empty totals, got %+v", got)
	}
	for _, tier := range AllTiers() {
		if _, ok := got.Subs[tier]; !ok {
			t.Fatalf("tier %s missing from subs", tier)
		}
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	acts := sampleActivities()
	want := Aggregate(acts)
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		r.Shuffle(len(acts), func(a, b int) { acts[a], acts[b] = acts[b], acts[a] })
		got := Aggregate(acts)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("shuffle %d changed totals: %+v", i, got)
		}
	}
}

func TestMonthSummary(t *testing.T) {
	s := MonthSummary(2024, 2, sampleActivities())
	if s.Period != "2024-03 (March)" {
		t.Fatalf("period = %q", s.Period)
	}
	if len(s.Breakdown) != 5 {
		t.Fatalf("breakdown rows = %d", len(s.Breakdown))
	}
	if r := s.Breakdown[0]; r.Name != "Tier 1" || r.Subs != 2 || r.GiftSubs != 5 {
		t.Fatalf("tier 1 row = %+v", r)
	}
	if r := s.Breakdown[3]; r.Name != "Prime Subs" || r.Subs != 1 {
		t.Fatalf("prime row = %+v", r)
	}
	if r := s.Breakdown[4]; r.Name != "Donations Value" || r.Amount == nil || r.Amount.Cents != 1550 {
		t.Fatalf("donations row = %+v", r)
	}
}

func TestYearSummary(t *testing.T) {
	march := Aggregate(sampleActivities())
	may := Aggregate([]Activity{{Kind: KindDonation, Username: "x", Amount: Money{Cents: 450}}})
	s := YearSummary(2024, map[int]Totals{4: may, 2: march})
	if s.Period != "2024" {
		t.Fatalf("period = %q", s.Period)
	}
	if s.Donations.Cents != 2000 {
		t.Fatalf("donations = %d", s.Donations.Cents)
	}
	if len(s.Trend) != 2 || s.Trend[0].Name != "March" || s.Trend[1].Name != "May" {
		t.Fatalf("trend = %+v", s.Trend)
	}
	if s.Trend[0].TotalSubs != 4 || s.Trend[0].TotalGiftSubs != 5 {
		t.Fatalf("march trend = %+v", s.Trend[0])
	}
}

func TestCharts(t *testing.T) {
	totals := Aggregate(sampleActivities())

	subs := SubsChart(totals)
	if len(subs) != 4 || subs[3].Name != "Prime" || subs[3].Value != 1 {
		t.Fatalf("subs chart = %+v", subs)
	}
	if gifts := GiftSubsChart(totals); len(gifts) != 3 || gifts[0].Value != 5 {
		t.Fatalf("gift chart = %+v", gifts)
	}

	rev := RevenueSources(totals)
	want := []ChartSlice{
		{Name: "Tier 1 Subs", Value: 10},
		{Name: "Tier 3 Subs", Value: 25},
		{Name: "Donations", Value: 15.5},
	}
	if len(rev) != len(want) {
		t.Fatalf("revenue = %+v", rev)
	}
	for i := range want {
		if rev[i] != want[i] {
			t.Fatalf("revenue[%d] = %+v, want %+v", i, rev[i], want[i])
		}
	}
	if got := RevenueSources(NewTotals()); len(got) != 0 {
		t.Fatalf("expected no slices, got %+v", got)
	}
}
