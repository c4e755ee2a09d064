package core

// TierCounts holds one count per subscription tier.
type TierCounts map[Tier]int

// Totals is the aggregate of a set of activities.
type Totals struct {
	Subs      TierCounts `json:"subs"`
	GiftSubs  TierCounts `json:"giftSubs"`
	Donations Money      `json:"donations"`
	PrimeSubs int        `json:"primeSubs"`
}

// NewTierCounts returns counts with every tier present at zero.
func NewTierCounts() TierCounts {
	return TierCounts{Tier1: 0, Tier2: 0, Tier3: 0}
}

func (c TierCounts) Total() int {
	n := 0
	for _, t := range AllTiers() {
		n += c[t]
	}
	return n
}

func NewTotals() Totals {
	return Totals{Subs: NewTierCounts(), GiftSubs: NewTierCounts()}
}

// Aggregate folds activities into totals. The result does not depend on
// the order of the input.
func Aggregate(activities []Activity) Totals {
	t := NewTotals()
	for _, a := range activities {
		switch a.Kind {
		case KindSub:
			if a.Tier.Valid() {
				t.Subs[a.Tier] += a.Count
			}
		case KindGiftSub:
			if a.Tier.Valid() {
				t.GiftSubs[a.Tier] += a.Count
			}
		case KindDonation:
			t.Donations = t.Donations.Add(a.Amount)
		case KindPrimeSub:
			t.PrimeSubs++
		default:
			// Unknown kinds only reach here from stored data; they carry
			// no monetization value.
		}
	}
	return t
}

// Add returns the element-wise sum of t and o.
func (t Totals) Add(o Totals) Totals {
	out := NewTotals()
	for _, tier := range AllTiers() {
		out.Subs[tier] = t.Subs[tier] + o.Subs[tier]
		out.GiftSubs[tier] = t.GiftSubs[tier] + o.GiftSubs[tier]
	}
	out.Donations = t.Donations.Add(o.Donations)
	out.PrimeSubs = t.PrimeSubs + o.PrimeSubs
	return out
}

// TotalSubs counts paid subs across tiers plus prime subs.
func (t Totals) TotalSubs() int {
	return t.Subs.Total() + t.PrimeSubs
}

func (t Totals) TotalGiftSubs() int {
	return t.GiftSubs.Total()
}

// IsEmpty reports whether nothing was aggregated.
func (t Totals) IsEmpty() bool {
	return t.Subs.Total() == 0 && t.GiftSubs.Total() == 0 && t.Donations.Cents == 0 && t.PrimeSubs == 0
}
