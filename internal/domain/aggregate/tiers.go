package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Tier is a named revenue rank.
type Tier struct {
	Name      string          `json:"name"`
	Icon      string          `json:"icon"`
	Threshold decimal.Decimal `json:"threshold"`
}

// Tier names.
const (
	TierIniciante    = "Iniciante"
	TierAprendiz     = "Aprendiz"
	TierProfissional = "Profissional"
	TierMestre       = "Mestre"
	TierLendario     = "Lendário"
	TierElite        = "Elite"
	TierImortal      = "Imortal"
)

// Ascending by threshold; thresholds are inclusive lower bounds.
var tiers = []Tier{
	{Name: TierIniciante, Icon: "🌱", Threshold: decimal.NewFromInt(0)},
	{Name: TierAprendiz, Icon: "🔧", Threshold: decimal.NewFromInt(1000)},
	{Name: TierProfissional, Icon: "✂️", Threshold: decimal.NewFromInt(3000)},
	{Name: TierMestre, Icon: "🏆", Threshold: decimal.NewFromInt(5000)},
	{Name: TierLendario, Icon: "🔥", Threshold: decimal.NewFromInt(8000)},
	{Name: TierElite, Icon: "👑", Threshold: decimal.NewFromInt(10000)},
	{Name: TierImortal, Icon: "🚀", Threshold: decimal.NewFromInt(15000)},
}

// Tiers returns a copy of the tier table in ascending order.
func Tiers() []Tier {
	return append([]Tier(nil), tiers...)
}

// RankingTier returns the highest tier whose threshold does not exceed value.
// Values below zero still rank Iniciante.
func RankingTier(value decimal.Decimal) Tier {
	best := tiers[0]
	for _, t := range tiers[1:] {
		if value.GreaterThanOrEqual(t.Threshold) {
			best = t
		}
	}
	return best
}

// AchievementsForPeakMonth lists every tier unlocked by the best month in
// buckets, in ascending order. No months, no achievements.
func AchievementsForPeakMonth(buckets map[string]decimal.Decimal) []string {
	_, peak, ok := PeakMonth(buckets)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(tiers))
	for _, t := range tiers {
		if t.Threshold.LessThanOrEqual(peak) {
			out = append(out, t.Name)
		}
	}
	return out
}

// PeakMonth returns the month with the highest revenue. Ties go to the
// earliest month so the answer does not depend on map order.
func PeakMonth(buckets map[string]decimal.Decimal) (string, decimal.Decimal, bool) {
	if len(buckets) == 0 {
		return "", decimal.Zero, false
	}
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	month, peak := keys[0], buckets[keys[0]]
	for _, k := range keys[1:] {
		if buckets[k].GreaterThan(peak) {
			month, peak = k, buckets[k]
		}
	}
	return month, peak, true
}
