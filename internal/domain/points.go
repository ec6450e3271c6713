package domain

import "time"

// PointSource names what produced a point grant.
type PointSource string

const (
	SourceServe    PointSource = "serve"
	SourceResponse PointSource = "response"
	SourceReminder PointSource = "reminder"
	SourceHealth   PointSource = "health"
	SourceMatch    PointSource = "match"
	SourceCheer    PointSource = "cheer"
)

// PointsEntry is one append-only row of the points ledger.
type PointsEntry struct {
	ID          int64       `json:"id"`
	User        Participant `json:"user"`
	Source      PointSource `json:"source"`
	Points      int         `json:"points"`
	Description string      `json:"description"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Tier is a label derived from a cumulative point total.
type Tier string

const (
	TierRookie   Tier = "rookie"
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierChampion Tier = "champion"
)

// tierThresholds are inclusive lower bounds, highest first.
var tierThresholds = []struct {
	min  int
	tier Tier
}{
	{1000, TierChampion},
	{500, TierGold},
	{300, TierSilver},
	{100, TierBronze},
	{0, TierRookie},
}

// TierFor maps a point total to its tier. Negative totals are rookies.
func TierFor(total int) Tier {
	for _, t := range tierThresholds {
		if total >= t.min {
			return t.tier
		}
	}
	return TierRookie
}

// Standing is a participant's total and tier over a window.
type Standing struct {
	User  Participant `json:"user"`
	Total int         `json:"total"`
	Tier  Tier        `json:"tier"`
}
