package ranking

// Tier is the percentile badge derived from a final rank and cohort size.
type Tier string

const (
	TierDiamond  Tier = "diamond"
	TierPlatinum Tier = "platinum"
	TierGold     Tier = "gold"
	TierSilver   Tier = "silver"
	TierBronze   Tier = "bronze"
)

// TierThresholds are the minimum percentiles for each tier, evaluated
// top-down with first match winning. Overridable through configuration to
// match the weight-config pattern.
type TierThresholds struct {
	Diamond  float64
	Platinum float64
	Gold     float64
	Silver   float64
}

func DefaultTierThresholds() TierThresholds {
	return TierThresholds{
		Diamond:  0.95,
		Platinum: 0.85,
		Gold:     0.70,
		Silver:   0.50,
	}
}

// Classify maps a 1-based rank within a cohort of totalUsers to a tier.
// Rank 1 is the best and yields percentile 1.0, so a cohort of one user
// is diamond. Boundary percentiles resolve to the higher tier.
func (t TierThresholds) Classify(rank, totalUsers int) Tier {
	if totalUsers <= 0 || rank <= 0 || rank > totalUsers {
		return TierBronze
	}

	percentile := float64(totalUsers-rank+1) / float64(totalUsers)
	switch {
	case percentile >= t.Diamond:
		return TierDiamond
	case percentile >= t.Platinum:
		return TierPlatinum
	case percentile >= t.Gold:
		return TierGold
	case percentile >= t.Silver:
		return TierSilver
	default:
		return TierBronze
	}
}
