package assessment

import (
	"fmt"
	"math"
)

type Tier string

const (
	TierLow    Tier = "LOW"
	TierMedium Tier = "MEDIUM"
	TierHigh   Tier = "HIGH"
)

const (
	mediumThreshold = 0.3
	highThreshold   = 0.7
)

var recommendations = map[Tier]string{
	TierLow:    "Maintain healthy lifestyle, routine annual check-ups.",
	TierMedium: "Enhanced monitoring; schedule clinician follow-up within weeks.",
	TierHigh:   "Urgent specialist referral; do not delay.",
}

// Recommendation returns the fixed guidance text for a tier.
func (t Tier) Recommendation() string {
	return recommendations[t]
}

// ResolveTier maps a positive-class probability onto [0,0.3) LOW,
// [0.3,0.7) MEDIUM and [0.7,1] HIGH. Boundaries belong to the higher tier.
func ResolveTier(probability float64) (Tier, string, error) {
	if math.IsNaN(probability) || probability < 0 || probability > 1 {
		return "", "", fmt.Errorf("%w: %v is outside [0,1]", ErrInvalidProbability, probability)
	}

	tier := TierHigh
	switch {
	case probability < mediumThreshold:
		tier = TierLow
	case probability < highThreshold:
		tier = TierMedium
	}
	return tier, tier.Recommendation(), nil
}
