// Package domain contains the asset catalog domain model.
package domain

import (
	"fmt"
	"strings"
)

// Tier is an asset liquidity tier as tagged by the directory service.
type Tier string

const (
	TierVeryHigh Tier = "very_high"
	TierHigh     Tier = "high"
	TierMedium   Tier = "medium"
)

// ParseTier validates a configured tier name.
func ParseTier(s string) (Tier, error) {
	switch Tier(strings.ToLower(s)) {
	case TierVeryHigh:
		return TierVeryHigh, nil
	case TierHigh:
		return TierHigh, nil
	case TierMedium:
		return TierMedium, nil
	default:
		return "", fmt.Errorf("unknown liquidity tier %q", s)
	}
}

// Tag returns the directory query tag for the tier.
func (t Tier) Tag() string {
	return "asset:liquidity:" + string(t)
}

// Condition builds the directory query condition for a set of tiers.
// Tiers are OR-ed, so an asset qualifies when it carries any of the tags.
func Condition(tiers []Tier) string {
	tags := make([]string, 0, len(tiers))
	for _, t := range tiers {
		tags = append(tags, t.Tag())
	}
	return strings.Join(tags, " | ")
}
