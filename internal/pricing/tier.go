// AngelaMos | 2026
// tier.go

// Package pricing is the static table of plans: which tiers exist, what each
// one costs, and which features and monthly quotas it grants.
package pricing

import (
	"fmt"

	"github.com/carterperez-dev/jobtracker/internal/core"
)

type Tier string

const (
	TierFree   Tier = "free"
	TierPro    Tier = "pro"
	TierCustom Tier = "custom"
)

// Tiers returns every tier in display order.
func Tiers() []Tier {
	return []Tier{TierFree, TierPro, TierCustom}
}

func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if !t.Valid() {
		return "", fmt.Errorf("parse tier %q: %w", s, core.ErrInvalidInput)
	}
	return t, nil
}

func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierPro, TierCustom:
		return true
	}
	return false
}

func (t Tier) IsPaid() bool {
	return t == TierPro || t == TierCustom
}

func (t Tier) String() string {
	return string(t)
}
