// Package fidelity classifies clients into discount tiers by how many
// rentals they have completed with the agency.
package fidelity

import (
	"fmt"
	"sort"

	"github.com/nurpe/fleet-rental/internal/model"
)

// Threshold assigns Tier and Discount to clients with at least MinRentals rentals.
type Threshold struct {
	MinRentals int
	Tier       model.FidelityTier
	Discount   float64
}

type Policy struct {
	thresholds []Threshold // highest MinRentals first
}

func DefaultThresholds() []Threshold {
	return []Threshold{
		{MinRentals: 3, Tier: model.FidelityTierDiscount10, Discount: 0.10},
		{MinRentals: 7, Tier: model.FidelityTierDiscount20, Discount: 0.20},
		{MinRentals: 10, Tier: model.FidelityTierVIP, Discount: 0.30},
	}
}

func DefaultPolicy() *Policy {
	p, _ := NewPolicy(DefaultThresholds())
	return p
}

// NewPolicy validates that thresholds are distinct, positive and that the
// discount never decreases as the rental count grows.
func NewPolicy(thresholds []Threshold) (*Policy, error) {
	sorted := make([]Threshold, len(thresholds))
	copy(sorted, thresholds)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinRentals > sorted[j].MinRentals
	})

	seen := make(map[model.FidelityTier]struct{}, len(sorted))
	for i, t := range sorted {
		if t.MinRentals <= 0 {
			return nil, fmt.Errorf("fidelity threshold for %s must be positive", t.Tier)
		}
		if t.Discount < 0 || t.Discount >= 1 {
			return nil, fmt.Errorf("fidelity discount for %s must be in [0, 1)", t.Tier)
		}
		if t.Tier == "" || t.Tier == model.FidelityTierNone {
			return nil, fmt.Errorf("fidelity threshold %d has no tier", t.MinRentals)
		}
		if _, dup := seen[t.Tier]; dup {
			return nil, fmt.Errorf("fidelity tier %s declared twice", t.Tier)
		}
		seen[t.Tier] = struct{}{}
		if i > 0 {
			prev := sorted[i-1]
			if prev.MinRentals == t.MinRentals {
				return nil, fmt.Errorf("fidelity thresholds overlap at %d rentals", t.MinRentals)
			}
			if prev.Discount < t.Discount {
				return nil, fmt.Errorf("fidelity discount for %s exceeds %s", t.Tier, prev.Tier)
			}
		}
	}
	return &Policy{thresholds: sorted}, nil
}

// Tier returns the tier for a cumulative rental count.
func (p *Policy) Tier(rentalCount int) model.FidelityTier {
	for _, t := range p.thresholds {
		if rentalCount >= t.MinRentals {
			return t.Tier
		}
	}
	return model.FidelityTierNone
}

// Discount returns the discount fraction granted by a tier, zero for
// NONE and for tiers the policy does not know.
func (p *Policy) Discount(tier model.FidelityTier) float64 {
	for _, t := range p.thresholds {
		if t.Tier == tier {
			return t.Discount
		}
	}
	return 0
}

func (p *Policy) Thresholds() []Threshold {
	out := make([]Threshold, len(p.thresholds))
	copy(out, p.thresholds)
	return out
}

var namedTiers = []model.FidelityTier{
	model.FidelityTierDiscount10,
	model.FidelityTierDiscount20,
	model.FidelityTierVIP,
}

// FromLists pairs ascending rental thresholds with discounts and names them
// DISCOUNT_10, DISCOUNT_20 and VIP in that order.
func FromLists(minRentals []int, discounts []float64) (*Policy, error) {
	if len(minRentals) != len(discounts) {
		return nil, fmt.Errorf("got %d fidelity thresholds and %d discounts", len(minRentals), len(discounts))
	}
	if len(minRentals) > len(namedTiers) {
		return nil, fmt.Errorf("at most %d fidelity thresholds are supported", len(namedTiers))
	}
	thresholds := make([]Threshold, len(minRentals))
	for i := range minRentals {
		if i > 0 && minRentals[i] <= minRentals[i-1] {
			return nil, fmt.Errorf("fidelity thresholds must be ascending")
		}
		thresholds[i] = Threshold{MinRentals: minRentals[i], Tier: namedTiers[i], Discount: discounts[i]}
	}
	return NewPolicy(thresholds)
}
