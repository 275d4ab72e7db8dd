// Package shield contains the core types for the shield booster optimizer.
package shield

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ============================================
// CATALOG TYPES
// ============================================

// Tier groups capacitors and chargers under a shared count cap.
type Tier string

const (
	TierBasic    Tier = "basic"
	TierImproved Tier = "improved"
	TierAdvanced Tier = "advanced"
	TierUntiered Tier = "untiered"
)

// SearchTiers returns the tiers searched by the optimizer, in iteration order.
func SearchTiers() []Tier {
	return []Tier{TierBasic, TierImproved, TierAdvanced}
}

// IsValid checks if the tier is a known tier.
func (t Tier) IsValid() bool {
	switch t {
	case TierBasic, TierImproved, TierAdvanced, TierUntiered:
		return true
	}
	return false
}

// ComponentKind says how a component takes part in a configuration.
type ComponentKind string

const (
	KindCapacitor ComponentKind = "capacitor"
	KindCharger   ComponentKind = "charger"
	KindReactor   ComponentKind = "reactor"
)

// IsValid checks if the kind is a known component kind.
func (k ComponentKind) IsValid() bool {
	switch k {
	case KindCapacitor, KindCharger, KindReactor:
		return true
	}
	return false
}

// Generator is a shield generator with its base stats.
type Generator struct {
	ID           string  `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	BaseCapacity float64 `json:"base_capacity" yaml:"base_capacity"`
	BaseRecharge float64 `json:"base_recharge" yaml:"base_recharge"`
}

// Component is a capacitor, charger or reactor.
// Capacitors and chargers are searched; reactors are supplied as fixed counts.
type Component struct {
	ID            string        `json:"id" yaml:"id"`
	Name          string        `json:"name" yaml:"name"`
	Kind          ComponentKind `json:"kind" yaml:"kind"`
	Tier          Tier          `json:"tier" yaml:"tier"`
	CPUCost       float64       `json:"cpu_cost" yaml:"cpu_cost"`
	CapacityDelta float64       `json:"capacity_delta" yaml:"capacity_delta"`
	RechargeDelta float64       `json:"recharge_delta" yaml:"recharge_delta"`
	TierCap       int           `json:"tier_cap" yaml:"tier_cap"`
}

// BlockType is a hull block that adds shield capacity per block.
type BlockType struct {
	ID               string  `json:"id" yaml:"id"`
	Name             string  `json:"name" yaml:"name"`
	CapacityPerBlock float64 `json:"capacity_per_block" yaml:"capacity_per_block"`
}

// ============================================
// REQUEST TYPES
// ============================================

// Sentinel errors shared by the engine and its surfaces.
var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrUnknownGenerator = errors.New("unknown generator")
	ErrUnknownComponent = errors.New("unknown component")
	ErrSettingsNotFound = errors.New("settings not found")
)

// Request is the input for one optimization.
type Request struct {
	GeneratorID          string         `json:"generator_id"`
	TotalCPU             float64        `json:"total_cpu"`
	AvailableCPU         float64        `json:"available_cpu"`
	FixedReactorCounts   map[string]int `json:"fixed_reactor_counts,omitempty"`
	BlockCounts          map[string]int `json:"block_counts,omitempty"`
	MinEfficiencyPercent float64        `json:"min_efficiency_percent"`
	MinRechargeRate      float64        `json:"min_recharge_rate"`
}

// Validate checks that every numeric field is a finite non-negative number
// and that the efficiency floor is a percentage.
func (r Request) Validate() error {
	var errs []error

	if r.GeneratorID == "" {
		errs = append(errs, errors.New("generator_id is required"))
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"total_cpu", r.TotalCPU},
		{"available_cpu", r.AvailableCPU},
		{"min_efficiency_percent", r.MinEfficiencyPercent},
		{"min_recharge_rate", r.MinRechargeRate},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
			errs = append(errs, fmt.Errorf("%s must be a non-negative number, got %v", f.name, f.value))
		}
	}
	if r.MinEfficiencyPercent > 100 {
		errs = append(errs, fmt.Errorf("min_efficiency_percent must be at most 100, got %v", r.MinEfficiencyPercent))
	}
	for id, n := range r.FixedReactorCounts {
		if n < 0 {
			errs = append(errs, fmt.Errorf("fixed_reactor_counts[%s] must be non-negative, got %d", id, n))
		}
	}
	for id, n := range r.BlockCounts {
		if n < 0 {
			errs = append(errs, fmt.Errorf("block_counts[%s] must be non-negative, got %d", id, n))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, errors.Join(errs...))
	}
	return nil
}

// Clone returns a deep copy of the request so callers can't share its maps.
func (r Request) Clone() Request {
	c := r
	c.FixedReactorCounts = cloneCounts(r.FixedReactorCounts)
	c.BlockCounts = cloneCounts(r.BlockCounts)
	return c
}

func cloneCounts(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ============================================
// RESULT TYPES
// ============================================

// TierUsage holds the number of searched components used per tier.
type TierUsage struct {
	Basic    int `json:"basic"`
	Improved int `json:"improved"`
	Advanced int `json:"advanced"`
}

// Get returns the usage for a tier. Untiered components always report 0.
func (u TierUsage) Get(t Tier) int {
	switch t {
	case TierBasic:
		return u.Basic
	case TierImproved:
		return u.Improved
	case TierAdvanced:
		return u.Advanced
	}
	return 0
}

// Set stores the usage for a tier. Untiered is ignored.
func (u *TierUsage) Set(t Tier, n int) {
	switch t {
	case TierBasic:
		u.Basic = n
	case TierImproved:
		u.Improved = n
	case TierAdvanced:
		u.Advanced = n
	}
}

// RechargeTime is the time to refill an empty shield.
// Infinite is set when the recharge rate is zero or negative.
type RechargeTime struct {
	Seconds  float64
	Infinite bool
}

// InfiniteRechargeTime is the sentinel for shields that never refill.
var InfiniteRechargeTime = RechargeTime{Infinite: true}

type rechargeTimeJSON struct {
	Seconds  *float64 `json:"seconds"`
	Infinite bool     `json:"infinite"`
}

// MarshalJSON encodes an infinite recharge time as {"seconds":null,"infinite":true}
// since JSON has no representation for +Inf.
func (rt RechargeTime) MarshalJSON() ([]byte, error) {
	out := rechargeTimeJSON{Infinite: rt.Infinite}
	if !rt.Infinite {
		s := rt.Seconds
		out.Seconds = &s
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (rt *RechargeTime) UnmarshalJSON(data []byte) error {
	var in rechargeTimeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	rt.Infinite = in.Infinite || in.Seconds == nil
	rt.Seconds = 0
	if !rt.Infinite {
		rt.Seconds = *in.Seconds
	}
	return nil
}

// Result is the output of one optimization.
//
// When Feasible is false the record carries baseline figures only: the
// generator and blocks for capacity, generator plus fixed reactors for
// recharge, and zero component usage.
type Result struct {
	Feasible          bool           `json:"feasible"`
	Message           string         `json:"message,omitempty"`
	GeneratorID       string         `json:"generator_id"`
	GeneratorName     string         `json:"generator_name"`
	BaseCapacity      float64        `json:"base_capacity"`
	BaseRecharge      float64        `json:"base_recharge"`
	BlockContribution float64        `json:"block_contribution"`
	TotalCapacity     float64        `json:"total_capacity"`
	RechargeRate      float64        `json:"recharge_rate"`
	RechargeTime      RechargeTime   `json:"recharge_time"`
	CPUUsed           float64        `json:"cpu_used"`
	CPUBudget         float64        `json:"cpu_budget"`
	NominalCPU        float64        `json:"nominal_cpu"`
	CPUEfficiency     float64        `json:"cpu_efficiency"`
	ComponentCounts   map[string]int `json:"component_counts"`
	TierUsage         TierUsage      `json:"tier_usage"`
	TierCaps          TierUsage      `json:"tier_caps"`
}

// Clone returns a deep copy of the result.
func (r *Result) Clone() *Result {
	c := *r
	c.ComponentCounts = cloneCounts(r.ComponentCounts)
	return &c
}

// BudgetRelaxed reports whether the efficiency floor unlocked extra CPU.
func (r *Result) BudgetRelaxed() bool {
	return r.CPUBudget > r.NominalCPU
}

// ============================================
// COMPARISON TYPES
// ============================================

// GeneratorComparison ranks one generator for a shared request.
type GeneratorComparison struct {
	Rank   int     `json:"rank"`
	Result *Result `json:"result"`
}

// CompareResponse is the output for generator comparison.
type CompareResponse struct {
	Request     Request               `json:"request"`
	Comparisons []GeneratorComparison `json:"comparisons"`
}

// ============================================
// SAVED SETTINGS TYPES
// ============================================

// SavedSettings is a named request persisted between sessions.
type SavedSettings struct {
	Name      string  `json:"name"`
	Request   Request `json:"request"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}

// ComponentDetails describes a catalog component and where it sits in the search.
type ComponentDetails struct {
	Component Component `json:"component"`
	Searched  bool      `json:"searched"`
}

// CatalogListing is the output for catalog listing.
type CatalogListing struct {
	Generators []Generator `json:"generators"`
	Components []Component `json:"components"`
	BlockTypes []BlockType `json:"block_types"`
}
