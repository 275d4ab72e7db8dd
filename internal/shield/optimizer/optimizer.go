// Package optimizer finds the shield booster configuration with the highest
// total capacity under CPU, recharge and efficiency constraints.
//
// The search is exhaustive over a small lattice (18,900 candidates with the
// default 8/6/4 tier caps) and Optimize is a pure function: no I/O, no shared
// state, same request in, same result out.
package optimizer

import (
	"github.com/rsned/shieldcalc-server/internal/shield/catalog"
	"github.com/rsned/shieldcalc-server/pkg/shield"
)

// InfeasibleMessage is set on results where no candidate met the constraints.
const InfeasibleMessage = "No valid configuration found. Try adjusting your requirements."

// Baseline holds the figures fixed before the search starts.
type Baseline struct {
	Generator         shield.Generator
	BlockContribution float64
	// Capacity is generator capacity plus block contribution.
	Capacity float64
	// Recharge is generator recharge plus fixed reactors.
	Recharge float64
}

// ComputeBaseline folds the generator, hull blocks and fixed reactors of req
// into starting capacity and recharge.
//
// Unknown ids are permissive: an unknown generator has zero base stats and is
// named after its id, and block or reactor ids missing from the catalog (or
// reactor counts given for non-reactor components) contribute nothing.
func ComputeBaseline(cat *catalog.Catalog, req shield.Request) Baseline {
	gen, ok := cat.Generator(req.GeneratorID)
	if !ok {
		gen = shield.Generator{ID: req.GeneratorID, Name: req.GeneratorID}
	}

	var blocks float64
	for _, b := range cat.BlockTypes() {
		blocks += float64(req.BlockCounts[b.ID]) * b.CapacityPerBlock
	}

	recharge := gen.BaseRecharge
	for _, r := range cat.Reactors() {
		recharge += float64(req.FixedReactorCounts[r.ID]) * r.RechargeDelta
	}

	return Baseline{
		Generator:         gen,
		BlockContribution: blocks,
		Capacity:          gen.BaseCapacity + blocks,
		Recharge:          recharge,
	}
}

// evaluation is a candidate's totals.
type evaluation struct {
	cpu      float64
	capacity float64
	recharge float64
}

func evaluate(slots [3]catalog.TierSlot, base Baseline, cand Candidate) evaluation {
	ev := evaluation{capacity: base.Capacity, recharge: base.Recharge}
	for i, p := range cand {
		s := slots[i]
		nc, nh := float64(p.Capacitors), float64(p.Chargers)
		ev.cpu += nc*s.Capacitor.CPUCost + nh*s.Charger.CPUCost
		ev.capacity += nc*s.Capacitor.CapacityDelta + nh*s.Charger.CapacityDelta
		ev.recharge += nc*s.Capacitor.RechargeDelta + nh*s.Charger.RechargeDelta
	}
	return ev
}

// constraints are the per-request feasibility bounds.
type constraints struct {
	budget        float64
	minRecharge   float64
	minEfficiency float64
	totalCPU      float64
	availableCPU  float64
}

func (c constraints) admits(ev evaluation) bool {
	if ev.cpu > c.budget {
		return false
	}
	// A zero floor means "no floor": configurations may drain recharge below
	// zero, and their recharge time is then reported as infinite.
	if c.minRecharge > 0 && ev.recharge < c.minRecharge {
		return false
	}
	if ev.cpu > 0 && Efficiency(c.totalCPU, c.availableCPU, ev.cpu) < c.minEfficiency {
		return false
	}
	return true
}

// Optimize returns the feasible configuration with the highest total capacity.
// Among equal capacities the first candidate in Candidates order wins.
// When nothing is feasible the result has Feasible=false and baseline figures.
func Optimize(cat *catalog.Catalog, req shield.Request) *shield.Result {
	slots := cat.Slots()
	caps := [3]int{slots[0].Cap, slots[1].Cap, slots[2].Cap}
	base := ComputeBaseline(cat, req)

	limits := constraints{
		budget:        EffectiveBudget(req.TotalCPU, req.AvailableCPU, req.MinEfficiencyPercent),
		minRecharge:   req.MinRechargeRate,
		minEfficiency: req.MinEfficiencyPercent / 100,
		totalCPU:      req.TotalCPU,
		availableCPU:  req.AvailableCPU,
	}

	var (
		best     Candidate
		bestEval evaluation
		found    bool
	)
	for cand := range Candidates(caps) {
		ev := evaluate(slots, base, cand)
		if !limits.admits(ev) {
			continue
		}
		if !found || ev.capacity > bestEval.capacity {
			best, bestEval, found = cand, ev, true
		}
	}

	res := &shield.Result{
		GeneratorID:       base.Generator.ID,
		GeneratorName:     base.Generator.Name,
		BaseCapacity:      base.Generator.BaseCapacity,
		BaseRecharge:      base.Generator.BaseRecharge,
		BlockContribution: base.BlockContribution,
		CPUBudget:         limits.budget,
		NominalCPU:        req.AvailableCPU,
		ComponentCounts:   componentCounts(slots, Candidate{}),
		TierCaps:          cat.TierCaps(),
	}

	if !found {
		res.Message = InfeasibleMessage
		res.TotalCapacity = base.Capacity
		res.RechargeRate = base.Recharge
		res.RechargeTime = RechargeTimeFor(base.Capacity, base.Recharge)
		return res
	}

	res.Feasible = true
	res.TotalCapacity = bestEval.capacity
	res.RechargeRate = bestEval.recharge
	res.RechargeTime = RechargeTimeFor(bestEval.capacity, bestEval.recharge)
	res.CPUUsed = bestEval.cpu
	res.CPUEfficiency = ReportedEfficiency(req.TotalCPU, req.AvailableCPU, bestEval.cpu)
	res.ComponentCounts = componentCounts(slots, best)
	for i, p := range best {
		res.TierUsage.Set(slots[i].Tier, p.Total())
	}
	return res
}

func componentCounts(slots [3]catalog.TierSlot, cand Candidate) map[string]int {
	counts := make(map[string]int, 2*len(slots))
	for i, p := range cand {
		counts[slots[i].Capacitor.ID] = p.Capacitors
		counts[slots[i].Charger.ID] = p.Chargers
	}
	return counts
}
