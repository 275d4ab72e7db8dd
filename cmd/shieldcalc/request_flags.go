package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rsned/shieldcalc-server/internal/shield/optimizer"
	"github.com/rsned/shieldcalc-server/pkg/shield"
)

// requestFlags binds the optimization request to command flags.
type requestFlags struct {
	generator     string
	totalCPU      float64
	availableCPU  float64
	smallFusion   int
	largeFusion   int
	reactors      map[string]int
	steel         int
	hardenedSteel int
	combatSteel   int
	xeno          int
	blocks        map[string]int
	minEfficiency float64
	minRecharge   float64
}

func (f *requestFlags) bind(cmd *cobra.Command, withGenerator bool) {
	fl := cmd.Flags()
	if withGenerator {
		fl.StringVarP(&f.generator, "generator", "g", "regular", "Shield generator id")
	}
	fl.Float64Var(&f.totalCPU, "total-cpu", 0, "Total ship CPU")
	fl.Float64Var(&f.availableCPU, "available-cpu", 0, "CPU available for boosters (default: half of --total-cpu)")
	fl.IntVar(&f.smallFusion, "small-fusion", 0, "Small shield fusion reactors installed")
	fl.IntVar(&f.largeFusion, "large-fusion", 0, "Large shield fusion reactors installed")
	fl.StringToIntVar(&f.reactors, "reactor", nil, "Other fixed reactors as id=count")
	fl.IntVar(&f.steel, "steel", 0, "Steel blocks")
	fl.IntVar(&f.hardenedSteel, "hardened-steel", 0, "Hardened steel blocks")
	fl.IntVar(&f.combatSteel, "combat-steel", 0, "Combat steel blocks")
	fl.IntVar(&f.xeno, "xeno", 0, "Xeno steel blocks")
	fl.StringToIntVar(&f.blocks, "blocks", nil, "Other hull blocks as id=count")
	fl.Float64Var(&f.minEfficiency, "min-efficiency", 0, "Minimum CPU efficiency percent (0 disables)")
	fl.Float64Var(&f.minRecharge, "min-recharge", 0, "Minimum recharge per second (0 disables)")
}

// request builds the Request. When --available-cpu is not given it suggests
// half of the total and returns a note saying so.
func (f *requestFlags) request(cmd *cobra.Command) (shield.Request, string) {
	req := shield.Request{
		GeneratorID:          f.generator,
		TotalCPU:             f.totalCPU,
		AvailableCPU:         f.availableCPU,
		FixedReactorCounts:   map[string]int{},
		BlockCounts:          map[string]int{},
		MinEfficiencyPercent: f.minEfficiency,
		MinRechargeRate:      f.minRecharge,
	}

	var note string
	if !cmd.Flags().Changed("available-cpu") && f.totalCPU > 0 {
		req.AvailableCPU = optimizer.SuggestedAvailableCPU(f.totalCPU)
		note = fmt.Sprintf("available CPU not given, using %v (half of total)", req.AvailableCPU)
	}

	for id, n := range f.reactors {
		req.FixedReactorCounts[id] = n
	}
	addCount(req.FixedReactorCounts, "small_fusion", f.smallFusion)
	addCount(req.FixedReactorCounts, "large_fusion", f.largeFusion)

	for id, n := range f.blocks {
		req.BlockCounts[id] = n
	}
	addCount(req.BlockCounts, "steel", f.steel)
	addCount(req.BlockCounts, "hardenedSteel", f.hardenedSteel)
	addCount(req.BlockCounts, "combatSteel", f.combatSteel)
	addCount(req.BlockCounts, "xeno", f.xeno)

	return req, note
}

func addCount(m map[string]int, id string, n int) {
	if n != 0 {
		m[id] += n
	}
}
