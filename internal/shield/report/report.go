// Package report renders optimizer results for people and spreadsheets.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gocarina/gocsv"

	"github.com/rsned/shieldcalc-server/internal/shield/catalog"
	"github.com/rsned/shieldcalc-server/internal/shield/optimizer"
	"github.com/rsned/shieldcalc-server/pkg/shield"
)

// BreakdownRow is one selected booster and what it contributes.
type BreakdownRow struct {
	ComponentID string      `csv:"component_id" json:"component_id"`
	Name        string      `csv:"name" json:"name"`
	Tier        shield.Tier `csv:"tier" json:"tier"`
	Count       int         `csv:"count" json:"count"`
	CPU         float64     `csv:"cpu" json:"cpu"`
	Capacity    float64     `csv:"capacity" json:"capacity"`
	Recharge    float64     `csv:"recharge" json:"recharge"`
}

// Breakdown lists the boosters used by res in catalog order, skipping unused ones.
func Breakdown(cat *catalog.Catalog, res *shield.Result) []BreakdownRow {
	var rows []BreakdownRow
	for _, comp := range cat.Components() {
		n := res.ComponentCounts[comp.ID]
		if n == 0 || comp.Kind == shield.KindReactor {
			continue
		}
		count := float64(n)
		rows = append(rows, BreakdownRow{
			ComponentID: comp.ID,
			Name:        comp.Name,
			Tier:        comp.Tier,
			Count:       n,
			CPU:         count * comp.CPUCost,
			Capacity:    count * comp.CapacityDelta,
			Recharge:    count * comp.RechargeDelta,
		})
	}
	return rows
}

// ComparisonRow is one ranked generator in a comparison export.
type ComparisonRow struct {
	Rank          int     `csv:"rank"`
	GeneratorID   string  `csv:"generator_id"`
	GeneratorName string  `csv:"generator_name"`
	Feasible      bool    `csv:"feasible"`
	TotalCapacity float64 `csv:"total_capacity"`
	RechargeRate  float64 `csv:"recharge_rate"`
	RechargeTime  string  `csv:"recharge_time"`
	CPUUsed       float64 `csv:"cpu_used"`
	CPUBudget     float64 `csv:"cpu_budget"`
	CPUEfficiency float64 `csv:"cpu_efficiency"`
}

// ComparisonRows flattens a comparison for export.
func ComparisonRows(resp *shield.CompareResponse) []ComparisonRow {
	rows := make([]ComparisonRow, 0, len(resp.Comparisons))
	for _, c := range resp.Comparisons {
		r := c.Result
		rows = append(rows, ComparisonRow{
			Rank:          c.Rank,
			GeneratorID:   r.GeneratorID,
			GeneratorName: r.GeneratorName,
			Feasible:      r.Feasible,
			TotalCapacity: r.TotalCapacity,
			RechargeRate:  r.RechargeRate,
			RechargeTime:  optimizer.FormatRechargeTime(r.RechargeTime),
			CPUUsed:       r.CPUUsed,
			CPUBudget:     r.CPUBudget,
			CPUEfficiency: r.CPUEfficiency,
		})
	}
	return rows
}

// WriteComparisonCSV writes the ranked comparison as CSV with a header row.
func WriteComparisonCSV(w io.Writer, resp *shield.CompareResponse) error {
	rows := ComparisonRows(resp)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("writing comparison csv: %w", err)
	}
	return nil
}

// WriteBreakdownCSV writes the booster breakdown of res as CSV.
func WriteBreakdownCSV(w io.Writer, cat *catalog.Catalog, res *shield.Result) error {
	rows := Breakdown(cat, res)
	if rows == nil {
		rows = []BreakdownRow{}
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("writing breakdown csv: %w", err)
	}
	return nil
}

// FormatNumber renders v rounded to an integer with thousands separators.
func FormatNumber(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

// FormatSigned is FormatNumber with an explicit sign.
func FormatSigned(v float64) string {
	if v > 0 {
		return "+" + FormatNumber(v)
	}
	return FormatNumber(v)
}

// FormatPercent renders a 0..1 ratio as a percentage with two decimals.
func FormatPercent(ratio float64) string {
	return humanize.CommafWithDigits(math.Round(ratio*10000)/100, 2) + "%"
}

// WriteResult writes a human-readable summary of res.
// minEfficiencyPercent is only used to label a relaxed CPU budget.
func WriteResult(w io.Writer, cat *catalog.Catalog, res *shield.Result, minEfficiencyPercent float64) error {
	var b strings.Builder

	if !res.Feasible {
		fmt.Fprintf(&b, "%s\n\n", res.Message)
	}

	fmt.Fprintf(&b, "Generator:           %s\n", res.GeneratorName)
	fmt.Fprintf(&b, "Base capacity:       %s\n", FormatNumber(res.BaseCapacity))
	fmt.Fprintf(&b, "Base recharge:       %s/sec\n", FormatNumber(res.BaseRecharge))
	fmt.Fprintf(&b, "Block contribution:  %s\n", FormatNumber(res.BlockContribution))
	fmt.Fprintf(&b, "Total capacity:      %s\n", FormatNumber(res.TotalCapacity))
	fmt.Fprintf(&b, "Recharge rate:       %s/sec\n", FormatNumber(res.RechargeRate))
	fmt.Fprintf(&b, "Recharge time:       %s\n", optimizer.FormatRechargeTime(res.RechargeTime))
	fmt.Fprintf(&b, "CPU efficiency:      %s\n", FormatPercent(res.CPUEfficiency))

	cpu := fmt.Sprintf("%s / %s", FormatNumber(res.CPUUsed), FormatNumber(res.CPUBudget))
	if res.BudgetRelaxed() {
		cpu += fmt.Sprintf(" (adjusted for %s%% efficiency)", humanize.Ftoa(minEfficiencyPercent))
	}
	fmt.Fprintf(&b, "CPU used:            %s\n", cpu)

	fmt.Fprintf(&b, "Tier usage:          basic %d/%d, improved %d/%d, advanced %d/%d\n",
		res.TierUsage.Basic, res.TierCaps.Basic,
		res.TierUsage.Improved, res.TierCaps.Improved,
		res.TierUsage.Advanced, res.TierCaps.Advanced,
	)

	if rows := Breakdown(cat, res); len(rows) > 0 {
		b.WriteString("\nBoosters:\n")
		for _, r := range rows {
			fmt.Fprintf(&b, "  %dx %-28s %s capacity, %s/sec recharge, %s CPU\n",
				r.Count, r.Name, FormatSigned(r.Capacity), FormatSigned(r.Recharge), FormatNumber(r.CPU))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteComparison writes a ranked comparison table.
func WriteComparison(w io.Writer, resp *shield.CompareResponse) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%-4s %-28s %12s %12s %10s %8s\n", "RANK", "GENERATOR", "CAPACITY", "RECHARGE", "TIME", "EFF")
	for _, r := range ComparisonRows(resp) {
		name := r.GeneratorName
		if !r.Feasible {
			name += " (infeasible)"
		}
		fmt.Fprintf(&b, "%-4d %-28s %12s %12s %10s %8s\n",
			r.Rank, name, FormatNumber(r.TotalCapacity), FormatNumber(r.RechargeRate),
			r.RechargeTime, FormatPercent(r.CPUEfficiency))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
