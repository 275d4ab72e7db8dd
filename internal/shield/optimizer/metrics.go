package optimizer

import (
	"fmt"
	"math"

	"github.com/rsned/shieldcalc-server/pkg/shield"
)

// EffectiveBudget returns the CPU bound applied to every candidate.
//
// A positive efficiency floor unlocks totalCPU*(100/minEff) - totalCPU extra
// CPU on top of the available amount: the CPU that may still be burned while
// clearing the floor.
func EffectiveBudget(totalCPU, availableCPU, minEfficiencyPercent float64) float64 {
	if totalCPU <= 0 || minEfficiencyPercent <= 0 {
		return availableCPU
	}
	extra := math.Max(0, totalCPU*(100/minEfficiencyPercent)-totalCPU)
	return availableCPU + extra
}

// Efficiency returns totalCPU / (totalCPU - availableCPU + cpuUsed).
//
// It is 0 when totalCPU <= 0 or the denominator is exactly zero, so NaN and
// Inf never leave this function. A negative denominator, possible when the
// available CPU exceeds the total, gives a negative ratio that fails every
// efficiency floor including 0. The value is not clamped; see
// ReportedEfficiency.
func Efficiency(totalCPU, availableCPU, cpuUsed float64) float64 {
	if totalCPU <= 0 {
		return 0
	}
	denom := totalCPU - availableCPU + cpuUsed
	if denom == 0 {
		return 0
	}
	return totalCPU / denom
}

// ReportedEfficiency is the efficiency put in a Result: 0 when no CPU is used
// or the total is not positive, otherwise Efficiency clamped to [0, 1].
func ReportedEfficiency(totalCPU, availableCPU, cpuUsed float64) float64 {
	if cpuUsed <= 0 || totalCPU <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1.0, Efficiency(totalCPU, availableCPU, cpuUsed)))
}

// SuggestedAvailableCPU is the default available CPU offered for a ship with
// the given total: half of it, rounded down.
func SuggestedAvailableCPU(totalCPU float64) float64 {
	if totalCPU <= 0 {
		return 0
	}
	return math.Floor(totalCPU * 0.5)
}

// RechargeTimeFor returns capacity/rate, or the infinite sentinel when the
// shield never refills.
func RechargeTimeFor(capacity, rechargeRate float64) shield.RechargeTime {
	if rechargeRate <= 0 {
		return shield.InfiniteRechargeTime
	}
	return shield.RechargeTime{Seconds: capacity / rechargeRate}
}

// FormatRechargeTime renders a recharge time the way the calculator shows it:
// "45 sec", "3m 20s", "1h 5m 30s" or "1h 5m" when the seconds round to zero.
func FormatRechargeTime(rt shield.RechargeTime) string {
	if rt.Infinite {
		return "∞"
	}

	minutes := rt.Seconds / 60
	switch {
	case minutes < 1:
		return fmt.Sprintf("%d sec", int(math.Round(minutes*60)))
	case minutes < 60:
		mins := math.Floor(minutes)
		secs := math.Round((minutes - mins) * 60)
		return fmt.Sprintf("%dm %ds", int(mins), int(secs))
	default:
		hours := math.Floor(minutes / 60)
		rem := math.Mod(minutes, 60)
		mins := math.Floor(rem)
		secs := math.Round((rem - mins) * 60)
		if secs > 0 {
			return fmt.Sprintf("%dh %dm %ds", int(hours), int(mins), int(secs))
		}
		return fmt.Sprintf("%dh %dm", int(hours), int(mins))
	}
}
