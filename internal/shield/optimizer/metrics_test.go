package optimizer

import (
	"math"
	"testing"

	"github.com/rsned/shieldcalc-server/pkg/shield"
)

func TestEffectiveBudget(t *testing.T) {
	tests := []struct {
		name                     string
		total, available, minEff float64
		want                     float64
	}{
		{"efficiency floor disabled", 100000, 50000, 0, 50000},
		{"no total cpu", 0, 50000, 80, 50000},
		{"80 percent floor", 100000, 50000, 80, 75000},
		{"50 percent floor", 100000, 50000, 50, 150000},
		{"100 percent floor adds nothing", 100000, 50000, 100, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectiveBudget(tt.total, tt.available, tt.minEff)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("EffectiveBudget(%v, %v, %v) = %v, want %v", tt.total, tt.available, tt.minEff, got, tt.want)
			}
		})
	}
}

func TestEfficiency_Edges(t *testing.T) {
	tests := []struct {
		name                   string
		total, available, used float64
		want                   float64
	}{
		{"zero total", 0, 0, 8000, 0},
		{"negative total", -5, 0, 8000, 0},
		{"zero denominator", 100, 108, 8, 0},
		{"negative denominator", 1000, 9500, 8000, -2},
		{"regular", 100000, 50000, 50000, 1},
		{"over budget", 100000, 50000, 75000, 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Efficiency(tt.total, tt.available, tt.used)
			if math.IsNaN(got) || math.IsInf(got, 0) {
				t.Fatalf("Efficiency returned %v", got)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Efficiency(%v, %v, %v) = %v, want %v", tt.total, tt.available, tt.used, got, tt.want)
			}
		})
	}
}

func TestReportedEfficiency_Clamped(t *testing.T) {
	// Using less than the nominal budget gives a raw ratio above 1.
	raw := Efficiency(100000, 50000, 10000)
	if raw <= 1 {
		t.Fatalf("expected raw efficiency above 1, got %v", raw)
	}
	if got := ReportedEfficiency(100000, 50000, 10000); got != 1.0 {
		t.Errorf("ReportedEfficiency = %v, want 1.0", got)
	}
	if got := ReportedEfficiency(100000, 50000, 0); got != 0 {
		t.Errorf("ReportedEfficiency with no cpu used = %v, want 0", got)
	}
	if got := ReportedEfficiency(0, 0, 8000); got != 0 {
		t.Errorf("ReportedEfficiency with no total = %v, want 0", got)
	}
	if got := ReportedEfficiency(1000, 9500, 8000); got != 0 {
		t.Errorf("ReportedEfficiency with negative ratio = %v, want 0", got)
	}
}

func TestSuggestedAvailableCPU(t *testing.T) {
	for total, want := range map[float64]float64{0: 0, -10: 0, 100000: 50000, 12345: 6172} {
		if got := SuggestedAvailableCPU(total); got != want {
			t.Errorf("SuggestedAvailableCPU(%v) = %v, want %v", total, got, want)
		}
	}
}

func TestRechargeTimeFor(t *testing.T) {
	if rt := RechargeTimeFor(12000, 300); rt.Infinite || rt.Seconds != 40 {
		t.Errorf("RechargeTimeFor(12000, 300) = %+v, want 40s", rt)
	}
	if rt := RechargeTimeFor(12000, 0); !rt.Infinite {
		t.Errorf("zero recharge should be infinite, got %+v", rt)
	}
	if rt := RechargeTimeFor(12000, -5100); !rt.Infinite {
		t.Errorf("negative recharge should be infinite, got %+v", rt)
	}
}

func TestFormatRechargeTime(t *testing.T) {
	tests := []struct {
		rt   shield.RechargeTime
		want string
	}{
		{shield.InfiniteRechargeTime, "∞"},
		{shield.RechargeTime{Seconds: 0}, "0 sec"},
		{shield.RechargeTime{Seconds: 40}, "40 sec"},
		{shield.RechargeTime{Seconds: 60}, "1m 0s"},
		{shield.RechargeTime{Seconds: 200}, "3m 20s"},
		{shield.RechargeTime{Seconds: 3600}, "1h 0m"},
		{shield.RechargeTime{Seconds: 3930}, "1h 5m 30s"},
		{shield.RechargeTime{Seconds: 7500}, "2h 5m"},
	}

	for _, tt := range tests {
		if got := FormatRechargeTime(tt.rt); got != tt.want {
			t.Errorf("FormatRechargeTime(%+v) = %q, want %q", tt.rt, got, tt.want)
		}
	}
}
