package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rsned/shieldcalc-server/pkg/shield"
)

// run executes the CLI against a database in dir and returns stdout.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SHIELD_CATALOG_PATH", "")
	t.Setenv("LOG_FORMAT", "text")

	var out, errOut bytes.Buffer
	err := newApp(&out, &errOut).execute(context.Background(),
		append([]string{"--db", filepath.Join(dir, "shield.db")}, args...))
	return out.String(), err
}

func TestOptimizeJSON(t *testing.T) {
	out, err := run(t, t.TempDir(), "optimize", "-g", "regular", "--total-cpu", "999999", "--available-cpu", "999999", "--json")
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}

	var res shield.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	if res.TotalCapacity != 300000 || !res.RechargeTime.Infinite {
		t.Errorf("result = %+v", res)
	}
}

func TestOptimizeSuggestsAvailableCPU(t *testing.T) {
	out, err := run(t, t.TempDir(), "optimize", "--total-cpu", "100000")
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	for _, want := range []string{"Regular Shield Generator", "92,000", "48,000 / 50,000"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestOptimizeBlocksAndReactors(t *testing.T) {
	out, err := run(t, t.TempDir(), "optimize", "-g", "compact", "--xeno", "10", "--blocks", "steel=5",
		"--small-fusion", "1", "--json")
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	var res shield.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if res.BlockContribution != 75 || res.RechargeRate != 600 {
		t.Errorf("blocks = %v, recharge = %v; want 75 and 600", res.BlockContribution, res.RechargeRate)
	}
}

func TestExecuteClosesDatabaseOnFailure(t *testing.T) {
	t.Setenv("SHIELD_CATALOG_PATH", "")

	var out, errOut bytes.Buffer
	a := newApp(&out, &errOut)

	err := a.execute(context.Background(), []string{
		"--db", filepath.Join(t.TempDir(), "shield.db"),
		"optimize", "-g", "compact", "--min-recharge", "99999",
	})
	var exit *exitError
	if !errors.As(err, &exit) || exit.code != 2 {
		t.Fatalf("infeasible error = %v, want exit code 2", err)
	}
	if a.database == nil {
		t.Fatal("optimize did not open the database")
	}
	if err := a.database.PingContext(context.Background()); err == nil {
		t.Error("database still open after a failed command")
	}
}

func TestOptimizeExitCodes(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "optimize", "-g", "compact", "--min-recharge", "99999")
	var exit *exitError
	if !errors.As(err, &exit) || exit.code != 2 {
		t.Errorf("infeasible error = %v, want exit code 2", err)
	}

	if _, err := run(t, dir, "optimize", "-g", "warp"); !errors.Is(err, shield.ErrUnknownGenerator) {
		t.Errorf("unknown generator error = %v", err)
	}
	if _, err := run(t, dir, "optimize", "--min-efficiency", "120"); !errors.Is(err, shield.ErrInvalidRequest) {
		t.Errorf("invalid efficiency error = %v", err)
	}
}

func TestCompareCSV(t *testing.T) {
	out, err := run(t, t.TempDir(), "compare", "--total-cpu", "100000", "--available-cpu", "50000", "--csv")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want header + 4:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[1], "1,alien,") {
		t.Errorf("first ranked row = %q", lines[1])
	}
}

func TestGenerators(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "generators")
	if err != nil {
		t.Fatalf("generators: %v", err)
	}
	if !strings.Contains(out, "Alien Shield Generator") || strings.Contains(out, "xeno") {
		t.Errorf("generators output:\n%s", out)
	}

	out, err = run(t, dir, "generators", "--all")
	if err != nil {
		t.Fatalf("generators --all: %v", err)
	}
	if !strings.Contains(out, "large_fusion") || !strings.Contains(out, "xeno") {
		t.Errorf("generators --all output:\n%s", out)
	}
}

func TestSettingsLifecycle(t *testing.T) {
	dir := t.TempDir()

	if _, err := run(t, dir, "settings", "save", "miner", "-g", "advanced", "--total-cpu", "80000", "--available-cpu", "40000"); err != nil {
		t.Fatalf("settings save: %v", err)
	}

	legacy := filepath.Join(dir, "legacy.json")
	blob := `{"generatorType":"alien","totalCpu":"200000","availableCpu":"90000","blockCounts":{"combatSteel":"12"}}`
	if err := os.WriteFile(legacy, []byte(blob), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, dir, "settings", "import-legacy", "browser", legacy); err != nil {
		t.Fatalf("settings import-legacy: %v", err)
	}

	out, err := run(t, dir, "settings", "list")
	if err != nil {
		t.Fatalf("settings list: %v", err)
	}
	if !strings.Contains(out, "browser") || !strings.Contains(out, "miner") {
		t.Errorf("settings list:\n%s", out)
	}

	out, err = run(t, dir, "settings", "load", "browser")
	if err != nil {
		t.Fatalf("settings load: %v", err)
	}
	var saved shield.SavedSettings
	if err := json.Unmarshal([]byte(out), &saved); err != nil {
		t.Fatal(err)
	}
	if saved.Request.GeneratorID != "alien" || saved.Request.BlockCounts["xeno"] != 12 {
		t.Errorf("loaded = %+v", saved.Request)
	}

	out, err = run(t, dir, "optimize", "--settings", "miner", "--json")
	if err != nil {
		t.Fatalf("optimize --settings: %v", err)
	}
	if !strings.Contains(out, `"generator_id": "advanced"`) {
		t.Errorf("optimize --settings output:\n%s", out)
	}

	if _, err := run(t, dir, "settings", "delete", "miner"); err != nil {
		t.Fatalf("settings delete: %v", err)
	}
	if _, err := run(t, dir, "settings", "load", "miner"); !errors.Is(err, shield.ErrSettingsNotFound) {
		t.Errorf("load after delete error = %v", err)
	}
}
