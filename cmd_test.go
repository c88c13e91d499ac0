package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sdg-dashboard/config"
	"sdg-dashboard/services"
	"sdg-dashboard/utils"
)

const testValues = `COUNTRY_ID,INDICATOR_ID,YEAR,VALUE
ETH,LR.AG15T99,2015,45
ETH,LR.AG15T99,2020,52
KEN,LR.AG15T99,2020,78
BRA,CR.1,2019,90.1
`

const testLabels = `INDICATOR_ID,INDICATOR_LABEL_EN
LR.AG15T99,Adult literacy rate population 15+ years both sexes
CR.1,Completion rate primary education both sexes
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.FromEnv()
	cfg.DataSource = config.SourceCSV
	cfg.ValuesPath = filepath.Join(dir, "values.csv")
	cfg.LabelsPath = filepath.Join(dir, "labels.csv")
	cfg.CatalogPath = ""
	cfg.LiteracyGoal = 90
	cfg.OutputDir = filepath.Join(dir, "out")
	if err := os.WriteFile(cfg.ValuesPath, []byte(testValues), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.LabelsPath, []byte(testLabels), 0644); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func execute(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(cfg, utils.Discard())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLiteracyCommandJSON(t *testing.T) {
	out, err := execute(t, testConfig(t), "literacy", "--countries", "ETH,KEN", "--format", "json")
	if err != nil {
		t.Fatalf("literacy: %v", err)
	}

	var got viewOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.NoData || got.Rows != 3 {
		t.Errorf("view: %+v", got)
	}
	o := got.Chart.TargetOverlay
	if o == nil || o.Label != "90% target" || o.XMin != 2015 || o.XMax != 2020 {
		t.Errorf("overlay: %+v", o)
	}
}

func TestCompareCommandNoData(t *testing.T) {
	cfg := testConfig(t)
	csvPath := filepath.Join(cfg.OutputDir, "arg.csv")

	out, err := execute(t, cfg, "compare", "--region", services.RegionSouthAmerica, "--countries", "ARG", "--csv", csvPath)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if !strings.Contains(out, "No data for that selection.") {
		t.Errorf("output: %q", out)
	}
	if _, err := os.Stat(csvPath); !os.IsNotExist(err) {
		t.Error("no file should be exported for an empty view")
	}
}

func TestCompareCommandExports(t *testing.T) {
	cfg := testConfig(t)

	_, err := execute(t, cfg, "compare",
		"--region", services.RegionSouthAmerica,
		"--indicator", services.PrimaryComplLabel,
		"--countries", "BRA,ARG",
		"--csv", "bra", "--png", "bra.png")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "bra.csv"))
	if err != nil {
		t.Fatalf("csv export: %v", err)
	}
	if !strings.Contains(string(data), "BRA,CR.1,2019,90.1,Completion rate") {
		t.Errorf("csv: %s", data)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "bra.png")); err != nil {
		t.Errorf("png export: %v", err)
	}
}

func TestCompareCommandUnknownRegion(t *testing.T) {
	_, err := execute(t, testConfig(t), "compare", "--region", "Atlantis", "--countries", "ETH")
	if err == nil {
		t.Fatal("expected an error")
	}
	if exitCode(err) != 2 {
		t.Errorf("exit code: got %d, want 2", exitCode(err))
	}
}

func TestCatalogCommandJSON(t *testing.T) {
	out, err := execute(t, testConfig(t), "catalog", "--format", "json")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	for _, want := range []string{services.RegionSubSaharan, services.AdultLiteracyCode} {
		if !strings.Contains(out, want) {
			t.Errorf("catalog output missing %q", want)
		}
	}
}

func TestUnknownFormatIsRejected(t *testing.T) {
	for _, args := range [][]string{
		{"catalog", "--format", "yaml"},
		{"wordcloud", "--format", "yaml"},
		{"literacy", "--format", "yaml"},
	} {
		out, err := execute(t, testConfig(t), args...)
		if err == nil || !strings.Contains(err.Error(), `unknown format "yaml"`) {
			t.Errorf("%v: expected unknown format error, got %v", args, err)
		}
		if strings.Contains(out, "{") {
			t.Errorf("%v: nothing should be printed, got %q", args, out)
		}
	}
}

func TestReportCommandWritesHTML(t *testing.T) {
	cfg := testConfig(t)
	if _, err := execute(t, cfg, "report", "--countries", "ETH"); err != nil {
		t.Fatalf("report: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "dashboard.html"))
	if err != nil {
		t.Fatal(err)
	}
	html := string(data)
	for _, want := range []string{reportTitle, "90% target", "No data for that selection."} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestMissingDataSourceFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.ValuesPath = filepath.Join(t.TempDir(), "missing.csv")

	_, err := execute(t, cfg, "wordcloud")
	if err == nil {
		t.Fatal("expected an error")
	}
	if exitCode(err) != 1 {
		t.Errorf("exit code: got %d, want 1", exitCode(err))
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&services.UnknownKeyError{Kind: "region", Key: "x"}, 2},
		{fmt.Errorf("wrapped: %w", services.ErrNoCountries), 2},
		{&services.DataSourceError{Source: "values", Reason: "unreadable"}, 1},
		{fmt.Errorf("other"), 1},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d; want %d", tt.err, got, tt.want)
		}
	}
}

func TestOutPath(t *testing.T) {
	a := &app{cfg: &config.Config{OutputDir: "out"}}
	tests := []struct{ in, want string }{
		{"chart.png", filepath.Join("out", "chart.png")},
		{"sub/chart.png", "sub/chart.png"},
		{"/tmp/chart.png", "/tmp/chart.png"},
	}
	for _, tt := range tests {
		if got := a.outPath(tt.in); got != tt.want {
			t.Errorf("outPath(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
	if withExt("bra", ".csv") != "bra.csv" || withExt("bra.CSV", ".csv") != "bra.CSV" {
		t.Error("withExt")
	}
}
