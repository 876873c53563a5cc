package aggregate

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"onestat/internal/report"
)

func writeReports(t *testing.T, dir, router, area string, values []float64) {
	t.Helper()
	for i, v := range values {
		name := report.Filename(router, area, i+1)
		content := fmt.Sprintf("Message stats for scenario x\nsim_time: 43200.1000\ndelivery_prob: %.4f\noverhead_ratio: 6.0500\n", v)
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}
}

func TestWrite(t *testing.T) {
	t.Run("running mean and CI per gnuplot dataset", func(t *testing.T) {
		dir := t.TempDir()
		writeReports(t, dir, "EpidemicRouter", "500,500", []float64{0.82, 0.86, 0.90, 0.78, 0.74})

		cfg := Config{
			Dir:     dir,
			Routers: []string{"EpidemicRouter"},
			Areas:   []string{"500,500"},
			Runs:    5,
			Stat:    "delivery_prob",
		}

		var buf bytes.Buffer
		if err := Write(&buf, cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Hand-computed: t(df=4)=2.776, CI denominator fixed at 5 runs,
		// population SD over the samples folded in so far.
		want := strings.Join([]string{
			"# Router EpidemicRouter",
			"500,500 0.82 0.0000", "", "",
			"500,500 0.84 0.0248", "", "",
			"500,500 0.86 0.0405", "", "",
			"500,500 0.84 0.0555", "", "",
			"500,500 0.82 0.0702", "", "",
			"",
		}, "\n")
		if buf.String() != want {
			t.Fatalf("output mismatch:\ngot:\n%q\nwant:\n%q", buf.String(), want)
		}
	})

	t.Run("fails fast on a missing report", func(t *testing.T) {
		dir := t.TempDir()
		writeReports(t, dir, "EpidemicRouter", "500,500", []float64{0.82, 0.86})

		cfg := Config{
			Dir:     dir,
			Routers: []string{"EpidemicRouter"},
			Areas:   []string{"500,500"},
			Runs:    5,
			Stat:    "delivery_prob",
		}

		if err := Write(&bytes.Buffer{}, cfg); err == nil {
			t.Fatal("expected error for missing run 3 report")
		}
	})

	t.Run("fails when run count is outside the t-table", func(t *testing.T) {
		dir := t.TempDir()
		writeReports(t, dir, "EpidemicRouter", "500,500", []float64{0.82})

		cfg := Config{
			Dir:     dir,
			Routers: []string{"EpidemicRouter"},
			Areas:   []string{"500,500"},
			Runs:    25,
			Stat:    "delivery_prob",
		}

		if err := Write(&bytes.Buffer{}, cfg); err == nil {
			t.Fatal("expected t-table lookup error for 25 runs")
		}
	})

	t.Run("missing stat aggregates as zero", func(t *testing.T) {
		dir := t.TempDir()
		writeReports(t, dir, "EpidemicRouter", "500,500", []float64{0.82, 0.86, 0.90, 0.78, 0.74})

		cfg := Config{
			Dir:     dir,
			Routers: []string{"EpidemicRouter"},
			Areas:   []string{"500,500"},
			Runs:    5,
			Stat:    "hopcount_avg",
		}

		var buf bytes.Buffer
		if err := Write(&buf, cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "500,500 0.00 0.0000") {
			t.Fatalf("expected zero aggregate, got:\n%s", buf.String())
		}
	})
}
