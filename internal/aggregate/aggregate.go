// Package aggregate folds per-run delivery statistics into gnuplot datasets:
// one `<area> <mean> <ci>` line per report read, datasets separated by two
// blank lines.
package aggregate

import (
	"fmt"
	"io"
	"path/filepath"

	"onestat/internal/report"
	"onestat/internal/stats"
)

type Config struct {
	Dir     string
	Routers []string
	Areas   []string
	Runs    int
	Stat    string
}

// DefaultConfig mirrors the scenario matrix of the simulation campaign the
// reports come from.
func DefaultConfig() Config {
	return Config{
		Routers: []string{"EpidemicRouter", "SprayAndWaitRouter"},
		Areas:   []string{"500,500", "1000,1000", "1500,1500"},
		Runs:    5,
		Stat:    "delivery_prob",
	}
}

// Write reads Runs report files per (router, area) combination from cfg.Dir
// and prints the running mean and 95% CI after each sample is folded in.
// Any missing or unreadable report aborts the whole aggregation.
//
// The CI sample size is always cfg.Runs, even while the sample set is still
// growing; only the standard deviation tracks the partial set. Intermediate
// lines are therefore provisional, and only the last line per area reflects
// the complete sample.
func Write(w io.Writer, cfg Config) error {
	if cfg.Runs < 1 {
		return fmt.Errorf("runs must be >= 1")
	}

	for _, router := range cfg.Routers {
		fmt.Fprintf(w, "# Router %s\n", router)

		for _, area := range cfg.Areas {
			samples := make([]float64, 0, cfg.Runs)

			for run := 1; run <= cfg.Runs; run++ {
				path := filepath.Join(cfg.Dir, report.Filename(router, area, run))
				v, err := report.StatValue(path, cfg.Stat)
				if err != nil {
					return fmt.Errorf("read %s run %d: %w", cfg.Stat, run, err)
				}
				samples = append(samples, v)

				avg, err := stats.Mean(samples)
				if err != nil {
					return err
				}
				sd, err := stats.StdDev(samples)
				if err != nil {
					return err
				}
				ci, err := stats.CI95(cfg.Runs, sd)
				if err != nil {
					return fmt.Errorf("confidence interval for %d runs: %w", cfg.Runs, err)
				}

				// Two blank lines after every record: gnuplot treats the
				// chunks as separate datasets.
				fmt.Fprintf(w, "%s %.2f %.4f\n", area, avg, ci)
				fmt.Fprint(w, "\n\n")
			}
		}
	}

	return nil
}
