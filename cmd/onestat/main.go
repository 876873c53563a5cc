package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"onestat/internal/aggregate"
	"onestat/internal/db"
	"onestat/internal/record"
	"onestat/internal/stats"
	"onestat/internal/web"
)

var dbPath string

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "onestat.db"
	}
	return filepath.Join(home, ".onestat", "onestat.db")
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "onestat",
		Short: "Delivery statistics for ONE simulator reports",
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDBPath(), "database path")

	rootCmd.AddCommand(plotCmd())
	rootCmd.AddCommand(recordCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(compareCmd())
	rootCmd.AddCommand(trendCmd())
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func plotCmd() *cobra.Command {
	cfg := aggregate.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Print gnuplot datasets of mean delivery ratio with 95% CI",
		Long: `Read MessageStatsReport files for every router/area combination and print
'<area> <mean> <ci>' lines, one per report folded in, with two blank lines
between records so gnuplot treats them as separate datasets.

Report files are expected under --dir with the simulator's naming convention:
  scenario_<router>_area-<area>_rng-<run>_MessageStatsReport.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return aggregate.Write(os.Stdout, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.Dir, "dir", ".", "directory containing report files")
	cmd.Flags().StringSliceVar(&cfg.Routers, "routers", cfg.Routers, "router names to aggregate")
	cmd.Flags().StringSliceVar(&cfg.Areas, "areas", cfg.Areas, "deployment areas to aggregate")
	cmd.Flags().IntVar(&cfg.Runs, "runs", cfg.Runs, "report files per router/area combination")
	cmd.Flags().StringVar(&cfg.Stat, "stat", cfg.Stat, "statistic to aggregate")

	return cmd
}

func recordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record [dir]",
		Short: "Import report files into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Open(dbPath)
			if err != nil {
				return err
			}
			defer func() {
				if err := database.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Error closing database: %v\n", err)
				}
			}()

			summary, err := record.Import(database, args[0])
			if err != nil {
				return err
			}

			color.Green("Imported %d reports (%d already recorded)", summary.Imported, summary.Skipped)
			return nil
		},
	}

	return cmd
}

func listCmd() *cobra.Command {
	var router string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List imported scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Open(dbPath)
			if err != nil {
				return err
			}
			defer func() {
				if err := database.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Error closing database: %v\n", err)
				}
			}()

			scenarios, err := database.ListScenarios(router)
			if err != nil {
				return err
			}

			if len(scenarios) == 0 {
				fmt.Println("No scenarios found")
				return nil
			}

			cyan := color.New(color.FgCyan)
			dim := color.New(color.Faint)

			_, _ = cyan.Printf("%-6s %-22s %-12s %-6s %-20s %s\n", "ID", "Router", "Area", "Seed", "Imported", "Stats")
			_, _ = dim.Println(strings.Repeat("-", 78))

			for _, sc := range scenarios {
				count, err := database.CountStatsForScenario(sc.ID)
				if err != nil {
					return err
				}
				imported := sc.ImportedAt
				if len(imported) > 19 {
					imported = imported[:19]
				}
				fmt.Printf("%-6d %-22s %-12s %-6d %-20s %d\n",
					sc.ID, sc.Router, sc.Area, sc.RngSeed, imported, count)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&router, "router", "", "filter by router")

	return cmd
}

func showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [scenario_id]",
		Short: "Show all statistics of an imported scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid scenario ID: %w", err)
			}

			database, err := db.Open(dbPath)
			if err != nil {
				return err
			}
			defer func() {
				if err := database.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Error closing database: %v\n", err)
				}
			}()

			scenario, err := database.GetScenario(id)
			if err != nil {
				return fmt.Errorf("scenario not found: %w", err)
			}

			cyan := color.New(color.FgCyan)
			dim := color.New(color.Faint)

			_, _ = cyan.Printf("Scenario #%d\n", scenario.ID)
			_, _ = dim.Println(strings.Repeat("-", 50))
			fmt.Printf("Router:   %s\n", scenario.Router)
			fmt.Printf("Area:     %s\n", scenario.Area)
			fmt.Printf("RNG seed: %d\n", scenario.RngSeed)
			fmt.Printf("Source:   %s\n", scenario.SourceFile)
			fmt.Println()

			scenarioStats, err := database.StatsForScenario(id)
			if err != nil {
				return err
			}

			for _, st := range scenarioStats {
				fmt.Printf("%-20s %14.4f\n", st.Name, st.Value)
			}

			return nil
		},
	}

	return cmd
}

func compareCmd() *cobra.Command {
	var stat string
	var threshold float64

	cmd := &cobra.Command{
		Use:   "compare [router1] [router2]",
		Short: "Compare a statistic between two routers across all areas",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Open(dbPath)
			if err != nil {
				return err
			}
			defer func() {
				if err := database.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Error closing database: %v\n", err)
				}
			}()

			areas, err := database.Areas(args[0])
			if err != nil {
				return err
			}
			if len(areas) == 0 {
				return fmt.Errorf("no scenarios recorded for %s", args[0])
			}

			cyan := color.New(color.FgCyan)
			dim := color.New(color.Faint)
			red := color.New(color.FgRed)
			green := color.New(color.FgGreen)
			yellow := color.New(color.FgYellow)

			_, _ = cyan.Printf("Comparing %s for %s vs %s\n", stat, args[0], args[1])
			_, _ = dim.Printf("Threshold: %.1f%%\n\n", threshold)

			_, _ = cyan.Printf("%-12s %18s %18s %10s\n", "Area", args[0], args[1], "Change")
			_, _ = dim.Println(strings.Repeat("-", 62))

			for _, area := range areas {
				agg1, err := areaAggregate(database, args[0], area, stat)
				if err != nil {
					return err
				}
				agg2, err := areaAggregate(database, args[1], area, stat)
				if err != nil {
					return err
				}

				fmt.Printf("%-12s %9.4f ±%7.4f %9.4f ±%7.4f ",
					area, agg1.mean, agg1.ci, agg2.mean, agg2.ci)

				if agg1.mean == 0 {
					_, _ = yellow.Printf("n/a\n")
					continue
				}

				change := (agg2.mean - agg1.mean) / agg1.mean * 100
				switch {
				case change < -threshold:
					_, _ = red.Printf("%.1f%%\n", change)
				case change > threshold:
					_, _ = green.Printf("+%.1f%%\n", change)
				default:
					_, _ = yellow.Printf("%+.1f%%\n", change)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&stat, "stat", "delivery_prob", "statistic to compare")
	cmd.Flags().Float64Var(&threshold, "threshold", 5, "notable change threshold percentage")

	return cmd
}

func trendCmd() *cobra.Command {
	var router string

	cmd := &cobra.Command{
		Use:   "trend [stat]",
		Short: "Show how a statistic changes as the deployment area grows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Open(dbPath)
			if err != nil {
				return err
			}
			defer func() {
				if err := database.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Error closing database: %v\n", err)
				}
			}()

			areas, err := database.Areas(router)
			if err != nil {
				return err
			}
			if len(areas) == 0 {
				return fmt.Errorf("no scenarios recorded for %s", router)
			}

			cyan := color.New(color.FgCyan)
			dim := color.New(color.Faint)

			_, _ = cyan.Printf("Trend for %s (%s)\n\n", args[0], router)
			_, _ = cyan.Printf("%-12s %10s %10s %s\n", "Area", "Mean", "CI95", "Trend")
			_, _ = dim.Println(strings.Repeat("-", 56))

			aggs := make([]areaStats, 0, len(areas))
			var maxMean float64
			for _, area := range areas {
				agg, err := areaAggregate(database, router, area, args[0])
				if err != nil {
					return err
				}
				if agg.mean > maxMean {
					maxMean = agg.mean
				}
				aggs = append(aggs, agg)
			}

			for i, area := range areas {
				barLen := 0
				if maxMean > 0 {
					barLen = int(aggs[i].mean / maxMean * 20)
				}
				if barLen > 20 {
					barLen = 20
				} else if barLen < 0 {
					barLen = 0
				}
				bar := strings.Repeat("█", barLen) + strings.Repeat("░", 20-barLen)

				fmt.Printf("%-12s %10.4f %10.4f %s\n", area, aggs[i].mean, aggs[i].ci, bar)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&router, "router", "EpidemicRouter", "router to inspect")

	return cmd
}

func deleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete [scenario_id]",
		Short: "Delete an imported scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid scenario ID: %w", err)
			}

			database, err := db.Open(dbPath)
			if err != nil {
				return err
			}
			defer func() {
				if err := database.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Error closing database: %v\n", err)
				}
			}()

			if err := database.DeleteScenario(id); err != nil {
				return err
			}

			color.Green("Deleted scenario #%d", id)
			return nil
		},
	}

	return cmd
}

func serveCmd() *cobra.Command {
	var port int
	var open bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the JSON API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Open(dbPath)
			if err != nil {
				return err
			}
			defer func() {
				if err := database.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Error closing database: %v\n", err)
				}
			}()

			addr := fmt.Sprintf(":%d", port)
			server := web.NewServer(database, addr)
			return server.Start(open)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on")
	cmd.Flags().BoolVar(&open, "open", false, "open browser automatically")

	return cmd
}

type areaStats struct {
	mean float64
	ci   float64
}

func areaAggregate(database *db.DB, router, area, stat string) (areaStats, error) {
	samples, err := database.StatSamples(router, area, stat)
	if err != nil {
		return areaStats{}, err
	}
	if len(samples) == 0 {
		return areaStats{}, fmt.Errorf("no %s samples for %s area %s", stat, router, area)
	}

	mean, err := stats.Mean(samples)
	if err != nil {
		return areaStats{}, err
	}
	sd, err := stats.StdDev(samples)
	if err != nil {
		return areaStats{}, err
	}
	ci, err := stats.CI95(len(samples), sd)
	if err != nil {
		return areaStats{}, fmt.Errorf("%s area %s: %w", router, area, err)
	}

	return areaStats{mean: mean, ci: ci}, nil
}
