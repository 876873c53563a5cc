// Package report reads MessageStatsReport files produced by the ONE
// simulator: plain text, one `label: value` record per line, space-delimited.
package report

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Scenario identifies one simulation run by the parameters encoded in the
// report filename.
type Scenario struct {
	Router  string
	Area    string
	RngSeed int
}

// Stat is one named value from a report file.
type Stat struct {
	Name  string
	Value float64
}

var filenameRe = regexp.MustCompile(`^scenario_(.+)_area-(.+)_rng-(\d+)_MessageStatsReport\.txt$`)

// Filename builds the report filename the simulator writes for a given
// router, deployment area and RNG seed.
func Filename(router, area string, run int) string {
	return fmt.Sprintf("scenario_%s_area-%s_rng-%d_MessageStatsReport.txt", router, area, run)
}

// ParseFilename is the inverse of Filename. The second return value reports
// whether name follows the convention.
func ParseFilename(name string) (Scenario, bool) {
	m := filenameRe.FindStringSubmatch(name)
	if m == nil {
		return Scenario{}, false
	}
	seed, err := strconv.Atoi(m[3])
	if err != nil {
		return Scenario{}, false
	}
	return Scenario{Router: m[1], Area: m[2], RngSeed: seed}, true
}

// StatValue returns the value of the first line whose label starts with name.
// A report with no matching line yields 0 without error; the caller cannot
// distinguish that from a true zero, which matches the simulator's own
// plotting scripts.
func StatValue(path, name string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), " ")
		if len(fields) < 2 {
			continue
		}
		if !strings.HasPrefix(fields[0], name) {
			continue
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return 0, fmt.Errorf("parse %s in %s: %w", name, path, err)
		}
		return v, nil
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("scan %s: %w", path, err)
	}
	return 0, nil
}

// ParseFile returns every numeric statistic in the report, in file order.
// The header line and NaN entries (e.g. overhead_ratio when nothing was
// delivered) are skipped.
func ParseFile(path string) ([]Stat, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var stats []Stat
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), " ")
		if len(fields) != 2 {
			continue
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || math.IsNaN(v) {
			continue
		}
		stats = append(stats, Stat{
			Name:  strings.TrimSuffix(fields[0], ":"),
			Value: v,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return stats, nil
}
