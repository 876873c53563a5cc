package stats

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptySample is returned when a computation needs at least one value.
var ErrEmptySample = errors.New("empty sample")

// tCritical95 maps degrees of freedom to two-tailed t-critical values for a
// 95% confidence interval. Covers df 1-18 only; lookups outside that range
// fail rather than extrapolate.
var tCritical95 = map[int]float64{
	1:  12.706,
	2:  4.303,
	3:  3.182,
	4:  2.776,
	5:  2.571,
	6:  2.447,
	7:  2.365,
	8:  2.306,
	9:  2.262,
	10: 2.228,
	11: 2.201,
	12: 2.179,
	13: 2.160,
	14: 2.145,
	15: 2.131,
	16: 2.120,
	17: 2.110,
	18: 2.101,
}

// Mean returns the arithmetic mean of values.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptySample
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}

// StdDev returns the population standard deviation of values. The divisor is
// the sample count, not count-1, matching the simulator's report tooling.
func StdDev(values []float64) (float64, error) {
	avg, err := Mean(values)
	if err != nil {
		return 0, err
	}
	var sumSquares float64
	for _, v := range values {
		diff := v - avg
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(values))), nil
}

// CI95 returns the half-width of a 95% confidence interval around a sample
// mean. Below 30 samples the population SD is assumed unknown and the
// t-distribution is used at df = sampleSize-1; from 30 samples up the normal
// approximation (z = 1.96) applies.
func CI95(sampleSize int, sampleSD float64) (float64, error) {
	rootN := math.Sqrt(float64(sampleSize))

	if sampleSize >= 30 {
		return 1.96 * sampleSD / rootN, nil
	}

	df := sampleSize - 1
	t, ok := tCritical95[df]
	if !ok {
		return 0, fmt.Errorf("no t-critical value for df=%d (sample size %d)", df, sampleSize)
	}
	return t * sampleSD / rootN, nil
}
