package stats

import (
	"errors"
	"math"
	"testing"
)

func TestMean(t *testing.T) {
	t.Run("averages values", func(t *testing.T) {
		got, err := Mean([]float64{2, 4, 6})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 4.0 {
			t.Fatalf("expected 4.0, got %v", got)
		}
	})

	t.Run("fails on empty input", func(t *testing.T) {
		if _, err := Mean(nil); !errors.Is(err, ErrEmptySample) {
			t.Fatalf("expected ErrEmptySample, got %v", err)
		}
	})
}

func TestStdDev(t *testing.T) {
	t.Run("population divisor", func(t *testing.T) {
		got, err := StdDev([]float64{2, 4, 6})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := math.Sqrt(8.0 / 3.0) // ~1.633, divisor n not n-1
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("expected %v, got %v", want, got)
		}
	})

	t.Run("zero for identical values", func(t *testing.T) {
		got, err := StdDev([]float64{0.5, 0.5, 0.5})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 0 {
			t.Fatalf("expected 0, got %v", got)
		}
	})

	t.Run("fails on empty input", func(t *testing.T) {
		if _, err := StdDev([]float64{}); !errors.Is(err, ErrEmptySample) {
			t.Fatalf("expected ErrEmptySample, got %v", err)
		}
	})
}

func TestCI95(t *testing.T) {
	t.Run("uses t-critical for small samples", func(t *testing.T) {
		got, err := CI95(10, 1.0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := 2.228 / math.Sqrt(10)
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("expected %v, got %v", want, got)
		}
	})

	t.Run("uses z-critical for large samples", func(t *testing.T) {
		got, err := CI95(50, 1.0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := 1.96 / math.Sqrt(50)
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("expected %v, got %v", want, got)
		}
	})

	t.Run("fails when df is outside the table", func(t *testing.T) {
		// df=24 under the 30-sample cutoff but past the table's df 1-18.
		if _, err := CI95(25, 1.0); err == nil {
			t.Fatal("expected lookup error for df=24")
		}
	})

	t.Run("fails for a single sample", func(t *testing.T) {
		if _, err := CI95(1, 1.0); err == nil {
			t.Fatal("expected lookup error for df=0")
		}
	})

	t.Run("boundary df=18 is covered", func(t *testing.T) {
		got, err := CI95(19, 2.0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := 2.101 * 2.0 / math.Sqrt(19)
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("expected %v, got %v", want, got)
		}
	})
}
