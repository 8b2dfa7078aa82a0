// Package forecast fits a linear trend to time buckets and projects it
// forward.
package forecast

import (
	"math"
	"time"

	"github.com/andresuchdata/shiftops/internal/domain"
	"github.com/andresuchdata/shiftops/internal/timeseries"
)

const (
	// ThresholdPct is the swing per bucket, relative to the window average,
	// above which a trend counts as rising or falling.
	ThresholdPct = 5.0

	MinBuckets = 3
	// MinWindow keeps histories of up to five buckets whole, so that five
	// weekly values [100..180] average to 140 with a swing of 14.3%.
	// ceil(n/3) alone would keep only the last two of them.
	MinWindow = 5
	MaxWindow = 10

	// Horizon is the number of future periods attached to a trend.
	Horizon = 3

	slopeEpsilon = 1e-9
)

// WindowSize returns how many of the most recent n buckets enter the
// regression.
func WindowSize(n int) int {
	w := int(math.Ceil(float64(n) / 3))
	if w < MinWindow {
		w = MinWindow
	}
	if w > MaxWindow {
		w = MaxWindow
	}
	if w > n {
		w = n
	}
	return w
}

// AnalyzeTrend regresses bucket values against their position in the window.
// Buckets are indexed positionally; calendar gaps between them are ignored.
// It returns nil when fewer than MinBuckets buckets are given.
func AnalyzeTrend(buckets []domain.TimeBucket, g domain.Granularity) *domain.TrendResult {
	if len(buckets) < MinBuckets {
		return nil
	}

	w := WindowSize(len(buckets))
	window := buckets[len(buckets)-w:]

	values := make([]float64, w)
	keys := make([]string, w)
	for i, b := range window {
		values[i] = b.Value
		keys[i] = b.Key
	}

	slope, intercept := regress(values)
	avg := mean(values)

	var swing float64
	if avg > 0 {
		swing = math.Abs(slope) / avg * 100
	}

	result := &domain.TrendResult{
		Granularity:  g,
		Slope:        slope,
		Intercept:    intercept,
		WindowSize:   w,
		WindowKeys:   keys,
		AvgRevenue:   avg,
		SwingPct:     swing,
		ThresholdPct: ThresholdPct,
		Direction:    classify(slope, swing),
	}
	result.Forecasts = nextPeriods(result, window[w-1].StartDate, g)

	return result
}

// positionOf returns the window index of the bucket keyed key, or the index
// of the first bucket after the window when key is not in it.
func positionOf(t *domain.TrendResult, key string) int {
	for i, k := range t.WindowKeys {
		if k == key {
			return i
		}
	}
	return t.WindowSize
}

func classify(slope, swing float64) domain.TrendDirection {
	switch {
	case slope > 0 && swing > ThresholdPct:
		return domain.TrendRising
	case slope < 0 && swing > ThresholdPct:
		return domain.TrendFalling
	default:
		return domain.TrendStable
	}
}

func nextPeriods(t *domain.TrendResult, lastStart time.Time, g domain.Granularity) []domain.PeriodForecast {
	forecasts := make([]domain.PeriodForecast, 0, Horizon)
	next := timeseries.NextPeriodStart(lastStart, g)

	for i := 0; i < Horizon; i++ {
		key, start, end := timeseries.Period(next, g)
		forecasts = append(forecasts, domain.PeriodForecast{
			Key:       key,
			Label:     timeseries.Label(g, start, end),
			StartDate: start,
			EndDate:   end,
			Value:     nonNegative(t.Predict(t.WindowSize + i)),
		})
		next = timeseries.NextPeriodStart(start, g)
	}
	return forecasts
}

// regress is ordinary least squares of values against 0..n-1.
func regress(values []float64) (slope, intercept float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}

	xMean := (n - 1) / 2
	yMean := mean(values)

	var sxx, sxy float64
	for i, y := range values {
		dx := float64(i) - xMean
		sxx += dx * dx
		sxy += dx * (y - yMean)
	}

	if sxx > 0 {
		slope = sxy / sxx
	}
	if math.Abs(slope) < slopeEpsilon {
		slope = 0
	}
	return slope, yMean - slope*xMean
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func nonNegative(v float64) float64 {
	return math.Max(0, v)
}
