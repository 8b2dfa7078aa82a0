package domain

import (
	"strings"
	"time"
)

// Granularity is the width of a time bucket.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

// ParseGranularity returns the granularity for a label (case-insensitive).
func ParseGranularity(label string) (Granularity, bool) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(label))); g {
	case GranularityDay, GranularityWeek, GranularityMonth, GranularityYear:
		return g, true
	}
	return "", false
}

// TimeBucket is a calendar-aligned interval with a summed metric.
type TimeBucket struct {
	Key       string    `json:"key"`
	Label     string    `json:"label"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Value     float64   `json:"value"`
	Count     int       `json:"count"`
}

// TrendDirection classifies a regression slope.
type TrendDirection string

const (
	TrendRising  TrendDirection = "rising"
	TrendFalling TrendDirection = "falling"
	TrendStable  TrendDirection = "stable"
)

// PeriodForecast is a predicted value for a future bucket.
type PeriodForecast struct {
	Key       string    `json:"key"`
	Label     string    `json:"label"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Value     float64   `json:"value"`
}

// TrendResult is the linear trend over the most recent buckets.
type TrendResult struct {
	Granularity  Granularity      `json:"granularity"`
	Slope        float64          `json:"slope"`
	Intercept    float64          `json:"intercept"`
	WindowSize   int              `json:"window_size"`
	WindowKeys   []string         `json:"window_keys"`
	AvgRevenue   float64          `json:"avg_revenue"`
	SwingPct     float64          `json:"swing_pct"`
	ThresholdPct float64          `json:"threshold_pct"`
	Direction    TrendDirection   `json:"direction"`
	Forecasts    []PeriodForecast `json:"forecasts"`
}

// Predict returns the regression value at window-relative index i.
func (t *TrendResult) Predict(i int) float64 {
	return t.Intercept + t.Slope*float64(i)
}

// PeriodProjection is the expected total of the period that contains "now".
type PeriodProjection struct {
	Key         string    `json:"key"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Realized    float64   `json:"realized"`
	ElapsedDays int       `json:"elapsed_days"`
	TotalDays   int       `json:"total_days"`
	Projected   float64   `json:"projected"`
}

// MonthForecast is the expected total of a calendar month.
type MonthForecast struct {
	Month    string  `json:"month"`
	Realized float64 `json:"realized"`
	Value    float64 `json:"value"`
	Source   string  `json:"source"`
}

// Month forecast sources.
const (
	ForecastSourceRealized   = "realized"
	ForecastSourceRunRate    = "run_rate"
	ForecastSourceAverage    = "average"
	ForecastSourceRegression = "regression"
)

// Metric names the per-shift value summed into buckets.
type Metric string

const (
	MetricKMS       Metric = "kms"
	MetricKVV       Metric = "kvv"
	MetricRevenue   Metric = "revenue"
	MetricNetProfit Metric = "net_profit"
	MetricContacts  Metric = "contacts"
)

// ParseMetric returns the metric for a label; an empty label selects the
// KMS share, which the revenue chart plots by default.
func ParseMetric(label string) (Metric, bool) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(label))); m {
	case "":
		return MetricKMS, true
	case MetricKMS, MetricKVV, MetricRevenue, MetricNetProfit, MetricContacts:
		return m, true
	}
	return "", false
}

// TrendReport is a fitted trend with the buckets it was fitted on and the
// projection of the period in progress.
type TrendReport struct {
	Metric        Metric            `json:"metric"`
	Granularity   Granularity       `json:"granularity"`
	Buckets       []TimeBucket      `json:"buckets"`
	Trend         *TrendResult      `json:"trend"`
	CurrentPeriod *PeriodProjection `json:"current_period"`
}
