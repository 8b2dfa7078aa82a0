package forecast

import (
	"math"
	"time"

	"github.com/andresuchdata/shiftops/internal/domain"
	"github.com/andresuchdata/shiftops/internal/timeseries"
)

// PeriodsPerMonth is how many buckets of granularity g fit in the month
// containing month.
func PeriodsPerMonth(g domain.Granularity, month time.Time) float64 {
	days := float64(timeseries.DaysInMonth(month))
	switch g {
	case domain.GranularityDay:
		return days
	case domain.GranularityWeek:
		return days / 7
	case domain.GranularityYear:
		return 1.0 / 12
	default:
		return 1
	}
}

// ForecastMonth estimates the total of the month containing month.
//
// Past months return the realized sum. The current month extrapolates the
// daily run rate over the month, falling back to the trend average when
// nothing has been realized yet; with weekly buckets the remaining days are
// filled at the daily rate of the fitted current week instead. Future months
// sum the clamped regression predictions that follow the window.
func ForecastMonth(trend *domain.TrendResult, realized float64, g domain.Granularity, month, now time.Time) domain.MonthForecast {
	target := monthStart(month)
	current := monthStart(now)

	fc := domain.MonthForecast{
		Month:    target.Format("2006-01"),
		Realized: realized,
	}

	switch {
	case target.Before(current):
		fc.Value = realized
		fc.Source = domain.ForecastSourceRealized

	case target.Equal(current):
		days := timeseries.DaysInMonth(target)
		elapsed := domain.DateOf(now).Day()

		switch {
		case g == domain.GranularityWeek && trend != nil && realized != 0:
			key, _, _ := timeseries.Period(now, domain.GranularityWeek)
			remaining := days - elapsed
			weekly := nonNegative(trend.Predict(positionOf(trend, key)))
			fc.Value = realized + weekly/7*float64(remaining)
			fc.Source = domain.ForecastSourceRegression
		case elapsed > 0 && realized != 0:
			fc.Value = realized / float64(elapsed) * float64(days)
			fc.Source = domain.ForecastSourceRunRate
		default:
			if trend != nil {
				fc.Value = trend.AvgRevenue * PeriodsPerMonth(g, target)
			}
			fc.Source = domain.ForecastSourceAverage
		}

	default:
		fc.Source = domain.ForecastSourceRegression
		if trend == nil {
			return fc
		}
		periods := int(math.Ceil(PeriodsPerMonth(g, target)))
		for i := 0; i < periods; i++ {
			fc.Value += nonNegative(trend.Predict(trend.WindowSize + i))
		}
	}

	return fc
}

// ProjectCurrentPeriod estimates the full total of the bucket containing now:
// what is realized so far plus the fitted value of that bucket prorated over
// the days left. A current bucket outside the window is predicted one step
// past it. It returns nil without a trend.
func ProjectCurrentPeriod(buckets []domain.TimeBucket, trend *domain.TrendResult, g domain.Granularity, now time.Time) *domain.PeriodProjection {
	if trend == nil {
		return nil
	}

	key, start, end := timeseries.Period(now, g)

	var realized float64
	for _, b := range buckets {
		if b.Key == key {
			realized = b.Value
			break
		}
	}

	total := timeseries.DaysBetween(start, end)
	elapsed := timeseries.DaysBetween(start, now)
	remaining := total - elapsed

	return &domain.PeriodProjection{
		Key:         key,
		StartDate:   start,
		EndDate:     end,
		Realized:    realized,
		ElapsedDays: elapsed,
		TotalDays:   total,
		Projected:   realized + nonNegative(trend.Predict(positionOf(trend, key)))/float64(total)*float64(remaining),
	}
}

func monthStart(t time.Time) time.Time {
	d := domain.DateOf(t)
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}
