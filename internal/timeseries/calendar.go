package timeseries

import (
	"fmt"
	"time"

	"github.com/andresuchdata/shiftops/internal/domain"
)

var monthNames = [...]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

// Period returns the key and inclusive bounds of the bucket containing date.
// Weeks start on Monday.
func Period(date time.Time, g domain.Granularity) (key string, start, end time.Time) {
	d := domain.DateOf(date)

	switch g {
	case domain.GranularityWeek:
		start = WeekStart(d)
		end = start.AddDate(0, 0, 6)
		key = start.Format(domain.DateLayout)
	case domain.GranularityMonth:
		start = time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, -1)
		key = start.Format("2006-01")
	case domain.GranularityYear:
		start = time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(d.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
		key = start.Format("2006")
	default:
		start, end = d, d
		key = d.Format(domain.DateLayout)
	}
	return key, start, end
}

// NextPeriodStart returns the first day of the bucket after the one starting at start.
func NextPeriodStart(start time.Time, g domain.Granularity) time.Time {
	switch g {
	case domain.GranularityWeek:
		return start.AddDate(0, 0, 7)
	case domain.GranularityMonth:
		return start.AddDate(0, 1, 0)
	case domain.GranularityYear:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// WeekStart returns the Monday on or before d.
func WeekStart(d time.Time) time.Time {
	d = domain.DateOf(d)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// DaysInMonth returns the length of the month containing d.
func DaysInMonth(d time.Time) int {
	return time.Date(d.Year(), d.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysBetween counts calendar days in [start, end].
func DaysBetween(start, end time.Time) int {
	return int(domain.DateOf(end).Sub(domain.DateOf(start)).Hours()/24) + 1
}

// Label is the display string for a bucket.
func Label(g domain.Granularity, start, end time.Time) string {
	switch g {
	case domain.GranularityWeek:
		return fmt.Sprintf("%s–%s", start.Format("02.01"), end.Format("02.01.2006"))
	case domain.GranularityMonth:
		return fmt.Sprintf("%s %d", monthNames[start.Month()-1], start.Year())
	case domain.GranularityYear:
		return start.Format("2006")
	default:
		return start.Format("02.01.2006")
	}
}
