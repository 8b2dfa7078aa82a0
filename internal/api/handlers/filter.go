package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/shiftops/internal/domain"
	"github.com/andresuchdata/shiftops/internal/service"
	"github.com/gin-gonic/gin"
)

// parseFilter reads a FilterState from the query string. Malformed values are
// rejected.
func parseFilter(c *gin.Context) (domain.FilterState, error) {
	var (
		f   domain.FilterState
		err error
	)

	triStates := []struct {
		param string
		dest  **bool
	}{
		{"paid_by_organization", &f.PaidByOrganization},
		{"paid_to_worker", &f.PaidToWorker},
		{"paid_kvv", &f.PaidKVV},
		{"paid_kms", &f.PaidKMS},
	}
	for _, ts := range triStates {
		if *ts.dest, err = domain.ParseTriState(c.Query(ts.param)); err != nil {
			return f, invalid("%s: %v", ts.param, err)
		}
	}

	f.Organizations = queryList(c, "organizations")
	f.Promoters = queryList(c, "promoters")

	for _, raw := range queryList(c, "payment_types") {
		pt, ok := domain.ParsePaymentType(raw)
		if !ok {
			return f, invalid("payment_types: unknown value %q", raw)
		}
		f.PaymentTypes = append(f.PaymentTypes, pt)
	}

	if f.DateRange.From, err = parseDateParam(c, "date_from"); err != nil {
		return f, err
	}
	if f.DateRange.To, err = parseDateParam(c, "date_to"); err != nil {
		return f, err
	}

	return f, nil
}

// queryList supports both repeated params and comma-separated values:
//
//	?organizations=A&organizations=B
//	?organizations=A,B
func queryList(c *gin.Context, param string) []string {
	var values []string
	seen := make(map[string]struct{})
	for _, v := range c.QueryArray(param) {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			values = append(values, part)
		}
	}
	return values
}

func parseDateParam(c *gin.Context, param string) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(param))
	if raw == "" {
		return time.Time{}, nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return time.Time{}, invalid("%s: expected YYYY-MM-DD, got %q", param, raw)
	}
	return d, nil
}

func parseGranularity(c *gin.Context) (domain.Granularity, error) {
	raw := c.DefaultQuery("granularity", string(domain.GranularityWeek))
	g, ok := domain.ParseGranularity(raw)
	if !ok {
		return "", invalid("granularity: unknown value %q", raw)
	}
	return g, nil
}

func parseMetric(c *gin.Context) (domain.Metric, error) {
	raw := c.Query("metric")
	m, ok := domain.ParseMetric(raw)
	if !ok {
		return "", invalid("metric: unknown value %q", raw)
	}
	return m, nil
}

// parseMonth reads ?month=YYYY-MM, defaulting to the month containing now.
func parseMonth(c *gin.Context, now time.Time) (time.Time, error) {
	raw := strings.TrimSpace(c.Query("month"))
	if raw == "" {
		return domain.DateOf(now), nil
	}
	m, err := time.Parse("2006-01", raw)
	if err != nil {
		return time.Time{}, invalid("month: expected YYYY-MM, got %q", raw)
	}
	return m, nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", service.ErrInvalidInput, fmt.Sprintf(format, args...))
}
