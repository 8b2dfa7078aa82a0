package handlers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andresuchdata/shiftops/internal/domain"
	"github.com/andresuchdata/shiftops/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(rawQuery string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return c
}

func TestParseFilter_Empty(t *testing.T) {
	f, err := parseFilter(testContext(""))
	require.NoError(t, err)
	assert.True(t, f.IsEmpty())
}

func TestParseFilter_AllDimensions(t *testing.T) {
	f, err := parseFilter(testContext(
		"paid_by_organization=true&paid_to_worker=false&paid_kvv=all&paid_kms=" +
			"&organizations=A,B&organizations=C&organizations=A" +
			"&promoters=P1" +
			"&payment_types=Cashless" +
			"&date_from=2025-01-01&date_to=2025-01-31",
	))
	require.NoError(t, err)

	require.NotNil(t, f.PaidByOrganization)
	assert.True(t, *f.PaidByOrganization)
	require.NotNil(t, f.PaidToWorker)
	assert.False(t, *f.PaidToWorker)
	assert.Nil(t, f.PaidKVV)
	assert.Nil(t, f.PaidKMS)

	assert.Equal(t, []string{"A", "B", "C"}, f.Organizations)
	assert.Equal(t, []string{"P1"}, f.Promoters)
	assert.Equal(t, []domain.PaymentType{domain.PaymentCashless}, f.PaymentTypes)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), f.DateRange.From)
	assert.Equal(t, time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC), f.DateRange.To)
}

func TestParseFilter_Invalid(t *testing.T) {
	for _, q := range []string{
		"paid_kms=yes",
		"payment_types=barter",
		"date_to=31.01.2025",
	} {
		_, err := parseFilter(testContext(q))
		assert.ErrorIs(t, err, service.ErrInvalidInput, q)
	}
}

func TestParseSeriesParams(t *testing.T) {
	g, err := parseGranularity(testContext(""))
	require.NoError(t, err)
	assert.Equal(t, domain.GranularityWeek, g)

	g, err = parseGranularity(testContext("granularity=Month"))
	require.NoError(t, err)
	assert.Equal(t, domain.GranularityMonth, g)

	m, err := parseMetric(testContext(""))
	require.NoError(t, err)
	assert.Equal(t, domain.MetricKMS, m)

	_, err = parseMetric(testContext("metric=margin"))
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestParseMonth(t *testing.T) {
	now := time.Date(2025, time.May, 14, 18, 0, 0, 0, time.UTC)

	m, err := parseMonth(testContext(""), now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.May, 14, 0, 0, 0, 0, time.UTC), m)

	m, err = parseMonth(testContext("month=2025-02"), now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), m)

	_, err = parseMonth(testContext("month=02.2025"), now)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}
