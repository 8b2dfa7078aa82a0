package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/andresuchdata/shiftops/internal/domain"
	"github.com/andresuchdata/shiftops/internal/economics"
	"github.com/andresuchdata/shiftops/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepository struct {
	shifts []domain.Shift
	err    error
}

func (r *stubRepository) ListShifts(ctx context.Context, dr domain.DateRange) ([]domain.Shift, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.Shift
	for _, s := range r.shifts {
		if dr.Contains(s.Date) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *stubRepository) SnapshotVersion(ctx context.Context) (string, error) { return "1", nil }

func (r *stubRepository) EnsureSchema(ctx context.Context) error { return nil }

func init() {
	gin.SetMode(gin.TestMode)
}

func sampleShifts() []domain.Shift {
	var shifts []domain.Shift
	for i := 0; i < 6; i++ {
		org := "Альфа"
		if i%2 == 1 {
			org = "Бета"
		}
		shifts = append(shifts, domain.Shift{
			ID:               int64(i + 1),
			Date:             time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7*i),
			OrganizationName: org,
			PromoterName:     "Иванов",
			ContactsCount:    10 + 5*i,
			ContactRate:      200,
			PaymentType:      domain.PaymentCashless,
			PaidKVV:          i < 3,
		})
	}
	return shifts
}

func newTestRouter(repo *stubRepository, ping func(context.Context) error) *gin.Engine {
	svc := service.NewShiftAnalyticsService(repo, nil, economics.DefaultPolicy())
	return NewRouter(&Services{ShiftAnalyticsService: svc, Ping: ping}, nil)
}

func newTestRouterAt(repo *stubRepository, now time.Time) *gin.Engine {
	svc := service.NewShiftAnalyticsService(repo, nil, economics.DefaultPolicy()).
		WithClock(func() time.Time { return now })
	return NewRouter(&Services{ShiftAnalyticsService: svc}, nil)
}

func do(t *testing.T, router *gin.Engine, method, path string, query url.Values) *httptest.ResponseRecorder {
	t.Helper()
	target := path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	w := do(t, newTestRouter(&stubRepository{}, nil), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	failing := func(context.Context) error { return errors.New("no route to host") }
	w = do(t, newTestRouter(&stubRepository{}, failing), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	newTestRouter(&stubRepository{}, nil).ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestGetShifts_Filtered(t *testing.T) {
	router := newTestRouter(&stubRepository{shifts: sampleShifts()}, nil)

	w := do(t, router, http.MethodGet, "/api/v1/shifts", url.Values{
		"organizations": {"Бета"},
		"paid_kvv":      {"false"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(2), body["total"])
	items := body["items"].([]interface{})
	first := items[0].(map[string]interface{})
	assert.Equal(t, "Бета", first["organization_name"])
	assert.Contains(t, first, "economics")
}

func TestGetStatistics(t *testing.T) {
	router := newTestRouter(&stubRepository{shifts: sampleShifts()}, nil)

	w := do(t, router, http.MethodGet, "/api/v1/shifts/statistics", url.Values{"paid_kvv": {"all"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(6), decode(t, w)["shift_count"])
}

func TestInvalidQueryIsBadRequest(t *testing.T) {
	router := newTestRouter(&stubRepository{shifts: sampleShifts()}, nil)

	cases := []struct {
		path  string
		query url.Values
	}{
		{"/api/v1/shifts/statistics", url.Values{"paid_kvv": {"maybe"}}},
		{"/api/v1/shifts", url.Values{"date_from": {"01.05.2025"}}},
		{"/api/v1/shifts", url.Values{"payment_types": {"barter"}}},
		{"/api/v1/shifts", url.Values{"date_from": {"2025-05-02"}, "date_to": {"2025-05-01"}}},
		{"/api/v1/shifts/breakdown", url.Values{"by": {"city"}}},
		{"/api/v1/analytics/buckets", url.Values{"granularity": {"fortnight"}}},
		{"/api/v1/analytics/trend", url.Values{"metric": {"margin"}}},
		{"/api/v1/analytics/forecast", url.Values{"month": {"2025-13"}}},
	}

	for _, tc := range cases {
		w := do(t, router, http.MethodGet, tc.path, tc.query)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%s?%s", tc.path, tc.query.Encode())
		assert.NotEmpty(t, decode(t, w)["details"])
	}
}

func TestRepositoryFailureIsInternalError(t *testing.T) {
	router := newTestRouter(&stubRepository{err: errors.New("connection reset")}, nil)

	w := do(t, router, http.MethodGet, "/api/v1/shifts/statistics", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	body := decode(t, w)
	assert.Equal(t, "failed to fetch statistics", body["error"])
	assert.Contains(t, body["details"], "connection reset")
}

func TestGetTrend(t *testing.T) {
	router := newTestRouter(&stubRepository{shifts: sampleShifts()}, nil)

	w := do(t, router, http.MethodGet, "/api/v1/analytics/trend", url.Values{
		"granularity": {"week"},
		"metric":      {"contacts"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	trend := body["trend"].(map[string]interface{})
	assert.Equal(t, "rising", trend["direction"])
	assert.InDelta(t, 5, trend["slope"], 1e-9)
	assert.Len(t, body["buckets"], 6)
}

func TestGetTrend_InsufficientDataIsNullTrend(t *testing.T) {
	router := newTestRouter(&stubRepository{shifts: sampleShifts()[:2]}, nil)

	w := do(t, router, http.MethodGet, "/api/v1/analytics/trend", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Contains(t, body, "trend")
	assert.Nil(t, body["trend"])
}

func TestGetMonthForecast_PastMonth(t *testing.T) {
	router := newTestRouter(&stubRepository{shifts: sampleShifts()}, nil)

	w := do(t, router, http.MethodGet, "/api/v1/analytics/forecast", url.Values{
		"month":  {"2025-03"},
		"metric": {"contacts"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "2025-03", body["month"])
	assert.Equal(t, "realized", body["source"])
	assert.Equal(t, float64(10+15+20+25+30), body["value"])
}

func TestGetBreakdownAndOptions(t *testing.T) {
	router := newTestRouter(&stubRepository{shifts: sampleShifts()}, nil)

	w := do(t, router, http.MethodGet, "/api/v1/shifts/breakdown", nil)
	require.Equal(t, http.StatusOK, w.Code)
	groups := decode(t, w)["groups"].([]interface{})
	assert.Len(t, groups, 2)

	w = do(t, router, http.MethodGet, "/api/v1/shifts/options", nil)
	require.Equal(t, http.StatusOK, w.Code)
	opts := decode(t, w)
	assert.Equal(t, []interface{}{"Альфа", "Бета"}, opts["organizations"])
	assert.Equal(t, []interface{}{"cash", "cashless"}, opts["payment_types"])
}

func TestExportShifts(t *testing.T) {
	router := newTestRouter(&stubRepository{shifts: sampleShifts()}, nil)

	w := do(t, router, http.MethodGet, "/api/v1/shifts/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=")
	assert.Equal(t, "PK", w.Body.String()[:2])
}

func TestExportShifts_FilenameFollowsServiceClock(t *testing.T) {
	now := time.Date(2025, time.May, 20, 9, 30, 5, 0, time.UTC)
	router := newTestRouterAt(&stubRepository{shifts: sampleShifts()}, now)

	w := do(t, router, http.MethodGet, "/api/v1/shifts/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="shifts-20250520-093005.xlsx"`, w.Header().Get("Content-Disposition"))
}

func TestGetMonthForecast_DefaultsToServiceMonth(t *testing.T) {
	now := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)
	router := newTestRouterAt(&stubRepository{shifts: sampleShifts()}, now)

	w := do(t, router, http.MethodGet, "/api/v1/analytics/forecast", url.Values{"metric": {"contacts"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-03", decode(t, w)["month"])
}

func TestInvalidateCache(t *testing.T) {
	w := do(t, newTestRouter(&stubRepository{}, nil), http.MethodDelete, "/api/v1/analytics/cache", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, allowAll := normalizeAllowedOrigins([]string{"https://a.example, https://b.example", " "})
	assert.False(t, allowAll)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, origins)

	_, allowAll = normalizeAllowedOrigins([]string{"*"})
	assert.True(t, allowAll)
}
