package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/shiftops/internal/aggregation"
	"github.com/andresuchdata/shiftops/internal/cache"
	"github.com/andresuchdata/shiftops/internal/domain"
	"github.com/andresuchdata/shiftops/internal/economics"
	"github.com/andresuchdata/shiftops/internal/export"
	"github.com/andresuchdata/shiftops/internal/filter"
	"github.com/andresuchdata/shiftops/internal/forecast"
	"github.com/andresuchdata/shiftops/internal/repository"
	"github.com/andresuchdata/shiftops/internal/timeseries"
	"github.com/rs/zerolog/log"
)

type ShiftAnalyticsService struct {
	repo      repository.ShiftRepository
	cache     cache.StatisticsCache
	calc      *economics.Calculator
	engine    *aggregation.Engine
	buckets   *timeseries.Bucketizer
	generator *export.Generator
	now       func() time.Time
}

func NewShiftAnalyticsService(repo repository.ShiftRepository, cacheImpl cache.StatisticsCache, policy economics.Policy) *ShiftAnalyticsService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopStatisticsCache()
	}
	calc := economics.NewCalculator(policy)
	return &ShiftAnalyticsService{
		repo:      repo,
		cache:     cacheImpl,
		calc:      calc,
		engine:    aggregation.NewEngine(calc),
		buckets:   timeseries.NewBucketizer(calc.Policy().LiveSince),
		generator: export.NewGenerator(),
		now:       time.Now,
	}
}

// WithClock replaces the source of "now" used by forecasts and exports.
func (s *ShiftAnalyticsService) WithClock(now func() time.Time) *ShiftAnalyticsService {
	s.now = now
	return s
}

// Now is the service clock; handlers resolve defaults such as the current
// month against it.
func (s *ShiftAnalyticsService) Now() time.Time {
	return s.now()
}

func (s *ShiftAnalyticsService) Policy() economics.Policy {
	return s.calc.Policy()
}

// GetShifts returns the filtered shifts with their derived figures.
func (s *ShiftAnalyticsService) GetShifts(ctx context.Context, f domain.FilterState) ([]domain.ShiftRow, error) {
	shifts, err := s.snapshot(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.calc.Rows(shifts), nil
}

// GetStatistics serves totals from the cache while the shifts table is at the
// version they were computed from. Without a version the cache is bypassed.
func (s *ShiftAnalyticsService) GetStatistics(ctx context.Context, f domain.FilterState) (*domain.TableStatistics, error) {
	if err := validateFilter(f); err != nil {
		return nil, err
	}

	version, err := s.repo.SnapshotVersion(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("shifts: snapshot version unavailable, skipping cache")
	} else if stats, ok, err := s.cache.GetStatistics(ctx, version, f); err == nil && ok {
		return stats, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("shifts: cache get statistics failed")
	}

	shifts, err := s.snapshot(ctx, f)
	if err != nil {
		return nil, err
	}

	stats := s.engine.ComputeStatistics(shifts)

	if version != "" {
		if err := s.cache.SetStatistics(ctx, version, f, &stats); err != nil {
			log.Warn().Err(err).Msg("shifts: cache set statistics failed")
		}
	}

	return &stats, nil
}

// GetFilterOptions lists the values every multi-select can offer, taken from
// the whole unfiltered snapshot.
func (s *ShiftAnalyticsService) GetFilterOptions(ctx context.Context) (*domain.FilterOptions, error) {
	shifts, err := s.repo.ListShifts(ctx, domain.DateRange{})
	if err != nil {
		return nil, err
	}
	opts := filter.Options(shifts)
	return &opts, nil
}

func (s *ShiftAnalyticsService) GetBuckets(ctx context.Context, f domain.FilterState, g domain.Granularity, m domain.Metric) ([]domain.TimeBucket, error) {
	metric, err := s.metricFunc(m)
	if err != nil {
		return nil, err
	}
	if err := validateGranularity(g); err != nil {
		return nil, err
	}

	shifts, err := s.snapshot(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.buckets.Bucketize(shifts, g, metric), nil
}

// GetTrend fits a trend over the bucketed metric. It returns
// ErrInsufficientData when there are too few buckets.
func (s *ShiftAnalyticsService) GetTrend(ctx context.Context, f domain.FilterState, g domain.Granularity, m domain.Metric) (*domain.TrendReport, error) {
	buckets, err := s.GetBuckets(ctx, f, g, m)
	if err != nil {
		return nil, err
	}

	trend := forecast.AnalyzeTrend(buckets, g)
	if trend == nil {
		return nil, fmt.Errorf("%w: %d buckets", ErrInsufficientData, len(buckets))
	}

	return &domain.TrendReport{
		Metric:        m,
		Granularity:   g,
		Buckets:       buckets,
		Trend:         trend,
		CurrentPeriod: forecast.ProjectCurrentPeriod(buckets, trend, g, s.now()),
	}, nil
}

// GetMonthForecast estimates the total of the month containing month. Without
// enough buckets for a trend, past and current months still resolve from
// realized data.
func (s *ShiftAnalyticsService) GetMonthForecast(ctx context.Context, f domain.FilterState, g domain.Granularity, m domain.Metric, month time.Time) (*domain.MonthForecast, error) {
	metric, err := s.metricFunc(m)
	if err != nil {
		return nil, err
	}
	if err := validateGranularity(g); err != nil {
		return nil, err
	}
	if month.IsZero() {
		return nil, fmt.Errorf("%w: month is required", ErrInvalidInput)
	}

	shifts, err := s.snapshot(ctx, f)
	if err != nil {
		return nil, err
	}

	trend := forecast.AnalyzeTrend(s.buckets.Bucketize(shifts, g, metric), g)
	_, start, end := timeseries.Period(month, domain.GranularityMonth)
	realized := s.buckets.Sum(shifts, start, end, metric)

	fc := forecast.ForecastMonth(trend, realized, g, month, s.now())
	return &fc, nil
}

func (s *ShiftAnalyticsService) GetBreakdown(ctx context.Context, f domain.FilterState, by domain.BreakdownDimension) ([]domain.GroupStatistics, error) {
	switch by {
	case domain.BreakdownByOrganization, domain.BreakdownByPromoter:
	default:
		return nil, fmt.Errorf("%w: unknown breakdown %q", ErrInvalidInput, by)
	}

	shifts, err := s.snapshot(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.engine.Breakdown(shifts, by), nil
}

// ExportReport renders the filtered table, its totals and the per-organization
// breakdown as an xlsx workbook. The file name carries the same timestamp as
// the workbook.
func (s *ShiftAnalyticsService) ExportReport(ctx context.Context, f domain.FilterState) (*export.File, error) {
	shifts, err := s.snapshot(ctx, f)
	if err != nil {
		return nil, err
	}

	generatedAt := s.now()
	data, err := s.generator.Generate(export.Report{
		GeneratedAt: generatedAt,
		Filter:      f,
		Rows:        s.calc.Rows(shifts),
		Statistics:  s.engine.ComputeStatistics(shifts),
		Groups:      s.engine.Breakdown(shifts, domain.BreakdownByOrganization),
	})
	if err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}

	log.Info().Int("shifts", len(shifts)).Int("bytes", len(data)).Msg("Generated shift report")
	return &export.File{
		Name:        export.ObjectKey("", generatedAt),
		GeneratedAt: generatedAt,
		Data:        data,
	}, nil
}

func (s *ShiftAnalyticsService) InvalidateCache(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}

// snapshot loads the shifts in f's date range and applies the remaining
// filter dimensions.
func (s *ShiftAnalyticsService) snapshot(ctx context.Context, f domain.FilterState) ([]domain.Shift, error) {
	if err := validateFilter(f); err != nil {
		return nil, err
	}

	shifts, err := s.repo.ListShifts(ctx, f.DateRange)
	if err != nil {
		return nil, fmt.Errorf("load shifts: %w", err)
	}
	return filter.Apply(shifts, f), nil
}

func (s *ShiftAnalyticsService) metricFunc(m domain.Metric) (timeseries.MetricFunc, error) {
	switch m {
	case domain.MetricKMS, domain.MetricKVV, "":
		// Both stakeholders receive the same per-shift share.
		return s.calc.ProfitShare, nil
	case domain.MetricRevenue:
		return s.calc.Revenue, nil
	case domain.MetricNetProfit:
		return s.calc.NetProfit, nil
	case domain.MetricContacts:
		return func(sh domain.Shift) float64 { return float64(sh.ContactsCount) }, nil
	default:
		return nil, fmt.Errorf("%w: unknown metric %q", ErrInvalidInput, m)
	}
}

func validateGranularity(g domain.Granularity) error {
	switch g {
	case domain.GranularityDay, domain.GranularityWeek, domain.GranularityMonth, domain.GranularityYear:
		return nil
	}
	return fmt.Errorf("%w: unknown granularity %q", ErrInvalidInput, g)
}

func validateFilter(f domain.FilterState) error {
	r := f.DateRange
	if !r.From.IsZero() && !r.To.IsZero() && domain.DateOf(r.To).Before(domain.DateOf(r.From)) {
		return fmt.Errorf("%w: date_to is before date_from", ErrInvalidInput)
	}
	for _, pt := range f.PaymentTypes {
		if pt != domain.PaymentCash && pt != domain.PaymentCashless {
			return fmt.Errorf("%w: unknown payment type %q", ErrInvalidInput, pt)
		}
	}
	return nil
}
