package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/andresuchdata/shiftops/internal/config"
	"github.com/andresuchdata/shiftops/internal/domain"
	"github.com/andresuchdata/shiftops/internal/export"
	"github.com/andresuchdata/shiftops/internal/service"
	"github.com/andresuchdata/shiftops/internal/storage"
	"github.com/andresuchdata/shiftops/pkg/logger"
	"github.com/urfave/cli/v2"
)

func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: "organization", Usage: "Limit to organizations (repeatable)"},
		&cli.StringSliceFlag{Name: "promoter", Usage: "Limit to promoters (repeatable)"},
		&cli.StringSliceFlag{Name: "payment-type", Usage: "Limit to payment types: cash, cashless"},
		&cli.StringFlag{Name: "from", Usage: "First date (YYYY-MM-DD)"},
		&cli.StringFlag{Name: "to", Usage: "Last date (YYYY-MM-DD)"},
		&cli.StringFlag{Name: "paid-by-organization", Usage: "true, false or all", Value: "all"},
		&cli.StringFlag{Name: "paid-to-worker", Usage: "true, false or all", Value: "all"},
		&cli.StringFlag{Name: "paid-kvv", Usage: "true, false or all", Value: "all"},
		&cli.StringFlag{Name: "paid-kms", Usage: "true, false or all", Value: "all"},
	}
}

func seriesFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "granularity", Usage: "day, week, month or year", Value: "week"},
		&cli.StringFlag{Name: "metric", Usage: "kms, kvv, revenue, net_profit or contacts", Value: "kms"},
	}
}

func filterFromFlags(c *cli.Context) (domain.FilterState, error) {
	var (
		f   domain.FilterState
		err error
	)

	triStates := []struct {
		flag string
		dest **bool
	}{
		{"paid-by-organization", &f.PaidByOrganization},
		{"paid-to-worker", &f.PaidToWorker},
		{"paid-kvv", &f.PaidKVV},
		{"paid-kms", &f.PaidKMS},
	}
	for _, ts := range triStates {
		if *ts.dest, err = domain.ParseTriState(c.String(ts.flag)); err != nil {
			return f, fmt.Errorf("--%s: %w", ts.flag, err)
		}
	}

	f.Organizations = c.StringSlice("organization")
	f.Promoters = c.StringSlice("promoter")
	for _, raw := range c.StringSlice("payment-type") {
		pt, ok := domain.ParsePaymentType(raw)
		if !ok {
			return f, fmt.Errorf("--payment-type: unknown value %q", raw)
		}
		f.PaymentTypes = append(f.PaymentTypes, pt)
	}

	if raw := c.String("from"); raw != "" {
		if f.DateRange.From, err = domain.ParseDate(raw); err != nil {
			return f, fmt.Errorf("--from: %w", err)
		}
	}
	if raw := c.String("to"); raw != "" {
		if f.DateRange.To, err = domain.ParseDate(raw); err != nil {
			return f, fmt.Errorf("--to: %w", err)
		}
	}

	return f, nil
}

func seriesFromFlags(c *cli.Context) (domain.Granularity, domain.Metric, error) {
	g, ok := domain.ParseGranularity(c.String("granularity"))
	if !ok {
		return "", "", fmt.Errorf("--granularity: unknown value %q", c.String("granularity"))
	}
	m, ok := domain.ParseMetric(c.String("metric"))
	if !ok {
		return "", "", fmt.Errorf("--metric: unknown value %q", c.String("metric"))
	}
	return g, m, nil
}

func runMigrate(c *cli.Context) error {
	start := time.Now()
	if err := getEnv(c).repo.EnsureSchema(c.Context); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	logger.Log.Info().Dur("duration", time.Since(start)).Msg("Schema is up to date")
	return nil
}

func runStats(c *cli.Context) error {
	f, err := filterFromFlags(c)
	if err != nil {
		return err
	}

	stats, err := getEnv(c).service.GetStatistics(c.Context, f)
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, stats)
}

func runTrend(c *cli.Context) error {
	f, err := filterFromFlags(c)
	if err != nil {
		return err
	}
	g, m, err := seriesFromFlags(c)
	if err != nil {
		return err
	}

	report, err := getEnv(c).service.GetTrend(c.Context, f, g, m)
	if errors.Is(err, service.ErrInsufficientData) {
		fmt.Fprintln(c.App.Writer, "not enough data for a trend")
		return nil
	}
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, report)
}

func runForecast(c *cli.Context) error {
	f, err := filterFromFlags(c)
	if err != nil {
		return err
	}
	g, m, err := seriesFromFlags(c)
	if err != nil {
		return err
	}

	month := getEnv(c).service.Now()
	if raw := c.String("month"); raw != "" {
		if month, err = time.Parse("2006-01", raw); err != nil {
			return fmt.Errorf("--month: expected YYYY-MM, got %q", raw)
		}
	}

	fc, err := getEnv(c).service.GetMonthForecast(c.Context, f, g, m, month)
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, fc)
}

func runExport(c *cli.Context) error {
	e := getEnv(c)

	f, err := filterFromFlags(c)
	if err != nil {
		return err
	}

	file, err := e.service.ExportReport(c.Context, f)
	if err != nil {
		return err
	}

	if out := c.String("out"); out != "" {
		if err := os.WriteFile(out, file.Data, 0o644); err != nil {
			return fmt.Errorf("failed writing %s: %w", out, err)
		}
		logger.Log.Info().Str("path", out).Int("bytes", len(file.Data)).Msg("Report written")
	}

	if c.Bool("upload") {
		client, err := storage.NewS3Client(e.cfg.Storage)
		if err != nil {
			return err
		}
		key := export.ObjectKey(strings.Trim(c.String("prefix"), "/"), file.GeneratedAt)
		if err := client.UploadObject(c.Context, key, file.Data); err != nil {
			return err
		}
		logger.Log.Info().Str("bucket", e.cfg.Storage.Bucket).Str("key", key).Msg("Report uploaded")
	}

	return nil
}

func runReports(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	client, err := storage.NewS3Client(cfg.Storage)
	if err != nil {
		return err
	}

	objects, err := client.ListObjects(c.Context, strings.Trim(c.String("prefix"), "/"))
	if err != nil {
		return err
	}
	for _, obj := range objects {
		fmt.Fprintf(c.App.Writer, "%s\t%d\n", obj.Key, obj.Size)
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
