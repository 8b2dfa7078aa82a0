// cmd/shiftctl/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/andresuchdata/shiftops/internal/cache"
	"github.com/andresuchdata/shiftops/internal/config"
	"github.com/andresuchdata/shiftops/internal/economics"
	"github.com/andresuchdata/shiftops/internal/repository"
	"github.com/andresuchdata/shiftops/internal/repository/postgres"
	"github.com/andresuchdata/shiftops/internal/service"
	"github.com/andresuchdata/shiftops/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"
)

type envKey struct{}

// env is what every subcommand works with once the database is open.
type env struct {
	cfg     *config.Config
	db      *postgres.DB
	repo    repository.ShiftRepository
	service *service.ShiftAnalyticsService
}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initEnv(c *cli.Context) error {
	logger.SetLevel(c.String("log-level"))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := sqlx.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(c.Context); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	wrapped := postgres.Wrap(db)
	repo := postgres.NewShiftRepository(wrapped)

	c.Context = context.WithValue(c.Context, envKey{}, &env{
		cfg:     cfg,
		db:      wrapped,
		repo:    repo,
		service: service.NewShiftAnalyticsService(repo, cache.NewNoopStatisticsCache(), economics.PolicyFromConfig(cfg.Economics)),
	})
	return nil
}

func closeEnv(c *cli.Context) error {
	if e, ok := c.Context.Value(envKey{}).(*env); ok && e != nil {
		return e.db.Close()
	}
	return nil
}

func getEnv(c *cli.Context) *env {
	return c.Context.Value(envKey{}).(*env)
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "shiftctl",
		Usage: "Inspect shift economics and forecasts from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Create or update the shifts schema",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initEnv,
				After:  closeEnv,
				Action: runMigrate,
			},
			{
				Name:   "stats",
				Usage:  "Print table statistics for a filter",
				Flags:  append([]cli.Flag{newDBURLFlag()}, filterFlags()...),
				Before: initEnv,
				After:  closeEnv,
				Action: runStats,
			},
			{
				Name:   "trend",
				Usage:  "Print the bucketed series and its linear trend",
				Flags:  append([]cli.Flag{newDBURLFlag()}, append(filterFlags(), seriesFlags()...)...),
				Before: initEnv,
				After:  closeEnv,
				Action: runTrend,
			},
			{
				Name:  "forecast",
				Usage: "Forecast the total of a month",
				Flags: append([]cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:  "month",
						Usage: "Target month (YYYY-MM), defaults to the current month",
					},
				}, append(filterFlags(), seriesFlags()...)...),
				Before: initEnv,
				After:  closeEnv,
				Action: runForecast,
			},
			{
				Name:  "export",
				Usage: "Write the filtered shifts report as xlsx",
				Flags: append([]cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:  "out",
						Usage: "Output file; empty skips writing locally",
						Value: "shifts.xlsx",
					},
					&cli.BoolFlag{
						Name:  "upload",
						Usage: "Upload the report to object storage",
					},
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "Object key prefix for uploads",
						Value: "reports",
					},
				}, filterFlags()...),
				Before: initEnv,
				After:  closeEnv,
				Action: runExport,
			},
			{
				Name:  "reports",
				Usage: "List reports uploaded to object storage",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "Object key prefix",
						Value: "reports",
					},
				},
				Action: runReports,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("shiftctl failed")
	}
}
