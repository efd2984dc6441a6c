// demandcast forecasts per-product demand and flags anomalies.
//
// Usage:
//
//	demandcast forecast --input history.csv [--output report.xlsx] [options]
//	demandcast compare --input history.csv [--test-size N] [--json]
//	demandcast methods
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/sartorproj/demandcast/config"
	"github.com/sartorproj/demandcast/forecast"
	"github.com/sartorproj/demandcast/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "demandcast",
		Usage:   "Demand forecasting and anomaly detection for product sales histories",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config (default: demandcast.yaml when present)",
				EnvVars: []string{"DEMANDCAST_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format (console, json)",
			},
		},

		Commands: []*cli.Command{
			forecastCommand(),
			compareCommand(),
			methodsCommand(),
		},
	}
}

// loadConfig reads the config file, environment and global flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		if found, err := config.Find("demandcast.yaml", "demandcast.yml"); err == nil {
			path = found
		}
	}

	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, err
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.Log.Format = c.String("log-format")
	}
	return cfg, nil
}

// applyMethodFlags copies the method-related flags shared by several
// commands onto cfg.
func applyMethodFlags(c *cli.Context, cfg *config.Config) error {
	if c.IsSet("method") {
		kind, err := forecast.ParseMethodKind(c.String("method"))
		if err != nil {
			return err
		}
		cfg.Method = kind
	}
	if c.IsSet("horizon") {
		cfg.Horizon = c.Int("horizon")
	}
	if c.IsSet("alpha") {
		cfg.Forecast.Alpha = c.Float64("alpha")
	}
	if c.IsSet("seasonal-period") {
		cfg.Forecast.SeasonalPeriod = c.Int("seasonal-period")
	}
	if c.IsSet("interval") {
		switch p := forecast.IntervalKind(c.String("interval")); p {
		case forecast.StdMultipleInterval, forecast.EmpiricalQuantileInterval:
			cfg.Forecast.Interval.Policy = p
		default:
			return fmt.Errorf("unknown interval policy %q", p)
		}
	}
	if c.IsSet("coverage") {
		cfg.Forecast.Interval.Coverage = c.Float64("coverage")
	}
	if c.IsSet("rank-column") {
		cfg.Input.RankColumn = c.String("rank-column")
	}
	if c.IsSet("estimate-column") {
		cfg.Input.EstimateColumn = c.String("estimate-column")
	}
	if c.IsSet("allow") {
		cfg.Input.Allow = c.StringSlice("allow")
	}
	return cfg.Validate()
}

func methodFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "input",
			Aliases:  []string{"i"},
			Usage:    "Path to long-format history CSV (product_id, period, value)",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "method",
			Aliases: []string{"m"},
			Value:   "auto",
			Usage:   "Method (auto, interval_aware, holt_winters, exponential_smoothing, correction_factor)",
		},
		&cli.IntFlag{
			Name:  "horizon",
			Value: 1,
			Usage: "Periods to forecast past the last observation",
		},
		&cli.Float64Flag{
			Name:  "alpha",
			Usage: "Smoothing weight for exponential smoothing and Holt-Winters level",
		},
		&cli.IntFlag{
			Name:  "seasonal-period",
			Usage: "Periods per seasonal cycle",
		},
		&cli.StringFlag{
			Name:  "interval",
			Usage: "Interval policy (std_multiple, empirical_quantile)",
		},
		&cli.Float64Flag{
			Name:  "coverage",
			Usage: "Interval coverage in (0, 1)",
		},
		&cli.StringFlag{
			Name:  "rank-column",
			Usage: "Read best-seller ranks from this column and convert them to sales",
		},
		&cli.StringFlag{
			Name:  "estimate-column",
			Usage: "Column of previous estimates fed to the correction-factor method",
		},
		&cli.StringSliceFlag{
			Name:  "allow",
			Usage: "Only forecast these product ids",
		},
	}
}

func newLogger(cfg *config.Config) (zerolog.Logger, error) {
	return logging.New(&cfg.Log)
}
