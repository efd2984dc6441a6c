package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/sartorproj/demandcast/batch"
	"github.com/sartorproj/demandcast/metrics"
	"github.com/sartorproj/demandcast/report"
	"github.com/sartorproj/demandcast/timeseries"
)

func forecastCommand() *cli.Command {
	flags := append(methodFlags(),
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Value:   "-",
			Usage:   "Report path (.csv, .json, .xlsx) or - for stdout",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Value:   "csv",
			Usage:   "Stdout format (csv, json)",
		},
		&cli.IntFlag{
			Name:  "holdout",
			Usage: "Hold back the last N observations per product and classify them",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Products forecast in parallel",
		},
		&cli.BoolFlag{
			Name:  "clamp-estimates",
			Usage: "Floor previous estimates at epsilon instead of failing",
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "Write Prometheus metrics in text format to this path",
		},
	)

	return &cli.Command{
		Name:   "forecast",
		Usage:  "Forecast every product in a history file",
		Flags:  flags,
		Action: runForecast,
	}
}

func runForecast(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := applyMethodFlags(c, cfg); err != nil {
		return err
	}
	if c.IsSet("workers") {
		cfg.Batch.Workers = c.Int("workers")
	}
	if c.IsSet("clamp-estimates") {
		cfg.Batch.ClampEstimates = c.Bool("clamp-estimates")
	}
	if c.IsSet("metrics-file") {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Path = c.String("metrics-file")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	loaded, err := timeseries.LoadCSV(c.String("input"), cfg.CSVOptions())
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	options := []batch.Option{batch.WithLogger(logger)}
	var recorder *metrics.Recorder
	if cfg.Metrics.Enabled {
		recorder = metrics.New(cfg.Metrics.Namespace)
		options = append(options, batch.WithMetrics(recorder))
	}

	runner := batch.NewRunner(batch.Options{
		Method:         cfg.Method,
		Horizon:        cfg.Horizon,
		Config:         &cfg.Forecast,
		Workers:        cfg.Batch.Workers,
		Holdout:        c.Int("holdout"),
		ClampEstimates: cfg.Batch.ClampEstimates,
		Tiers:          cfg.Demand,
	}, options...)

	rep, runErr := runner.RunProducts(c.Context, loaded)
	if rep != nil {
		if err := writeReport(c, rep); err != nil {
			return err
		}
	}
	if recorder != nil && cfg.Metrics.Path != "" {
		if err := recorder.WriteFile(cfg.Metrics.Path); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return runErr
}

func writeReport(c *cli.Context, rep *batch.Report) error {
	output := c.String("output")
	if output == "" || output == "-" {
		format, err := report.ParseFormat(c.String("format"))
		if err != nil {
			return err
		}
		if format == report.FormatXLSX {
			return fmt.Errorf("xlsx output needs --output with a file path")
		}
		return report.Write(c.App.Writer, format, rep)
	}
	return report.WriteFile(output, rep)
}
