package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/sartorproj/demandcast/backtest"
	"github.com/sartorproj/demandcast/selector"
	"github.com/sartorproj/demandcast/timeseries"
)

func compareCommand() *cli.Command {
	flags := append(methodFlags(),
		&cli.IntFlag{
			Name:  "test-size",
			Usage: "Observations held out per product (default: a fifth of the history, at least one cycle)",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print the comparison as JSON",
		},
	)

	return &cli.Command{
		Name:   "compare",
		Usage:  "Back-test every method on each product's recent history",
		Flags:  flags,
		Action: runCompare,
	}
}

type productComparison struct {
	ID         string               `json:"id"`
	Comparison *backtest.Comparison `json:"comparison,omitempty"`
	Error      string               `json:"error,omitempty"`
}

func runCompare(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := applyMethodFlags(c, cfg); err != nil {
		return err
	}

	loaded, err := timeseries.LoadCSV(c.String("input"), cfg.CSVOptions())
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	registry := selector.NewRegistry(&cfg.Forecast, nil, nil)
	results := make([]productComparison, 0, len(loaded.Products))
	for _, p := range loaded.Products {
		pc := productComparison{ID: p.ID}

		series, err := timeseries.New(p.Observations)
		if err != nil {
			pc.Error = err.Error()
			results = append(results, pc)
			continue
		}
		series.Name = p.ID

		testSize := c.Int("test-size")
		if testSize == 0 {
			testSize = backtest.TestSize(series.Len(), cfg.Forecast.SeasonalPeriod)
		}
		cmp, err := backtest.Compare(series, registry, testSize)
		if err != nil {
			pc.Error = err.Error()
		}
		pc.Comparison = cmp
		results = append(results, pc)
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tMETHOD\tRMSE\tMAE\tMAPE\tNOTE")
	for _, pc := range results {
		if pc.Comparison == nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t%s\n", pc.ID, pc.Error)
			continue
		}
		for _, s := range pc.Comparison.Scores {
			if s.Err != nil {
				fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t%v\n", pc.ID, s.Method, s.Err)
				continue
			}
			note := ""
			if s.Method == pc.Comparison.Best {
				note = "best"
			}
			fmt.Fprintf(tw, "%s\t%s\t%.4f\t%.4f\t%.2f%%\t%s\n", pc.ID, s.Method, s.RMSE, s.MAE, s.MAPE, note)
		}
	}
	return tw.Flush()
}
