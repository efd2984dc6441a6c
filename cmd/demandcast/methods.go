package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/sartorproj/demandcast/forecast"
	"github.com/sartorproj/demandcast/selector"
)

func methodsCommand() *cli.Command {
	return &cli.Command{
		Name:   "methods",
		Usage:  "List the forecasting methods in fallback order with their minimum history",
		Action: runMethods,
	}
}

func runMethods(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	registry := selector.NewRegistry(&cfg.Forecast, nil, nil)
	tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tMETHOD\tMIN HISTORY\tBOUNDS")
	for i, kind := range forecast.Kinds() {
		method, err := registry.Method(kind)
		if err != nil {
			return err
		}
		bounds := "no"
		if kind == forecast.IntervalAware {
			bounds = cfg.Forecast.Interval.String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", i+1, kind, method.MinHistory(), bounds)
	}
	return tw.Flush()
}
