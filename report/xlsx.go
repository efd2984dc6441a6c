package report

import (
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sartorproj/demandcast/batch"
)

const (
	sheetForecasts = "Forecasts"
	sheetSteps     = "Steps"
	sheetSummary   = "Summary"
)

// WriteXLSX writes a workbook with a Forecasts sheet (one row per product),
// a Steps sheet (one row per forecast step) and a Summary sheet.
func WriteXLSX(w io.Writer, r *batch.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetForecasts); err != nil {
		return err
	}
	if err := writeSheet(f, sheetForecasts, Header, forecastRows(r)); err != nil {
		return err
	}

	if _, err := f.NewSheet(sheetSteps); err != nil {
		return err
	}
	stepHeader := []string{"product_id", "period", "horizon", "point_forecast", "lower_bound", "upper_bound"}
	if err := writeSheet(f, sheetSteps, stepHeader, stepRows(r)); err != nil {
		return err
	}

	if _, err := f.NewSheet(sheetSummary); err != nil {
		return err
	}
	if err := writeSheet(f, sheetSummary, []string{"field", "value"}, summaryRows(r)); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}) error {
	head := make([]interface{}, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// forecastRows keeps numbers numeric so spreadsheet formulas work on them.
func forecastRows(r *batch.Report) [][]interface{} {
	rows := Rows(r)
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(Header))
		for j, s := range row.Strings() {
			cells[j] = s
		}
		if row.Status == "ok" {
			cells[4] = row.Period
			cells[5] = row.Horizon
			cells[6] = row.PointForecast
		}
		for j, v := range map[int]*float64{7: row.Lower, 8: row.Upper, 10: row.Observed, 12: row.DeviationRatio} {
			if v != nil {
				cells[j] = *v
			}
		}
		if row.IsAnomaly != nil {
			cells[11] = *row.IsAnomaly
		}
		out[i] = cells
	}
	return out
}

func stepRows(r *batch.Report) [][]interface{} {
	var out [][]interface{}
	for _, o := range r.Outcomes {
		if o.Result == nil {
			continue
		}
		for _, s := range o.Result.Steps {
			row := []interface{}{o.ID, s.Period, s.Horizon, s.Point, "", ""}
			if s.Bounds != nil {
				row[4], row[5] = s.Bounds.Lower, s.Bounds.Upper
			}
			out = append(out, row)
		}
	}
	return out
}

func summaryRows(r *batch.Report) [][]interface{} {
	s := r.Summary
	return [][]interface{}{
		{"run_id", s.RunID},
		{"started_at", s.StartedAt.Format(time.RFC3339)},
		{"duration", s.Duration.String()},
		{"products", s.Products},
		{"succeeded", s.Succeeded},
		{"failed", s.Failed},
		{"fallbacks", s.Fallbacks},
		{"anomalies", s.Anomalies},
		{"skipped", strings.Join(s.Skipped, ",")},
	}
}
