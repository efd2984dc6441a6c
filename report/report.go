// Package report writes batch outcomes as CSV, JSON or XLSX.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sartorproj/demandcast/batch"
)

// Format is an output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// ParseFormat resolves a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatCSV, FormatJSON, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported report format %q", s)
	}
}

// FormatFromPath infers the format from a file extension, defaulting to CSV.
func FormatFromPath(path string) Format {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f
	}
	return FormatCSV
}

// Row is the flat, one-line-per-product view of an outcome. Optional values
// are pointers so absent bounds and verdicts stay empty cells.
type Row struct {
	ID             string
	Status         string
	Requested      string
	MethodUsed     string
	Period         int
	Horizon        int
	PointForecast  float64
	Lower          *float64
	Upper          *float64
	DemandLevel    string
	Observed       *float64
	IsAnomaly      *bool
	DeviationRatio *float64
	Reason         string
	Error          string
}

// Header is the column order of Row.Strings.
var Header = []string{
	"product_id", "status", "requested", "method_used", "period", "horizon",
	"point_forecast", "lower_bound", "upper_bound", "demand_level",
	"observed", "is_anomaly", "deviation_ratio", "reason", "error",
}

// Rows flattens the outcomes of a report, in job order.
func Rows(r *batch.Report) []Row {
	rows := make([]Row, 0, len(r.Outcomes))
	for i := range r.Outcomes {
		o := &r.Outcomes[i]
		row := Row{ID: o.ID}
		if o.Err != nil {
			row.Status = "error"
			row.Reason = o.Reason
			row.Error = o.Err.Error()
			rows = append(rows, row)
			continue
		}

		row.Status = "ok"
		res := o.Result
		row.Requested = string(res.Requested)
		row.MethodUsed = string(res.MethodUsed)
		row.Period = res.Period
		row.Horizon = res.Horizon
		row.PointForecast = res.PointForecast
		row.DemandLevel = string(o.DemandLevel)
		if res.Bounds != nil {
			lo, hi := res.Bounds.Lower, res.Bounds.Upper
			row.Lower, row.Upper = &lo, &hi
		}
		if v := o.Verdict; v != nil {
			observed, anomalous, ratio := v.Observed, v.IsAnomaly, v.DeviationRatio
			row.Observed, row.IsAnomaly, row.DeviationRatio = &observed, &anomalous, &ratio
		}
		rows = append(rows, row)
	}
	return rows
}

// Strings renders the row in Header order.
func (r Row) Strings() []string {
	out := []string{
		r.ID, r.Status, r.Requested, r.MethodUsed, "", "",
		"", optFloat(r.Lower), optFloat(r.Upper), r.DemandLevel,
		optFloat(r.Observed), "", optFloat(r.DeviationRatio), r.Reason, r.Error,
	}
	if r.Status == "ok" {
		out[4] = strconv.Itoa(r.Period)
		out[5] = strconv.Itoa(r.Horizon)
		out[6] = formatFloat(r.PointForecast)
	}
	if r.IsAnomaly != nil {
		out[11] = strconv.FormatBool(*r.IsAnomaly)
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

// WriteCSV writes one header line and one row per outcome.
func WriteCSV(w io.Writer, r *batch.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, row := range Rows(r) {
		if err := cw.Write(row.Strings()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the whole report, including every forecast step.
func WriteJSON(w io.Writer, r *batch.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Write encodes r in format f.
func Write(w io.Writer, f Format, r *batch.Report) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, r)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatXLSX:
		return WriteXLSX(w, r)
	default:
		return fmt.Errorf("unsupported report format %q", f)
	}
}

// WriteFile writes r to path in the format given by its extension.
func WriteFile(path string, r *batch.Report) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := Write(file, FormatFromPath(path), r); err != nil {
		file.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return file.Close()
}
