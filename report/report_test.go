package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sartorproj/demandcast/anomaly"
	"github.com/sartorproj/demandcast/batch"
	"github.com/sartorproj/demandcast/demand"
	"github.com/sartorproj/demandcast/forecast"
)

func sampleReport() *batch.Report {
	bounded := forecast.NewResult(forecast.IntervalAware, []forecast.Step{
		{Period: 25, Horizon: 1, Point: 100, Bounds: &forecast.Bounds{Lower: 90, Upper: 110}},
		{Period: 26, Horizon: 2, Point: 102, Bounds: &forecast.Bounds{Lower: 88, Upper: 116}},
	})
	bounded.Requested = forecast.Auto

	plain := forecast.NewResult(forecast.ExponentialSmoothing, []forecast.Step{
		{Period: 4, Horizon: 1, Point: 108.75},
	})
	plain.Requested = forecast.HoltWinters

	err := &forecast.InsufficientDataError{Required: 1}
	return &batch.Report{
		Summary: batch.Summary{
			RunID:     "3f2b7c1e-0000-4000-8000-000000000000",
			StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			Products:  3,
			Succeeded: 2,
			Failed:    1,
			Fallbacks: 1,
			Anomalies: 1,
			Skipped:   []string{"X"},
		},
		Outcomes: []batch.Outcome{
			{
				ID:          "A",
				Result:      bounded,
				Verdict:     &anomaly.Verdict{Period: 25, Observed: 120, IsAnomaly: true, DeviationRatio: 0.2},
				DemandLevel: demand.LevelLow,
			},
			{ID: "B", Result: plain, DemandLevel: demand.LevelLow},
			{ID: "C", Err: err, Reason: "insufficient_data", Error: err.Error()},
		},
	}
}

func TestRows(t *testing.T) {
	rows := Rows(sampleReport())
	require.Len(t, rows, 3)

	a := rows[0].Strings()
	assert.Equal(t, []string{
		"A", "ok", "auto", "interval_aware", "26", "2",
		"102", "88", "116", "LOW",
		"120", "true", "0.2", "", "",
	}, a)

	b := rows[1].Strings()
	assert.Equal(t, "108.75", b[6])
	assert.Equal(t, "", b[7])
	assert.Equal(t, "", b[11])

	c := rows[2].Strings()
	assert.Equal(t, "error", c[1])
	assert.Equal(t, "", c[4])
	assert.Equal(t, "insufficient_data", c[13])
	assert.Contains(t, c[14], "insufficient data")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleReport()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, Header, records[0])
	assert.Equal(t, "B", records[2][0])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport()))

	var decoded struct {
		Summary  batch.Summary `json:"summary"`
		Outcomes []struct {
			ID     string           `json:"id"`
			Result *forecast.Result `json:"result"`
			Reason string           `json:"reason"`
		} `json:"outcomes"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 3, decoded.Summary.Products)
	require.Len(t, decoded.Outcomes, 3)
	assert.Len(t, decoded.Outcomes[0].Result.Steps, 2)
	assert.Nil(t, decoded.Outcomes[2].Result)
	assert.Equal(t, "insufficient_data", decoded.Outcomes[2].Reason)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetForecasts)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "product_id", rows[0][0])
	assert.Equal(t, "A", rows[1][0])
	assert.Equal(t, "102", rows[1][6])

	steps, err := f.GetRows(sheetSteps)
	require.NoError(t, err)
	assert.Len(t, steps, 4) // header + 2 bounded steps + 1 plain step

	summary, err := f.GetRows(sheetSummary)
	require.NoError(t, err)
	assert.Equal(t, "run_id", summary[1][0])
	assert.Equal(t, "3f2b7c1e-0000-4000-8000-000000000000", summary[1][1])
}

func TestWriteFileByExtension(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"out.csv", "out.json", "out.xlsx"} {
		path := filepath.Join(dir, name)
		require.NoError(t, WriteFile(path, sampleReport()), name)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(".XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("parquet")
	assert.Error(t, err)

	assert.Equal(t, FormatJSON, FormatFromPath("/tmp/a.json"))
	assert.Equal(t, FormatCSV, FormatFromPath("/tmp/a.txt"))

	assert.Error(t, Write(&bytes.Buffer{}, Format("parquet"), sampleReport()))
}
