package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeHistory(t *testing.T) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("product_id,period,value\n")
	for p := 1; p <= 30; p++ {
		fmt.Fprintf(&b, "LINE,%d,%d\n", p, 10+p)
	}
	for p := 1; p <= 3; p++ {
		fmt.Fprintf(&b, "SHORT,%d,%d\n", p, 100)
	}

	path := filepath.Join(t.TempDir(), "history.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"demandcast", "--log-level", "disabled"}, args...))
	return out.String(), err
}

func TestForecastCommandJSON(t *testing.T) {
	input := writeHistory(t)

	out, err := runApp(t, "forecast", "--input", input, "--format", "json")
	require.NoError(t, err)

	var report struct {
		Summary struct {
			Products  int `json:"products"`
			Succeeded int `json:"succeeded"`
			Fallbacks int `json:"fallbacks"`
		} `json:"summary"`
		Outcomes []struct {
			ID     string `json:"id"`
			Result struct {
				MethodUsed    string  `json:"method_used"`
				PointForecast float64 `json:"point_forecast"`
			} `json:"result"`
		} `json:"outcomes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	assert.Equal(t, 2, report.Summary.Products)
	assert.Equal(t, 2, report.Summary.Succeeded)
	assert.Equal(t, 1, report.Summary.Fallbacks)

	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, "LINE", report.Outcomes[0].ID)
	assert.Equal(t, "interval_aware", report.Outcomes[0].Result.MethodUsed)
	assert.InDelta(t, 41, report.Outcomes[0].Result.PointForecast, 1e-9)
	assert.Equal(t, "exponential_smoothing", report.Outcomes[1].Result.MethodUsed)
}

func TestForecastCommandCSV(t *testing.T) {
	input := writeHistory(t)

	out, err := runApp(t, "forecast", "-i", input, "-m", "ses", "--horizon", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "product_id,status,requested,method_used"))
	assert.Contains(t, lines[1], "LINE,ok,exponential_smoothing,exponential_smoothing,32,2")
	assert.Contains(t, lines[2], "SHORT,ok,exponential_smoothing,exponential_smoothing,5,2,100")
}

func TestForecastCommandWritesFiles(t *testing.T) {
	input := writeHistory(t)
	dir := t.TempDir()
	reportPath := filepath.Join(dir, "report.xlsx")
	metricsPath := filepath.Join(dir, "demandcast.prom")

	_, err := runApp(t, "forecast", "-i", input, "-o", reportPath, "--metrics-file", metricsPath)
	require.NoError(t, err)

	f, err := excelize.OpenFile(reportPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Forecasts")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "demandcast_forecasts_total")
}

func writeEstimates(t *testing.T) string {
	t.Helper()

	data := "product_id,period,value,previous_estimate\n" +
		"UP,1,90,\n" +
		"UP,2,100,50\n" +
		"ZERO,1,10,\n" +
		"ZERO,2,10,0\n"
	path := filepath.Join(t.TempDir(), "estimates.csv")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestForecastCommandPreviousEstimates(t *testing.T) {
	input := writeEstimates(t)

	out, err := runApp(t, "forecast", "-i", input, "-m", "cf")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "UP,ok,correction_factor,correction_factor,3,1,200,"))
	assert.True(t, strings.HasPrefix(lines[2], "ZERO,error,"))
	assert.Contains(t, lines[2], "division_by_zero")
}

func TestForecastCommandClampEstimates(t *testing.T) {
	input := writeEstimates(t)

	out, err := runApp(t, "forecast", "-i", input, "-m", "cf", "--clamp-estimates")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "UP,ok,correction_factor,correction_factor,3,1,200,"))
	assert.True(t, strings.HasPrefix(lines[2], "ZERO,ok,correction_factor,correction_factor,3,1,"))
	assert.NotContains(t, lines[2], "division_by_zero")
}

func TestForecastCommandErrors(t *testing.T) {
	input := writeHistory(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing input", []string{"forecast"}},
		{"unknown method", []string{"forecast", "-i", input, "-m", "arima"}},
		{"bad horizon", []string{"forecast", "-i", input, "--horizon", "0"}},
		{"bad interval", []string{"forecast", "-i", input, "--interval", "wide"}},
		{"xlsx to stdout", []string{"forecast", "-i", input, "--format", "xlsx"}},
		{"missing file", []string{"forecast", "-i", filepath.Join(t.TempDir(), "nope.csv")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runApp(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestCompareCommand(t *testing.T) {
	input := writeHistory(t)

	out, err := runApp(t, "compare", "-i", input, "--seasonal-period", "4", "--json")
	require.NoError(t, err)

	var results []struct {
		ID         string `json:"id"`
		Comparison *struct {
			Test   int    `json:"test"`
			Best   string `json:"best"`
			Scores []struct {
				Method string  `json:"method"`
				RMSE   float64 `json:"rmse"`
			} `json:"scores"`
		} `json:"comparison"`
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)

	line := results[0]
	require.NotNil(t, line.Comparison)
	assert.Equal(t, 6, line.Comparison.Test)
	assert.Equal(t, "interval_aware", line.Comparison.Best)
	assert.Len(t, line.Comparison.Scores, 4)
}

func TestCompareCommandTable(t *testing.T) {
	input := writeHistory(t)

	out, err := runApp(t, "compare", "-i", input)
	require.NoError(t, err)
	assert.Contains(t, out, "PRODUCT")
	assert.Contains(t, out, "LINE")
	assert.Contains(t, out, "best")
}

func TestMethodsCommand(t *testing.T) {
	out, err := runApp(t, "methods")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[1], "interval_aware")
	assert.Contains(t, lines[1], "8")
	assert.Contains(t, lines[2], "holt_winters")
	assert.Contains(t, lines[2], "24")
	assert.Contains(t, lines[4], "correction_factor")
}
