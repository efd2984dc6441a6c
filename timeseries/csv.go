package timeseries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sartorproj/demandcast/demand"
)

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	IDColumn       string       // Column name for the product id (default: "product_id")
	PeriodColumn   string       // Column name for the period index (default: "period")
	ValueColumn    string       // Column name for observed sales (default: "value")
	RankColumn     string       // When set, read ranks from this column and convert them to sales
	EstimateColumn string       // Optional column of earlier forecasts (default: "previous_estimate")
	Tiers          demand.Tiers // Rank to sales table used with RankColumn
	Allow          []string     // Only keep these product ids (optional)
	HasHeader      bool         // Whether CSV has header row (default: true)
	Delimiter      rune         // Field delimiter (default: ',')
	SkipRows       int          // Number of rows to skip at start
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		IDColumn:       "product_id",
		PeriodColumn:   "period",
		ValueColumn:    "value",
		EstimateColumn: "previous_estimate",
		Tiers:          demand.DefaultTiers(),
		HasHeader:      true,
		Delimiter:      ',',
	}
}

// Product is one product's raw observations, sorted by period.
type Product struct {
	ID           string
	Observations []Observation
	// PreviousEstimate is the estimate given on the product's latest
	// observed period, nil when that row carries none.
	PreviousEstimate *float64

	estimatePeriod int
}

// LoadResult holds the loaded products and the ids dropped by the allow list.
type LoadResult struct {
	Products []Product
	Skipped  []string
}

// LoadCSV loads per-product series from a CSV file.
func LoadCSV(filename string, opts *CSVOptions) (*LoadResult, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadCSVFromReader(file, opts)
}

// LoadCSVFromReader loads per-product series from an io.Reader in long
// format (one row per product and period). Products keep their first-seen
// order; observations are sorted by period within each product. Duplicate
// periods are kept so that series validation can reject them.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*LoadResult, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	// Skip rows if needed
	for i := 0; i < opts.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, err
		}
	}

	idIdx, periodIdx, valueIdx, estimateIdx := 0, 1, 2, -1
	line := opts.SkipRows

	if opts.HasHeader {
		header, err := reader.Read()
		if err != nil {
			return nil, err
		}
		line++
		idIdx, periodIdx, valueIdx = -1, -1, -1

		valueColumn := opts.ValueColumn
		if opts.RankColumn != "" {
			valueColumn = opts.RankColumn
		}

		for i, h := range header {
			h = strings.TrimSpace(strings.Trim(h, "\""))
			switch {
			case h == opts.IDColumn:
				idIdx = i
			case h == "asin" || h == "unique_id" || h == "id":
				if idIdx == -1 {
					idIdx = i
				}
			case h == opts.PeriodColumn:
				periodIdx = i
			case h == valueColumn:
				valueIdx = i
			case opts.EstimateColumn != "" && h == opts.EstimateColumn:
				estimateIdx = i
			case opts.RankColumn == "" && (h == "y" || h == "sales"):
				if valueIdx == -1 {
					valueIdx = i
				}
			}
		}

		if idIdx == -1 {
			return nil, fmt.Errorf("id column %q not found", opts.IDColumn)
		}
		if periodIdx == -1 {
			return nil, fmt.Errorf("period column %q not found", opts.PeriodColumn)
		}
		if valueIdx == -1 {
			return nil, fmt.Errorf("value column %q not found", valueColumn)
		}
	}

	allowed := make(map[string]bool, len(opts.Allow))
	for _, id := range opts.Allow {
		allowed[id] = true
	}

	byID := make(map[string]*Product)
	var order []string
	skipped := make(map[string]bool)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		if idIdx >= len(record) || periodIdx >= len(record) || valueIdx >= len(record) {
			continue
		}

		id := clean(record[idIdx])
		if id == "" {
			continue
		}
		if len(allowed) > 0 && !allowed[id] {
			skipped[id] = true
			continue
		}

		value, ok := parseValue(clean(record[valueIdx]), opts)
		if !ok {
			continue // NA or unparseable value
		}

		period, err := strconv.Atoi(clean(record[periodIdx]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid period %q: %w", line, record[periodIdx], err)
		}

		p, exists := byID[id]
		if !exists {
			p = &Product{ID: id, estimatePeriod: math.MinInt}
			byID[id] = p
			order = append(order, id)
		}
		p.Observations = append(p.Observations, Observation{Period: period, Value: value})

		if estimateIdx >= 0 && estimateIdx < len(record) && period >= p.estimatePeriod {
			p.PreviousEstimate, p.estimatePeriod = nil, period
			if est, err := strconv.ParseFloat(clean(record[estimateIdx]), 64); err == nil && isFinite(est) {
				p.PreviousEstimate = &est
			}
		}
	}

	if len(order) == 0 {
		return nil, errors.New("no valid data found in CSV")
	}

	result := &LoadResult{Products: make([]Product, 0, len(order))}
	for _, id := range order {
		p := byID[id]
		sort.SliceStable(p.Observations, func(i, j int) bool {
			return p.Observations[i].Period < p.Observations[j].Period
		})
		result.Products = append(result.Products, *p)
	}
	for id := range skipped {
		result.Skipped = append(result.Skipped, id)
	}
	sort.Strings(result.Skipped)

	return result, nil
}

func clean(s string) string {
	return strings.TrimSpace(strings.Trim(s, "\""))
}

// parseValue reads a sales value, or in rank mode converts a rank into
// estimated sales. A rank cell without digits gets the tiers' fallback
// volume; a sales cell that is NA or not a finite number is skipped.
func parseValue(s string, opts *CSVOptions) (float64, bool) {
	if opts.RankColumn != "" {
		rank, ok := demand.ParseRank(s)
		if !ok {
			return opts.Tiers.Fallback, true
		}
		return opts.Tiers.EstimateSales(rank), true
	}
	if s == "" || s == "NA" || s == "NaN" || s == "null" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !isFinite(v) {
		return 0, false
	}
	return v, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
