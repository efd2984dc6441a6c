package timeseries

import (
	"strings"
	"testing"
)

func TestLoadCSVFromReader(t *testing.T) {
	csvData := `product_id,period,value
A,1,100
B,1,200
A,2,101
B,2,201
A,3,102`

	result, err := LoadCSVFromReader(strings.NewReader(csvData), DefaultCSVOptions())
	if err != nil {
		t.Fatalf("Failed to load CSV: %v", err)
	}

	if len(result.Products) != 2 {
		t.Fatalf("Expected 2 products, got %d", len(result.Products))
	}
	if result.Products[0].ID != "A" || result.Products[1].ID != "B" {
		t.Errorf("Products should keep first-seen order, got %s, %s", result.Products[0].ID, result.Products[1].ID)
	}

	expected := []float64{100, 101, 102}
	for i, o := range result.Products[0].Observations {
		if o.Value != expected[i] || o.Period != i+1 {
			t.Errorf("Observation %d: expected (%d, %f), got (%d, %f)", i, i+1, expected[i], o.Period, o.Value)
		}
	}
}

func TestLoadCSVSortsPeriods(t *testing.T) {
	csvData := `asin,period,sales
X,3,30
X,1,10
X,2,20`

	opts := DefaultCSVOptions()
	opts.ValueColumn = "sales"

	result, err := LoadCSVFromReader(strings.NewReader(csvData), opts)
	if err != nil {
		t.Fatalf("Failed to load CSV: %v", err)
	}

	series, err := New(result.Products[0].Observations)
	if err != nil {
		t.Fatalf("Loaded observations should validate: %v", err)
	}
	if series.Values[0] != 10 || series.Values[2] != 30 {
		t.Errorf("Expected sorted values, got %v", series.Values)
	}
}

func TestLoadCSVWithNAValues(t *testing.T) {
	csvData := `product_id,period,value
A,1,100
A,2,NA
A,3,102
A,4,NaN
A,5,104`

	result, err := LoadCSVFromReader(strings.NewReader(csvData), DefaultCSVOptions())
	if err != nil {
		t.Fatalf("Failed to load CSV: %v", err)
	}

	if n := len(result.Products[0].Observations); n != 3 {
		t.Errorf("Expected 3 observations (NA values skipped), got %d", n)
	}
}

func TestLoadCSVRankColumn(t *testing.T) {
	csvData := `asin,period,bsr
B01,1,"#450"
B01,2,"1,500"
B01,3,
B01,4,90000
B01,5,unranked`

	opts := DefaultCSVOptions()
	opts.RankColumn = "bsr"

	result, err := LoadCSVFromReader(strings.NewReader(csvData), opts)
	if err != nil {
		t.Fatalf("Failed to load CSV: %v", err)
	}

	// Missing and digitless ranks get the fallback volume
	expected := []float64{1000, 250, 100, 100, 100}
	obs := result.Products[0].Observations
	if len(obs) != len(expected) {
		t.Fatalf("Expected %d observations, got %d", len(expected), len(obs))
	}
	for i, v := range expected {
		if obs[i].Value != v {
			t.Errorf("Observation %d: expected %f, got %f", i, v, obs[i].Value)
		}
	}
}

func TestLoadCSVPreviousEstimate(t *testing.T) {
	csvData := `product_id,period,value,previous_estimate
A,2,110,
A,1,100,95
A,3,120,80
B,1,5,0
B,2,6,
C,1,7,`

	result, err := LoadCSVFromReader(strings.NewReader(csvData), DefaultCSVOptions())
	if err != nil {
		t.Fatalf("Failed to load CSV: %v", err)
	}

	a := result.Products[0]
	if a.PreviousEstimate == nil || *a.PreviousEstimate != 80 {
		t.Errorf("Expected A's estimate from its latest period (80), got %v", a.PreviousEstimate)
	}
	if len(a.Observations) != 3 {
		t.Errorf("Expected 3 observations for A, got %d", len(a.Observations))
	}

	// The latest row of B has no estimate, so the earlier 0 does not apply
	if b := result.Products[1]; b.PreviousEstimate != nil {
		t.Errorf("Expected no estimate for B, got %f", *b.PreviousEstimate)
	}
	if c := result.Products[2]; c.PreviousEstimate != nil {
		t.Errorf("Expected no estimate for C, got %f", *c.PreviousEstimate)
	}
}

func TestLoadCSVWithoutEstimateColumn(t *testing.T) {
	result, err := LoadCSVFromReader(strings.NewReader("product_id,period,value\nA,1,1\n"), DefaultCSVOptions())
	if err != nil {
		t.Fatalf("Failed to load CSV: %v", err)
	}
	if result.Products[0].PreviousEstimate != nil {
		t.Error("Expected no estimate without the column")
	}
}

func TestLoadCSVSkipsNonFiniteValues(t *testing.T) {
	csvData := `product_id,period,value
A,1,100
A,2,Inf
A,3,-inf
A,4,nan
A,5,104`

	result, err := LoadCSVFromReader(strings.NewReader(csvData), DefaultCSVOptions())
	if err != nil {
		t.Fatalf("Failed to load CSV: %v", err)
	}
	if n := len(result.Products[0].Observations); n != 2 {
		t.Errorf("Expected 2 finite observations, got %d", n)
	}
}

func TestLoadCSVAllowList(t *testing.T) {
	csvData := `product_id,period,value
A,1,1
B,1,2
C,1,3`

	opts := DefaultCSVOptions()
	opts.Allow = []string{"A", "C"}

	result, err := LoadCSVFromReader(strings.NewReader(csvData), opts)
	if err != nil {
		t.Fatalf("Failed to load CSV: %v", err)
	}

	if len(result.Products) != 2 {
		t.Errorf("Expected 2 products, got %d", len(result.Products))
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != "B" {
		t.Errorf("Expected B to be skipped, got %v", result.Skipped)
	}
}

func TestLoadCSVNoHeader(t *testing.T) {
	csvData := `A;1;5
A;2;6`

	opts := DefaultCSVOptions()
	opts.HasHeader = false
	opts.Delimiter = ';'

	result, err := LoadCSVFromReader(strings.NewReader(csvData), opts)
	if err != nil {
		t.Fatalf("Failed to load CSV: %v", err)
	}
	if len(result.Products[0].Observations) != 2 {
		t.Errorf("Expected 2 observations, got %d", len(result.Products[0].Observations))
	}
}

func TestLoadCSVErrors(t *testing.T) {
	testCases := []struct {
		name    string
		csvData string
	}{
		{"missing period column", "product_id,value\nA,1"},
		{"bad period", "product_id,period,value\nA,x,1"},
		{"no rows", "product_id,period,value\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadCSVFromReader(strings.NewReader(tc.csvData), DefaultCSVOptions())
			if err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestDefaultCSVOptions(t *testing.T) {
	opts := DefaultCSVOptions()

	if opts.IDColumn != "product_id" {
		t.Errorf("Expected default id column 'product_id', got '%s'", opts.IDColumn)
	}
	if opts.PeriodColumn != "period" {
		t.Errorf("Expected default period column 'period', got '%s'", opts.PeriodColumn)
	}
	if !opts.HasHeader {
		t.Error("Expected HasHeader to be true by default")
	}
	if opts.Delimiter != ',' {
		t.Errorf("Expected default delimiter ',', got '%c'", opts.Delimiter)
	}
}
