package timeseries

import (
	"errors"
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	obs := []Observation{{1, 100}, {2, 110}, {4, 90}}
	s, err := New(obs)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if s.Len() != 3 {
		t.Errorf("Expected length 3, got %d", s.Len())
	}
	if s.LastValue() != 90 {
		t.Errorf("Expected last value 90, got %f", s.LastValue())
	}
	if s.LastPeriod() != 4 {
		t.Errorf("Expected last period 4, got %d", s.LastPeriod())
	}

	// The series owns its copy
	obs[0].Value = 1
	if s.Values[0] != 100 {
		t.Errorf("Series was modified through the input slice")
	}
}

func TestNewEmpty(t *testing.T) {
	_, err := New(nil)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("Expected ErrInsufficientData, got %v", err)
	}

	var ide *InsufficientDataError
	if !errors.As(err, &ide) {
		t.Fatalf("Expected *InsufficientDataError, got %T", err)
	}
	if ide.Required != 1 || ide.Got != 0 {
		t.Errorf("Unexpected error fields: %+v", ide)
	}
}

func TestNewNonMonotonic(t *testing.T) {
	tests := []struct {
		name  string
		obs   []Observation
		index int
	}{
		{"decreasing", []Observation{{1, 1}, {3, 1}, {2, 1}}, 2},
		{"duplicate", []Observation{{1, 1}, {1, 2}}, 1},
		{"unsorted start", []Observation{{5, 1}, {4, 1}, {6, 1}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.obs)
			if !errors.Is(err, ErrNonMonotonicPeriod) {
				t.Fatalf("Expected ErrNonMonotonicPeriod, got %v", err)
			}
			var nme *NonMonotonicPeriodError
			if !errors.As(err, &nme) {
				t.Fatalf("Expected *NonMonotonicPeriodError, got %T", err)
			}
			if nme.Index != tt.index {
				t.Errorf("Expected index %d, got %d", tt.index, nme.Index)
			}
		})
	}
}

func TestNewNonFinite(t *testing.T) {
	tests := []struct {
		name  string
		value float64
	}{
		{"nan", math.NaN()},
		{"positive infinity", math.Inf(1)},
		{"negative infinity", math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New([]Observation{{1, 10}, {2, tt.value}, {3, 12}})
			if !errors.Is(err, ErrNonFiniteValue) {
				t.Fatalf("Expected ErrNonFiniteValue, got %v", err)
			}
			var nfe *NonFiniteValueError
			if !errors.As(err, &nfe) {
				t.Fatalf("Expected *NonFiniteValueError, got %T", err)
			}
			if nfe.Index != 1 || nfe.Period != 2 {
				t.Errorf("Unexpected error fields: %+v", nfe)
			}
		})
	}
}

func TestFromValues(t *testing.T) {
	s := FromValues([]float64{3, 4, 5})
	for i, p := range s.Periods {
		if p != i+1 {
			t.Errorf("Expected period %d at index %d, got %d", i+1, i, p)
		}
	}
}

func TestSlice(t *testing.T) {
	s := FromValues([]float64{1, 2, 3, 4, 5})
	sliced := s.Slice(1, 4)

	expected := []float64{2, 3, 4}
	if sliced.Len() != len(expected) {
		t.Fatalf("Expected length %d, got %d", len(expected), sliced.Len())
	}
	for i, v := range sliced.Values {
		if v != expected[i] {
			t.Errorf("Expected %f at index %d, got %f", expected[i], i, v)
		}
	}
	if sliced.Periods[0] != 2 {
		t.Errorf("Expected first period 2, got %d", sliced.Periods[0])
	}
}
