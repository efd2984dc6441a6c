package timeseries

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData matches any InsufficientDataError via errors.Is.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrNonMonotonicPeriod matches any NonMonotonicPeriodError via errors.Is.
	ErrNonMonotonicPeriod = errors.New("non-monotonic period index")
	// ErrNonFiniteValue matches any NonFiniteValueError via errors.Is.
	ErrNonFiniteValue = errors.New("non-finite value")
)

// InsufficientDataError reports a history shorter than an operation needs.
type InsufficientDataError struct {
	Method   string // empty when raised by series validation
	Required int
	Got      int
}

func (e *InsufficientDataError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("insufficient data: need at least %d observations, got %d", e.Required, e.Got)
	}
	return fmt.Sprintf("insufficient data for %s: need at least %d observations, got %d", e.Method, e.Required, e.Got)
}

// Is lets errors.Is(err, ErrInsufficientData) match.
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// NonMonotonicPeriodError reports the first period that does not strictly
// increase over its predecessor.
type NonMonotonicPeriodError struct {
	Index    int
	Previous int
	Current  int
}

func (e *NonMonotonicPeriodError) Error() string {
	return fmt.Sprintf("period at position %d (%d) does not follow %d", e.Index, e.Current, e.Previous)
}

// Is lets errors.Is(err, ErrNonMonotonicPeriod) match.
func (e *NonMonotonicPeriodError) Is(target error) bool {
	return target == ErrNonMonotonicPeriod
}

// NonFiniteValueError reports a NaN or infinite observation.
type NonFiniteValueError struct {
	Index  int
	Period int
	Value  float64
}

func (e *NonFiniteValueError) Error() string {
	return fmt.Sprintf("value at position %d (period %d) is %v", e.Index, e.Period, e.Value)
}

// Is lets errors.Is(err, ErrNonFiniteValue) match.
func (e *NonFiniteValueError) Is(target error) bool {
	return target == ErrNonFiniteValue
}
