package forecast

import (
	"errors"
	"fmt"

	"github.com/sartorproj/demandcast/timeseries"
)

// InsufficientDataError reports a history shorter than a method needs.
type InsufficientDataError = timeseries.InsufficientDataError

// NonMonotonicPeriodError reports malformed period ordering.
type NonMonotonicPeriodError = timeseries.NonMonotonicPeriodError

// NonFiniteValueError reports a NaN or infinite observation.
type NonFiniteValueError = timeseries.NonFiniteValueError

var (
	// ErrInsufficientData matches InsufficientDataError.
	ErrInsufficientData = timeseries.ErrInsufficientData
	// ErrNonMonotonicPeriod matches NonMonotonicPeriodError.
	ErrNonMonotonicPeriod = timeseries.ErrNonMonotonicPeriod
	// ErrNonFiniteValue matches NonFiniteValueError.
	ErrNonFiniteValue = timeseries.ErrNonFiniteValue
	// ErrDivisionByZero matches DivisionByZeroError.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrInvalidHorizon is returned for a horizon below 1.
	ErrInvalidHorizon = errors.New("horizon must be at least 1")
	// ErrUnknownMethod is returned for an unrecognised method kind.
	ErrUnknownMethod = errors.New("unknown forecast method")
	// ErrStaleObservation matches StaleObservationError.
	ErrStaleObservation = errors.New("observation does not follow the series")
	// ErrInvalidConfig wraps configuration validation failures.
	ErrInvalidConfig = errors.New("invalid forecast config")
)

// DivisionByZeroError reports a zero correction-factor denominator. Callers
// avoid it by clamping the previous estimate to a floor first.
type DivisionByZeroError struct {
	Operand string
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("division by zero: %s is 0", e.Operand)
}

// Is lets errors.Is(err, ErrDivisionByZero) match.
func (e *DivisionByZeroError) Is(target error) bool {
	return target == ErrDivisionByZero
}

// NewInsufficientData builds the error a method returns when its minimum
// history is not met.
func NewInsufficientData(kind MethodKind, required, got int) error {
	return &InsufficientDataError{Method: string(kind), Required: required, Got: got}
}

// StaleObservationError reports an observation to classify whose period is
// not past the end of the series.
type StaleObservationError struct {
	Period     int
	LastPeriod int
}

func (e *StaleObservationError) Error() string {
	return fmt.Sprintf("observation period %d is not after the last observed period %d", e.Period, e.LastPeriod)
}

// Is lets errors.Is(err, ErrStaleObservation) match.
func (e *StaleObservationError) Is(target error) bool {
	return target == ErrStaleObservation
}
