package solar

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is the sentinel wrapped by every InputError.
var ErrInvalidInput = errors.New("invalid input")

// InputError describes which input was rejected and the constraint it violated.
type InputError struct {
	Field      string
	Value      float64
	Constraint string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s=%v (%s)", e.Field, e.Value, e.Constraint)
}

// Unwrap lets callers test with errors.Is(err, ErrInvalidInput)
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// CheckFinite rejects NaN and ±Inf
func CheckFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &InputError{Field: field, Value: v, Constraint: "must be a finite number"}
	}
	return nil
}

// CheckRange rejects non-finite values and values outside [lo, hi]
func CheckRange(field string, v, lo, hi float64) error {
	if err := CheckFinite(field, v); err != nil {
		return err
	}
	if v < lo || v > hi {
		return &InputError{Field: field, Value: v, Constraint: fmt.Sprintf("must be within [%g, %g]", lo, hi)}
	}
	return nil
}

// CheckPositive rejects non-finite values and values <= 0
func CheckPositive(field string, v float64) error {
	if err := CheckFinite(field, v); err != nil {
		return err
	}
	if v <= 0 {
		return &InputError{Field: field, Value: v, Constraint: "must be greater than 0"}
	}
	return nil
}

// CheckLocation validates a latitude/longitude pair in decimal degrees
func CheckLocation(latitude, longitude float64) error {
	if err := CheckRange("latitude", latitude, -90, 90); err != nil {
		return err
	}
	return CheckRange("longitude", longitude, -180, 180)
}
