package ecology

import (
	"errors"
	"fmt"
	"math"
)

// Configuration errors. Stepping never fails; only construction and the
// between-tick edits validate their input.
var (
	// ErrUnknownResource indicates a microbe requires a resource the pool does not track.
	ErrUnknownResource = errors.New("ecology: required resource not present in environment")

	// ErrMissingRefreshRate indicates a tracked resource has no refresh rate.
	ErrMissingRefreshRate = errors.New("ecology: resource has no refresh rate")

	// ErrNegativeQuantity indicates a negative initial resource quantity.
	ErrNegativeQuantity = errors.New("ecology: resource quantity is negative")

	// ErrInvalidMicrobe indicates a microbe definition outside valid bounds.
	ErrInvalidMicrobe = errors.New("ecology: invalid microbe definition")

	// ErrDuplicateMicrobe indicates two microbes share a name.
	ErrDuplicateMicrobe = errors.New("ecology: duplicate microbe name")

	// ErrInvalidToxin indicates toxin densities that are not ordered 0 <= min <= max <= lethal.
	ErrInvalidToxin = errors.New("ecology: invalid toxin profile")

	// ErrUnknownMicrobe indicates a lookup by a name no microbe carries.
	ErrUnknownMicrobe = errors.New("ecology: unknown microbe")

	// ErrNonFinite indicates an edit value that is NaN or infinite.
	ErrNonFinite = errors.New("ecology: value is not finite")
)

// ConfigError wraps a configuration error with the offending field.
type ConfigError struct {
	Field   string
	Wrapped error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Wrapped)
}

func (e *ConfigError) Unwrap() error {
	return e.Wrapped
}

func finite(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %v", ErrNonFinite, v)
	}
	return nil
}

func configErr(field string, err error) error {
	return &ConfigError{Field: field, Wrapped: err}
}
