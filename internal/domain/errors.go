package domain

import (
	"errors"
	"fmt"
)

// Error kinds reported to callers. They are stable strings used in report
// envelopes and HTTP responses.
const (
	KindDataQuality      = "data_quality"
	KindInsufficientData = "insufficient_data"
	KindInvalidInput     = "invalid_input"
	KindNotFound         = "not_found"
	KindProvider         = "provider"
	KindInternal         = "internal"
)

// ErrLocationNotFound is returned by a LocationResolver when a query matches
// no place.
var ErrLocationNotFound = errors.New("location not found")

// DataQualityError reports a series that is malformed or too short for
// climatological inference.
type DataQualityError struct {
	Reason string
}

func (e *DataQualityError) Error() string {
	return "data quality: " + e.Reason
}

// InsufficientDataError reports a windowed or yearly sample below the
// configured minimum.
type InsufficientDataError struct {
	Variable Variable
	Got      int
	Required int
	Reason   string
}

func (e *InsufficientDataError) Error() string {
	if e.Variable == "" {
		return fmt.Sprintf("insufficient data: %s (got %d, need %d)", e.Reason, e.Got, e.Required)
	}
	return fmt.Sprintf("insufficient data for %s: %s (got %d, need %d)", e.Variable, e.Reason, e.Got, e.Required)
}

// InvalidInputError reports a caller-supplied value outside its valid range.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ProviderError wraps a failure of an external data source after retries
// are exhausted.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func dataQualityf(format string, args ...any) error {
	return &DataQualityError{Reason: fmt.Sprintf(format, args...)}
}

func invalidInputf(field, format string, args ...any) error {
	return &InvalidInputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ErrorKind classifies err into one of the Kind* constants.
func ErrorKind(err error) string {
	var dq *DataQualityError
	var ins *InsufficientDataError
	var inv *InvalidInputError
	var prov *ProviderError
	switch {
	case errors.As(err, &dq):
		return KindDataQuality
	case errors.As(err, &ins):
		return KindInsufficientData
	case errors.As(err, &inv):
		return KindInvalidInput
	case errors.Is(err, ErrLocationNotFound):
		return KindNotFound
	case errors.As(err, &prov):
		return KindProvider
	default:
		return KindInternal
	}
}
