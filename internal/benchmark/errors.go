package benchmark

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration matches every *ConfigurationError.
	ErrConfiguration = errors.New("configuration error")
	// ErrDataUnavailable matches every *DataUnavailableError.
	ErrDataUnavailable = errors.New("data unavailable")
)

// ConfigurationError reports an invalid run configuration. It is raised
// before any data is requested, except for checks that need the data shape.
type ConfigurationError struct {
	Field  string
	Reason string
	// Names lists offending values, e.g. unknown model names.
	Names []string
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if len(e.Names) > 0 {
		msg += ": " + strings.Join(e.Names, ", ")
	}
	return msg
}

// Is makes errors.Is(err, ErrConfiguration) succeed.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// DataUnavailableError reports that the loader returned no usable rows or
// failed terminally.
type DataUnavailableError struct {
	Tissues []string
	Err     error
}

func (e *DataUnavailableError) Error() string {
	subset := "all tissues"
	if len(e.Tissues) > 0 {
		subset = strings.Join(e.Tissues, ", ")
	}
	if e.Err == nil {
		return fmt.Sprintf("no data for %s", subset)
	}
	return fmt.Sprintf("no data for %s: %v", subset, e.Err)
}

func (e *DataUnavailableError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrDataUnavailable) succeed.
func (e *DataUnavailableError) Is(target error) bool {
	return target == ErrDataUnavailable
}

// ModelFitError is recorded in the results table when a model fails to fit
// or predict. Run never returns it.
type ModelFitError struct {
	Model string
	Err   error
}

func (e *ModelFitError) Error() string {
	return fmt.Sprintf("model %s failed: %v", e.Model, e.Err)
}

func (e *ModelFitError) Unwrap() error {
	return e.Err
}

// IOError reports a failure to persist results.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
