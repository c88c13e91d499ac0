package services

import (
	"errors"
	"fmt"
)

// ErrNoCountries is returned when a view is asked for an empty country selection.
var ErrNoCountries = errors.New("please select at least one country")

// DataSourceError reports a missing or unusable input table. It is fatal:
// no view can be rendered without both tables.
type DataSourceError struct {
	Source string // "values" or "labels"
	Reason string
	Err    error
}

func (e *DataSourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data source %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("data source %s: %s", e.Source, e.Reason)
}

func (e *DataSourceError) Unwrap() error { return e.Err }

// UnknownKeyError reports a catalog lookup outside the enumerated names.
type UnknownKeyError struct {
	Kind string // "region", "indicator" or "country"
	Key  string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Key)
}
