package models

import "fmt"

// FormatError means the supplied table matched neither recognized column
// convention. It aborts the current call.
type FormatError struct {
	msg string
}

func NewFormatError(format string, args ...interface{}) *FormatError {
	return &FormatError{msg: fmt.Sprintf(format, args...)}
}

func (e *FormatError) Error() string { return e.msg }

// ConfigError means the caller's parameters are unusable (bad edition
// selector, wrong site-row cardinality). It aborts the current call or batch.
type ConfigError struct {
	msg string
}

func NewConfigError(format string, args ...interface{}) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

func (e *ConfigError) Error() string { return e.msg }

// DataError means every row of an otherwise well-formed table was dropped
// during normalization, leaving nothing to compute on. Individual bad rows
// are filtered silently and do not raise it.
type DataError struct {
	msg string
}

func NewDataError(format string, args ...interface{}) *DataError {
	return &DataError{msg: fmt.Sprintf(format, args...)}
}

func (e *DataError) Error() string { return e.msg }
