package domain

import (
	"errors"
	"fmt"
)

// Row-level validation failures. Both reject the row; the caller logs and
// continues with the rest of the day.
var (
	ErrInvalidLocation = errors.New("invalid location")
	ErrInvalidDate     = errors.New("invalid date")
)

// FetchError is a transport-level failure retrieving a day's feed. It is
// retryable by the caller; the fetcher does not retry internally.
type FetchError struct {
	Date string // YYYYMMDD
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch feed for %s: %v", e.Date, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FormatError is an unexpected archive or row shape. At day level it aborts
// the day; at row level the fetcher counts and skips the offending row.
type FormatError struct {
	Date   string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed feed for %s: %s: %v", e.Date, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed feed for %s: %s", e.Date, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }
