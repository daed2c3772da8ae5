package calendar

import (
	"context"
	"errors"
	"fmt"
)

// =============================================================================
// HOLIDAY - Public holiday entry from the external calendar
// =============================================================================

// Holiday is a public holiday as published by the external calendar source.
// Entries are transient: fetched per calendar year, never persisted.
type Holiday struct {
	Date        Date
	Description string
	Substitute  bool // "cuti bersama" style substitute holiday
}

// Source fetches the public holidays for a calendar year.
//
// Implementations must fail loudly when the upstream is unreachable or
// returns garbage. Treating a failed year as holiday-free would silently
// overcharge schedule creation, so errors wrap ErrUpstreamUnavailable
// and the caller aborts before touching any balance.
type Source interface {
	Holidays(ctx context.Context, year int) ([]Holiday, error)
}

// ErrUpstreamUnavailable indicates the external holiday calendar could not
// be reached or returned a malformed response. Use with errors.Is().
var ErrUpstreamUnavailable = errors.New("holiday calendar unavailable")

// UpstreamError carries the year and cause of a failed holiday fetch.
type UpstreamError struct {
	Year int
	Err  error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("holiday fetch for %d failed: %v", e.Year, e.Err)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstreamUnavailable }
