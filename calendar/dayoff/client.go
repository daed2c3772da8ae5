/*
Package dayoff adapts the public day-off API to the calendar.Source interface.

PURPOSE:
  The schedule engine needs to know which dates are public holidays. This
  client fetches a whole calendar year from the external day-off endpoint
  (GET ?year=YYYY) and normalizes the loosely formatted dates it returns.

UPSTREAM CONTRACT:
  Response is a JSON array of:
    { "tanggal": "YYYY-M-D", "keterangan": "...", "is_cuti": bool }
  Month and day are NOT zero-padded, so "2025-1-1" and "2025-12-25" both
  appear. Dates are normalized to calendar.Date (YYYY-MM-DD) here so the
  rest of the system never sees the upstream format.

FAILURE MODE:
  Any transport error, non-2xx status, or unparsable payload is surfaced
  as calendar.ErrUpstreamUnavailable. The caller must abort before any
  balance is debited; a missing holiday list must never be treated as
  "no holidays this year".

CACHING:
  Holidays for a year do not change mid-request, so responses are cached
  per year for the lifetime of the client. A rate limiter caps how often
  the public endpoint is hit on cache misses.

SEE ALSO:
  - calendar/holiday.go: Source interface and error contract
  - schedule/ledger.go: The only consumer; fetches before any mutation
*/
package dayoff

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/warp/attendance-engine/calendar"
)

// upstream uses non-padded month/day in its date field.
const upstreamDateLayout = "2006-1-2"

// Client fetches public holidays from the day-off API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter

	mu    sync.Mutex
	cache map[int][]calendar.Holiday
}

// New creates a day-off client. The timeout bounds every fetch; the
// holiday lookup sits on the request path of schedule creation and must
// not hang it.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 5),
		cache:      make(map[int][]calendar.Holiday),
	}
}

type holidayJSON struct {
	Tanggal    string `json:"tanggal"`
	Keterangan string `json:"keterangan"`
	IsCuti     bool   `json:"is_cuti"`
}

// Holidays returns the public holidays for a year, normalized to
// calendar dates. Implements calendar.Source.
func (c *Client) Holidays(ctx context.Context, year int) ([]calendar.Holiday, error) {
	c.mu.Lock()
	cached, ok := c.cache[year]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	holidays, err := c.fetch(ctx, year)
	if err != nil {
		return nil, &calendar.UpstreamError{Year: year, Err: err}
	}

	c.mu.Lock()
	c.cache[year] = holidays
	c.mu.Unlock()
	return holidays, nil
}

func (c *Client) fetch(ctx context.Context, year int) ([]calendar.Holiday, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("year", strconv.Itoa(year))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var raw []holidayJSON
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	holidays := make([]calendar.Holiday, 0, len(raw))
	for _, h := range raw {
		t, err := time.Parse(upstreamDateLayout, h.Tanggal)
		if err != nil {
			return nil, fmt.Errorf("malformed holiday date %q: %w", h.Tanggal, err)
		}
		holidays = append(holidays, calendar.Holiday{
			Date:        calendar.DateOf(t),
			Description: h.Keterangan,
			Substitute:  h.IsCuti,
		})
	}
	return holidays, nil
}
