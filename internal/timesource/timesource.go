// Package timesource fetches the current wall-clock time of the monitored
// zone from an external time API.
package timesource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/hamed0406/timewatch/internal/domain"
)

// MaxFractionDigits is how many fractional-second digits survive Normalize.
const MaxFractionDigits = 6

// ErrBadStatus is returned (wrapped) when the API answers with a non-2xx code.
var ErrBadStatus = errors.New("time api: unexpected status")

// ParseError means the API answered but its datetime could not be read.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("time api: parse %q: %v", e.Raw, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Result is the outcome of one fetch. When OK is false, Time is zero, Raw is
// domain.FetchedAPIError and Err carries the cause.
type Result struct {
	OK   bool
	Time time.Time
	Raw  string
	Err  error
}

// Source is anything that can report the current time of the target zone.
type Source interface {
	Fetch(ctx context.Context) Result
}

// Client talks to an AbstractAPI-style endpoint:
// GET <URL>?api_key=<key>&location=<location> → {"datetime": "..."}.
type Client struct {
	URL      string
	APIKey   string
	Location string
	Client   *http.Client
}

func New(endpoint, apiKey, location string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		URL:      endpoint,
		APIKey:   apiKey,
		Location: location,
		Client:   &http.Client{Timeout: timeout},
	}
}

type apiResponse struct {
	Datetime string `json:"datetime"`
}

func (c *Client) Fetch(ctx context.Context) Result {
	raw, err := c.fetchRaw(ctx)
	if err != nil {
		return failed(err)
	}
	t, err := Parse(raw)
	if err != nil {
		return failed(err)
	}
	return Result{OK: true, Time: t, Raw: raw}
}

func (c *Client) fetchRaw(ctx context.Context) (string, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", fmt.Errorf("time api: bad url: %w", err)
	}
	q := u.Query()
	if c.APIKey != "" {
		q.Set("api_key", c.APIKey)
	}
	if c.Location != "" {
		q.Set("location", c.Location)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("time api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("time api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", &ParseError{Raw: "", Err: fmt.Errorf("decode body: %w", err)}
	}
	if strings.TrimSpace(body.Datetime) == "" {
		return "", &ParseError{Raw: "", Err: errors.New("datetime field missing")}
	}
	return body.Datetime, nil
}

func failed(err error) Result {
	return Result{Raw: domain.FetchedAPIError, Err: err}
}

var fractionRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2})\.(\d+)(.*)$`)

// Normalize rewrites a datetime string into the ISO "T" form and truncates
// fractional seconds to MaxFractionDigits.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 10 && s[10] == ' ' {
		s = s[:10] + "T" + s[11:]
	}
	m := fractionRe.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	frac := m[2]
	if len(frac) > MaxFractionDigits {
		frac = frac[:MaxFractionDigits]
	}
	return m[1] + "." + frac + m[3]
}

const (
	layoutZoned = "2006-01-02T15:04:05.999999Z07:00"
	layoutNaive = "2006-01-02T15:04:05.999999"
)

// Parse normalizes raw and parses it. Timestamps without an offset are read
// as wall-clock time in domain.IST.
func Parse(raw string) (time.Time, error) {
	s := Normalize(raw)
	if t, err := time.Parse(layoutZoned, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(layoutNaive, s, domain.IST)
	if err != nil {
		return time.Time{}, &ParseError{Raw: raw, Err: err}
	}
	return t, nil
}
