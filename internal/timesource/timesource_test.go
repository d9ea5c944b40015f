package timesource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hamed0406/timewatch/internal/domain"
)

func TestNormalize_TruncatesFraction(t *testing.T) {
	for digits := 0; digits <= 9; digits++ {
		in := "2025-09-05T12:45:00"
		if digits > 0 {
			in += "." + strings.Repeat("7", digits)
		}
		in += "+05:30"

		out := Normalize(in)
		frac := ""
		if i := strings.IndexByte(out, '.'); i >= 0 {
			frac = strings.TrimSuffix(out[i+1:], "+05:30")
		}
		if len(frac) > MaxFractionDigits {
			t.Fatalf("Normalize(%q)=%q keeps %d digits", in, out, len(frac))
		}
		if _, err := Parse(in); err != nil {
			t.Fatalf("Parse(%q) failed: %v", in, err)
		}
	}
}

func TestNormalize_SpaceSeparator(t *testing.T) {
	if got := Normalize("2025-09-05 12:30:00"); got != "2025-09-05T12:30:00" {
		t.Fatalf("got %q", got)
	}
	if got := Normalize(" 2025-09-05 12:30:00.123456789 "); got != "2025-09-05T12:30:00.123456" {
		t.Fatalf("got %q", got)
	}
}

func TestParse_NaiveIsIST(t *testing.T) {
	got, err := Parse("2025-09-05 12:30:00")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := time.Date(2025, 9, 5, 7, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got.UTC(), want)
	}
}

func TestParse_WithOffset(t *testing.T) {
	got, err := Parse("2025-09-05T07:15:00.5Z")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if h := got.In(domain.IST).Hour(); h != 12 {
		t.Fatalf("IST hour=%d want 12", h)
	}
}

func TestParse_Garbage(t *testing.T) {
	_, err := Parse("yesterday-ish")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("want *ParseError, got %v", err)
	}
}

func TestClient_Fetch_OK(t *testing.T) {
	var gotKey, gotLoc string
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("api_key")
		gotLoc = r.URL.Query().Get("location")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"datetime":"2025-09-05 12:30:00","timezone_name":"India Standard Time"}`))
	}))
	defer s.Close()

	c := New(s.URL, "k123", "Kolkata, India", 2*time.Second)
	res := c.Fetch(context.Background())
	if !res.OK {
		t.Fatalf("want OK, got %+v", res)
	}
	if res.Raw != "2025-09-05 12:30:00" {
		t.Fatalf("raw should be kept verbatim, got %q", res.Raw)
	}
	if res.Time.In(domain.IST).Hour() != 12 {
		t.Fatalf("hour wrong: %v", res.Time)
	}
	if gotKey != "k123" || gotLoc != "Kolkata, India" {
		t.Fatalf("query wrong: key=%q loc=%q", gotKey, gotLoc)
	}
}

func TestClient_Fetch_NoKeyOmitsParam(t *testing.T) {
	var rawQuery string
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.Write([]byte(`{"datetime":"2025-09-05T12:30:00"}`))
	}))
	defer s.Close()

	res := New(s.URL, "", "", time.Second).Fetch(context.Background())
	if !res.OK {
		t.Fatalf("want OK, got %+v", res)
	}
	if strings.Contains(rawQuery, "api_key") {
		t.Fatalf("api_key should be omitted, query=%q", rawQuery)
	}
}

func TestClient_Fetch_Non2xx(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer s.Close()

	res := New(s.URL, "k", "x", time.Second).Fetch(context.Background())
	if res.OK {
		t.Fatalf("want failure, got %+v", res)
	}
	if res.Raw != domain.FetchedAPIError {
		t.Fatalf("raw should be the error sentinel, got %q", res.Raw)
	}
	if !errors.Is(res.Err, ErrBadStatus) {
		t.Fatalf("want ErrBadStatus, got %v", res.Err)
	}
	if !res.Time.IsZero() {
		t.Fatalf("time should be zero on failure")
	}
}

func TestClient_Fetch_BadDatetime(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"datetime":"soon"}`))
	}))
	defer s.Close()

	res := New(s.URL, "", "", time.Second).Fetch(context.Background())
	var pe *ParseError
	if res.OK || !errors.As(res.Err, &pe) {
		t.Fatalf("want parse failure, got %+v", res)
	}
	if res.Raw != domain.FetchedAPIError {
		t.Fatalf("raw=%q", res.Raw)
	}
}

func TestClient_Fetch_MissingField(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"nope"}`))
	}))
	defer s.Close()

	res := New(s.URL, "", "", time.Second).Fetch(context.Background())
	var pe *ParseError
	if res.OK || !errors.As(res.Err, &pe) {
		t.Fatalf("want parse failure, got %+v", res)
	}
}

func TestClient_Fetch_Timeout(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"datetime":"2025-09-05 12:30:00"}`))
	}))
	defer s.Close()

	res := New(s.URL, "", "", 50*time.Millisecond).Fetch(context.Background())
	if res.OK || res.Err == nil {
		t.Fatalf("want timeout failure, got %+v", res)
	}
}
