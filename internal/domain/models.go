package domain

import (
	"strings"
	"time"
)

// RecordID is the key of the one validation record. Every check overwrites it.
const RecordID = "global_time_check"

// Sentinels stored in ValidationRecord.FetchedTime when no time was fetched.
const (
	FetchedAPIError = "API_ERROR"
	FetchedNA       = "N/A"
)

// IST is the target zone of the monitored service: UTC+5:30, no DST.
var IST = time.FixedZone("IST", 5*60*60+30*60)

// LastCheckedLayout is ISO-8601 with microseconds, always written in UTC.
const LastCheckedLayout = "2006-01-02T15:04:05.000000Z07:00"

// Status is the outcome of a check. The zero value is StatusUnknown.
type Status int

const (
	StatusUnknown Status = iota
	StatusOK
	StatusFailed
	StatusDegraded
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusFailed:
		return "FAILED"
	case StatusDegraded:
		return "DEGRADED"
	default:
		return "UNKNOWN"
	}
}

// ParseStatus maps a stored status string back to a Status. Anything it does
// not recognise becomes StatusUnknown.
func ParseStatus(s string) Status {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OK":
		return StatusOK
	case "FAILED":
		return StatusFailed
	case "DEGRADED":
		return StatusDegraded
	default:
		return StatusUnknown
	}
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	*s = ParseStatus(string(b))
	return nil
}

// ValidationRecord is the single persisted snapshot of the last check.
type ValidationRecord struct {
	RecordID    string `json:"container_id"`
	FetchedTime string `json:"fetched_time"`
	LastChecked string `json:"last_checked"`
	Status      Status `json:"status"`
}

// NewRecord builds the record for a check finished at checkedAt. An empty
// fetched value is replaced with FetchedNA.
func NewRecord(fetched string, status Status, checkedAt time.Time) ValidationRecord {
	if fetched == "" {
		fetched = FetchedNA
	}
	return ValidationRecord{
		RecordID:    RecordID,
		FetchedTime: fetched,
		LastChecked: checkedAt.UTC().Format(LastCheckedLayout),
		Status:      status,
	}
}

// IsSentinel reports whether v is one of the "no time available" markers.
func IsSentinel(v string) bool {
	switch v {
	case "", FetchedAPIError, FetchedNA, "ERROR":
		return true
	}
	return false
}
