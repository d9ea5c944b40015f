package httpapi

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hamed0406/timewatch/internal/domain"
	"github.com/hamed0406/timewatch/internal/timesource"
)

// DisplayLayout renders times the way the status page shows them.
const DisplayLayout = "January 02, 2006, 03:04:05 PM IST"

const (
	msgNoRecord   = "No check data found. Please wait for the next validation run."
	msgUnexpected = "An unexpected error occurred: %v"
)

// StatusView is what the status page and /api/status render.
type StatusView struct {
	ContainerID    string `json:"container_id"`
	LocalTime      string `json:"local_time"`
	Found          bool   `json:"found"`
	FetchedTime    string `json:"fetched_time"`
	FetchedTimeRaw string `json:"fetched_time_raw,omitempty"`
	Status         string `json:"status"`
	LastChecked    string `json:"last_checked,omitempty"`
	LastCheckedAgo string `json:"last_checked_ago,omitempty"`
	Error          string `json:"error,omitempty"`
}

// outcome is the label used for the page view metric.
func (v StatusView) outcome() string {
	switch {
	case v.Found && v.Error == "":
		return "record"
	case !v.Found && v.Error == msgNoRecord:
		return "empty"
	default:
		return "error"
	}
}

// BuildView turns a store read into display fields. A nil record with no
// error means nothing has been written yet.
func BuildView(rec *domain.ValidationRecord, readErr error, containerID string, now time.Time) StatusView {
	v := StatusView{
		ContainerID: containerID,
		LocalTime:   now.In(domain.IST).Format(DisplayLayout),
		FetchedTime: domain.FetchedNA,
		Status:      domain.FetchedNA,
	}
	switch {
	case readErr != nil:
		v.Error = fmt.Sprintf(msgUnexpected, readErr)
		return v
	case rec == nil:
		v.Error = msgNoRecord
		return v
	}

	v.Found = true
	v.Status = rec.Status.String()
	v.FetchedTimeRaw = rec.FetchedTime
	v.LastChecked = rec.LastChecked

	if checked, err := time.Parse(time.RFC3339Nano, rec.LastChecked); err == nil {
		v.LastCheckedAgo = humanize.RelTime(checked, now, "ago", "from now")
	}

	if domain.IsSentinel(rec.FetchedTime) {
		v.FetchedTime = rec.FetchedTime
		if v.FetchedTime == "" {
			v.FetchedTime = domain.FetchedNA
		}
		return v
	}
	t, err := timesource.Parse(rec.FetchedTime)
	if err != nil {
		v.Error = fmt.Sprintf(msgUnexpected, err)
		return v
	}
	v.FetchedTime = t.In(domain.IST).Format(DisplayLayout)
	return v
}
