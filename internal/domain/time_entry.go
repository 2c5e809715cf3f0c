package domain

import "time"

// TimeEntry represents a Toggl time entry in the domain.
// Optional fields are pointers; nil means the service did not send a value.
type TimeEntry struct {
	ID          int64
	WorkspaceID int64
	UserID      int64
	ProjectID   *int64
	TaskID      *int64
	Billable    bool
	Start       time.Time
	Stop        *time.Time
	DurationSec int64 // Negative means running in Toggl API semantics
	Description *string
	Tags        []string

	// Denormalized display fields, passthrough only.
	ProjectName  *string
	ProjectColor *string
	ClientName   *string
	TaskName     *string
	UserName     *string
	At           *time.Time
}

// Running reports whether the entry is still being tracked.
func (e TimeEntry) Running() bool { return e.DurationSec < 0 }

// Elapsed returns the tracked length of the entry as of now.
func (e TimeEntry) Elapsed(now time.Time) time.Duration {
	if e.Running() {
		return now.Sub(e.Start)
	}
	return time.Duration(e.DurationSec) * time.Second
}

// DescriptionOr returns the description or fallback when absent.
func (e TimeEntry) DescriptionOr(fallback string) string {
	if e.Description == nil {
		return fallback
	}
	return *e.Description
}

// TimeEntryCreateRequest is the payload for starting a new entry.
// It is built fresh for every start call.
type TimeEntryCreateRequest struct {
	WorkspaceID int64
	Description string
	DurationSec int64
	Start       time.Time
	ProjectID   *int64
	TaskID      *int64
	Tags        []string
	Billable    bool
	CreatedWith string
}
