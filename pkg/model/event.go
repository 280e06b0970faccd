package model

import "time"

// Event is a timed entry parsed from the daily note. Clock fields hold the
// wall-clock text exactly as written ("9:00", "14:30"); they are only turned
// into instants once a sync pass pins them to a date.
type Event struct {
	StartClock  string
	EndClock    string
	Title       string
	Calendar    string // calendar name from the trailing [tag], or the configured default
	Description []string
	RawLine     string
}

// RemoteEvent is an event fetched from Google Calendar.
type RemoteEvent struct {
	ID           string
	CalendarID   string
	CalendarName string
	Title        string
	Description  string
	Start        time.Time
	End          time.Time
	AllDay       bool
}

// Todo is a checkbox item nested under a plan entry. The parent clocks exist
// only to derive a due time for the remote task; identity is the title.
type Todo struct {
	Title       string
	Completed   bool
	ParentStart string
	ParentEnd   string
}

// RemoteTask is a task fetched from Google Tasks. Due is the zero time when
// the task carries no due date.
type RemoteTask struct {
	ID        string
	Title     string
	Completed bool
	Due       time.Time
	Notes     string
}

// CalendarInfo identifies a calendar in the account's calendar list.
type CalendarInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SyncResult counts the mutations one reconciliation pass issued.
type SyncResult struct {
	Created int
	Updated int
	Deleted int
}

// Add accumulates another pass's counts into r.
func (r *SyncResult) Add(other SyncResult) {
	r.Created += other.Created
	r.Updated += other.Updated
	r.Deleted += other.Deleted
}
