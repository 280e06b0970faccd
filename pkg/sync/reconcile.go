// Package sync computes and applies the minimal set of remote mutations that
// brings a calendar in line with the entries parsed from the daily note.
package sync

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jaketoday/daysync/pkg/match"
	"github.com/jaketoday/daysync/pkg/model"
	"github.com/jaketoday/daysync/pkg/note"
)

// EventStore is the mutating surface of the remote event store.
type EventStore interface {
	CreateEvent(calendarID, title string, start, end time.Time, description string) (string, error)
	UpdateEvent(calendarID, eventID, title string, start, end time.Time, description string) error
	DeleteEvent(calendarID, eventID string) error
}

// Reconciler diffs note entries against fetched events for one pass date and
// issues creates, updates and deletes. Entries and events are matched by
// time slot alone, so a title edit becomes an update rather than a
// delete-and-create.
type Reconciler struct {
	Store EventStore
	Date  time.Time
}

// Reconcile runs one pass over a single calendar: create every local entry
// with no slot match, update a matched pair whose title or description
// drifted, delete every remote event no local entry claims.
func (r *Reconciler) Reconcile(calendarID string, local []model.Event, remote []model.RemoteEvent) (model.SyncResult, error) {
	var res model.SyncResult

	for _, ev := range local {
		start := note.CombineDateTime(r.Date, ev.StartClock)
		end := note.CombineDateTime(r.Date, ev.EndClock)

		existing := findBySlot(ev, remote, r.Date)
		if existing == nil {
			if _, err := r.Store.CreateEvent(calendarID, ev.Title, start, end, joinDescription(ev)); err != nil {
				return res, fmt.Errorf("create %q: %w", ev.Title, err)
			}
			res.Created++
			continue
		}

		if !eventDiffers(ev, *existing) {
			continue
		}
		if err := r.Store.UpdateEvent(calendarID, existing.ID, ev.Title, start, end, joinDescription(ev)); err != nil {
			return res, fmt.Errorf("update %q: %w", ev.Title, err)
		}
		res.Updated++
	}

	for _, re := range remote {
		// All-day events have no slot a timed entry could claim, so the
		// delete pass would remove birthdays and holidays on every run.
		if re.AllDay {
			continue
		}
		if claimedBy(re, local, r.Date) {
			continue
		}
		if err := r.Store.DeleteEvent(calendarID, re.ID); err != nil {
			return res, fmt.Errorf("delete %q: %w", re.Title, err)
		}
		res.Deleted++
	}

	return res, nil
}

// ReconcileByCalendar runs the multi-calendar pass: local entries are
// bucketed by their tag name, each name is resolved to a calendar id, and
// each bucket is reconciled independently against the fetched events already
// belonging to that calendar. An untagged entry, or one whose tag resolves
// to nothing, is skipped with a warning; calendars the note never mentions
// are left alone.
func (r *Reconciler) ReconcileByCalendar(resolve func(name string) (string, bool), local []model.Event, remote []model.RemoteEvent) (model.SyncResult, error) {
	var res model.SyncResult

	buckets := make(map[string][]model.Event)
	var order []string
	for _, ev := range local {
		if ev.Calendar == "" {
			log.Printf("Warning: no calendar tag on %q, skipping", ev.Title)
			continue
		}
		id, ok := resolve(ev.Calendar)
		if !ok {
			log.Printf("Warning: calendar not found: %s (skipping %q)", ev.Calendar, ev.Title)
			continue
		}
		if _, seen := buckets[id]; !seen {
			order = append(order, id)
		}
		buckets[id] = append(buckets[id], ev)
	}

	byCalendar := make(map[string][]model.RemoteEvent)
	for _, re := range remote {
		byCalendar[re.CalendarID] = append(byCalendar[re.CalendarID], re)
	}

	for _, id := range order {
		partial, err := r.Reconcile(id, buckets[id], byCalendar[id])
		res.Add(partial)
		if err != nil {
			return res, err
		}
	}

	return res, nil
}

func findBySlot(ev model.Event, remote []model.RemoteEvent, day time.Time) *model.RemoteEvent {
	for i := range remote {
		if match.TimesMatch(ev, remote[i], day) {
			return &remote[i]
		}
	}
	return nil
}

func claimedBy(re model.RemoteEvent, local []model.Event, day time.Time) bool {
	for _, ev := range local {
		if match.TimesMatch(ev, re, day) {
			return true
		}
	}
	return false
}

func eventDiffers(ev model.Event, re model.RemoteEvent) bool {
	if !strings.EqualFold(ev.Title, re.Title) {
		return true
	}
	return joinDescription(ev) != re.Description
}

func joinDescription(ev model.Event) string {
	return strings.Join(ev.Description, "\n")
}
