package google

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/jaketoday/daysync/pkg/index"
	"github.com/jaketoday/daysync/pkg/model"
	"github.com/jaketoday/daysync/pkg/note"
	"google.golang.org/api/calendar/v3"
)

// CalendarClient is the Google Calendar side of the sync. The calendar
// directory is cached through idx; a stale entry persists until an explicit
// clear.
type CalendarClient struct {
	srv *calendar.Service
	idx *index.CalendarIndex
	loc *time.Location
}

func NewCalendarClient(srv *calendar.Service, idx *index.CalendarIndex, loc *time.Location) *CalendarClient {
	return &CalendarClient{srv: srv, idx: idx, loc: loc}
}

// Calendars returns the account's calendar directory, fetching it from the
// API only when the cached directory is empty.
func (c *CalendarClient) Calendars() ([]model.CalendarInfo, error) {
	if !c.idx.Empty() {
		return c.idx.All(), nil
	}

	list, err := c.srv.CalendarList.List().MaxResults(100).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve calendar list: %w", err)
	}

	infos := make([]model.CalendarInfo, 0, len(list.Items))
	for _, item := range list.Items {
		info := model.CalendarInfo{ID: item.Id, Name: item.Summary}
		infos = append(infos, info)
		c.idx.Put(info)
	}
	if err := c.idx.Save(); err != nil {
		log.Printf("Warning: failed to save calendar index: %v", err)
	}
	return infos, nil
}

// CalendarIDByName resolves a calendar name against the cached directory.
func (c *CalendarClient) CalendarIDByName(name string) (string, bool) {
	if c.idx.Empty() {
		if _, err := c.Calendars(); err != nil {
			log.Printf("Warning: failed to list calendars: %v", err)
			return "", false
		}
	}
	return c.idx.Get(name)
}

// EventsForDate fetches the day's events across every calendar in the
// directory, sorted by start. Holiday calendars are skipped, and a failure
// fetching one calendar only costs that calendar's events.
func (c *CalendarClient) EventsForDate(date time.Time) ([]model.RemoteEvent, error) {
	calendars, err := c.Calendars()
	if err != nil {
		return nil, err
	}

	dayStart, dayEnd := note.DayBounds(date)

	var all []model.RemoteEvent
	for _, cal := range calendars {
		if strings.Contains(cal.ID, "holiday") {
			continue
		}

		list, err := c.srv.Events.List(cal.ID).
			TimeMin(dayStart.Format(time.RFC3339)).
			TimeMax(dayEnd.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			Do()
		if err != nil {
			log.Printf("Warning: failed to fetch events from calendar %s: %v", cal.Name, err)
			continue
		}

		for _, item := range list.Items {
			all = append(all, c.toRemoteEvent(item, cal))
		}
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Start.Before(all[j].Start) })
	return all, nil
}

// SplitByCalendar partitions fetched events into the named calendar's and
// everyone else's, resolving the name through the directory.
func (c *CalendarClient) SplitByCalendar(events []model.RemoteEvent, name string) (in, out []model.RemoteEvent) {
	id, _ := c.CalendarIDByName(name)
	for _, ev := range events {
		if ev.CalendarID == id {
			in = append(in, ev)
		} else {
			out = append(out, ev)
		}
	}
	return in, out
}

// CreateEvent inserts an event and returns its id.
func (c *CalendarClient) CreateEvent(calendarID, title string, start, end time.Time, description string) (string, error) {
	ev, err := c.srv.Events.Insert(calendarID, c.toAPIEvent(title, start, end, description)).Do()
	if err != nil {
		return "", fmt.Errorf("unable to insert event: %w", err)
	}
	return ev.Id, nil
}

// UpdateEvent replaces an event's title, times and description.
func (c *CalendarClient) UpdateEvent(calendarID, eventID, title string, start, end time.Time, description string) error {
	_, err := c.srv.Events.Update(calendarID, eventID, c.toAPIEvent(title, start, end, description)).Do()
	if err != nil {
		return fmt.Errorf("unable to update event: %w", err)
	}
	return nil
}

// DeleteEvent removes an event.
func (c *CalendarClient) DeleteEvent(calendarID, eventID string) error {
	if err := c.srv.Events.Delete(calendarID, eventID).Do(); err != nil {
		return fmt.Errorf("unable to delete event: %w", err)
	}
	return nil
}

func (c *CalendarClient) toAPIEvent(title string, start, end time.Time, description string) *calendar.Event {
	return &calendar.Event{
		Summary:     title,
		Description: description,
		Start: &calendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: c.loc.String(),
		},
		End: &calendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: c.loc.String(),
		},
	}
}

func (c *CalendarClient) toRemoteEvent(item *calendar.Event, cal model.CalendarInfo) model.RemoteEvent {
	ev := model.RemoteEvent{
		ID:           item.Id,
		CalendarID:   cal.ID,
		CalendarName: cal.Name,
		Title:        item.Summary,
		Description:  item.Description,
	}
	ev.Start, ev.AllDay = parseEventTime(item.Start, c.loc)
	ev.End, _ = parseEventTime(item.End, c.loc)
	return ev
}

// parseEventTime reads an API event time; a date without a time component
// marks an all-day event.
func parseEventTime(edt *calendar.EventDateTime, loc *time.Location) (time.Time, bool) {
	if edt == nil {
		return time.Time{}, false
	}
	if edt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		if err != nil {
			return time.Time{}, false
		}
		return t.In(loc), false
	}
	if edt.Date != "" {
		t, err := time.ParseInLocation("2006-01-02", edt.Date, loc)
		if err != nil {
			return time.Time{}, true
		}
		return t, true
	}
	return time.Time{}, false
}
