package sync

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jaketoday/daysync/pkg/model"
	"github.com/jaketoday/daysync/pkg/note"
)

var passDay = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

type mutation struct {
	op          string
	calendarID  string
	eventID     string
	title       string
	start, end  time.Time
	description string
}

type fakeEventStore struct {
	calls  []mutation
	nextID int
	fail   bool
}

func (f *fakeEventStore) CreateEvent(calendarID, title string, start, end time.Time, description string) (string, error) {
	if f.fail {
		return "", errors.New("remote unavailable")
	}
	f.nextID++
	f.calls = append(f.calls, mutation{op: "create", calendarID: calendarID, title: title, start: start, end: end, description: description})
	return fmt.Sprintf("ev-%d", f.nextID), nil
}

func (f *fakeEventStore) UpdateEvent(calendarID, eventID, title string, start, end time.Time, description string) error {
	if f.fail {
		return errors.New("remote unavailable")
	}
	f.calls = append(f.calls, mutation{op: "update", calendarID: calendarID, eventID: eventID, title: title, start: start, end: end, description: description})
	return nil
}

func (f *fakeEventStore) DeleteEvent(calendarID, eventID string) error {
	if f.fail {
		return errors.New("remote unavailable")
	}
	f.calls = append(f.calls, mutation{op: "delete", calendarID: calendarID, eventID: eventID})
	return nil
}

func remoteEvent(id, calID, title string, startH, endH int) model.RemoteEvent {
	return model.RemoteEvent{
		ID:         id,
		CalendarID: calID,
		Title:      title,
		Start:      time.Date(2026, 3, 10, startH, 0, 0, 0, time.UTC),
		End:        time.Date(2026, 3, 10, endH, 0, 0, 0, time.UTC),
	}
}

func localFromDoc(t *testing.T, doc string) []model.Event {
	t.Helper()
	return note.ParseSection(doc, "Daily Plan", "Plan")
}

func TestReconcileNoChanges(t *testing.T) {
	store := &fakeEventStore{}
	rec := &Reconciler{Store: store, Date: passDay}

	local := localFromDoc(t, "## Daily Plan\n- 09:00 - 10:00 Standup\n")
	remote := []model.RemoteEvent{remoteEvent("e1", "plan", "Standup", 9, 10)}

	res, err := rec.Reconcile("plan", local, remote)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if res != (model.SyncResult{}) {
		t.Errorf("expected no mutations, got %+v", res)
	}
	if len(store.calls) != 0 {
		t.Errorf("unexpected calls: %+v", store.calls)
	}
}

func TestReconcileTitleEditIsUpdate(t *testing.T) {
	store := &fakeEventStore{}
	rec := &Reconciler{Store: store, Date: passDay}

	local := localFromDoc(t, "## Daily Plan\n- 09:00 - 10:00 Standup\n")
	remote := []model.RemoteEvent{remoteEvent("e1", "plan", "Stand-up", 9, 10)}

	res, err := rec.Reconcile("plan", local, remote)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if res.Created != 0 || res.Updated != 1 || res.Deleted != 0 {
		t.Fatalf("expected a single update, got %+v", res)
	}
	call := store.calls[0]
	if call.op != "update" || call.eventID != "e1" || call.title != "Standup" {
		t.Errorf("update call = %+v", call)
	}
}

func TestReconcileDescriptionDrift(t *testing.T) {
	store := &fakeEventStore{}
	rec := &Reconciler{Store: store, Date: passDay}

	local := localFromDoc(t, "## Daily Plan\n- 09:00 - 10:00 Standup\n\t- agenda\n\t- minutes\n")
	remote := []model.RemoteEvent{remoteEvent("e1", "plan", "Standup", 9, 10)}

	res, err := rec.Reconcile("plan", local, remote)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if res.Updated != 1 {
		t.Fatalf("expected an update, got %+v", res)
	}
	if store.calls[0].description != "agenda\nminutes" {
		t.Errorf("description = %q", store.calls[0].description)
	}
}

func TestReconcileConservation(t *testing.T) {
	store := &fakeEventStore{}
	rec := &Reconciler{Store: store, Date: passDay}

	local := localFromDoc(t, "## Daily Plan\n- 08:00 - 09:00 One\n- 10:00 - 11:00 Two\n")
	remote := []model.RemoteEvent{
		remoteEvent("e1", "plan", "Gone", 13, 14),
		remoteEvent("e2", "plan", "Also gone", 15, 16),
		remoteEvent("e3", "plan", "Still gone", 17, 18),
	}

	res, err := rec.Reconcile("plan", local, remote)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if res.Created != len(local) || res.Deleted != len(remote) || res.Updated != 0 {
		t.Errorf("expected created=%d deleted=%d updated=0, got %+v", len(local), len(remote), res)
	}
}

func TestReconcileTimeEditIsDeleteAndCreate(t *testing.T) {
	store := &fakeEventStore{}
	rec := &Reconciler{Store: store, Date: passDay}

	// Same title, moved slot: no slot match on either side.
	local := localFromDoc(t, "## Daily Plan\n- 11:00 - 12:00 Standup\n")
	remote := []model.RemoteEvent{remoteEvent("e1", "plan", "Standup", 9, 10)}

	res, err := rec.Reconcile("plan", local, remote)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if res.Created != 1 || res.Deleted != 1 || res.Updated != 0 {
		t.Errorf("got %+v", res)
	}
}

func TestReconcileLeavesAllDayEvents(t *testing.T) {
	store := &fakeEventStore{}
	rec := &Reconciler{Store: store, Date: passDay}

	birthday := remoteEvent("e1", "plan", "Mom's birthday", 0, 0)
	birthday.AllDay = true
	remote := []model.RemoteEvent{
		birthday,
		remoteEvent("e2", "plan", "Stale", 9, 10),
	}

	res, err := rec.Reconcile("plan", nil, remote)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	// Timed entries can never claim an all-day event's slot, so the delete
	// pass must not touch it.
	if res.Deleted != 1 {
		t.Fatalf("got %+v", res)
	}
	if store.calls[0].eventID != "e2" {
		t.Errorf("deleted %q, want the stale timed event", store.calls[0].eventID)
	}
}

func TestReconcileMutationErrorPropagates(t *testing.T) {
	store := &fakeEventStore{fail: true}
	rec := &Reconciler{Store: store, Date: passDay}

	local := localFromDoc(t, "## Daily Plan\n- 09:00 - 10:00 Standup\n")
	if _, err := rec.Reconcile("plan", local, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestReconcileByCalendar(t *testing.T) {
	store := &fakeEventStore{}
	rec := &Reconciler{Store: store, Date: passDay}

	resolve := func(name string) (string, bool) {
		ids := map[string]string{"Work": "work-id", "Personal": "personal-id"}
		id, ok := ids[name]
		return id, ok
	}

	local := note.ParseSection(
		"## Daily Log\n- 14:00 - 15:00 Review [Work]\n- 18:00 - 19:00 Gym [Personal]\n- 20:00 - 21:00 Ghost [Unknown]\n",
		"Daily Log", "Plan")
	remote := []model.RemoteEvent{
		remoteEvent("e1", "personal-id", "Gym", 18, 19),
		remoteEvent("e2", "other-id", "Untouched", 7, 8),
	}

	res, err := rec.ReconcileByCalendar(resolve, local, remote)
	if err != nil {
		t.Fatalf("ReconcileByCalendar failed: %v", err)
	}

	// Review is new in Work; Gym already matches; Ghost's tag resolves to
	// nothing and is skipped; other-id's event belongs to a calendar the
	// note never mentions and must stay.
	if res.Created != 1 || res.Updated != 0 || res.Deleted != 0 {
		t.Fatalf("got %+v", res)
	}
	call := store.calls[0]
	if call.op != "create" || call.calendarID != "work-id" || call.title != "Review" {
		t.Errorf("create call = %+v", call)
	}
}

func TestReconcileByCalendarSkipsUntaggedEntries(t *testing.T) {
	store := &fakeEventStore{}
	rec := &Reconciler{Store: store, Date: passDay}

	resolve := func(name string) (string, bool) {
		if name == "Work" {
			return "work-id", true
		}
		return "", false
	}

	// Log entries without a tag carry no calendar name at all; they must
	// not be routed anywhere, or every pass would re-create them.
	local := note.ParseSection(
		"## Daily Log\n- 14:00 - 15:00 Review [Work]\n- 16:00 - 17:00 Untagged wandering\n",
		"Daily Log", "")

	res, err := rec.ReconcileByCalendar(resolve, local, nil)
	if err != nil {
		t.Fatalf("ReconcileByCalendar failed: %v", err)
	}
	if res.Created != 1 {
		t.Fatalf("got %+v", res)
	}
	if store.calls[0].title != "Review" {
		t.Errorf("created %q, want only the tagged entry", store.calls[0].title)
	}
}
