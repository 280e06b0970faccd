package sync

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jaketoday/daysync/pkg/model"
)

type taskCall struct {
	op         string
	taskID     string
	title      string
	completed  bool
	due        time.Time
	startClock string
	notes      string
}

type fakeTaskStore struct {
	tasks   []model.RemoteTask
	calls   []taskCall
	nextID  int
	listErr error
}

func (f *fakeTaskStore) TasksForDate(date time.Time) ([]model.RemoteTask, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.tasks, nil
}

func (f *fakeTaskStore) CreateTask(title string, due time.Time, startClock, notes string) (string, error) {
	f.nextID++
	id := fmt.Sprintf("t-%d", f.nextID)
	f.calls = append(f.calls, taskCall{op: "create", taskID: id, title: title, due: due, startClock: startClock, notes: notes})
	return id, nil
}

func (f *fakeTaskStore) UpdateTask(taskID, title string, completed bool, due time.Time, startClock, notes string) error {
	f.calls = append(f.calls, taskCall{op: "update", taskID: taskID, title: title, completed: completed, due: due, startClock: startClock, notes: notes})
	return nil
}

func newBridge(store *fakeTaskStore) *TaskBridge {
	return &TaskBridge{
		Store:            store,
		Date:             passDay,
		PlanHeader:       "Daily Plan",
		UnassignedHeader: "Unassigned Tasks",
	}
}

func TestPushTodosCreates(t *testing.T) {
	store := &fakeTaskStore{}
	bridge := newBridge(store)

	todos := []model.Todo{{Title: "Draft report", ParentStart: "09:00", ParentEnd: "10:00"}}
	created, updated, err := bridge.PushTodos(todos)
	if err != nil {
		t.Fatalf("PushTodos failed: %v", err)
	}
	if created != 1 || updated != 0 {
		t.Fatalf("created=%d updated=%d", created, updated)
	}

	call := store.calls[0]
	if call.op != "create" || call.title != "Draft report" {
		t.Errorf("call = %+v", call)
	}
	wantDue := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	if !call.due.Equal(wantDue) {
		t.Errorf("due = %v, want parent end time %v", call.due, wantDue)
	}
	if call.startClock != "09:00" {
		t.Errorf("startClock = %q", call.startClock)
	}
}

func TestPushTodosCompletedAtCreation(t *testing.T) {
	store := &fakeTaskStore{}
	bridge := newBridge(store)

	todos := []model.Todo{{Title: "Done already", Completed: true, ParentStart: "09:00", ParentEnd: "10:00"}}
	created, _, err := bridge.PushTodos(todos)
	if err != nil {
		t.Fatalf("PushTodos failed: %v", err)
	}
	if created != 1 {
		t.Fatalf("created = %d", created)
	}

	// Creation cannot set completion; a follow-up update must carry it.
	if len(store.calls) != 2 {
		t.Fatalf("expected create then update, got %+v", store.calls)
	}
	follow := store.calls[1]
	if follow.op != "update" || !follow.completed || follow.taskID != store.calls[0].taskID {
		t.Errorf("follow-up = %+v", follow)
	}
}

func TestPushTodosUpdatesCompletion(t *testing.T) {
	store := &fakeTaskStore{tasks: []model.RemoteTask{{ID: "t-9", Title: "Draft report", Completed: false}}}
	bridge := newBridge(store)

	todos := []model.Todo{{Title: "Draft report", Completed: true, ParentStart: "09:00", ParentEnd: "10:00"}}
	created, updated, err := bridge.PushTodos(todos)
	if err != nil {
		t.Fatalf("PushTodos failed: %v", err)
	}
	if created != 0 || updated != 1 {
		t.Fatalf("created=%d updated=%d", created, updated)
	}
	if store.calls[0].taskID != "t-9" || !store.calls[0].completed {
		t.Errorf("call = %+v", store.calls[0])
	}
}

func TestPushTodosKeepsTaskNotes(t *testing.T) {
	store := &fakeTaskStore{tasks: []model.RemoteTask{
		{ID: "t-9", Title: "Draft report", Completed: false, Notes: "[09:00]\nimportant context"},
	}}
	bridge := newBridge(store)

	todos := []model.Todo{{Title: "Draft report", Completed: true, ParentStart: "09:00", ParentEnd: "10:00"}}
	if _, _, err := bridge.PushTodos(todos); err != nil {
		t.Fatalf("PushTodos failed: %v", err)
	}

	// Completion flips must not wipe the free text the user wrote on the
	// task; only the start marker line is the bridge's to regenerate.
	call := store.calls[0]
	if call.op != "update" || call.taskID != "t-9" {
		t.Fatalf("call = %+v", call)
	}
	if call.notes != "important context" {
		t.Errorf("notes = %q, want the free text preserved", call.notes)
	}
	if call.startClock != "09:00" {
		t.Errorf("startClock = %q", call.startClock)
	}
}

func TestFreeNotes(t *testing.T) {
	cases := []struct{ in, want string }{
		{"[09:00]\nimportant context", "important context"},
		{"[9:05]", ""},
		{"no marker here", "no marker here"},
		{"", ""},
	}
	for _, c := range cases {
		if got := freeNotes(c.in); got != c.want {
			t.Errorf("freeNotes(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPushTodosNoopWhenInSync(t *testing.T) {
	store := &fakeTaskStore{tasks: []model.RemoteTask{{ID: "t-9", Title: "Draft report", Completed: true}}}
	bridge := newBridge(store)

	todos := []model.Todo{{Title: "Draft report", Completed: true, ParentStart: "09:00", ParentEnd: "10:00"}}
	created, updated, err := bridge.PushTodos(todos)
	if err != nil {
		t.Fatalf("PushTodos failed: %v", err)
	}
	if created != 0 || updated != 0 || len(store.calls) != 0 {
		t.Errorf("expected no mutations, got %+v", store.calls)
	}
}

const taskDoc = `## Daily Plan

- 09:00 - 10:00 Standup
	- [ ] Draft report
	- [x] Send invites

## Daily Log
`

func TestPullTasksFlipsCheckbox(t *testing.T) {
	store := &fakeTaskStore{tasks: []model.RemoteTask{
		{ID: "t-1", Title: "Draft report", Completed: true},
		{ID: "t-2", Title: "Send invites", Completed: true},
	}}
	bridge := newBridge(store)

	doc, updated, added, err := bridge.PullTasks(taskDoc)
	if err != nil {
		t.Fatalf("PullTasks failed: %v", err)
	}
	if updated != 1 || added != 0 {
		t.Fatalf("updated=%d added=%d", updated, added)
	}
	if !strings.Contains(doc, "\t- [x] Draft report") {
		t.Error("checkbox not flipped")
	}
	if !strings.Contains(doc, "\t- [x] Send invites") {
		t.Error("already-synced checkbox altered")
	}
}

func TestPullTasksAppendsUnassigned(t *testing.T) {
	store := &fakeTaskStore{tasks: []model.RemoteTask{
		{ID: "t-3", Title: "Surprise errand", Completed: false},
	}}
	bridge := newBridge(store)

	doc, updated, added, err := bridge.PullTasks(taskDoc)
	if err != nil {
		t.Fatalf("PullTasks failed: %v", err)
	}
	if updated != 0 || added != 1 {
		t.Fatalf("updated=%d added=%d", updated, added)
	}
	if !strings.Contains(doc, "- Unassigned Tasks\n\t- [ ] Surprise errand") {
		t.Errorf("unassigned block missing:\n%s", doc)
	}

	// The block lands inside the plan section, before the next heading.
	if strings.Index(doc, "Surprise errand") > strings.Index(doc, "## Daily Log") {
		t.Error("unassigned block landed outside the plan section")
	}
	if !strings.Contains(doc, "- 09:00 - 10:00 Standup") {
		t.Error("existing plan lines disturbed")
	}
}

func TestPullTasksListErrorLeavesDocument(t *testing.T) {
	store := &fakeTaskStore{listErr: errors.New("remote unavailable")}
	bridge := newBridge(store)

	doc, _, _, err := bridge.PullTasks(taskDoc)
	if err == nil {
		t.Fatal("expected error")
	}
	if doc != taskDoc {
		t.Error("document must be untouched on failure")
	}
}
