package sync

import (
	"fmt"
	"regexp"
	"time"

	"github.com/jaketoday/daysync/pkg/model"
	"github.com/jaketoday/daysync/pkg/note"
)

var startMarkerPattern = regexp.MustCompile(`^\[\d{1,2}:\d{2}\]\n?`)

// freeNotes strips the bracketed start-time marker line from a task's
// notes, leaving only the free text the user wrote. The marker is rebuilt
// by the store on every write, so carrying it here would duplicate it.
func freeNotes(notes string) string {
	return startMarkerPattern.ReplaceAllString(notes, "")
}

// TaskStore is the remote task surface the bridge talks to.
type TaskStore interface {
	TasksForDate(date time.Time) ([]model.RemoteTask, error)
	CreateTask(title string, due time.Time, startClock, notes string) (string, error)
	UpdateTask(taskID, title string, completed bool, due time.Time, startClock, notes string) error
}

// TaskBridge maps checkbox items in the plan section to remote tasks due on
// the pass date and carries completion state in both directions. Tasks have
// no time slot of their own, so identity is the exact title.
type TaskBridge struct {
	Store            TaskStore
	Date             time.Time
	PlanHeader       string
	UnassignedHeader string
}

// PushTodos creates a remote task for every checkbox with no same-titled
// task due that day, and updates completion where the two sides disagree.
// The task API cannot set completion at creation, so an already-checked
// todo gets an immediate follow-up update after its create.
func (b *TaskBridge) PushTodos(todos []model.Todo) (created, updated int, err error) {
	if len(todos) == 0 {
		return 0, 0, nil
	}

	existing, err := b.Store.TasksForDate(b.Date)
	if err != nil {
		return 0, 0, fmt.Errorf("list tasks: %w", err)
	}
	byTitle := make(map[string]model.RemoteTask, len(existing))
	for _, t := range existing {
		byTitle[t.Title] = t
	}

	for _, todo := range todos {
		due := note.CombineDateTime(b.Date, todo.ParentEnd)

		task, ok := byTitle[todo.Title]
		if !ok {
			id, err := b.Store.CreateTask(todo.Title, due, todo.ParentStart, "")
			if err != nil {
				return created, updated, fmt.Errorf("create task %q: %w", todo.Title, err)
			}
			created++
			if todo.Completed {
				if err := b.Store.UpdateTask(id, todo.Title, true, due, todo.ParentStart, ""); err != nil {
					return created, updated, fmt.Errorf("complete task %q: %w", todo.Title, err)
				}
			}
			continue
		}

		if task.Completed != todo.Completed {
			if err := b.Store.UpdateTask(task.ID, todo.Title, todo.Completed, due, todo.ParentStart, freeNotes(task.Notes)); err != nil {
				return created, updated, fmt.Errorf("update task %q: %w", todo.Title, err)
			}
			updated++
		}
	}

	return created, updated, nil
}

// PullTasks flips local checkbox state wherever a same-titled remote task
// disagrees, and surfaces remote tasks with no local checkbox as a new
// unassigned block at the end of the plan section. Existing plan lines are
// never rewritten beyond the single checkbox line each flip targets.
func (b *TaskBridge) PullTasks(doc string) (string, int, int, error) {
	tasks, err := b.Store.TasksForDate(b.Date)
	if err != nil {
		return doc, 0, 0, fmt.Errorf("list tasks: %w", err)
	}
	if len(tasks) == 0 {
		return doc, 0, 0, nil
	}

	local := make(map[string]model.Todo)
	for _, t := range note.Todos(note.ParseSectionWithTodos(doc, b.PlanHeader, "")) {
		local[t.Title] = t
	}

	updated := 0
	var unassigned []model.Todo
	for _, task := range tasks {
		todo, ok := local[task.Title]
		if !ok {
			unassigned = append(unassigned, model.Todo{Title: task.Title, Completed: task.Completed})
			continue
		}
		if todo.Completed != task.Completed {
			doc = note.SetTodoState(doc, task.Title, task.Completed)
			updated++
		}
	}

	if len(unassigned) > 0 {
		block := note.FormatCheckboxBlock(b.UnassignedHeader, unassigned)
		doc = note.AppendAfterSection(doc, b.PlanHeader, block)
	}

	return doc, updated, len(unassigned), nil
}
