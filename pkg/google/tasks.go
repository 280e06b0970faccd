package google

import (
	"fmt"
	"time"

	"github.com/jaketoday/daysync/pkg/model"
	"github.com/jaketoday/daysync/pkg/note"
	"google.golang.org/api/tasks/v1"
)

// TasksClient is the Google Tasks side of the sync. All operations run
// against one task list, resolved lazily: the first preferred title that
// exists, else the account's first list, else a freshly created one.
type TasksClient struct {
	srv       *tasks.Service
	preferred []string
	listID    string
}

func NewTasksClient(srv *tasks.Service, preferred []string) *TasksClient {
	return &TasksClient{srv: srv, preferred: preferred}
}

func (c *TasksClient) ensureList() error {
	if c.listID != "" {
		return nil
	}

	list, err := c.srv.Tasklists.List().Do()
	if err != nil {
		return fmt.Errorf("unable to retrieve task lists: %w", err)
	}

	for _, want := range c.preferred {
		for _, item := range list.Items {
			if item.Title == want {
				c.listID = item.Id
				return nil
			}
		}
	}
	if len(list.Items) > 0 {
		c.listID = list.Items[0].Id
		return nil
	}

	title := "My Tasks"
	if len(c.preferred) > 0 {
		title = c.preferred[0]
	}
	created, err := c.srv.Tasklists.Insert(&tasks.TaskList{Title: title}).Do()
	if err != nil {
		return fmt.Errorf("unable to create task list: %w", err)
	}
	c.listID = created.Id
	return nil
}

// TasksForDate returns the tasks due on the given day, completed ones
// included. The API lists without a due filter, so the day window is
// applied client-side; tasks without a due date never qualify.
func (c *TasksClient) TasksForDate(date time.Time) ([]model.RemoteTask, error) {
	if err := c.ensureList(); err != nil {
		return nil, err
	}

	list, err := c.srv.Tasks.List(c.listID).ShowCompleted(true).ShowHidden(true).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve tasks: %w", err)
	}

	dayStart, dayEnd := note.DayBounds(date)

	var out []model.RemoteTask
	for _, item := range list.Items {
		if item.Due == "" {
			continue
		}
		due, err := time.Parse(time.RFC3339, item.Due)
		if err != nil {
			continue
		}
		due = due.In(date.Location())
		if due.Before(dayStart) || due.After(dayEnd) {
			continue
		}
		out = append(out, model.RemoteTask{
			ID:        item.Id,
			Title:     item.Title,
			Completed: item.Status == "completed",
			Due:       due,
			Notes:     item.Notes,
		})
	}
	return out, nil
}

// CreateTask inserts a task and returns its id. The insert API ignores
// completion state; callers needing a completed task must update after.
func (c *TasksClient) CreateTask(title string, due time.Time, startClock, notes string) (string, error) {
	if err := c.ensureList(); err != nil {
		return "", err
	}

	created, err := c.srv.Tasks.Insert(c.listID, &tasks.Task{
		Title: title,
		Due:   due.Format(time.RFC3339),
		Notes: taskNotes(startClock, notes),
	}).Do()
	if err != nil {
		return "", fmt.Errorf("unable to insert task: %w", err)
	}
	return created.Id, nil
}

// UpdateTask replaces a task's title, completion, due time and notes.
func (c *TasksClient) UpdateTask(taskID, title string, completed bool, due time.Time, startClock, notes string) error {
	if err := c.ensureList(); err != nil {
		return err
	}

	status := "needsAction"
	if completed {
		status = "completed"
	}
	task := &tasks.Task{
		Id:     taskID,
		Title:  title,
		Status: status,
		Notes:  taskNotes(startClock, notes),
	}
	if !due.IsZero() {
		task.Due = due.Format(time.RFC3339)
	}

	if _, err := c.srv.Tasks.Update(c.listID, taskID, task).Do(); err != nil {
		return fmt.Errorf("unable to update task: %w", err)
	}
	return nil
}

// taskNotes embeds the parent event's start time as a bracketed first line,
// kept apart from the free-text notes below it.
func taskNotes(startClock, notes string) string {
	if startClock == "" {
		return notes
	}
	if notes == "" {
		return "[" + startClock + "]"
	}
	return "[" + startClock + "]\n" + notes
}
