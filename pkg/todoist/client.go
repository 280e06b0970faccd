// Package todoist is the Todoist REST v2 task backend. It satisfies the
// same store surface as the Google Tasks client, so the bridge does not
// care which one it talks to.
package todoist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jaketoday/daysync/pkg/model"
	"github.com/jaketoday/daysync/pkg/note"
)

const (
	defaultBaseURL = "https://api.todoist.com/rest/v2"
	defaultSyncURL = "https://api.todoist.com/sync/v9"
)

// Client talks to the Todoist API with a personal API token.
type Client struct {
	apiKey  string
	baseURL string
	syncURL string
	httpc   *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		syncURL: defaultSyncURL,
		httpc:   http.DefaultClient,
	}
}

type restTask struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	Description string `json:"description"`
	IsCompleted bool   `json:"is_completed"`
}

type completedItems struct {
	Items []struct {
		TaskID  string `json:"task_id"`
		Content string `json:"content"`
	} `json:"items"`
}

// TasksForDate returns the tasks due on the given day, merging the active
// list with the completed-activity endpoint. Completed tasks disappear from
// the REST listing, so without the second call a checked-off task would look
// like it never existed.
func (c *Client) TasksForDate(date time.Time) ([]model.RemoteTask, error) {
	day := date.Format("2006-01-02")

	var active []restTask
	filter := url.QueryEscape("due: " + day)
	if err := c.request("GET", c.baseURL+"/tasks?filter="+filter, nil, &active); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]model.RemoteTask, 0, len(active))
	for _, t := range active {
		tasks = append(tasks, model.RemoteTask{
			ID:        t.ID,
			Title:     t.Content,
			Completed: t.IsCompleted,
			Due:       date,
			Notes:     t.Description,
		})
	}

	// The sync endpoint is best effort; a failure there must not hide the
	// active tasks.
	var done completedItems
	doneURL := fmt.Sprintf("%s/completed/get_all?since=%sT00:00:00&until=%sT23:59:59", c.syncURL, day, day)
	if err := c.request("GET", doneURL, nil, &done); err == nil {
		for _, item := range done.Items {
			tasks = append(tasks, model.RemoteTask{
				ID:        item.TaskID,
				Title:     item.Content,
				Completed: true,
				Due:       date,
			})
		}
	}

	return tasks, nil
}

// CreateTask adds a task due at the start clock on due's day. Todoist
// carries the time slot natively, as a due datetime plus a duration running
// to the due instant, so no marker is written into the description.
func (c *Client) CreateTask(title string, due time.Time, startClock, notes string) (string, error) {
	var created struct {
		ID string `json:"id"`
	}
	if err := c.request("POST", c.baseURL+"/tasks", c.taskBody(title, due, startClock, notes), &created); err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	return created.ID, nil
}

// UpdateTask rewrites the task's content and due slot, then closes or
// reopens it to match the wanted completion state.
func (c *Client) UpdateTask(taskID, title string, completed bool, due time.Time, startClock, notes string) error {
	if err := c.request("POST", c.baseURL+"/tasks/"+taskID, c.taskBody(title, due, startClock, notes), nil); err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	verb := "reopen"
	if completed {
		verb = "close"
	}
	err := c.request("POST", c.baseURL+"/tasks/"+taskID+"/"+verb, nil, nil)
	if err != nil && strings.Contains(err.Error(), "404") {
		// Closing an already-closed task 404s; the state is what we wanted.
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s task: %w", verb, err)
	}
	return nil
}

func (c *Client) taskBody(title string, due time.Time, startClock, notes string) map[string]any {
	body := map[string]any{"content": title}
	if notes != "" {
		body["description"] = notes
	}

	if startClock == "" {
		body["due_date"] = due.Format("2006-01-02")
		return body
	}

	start := note.CombineDateTime(due, startClock)
	body["due_datetime"] = start.Format("2006-01-02T15:04:05")
	if mins := int(due.Sub(start).Minutes()); mins > 0 {
		body["duration"] = mins
		body["duration_unit"] = "minute"
	}
	return body
}

func (c *Client) request(method, rawURL string, body map[string]any, out any) error {
	var payload *bytes.Buffer
	if body != nil {
		payload = &bytes.Buffer{}
		if err := json.NewEncoder(payload).Encode(body); err != nil {
			return err
		}
	}

	var req *http.Request
	var err error
	if payload != nil {
		req, err = http.NewRequest(method, rawURL, payload)
	} else {
		req, err = http.NewRequest(method, rawURL, nil)
	}
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("todoist API error: %d", resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
