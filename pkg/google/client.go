// Package google wraps the Google Calendar and Tasks APIs behind the small
// store surfaces the sync engine needs.
package google

import (
	"context"
	"fmt"
	"time"

	"github.com/jaketoday/daysync/pkg/auth"
	"github.com/jaketoday/daysync/pkg/config"
	"github.com/jaketoday/daysync/pkg/index"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"
)

// NewClients builds the Calendar and Tasks clients from one authenticated
// HTTP client.
func NewClients(ctx context.Context, cfg *config.Config, idx *index.CalendarIndex, loc *time.Location) (*CalendarClient, *TasksClient, error) {
	scopes := []string{
		calendar.CalendarScope,
		tasks.TasksScope,
	}
	client, err := auth.GetClient(ctx, cfg.Impersonate, scopes)
	if err != nil {
		return nil, nil, err
	}

	calSrv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, nil, fmt.Errorf("unable to retrieve Calendar client: %w", err)
	}

	taskSrv, err := tasks.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, nil, fmt.Errorf("unable to retrieve Tasks client: %w", err)
	}

	return NewCalendarClient(calSrv, idx, loc), NewTasksClient(taskSrv, cfg.TaskLists), nil
}
