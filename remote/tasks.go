package remote

import (
	"context"
	"net/http"

	"taskflow-client/domain"
)

// ListProjectTasks fetches all tasks belonging to one project.
func (c *Client) ListProjectTasks(ctx context.Context, projectID string) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := c.do(ctx, http.MethodGet, "/tasks/project/"+projectID, nil, &tasks, "Failed to fetch tasks"); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask submits a new task and returns the canonical entity with the
// server-assigned id.
func (c *Client) CreateTask(ctx context.Context, fields domain.TaskFields) (domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", fields, &task, "Failed to create task"); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// UpdateTask replaces the mutable fields of a task.
func (c *Client) UpdateTask(ctx context.Context, id string, fields domain.TaskFields) (domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+id, fields, &task, "Failed to update task"); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// DeleteTask removes a task on the authority.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+id, nil, nil, "Failed to delete task")
}
