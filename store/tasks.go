package store

import (
	"context"

	log "github.com/sirupsen/logrus"

	"taskflow-client/domain"
)

// TaskAPI is the slice of the authority client the task store needs.
type TaskAPI interface {
	ListProjectTasks(ctx context.Context, projectID string) ([]domain.Task, error)
	CreateTask(ctx context.Context, fields domain.TaskFields) (domain.Task, error)
	UpdateTask(ctx context.Context, id string, fields domain.TaskFields) (domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// TaskStore caches the tasks of the currently selected project. Both the
// board's drag-and-drop path and the edit-form path mutate through the same
// Update call; the authority's last-write-wins semantics govern final
// consistency between them.
type TaskStore struct {
	col    *collection[domain.Task]
	api    TaskAPI
	logger *log.Logger
}

// NewTaskStore creates a task store backed by api.
func NewTaskStore(api TaskAPI, logger *log.Logger) *TaskStore {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &TaskStore{
		col:    newCollection(func(t domain.Task) string { return t.ID }),
		api:    api,
		logger: logger,
	}
}

// ListByProject refetches the tasks of one project and replaces the local
// collection wholesale. A response arriving after a newer list for the same
// project, or after Clear, is discarded.
func (s *TaskStore) ListByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	seq := s.col.nextSeq(projectID)
	s.col.begin()
	tasks, err := s.api.ListProjectTasks(ctx, projectID)
	s.col.settle(err)
	if err != nil {
		return nil, err
	}
	if !s.col.applyList(projectID, seq, tasks) {
		s.logger.WithFields(log.Fields{"project": projectID, "count": len(tasks)}).Debug("stale task list discarded")
	}
	return s.Tasks(), nil
}

// Create submits a new task and appends the canonical entity on success.
func (s *TaskStore) Create(ctx context.Context, fields domain.TaskFields) (domain.Task, error) {
	if err := domain.ValidateTask(fields); err != nil {
		return domain.Task{}, err
	}
	s.col.begin()
	task, err := s.api.CreateTask(ctx, fields)
	s.col.settle(err)
	if err != nil {
		return domain.Task{}, err
	}
	s.col.applyCreate(task)
	return task, nil
}

// Update replaces a task's mutable fields. If the task is no longer cached
// locally when the response arrives, the result is appended instead.
func (s *TaskStore) Update(ctx context.Context, id string, fields domain.TaskFields) (domain.Task, error) {
	if err := domain.ValidateTask(fields); err != nil {
		return domain.Task{}, err
	}
	s.col.begin()
	task, err := s.api.UpdateTask(ctx, id, fields)
	s.col.settle(err)
	if err != nil {
		return domain.Task{}, err
	}
	s.col.applyUpdate(task)
	return task, nil
}

// Delete removes a task.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	s.col.begin()
	err := s.api.DeleteTask(ctx, id)
	s.col.settle(err)
	if err != nil {
		return err
	}
	s.col.applyDelete(id)
	return nil
}

// Clear empties the store and invalidates every in-flight list, so stale
// responses for a deselected or deleted project never reappear.
func (s *TaskStore) Clear() {
	s.col.clear()
}

// Tasks returns a copy of the cached tasks.
func (s *TaskStore) Tasks() []domain.Task {
	return s.col.snapshot()
}

// Get returns the cached task with the given id.
func (s *TaskStore) Get(id string) (domain.Task, bool) {
	return s.col.find(id)
}

// State returns the store's shared loading flag and last error.
func (s *TaskStore) State() (loading bool, errMsg string) {
	return s.col.state()
}
