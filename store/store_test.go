package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	log "github.com/sirupsen/logrus"

	"taskflow-client/domain"
)

func testLogger() *log.Logger {
	logger := log.New()
	logger.SetLevel(log.PanicLevel)
	return logger
}

// mockTaskAPI is an in-memory authority double for the task store. Its
// collection is the ground truth the store must converge to.
type mockTaskAPI struct {
	mu     sync.Mutex
	tasks  map[string]domain.Task
	nextID int

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	// listGate delays exactly one list response: the next list call takes
	// its snapshot, signals listStarted, then waits for the gate before
	// returning. Used to interleave overlapping lists.
	listGate    chan struct{}
	listStarted chan struct{}
}

func newMockTaskAPI() *mockTaskAPI {
	return &mockTaskAPI{tasks: make(map[string]domain.Task)}
}

func (m *mockTaskAPI) ListProjectTasks(ctx context.Context, projectID string) ([]domain.Task, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	gate, started := m.listGate, m.listStarted
	m.listGate, m.listStarted = nil, nil
	out := make([]domain.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		if t.Project == projectID {
			out = append(out, t)
		}
	}
	m.mu.Unlock()
	if gate != nil {
		if started != nil {
			close(started)
		}
		<-gate
	}
	return out, nil
}

func (m *mockTaskAPI) CreateTask(ctx context.Context, fields domain.TaskFields) (domain.Task, error) {
	if m.createErr != nil {
		return domain.Task{}, m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	task := domain.Task{
		ID:          string(rune('a' + m.nextID - 1)),
		Title:       fields.Title,
		Description: fields.Description,
		Status:      fields.Status,
		DueDate:     fields.DueDate,
		Project:     fields.Project,
		Assignee:    fields.Assignee,
	}
	if task.Status == "" {
		task.Status = domain.StatusTodo
	}
	m.tasks[task.ID] = task
	return task, nil
}

func (m *mockTaskAPI) UpdateTask(ctx context.Context, id string, fields domain.TaskFields) (domain.Task, error) {
	if m.updateErr != nil {
		return domain.Task{}, m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok {
		return domain.Task{}, errors.New("Task not found")
	}
	task.Title = fields.Title
	task.Description = fields.Description
	task.Status = fields.Status
	task.DueDate = fields.DueDate
	task.Assignee = fields.Assignee
	m.tasks[id] = task
	return task, nil
}

func (m *mockTaskAPI) DeleteTask(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, id)
	return nil
}

func (m *mockTaskAPI) authoritative(projectID string) map[string]domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]domain.Task)
	for id, t := range m.tasks {
		if t.Project == projectID {
			out[id] = t
		}
	}
	return out
}

// assertConverged checks the store against what a fresh authority list would
// return: same ids, no duplicates, no orphans.
func assertConverged(t *testing.T, s *TaskStore, api *mockTaskAPI, projectID string) {
	t.Helper()
	want := api.authoritative(projectID)
	got := s.Tasks()
	if len(got) != len(want) {
		t.Fatalf("store has %d tasks, authority has %d", len(got), len(want))
	}
	seen := make(map[string]bool)
	for _, task := range got {
		if seen[task.ID] {
			t.Fatalf("duplicate id %q in store", task.ID)
		}
		seen[task.ID] = true
		if _, ok := want[task.ID]; !ok {
			t.Fatalf("store holds id %q the authority does not", task.ID)
		}
	}
}

func TestTaskStoreConvergesThroughMutationSequence(t *testing.T) {
	api := newMockTaskAPI()
	s := NewTaskStore(api, testLogger())
	ctx := context.Background()

	created := make([]domain.Task, 0, 3)
	for _, title := range []string{"one", "two", "three"} {
		task, err := s.Create(ctx, domain.TaskFields{Title: title, Project: "p1"})
		if err != nil {
			t.Fatalf("create %q: %v", title, err)
		}
		created = append(created, task)
		assertConverged(t, s, api, "p1")
	}

	fields := created[1].Fields()
	fields.Status = domain.StatusDone
	if _, err := s.Update(ctx, created[1].ID, fields); err != nil {
		t.Fatalf("update: %v", err)
	}
	assertConverged(t, s, api, "p1")

	if err := s.Delete(ctx, created[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	assertConverged(t, s, api, "p1")

	if _, err := s.ListByProject(ctx, "p1"); err != nil {
		t.Fatalf("list: %v", err)
	}
	assertConverged(t, s, api, "p1")
}

func TestTaskStoreUpdateUpsertsWhenLocallyMissing(t *testing.T) {
	api := newMockTaskAPI()
	s := NewTaskStore(api, testLogger())
	ctx := context.Background()

	task, err := s.Create(ctx, domain.TaskFields{Title: "orphan", Project: "p1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Simulate the local copy vanishing (selection was cleared) while the
	// update was in flight.
	s.Clear()

	fields := task.Fields()
	fields.Status = domain.StatusInProgress
	updated, err := s.Update(ctx, task.ID, fields)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got, ok := s.Get(updated.ID)
	if !ok {
		t.Fatal("expected defensive upsert to append the updated task")
	}
	if got.Status != domain.StatusInProgress {
		t.Fatalf("unexpected status: %q", got.Status)
	}
}

func TestTaskStoreDiscardsStaleListResponse(t *testing.T) {
	api := newMockTaskAPI()
	s := NewTaskStore(api, testLogger())
	ctx := context.Background()

	if _, err := s.Create(ctx, domain.TaskFields{Title: "old", Project: "p1"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	// The first list snapshots the old state, then stalls until released.
	gate := make(chan struct{})
	started := make(chan struct{})
	api.mu.Lock()
	api.listGate, api.listStarted = gate, started
	api.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.ListByProject(ctx, "p1")
	}()
	<-started

	api.mu.Lock()
	api.tasks["zz"] = domain.Task{ID: "zz", Title: "new", Status: domain.StatusTodo, Project: "p1"}
	api.mu.Unlock()

	// A newer list for the same scope resolves first and sees the added task.
	if _, err := s.ListByProject(ctx, "p1"); err != nil {
		t.Fatalf("second list: %v", err)
	}
	if _, ok := s.Get("zz"); !ok {
		t.Fatal("expected second list to apply")
	}

	// Release the stalled first response; it is stale and must be dropped
	// rather than overwrite the newer snapshot.
	close(gate)
	<-done

	if _, ok := s.Get("zz"); !ok {
		t.Fatalf("stale list overwrote fresh data, have %#v", s.Tasks())
	}
	if len(s.Tasks()) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(s.Tasks()))
	}
}

func TestTaskStoreSharedErrorFlag(t *testing.T) {
	api := newMockTaskAPI()
	s := NewTaskStore(api, testLogger())
	ctx := context.Background()

	api.listErr = errors.New("Failed to fetch tasks")
	if _, err := s.ListByProject(ctx, "p1"); err == nil {
		t.Fatal("expected list error")
	}
	loading, errMsg := s.State()
	if loading {
		t.Fatal("expected loading to settle")
	}
	if errMsg != "Failed to fetch tasks" {
		t.Fatalf("unexpected error: %q", errMsg)
	}

	// The next operation clears the shared error on begin and its outcome
	// determines the final value.
	api.listErr = nil
	if _, err := s.ListByProject(ctx, "p1"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, errMsg := s.State(); errMsg != "" {
		t.Fatalf("expected error to clear, got %q", errMsg)
	}
}

func TestTaskStoreValidatesBeforeNetwork(t *testing.T) {
	api := newMockTaskAPI()
	api.createErr = errors.New("must not be called")
	s := NewTaskStore(api, testLogger())

	_, err := s.Create(context.Background(), domain.TaskFields{Title: "", Project: "p1"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(s.Tasks()) != 0 {
		t.Fatal("expected no local mutation")
	}
}
