package board

import (
	"context"
	"errors"

	"taskflow-client/domain"
	"taskflow-client/session"
)

// ErrNotPermitted is returned when a session drags a task it may not mutate.
var ErrNotPermitted = errors.New("not permitted to move this task")

// Gesture describes a completed drag: which task left which column and where
// it was dropped.
type Gesture struct {
	TaskID      string
	Source      domain.Status
	Dest        domain.Status
	SourceIndex int
	DestIndex   int
}

// CommandKind discriminates the outcome of a drag decision.
type CommandKind int

const (
	// CommandNone means the drop changes nothing and no network call is made.
	CommandNone CommandKind = iota
	// CommandUpdateStatus means one task update with the new status.
	CommandUpdateStatus
)

// Command is the decided effect of a gesture.
type Command struct {
	Kind   CommandKind
	TaskID string
	Fields domain.TaskFields
}

// Decide maps a gesture and the current task collection to a command. It is
// pure: the only no-op is dropping a task back exactly where it started
// (same column, same index); every other drop, a same-column reorder
// included, decides a single status update that preserves every other field
// from the task's current local state. An unknown task id also decides
// CommandNone; the collection may have changed under an in-flight drag.
func Decide(g Gesture, tasks []domain.Task) Command {
	if g.Dest == g.Source && g.DestIndex == g.SourceIndex {
		return Command{Kind: CommandNone}
	}
	for _, t := range tasks {
		if t.ID != g.TaskID {
			continue
		}
		fields := t.Fields()
		fields.Status = g.Dest
		return Command{Kind: CommandUpdateStatus, TaskID: t.ID, Fields: fields}
	}
	return Command{Kind: CommandNone}
}

// TaskUpdater issues the status mutation a drag decides on. *store.TaskStore
// satisfies it.
type TaskUpdater interface {
	Update(ctx context.Context, id string, fields domain.TaskFields) (domain.Task, error)
	Tasks() []domain.Task
	Get(id string) (domain.Task, bool)
}

// Reconciler turns gestures into task store mutations.
type Reconciler struct {
	tasks TaskUpdater
}

// NewReconciler creates a Reconciler over the given task store.
func NewReconciler(tasks TaskUpdater) *Reconciler {
	return &Reconciler{tasks: tasks}
}

// HandleDrop applies a drag gesture. No-op gestures issue no network call.
// The moved card is not placed in its destination column optimistically; the
// board re-derives from the task store once the update resolves, so a failed
// update leaves the card where the authority last said it was.
func (r *Reconciler) HandleDrop(ctx context.Context, sess session.Session, g Gesture) error {
	cmd := Decide(g, r.tasks.Tasks())
	if cmd.Kind == CommandNone {
		return nil
	}
	task, ok := r.tasks.Get(cmd.TaskID)
	if !ok {
		return nil
	}
	if !sess.CanMutateTask(task) {
		return ErrNotPermitted
	}
	_, err := r.tasks.Update(ctx, cmd.TaskID, cmd.Fields)
	return err
}
