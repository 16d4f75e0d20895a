package store

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"taskflow-client/domain"
	"taskflow-client/session"
)

// Selection tracks the single currently-active project and drives the
// cascade that keeps dependent data consistent with it: selecting a project
// clears the previous project's tasks and members before refetching, and a
// successful delete of the selected project clears the selection in the same
// state transition that removes the project locally.
type Selection struct {
	mu       sync.Mutex
	selected *domain.Project

	projects *ProjectStore
	tasks    *TaskStore
	logger   *log.Logger
}

// NewSelection wires a selection controller to its stores and registers the
// project-delete cascade.
func NewSelection(projects *ProjectStore, tasks *TaskStore, logger *log.Logger) *Selection {
	if logger == nil {
		logger = log.StandardLogger()
	}
	s := &Selection{projects: projects, tasks: tasks, logger: logger}
	projects.SetDeleteHook(s.projectDeleted)
	return s
}

// Select makes project the active one (or clears the selection when nil).
// Stale task and member data from the previous selection is dropped before
// the new fetches are issued, so the old project's tasks never flash under
// the new project's header. Members are fetched only for admin sessions.
func (s *Selection) Select(ctx context.Context, sess session.Session, project *domain.Project) error {
	s.mu.Lock()
	if project == nil {
		s.selected = nil
	} else {
		p := *project
		s.selected = &p
	}
	s.tasks.Clear()
	s.projects.ClearMembers()
	s.mu.Unlock()

	if project == nil {
		return nil
	}

	if _, err := s.tasks.ListByProject(ctx, project.ID); err != nil {
		return err
	}
	if sess.IsAdmin() {
		if _, err := s.projects.LoadMembers(ctx, project.ID); err != nil {
			// Member list failures don't invalidate the selection.
			s.logger.WithFields(log.Fields{"project": project.ID, "error": err.Error()}).Warn("fetch project members failed")
		}
	}
	return nil
}

// Selected returns a copy of the active project, or nil when none is.
func (s *Selection) Selected() *domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return nil
	}
	p := *s.selected
	return &p
}

// projectDeleted runs inside the project store's delete transition.
func (s *Selection) projectDeleted(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil || s.selected.ID != id {
		return
	}
	s.selected = nil
	s.tasks.Clear()
	s.projects.ClearMembers()
	s.logger.WithField("project", id).Debug("selection cleared, project deleted")
}
