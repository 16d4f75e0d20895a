package store

import (
	"context"

	log "github.com/sirupsen/logrus"

	"taskflow-client/domain"
)

// ProjectAPI is the slice of the authority client the project store needs.
type ProjectAPI interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
	CreateProject(ctx context.Context, fields domain.ProjectFields) (domain.Project, error)
	UpdateProject(ctx context.Context, id string, fields domain.ProjectFields) (domain.Project, error)
	DeleteProject(ctx context.Context, id string) error
	ListMembers(ctx context.Context, projectID string) ([]domain.ProjectMember, error)
	Invite(ctx context.Context, projectID, email string, role domain.Role) error
}

// ProjectStore caches the projects visible to the session, plus the member
// list of the currently selected project.
type ProjectStore struct {
	col    *collection[domain.Project]
	api    ProjectAPI
	logger *log.Logger

	members *collection[domain.ProjectMember]

	// onDelete runs inside the critical section that removes a project,
	// so selection cleanup is part of the same state transition.
	onDelete func(id string)
}

// NewProjectStore creates a project store backed by api.
func NewProjectStore(api ProjectAPI, logger *log.Logger) *ProjectStore {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &ProjectStore{
		col:     newCollection(func(p domain.Project) string { return p.ID }),
		members: newCollection(func(m domain.ProjectMember) string { return m.ID }),
		api:     api,
		logger:  logger,
	}
}

// SetDeleteHook registers fn to run whenever a project delete is applied
// locally. It must be called before the store is shared across goroutines.
func (s *ProjectStore) SetDeleteHook(fn func(id string)) {
	s.onDelete = fn
}

// List refetches all projects and replaces the local collection wholesale.
func (s *ProjectStore) List(ctx context.Context) ([]domain.Project, error) {
	seq := s.col.nextSeq("")
	s.col.begin()
	projects, err := s.api.ListProjects(ctx)
	s.col.settle(err)
	if err != nil {
		return nil, err
	}
	if !s.col.applyList("", seq, projects) {
		s.logger.WithField("count", len(projects)).Debug("stale project list discarded")
	}
	return s.Projects(), nil
}

// Create submits a new project and appends the canonical entity on success.
func (s *ProjectStore) Create(ctx context.Context, fields domain.ProjectFields) (domain.Project, error) {
	if err := domain.ValidateProject(fields); err != nil {
		return domain.Project{}, err
	}
	s.col.begin()
	project, err := s.api.CreateProject(ctx, fields)
	s.col.settle(err)
	if err != nil {
		return domain.Project{}, err
	}
	s.col.applyCreate(project)
	return project, nil
}

// Update replaces a project's mutable fields.
func (s *ProjectStore) Update(ctx context.Context, id string, fields domain.ProjectFields) (domain.Project, error) {
	if err := domain.ValidateProject(fields); err != nil {
		return domain.Project{}, err
	}
	s.col.begin()
	project, err := s.api.UpdateProject(ctx, id, fields)
	s.col.settle(err)
	if err != nil {
		return domain.Project{}, err
	}
	s.col.applyUpdate(project)
	return project, nil
}

// Delete removes a project. The registered delete hook runs as part of the
// same local state transition, so a selection pointing at the deleted
// project never dangles.
func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	s.col.begin()
	err := s.api.DeleteProject(ctx, id)
	s.col.settle(err)
	if err != nil {
		return err
	}
	s.col.mu.Lock()
	kept := s.col.items[:0]
	for _, p := range s.col.items {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.col.items = kept
	if s.onDelete != nil {
		s.onDelete(id)
	}
	s.col.mu.Unlock()
	return nil
}

// LoadMembers refetches the member list for one project, replacing any
// previously cached membership.
func (s *ProjectStore) LoadMembers(ctx context.Context, projectID string) ([]domain.ProjectMember, error) {
	seq := s.members.nextSeq(projectID)
	s.members.begin()
	members, err := s.api.ListMembers(ctx, projectID)
	s.members.settle(err)
	if err != nil {
		return nil, err
	}
	s.members.applyList(projectID, seq, members)
	return s.Members(), nil
}

// ClearMembers drops the cached member list, invalidating in-flight fetches.
func (s *ProjectStore) ClearMembers() {
	s.members.clear()
}

// Projects returns a copy of the cached projects.
func (s *ProjectStore) Projects() []domain.Project {
	return s.col.snapshot()
}

// Members returns a copy of the cached member list.
func (s *ProjectStore) Members() []domain.ProjectMember {
	return s.members.snapshot()
}

// Get returns the cached project with the given id.
func (s *ProjectStore) Get(id string) (domain.Project, bool) {
	return s.col.find(id)
}

// State returns the store's shared loading flag and last error.
func (s *ProjectStore) State() (loading bool, errMsg string) {
	return s.col.state()
}
