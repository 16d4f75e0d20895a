package remote

import (
	"context"
	"net/http"

	"taskflow-client/domain"
)

// ListProjects fetches every project visible to the session.
func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	if err := c.do(ctx, http.MethodGet, "/projects", nil, &projects, "Failed to fetch projects"); err != nil {
		return nil, err
	}
	return projects, nil
}

// CreateProject submits a new project and returns the canonical entity with
// the server-assigned id.
func (c *Client) CreateProject(ctx context.Context, fields domain.ProjectFields) (domain.Project, error) {
	var project domain.Project
	if err := c.do(ctx, http.MethodPost, "/projects", fields, &project, "Failed to create project"); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// UpdateProject replaces the mutable fields of a project.
func (c *Client) UpdateProject(ctx context.Context, id string, fields domain.ProjectFields) (domain.Project, error) {
	var project domain.Project
	if err := c.do(ctx, http.MethodPut, "/projects/"+id, fields, &project, "Failed to update project"); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// DeleteProject removes a project on the authority.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+id, nil, nil, "Failed to delete project")
}

// ListMembers fetches the membership of one project.
func (c *Client) ListMembers(ctx context.Context, projectID string) ([]domain.ProjectMember, error) {
	var members []domain.ProjectMember
	if err := c.do(ctx, http.MethodGet, "/projects/"+projectID+"/members", nil, &members, "Failed to fetch project members"); err != nil {
		return nil, err
	}
	return members, nil
}

type inviteRequest struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// Invite asks the authority to add a user to a project with the given role.
func (c *Client) Invite(ctx context.Context, projectID, email string, role domain.Role) error {
	req := inviteRequest{Email: email, Role: role}
	return c.do(ctx, http.MethodPost, "/projects/"+projectID+"/invite", req, nil, "Failed to invite user")
}
