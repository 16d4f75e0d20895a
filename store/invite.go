package store

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"taskflow-client/domain"
)

// ErrInviteInProgress is returned by Submit while another invite is still
// pending. It is distinct from input validation: the submitted values may be
// fine, the workflow is just busy.
var ErrInviteInProgress = errors.New("an invite is already in progress")

// InviteStatus is the ephemeral state of the invite workflow. It is never
// persisted and terminal values are consumed on first read.
type InviteStatus string

const (
	InviteIdle    InviteStatus = "idle"
	InvitePending InviteStatus = "pending"
	InviteSuccess InviteStatus = "success"
	InviteFailed  InviteStatus = "failed"
)

// InviteFlow is the state machine for inviting a user to a project:
// idle → pending on submit, then success or failed. On success the project's
// member list is refetched before the new state becomes observable, so the
// invited member appears without a manual refresh.
type InviteFlow struct {
	mu     sync.Mutex
	status InviteStatus
	errMsg string

	projects *ProjectStore
	logger   *log.Logger
}

// NewInviteFlow creates an invite workflow layered on the project store.
func NewInviteFlow(projects *ProjectStore, logger *log.Logger) *InviteFlow {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &InviteFlow{status: InviteIdle, projects: projects, logger: logger}
}

// Submit runs one invite. An empty or implausible email fails fast with a
// validation error and no network call; the workflow stays idle in that
// case. A submit while another invite is pending is rejected with
// ErrInviteInProgress, again without a network call.
func (f *InviteFlow) Submit(ctx context.Context, projectID, email string, role domain.Role) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &domain.ValidationError{Field: "email", Message: "Email is required"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return &domain.ValidationError{Field: "email", Message: "Email address is not valid"}
	}
	if !role.Valid() {
		return &domain.ValidationError{Field: "role", Message: "Role must be member or admin"}
	}

	f.mu.Lock()
	if f.status == InvitePending {
		f.mu.Unlock()
		return ErrInviteInProgress
	}
	f.status = InvitePending
	f.errMsg = ""
	f.mu.Unlock()

	if err := f.projects.api.Invite(ctx, projectID, email, role); err != nil {
		f.mu.Lock()
		f.status = InviteFailed
		f.errMsg = err.Error()
		f.mu.Unlock()
		return err
	}

	// Refetch membership before success is observable. A refetch failure
	// does not fail the invite itself.
	if _, err := f.projects.LoadMembers(ctx, projectID); err != nil {
		f.logger.WithFields(log.Fields{"project": projectID, "error": err.Error()}).Warn("member refresh after invite failed")
	}

	f.mu.Lock()
	f.status = InviteSuccess
	f.mu.Unlock()
	return nil
}

// Status returns the current state and, for failures, the error message.
// Success and failed are terminal but transient: the first read resets the
// workflow to idle, so a stale outcome never reappears later.
func (f *InviteFlow) Status() (InviteStatus, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status, msg := f.status, f.errMsg
	if status == InviteSuccess || status == InviteFailed {
		f.status = InviteIdle
		f.errMsg = ""
	}
	return status, msg
}
