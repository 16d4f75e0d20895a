package store

import (
	"context"
	"errors"
	"testing"

	"taskflow-client/domain"
)

func newInviteFixture(t *testing.T) (*InviteFlow, *ProjectStore, *mockProjectAPI) {
	t.Helper()
	api := newMockProjectAPI()
	projects := NewProjectStore(api, testLogger())
	return NewInviteFlow(projects, testLogger()), projects, api
}

func TestInviteSuccessRefreshesMembersAndResetsOnRead(t *testing.T) {
	flow, projects, api := newInviteFixture(t)

	if err := flow.Submit(context.Background(), "p1", "new@example.com", domain.RoleMember); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if api.inviteCalls != 1 {
		t.Fatalf("expected 1 invite call, got %d", api.inviteCalls)
	}

	members := projects.Members()
	if len(members) != 1 || members[0].Email != "new@example.com" {
		t.Fatalf("invited member not visible after submit: %#v", members)
	}

	status, msg := flow.Status()
	if status != InviteSuccess || msg != "" {
		t.Fatalf("expected success with no message, got %q %q", status, msg)
	}
	if status, _ := flow.Status(); status != InviteIdle {
		t.Fatalf("success should be consumed on first read, second read got %q", status)
	}
}

func TestInviteEmptyEmailFailsWithoutNetworkCall(t *testing.T) {
	flow, _, api := newInviteFixture(t)

	err := flow.Submit(context.Background(), "p1", "   ", domain.RoleMember)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != "email" {
		t.Fatalf("expected email validation error, got %v", err)
	}
	if api.inviteCalls != 0 {
		t.Fatalf("validation failure must not reach the network, got %d calls", api.inviteCalls)
	}
	if status, _ := flow.Status(); status != InviteIdle {
		t.Fatalf("workflow should stay idle, got %q", status)
	}
}

func TestInviteMalformedEmailRejected(t *testing.T) {
	flow, _, api := newInviteFixture(t)

	err := flow.Submit(context.Background(), "p1", "not-an-email", domain.RoleMember)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if api.inviteCalls != 0 {
		t.Fatal("malformed email must not reach the network")
	}
}

func TestInviteRemoteFailureSetsFailedStatus(t *testing.T) {
	flow, _, api := newInviteFixture(t)
	api.inviteErr = errors.New("User not found")

	if err := flow.Submit(context.Background(), "p1", "ghost@example.com", domain.RoleMember); err == nil {
		t.Fatal("expected submit to fail")
	}

	status, msg := flow.Status()
	if status != InviteFailed || msg != "User not found" {
		t.Fatalf("expected failed with remote message, got %q %q", status, msg)
	}
	if status, msg := flow.Status(); status != InviteIdle || msg != "" {
		t.Fatalf("failure should be consumed on first read, got %q %q", status, msg)
	}
}

func TestInviteMemberRefreshFailureDoesNotFailInvite(t *testing.T) {
	flow, _, api := newInviteFixture(t)
	api.membersErr = errors.New("transient")

	if err := flow.Submit(context.Background(), "p1", "new@example.com", domain.RoleMember); err != nil {
		t.Fatalf("submit should succeed despite member refresh failure: %v", err)
	}
	if status, _ := flow.Status(); status != InviteSuccess {
		t.Fatalf("expected success, got %q", status)
	}
}

func TestInviteWhilePendingRejectedWithoutNetworkCall(t *testing.T) {
	flow, _, api := newInviteFixture(t)

	gate := make(chan struct{})
	started := make(chan struct{})
	api.mu.Lock()
	api.inviteGate, api.inviteStarted = gate, started
	api.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := flow.Submit(context.Background(), "p1", "first@example.com", domain.RoleMember); err != nil {
			t.Errorf("first submit: %v", err)
		}
	}()
	<-started

	err := flow.Submit(context.Background(), "p1", "second@example.com", domain.RoleMember)
	if !errors.Is(err, ErrInviteInProgress) {
		t.Fatalf("expected ErrInviteInProgress, got %v", err)
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		t.Fatal("busy rejection must not look like input validation")
	}

	close(gate)
	<-done
	if api.inviteCalls != 1 {
		t.Fatalf("only the first submit may reach the network, got %d calls", api.inviteCalls)
	}
	if status, _ := flow.Status(); status != InviteSuccess {
		t.Fatalf("first invite should still succeed, got %q", status)
	}
}

func TestInviteInvalidRoleRejected(t *testing.T) {
	flow, _, api := newInviteFixture(t)

	err := flow.Submit(context.Background(), "p1", "new@example.com", domain.Role("owner"))
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != "role" {
		t.Fatalf("expected role validation error, got %v", err)
	}
	if api.inviteCalls != 0 {
		t.Fatal("invalid role must not reach the network")
	}
}
