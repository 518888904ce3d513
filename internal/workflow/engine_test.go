package workflow

import (
	"testing"
	"time"

	"github.com/quantumglobal/requisition/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testClock = func() time.Time {
	return time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
}

func newTestEngine() *Engine {
	return NewEngineWithClock(testClock, zap.NewNop())
}

func submittable(now time.Time) *models.Requisition {
	req := models.NewRequisition(now)
	req.RequestorName = "Alice"
	req.VendorCode = "V-100"
	req.LineItems = []models.LineItem{
		{ID: "1", Description: "Safety helmets", Quantity: 10, UnitPrice: 45},
	}
	return req
}

func TestEngine_SubmitStampsRequestor(t *testing.T) {
	engine := newTestEngine()
	req := submittable(testClock())

	err := engine.Apply(req, ActionSubmit, Actor{Name: "Alice", Role: models.RoleRequestor})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPendingTeamLeader, req.Status)
	assert.Equal(t, "Alice", req.ApprovalRequestor.Name)
	assert.Equal(t, "2025-06-02", req.ApprovalRequestor.Date)
	assert.False(t, req.ApprovalTeamLeader.IsStamped())
	assert.False(t, req.ApprovalDirector.IsStamped())
}

func TestEngine_SubmitFallsBackToRequestorName(t *testing.T) {
	engine := newTestEngine()
	req := submittable(testClock())

	err := engine.Apply(req, ActionSubmit, Actor{Role: models.RoleRequestor})
	require.NoError(t, err)

	assert.Equal(t, "Alice", req.ApprovalRequestor.Name)
}

func TestEngine_SubmitGuard(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Requisition)
	}{
		{
			name:   "missing vendor code",
			mutate: func(r *models.Requisition) { r.VendorCode = "" },
		},
		{
			name:   "empty item table",
			mutate: func(r *models.Requisition) { r.LineItems = nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine()
			req := submittable(testClock())
			tt.mutate(req)

			err := engine.Apply(req, ActionSubmit, Actor{Name: "Alice", Role: models.RoleRequestor})
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, models.StatusDraft, req.Status, "failed guard leaves the record unchanged")
			assert.False(t, req.ApprovalRequestor.IsStamped())
		})
	}
}

func TestEngine_TeamLeaderApprove(t *testing.T) {
	engine := newTestEngine()
	req := submittable(testClock())
	require.NoError(t, engine.Apply(req, ActionSubmit, Actor{Name: "Alice", Role: models.RoleRequestor}))

	err := engine.Apply(req, ActionApprove, Actor{Name: "Bob", Role: models.RoleTeamLeader})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPendingDirector, req.Status)
	assert.Equal(t, "Bob", req.ApprovalTeamLeader.Name)
	assert.Equal(t, "2025-06-02", req.ApprovalTeamLeader.Date)
	assert.False(t, req.ApprovalDirector.IsStamped())
}

func TestEngine_DirectorApprove(t *testing.T) {
	engine := newTestEngine()
	req := submittable(testClock())
	require.NoError(t, engine.Apply(req, ActionSubmit, Actor{Name: "Alice", Role: models.RoleRequestor}))
	require.NoError(t, engine.Apply(req, ActionApprove, Actor{Name: "Bob", Role: models.RoleTeamLeader}))

	err := engine.Apply(req, ActionApprove, Actor{Name: "Carol", Role: models.RoleDirector})
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, req.Status)
	assert.Equal(t, "Carol", req.ApprovalDirector.Name)
}

func TestEngine_RejectLeavesSlotUnstamped(t *testing.T) {
	tests := []struct {
		name  string
		actor Actor
	}{
		{
			name:  "team leader reject",
			actor: Actor{Name: "Bob", Role: models.RoleTeamLeader},
		},
		{
			name:  "director reject",
			actor: Actor{Name: "Carol", Role: models.RoleDirector},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine()
			req := submittable(testClock())
			require.NoError(t, engine.Apply(req, ActionSubmit, Actor{Name: "Alice", Role: models.RoleRequestor}))
			if tt.actor.Role == models.RoleDirector {
				require.NoError(t, engine.Apply(req, ActionApprove, Actor{Name: "Bob", Role: models.RoleTeamLeader}))
			}

			err := engine.Apply(req, ActionReject, tt.actor)
			require.NoError(t, err)

			assert.Equal(t, models.StatusRejected, req.Status)
			slot := req.ApprovalFor(tt.actor.Role)
			require.NotNil(t, slot)
			assert.False(t, slot.IsStamped(), "rejection must not sign the approval slot")
		})
	}
}

func TestEngine_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name   string
		status models.Status
		action Action
		role   models.Role
	}{
		{name: "director cannot approve team leader queue", status: models.StatusPendingTeamLeader, action: ActionApprove, role: models.RoleDirector},
		{name: "team leader cannot approve director queue", status: models.StatusPendingDirector, action: ActionApprove, role: models.RoleTeamLeader},
		{name: "requestor cannot approve", status: models.StatusPendingTeamLeader, action: ActionApprove, role: models.RoleRequestor},
		{name: "cannot submit twice", status: models.StatusPendingTeamLeader, action: ActionSubmit, role: models.RoleRequestor},
		{name: "cannot save after submit", status: models.StatusPendingTeamLeader, action: ActionSave, role: models.RoleRequestor},
		{name: "approved is terminal", status: models.StatusApproved, action: ActionApprove, role: models.RoleDirector},
		{name: "rejected is terminal", status: models.StatusRejected, action: ActionSubmit, role: models.RoleRequestor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine()
			req := submittable(testClock())
			req.Status = tt.status

			err := engine.Apply(req, tt.action, Actor{Name: "Someone", Role: tt.role})
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, tt.status, req.Status)
		})
	}
}

func TestEngine_SaveKeepsDraft(t *testing.T) {
	engine := newTestEngine()
	req := models.NewRequisition(testClock())

	err := engine.Apply(req, ActionSave, Actor{Name: "Alice", Role: models.RoleRequestor})
	require.NoError(t, err)

	assert.Equal(t, models.StatusDraft, req.Status)
	assert.False(t, req.ApprovalRequestor.IsStamped())
}

func TestAvailableActions(t *testing.T) {
	tests := []struct {
		name     string
		status   models.Status
		role     models.Role
		expected []Action
	}{
		{name: "requestor on draft", status: models.StatusDraft, role: models.RoleRequestor, expected: []Action{ActionSave, ActionSubmit}},
		{name: "team leader on draft", status: models.StatusDraft, role: models.RoleTeamLeader, expected: nil},
		{name: "team leader on pending team leader", status: models.StatusPendingTeamLeader, role: models.RoleTeamLeader, expected: []Action{ActionApprove, ActionReject}},
		{name: "director on pending team leader", status: models.StatusPendingTeamLeader, role: models.RoleDirector, expected: nil},
		{name: "director on pending director", status: models.StatusPendingDirector, role: models.RoleDirector, expected: []Action{ActionApprove, ActionReject}},
		{name: "anyone on approved", status: models.StatusApproved, role: models.RoleDirector, expected: nil},
		{name: "anyone on rejected", status: models.StatusRejected, role: models.RoleTeamLeader, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AvailableActions(tt.status, tt.role))
		})
	}
}

func TestCanApply(t *testing.T) {
	assert.True(t, CanApply(models.StatusDraft, ActionSubmit, models.RoleRequestor))
	assert.False(t, CanApply(models.StatusDraft, ActionSubmit, models.RoleTeamLeader))
	assert.False(t, CanApply(models.StatusApproved, ActionApprove, models.RoleDirector))
}
