package view

import (
	"testing"
	"time"

	"github.com/quantumglobal/requisition/internal/models"
	"github.com/quantumglobal/requisition/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditable(t *testing.T) {
	tests := []struct {
		name     string
		status   models.Status
		role     models.Role
		expected bool
	}{
		{name: "requestor edits draft", status: models.StatusDraft, role: models.RoleRequestor, expected: true},
		{name: "team leader cannot edit draft", status: models.StatusDraft, role: models.RoleTeamLeader, expected: false},
		{name: "director cannot edit draft", status: models.StatusDraft, role: models.RoleDirector, expected: false},
		{name: "submitted record is read-only", status: models.StatusPendingTeamLeader, role: models.RoleRequestor, expected: false},
		{name: "approved record is read-only", status: models.StatusApproved, role: models.RoleRequestor, expected: false},
		{name: "rejected record is read-only", status: models.StatusRejected, role: models.RoleRequestor, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &models.Requisition{Status: tt.status}
			assert.Equal(t, tt.expected, Editable(req, tt.role))
		})
	}
}

func TestActions(t *testing.T) {
	req := &models.Requisition{Status: models.StatusPendingTeamLeader}

	assert.Equal(t, []workflow.Action{workflow.ActionApprove, workflow.ActionReject},
		Actions(req, models.RoleTeamLeader))
	assert.Empty(t, Actions(req, models.RoleRequestor))
	assert.Empty(t, Actions(req, models.RoleDirector))
}

func TestVisibleTo(t *testing.T) {
	allStatuses := []models.Status{
		models.StatusDraft,
		models.StatusPendingTeamLeader,
		models.StatusPendingDirector,
		models.StatusApproved,
		models.StatusRejected,
	}

	tests := []struct {
		role    models.Role
		visible map[models.Status]bool
	}{
		{
			role: models.RoleRequestor,
			visible: map[models.Status]bool{
				models.StatusDraft:             true,
				models.StatusPendingTeamLeader: true,
				models.StatusPendingDirector:   true,
				models.StatusApproved:          true,
				models.StatusRejected:          true,
			},
		},
		{
			role: models.RoleTeamLeader,
			visible: map[models.Status]bool{
				models.StatusPendingTeamLeader: true,
				models.StatusPendingDirector:   true,
				models.StatusApproved:          true,
				models.StatusRejected:          true,
			},
		},
		{
			role: models.RoleDirector,
			visible: map[models.Status]bool{
				models.StatusPendingDirector: true,
				models.StatusApproved:        true,
				models.StatusRejected:        true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			for _, status := range allStatuses {
				assert.Equal(t, tt.visible[status], VisibleTo(status, tt.role),
					"status %s for role %s", status, tt.role)
			}
		})
	}
}

func TestDashboard_FilterAndSort(t *testing.T) {
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	reqs := []*models.Requisition{
		{ID: "REQ-1", Status: models.StatusDraft, CreatedAt: base},
		{ID: "REQ-2", Status: models.StatusPendingTeamLeader, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "REQ-3", Status: models.StatusPendingDirector, CreatedAt: base.Add(1 * time.Hour)},
		{ID: "REQ-4", Status: models.StatusApproved, CreatedAt: base.Add(3 * time.Hour)},
	}

	t.Run("requestor sees everything newest first", func(t *testing.T) {
		rows := Dashboard(reqs, models.RoleRequestor)
		require.Len(t, rows, 4)
		assert.Equal(t, "REQ-4", rows[0].ID)
		assert.Equal(t, "REQ-2", rows[1].ID)
		assert.Equal(t, "REQ-3", rows[2].ID)
		assert.Equal(t, "REQ-1", rows[3].ID)
	})

	t.Run("team leader does not see drafts", func(t *testing.T) {
		rows := Dashboard(reqs, models.RoleTeamLeader)
		require.Len(t, rows, 3)
		for _, row := range rows {
			assert.NotEqual(t, "REQ-1", row.ID)
		}
	})

	t.Run("director sees only own queue and outcomes", func(t *testing.T) {
		rows := Dashboard(reqs, models.RoleDirector)
		require.Len(t, rows, 2)
		assert.Equal(t, "REQ-4", rows[0].ID)
		assert.Equal(t, "REQ-3", rows[1].ID)
	})

	t.Run("equal timestamps keep input order", func(t *testing.T) {
		same := []*models.Requisition{
			{ID: "REQ-A", Status: models.StatusDraft, CreatedAt: base},
			{ID: "REQ-B", Status: models.StatusDraft, CreatedAt: base},
			{ID: "REQ-C", Status: models.StatusDraft, CreatedAt: base},
		}
		rows := Dashboard(same, models.RoleRequestor)
		require.Len(t, rows, 3)
		assert.Equal(t, "REQ-A", rows[0].ID)
		assert.Equal(t, "REQ-B", rows[1].ID)
		assert.Equal(t, "REQ-C", rows[2].ID)
	})
}

func TestDashboard_RowFields(t *testing.T) {
	tests := []struct {
		name    string
		items   []models.LineItem
		summary string
		total   float64
	}{
		{
			name:    "no items",
			items:   nil,
			summary: "No items",
		},
		{
			name:    "single item",
			items:   []models.LineItem{{ID: "1", Description: "Cement bags", Quantity: 5, UnitPrice: 20}},
			summary: "Cement bags",
			total:   100,
		},
		{
			name: "multiple items",
			items: []models.LineItem{
				{ID: "1", Description: "Cement bags", Quantity: 5, UnitPrice: 20},
				{ID: "2", Description: "Gravel", Quantity: 2, UnitPrice: 30},
				{ID: "3", Description: "Sand", Quantity: 1, UnitPrice: 15},
			},
			summary: "Cement bags + 2 more",
			total:   175,
		},
		{
			name: "blank first description",
			items: []models.LineItem{
				{ID: "1"},
				{ID: "2", Description: "Gravel"},
			},
			summary: "No items + 1 more",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &models.Requisition{ID: "REQ-1", Status: models.StatusDraft, LineItems: tt.items}
			rows := Dashboard([]*models.Requisition{req}, models.RoleRequestor)
			require.Len(t, rows, 1)
			assert.Equal(t, tt.summary, rows[0].Summary)
			assert.InDelta(t, tt.total, rows[0].Total, 1e-9)
		})
	}
}
