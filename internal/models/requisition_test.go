package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequisition(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	req := NewRequisition(now)

	assert.Equal(t, fmt.Sprintf("REQ-%d", now.UnixMilli()), req.ID)
	assert.Equal(t, StatusDraft, req.Status)
	assert.Equal(t, now, req.CreatedAt)
	assert.Equal(t, "2025-03-14", req.Date)

	require.Len(t, req.LineItems, 4)
	for i, item := range req.LineItems {
		assert.Equal(t, LineItem{ID: item.ID}, item, "seed rows start zero-valued")
		assert.NotEmpty(t, item.ID)
		if i > 0 {
			assert.NotEqual(t, req.LineItems[i-1].ID, item.ID)
		}
	}

	assert.False(t, req.ApprovalRequestor.IsStamped())
	assert.False(t, req.ApprovalTeamLeader.IsStamped())
	assert.False(t, req.ApprovalDirector.IsStamped())
}

func TestLineItem_Amount(t *testing.T) {
	tests := []struct {
		name     string
		item     LineItem
		expected float64
	}{
		{
			name:     "quantity times unit price",
			item:     LineItem{Quantity: 3, UnitPrice: 12.5},
			expected: 37.5,
		},
		{
			name:     "zero quantity",
			item:     LineItem{Quantity: 0, UnitPrice: 100},
			expected: 0,
		},
		{
			name:     "fractional quantity",
			item:     LineItem{Quantity: 2.5, UnitPrice: 4},
			expected: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.item.Amount(), 1e-9)
		})
	}
}

func TestRequisition_TotalAmount(t *testing.T) {
	req := &Requisition{
		LineItems: []LineItem{
			{ID: "1", Quantity: 2, UnitPrice: 10},
			{ID: "2", Quantity: 1, UnitPrice: 5.5},
			{ID: "3"},
		},
	}

	assert.InDelta(t, 25.5, req.TotalAmount(), 1e-9)
}

func TestRequisition_AddItem(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	req := NewRequisition(now)

	item := req.AddItem(now.Add(time.Second))

	assert.Len(t, req.LineItems, 5)
	assert.Equal(t, item, req.LineItems[4])
	assert.Empty(t, item.Description)
	for _, existing := range req.LineItems[:4] {
		assert.NotEqual(t, existing.ID, item.ID)
	}
}

func TestRequisition_RemoveItem(t *testing.T) {
	tests := []struct {
		name      string
		items     []LineItem
		removeID  string
		removed   bool
		remaining int
	}{
		{
			name:      "removes matching row",
			items:     []LineItem{{ID: "1"}, {ID: "2"}, {ID: "3"}},
			removeID:  "2",
			removed:   true,
			remaining: 2,
		},
		{
			name:      "unknown id is a no-op",
			items:     []LineItem{{ID: "1"}, {ID: "2"}},
			removeID:  "9",
			removed:   false,
			remaining: 2,
		},
		{
			name:      "last row cannot be removed",
			items:     []LineItem{{ID: "1"}},
			removeID:  "1",
			removed:   false,
			remaining: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Requisition{LineItems: tt.items}
			assert.Equal(t, tt.removed, req.RemoveItem(tt.removeID))
			assert.Len(t, req.LineItems, tt.remaining)
			for _, item := range req.LineItems {
				if tt.removed {
					assert.NotEqual(t, tt.removeID, item.ID)
				}
			}
		})
	}
}

func TestRequisition_ApprovalFor(t *testing.T) {
	req := &Requisition{}

	req.ApprovalFor(RoleRequestor).Name = "Alice"
	req.ApprovalFor(RoleTeamLeader).Name = "Bob"
	req.ApprovalFor(RoleDirector).Name = "Carol"

	assert.Equal(t, "Alice", req.ApprovalRequestor.Name)
	assert.Equal(t, "Bob", req.ApprovalTeamLeader.Name)
	assert.Equal(t, "Carol", req.ApprovalDirector.Name)
	assert.Nil(t, req.ApprovalFor(Role("Auditor")))
}

func TestRequisition_ValidateForSubmit(t *testing.T) {
	tests := []struct {
		name    string
		req     Requisition
		wantErr bool
	}{
		{
			name: "valid",
			req: Requisition{
				VendorCode: "V-100",
				LineItems:  []LineItem{{ID: "1"}},
			},
		},
		{
			name: "missing vendor code",
			req: Requisition{
				LineItems: []LineItem{{ID: "1"}},
			},
			wantErr: true,
		},
		{
			name: "empty item table",
			req: Requisition{
				VendorCode: "V-100",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.ValidateForSubmit()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequisition_ValidateItems(t *testing.T) {
	tests := []struct {
		name    string
		items   []LineItem
		wantErr bool
	}{
		{
			name:  "non-negative values pass",
			items: []LineItem{{ID: "1", Quantity: 0, UnitPrice: 0}, {ID: "2", Quantity: 3, UnitPrice: 9.9}},
		},
		{
			name:    "negative quantity rejected",
			items:   []LineItem{{ID: "1", Quantity: -1, UnitPrice: 5}},
			wantErr: true,
		},
		{
			name:    "negative unit price rejected",
			items:   []LineItem{{ID: "1", Quantity: 1, UnitPrice: -5}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&Requisition{LineItems: tt.items}).ValidateItems()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusApproved.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.False(t, StatusDraft.IsTerminal())
	assert.False(t, StatusPendingTeamLeader.IsTerminal())
	assert.False(t, StatusPendingDirector.IsTerminal())
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Role
		wantErr  bool
	}{
		{name: "requestor", input: "Requestor", expected: RoleRequestor},
		{name: "team leader", input: "Team Leader", expected: RoleTeamLeader},
		{name: "director", input: "Director", expected: RoleDirector},
		{name: "unknown role rejected", input: "Accountant", wantErr: true},
		{name: "empty rejected", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := ParseRole(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, role)
		})
	}
}
