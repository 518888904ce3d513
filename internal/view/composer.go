// Package view computes what a given role may see and do with a
// requisition: field editability, the available workflow actions, and
// the dashboard listing. It holds no state; every function is a pure
// policy over (record, declared role).
package view

import (
	"fmt"
	"sort"

	"github.com/quantumglobal/requisition/internal/models"
	"github.com/quantumglobal/requisition/internal/workflow"
)

// Editable reports whether form fields may be edited. Only the owning
// requestor may edit, and only while the document is a draft. Approval
// slots are never directly editable regardless.
func Editable(req *models.Requisition, role models.Role) bool {
	return role == models.RoleRequestor && req.Status == models.StatusDraft
}

// Actions returns the workflow actions available to the role on the
// record, derived strictly from the workflow transition table.
func Actions(req *models.Requisition, role models.Role) []workflow.Action {
	return workflow.AvailableActions(req.Status, role)
}

// visibleStatuses lists, per approver role, the statuses that appear on
// that role's dashboard: items awaiting the role plus resolved outcomes.
// Requestors see everything and have no entry here.
var visibleStatuses = map[models.Role]map[models.Status]bool{
	models.RoleTeamLeader: {
		models.StatusPendingTeamLeader: true,
		models.StatusPendingDirector:   true,
		models.StatusApproved:          true,
		models.StatusRejected:          true,
	},
	models.RoleDirector: {
		models.StatusPendingDirector: true,
		models.StatusApproved:        true,
		models.StatusRejected:        true,
	},
}

// VisibleTo reports whether a record with the given status appears on
// the role's dashboard.
func VisibleTo(status models.Status, role models.Role) bool {
	if role == models.RoleRequestor {
		return true
	}
	allowed, ok := visibleStatuses[role]
	if !ok {
		return false
	}
	return allowed[status]
}

// Row is one dashboard entry with the derived listing fields.
type Row struct {
	*models.Requisition
	Summary string  `json:"summary"`
	Total   float64 `json:"total"`
}

// summarize builds the listing description: the first row's description
// plus a count of the remaining rows.
func summarize(req *models.Requisition) string {
	if len(req.LineItems) == 0 {
		return "No items"
	}
	first := req.LineItems[0].Description
	if first == "" {
		first = "No items"
	}
	if len(req.LineItems) > 1 {
		return fmt.Sprintf("%s + %d more", first, len(req.LineItems)-1)
	}
	return first
}

// Dashboard filters the records by the role's visibility rules and sorts
// them most recent first. Ties keep their original order.
func Dashboard(reqs []*models.Requisition, role models.Role) []Row {
	rows := make([]Row, 0, len(reqs))
	for _, req := range reqs {
		if !VisibleTo(req.Status, role) {
			continue
		}
		rows = append(rows, Row{
			Requisition: req,
			Summary:     summarize(req),
			Total:       req.TotalAmount(),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})

	return rows
}
