// Package notification tells approvers when a requisition enters their
// queue. Delivery is best-effort: a failed notification is logged and
// never fails the workflow transition that triggered it.
package notification

import (
	"context"

	"github.com/quantumglobal/requisition/internal/models"
)

// Notifier is notified after successful workflow transitions.
type Notifier interface {
	// PendingApproval announces that the requisition now awaits the
	// given role.
	PendingApproval(ctx context.Context, req *models.Requisition, role models.Role)

	// Resolved announces a terminal outcome (Approved or Rejected) to
	// the requestor side.
	Resolved(ctx context.Context, req *models.Requisition)
}

// Nop is the notifier used when no messaging credentials are configured.
type Nop struct{}

func (Nop) PendingApproval(context.Context, *models.Requisition, models.Role) {}

func (Nop) Resolved(context.Context, *models.Requisition) {}
