package workflow

import (
	"fmt"
	"time"

	"github.com/quantumglobal/requisition/internal/models"
	"go.uber.org/zap"
)

// Action is a workflow operation requested by an actor.
type Action string

const (
	ActionSave    Action = "save"
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// String returns the string representation of the action.
func (a Action) String() string {
	return string(a)
}

// Actor is the person requesting a transition. The role is declared by
// the caller on every operation.
type Actor struct {
	Name string
	Role models.Role
}

// transition is one row of the workflow table. A transition is selected
// by (from, action, role); stamp names the approval slot signed as a
// side effect, and guard is the precondition evaluated before any
// mutation.
type transition struct {
	from   models.Status
	action Action
	role   models.Role
	to     models.Status
	stamp  models.Role
	guard  func(*models.Requisition) error
}

// transitions is the complete table. There are deliberately no entries
// out of Approved or Rejected, and no recall or resubmit path.
var transitions = []transition{
	{
		from:   models.StatusDraft,
		action: ActionSave,
		role:   models.RoleRequestor,
		to:     models.StatusDraft,
	},
	{
		from:   models.StatusDraft,
		action: ActionSubmit,
		role:   models.RoleRequestor,
		to:     models.StatusPendingTeamLeader,
		stamp:  models.RoleRequestor,
		guard:  (*models.Requisition).ValidateForSubmit,
	},
	{
		from:   models.StatusPendingTeamLeader,
		action: ActionApprove,
		role:   models.RoleTeamLeader,
		to:     models.StatusPendingDirector,
		stamp:  models.RoleTeamLeader,
	},
	{
		from:   models.StatusPendingTeamLeader,
		action: ActionReject,
		role:   models.RoleTeamLeader,
		to:     models.StatusRejected,
	},
	{
		from:   models.StatusPendingDirector,
		action: ActionApprove,
		role:   models.RoleDirector,
		to:     models.StatusApproved,
		stamp:  models.RoleDirector,
	},
	{
		from:   models.StatusPendingDirector,
		action: ActionReject,
		role:   models.RoleDirector,
		to:     models.StatusRejected,
	},
}

// Engine executes workflow transitions on requisitions. It is the only
// component allowed to change a requisition's status once it has left
// Draft, and the only writer of the approval slots.
type Engine struct {
	now    func() time.Time
	logger *zap.Logger
}

// NewEngine creates a workflow engine using the wall clock.
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{now: time.Now, logger: logger}
}

// NewEngineWithClock creates an engine with an injected clock.
func NewEngineWithClock(now func() time.Time, logger *zap.Logger) *Engine {
	return &Engine{now: now, logger: logger}
}

// find returns the table row matching (status, action, role), if any.
func find(status models.Status, action Action, role models.Role) (transition, bool) {
	for _, t := range transitions {
		if t.from == status && t.action == action && t.role == role {
			return t, true
		}
	}
	return transition{}, false
}

// Apply executes the requested action on the requisition. On success the
// status advances and the transition's approval slot, if any, is stamped
// with the actor's name and today's date. On any error the record is
// left unchanged.
func (e *Engine) Apply(req *models.Requisition, action Action, actor Actor) error {
	t, ok := find(req.Status, action, actor.Role)
	if !ok {
		return fmt.Errorf("%w: %s as %s from %s", ErrInvalidTransition, action, actor.Role, req.Status)
	}

	if t.guard != nil {
		if err := t.guard(req); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	if t.stamp != "" {
		name := actor.Name
		if name == "" && t.stamp == models.RoleRequestor {
			name = req.RequestorName
		}
		slot := req.ApprovalFor(t.stamp)
		slot.Name = name
		slot.Date = e.now().Format(models.DateLayout)
	}

	from := req.Status
	req.Status = t.to

	e.logger.Info("Workflow transition applied",
		zap.String("requisition_id", req.ID),
		zap.String("action", action.String()),
		zap.String("role", actor.Role.String()),
		zap.String("from", from.String()),
		zap.String("to", t.to.String()))

	return nil
}

// AvailableActions returns the actions the given role may request from
// the given status, per the transition table. An empty set means the
// record is view-only for that role.
func AvailableActions(status models.Status, role models.Role) []Action {
	var actions []Action
	for _, t := range transitions {
		if t.from == status && t.role == role {
			actions = append(actions, t.action)
		}
	}
	return actions
}

// CanApply reports whether the table permits (status, action, role).
func CanApply(status models.Status, action Action, role models.Role) bool {
	_, ok := find(status, action, role)
	return ok
}
