package models

// Status represents a requisition's position in the approval lifecycle
type Status string

const (
	StatusDraft             Status = "Draft"
	StatusPendingTeamLeader Status = "Pending Team Leader"
	StatusPendingDirector   Status = "Pending Director"
	StatusApproved          Status = "Approved"
	StatusRejected          Status = "Rejected"
)

var validStatuses = map[Status]bool{
	StatusDraft:             true,
	StatusPendingTeamLeader: true,
	StatusPendingDirector:   true,
	StatusApproved:          true,
	StatusRejected:          true,
}

var terminalStatuses = map[Status]bool{
	StatusApproved: true,
	StatusRejected: true,
}

// IsValid returns true if the status is a known lifecycle status
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// IsTerminal returns true if no further transitions are allowed from the status
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}
