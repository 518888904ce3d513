package models

import (
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the date-only format used for form dates and approval stamps.
const DateLayout = "2006-01-02"

// LineItem is a single row of the requisition item table. It is owned by
// its parent requisition and its id is unique within it.
type LineItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

// Amount returns the derived row amount.
func (li LineItem) Amount() float64 {
	return li.Quantity * li.UnitPrice
}

// ApprovalInfo records who signed a requisition stage and when. Name and
// date are stamped together by the workflow engine, never edited directly.
type ApprovalInfo struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

// IsStamped returns true once the slot has been signed.
func (a ApprovalInfo) IsStamped() bool {
	return a.Name != "" || a.Date != ""
}

// Requisition is the aggregate document representing one purchase request.
// JSON tags follow the persisted document shape.
type Requisition struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`

	// Header / tracking
	DeptTrackingNo string `json:"deptTrackingNo"`
	Date           string `json:"date"`
	Branch         string `json:"branch"`
	Dept           string `json:"dept"`
	RequestorName  string `json:"requestorName"`

	// Vendor
	VendorCode    string `json:"vendorCode"`
	VendorDetails string `json:"vendorDetails"`

	LineItems []LineItem `json:"lineItems"`

	ApprovalRequestor  ApprovalInfo `json:"approvalRequestor"`
	ApprovalTeamLeader ApprovalInfo `json:"approvalTeamLeader"`
	ApprovalDirector   ApprovalInfo `json:"approvalDirector"`

	// Footer
	EnteredBy   string `json:"enteredBy"`
	EnteredDate string `json:"enteredDate"`
	SpoNo       string `json:"spoNo"`
}

// templateRows is the number of zero-valued seed rows on a new document.
const templateRows = 4

// NewRequisition creates a Draft document with a freshly minted id and
// the initial template rows.
func NewRequisition(now time.Time) *Requisition {
	items := make([]LineItem, 0, templateRows)
	for i := 1; i <= templateRows; i++ {
		items = append(items, LineItem{ID: strconv.Itoa(i)})
	}

	return &Requisition{
		ID:        fmt.Sprintf("REQ-%d", now.UnixMilli()),
		Status:    StatusDraft,
		CreatedAt: now,
		Date:      now.Format(DateLayout),
		LineItems: items,
	}
}

// MintItemID returns a fresh line-item id, unique within the parent.
func MintItemID(now time.Time) string {
	return strconv.FormatInt(now.UnixNano(), 10)
}

// AddItem appends a new empty row and returns it.
func (r *Requisition) AddItem(now time.Time) LineItem {
	item := LineItem{ID: MintItemID(now)}
	r.LineItems = append(r.LineItems, item)
	return item
}

// RemoveItem deletes the row with the given id. Removing the last
// remaining row is a no-op; the item table is never empty.
func (r *Requisition) RemoveItem(id string) bool {
	if len(r.LineItems) <= 1 {
		return false
	}
	for i, item := range r.LineItems {
		if item.ID == id {
			r.LineItems = append(r.LineItems[:i], r.LineItems[i+1:]...)
			return true
		}
	}
	return false
}

// TotalAmount returns the sum of all row amounts.
func (r *Requisition) TotalAmount() float64 {
	total := 0.0
	for _, item := range r.LineItems {
		total += item.Amount()
	}
	return total
}

// ApprovalFor returns the approval slot owned by the given role.
// The mapping is enumerated rather than looked up dynamically.
func (r *Requisition) ApprovalFor(role Role) *ApprovalInfo {
	switch role {
	case RoleRequestor:
		return &r.ApprovalRequestor
	case RoleTeamLeader:
		return &r.ApprovalTeamLeader
	case RoleDirector:
		return &r.ApprovalDirector
	default:
		return nil
	}
}

// ValidateForSubmit checks the submit preconditions: a vendor code and a
// non-empty item table.
func (r *Requisition) ValidateForSubmit() error {
	if r.VendorCode == "" {
		return fmt.Errorf("vendor code is required")
	}
	if len(r.LineItems) == 0 {
		return fmt.Errorf("at least one line item is required")
	}
	return nil
}

// ValidateItems rejects negative quantities and unit prices.
func (r *Requisition) ValidateItems() error {
	for _, item := range r.LineItems {
		if item.Quantity < 0 {
			return fmt.Errorf("line item %s: quantity must be non-negative", item.ID)
		}
		if item.UnitPrice < 0 {
			return fmt.Errorf("line item %s: unit price must be non-negative", item.ID)
		}
	}
	return nil
}
