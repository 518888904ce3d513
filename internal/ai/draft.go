package ai

import (
	"fmt"
	"time"

	"github.com/quantumglobal/requisition/internal/models"
)

// Draft is the partial requisition an autofill call may produce. It is
// restricted to the fields a requestor could have typed; status,
// approvals and identity fields are never provider-writable.
type Draft struct {
	DeptTrackingNo string      `json:"deptTrackingNo"`
	Branch         string      `json:"branch"`
	Dept           string      `json:"dept"`
	RequestorName  string      `json:"requestorName"`
	VendorCode     string      `json:"vendorCode"`
	VendorDetails  string      `json:"vendorDetails"`
	LineItems      []DraftItem `json:"lineItems"`
	SpoNo          string      `json:"spoNo"`
}

// DraftItem is a provider-suggested table row; the id is minted by the
// caller on merge.
type DraftItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

// Validate enforces the response schema's mandatory fields.
func (d *Draft) Validate() error {
	if d.Branch == "" {
		return fmt.Errorf("autofill response missing branch")
	}
	if d.Dept == "" {
		return fmt.Errorf("autofill response missing dept")
	}
	if len(d.LineItems) == 0 {
		return fmt.Errorf("autofill response missing line items")
	}
	return nil
}

// Apply merges the draft onto the requisition in one atomic step. Line
// items replace the existing table only when the draft supplies any;
// item ids are minted here, marking them as AI-filled.
func Apply(req *models.Requisition, d *Draft, now time.Time) {
	if d.DeptTrackingNo != "" {
		req.DeptTrackingNo = d.DeptTrackingNo
	}
	if d.Branch != "" {
		req.Branch = d.Branch
	}
	if d.Dept != "" {
		req.Dept = d.Dept
	}
	if d.RequestorName != "" {
		req.RequestorName = d.RequestorName
	}
	if d.VendorCode != "" {
		req.VendorCode = d.VendorCode
	}
	if d.VendorDetails != "" {
		req.VendorDetails = d.VendorDetails
	}
	if d.SpoNo != "" {
		req.SpoNo = d.SpoNo
	}

	if len(d.LineItems) > 0 {
		items := make([]models.LineItem, 0, len(d.LineItems))
		for i, di := range d.LineItems {
			items = append(items, models.LineItem{
				ID:          fmt.Sprintf("ai-%d-%d", now.UnixMilli(), i),
				Description: di.Description,
				Quantity:    di.Quantity,
				UnitPrice:   di.UnitPrice,
			})
		}
		req.LineItems = items
	}
}
