package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/quantumglobal/requisition/internal/models"
	"go.uber.org/zap"
)

// Column widths of the item grid in mm (A4 portrait, 10mm margins).
var gridWidths = [5]float64{10, 95, 20, 30, 35}

var gridHeaders = [5]string{"No", "Description", "Qty", "Unit Price", "Amount (RM)"}

const gridRowHeight = 7.0

// PDFWriter renders a requisition as a paginated A4 PDF using the same
// page model as the printed form.
type PDFWriter struct {
	letterhead Letterhead
	logger     *zap.Logger
}

// NewPDFWriter creates a new PDF renderer.
func NewPDFWriter(letterhead Letterhead, logger *zap.Logger) *PDFWriter {
	return &PDFWriter{letterhead: letterhead, logger: logger}
}

// Render produces the PDF document bytes.
func (w *PDFWriter) Render(req *models.Requisition) ([]byte, error) {
	w.logger.Info("Rendering requisition to PDF",
		zap.String("requisition_id", req.ID),
		zap.Int("line_items", len(req.LineItems)))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(false, 10)

	pages := Paginate(req.LineItems)
	for i, page := range pages {
		pdf.AddPage()
		w.drawLetterhead(pdf)
		if page.Kind == PageFirst {
			w.drawHeaderBlocks(pdf, req)
		}
		w.drawItemGrid(pdf, page, i)
		if i == len(pages)-1 {
			w.drawTotalRow(pdf, req)
			w.drawApprovalBlocks(pdf, req)
			w.drawFooter(pdf, req)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *PDFWriter) drawLetterhead(pdf *fpdf.Fpdf) {
	lh := w.letterhead

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(120, 6, lh.CompanyName, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(70, 6, lh.Title, "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(120, 4, lh.RegNo, "", 0, "L", false, 0, "")
	pdf.CellFormat(70, 4, lh.DocNo+"   "+lh.Revision, "", 1, "R", false, 0, "")
	for _, line := range lh.AddressLines {
		pdf.CellFormat(0, 4, line, "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 4, lh.Phone, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 4, lh.Fax, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 4, lh.Email, "", 1, "L", false, 0, "")
	pdf.Ln(3)
}

func (w *PDFWriter) drawHeaderBlocks(pdf *fpdf.Fpdf, req *models.Requisition) {
	left, top := pdf.GetX(), pdf.GetY()

	// vendor block on the left
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(45, 6, "Vendor Code (mandatory)", "1", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(50, 6, req.VendorCode, "1", 1, "C", false, 0, "")
	pdf.SetX(left)
	pdf.SetFont("Helvetica", "", 8)
	pdf.MultiCell(95, 6, req.VendorDetails, "1", "L", false)
	vendorBottom := pdf.GetY()

	// tracking fields on the right
	headerFields := []struct{ label, value string }{
		{"Dept Tracking No (if any)", req.DeptTrackingNo},
		{"Date", req.Date},
		{"Branch", req.Branch},
		{"Dept", req.Dept},
		{"Requestor Name", req.RequestorName},
	}
	for i, f := range headerFields {
		pdf.SetXY(left+100, top+float64(i)*6)
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(42, 6, f.label+" :", "", 0, "R", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(48, 6, f.value, "B", 0, "L", false, 0, "")
	}

	fieldsBottom := top + float64(len(headerFields))*6
	bottom := vendorBottom
	if fieldsBottom > bottom {
		bottom = fieldsBottom
	}
	pdf.SetXY(left, bottom+4)
}

func (w *PDFWriter) drawItemGrid(pdf *fpdf.Fpdf, page Page, pageIndex int) {
	pdf.SetFont("Helvetica", "B", 8)
	aligns := [5]string{"C", "L", "C", "R", "R"}
	for i, h := range gridHeaders {
		pdf.CellFormat(gridWidths[i], gridRowHeight, h, "1", 0, aligns[i], false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for pos := 0; pos < page.Capacity(); pos++ {
		if pos < len(page.Items) {
			item := page.Items[pos]
			qty, price := "", ""
			if item.Quantity != 0 {
				qty = fmt.Sprintf("%g", item.Quantity)
			}
			if item.UnitPrice != 0 {
				price = fmt.Sprintf("%.2f", item.UnitPrice)
			}
			cells := [5]string{
				fmt.Sprintf("%d", RowNumber(pageIndex, pos)),
				item.Description,
				qty,
				price,
				fmt.Sprintf("%.2f", item.Amount()),
			}
			for i, c := range cells {
				pdf.CellFormat(gridWidths[i], gridRowHeight, c, "1", 0, aligns[i], false, 0, "")
			}
		} else {
			// synthesized empty row keeps the full-height grid
			for i := 0; i < 4; i++ {
				pdf.CellFormat(gridWidths[i], gridRowHeight, "", "1", 0, "L", false, 0, "")
			}
			pdf.CellFormat(gridWidths[4], gridRowHeight, "0.00", "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func (w *PDFWriter) drawTotalRow(pdf *fpdf.Fpdf, req *models.Requisition) {
	pdf.SetFont("Helvetica", "B", 8)
	labelWidth := gridWidths[0] + gridWidths[1] + gridWidths[2] + gridWidths[3]
	pdf.CellFormat(labelWidth, gridRowHeight, "TOTAL", "1", 0, "R", false, 0, "")
	pdf.CellFormat(gridWidths[4], gridRowHeight, fmt.Sprintf("%.2f", req.TotalAmount()), "1", 1, "R", false, 0, "")
	pdf.Ln(4)
}

func (w *PDFWriter) drawApprovalBlocks(pdf *fpdf.Fpdf, req *models.Requisition) {
	const blockWidth = 63.3

	pdf.SetFont("Helvetica", "B", 8)
	titles := [3]string{"Requestor", "Approval by Team Leader", "Approval by Director"}
	for _, t := range titles {
		pdf.CellFormat(blockWidth, 6, t, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	approvals := [3]models.ApprovalInfo{
		req.ApprovalRequestor,
		req.ApprovalTeamLeader,
		req.ApprovalDirector,
	}

	pdf.SetFont("Helvetica", "", 8)
	for _, a := range approvals {
		pdf.CellFormat(blockWidth, 6, "Name: "+a.Name, "LR", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
	for _, a := range approvals {
		pdf.CellFormat(blockWidth, 6, "Date: "+a.Date, "LRB", 0, "L", false, 0, "")
	}
	pdf.Ln(10)
}

func (w *PDFWriter) drawFooter(pdf *fpdf.Fpdf, req *models.Requisition) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(20, 6, "Entered by", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(50, 6, req.EnteredBy, "1", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(15, 6, "Date", "", 0, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(35, 6, req.EnteredDate, "1", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(20, 6, "SPO No :", "", 0, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(50, 6, req.SpoNo, "1", 1, "L", false, 0, "")
}
