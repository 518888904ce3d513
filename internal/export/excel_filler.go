package export

import (
	"bytes"
	"fmt"

	"github.com/quantumglobal/requisition/internal/models"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExcelFiller renders a requisition as an xlsx workbook, one sheet per
// printed page, mirroring the paper form's layout.
type ExcelFiller struct {
	letterhead Letterhead
	logger     *zap.Logger
}

// NewExcelFiller creates a new Excel renderer.
func NewExcelFiller(letterhead Letterhead, logger *zap.Logger) *ExcelFiller {
	return &ExcelFiller{letterhead: letterhead, logger: logger}
}

// Render builds the workbook and returns it as a buffer ready to stream.
func (ef *ExcelFiller) Render(req *models.Requisition) (*bytes.Buffer, error) {
	ef.logger.Info("Rendering requisition to Excel",
		zap.String("requisition_id", req.ID),
		zap.Int("line_items", len(req.LineItems)))

	f := excelize.NewFile()
	defer f.Close()

	pages := Paginate(req.LineItems)
	for i, page := range pages {
		sheet := fmt.Sprintf("Page %d", i+1)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return nil, fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, fmt.Errorf("failed to add sheet: %w", err)
			}
		}

		row := ef.fillLetterhead(f, sheet)
		if page.Kind == PageFirst {
			row = ef.fillHeaderBlocks(f, sheet, req, row)
		}
		row = ef.fillItemGrid(f, sheet, page, i, row)

		if i == len(pages)-1 {
			row = ef.fillTotalRow(f, sheet, req, row)
			ef.fillApprovalAndFooter(f, sheet, req, row+1)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

// fillLetterhead writes the company block and returns the next free row.
func (ef *ExcelFiller) fillLetterhead(f *excelize.File, sheet string) int {
	lh := ef.letterhead
	row := 1
	ef.setCell(f, sheet, cell("A", row), lh.CompanyName)
	ef.setCell(f, sheet, cell("E", row), lh.Title)
	row++
	ef.setCell(f, sheet, cell("A", row), lh.RegNo)
	ef.setCell(f, sheet, cell("E", row), lh.DocNo+"  "+lh.Revision)
	row++
	for _, line := range lh.AddressLines {
		ef.setCell(f, sheet, cell("A", row), line)
		row++
	}
	ef.setCell(f, sheet, cell("A", row), lh.Phone)
	row++
	ef.setCell(f, sheet, cell("A", row), lh.Fax)
	row++
	ef.setCell(f, sheet, cell("A", row), lh.Email)
	row += 2
	return row
}

// fillHeaderBlocks writes the vendor and tracking blocks of the first
// page and returns the next free row.
func (ef *ExcelFiller) fillHeaderBlocks(f *excelize.File, sheet string, req *models.Requisition, row int) int {
	ef.setCell(f, sheet, cell("A", row), "Vendor Code (mandatory)")
	ef.setCell(f, sheet, cell("B", row), req.VendorCode)
	ef.setCell(f, sheet, cell("D", row), "Dept Tracking No (if any)")
	ef.setCell(f, sheet, cell("E", row), req.DeptTrackingNo)
	row++
	ef.setCell(f, sheet, cell("A", row), "Vendor Details")
	ef.setCell(f, sheet, cell("B", row), req.VendorDetails)
	ef.setCell(f, sheet, cell("D", row), "Date")
	ef.setCell(f, sheet, cell("E", row), req.Date)
	row++
	ef.setCell(f, sheet, cell("D", row), "Branch")
	ef.setCell(f, sheet, cell("E", row), req.Branch)
	row++
	ef.setCell(f, sheet, cell("D", row), "Dept")
	ef.setCell(f, sheet, cell("E", row), req.Dept)
	row++
	ef.setCell(f, sheet, cell("D", row), "Requestor Name")
	ef.setCell(f, sheet, cell("E", row), req.RequestorName)
	row += 2
	return row
}

// fillItemGrid writes the item table for one page, padding empty rows up
// to the page capacity, and returns the next free row.
func (ef *ExcelFiller) fillItemGrid(f *excelize.File, sheet string, page Page, pageIndex, row int) int {
	ef.setCell(f, sheet, cell("A", row), "No")
	ef.setCell(f, sheet, cell("B", row), "Description Of Materials/ Services/ Reasons")
	ef.setCell(f, sheet, cell("C", row), "Quantity")
	ef.setCell(f, sheet, cell("D", row), "Unit Price")
	ef.setCell(f, sheet, cell("E", row), "Amount (RM)")
	row++

	for pos := 0; pos < page.Capacity(); pos++ {
		if pos < len(page.Items) {
			item := page.Items[pos]
			ef.setCell(f, sheet, cell("A", row), fmt.Sprintf("%d", RowNumber(pageIndex, pos)))
			ef.setCell(f, sheet, cell("B", row), item.Description)
			if item.Quantity != 0 {
				ef.setCell(f, sheet, cell("C", row), fmt.Sprintf("%g", item.Quantity))
			}
			if item.UnitPrice != 0 {
				ef.setCell(f, sheet, cell("D", row), fmt.Sprintf("%.2f", item.UnitPrice))
			}
			ef.setCell(f, sheet, cell("E", row), fmt.Sprintf("%.2f", item.Amount()))
		} else {
			// synthesized empty row
			ef.setCell(f, sheet, cell("E", row), "0.00")
		}
		row++
	}
	return row
}

// fillTotalRow writes the grand total under the last page's grid.
func (ef *ExcelFiller) fillTotalRow(f *excelize.File, sheet string, req *models.Requisition, row int) int {
	ef.setCell(f, sheet, cell("D", row), "TOTAL")
	ef.setCell(f, sheet, cell("E", row), fmt.Sprintf("%.2f", req.TotalAmount()))
	return row + 1
}

// fillApprovalAndFooter writes the three signature blocks and the footer
// fields on the last page.
func (ef *ExcelFiller) fillApprovalAndFooter(f *excelize.File, sheet string, req *models.Requisition, row int) {
	ef.setCell(f, sheet, cell("A", row), "Requestor")
	ef.setCell(f, sheet, cell("C", row), "Approval by Team Leader")
	ef.setCell(f, sheet, cell("E", row), "Approval by Director")
	row++
	ef.setCell(f, sheet, cell("A", row), "Name: "+req.ApprovalRequestor.Name)
	ef.setCell(f, sheet, cell("C", row), "Name: "+req.ApprovalTeamLeader.Name)
	ef.setCell(f, sheet, cell("E", row), "Name: "+req.ApprovalDirector.Name)
	row++
	ef.setCell(f, sheet, cell("A", row), "Date: "+req.ApprovalRequestor.Date)
	ef.setCell(f, sheet, cell("C", row), "Date: "+req.ApprovalTeamLeader.Date)
	ef.setCell(f, sheet, cell("E", row), "Date: "+req.ApprovalDirector.Date)
	row += 2
	ef.setCell(f, sheet, cell("A", row), "Entered by: "+req.EnteredBy)
	ef.setCell(f, sheet, cell("C", row), "Date: "+req.EnteredDate)
	ef.setCell(f, sheet, cell("E", row), "SPO No: "+req.SpoNo)
}

// setCell sets a cell value, logging rather than failing on cell errors.
func (ef *ExcelFiller) setCell(f *excelize.File, sheet, cellRef, value string) {
	if err := f.SetCellValue(sheet, cellRef, value); err != nil {
		ef.logger.Warn("Failed to set cell value",
			zap.String("sheet", sheet),
			zap.String("cell", cellRef),
			zap.Error(err))
	}
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
