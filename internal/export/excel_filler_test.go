package export

import (
	"testing"
	"time"

	"github.com/quantumglobal/requisition/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func renderedWorkbook(t *testing.T, req *models.Requisition) *excelize.File {
	t.Helper()

	filler := NewExcelFiller(DefaultLetterhead(), zap.NewNop())
	buf, err := filler.Render(req)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func sampleRequisition(items int) *models.Requisition {
	req := models.NewRequisition(time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC))
	req.VendorCode = "V-100"
	req.VendorDetails = "Acme Supplies Sdn Bhd"
	req.Branch = "HQ"
	req.Dept = "Engineering"
	req.RequestorName = "Alice"
	req.LineItems = makeItems(items)
	return req
}

func TestExcelFiller_OneSheetPerPage(t *testing.T) {
	tests := []struct {
		name   string
		items  int
		sheets []string
	}{
		{name: "empty document renders one page", items: 0, sheets: []string{"Page 1"}},
		{name: "first page only", items: 10, sheets: []string{"Page 1"}},
		{name: "one continuation page", items: 11, sheets: []string{"Page 1", "Page 2"}},
		{name: "two continuation pages", items: 29, sheets: []string{"Page 1", "Page 2", "Page 3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := renderedWorkbook(t, sampleRequisition(tt.items))
			assert.Equal(t, tt.sheets, f.GetSheetList())
		})
	}
}

func TestExcelFiller_FirstPageHeader(t *testing.T) {
	req := sampleRequisition(3)
	f := renderedWorkbook(t, req)

	company, err := f.GetCellValue("Page 1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Quantum Global Solutions", company)

	title, err := f.GetCellValue("Page 1", "E1")
	require.NoError(t, err)
	assert.Equal(t, "PURCHASE ORDER REQUISITION", title)

	rows, err := f.GetRows("Page 1")
	require.NoError(t, err)

	var flat []string
	for _, row := range rows {
		flat = append(flat, row...)
	}
	assert.Contains(t, flat, "V-100")
	assert.Contains(t, flat, "Acme Supplies Sdn Bhd")
	assert.Contains(t, flat, "Alice")
}

func TestExcelFiller_ContinuationPageHasNoHeaderBlocks(t *testing.T) {
	f := renderedWorkbook(t, sampleRequisition(15))

	rows, err := f.GetRows("Page 2")
	require.NoError(t, err)

	for _, row := range rows {
		for _, value := range row {
			assert.NotEqual(t, "Vendor Code (mandatory)", value)
			assert.NotEqual(t, "V-100", value)
		}
	}
}

func TestExcelFiller_TotalOnLastPageOnly(t *testing.T) {
	req := sampleRequisition(15)
	f := renderedWorkbook(t, req)

	countTotal := func(sheet string) int {
		rows, err := f.GetRows(sheet)
		require.NoError(t, err)
		n := 0
		for _, row := range rows {
			for _, value := range row {
				if value == "TOTAL" {
					n++
				}
			}
		}
		return n
	}

	assert.Equal(t, 0, countTotal("Page 1"))
	assert.Equal(t, 1, countTotal("Page 2"))
}

func TestExcelFiller_RowNumbersContinueAcrossSheets(t *testing.T) {
	f := renderedWorkbook(t, sampleRequisition(12))

	rows, err := f.GetRows("Page 2")
	require.NoError(t, err)

	var flat []string
	for _, row := range rows {
		flat = append(flat, row...)
	}
	assert.Contains(t, flat, "11")
	assert.Contains(t, flat, "12")
	assert.Contains(t, flat, "Item 11")
	assert.Contains(t, flat, "Item 12")
}
