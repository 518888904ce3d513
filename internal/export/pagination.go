package export

import "github.com/quantumglobal/requisition/internal/models"

// Page capacities for the printed form. The first page shares space with
// the letterhead, vendor and header blocks, so it holds fewer rows.
const (
	FirstPageCapacity    = 10
	ContinuationCapacity = 18
)

// PageKind distinguishes the first printed page from continuation pages.
type PageKind string

const (
	PageFirst        PageKind = "first"
	PageContinuation PageKind = "subsequent"
)

// Page is a fixed-capacity chunk of line items laid out for one printed
// page. Items keep their document order.
type Page struct {
	Kind  PageKind
	Items []models.LineItem
}

// Capacity returns the page's row capacity; renderers synthesize empty
// trailing rows up to it so every page shows a full-height grid.
func (p Page) Capacity() int {
	if p.Kind == PageFirst {
		return FirstPageCapacity
	}
	return ContinuationCapacity
}

// Paginate splits the ordered item list into printable pages: up to
// FirstPageCapacity items on the first page, then up to
// ContinuationCapacity per continuation page. An empty item list still
// yields one empty first page so the document always has a printable
// page. The function is pure; identical input produces identical output.
func Paginate(items []models.LineItem) []Page {
	first := items
	if len(first) > FirstPageCapacity {
		first = first[:FirstPageCapacity]
	}
	pages := []Page{{Kind: PageFirst, Items: first}}

	rest := items[len(first):]
	for len(rest) > 0 {
		n := ContinuationCapacity
		if len(rest) < n {
			n = len(rest)
		}
		pages = append(pages, Page{Kind: PageContinuation, Items: rest[:n]})
		rest = rest[n:]
	}

	return pages
}

// RowNumber returns the continuous 1-based row number of the item at
// positionOnPage on the page at pageIndex.
func RowNumber(pageIndex, positionOnPage int) int {
	if pageIndex == 0 {
		return positionOnPage + 1
	}
	return FirstPageCapacity + (pageIndex-1)*ContinuationCapacity + positionOnPage + 1
}
