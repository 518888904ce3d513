package export

// Letterhead holds the company block printed at the top of every page.
type Letterhead struct {
	CompanyName  string
	RegNo        string
	AddressLines []string
	Phone        string
	Fax          string
	Email        string
	DocNo        string
	Revision     string
	Title        string
}

// DefaultLetterhead returns the standard company letterhead.
func DefaultLetterhead() Letterhead {
	return Letterhead{
		CompanyName: "Quantum Global Solutions",
		RegNo:       "Reg No. 202401009988 (13579-Q)",
		AddressLines: []string{
			"Level 25, Menara Future,",
			"Persiaran Digital, Cyberjaya,",
			"63000 Selangor, Malaysia.",
		},
		Phone:    "General Line: +603-8800 1234",
		Fax:      "Fax: +603-8800 1235 (Admin)",
		Email:    "Email: procurement@quantumglobal.com",
		DocNo:    "DOC-PUR-REQ-01",
		Revision: "Rev 3.0",
		Title:    "PURCHASE ORDER REQUISITION",
	}
}

// FileName returns the export filename for a requisition, preferring the
// SPO number over the document id when it has been assigned.
func FileName(id, spoNo, ext string) string {
	ref := id
	if spoNo != "" {
		ref = spoNo
	}
	return "Quantum_Req_" + ref + "." + ext
}
