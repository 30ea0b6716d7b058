// internal/domain/order/entity.go
package order

import "time"

// Line is one persisted order line in opmob. Every line of an order shares
// the order's invoice number; each line carries its own ULID serial.
type Line struct {
	ID         int64
	ZID        int64 // business unit
	CreatedAt  time.Time
	UpdatedAt  time.Time
	InvoiceNo  string
	InvoiceSL  int64
	Username   string
	Xemp       string // employee code of the submitting actor
	Xcus       string
	XcusName   string
	XcusAdd    string
	Xitem      string
	Xdesc      string
	Xqty       float64
	Xprice     float64
	XrowOrd    int
	Xterminal  string
	Xdate      time.Time
	Xsl        string // per-line unique serial
	Xlat       float64
	Xlong      float64
	XlineTotal float64
}

// Actor identifies who is submitting orders; extracted from token claims.
type Actor struct {
	Username     string
	EmployeeCode string
	Terminal     string
}
