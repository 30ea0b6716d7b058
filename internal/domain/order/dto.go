// internal/domain/order/dto.go
package order

// Spec is one order to ingest: a customer plus its line items.
type Spec struct {
	Xcus     string     `json:"xcus" binding:"required"`
	XcusName string     `json:"xcusname"`
	XcusAdd  string     `json:"xcusadd"`
	Items    []ItemSpec `json:"items" binding:"required,min=1,dive"`
}

type ItemSpec struct {
	Xitem      string  `json:"xitem" binding:"required"`
	Xdesc      string  `json:"xdesc"`
	Xqty       float64 `json:"xqty" binding:"required,gt=0"`
	Xprice     float64 `json:"xprice"`
	XrowOrd    int     `json:"xroword"`
	Xlat       float64 `json:"xlat"`
	Xlong      float64 `json:"xlong"`
	XlineTotal float64 `json:"xlinetotal"`
}

// Result is the outcome for exactly one submitted Spec. Failed orders carry
// a user-safe error message instead of silently vanishing from the output.
type Result struct {
	Xcus      string `json:"xcus"`
	InvoiceNo string `json:"invoiceno,omitempty"`
	Lines     int    `json:"lines"`
	Succeeded bool   `json:"succeeded"`
	Error     string `json:"error,omitempty"`
}
