package domain

type CustomerType string

const (
	CustomerWholesale CustomerType = "Wholesale"
	CustomerRetail    CustomerType = "Retail"
)

// Customer is a buyer record. PurchaseHistory accumulates completed sale
// totals and never decreases.
type Customer struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Type            CustomerType `json:"type"`
	Email           string       `json:"email"`
	Phone           string       `json:"phone"`
	PurchaseHistory float64      `json:"purchaseHistory"`
}
