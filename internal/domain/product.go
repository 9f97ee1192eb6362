package domain

// Product is a catalog item. Stock is decremented by sales without
// clamping, so consumers must tolerate negative values (see store docs).
type Product struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Stock          int     `json:"stock"`
	PricePurchase  float64 `json:"pricePurchase"`
	PriceRetail    float64 `json:"priceRetail"`
	PriceWholesale float64 `json:"priceWholesale"`
}
