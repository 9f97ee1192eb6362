package domain

import "time"

type LineItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// Receipt is the immutable record of a completed sale. CustomerName is a
// denormalized snapshot; deleting the customer later does not touch it.
type Receipt struct {
	ID           string     `json:"id"`
	Date         time.Time  `json:"date"`
	CustomerID   string     `json:"customerId"`
	CustomerName string     `json:"customerName"`
	LineItems    []LineItem `json:"lineItems"`
	Total        float64    `json:"total"`
}

// Extension returns quantity * unit price for one line.
func (li LineItem) Extension() float64 {
	return float64(li.Quantity) * li.Price
}
