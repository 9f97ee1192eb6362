package adminapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/amflabs/stockpilot/internal/domain"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestReceiptsBetween(t *testing.T) {
	receipts := []domain.Receipt{
		{ID: "SALE1", Date: day("2024-05-01")},
		{ID: "SALE2", Date: day("2024-05-10")},
		{ID: "SALE3", Date: day("2024-06-01")},
	}
	got := receiptsBetween(receipts, day("2024-05-01"), day("2024-05-31"))
	assert.Len(t, got, 2)
	assert.Equal(t, "SALE1", got[0].ID)
	assert.Equal(t, "SALE2", got[1].ID)
}

func TestFlattenReceipts(t *testing.T) {
	receipts := []domain.Receipt{
		{
			ID:           "SALE1",
			Date:         day("2024-05-01"),
			CustomerName: "Walk-in",
			LineItems: []domain.LineItem{
				{ProductName: "Rice 5kg", Quantity: 2, Price: 450},
				{ProductName: "Olive Oil 1L", Quantity: 1, Price: 980},
			},
		},
	}
	rows := flattenReceipts(receipts)
	assert.Len(t, rows, 2)
	assert.Equal(t, "SALE1", rows[0].ReceiptID)
	assert.Equal(t, 900.0, rows[0].LineTotal)
	assert.Equal(t, 980.0, rows[1].LineTotal)
}

func TestPageSlice(t *testing.T) {
	rows := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{1, 2}, pageSlice(rows, 1, 2))
	assert.Equal(t, []int{3, 4}, pageSlice(rows, 2, 2))
	assert.Equal(t, []int{5}, pageSlice(rows, 3, 2))
	assert.Empty(t, pageSlice(rows, 4, 2))
}
