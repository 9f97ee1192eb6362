package pdfexport

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amflabs/stockpilot/internal/domain"
)

func sampleReceipt() domain.Receipt {
	return domain.Receipt{
		ID:           "SALE12345",
		Date:         time.Date(2026, 8, 15, 14, 30, 0, 0, time.UTC),
		CustomerID:   "CUST001",
		CustomerName: "Global Manufacturing Inc.",
		LineItems: []domain.LineItem{
			{ProductID: "PROD001", ProductName: "Industrial Widget", Quantity: 4, Price: 25.99},
			{ProductID: "PROD007", ProductName: "Precision Bearing", Quantity: 20, Price: 12.00},
		},
		Total: 4*25.99 + 20*12.00,
	}
}

func TestWriteReceipt(t *testing.T) {
	var buf bytes.Buffer
	err := WriteReceipt(&buf, sampleReceipt(), domain.StoreInfo{
		Name:    "AMF Logistic",
		Address: "123 Industrial Way, Logistown",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")), "output is not a PDF")
	assert.Greater(t, buf.Len(), 1000)
}

func TestWriteReceiptNoLineItems(t *testing.T) {
	var buf bytes.Buffer
	r := sampleReceipt()
	r.LineItems = nil
	r.Total = 0
	require.NoError(t, WriteReceipt(&buf, r, domain.StoreInfo{Name: "Shop"}))
	assert.NotZero(t, buf.Len())
}

func TestReceiptFilename(t *testing.T) {
	assert.Equal(t, "receipt-SALE12345.pdf", ReceiptFilename(sampleReceipt()))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1,299.50 DA", formatAmount(1299.5))
}
