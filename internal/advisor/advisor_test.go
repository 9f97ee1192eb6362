package advisor

import (
	"context"
	stdjson "encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amflabs/stockpilot/internal/domain"
)

func TestGenerateStockAlert(t *testing.T) {
	var gotAuth string
	var gotInput StockAlertInput
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, stdjson.NewDecoder(r.Body).Decode(&gotInput))
		_ = stdjson.NewEncoder(w).Encode(StockAlertOutput{
			ProductsToRestock: []string{"Industrial Widget"},
			Reasoning:         "sales outpace stock",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second)
	out, err := client.GenerateStockAlert(context.Background(), StockAlertInput{
		HistoricalSalesData: `[{"product":"Industrial Widget","sales":[3,5]}]`,
		CurrentStockLevels:  `[{"product":"Industrial Widget","stock":4}]`,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Industrial Widget"}, out.ProductsToRestock)
	assert.Equal(t, "sales outpace stock", out.Reasoning)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Contains(t, gotInput.HistoricalSalesData, "Industrial Widget")
}

func TestGenerateStockAlertServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", 5*time.Second)
	_, err := client.GenerateStockAlert(context.Background(), StockAlertInput{})
	assert.Error(t, err)
}

func TestGenerateStockAlertUnconfigured(t *testing.T) {
	client := NewClient("", "", 0)
	_, err := client.GenerateStockAlert(context.Background(), StockAlertInput{})
	assert.Error(t, err)
}

func TestBuildInput(t *testing.T) {
	products := []domain.Product{
		{ID: "PROD1", Name: "Widget", Stock: 12},
		{ID: "PROD2", Name: "Gear", Stock: 90},
		{ID: "PROD3", Name: "Never Sold", Stock: 5},
	}
	day1 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 2, 16, 0, 0, 0, time.UTC)
	receipts := []domain.Receipt{
		{ID: "SALE2", Date: day2, LineItems: []domain.LineItem{
			{ProductID: "PROD1", ProductName: "Widget", Quantity: 7, Price: 10},
		}},
		{ID: "SALE1", Date: day1, LineItems: []domain.LineItem{
			{ProductID: "PROD1", ProductName: "Widget", Quantity: 3, Price: 10},
			{ProductID: "PROD2", ProductName: "Gear", Quantity: 2, Price: 50},
		}},
	}

	input, err := BuildInput(receipts, products)
	require.NoError(t, err)

	var historical []HistoricalSale
	require.NoError(t, stdjson.Unmarshal([]byte(input.HistoricalSalesData), &historical))
	require.Len(t, historical, 2)
	assert.Equal(t, "Widget", historical[0].Product)
	assert.Equal(t, []int{3, 7}, historical[0].Sales)
	assert.Equal(t, "Gear", historical[1].Product)
	assert.Equal(t, []int{2, 0}, historical[1].Sales)

	var levels []StockLevel
	require.NoError(t, stdjson.Unmarshal([]byte(input.CurrentStockLevels), &levels))
	assert.Len(t, levels, 3)
}

func TestValidateProducts(t *testing.T) {
	products := []domain.Product{{Name: "Widget"}, {Name: "Gear"}}
	known, unknown := ValidateProducts([]string{"Widget", "Sprocket"}, products)
	assert.Equal(t, []string{"Widget"}, known)
	assert.Equal(t, []string{"Sprocket"}, unknown)
}
