package advisor

import (
	"context"
	"sort"
	"time"

	"github.com/guonaihong/gout"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/amflabs/stockpilot/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StockAlertInput carries the two serialized snapshots sent to the
// reasoning service. Both fields are JSON documents encoded as strings,
// matching the service schema.
type StockAlertInput struct {
	HistoricalSalesData string `json:"historicalSalesData"`
	CurrentStockLevels  string `json:"currentStockLevels"`
}

// StockAlertOutput is the service response. ProductsToRestock holds
// product names as returned by the model, unvalidated.
type StockAlertOutput struct {
	ProductsToRestock []string `json:"productsToRestock"`
	Reasoning         string   `json:"reasoning"`
}

// HistoricalSale is one product's sale-quantity series, oldest first.
type HistoricalSale struct {
	Product string `json:"product"`
	Sales   []int  `json:"sales"`
}

// StockLevel is one product's current stock.
type StockLevel struct {
	Product string `json:"product"`
	Stock   int    `json:"stock"`
}

// Client talks to the external restock advisory endpoint. Pass-through by
// contract: no retry, no caching.
type Client struct {
	apiURL  string
	apiKey  string
	timeout time.Duration
}

func NewClient(apiURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{apiURL: apiURL, apiKey: apiKey, timeout: timeout}
}

// GenerateStockAlert posts the input and decodes the advisory response.
// Network or model failures surface as errors for the caller to report;
// there is no retry.
func (c *Client) GenerateStockAlert(ctx context.Context, input StockAlertInput) (StockAlertOutput, error) {
	if c.apiURL == "" {
		return StockAlertOutput{}, errors.New("advisor api url not configured")
	}

	var out StockAlertOutput
	var code int
	err := gout.POST(c.apiURL).
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetHeader(gout.H{"Authorization": "Bearer " + c.apiKey}).
		SetJSON(input).
		BindJSON(&out).
		Code(&code).
		Do()
	if err != nil {
		return StockAlertOutput{}, errors.Wrap(err, "advisor request")
	}
	if code != 200 {
		return StockAlertOutput{}, errors.Errorf("advisor request failed with status %d", code)
	}
	return out, nil
}

// BuildInput serializes receipts and products into the two snapshot
// payloads. Historical series are per-product daily sale quantities over
// the receipt window, oldest day first.
func BuildInput(receipts []domain.Receipt, products []domain.Product) (StockAlertInput, error) {
	type daily map[string]int // day -> quantity

	perProduct := make(map[string]daily)
	daySet := make(map[string]struct{})
	for _, r := range receipts {
		day := r.Date.Format("2006-01-02")
		daySet[day] = struct{}{}
		for _, li := range r.LineItems {
			if perProduct[li.ProductName] == nil {
				perProduct[li.ProductName] = make(daily)
			}
			perProduct[li.ProductName][day] += li.Quantity
		}
	}

	days := make([]string, 0, len(daySet))
	for day := range daySet {
		days = append(days, day)
	}
	sort.Strings(days)

	historical := make([]HistoricalSale, 0, len(perProduct))
	for _, p := range products {
		series, ok := perProduct[p.Name]
		if !ok {
			continue
		}
		sales := make([]int, 0, len(days))
		for _, day := range days {
			sales = append(sales, series[day])
		}
		historical = append(historical, HistoricalSale{Product: p.Name, Sales: sales})
	}

	levels := make([]StockLevel, 0, len(products))
	for _, p := range products {
		levels = append(levels, StockLevel{Product: p.Name, Stock: p.Stock})
	}

	historicalJSON, err := json.MarshalIndent(historical, "", "  ")
	if err != nil {
		return StockAlertInput{}, err
	}
	levelsJSON, err := json.MarshalIndent(levels, "", "  ")
	if err != nil {
		return StockAlertInput{}, err
	}
	return StockAlertInput{
		HistoricalSalesData: string(historicalJSON),
		CurrentStockLevels:  string(levelsJSON),
	}, nil
}

// ValidateProducts splits the returned names into those present in the
// catalog and those the model invented or misspelled.
func ValidateProducts(names []string, products []domain.Product) (known, unknown []string) {
	catalog := make(map[string]struct{}, len(products))
	for _, p := range products {
		catalog[p.Name] = struct{}{}
	}
	for _, name := range names {
		if _, ok := catalog[name]; ok {
			known = append(known, name)
		} else {
			unknown = append(unknown, name)
		}
	}
	return known, unknown
}
