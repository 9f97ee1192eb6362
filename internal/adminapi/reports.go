package adminapi

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/araddon/dateparse"
	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"github.com/montanaflynn/stats"
	"github.com/spf13/cast"

	"github.com/amflabs/stockpilot/internal/domain"
	"github.com/amflabs/stockpilot/internal/webserver"
	"github.com/amflabs/stockpilot/pkg/metrics"
)

func registerReportRoutes() {
	webserver.ApiGET("/reports/sales-summary", salesSummary)
	webserver.ApiGET("/reports/top-products", topProducts)
	webserver.ApiGET("/reports/sales-series", salesSeries)
	webserver.ApiGET("/reports/sales.xlsx", exportSalesXlsx)
	webserver.ApiGET("/reports/sales.csv", exportSalesCsv)
}

// reportRange parses start/end query params with dateparse, defaulting to
// the trailing 30 days. End is pushed to the end of its day so a plain
// date like 2024-05-01 is inclusive.
func reportRange(c echo.Context) (time.Time, time.Time, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -30)
	if v := c.QueryParam("start"); v != "" {
		t, err := dateparse.ParseLocal(v)
		if err != nil {
			return start, end, fmt.Errorf("bad start date %q: %v", v, err)
		}
		start = t
	}
	if v := c.QueryParam("end"); v != "" {
		t, err := dateparse.ParseLocal(v)
		if err != nil {
			return start, end, fmt.Errorf("bad end date %q: %v", v, err)
		}
		end = t.Add(24*time.Hour - time.Nanosecond)
	}
	return start, end, nil
}

func receiptsBetween(receipts []domain.Receipt, start, end time.Time) []domain.Receipt {
	var out []domain.Receipt
	for _, r := range receipts {
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}

type dailySale struct {
	Day   string  `json:"day"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

func salesSummary(c echo.Context) error {
	receipts, err := GetStore(c).Receipts()
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Store not ready", err.Error())
	}
	start, end, err := reportRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid date range", err.Error())
	}

	byDay := map[string]*dailySale{}
	var grand float64
	for _, r := range receiptsBetween(receipts, start, end) {
		day := r.Date.Format("2006-01-02")
		d, found := byDay[day]
		if !found {
			d = &dailySale{Day: day}
			byDay[day] = d
		}
		d.Total += r.Total
		d.Count++
		grand += r.Total
	}

	days := make([]dailySale, 0, len(byDay))
	totals := make([]float64, 0, len(byDay))
	for _, d := range byDay {
		days = append(days, *d)
		totals = append(totals, d.Total)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day < days[j].Day })

	var mean, median, best float64
	if len(totals) > 0 {
		mean, _ = stats.Mean(totals)
		median, _ = stats.Median(totals)
		best, _ = stats.Max(totals)
	}
	return ok(c, map[string]interface{}{
		"start":       start.Format("2006-01-02"),
		"end":         end.Format("2006-01-02"),
		"days":        days,
		"grandTotal":  grand,
		"meanDaily":   mean,
		"medianDaily": median,
		"bestDay":     best,
	})
}

type productSales struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Revenue     float64 `json:"revenue"`
}

func topProducts(c echo.Context) error {
	receipts, err := GetStore(c).Receipts()
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Store not ready", err.Error())
	}
	start, end, err := reportRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid date range", err.Error())
	}
	limit := cast.ToInt(c.QueryParam("limit"))
	if limit <= 0 {
		limit = 5
	}

	byProduct := map[string]*productSales{}
	for _, r := range receiptsBetween(receipts, start, end) {
		for _, li := range r.LineItems {
			p, found := byProduct[li.ProductID]
			if !found {
				p = &productSales{ProductID: li.ProductID, ProductName: li.ProductName}
				byProduct[li.ProductID] = p
			}
			p.Quantity += li.Quantity
			p.Revenue += li.Extension()
		}
	}

	ranked := make([]productSales, 0, len(byProduct))
	for _, p := range byProduct {
		ranked = append(ranked, *p)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		return ranked[i].ProductName < ranked[j].ProductName
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ok(c, ranked)
}

// salesSeries reads the recorded sale samples back out of the metrics
// store for the dashboard chart.
func salesSeries(c echo.Context) error {
	end := time.Now().Unix()
	start := end - 7*86400
	if v := c.QueryParam("start"); v != "" {
		start = cast.ToInt64(v)
	}
	if v := c.QueryParam("end"); v != "" {
		end = cast.ToInt64(v)
	}
	points, err := metrics.QueryRange(metrics.SalesTotal, start, end)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "METRICS_ERROR", "Failed to query sales series", err.Error())
	}
	return ok(c, points)
}

type receiptRow struct {
	ReceiptID    string  `csv:"receipt_id"`
	Date         string  `csv:"date"`
	CustomerName string  `csv:"customer_name"`
	ProductName  string  `csv:"product_name"`
	Quantity     int     `csv:"quantity"`
	Price        float64 `csv:"price"`
	LineTotal    float64 `csv:"line_total"`
}

func flattenReceipts(receipts []domain.Receipt) []receiptRow {
	var rows []receiptRow
	for _, r := range receipts {
		for _, li := range r.LineItems {
			rows = append(rows, receiptRow{
				ReceiptID:    r.ID,
				Date:         r.Date.Format("2006-01-02 15:04:05"),
				CustomerName: r.CustomerName,
				ProductName:  li.ProductName,
				Quantity:     li.Quantity,
				Price:        li.Price,
				LineTotal:    li.Extension(),
			})
		}
	}
	return rows
}

func exportSalesXlsx(c echo.Context) error {
	receipts, err := GetStore(c).Receipts()
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Store not ready", err.Error())
	}
	start, end, err := reportRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid date range", err.Error())
	}

	xlsx := excelize.NewFile()
	sheet := "Sheet1"
	headers := []string{"Receipt", "Date", "Customer", "Product", "Quantity", "Price", "Line Total"}
	for i, h := range headers {
		xlsx.SetCellValue(sheet, fmt.Sprintf("%c1", 'A'+i), h)
	}
	for i, row := range flattenReceipts(receiptsBetween(receipts, start, end)) {
		n := i + 2
		xlsx.SetCellValue(sheet, fmt.Sprintf("A%d", n), row.ReceiptID)
		xlsx.SetCellValue(sheet, fmt.Sprintf("B%d", n), row.Date)
		xlsx.SetCellValue(sheet, fmt.Sprintf("C%d", n), row.CustomerName)
		xlsx.SetCellValue(sheet, fmt.Sprintf("D%d", n), row.ProductName)
		xlsx.SetCellValue(sheet, fmt.Sprintf("E%d", n), row.Quantity)
		xlsx.SetCellValue(sheet, fmt.Sprintf("F%d", n), row.Price)
		xlsx.SetCellValue(sheet, fmt.Sprintf("G%d", n), row.LineTotal)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", "sales-report.xlsx"))
	c.Response().Header().Set(echo.HeaderContentType,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)
	return xlsx.Write(c.Response())
}

func exportSalesCsv(c echo.Context) error {
	receipts, err := GetStore(c).Receipts()
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Store not ready", err.Error())
	}
	start, end, err := reportRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid date range", err.Error())
	}
	rows := flattenReceipts(receiptsBetween(receipts, start, end))

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", "sales-report.csv"))
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().WriteHeader(http.StatusOK)
	return gocsv.Marshal(&rows, c.Response())
}
