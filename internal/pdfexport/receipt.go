package pdfexport

import (
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/amflabs/stockpilot/internal/domain"
)

var amounts = message.NewPrinter(language.English)

func formatAmount(v float64) string {
	return amounts.Sprintf("%.2f DA", v)
}

// ReceiptFilename returns the download name for a receipt document.
func ReceiptFilename(r domain.Receipt) string {
	return "receipt-" + r.ID + ".pdf"
}

// WriteReceipt renders a printable sales receipt: store header, bill-to
// block, receipt metadata, line-item table and grand total.
func WriteReceipt(w io.Writer, r domain.Receipt, info domain.StoreInfo) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Store header
	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 10, tr(info.Name), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, tr(info.Address), "", 1, "C", false, 0, "")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 18)
	pdf.CellFormat(0, 10, "Sales Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	// Bill-to and receipt metadata
	y := pdf.GetY()
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(20, y, "Bill To:")
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(20, y+7, tr(r.CustomerName))

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(130, y, "Receipt #:")
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(155, y, r.ID)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(130, y+7, "Date:")
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(155, y+7, dateOrNow(r.Date).Format("January 02, 2006"))
	pdf.SetY(y + 20)

	// Line-item table
	colWidths := []float64{80, 25, 35, 35}
	headers := []string{"Product", "Quantity", "Unit Price", "Total"}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(22, 163, 74)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(colWidths[i], 9, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0, 0, 0)
	for _, li := range r.LineItems {
		pdf.CellFormat(colWidths[0], 8, tr(li.ProductName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[1], 8, amounts.Sprintf("%d", li.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[2], 8, formatAmount(li.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[3], 8, formatAmount(li.Extension()), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	// Grand total
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(140, 10, "Total:", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 10, formatAmount(r.Total), "", 1, "R", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 8, "Thank you for your business!", "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "render receipt pdf")
	}
	return nil
}

// dateOrNow guards zero dates coming from hand-built receipts.
func dateOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
