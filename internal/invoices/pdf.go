package invoices

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/clientdesk/clientdesk-backend/internal/clients"
	"github.com/clientdesk/clientdesk-backend/internal/money"
	"github.com/clientdesk/clientdesk-backend/internal/users"
)

// Table geometry in millimeters on an A4 page.
const (
	tableLeft  = 20.0
	tableRight = 190.0

	colDescX   = 20.0
	colQtyX    = 112.0
	colUnitX   = 132.0
	colAmountX = 162.0
	colDescW   = colQtyX - colDescX - 4

	descLineHeight = 5.0
	baseRowHeight  = 6.0
	rowGap         = 2.0

	pageBreakY = 270.0
)

// rowHeight is the vertical advance for a line-item row whose description
// wrapped to lineCount lines. A wrapped description grows the row; the
// separator line is drawn only after the full wrapped height so rows never
// overlap.
func rowHeight(lineCount int) float64 {
	h := float64(lineCount) * descLineHeight
	if h < baseRowHeight {
		return baseRowHeight
	}
	return h
}

// RenderPDF serializes an invoice into a printable PDF document: title,
// number and dates, From/To block, line-item table with wrapped
// description cells, total row, and a PAID stamp when the invoice is paid.
func RenderPDF(inv *Invoice, from *users.User, to *clients.Client) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	// Title
	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 14, "INVOICE", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Invoice details
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetX(tableLeft)
	pdf.CellFormat(0, 5, "Invoice #: "+inv.Number, "", 1, "L", false, 0, "")
	pdf.SetX(tableLeft)
	pdf.CellFormat(0, 5, "Date: "+inv.IssueDate.Format("Jan 2, 2006"), "", 1, "L", false, 0, "")
	pdf.SetX(tableLeft)
	pdf.CellFormat(0, 5, "Due: "+inv.DueDate.Format("Jan 2, 2006"), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	// From / To, two columns
	const rightColX = 110.0
	topY := pdf.GetY()

	pdf.SetXY(tableLeft, topY)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(80, 6, "From", "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(80, 5, from.Name, "", 2, "L", false, 0, "")
	pdf.CellFormat(80, 5, from.Email, "", 2, "L", false, 0, "")
	if from.Organization != "" {
		pdf.CellFormat(80, 5, from.Organization, "", 2, "L", false, 0, "")
	}
	leftEndY := pdf.GetY()

	pdf.SetXY(rightColX, topY)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(80, 6, "To", "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(80, 5, to.Name, "", 2, "L", false, 0, "")
	if to.Email != "" {
		pdf.CellFormat(80, 5, to.Email, "", 2, "L", false, 0, "")
	}
	if to.Company != "" {
		pdf.CellFormat(80, 5, to.Company, "", 2, "L", false, 0, "")
	}
	rightEndY := pdf.GetY()

	if leftEndY > rightEndY {
		pdf.SetY(leftEndY)
	} else {
		pdf.SetY(rightEndY)
	}
	pdf.Ln(8)

	// Line-item table header
	pdf.SetFont("Helvetica", "B", 10)
	headerY := pdf.GetY()
	pdf.SetXY(colDescX, headerY)
	pdf.CellFormat(colDescW, 6, "Description", "", 0, "L", false, 0, "")
	pdf.SetXY(colQtyX, headerY)
	pdf.CellFormat(18, 6, "Qty", "", 0, "L", false, 0, "")
	pdf.SetXY(colUnitX, headerY)
	pdf.CellFormat(28, 6, "Unit Price", "", 0, "L", false, 0, "")
	pdf.SetXY(colAmountX, headerY)
	pdf.CellFormat(28, 6, "Amount", "", 0, "L", false, 0, "")

	y := headerY + 7
	pdf.Line(tableLeft, y, tableRight, y)
	y += rowGap

	// Line-item rows. Each row advances by the wrapped-description height
	// before its separator line is drawn.
	pdf.SetFont("Helvetica", "", 9)
	for _, item := range inv.LineItems {
		lines := pdf.SplitText(item.Description, colDescW)
		rh := rowHeight(len(lines))

		if y+rh > pageBreakY {
			pdf.AddPage()
			y = 20
		}

		for i, line := range lines {
			pdf.SetXY(colDescX, y+float64(i)*descLineHeight)
			pdf.CellFormat(colDescW, descLineHeight, line, "", 0, "L", false, 0, "")
		}
		pdf.SetXY(colQtyX, y)
		pdf.CellFormat(18, descLineHeight, fmt.Sprintf("%d", item.Qty), "", 0, "L", false, 0, "")
		pdf.SetXY(colUnitX, y)
		pdf.CellFormat(28, descLineHeight, money.FormatUSD(item.UnitPriceCents), "", 0, "L", false, 0, "")
		pdf.SetXY(colAmountX, y)
		pdf.CellFormat(28, descLineHeight, money.FormatUSD(item.AmountCents()), "", 0, "L", false, 0, "")

		y += rh
		pdf.Line(tableLeft, y, tableRight, y)
		y += rowGap
	}

	// Total row reflects the stored total, not a recomputation.
	y += 6
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(colAmountX-22, y)
	pdf.CellFormat(20, 6, "Total:", "", 0, "R", false, 0, "")
	pdf.SetXY(colAmountX, y)
	pdf.CellFormat(28, 6, money.FormatUSD(inv.TotalCents), "", 0, "L", false, 0, "")

	if inv.Status == StatusPaid {
		pdf.SetY(y + 12)
		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetTextColor(0, 128, 0)
		pdf.CellFormat(0, 8, "PAID", "", 1, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}
