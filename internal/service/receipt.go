package service

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"club-commerce-backend/internal/apperr"
	"club-commerce-backend/internal/model"
)

// ReceiptArtifact is a rendered receipt ready to serve or attach.
type ReceiptArtifact struct {
	Filename string
	Bytes    []byte
}

// ReceiptGenerator renders an order into a PDF. Pure with respect to the
// store: it takes a fully resolved order and touches nothing else.
// Identical order data yields byte-identical output, so artifacts can be
// cached or regenerated on demand interchangeably; to that end the PDF
// creation timestamp is pinned and compression is off (receipts are a page
// long, and uncompressed streams keep the bytes inspectable).
type ReceiptGenerator struct {
	siteTitle string
	footer    string
}

func NewReceiptGenerator(siteTitle, footer string) *ReceiptGenerator {
	if siteTitle == "" {
		siteTitle = "Club Store"
	}
	return &ReceiptGenerator{siteTitle: siteTitle, footer: footer}
}

// pinnedDate keeps rendering deterministic; the order's own timestamps are
// what the receipt displays.
var pinnedDate = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

func (g *ReceiptGenerator) Generate(order *model.Order) (*ReceiptArtifact, error) {
	if order == nil || len(order.Items) == 0 {
		return nil, apperr.Validation("cannot render a receipt for an empty order")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(pinnedDate)
	pdf.SetModificationDate(pinnedDate)
	pdf.SetCompression(false)
	pdf.SetTitle("Receipt "+order.ReceiptNumber, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, g.siteTitle)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Receipt "+order.ReceiptNumber)
	pdf.Ln(6)
	pdf.Cell(0, 6, "Date: "+order.CreatedAt.UTC().Format("January 2, 2006"))
	pdf.Ln(6)
	name := order.CustomerName
	if name == "" {
		name = order.CustomerEmail
	}
	pdf.Cell(0, 6, "Billed to: "+name+" <"+order.CustomerEmail+">")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(90, 8, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(25, 8, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Unit price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, item := range order.Items {
		pdf.CellFormat(90, 8, item.Title, "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%d", item.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, formatCents(item.Price), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, formatCents(item.Price*int64(item.Quantity)), "", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(150, 8, "Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, formatCents(order.Total), "T", 1, "R", false, 0, "")

	if g.footer != "" {
		pdf.Ln(10)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.Cell(0, 6, g.footer)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}

	return &ReceiptArtifact{
		Filename: receiptFilename(order),
		Bytes:    buf.Bytes(),
	}, nil
}

func receiptFilename(order *model.Order) string {
	id := strings.ReplaceAll(order.ID, ".", "-")
	return "receipt-" + id + ".pdf"
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
