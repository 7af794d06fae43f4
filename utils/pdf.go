package utils

import (
	"fmt"
	"io"
	"strings"
	"time"

	"erpbackend/models"

	"github.com/go-pdf/fpdf"
	"go.mongodb.org/mongo-driver/bson"
)

// RenderPDF writes an A4 document for an invoice, quote or payment. Any other
// entity is refused.
func RenderPDF(entity string, doc bson.M, w io.Writer) error {
	var pdf *fpdf.Fpdf
	switch entity {
	case "invoice", "quote":
		var invoice models.Invoice
		if err := models.Decode(doc, &invoice); err != nil {
			return fmt.Errorf("decode %s: %w", entity, err)
		}
		pdf = newDocument(entity, invoice.ID.Hex(), fmt.Sprintf("%g/%g", invoice.Number, invoice.Year))
		renderInvoice(pdf, invoice)
	case "payment":
		var payment models.Payment
		if err := models.Decode(doc, &payment); err != nil {
			return fmt.Errorf("decode payment: %w", err)
		}
		pdf = newDocument(entity, payment.ID.Hex(), payment.Number)
		renderPayment(pdf, payment)
	default:
		return fmt.Errorf("no pdf layout for %q", entity)
	}

	if pdf.Err() {
		return fmt.Errorf("render %s pdf: %w", entity, pdf.Error())
	}
	return pdf.Output(w)
}

func newDocument(entity, id, number string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s %s", entity, id), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, strings.ToUpper(entity)+" # "+number)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 10)
	return pdf
}

func labelRow(pdf *fpdf.Fpdf, label, value string) {
	if value == "" {
		return
	}
	pdf.CellFormat(40, 6, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}

func amountRow(pdf *fpdf.Fpdf, label string, v float64) {
	pdf.CellFormat(150, 6, label, "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 6, money(v), "", 1, "R", false, 0, "")
}

func renderInvoice(pdf *fpdf.Fpdf, invoice models.Invoice) {
	labelRow(pdf, "Date", day(invoice.Date))
	labelRow(pdf, "Expire Date", day(invoice.ExpiredDate))
	labelRow(pdf, "Status", invoice.Status)
	labelRow(pdf, "Payment Status", invoice.PaymentStatus)
	if !invoice.Client.IsZero() {
		labelRow(pdf, "Client", invoice.Client.Hex())
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(90, 7, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, "Quantity", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "Price", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "Total", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range invoice.Items {
		pdf.CellFormat(90, 7, item.ItemName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%g", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, money(item.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, money(item.Total), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	amountRow(pdf, "Sub Total", invoice.SubTotal)
	amountRow(pdf, fmt.Sprintf("Tax (%g%%)", invoice.TaxRate), invoice.TaxTotal)
	if invoice.Discount != 0 {
		amountRow(pdf, "Discount", invoice.Discount)
	}
	amountRow(pdf, "Total", invoice.Total)
	if invoice.Credit != 0 {
		amountRow(pdf, "Paid", invoice.Credit)
	}
	if invoice.Notes != "" {
		pdf.Ln(4)
		pdf.MultiCell(0, 5, invoice.Notes, "", "L", false)
	}
}

func renderPayment(pdf *fpdf.Fpdf, payment models.Payment) {
	labelRow(pdf, "Date", day(payment.Date))
	labelRow(pdf, "Invoice", payment.Invoice.Hex())
	if !payment.Client.IsZero() {
		labelRow(pdf, "Client", payment.Client.Hex())
	}
	labelRow(pdf, "Reference", payment.Ref)
	labelRow(pdf, "Description", payment.Description)
	pdf.Ln(4)
	amountRow(pdf, "Amount Paid", payment.Amount)
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
