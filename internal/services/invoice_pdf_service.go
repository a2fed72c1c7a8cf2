package services

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/jung-kurt/gofpdf/v2"

	"rentshop-backend/internal/billing"
	"rentshop-backend/internal/models"
	"rentshop-backend/internal/storage"
	"rentshop-backend/internal/timeutil"
)

// InvoicePDFService renders order invoices and archives them to R2.
type InvoicePDFService struct {
	archive *storage.R2Archive
}

func NewInvoicePDFService(archive *storage.R2Archive) *InvoicePDFService {
	return &InvoicePDFService{archive: archive}
}

// Generate renders the invoice PDF for an order snapshot and archives a copy.
// Archiving is best-effort; the PDF is returned either way.
func (s *InvoicePDFService) Generate(ctx context.Context, snap *models.OrderSnapshot) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	order := snap.Order

	// Header
	branchName := "Rental Invoice"
	if snap.Branch != nil {
		branchName = snap.Branch.Name
	}
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, branchName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	if snap.Branch != nil && snap.Branch.Address != "" {
		pdf.CellFormat(190, 6, snap.Branch.Address, "", 1, "C", false, 0, "")
	}
	if snap.Staff != nil && snap.Staff.GSTIN != "" {
		pdf.CellFormat(190, 6, fmt.Sprintf("GSTIN: %s", snap.Staff.GSTIN), "", 1, "C", false, 0, "")
	}
	pdf.Ln(3)

	// Invoice info box
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, fmt.Sprintf("Invoice %s", order.InvoiceNumber), "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Booking: %s", timeutil.FormatIST(order.BookingDate, timeutil.DisplayLayout)), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Status: %s", order.Status), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Period: %s to %s",
		timeutil.FormatIST(order.StartDate, timeutil.DateLayout),
		timeutil.FormatIST(order.EndDate, timeutil.DateLayout)), "LB", 0, "L", false, 0, "")
	if snap.Customer != nil {
		pdf.CellFormat(95, 7, fmt.Sprintf("Customer: %s (%s)", snap.Customer.Name, snap.Customer.Phone), "RB", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(95, 7, "", "RB", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	// Items table
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(80, 7, "Product", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 7, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Rate/Day", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 7, "Days", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Amount", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, it := range snap.Items {
		name := it.ProductName
		if len(name) > 38 {
			name = name[:35] + "..."
		}
		pdf.CellFormat(80, 6, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", it.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("Rs. %.2f", it.PricePerDay), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", it.Days), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("Rs. %.2f", it.LineTotal), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(3)

	// Amounts
	writeAmount := func(label string, amount float64, bold bool) {
		if bold {
			pdf.SetFont("Arial", "B", 11)
		} else {
			pdf.SetFont("Arial", "", 11)
		}
		pdf.CellFormat(150, 7, label, "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("Rs. %.2f", amount), "1", 1, "R", false, 0, "")
	}

	writeAmount("Subtotal", order.Subtotal, false)
	if order.GSTAmount > 0 {
		label := "GST"
		if snap.Staff != nil && snap.Staff.GSTIncluded {
			label = "GST (included)"
		}
		writeAmount(label, order.GSTAmount, false)
	}
	if order.DamageFeeTotal > 0 {
		writeAmount("Damage charges", order.DamageFeeTotal, false)
	}
	if order.LateFee > 0 {
		writeAmount("Late fee", order.LateFee, false)
	}
	if order.DiscountAmount > 0 {
		writeAmount("Discount", -order.DiscountAmount, false)
	}
	writeAmount("Total", order.TotalAmount, true)

	if order.SecurityDepositAmount > 0 {
		pdf.Ln(2)
		pdf.SetFont("Arial", "", 10)
		depositNote := fmt.Sprintf("Security deposit: Rs. %.2f", order.SecurityDepositAmount)
		if order.SecurityDepositRefunded {
			depositNote += fmt.Sprintf(" (refunded Rs. %.2f)", order.SecurityDepositRefundedAmount)
		} else if order.SecurityDepositCollected {
			depositNote += " (held)"
		}
		pdf.CellFormat(190, 6, depositNote, "", 1, "L", false, 0, "")
	}

	outstanding := billing.Outstanding(order)
	if outstanding > 0 {
		pdf.SetFillColor(255, 200, 200)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(190, 9, fmt.Sprintf("Outstanding: Rs. %.2f", outstanding), "1", 1, "C", true, 0, "")
	}

	// UPI collection line
	if snap.Staff != nil && snap.Staff.UPIID != "" {
		pdf.Ln(3)
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(190, 6, fmt.Sprintf("Pay via UPI: %s", snap.Staff.UPIID), "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("invoice pdf render failed: %w", err)
	}

	if err := s.archive.StoreInvoice(ctx, order.InvoiceNumber, buf.Bytes()); err != nil {
		log.Printf("[Invoice] archive failed for %s: %v", order.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}
