package payment

import (
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/nekogravitycat/servicehub-backend/internal/booking"
)

func writeReceipt(w io.Writer, p *Payment, b *booking.Booking) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payment Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "PAYMENT RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	line := func(label, value string) {
		pdf.Cell(0, 7, fmt.Sprintf("%-16s: %s", label, value))
		pdf.Ln(7)
	}

	line("Receipt No", deref(p.TransactionID))
	line("Payment ID", p.ID)
	if p.CompletedAt != nil {
		line("Paid At", p.CompletedAt.UTC().Format("2006-01-02 15:04 MST"))
	}
	line("Method", string(p.Method))
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Service:")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 12)
	line("Service", orDash(b.ServiceName))
	line("Provider", orDash(b.ProviderName))
	line("Customer", orDash(b.CustomerName))
	line("Scheduled", b.BookingDate.UTC().Format(time.RFC1123))
	pdf.MultiCell(0, 6, "Address: "+orDash(b.ServiceAddress), "", "", false)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, fmt.Sprintf("Total: $%.2f", p.Amount))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Processed by "+gatewayName+".", "", "", false)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render receipt failed: %w", err)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
