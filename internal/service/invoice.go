package service

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"ridebook/internal/domain"
)

// InvoiceData is everything that appears on a payment invoice.
type InvoiceData struct {
	InvoiceNumber string
	TransactionID string
	CustomerName  string
	CustomerEmail string
	ProductTitle  string
	GuestCount    int
	Amount        float64
	Currency      string
	PaidAt        time.Time
}

// DocumentRenderer renders an invoice document.
type DocumentRenderer interface {
	Render(data InvoiceData) ([]byte, error)
}

// BlobStore uploads generated documents and returns their public location.
type BlobStore interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

const invoiceTemplate = `=====================================
            RIDEBOOK INVOICE
=====================================
Invoice:      {{.InvoiceNumber}}
Transaction:  {{.TransactionID}}
Date:         {{.PaidAt.Format "2006-01-02 15:04:05"}}

Billed To:    {{.CustomerName}} <{{.CustomerEmail}}>
Item:         {{.ProductTitle}}
{{- if gt .GuestCount 0}}
Guests:       {{.GuestCount}}
{{- end}}

-------------------------------------
TOTAL:        {{printf "%.2f" .Amount}} {{.Currency}}
-------------------------------------
Status:       PAID

Thank you for riding with us.
=====================================
`

// TextInvoiceRenderer renders plain-text invoices from a template.
type TextInvoiceRenderer struct {
	tmpl *template.Template
}

// NewTextInvoiceRenderer creates a TextInvoiceRenderer.
func NewTextInvoiceRenderer() *TextInvoiceRenderer {
	return &TextInvoiceRenderer{
		tmpl: template.Must(template.New("invoice").Parse(invoiceTemplate)),
	}
}

var _ DocumentRenderer = (*TextInvoiceRenderer)(nil)

// Render renders the invoice.
func (r *TextInvoiceRenderer) Render(data InvoiceData) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render invoice: %w", err)
	}
	return buf.Bytes(), nil
}

// invoiceData assembles invoice fields for a settled payment.
func invoiceData(payment *domain.Payment, user *domain.User, productTitle string, guestCount int) InvoiceData {
	return InvoiceData{
		InvoiceNumber: "INV-" + payment.ID[:8],
		TransactionID: payment.TransactionID,
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
		ProductTitle:  productTitle,
		GuestCount:    guestCount,
		Amount:        payment.Amount,
		Currency:      "BDT",
		PaidAt:        time.Now(),
	}
}
