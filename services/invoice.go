package services

import "math"

// DefaultVATRate is the standard UK VAT rate applied when an invoice does not
// specify one.
const DefaultVATRate = 20.0

// InvoiceAmounts holds the derived VAT and gross figures for an invoice.
type InvoiceAmounts struct {
	NetAmount   float64 `json:"net_amount"`
	VATRate     float64 `json:"vat_rate"`
	VATAmount   float64 `json:"vat_amount"`
	GrossAmount float64 `json:"gross_amount"`
}

// CalcInvoiceAmounts derives VAT and gross from a net amount and rate, both
// rounded to pence.
func CalcInvoiceAmounts(net, vatRate float64) InvoiceAmounts {
	vat := roundPence(net * vatRate / 100)
	return InvoiceAmounts{
		NetAmount:   net,
		VATRate:     vatRate,
		VATAmount:   vat,
		GrossAmount: roundPence(net + vat),
	}
}

// roundPence rounds to 2 decimal places, half away from zero.
func roundPence(v float64) float64 {
	return math.Round(v*100) / 100
}
