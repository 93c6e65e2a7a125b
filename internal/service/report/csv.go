package report

import (
	"encoding/csv"
	"io"

	"nimbus-pos/internal/format"
)

var csvHeader = []string{"Date", "Transaction ID", "Cashier", "Total Amount", "Tax Amount", "Payment Method", "Status"}

// WriteCSV writes one row per sale, newest first.
func (s *Service) WriteCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	scale := format.CurrencyScale(r.Currency)
	for _, sale := range r.Sales {
		row := []string{
			sale.CreatedAt.In(s.loc).Format("2006-01-02 15:04:05"),
			sale.ID,
			sale.CashierID,
			format.FromMinor(sale.TotalCents, r.Currency).StringFixed(scale),
			format.FromMinor(sale.TaxCents, r.Currency).StringFixed(scale),
			sale.PaymentMethod,
			sale.Status,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
