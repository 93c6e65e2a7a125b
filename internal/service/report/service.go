package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"nimbus-pos/internal/domain"
	"nimbus-pos/internal/format"

	"github.com/shopspring/decimal"
)

const (
	dateLayout   = "2006-01-02"
	labelLayout  = "Jan 02"
	defaultRange = 7 * 24 * time.Hour
)

type saleSource interface {
	ListByRange(ctx context.Context, storeID string, from, to time.Time) ([]domain.Sale, error)
}

type Service struct {
	sales saleSource
	loc   *time.Location
	now   func() time.Time
}

func New(sales saleSource, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{sales: sales, loc: loc, now: time.Now}
}

// Range is an inclusive span of calendar days.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type Summary struct {
	TotalSales         decimal.Decimal `json:"totalSales"`
	TotalTransactions  int             `json:"totalTransactions"`
	AverageTransaction decimal.Decimal `json:"averageTransaction"`
	UniqueCashiers     int             `json:"uniqueCashiers"`
}

type DayBucket struct {
	Date         string          `json:"date"`
	Label        string          `json:"label"`
	Sales        decimal.Decimal `json:"sales"`
	Transactions int             `json:"transactions"`
}

type Report struct {
	StoreID  string        `json:"storeId"`
	Currency string        `json:"currency"`
	Range    Range         `json:"range"`
	Summary  Summary       `json:"summary"`
	Daily    []DayBucket   `json:"daily"`
	Sales    []domain.Sale `json:"sales"`
}

// ParseRange reads YYYY-MM-DD bounds. Missing bounds default to the last seven days.
func (s *Service) ParseRange(start, end string) (Range, error) {
	now := s.now().In(s.loc)
	r := Range{Start: now.Add(-defaultRange), End: now}

	if v := strings.TrimSpace(start); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, s.loc)
		if err != nil {
			return Range{}, fmt.Errorf("%w: start date %q", domain.ErrInvalidInput, v)
		}
		r.Start = t
	}
	if v := strings.TrimSpace(end); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, s.loc)
		if err != nil {
			return Range{}, fmt.Errorf("%w: end date %q", domain.ErrInvalidInput, v)
		}
		r.End = t
	}

	r.Start = startOfDay(r.Start)
	r.End = endOfDay(r.End)
	if r.End.Before(r.Start) {
		return Range{}, fmt.Errorf("%w: end date before start date", domain.ErrInvalidInput)
	}
	return r, nil
}

// Sales aggregates the store's sales within r.
func (s *Service) Sales(ctx context.Context, st domain.Store, r Range) (*Report, error) {
	sales, err := s.sales.ListByRange(ctx, st.ID, r.Start, r.End)
	if err != nil {
		return nil, err
	}
	return s.build(st, r, sales), nil
}

func (s *Service) build(st domain.Store, r Range, sales []domain.Sale) *Report {
	rep := &Report{
		StoreID:  st.ID,
		Currency: st.Currency,
		Range:    r,
		Sales:    sales,
		Daily:    []DayBucket{},
	}
	if rep.Sales == nil {
		rep.Sales = []domain.Sale{}
	}

	total := decimal.Zero
	cashiers := make(map[string]struct{})
	buckets := make(map[string]*DayBucket)
	for _, sale := range sales {
		amount := format.FromMinor(sale.TotalCents, st.Currency)
		total = total.Add(amount)
		cashiers[sale.CashierID] = struct{}{}

		day := sale.CreatedAt.In(s.loc)
		key := day.Format(dateLayout)
		b, ok := buckets[key]
		if !ok {
			b = &DayBucket{Date: key, Label: day.Format(labelLayout), Sales: decimal.Zero}
			buckets[key] = b
		}
		b.Sales = b.Sales.Add(amount)
		b.Transactions++
	}

	rep.Summary = Summary{
		TotalSales:         total,
		TotalTransactions:  len(sales),
		AverageTransaction: decimal.Zero,
		UniqueCashiers:     len(cashiers),
	}
	if len(sales) > 0 {
		rep.Summary.AverageTransaction = format.Round(total.Div(decimal.NewFromInt(int64(len(sales)))), st.Currency)
	}

	for _, b := range buckets {
		rep.Daily = append(rep.Daily, *b)
	}
	sort.Slice(rep.Daily, func(i, j int) bool { return rep.Daily[i].Date < rep.Daily[j].Date })
	return rep
}

// Filename is the suggested download name of the CSV export.
func (r *Report) Filename() string {
	return fmt.Sprintf("sales-report-%s-to-%s.csv", r.Range.Start.Format(dateLayout), r.Range.End.Format(dateLayout))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
