package report

import (
	"context"

	"nimbus-pos/internal/domain"

	"github.com/shopspring/decimal"
)

// Overview holds the headline sales figures of the store dashboard.
type Overview struct {
	TodaySales        decimal.Decimal `json:"todaySales"`
	TodayTransactions int             `json:"todayTransactions"`
	WeekSales         decimal.Decimal `json:"weekSales"`
	WeekTransactions  int             `json:"weekTransactions"`
}

// Overview summarizes today and the default trailing range.
func (s *Service) Overview(ctx context.Context, st domain.Store) (*Overview, error) {
	r, err := s.ParseRange("", "")
	if err != nil {
		return nil, err
	}
	rep, err := s.Sales(ctx, st, r)
	if err != nil {
		return nil, err
	}

	out := &Overview{
		TodaySales:       decimal.Zero,
		WeekSales:        rep.Summary.TotalSales,
		WeekTransactions: rep.Summary.TotalTransactions,
	}
	today := s.now().In(s.loc).Format(dateLayout)
	for _, b := range rep.Daily {
		if b.Date == today {
			out.TodaySales = b.Sales
			out.TodayTransactions = b.Transactions
		}
	}
	return out, nil
}
