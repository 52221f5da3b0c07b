// Package reports builds read-side projections over the ledger and
// documents: the monthly food-cost statement and stock balances. All
// figures are recomputed from source rows on every call, nothing is
// cached.
package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"takoyaki/internal/core/apperror"
	"takoyaki/internal/core/id"
	"takoyaki/internal/core/types"
	"takoyaki/pkg/logger"
)

// Valuation is one posted monthly stocktake's food valuation total.
type Valuation struct {
	StocktakeID id.ID     `db:"stocktake_id"`
	TakenAt     time.Time `db:"taken_at"`
	Amount      types.Money `db:"amount"`
}

// PurchaseCost aggregates posted purchase lines over food items in a
// window. Unpriced lines are valued at the item's reference price;
// lines with neither price count as zero and show up in UnpricedLines
// without setting UsedReferencePrice.
type PurchaseCost struct {
	Amount             types.Money
	UsedReferencePrice bool
	UnpricedLines      int
}

// ItemBalance is one active item's on-hand quantity per location.
type ItemBalance struct {
	ItemID       id.ID   `db:"item_id" json:"itemId"`
	Code         string  `db:"code" json:"code"`
	Name         string  `db:"name" json:"name"`
	BaseUnit     string  `db:"base_unit" json:"baseUnit"`
	QtyStore     float64 `db:"qty_store" json:"qtyStore"`
	QtyWarehouse float64 `db:"qty_warehouse" json:"qtyWarehouse"`
	ReorderPoint float64 `db:"reorder_point" json:"reorderPoint"`
}

// Repository supplies the aggregates the report builders consume.
type Repository interface {
	// MonthlyValuations returns food valuation totals of all posted
	// MONTHLY stocktakes taken strictly before until, oldest first.
	MonthlyValuations(ctx context.Context, until time.Time) ([]Valuation, error)

	// FoodPurchaseCost totals posted purchase lines over food items
	// with document date in [from, to).
	FoodPurchaseCost(ctx context.Context, from, to time.Time) (PurchaseCost, error)

	// SalesTotal sums posted daily report sales with report date in
	// [from, to).
	SalesTotal(ctx context.Context, from, to time.Time) (types.Money, error)

	// StockBalances returns per-location ledger sums for every active
	// item.
	StockBalances(ctx context.Context) ([]ItemBalance, error)
}

// MonthlyFoodCost is the month-end food cost statement.
type MonthlyFoodCost struct {
	YearMonth   string    `json:"yearMonth"`
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`

	OpeningValuation types.Money `json:"openingValuation"`
	PurchaseCost     types.Money `json:"purchaseCost"`
	ClosingValuation types.Money `json:"closingValuation"`
	COGS             types.Money `json:"cogs"`
	Sales            types.Money `json:"sales"`

	// Ratio = COGS / Sales; only meaningful when HasRatio
	Ratio    types.Money `json:"ratio"`
	HasRatio bool        `json:"hasRatio"`

	IdealRatio types.Money `json:"idealRatio"`

	// DiffPP is (Ratio - IdealRatio) in percentage points
	DiffPP types.Money `json:"diffPp"`

	// VarianceAmount is COGS minus the ideal spend (Sales x IdealRatio)
	VarianceAmount types.Money `json:"varianceAmount"`

	MissingOpening     bool `json:"missingOpening"`
	MissingClosing     bool `json:"missingClosing"`
	UsedReferencePrice bool `json:"usedReferencePrice"`

	// UnpricedLines counts purchase lines valued without an actual
	// unit price in the window
	UnpricedLines int `json:"unpricedLines"`
}

// StockLine is one row of the stock balance report.
type StockLine struct {
	ItemBalance
	QtyTotal     float64 `json:"qtyTotal"`
	NeedsReorder bool    `json:"needsReorder"`
}

// DefaultIdealRatio is the target food cost share of sales.
const DefaultIdealRatio = "0.38"

type Service struct {
	repo       Repository
	idealRatio types.Money
}

// NewService creates a report service. A zero idealRatio falls back to
// the default target.
func NewService(repo Repository, idealRatio types.Money) *Service {
	if idealRatio.IsZero() {
		idealRatio = types.MustMoney(DefaultIdealRatio)
	}
	return &Service{repo: repo, idealRatio: idealRatio}
}

// MonthlyFoodCost builds the food cost statement for one calendar
// month given as "2006-01".
//
// Effective bounds follow the cutover rule: a boundary stocktake taken
// a little inside the month still anchors it. The period starts at the
// later of the month start and the opening stocktake, and ends at the
// earlier of the next month start and the closing stocktake.
func (s *Service) MonthlyFoodCost(ctx context.Context, yearMonth string) (*MonthlyFoodCost, error) {
	monthStart, err := time.Parse("2006-01", yearMonth)
	if err != nil {
		return nil, apperror.NewValidation(fmt.Sprintf("invalid year-month %q, expected YYYY-MM", yearMonth))
	}
	nextMonthStart := monthStart.AddDate(0, 1, 0)

	valuations, err := s.repo.MonthlyValuations(ctx, nextMonthStart)
	if err != nil {
		return nil, err
	}
	opening, closing := boundaryValuations(valuations, monthStart)

	report := &MonthlyFoodCost{
		YearMonth:   yearMonth,
		PeriodStart: monthStart,
		PeriodEnd:   nextMonthStart,
		IdealRatio:  s.idealRatio,
		Ratio:       types.Zero(),
		DiffPP:      types.Zero(),
	}

	if opening == nil {
		report.MissingOpening = true
		report.OpeningValuation = types.Zero()
	} else {
		report.OpeningValuation = opening.Amount
		if opening.TakenAt.After(monthStart) {
			report.PeriodStart = opening.TakenAt
		}
	}
	if closing == nil {
		report.MissingClosing = true
		report.ClosingValuation = types.Zero()
	} else {
		report.ClosingValuation = closing.Amount
		if closing.TakenAt.Before(nextMonthStart) {
			report.PeriodEnd = closing.TakenAt
		}
	}

	purchases, err := s.repo.FoodPurchaseCost(ctx, report.PeriodStart, report.PeriodEnd)
	if err != nil {
		return nil, err
	}
	report.PurchaseCost = purchases.Amount
	report.UsedReferencePrice = purchases.UsedReferencePrice
	report.UnpricedLines = purchases.UnpricedLines

	report.COGS = report.OpeningValuation.Add(purchases.Amount).Sub(report.ClosingValuation)

	// daily reports carry a date, not a time, so sales follow the
	// calendar month rather than the cutover bounds
	sales, err := s.repo.SalesTotal(ctx, monthStart, nextMonthStart)
	if err != nil {
		return nil, err
	}
	report.Sales = sales

	if sales.IsPositive() {
		report.HasRatio = true
		report.Ratio = report.COGS.Div(sales)
		report.DiffPP = report.Ratio.Sub(s.idealRatio).Mul(types.MustMoney("100"))
		report.VarianceAmount = report.COGS.Sub(sales.Mul(s.idealRatio))
	} else {
		report.VarianceAmount = report.COGS
	}

	logger.Debug(ctx, "monthly food cost built",
		"year_month", yearMonth,
		"cogs", report.COGS,
		"missing_opening", report.MissingOpening,
		"missing_closing", report.MissingClosing,
	)
	return report, nil
}

// boundaryValuations picks the opening and closing stocktakes for the
// month starting at monthStart from valuations ordered oldest first.
//
// The last stocktake before the month start opens it. If the previous
// boundary count slipped into the month itself, the first in-month
// stocktake opens it instead, provided a later in-month one exists to
// close it. A single in-month stocktake with no earlier history is the
// closing count of an initial month.
func boundaryValuations(valuations []Valuation, monthStart time.Time) (opening, closing *Valuation) {
	var before, inMonth []Valuation
	for i := range valuations {
		if valuations[i].TakenAt.Before(monthStart) {
			before = append(before, valuations[i])
		} else {
			inMonth = append(inMonth, valuations[i])
		}
	}

	switch {
	case len(inMonth) >= 2:
		opening = &inMonth[0]
		closing = &inMonth[len(inMonth)-1]
	case len(inMonth) == 1:
		closing = &inMonth[0]
		if len(before) > 0 {
			opening = &before[len(before)-1]
		}
	default:
		if len(before) > 0 {
			opening = &before[len(before)-1]
		}
	}
	return opening, closing
}

// StockBalance returns current on-hand quantities for every active
// item. Items at or below their reorder point sort first.
func (s *Service) StockBalance(ctx context.Context) ([]StockLine, error) {
	balances, err := s.repo.StockBalances(ctx)
	if err != nil {
		return nil, err
	}

	lines := make([]StockLine, len(balances))
	for i, b := range balances {
		total := b.QtyStore + b.QtyWarehouse
		lines[i] = StockLine{
			ItemBalance:  b,
			QtyTotal:     total,
			NeedsReorder: b.ReorderPoint > 0 && total <= b.ReorderPoint+types.QtyEpsilon,
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].NeedsReorder != lines[j].NeedsReorder {
			return lines[i].NeedsReorder
		}
		return lines[i].Name < lines[j].Name
	})
	return lines, nil
}

// ReorderAlerts returns only the items needing reorder.
func (s *Service) ReorderAlerts(ctx context.Context) ([]StockLine, error) {
	lines, err := s.StockBalance(ctx)
	if err != nil {
		return nil, err
	}

	alerts := lines[:0:0]
	for _, l := range lines {
		if l.NeedsReorder {
			alerts = append(alerts, l)
		}
	}
	return alerts, nil
}
