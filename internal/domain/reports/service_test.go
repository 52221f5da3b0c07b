package reports

import (
	"context"
	"testing"
	"time"

	"takoyaki/internal/core/apperror"
	"takoyaki/internal/core/id"
	"takoyaki/internal/core/types"
)

type mockRepo struct {
	valuations []Valuation
	purchases  PurchaseCost
	sales      types.Money
	balances   []ItemBalance

	purchaseFrom, purchaseTo time.Time
}

func (m *mockRepo) MonthlyValuations(ctx context.Context, until time.Time) ([]Valuation, error) {
	var out []Valuation
	for _, v := range m.valuations {
		if v.TakenAt.Before(until) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *mockRepo) FoodPurchaseCost(ctx context.Context, from, to time.Time) (PurchaseCost, error) {
	m.purchaseFrom, m.purchaseTo = from, to
	return m.purchases, nil
}

func (m *mockRepo) SalesTotal(ctx context.Context, from, to time.Time) (types.Money, error) {
	return m.sales, nil
}

func (m *mockRepo) StockBalances(ctx context.Context) ([]ItemBalance, error) {
	return m.balances, nil
}

func date(y int, m time.Month, d, hh int) time.Time {
	return time.Date(y, m, d, hh, 0, 0, 0, time.UTC)
}

func TestMonthlyFoodCost_RatioAndVariance(t *testing.T) {
	// sales 100000, COGS 38500: opening 12000 + purchases 40000 - closing 13500
	repo := &mockRepo{
		valuations: []Valuation{
			{StocktakeID: id.New(), TakenAt: date(2026, 7, 31, 22), Amount: types.MustMoney("12000")},
			{StocktakeID: id.New(), TakenAt: date(2026, 8, 31, 22), Amount: types.MustMoney("13500")},
		},
		purchases: PurchaseCost{Amount: types.MustMoney("40000")},
		sales:     types.MustMoney("100000"),
	}
	svc := NewService(repo, types.Zero())

	report, err := svc.MonthlyFoodCost(context.Background(), "2026-08")
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if !report.COGS.Equal(types.MustMoney("38500")) {
		t.Errorf("COGS: expected 38500, got %s", report.COGS)
	}
	if !report.HasRatio {
		t.Fatal("expected ratio defined for positive sales")
	}
	if !report.Ratio.Equal(types.MustMoney("0.385")) {
		t.Errorf("ratio: expected 0.385, got %s", report.Ratio)
	}
	if !report.DiffPP.Equal(types.MustMoney("0.5")) {
		t.Errorf("diff_pp: expected 0.5, got %s", report.DiffPP)
	}
	// ideal spend 38000, actual 38500
	if !report.VarianceAmount.Equal(types.MustMoney("500")) {
		t.Errorf("variance: expected 500, got %s", report.VarianceAmount)
	}
	if report.MissingOpening || report.MissingClosing {
		t.Error("expected both boundary stocktakes present")
	}
	if report.UsedReferencePrice {
		t.Error("expected no reference price substitution")
	}
}

func TestMonthlyFoodCost_CutoverBounds(t *testing.T) {
	// opening count slipped into Aug 1 morning, closing done Aug 31
	// evening: the purchase window must shrink to those timestamps
	opening := date(2026, 8, 1, 9)
	closing := date(2026, 8, 31, 21)
	repo := &mockRepo{
		valuations: []Valuation{
			{StocktakeID: id.New(), TakenAt: date(2026, 6, 30, 22), Amount: types.MustMoney("9000")},
			{StocktakeID: id.New(), TakenAt: opening, Amount: types.MustMoney("10000")},
			{StocktakeID: id.New(), TakenAt: closing, Amount: types.MustMoney("11000")},
		},
		purchases: PurchaseCost{Amount: types.MustMoney("5000")},
		sales:     types.MustMoney("20000"),
	}
	svc := NewService(repo, types.Zero())

	report, err := svc.MonthlyFoodCost(context.Background(), "2026-08")
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if !report.PeriodStart.Equal(opening) {
		t.Errorf("period start: expected %v, got %v", opening, report.PeriodStart)
	}
	if !report.PeriodEnd.Equal(closing) {
		t.Errorf("period end: expected %v, got %v", closing, report.PeriodEnd)
	}
	if !repo.purchaseFrom.Equal(opening) || !repo.purchaseTo.Equal(closing) {
		t.Errorf("purchase window: expected [%v, %v), got [%v, %v)",
			opening, closing, repo.purchaseFrom, repo.purchaseTo)
	}
	// opening 10000 + purchases 5000 - closing 11000
	if !report.COGS.Equal(types.MustMoney("4000")) {
		t.Errorf("COGS: expected 4000, got %s", report.COGS)
	}
}

func TestMonthlyFoodCost_MissingStocktakesFlagged(t *testing.T) {
	repo := &mockRepo{
		purchases: PurchaseCost{Amount: types.MustMoney("7500"), UsedReferencePrice: true},
		sales:     types.Zero(),
	}
	svc := NewService(repo, types.Zero())

	report, err := svc.MonthlyFoodCost(context.Background(), "2026-08")
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if !report.MissingOpening || !report.MissingClosing {
		t.Error("expected both boundary stocktakes flagged missing")
	}
	if !report.COGS.Equal(types.MustMoney("7500")) {
		t.Errorf("COGS without boundaries is purchases alone, got %s", report.COGS)
	}
	if report.HasRatio {
		t.Error("ratio undefined without sales")
	}
	if !report.UsedReferencePrice {
		t.Error("expected reference price flag propagated")
	}
	if !report.PeriodStart.Equal(date(2026, 8, 1, 0)) || !report.PeriodEnd.Equal(date(2026, 9, 1, 0)) {
		t.Errorf("expected calendar month bounds, got [%v, %v)", report.PeriodStart, report.PeriodEnd)
	}
}

func TestMonthlyFoodCost_UnpricedWithoutReferencePrice(t *testing.T) {
	// lines with neither unit price nor reference price count as zero:
	// the hole is reported, not papered over as a substitution
	repo := &mockRepo{
		purchases: PurchaseCost{
			Amount:             types.MustMoney("3000"),
			UsedReferencePrice: false,
			UnpricedLines:      2,
		},
		sales: types.MustMoney("10000"),
	}
	svc := NewService(repo, types.Zero())

	report, err := svc.MonthlyFoodCost(context.Background(), "2026-08")
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if report.UsedReferencePrice {
		t.Error("no substitution happened, flag must stay false")
	}
	if report.UnpricedLines != 2 {
		t.Errorf("expected 2 unpriced lines surfaced, got %d", report.UnpricedLines)
	}
}

func TestMonthlyFoodCost_InitialMonthSingleStocktakeCloses(t *testing.T) {
	repo := &mockRepo{
		valuations: []Valuation{
			{StocktakeID: id.New(), TakenAt: date(2026, 8, 31, 20), Amount: types.MustMoney("6000")},
		},
		purchases: PurchaseCost{Amount: types.MustMoney("15000")},
		sales:     types.MustMoney("30000"),
	}
	svc := NewService(repo, types.Zero())

	report, err := svc.MonthlyFoodCost(context.Background(), "2026-08")
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if !report.MissingOpening {
		t.Error("expected missing opening in the initial month")
	}
	if report.MissingClosing {
		t.Error("expected the single stocktake to close the month")
	}
	// 0 + 15000 - 6000
	if !report.COGS.Equal(types.MustMoney("9000")) {
		t.Errorf("COGS: expected 9000, got %s", report.COGS)
	}
}

func TestMonthlyFoodCost_RejectsBadYearMonth(t *testing.T) {
	svc := NewService(&mockRepo{}, types.Zero())
	_, err := svc.MonthlyFoodCost(context.Background(), "August 2026")
	if !apperror.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStockBalance_ReorderSortsFirst(t *testing.T) {
	repo := &mockRepo{
		balances: []ItemBalance{
			{ItemID: id.New(), Name: "Flour", QtyStore: 12, QtyWarehouse: 30, ReorderPoint: 10},
			{ItemID: id.New(), Name: "Octopus", QtyStore: 2, QtyWarehouse: 1, ReorderPoint: 5},
			{ItemID: id.New(), Name: "Aonori", QtyStore: 0.5, QtyWarehouse: 0, ReorderPoint: 1},
			{ItemID: id.New(), Name: "Skewers", QtyStore: 500, QtyWarehouse: 0, ReorderPoint: 0},
		},
	}
	svc := NewService(repo, types.Zero())

	lines, err := svc.StockBalance(context.Background())
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}

	if lines[0].Name != "Aonori" || lines[1].Name != "Octopus" {
		t.Errorf("expected low-stock items first, got %s, %s", lines[0].Name, lines[1].Name)
	}
	if !lines[0].NeedsReorder || !lines[1].NeedsReorder {
		t.Error("expected low-stock items flagged")
	}
	if lines[2].NeedsReorder || lines[3].NeedsReorder {
		t.Error("expected in-stock items unflagged")
	}
	if lines[1].QtyTotal != 3 {
		t.Errorf("octopus total: expected 3, got %v", lines[1].QtyTotal)
	}
	// zero reorder point never alerts
	if lines[3].Name != "Skewers" || lines[3].NeedsReorder {
		t.Error("zero reorder point must not alert")
	}
}

func TestReorderAlerts_FiltersInStock(t *testing.T) {
	repo := &mockRepo{
		balances: []ItemBalance{
			{ItemID: id.New(), Name: "Flour", QtyStore: 50, ReorderPoint: 10},
			{ItemID: id.New(), Name: "Octopus", QtyStore: 4, ReorderPoint: 5},
		},
	}
	svc := NewService(repo, types.Zero())

	alerts, err := svc.ReorderAlerts(context.Background())
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Name != "Octopus" {
		t.Fatalf("expected only octopus, got %+v", alerts)
	}
}
