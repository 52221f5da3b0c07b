package costing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"takoyaki/internal/core/id"
	"takoyaki/internal/core/types"
)

type mockRepo struct {
	opening  *Opening
	totals   PurchaseTotals
	refPrice *types.Money

	// captured purchase window
	from, to time.Time
}

func (m *mockRepo) OpeningBalance(ctx context.Context, itemID id.ID, before time.Time) (*Opening, error) {
	return m.opening, nil
}

func (m *mockRepo) PurchaseActivity(ctx context.Context, itemID id.ID, from, to time.Time) (PurchaseTotals, error) {
	m.from, m.to = from, to
	return m.totals, nil
}

func (m *mockRepo) ReferencePrice(ctx context.Context, itemID id.ID) (types.Money, bool, error) {
	if m.refPrice == nil {
		return types.Zero(), false, nil
	}
	return *m.refPrice, true, nil
}

var (
	periodStart = time.Date(2026, 7, 1, 4, 0, 0, 0, time.UTC)
	periodEnd   = time.Date(2026, 8, 1, 4, 0, 0, 0, time.UTC)
)

func compute(t *testing.T, repo *mockRepo) Result {
	t.Helper()
	res, err := NewService(repo).WeightedAverageUnitCost(
		context.Background(), id.New(), periodStart, periodEnd)
	require.NoError(t, err)
	return res
}

func TestUnitCost_SinglePurchaseNoOpening(t *testing.T) {
	// 0 opening stock, one purchase of 10 units at unit price 5
	repo := &mockRepo{
		totals: PurchaseTotals{PricedQty: 10, PricedAmount: types.MustMoney("50")},
	}

	res := compute(t, repo)
	assert.True(t, res.UnitCost.Equal(types.MustMoney("5")), "got %s", res.UnitCost)
	assert.False(t, res.IsFallback)
	assert.True(t, res.Initial)
}

func TestUnitCost_BlendsOpeningAndPurchases(t *testing.T) {
	// opening qty=100 value=400 (cost 4.00); purchase 50 units at 6
	repo := &mockRepo{
		opening: &Opening{Qty: 100, UnitCost: types.MustMoney("4")},
		totals:  PurchaseTotals{PricedQty: 50, PricedAmount: types.MustMoney("300")},
	}

	res := compute(t, repo)

	// (400 + 300) / 150 = 4.6667
	want := types.MustMoney("700").Div(types.MustMoney("150"))
	assert.True(t, res.UnitCost.Equal(want), "got %s want %s", res.UnitCost, want)
	assert.False(t, res.Initial)
	assert.Equal(t, periodStart, repo.from, "non-initial periods bound purchases from below")
}

func TestUnitCost_BetweenExtremes(t *testing.T) {
	// the average never leaves [min, max] of the contributing costs
	repo := &mockRepo{
		opening: &Opening{Qty: 5, UnitCost: types.MustMoney("80")},
		totals:  PurchaseTotals{PricedQty: 3, PricedAmount: types.MustMoney("390")}, // 130/unit
	}

	res := compute(t, repo)
	assert.True(t, res.UnitCost.GreaterThanOrEqual(types.MustMoney("80")))
	assert.True(t, res.UnitCost.LessThanOrEqual(types.MustMoney("130")))
}

func TestUnitCost_InitialPeriodUsesAllHistory(t *testing.T) {
	repo := &mockRepo{
		totals: PurchaseTotals{PricedQty: 4, PricedAmount: types.MustMoney("500")},
	}

	res := compute(t, repo)
	assert.True(t, res.Initial)
	assert.True(t, repo.from.IsZero(), "initial period must not bound purchases from below")
	assert.Equal(t, periodEnd, repo.to)
	assert.True(t, res.UnitCost.Equal(types.MustMoney("125")))
}

func TestUnitCost_SubstitutesReferenceForUnpricedLines(t *testing.T) {
	ref := types.MustMoney("8")
	repo := &mockRepo{
		totals: PurchaseTotals{
			PricedQty:    10,
			PricedAmount: types.MustMoney("100"), // 10/unit
			UnpricedQty:  10,                     // valued at ref 8
		},
		refPrice: &ref,
	}

	res := compute(t, repo)

	// (100 + 10*8) / 20 = 9
	assert.True(t, res.UnitCost.Equal(types.MustMoney("9")), "got %s", res.UnitCost)
	assert.True(t, res.UsedReferencePrice)
	assert.False(t, res.IsFallback)
}

func TestUnitCostAsOf_WindowStartsAtPreviousStocktake(t *testing.T) {
	prev := time.Date(2026, 6, 30, 22, 0, 0, 0, time.UTC)
	repo := &mockRepo{
		opening: &Opening{Qty: 10, UnitCost: types.MustMoney("4"), TakenAt: prev},
		totals:  PurchaseTotals{PricedQty: 10, PricedAmount: types.MustMoney("60")},
	}

	asOf := time.Date(2026, 7, 31, 22, 0, 0, 0, time.UTC)
	res2, err := NewService(repo).UnitCostAsOf(context.Background(), id.New(), asOf)
	require.NoError(t, err)

	assert.Equal(t, prev, repo.from, "purchase window must open at the previous stocktake")
	assert.Equal(t, asOf, repo.to)
	// (10*4 + 60) / 20 = 5
	assert.True(t, res2.UnitCost.Equal(types.MustMoney("5")), "got %s", res2.UnitCost)
}

func TestUnitCost_FallsBackToReferencePrice(t *testing.T) {
	ref := types.MustMoney("42.50")
	repo := &mockRepo{
		opening:  &Opening{Qty: 0, UnitCost: types.Zero()},
		refPrice: &ref,
	}

	res := compute(t, repo)
	assert.True(t, res.IsFallback)
	assert.True(t, res.UnitCost.Equal(ref))
}

func TestUnitCost_ZeroWhenNoBasisAtAll(t *testing.T) {
	repo := &mockRepo{}

	res := compute(t, repo)
	assert.True(t, res.IsFallback)
	assert.True(t, res.UnitCost.IsZero())
}

func TestUnitCost_TinyDenominatorTreatedAsZero(t *testing.T) {
	ref := types.MustMoney("10")
	repo := &mockRepo{
		opening:  &Opening{Qty: 5e-10, UnitCost: types.MustMoney("99")},
		refPrice: &ref,
	}

	res := compute(t, repo)
	assert.True(t, res.IsFallback, "sub-epsilon stock must not divide")
	assert.True(t, res.UnitCost.Equal(ref))
}
