package stocktake

import (
	"context"
	"testing"
	"time"

	"takoyaki/internal/core/apperror"
	"takoyaki/internal/core/entity"
	"takoyaki/internal/core/id"
	"takoyaki/internal/core/types"
	"takoyaki/internal/domain"
	"takoyaki/internal/domain/costing"
	"takoyaki/internal/domain/ledger"
	"takoyaki/pkg/numerator"

	"github.com/jackc/pgx/v5"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memLedger is an in-memory ledger.Repository honoring scoped sums and
// delete-by-reference, so re-posting behaves like the real register.
type memLedger struct {
	entries []entity.LedgerEntry
}

func (m *memLedger) Append(ctx context.Context, entries []entity.LedgerEntry) error {
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *memLedger) DeleteByReference(ctx context.Context, refType entity.RefType, refID id.ID, beforeVersion int) (int64, error) {
	var kept []entity.LedgerEntry
	var removed int64
	for _, e := range m.entries {
		if e.RefType == refType && e.RefID == refID && e.RefVersion < beforeVersion {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return removed, nil
}

func (m *memLedger) EntriesByReference(ctx context.Context, refType entity.RefType, refID id.ID) ([]entity.LedgerEntry, error) {
	var out []entity.LedgerEntry
	for _, e := range m.entries {
		if e.RefType == refType && e.RefID == refID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memLedger) SumQty(ctx context.Context, itemID id.ID, scope ledger.Scope) (float64, error) {
	sums, err := m.SumQtyByItem(ctx, scope)
	if err != nil {
		return 0, err
	}
	return sums[itemID], nil
}

func (m *memLedger) SumQtyByItem(ctx context.Context, scope ledger.Scope) (map[id.ID]float64, error) {
	out := make(map[id.ID]float64)
	for _, e := range m.entries {
		if scope.Location != nil && e.Location != *scope.Location {
			continue
		}
		if scope.AsOf != nil && e.HappenedAt.After(*scope.AsOf) {
			continue
		}
		out[e.ItemID] += e.QtyDelta
	}
	return out, nil
}

func (m *memLedger) History(ctx context.Context, itemID id.ID, from, to time.Time) ([]entity.LedgerEntry, error) {
	return nil, nil
}

// memRepo is an in-memory stocktake Repository.
type memRepo struct {
	docs  map[id.ID]*Stocktake
	lines map[id.ID][]Line
}

func newMemRepo() *memRepo {
	return &memRepo{docs: make(map[id.ID]*Stocktake), lines: make(map[id.ID][]Line)}
}

func (m *memRepo) Create(ctx context.Context, doc *Stocktake) error {
	m.docs[doc.ID] = doc
	return nil
}

func (m *memRepo) GetByID(ctx context.Context, docID id.ID) (*Stocktake, error) {
	doc, ok := m.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("stocktake", docID.String())
	}
	return doc, nil
}

func (m *memRepo) GetByNumber(ctx context.Context, number string) (*Stocktake, error) {
	return nil, apperror.NewNotFound("stocktake", number)
}

func (m *memRepo) Update(ctx context.Context, doc *Stocktake) error {
	m.docs[doc.ID] = doc
	return nil
}

func (m *memRepo) Delete(ctx context.Context, docID id.ID) error {
	delete(m.docs, docID)
	return nil
}

func (m *memRepo) GetLines(ctx context.Context, docID id.ID) ([]Line, error) {
	return m.lines[docID], nil
}

func (m *memRepo) SaveLines(ctx context.Context, docID id.ID, lines []Line) error {
	m.lines[docID] = lines
	return nil
}

func (m *memRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Stocktake], error) {
	return domain.ListResult[*Stocktake]{}, nil
}

// costingRepo values everything at a flat reference price.
type costingRepo struct {
	ref types.Money
}

func (r costingRepo) OpeningBalance(ctx context.Context, itemID id.ID, before time.Time) (*costing.Opening, error) {
	return nil, nil
}

func (r costingRepo) PurchaseActivity(ctx context.Context, itemID id.ID, from, to time.Time) (costing.PurchaseTotals, error) {
	return costing.PurchaseTotals{}, nil
}

func (r costingRepo) ReferencePrice(ctx context.Context, itemID id.ID) (types.Money, bool, error) {
	return r.ref, true, nil
}

type seqRow struct{ n int64 }

func (r *seqRow) Scan(dest ...any) error {
	if ptr, ok := dest[0].(*int64); ok {
		*ptr = r.n
	}
	return nil
}

type seqQuerier struct{ n int64 }

func (q *seqQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.n++
	return &seqRow{n: q.n}
}

func newTestService(led *memLedger, repo *memRepo) *Service {
	return NewService(
		repo,
		ledger.NewService(led),
		costing.NewService(costingRepo{ref: types.MustMoney("10")}),
		numerator.New(&seqQuerier{}),
		passthroughTx{},
		nil,
	)
}

func seedPurchase(led *memLedger, itemID id.ID, qty float64, at time.Time) {
	led.entries = append(led.entries, entity.NewLedgerEntry(
		entity.RefPurchase, id.New(), 1, at,
		itemID, entity.LocationStore, entity.MovementPurchase, qty, "",
	))
}

func TestPost_WritesAdjustmentsForDriftOnly(t *testing.T) {
	led := &memLedger{}
	repo := newMemRepo()
	svc := newTestService(led, repo)

	flour, octopus := id.New(), id.New()
	now := time.Now().UTC().Truncate(time.Second)
	seedPurchase(led, flour, 95, now.Add(-24*time.Hour))
	seedPurchase(led, octopus, 80, now.Add(-24*time.Hour))

	doc := New(ScopeWeekly, entity.LocationStore)
	doc.Date = now
	doc.AddLine(flour, 80)                 // drifted by -15
	doc.AddLine(octopus, 80.0000000001)    // sub-epsilon noise

	if err := svc.PostAndSave(context.Background(), doc); err != nil {
		t.Fatalf("post: %v", err)
	}

	adjusts, _ := led.EntriesByReference(context.Background(), entity.RefStocktake, doc.ID)
	if len(adjusts) != 1 {
		t.Fatalf("expected 1 ADJUST entry, got %d", len(adjusts))
	}
	if adjusts[0].ItemID != flour || adjusts[0].QtyDelta != -15 {
		t.Errorf("expected flour -15, got %+v", adjusts[0])
	}
	if adjusts[0].Type != entity.MovementAdjust {
		t.Errorf("expected ADJUST, got %s", adjusts[0].Type)
	}

	// lines carry reconciliation and valuation figures
	lines := repo.lines[doc.ID]
	if lines[0].TheoreticalQty != 95 || lines[0].DeltaQty != -15 {
		t.Errorf("line figures mismatch: %+v", lines[0])
	}
	if !lines[0].UnitCost.Equal(types.MustMoney("10")) {
		t.Errorf("expected reference-price valuation, got %s", lines[0].UnitCost)
	}
	if !lines[0].Amount.Equal(types.MustMoney("800")) {
		t.Errorf("expected amount 800, got %s", lines[0].Amount)
	}
	if !lines[0].CostIsFallback {
		t.Error("reference-price valuation must be flagged")
	}
}

func TestPost_ExactCountProducesNoEntries(t *testing.T) {
	led := &memLedger{}
	repo := newMemRepo()
	svc := newTestService(led, repo)

	item := id.New()
	now := time.Now().UTC().Truncate(time.Second)
	seedPurchase(led, item, 42, now.Add(-time.Hour))

	doc := New(ScopeMonthly, entity.LocationStore)
	doc.Date = now
	doc.AddLine(item, 42)

	if err := svc.PostAndSave(context.Background(), doc); err != nil {
		t.Fatalf("post: %v", err)
	}

	adjusts, _ := led.EntriesByReference(context.Background(), entity.RefStocktake, doc.ID)
	if len(adjusts) != 0 {
		t.Errorf("exact count must produce no adjustments, got %+v", adjusts)
	}
}

func TestPost_RepostIsIdempotent(t *testing.T) {
	led := &memLedger{}
	repo := newMemRepo()
	svc := newTestService(led, repo)

	item := id.New()
	now := time.Now().UTC().Truncate(time.Second)
	seedPurchase(led, item, 100, now.Add(-time.Hour))

	doc := New(ScopeMonthly, entity.LocationStore)
	doc.Date = now
	doc.AddLine(item, 90)

	if err := svc.PostAndSave(context.Background(), doc); err != nil {
		t.Fatalf("first post: %v", err)
	}
	if err := svc.Post(context.Background(), doc.ID); err != nil {
		t.Fatalf("second post: %v", err)
	}

	// the previous -10 adjustment was deleted before reconciling, so
	// theoretical is back to 100 and the same single -10 is re-written
	adjusts, _ := led.EntriesByReference(context.Background(), entity.RefStocktake, doc.ID)
	if len(adjusts) != 1 {
		t.Fatalf("expected exactly 1 adjustment after re-post, got %d", len(adjusts))
	}
	if adjusts[0].QtyDelta != -10 {
		t.Errorf("expected delta -10, got %v", adjusts[0].QtyDelta)
	}

	onHand, _ := led.SumQty(context.Background(), item, ledger.AtLocation(entity.LocationStore))
	if onHand != 90 {
		t.Errorf("expected on-hand 90 after re-post, got %v", onHand)
	}
}

func TestPost_ValidationRejectsBadLines(t *testing.T) {
	svc := newTestService(&memLedger{}, newMemRepo())

	doc := New(ScopeMonthly, entity.LocationStore)
	doc.AddLine(id.New(), -3)

	err := svc.PostAndSave(context.Background(), doc)
	if !apperror.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestUnpost_RemovesAdjustments(t *testing.T) {
	led := &memLedger{}
	repo := newMemRepo()
	svc := newTestService(led, repo)

	item := id.New()
	now := time.Now().UTC().Truncate(time.Second)
	seedPurchase(led, item, 100, now.Add(-time.Hour))

	doc := New(ScopeMonthly, entity.LocationStore)
	doc.Date = now
	doc.AddLine(item, 90)

	if err := svc.PostAndSave(context.Background(), doc); err != nil {
		t.Fatalf("post: %v", err)
	}
	if err := svc.Unpost(context.Background(), doc.ID); err != nil {
		t.Fatalf("unpost: %v", err)
	}

	adjusts, _ := led.EntriesByReference(context.Background(), entity.RefStocktake, doc.ID)
	if len(adjusts) != 0 {
		t.Errorf("unpost must remove all adjustments, got %+v", adjusts)
	}
	if repo.docs[doc.ID].Posted {
		t.Error("document must be unposted")
	}
}
