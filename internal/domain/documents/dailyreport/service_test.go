package dailyreport

import (
	"context"
	"testing"
	"time"

	"takoyaki/internal/core/apperror"
	"takoyaki/internal/core/entity"
	"takoyaki/internal/core/id"
	"takoyaki/internal/core/types"
	"takoyaki/internal/domain"
	"takoyaki/internal/domain/catalogs/recipe"
	"takoyaki/internal/domain/ledger"
	"takoyaki/pkg/numerator"

	"github.com/jackc/pgx/v5"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

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

type memRepo struct {
	docs map[id.ID]*DailyReport
}

func newMemRepo() *memRepo {
	return &memRepo{docs: make(map[id.ID]*DailyReport)}
}

func (m *memRepo) Create(ctx context.Context, doc *DailyReport) error {
	m.docs[doc.ID] = doc
	return nil
}

func (m *memRepo) GetByID(ctx context.Context, docID id.ID) (*DailyReport, error) {
	doc, ok := m.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("daily report", docID.String())
	}
	return doc, nil
}

func (m *memRepo) GetByDate(ctx context.Context, reportDate time.Time) (*DailyReport, error) {
	for _, doc := range m.docs {
		if doc.ReportDate.Equal(reportDate) {
			return doc, nil
		}
	}
	return nil, apperror.NewNotFound("daily report", reportDate.Format("2006-01-02"))
}

func (m *memRepo) Update(ctx context.Context, doc *DailyReport) error {
	m.docs[doc.ID] = doc
	return nil
}

func (m *memRepo) Delete(ctx context.Context, docID id.ID) error {
	delete(m.docs, docID)
	return nil
}

func (m *memRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*DailyReport], error) {
	return domain.ListResult[*DailyReport]{}, nil
}

type fixedConfig struct {
	cfg *recipe.BatchConfig
	err error
}

func (f fixedConfig) GetActive(ctx context.Context) (*recipe.BatchConfig, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.cfg, nil
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

// standardConfig: 8 pieces per batch, flour 0.5/batch, napa 0.3/batch
// auto-consumed, skewers counted by hand.
func standardConfig(flour, napa, skewers id.ID) *recipe.BatchConfig {
	cfg := recipe.NewBatchConfig("RCP-001", "Standard batch", 8)
	cfg.Active = true
	cfg.Rows = []recipe.Row{
		{ID: id.New(), ItemID: flour, QtyPerBatch: 0.5, AutoConsume: true},
		{ID: id.New(), ItemID: napa, QtyPerBatch: 0.3, AutoConsume: true},
		{ID: id.New(), ItemID: skewers, QtyPerBatch: 8, AutoConsume: false},
	}
	return cfg
}

func newTestService(led *memLedger, repo *memRepo, configs ConfigSource) *Service {
	return NewService(
		repo,
		ledger.NewService(led),
		configs,
		numerator.New(&seqQuerier{}),
		passthroughTx{},
		nil,
	)
}

func TestPostAndSave_DerivesConsumeAndWaste(t *testing.T) {
	led := &memLedger{}
	repo := newMemRepo()
	flour, napa, skewers := id.New(), id.New(), id.New()
	svc := newTestService(led, repo, fixedConfig{cfg: standardConfig(flour, napa, skewers)})

	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	doc := New(day)
	doc.SoldBatches = 20
	doc.WastePieces = 16 // two batches worth at 8 pieces/batch
	doc.SalesAmount = types.MustMoney("96000")

	if err := svc.PostAndSave(context.Background(), doc); err != nil {
		t.Fatalf("post: %v", err)
	}

	entries, _ := led.EntriesByReference(context.Background(), entity.RefDailyReport, doc.ID)
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries (consume+waste for 2 auto items), got %d", len(entries))
	}

	byKey := make(map[string]float64)
	for _, e := range entries {
		if e.Location != entity.LocationStore {
			t.Errorf("expected STORE location, got %s", e.Location)
		}
		if !e.HappenedAt.Equal(day) {
			t.Errorf("expected entries dated %v, got %v", day, e.HappenedAt)
		}
		byKey[e.ItemID.String()+"/"+string(e.Type)] = e.QtyDelta
	}

	if got := byKey[flour.String()+"/"+string(entity.MovementConsume)]; got != -10 {
		t.Errorf("flour consume: expected -10, got %v", got)
	}
	if got := byKey[flour.String()+"/"+string(entity.MovementWaste)]; got != -1 {
		t.Errorf("flour waste: expected -1, got %v", got)
	}
	if got := byKey[napa.String()+"/"+string(entity.MovementConsume)]; got != -6 {
		t.Errorf("napa consume: expected -6, got %v", got)
	}
	if _, ok := byKey[skewers.String()+"/"+string(entity.MovementConsume)]; ok {
		t.Error("hand-counted item must not be auto-consumed")
	}

	if !doc.Posted {
		t.Error("expected document marked posted")
	}
	if _, ok := repo.docs[doc.ID]; !ok {
		t.Error("expected document persisted")
	}
}

func TestPostAndSave_RepostReplacesFootprint(t *testing.T) {
	led := &memLedger{}
	repo := newMemRepo()
	flour, napa, skewers := id.New(), id.New(), id.New()
	svc := newTestService(led, repo, fixedConfig{cfg: standardConfig(flour, napa, skewers)})

	doc := New(time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC))
	doc.SoldBatches = 10
	if err := svc.PostAndSave(context.Background(), doc); err != nil {
		t.Fatalf("first post: %v", err)
	}

	// operator corrects the figure and re-posts
	doc.SoldBatches = 12
	doc.Touch()
	if err := svc.PostAndSave(context.Background(), doc); err != nil {
		t.Fatalf("second post: %v", err)
	}

	entries, _ := led.EntriesByReference(context.Background(), entity.RefDailyReport, doc.ID)
	if len(entries) != 2 {
		t.Fatalf("expected stale entries replaced, got %d entries", len(entries))
	}
	for _, e := range entries {
		if e.RefVersion != doc.PostedVersion {
			t.Errorf("expected all entries at version %d, got %d", doc.PostedVersion, e.RefVersion)
		}
	}

	onHand, _ := led.SumQty(context.Background(), flour, ledger.AtLocation(entity.LocationStore))
	if onHand != -6 {
		t.Errorf("flour on hand: expected -6 (12 batches x 0.5), got %v", onHand)
	}
}

func TestPostAndSave_IdenticalFiguresAreIdempotent(t *testing.T) {
	led := &memLedger{}
	repo := newMemRepo()
	flour, napa, skewers := id.New(), id.New(), id.New()
	svc := newTestService(led, repo, fixedConfig{cfg: standardConfig(flour, napa, skewers)})

	doc := New(time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC))
	doc.SoldBatches = 15

	if err := svc.PostAndSave(context.Background(), doc); err != nil {
		t.Fatalf("first post: %v", err)
	}
	if err := svc.Post(context.Background(), doc.ID); err != nil {
		t.Fatalf("re-post: %v", err)
	}

	entries, _ := led.EntriesByReference(context.Background(), entity.RefDailyReport, doc.ID)
	if len(entries) != 2 {
		t.Fatalf("expected exactly 2 entries after re-post, got %d", len(entries))
	}
	onHand, _ := led.SumQty(context.Background(), flour, ledger.AtLocation(entity.LocationStore))
	if onHand != -7.5 {
		t.Errorf("flour on hand: expected -7.5, got %v", onHand)
	}
}

func TestCreate_RejectsDuplicateDate(t *testing.T) {
	led := &memLedger{}
	repo := newMemRepo()
	flour, napa, skewers := id.New(), id.New(), id.New()
	svc := newTestService(led, repo, fixedConfig{cfg: standardConfig(flour, napa, skewers)})

	day := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)
	if err := svc.Create(context.Background(), New(day)); err != nil {
		t.Fatalf("first create: %v", err)
	}

	err := svc.Create(context.Background(), New(day))
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeDuplicateReport {
		t.Fatalf("expected duplicate report error, got %v", err)
	}
}

func TestPost_NoActiveConfigSurfaces(t *testing.T) {
	led := &memLedger{}
	repo := newMemRepo()
	cfgErr := apperror.NewBusinessRule(apperror.CodeNoActiveBatchConf, "no active batch configuration")
	svc := newTestService(led, repo, fixedConfig{err: cfgErr})

	doc := New(time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC))
	doc.SoldBatches = 5

	err := svc.PostAndSave(context.Background(), doc)
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeNoActiveBatchConf {
		t.Fatalf("expected no-active-config error, got %v", err)
	}
	if doc.Posted {
		t.Error("document must not be marked posted when config lookup fails")
	}
	if len(led.entries) != 0 {
		t.Errorf("expected no entries written, got %d", len(led.entries))
	}
}

func TestPost_ZeroDayWritesNoEntries(t *testing.T) {
	led := &memLedger{}
	repo := newMemRepo()
	flour, napa, skewers := id.New(), id.New(), id.New()
	svc := newTestService(led, repo, fixedConfig{cfg: standardConfig(flour, napa, skewers)})

	doc := New(time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC))
	if err := svc.PostAndSave(context.Background(), doc); err != nil {
		t.Fatalf("post: %v", err)
	}

	if len(led.entries) != 0 {
		t.Errorf("expected no entries for a zero day, got %d", len(led.entries))
	}
	if !doc.Posted {
		t.Error("zero day still posts the document")
	}
}

func TestUnpost_RemovesDerivedEntries(t *testing.T) {
	led := &memLedger{}
	repo := newMemRepo()
	flour, napa, skewers := id.New(), id.New(), id.New()
	svc := newTestService(led, repo, fixedConfig{cfg: standardConfig(flour, napa, skewers)})

	doc := New(time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC))
	doc.SoldBatches = 10
	if err := svc.PostAndSave(context.Background(), doc); err != nil {
		t.Fatalf("post: %v", err)
	}
	if err := svc.Unpost(context.Background(), doc.ID); err != nil {
		t.Fatalf("unpost: %v", err)
	}

	if doc.Posted {
		t.Error("expected document unposted")
	}
	if len(led.entries) != 0 {
		t.Errorf("expected entries removed on unpost, got %d", len(led.entries))
	}
}
