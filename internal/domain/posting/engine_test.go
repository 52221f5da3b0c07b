package posting

import (
	"context"
	"errors"
	"testing"

	"takoyaki/internal/core/entity"
	"takoyaki/internal/core/id"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockRegister struct {
	appended      []entity.LedgerEntry
	deletedBefore int
	deleteCount   int64
	appendErr     error
}

func (m *mockRegister) Append(ctx context.Context, entries []entity.LedgerEntry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.appended = append(m.appended, entries...)
	return nil
}

func (m *mockRegister) DeleteByReference(ctx context.Context, refType entity.RefType, refID id.ID, beforeVersion int) (int64, error) {
	m.deletedBefore = beforeVersion
	return m.deleteCount, nil
}

type fakeDoc struct {
	entity.Document
	entries []entity.LedgerEntry
	genErr  error
}

func (d *fakeDoc) GetRefType() entity.RefType { return entity.RefPurchase }

func (d *fakeDoc) GenerateEntries(ctx context.Context) ([]entity.LedgerEntry, error) {
	if d.genErr != nil {
		return nil, d.genErr
	}
	return d.entries, nil
}

func newFakeDoc() *fakeDoc {
	doc := &fakeDoc{Document: entity.NewDocument()}
	doc.entries = []entity.LedgerEntry{
		entity.NewLedgerEntry(entity.RefPurchase, doc.ID, 1, doc.Date,
			id.New(), entity.LocationStore, entity.MovementPurchase, 5, ""),
	}
	return doc
}

func TestEngine_Post(t *testing.T) {
	reg := &mockRegister{}
	engine := NewEngine(reg, passthroughTx{}, nil)
	doc := newFakeDoc()

	saved := false
	err := engine.Post(context.Background(), doc, func(ctx context.Context) error {
		saved = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !doc.Posted || doc.PostedVersion != 1 {
		t.Errorf("expected posted=true version=1, got posted=%v version=%d", doc.Posted, doc.PostedVersion)
	}
	if !saved {
		t.Error("expected saveDoc to be called")
	}
	if len(reg.appended) != 1 {
		t.Fatalf("expected 1 appended entry, got %d", len(reg.appended))
	}
	// stale entries removed before the new version
	if reg.deletedBefore != 1 {
		t.Errorf("expected delete before version 1, got %d", reg.deletedBefore)
	}
}

func TestEngine_Repost_BumpsVersion(t *testing.T) {
	reg := &mockRegister{}
	engine := NewEngine(reg, passthroughTx{}, nil)
	doc := newFakeDoc()

	save := func(ctx context.Context) error { return nil }
	if err := engine.Post(context.Background(), doc, save); err != nil {
		t.Fatalf("first post: %v", err)
	}
	if err := engine.Post(context.Background(), doc, save); err != nil {
		t.Fatalf("second post: %v", err)
	}

	if doc.PostedVersion != 2 {
		t.Errorf("expected posted version 2, got %d", doc.PostedVersion)
	}
	if reg.deletedBefore != 2 {
		t.Errorf("expected delete before version 2, got %d", reg.deletedBefore)
	}
}

func TestEngine_Post_EmptyEntries(t *testing.T) {
	reg := &mockRegister{}
	engine := NewEngine(reg, passthroughTx{}, nil)
	doc := newFakeDoc()
	doc.entries = nil

	err := engine.Post(context.Background(), doc, func(ctx context.Context) error { return nil })
	if err == nil {
		t.Fatal("expected error for document without entries")
	}
}

func TestEngine_Post_GenerateFails(t *testing.T) {
	reg := &mockRegister{}
	engine := NewEngine(reg, passthroughTx{}, nil)
	doc := newFakeDoc()
	doc.genErr = errors.New("no recipe")

	saved := false
	err := engine.Post(context.Background(), doc, func(ctx context.Context) error {
		saved = true
		return nil
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if saved {
		t.Error("saveDoc must not run when generation fails")
	}
	if len(reg.appended) != 0 {
		t.Error("no entries must be appended when generation fails")
	}
}

func TestEngine_Unpost(t *testing.T) {
	reg := &mockRegister{deleteCount: 3}
	engine := NewEngine(reg, passthroughTx{}, nil)
	doc := newFakeDoc()

	save := func(ctx context.Context) error { return nil }
	if err := engine.Post(context.Background(), doc, save); err != nil {
		t.Fatalf("post: %v", err)
	}
	if err := engine.Unpost(context.Background(), doc, save); err != nil {
		t.Fatalf("unpost: %v", err)
	}

	if doc.Posted {
		t.Error("expected document unposted")
	}
	// all entries removed, including the current version
	if reg.deletedBefore != doc.PostedVersion+1 {
		t.Errorf("expected delete before %d, got %d", doc.PostedVersion+1, reg.deletedBefore)
	}
}

func TestEngine_Unpost_NotPosted(t *testing.T) {
	engine := NewEngine(&mockRegister{}, passthroughTx{}, nil)
	doc := newFakeDoc()

	err := engine.Unpost(context.Background(), doc, func(ctx context.Context) error { return nil })
	if err == nil {
		t.Fatal("expected error for unposted document")
	}
}
