package purchase

import (
	"context"
	"testing"

	"takoyaki/internal/core/entity"
	"takoyaki/internal/core/id"
	"takoyaki/internal/domain"
	"takoyaki/internal/domain/posting"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockRegister struct{}

func (mockRegister) Append(ctx context.Context, entries []entity.LedgerEntry) error { return nil }

func (mockRegister) DeleteByReference(ctx context.Context, refType entity.RefType, refID id.ID, beforeVersion int) (int64, error) {
	return 0, nil
}

type mockRepo struct {
	created    bool
	updated    bool
	savedLines []Line
}

func (m *mockRepo) Create(ctx context.Context, doc *Purchase) error {
	m.created = true
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, docID id.ID) (*Purchase, error) {
	return nil, nil
}

func (m *mockRepo) GetByNumber(ctx context.Context, number string) (*Purchase, error) {
	return nil, nil
}

func (m *mockRepo) Update(ctx context.Context, doc *Purchase) error {
	m.updated = true
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, docID id.ID) error { return nil }

func (m *mockRepo) GetLines(ctx context.Context, docID id.ID) ([]Line, error) {
	return nil, nil
}

func (m *mockRepo) SaveLines(ctx context.Context, docID id.ID, lines []Line) error {
	m.savedLines = lines
	return nil
}

func (m *mockRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Purchase], error) {
	return domain.ListResult[*Purchase]{}, nil
}

func newTestService(repo *mockRepo) *Service {
	engine := posting.NewEngine(mockRegister{}, passthroughTx{}, nil)
	return NewService(repo, engine, nil, passthroughTx{})
}

func TestPostAndSave_New(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo)

	doc := New(entity.LocationStore, supplierRef())
	doc.Number = "PUR-TEST-1"
	doc.AddLine(id.New(), 100, price("5"))

	if err := svc.PostAndSave(context.Background(), doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.created || repo.updated {
		t.Errorf("expected create path, got created=%v updated=%v", repo.created, repo.updated)
	}
	if len(repo.savedLines) != 1 {
		t.Errorf("expected 1 saved line, got %d", len(repo.savedLines))
	}
	if !doc.Posted {
		t.Error("expected document to be posted")
	}
}

func TestPostAndSave_RepostPersistsEditedLines(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo)

	doc := New(entity.LocationWarehouse, supplierRef())
	doc.Number = "PUR-TEST-2"
	doc.Version = 3 // already persisted and modified since
	doc.AddLine(id.New(), 12, price("2400"))
	doc.AddLine(id.New(), 5, nil)

	if err := svc.PostAndSave(context.Background(), doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.created || !repo.updated {
		t.Errorf("expected update path, got created=%v updated=%v", repo.created, repo.updated)
	}
	if len(repo.savedLines) != 2 {
		t.Errorf("re-post must rewrite the line set, saved %d lines", len(repo.savedLines))
	}
}
