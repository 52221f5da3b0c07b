package ledger

import (
	"context"
	"math"
	"testing"
	"time"

	"takoyaki/internal/core/apperror"
	"takoyaki/internal/core/entity"
	"takoyaki/internal/core/id"
)

type mockRepo struct {
	Repository
	appended []entity.LedgerEntry
}

func (m *mockRepo) Append(ctx context.Context, entries []entity.LedgerEntry) error {
	m.appended = append(m.appended, entries...)
	return nil
}

func validEntry() entity.LedgerEntry {
	return entity.NewLedgerEntry(
		entity.RefPurchase, id.New(), 1, time.Now(),
		id.New(), entity.LocationStore, entity.MovementPurchase, 2.5, "",
	)
}

func TestAppend_Valid(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	if err := svc.Append(context.Background(), []entity.LedgerEntry{validEntry()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.appended) != 1 {
		t.Fatalf("expected 1 entry appended, got %d", len(repo.appended))
	}
}

func TestAppend_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *entity.LedgerEntry)
	}{
		{"missing item", func(e *entity.LedgerEntry) { e.ItemID = id.Nil() }},
		{"missing ref", func(e *entity.LedgerEntry) { e.RefID = id.Nil() }},
		{"bad location", func(e *entity.LedgerEntry) { e.Location = "TRUCK" }},
		{"bad movement", func(e *entity.LedgerEntry) { e.Type = "TELEPORT" }},
		{"nan delta", func(e *entity.LedgerEntry) { e.QtyDelta = math.NaN() }},
		{"zero time", func(e *entity.LedgerEntry) { e.HappenedAt = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{}
			svc := NewService(repo)

			e := validEntry()
			tt.mutate(&e)

			err := svc.Append(context.Background(), []entity.LedgerEntry{e})
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !apperror.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
			if len(repo.appended) != 0 {
				t.Error("invalid batch must not reach the repository")
			}
		})
	}
}

func TestAppend_ReportsFailingLine(t *testing.T) {
	svc := NewService(&mockRepo{})

	good := validEntry()
	bad := validEntry()
	bad.Location = "TRUCK"

	err := svc.Append(context.Background(), []entity.LedgerEntry{good, bad})
	appErr, ok := apperror.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Details["lineNo"] != 1 {
		t.Errorf("expected failing index 1, got %v", appErr.Details["lineNo"])
	}
}
