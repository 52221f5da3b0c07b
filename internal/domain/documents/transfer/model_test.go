package transfer

import (
	"context"
	"testing"

	"takoyaki/internal/core/apperror"
	"takoyaki/internal/core/entity"
	"takoyaki/internal/core/id"
)

func TestTransferValidate(t *testing.T) {
	ctx := context.Background()

	valid := New(entity.LocationWarehouse, entity.LocationStore)
	valid.AddLine(id.New(), 500)
	if err := valid.Validate(ctx); err != nil {
		t.Fatalf("valid transfer rejected: %v", err)
	}

	t.Run("same locations", func(t *testing.T) {
		bad := New(entity.LocationStore, entity.LocationStore)
		bad.AddLine(id.New(), 500)
		if err := bad.Validate(ctx); !apperror.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("unknown location", func(t *testing.T) {
		bad := New("TRUCK", entity.LocationStore)
		bad.AddLine(id.New(), 500)
		if err := bad.Validate(ctx); !apperror.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("negative qty", func(t *testing.T) {
		bad := New(entity.LocationWarehouse, entity.LocationStore)
		bad.AddLine(id.New(), -3)
		if err := bad.Validate(ctx); !apperror.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestTransferGenerateEntries_BalancedPairs(t *testing.T) {
	item := id.New()

	tr := New(entity.LocationWarehouse, entity.LocationStore)
	tr.AddLine(item, 750)
	tr.MarkPosted()

	entries, err := tr.GenerateEntries(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected a pair of entries, got %d", len(entries))
	}

	out, in := entries[0], entries[1]
	if out.Location != entity.LocationWarehouse || out.QtyDelta != -750 {
		t.Errorf("source entry mismatch: %+v", out)
	}
	if in.Location != entity.LocationStore || in.QtyDelta != 750 {
		t.Errorf("destination entry mismatch: %+v", in)
	}

	// a transfer never changes total stock
	if sum := out.QtyDelta + in.QtyDelta; sum != 0 {
		t.Errorf("pair deltas must cancel out, got %v", sum)
	}
	if out.Type != entity.MovementTransfer || in.Type != entity.MovementTransfer {
		t.Error("both entries must be TRANSFER movements")
	}
}
