package purchase

import (
	"context"
	"testing"

	"takoyaki/internal/core/apperror"
	"takoyaki/internal/core/entity"
	"takoyaki/internal/core/id"
	"takoyaki/internal/core/types"
)

func price(s string) *types.Money {
	m := types.MustMoney(s)
	return &m
}

func supplierRef() *id.ID {
	supplierID := id.New()
	return &supplierID
}

func TestPurchaseTotals_PricedLinesOnly(t *testing.T) {
	p := New(entity.LocationStore, supplierRef())
	p.AddLine(id.New(), 2000, price("0.6"))
	p.AddLine(id.New(), 500, nil) // invoice not in yet
	p.AddLine(id.New(), 10, price("35.05"))

	// 2000*0.6 + 10*35.05, unpriced line excluded
	want := types.MustMoney("1550.50")
	if !p.TotalAmount.Equal(want) {
		t.Errorf("expected total %s, got %s", want, p.TotalAmount)
	}

	if p.Lines[1].Amount != nil {
		t.Error("unpriced line must not carry an amount")
	}
	if p.Lines[2].Amount == nil || !p.Lines[2].Amount.Equal(types.MustMoney("350.5")) {
		t.Errorf("line amount mismatch: %v", p.Lines[2].Amount)
	}
	if p.Lines[2].LineNo != 3 {
		t.Errorf("expected line numbering, got %d", p.Lines[2].LineNo)
	}
}

func TestPurchaseValidate(t *testing.T) {
	ctx := context.Background()

	p := New(entity.LocationStore, supplierRef())
	p.AddLine(id.New(), 100, price("5"))
	if err := p.Validate(ctx); err != nil {
		t.Fatalf("valid purchase rejected: %v", err)
	}

	t.Run("no supplier is allowed", func(t *testing.T) {
		doc := New(entity.LocationStore, nil)
		doc.AddLine(id.New(), 100, price("5"))
		if err := doc.Validate(ctx); err != nil {
			t.Errorf("supplier-less purchase rejected: %v", err)
		}
	})

	t.Run("bad location", func(t *testing.T) {
		bad := New("TRUCK", supplierRef())
		bad.AddLine(id.New(), 100, price("5"))
		if err := bad.Validate(ctx); !apperror.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("no lines", func(t *testing.T) {
		bad := New(entity.LocationStore, supplierRef())
		if err := bad.Validate(ctx); !apperror.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("zero qty", func(t *testing.T) {
		bad := New(entity.LocationStore, supplierRef())
		bad.AddLine(id.New(), 0, price("5"))
		if err := bad.Validate(ctx); !apperror.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("negative price", func(t *testing.T) {
		bad := New(entity.LocationStore, supplierRef())
		bad.AddLine(id.New(), 10, price("-1"))
		if err := bad.Validate(ctx); !apperror.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestPurchaseGenerateEntries(t *testing.T) {
	itemA, itemB := id.New(), id.New()

	p := New(entity.LocationStore, supplierRef())
	p.AddLine(itemA, 2000, price("0.6"))
	p.AddLine(itemB, 500, nil)
	p.MarkPosted()

	entries, err := p.GenerateEntries(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	for i, e := range entries {
		if e.Type != entity.MovementPurchase {
			t.Errorf("entry %d: expected PURCHASE, got %s", i, e.Type)
		}
		if e.Location != entity.LocationStore {
			t.Errorf("entry %d: expected document location, got %s", i, e.Location)
		}
		if e.RefVersion != 1 {
			t.Errorf("entry %d: expected ref version 1, got %d", i, e.RefVersion)
		}
		if e.QtyDelta <= 0 {
			t.Errorf("entry %d: purchase deltas are positive, got %v", i, e.QtyDelta)
		}
	}
	if entries[0].ItemID != itemA || entries[0].QtyDelta != 2000 {
		t.Errorf("first entry mismatch: %+v", entries[0])
	}
}

func TestPurchaseGenerateEntries_WarehouseLocation(t *testing.T) {
	p := New(entity.LocationWarehouse, supplierRef())
	p.AddLine(id.New(), 12, price("2400"))
	p.MarkPosted()

	entries, err := p.GenerateEntries(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, e := range entries {
		if e.Location != entity.LocationWarehouse {
			t.Errorf("entry %d: expected WAREHOUSE, got %s", i, e.Location)
		}
	}
}
