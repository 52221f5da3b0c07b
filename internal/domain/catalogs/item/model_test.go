package item

import (
	"context"
	"testing"

	"takoyaki/internal/core/apperror"
	"takoyaki/internal/core/types"
)

func TestItemValidate(t *testing.T) {
	ctx := context.Background()

	valid := NewItem("ITM-0001", "Octopus", "g", GroupFood)
	if err := valid.Validate(ctx); err != nil {
		t.Fatalf("valid item rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(i *Item)
	}{
		{"empty name", func(i *Item) { i.Name = "" }},
		{"empty unit", func(i *Item) { i.BaseUnit = "" }},
		{"bad cost group", func(i *Item) { i.CostGroup = "OTHER" }},
		{"negative reorder point", func(i *Item) { i.ReorderPoint = -1 }},
		{"negative reference price", func(i *Item) {
			p := types.MustMoney("-5")
			i.ReferencePrice = &p
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			it := NewItem("ITM-0001", "Octopus", "g", GroupFood)
			tc.mutate(it)
			err := it.Validate(ctx)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !apperror.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCountsTowardFoodCost(t *testing.T) {
	food := NewItem("", "Flour", "g", GroupFood)
	supplies := NewItem("", "Boxes", "pcs", GroupSupplies)

	if !food.CountsTowardFoodCost() {
		t.Error("food item must count toward food cost")
	}
	if supplies.CountsTowardFoodCost() {
		t.Error("supplies must not count toward food cost")
	}
}
