package reconcile

import (
	"testing"

	"takoyaki/internal/core/id"
)

func TestAdjustments(t *testing.T) {
	flour := id.New()
	octopus := id.New()
	sauce := id.New()

	counted := []CountedLine{
		{ItemID: flour, Qty: 8.5},   // ledger says 10 -> shrinkage
		{ItemID: octopus, Qty: 3},   // matches ledger
		{ItemID: sauce, Qty: 2},     // never moved before
	}
	theoretical := map[id.ID]float64{
		flour:   10,
		octopus: 3,
	}

	adj := Adjustments(counted, theoretical)
	if len(adj) != 2 {
		t.Fatalf("expected 2 adjustments, got %d", len(adj))
	}

	if adj[0].ItemID != flour || adj[0].Delta != -1.5 {
		t.Errorf("flour: expected delta -1.5, got %+v", adj[0])
	}
	if adj[1].ItemID != sauce || adj[1].Delta != 2 || adj[1].Theoretical != 0 {
		t.Errorf("sauce: expected delta 2 from zero, got %+v", adj[1])
	}
}

func TestAdjustments_ToleranceSwallowsNoise(t *testing.T) {
	item := id.New()
	counted := []CountedLine{{ItemID: item, Qty: 0.1 + 0.2}}
	theoretical := map[id.ID]float64{item: 0.3}

	if adj := Adjustments(counted, theoretical); len(adj) != 0 {
		t.Errorf("float noise must not produce adjustments, got %+v", adj)
	}
}

func TestAdjustments_ExactCountIdempotent(t *testing.T) {
	item := id.New()
	counted := []CountedLine{{ItemID: item, Qty: 7}}

	// first count adjusts from 4 to 7
	first := Adjustments(counted, map[id.ID]float64{item: 4})
	if len(first) != 1 || first[0].Delta != 3 {
		t.Fatalf("expected single +3 adjustment, got %+v", first)
	}

	// counting again after the adjustment landed changes nothing
	second := Adjustments(counted, map[id.ID]float64{item: 4 + first[0].Delta})
	if len(second) != 0 {
		t.Errorf("repeat count must be a no-op, got %+v", second)
	}
}

func TestProductionUsage(t *testing.T) {
	flour := id.New()
	octopus := id.New()
	boxes := id.New()

	rows := []RecipeRow{
		{ItemID: flour, QtyPerBatch: 0.5, AutoConsume: true},
		{ItemID: octopus, QtyPerBatch: 0.3, AutoConsume: true},
		{ItemID: boxes, QtyPerBatch: 1, AutoConsume: false}, // counted by hand
	}

	// 20 batches sold, 16 pieces wasted at 8 pieces per batch = 2 batches
	usage := ProductionUsage(rows, 20, 16, 8)
	if len(usage) != 2 {
		t.Fatalf("expected 2 usage rows, got %d", len(usage))
	}

	if usage[0].ItemID != flour || usage[0].ConsumeQty != 10 || usage[0].WasteQty != 1 {
		t.Errorf("flour: expected consume 10 waste 1, got %+v", usage[0])
	}
	if usage[1].ItemID != octopus || usage[1].ConsumeQty != 6 {
		t.Errorf("octopus: expected consume 6, got %+v", usage[1])
	}
	// 0.3 * 2 within float tolerance
	if diff := usage[1].WasteQty - 0.6; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("octopus: expected waste 0.6, got %v", usage[1].WasteQty)
	}
}

func TestProductionUsage_ZeroDay(t *testing.T) {
	rows := []RecipeRow{{ItemID: id.New(), QtyPerBatch: 0.5, AutoConsume: true}}

	if usage := ProductionUsage(rows, 0, 0, 8); len(usage) != 0 {
		t.Errorf("a day with no sales and no waste produces nothing, got %+v", usage)
	}
}

func TestProductionUsage_WasteOnly(t *testing.T) {
	item := id.New()
	rows := []RecipeRow{{ItemID: item, QtyPerBatch: 0.25, AutoConsume: true}}

	usage := ProductionUsage(rows, 0, 8, 8)
	if len(usage) != 1 {
		t.Fatalf("expected 1 row, got %d", len(usage))
	}
	if usage[0].ConsumeQty != 0 || usage[0].WasteQty != 0.25 {
		t.Errorf("expected consume 0 waste 0.25, got %+v", usage[0])
	}
}

func TestProductionUsage_GuardsZeroPiecesPerBatch(t *testing.T) {
	rows := []RecipeRow{{ItemID: id.New(), QtyPerBatch: 0.5, AutoConsume: true}}

	usage := ProductionUsage(rows, 2, 10, 0)
	if len(usage) != 1 || usage[0].WasteQty != 0 {
		t.Errorf("zero pieces-per-batch must yield zero waste, got %+v", usage)
	}
}
