// Package reconcile holds the pure arithmetic behind stocktake
// adjustments and daily-report production usage. No I/O here: services
// feed it ledger-derived quantities and persist what comes out.
package reconcile

import (
	"math"

	"takoyaki/internal/core/id"
	"takoyaki/internal/core/types"
)

// CountedLine is one physically counted item.
type CountedLine struct {
	ItemID id.ID
	Qty    float64
}

// Adjustment is the correction needed to align the ledger with a count.
type Adjustment struct {
	ItemID      id.ID
	Counted     float64
	Theoretical float64
	Delta       float64 // Counted - Theoretical
}

// Adjustments compares counted quantities with theoretical (ledger)
// quantities and returns the deltas worth recording. Items absent from
// theoretical are treated as zero on hand. Deltas within tolerance are
// dropped, so a count matching the ledger produces no entries.
func Adjustments(counted []CountedLine, theoretical map[id.ID]float64) []Adjustment {
	out := make([]Adjustment, 0, len(counted))
	for _, line := range counted {
		theo := theoretical[line.ItemID]
		delta := line.Qty - theo
		if math.Abs(delta) <= types.QtyEpsilon {
			continue
		}
		out = append(out, Adjustment{
			ItemID:      line.ItemID,
			Counted:     line.Qty,
			Theoretical: theo,
			Delta:       delta,
		})
	}
	return out
}

// RecipeRow is one ingredient line of the active recipe.
type RecipeRow struct {
	ItemID      id.ID
	QtyPerBatch float64
	AutoConsume bool
}

// Production is the derived ingredient usage for one item on one day.
type Production struct {
	ItemID     id.ID
	ConsumeQty float64 // positive, recorded as a negative CONSUME delta
	WasteQty   float64 // positive, recorded as a negative WASTE delta
}

// ProductionUsage derives ingredient consumption and waste from a day's
// sales figures.
//
// soldBatches batches were produced and sold; wastePieces finished
// pieces were discarded. Waste is converted back to batches through
// piecesPerBatch, then through the same per-batch recipe quantities.
// Rows with AutoConsume disabled are skipped, as are sub-tolerance
// quantities.
func ProductionUsage(rows []RecipeRow, soldBatches, wastePieces float64, piecesPerBatch int) []Production {
	wasteBatches := 0.0
	if piecesPerBatch > 0 {
		wasteBatches = wastePieces / float64(piecesPerBatch)
	}

	out := make([]Production, 0, len(rows))
	for _, row := range rows {
		if !row.AutoConsume {
			continue
		}
		consume := row.QtyPerBatch * soldBatches
		waste := row.QtyPerBatch * wasteBatches
		if consume <= types.QtyEpsilon && waste <= types.QtyEpsilon {
			continue
		}
		if consume <= types.QtyEpsilon {
			consume = 0
		}
		if waste <= types.QtyEpsilon {
			waste = 0
		}
		out = append(out, Production{
			ItemID:     row.ItemID,
			ConsumeQty: consume,
			WasteQty:   waste,
		})
	}
	return out
}
