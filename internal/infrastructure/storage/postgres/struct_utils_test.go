package postgres

import (
	"testing"

	"takoyaki/internal/core/entity"
	"takoyaki/internal/core/id"

	"github.com/stretchr/testify/assert"
)

type mockCatalog struct {
	entity.Catalog
	BaseUnit string  `db:"base_unit" json:"baseUnit"`
	Rows     []int   `db:"-" json:"rows"`
	Loaded   bool    `json:"loaded"`
	Reorder  float64 `db:"reorder_point"`
}

func TestExtractDBColumns_EmbeddedStructs(t *testing.T) {
	cols := ExtractDBColumns[mockCatalog]()

	for _, expected := range []string{
		"id", "deletion_mark", "version",
		"code", "name", "base_unit", "reorder_point",
	} {
		assert.Contains(t, cols, expected)
	}
	assert.NotContains(t, cols, "rows")
	assert.NotContains(t, cols, "loaded")
}

func TestStructToMap_EmbeddedStructs(t *testing.T) {
	cat := mockCatalog{
		Catalog:  entity.NewCatalog("ITM-0001", "Octopus"),
		BaseUnit: "kg",
		Rows:     []int{1, 2},
		Reorder:  5,
	}
	cat.DeletionMark = true

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 1, m["version"])
	assert.Equal(t, "ITM-0001", m["code"])
	assert.Equal(t, "Octopus", m["name"])
	assert.Equal(t, "kg", m["base_unit"])
	assert.Equal(t, 5.0, m["reorder_point"])
	assert.NotContains(t, m, "rows")
}

func TestStructToMap_PointerInput(t *testing.T) {
	cat := &mockCatalog{Catalog: entity.NewCatalog("", "Flour")}
	m := StructToMap(cat)
	assert.Equal(t, "Flour", m["name"])
	assert.NotEqual(t, id.Nil(), m["id"])
}
