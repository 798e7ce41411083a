package service

import (
	"context"
	"testing"

	"github.com/stockroomhq/stockroom/internal/item/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawBomMaterialsScalesThroughNestedAssemblies(t *testing.T) {
	env := newTestEnv(t)

	c := env.seedItem(t, domain.Item{Name: "resistor", InStock: 100})
	b := env.seedAssembly(t, "driver board", 0, domain.BomEntry{ItemID: c.ID, RequiredQuantity: 3})
	a := env.seedAssembly(t, "lamp", 0, domain.BomEntry{ItemID: b.ID, RequiredQuantity: 2})

	got, err := env.svc.RawBomMaterials(context.Background(), a.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, c.ID, got[0].ItemID)
	assert.Equal(t, "resistor", got[0].Name)
	assert.Equal(t, float64(6), got[0].RequiredQuantity)
	assert.Equal(t, float64(100), got[0].InStock)
}

func TestRawBomMaterialsMergesDuplicateLeaves(t *testing.T) {
	env := newTestEnv(t)

	screw := env.seedItem(t, domain.Item{Name: "screw", InStock: 50})
	hinge := env.seedAssembly(t, "hinge", 0, domain.BomEntry{ItemID: screw.ID, RequiredQuantity: 3})
	door := env.seedAssembly(t, "door", 0,
		domain.BomEntry{ItemID: screw.ID, RequiredQuantity: 2},
		domain.BomEntry{ItemID: hinge.ID, RequiredQuantity: 1},
	)

	got, err := env.svc.RawBomMaterials(context.Background(), door.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, screw.ID, got[0].ItemID)
	assert.Equal(t, float64(5), got[0].RequiredQuantity)
}

func TestRawBomMaterialsKeepsFirstSeenOrder(t *testing.T) {
	env := newTestEnv(t)

	wood := env.seedItem(t, domain.Item{Name: "wood", InStock: 10})
	glue := env.seedItem(t, domain.Item{Name: "glue", InStock: 10})
	frame := env.seedAssembly(t, "frame", 0,
		domain.BomEntry{ItemID: wood.ID, RequiredQuantity: 4},
		domain.BomEntry{ItemID: glue.ID, RequiredQuantity: 1},
	)

	got, err := env.svc.RawBomMaterials(context.Background(), frame.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, wood.ID, got[0].ItemID)
	assert.Equal(t, glue.ID, got[1].ItemID)
}

func TestRawBomMaterialsLeafItemIsItsOwnMaterial(t *testing.T) {
	env := newTestEnv(t)
	leaf := env.seedItem(t, domain.Item{Name: "wire", InStock: 7})

	got, err := env.svc.RawBomMaterials(context.Background(), leaf.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, leaf.ID, got[0].ItemID)
	assert.Equal(t, float64(1), got[0].RequiredQuantity)
}

func TestRawBomMaterialsUnknownItemIsEmpty(t *testing.T) {
	env := newTestEnv(t)

	got, err := env.svc.RawBomMaterials(context.Background(), env.node.Generate())
	require.NoError(t, err)
	assert.Empty(t, got)
}
