package service

import (
	"context"
	"testing"

	historydomain "github.com/stockroomhq/stockroom/internal/history/domain"
	"github.com/stockroomhq/stockroom/internal/item/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleDebitsComponentsAndCreditsRoot(t *testing.T) {
	env := newTestEnv(t)

	frame := env.seedItem(t, domain.Item{Name: "frame", InStock: 10})
	motor := env.seedItem(t, domain.Item{Name: "motor", InStock: 5})
	drone := env.seedAssembly(t, "drone", 1,
		domain.BomEntry{ItemID: frame.ID, RequiredQuantity: 2},
		domain.BomEntry{ItemID: motor.ID, RequiredQuantity: 1},
	)

	got, err := env.svc.Assemble(context.Background(), domain.AssembleRequest{
		ItemID:   drone.ID,
		Quantity: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(3), got.InStock)
	assert.Equal(t, float64(2), got.TotalIn)
	assert.Equal(t, float64(2), got.TotalAssembled)

	storedFrame := env.reload(t, frame.ID)
	assert.Equal(t, float64(6), storedFrame.InStock)
	assert.Equal(t, float64(4), storedFrame.TotalOut)

	storedMotor := env.reload(t, motor.ID)
	assert.Equal(t, float64(3), storedMotor.InStock)

	frameActions := env.actions(t, frame.ID)
	require.Len(t, frameActions, 1)
	assert.Equal(t, historydomain.ActionUpdateQuantity, frameActions[0].Kind)
	assert.Equal(t, float64(-4), frameActions[0].Quantity)
	assert.Equal(t, `Used for assembly of "drone"`, frameActions[0].Comment)

	rootActions := env.actions(t, drone.ID)
	require.Len(t, rootActions, 1)
	assert.Equal(t, historydomain.ActionAssemble, rootActions[0].Kind)
	assert.Equal(t, float64(2), rootActions[0].Quantity)
	assert.Empty(t, rootActions[0].Comment)
}

func TestAssembleShortfallRollsBackEverything(t *testing.T) {
	env := newTestEnv(t)

	frame := env.seedItem(t, domain.Item{Name: "frame", InStock: 10})
	motor := env.seedItem(t, domain.Item{Name: "motor", InStock: 1})
	drone := env.seedAssembly(t, "drone", 0,
		domain.BomEntry{ItemID: frame.ID, RequiredQuantity: 2},
		domain.BomEntry{ItemID: motor.ID, RequiredQuantity: 4},
	)

	_, err := env.svc.Assemble(context.Background(), domain.AssembleRequest{
		ItemID:   drone.ID,
		Quantity: 1,
	})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, motor.ID, stockErr.ItemID)
	assert.Equal(t, float64(4), stockErr.Required)
	assert.Equal(t, float64(1), stockErr.Available)

	// the frame debit that preceded the failure must be rolled back
	assert.Equal(t, float64(10), env.reload(t, frame.ID).InStock)
	assert.Equal(t, float64(1), env.reload(t, motor.ID).InStock)
	assert.Equal(t, float64(0), env.reload(t, drone.ID).InStock)

	assert.Empty(t, env.actions(t, frame.ID))
	assert.Empty(t, env.actions(t, motor.ID))
	assert.Empty(t, env.actions(t, drone.ID))
	assert.Empty(t, env.queue.items)
}

func TestAssembleDeepShortfallRollsBackWholeTree(t *testing.T) {
	env := newTestEnv(t)

	screw := env.seedItem(t, domain.Item{Name: "screw", InStock: 100})
	wire := env.seedItem(t, domain.Item{Name: "wire", InStock: 1})
	harness := env.seedAssembly(t, "harness", 0, domain.BomEntry{ItemID: wire.ID, RequiredQuantity: 5})
	robot := env.seedAssembly(t, "robot", 0,
		domain.BomEntry{ItemID: screw.ID, RequiredQuantity: 10},
		domain.BomEntry{ItemID: harness.ID, RequiredQuantity: 1},
	)

	_, err := env.svc.Assemble(context.Background(), domain.AssembleRequest{
		ItemID:   robot.ID,
		Quantity: 1,
	})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, wire.ID, stockErr.ItemID)

	assert.Equal(t, float64(100), env.reload(t, screw.ID).InStock)
	assert.Equal(t, float64(1), env.reload(t, wire.ID).InStock)
	assert.Empty(t, env.actions(t, screw.ID))
}

func TestAssembleBuildsShortSubAssemblyFromItsParts(t *testing.T) {
	env := newTestEnv(t)

	cell := env.seedItem(t, domain.Item{Name: "cell", InStock: 20})
	pack := env.seedAssembly(t, "battery pack", 1, domain.BomEntry{ItemID: cell.ID, RequiredQuantity: 4})
	scooter := env.seedAssembly(t, "scooter", 0, domain.BomEntry{ItemID: pack.ID, RequiredQuantity: 2})

	got, err := env.svc.Assemble(context.Background(), domain.AssembleRequest{
		ItemID:   scooter.ID,
		Quantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(1), got.InStock)

	// pack stock (1) cannot cover 2, so the full requirement is built from
	// cells and the pack itself is left untouched
	storedPack := env.reload(t, pack.ID)
	assert.Equal(t, float64(1), storedPack.InStock)
	assert.Equal(t, float64(0), storedPack.TotalOut)
	assert.Equal(t, float64(0), storedPack.TotalAssembled)
	assert.Empty(t, env.actions(t, pack.ID))

	storedCell := env.reload(t, cell.ID)
	assert.Equal(t, float64(12), storedCell.InStock)
	assert.Equal(t, float64(8), storedCell.TotalOut)
}

func TestAssembleNotifiesLowStockOncePerDistinctItem(t *testing.T) {
	env := newTestEnv(t)

	leaf := env.seedItem(t, domain.Item{Name: "led", InStock: 10, MinAllowedQuantity: 8})
	subA := env.seedAssembly(t, "strip a", 0, domain.BomEntry{ItemID: leaf.ID, RequiredQuantity: 3})
	subB := env.seedAssembly(t, "strip b", 0, domain.BomEntry{ItemID: leaf.ID, RequiredQuantity: 4})
	sign := env.seedAssembly(t, "sign", 0,
		domain.BomEntry{ItemID: subA.ID, RequiredQuantity: 1},
		domain.BomEntry{ItemID: subB.ID, RequiredQuantity: 1},
	)

	_, err := env.svc.Assemble(context.Background(), domain.AssembleRequest{
		ItemID:   sign.ID,
		Quantity: 1,
	})
	require.NoError(t, err)

	// both strip builds pushed the led below its threshold, one notification
	assert.Equal(t, float64(3), env.reload(t, leaf.ID).InStock)
	require.Len(t, env.queue.items, 1)
	assert.Equal(t, leaf.ID, env.queue.items[0].ID)
}

func TestAssembleRejectsNonPositiveQuantity(t *testing.T) {
	env := newTestEnv(t)
	drone := env.seedAssembly(t, "drone", 0)

	_, err := env.svc.Assemble(context.Background(), domain.AssembleRequest{
		ItemID:   drone.ID,
		Quantity: 0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestAssembleUnknownItem(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Assemble(context.Background(), domain.AssembleRequest{
		ItemID:   env.node.Generate(),
		Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
