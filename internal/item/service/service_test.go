package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stockroomhq/stockroom/internal/clock"
	historydomain "github.com/stockroomhq/stockroom/internal/history/domain"
	historyrepo "github.com/stockroomhq/stockroom/internal/history/repository"
	historyservice "github.com/stockroomhq/stockroom/internal/history/service"
	"github.com/stockroomhq/stockroom/internal/item/domain"
	"github.com/stockroomhq/stockroom/internal/item/repository"
	"github.com/stockroomhq/stockroom/internal/notifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fakeQueue struct {
	items []notifier.LowStockItem
}

func (q *fakeQueue) EnqueueLowStock(item notifier.LowStockItem) {
	q.items = append(q.items, item)
}

type testEnv struct {
	svc   *Service
	db    *gorm.DB
	node  *snowflake.Node
	queue *fakeQueue
	clock *clock.FakeClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Item{},
		&domain.ItemProject{},
		&historydomain.Ledger{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fc := clock.NewFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	historySvc := historyservice.New(historyservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fc,
		Repo:  historyrepo.Provide(),
	})

	queue := &fakeQueue{}
	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    fc,
		Repo:     repository.Provide(),
		History:  historySvc,
		Notifier: queue,
	}).(*Service)

	return &testEnv{svc: svc, db: db, node: node, queue: queue, clock: fc}
}

func (e *testEnv) seedItem(t *testing.T, item domain.Item) domain.Item {
	t.Helper()
	if item.ID == 0 {
		item.ID = e.node.Generate()
	}
	if item.SKU == "" {
		item.SKU = item.ID.String()
	}
	now := e.clock.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	require.NoError(t, e.db.Create(&item).Error)
	return item
}

func (e *testEnv) seedAssembly(t *testing.T, name string, stock float64, bom ...domain.BomEntry) domain.Item {
	t.Helper()
	return e.seedItem(t, domain.Item{
		Name:       name,
		InStock:    stock,
		IsAssembly: true,
		Bom:        datatypes.NewJSONSlice(bom),
	})
}

func (e *testEnv) reload(t *testing.T, id snowflake.ID) domain.Item {
	t.Helper()
	var item domain.Item
	require.NoError(t, e.db.First(&item, "id = ?", id).Error)
	return item
}

func (e *testEnv) actions(t *testing.T, itemID snowflake.ID) []historydomain.Action {
	t.Helper()
	var ledger historydomain.Ledger
	err := e.db.First(&ledger, "item_id = ?", itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	require.NoError(t, err)
	return []historydomain.Action(ledger.Actions)
}

func TestAdjustQuantityDebitsAndNotifiesLowStock(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(t, domain.Item{Name: "M3 screw", InStock: 10, MinAllowedQuantity: 5})

	got, err := env.svc.AdjustQuantity(context.Background(), domain.AdjustQuantityRequest{
		ItemID: item.ID,
		Amount: -6,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(4), got.InStock)

	stored := env.reload(t, item.ID)
	assert.Equal(t, float64(4), stored.InStock)
	assert.Equal(t, float64(6), stored.TotalOut)
	assert.Equal(t, float64(0), stored.TotalIn)

	require.Len(t, env.queue.items, 1)
	assert.Equal(t, item.ID, env.queue.items[0].ID)

	actions := env.actions(t, item.ID)
	require.Len(t, actions, 1)
	assert.Equal(t, historydomain.ActionUpdateQuantity, actions[0].Kind)
	assert.Equal(t, float64(-6), actions[0].Quantity)
}

func TestAdjustQuantityCreditBumpsTotalIn(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(t, domain.Item{Name: "bolt", InStock: 2})

	got, err := env.svc.AdjustQuantity(context.Background(), domain.AdjustQuantityRequest{
		ItemID: item.ID,
		Amount: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(7), got.InStock)
	assert.Equal(t, float64(5), got.TotalIn)
	assert.Equal(t, float64(0), got.TotalAssembled)
}

func TestAdjustQuantityAllowsNegativeStock(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(t, domain.Item{Name: "washer", InStock: 2})

	got, err := env.svc.AdjustQuantity(context.Background(), domain.AdjustQuantityRequest{
		ItemID: item.ID,
		Amount: -5,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(-3), got.InStock)
}

func TestAdjustQuantityRejectsZeroAmount(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(t, domain.Item{Name: "nut", InStock: 1})

	_, err := env.svc.AdjustQuantity(context.Background(), domain.AdjustQuantityRequest{
		ItemID: item.ID,
		Amount: 0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestAdjustQuantityUnknownItem(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.AdjustQuantity(context.Background(), domain.AdjustQuantityRequest{
		ItemID: env.node.Generate(),
		Amount: 1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetQuantityRecordsPreviousStock(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(t, domain.Item{Name: "spacer", InStock: 10, TotalIn: 10})

	got, err := env.svc.SetQuantity(context.Background(), domain.SetQuantityRequest{
		ItemID:    item.ID,
		NewAmount: 3,
		Comment:   "stocktake correction",
	})
	require.NoError(t, err)
	assert.Equal(t, float64(3), got.InStock)

	stored := env.reload(t, item.ID)
	assert.Equal(t, float64(3), stored.InStock)
	// counters track flow, not corrections
	assert.Equal(t, float64(10), stored.TotalIn)
	assert.Equal(t, float64(0), stored.TotalOut)

	actions := env.actions(t, item.ID)
	require.Len(t, actions, 1)
	assert.Equal(t, historydomain.ActionSetQuantity, actions[0].Kind)
	assert.Equal(t, float64(3), actions[0].Quantity)
	require.NotNil(t, actions[0].PrevStock)
	assert.Equal(t, float64(10), *actions[0].PrevStock)
	assert.Equal(t, "stocktake correction", actions[0].Comment)
}

func TestCreateDerivesAssemblyFlagAndSeedsCounters(t *testing.T) {
	env := newTestEnv(t)
	leaf := env.seedItem(t, domain.Item{Name: "panel", InStock: 4})

	got, err := env.svc.Create(context.Background(), domain.CreateItemRequest{
		Name:    "enclosure",
		InStock: 2,
		Bom:     []domain.BomEntry{{ItemID: leaf.ID, RequiredQuantity: 6}},
	})
	require.NoError(t, err)
	assert.True(t, got.IsAssembly)
	assert.Equal(t, float64(2), got.TotalIn)
	assert.Equal(t, float64(2), got.TotalAssembled)
	assert.Equal(t, "enclosure", got.SKU)
	require.NotNil(t, got.HistoryID)

	actions := env.actions(t, got.ID)
	require.Len(t, actions, 1)
	assert.Equal(t, historydomain.ActionCreate, actions[0].Kind)
	assert.Equal(t, float64(2), actions[0].Quantity)
}

func TestCreateWithoutBomIsPlainItem(t *testing.T) {
	env := newTestEnv(t)

	got, err := env.svc.Create(context.Background(), domain.CreateItemRequest{
		Name:    "Aluminium Rod 6mm",
		InStock: 12,
	})
	require.NoError(t, err)
	assert.False(t, got.IsAssembly)
	assert.Equal(t, float64(12), got.TotalIn)
	assert.Equal(t, float64(0), got.TotalAssembled)
	assert.Equal(t, "aluminium-rod-6mm", got.SKU)
}

func TestCreateRejectsDuplicateSKU(t *testing.T) {
	env := newTestEnv(t)
	env.seedItem(t, domain.Item{Name: "cap", SKU: "cap", InStock: 1})

	_, err := env.svc.Create(context.Background(), domain.CreateItemRequest{
		Name: "cap",
	})
	assert.ErrorIs(t, err, domain.ErrSKUExists)
}

func TestCreateRejectsInvalidBomEntry(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(context.Background(), domain.CreateItemRequest{
		Name: "bad",
		Bom:  []domain.BomEntry{{ItemID: env.node.Generate(), RequiredQuantity: 0}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidBom)
}

func TestUpdateFieldsNoChange(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(t, domain.Item{Name: "bracket", InStock: 1})

	same := "bracket"
	_, err := env.svc.UpdateFields(context.Background(), domain.UpdateItemRequest{
		ItemID: item.ID,
		Name:   &same,
	})
	assert.ErrorIs(t, err, domain.ErrNoChange)
}

func TestUpdateFieldsPatchesOnlyChangedFields(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(t, domain.Item{Name: "bracket", InStock: 3, MinAllowedQuantity: 1})

	newMin := 2.0
	got, err := env.svc.UpdateFields(context.Background(), domain.UpdateItemRequest{
		ItemID:             item.ID,
		MinAllowedQuantity: &newMin,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(2), got.MinAllowedQuantity)
	assert.Equal(t, "bracket", got.Name)
	assert.Equal(t, float64(3), got.InStock)
}
