package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/stockroomhq/stockroom/internal/clock"
	historydomain "github.com/stockroomhq/stockroom/internal/history/domain"
	"github.com/stockroomhq/stockroom/internal/item/domain"
	"github.com/stockroomhq/stockroom/internal/metrics"
	"github.com/stockroomhq/stockroom/internal/notifier"
	pkgdb "github.com/stockroomhq/stockroom/pkg/db"
	"github.com/stockroomhq/stockroom/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	History  historydomain.Service
	Notifier notifier.Queue
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	history  historydomain.Service
	notifier notifier.Queue
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("item.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		history:  p.History,
		notifier: p.Notifier,
		metrics:  p.Metrics,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListItemRequest) (domain.ListItemResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	rows, err := s.repo.List(ctx, s.db, domain.ListItemFilter{
		Name:       strings.TrimSpace(req.Name),
		CategoryID: req.CategoryID,
		Assembly:   req.Assembly,
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListItemResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(rows, pageSize, func(item *domain.Item) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(rows) > pageSize {
		rows = rows[:pageSize]
	}

	items := make([]domain.Item, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		items = append(items, *row)
	}

	resp := domain.ListItemResponse{Items: items}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.ItemDetail, error) {
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.ItemDetail{}, err
	}
	if item == nil {
		return domain.ItemDetail{}, domain.ErrNotFound
	}

	detail := domain.ItemDetail{Item: *item}

	if len(item.Bom) > 0 {
		detail.BomDetails, err = s.repo.BomComponents(ctx, s.db, item.Bom)
		if err != nil {
			return domain.ItemDetail{}, err
		}
	}
	if item.CategoryID != nil {
		detail.CategoryName, err = s.repo.CategoryName(ctx, s.db, *item.CategoryID)
		if err != nil {
			return domain.ItemDetail{}, err
		}
	}
	detail.Projects, err = s.repo.ProjectRefs(ctx, s.db, id)
	if err != nil {
		return domain.ItemDetail{}, err
	}

	return detail, nil
}

// Create inserts the item, seeds its lockstep counters from the initial stock
// and writes the create action to the ledger, all in one transaction. The
// assembly flag is fixed here, derived from whether a BOM was supplied.
func (s *Service) Create(ctx context.Context, req domain.CreateItemRequest) (domain.Item, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Item{}, domain.ErrInvalidName
	}
	if req.InStock < 0 {
		return domain.Item{}, domain.ErrInvalidQuantity
	}
	for _, entry := range req.Bom {
		if entry.ItemID == 0 || entry.RequiredQuantity <= 0 {
			return domain.Item{}, domain.ErrInvalidBom
		}
	}

	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		sku = slug.Make(name)
	}

	now := s.clock.Now()
	item := domain.Item{
		ID:                 s.genID.Generate(),
		Name:               name,
		SKU:                sku,
		InStock:            req.InStock,
		MeasurementUnit:    strings.TrimSpace(req.MeasurementUnit),
		UnitPrice:          req.UnitPrice,
		IsAssembly:         len(req.Bom) > 0,
		Bom:                datatypes.NewJSONSlice(req.Bom),
		MinAllowedQuantity: req.MinAllowedQuantity,
		ShopLink:           strings.TrimSpace(req.ShopLink),
		Location:           strings.TrimSpace(req.Location),
		Properties:         datatypes.NewJSONSlice(req.Properties),
		CategoryID:         req.CategoryID,
		TotalIn:            req.InStock,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if item.IsAssembly {
		item.TotalAssembled = req.InStock
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &item); err != nil {
			if pkgdb.IsDuplicateKeyErr(err) {
				return domain.ErrSKUExists
			}
			return err
		}

		action := historydomain.Action{
			Kind:     historydomain.ActionCreate,
			Quantity: item.InStock,
			ActorID:  req.ActorID,
		}
		if req.OccurredAt != nil {
			action.CreatedAt = req.OccurredAt.UTC()
		}
		if _, err := s.history.Append(ctx, tx, item.ID, action); err != nil {
			return err
		}

		if len(req.ProjectIDs) > 0 {
			if err := s.repo.AssociateProjects(ctx, tx, item.ID, req.ProjectIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Item{}, err
	}

	// re-read to pick up the history back-reference
	created, err := s.repo.FindByID(ctx, s.db, item.ID)
	if err != nil || created == nil {
		return item, nil
	}
	return *created, nil
}

func (s *Service) UpdateFields(ctx context.Context, req domain.UpdateItemRequest) (domain.Item, error) {
	item, err := s.repo.FindByID(ctx, s.db, req.ItemID)
	if err != nil {
		return domain.Item{}, err
	}
	if item == nil {
		return domain.Item{}, domain.ErrNotFound
	}

	fields := map[string]any{}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" && *req.Name != item.Name {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.MeasurementUnit != nil && *req.MeasurementUnit != item.MeasurementUnit {
		fields["measurement_unit"] = *req.MeasurementUnit
	}
	if req.UnitPrice != nil && *req.UnitPrice != item.UnitPrice {
		fields["unit_price"] = *req.UnitPrice
	}
	if req.MinAllowedQuantity != nil && *req.MinAllowedQuantity != item.MinAllowedQuantity {
		fields["min_allowed_quantity"] = *req.MinAllowedQuantity
	}
	if req.ShopLink != nil && *req.ShopLink != item.ShopLink {
		fields["shop_link"] = *req.ShopLink
	}
	if req.Location != nil && *req.Location != item.Location {
		fields["location"] = *req.Location
	}
	if req.CategoryID != nil && (item.CategoryID == nil || *item.CategoryID != *req.CategoryID) {
		fields["category_id"] = *req.CategoryID
	}

	if len(fields) == 0 {
		return domain.Item{}, domain.ErrNoChange
	}

	if err := s.repo.UpdateFields(ctx, s.db, req.ItemID, fields); err != nil {
		return domain.Item{}, err
	}

	updated, err := s.repo.FindByID(ctx, s.db, req.ItemID)
	if err != nil {
		return domain.Item{}, err
	}
	if updated == nil {
		return domain.Item{}, domain.ErrNotFound
	}
	return *updated, nil
}

// AdjustQuantity applies a stock delta and its ledger entry as one
// transaction. The low-stock check runs here, after commit, because this is a
// top-level mutation; assembly debits defer notification to the engine.
func (s *Service) AdjustQuantity(ctx context.Context, req domain.AdjustQuantityRequest) (domain.Item, error) {
	if req.Amount == 0 {
		return domain.Item{}, domain.ErrInvalidQuantity
	}

	var updated *domain.Item
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		updated, err = s.applyAdjust(ctx, tx, adjustParams{
			actorID:    req.ActorID,
			itemID:     req.ItemID,
			delta:      req.Amount,
			projectID:  req.ProjectID,
			comment:    req.Comment,
			occurredAt: req.OccurredAt,
			kind:       historydomain.ActionUpdateQuantity,
		})
		return err
	})
	if err != nil {
		return domain.Item{}, err
	}

	if updated.InStock <= updated.MinAllowedQuantity {
		s.notifyLowStock(*updated)
	}

	s.log.Info("updated stock",
		zap.String("item_id", updated.ID.String()),
		zap.String("item_name", updated.Name),
		zap.Float64("amount", req.Amount),
		zap.Float64("in_stock", updated.InStock),
	)
	return *updated, nil
}

// SetQuantity overwrites the stock level without touching the lockstep
// counters. This is a correction primitive, not a delta: the ledger entry
// records the new amount together with the stock it replaced.
func (s *Service) SetQuantity(ctx context.Context, req domain.SetQuantityRequest) (domain.Item, error) {
	var prev *domain.Item
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		prev, err = s.repo.SetStock(ctx, tx, req.ItemID, req.NewAmount)
		if err != nil {
			return err
		}
		if prev == nil {
			return domain.ErrNotFound
		}

		prevStock := prev.InStock
		action := historydomain.Action{
			Kind:      historydomain.ActionSetQuantity,
			Quantity:  req.NewAmount,
			PrevStock: &prevStock,
			ActorID:   req.ActorID,
			Comment:   req.Comment,
		}
		_, err = s.history.Append(ctx, tx, req.ItemID, action)
		return err
	})
	if err != nil {
		return domain.Item{}, err
	}

	updated := *prev
	updated.InStock = req.NewAmount
	return updated, nil
}

type adjustParams struct {
	actorID    snowflake.ID
	itemID     snowflake.ID
	delta      float64
	projectID  *snowflake.ID
	comment    string
	occurredAt *time.Time
	kind       historydomain.ActionKind
	assembled  bool
}

// applyAdjust is the quantity mutator shared by the top-level adjust path and
// the assembly walk: one stock update plus exactly one ledger entry, on
// whatever gorm handle the caller passes in.
func (s *Service) applyAdjust(ctx context.Context, tx *gorm.DB, p adjustParams) (*domain.Item, error) {
	updated, err := s.repo.AdjustStock(ctx, tx, p.itemID, p.delta, p.assembled)
	if err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound
	}

	action := historydomain.Action{
		Kind:      p.kind,
		Quantity:  p.delta,
		ActorID:   p.actorID,
		ProjectID: p.projectID,
		Comment:   p.comment,
	}
	if p.occurredAt != nil {
		action.CreatedAt = p.occurredAt.UTC()
	}
	if _, err := s.history.Append(ctx, tx, p.itemID, action); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) notifyLowStock(item domain.Item) {
	s.notifier.EnqueueLowStock(notifier.LowStockItem{
		ID:              item.ID,
		Name:            item.Name,
		InStock:         item.InStock,
		MeasurementUnit: item.MeasurementUnit,
		ShopLink:        item.ShopLink,
	})
	if s.metrics != nil {
		s.metrics.LowStockNotifications.Inc()
	}
}
