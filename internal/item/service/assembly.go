package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	historydomain "github.com/stockroomhq/stockroom/internal/history/domain"
	"github.com/stockroomhq/stockroom/internal/item/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// assemblyRun carries the state of one Assemble call through the recursive
// BOM walk: the transaction handle, the debit comment shared by every
// component entry, and the items that crossed their low-stock threshold
// while being debited. Low-stock items are collected instead of notified
// inline so nothing is enqueued for a transaction that later rolls back.
type assemblyRun struct {
	tx         *gorm.DB
	actorID    snowflake.ID
	comment    string
	occurredAt *time.Time

	lowStock map[snowflake.ID]domain.Item
	order    []snowflake.ID
}

func (r *assemblyRun) collect(item domain.Item) {
	if _, ok := r.lowStock[item.ID]; ok {
		return
	}
	r.lowStock[item.ID] = item
	r.order = append(r.order, item.ID)
}

// Assemble builds quantity units of an assembly item: every component named
// by the BOM is debited (recursing into sub-assemblies whose own stock cannot
// cover their share) and the root is credited, all inside one transaction.
// Any shortfall on a non-assembly component aborts the whole run.
func (s *Service) Assemble(ctx context.Context, req domain.AssembleRequest) (domain.Item, error) {
	if req.Quantity <= 0 {
		return domain.Item{}, domain.ErrInvalidQuantity
	}

	run := &assemblyRun{
		actorID:    req.ActorID,
		occurredAt: req.OccurredAt,
		lowStock:   map[snowflake.ID]domain.Item{},
	}

	var assembled *domain.Item
	err := s.db.Transaction(func(tx *gorm.DB) error {
		run.tx = tx

		root, err := s.repo.FindByID(ctx, tx, req.ItemID)
		if err != nil {
			return err
		}
		if root == nil {
			return domain.ErrNotFound
		}
		run.comment = fmt.Sprintf("Used for assembly of %q", root.Name)

		if err := s.consumeBom(ctx, run, root.Bom, req.Quantity); err != nil {
			return err
		}

		assembled, err = s.applyAdjust(ctx, tx, adjustParams{
			actorID:    run.actorID,
			itemID:     root.ID,
			delta:      req.Quantity,
			occurredAt: run.occurredAt,
			kind:       historydomain.ActionAssemble,
			assembled:  true,
		})
		return err
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.Assemblies.WithLabelValues("error").Inc()
		}
		return domain.Item{}, err
	}
	if s.metrics != nil {
		s.metrics.Assemblies.WithLabelValues("ok").Inc()
	}

	for _, id := range run.order {
		s.notifyLowStock(run.lowStock[id])
	}

	s.log.Info("assembled item",
		zap.String("item_id", assembled.ID.String()),
		zap.String("item_name", assembled.Name),
		zap.Float64("quantity", req.Quantity),
		zap.Float64("in_stock", assembled.InStock),
	)
	return *assembled, nil
}

// consumeBom debits the components for quantity units of the parent. A
// sub-assembly whose own stock cannot cover its share is built from scratch
// instead: the walk recurses with the sub-assembly's full requirement and the
// sub-assembly itself is neither debited nor credited.
func (s *Service) consumeBom(ctx context.Context, run *assemblyRun, bom []domain.BomEntry, quantity float64) error {
	for _, entry := range bom {
		component, err := s.repo.FindStockFields(ctx, run.tx, entry.ItemID)
		if err != nil {
			return err
		}
		if component == nil {
			return domain.ErrNotFound
		}

		totalRequired := entry.RequiredQuantity * quantity

		if component.InStock < totalRequired {
			if !component.IsAssembly {
				return &domain.InsufficientStockError{
					ItemID:    component.ID,
					Name:      component.Name,
					Required:  totalRequired,
					Available: component.InStock,
				}
			}

			sub, err := s.repo.FindByID(ctx, run.tx, component.ID)
			if err != nil {
				return err
			}
			if sub == nil {
				return domain.ErrNotFound
			}
			if err := s.consumeBom(ctx, run, sub.Bom, totalRequired); err != nil {
				return err
			}
			continue
		}

		updated, err := s.applyAdjust(ctx, run.tx, adjustParams{
			actorID:    run.actorID,
			itemID:     component.ID,
			delta:      -totalRequired,
			comment:    run.comment,
			occurredAt: run.occurredAt,
			kind:       historydomain.ActionUpdateQuantity,
		})
		if err != nil {
			return err
		}
		if updated.InStock <= updated.MinAllowedQuantity {
			run.collect(*updated)
		}
	}
	return nil
}
