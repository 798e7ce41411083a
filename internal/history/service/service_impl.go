package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/bwmarrin/snowflake"
	"github.com/stockroomhq/stockroom/internal/clock"
	"github.com/stockroomhq/stockroom/internal/history/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("history.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Append merges an action into the item's ledger, creating the ledger row and
// the item's back-reference on the first write. The new action is inserted in
// CreatedAt order, not appended at the tail, so backdated corrections land in
// their chronological position.
func (s *Service) Append(ctx context.Context, db *gorm.DB, itemID snowflake.ID, action domain.Action) (domain.AppendResult, error) {
	if action.RecordedAt.IsZero() {
		action.RecordedAt = s.clock.Now()
	}
	if action.CreatedAt.IsZero() {
		action.CreatedAt = action.RecordedAt
	}

	ledger, err := s.repo.FindByItem(ctx, db, itemID)
	if err != nil {
		return domain.AppendResult{}, fmt.Errorf("load ledger: %w", err)
	}

	if ledger == nil {
		now := s.clock.Now()
		ledger = &domain.Ledger{
			ID:        s.genID.Generate(),
			ItemID:    itemID,
			Actions:   datatypes.NewJSONSlice([]domain.Action{action}),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Insert(ctx, db, ledger); err != nil {
			return domain.AppendResult{}, fmt.Errorf("create ledger: %w", err)
		}
		// back-reference, same handle so it joins the caller's transaction
		if err := db.WithContext(ctx).
			Exec(`UPDATE items SET history_id = ? WHERE id = ?`, ledger.ID, itemID).Error; err != nil {
			return domain.AppendResult{}, fmt.Errorf("set history reference: %w", err)
		}
		return domain.AppendResult{Created: true}, nil
	}

	actions := append([]domain.Action(ledger.Actions), action)
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].CreatedAt.Before(actions[j].CreatedAt)
	})
	if err := s.repo.UpdateActions(ctx, db, ledger.ID, actions); err != nil {
		return domain.AppendResult{}, fmt.Errorf("update ledger: %w", err)
	}
	return domain.AppendResult{Created: false}, nil
}

// ReadHistory returns the chronologically last limit actions for an item,
// oldest first, enriched with actor and project display names. limit 0 means
// the full history.
func (s *Service) ReadHistory(ctx context.Context, itemID snowflake.ID, limit int) ([]domain.EnrichedAction, error) {
	ledger, err := s.repo.FindByItem(ctx, s.db, itemID)
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		return nil, domain.ErrNotFound
	}

	actions := []domain.Action(ledger.Actions)
	if limit > 0 && len(actions) > limit {
		actions = actions[len(actions)-limit:]
	}

	return s.enrich(ctx, actions)
}

type nameRow struct {
	ID   snowflake.ID
	Name string
}

func (s *Service) enrich(ctx context.Context, actions []domain.Action) ([]domain.EnrichedAction, error) {
	actorIDs := make([]snowflake.ID, 0, len(actions))
	projectIDs := make([]snowflake.ID, 0)
	seenActors := make(map[snowflake.ID]struct{})
	seenProjects := make(map[snowflake.ID]struct{})
	for _, a := range actions {
		if a.ActorID != 0 {
			if _, ok := seenActors[a.ActorID]; !ok {
				seenActors[a.ActorID] = struct{}{}
				actorIDs = append(actorIDs, a.ActorID)
			}
		}
		if a.ProjectID != nil {
			if _, ok := seenProjects[*a.ProjectID]; !ok {
				seenProjects[*a.ProjectID] = struct{}{}
				projectIDs = append(projectIDs, *a.ProjectID)
			}
		}
	}

	actorNames, err := s.lookupNames(ctx, `SELECT id, username AS name FROM users WHERE id IN ?`, actorIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve actors: %w", err)
	}
	projectNames, err := s.lookupNames(ctx, `SELECT id, name FROM projects WHERE id IN ?`, projectIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve projects: %w", err)
	}

	enriched := make([]domain.EnrichedAction, 0, len(actions))
	for _, a := range actions {
		e := domain.EnrichedAction{Action: a}
		e.ActorName = actorNames[a.ActorID]
		if a.ProjectID != nil {
			e.ProjectName = projectNames[*a.ProjectID]
		}
		enriched = append(enriched, e)
	}
	return enriched, nil
}

func (s *Service) lookupNames(ctx context.Context, query string, ids []snowflake.ID) (map[snowflake.ID]string, error) {
	names := make(map[snowflake.ID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var rows []nameRow
	if err := s.db.WithContext(ctx).Raw(query, ids).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}
