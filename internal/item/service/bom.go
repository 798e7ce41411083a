package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/stockroomhq/stockroom/internal/item/domain"
)

// RawBomMaterials flattens the BOM tree of an item into the non-assembly
// leaves it ultimately consumes, with quantities scaled for one unit of the
// root. Duplicate leaves reached through different branches are merged,
// keeping first-seen order.
func (s *Service) RawBomMaterials(ctx context.Context, id snowflake.ID) ([]domain.RawMaterial, error) {
	raw, err := s.searchBom(ctx, id, 1)
	if err != nil {
		return nil, err
	}

	merged := make(map[snowflake.ID]int, len(raw))
	out := make([]domain.RawMaterial, 0, len(raw))
	for _, m := range raw {
		if idx, ok := merged[m.ItemID]; ok {
			out[idx].RequiredQuantity += m.RequiredQuantity
			continue
		}
		merged[m.ItemID] = len(out)
		out = append(out, m)
	}
	return out, nil
}

func (s *Service) searchBom(ctx context.Context, id snowflake.ID, multiplier float64) ([]domain.RawMaterial, error) {
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	if !item.IsAssembly || len(item.Bom) == 0 {
		return []domain.RawMaterial{{
			ItemID:           item.ID,
			Name:             item.Name,
			RequiredQuantity: multiplier,
			InStock:          item.InStock,
		}}, nil
	}

	var out []domain.RawMaterial
	for _, entry := range item.Bom {
		leaves, err := s.searchBom(ctx, entry.ItemID, multiplier*entry.RequiredQuantity)
		if err != nil {
			return nil, err
		}
		out = append(out, leaves...)
	}
	return out, nil
}
