package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	itemdomain "github.com/stockroomhq/stockroom/internal/item/domain"
	"github.com/stockroomhq/stockroom/pkg/db/pagination"
)

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}

func parseOptionalID(raw string) *snowflake.ID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return nil
	}
	return &id
}

func parseOptionalTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Server) ListItems(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Name       string `form:"name"`
		CategoryID string `form:"category_id"`
		Assembly   *bool  `form:"assembly"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.itemSvc.List(c.Request.Context(), itemdomain.ListItemRequest{
		PageToken:  query.PageToken,
		PageSize:   int(query.PageSize),
		Name:       strings.TrimSpace(query.Name),
		CategoryID: parseOptionalID(query.CategoryID),
		Assembly:   query.Assembly,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type createItemRequest struct {
	ActorID            string                `json:"actor_id"`
	Name               string                `json:"name"`
	SKU                string                `json:"sku"`
	InStock            float64               `json:"in_stock"`
	MeasurementUnit    string                `json:"measurement_unit"`
	UnitPrice          float64               `json:"unit_price"`
	Bom                []itemdomain.BomEntry `json:"bom"`
	MinAllowedQuantity float64               `json:"min_allowed_quantity"`
	ShopLink           string                `json:"shop_link"`
	Location           string                `json:"location"`
	Properties         []itemdomain.Property `json:"properties"`
	CategoryID         string                `json:"category_id"`
	ProjectIDs         []string              `json:"project_ids"`
	OccurredAt         string                `json:"occurred_at"`
}

func (s *Server) CreateItem(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	occurredAt, err := parseOptionalTime(req.OccurredAt)
	if err != nil {
		AbortWithError(c, newValidationError("occurred_at", "invalid_occurred_at", "invalid occurred_at"))
		return
	}

	var projectIDs []snowflake.ID
	for _, raw := range req.ProjectIDs {
		id, err := parseID(raw)
		if err != nil {
			AbortWithError(c, newValidationError("project_ids", "invalid_project_ids", "invalid project id"))
			return
		}
		projectIDs = append(projectIDs, id)
	}

	var actorID snowflake.ID
	if id := parseOptionalID(req.ActorID); id != nil {
		actorID = *id
	}

	resp, err := s.itemSvc.Create(c.Request.Context(), itemdomain.CreateItemRequest{
		ActorID:            actorID,
		Name:               req.Name,
		SKU:                req.SKU,
		InStock:            req.InStock,
		MeasurementUnit:    req.MeasurementUnit,
		UnitPrice:          req.UnitPrice,
		Bom:                req.Bom,
		MinAllowedQuantity: req.MinAllowedQuantity,
		ShopLink:           req.ShopLink,
		Location:           req.Location,
		Properties:         req.Properties,
		CategoryID:         parseOptionalID(req.CategoryID),
		ProjectIDs:         projectIDs,
		OccurredAt:         occurredAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetItemByID(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid item id"))
		return
	}

	resp, err := s.itemSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateItemRequest struct {
	Name               *string  `json:"name"`
	MeasurementUnit    *string  `json:"measurement_unit"`
	UnitPrice          *float64 `json:"unit_price"`
	MinAllowedQuantity *float64 `json:"min_allowed_quantity"`
	ShopLink           *string  `json:"shop_link"`
	Location           *string  `json:"location"`
	CategoryID         *string  `json:"category_id"`
}

func (s *Server) UpdateItemFields(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid item id"))
		return
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := itemdomain.UpdateItemRequest{
		ItemID:             id,
		Name:               req.Name,
		MeasurementUnit:    req.MeasurementUnit,
		UnitPrice:          req.UnitPrice,
		MinAllowedQuantity: req.MinAllowedQuantity,
		ShopLink:           req.ShopLink,
		Location:           req.Location,
	}
	if req.CategoryID != nil {
		update.CategoryID = parseOptionalID(*req.CategoryID)
	}

	resp, err := s.itemSvc.UpdateFields(c.Request.Context(), update)
	if err != nil {
		if err == itemdomain.ErrNoChange {
			c.Status(http.StatusNotModified)
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetRawBomMaterials(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid item id"))
		return
	}

	resp, err := s.itemSvc.RawBomMaterials(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type adjustQuantityRequest struct {
	ActorID    string  `json:"actor_id"`
	Amount     float64 `json:"amount"`
	ProjectID  string  `json:"project_id"`
	Comment    string  `json:"comment"`
	OccurredAt string  `json:"occurred_at"`
}

func (s *Server) AdjustItemQuantity(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid item id"))
		return
	}

	var req adjustQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	occurredAt, err := parseOptionalTime(req.OccurredAt)
	if err != nil {
		AbortWithError(c, newValidationError("occurred_at", "invalid_occurred_at", "invalid occurred_at"))
		return
	}

	var actorID snowflake.ID
	if aid := parseOptionalID(req.ActorID); aid != nil {
		actorID = *aid
	}

	resp, err := s.itemSvc.AdjustQuantity(c.Request.Context(), itemdomain.AdjustQuantityRequest{
		ActorID:    actorID,
		ItemID:     id,
		Amount:     req.Amount,
		ProjectID:  parseOptionalID(req.ProjectID),
		Comment:    strings.TrimSpace(req.Comment),
		OccurredAt: occurredAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type setQuantityRequest struct {
	ActorID   string  `json:"actor_id"`
	NewAmount float64 `json:"new_amount"`
	Comment   string  `json:"comment"`
}

func (s *Server) SetItemQuantity(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid item id"))
		return
	}

	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var actorID snowflake.ID
	if aid := parseOptionalID(req.ActorID); aid != nil {
		actorID = *aid
	}

	resp, err := s.itemSvc.SetQuantity(c.Request.Context(), itemdomain.SetQuantityRequest{
		ActorID:   actorID,
		ItemID:    id,
		NewAmount: req.NewAmount,
		Comment:   strings.TrimSpace(req.Comment),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type assembleRequest struct {
	ActorID    string  `json:"actor_id"`
	Quantity   float64 `json:"quantity"`
	OccurredAt string  `json:"occurred_at"`
}

func (s *Server) AssembleItem(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid item id"))
		return
	}

	var req assembleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	occurredAt, err := parseOptionalTime(req.OccurredAt)
	if err != nil {
		AbortWithError(c, newValidationError("occurred_at", "invalid_occurred_at", "invalid occurred_at"))
		return
	}

	var actorID snowflake.ID
	if aid := parseOptionalID(req.ActorID); aid != nil {
		actorID = *aid
	}

	resp, err := s.itemSvc.Assemble(c.Request.Context(), itemdomain.AssembleRequest{
		ActorID:    actorID,
		ItemID:     id,
		Quantity:   req.Quantity,
		OccurredAt: occurredAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetItemHistory(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid item id"))
		return
	}

	var query struct {
		Entries int `form:"entries"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.historySvc.ReadHistory(c.Request.Context(), id, query.Entries)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
