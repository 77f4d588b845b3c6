package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"collabs/internal/event"
	"collabs/internal/model"
	"collabs/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ColumnStore interface {
	Create(ctx context.Context, column *model.Column) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Column, error)
	GetByProjectID(ctx context.Context, projectID uuid.UUID) ([]model.Column, error)
	GetMaxPosition(ctx context.Context, projectID uuid.UUID) (int, error)
	Update(ctx context.Context, column *model.Column) error
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, projectID uuid.UUID, changes []repository.PositionChange) ([]model.Column, error)
}

type EventBus interface {
	Publish(e event.Event)
}

type ColumnHandler struct {
	columnRepo ColumnStore
	gate       Gate
	bus        EventBus
}

func NewColumnHandler(columnRepo ColumnStore, gate Gate, bus EventBus) *ColumnHandler {
	return &ColumnHandler{
		columnRepo: columnRepo,
		gate:       gate,
		bus:        bus,
	}
}

type CreateColumnRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Identifier  string `json:"identifier"`
	ColumnLimit *int   `json:"column_limit"`
}

type UpdateColumnRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Identifier  string `json:"identifier"`
	ColumnLimit *int   `json:"column_limit"`
}

// ColumnResponse несет updated_at как version stamp: клиент возвращает
// его в expected_version при переупорядочивании
type ColumnResponse struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Identifier  string    `json:"identifier"`
	Position    int       `json:"position"`
	ColumnLimit *int      `json:"column_limit"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ReorderColumnsRequest struct {
	Columns []ReorderColumnChange `json:"columns" binding:"required,min=1,dive"`
}

type ReorderColumnChange struct {
	ID              string    `json:"id" binding:"required"`
	ExpectedVersion time.Time `json:"expected_version" binding:"required"`
	Position        int       `json:"position" binding:"required"`
}

func toColumnResponse(column *model.Column) ColumnResponse {
	return ColumnResponse{
		ID:          column.ID.String(),
		ProjectID:   column.ProjectID.String(),
		Name:        column.Name,
		Description: column.Description,
		Identifier:  column.Identifier,
		Position:    column.Position,
		ColumnLimit: column.ColumnLimit,
		UpdatedAt:   column.UpdatedAt,
	}
}

// Create добавляет колонку в конец доски
func (h *ColumnHandler) Create(c *gin.Context) {
	authenticatedUserID, ok := currentUserID(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return
	}

	// Добавлять колонки может любой участник
	if _, err := h.gate.Check(c.Request.Context(), authenticatedUserID, projectID, ""); err != nil {
		respondAuthzError(c, err)
		return
	}

	var req CreateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	maxPosition, err := h.columnRepo.GetMaxPosition(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to determine column position"})
		return
	}

	column := &model.Column{
		ProjectID:   projectID,
		Name:        req.Name,
		Description: req.Description,
		Identifier:  req.Identifier,
		ColumnLimit: req.ColumnLimit,
		Position:    maxPosition + 1,
	}

	if err := h.columnRepo.Create(c.Request.Context(), column); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create column"})
		return
	}

	h.bus.Publish(event.ColumnCreated{ProjectID: projectID, Column: column})

	c.JSON(http.StatusCreated, toColumnResponse(column))
}

func (h *ColumnHandler) Update(c *gin.Context) {
	authenticatedUserID, ok := currentUserID(c)
	if !ok {
		return
	}

	columnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid column ID format"})
		return
	}

	column, err := h.columnRepo.GetByID(c.Request.Context(), columnID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve column"})
		return
	}
	if column == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Column not found"})
		return
	}

	if _, err := h.gate.Check(c.Request.Context(), authenticatedUserID, column.ProjectID, ""); err != nil {
		respondAuthzError(c, err)
		return
	}

	var req UpdateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Name != "" {
		column.Name = req.Name
	}
	if req.Description != "" {
		column.Description = req.Description
	}
	if req.Identifier != "" {
		column.Identifier = req.Identifier
	}
	if req.ColumnLimit != nil {
		column.ColumnLimit = req.ColumnLimit
	}

	if err := h.columnRepo.Update(c.Request.Context(), column); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update column"})
		return
	}

	h.bus.Publish(event.ColumnUpdated{ProjectID: column.ProjectID, Column: column})

	c.JSON(http.StatusOK, toColumnResponse(column))
}

// Delete удаляет колонку вместе с ее задачами. Только ADMIN.
func (h *ColumnHandler) Delete(c *gin.Context) {
	authenticatedUserID, ok := currentUserID(c)
	if !ok {
		return
	}

	columnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid column ID format"})
		return
	}

	column, err := h.columnRepo.GetByID(c.Request.Context(), columnID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve column"})
		return
	}
	if column == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Column not found"})
		return
	}

	if _, err := h.gate.Check(c.Request.Context(), authenticatedUserID, column.ProjectID, model.RoleAdmin); err != nil {
		respondAuthzError(c, err)
		return
	}

	if err := h.columnRepo.Delete(c.Request.Context(), columnID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete column"})
		return
	}

	h.bus.Publish(event.ColumnDeleted{ProjectID: column.ProjectID, ColumnID: columnID})

	c.JSON(http.StatusOK, gin.H{"message": "Column deleted successfully"})
}

// Reorder применяет батч позиционных изменений атомарно. Конфликт
// версий отдается клиенту как 409: он должен перечитать доску и
// повторить сам — автоматический ретрай тут невозможен, намерение
// после чужой правки знает только пользователь.
func (h *ColumnHandler) Reorder(c *gin.Context) {
	authenticatedUserID, ok := currentUserID(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return
	}

	// Перестраивать доску может только ADMIN
	if _, err := h.gate.Check(c.Request.Context(), authenticatedUserID, projectID, model.RoleAdmin); err != nil {
		respondAuthzError(c, err)
		return
	}

	var req ReorderColumnsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	changes := make([]repository.PositionChange, len(req.Columns))
	for i, change := range req.Columns {
		columnID, err := uuid.Parse(change.ID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid column ID format"})
			return
		}
		changes[i] = repository.PositionChange{
			ColumnID:        columnID,
			ExpectedVersion: change.ExpectedVersion,
			NewPosition:     change.Position,
		}
	}

	committed, err := h.columnRepo.Reorder(c.Request.Context(), projectID, changes)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrVersionConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "Column order changed concurrently, refresh and try again"})
		case errors.Is(err, repository.ErrColumnNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Column not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder columns"})
		}
		return
	}

	// Одно событие на батч: клиентам достаточно знать, что порядок
	// изменился, чтобы перечитать колонки
	if len(committed) > 0 {
		h.bus.Publish(event.ColumnUpdated{ProjectID: projectID, Column: &committed[0]})
	}

	response := make([]ColumnResponse, len(committed))
	for i := range committed {
		response[i] = toColumnResponse(&committed[i])
	}

	c.JSON(http.StatusOK, gin.H{"columns": response})
}
