package handler

import (
	"context"
	"net/http"
	"strconv"

	"collabs/internal/event"
	"collabs/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	GetByProjectID(ctx context.Context, projectID uuid.UUID, columnID *uuid.UUID, page int) ([]model.Task, int64, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ColumnFinder interface {
	GetFirst(ctx context.Context, projectID uuid.UUID) (*model.Column, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Column, error)
}

type AssigneeFinder interface {
	GetByIDs(ctx context.Context, projectID uuid.UUID, ids []uuid.UUID) ([]model.Collaborator, error)
}

type TaskHandler struct {
	taskRepo   TaskStore
	columnRepo ColumnFinder
	memberRepo AssigneeFinder
	gate       Gate
	bus        EventBus
}

func NewTaskHandler(taskRepo TaskStore, columnRepo ColumnFinder, memberRepo AssigneeFinder, gate Gate, bus EventBus) *TaskHandler {
	return &TaskHandler{
		taskRepo:   taskRepo,
		columnRepo: columnRepo,
		memberRepo: memberRepo,
		gate:       gate,
		bus:        bus,
	}
}

type CreateTaskRequest struct {
	Title     string   `json:"title" binding:"required"`
	Assignees []string `json:"assignees"`
}

type TaskResponse struct {
	ID       string `json:"id"`
	ColumnID string `json:"column_id"`
	Title    string `json:"title"`
}

// Create создает задачу в первой колонке доски
func (h *TaskHandler) Create(c *gin.Context) {
	authenticatedUserID, ok := currentUserID(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return
	}

	if _, err := h.gate.Check(c.Request.Context(), authenticatedUserID, projectID, ""); err != nil {
		respondAuthzError(c, err)
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	column, err := h.columnRepo.GetFirst(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve column"})
		return
	}
	if column == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task cannot be created outside a column. Please add a column"})
		return
	}

	var assignees []model.Collaborator
	if len(req.Assignees) > 0 {
		ids := make([]uuid.UUID, len(req.Assignees))
		for i, raw := range req.Assignees {
			id, err := uuid.Parse(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee ID format"})
				return
			}
			ids[i] = id
		}

		assignees, err = h.memberRepo.GetByIDs(c.Request.Context(), projectID, ids)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify assignees"})
			return
		}
		if len(assignees) != len(ids) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "One or more collaborators cannot be found in this project"})
			return
		}
	}

	task := &model.Task{
		ColumnID:  column.ID,
		Title:     req.Title,
		Assignees: assignees,
	}

	if err := h.taskRepo.Create(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	h.bus.Publish(event.TaskCreated{ProjectID: projectID, Task: task})

	c.JSON(http.StatusCreated, TaskResponse{
		ID:       task.ID.String(),
		ColumnID: task.ColumnID.String(),
		Title:    task.Title,
	})
}

// GetAll возвращает задачи проекта с опциональным фильтром по колонке
func (h *TaskHandler) GetAll(c *gin.Context) {
	authenticatedUserID, ok := currentUserID(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return
	}

	if _, err := h.gate.Check(c.Request.Context(), authenticatedUserID, projectID, ""); err != nil {
		respondAuthzError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	var columnID *uuid.UUID
	if raw := c.Query("column_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid column ID format"})
			return
		}
		columnID = &id
	}

	tasks, total, err := h.taskRepo.GetByProjectID(c.Request.Context(), projectID, columnID, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	response := make([]TaskResponse, len(tasks))
	for i, task := range tasks {
		response[i] = TaskResponse{
			ID:       task.ID.String(),
			ColumnID: task.ColumnID.String(),
			Title:    task.Title,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":      response,
		"pagination": paginate(total, page),
	})
}

type UpdateTaskRequest struct {
	Title    string `json:"title"`
	ColumnID string `json:"column_id"`
}

// loadProjectTask достает задачу по route-параметрам, проверяя членство
// вызывающего и принадлежность задачи проекту. nil — ответ уже записан.
func (h *TaskHandler) loadProjectTask(c *gin.Context) *model.Task {
	authenticatedUserID, ok := currentUserID(c)
	if !ok {
		return nil
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return nil
	}

	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return nil
	}

	if _, err := h.gate.Check(c.Request.Context(), authenticatedUserID, projectID, ""); err != nil {
		respondAuthzError(c, err)
		return nil
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), taskID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return nil
	}
	if task == nil || task.Column.ProjectID != projectID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return nil
	}

	return task
}

// Get возвращает одну задачу проекта
func (h *TaskHandler) Get(c *gin.Context) {
	task := h.loadProjectTask(c)
	if task == nil {
		return
	}

	c.JSON(http.StatusOK, TaskResponse{
		ID:       task.ID.String(),
		ColumnID: task.ColumnID.String(),
		Title:    task.Title,
	})
}

// Update меняет заголовок задачи или переносит ее в другую колонку.
// Целевая колонка обязана принадлежать тому же проекту.
func (h *TaskHandler) Update(c *gin.Context) {
	task := h.loadProjectTask(c)
	if task == nil {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.ColumnID != "" {
		columnID, err := uuid.Parse(req.ColumnID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid column ID format"})
			return
		}

		column, err := h.columnRepo.GetByID(c.Request.Context(), columnID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve column"})
			return
		}
		if column == nil || column.ProjectID != task.Column.ProjectID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Column does not belong to this project"})
			return
		}

		task.ColumnID = columnID
	}

	if req.Title != "" {
		task.Title = req.Title
	}

	if err := h.taskRepo.Update(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	c.JSON(http.StatusOK, TaskResponse{
		ID:       task.ID.String(),
		ColumnID: task.ColumnID.String(),
		Title:    task.Title,
	})
}

func (h *TaskHandler) Delete(c *gin.Context) {
	authenticatedUserID, ok := currentUserID(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), taskID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	if _, err := h.gate.Check(c.Request.Context(), authenticatedUserID, task.Column.ProjectID, ""); err != nil {
		respondAuthzError(c, err)
		return
	}

	if err := h.taskRepo.Delete(c.Request.Context(), taskID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
