package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"collabs/internal/event"
	"collabs/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CommentStore interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Comment, error)
	GetByTaskID(ctx context.Context, taskID uuid.UUID, page int) ([]model.Comment, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type TaskFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
}

type CommentHandler struct {
	commentRepo CommentStore
	taskRepo    TaskFinder
	gate        Gate
	bus         EventBus
}

func NewCommentHandler(commentRepo CommentStore, taskRepo TaskFinder, gate Gate, bus EventBus) *CommentHandler {
	return &CommentHandler{
		commentRepo: commentRepo,
		taskRepo:    taskRepo,
		gate:        gate,
		bus:         bus,
	}
}

type CreateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type CommentResponse struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func toCommentResponse(comment *model.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID.String(),
		TaskID:    comment.TaskID.String(),
		UserID:    comment.UserID.String(),
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
	}
}

// Create добавляет комментарий к задаче. Автор должен быть участником
// проекта, которому принадлежит задача.
func (h *CommentHandler) Create(c *gin.Context) {
	authenticatedUserID, ok := currentUserID(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
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
		c.JSON(http.StatusNotFound, gin.H{"error": "Task with ID not found"})
		return
	}

	if _, err := h.gate.Check(c.Request.Context(), authenticatedUserID, task.Column.ProjectID, ""); err != nil {
		respondAuthzError(c, err)
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	comment := &model.Comment{
		TaskID: taskID,
		UserID: authenticatedUserID,
		Text:   req.Text,
	}

	if err := h.commentRepo.Create(c.Request.Context(), comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	h.bus.Publish(event.CommentCreated{TaskID: taskID, Comment: comment})

	c.JSON(http.StatusCreated, toCommentResponse(comment))
}

func (h *CommentHandler) GetAll(c *gin.Context) {
	authenticatedUserID, ok := currentUserID(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
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
		c.JSON(http.StatusNotFound, gin.H{"error": "Task with ID not found"})
		return
	}

	if _, err := h.gate.Check(c.Request.Context(), authenticatedUserID, task.Column.ProjectID, ""); err != nil {
		respondAuthzError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	comments, total, err := h.commentRepo.GetByTaskID(c.Request.Context(), taskID, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comments"})
		return
	}

	response := make([]CommentResponse, len(comments))
	for i := range comments {
		response[i] = toCommentResponse(&comments[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"comments":   response,
		"pagination": paginate(total, page),
	})
}

func (h *CommentHandler) Delete(c *gin.Context) {
	authenticatedUserID, ok := currentUserID(c)
	if !ok {
		return
	}

	commentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID format"})
		return
	}

	comment, err := h.commentRepo.GetByID(c.Request.Context(), commentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comment"})
		return
	}
	if comment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "This comment cannot be found"})
		return
	}

	// Удалять можно только свои комментарии
	if comment.UserID != authenticatedUserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to perform this action"})
		return
	}

	if err := h.commentRepo.Delete(c.Request.Context(), commentID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
