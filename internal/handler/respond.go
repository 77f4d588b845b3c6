package handler

import (
	"errors"
	"math"
	"net/http"

	"collabs/internal/authz"
	"collabs/internal/middleware"
	"collabs/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Pagination — конверт пагинации для всех списков
type Pagination struct {
	Total        int64 `json:"total"`
	CurrentPage  int   `json:"currentPage"`
	ItemsPerPage int   `json:"itemsPerPage"`
	TotalPages   int   `json:"totalPages"`
}

func paginate(total int64, page int) Pagination {
	if page < 1 {
		page = 1
	}
	return Pagination{
		Total:        total,
		CurrentPage:  page,
		ItemsPerPage: repository.PageSize,
		TotalPages:   int(math.Ceil(float64(total) / float64(repository.PageSize))),
	}
}

// currentUserID достает uuid аутентифицированного пользователя из
// контекста. При отсутствии пишет ответ и возвращает false.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return uuid.Nil, false
	}

	authenticatedUserID, ok := userID.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return uuid.Nil, false
	}

	return authenticatedUserID, true
}

// respondAuthzError переводит отказ гейта в HTTP-ответ
func respondAuthzError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrNotAMember):
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this project"})
	case errors.Is(err, authz.ErrInsufficientRole):
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to perform this action"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check project access"})
	}
}
