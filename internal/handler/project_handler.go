package handler

import (
	"context"
	"net/http"
	"strconv"

	"collabs/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProjectStore interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	GetByUser(ctx context.Context, userID uuid.UUID, ownedOnly bool, page int) ([]model.Project, int64, error)
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type MemberLister interface {
	GetByProjectID(ctx context.Context, projectID uuid.UUID, page int) ([]model.Collaborator, int64, error)
}

type Gate interface {
	Check(ctx context.Context, actorID, projectID uuid.UUID, required model.Role) (*model.Collaborator, error)
}

type ProjectHandler struct {
	projectRepo ProjectStore
	columnRepo  ColumnStore
	memberRepo  MemberLister
	gate        Gate
}

func NewProjectHandler(projectRepo ProjectStore, columnRepo ColumnStore, memberRepo MemberLister, gate Gate) *ProjectHandler {
	return &ProjectHandler{
		projectRepo: projectRepo,
		columnRepo:  columnRepo,
		memberRepo:  memberRepo,
		gate:        gate,
	}
}

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Open        *bool  `json:"open"`
}

type UpdateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Open        *bool  `json:"open"`
}

type ProjectResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Open        bool   `json:"open"`
	OwnerID     string `json:"owner_id"`
}

type MemberResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	ProjectID string `json:"project_id"`
	Role      string `json:"role"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

func toProjectResponse(p *model.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Open:        p.Open,
		OwnerID:     p.OwnerID.String(),
	}
}

// Create создает проект вместе с владельцем-админом и стартовыми колонками
func (h *ProjectHandler) Create(c *gin.Context) {
	authenticatedUserID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	open := true
	if req.Open != nil {
		open = *req.Open
	}

	project := &model.Project{
		Name:        req.Name,
		Description: req.Description,
		Open:        open,
		OwnerID:     authenticatedUserID,
	}

	if err := h.projectRepo.Create(c.Request.Context(), project); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	c.JSON(http.StatusCreated, toProjectResponse(project))
}

// GetAll возвращает проекты пользователя: собственные и те, где он участник
func (h *ProjectHandler) GetAll(c *gin.Context) {
	authenticatedUserID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	ownedOnly := c.Query("created_by") == "me"

	projects, total, err := h.projectRepo.GetByUser(c.Request.Context(), authenticatedUserID, ownedOnly, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	response := make([]ProjectResponse, len(projects))
	for i := range projects {
		response[i] = toProjectResponse(&projects[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"projects":   response,
		"pagination": paginate(total, page),
	})
}

func (h *ProjectHandler) Update(c *gin.Context) {
	authenticatedUserID, ok := currentUserID(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return
	}

	project, err := h.projectRepo.GetByID(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	// Менять метаданные проекта может только ADMIN
	if _, err := h.gate.Check(c.Request.Context(), authenticatedUserID, projectID, model.RoleAdmin); err != nil {
		respondAuthzError(c, err)
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Name != "" {
		project.Name = req.Name
	}
	if req.Description != "" {
		project.Description = req.Description
	}
	if req.Open != nil {
		project.Open = *req.Open
	}

	if err := h.projectRepo.Update(c.Request.Context(), project); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(project))
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	authenticatedUserID, ok := currentUserID(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return
	}

	project, err := h.projectRepo.GetByID(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	if _, err := h.gate.Check(c.Request.Context(), authenticatedUserID, projectID, model.RoleAdmin); err != nil {
		respondAuthzError(c, err)
		return
	}

	if err := h.projectRepo.Delete(c.Request.Context(), projectID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}

// GetColumns возвращает колонки проекта любому его участнику
func (h *ProjectHandler) GetColumns(c *gin.Context) {
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

	columns, err := h.columnRepo.GetByProjectID(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve columns"})
		return
	}

	response := make([]ColumnResponse, len(columns))
	for i := range columns {
		response[i] = toColumnResponse(&columns[i])
	}

	c.JSON(http.StatusOK, response)
}

// GetMembers возвращает участников проекта с пагинацией
func (h *ProjectHandler) GetMembers(c *gin.Context) {
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

	members, total, err := h.memberRepo.GetByProjectID(c.Request.Context(), projectID, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve members"})
		return
	}

	response := make([]MemberResponse, len(members))
	for i, member := range members {
		response[i] = MemberResponse{
			ID:        member.ID.String(),
			UserID:    member.UserID.String(),
			ProjectID: member.ProjectID.String(),
			Role:      string(member.Role),
			Firstname: member.User.Firstname,
			Lastname:  member.User.Lastname,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"members":    response,
		"pagination": paginate(total, page),
	})
}
