package handler

import (
	"context"
	"errors"
	"net/http"

	"collabs/internal/invite"
	"collabs/internal/model"
	"collabs/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InviteService interface {
	Issue(ctx context.Context, issuerID, projectID uuid.UUID, email string, role model.Role) (string, error)
	Accept(ctx context.Context, token string, acceptingUserID uuid.UUID) (*model.Collaborator, error)
}

type MembershipStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Collaborator, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error
	Delete(ctx context.Context, userID, projectID uuid.UUID) error
}

type ProjectFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
}

type MemberHandler struct {
	invites  InviteService
	members  MembershipStore
	projects ProjectFinder
	gate     Gate
}

func NewMemberHandler(invites InviteService, members MembershipStore, projects ProjectFinder, gate Gate) *MemberHandler {
	return &MemberHandler{
		invites:  invites,
		members:  members,
		projects: projects,
		gate:     gate,
	}
}

type InviteMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"omitempty,oneof=ADMIN MEMBER"`
}

type AcceptInviteRequest struct {
	Token string `json:"token" binding:"required"`
}

type UpdateMemberRequest struct {
	Role string `json:"role" binding:"required,oneof=ADMIN MEMBER"`
}

// loadMember достает запись участника по route-параметрам и проверяет,
// что вызывающий - ADMIN проекта. Возвращает nil, если ответ уже записан.
func (h *MemberHandler) loadMember(c *gin.Context) (*model.Collaborator, *model.Project) {
	authenticatedUserID, ok := currentUserID(c)
	if !ok {
		return nil, nil
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return nil, nil
	}

	memberID, err := uuid.Parse(c.Param("member_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member ID format"})
		return nil, nil
	}

	if _, err := h.gate.Check(c.Request.Context(), authenticatedUserID, projectID, model.RoleAdmin); err != nil {
		respondAuthzError(c, err)
		return nil, nil
	}

	member, err := h.members.GetByID(c.Request.Context(), memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve member"})
		return nil, nil
	}
	if member == nil || member.ProjectID != projectID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return nil, nil
	}

	project, err := h.projects.GetByID(c.Request.Context(), projectID)
	if err != nil || project == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		return nil, nil
	}

	return member, project
}

// Remove исключает участника из проекта. Владельца исключить нельзя:
// его членство живет столько же, сколько проект.
func (h *MemberHandler) Remove(c *gin.Context) {
	member, project := h.loadMember(c)
	if member == nil {
		return
	}

	if member.UserID == project.OwnerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The project owner cannot be removed"})
		return
	}

	if err := h.members.Delete(c.Request.Context(), member.UserID, member.ProjectID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}

// UpdateRole меняет роль участника. Роль владельца неизменно ADMIN.
func (h *MemberHandler) UpdateRole(c *gin.Context) {
	member, project := h.loadMember(c)
	if member == nil {
		return
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if member.UserID == project.OwnerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The project owner's role cannot be changed"})
		return
	}

	if err := h.members.UpdateRole(c.Request.Context(), member.ID, model.Role(req.Role)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member updated"})
}

// Invite выдает подписанное приглашение в проект. Письмо уходит в фоне.
func (h *MemberHandler) Invite(c *gin.Context) {
	authenticatedUserID, ok := currentUserID(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return
	}

	var req InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	_, err = h.invites.Issue(c.Request.Context(), authenticatedUserID, projectID, req.Email, model.Role(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProjectNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		case errors.Is(err, invite.ErrAlreadyMember):
			c.JSON(http.StatusBadRequest, gin.H{"error": "A member with this email exists"})
		case errors.Is(err, invite.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
		default:
			respondAuthzError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invite sent"})
}

// AcceptInvite обменивает токен приглашения на членство в проекте
func (h *MemberHandler) AcceptInvite(c *gin.Context) {
	authenticatedUserID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req AcceptInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	member, err := h.invites.Accept(c.Request.Context(), req.Token, authenticatedUserID)
	if err != nil {
		// Каждый вид отказа означает свое действие для пользователя,
		// поэтому сообщения различаются
		switch {
		case errors.Is(err, invite.ErrExpiredToken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "The invitation link has expired"})
		case errors.Is(err, invite.ErrInvalidToken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "The invitation token is invalid"})
		case errors.Is(err, invite.ErrIdentityMismatch):
			c.JSON(http.StatusForbidden, gin.H{"error": "You're not allowed to perform this action"})
		case errors.Is(err, invite.ErrAlreadyMember):
			c.JSON(http.StatusBadRequest, gin.H{"error": "You are already a member of this project"})
		case errors.Is(err, invite.ErrUnknownUser):
			c.JSON(http.StatusBadRequest, gin.H{"error": "This user does not exist"})
		case errors.Is(err, repository.ErrProjectNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Project does not exist. Please contact the project owner"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept invite"})
		}
		return
	}

	c.JSON(http.StatusCreated, MemberResponse{
		ID:        member.ID.String(),
		UserID:    member.UserID.String(),
		ProjectID: member.ProjectID.String(),
		Role:      string(member.Role),
	})
}
