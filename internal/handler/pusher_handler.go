package handler

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChannelAuthorizer подписывает разрешение сокету на приватный канал
type ChannelAuthorizer interface {
	AuthorizePrivateChannel(params []byte) ([]byte, error)
}

type PusherHandler struct {
	authorizer ChannelAuthorizer
	gate       Gate
}

func NewPusherHandler(authorizer ChannelAuthorizer, gate Gate) *PusherHandler {
	return &PusherHandler{authorizer: authorizer, gate: gate}
}

const privateProjectPrefix = "private-project-"

// Auth авторизует подписку pusher-сокета на приватный канал проекта.
// Клиентская библиотека шлет form-encoded socket_id и channel_name;
// подпись выдается только участникам проекта из имени канала.
func (h *PusherHandler) Auth(c *gin.Context) {
	authenticatedUserID, ok := currentUserID(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	channel := form.Get("channel_name")
	if form.Get("socket_id") == "" || channel == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "socket_id and channel_name are required"})
		return
	}

	if !strings.HasPrefix(channel, privateProjectPrefix) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unknown channel"})
		return
	}

	projectID, err := uuid.Parse(strings.TrimPrefix(channel, privateProjectPrefix))
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unknown channel"})
		return
	}

	if _, err := h.gate.Check(c.Request.Context(), authenticatedUserID, projectID, ""); err != nil {
		respondAuthzError(c, err)
		return
	}

	response, err := h.authorizer.AuthorizePrivateChannel(body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to authorize channel"})
		return
	}

	c.Data(http.StatusOK, "application/json", response)
}
