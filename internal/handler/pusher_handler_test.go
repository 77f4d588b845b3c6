package handler_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"collabs/internal/authz"
	"collabs/internal/handler"
	"collabs/internal/middleware"
	"collabs/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Фейковый авторизатор каналов, записывающий переданные параметры
type fakeAuthorizer struct {
	params []byte
	calls  int
}

func (f *fakeAuthorizer) AuthorizePrivateChannel(params []byte) ([]byte, error) {
	f.calls++
	f.params = params
	return []byte(`{"auth":"key:signature"}`), nil
}

func setupPusherTest(userID uuid.UUID) (*gin.Engine, *fakeAuthorizer, *MockGate) {
	gin.SetMode(gin.TestMode)
	r := gin.Default()

	authorizer := &fakeAuthorizer{}
	mockGate := new(MockGate)
	pusherHandler := handler.NewPusherHandler(authorizer, mockGate)

	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	})

	r.POST("/pusher/auth", pusherHandler.Auth)

	return r, authorizer, mockGate
}

func pusherAuthRequest(socketID, channel string) *http.Request {
	form := url.Values{}
	form.Set("socket_id", socketID)
	form.Set("channel_name", channel)
	req, _ := http.NewRequest("POST", "/pusher/auth", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestPusherAuth_MemberAuthorized(t *testing.T) {
	// Arrange
	userID := uuid.New()
	router, authorizer, mockGate := setupPusherTest(userID)

	projectID := uuid.New()
	member := &model.Collaborator{UserID: userID, ProjectID: projectID, Role: model.RoleMember}
	mockGate.On("Check", mock.Anything, userID, projectID, model.Role("")).Return(member, nil)

	req := pusherAuthRequest("12345.67890", "private-project-"+projectID.String())

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"auth":"key:signature"}`, resp.Body.String())

	// Авторизатору уходит исходное form-тело запроса
	assert.Equal(t, 1, authorizer.calls)
	assert.Contains(t, string(authorizer.params), "socket_id=12345.67890")

	mockGate.AssertExpectations(t)
}

func TestPusherAuth_NonMemberForbidden(t *testing.T) {
	// Arrange
	userID := uuid.New()
	router, authorizer, mockGate := setupPusherTest(userID)

	projectID := uuid.New()
	mockGate.On("Check", mock.Anything, userID, projectID, model.Role("")).
		Return(nil, authz.ErrNotAMember)

	req := pusherAuthRequest("12345.67890", "private-project-"+projectID.String())

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, 0, authorizer.calls)
	mockGate.AssertExpectations(t)
}

func TestPusherAuth_UnknownChannelRefused(t *testing.T) {
	// Arrange
	userID := uuid.New()
	router, authorizer, mockGate := setupPusherTest(userID)

	// Канал вне схемы private-project-* не авторизуется вовсе
	req := pusherAuthRequest("12345.67890", "private-admin-feed")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, 0, authorizer.calls)
	mockGate.AssertNotCalled(t, "Check", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPusherAuth_MissingFields(t *testing.T) {
	// Arrange
	userID := uuid.New()
	router, authorizer, _ := setupPusherTest(userID)

	req := pusherAuthRequest("", "")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, 0, authorizer.calls)
}
