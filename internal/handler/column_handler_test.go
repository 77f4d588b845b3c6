package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"collabs/internal/authz"
	"collabs/internal/event"
	"collabs/internal/handler"
	"collabs/internal/middleware"
	"collabs/internal/model"
	"collabs/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Мок хранилища колонок
type MockColumnStore struct {
	mock.Mock
}

func (m *MockColumnStore) Create(ctx context.Context, column *model.Column) error {
	args := m.Called(ctx, column)
	return args.Error(0)
}

func (m *MockColumnStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Column, error) {
	args := m.Called(ctx, id)
	column := args.Get(0)
	if column == nil {
		return nil, args.Error(1)
	}
	return column.(*model.Column), args.Error(1)
}

func (m *MockColumnStore) GetByProjectID(ctx context.Context, projectID uuid.UUID) ([]model.Column, error) {
	args := m.Called(ctx, projectID)
	columns := args.Get(0)
	if columns == nil {
		return nil, args.Error(1)
	}
	return columns.([]model.Column), args.Error(1)
}

func (m *MockColumnStore) GetFirst(ctx context.Context, projectID uuid.UUID) (*model.Column, error) {
	args := m.Called(ctx, projectID)
	column := args.Get(0)
	if column == nil {
		return nil, args.Error(1)
	}
	return column.(*model.Column), args.Error(1)
}

func (m *MockColumnStore) GetMaxPosition(ctx context.Context, projectID uuid.UUID) (int, error) {
	args := m.Called(ctx, projectID)
	return args.Int(0), args.Error(1)
}

func (m *MockColumnStore) Update(ctx context.Context, column *model.Column) error {
	args := m.Called(ctx, column)
	return args.Error(0)
}

func (m *MockColumnStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockColumnStore) Reorder(ctx context.Context, projectID uuid.UUID, changes []repository.PositionChange) ([]model.Column, error) {
	args := m.Called(ctx, projectID, changes)
	columns := args.Get(0)
	if columns == nil {
		return nil, args.Error(1)
	}
	return columns.([]model.Column), args.Error(1)
}

// Мок гейта авторизации
type MockGate struct {
	mock.Mock
}

func (m *MockGate) Check(ctx context.Context, actorID, projectID uuid.UUID, required model.Role) (*model.Collaborator, error) {
	args := m.Called(ctx, actorID, projectID, required)
	member := args.Get(0)
	if member == nil {
		return nil, args.Error(1)
	}
	return member.(*model.Collaborator), args.Error(1)
}

// Шина, записывающая опубликованные события
type recordingBus struct {
	events []event.Event
}

func (b *recordingBus) Publish(e event.Event) {
	b.events = append(b.events, e)
}

func setupColumnTest(userID uuid.UUID) (*gin.Engine, *MockColumnStore, *MockGate, *recordingBus) {
	gin.SetMode(gin.TestMode)
	r := gin.Default()

	mockStore := new(MockColumnStore)
	mockGate := new(MockGate)
	bus := &recordingBus{}
	columnHandler := handler.NewColumnHandler(mockStore, mockGate, bus)

	// Кладем user_id в контекст вместо JWT middleware
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	})

	r.POST("/projects/:id/columns", columnHandler.Create)
	r.POST("/projects/:id/columns/reorder", columnHandler.Reorder)
	r.PUT("/columns/:id", columnHandler.Update)
	r.DELETE("/columns/:id", columnHandler.Delete)

	return r, mockStore, mockGate, bus
}

func reorderBody(t *testing.T, changes ...handler.ReorderColumnChange) *bytes.Buffer {
	jsonBody, err := json.Marshal(handler.ReorderColumnsRequest{Columns: changes})
	assert.NoError(t, err)
	return bytes.NewBuffer(jsonBody)
}

func TestReorderColumns_Success(t *testing.T) {
	// Arrange
	userID := uuid.New()
	router, mockStore, mockGate, bus := setupColumnTest(userID)

	projectID := uuid.New()
	firstID := uuid.New()
	secondID := uuid.New()
	stamp := time.Now().Add(-time.Minute).UTC()

	admin := &model.Collaborator{UserID: userID, ProjectID: projectID, Role: model.RoleAdmin}
	mockGate.On("Check", mock.Anything, userID, projectID, model.RoleAdmin).Return(admin, nil)

	committed := []model.Column{
		{ID: secondID, ProjectID: projectID, Name: "In progress", Position: 1, UpdatedAt: time.Now().UTC()},
		{ID: firstID, ProjectID: projectID, Name: "Backlog", Position: 2, UpdatedAt: time.Now().UTC()},
	}
	mockStore.On("Reorder", mock.Anything, projectID, mock.AnythingOfType("[]repository.PositionChange")).
		Return(committed, nil)

	req, _ := http.NewRequest("POST", "/projects/"+projectID.String()+"/columns/reorder",
		reorderBody(t,
			handler.ReorderColumnChange{ID: firstID.String(), ExpectedVersion: stamp, Position: 2},
			handler.ReorderColumnChange{ID: secondID.String(), ExpectedVersion: stamp, Position: 1},
		))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var response struct {
		Columns []handler.ColumnResponse `json:"columns"`
	}
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response.Columns, 2)
	assert.Equal(t, secondID.String(), response.Columns[0].ID)
	assert.Equal(t, firstID.String(), response.Columns[1].ID)

	// Один батч - ровно одно событие
	assert.Len(t, bus.events, 1)
	updated, ok := bus.events[0].(event.ColumnUpdated)
	assert.True(t, ok)
	assert.Equal(t, projectID, updated.ProjectID)

	mockStore.AssertExpectations(t)
	mockGate.AssertExpectations(t)
}

func TestReorderColumns_VersionConflict(t *testing.T) {
	// Arrange
	userID := uuid.New()
	router, mockStore, mockGate, bus := setupColumnTest(userID)

	projectID := uuid.New()
	columnID := uuid.New()

	admin := &model.Collaborator{UserID: userID, ProjectID: projectID, Role: model.RoleAdmin}
	mockGate.On("Check", mock.Anything, userID, projectID, model.RoleAdmin).Return(admin, nil)
	mockStore.On("Reorder", mock.Anything, projectID, mock.Anything).
		Return(nil, repository.ErrVersionConflict)

	req, _ := http.NewRequest("POST", "/projects/"+projectID.String()+"/columns/reorder",
		reorderBody(t, handler.ReorderColumnChange{
			ID:              columnID.String(),
			ExpectedVersion: time.Now().Add(-time.Hour).UTC(),
			Position:        1,
		}))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusConflict, resp.Code)

	// Отклоненный батч никуда не транслируется
	assert.Empty(t, bus.events)

	mockStore.AssertExpectations(t)
}

func TestReorderColumns_ColumnNotFound(t *testing.T) {
	// Arrange
	userID := uuid.New()
	router, mockStore, mockGate, bus := setupColumnTest(userID)

	projectID := uuid.New()

	admin := &model.Collaborator{UserID: userID, ProjectID: projectID, Role: model.RoleAdmin}
	mockGate.On("Check", mock.Anything, userID, projectID, model.RoleAdmin).Return(admin, nil)
	mockStore.On("Reorder", mock.Anything, projectID, mock.Anything).
		Return(nil, repository.ErrColumnNotFound)

	req, _ := http.NewRequest("POST", "/projects/"+projectID.String()+"/columns/reorder",
		reorderBody(t, handler.ReorderColumnChange{
			ID:              uuid.New().String(),
			ExpectedVersion: time.Now().UTC(),
			Position:        1,
		}))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Empty(t, bus.events)
	mockStore.AssertExpectations(t)
}

func TestReorderColumns_MemberForbidden(t *testing.T) {
	// Arrange
	userID := uuid.New()
	router, mockStore, mockGate, bus := setupColumnTest(userID)

	projectID := uuid.New()

	// Обычному участнику гейт отказывает до обращения к хранилищу
	mockGate.On("Check", mock.Anything, userID, projectID, model.RoleAdmin).
		Return(nil, authz.ErrInsufficientRole)

	req, _ := http.NewRequest("POST", "/projects/"+projectID.String()+"/columns/reorder",
		reorderBody(t, handler.ReorderColumnChange{
			ID:              uuid.New().String(),
			ExpectedVersion: time.Now().UTC(),
			Position:        1,
		}))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Empty(t, bus.events)
	mockStore.AssertNotCalled(t, "Reorder", mock.Anything, mock.Anything, mock.Anything)
	mockGate.AssertExpectations(t)
}

func TestCreateColumn_AppendsToEnd(t *testing.T) {
	// Arrange
	userID := uuid.New()
	router, mockStore, mockGate, bus := setupColumnTest(userID)

	projectID := uuid.New()

	member := &model.Collaborator{UserID: userID, ProjectID: projectID, Role: model.RoleMember}
	mockGate.On("Check", mock.Anything, userID, projectID, model.Role("")).Return(member, nil)
	mockStore.On("GetMaxPosition", mock.Anything, projectID).Return(4, nil)
	mockStore.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Column) bool {
		return c.Position == 5 && c.Name == "Blocked"
	})).Return(nil)

	reqBody := handler.CreateColumnRequest{Name: "Blocked", Identifier: "#d73a49"}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/projects/"+projectID.String()+"/columns", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)

	assert.Len(t, bus.events, 1)
	created, ok := bus.events[0].(event.ColumnCreated)
	assert.True(t, ok)
	assert.Equal(t, projectID, created.ProjectID)
	assert.Equal(t, "Blocked", created.Column.Name)

	mockStore.AssertExpectations(t)
	mockGate.AssertExpectations(t)
}

func TestDeleteColumn_AdminOnly(t *testing.T) {
	// Arrange
	userID := uuid.New()
	router, mockStore, mockGate, bus := setupColumnTest(userID)

	projectID := uuid.New()
	columnID := uuid.New()

	column := &model.Column{ID: columnID, ProjectID: projectID, Name: "Done", Position: 4}
	mockStore.On("GetByID", mock.Anything, columnID).Return(column, nil)
	mockGate.On("Check", mock.Anything, userID, projectID, model.RoleAdmin).
		Return(nil, authz.ErrInsufficientRole)

	req, _ := http.NewRequest("DELETE", "/columns/"+columnID.String(), nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Empty(t, bus.events)
	mockStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	mockGate.AssertExpectations(t)
}
