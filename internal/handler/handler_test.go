package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskflow/internal/access"
	"taskflow/internal/handler"
	"taskflow/internal/middleware"
	"taskflow/internal/model"
	"taskflow/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	ownerID = "owner-uid"
	otherID = "intruder-uid"
)

type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(ctx context.Context, project *model.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Project, error) {
	args := m.Called(ctx, ownerID)
	projects, _ := args.Get(0).([]model.Project)
	return projects, args.Error(1)
}

func (m *MockProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, id)
	project, _ := args.Get(0).(*model.Project)
	return project, args.Error(1)
}

func (m *MockProjectRepository) Update(ctx context.Context, id uuid.UUID, name, description string) (*model.Project, error) {
	args := m.Called(ctx, id, name, description)
	project, _ := args.Get(0).(*model.Project)
	return project, args.Error(1)
}

func (m *MockProjectRepository) DeleteCascade(ctx context.Context, id uuid.UUID) (*repository.CascadeResult, error) {
	args := m.Called(ctx, id)
	result, _ := args.Get(0).(*repository.CascadeResult)
	return result, args.Error(1)
}

type MockSectionRepository struct {
	mock.Mock
}

func (m *MockSectionRepository) Create(ctx context.Context, section *model.Section) error {
	args := m.Called(ctx, section)
	return args.Error(0)
}

func (m *MockSectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Section, error) {
	args := m.Called(ctx, id)
	section, _ := args.Get(0).(*model.Section)
	return section, args.Error(1)
}

func (m *MockSectionRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Section, error) {
	args := m.Called(ctx, projectID)
	sections, _ := args.Get(0).([]model.Section)
	return sections, args.Error(1)
}

func (m *MockSectionRepository) Update(ctx context.Context, id uuid.UUID, name string, order *int) (*model.Section, error) {
	args := m.Called(ctx, id, name, order)
	section, _ := args.Get(0).(*model.Section)
	return section, args.Error(1)
}

func (m *MockSectionRepository) Reorder(ctx context.Context, projectID uuid.UUID, orders []repository.SectionOrder) error {
	args := m.Called(ctx, projectID, orders)
	return args.Error(0)
}

func (m *MockSectionRepository) DeleteCascade(ctx context.Context, id uuid.UUID) (*repository.CascadeResult, error) {
	args := m.Called(ctx, id)
	result, _ := args.Get(0).(*repository.CascadeResult)
	return result, args.Error(1)
}

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, id)
	task, _ := args.Get(0).(*model.Task)
	return task, args.Error(1)
}

func (m *MockTaskRepository) ListBySection(ctx context.Context, sectionID uuid.UUID) ([]model.Task, error) {
	args := m.Called(ctx, sectionID)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Task, error) {
	args := m.Called(ctx, projectID)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, id uuid.UUID, changes repository.TaskChanges) (*model.Task, error) {
	args := m.Called(ctx, id, changes)
	task, _ := args.Get(0).(*model.Task)
	return task, args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mocks struct {
	projects *MockProjectRepository
	sections *MockSectionRepository
	tasks    *MockTaskRepository
	guard    *access.Guard
}

func newMocks(strict bool) *mocks {
	m := &mocks{
		projects: new(MockProjectRepository),
		sections: new(MockSectionRepository),
		tasks:    new(MockTaskRepository),
	}
	m.guard = access.NewGuard(m.projects, m.sections, m.tasks, strict)
	return m
}

func (m *mocks) assertExpectations(t *testing.T) {
	m.projects.AssertExpectations(t)
	m.sections.AssertExpectations(t)
	m.tasks.AssertExpectations(t)
}

// newRouter returns an engine whose requests are authenticated as caller.
func newRouter(caller string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler.RegisterValidators()

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if caller != "" {
			c.Set(middleware.UserIDKey, caller)
		}
		c.Next()
	})
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decode(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), v))
}

func ownedProject(id uuid.UUID) *model.Project {
	return &model.Project{ID: id, Name: "Apollo", OwnerID: ownerID}
}
