package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/cursohub/cursohub-api/internal/middleware"
	"github.com/cursohub/cursohub-api/internal/models"
	appErrors "github.com/cursohub/cursohub-api/pkg/errors"
)

type fakeCourseSrv struct {
	course  *models.CourseDetails
	lastGet struct {
		id       string
		viewerID string
		isAdmin  bool
	}
	lastFilter models.CourseFilter
}

func (f *fakeCourseSrv) ListPublished(_ context.Context, filter models.CourseFilter) ([]models.CourseDetails, *models.Pagination, error) {
	f.lastFilter = filter
	return nil, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func (f *fakeCourseSrv) ListOwn(_ context.Context, instructorID string, filter models.CourseFilter) ([]models.CourseDetails, *models.Pagination, error) {
	f.lastFilter = filter
	return nil, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func (f *fakeCourseSrv) GetPublic(_ context.Context, id, viewerID string, viewerIsAdmin bool) (*models.CourseDetails, error) {
	f.lastGet.id = id
	f.lastGet.viewerID = viewerID
	f.lastGet.isAdmin = viewerIsAdmin
	if f.course == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return f.course, nil
}

func (f *fakeCourseSrv) Create(_ context.Context, instructorID string, req models.CreateCourseRequest) (*models.Course, error) {
	return &models.Course{ID: "course-new", Title: req.Title, InstructorID: instructorID}, nil
}

func (f *fakeCourseSrv) Update(_ context.Context, editorID string, editorIsAdmin bool, courseID string, req models.UpdateCourseRequest) (*models.Course, error) {
	return &models.Course{ID: courseID}, nil
}

func (f *fakeCourseSrv) ListCategories(context.Context) ([]models.Category, error) {
	return []models.Category{{ID: "cat-1", Name: "Programming"}}, nil
}

func TestCourseHandlerGetPassesViewerIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeCourseSrv{course: &models.CourseDetails{}}
	handler := NewCourseHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/courses/c-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "c-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{AccountID: "acc-1"})
	c.Set(middleware.ContextRolesKey, models.RoleFlags{IsAdmin: true})

	handler.Get(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c-1", service.lastGet.id)
	assert.Equal(t, "acc-1", service.lastGet.viewerID)
	assert.True(t, service.lastGet.isAdmin)
}

func TestCourseHandlerGetAnonymousViewer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeCourseSrv{}
	handler := NewCourseHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/courses/c-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "c-1"}}

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, service.lastGet.viewerID)
	assert.False(t, service.lastGet.isAdmin)
}

func TestCourseHandlerListParsesFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeCourseSrv{}
	handler := NewCourseHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/courses?search=go&level=beginner&page=2&page_size=10", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "go", service.lastFilter.Search)
	assert.Equal(t, "beginner", service.lastFilter.Level)
	assert.Equal(t, 2, service.lastFilter.Page)
	assert.Equal(t, 10, service.lastFilter.PageSize)
}

func TestCourseHandlerCreateRequiresIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCourseHandler(&fakeCourseSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/instructor/courses", nil)

	handler.Create(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
