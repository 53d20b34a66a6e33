package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/cursohub/cursohub-api/internal/middleware"
	"github.com/cursohub/cursohub-api/internal/models"
	appErrors "github.com/cursohub/cursohub-api/pkg/errors"
)

type fakeEnrollmentSrv struct {
	enrollment   *models.Enrollment
	err          error
	lastProgress struct {
		accountID    string
		enrollmentID string
		progress     int
	}
}

func (f *fakeEnrollmentSrv) Enroll(_ context.Context, accountID string, req models.EnrollRequest) (*models.Enrollment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Enrollment{ID: "enr-1", AccountID: accountID, CourseID: req.CourseID}, nil
}

func (f *fakeEnrollmentSrv) ListOwn(context.Context, string) ([]models.EnrollmentWithCourse, error) {
	return nil, nil
}

func (f *fakeEnrollmentSrv) UpdateProgress(_ context.Context, accountID, enrollmentID string, req models.UpdateProgressRequest) (*models.Enrollment, error) {
	f.lastProgress.accountID = accountID
	f.lastProgress.enrollmentID = enrollmentID
	f.lastProgress.progress = req.Progress
	if f.err != nil {
		return nil, f.err
	}
	return f.enrollment, nil
}

type fakeCertificateLinker struct {
	link *models.CertificateLink
	err  error
}

func (f *fakeCertificateLinker) Link(context.Context, string, string) (*models.CertificateLink, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.link, nil
}

func TestEnrollmentHandlerEnrollWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEnrollmentHandler(&fakeEnrollmentSrv{}, &fakeCertificateLinker{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/enrollments", strings.NewReader(`{}`))

	handler.Enroll(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEnrollmentHandlerEnrollConflictPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEnrollmentHandler(&fakeEnrollmentSrv{
		err: appErrors.Clone(appErrors.ErrConflict, "already enrolled in this course"),
	}, &fakeCertificateLinker{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	body := strings.NewReader(`{"course_id":"6f1f7d8e-9b36-4f1a-8a4e-0f6a5a2c9d11"}`)
	c.Request = httptest.NewRequest(http.MethodPost, "/enrollments", body)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{AccountID: "acc-1"})

	handler.Enroll(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestEnrollmentHandlerUpdateProgressRoutesOwnership(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeEnrollmentSrv{enrollment: &models.Enrollment{ID: "enr-1", Progress: 100}}
	handler := NewEnrollmentHandler(service, &fakeCertificateLinker{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	body := strings.NewReader(`{"progress":100}`)
	c.Request = httptest.NewRequest(http.MethodPatch, "/enrollments/enr-1/progress", body)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "enr-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{AccountID: "acc-1"})

	handler.UpdateProgress(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acc-1", service.lastProgress.accountID)
	assert.Equal(t, "enr-1", service.lastProgress.enrollmentID)
	assert.Equal(t, 100, service.lastProgress.progress)
}

func TestEnrollmentHandlerCertificateLink(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEnrollmentHandler(&fakeEnrollmentSrv{}, &fakeCertificateLinker{
		link: &models.CertificateLink{URL: "/certificates/download?token=abc", ExpiresAt: time.Now().Add(time.Hour)},
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/enrollments/enr-1/certificate", nil)
	c.Params = gin.Params{{Key: "id", Value: "enr-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{AccountID: "acc-1"})

	handler.Certificate(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/certificates/download?token=abc")
}

func TestEnrollmentHandlerCertificatePendingGeneration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEnrollmentHandler(&fakeEnrollmentSrv{}, &fakeCertificateLinker{
		err: appErrors.Clone(appErrors.ErrPreconditionFailed, "certificate is still being generated"),
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/enrollments/enr-1/certificate", nil)
	c.Params = gin.Params{{Key: "id", Value: "enr-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{AccountID: "acc-1"})

	handler.Certificate(c)

	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
}
