package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cursohub/cursohub-api/internal/models"
	appErrors "github.com/cursohub/cursohub-api/pkg/errors"
	"github.com/cursohub/cursohub-api/pkg/export"
	"github.com/cursohub/cursohub-api/pkg/jobs"
	"github.com/cursohub/cursohub-api/pkg/storage"
)

func testJob(enrollmentID string) jobs.Job {
	return jobs.Job{ID: enrollmentID, Type: certificateJobType, Payload: enrollmentID}
}

type certEnrollmentRepoStub struct {
	enrollments map[string]*models.Enrollment
	paths       map[string]string
}

func (s *certEnrollmentRepoStub) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if enrollment, ok := s.enrollments[id]; ok {
		return enrollment, nil
	}
	return nil, sql.ErrNoRows
}

func (s *certEnrollmentRepoStub) SetCertificatePath(ctx context.Context, id, path string) error {
	if s.paths == nil {
		s.paths = map[string]string{}
	}
	s.paths[id] = path
	if enrollment, ok := s.enrollments[id]; ok {
		enrollment.CertificatePath = &path
	}
	return nil
}

type certAccountReaderStub struct {
	accounts map[string]*models.Account
}

func (s *certAccountReaderStub) FindByID(ctx context.Context, id string) (*models.Account, error) {
	if account, ok := s.accounts[id]; ok {
		return account, nil
	}
	return nil, sql.ErrNoRows
}

func newTestCertificateService(t *testing.T, enrollments *certEnrollmentRepoStub, courses *courseReaderStub, accounts *certAccountReaderStub) *CertificateService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewCertificateService(CertificateServiceParams{
		Enrollments: enrollments,
		Courses:     courses,
		Accounts:    accounts,
		Renderer:    export.NewCertificateRenderer(""),
		Store:       store,
		Signer:      storage.NewSignedURLSigner("test-secret", time.Hour),
	})
}

func TestCertificateServiceLinkForeignEnrollmentForbidden(t *testing.T) {
	completed := time.Now().UTC()
	path := "acc-2/enr-1.pdf"
	enrollments := &certEnrollmentRepoStub{enrollments: map[string]*models.Enrollment{
		"enr-1": {ID: "enr-1", AccountID: "acc-2", CompletedAt: &completed, CertificatePath: &path},
	}}
	svc := newTestCertificateService(t, enrollments, nil, nil)

	_, err := svc.Link(context.Background(), "acc-1", "enr-1")

	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrForbidden.Code, typed.Code)
}

func TestCertificateServiceLinkIncompleteEnrollment(t *testing.T) {
	enrollments := &certEnrollmentRepoStub{enrollments: map[string]*models.Enrollment{
		"enr-1": {ID: "enr-1", AccountID: "acc-1", Progress: 40},
	}}
	svc := newTestCertificateService(t, enrollments, nil, nil)

	_, err := svc.Link(context.Background(), "acc-1", "enr-1")

	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, typed.Code)
}

func TestCertificateServiceLinkPendingGeneration(t *testing.T) {
	completed := time.Now().UTC()
	enrollments := &certEnrollmentRepoStub{enrollments: map[string]*models.Enrollment{
		"enr-1": {ID: "enr-1", AccountID: "acc-1", Progress: 100, CompletedAt: &completed},
	}}
	svc := newTestCertificateService(t, enrollments, nil, nil)

	_, err := svc.Link(context.Background(), "acc-1", "enr-1")

	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, typed.Code)
}

func TestCertificateServiceProcessThenDownload(t *testing.T) {
	completed := time.Now().UTC()
	enrollments := &certEnrollmentRepoStub{enrollments: map[string]*models.Enrollment{
		"enr-1": {ID: "enr-1", AccountID: "acc-1", CourseID: courseID, Progress: 100, CompletedAt: &completed},
	}}
	courses := &courseReaderStub{courses: map[string]*models.CourseDetails{courseID: publishedCourse(courseID)}}
	accounts := &certAccountReaderStub{accounts: map[string]*models.Account{
		"acc-1": {ID: "acc-1", FullName: "Ada Lovelace"},
	}}
	svc := newTestCertificateService(t, enrollments, courses, accounts)

	err := svc.process(context.Background(), testJob("enr-1"))
	require.NoError(t, err)
	assert.Equal(t, "acc-1/enr-1.pdf", enrollments.paths["enr-1"])

	link, err := svc.Link(context.Background(), "acc-1", "enr-1")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(link.URL, "/certificates/download?token="))

	token := strings.TrimPrefix(link.URL, "/certificates/download?token=")
	file, err := svc.ResolveDownload(token)
	require.NoError(t, err)
	defer file.Close()

	info, err := file.Stat()
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestCertificateServiceProcessSkipsIncomplete(t *testing.T) {
	enrollments := &certEnrollmentRepoStub{enrollments: map[string]*models.Enrollment{
		"enr-1": {ID: "enr-1", AccountID: "acc-1", Progress: 50},
	}}
	svc := newTestCertificateService(t, enrollments, nil, nil)

	err := svc.process(context.Background(), testJob("enr-1"))

	require.NoError(t, err)
	assert.Empty(t, enrollments.paths)
}

func TestCertificateServiceDownloadRejectsBadToken(t *testing.T) {
	svc := newTestCertificateService(t, &certEnrollmentRepoStub{}, nil, nil)

	_, err := svc.ResolveDownload("not-a-token")

	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, typed.Code)
}
