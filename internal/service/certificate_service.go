package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/cursohub/cursohub-api/internal/models"
	appErrors "github.com/cursohub/cursohub-api/pkg/errors"
	"github.com/cursohub/cursohub-api/pkg/export"
	"github.com/cursohub/cursohub-api/pkg/jobs"
	"github.com/cursohub/cursohub-api/pkg/storage"
)

type certificateEnrollmentRepo interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	SetCertificatePath(ctx context.Context, id, path string) error
}

type certificateAccountReader interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
}

const certificateJobType = "certificate.generate"

// CertificateServiceParams groups constructor dependencies.
type CertificateServiceParams struct {
	Enrollments certificateEnrollmentRepo
	Courses     enrollmentCourseReader
	Accounts    certificateAccountReader
	Renderer    *export.CertificateRenderer
	Store       *storage.LocalStorage
	Signer      *storage.SignedURLSigner
	Logger      *zap.Logger
	Workers     int
	MaxRetries  int
}

// CertificateService renders completion certificates asynchronously and
// hands out signed download links.
type CertificateService struct {
	enrollments certificateEnrollmentRepo
	courses     enrollmentCourseReader
	accounts    certificateAccountReader
	renderer    *export.CertificateRenderer
	store       *storage.LocalStorage
	signer      *storage.SignedURLSigner
	queue       *jobs.Queue
	logger      *zap.Logger
}

// NewCertificateService constructs the service and its worker queue.
func NewCertificateService(params CertificateServiceParams) *CertificateService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &CertificateService{
		enrollments: params.Enrollments,
		courses:     params.Courses,
		accounts:    params.Accounts,
		renderer:    params.Renderer,
		store:       params.Store,
		signer:      params.Signer,
		logger:      logger,
	}

	s.queue = jobs.NewQueue("certificates", s.process, jobs.QueueConfig{
		Workers:    params.Workers,
		MaxRetries: params.MaxRetries,
		Logger:     logger,
	})

	return s
}

// Start launches the certificate workers.
func (s *CertificateService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the certificate workers.
func (s *CertificateService) Stop() {
	s.queue.Stop()
}

// Schedule queues certificate generation for a completed enrollment.
func (s *CertificateService) Schedule(enrollmentID string) error {
	return s.queue.Enqueue(jobs.Job{
		ID:      enrollmentID,
		Type:    certificateJobType,
		Payload: enrollmentID,
	})
}

func (s *CertificateService) process(ctx context.Context, job jobs.Job) error {
	enrollmentID, ok := job.Payload.(string)
	if !ok || enrollmentID == "" {
		// Malformed payloads cannot succeed on retry.
		s.logger.Error("certificate job has invalid payload", zap.String("job_id", job.ID))
		return nil
	}

	enrollment, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		return fmt.Errorf("load enrollment %s: %w", enrollmentID, err)
	}
	if enrollment.CompletedAt == nil {
		s.logger.Warn("certificate requested for incomplete enrollment", zap.String("enrollment_id", enrollmentID))
		return nil
	}
	if enrollment.CertificatePath != nil {
		return nil
	}

	course, err := s.courses.FindByID(ctx, enrollment.CourseID)
	if err != nil {
		return fmt.Errorf("load course %s: %w", enrollment.CourseID, err)
	}
	account, err := s.accounts.FindByID(ctx, enrollment.AccountID)
	if err != nil {
		return fmt.Errorf("load account %s: %w", enrollment.AccountID, err)
	}

	pdf, err := s.renderer.Render(export.Certificate{
		StudentName:    account.FullName,
		CourseTitle:    course.Title,
		InstructorName: course.InstructorName,
		CompletedAt:    *enrollment.CompletedAt,
		SerialNumber:   enrollment.ID,
	})
	if err != nil {
		return fmt.Errorf("render certificate: %w", err)
	}

	relPath := fmt.Sprintf("%s/%s.pdf", enrollment.AccountID, enrollment.ID)
	if _, err := s.store.Save(relPath, pdf); err != nil {
		return fmt.Errorf("store certificate: %w", err)
	}

	if err := s.enrollments.SetCertificatePath(ctx, enrollment.ID, relPath); err != nil {
		return fmt.Errorf("record certificate path: %w", err)
	}

	s.logger.Info("certificate generated",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("path", relPath))
	return nil
}

// Link returns a signed download link for the caller's completed
// enrollment.
func (s *CertificateService) Link(ctx context.Context, accountID, enrollmentID string) (*models.CertificateLink, error) {
	enrollment, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	if enrollment.AccountID != accountID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "enrollment belongs to another account")
	}
	if enrollment.CompletedAt == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "course is not completed yet")
	}
	if enrollment.CertificatePath == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "certificate is still being generated")
	}

	token, expiresAt, err := s.signer.Generate(enrollment.ID, *enrollment.CertificatePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}

	return &models.CertificateLink{
		URL:       fmt.Sprintf("/certificates/download?token=%s", token),
		ExpiresAt: expiresAt,
	}, nil
}

// ResolveDownload validates a signed token and opens the certificate file.
func (s *CertificateService) ResolveDownload(token string) (*os.File, error) {
	_, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download token")
	}

	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "certificate file not found")
	}
	return file, nil
}
