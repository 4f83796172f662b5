package handler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/matcher"
	"github.com/saturnino-fabrica-de-software/chamada/internal/service"
	"github.com/saturnino-fabrica-de-software/chamada/internal/session"
	"github.com/saturnino-fabrica-de-software/chamada/internal/training"
)

// ClassroomService lists and authorizes a teacher's classrooms
type ClassroomService interface {
	Create(ctx context.Context, teacherID uuid.UUID, name string) (*domain.Classroom, error)
	List(ctx context.Context, teacherID uuid.UUID) ([]domain.Classroom, error)
	Authorize(ctx context.Context, teacherID, classroomID uuid.UUID) (*domain.Classroom, error)
}

// AttendanceService runs detection, review commits and manual marking
type AttendanceService interface {
	DetectAndMatch(ctx context.Context, teacherID, classroomID uuid.UUID, image []byte) (*session.Session, error)
	Diagnose(ctx context.Context, teacherID, classroomID uuid.UUID, image []byte) (*service.Diagnosis, error)
	ConfirmSession(ctx context.Context, teacherID, classroomID uuid.UUID, sess *session.Session) (*domain.ConfirmationResult, error)
	ApplyDecisions(ctx context.Context, teacherID, classroomID uuid.UUID, decisions []domain.Decision) (*domain.ConfirmationResult, error)
	MarkPresent(ctx context.Context, teacherID, classroomID, studentID uuid.UUID) (*domain.AttendanceRecord, bool, error)
	Unmark(ctx context.Context, teacherID, classroomID, studentID uuid.UUID, date time.Time) error
	ListAttendance(ctx context.Context, teacherID, classroomID uuid.UUID, date time.Time) ([]domain.AttendanceRecord, error)
}

// EnrollmentService enrolls students and edits their training samples
type EnrollmentService interface {
	Enroll(ctx context.Context, teacherID, classroomID uuid.UUID, rollNumber, name string, image []byte) (*domain.Student, error)
	AddPhoto(ctx context.Context, teacherID, studentID uuid.UUID, image []byte, strict bool) (training.Result, error)
	AddTrainingSample(ctx context.Context, teacherID, studentID uuid.UUID, embedding domain.Embedding, strict bool) (training.Result, error)
	ResetTrainingSamples(ctx context.Context, teacherID, studentID uuid.UUID) (training.Result, error)
	Verify(ctx context.Context, teacherID, studentID uuid.UUID, image []byte) (*matcher.Verification, error)
}

var (
	_ ClassroomService  = (*service.ClassroomService)(nil)
	_ AttendanceService = (*service.AttendanceService)(nil)
	_ EnrollmentService = (*service.EnrollmentService)(nil)
)
