package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/training"
	"github.com/saturnino-fabrica-de-software/chamada/internal/ws"
)

type ClassroomRepositoryInterface interface {
	Create(ctx context.Context, c *domain.Classroom) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Classroom, error)
	ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]domain.Classroom, error)
}

type StudentRepositoryInterface interface {
	Create(ctx context.Context, s *domain.Student) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error)
}

// RosterSource returns classroom rosters and drops stale snapshots.
type RosterSource interface {
	ListRoster(ctx context.Context, classroomID uuid.UUID) ([]domain.Student, error)
	Invalidate(ctx context.Context, classroomID uuid.UUID)
}

type AttendanceRepositoryInterface interface {
	Mark(ctx context.Context, rec *domain.AttendanceRecord) (bool, error)
	Unmark(ctx context.Context, classroomID, studentID uuid.UUID, date time.Time) error
	ListByDate(ctx context.Context, classroomID uuid.UUID, date time.Time) ([]domain.AttendanceRecord, error)
}

// Trainer is the training sample manager.
type Trainer interface {
	AddSample(ctx context.Context, studentID uuid.UUID, embedding domain.Embedding) (training.Result, error)
	AddSampleStrict(ctx context.Context, studentID uuid.UUID, embedding domain.Embedding) (training.Result, error)
	ResetToLatest(ctx context.Context, studentID uuid.UUID) (training.Result, error)
}

// Publisher pushes classroom events to live subscribers.
type Publisher interface {
	Publish(classroomID uuid.UUID, eventType ws.EventType, data interface{})
}

type nopPublisher struct{}

func (nopPublisher) Publish(uuid.UUID, ws.EventType, interface{}) {}

// Publishers fans every event out to each publisher in order.
type Publishers []Publisher

func (ps Publishers) Publish(classroomID uuid.UUID, eventType ws.EventType, data interface{}) {
	for _, p := range ps {
		p.Publish(classroomID, eventType, data)
	}
}
