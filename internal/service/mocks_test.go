package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/provider"
	"github.com/saturnino-fabrica-de-software/chamada/internal/training"
	"github.com/saturnino-fabrica-de-software/chamada/internal/ws"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockClassroomRepository struct {
	mock.Mock
}

func (m *MockClassroomRepository) Create(ctx context.Context, c *domain.Classroom) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockClassroomRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Classroom, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Classroom), args.Error(1)
}

func (m *MockClassroomRepository) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]domain.Classroom, error) {
	args := m.Called(ctx, teacherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Classroom), args.Error(1)
}

type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) Create(ctx context.Context, s *domain.Student) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStudentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

type MockRoster struct {
	mock.Mock
}

func (m *MockRoster) ListRoster(ctx context.Context, classroomID uuid.UUID) ([]domain.Student, error) {
	args := m.Called(ctx, classroomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Student), args.Error(1)
}

func (m *MockRoster) Invalidate(ctx context.Context, classroomID uuid.UUID) {
	m.Called(ctx, classroomID)
}

type MockAttendanceRepository struct {
	mock.Mock
}

func (m *MockAttendanceRepository) Mark(ctx context.Context, rec *domain.AttendanceRecord) (bool, error) {
	args := m.Called(ctx, rec)
	return args.Bool(0), args.Error(1)
}

func (m *MockAttendanceRepository) Unmark(ctx context.Context, classroomID, studentID uuid.UUID, date time.Time) error {
	args := m.Called(ctx, classroomID, studentID, date)
	return args.Error(0)
}

func (m *MockAttendanceRepository) ListByDate(ctx context.Context, classroomID uuid.UUID, date time.Time) ([]domain.AttendanceRecord, error) {
	args := m.Called(ctx, classroomID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AttendanceRecord), args.Error(1)
}

type MockTrainer struct {
	mock.Mock
}

func (m *MockTrainer) AddSample(ctx context.Context, studentID uuid.UUID, embedding domain.Embedding) (training.Result, error) {
	args := m.Called(ctx, studentID, embedding)
	return args.Get(0).(training.Result), args.Error(1)
}

func (m *MockTrainer) AddSampleStrict(ctx context.Context, studentID uuid.UUID, embedding domain.Embedding) (training.Result, error) {
	args := m.Called(ctx, studentID, embedding)
	return args.Get(0).(training.Result), args.Error(1)
}

func (m *MockTrainer) ResetToLatest(ctx context.Context, studentID uuid.UUID) (training.Result, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).(training.Result), args.Error(1)
}

type MockEmbeddingProvider struct {
	mock.Mock
}

func (m *MockEmbeddingProvider) ExtractEmbedding(ctx context.Context, image []byte) (*provider.DetectedFace, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.DetectedFace), args.Error(1)
}

func (m *MockEmbeddingProvider) DetectFaces(ctx context.Context, image []byte) ([]provider.DetectedFace, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]provider.DetectedFace), args.Error(1)
}

func (m *MockEmbeddingProvider) Ready(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockFaceCounter struct {
	mock.Mock
}

func (m *MockFaceCounter) CountFaces(ctx context.Context, image []byte) (int, error) {
	args := m.Called(ctx, image)
	return args.Int(0), args.Error(1)
}

type publishedEvent struct {
	ClassroomID uuid.UUID
	Type        ws.EventType
	Data        interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(classroomID uuid.UUID, eventType ws.EventType, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{ClassroomID: classroomID, Type: eventType, Data: data})
}

func (p *recordingPublisher) count(eventType ws.EventType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

// memLedger enforces the (roll number, classroom, teacher, date) uniqueness
// the way the database constraint does.
type memLedger struct {
	mu      sync.Mutex
	records map[string]domain.AttendanceRecord
}

func newMemLedger() *memLedger {
	return &memLedger{records: make(map[string]domain.AttendanceRecord)}
}

func ledgerKey(roll string, classroomID, teacherID uuid.UUID, date time.Time) string {
	return roll + "|" + classroomID.String() + "|" + teacherID.String() + "|" + date.Format(time.DateOnly)
}

func (l *memLedger) Mark(_ context.Context, rec *domain.AttendanceRecord) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := ledgerKey(rec.RollNumber, rec.ClassroomID, rec.TeacherID, rec.Date)
	if _, ok := l.records[key]; ok {
		return false, nil
	}
	rec.ID = uuid.New()
	l.records[key] = *rec
	return true, nil
}

func (l *memLedger) Unmark(_ context.Context, classroomID, studentID uuid.UUID, date time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, r := range l.records {
		if r.ClassroomID == classroomID && r.StudentID == studentID && r.Date.Equal(date) {
			delete(l.records, k)
			return nil
		}
	}
	return domain.ErrAttendanceNotFound
}

func (l *memLedger) ListByDate(_ context.Context, classroomID uuid.UUID, date time.Time) ([]domain.AttendanceRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []domain.AttendanceRecord{}
	for _, r := range l.records {
		if r.ClassroomID == classroomID && r.Date.Equal(date) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (l *memLedger) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
