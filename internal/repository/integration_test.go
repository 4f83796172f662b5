//go:build integration

package repository

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/chamada/internal/database/dbtest"
	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/training"
)

func seedStudent(t *testing.T, classrooms *ClassroomRepository, students *StudentRepository) (*domain.Classroom, *domain.Student) {
	t.Helper()
	ctx := context.Background()

	classroom := &domain.Classroom{TeacherID: uuid.New(), Name: "7A"}
	require.NoError(t, classrooms.Create(ctx, classroom))

	student := &domain.Student{
		ClassroomID: classroom.ID,
		TeacherID:   classroom.TeacherID,
		RollNumber:  "12",
		Name:        "Ana",
		Embeddings:  []domain.Embedding{unitVector(0)},
	}
	require.NoError(t, students.Create(ctx, student))

	return classroom, student
}

func unitVector(hot int) domain.Embedding {
	e := make(domain.Embedding, domain.EmbeddingDimension)
	e[hot%domain.EmbeddingDimension] = 1
	return e
}

func TestAttendanceLedger_ConcurrentMarks_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	pool := dbtest.Migrated(t)
	ctx := context.Background()

	classrooms := NewClassroomRepository(pool)
	students := NewStudentRepository(pool)
	ledger := NewAttendanceRepository(pool)

	classroom, student := seedStudent(t, classrooms, students)
	date := domain.AttendanceDate(time.Now(), time.UTC)

	const writers = 20
	var created atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := ledger.Mark(ctx, &domain.AttendanceRecord{
				ClassroomID: classroom.ID,
				TeacherID:   classroom.TeacherID,
				StudentID:   student.ID,
				RollNumber:  student.RollNumber,
				StudentName: student.Name,
				Date:        date,
				Source:      domain.SourceRecognition,
			})
			assert.NoError(t, err)
			if ok {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load(), "exactly one concurrent mark may create the record")

	records, err := ledger.ListByDate(ctx, classroom.ID, date)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, student.ID, records[0].StudentID)

	// A different day is a different record
	ok, err := ledger.Mark(ctx, &domain.AttendanceRecord{
		ClassroomID: classroom.ID,
		TeacherID:   classroom.TeacherID,
		StudentID:   student.ID,
		RollNumber:  student.RollNumber,
		StudentName: student.Name,
		Date:        date.AddDate(0, 0, 1),
		Source:      domain.SourceManual,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, ledger.Unmark(ctx, classroom.ID, student.ID, date))
	assert.ErrorIs(t, ledger.Unmark(ctx, classroom.ID, student.ID, date), domain.ErrAttendanceNotFound)
}

func TestTrainingStore_FIFO_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	pool := dbtest.Migrated(t)
	ctx := context.Background()

	classrooms := NewClassroomRepository(pool)
	students := NewStudentRepository(pool)
	_, student := seedStudent(t, classrooms, students)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := training.NewManager(students, training.Config{Capacity: 10, MaxRetries: 100}, logger)

	// Sequential appends past capacity evict the oldest samples
	for i := 1; i <= 12; i++ {
		_, err := manager.AddSample(ctx, student.ID, unitVector(i))
		require.NoError(t, err)
	}

	got, err := students.GetByID(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, got.Embeddings, 10)
	assert.Equal(t, unitVector(3), got.Embeddings[0], "oldest surviving sample")
	assert.Equal(t, unitVector(12), got.Embeddings[9], "newest sample is last")

	// Concurrent appends are never lost below capacity
	_, err = manager.ResetToLatest(ctx, student.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := manager.AddSample(ctx, student.ID, unitVector(100+i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err = students.GetByID(ctx, student.ID)
	require.NoError(t, err)
	assert.Len(t, got.Embeddings, 6)

	roster, err := students.ListRoster(ctx, student.ClassroomID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Len(t, roster[0].Embeddings, 6)
}
