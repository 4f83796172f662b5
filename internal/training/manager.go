package training

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

const defaultMaxRetries = 5

// Store loads and saves a student's samples. SaveSamples must fail with
// domain.ErrConcurrentModification when the stored version differs from
// expectedVersion.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error)
	SaveSamples(ctx context.Context, studentID uuid.UUID, samples []domain.Embedding, expectedVersion int) error
}

// Result describes the sample list after an update.
type Result struct {
	StudentID uuid.UUID `json:"student_id"`
	Count     int       `json:"sample_count"`
	Evicted   int       `json:"evicted"`
	Capacity  int       `json:"capacity"`
}

// Config configures a Manager.
type Config struct {
	Capacity   int
	MaxRetries int
}

// Manager applies FIFO updates to a student's samples. Updates for the same
// student are serialized through optimistic retries on the student version.
type Manager struct {
	store      Store
	capacity   int
	maxRetries int
	logger     *slog.Logger
}

// NewManager creates a Manager. Non-positive config values use the defaults.
func NewManager(store Store, cfg Config, logger *slog.Logger) *Manager {
	if cfg.Capacity <= 0 {
		cfg.Capacity = domain.DefaultMaxTrainingSamples
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:      store,
		capacity:   cfg.Capacity,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}
}

// Capacity returns the per-student sample limit.
func (m *Manager) Capacity() int {
	return m.capacity
}

// AddSample appends an embedding, evicting the oldest samples beyond capacity.
func (m *Manager) AddSample(ctx context.Context, studentID uuid.UUID, embedding domain.Embedding) (Result, error) {
	if err := embedding.Validate(); err != nil {
		return Result{}, err
	}
	return m.update(ctx, studentID, "add_sample", func(samples []domain.Embedding) ([]domain.Embedding, int, error) {
		out, evicted := Append(samples, embedding, m.capacity)
		return out, evicted, nil
	})
}

// AddSampleStrict appends an embedding and fails with
// domain.ErrTrainingCapacityReached instead of evicting.
func (m *Manager) AddSampleStrict(ctx context.Context, studentID uuid.UUID, embedding domain.Embedding) (Result, error) {
	if err := embedding.Validate(); err != nil {
		return Result{}, err
	}
	return m.update(ctx, studentID, "add_sample_strict", func(samples []domain.Embedding) ([]domain.Embedding, int, error) {
		out, err := AppendStrict(samples, embedding, m.capacity)
		return out, 0, err
	})
}

// ResetToLatest keeps only the most recent sample.
func (m *Manager) ResetToLatest(ctx context.Context, studentID uuid.UUID) (Result, error) {
	return m.update(ctx, studentID, "reset", func(samples []domain.Embedding) ([]domain.Embedding, int, error) {
		out := KeepLatest(samples)
		return out, len(samples) - len(out), nil
	})
}

type mutation func(samples []domain.Embedding) ([]domain.Embedding, int, error)

func (m *Manager) update(ctx context.Context, studentID uuid.UUID, op string, mutate mutation) (Result, error) {
	var lastErr error

	for attempt := 1; attempt <= m.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		student, err := m.store.GetByID(ctx, studentID)
		if err != nil {
			return Result{}, err
		}

		samples, evicted, err := mutate(student.Embeddings)
		if err != nil {
			return Result{}, err
		}

		err = m.store.SaveSamples(ctx, studentID, samples, student.Version)
		if err == nil {
			m.logger.DebugContext(ctx, "training samples updated",
				slog.String("op", op),
				slog.String("student_id", studentID.String()),
				slog.Int("count", len(samples)),
				slog.Int("evicted", evicted),
				slog.Int("attempt", attempt),
			)
			return Result{
				StudentID: studentID,
				Count:     len(samples),
				Evicted:   evicted,
				Capacity:  m.capacity,
			}, nil
		}

		if !errors.Is(err, domain.ErrConcurrentModification) {
			return Result{}, fmt.Errorf("save samples: %w", err)
		}

		lastErr = err
		m.logger.WarnContext(ctx, "concurrent training update, retrying",
			slog.String("op", op),
			slog.String("student_id", studentID.String()),
			slog.Int("attempt", attempt),
		)
	}

	return Result{}, lastErr
}
