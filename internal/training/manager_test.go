package training

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

func (m *MockStore) SaveSamples(ctx context.Context, studentID uuid.UUID, samples []domain.Embedding, expectedVersion int) error {
	args := m.Called(ctx, studentID, samples, expectedVersion)
	return args.Error(0)
}

// memoryStore is a version-checked in-memory Store.
type memoryStore struct {
	mu       sync.Mutex
	students map[uuid.UUID]*domain.Student
}

func (s *memoryStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.students[id]
	if !ok {
		return nil, domain.ErrStudentNotFound
	}
	cp := *st
	cp.Embeddings = append([]domain.Embedding(nil), st.Embeddings...)
	return &cp, nil
}

func (s *memoryStore) SaveSamples(_ context.Context, id uuid.UUID, samples []domain.Embedding, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.students[id]
	if st.Version != expectedVersion {
		return domain.ErrConcurrentModification
	}
	st.Embeddings = samples
	st.Version++
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestManager_AddSample(t *testing.T) {
	studentID := uuid.New()
	emb := domain.Embedding{0.5, 0.5}

	tests := []struct {
		name        string
		existing    int
		mockSetup   func(*MockStore)
		wantCount   int
		wantEvicted int
		wantErr     error
	}{
		{
			name:     "appends below capacity",
			existing: 2,
			mockSetup: func(s *MockStore) {
				s.On("SaveSamples", mock.Anything, studentID, mock.MatchedBy(func(in []domain.Embedding) bool {
					return len(in) == 3
				}), 4).Return(nil).Once()
			},
			wantCount: 3,
		},
		{
			name:     "evicts oldest at capacity",
			existing: 10,
			mockSetup: func(s *MockStore) {
				s.On("SaveSamples", mock.Anything, studentID, mock.MatchedBy(func(in []domain.Embedding) bool {
					return len(in) == 10 && in[0][0] == 1
				}), 4).Return(nil).Once()
			},
			wantCount:   10,
			wantEvicted: 1,
		},
		{
			name:     "retries after a version conflict",
			existing: 1,
			mockSetup: func(s *MockStore) {
				s.On("SaveSamples", mock.Anything, studentID, mock.Anything, 4).
					Return(domain.ErrConcurrentModification).Once()
				s.On("SaveSamples", mock.Anything, studentID, mock.Anything, 4).
					Return(nil).Once()
			},
			wantCount: 2,
		},
		{
			name:     "gives up after max retries",
			existing: 1,
			mockSetup: func(s *MockStore) {
				s.On("SaveSamples", mock.Anything, studentID, mock.Anything, 4).
					Return(domain.ErrConcurrentModification).Times(3)
			},
			wantErr: domain.ErrConcurrentModification,
		},
		{
			name:     "storage failure is not retried",
			existing: 1,
			mockSetup: func(s *MockStore) {
				s.On("SaveSamples", mock.Anything, studentID, mock.Anything, 4).
					Return(errors.New("connection reset")).Once()
			},
			wantErr: errors.New("connection reset"),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockStore)
			store.On("GetByID", mock.Anything, studentID).
				Return(&domain.Student{ID: studentID, Embeddings: samples(tt.existing), Version: 4}, nil)
			tt.mockSetup(store)

			m := NewManager(store, Config{Capacity: 10, MaxRetries: 3}, discardLogger())

			got, err := m.AddSample(context.Background(), studentID, emb)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
				store.AssertExpectations(t)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, got.Count)
			assert.Equal(t, tt.wantEvicted, got.Evicted)
			assert.Equal(t, 10, got.Capacity)
			store.AssertExpectations(t)
		})
	}
}

func TestManager_AddSample_Validation(t *testing.T) {
	store := new(MockStore)
	m := NewManager(store, Config{}, discardLogger())

	_, err := m.AddSample(context.Background(), uuid.New(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidEmbedding)
	store.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestManager_AddSample_StudentNotFound(t *testing.T) {
	store := new(MockStore)
	id := uuid.New()
	store.On("GetByID", mock.Anything, id).Return(nil, domain.ErrStudentNotFound)

	m := NewManager(store, Config{}, discardLogger())
	_, err := m.AddSample(context.Background(), id, domain.Embedding{1})

	assert.ErrorIs(t, err, domain.ErrStudentNotFound)
}

func TestManager_AddSampleStrict(t *testing.T) {
	id := uuid.New()
	store := &memoryStore{students: map[uuid.UUID]*domain.Student{
		id: {ID: id, Embeddings: samples(9), Version: 1},
	}}
	m := NewManager(store, Config{Capacity: 10}, discardLogger())

	got, err := m.AddSampleStrict(context.Background(), id, domain.Embedding{42})
	require.NoError(t, err)
	assert.Equal(t, 10, got.Count)

	_, err = m.AddSampleStrict(context.Background(), id, domain.Embedding{43})
	assert.ErrorIs(t, err, domain.ErrTrainingCapacityReached)

	st, _ := store.GetByID(context.Background(), id)
	assert.Len(t, st.Embeddings, 10)
	assert.Equal(t, domain.Embedding{42}, st.Embeddings[9])
}

func TestManager_ResetToLatest(t *testing.T) {
	tests := []struct {
		name        string
		existing    int
		wantCount   int
		wantEvicted int
	}{
		{name: "many samples", existing: 7, wantCount: 1, wantEvicted: 6},
		{name: "single sample", existing: 1, wantCount: 1, wantEvicted: 0},
		{name: "no samples", existing: 0, wantCount: 0, wantEvicted: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()
			store := &memoryStore{students: map[uuid.UUID]*domain.Student{
				id: {ID: id, Embeddings: samples(tt.existing), Version: 1},
			}}
			m := NewManager(store, Config{}, discardLogger())

			got, err := m.ResetToLatest(context.Background(), id)
			require.NoError(t, err)

			assert.Equal(t, tt.wantCount, got.Count)
			assert.Equal(t, tt.wantEvicted, got.Evicted)
			if tt.existing > 0 {
				st, _ := store.GetByID(context.Background(), id)
				assert.Equal(t, domain.Embedding{float64(tt.existing - 1)}, st.Embeddings[0])
			}
		})
	}
}

func TestManager_ConcurrentAddsAreSerialized(t *testing.T) {
	id := uuid.New()
	store := &memoryStore{students: map[uuid.UUID]*domain.Student{
		id: {ID: id, Version: 1},
	}}
	m := NewManager(store, Config{Capacity: 10, MaxRetries: 100}, discardLogger())

	const writers = 25
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := m.AddSample(context.Background(), id, domain.Embedding{float64(i)})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	st, _ := store.GetByID(context.Background(), id)
	assert.Len(t, st.Embeddings, 10)
	assert.Equal(t, writers+1, st.Version, "every add committed exactly once")
}
