package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

const (
	rosterKeyPrefix   = "chamada:roster:"
	generationPrefix  = "chamada:roster-gen:"
	initialGeneration = "0"
)

// RosterLoader reads the authoritative roster.
type RosterLoader interface {
	ListRoster(ctx context.Context, classroomID uuid.UUID) ([]domain.Student, error)
}

// RosterCache serves classroom rosters from cache, falling back to the loader.
// Cache failures are logged and never fail the read.
//
// Snapshots are keyed by a per-classroom generation. Invalidate moves the
// generation forward, so a reader that loaded the roster before an
// invalidation writes its snapshot under a generation nobody reads again.
type RosterCache struct {
	cache  Cache
	loader RosterLoader
	ttl    time.Duration
	logger *slog.Logger
}

func NewRosterCache(c Cache, loader RosterLoader, ttl time.Duration, logger *slog.Logger) *RosterCache {
	if c == nil {
		c = Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RosterCache{cache: c, loader: loader, ttl: ttl, logger: logger}
}

// rosterEntry carries the fields domain.Student hides from API JSON.
type rosterEntry struct {
	ID          uuid.UUID          `json:"id"`
	ClassroomID uuid.UUID          `json:"classroom_id"`
	TeacherID   uuid.UUID          `json:"teacher_id"`
	RollNumber  string             `json:"roll_number"`
	Name        string             `json:"name"`
	Embeddings  []domain.Embedding `json:"embeddings"`
	Version     int                `json:"version"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func rosterKey(classroomID uuid.UUID, generation string) string {
	return rosterKeyPrefix + classroomID.String() + ":" + generation
}

func generationKey(classroomID uuid.UUID) string {
	return generationPrefix + classroomID.String()
}

// generation returns the classroom's current snapshot generation. ok is false
// when it cannot be read, in which case nothing may be cached.
func (r *RosterCache) generation(ctx context.Context, classroomID uuid.UUID) (gen string, ok bool) {
	raw, err := r.cache.Get(ctx, generationKey(classroomID))
	switch {
	case err == nil:
		return string(raw), true
	case errors.Is(err, ErrCacheMiss):
		return initialGeneration, true
	default:
		r.logger.WarnContext(ctx, "roster generation read failed",
			slog.String("classroom_id", classroomID.String()),
			slog.Any("error", err),
		)
		return "", false
	}
}

func (r *RosterCache) ListRoster(ctx context.Context, classroomID uuid.UUID) ([]domain.Student, error) {
	gen, ok := r.generation(ctx, classroomID)
	if !ok {
		return r.loader.ListRoster(ctx, classroomID)
	}
	key := rosterKey(classroomID, gen)

	raw, err := r.cache.Get(ctx, key)
	if err == nil {
		roster, decodeErr := decodeRoster(raw)
		if decodeErr == nil {
			return roster, nil
		}
		r.logger.WarnContext(ctx, "discarding undecodable roster cache entry",
			slog.String("classroom_id", classroomID.String()),
			slog.Any("error", decodeErr),
		)
	} else if !errors.Is(err, ErrCacheMiss) {
		r.logger.WarnContext(ctx, "roster cache read failed",
			slog.String("classroom_id", classroomID.String()),
			slog.Any("error", err),
		)
	}

	roster, err := r.loader.ListRoster(ctx, classroomID)
	if err != nil {
		return nil, err
	}

	if encoded, err := encodeRoster(roster); err == nil {
		if err := r.cache.Set(ctx, key, encoded, r.ttl); err != nil {
			r.logger.WarnContext(ctx, "roster cache write failed",
				slog.String("classroom_id", classroomID.String()),
				slog.Any("error", err),
			)
		}
	}

	return roster, nil
}

// Invalidate starts a new snapshot generation and drops the current
// snapshot. Called after any embedding or enrollment change in the classroom.
func (r *RosterCache) Invalidate(ctx context.Context, classroomID uuid.UUID) {
	old, ok := r.generation(ctx, classroomID)

	// The generation key never expires; a lost key would resurrect old snapshots.
	if err := r.cache.Set(ctx, generationKey(classroomID), []byte(uuid.NewString()), 0); err != nil {
		r.logger.WarnContext(ctx, "roster generation bump failed",
			slog.String("classroom_id", classroomID.String()),
			slog.Any("error", err),
		)
	}

	if !ok {
		return
	}
	if err := r.cache.Delete(ctx, rosterKey(classroomID, old)); err != nil {
		r.logger.WarnContext(ctx, "roster cache invalidation failed",
			slog.String("classroom_id", classroomID.String()),
			slog.Any("error", err),
		)
	}
}

func encodeRoster(roster []domain.Student) ([]byte, error) {
	entries := make([]rosterEntry, len(roster))
	for i, s := range roster {
		entries[i] = rosterEntry{
			ID:          s.ID,
			ClassroomID: s.ClassroomID,
			TeacherID:   s.TeacherID,
			RollNumber:  s.RollNumber,
			Name:        s.Name,
			Embeddings:  s.Embeddings,
			Version:     s.Version,
			CreatedAt:   s.CreatedAt,
			UpdatedAt:   s.UpdatedAt,
		}
	}
	return json.Marshal(entries)
}

func decodeRoster(raw []byte) ([]domain.Student, error) {
	var entries []rosterEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	roster := make([]domain.Student, len(entries))
	for i, e := range entries {
		roster[i] = domain.Student{
			ID:          e.ID,
			ClassroomID: e.ClassroomID,
			TeacherID:   e.TeacherID,
			RollNumber:  e.RollNumber,
			Name:        e.Name,
			Embeddings:  e.Embeddings,
			Version:     e.Version,
			CreatedAt:   e.CreatedAt,
			UpdatedAt:   e.UpdatedAt,
		}
	}
	return roster, nil
}
