package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

type StudentRepository struct {
	pool PgxPool
}

func NewStudentRepository(pool PgxPool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// Create inserts the student together with its initial embeddings.
func (r *StudentRepository) Create(ctx context.Context, s *domain.Student) error {
	query := `
		INSERT INTO students (id, classroom_id, teacher_id, roll_number, name, embedding_count, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 1, NOW(), NOW())
		RETURNING version, created_at, updated_at
	`

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query,
			s.ID,
			s.ClassroomID,
			s.TeacherID,
			s.RollNumber,
			s.Name,
			len(s.Embeddings),
		).Scan(&s.Version, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrStudentExists
			}
			return fmt.Errorf("create student: %w", err)
		}

		return insertEmbeddings(ctx, tx, s.ID, s.Embeddings)
	})
}

func (r *StudentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	query := `
		SELECT id, classroom_id, teacher_id, roll_number, name, version, created_at, updated_at
		FROM students
		WHERE id = $1
	`

	var s domain.Student
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.ClassroomID,
		&s.TeacherID,
		&s.RollNumber,
		&s.Name,
		&s.Version,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get student by id: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT embedding
		FROM student_embeddings
		WHERE student_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get student embeddings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var vec pgvector.Vector
		if err := rows.Scan(&vec); err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		s.Embeddings = append(s.Embeddings, fromVector(vec))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate embeddings: %w", err)
	}

	return &s, nil
}

// ListRoster returns every student of the classroom with their embeddings,
// ordered by roll number. Students without embeddings are included.
func (r *StudentRepository) ListRoster(ctx context.Context, classroomID uuid.UUID) ([]domain.Student, error) {
	query := `
		SELECT s.id, s.classroom_id, s.teacher_id, s.roll_number, s.name, s.version, s.created_at, s.updated_at, e.embedding
		FROM students s
		LEFT JOIN student_embeddings e ON e.student_id = s.id
		WHERE s.classroom_id = $1
		ORDER BY s.roll_number, s.id, e.position
	`

	rows, err := r.pool.Query(ctx, query, classroomID)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	defer rows.Close()

	roster := make([]domain.Student, 0)
	for rows.Next() {
		var s domain.Student
		var vec *pgvector.Vector

		if err := rows.Scan(
			&s.ID,
			&s.ClassroomID,
			&s.TeacherID,
			&s.RollNumber,
			&s.Name,
			&s.Version,
			&s.CreatedAt,
			&s.UpdatedAt,
			&vec,
		); err != nil {
			return nil, fmt.Errorf("scan roster row: %w", err)
		}

		if n := len(roster); n == 0 || roster[n-1].ID != s.ID {
			roster = append(roster, s)
		}
		if vec != nil {
			last := &roster[len(roster)-1]
			last.Embeddings = append(last.Embeddings, fromVector(*vec))
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster: %w", err)
	}

	return roster, nil
}

// SaveSamples replaces the student's embeddings when the stored version still
// equals expectedVersion, and bumps the version. A stale version yields
// domain.ErrConcurrentModification and leaves the row untouched.
func (r *StudentRepository) SaveSamples(ctx context.Context, id uuid.UUID, samples []domain.Embedding, expectedVersion int) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			UPDATE students
			SET embedding_count = $2, version = version + 1, updated_at = NOW()
			WHERE id = $1 AND version = $3
		`, id, len(samples), expectedVersion)
		if err != nil {
			return fmt.Errorf("update student version: %w", err)
		}
		if result.RowsAffected() == 0 {
			return domain.ErrConcurrentModification
		}

		if _, err := tx.Exec(ctx, `DELETE FROM student_embeddings WHERE student_id = $1`, id); err != nil {
			return fmt.Errorf("delete embeddings: %w", err)
		}

		return insertEmbeddings(ctx, tx, id, samples)
	})
}

func insertEmbeddings(ctx context.Context, tx pgx.Tx, studentID uuid.UUID, samples []domain.Embedding) error {
	for i, e := range samples {
		_, err := tx.Exec(ctx, `
			INSERT INTO student_embeddings (student_id, position, embedding, created_at)
			VALUES ($1, $2, $3, NOW())
		`, studentID, i, toVector(e))
		if err != nil {
			return fmt.Errorf("insert embedding %d: %w", i, err)
		}
	}
	return nil
}

func withTx(ctx context.Context, pool PgxPool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
