package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

type ClassroomRepository struct {
	pool PgxPool
}

func NewClassroomRepository(pool PgxPool) *ClassroomRepository {
	return &ClassroomRepository{pool: pool}
}

func (r *ClassroomRepository) Create(ctx context.Context, c *domain.Classroom) error {
	query := `
		INSERT INTO classrooms (id, teacher_id, name, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING created_at
	`

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	if err := r.pool.QueryRow(ctx, query, c.ID, c.TeacherID, c.Name).Scan(&c.CreatedAt); err != nil {
		return fmt.Errorf("create classroom: %w", err)
	}

	return nil
}

func (r *ClassroomRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Classroom, error) {
	query := `
		SELECT id, teacher_id, name, created_at
		FROM classrooms
		WHERE id = $1
	`

	var c domain.Classroom
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.TeacherID, &c.Name, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrClassroomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get classroom by id: %w", err)
	}

	return &c, nil
}

func (r *ClassroomRepository) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]domain.Classroom, error) {
	query := `
		SELECT id, teacher_id, name, created_at
		FROM classrooms
		WHERE teacher_id = $1
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list classrooms: %w", err)
	}
	defer rows.Close()

	classrooms := make([]domain.Classroom, 0)
	for rows.Next() {
		var c domain.Classroom
		if err := rows.Scan(&c.ID, &c.TeacherID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan classroom: %w", err)
		}
		classrooms = append(classrooms, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate classrooms: %w", err)
	}

	return classrooms, nil
}
