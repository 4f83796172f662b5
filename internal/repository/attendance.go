package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

type AttendanceRepository struct {
	pool PgxPool
}

func NewAttendanceRepository(pool PgxPool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// Mark inserts the record unless one already exists for the same roll number,
// classroom, teacher and date. It reports whether a new row was created.
// The check and insert are a single statement so concurrent commits cannot
// both succeed.
func (r *AttendanceRepository) Mark(ctx context.Context, rec *domain.AttendanceRecord) (bool, error) {
	query := `
		INSERT INTO attendance_records (id, classroom_id, teacher_id, student_id, roll_number, student_name, date, source, marked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (roll_number, classroom_id, teacher_id, date) DO NOTHING
		RETURNING id, marked_at
	`

	id := rec.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		id,
		rec.ClassroomID,
		rec.TeacherID,
		rec.StudentID,
		rec.RollNumber,
		rec.StudentName,
		rec.Date,
		string(rec.Source),
	).Scan(&rec.ID, &rec.MarkedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("mark attendance: %w", err)
	}

	return true, nil
}

// Unmark removes the student's record for the date.
func (r *AttendanceRepository) Unmark(ctx context.Context, classroomID, studentID uuid.UUID, date time.Time) error {
	query := `
		DELETE FROM attendance_records
		WHERE classroom_id = $1 AND student_id = $2 AND date = $3
	`

	result, err := r.pool.Exec(ctx, query, classroomID, studentID, date)
	if err != nil {
		return fmt.Errorf("unmark attendance: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrAttendanceNotFound
	}

	return nil
}

func (r *AttendanceRepository) ListByDate(ctx context.Context, classroomID uuid.UUID, date time.Time) ([]domain.AttendanceRecord, error) {
	query := `
		SELECT id, classroom_id, teacher_id, student_id, roll_number, student_name, date, source, marked_at
		FROM attendance_records
		WHERE classroom_id = $1 AND date = $2
		ORDER BY roll_number
	`

	rows, err := r.pool.Query(ctx, query, classroomID, date)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	records := make([]domain.AttendanceRecord, 0)
	for rows.Next() {
		var rec domain.AttendanceRecord
		var source string
		if err := rows.Scan(
			&rec.ID,
			&rec.ClassroomID,
			&rec.TeacherID,
			&rec.StudentID,
			&rec.RollNumber,
			&rec.StudentName,
			&rec.Date,
			&source,
			&rec.MarkedAt,
		); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		rec.Source = domain.AttendanceSource(source)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance: %w", err)
	}

	return records, nil
}
