package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Classroom representa uma turma de um professor
type Classroom struct {
	ID        uuid.UUID `json:"id"`
	TeacherID uuid.UUID `json:"teacher_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// OwnedBy reports whether the classroom belongs to the given teacher.
func (c *Classroom) OwnedBy(teacherID uuid.UUID) bool {
	return c != nil && c.TeacherID == teacherID
}

// Validate verifica se a turma é válida
func (c *Classroom) Validate() error {
	if c.TeacherID == uuid.Nil {
		return errors.New("classroom teacher cannot be empty")
	}
	if c.Name == "" {
		return errors.New("classroom name cannot be empty")
	}
	return nil
}
