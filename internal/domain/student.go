package domain

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// EmbeddingDimension is the vector size produced by the Facenet512 model.
	EmbeddingDimension = 512

	// DefaultMaxTrainingSamples bounds the per-student embedding list.
	DefaultMaxTrainingSamples = 10
)

// Embedding is a face feature vector.
type Embedding []float64

// Validate rejects empty vectors and vectors holding NaN or Inf.
func (e Embedding) Validate() error {
	if len(e) == 0 {
		return ErrInvalidEmbedding
	}
	for _, v := range e {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrInvalidEmbedding
		}
	}
	return nil
}

// Student representa um aluno matriculado em uma turma
type Student struct {
	ID          uuid.UUID   `json:"id"`
	ClassroomID uuid.UUID   `json:"classroom_id"`
	TeacherID   uuid.UUID   `json:"teacher_id"`
	RollNumber  string      `json:"roll_number"`
	Name        string      `json:"name"`
	Embeddings  []Embedding `json:"-"`
	Version     int         `json:"-"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// SampleCount returns how many training samples the student holds.
func (s *Student) SampleCount() int {
	return len(s.Embeddings)
}

// Enrolled reports whether the student has at least one embedding to match against.
func (s *Student) Enrolled() bool {
	return len(s.Embeddings) > 0
}

// Validate verifica se o aluno é válido
func (s *Student) Validate() error {
	if s.ClassroomID == uuid.Nil {
		return errors.New("student classroom cannot be empty")
	}
	if strings.TrimSpace(s.RollNumber) == "" {
		return errors.New("student roll number cannot be empty")
	}
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("student name cannot be empty")
	}
	return nil
}

// HasEnrolledStudents reports whether any student in the roster can be matched.
func HasEnrolledStudents(roster []Student) bool {
	for i := range roster {
		if roster[i].Enrolled() {
			return true
		}
	}
	return false
}
