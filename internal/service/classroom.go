package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

// authorizeClassroom loads the classroom and checks it belongs to the teacher.
// Unknown classrooms are reported as unauthorized so ids of other teachers
// cannot be probed.
func authorizeClassroom(ctx context.Context, repo ClassroomRepositoryInterface, teacherID, classroomID uuid.UUID) (*domain.Classroom, error) {
	classroom, err := repo.GetByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, domain.ErrClassroomNotFound) {
			return nil, domain.ErrUnauthorizedClassroom
		}
		return nil, err
	}

	if !classroom.OwnedBy(teacherID) {
		return nil, domain.ErrUnauthorizedClassroom
	}

	return classroom, nil
}

type ClassroomService struct {
	classroomRepo ClassroomRepositoryInterface
}

func NewClassroomService(classroomRepo ClassroomRepositoryInterface) *ClassroomService {
	return &ClassroomService{classroomRepo: classroomRepo}
}

func (s *ClassroomService) Create(ctx context.Context, teacherID uuid.UUID, name string) (*domain.Classroom, error) {
	classroom := &domain.Classroom{
		TeacherID: teacherID,
		Name:      strings.TrimSpace(name),
	}
	if err := classroom.Validate(); err != nil {
		return nil, domain.ErrValidationFailed.WithMessage(err.Error())
	}

	if err := s.classroomRepo.Create(ctx, classroom); err != nil {
		return nil, err
	}

	return classroom, nil
}

func (s *ClassroomService) List(ctx context.Context, teacherID uuid.UUID) ([]domain.Classroom, error) {
	return s.classroomRepo.ListByTeacher(ctx, teacherID)
}

// Authorize returns the classroom when it belongs to the teacher.
func (s *ClassroomService) Authorize(ctx context.Context, teacherID, classroomID uuid.UUID) (*domain.Classroom, error) {
	return authorizeClassroom(ctx, s.classroomRepo, teacherID, classroomID)
}
