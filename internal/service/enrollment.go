package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/matcher"
	"github.com/saturnino-fabrica-de-software/chamada/internal/metrics"
	"github.com/saturnino-fabrica-de-software/chamada/internal/provider"
	"github.com/saturnino-fabrica-de-software/chamada/internal/training"
	"github.com/saturnino-fabrica-de-software/chamada/internal/ws"
)

// EnrollmentService enrolls students and manages their training samples
// outside the review flow.
type EnrollmentService struct {
	classroomRepo ClassroomRepositoryInterface
	studentRepo   StudentRepositoryInterface
	roster        RosterSource
	trainer       Trainer
	provider      provider.EmbeddingProvider
	counter       provider.FaceCounter
	matcher       *matcher.Matcher
	publisher     Publisher
	logger        *slog.Logger
}

func NewEnrollmentService(
	classroomRepo ClassroomRepositoryInterface,
	studentRepo StudentRepositoryInterface,
	roster RosterSource,
	trainer Trainer,
	embeddingProvider provider.EmbeddingProvider,
	logger *slog.Logger,
) *EnrollmentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnrollmentService{
		classroomRepo: classroomRepo,
		studentRepo:   studentRepo,
		roster:        roster,
		trainer:       trainer,
		provider:      embeddingProvider,
		matcher:       matcher.New(matcher.DefaultPolicy()),
		publisher:     nopPublisher{},
		logger:        logger,
	}
}

// WithPolicy sets the thresholds used by Verify.
func (s *EnrollmentService) WithPolicy(p matcher.Policy) *EnrollmentService {
	s.matcher = matcher.New(p)
	return s
}

// WithFaceCounter enables the single-face precheck on enrollment photos.
// A nil counter disables it.
func (s *EnrollmentService) WithFaceCounter(counter provider.FaceCounter) *EnrollmentService {
	s.counter = counter
	return s
}

func (s *EnrollmentService) WithPublisher(p Publisher) *EnrollmentService {
	if p != nil {
		s.publisher = p
	}
	return s
}

// Enroll creates a student whose only sample comes from the given photo.
func (s *EnrollmentService) Enroll(ctx context.Context, teacherID, classroomID uuid.UUID, rollNumber, name string, image []byte) (*domain.Student, error) {
	classroom, err := authorizeClassroom(ctx, s.classroomRepo, teacherID, classroomID)
	if err != nil {
		return nil, err
	}

	student := &domain.Student{
		ClassroomID: classroom.ID,
		TeacherID:   classroom.TeacherID,
		RollNumber:  strings.TrimSpace(rollNumber),
		Name:        strings.TrimSpace(name),
	}
	if err := student.Validate(); err != nil {
		return nil, domain.ErrValidationFailed.WithMessage(err.Error())
	}

	embedding, err := s.extract(ctx, image)
	if err != nil {
		return nil, err
	}
	student.Embeddings = []domain.Embedding{embedding}

	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}

	s.roster.Invalidate(ctx, classroom.ID)
	metrics.TrainingSamples.WithLabelValues("enroll").Inc()

	s.logger.InfoContext(ctx, "student enrolled",
		slog.String("classroom_id", classroom.ID.String()),
		slog.String("student_id", student.ID.String()),
		slog.String("roll_number", student.RollNumber),
	)

	return student, nil
}

// AddPhoto extracts the face of a new photo and adds it as a training sample.
// With strict set the call fails at capacity instead of evicting.
func (s *EnrollmentService) AddPhoto(ctx context.Context, teacherID, studentID uuid.UUID, image []byte, strict bool) (training.Result, error) {
	student, err := s.authorizeStudent(ctx, teacherID, studentID)
	if err != nil {
		return training.Result{}, err
	}

	embedding, err := s.extract(ctx, image)
	if err != nil {
		return training.Result{}, err
	}

	return s.addSample(ctx, student, embedding, strict, "photo")
}

// AddTrainingSample adds an already extracted embedding to the student's samples.
func (s *EnrollmentService) AddTrainingSample(ctx context.Context, teacherID, studentID uuid.UUID, embedding domain.Embedding, strict bool) (training.Result, error) {
	student, err := s.authorizeStudent(ctx, teacherID, studentID)
	if err != nil {
		return training.Result{}, err
	}
	return s.addSample(ctx, student, embedding, strict, "sample")
}

// ResetTrainingSamples keeps only the student's most recent sample.
func (s *EnrollmentService) ResetTrainingSamples(ctx context.Context, teacherID, studentID uuid.UUID) (training.Result, error) {
	student, err := s.authorizeStudent(ctx, teacherID, studentID)
	if err != nil {
		return training.Result{}, err
	}

	res, err := s.trainer.ResetToLatest(ctx, student.ID)
	if err != nil {
		return training.Result{}, err
	}

	s.trained(ctx, student, res, "reset")
	return res, nil
}

func (s *EnrollmentService) addSample(ctx context.Context, student *domain.Student, embedding domain.Embedding, strict bool, op string) (training.Result, error) {
	var (
		res training.Result
		err error
	)
	if strict {
		res, err = s.trainer.AddSampleStrict(ctx, student.ID, embedding)
	} else {
		res, err = s.trainer.AddSample(ctx, student.ID, embedding)
	}
	if err != nil {
		return training.Result{}, err
	}

	s.trained(ctx, student, res, op)
	return res, nil
}

func (s *EnrollmentService) trained(ctx context.Context, student *domain.Student, res training.Result, op string) {
	s.roster.Invalidate(ctx, student.ClassroomID)
	metrics.TrainingSamples.WithLabelValues(op).Inc()
	metrics.TrainingEvicted.Add(float64(res.Evicted))
	s.publisher.Publish(student.ClassroomID, ws.EventTrainingUpdated, res)

	s.logger.InfoContext(ctx, "training samples updated",
		slog.String("student_id", student.ID.String()),
		slog.String("op", op),
		slog.Int("count", res.Count),
		slog.Int("evicted", res.Evicted),
	)
}

// Verify checks whether the single face in image is the given student.
func (s *EnrollmentService) Verify(ctx context.Context, teacherID, studentID uuid.UUID, image []byte) (*matcher.Verification, error) {
	student, err := s.authorizeStudent(ctx, teacherID, studentID)
	if err != nil {
		return nil, err
	}

	embedding, err := s.extract(ctx, image)
	if err != nil {
		return nil, err
	}

	v, err := s.matcher.Verify(embedding, *student)
	if err != nil {
		return nil, err
	}

	result := "rejected"
	if v.Verified {
		result = "verified"
	}
	metrics.Verifications.WithLabelValues(result).Inc()

	s.logger.InfoContext(ctx, "student verified",
		slog.String("student_id", student.ID.String()),
		slog.Bool("verified", v.Verified),
		slog.Float64("distance", v.Distance),
	)

	return &v, nil
}

// authorizeStudent loads the student and checks its classroom belongs to the
// teacher. Students of other teachers are reported as not found.
func (s *EnrollmentService) authorizeStudent(ctx context.Context, teacherID, studentID uuid.UUID) (*domain.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeClassroom(ctx, s.classroomRepo, teacherID, student.ClassroomID); err != nil {
		return nil, domain.ErrStudentNotFound
	}
	return student, nil
}

// extract runs the optional face count precheck and then asks the embedding
// service for the single face of an enrollment photo.
func (s *EnrollmentService) extract(ctx context.Context, image []byte) (domain.Embedding, error) {
	if len(image) == 0 {
		return nil, domain.ErrInvalidImage
	}

	if s.counter != nil {
		start := time.Now()
		n, err := s.counter.CountFaces(ctx, image)
		metrics.ObserveEmbedding("count_faces", start, err)
		if err != nil {
			return nil, mapProviderError(err)
		}
		switch {
		case n == 0:
			return nil, domain.ErrNoFaceDetected
		case n > 1:
			return nil, domain.ErrMultipleFaces.WithMessage(fmt.Sprintf("%d faces detected, enrollment photos must contain exactly one face", n))
		}
	}

	start := time.Now()
	face, err := s.provider.ExtractEmbedding(ctx, image)
	metrics.ObserveEmbedding("extract_embedding", start, err)
	if err != nil {
		return nil, mapProviderError(err)
	}
	if face == nil {
		return nil, domain.ErrNoFaceDetected
	}

	embedding := domain.Embedding(face.Embedding)
	if err := embedding.Validate(); err != nil {
		return nil, err
	}
	return embedding, nil
}
