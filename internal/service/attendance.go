package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/matcher"
	"github.com/saturnino-fabrica-de-software/chamada/internal/metrics"
	"github.com/saturnino-fabrica-de-software/chamada/internal/provider"
	"github.com/saturnino-fabrica-de-software/chamada/internal/session"
	"github.com/saturnino-fabrica-de-software/chamada/internal/ws"
)

// AttendanceService runs the detect, review and commit cycle for classroom photos.
type AttendanceService struct {
	classroomRepo  ClassroomRepositoryInterface
	studentRepo    StudentRepositoryInterface
	roster         RosterSource
	attendanceRepo AttendanceRepositoryInterface
	trainer        Trainer
	provider       provider.EmbeddingProvider
	matcher        *matcher.Matcher
	publisher      Publisher
	location       *time.Location
	now            func() time.Time
	logger         *slog.Logger
}

func NewAttendanceService(
	classroomRepo ClassroomRepositoryInterface,
	studentRepo StudentRepositoryInterface,
	roster RosterSource,
	attendanceRepo AttendanceRepositoryInterface,
	trainer Trainer,
	embeddingProvider provider.EmbeddingProvider,
	logger *slog.Logger,
) *AttendanceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttendanceService{
		classroomRepo:  classroomRepo,
		studentRepo:    studentRepo,
		roster:         roster,
		attendanceRepo: attendanceRepo,
		trainer:        trainer,
		provider:       embeddingProvider,
		matcher:        matcher.New(matcher.DefaultPolicy()),
		publisher:      nopPublisher{},
		location:       time.UTC,
		now:            time.Now,
		logger:         logger,
	}
}

func (s *AttendanceService) WithPolicy(p matcher.Policy) *AttendanceService {
	s.matcher = matcher.New(p)
	return s
}

// WithLocation sets the zone whose calendar day an attendance mark belongs to.
func (s *AttendanceService) WithLocation(loc *time.Location) *AttendanceService {
	if loc != nil {
		s.location = loc
	}
	return s
}

func (s *AttendanceService) WithPublisher(p Publisher) *AttendanceService {
	if p != nil {
		s.publisher = p
	}
	return s
}

func (s *AttendanceService) WithClock(now func() time.Time) *AttendanceService {
	s.now = now
	return s
}

// Today returns the attendance date for the current instant.
func (s *AttendanceService) Today() time.Time {
	return domain.AttendanceDate(s.now(), s.location)
}

// DetectAndMatch detects every face in a classroom photo and matches each one
// against the roster. The returned session is not stored anywhere.
func (s *AttendanceService) DetectAndMatch(ctx context.Context, teacherID, classroomID uuid.UUID, image []byte) (*session.Session, error) {
	if _, err := authorizeClassroom(ctx, s.classroomRepo, teacherID, classroomID); err != nil {
		return nil, err
	}

	roster, err := s.roster.ListRoster(ctx, classroomID)
	if err != nil {
		return nil, fmt.Errorf("classroom %s: load roster: %w", classroomID, err)
	}
	if !domain.HasEnrolledStudents(roster) {
		return nil, domain.ErrNoEnrolledFaces
	}

	detected, err := s.detect(ctx, image)
	if err != nil {
		return nil, err
	}

	faces, err := s.matchFaces(ctx, detected, roster)
	if err != nil {
		return nil, err
	}

	sess := session.New(classroomID, faces, s.now().UTC())

	metrics.Detections.WithLabelValues(string(sess.Outcome)).Inc()
	metrics.FacesDetected.Add(float64(sess.FaceCount))
	metrics.FacesRecognized.Add(float64(sess.RecognizedCount))

	s.logger.InfoContext(ctx, "classroom photo matched",
		slog.String("classroom_id", classroomID.String()),
		slog.String("session_id", sess.ID.String()),
		slog.String("outcome", string(sess.Outcome)),
		slog.Int("faces", sess.FaceCount),
		slog.Int("recognized", sess.RecognizedCount),
	)

	s.publisher.Publish(classroomID, ws.EventDetectionCompleted, map[string]interface{}{
		"session_id":       sess.ID,
		"outcome":          sess.Outcome,
		"face_count":       sess.FaceCount,
		"recognized_count": sess.RecognizedCount,
	})

	return sess, nil
}

// detect calls the embedding service and orders faces top to bottom, then
// left to right, so face indices are stable for a given photo.
func (s *AttendanceService) detect(ctx context.Context, image []byte) ([]provider.DetectedFace, error) {
	start := time.Now()
	detected, err := s.provider.DetectFaces(ctx, image)
	metrics.ObserveEmbedding("detect_faces", start, err)
	if err != nil {
		return nil, mapProviderError(err)
	}

	sort.SliceStable(detected, func(i, j int) bool {
		a, b := detected[i].BoundingBox, detected[j].BoundingBox
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	return detected, nil
}

func (s *AttendanceService) matchFaces(ctx context.Context, detected []provider.DetectedFace, roster []domain.Student) ([]session.Face, error) {
	verdicts := make([]matcher.Verdict, len(detected))
	for i := range detected {
		v, err := s.matcher.Match(detected[i].Embedding, roster)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		verdicts[i] = v
	}

	duplicateOf := matcher.ResolveDuplicates(verdicts)

	faces := make([]session.Face, len(detected))
	for i, d := range detected {
		v := verdicts[i]
		f := session.Face{
			Box: session.BoundingBox{
				X:      d.BoundingBox.X,
				Y:      d.BoundingBox.Y,
				Width:  d.BoundingBox.Width,
				Height: d.BoundingBox.Height,
			},
			Embedding: d.Embedding,
			Ambiguous: v.Ambiguous,
		}

		if v.Best != nil {
			nearest := toSessionCandidate(*v.Best)
			f.Nearest = &nearest
			if v.Recognized {
				candidate := nearest
				f.Candidate = &candidate
			}
		}
		if duplicateOf[i] >= 0 {
			w := duplicateOf[i]
			f.DuplicateOf = &w
		}

		if v.Ambiguous {
			s.logger.WarnContext(ctx, "recognized face has a close runner-up",
				slog.Int("face_index", i),
				slog.String("roll_number", v.Best.RollNumber),
				slog.Float64("best_distance", v.Best.MinDistance),
				slog.Float64("second_distance", v.Candidates[1].MinDistance),
				slog.Float64("gap", *v.Gap),
				slog.Float64("required_gap", v.RequiredGap),
			)
		}

		faces[i] = f
	}

	return faces, nil
}

func toSessionCandidate(c matcher.Candidate) session.Candidate {
	return session.Candidate{
		StudentID:  c.StudentID,
		RollNumber: c.RollNumber,
		Name:       c.Name,
		Distance:   c.MinDistance,
		Confidence: matcher.Confidence(c.MinDistance),
	}
}

// ConfirmSession commits a reviewed session.
func (s *AttendanceService) ConfirmSession(ctx context.Context, teacherID, classroomID uuid.UUID, sess *session.Session) (*domain.ConfirmationResult, error) {
	if sess == nil {
		return nil, domain.ErrValidationFailed.WithMessage("session is required")
	}
	if sess.ClassroomID != uuid.Nil && sess.ClassroomID != classroomID {
		return nil, domain.ErrValidationFailed.WithMessage("session belongs to another classroom")
	}
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	return s.ApplyDecisions(ctx, teacherID, classroomID, sess.Decisions())
}

// ApplyDecisions commits the teacher's decisions. Every decision naming a
// student marks that student present today; decisions flagged for training
// also feed the embedding to the student's samples. Attendance and training
// are independent: a failure in one never undoes the other, and a bad
// decision never stops the rest of the batch.
func (s *AttendanceService) ApplyDecisions(ctx context.Context, teacherID, classroomID uuid.UUID, decisions []domain.Decision) (*domain.ConfirmationResult, error) {
	classroom, err := authorizeClassroom(ctx, s.classroomRepo, teacherID, classroomID)
	if err != nil {
		return nil, err
	}

	date := s.Today()
	result := &domain.ConfirmationResult{
		Marked:         []domain.MarkedStudent{},
		AlreadyPresent: []domain.MarkedStudent{},
		Skipped:        []domain.SkippedDecision{},
	}
	students := make(map[uuid.UUID]*domain.Student)

	for _, d := range decisions {
		if !d.Action.Valid() {
			result.Skipped = append(result.Skipped, domain.SkippedDecision{
				FaceIndex: d.FaceIndex,
				Reason:    fmt.Sprintf("unknown action %q", d.Action),
			})
			continue
		}
		if !d.Marks() {
			continue
		}

		student, reason := s.batchStudent(ctx, students, classroom.ID, *d.StudentID)
		if reason != "" {
			result.Skipped = append(result.Skipped, domain.SkippedDecision{FaceIndex: d.FaceIndex, Reason: reason})
			continue
		}

		s.markFromDecision(ctx, classroom, student, date, d, result)

		if d.AddToTraining {
			s.trainFromDecision(ctx, student, d, result)
		}
	}

	result.MarkedCount = len(result.Marked)
	result.Message = summaryMessage(result)

	if result.TrainedCount > 0 {
		s.roster.Invalidate(ctx, classroom.ID)
	}

	s.logger.InfoContext(ctx, "attendance decisions applied",
		slog.String("classroom_id", classroom.ID.String()),
		slog.Int("decisions", len(decisions)),
		slog.Int("marked", result.MarkedCount),
		slog.Int("already_present", len(result.AlreadyPresent)),
		slog.Int("trained", result.TrainedCount),
		slog.Int("skipped", len(result.Skipped)),
	)

	return result, nil
}

// batchStudent resolves a student once per batch. A non-empty reason means
// the decision must be skipped.
func (s *AttendanceService) batchStudent(ctx context.Context, cache map[uuid.UUID]*domain.Student, classroomID, studentID uuid.UUID) (*domain.Student, string) {
	if st, ok := cache[studentID]; ok {
		if st == nil {
			return nil, "student not found in classroom"
		}
		return st, ""
	}

	st, err := s.studentRepo.GetByID(ctx, studentID)
	switch {
	case errors.Is(err, domain.ErrStudentNotFound):
		cache[studentID] = nil
		return nil, "student not found in classroom"
	case err != nil:
		s.logger.ErrorContext(ctx, "load student for decision",
			slog.String("student_id", studentID.String()),
			slog.Any("error", err),
		)
		return nil, "student could not be loaded"
	case st.ClassroomID != classroomID:
		cache[studentID] = nil
		return nil, "student not found in classroom"
	}

	cache[studentID] = st
	return st, ""
}

func (s *AttendanceService) markFromDecision(ctx context.Context, classroom *domain.Classroom, student *domain.Student, date time.Time, d domain.Decision, result *domain.ConfirmationResult) {
	rec := &domain.AttendanceRecord{
		ClassroomID: classroom.ID,
		TeacherID:   classroom.TeacherID,
		StudentID:   student.ID,
		RollNumber:  student.RollNumber,
		StudentName: student.Name,
		Date:        date,
		Source:      domain.SourceRecognition,
	}

	created, err := s.attendanceRepo.Mark(ctx, rec)
	if err != nil {
		s.logger.ErrorContext(ctx, "mark attendance",
			slog.String("student_id", student.ID.String()),
			slog.Any("error", err),
		)
		result.Skipped = append(result.Skipped, domain.SkippedDecision{FaceIndex: d.FaceIndex, Reason: "attendance could not be recorded"})
		return
	}

	marked := domain.MarkedStudent{StudentID: student.ID, RollNumber: student.RollNumber, Name: student.Name}
	if !created {
		metrics.AttendanceDuplicates.Inc()
		result.AlreadyPresent = append(result.AlreadyPresent, marked)
		return
	}

	metrics.AttendanceMarked.WithLabelValues(string(domain.SourceRecognition)).Inc()
	result.Marked = append(result.Marked, marked)
	s.publisher.Publish(classroom.ID, ws.EventAttendanceMarked, rec)
}

func (s *AttendanceService) trainFromDecision(ctx context.Context, student *domain.Student, d domain.Decision, result *domain.ConfirmationResult) {
	if len(d.Embedding) == 0 {
		result.Skipped = append(result.Skipped, domain.SkippedDecision{FaceIndex: d.FaceIndex, Reason: "no embedding supplied for training"})
		return
	}

	res, err := s.trainer.AddSample(ctx, student.ID, d.Embedding)
	if err != nil {
		s.logger.WarnContext(ctx, "training sample not added",
			slog.String("student_id", student.ID.String()),
			slog.Int("face_index", d.FaceIndex),
			slog.Any("error", err),
		)
		result.Skipped = append(result.Skipped, domain.SkippedDecision{FaceIndex: d.FaceIndex, Reason: "training sample not added"})
		return
	}

	result.TrainedCount++
	metrics.TrainingSamples.WithLabelValues("confirmation").Inc()
	metrics.TrainingEvicted.Add(float64(res.Evicted))
	s.publisher.Publish(student.ClassroomID, ws.EventTrainingUpdated, res)
}

func summaryMessage(r *domain.ConfirmationResult) string {
	parts := []string{fmt.Sprintf("%d marked present", len(r.Marked))}
	if n := len(r.AlreadyPresent); n > 0 {
		parts = append(parts, fmt.Sprintf("%d already present", n))
	}
	if r.TrainedCount > 0 {
		parts = append(parts, fmt.Sprintf("%d training samples added", r.TrainedCount))
	}
	if n := len(r.Skipped); n > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", n))
	}
	return strings.Join(parts, ", ")
}

// MarkPresent marks a student present today without a photo. Marking an
// already present student is a no-op and reports created=false.
func (s *AttendanceService) MarkPresent(ctx context.Context, teacherID, classroomID, studentID uuid.UUID) (*domain.AttendanceRecord, bool, error) {
	classroom, err := authorizeClassroom(ctx, s.classroomRepo, teacherID, classroomID)
	if err != nil {
		return nil, false, err
	}

	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, false, err
	}
	if student.ClassroomID != classroom.ID {
		return nil, false, domain.ErrStudentNotFound
	}

	rec := &domain.AttendanceRecord{
		ClassroomID: classroom.ID,
		TeacherID:   classroom.TeacherID,
		StudentID:   student.ID,
		RollNumber:  student.RollNumber,
		StudentName: student.Name,
		Date:        s.Today(),
		Source:      domain.SourceManual,
	}

	created, err := s.attendanceRepo.Mark(ctx, rec)
	if err != nil {
		return nil, false, err
	}

	if created {
		metrics.AttendanceMarked.WithLabelValues(string(domain.SourceManual)).Inc()
		s.publisher.Publish(classroom.ID, ws.EventAttendanceMarked, rec)
	} else {
		metrics.AttendanceDuplicates.Inc()
	}

	return rec, created, nil
}

// Unmark removes a student's presence for date. A zero date means today.
func (s *AttendanceService) Unmark(ctx context.Context, teacherID, classroomID, studentID uuid.UUID, date time.Time) error {
	if _, err := authorizeClassroom(ctx, s.classroomRepo, teacherID, classroomID); err != nil {
		return err
	}

	day := s.dayOrToday(date)
	if err := s.attendanceRepo.Unmark(ctx, classroomID, studentID, day); err != nil {
		return err
	}

	s.publisher.Publish(classroomID, ws.EventAttendanceUnmarked, map[string]interface{}{
		"student_id": studentID,
		"date":       day.Format(time.DateOnly),
	})
	return nil
}

// ListAttendance returns the presence records of a day. A zero date means today.
func (s *AttendanceService) ListAttendance(ctx context.Context, teacherID, classroomID uuid.UUID, date time.Time) ([]domain.AttendanceRecord, error) {
	if _, err := authorizeClassroom(ctx, s.classroomRepo, teacherID, classroomID); err != nil {
		return nil, err
	}
	return s.attendanceRepo.ListByDate(ctx, classroomID, s.dayOrToday(date))
}

func (s *AttendanceService) dayOrToday(date time.Time) time.Time {
	if date.IsZero() {
		return s.Today()
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
