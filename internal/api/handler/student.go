package handler

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/chamada/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

// StudentHandler handles enrollment and training sample requests
type StudentHandler struct {
	service EnrollmentService
	logger  *slog.Logger
}

func NewStudentHandler(service EnrollmentService, logger *slog.Logger) *StudentHandler {
	return &StudentHandler{service: service, logger: logger}
}

type SampleRequest struct {
	Embedding domain.Embedding `json:"embedding"`
}

// StudentResponse exposes the sample count instead of the raw embeddings
type StudentResponse struct {
	*domain.Student
	SampleCount int `json:"sample_count"`
}

// Enroll POST /v1/classrooms/:classroom_id/students (multipart: roll_number, name, image)
func (h *StudentHandler) Enroll(c *fiber.Ctx) error {
	teacherID, classroomID, err := classroomFromPath(c)
	if err != nil {
		return err
	}

	rollNumber := strings.TrimSpace(c.FormValue("roll_number"))
	name := strings.TrimSpace(c.FormValue("name"))
	if rollNumber == "" || name == "" {
		return domain.ErrValidationFailed.WithMessage("roll_number and name are required")
	}

	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return err
	}

	student, err := h.service.Enroll(c.UserContext(), teacherID, classroomID, rollNumber, name, imageBytes)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(StudentResponse{Student: student, SampleCount: student.SampleCount()})
}

// AddPhoto POST /v1/students/:student_id/photos?strict=true
func (h *StudentHandler) AddPhoto(c *fiber.Ctx) error {
	teacherID, studentID, err := studentFromPath(c)
	if err != nil {
		return err
	}

	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return err
	}

	res, err := h.service.AddPhoto(c.UserContext(), teacherID, studentID, imageBytes, c.QueryBool("strict"))
	if err != nil {
		return err
	}

	return c.JSON(res)
}

// AddSample POST /v1/students/:student_id/samples?strict=true
func (h *StudentHandler) AddSample(c *fiber.Ctx) error {
	teacherID, studentID, err := studentFromPath(c)
	if err != nil {
		return err
	}

	var req SampleRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	res, err := h.service.AddTrainingSample(c.UserContext(), teacherID, studentID, req.Embedding, c.QueryBool("strict"))
	if err != nil {
		return err
	}

	return c.JSON(res)
}

// Verify POST /v1/students/:student_id/verify (multipart: image)
func (h *StudentHandler) Verify(c *fiber.Ctx) error {
	teacherID, studentID, err := studentFromPath(c)
	if err != nil {
		return err
	}

	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return err
	}

	v, err := h.service.Verify(c.UserContext(), teacherID, studentID, imageBytes)
	if err != nil {
		return err
	}

	return c.JSON(v)
}

// ResetSamples DELETE /v1/students/:student_id/samples
func (h *StudentHandler) ResetSamples(c *fiber.Ctx) error {
	teacherID, studentID, err := studentFromPath(c)
	if err != nil {
		return err
	}

	res, err := h.service.ResetTrainingSamples(c.UserContext(), teacherID, studentID)
	if err != nil {
		return err
	}

	return c.JSON(res)
}

func studentFromPath(c *fiber.Ctx) (teacherID, studentID uuid.UUID, err error) {
	teacherID, err = middleware.GetTeacherID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	studentID, err = uuidParam(c, "student_id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return teacherID, studentID, nil
}

func parseUUID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, domain.ErrValidationFailed.WithMessage(field + " must be a valid UUID")
	}
	return id, nil
}
