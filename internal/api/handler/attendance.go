package handler

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/session"
)

// AttendanceHandler handles attendance commits and the manual ledger
type AttendanceHandler struct {
	service AttendanceService
	logger  *slog.Logger
}

func NewAttendanceHandler(service AttendanceService, logger *slog.Logger) *AttendanceHandler {
	return &AttendanceHandler{service: service, logger: logger}
}

// ConfirmRequest carries either a reviewed session or raw decisions
type ConfirmRequest struct {
	Session   *session.Session  `json:"session,omitempty"`
	Decisions []domain.Decision `json:"decisions,omitempty"`
}

type MarkRequest struct {
	StudentID string `json:"student_id"`
}

type MarkResponse struct {
	Record  *domain.AttendanceRecord `json:"record"`
	Created bool                     `json:"created"`
}

// Confirm POST /v1/classrooms/:classroom_id/attendance/confirm
func (h *AttendanceHandler) Confirm(c *fiber.Ctx) error {
	teacherID, classroomID, err := classroomFromPath(c)
	if err != nil {
		return err
	}

	var req ConfirmRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	var result *domain.ConfirmationResult
	switch {
	case req.Session != nil:
		result, err = h.service.ConfirmSession(c.UserContext(), teacherID, classroomID, req.Session)
	case req.Decisions != nil:
		result, err = h.service.ApplyDecisions(c.UserContext(), teacherID, classroomID, req.Decisions)
	default:
		return domain.ErrValidationFailed.WithMessage("session or decisions is required")
	}
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// Mark POST /v1/classrooms/:classroom_id/attendance
func (h *AttendanceHandler) Mark(c *fiber.Ctx) error {
	teacherID, classroomID, err := classroomFromPath(c)
	if err != nil {
		return err
	}

	var req MarkRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	studentID, err := parseUUID(req.StudentID, "student_id")
	if err != nil {
		return err
	}

	rec, created, err := h.service.MarkPresent(c.UserContext(), teacherID, classroomID, studentID)
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(MarkResponse{Record: rec, Created: created})
}

// Unmark DELETE /v1/classrooms/:classroom_id/attendance/:student_id?date=YYYY-MM-DD
func (h *AttendanceHandler) Unmark(c *fiber.Ctx) error {
	teacherID, classroomID, err := classroomFromPath(c)
	if err != nil {
		return err
	}

	studentID, err := uuidParam(c, "student_id")
	if err != nil {
		return err
	}

	date, err := dateQuery(c)
	if err != nil {
		return err
	}

	if err := h.service.Unmark(c.UserContext(), teacherID, classroomID, studentID, date); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// List GET /v1/classrooms/:classroom_id/attendance?date=YYYY-MM-DD
func (h *AttendanceHandler) List(c *fiber.Ctx) error {
	teacherID, classroomID, err := classroomFromPath(c)
	if err != nil {
		return err
	}

	date, err := dateQuery(c)
	if err != nil {
		return err
	}

	records, err := h.service.ListAttendance(c.UserContext(), teacherID, classroomID, date)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"records": records, "count": len(records)})
}

// dateQuery parses the optional date query parameter. A missing date is the
// zero time, which the service reads as today.
func dateQuery(c *fiber.Ctx) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return time.Time{}, nil
	}
	date, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, domain.ErrValidationFailed.WithMessage("date must be formatted as YYYY-MM-DD")
	}
	return date, nil
}
