package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/session"
)

// DetectionHandler handles classroom photo uploads and the review loop
type DetectionHandler struct {
	service AttendanceService
	logger  *slog.Logger
}

func NewDetectionHandler(service AttendanceService, logger *slog.Logger) *DetectionHandler {
	return &DetectionHandler{service: service, logger: logger}
}

// SessionResponse is a session together with its per-state counts
type SessionResponse struct {
	*session.Session
	Summary session.Summary `json:"summary"`
}

func newSessionResponse(s *session.Session) SessionResponse {
	return SessionResponse{Session: s, Summary: s.Summary()}
}

// Detect POST /v1/classrooms/:classroom_id/detections
func (h *DetectionHandler) Detect(c *fiber.Ctx) error {
	teacherID, classroomID, err := classroomFromPath(c)
	if err != nil {
		return err
	}

	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return err
	}

	sess, err := h.service.DetectAndMatch(c.UserContext(), teacherID, classroomID, imageBytes)
	if err != nil {
		return err
	}

	return c.JSON(newSessionResponse(sess))
}

// Diagnose POST /v1/classrooms/:classroom_id/diagnose
func (h *DetectionHandler) Diagnose(c *fiber.Ctx) error {
	teacherID, classroomID, err := classroomFromPath(c)
	if err != nil {
		return err
	}

	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return err
	}

	report, err := h.service.Diagnose(c.UserContext(), teacherID, classroomID, imageBytes)
	if err != nil {
		return err
	}

	return c.JSON(report)
}

type ReviewRequest struct {
	Session *session.Session `json:"session"`
	Actions []session.Action `json:"actions"`
}

// Review POST /v1/sessions/review applies review actions to a client held
// session. Nothing is stored; the updated session is returned.
func (h *DetectionHandler) Review(c *fiber.Ctx) error {
	var req ReviewRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if req.Session == nil {
		return domain.ErrValidationFailed.WithMessage("session is required")
	}
	if err := req.Session.Validate(); err != nil {
		return err
	}

	if err := req.Session.ApplyAll(req.Actions); err != nil {
		return err
	}

	return c.JSON(newSessionResponse(req.Session))
}
