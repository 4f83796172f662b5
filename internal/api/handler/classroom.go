package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/chamada/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/chamada/internal/ws"
)

// ClassroomHandler handles classroom requests
type ClassroomHandler struct {
	service ClassroomService
	logger  *slog.Logger
}

func NewClassroomHandler(service ClassroomService, logger *slog.Logger) *ClassroomHandler {
	return &ClassroomHandler{service: service, logger: logger}
}

type CreateClassroomRequest struct {
	Name string `json:"name"`
}

// Create POST /v1/classrooms
func (h *ClassroomHandler) Create(c *fiber.Ctx) error {
	teacherID, err := middleware.GetTeacherID(c)
	if err != nil {
		return err
	}

	var req CreateClassroomRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	classroom, err := h.service.Create(c.UserContext(), teacherID, req.Name)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(classroom)
}

// List GET /v1/classrooms
func (h *ClassroomHandler) List(c *fiber.Ctx) error {
	teacherID, err := middleware.GetTeacherID(c)
	if err != nil {
		return err
	}

	classrooms, err := h.service.List(c.UserContext(), teacherID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"classrooms": classrooms})
}

// AuthorizeFeed checks classroom ownership before the websocket upgrade and
// hands the classroom id to ws.Handler.
func (h *ClassroomHandler) AuthorizeFeed(c *fiber.Ctx) error {
	teacherID, err := middleware.GetTeacherID(c)
	if err != nil {
		return err
	}

	classroomID, err := uuidParam(c, "classroom_id")
	if err != nil {
		return err
	}

	if _, err := h.service.Authorize(c.UserContext(), teacherID, classroomID); err != nil {
		return err
	}

	c.Locals(ws.LocalClassroomID, classroomID)
	return c.Next()
}

// classroomFromPath returns the teacher and classroom ids of a classroom scoped route
func classroomFromPath(c *fiber.Ctx) (teacherID, classroomID uuid.UUID, err error) {
	teacherID, err = middleware.GetTeacherID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	classroomID, err = uuidParam(c, "classroom_id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return teacherID, classroomID, nil
}
