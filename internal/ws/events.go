package ws

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventDetectionCompleted EventType = "detection.completed"
	EventAttendanceMarked   EventType = "attendance.marked"
	EventAttendanceUnmarked EventType = "attendance.unmarked"
	EventTrainingUpdated    EventType = "training.updated"
)

type Event struct {
	ClassroomID uuid.UUID   `json:"classroom_id"`
	Type        EventType   `json:"type"`
	Data        interface{} `json:"data"`
	Timestamp   time.Time   `json:"timestamp"`
}
