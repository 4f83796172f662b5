package domain

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceSource records how a presence mark was produced.
type AttendanceSource string

const (
	SourceRecognition AttendanceSource = "recognition"
	SourceManual      AttendanceSource = "manual"
)

// AttendanceRecord is one presence mark. At most one exists per
// (roll number, classroom, teacher, date).
type AttendanceRecord struct {
	ID          uuid.UUID        `json:"id"`
	ClassroomID uuid.UUID        `json:"classroom_id"`
	TeacherID   uuid.UUID        `json:"teacher_id"`
	StudentID   uuid.UUID        `json:"student_id"`
	RollNumber  string           `json:"roll_number"`
	StudentName string           `json:"student_name"`
	Date        time.Time        `json:"date"`
	Source      AttendanceSource `json:"source"`
	MarkedAt    time.Time        `json:"marked_at"`
}

// AttendanceDate truncates t to the calendar day it falls on in loc.
// The result is expressed as midnight UTC of that day so it maps 1:1 to a
// DATE column regardless of the server zone.
func AttendanceDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
