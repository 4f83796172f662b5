// Package session holds the review state of one photo's detected faces.
//
// A Session is plain data. The server hands it to the client after detection,
// the client mutates it with review actions and submits the final decisions.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

// ReviewState is the review status of a single detected face.
type ReviewState string

const (
	StatePending   ReviewState = "pending"
	StateConfirmed ReviewState = "confirmed"
	StateCorrected ReviewState = "corrected"
	StateSkipped   ReviewState = "skipped"
)

// Outcome summarizes what the detector and matcher found in the photo.
type Outcome string

const (
	OutcomeNoFaces        Outcome = "no_faces_detected"
	OutcomeNoneRecognized Outcome = "none_recognized"
	OutcomeRecognized     Outcome = "recognized"
)

// BoundingBox is the face region in image pixels.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Candidate is the matcher's proposal for a face.
type Candidate struct {
	StudentID  uuid.UUID `json:"student_id"`
	RollNumber string    `json:"roll_number"`
	Name       string    `json:"name"`
	Distance   float64   `json:"distance"`
	Confidence int       `json:"confidence"`
}

// Assignee is the student a teacher picked while correcting a face.
type Assignee struct {
	StudentID  uuid.UUID `json:"student_id"`
	RollNumber string    `json:"roll_number"`
	Name       string    `json:"name"`
}

// Face is one detected face and its review status. Candidate is set only
// when the matcher recognized the face; Nearest always carries the closest
// enrolled student so the reviewer can see near misses.
type Face struct {
	Index         int              `json:"index"`
	Box           BoundingBox      `json:"box"`
	Embedding     domain.Embedding `json:"embedding"`
	Candidate     *Candidate       `json:"candidate,omitempty"`
	Nearest       *Candidate       `json:"nearest,omitempty"`
	Assignee      *Assignee        `json:"assignee,omitempty"`
	State         ReviewState      `json:"state"`
	AddToTraining bool             `json:"add_to_training"`
	DuplicateOf   *int             `json:"duplicate_of,omitempty"`
	Ambiguous     bool             `json:"ambiguous,omitempty"`
}

// Matchable reports whether the face carries a candidate that can be confirmed as is.
func (f *Face) Matchable() bool {
	return f.Candidate != nil
}

// Session is the review state for one uploaded photo.
type Session struct {
	ID              uuid.UUID `json:"id"`
	ClassroomID     uuid.UUID `json:"classroom_id"`
	Outcome         Outcome   `json:"outcome"`
	FaceCount       int       `json:"face_count"`
	RecognizedCount int       `json:"recognized_count"`
	Faces           []Face    `json:"faces"`
	CreatedAt       time.Time `json:"created_at"`
}

// New builds a session. Faces are re-indexed in the given order and start pending.
func New(classroomID uuid.UUID, faces []Face, now time.Time) *Session {
	s := &Session{
		ID:          uuid.New(),
		ClassroomID: classroomID,
		Faces:       faces,
		FaceCount:   len(faces),
		CreatedAt:   now,
	}
	if s.Faces == nil {
		s.Faces = []Face{}
	}

	for i := range s.Faces {
		s.Faces[i].Index = i
		s.Faces[i].State = StatePending
		s.Faces[i].Assignee = nil
		if s.Faces[i].Matchable() {
			s.RecognizedCount++
		}
	}

	switch {
	case s.FaceCount == 0:
		s.Outcome = OutcomeNoFaces
	case s.RecognizedCount == 0:
		s.Outcome = OutcomeNoneRecognized
	default:
		s.Outcome = OutcomeRecognized
	}

	return s
}

// Validate checks a session received from a client before it is reviewed or
// committed. Every face must sit at its own index in a known state, and the
// candidate, assignee and training flag must agree with that state.
func (s *Session) Validate() error {
	for i := range s.Faces {
		f := &s.Faces[i]
		if f.Index != i {
			return invalidFace(i, fmt.Sprintf("index %d does not match its position", f.Index))
		}

		switch f.State {
		case StatePending:
			if f.Assignee != nil {
				return invalidFace(i, "pending face has an assignee")
			}
		case StateConfirmed:
			if !f.Matchable() {
				return invalidFace(i, "confirmed face has no candidate")
			}
			if f.Assignee != nil {
				return invalidFace(i, "confirmed face has an assignee")
			}
		case StateCorrected:
		case StateSkipped:
			if f.Assignee != nil || f.AddToTraining {
				return invalidFace(i, "skipped face carries an assignment")
			}
		default:
			return invalidFace(i, fmt.Sprintf("unknown state %q", f.State))
		}

		if f.Assignee != nil && f.Assignee.StudentID == uuid.Nil {
			return invalidFace(i, "assignee has no student id")
		}
		if f.Candidate != nil && f.Candidate.StudentID == uuid.Nil {
			return invalidFace(i, "candidate has no student id")
		}
	}
	return nil
}

func invalidFace(index int, reason string) error {
	return domain.ErrValidationFailed.WithMessage(fmt.Sprintf("face %d: %s", index, reason))
}

// Summary counts faces per review state.
type Summary struct {
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Corrected int `json:"corrected"`
	Skipped   int `json:"skipped"`
}

// Summary returns the per-state counts.
func (s *Session) Summary() Summary {
	var sum Summary
	for i := range s.Faces {
		switch s.Faces[i].State {
		case StateConfirmed:
			sum.Confirmed++
		case StateCorrected:
			sum.Corrected++
		case StateSkipped:
			sum.Skipped++
		default:
			sum.Pending++
		}
	}
	return sum
}
