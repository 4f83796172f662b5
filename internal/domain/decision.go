package domain

import "github.com/google/uuid"

// DecisionAction is what the teacher chose for one detected face.
type DecisionAction string

const (
	ActionConfirm DecisionAction = "confirm"
	ActionCorrect DecisionAction = "correct"
	ActionSkip    DecisionAction = "skip"
)

// Valid reports whether the action is one a commit understands.
func (a DecisionAction) Valid() bool {
	switch a {
	case ActionConfirm, ActionCorrect, ActionSkip:
		return true
	}
	return false
}

// Decision is the teacher's final verdict for one face, submitted for commit.
type Decision struct {
	FaceIndex     int            `json:"face_index"`
	Action        DecisionAction `json:"action"`
	StudentID     *uuid.UUID     `json:"student_id,omitempty"`
	AddToTraining bool           `json:"add_to_training"`
	Embedding     Embedding      `json:"embedding,omitempty"`
}

// Marks reports whether the decision should produce a presence mark.
func (d Decision) Marks() bool {
	return (d.Action == ActionConfirm || d.Action == ActionCorrect) && d.StudentID != nil && *d.StudentID != uuid.Nil
}

// MarkedStudent identifies a student affected by a commit.
type MarkedStudent struct {
	StudentID  uuid.UUID `json:"student_id"`
	RollNumber string    `json:"roll_number"`
	Name       string    `json:"name"`
}

// SkippedDecision explains why a decision produced no effect.
type SkippedDecision struct {
	FaceIndex int    `json:"face_index"`
	Reason    string `json:"reason"`
}

// ConfirmationResult summarizes a committed batch of decisions.
type ConfirmationResult struct {
	Marked         []MarkedStudent   `json:"marked"`
	AlreadyPresent []MarkedStudent   `json:"already_present"`
	Skipped        []SkippedDecision `json:"skipped"`
	MarkedCount    int               `json:"marked_count"`
	TrainedCount   int               `json:"trained_count"`
	Message        string            `json:"message"`
}
