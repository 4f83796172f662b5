package session

import (
	"fmt"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

// ActionType names a review action sent by the client.
type ActionType string

const (
	ActionConfirm    ActionType = "confirm"
	ActionToggle     ActionType = "toggle"
	ActionCorrect    ActionType = "correct"
	ActionSkip       ActionType = "skip"
	ActionUndo       ActionType = "undo"
	ActionConfirmAll ActionType = "confirm_all"
	ActionTrain      ActionType = "train"
)

// Action is a single review step. FaceIndex is ignored by confirm_all.
type Action struct {
	Type      ActionType `json:"type"`
	FaceIndex int        `json:"face_index"`
	Assignee  *Assignee  `json:"assignee,omitempty"`
	Train     bool       `json:"train,omitempty"`
}

// Apply runs one action against the session.
func (s *Session) Apply(a Action) error {
	switch a.Type {
	case ActionConfirm:
		return s.Confirm(a.FaceIndex)
	case ActionToggle:
		return s.Toggle(a.FaceIndex)
	case ActionCorrect:
		return s.Correct(a.FaceIndex, a.Assignee)
	case ActionSkip:
		return s.Skip(a.FaceIndex)
	case ActionUndo:
		return s.Undo(a.FaceIndex)
	case ActionConfirmAll:
		s.ConfirmAll()
		return nil
	case ActionTrain:
		return s.SetTraining(a.FaceIndex, a.Train)
	default:
		return domain.ErrValidationFailed.WithMessage(fmt.Sprintf("unknown review action %q", a.Type))
	}
}

// ApplyAll runs actions in order and stops at the first failure.
func (s *Session) ApplyAll(actions []Action) error {
	for i, a := range actions {
		if err := s.Apply(a); err != nil {
			return fmt.Errorf("action %d (%s): %w", i, a.Type, err)
		}
	}
	return nil
}
