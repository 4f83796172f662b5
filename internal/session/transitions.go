package session

import (
	"fmt"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

func (s *Session) face(index int) (*Face, error) {
	if index < 0 || index >= len(s.Faces) {
		return nil, domain.ErrValidationFailed.WithMessage(fmt.Sprintf("face index %d out of range", index))
	}
	return &s.Faces[index], nil
}

// Confirm accepts the proposed candidate of a pending face.
func (s *Session) Confirm(index int) error {
	f, err := s.face(index)
	if err != nil {
		return err
	}
	if f.State != StatePending || !f.Matchable() {
		return domain.ErrInvalidTransition.WithError(fmt.Errorf("confirm face %d from %s", index, f.State))
	}
	f.State = StateConfirmed
	return nil
}

// Toggle flips a face between confirmed and pending.
func (s *Session) Toggle(index int) error {
	f, err := s.face(index)
	if err != nil {
		return err
	}
	switch f.State {
	case StateConfirmed:
		f.State = StatePending
		return nil
	case StatePending:
		return s.Confirm(index)
	default:
		return domain.ErrInvalidTransition.WithError(fmt.Errorf("toggle face %d from %s", index, f.State))
	}
}

// Correct assigns a face to another student. A nil assignee records that the
// face belongs to nobody in the roster. Corrected faces are queued for training.
func (s *Session) Correct(index int, assignee *Assignee) error {
	f, err := s.face(index)
	if err != nil {
		return err
	}
	f.State = StateCorrected
	f.Assignee = assignee
	f.AddToTraining = assignee != nil
	return nil
}

// Skip excludes a face from the commit.
func (s *Session) Skip(index int) error {
	f, err := s.face(index)
	if err != nil {
		return err
	}
	f.State = StateSkipped
	f.Assignee = nil
	f.AddToTraining = false
	return nil
}

// Undo returns a reviewed face to pending and drops any correction.
func (s *Session) Undo(index int) error {
	f, err := s.face(index)
	if err != nil {
		return err
	}
	f.State = StatePending
	f.Assignee = nil
	f.AddToTraining = false
	return nil
}

// SetTraining marks whether a face's embedding should be added to the
// target student's samples on commit.
func (s *Session) SetTraining(index int, add bool) error {
	f, err := s.face(index)
	if err != nil {
		return err
	}
	if add && f.State == StateSkipped {
		return domain.ErrInvalidTransition.WithError(fmt.Errorf("train skipped face %d", index))
	}
	f.AddToTraining = add
	return nil
}

// ConfirmAll confirms every pending face that has a recognized candidate and
// returns how many changed.
func (s *Session) ConfirmAll() int {
	n := 0
	for i := range s.Faces {
		f := &s.Faces[i]
		if f.State == StatePending && f.Matchable() {
			f.State = StateConfirmed
			n++
		}
	}
	return n
}

// Decisions returns the commit payload. Pending faces are left out; skipped
// faces, corrections to nobody and confirmations without a candidate are
// reported as skips.
func (s *Session) Decisions() []domain.Decision {
	decisions := make([]domain.Decision, 0, len(s.Faces))

	for i := range s.Faces {
		f := &s.Faces[i]
		d := domain.Decision{FaceIndex: f.Index, Embedding: f.Embedding}

		switch f.State {
		case StateConfirmed:
			if !f.Matchable() {
				d.Action = domain.ActionSkip
				break
			}
			id := f.Candidate.StudentID
			d.Action = domain.ActionConfirm
			d.StudentID = &id
			d.AddToTraining = f.AddToTraining
		case StateCorrected:
			if f.Assignee == nil {
				d.Action = domain.ActionSkip
				break
			}
			id := f.Assignee.StudentID
			d.Action = domain.ActionCorrect
			d.StudentID = &id
			d.AddToTraining = f.AddToTraining
		case StateSkipped:
			d.Action = domain.ActionSkip
		default:
			continue
		}

		if d.Action == domain.ActionSkip {
			d.Embedding = nil
		}
		decisions = append(decisions, d)
	}

	return decisions
}
