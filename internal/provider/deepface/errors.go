package deepface

import (
	"errors"
	"fmt"

	"github.com/saturnino-fabrica-de-software/chamada/internal/provider"
)

var (
	ErrDeepFaceUnavailable = fmt.Errorf("deepface service unavailable: %w", provider.ErrUnavailable)
	ErrDeepFaceTimeout     = fmt.Errorf("deepface request timeout: %w", provider.ErrTimeout)
	ErrNoFaceInResponse    = fmt.Errorf("no face data in deepface response: %w", provider.ErrNoFace)
	ErrInvalidResponse     = errors.New("invalid response from deepface")
)

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("deepface returned status %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500
}
