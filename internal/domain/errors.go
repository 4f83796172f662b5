package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code, so errors.Is keeps
// working after WithError produced a copy.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// WithMessage returns a copy with a request specific message.
func (e *AppError) WithMessage(msg string) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    msg,
		StatusCode: e.StatusCode,
		Err:        e.Err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Invalid or missing bearer token",
		StatusCode: 401,
	}

	ErrUnauthorizedClassroom = &AppError{
		Code:       "UNAUTHORIZED_CLASSROOM",
		Message:    "Classroom does not belong to the requesting teacher",
		StatusCode: 403,
	}

	ErrClassroomNotFound = &AppError{
		Code:       "CLASSROOM_NOT_FOUND",
		Message:    "Classroom not found",
		StatusCode: 404,
	}

	ErrStudentNotFound = &AppError{
		Code:       "STUDENT_NOT_FOUND",
		Message:    "Student not found",
		StatusCode: 404,
	}

	ErrStudentExists = &AppError{
		Code:       "STUDENT_ALREADY_EXISTS",
		Message:    "A student with this roll number is already enrolled in the classroom",
		StatusCode: 409,
	}

	ErrAttendanceNotFound = &AppError{
		Code:       "ATTENDANCE_NOT_FOUND",
		Message:    "Student is not marked present for this date",
		StatusCode: 404,
	}

	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Invalid or corrupted image",
		StatusCode: 422,
	}

	ErrNoFaceDetected = &AppError{
		Code:       "NO_FACE_DETECTED",
		Message:    "No face detected in the image",
		StatusCode: 422,
	}

	ErrMultipleFaces = &AppError{
		Code:       "MULTIPLE_FACES",
		Message:    "Multiple faces detected, enrollment photos must contain exactly one face",
		StatusCode: 422,
	}

	ErrNoEnrolledFaces = &AppError{
		Code:       "NO_ENROLLED_FACES",
		Message:    "No enrolled faces in this classroom",
		StatusCode: 422,
	}

	ErrInvalidEmbedding = &AppError{
		Code:       "INVALID_EMBEDDING",
		Message:    "Embedding must be a non-empty vector of finite numbers",
		StatusCode: 422,
	}

	ErrEmbeddingServiceUnavailable = &AppError{
		Code:       "EMBEDDING_SERVICE_UNAVAILABLE",
		Message:    "Face recognition service is unavailable",
		StatusCode: 503,
	}

	ErrEmbeddingServiceTimeout = &AppError{
		Code:       "EMBEDDING_SERVICE_TIMEOUT",
		Message:    "Face recognition service timed out",
		StatusCode: 504,
	}

	ErrTrainingCapacityReached = &AppError{
		Code:       "TRAINING_CAPACITY_REACHED",
		Message:    "Student already has the maximum number of training samples",
		StatusCode: 409,
	}

	ErrConcurrentModification = &AppError{
		Code:       "CONCURRENT_MODIFICATION",
		Message:    "Student was modified concurrently, try again",
		StatusCode: 409,
	}

	ErrInvalidTransition = &AppError{
		Code:       "INVALID_TRANSITION",
		Message:    "Review action is not allowed in the current state",
		StatusCode: 409,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Rate limit exceeded",
		StatusCode: 429,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}
)
