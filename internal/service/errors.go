package service

import (
	"context"
	"errors"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/provider"
)

// mapProviderError turns embedding service failures into API errors. The
// original error stays reachable through errors.Unwrap for logging.
func mapProviderError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, provider.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return domain.ErrEmbeddingServiceTimeout.WithError(err)
	case errors.Is(err, provider.ErrNoFace):
		return domain.ErrNoFaceDetected.WithError(err)
	case errors.Is(err, provider.ErrBadImage):
		return domain.ErrInvalidImage.WithError(err)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return domain.ErrEmbeddingServiceUnavailable.WithError(err)
	}
}
