// Package face wires the configured embedding provider and enrollment precheck.
package face

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/chamada/internal/config"
	"github.com/saturnino-fabrica-de-software/chamada/internal/provider"
	"github.com/saturnino-fabrica-de-software/chamada/internal/provider/deepface"
	"github.com/saturnino-fabrica-de-software/chamada/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/chamada/internal/provider/rekognition"
)

// ProviderType defines supported embedding provider types
type ProviderType string

const (
	// ProviderTypeDeepFace is the DeepFace HTTP service
	ProviderTypeDeepFace ProviderType = "deepface"
	// ProviderTypeMock produces deterministic embeddings for local development
	ProviderTypeMock ProviderType = "mock"
)

// PrecheckType defines supported enrollment prechecks
type PrecheckType string

const (
	// PrecheckNone skips the face count check
	PrecheckNone PrecheckType = "none"
	// PrecheckRekognition counts faces with AWS Rekognition before extraction
	PrecheckRekognition PrecheckType = "rekognition"
)

// NewEmbeddingProvider creates the provider selected by PROVIDER_TYPE
//
// Environment variables:
//   - PROVIDER_TYPE: "deepface" or "mock" (default: "deepface")
//   - DEEPFACE_URL: DeepFace service URL (default: "http://localhost:5001")
//   - DEEPFACE_TIMEOUT, DEEPFACE_RETRIES: per request timeout and retry count
func NewEmbeddingProvider(cfg *config.Config) (provider.EmbeddingProvider, error) {
	switch ProviderType(cfg.ProviderType) {
	case ProviderTypeDeepFace, "":
		return createDeepFaceProvider(cfg), nil

	case ProviderTypeMock:
		return mock.New(), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s (supported: %s, %s)",
			cfg.ProviderType, ProviderTypeDeepFace, ProviderTypeMock)
	}
}

// NewFaceCounter creates the enrollment precheck selected by
// ENROLLMENT_PRECHECK. It returns nil when the precheck is disabled.
func NewFaceCounter(ctx context.Context, cfg *config.Config) (provider.FaceCounter, error) {
	switch PrecheckType(cfg.EnrollmentPrecheck) {
	case PrecheckNone, "":
		return nil, nil

	case PrecheckRekognition:
		rekogConfig := rekognition.DefaultConfig()
		if cfg.AWSRegion != "" {
			rekogConfig.Region = cfg.AWSRegion
		}
		counter, err := rekognition.NewFaceCounter(ctx, rekogConfig)
		if err != nil {
			return nil, fmt.Errorf("create rekognition face counter: %w", err)
		}
		return counter, nil

	default:
		return nil, fmt.Errorf("unknown enrollment precheck: %s (supported: %s, %s)",
			cfg.EnrollmentPrecheck, PrecheckNone, PrecheckRekognition)
	}
}

// createDeepFaceProvider creates a DeepFace provider instance
func createDeepFaceProvider(cfg *config.Config) *deepface.Provider {
	deepfaceConfig := deepface.DefaultConfig()

	if cfg.DeepFaceURL != "" {
		deepfaceConfig.BaseURL = cfg.DeepFaceURL
	}
	if cfg.DeepFaceTimeout > 0 {
		deepfaceConfig.Timeout = cfg.DeepFaceTimeout
	}
	if cfg.DeepFaceRetries >= 0 {
		deepfaceConfig.RetryCount = cfg.DeepFaceRetries
	}

	return deepface.NewProvider(deepfaceConfig)
}
