package rekognition

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/saturnino-fabrica-de-software/chamada/internal/provider"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100
)

// FaceCounter counts faces in enrollment photos using the DetectFaces API
type FaceCounter struct {
	client *Client
}

// NewFaceCounter creates a counter backed by AWS Rekognition
func NewFaceCounter(ctx context.Context, cfg Config) (*FaceCounter, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}
	return &FaceCounter{client: client}, nil
}

// NewFaceCounterWithClient creates a counter around an existing client
func NewFaceCounterWithClient(client *Client) *FaceCounter {
	return &FaceCounter{client: client}
}

// validateImage checks if image data is valid for Rekognition processing
func validateImage(image []byte) error {
	if len(image) == 0 {
		return ErrInvalidImage
	}
	if len(image) < minImageSize {
		return fmt.Errorf("%w: image too small (%d bytes, minimum %d)", ErrInvalidImage, len(image), minImageSize)
	}
	if len(image) > maxImageSize {
		return fmt.Errorf("%w: image too large (%d bytes, maximum %d)", ErrInvalidImage, len(image), maxImageSize)
	}
	return nil
}

// CountFaces returns how many faces at or above the configured confidence
// appear in the image
func (f *FaceCounter) CountFaces(ctx context.Context, image []byte) (int, error) {
	if err := validateImage(image); err != nil {
		return 0, err
	}

	output, err := f.client.rekognition.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: image},
		Attributes: []types.Attribute{types.AttributeDefault},
	})
	if err != nil {
		return 0, fmt.Errorf("count faces: %w", mapAPIError(err))
	}

	count := 0
	for _, detail := range output.FaceDetails {
		if detail.Confidence != nil && *detail.Confidence >= f.client.config.MinConfidence {
			count++
		}
	}

	return count, nil
}

// Ensure FaceCounter implements provider.FaceCounter
var _ provider.FaceCounter = (*FaceCounter)(nil)
