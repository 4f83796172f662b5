package rekognition

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/chamada/internal/provider"
)

func ptr[T any](v T) *T {
	return &v
}

// fakeImageData returns fake image data with minimum valid size
func fakeImageData() []byte {
	data := make([]byte, 150)
	for i := range data {
		data[i] = byte(i % 256)
	}
	return data
}

func face(confidence float32) types.FaceDetail {
	return types.FaceDetail{
		BoundingBox: &types.BoundingBox{
			Left:   ptr(float32(0.1)),
			Top:    ptr(float32(0.2)),
			Width:  ptr(float32(0.3)),
			Height: ptr(float32(0.4)),
		},
		Confidence: ptr(confidence),
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, float32(90), cfg.MinConfidence)
}

func TestFaceCounter_CountFaces(t *testing.T) {
	tests := []struct {
		name      string
		details   []types.FaceDetail
		apiErr    error
		image     []byte
		wantCount int
		wantErr   error
	}{
		{
			name:      "single face",
			details:   []types.FaceDetail{face(99.5)},
			image:     fakeImageData(),
			wantCount: 1,
		},
		{
			name:      "no faces",
			details:   []types.FaceDetail{},
			image:     fakeImageData(),
			wantCount: 0,
		},
		{
			name:      "low confidence detections are ignored",
			details:   []types.FaceDetail{face(99), face(42)},
			image:     fakeImageData(),
			wantCount: 1,
		},
		{
			name:      "multiple faces",
			details:   []types.FaceDetail{face(95), face(96), face(97)},
			image:     fakeImageData(),
			wantCount: 3,
		},
		{
			name:    "empty image",
			image:   nil,
			wantErr: provider.ErrBadImage,
		},
		{
			name:    "image too small",
			image:   []byte("tiny"),
			wantErr: ErrInvalidImage,
		},
		{
			name:    "access denied",
			image:   fakeImageData(),
			apiErr:  &smithy.GenericAPIError{Code: errCodeAccessDenied, Message: "denied"},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:    "invalid image format",
			image:   fakeImageData(),
			apiErr:  &smithy.GenericAPIError{Code: errCodeInvalidImageFormat, Message: "bad format"},
			wantErr: provider.ErrBadImage,
		},
		{
			name:    "throttled",
			image:   fakeImageData(),
			apiErr:  &smithy.GenericAPIError{Code: errCodeThrottling, Message: "slow down"},
			wantErr: provider.ErrUnavailable,
		},
		{
			name:    "unknown error",
			image:   fakeImageData(),
			apiErr:  assert.AnError,
			wantErr: assert.AnError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockRekognitionAPI{
				detectFacesFunc: func(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
					assert.Equal(t, tt.image, params.Image.Bytes)
					if tt.apiErr != nil {
						return nil, tt.apiErr
					}
					return &rekognition.DetectFacesOutput{FaceDetails: tt.details}, nil
				},
			}

			counter := NewFaceCounterWithClient(NewClientWithAPI(mock, DefaultConfig()))
			got, err := counter.CountFaces(context.Background(), tt.image)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, got)
		})
	}
}
