package rekognition

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"

	"github.com/saturnino-fabrica-de-software/chamada/internal/provider"
)

const (
	errCodeAccessDenied       = "AccessDeniedException"
	errCodeInvalidImageFormat = "InvalidImageFormatException"
	errCodeImageTooLarge      = "ImageTooLargeException"
	errCodeInvalidParameter   = "InvalidParameterException"
	errCodeThrottling         = "ThrottlingException"
	errCodeThroughput         = "ProvisionedThroughputExceededException"
	errCodeInternal           = "InternalServerError"
)

var (
	// ErrInvalidCredentials indicates that AWS credentials are invalid or missing
	ErrInvalidCredentials = errors.New("invalid or missing AWS credentials")

	// ErrInvalidImage indicates the image cannot be sent to Rekognition
	ErrInvalidImage = fmt.Errorf("invalid image for rekognition: %w", provider.ErrBadImage)
)

// mapAPIError translates Rekognition API errors into provider errors
func mapAPIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case errCodeAccessDenied:
			return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		case errCodeInvalidImageFormat, errCodeImageTooLarge, errCodeInvalidParameter:
			return fmt.Errorf("%w: %v", ErrInvalidImage, err)
		case errCodeThrottling, errCodeThroughput, errCodeInternal:
			return fmt.Errorf("%w: %v", provider.ErrUnavailable, err)
		}
	}

	return fmt.Errorf("rekognition: %w", err)
}
