package deepface

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/saturnino-fabrica-de-software/chamada/internal/provider"
)

// Provider implements provider.EmbeddingProvider on top of the DeepFace service
type Provider struct {
	client        *Client
	minConfidence float64
	ready         atomic.Bool
}

// NewProvider creates a new DeepFace provider
func NewProvider(config Config) *Provider {
	return &Provider{
		client:        NewClient(config),
		minConfidence: config.MinFaceConfidence,
	}
}

// ExtractEmbedding returns the embedding of the main face in the image
func (p *Provider) ExtractEmbedding(ctx context.Context, image []byte) (*provider.DetectedFace, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("extract embedding: %w", provider.ErrBadImage)
	}

	resp, err := p.client.ExtractEmbedding(ctx, base64.StdEncoding.EncodeToString(image))
	if err != nil {
		p.observe(err)
		return nil, fmt.Errorf("extract embedding: %w", err)
	}

	if len(resp.Embedding) == 0 {
		return nil, ErrNoFaceInResponse
	}

	return &provider.DetectedFace{
		BoundingBox: toBoundingBox(resp.FacialArea),
		Confidence:  1,
		Embedding:   resp.Embedding,
	}, nil
}

// DetectFaces returns every face the service found, with embeddings
func (p *Provider) DetectFaces(ctx context.Context, image []byte) ([]provider.DetectedFace, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("detect faces: %w", provider.ErrBadImage)
	}

	resp, err := p.client.DetectFaces(ctx, base64.StdEncoding.EncodeToString(image))
	if err != nil {
		p.observe(err)
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	faces := make([]provider.DetectedFace, 0, len(resp.Faces))
	for _, f := range resp.Faces {
		if len(f.Embedding) == 0 || f.Confidence < p.minConfidence {
			continue
		}
		faces = append(faces, provider.DetectedFace{
			BoundingBox: toBoundingBox(f.FacialArea),
			Confidence:  f.Confidence,
			Embedding:   f.Embedding,
		})
	}

	return faces, nil
}

// Ready pings /health. A successful answer is remembered until a request
// fails with ErrUnavailable.
func (p *Provider) Ready(ctx context.Context) error {
	if p.ready.Load() {
		return nil
	}
	health, err := p.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("deepface health: %w", err)
	}
	if health.Status != "ok" {
		return fmt.Errorf("%w: status %q", ErrDeepFaceUnavailable, health.Status)
	}
	p.ready.Store(true)
	return nil
}

func (p *Provider) observe(err error) {
	if errors.Is(err, provider.ErrUnavailable) {
		p.ready.Store(false)
	}
}

func toBoundingBox(a FacialArea) provider.BoundingBox {
	return provider.BoundingBox{
		X:      float64(a.X),
		Y:      float64(a.Y),
		Width:  float64(a.W),
		Height: float64(a.H),
	}
}

// Ensure Provider implements provider.EmbeddingProvider
var _ provider.EmbeddingProvider = (*Provider)(nil)
