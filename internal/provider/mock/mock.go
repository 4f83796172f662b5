package mock

import (
	"context"
	"crypto/sha256"
	"math"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/provider"
)

// minImageSize rejeita uploads vazios ou truncados
const minImageSize = 1000

// Provider implementa provider.EmbeddingProvider para testes e desenvolvimento.
// Cada imagem produz uma única face com embedding determinístico.
type Provider struct{}

// New cria uma nova instância do MockProvider
func New() *Provider {
	return &Provider{}
}

// ExtractEmbedding gera embedding determinístico baseado no hash da imagem
func (p *Provider) ExtractEmbedding(ctx context.Context, image []byte) (*provider.DetectedFace, error) {
	if len(image) < minImageSize {
		return nil, provider.ErrBadImage
	}

	face := detectedFace(image)
	return &face, nil
}

// DetectFaces simula detecção de uma face por imagem
func (p *Provider) DetectFaces(ctx context.Context, image []byte) ([]provider.DetectedFace, error) {
	if len(image) < minImageSize {
		return nil, provider.ErrBadImage
	}

	return []provider.DetectedFace{detectedFace(image)}, nil
}

// Ready sempre retorna nil
func (p *Provider) Ready(ctx context.Context) error {
	return nil
}

// CountFaces implementa provider.FaceCounter com uma face por imagem válida
func (p *Provider) CountFaces(ctx context.Context, image []byte) (int, error) {
	if len(image) < minImageSize {
		return 0, provider.ErrBadImage
	}
	return 1, nil
}

func detectedFace(image []byte) provider.DetectedFace {
	return provider.DetectedFace{
		BoundingBox: provider.BoundingBox{
			X:      10,
			Y:      10,
			Width:  80,
			Height: 80,
		},
		Confidence: 0.99,
		Embedding:  generateEmbedding(image),
	}
}

// generateEmbedding gera embedding determinístico baseado no hash da imagem
func generateEmbedding(image []byte) []float64 {
	hash := sha256.Sum256(image)
	embedding := make([]float64, domain.EmbeddingDimension)
	hashLen := len(hash)

	for i := 0; i < domain.EmbeddingDimension; i++ {
		idx := i % hashLen
		//nolint:gosec // idx is always < hashLen due to modulo operation
		embedding[i] = (float64(hash[idx])/255.0)*2 - 1
	}

	norm := 0.0
	for _, v := range embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	for i := range embedding {
		embedding[i] /= norm
	}

	return embedding
}

var (
	_ provider.EmbeddingProvider = (*Provider)(nil)
	_ provider.FaceCounter       = (*Provider)(nil)
)
