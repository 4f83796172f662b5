package provider

import (
	"context"
	"errors"
)

// Erros comuns a todos os provedores de embedding
var (
	ErrUnavailable = errors.New("embedding service unavailable")
	ErrTimeout     = errors.New("embedding service timeout")
	ErrNoFace      = errors.New("no face detected")
	ErrBadImage    = errors.New("image rejected by embedding service")
)

// EmbeddingProvider define a interface para serviços externos que extraem embeddings faciais
type EmbeddingProvider interface {
	// ExtractEmbedding retorna o embedding da face principal da imagem.
	// Imagens sem face retornam ErrNoFace.
	ExtractEmbedding(ctx context.Context, image []byte) (*DetectedFace, error)

	// DetectFaces retorna todas as faces da imagem com seus embeddings.
	// Uma imagem sem faces retorna lista vazia e nenhum erro.
	DetectFaces(ctx context.Context, image []byte) ([]DetectedFace, error)

	// Ready reports whether the service answered its health check.
	Ready(ctx context.Context) error
}

// FaceCounter counts faces without producing embeddings. It backs the
// optional enrollment precheck.
type FaceCounter interface {
	CountFaces(ctx context.Context, image []byte) (int, error)
}

// DetectedFace represents a detected face in the image
type DetectedFace struct {
	BoundingBox BoundingBox `json:"bounding_box"`
	Confidence  float64     `json:"confidence"`
	Embedding   []float64   `json:"embedding"`
}

// BoundingBox represents the face area in the image
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
