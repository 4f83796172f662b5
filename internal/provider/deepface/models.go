package deepface

// EmbeddingRequest is the body of POST /extract-embedding and POST /detect-faces.
type EmbeddingRequest struct {
	ImageBase64 string `json:"image_base64"`
}

// ExtractResponse from POST /extract-embedding
type ExtractResponse struct {
	Success       bool       `json:"success"`
	Embedding     []float64  `json:"embedding"`
	EmbeddingSize int        `json:"embedding_size"`
	FacialArea    FacialArea `json:"facial_area"`
	Model         string     `json:"model"`
}

// DetectResponse from POST /detect-faces
type DetectResponse struct {
	Success   bool           `json:"success"`
	Faces     []DetectedFace `json:"faces"`
	FaceCount int            `json:"face_count"`
	Model     string         `json:"model"`
}

type DetectedFace struct {
	Embedding  []float64  `json:"embedding"`
	FacialArea FacialArea `json:"facial_area"`
	Confidence float64    `json:"confidence"`
}

type FacialArea struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// HealthResponse from GET /health
type HealthResponse struct {
	Status   string `json:"status"`
	Model    string `json:"model"`
	Detector string `json:"detector"`
}

// errorResponse is the body returned with 4xx/5xx statuses.
type errorResponse struct {
	Error string `json:"error"`
}
