// Package training maintains the bounded list of reference embeddings kept per student.
package training

import (
	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

// Append adds sample to the end of samples, evicting from the front so that
// at most capacity samples remain. It returns the new list and how many
// samples were evicted. The input slice is not modified.
func Append(samples []domain.Embedding, sample domain.Embedding, capacity int) ([]domain.Embedding, int) {
	if capacity < 1 {
		capacity = 1
	}

	out := make([]domain.Embedding, 0, min(len(samples)+1, capacity))
	evicted := 0
	if over := len(samples) + 1 - capacity; over > 0 {
		evicted = over
		samples = samples[over:]
	}
	out = append(out, samples...)
	out = append(out, sample)

	return out, evicted
}

// AppendStrict adds sample without evicting. A list already at capacity is rejected.
func AppendStrict(samples []domain.Embedding, sample domain.Embedding, capacity int) ([]domain.Embedding, error) {
	if len(samples) >= capacity {
		return nil, domain.ErrTrainingCapacityReached
	}
	out, _ := Append(samples, sample, capacity)
	return out, nil
}

// KeepLatest collapses the list to its most recent sample. Empty lists stay empty.
func KeepLatest(samples []domain.Embedding) []domain.Embedding {
	if len(samples) == 0 {
		return []domain.Embedding{}
	}
	return []domain.Embedding{samples[len(samples)-1]}
}
