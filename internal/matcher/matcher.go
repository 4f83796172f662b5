// Package matcher ranks enrolled students against a detected face embedding.
package matcher

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

const (
	// DefaultThreshold is the maximum cosine distance accepted as a match.
	DefaultThreshold = 0.60
	// DefaultGap is the separation reported as comfortable between the two best candidates.
	DefaultGap = 0.05
	// ConfidenceZeroDistance is the distance at which confidence reaches 0.
	ConfidenceZeroDistance = 0.8
)

// Policy holds the matching thresholds.
type Policy struct {
	Threshold float64
	Gap       float64
}

// DefaultPolicy returns the production thresholds.
func DefaultPolicy() Policy {
	return Policy{Threshold: DefaultThreshold, Gap: DefaultGap}
}

// Candidate is one enrolled student scored against a detected face.
type Candidate struct {
	StudentID   uuid.UUID `json:"student_id"`
	RollNumber  string    `json:"roll_number"`
	Name        string    `json:"name"`
	MinDistance float64   `json:"min_distance"`
	AvgDistance float64   `json:"avg_distance"`
	Samples     int       `json:"samples"`
	Skipped     int       `json:"skipped_samples,omitempty"`
	WouldMatch  bool      `json:"would_match"`
}

// Verdict is the outcome of matching a single detected face.
type Verdict struct {
	Candidates  []Candidate `json:"candidates"`
	Best        *Candidate  `json:"best,omitempty"`
	Recognized  bool        `json:"recognized"`
	Confidence  int         `json:"confidence"`
	Gap         *float64    `json:"gap,omitempty"`
	RequiredGap float64     `json:"required_gap"`
	// Ambiguous flags a recognized face whose runner-up sits closer than the
	// required gap. It never turns a match into an unknown.
	Ambiguous bool `json:"ambiguous"`
}

// Matcher scores embeddings against a roster. It holds no state besides its policy.
type Matcher struct {
	policy Policy
}

// New creates a Matcher. Zero fields in p fall back to the defaults.
func New(p Policy) *Matcher {
	if p.Threshold <= 0 {
		p.Threshold = DefaultThreshold
	}
	if p.Gap <= 0 {
		p.Gap = DefaultGap
	}
	return &Matcher{policy: p}
}

// Policy returns the thresholds in use.
func (m *Matcher) Policy() Policy {
	return m.policy
}

// Rank scores every student with at least one comparable embedding and
// returns them ordered by ascending minimum distance. Stored embeddings whose
// dimension differs from the detected one are skipped.
func (m *Matcher) Rank(detected domain.Embedding, roster []domain.Student) []Candidate {
	candidates := make([]Candidate, 0, len(roster))

	for i := range roster {
		s := &roster[i]
		minDist := math.Inf(1)
		var sum float64
		var used, skipped int

		for _, stored := range s.Embeddings {
			if len(stored) != len(detected) {
				skipped++
				continue
			}
			d := CosineDistance(detected, stored)
			sum += d
			used++
			if d < minDist {
				minDist = d
			}
		}

		if used == 0 {
			continue
		}

		candidates = append(candidates, Candidate{
			StudentID:   s.ID,
			RollNumber:  s.RollNumber,
			Name:        s.Name,
			MinDistance: minDist,
			AvgDistance: sum / float64(used),
			Samples:     used,
			Skipped:     skipped,
			WouldMatch:  minDist <= m.policy.Threshold,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].MinDistance != candidates[j].MinDistance {
			return candidates[i].MinDistance < candidates[j].MinDistance
		}
		return candidates[i].RollNumber < candidates[j].RollNumber
	})

	return candidates
}

// Verification is the outcome of comparing a face with one student's samples.
type Verification struct {
	StudentID  uuid.UUID `json:"student_id"`
	Verified   bool      `json:"verified"`
	Distance   float64   `json:"distance"`
	Threshold  float64   `json:"threshold"`
	Confidence int       `json:"confidence"`
	Samples    int       `json:"samples"`
}

// Verify checks whether a face belongs to one student. The distance is the
// minimum over the student's comparable samples and the same threshold as
// Match decides the result.
func (m *Matcher) Verify(detected domain.Embedding, student domain.Student) (Verification, error) {
	if err := detected.Validate(); err != nil {
		return Verification{}, err
	}

	ranked := m.Rank(detected, []domain.Student{student})
	if len(ranked) == 0 {
		return Verification{}, domain.ErrNoEnrolledFaces.WithMessage("student has no samples comparable with this photo")
	}
	best := ranked[0]

	return Verification{
		StudentID:  student.ID,
		Verified:   best.WouldMatch,
		Distance:   best.MinDistance,
		Threshold:  m.policy.Threshold,
		Confidence: Confidence(best.MinDistance),
		Samples:    best.Samples,
	}, nil
}

// Match finds the closest enrolled student for a detected face. The face is
// recognized when the best distance is within the threshold.
func (m *Matcher) Match(detected domain.Embedding, roster []domain.Student) (Verdict, error) {
	if err := detected.Validate(); err != nil {
		return Verdict{}, err
	}
	if !domain.HasEnrolledStudents(roster) {
		return Verdict{}, domain.ErrNoEnrolledFaces
	}

	v := Verdict{
		Candidates: m.Rank(detected, roster),
	}
	if len(v.Candidates) == 0 {
		return v, nil
	}

	best := v.Candidates[0]
	v.Best = &best
	v.Confidence = Confidence(best.MinDistance)
	v.RequiredGap = RequiredGap(best.MinDistance, m.policy.Gap)
	if len(v.Candidates) > 1 {
		gap := v.Candidates[1].MinDistance - best.MinDistance
		v.Gap = &gap
	}
	v.Recognized = best.MinDistance <= m.policy.Threshold
	v.Ambiguous = v.Recognized && v.Gap != nil && *v.Gap < v.RequiredGap

	return v, nil
}

// ResolveDuplicates keeps a recognized student on at most one face per photo.
// The closest face wins; every other face claiming the same student is
// downgraded to unknown. The returned slice maps each face index to the index
// of the winning face, or -1 when the face was not downgraded.
func ResolveDuplicates(verdicts []Verdict) []int {
	duplicateOf := make([]int, len(verdicts))
	winners := make(map[uuid.UUID]int)

	for i := range verdicts {
		duplicateOf[i] = -1
		v := &verdicts[i]
		if !v.Recognized || v.Best == nil {
			continue
		}
		w, seen := winners[v.Best.StudentID]
		if !seen || v.Best.MinDistance < verdicts[w].Best.MinDistance {
			winners[v.Best.StudentID] = i
		}
	}

	for i := range verdicts {
		v := &verdicts[i]
		if !v.Recognized || v.Best == nil {
			continue
		}
		if w := winners[v.Best.StudentID]; w != i {
			v.Recognized = false
			v.Ambiguous = false
			duplicateOf[i] = w
		}
	}

	return duplicateOf
}
