package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/matcher"
	"github.com/saturnino-fabrica-de-software/chamada/internal/provider"
)

const (
	diagnoseTopCandidates = 5
	// fewSamples is the sample count below which adding photos is recommended.
	fewSamples = 3
)

// FaceDiagnosis explains the matcher's verdict for one detected face.
type FaceDiagnosis struct {
	FaceIndex       int                  `json:"face_index"`
	BoundingBox     provider.BoundingBox `json:"bounding_box"`
	Candidates      []matcher.Candidate  `json:"candidates"`
	Recognized      bool                 `json:"recognized"`
	Confidence      int                  `json:"confidence"`
	Threshold       float64              `json:"threshold"`
	Gap             *float64             `json:"gap,omitempty"`
	RequiredGap     float64              `json:"required_gap"`
	Ambiguous       bool                 `json:"ambiguous"`
	Recommendations []string             `json:"recommendations"`
}

// Diagnosis is the debug report for a classroom photo.
type Diagnosis struct {
	ClassroomID     uuid.UUID       `json:"classroom_id"`
	EnrolledCount   int             `json:"enrolled_count"`
	Faces           []FaceDiagnosis `json:"faces"`
	Recommendations []string        `json:"recommendations"`
}

// Diagnose runs the same detection and matching as DetectAndMatch but reports
// the ranked candidates and advice instead of a review session. It never
// changes a recognized or unknown decision and writes nothing.
func (s *AttendanceService) Diagnose(ctx context.Context, teacherID, classroomID uuid.UUID, image []byte) (*Diagnosis, error) {
	if _, err := authorizeClassroom(ctx, s.classroomRepo, teacherID, classroomID); err != nil {
		return nil, err
	}

	roster, err := s.roster.ListRoster(ctx, classroomID)
	if err != nil {
		return nil, fmt.Errorf("classroom %s: load roster: %w", classroomID, err)
	}

	report := &Diagnosis{
		ClassroomID:     classroomID,
		Faces:           []FaceDiagnosis{},
		Recommendations: []string{},
	}
	samples := make(map[uuid.UUID]int, len(roster))
	for i := range roster {
		if roster[i].Enrolled() {
			report.EnrolledCount++
		}
		samples[roster[i].ID] = roster[i].SampleCount()
	}
	if report.EnrolledCount == 0 {
		return nil, domain.ErrNoEnrolledFaces
	}

	detected, err := s.detect(ctx, image)
	if err != nil {
		return nil, err
	}
	if len(detected) == 0 {
		report.Recommendations = append(report.Recommendations, "Try a clearer photo with better lighting")
		return report, nil
	}

	policy := s.matcher.Policy()
	for i, d := range detected {
		v, err := s.matcher.Match(d.Embedding, roster)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}

		fd := FaceDiagnosis{
			FaceIndex:       i,
			BoundingBox:     d.BoundingBox,
			Candidates:      v.Candidates,
			Recognized:      v.Recognized,
			Confidence:      v.Confidence,
			Threshold:       policy.Threshold,
			Gap:             v.Gap,
			RequiredGap:     v.RequiredGap,
			Ambiguous:       v.Ambiguous,
			Recommendations: recommend(v, policy, samples),
		}
		if len(fd.Candidates) > diagnoseTopCandidates {
			fd.Candidates = fd.Candidates[:diagnoseTopCandidates]
		}

		report.Faces = append(report.Faces, fd)
	}

	s.logger.DebugContext(ctx, "classroom photo diagnosed",
		slog.String("classroom_id", classroomID.String()),
		slog.Int("faces", len(report.Faces)),
		slog.Int("enrolled", report.EnrolledCount),
	)

	return report, nil
}

func recommend(v matcher.Verdict, policy matcher.Policy, samples map[uuid.UUID]int) []string {
	out := []string{}
	if v.Best == nil {
		return append(out, "No valid enrolled faces to compare against")
	}

	best := v.Best
	if best.MinDistance > policy.Threshold {
		out = append(out,
			fmt.Sprintf("Distance %.3f exceeds threshold %.2f", best.MinDistance, policy.Threshold),
			fmt.Sprintf("Consider re-enrolling %s with a photo similar to how they appear here", best.Name),
		)
		if n := samples[best.StudentID]; n < fewSamples {
			out = append(out, fmt.Sprintf("%s only has %d enrollment photo(s). Add more photos with different angles/lighting", best.Name, n))
		}
	}

	if v.Gap != nil && *v.Gap < v.RequiredGap {
		out = append(out,
			fmt.Sprintf("Gap between top matches (%.3f) is too small (need %.2f)", *v.Gap, v.RequiredGap),
			"The face is too similar to multiple enrolled people",
		)
	}

	return out
}
