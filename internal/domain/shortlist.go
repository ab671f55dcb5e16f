package domain

import (
	"context"

	"github.com/google/uuid"
)

// SkillMatch is the per-skill line of the score breakdown.
type SkillMatch struct {
	Name      string `json:"name"`
	Requested Level  `json:"requested"`
	Achieved  Level  `json:"achieved"`
	Match     int    `json:"match"`
}

// ScoreDetails carries the four sub-scores as integer percentages plus the
// transparent per-skill breakdown.
type ScoreDetails struct {
	Skills           int          `json:"skills"`
	TJM              int          `json:"tjm"`
	Telework         int          `json:"telework"`
	Availability     int          `json:"availability"`
	AvailabilityText string       `json:"availability_text"`
	SkillBreakdown   []SkillMatch `json:"skill_breakdown,omitempty"`
}

// ScoredCandidate is one entry of the computed shortlist.
type ScoredCandidate struct {
	UserID  uuid.UUID    `json:"user_id"`
	Score   int          `json:"score"`
	Details ScoreDetails `json:"details"`
}

type ShortlistUsecase interface {
	Compute(ctx context.Context, criteria RequestCriteria, weights Weights) ([]ScoredCandidate, error)
	ComputeFromClientRequest(ctx context.Context, clientRequestID int64) ([]ScoredCandidate, error)
}
