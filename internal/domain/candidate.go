package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SkillEvidence is one technology tag with the level the candidate claims or
// demonstrated for it.
type SkillEvidence struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

// CandidateProfile is the read-only snapshot of one worker used during a
// ranking computation. The three evidence collections are the independent
// sources merged by the skill aggregator.
type CandidateProfile struct {
	UserID        uuid.UUID  `json:"user_id"`
	City          string     `json:"city"`
	Country       string     `json:"country"`
	SmallDayRate  *float64   `json:"small_day_rate"`
	HighDayRate   *float64   `json:"high_day_rate"`
	TeleworkDays  *int       `json:"telework_days"`
	AvailableDate *time.Time `json:"available_date"`
	IsEmployed    bool       `json:"is_employed"`

	ExperienceDomains []string        `json:"experience_domains"`
	WorkTechnologies  []SkillEvidence `json:"work_technologies"`
	DeclaredServices  []SkillEvidence `json:"declared_services"`
}

type ProfileRepository interface {
	// ListAll returns the full candidate pool with evidence collections
	// attached, as one in-memory snapshot for a computation.
	ListAll(ctx context.Context) ([]CandidateProfile, error)
}
