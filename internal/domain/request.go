package domain

import (
	"context"
	"time"
)

type RequestKind string

const (
	KindExpertise RequestKind = "EXPERTISE"
	KindMission   RequestKind = "MISSION"
	KindOther     RequestKind = "OTHER"
)

// SkillRequirement is the normalized form of one requested technology. All
// internal components consume only this form; label parsing happens once at
// the pipeline boundary.
type SkillRequirement struct {
	Name   string  `json:"name" validate:"required"`
	Level  Level   `json:"level"`
	Weight float64 `json:"weight" validate:"gte=0"`
}

// RequestCriteria is the immutable input of one ranking computation.
type RequestCriteria struct {
	Kind         RequestKind        `json:"kind"`
	CityID       *int64             `json:"city_id"`
	Remote       bool               `json:"remote"`
	TeleworkDays *int               `json:"telework_days"`
	TJMMin       *float64           `json:"tjm_min"`
	TJMMax       *float64           `json:"tjm_max"`
	StartDate    *time.Time         `json:"start_date"`
	Skills       []SkillRequirement `json:"skills" validate:"dive"`
}

// Weights drives both the aggregate percentage and the priority sort order.
// A zero weight excludes the criterion from both.
type Weights struct {
	Skills       float64 `json:"skills" validate:"gte=0"`
	TJM          float64 `json:"tjm" validate:"gte=0"`
	Telework     float64 `json:"telework" validate:"gte=0"`
	Availability float64 `json:"availability" validate:"gte=0"`
}

func DefaultWeights() Weights {
	return Weights{Skills: 5, TJM: 3, Telework: 2, Availability: 2}
}

func (w Weights) Total() float64 {
	return w.Skills + w.TJM + w.Telework + w.Availability
}

// RequestTechnology is a weighted technology row attached to a persisted
// client request, with its raw level label.
type RequestTechnology struct {
	Name   string  `json:"name"`
	Level  string  `json:"level"`
	Weight float64 `json:"weight"`
}

// ClientRequest is the persisted client-request record a shortlist can be
// computed from.
type ClientRequest struct {
	ID                 int64               `json:"id"`
	Kind               RequestKind         `json:"kind"`
	LocationMode       string              `json:"location_mode"`
	CityID             *int64              `json:"city_id"`
	RemoteDaysCount    *int                `json:"remote_days_count"`
	TJMMin             *float64            `json:"tjm_min"`
	TJMMax             *float64            `json:"tjm_max"`
	StartDate          *time.Time          `json:"start_date"`
	Technologies       []RequestTechnology `json:"technologies"`
	SkillsWeight       *float64            `json:"skills_weight"`
	TJMWeight          *float64            `json:"tjm_weight"`
	TeleworkWeight     *float64            `json:"telework_weight"`
	AvailabilityWeight *float64            `json:"availability_weight"`
}

type ClientRequestRepository interface {
	// GetByID returns nil, nil when the request does not exist.
	GetByID(ctx context.Context, id int64) (*ClientRequest, error)
}
