package v1

import (
	"net/http"
	"time"

	"freelance-marketplace-backend/internal/delivery/http/response"
	"freelance-marketplace-backend/internal/domain"
	"freelance-marketplace-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ShortlistHandler struct {
	shortlistUC domain.ShortlistUsecase
}

func NewShortlistHandler(rg *gin.RouterGroup, shortlistUC domain.ShortlistUsecase, rateLimit gin.HandlerFunc) {
	handler := &ShortlistHandler{shortlistUC: shortlistUC}

	shortlist := rg.Group("/shortlist")
	{
		shortlist.POST("/compute", rateLimit, handler.Compute)
	}
}

// ComputeRequest accepts either a persisted client-request reference or ad
// hoc criteria with optional weights.
type ComputeRequest struct {
	ClientRequestID *int64           `json:"client_request_id"`
	Criteria        *CriteriaPayload `json:"criteria"`
	Weights         *WeightsPayload  `json:"weights"`
}

// CriteriaPayload is the wire form of the criteria. Skill levels arrive as
// free-form labels and are normalized once, here at the boundary.
type CriteriaPayload struct {
	Kind         string         `json:"kind"`
	CityID       *int64         `json:"city_id"`
	Remote       *bool          `json:"remote"`
	TeleworkDays *int           `json:"telework_days" binding:"omitempty,gte=0,lte=5"`
	TJMMin       *float64       `json:"tjm_min" binding:"omitempty,gte=0"`
	TJMMax       *float64       `json:"tjm_max" binding:"omitempty,gte=0"`
	StartDate    *string        `json:"start_date"`
	Skills       []SkillPayload `json:"skills" binding:"omitempty,dive"`
}

type SkillPayload struct {
	Name   string  `json:"name" binding:"required"`
	Level  string  `json:"level"`
	Weight float64 `json:"weight" binding:"gte=0"`
}

type WeightsPayload struct {
	Skills       *float64 `json:"skills" binding:"omitempty,gte=0"`
	TJM          *float64 `json:"tjm" binding:"omitempty,gte=0"`
	Telework     *float64 `json:"telework" binding:"omitempty,gte=0"`
	Availability *float64 `json:"availability" binding:"omitempty,gte=0"`
}

// Compute godoc: POST /v1/shortlist/compute
func (h *ShortlistHandler) Compute(c *gin.Context) {
	var req ComputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	var (
		results []domain.ScoredCandidate
		err     error
	)
	switch {
	case req.ClientRequestID != nil:
		results, err = h.shortlistUC.ComputeFromClientRequest(c, *req.ClientRequestID)
	case req.Criteria != nil:
		criteria, convErr := req.Criteria.toDomain()
		if convErr != nil {
			c.Error(convErr)
			return
		}
		results, err = h.shortlistUC.Compute(c, criteria, req.Weights.toDomain())
	default:
		c.Error(apperror.BadRequest("Either client_request_id or criteria is required"))
		return
	}
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Shortlist computed", gin.H{
		"results": results,
		"count":   len(results),
	})
}

func (p *CriteriaPayload) toDomain() (domain.RequestCriteria, error) {
	criteria := domain.RequestCriteria{
		Kind:         parseKind(p.Kind),
		CityID:       p.CityID,
		Remote:       p.Remote == nil || *p.Remote,
		TeleworkDays: p.TeleworkDays,
		TJMMin:       p.TJMMin,
		TJMMax:       p.TJMMax,
		Skills:       make([]domain.SkillRequirement, 0, len(p.Skills)),
	}
	if p.StartDate != nil && *p.StartDate != "" {
		start, err := time.Parse("2006-01-02", *p.StartDate)
		if err != nil {
			return criteria, apperror.BadRequest("start_date must be YYYY-MM-DD")
		}
		criteria.StartDate = &start
	}
	for _, s := range p.Skills {
		criteria.Skills = append(criteria.Skills, domain.SkillRequirement{
			Name:   s.Name,
			Level:  domain.ParseLevel(s.Level),
			Weight: s.Weight,
		})
	}
	return criteria, nil
}

func (p *WeightsPayload) toDomain() domain.Weights {
	weights := domain.DefaultWeights()
	if p == nil {
		return weights
	}
	if p.Skills != nil {
		weights.Skills = *p.Skills
	}
	if p.TJM != nil {
		weights.TJM = *p.TJM
	}
	if p.Telework != nil {
		weights.Telework = *p.Telework
	}
	if p.Availability != nil {
		weights.Availability = *p.Availability
	}
	return weights
}

func parseKind(kind string) domain.RequestKind {
	switch domain.RequestKind(kind) {
	case domain.KindExpertise, domain.KindMission:
		return domain.RequestKind(kind)
	default:
		return domain.KindOther
	}
}
