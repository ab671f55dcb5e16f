package usecase

import (
	"context"
	"math"
	"sort"

	"freelance-marketplace-backend/internal/domain"
	"freelance-marketplace-backend/internal/geo"
	"freelance-marketplace-backend/internal/matching"
	"freelance-marketplace-backend/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
)

type shortlistUsecase struct {
	profileRepo domain.ProfileRepository
	cityRepo    domain.CityRepository
	requestRepo domain.ClientRequestRepository
	resolver    *geo.Resolver
	validate    *validator.Validate
	limit       int
}

func NewShortlistUsecase(
	profileRepo domain.ProfileRepository,
	cityRepo domain.CityRepository,
	requestRepo domain.ClientRequestRepository,
	resolver *geo.Resolver,
	validate *validator.Validate,
	limit int,
) domain.ShortlistUsecase {
	if limit <= 0 {
		limit = 10
	}
	return &shortlistUsecase{
		profileRepo: profileRepo,
		cityRepo:    cityRepo,
		requestRepo: requestRepo,
		resolver:    resolver,
		validate:    validate,
		limit:       limit,
	}
}

// ComputeFromClientRequest loads a persisted client request and normalizes it
// into criteria + weights before running the pipeline.
func (u *shortlistUsecase) ComputeFromClientRequest(ctx context.Context, clientRequestID int64) ([]domain.ScoredCandidate, error) {
	cr, err := u.requestRepo.GetByID(ctx, clientRequestID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if cr == nil {
		return nil, apperror.NotFound("Client request not found")
	}

	criteria := domain.RequestCriteria{
		Kind:         cr.Kind,
		CityID:       cr.CityID,
		Remote:       cr.LocationMode == "" || cr.LocationMode == "REMOTE",
		TeleworkDays: cr.RemoteDaysCount,
		TJMMin:       cr.TJMMin,
		TJMMax:       cr.TJMMax,
		StartDate:    cr.StartDate,
		Skills:       make([]domain.SkillRequirement, 0, len(cr.Technologies)),
	}
	for _, tech := range cr.Technologies {
		if tech.Name == "" {
			continue
		}
		criteria.Skills = append(criteria.Skills, domain.SkillRequirement{
			Name:   tech.Name,
			Level:  domain.ParseLevel(tech.Level),
			Weight: tech.Weight,
		})
	}

	defaults := domain.DefaultWeights()
	weights := domain.Weights{
		Skills:       weightOrDefault(cr.SkillsWeight, defaults.Skills),
		TJM:          weightOrDefault(cr.TJMWeight, defaults.TJM),
		Telework:     weightOrDefault(cr.TeleworkWeight, defaults.Telework),
		Availability: weightOrDefault(cr.AvailabilityWeight, defaults.Availability),
	}

	return u.Compute(ctx, criteria, weights)
}

// Compute scores every candidate against the criteria, filters, sorts by
// weight priority and returns at most the configured limit.
func (u *shortlistUsecase) Compute(ctx context.Context, criteria domain.RequestCriteria, weights domain.Weights) ([]domain.ScoredCandidate, error) {
	if err := u.validateInput(criteria, weights); err != nil {
		return nil, err
	}
	// Expertise requests have no rate or telework negotiation, whichever way
	// the criteria arrived.
	if criteria.Kind == domain.KindExpertise {
		weights.TJM = 0
		weights.Telework = 0
	}

	cities, err := u.cityRepo.ListAll(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	candidates, err := u.profileRepo.ListAll(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	session := u.resolver.NewSession(cities)

	var requestCity *matching.Location
	if !criteria.Remote && criteria.CityID != nil {
		if rc := session.ResolveCityID(ctx, *criteria.CityID); rc != nil {
			requestCity = &matching.Location{Lat: rc.Lat, Lng: rc.Lng, CountryCode: rc.CountryCode}
		}
	}
	engine := matching.NewEngine(criteria, sessionLocator{session}, requestCity)

	// Candidates are independent; score them concurrently and collect by
	// index so output never depends on completion order.
	scored := make([]domain.ScoredCandidate, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	for i := range candidates {
		i := i
		g.Go(func() error {
			sub := engine.Score(gctx, &candidates[i])
			scored[i] = domain.ScoredCandidate{
				UserID: candidates[i].UserID,
				Score:  aggregateScore(sub, weights),
				Details: domain.ScoreDetails{
					Skills:           roundPct(sub.Skills),
					TJM:              roundPct(sub.TJM),
					Telework:         roundPct(sub.Telework),
					Availability:     roundPct(sub.Availability),
					AvailabilityText: sub.AvailabilityText,
					SkillBreakdown:   sub.SkillBreakdown,
				},
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperror.Internal(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, apperror.Internal(err)
	}

	// A zero skill match is not a usable candidate when skills were asked for.
	if len(criteria.Skills) > 0 {
		kept := scored[:0]
		for _, sc := range scored {
			if sc.Details.Skills > 0 {
				kept = append(kept, sc)
			}
		}
		scored = kept
	}

	sortByWeightPriority(scored, weights)

	if len(scored) > u.limit {
		scored = scored[:u.limit]
	}
	return scored, nil
}

// validateInput rejects the only error class that surfaces to the caller:
// criteria that make a ranking meaningless.
func (u *shortlistUsecase) validateInput(criteria domain.RequestCriteria, weights domain.Weights) error {
	if err := u.validate.Struct(weights); err != nil {
		return apperror.BadRequest(err.Error())
	}
	if err := u.validate.Struct(criteria); err != nil {
		return apperror.BadRequest(err.Error())
	}
	empty := len(criteria.Skills) == 0 &&
		criteria.CityID == nil && criteria.TJMMin == nil && criteria.TJMMax == nil &&
		criteria.StartDate == nil && criteria.TeleworkDays == nil
	if empty {
		return apperror.BadRequest("Request criteria are empty")
	}
	return nil
}

// aggregateScore is the weighted mean of the four sub-scores as an integer
// percentage, 0 when all weights are zero.
func aggregateScore(sub matching.SubScores, w domain.Weights) int {
	total := w.Total()
	if total <= 0 {
		return 0
	}
	raw := sub.Skills*w.Skills + sub.TJM*w.TJM + sub.Telework*w.Telework + sub.Availability*w.Availability
	return int(math.Round(raw / total * 100))
}

// sortByWeightPriority orders candidates by the detail columns in descending
// weight order, then by aggregate score. Zero-weight criteria take no part in
// the ordering. The sort is stable so remaining ties keep input order.
func sortByWeightPriority(scored []domain.ScoredCandidate, weights domain.Weights) {
	type axis struct {
		weight float64
		value  func(d domain.ScoreDetails) int
	}
	axes := []axis{
		{weights.Skills, func(d domain.ScoreDetails) int { return d.Skills }},
		{weights.TJM, func(d domain.ScoreDetails) int { return d.TJM }},
		{weights.Telework, func(d domain.ScoreDetails) int { return d.Telework }},
		{weights.Availability, func(d domain.ScoreDetails) int { return d.Availability }},
	}
	order := make([]axis, 0, len(axes))
	for _, a := range axes {
		if a.weight > 0 {
			order = append(order, a)
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return order[i].weight > order[j].weight })

	sort.SliceStable(scored, func(i, j int) bool {
		for _, a := range order {
			vi, vj := a.value(scored[i].Details), a.value(scored[j].Details)
			if vi != vj {
				return vi > vj
			}
		}
		return scored[i].Score > scored[j].Score
	})
}

func roundPct(v float64) int {
	return int(math.Round(v * 100))
}

func weightOrDefault(w *float64, fallback float64) float64 {
	if w == nil {
		return fallback
	}
	return *w
}

// sessionLocator adapts a geo session to the scoring engine's Locator.
type sessionLocator struct {
	session *geo.Session
}

func (l sessionLocator) CandidateCity(ctx context.Context, name, countryCode string) *matching.Location {
	rc := l.session.ResolveCity(ctx, name, countryCode)
	if rc == nil {
		return nil
	}
	return &matching.Location{Lat: rc.Lat, Lng: rc.Lng, CountryCode: rc.CountryCode}
}
