package matching

import (
	"context"
	"math"
	"time"

	"freelance-marketplace-backend/internal/domain"
)

const earthRadiusKm = 6371

// neutralDayRate is used when rate fit cannot be assessed at all.
const neutralDayRate = 0.6

// availableNowText is returned when no future availability date is declared.
const availableNowText = "available now"

// Location is a resolved city position. CountryCode is kept for the
// same-country distance tier.
type Location struct {
	Lat         float64
	Lng         float64
	CountryCode string
}

// Locator resolves a candidate's home city to coordinates. It may reach an
// external geocoding service and therefore takes a context. A nil result
// means unresolved.
type Locator interface {
	CandidateCity(ctx context.Context, name, countryCode string) *Location
}

// SubScores are the four criterion scores for one candidate, each in [0,1].
type SubScores struct {
	Skills           float64
	TJM              float64
	Telework         float64
	Availability     float64
	AvailabilityText string
	SkillBreakdown   []domain.SkillMatch
}

// Engine computes sub-scores for candidates against one fixed set of
// criteria. It is stateless apart from the criteria snapshot and safe for
// concurrent use as long as the locator is.
type Engine struct {
	criteria    domain.RequestCriteria
	locator     Locator
	requestCity *Location // resolved once per computation, nil if unresolved
	now         func() time.Time
}

func NewEngine(criteria domain.RequestCriteria, locator Locator, requestCity *Location) *Engine {
	return &Engine{
		criteria:    criteria,
		locator:     locator,
		requestCity: requestCity,
		now:         time.Now,
	}
}

// Score computes all four sub-scores for one candidate. Dirty or missing
// candidate data degrades to documented neutral values, never to an error.
func (e *Engine) Score(ctx context.Context, p *domain.CandidateProfile) SubScores {
	skills, breakdown := e.skillScore(p)
	return SubScores{
		Skills:           skills,
		TJM:              e.dayRateScore(p),
		Telework:         e.locationScore(ctx, p),
		Availability:     e.availabilityScore(p),
		AvailabilityText: e.availabilityText(p),
		SkillBreakdown:   breakdown,
	}
}

// skillScore is the weighted mean of per-skill level similarity. A request
// without skill requirements scores the neutral 0.5.
func (e *Engine) skillScore(p *domain.CandidateProfile) (float64, []domain.SkillMatch) {
	reqs := e.criteria.Skills
	if len(reqs) == 0 {
		return 0.5, nil
	}

	profile := NewSkillProfile(p)
	breakdown := make([]domain.SkillMatch, 0, len(reqs))
	var sum, totalWeight float64
	for _, req := range reqs {
		if req.Name == "" {
			continue
		}
		w := safeWeight(req.Weight)
		achieved := domain.NearestLevel(profile.ProficiencyFor(req.Name))
		sim := domain.Similarity(req.Level, achieved)

		sum += sim * w
		totalWeight += w
		breakdown = append(breakdown, domain.SkillMatch{
			Name:      req.Name,
			Requested: req.Level,
			Achieved:  achieved,
			Match:     int(math.Round(sim * 100)),
		})
	}
	if totalWeight == 0 {
		return 0.5, nil
	}
	return sum / totalWeight, breakdown
}

// dayRateScore compares the candidate's day-rate interval with the client
// budget. Any overlap is full credit; disjoint intervals decay with the gap
// relative to the combined widths. With only a single candidate rate it falls
// back to point-vs-interval scoring.
func (e *Engine) dayRateScore(p *domain.CandidateProfile) float64 {
	if e.criteria.TJMMin == nil && e.criteria.TJMMax == nil {
		return neutralDayRate
	}
	lo, hi := 0.0, math.Inf(1)
	if e.criteria.TJMMin != nil {
		lo = *e.criteria.TJMMin
	}
	if e.criteria.TJMMax != nil {
		hi = *e.criteria.TJMMax
	}

	if x, y, ok := candidateInterval(p); ok {
		if lo <= y && x <= hi {
			return 1
		}
		// Disjoint intervals always have a finite client bound on the
		// facing side.
		var gap float64
		if x > hi {
			gap = x - hi
		} else {
			gap = lo - y
		}
		span := math.Max(1, (y-x)+(hi-lo))
		return math.Max(0, 1-gap/span)
	}

	rate := singleRate(p)
	if rate == nil {
		return neutralDayRate
	}
	if *rate >= lo && *rate <= hi {
		return 1
	}
	var dist, nearest float64
	if *rate < lo {
		dist, nearest = lo-*rate, lo
	} else {
		dist, nearest = *rate-hi, hi
	}
	span := math.Max(1, nearest/2)
	return math.Max(0, 1-dist/span)
}

// candidateInterval returns the candidate's [small, high] rate interval when
// it is well-formed.
func candidateInterval(p *domain.CandidateProfile) (float64, float64, bool) {
	if p.SmallDayRate == nil || p.HighDayRate == nil {
		return 0, 0, false
	}
	x, y := *p.SmallDayRate, *p.HighDayRate
	if x <= 0 || x > y {
		return 0, 0, false
	}
	return x, y, true
}

func singleRate(p *domain.CandidateProfile) *float64 {
	if p.SmallDayRate != nil && *p.SmallDayRate > 0 {
		return p.SmallDayRate
	}
	if p.HighDayRate != nil && *p.HighDayRate > 0 {
		return p.HighDayRate
	}
	return nil
}

// teleworkSteps maps the |requested - offered| telework-day difference to a
// score.
var teleworkSteps = [...]float64{1.0, 0.8, 0.6, 0.4, 0.2}

// locationScore covers the location/telework axis. Remote requests compare
// telework days only; on-site requests use geographic distance tiers.
func (e *Engine) locationScore(ctx context.Context, p *domain.CandidateProfile) float64 {
	if e.criteria.Remote {
		return teleworkScore(e.criteria.TeleworkDays, p.TeleworkDays)
	}
	if e.requestCity == nil {
		return 0.5
	}
	cand := e.locator.CandidateCity(ctx, p.City, p.Country)
	if cand == nil {
		return 0.2
	}
	d := haversineKm(e.requestCity.Lat, e.requestCity.Lng, cand.Lat, cand.Lng)
	switch {
	case d <= 15:
		return 1.0
	case d <= 50:
		return 0.9
	case d <= 150:
		return 0.8
	case d <= 300:
		return 0.7
	case d <= 600:
		return 0.5
	case e.requestCity.CountryCode == cand.CountryCode:
		return 0.3
	default:
		return 0.1
	}
}

func teleworkScore(requested, offered *int) float64 {
	if requested == nil {
		return 0.5
	}
	if offered == nil {
		return 0
	}
	diff := *requested - *offered
	if diff < 0 {
		diff = -diff
	}
	if diff >= len(teleworkSteps) {
		return 0
	}
	return teleworkSteps[diff]
}

// availabilityScore favors unemployed candidates; employed ones only score
// well when their declared availability date meets the desired start.
func (e *Engine) availabilityScore(p *domain.CandidateProfile) float64 {
	if e.criteria.StartDate == nil {
		if p.IsEmployed {
			return 0.4
		}
		return 1
	}
	if !p.IsEmployed {
		return 1
	}
	if p.AvailableDate != nil && !p.AvailableDate.After(*e.criteria.StartDate) {
		return 0.7
	}
	return 0.2
}

func (e *Engine) availabilityText(p *domain.CandidateProfile) string {
	if p.AvailableDate != nil && p.AvailableDate.After(e.now()) {
		return p.AvailableDate.Format("02/01/2006")
	}
	return availableNowText
}

func safeWeight(w float64) float64 {
	if w <= 0 {
		return 1
	}
	return w
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Pow(math.Sin(dLon/2), 2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
