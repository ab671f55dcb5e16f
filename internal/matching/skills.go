// Package matching implements the per-candidate scoring of the shortlist
// engine: skill-evidence aggregation and the four criterion sub-scores.
package matching

import (
	"strings"

	"freelance-marketplace-backend/internal/domain"
	"freelance-marketplace-backend/internal/normalize"
)

// fallbackExperienceLevel is assumed for an experience-domain tag when the
// candidate declares no explicit level for that technology anywhere.
const fallbackExperienceLevel = 0.66

// SkillProfile holds the three name→proficiency evidence maps built once per
// candidate: experience domains, completed-work technologies and declared
// services. Declared services are the strong signal; demonstrated work is
// blended 70/30 in favour of experience.
type SkillProfile struct {
	experience map[string]float64
	works      map[string]float64
	services   map[string]float64
}

// NewSkillProfile builds the evidence maps for one candidate. Missing source
// collections are simply empty maps.
func NewSkillProfile(p *domain.CandidateProfile) *SkillProfile {
	sp := &SkillProfile{
		experience: make(map[string]float64, len(p.ExperienceDomains)),
		works:      make(map[string]float64, len(p.WorkTechnologies)),
		services:   make(map[string]float64, len(p.DeclaredServices)),
	}

	for _, ev := range p.DeclaredServices {
		key := normalize.Fold(ev.Name)
		if key == "" {
			continue
		}
		sp.services[key] = max(sp.services[key], domain.ParseProficiency(ev.Level))
	}

	for _, ev := range p.WorkTechnologies {
		key := normalize.Fold(ev.Name)
		if key == "" {
			continue
		}
		sp.works[key] = max(sp.works[key], domain.ParseProficiency(ev.Level))
	}

	for _, name := range p.ExperienceDomains {
		key := normalize.Fold(name)
		if key == "" {
			continue
		}
		lvl := fallbackExperienceLevel
		if declared, ok := sp.services[key]; ok {
			lvl = declared
		}
		sp.experience[key] = max(sp.experience[key], lvl)
	}

	return sp
}

// ProficiencyFor returns the best available proficiency for a requested skill
// name, combining the three sources as
// max(0.7*experience + 0.3*works, services).
func (sp *SkillProfile) ProficiencyFor(skillName string) float64 {
	key := normalize.Fold(skillName)
	if key == "" {
		return 0
	}
	exp := fuzzyLookup(sp.experience, key)
	works := fuzzyLookup(sp.works, key)
	services := fuzzyLookup(sp.services, key)
	return max(0.7*exp+0.3*works, services)
}

// fuzzyLookup matches a normalized name against a map with substring
// tolerance in both directions ("react" matches "react.js" and vice versa),
// taking the maximum over all matching keys. The looseness is deliberate and
// inherited behavior; it can double-match names sharing a substring, e.g.
// "java" also matches "javascript".
func fuzzyLookup(m map[string]float64, key string) float64 {
	best := m[key]
	for k, v := range m {
		if strings.Contains(k, key) || strings.Contains(key, k) {
			best = max(best, v)
		}
	}
	return best
}
