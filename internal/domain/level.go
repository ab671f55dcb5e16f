package domain

import (
	"strconv"
	"strings"
)

// Level is the canonical proficiency scale. The ordinal order is authoritative
// for similarity; the continuous value is authoritative for merging evidence
// from heterogeneous sources.
type Level int

const (
	LevelUnknown Level = iota
	LevelBeginner
	LevelJunior
	LevelIntermediate
	LevelSenior
	LevelExpert
)

var levelNames = map[Level]string{
	LevelUnknown:      "unknown",
	LevelBeginner:     "beginner",
	LevelJunior:       "junior",
	LevelIntermediate: "intermediate",
	LevelSenior:       "senior",
	LevelExpert:       "expert",
}

var levelProficiency = map[Level]float64{
	LevelBeginner:     0.1,
	LevelJunior:       0.33,
	LevelIntermediate: 0.66,
	LevelSenior:       0.85,
	LevelExpert:       1.0,
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

func (l Level) Valid() bool {
	return l >= LevelBeginner && l <= LevelExpert
}

// Proficiency returns the canonical continuous value for the level, or 0 for
// an unknown level.
func (l Level) Proficiency() float64 {
	return levelProficiency[l]
}

func (l Level) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(l.String())), nil
}

func (l *Level) UnmarshalJSON(data []byte) error {
	label, err := strconv.Unquote(string(data))
	if err != nil {
		label = string(data)
	}
	*l = ParseLevel(label)
	return nil
}

// ParseProficiency maps a free-form level label to a continuous value in
// [0,1]. Profile data comes from several vocabularies ("medium" and
// "intermediaire" both mean 0.66, a plain "intermediate" means 0.5) and is
// frequently dirty; unknown labels yield the neutral 0.5 instead of failing.
func ParseProficiency(label string) float64 {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "expert":
		return 1.0
	case "senior":
		return 0.85
	case "medium", "intermediaire", "intermédiaire":
		return 0.66
	case "intermediate":
		return 0.5
	case "junior":
		return 0.33
	case "beginner", "debutant", "débutant":
		return 0.1
	}
	if n, err := strconv.ParseFloat(strings.TrimSpace(label), 64); err == nil {
		return clamp01(n)
	}
	return 0.5
}

// NearestLevel maps a continuous proficiency back onto the ordinal scale.
// A non-positive proficiency means no evidence at all and yields LevelUnknown.
func NearestLevel(proficiency float64) Level {
	switch {
	case proficiency <= 0:
		return LevelUnknown
	case proficiency < 0.30:
		return LevelBeginner
	case proficiency < 0.50:
		return LevelJunior
	case proficiency < 0.70:
		return LevelIntermediate
	case proficiency < 0.90:
		return LevelSenior
	default:
		return LevelExpert
	}
}

// ParseLevel normalizes a free-form label into a Level by routing through the
// continuous scale, so numeric and foreign-vocabulary labels land on the
// right rung.
func ParseLevel(label string) Level {
	if strings.TrimSpace(label) == "" {
		return LevelUnknown
	}
	return NearestLevel(ParseProficiency(label))
}

// similaritySteps decays the match by ordinal gap when the achieved level is
// below the requested one. Being over-qualified is free.
var similaritySteps = [...]float64{1.0, 0.8, 0.6, 0.4, 0.2}

// Similarity scores how well an achieved level satisfies a requested one,
// in [0,1]. Levels outside the ordered scale cannot be assessed and score 0.
func Similarity(requested, achieved Level) float64 {
	if !requested.Valid() || !achieved.Valid() {
		return 0
	}
	if achieved >= requested {
		return 1.0
	}
	gap := int(requested - achieved)
	if gap >= len(similaritySteps) {
		return 0
	}
	return similaritySteps[gap]
}

func clamp01(n float64) float64 {
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}
