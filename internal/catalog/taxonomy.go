package catalog

import (
	"alcyxob/fitness-catalog/internal/domain"
	"strings"
)

// regionRule assigns a body region when the movement pattern or a muscle matches.
type regionRule struct {
	region   domain.BodyRegion
	patterns []string // substrings of the movement pattern
	muscles  []string // exact muscle names
}

// Evaluated in order; the first matching rule wins.
var regionRules = []regionRule{
	{
		region:   domain.BodyRegionLower,
		patterns: []string{"squat", "lunge", "hinge"},
		muscles:  []string{"quads", "glutes", "hamstrings", "calves"},
	},
	{
		region:   domain.BodyRegionUpper,
		patterns: []string{"push", "pull"},
		muscles:  []string{"chest", "shoulders", "triceps", "biceps", "back", "lats"},
	},
	{
		region:   domain.BodyRegionCore,
		patterns: []string{"core"},
		muscles:  []string{"abs", "core", "obliques"},
	},
}

// goalRule appends tags when the modality equals one of the listed values
// or, if nameContains is set, the exercise name contains it.
type goalRule struct {
	modalities   []string
	nameContains string
	tags         []string
}

// Evaluated independently; every matching rule contributes its tags.
var goalRules = []goalRule{
	{modalities: []string{"strength"}, tags: []string{domain.GoalStrength}},
	{modalities: []string{"hypertrophy"}, tags: []string{domain.GoalHypertrophy}},
	{modalities: []string{"cardio", "conditioning"}, tags: []string{domain.GoalFatLoss, domain.GoalEndurance}},
	{modalities: []string{"mobility", "stretch"}, tags: []string{domain.GoalMobility}},
	{modalities: []string{"rehab"}, tags: []string{domain.GoalRehab}},
	{modalities: []string{"power"}, nameContains: "power", tags: []string{domain.GoalPower}},
	{modalities: []string{"core"}, tags: []string{domain.GoalPerformance}},
}

// Taxonomy holds the classification inferred from a line's free-text fields.
type Taxonomy struct {
	BodyRegion     domain.BodyRegion
	ImpactLevel    domain.ImpactLevel
	Environment    domain.Environment
	GoalTags       []string
	LoggingOptions []domain.LoggingOption
}

// Infer runs every inference rule table. category is the equipment category
// with any detail already split off.
func Infer(f Fields, muscles []string, category string) Taxonomy {
	return Taxonomy{
		BodyRegion:     InferBodyRegion(f.MovementPattern, muscles),
		ImpactLevel:    InferImpactLevel(f.Modality, f.Name),
		Environment:    InferEnvironment(category),
		GoalTags:       InferGoalTags(f.Modality, f.Name),
		LoggingOptions: InferLoggingOptions(f.DefaultPrescription, category),
	}
}

// InferBodyRegion returns the region of the first rule whose pattern keywords
// or muscles match, and full-body when none do.
func InferBodyRegion(pattern string, muscles []string) domain.BodyRegion {
	pattern = strings.ToLower(pattern)
	lowered := make([]string, len(muscles))
	for i, m := range muscles {
		lowered[i] = strings.ToLower(m)
	}

	for _, rule := range regionRules {
		if containsAny(pattern, rule.patterns) || anyIn(lowered, rule.muscles) {
			return rule.region
		}
	}
	return domain.BodyRegionFull
}

// InferImpactLevel classifies plyometric, conditioning and jumping exercises as
// high impact, cardio and running as medium, and everything else as low.
func InferImpactLevel(modality, name string) domain.ImpactLevel {
	modality = strings.ToLower(modality)
	name = strings.ToLower(name)

	switch {
	case modality == "plyometric" || modality == "conditioning" || strings.Contains(name, "jump"):
		return domain.ImpactHigh
	case modality == "cardio" || containsAny(name, []string{"run", "sprint"}):
		return domain.ImpactMedium
	default:
		return domain.ImpactLow
	}
}

// InferEnvironment maps an equipment category to where the exercise can be done.
func InferEnvironment(category string) domain.Environment {
	category = strings.ToLower(category)

	switch {
	case containsAny(category, []string{"machine", "cable"}):
		return domain.EnvironmentGym
	case category == "bodyweight":
		return domain.EnvironmentHome
	default:
		return domain.EnvironmentAny
	}
}

// InferGoalTags never returns nil. A line may collect tags from several
// rules, e.g. a strength modality with "Power" in the name.
func InferGoalTags(modality, name string) []string {
	modality = strings.ToLower(modality)
	name = strings.ToLower(name)

	tags := []string{}
	for _, rule := range goalRules {
		byName := rule.nameContains != "" && strings.Contains(name, rule.nameContains)
		if byName || anyIn([]string{modality}, rule.modalities) {
			tags = append(tags, rule.tags...)
		}
	}
	return tags
}

// InferLoggingOptions matches the prescription case-sensitively. The "s" and
// "m" checks are bare substrings and fire on almost any prescription text.
func InferLoggingOptions(prescription, category string) []domain.LoggingOption {
	category = strings.ToLower(category)

	opts := []domain.LoggingOption{}
	if containsAny(prescription, []string{"×", "reps"}) {
		opts = append(opts, domain.LogReps)
	}
	if containsAny(prescription, []string{"min", "s", "time"}) {
		opts = append(opts, domain.LogTime)
	}
	if category != "bodyweight" && !strings.Contains(category, "cardio") {
		opts = append(opts, domain.LogWeight)
	}
	if strings.Contains(prescription, "RPE") {
		opts = append(opts, domain.LogRPE)
	}
	if strings.Contains(prescription, "m") && !strings.Contains(prescription, "min") {
		opts = append(opts, domain.LogDistance)
	}
	return opts
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func anyIn(values, set []string) bool {
	for _, v := range values {
		for _, want := range set {
			if v == want {
				return true
			}
		}
	}
	return false
}
