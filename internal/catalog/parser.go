package catalog

import (
	"alcyxob/fitness-catalog/internal/domain"
	"strings"
)

// ParseLine converts one catalog line into an exercise record.
// The only failures are the structural ones from Tokenize; unmatched
// prescription parts fall back to defaults.
func ParseLine(line string) (*domain.Exercise, error) {
	seg, err := Tokenize(line)
	if err != nil {
		return nil, err
	}

	f := AssignFields(seg)
	muscles := SplitMuscles(f.PrimaryMusclesRaw)
	category, detail := SplitEquipment(f.EquipmentRaw)
	tax := Infer(f, muscles, category)
	rx := ParsePrescription(f.DefaultPrescription)

	return &domain.Exercise{
		Name:                 f.Name,
		Modality:             f.Modality,
		MovementPattern:      f.MovementPattern,
		PrimaryMuscles:       muscles,
		SecondaryMuscles:     []string{},
		BodyRegion:           tax.BodyRegion,
		EquipmentCategory:    category,
		EquipmentDetail:      detail,
		Difficulty:           f.Difficulty,
		ImpactLevel:          tax.ImpactLevel,
		Environment:          tax.Environment,
		GoalTags:             tax.GoalTags,
		LoggingOptions:       tax.LoggingOptions,
		Sets:                 rx.Sets,
		Reps:                 rx.Reps,
		RepsUpper:            rx.RepsUpper,
		DurationSeconds:      rx.DurationSeconds,
		DurationUpperSeconds: rx.DurationUpperSeconds,
		RestSeconds:          rx.RestSeconds,
		DefaultPrescription:  f.DefaultPrescription,
	}, nil
}

// CatalogLine is one parseable entry of a catalog text.
type CatalogLine struct {
	Number int // 1-based line number in the source text
	Text   string
}

// LineResult is the outcome of parsing one catalog line: exactly one of
// Exercise and Err is set.
type LineResult struct {
	LineNumber int
	Line       string
	Exercise   *domain.Exercise
	Err        error
}

// Accepted reports whether the line produced an exercise.
func (r LineResult) Accepted() bool {
	return r.Err == nil
}

// SplitCatalog breaks catalog text into lines, skipping blank lines and
// "#" comments. Line numbers refer to the original text.
func SplitCatalog(text string) []CatalogLine {
	var lines []CatalogLine
	for i, raw := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		lines = append(lines, CatalogLine{Number: i + 1, Text: strings.TrimRight(raw, "\r")})
	}
	return lines
}

// Parse parses a single catalog line into a LineResult.
func Parse(cl CatalogLine) LineResult {
	ex, err := ParseLine(cl.Text)
	return LineResult{
		LineNumber: cl.Number,
		Line:       cl.Text,
		Exercise:   ex,
		Err:        err,
	}
}

// ParseAll parses lines sequentially, keeping their order.
func ParseAll(lines []CatalogLine) []LineResult {
	results := make([]LineResult, len(lines))
	for i, cl := range lines {
		results[i] = Parse(cl)
	}
	return results
}
