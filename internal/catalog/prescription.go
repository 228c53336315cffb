package catalog

import (
	"alcyxob/fitness-catalog/internal/domain"
	"regexp"
	"strconv"
)

// The three extractors run independently over the same prescription text,
// so "3×12, rest 60s" also yields a 60 second duration from "60s".
var (
	setRepPattern   = regexp.MustCompile(`(\d+)×(\d+)(?:–(\d+))?`)
	durationPattern = regexp.MustCompile(`(\d+)–?(\d+)?\s*(min|s|sec)`)
	// No case folding: "Rest 90s" does not match.
	restPattern = regexp.MustCompile(`rest\s+(\d+)(?:–(\d+))?s?`)
)

// SetRep is a "<sets>×<reps>[–<repsUpper>]" prescription.
type SetRep struct {
	Sets      int
	Reps      int
	RepsUpper *int
}

// Duration is a "<value>[–<value2>] <unit>" prescription converted to seconds.
type Duration struct {
	Seconds      int
	UpperSeconds *int
}

// Prescription is everything the extractors found, with defaults applied.
type Prescription struct {
	Sets                 int
	Reps                 *int
	RepsUpper            *int
	DurationSeconds      *int
	DurationUpperSeconds *int
	RestSeconds          int
}

// ExtractSetRep finds the first "<sets>×<reps>[–<reps2>]" group.
func ExtractSetRep(p string) (SetRep, bool) {
	m := setRepPattern.FindStringSubmatch(p)
	if m == nil {
		return SetRep{}, false
	}
	sets, ok1 := atoi(m[1])
	reps, ok2 := atoi(m[2])
	if !ok1 || !ok2 {
		return SetRep{}, false
	}
	sr := SetRep{Sets: sets, Reps: reps}
	if upper, ok := atoi(m[3]); ok {
		sr.RepsUpper = &upper
	}
	return sr, true
}

// ExtractDuration uses the first number of a range ("20–30 min" is 1200s).
func ExtractDuration(p string) (Duration, bool) {
	m := durationPattern.FindStringSubmatch(p)
	if m == nil {
		return Duration{}, false
	}
	value, ok := atoi(m[1])
	if !ok {
		return Duration{}, false
	}
	scale := 1
	if m[3] == "min" {
		scale = 60
	}
	d := Duration{Seconds: value * scale}
	if upper, ok := atoi(m[2]); ok {
		upper *= scale
		d.UpperSeconds = &upper
	}
	return d, true
}

// ExtractRest returns the first number after "rest", in seconds.
func ExtractRest(p string) (int, bool) {
	m := restPattern.FindStringSubmatch(p)
	if m == nil {
		return 0, false
	}
	return atoi(m[1])
}

// ParsePrescription runs every extractor over p. Sets and rest fall back to
// domain.DefaultSets and domain.DefaultRestSeconds when absent.
func ParsePrescription(p string) Prescription {
	out := Prescription{
		Sets:        domain.DefaultSets,
		RestSeconds: domain.DefaultRestSeconds,
	}

	if sr, ok := ExtractSetRep(p); ok {
		out.Sets = sr.Sets
		out.Reps = &sr.Reps
		out.RepsUpper = sr.RepsUpper
	}
	if d, ok := ExtractDuration(p); ok {
		out.DurationSeconds = &d.Seconds
		out.DurationUpperSeconds = d.UpperSeconds
	}
	if rest, ok := ExtractRest(p); ok {
		out.RestSeconds = rest
	}
	return out
}

// atoi reports false for empty (unmatched optional group) or overflowing input.
func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
