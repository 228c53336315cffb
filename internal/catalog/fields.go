package catalog

import (
	"regexp"
	"strings"
)

// Positions of the attribute segments.
const (
	segModality = iota
	segMovementPattern
	segPrimaryMuscles
	segEquipment
	segDifficulty
	segPrescription
)

var muscleSeparator = regexp.MustCompile(`[/,]`)

// Fields are the named attribute segments of a catalog line, still free text.
type Fields struct {
	Name                string
	Modality            string
	MovementPattern     string
	PrimaryMusclesRaw   string
	EquipmentRaw        string
	Difficulty          string
	DefaultPrescription string
}

// AssignFields maps tokenized segments to fields by position.
// Segments past the prescription are ignored.
func AssignFields(seg Segments) Fields {
	f := Fields{
		Name:              seg.Name,
		Modality:          seg.Attributes[segModality],
		MovementPattern:   seg.Attributes[segMovementPattern],
		PrimaryMusclesRaw: seg.Attributes[segPrimaryMuscles],
		EquipmentRaw:      seg.Attributes[segEquipment],
		Difficulty:        seg.Attributes[segDifficulty],
	}
	if len(seg.Attributes) > segPrescription {
		f.DefaultPrescription = seg.Attributes[segPrescription]
	}
	return f
}

// SplitMuscles splits a muscle list on "/" or ",". Order and case are kept
// and duplicates are not removed.
func SplitMuscles(raw string) []string {
	muscles := muscleSeparator.Split(raw, -1)
	for i := range muscles {
		muscles[i] = strings.TrimSpace(muscles[i])
	}
	return muscles
}

// SplitEquipment separates "machine: Leg Press" into category and detail.
// Without a colon the raw value is the category and detail is nil.
func SplitEquipment(raw string) (string, *string) {
	category, detail, found := strings.Cut(raw, ":")
	if !found {
		return raw, nil
	}
	detail = strings.TrimSpace(detail)
	return strings.TrimSpace(category), &detail
}
