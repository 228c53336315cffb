// Package catalog turns human-authored exercise catalog lines into library records.
//
// A catalog line has the form
//
//	Name – modality | movementPattern | primaryMuscles | equipment[: detail] | difficulty | [prescription]
//
// where the first en dash separates the name from the attribute segments.
// Everything in this package is pure and safe for concurrent use.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// NameDelimiter is the en dash (U+2013), not an ASCII hyphen.
	NameDelimiter    = "–"
	SegmentDelimiter = "|"

	minSegments = 5
)

var (
	// ErrMalformedLine is matched by every parser rejection.
	ErrMalformedLine = errors.New("malformed catalog line")

	ErrMissingNameDelimiter = fmt.Errorf("%w: missing en dash between name and attributes", ErrMalformedLine)
	ErrTooFewSegments       = fmt.Errorf("%w: fewer than %d attribute segments", ErrMalformedLine, minSegments)
)

// Segments is a tokenized catalog line.
type Segments struct {
	Name       string
	Attributes []string // trimmed, in line order
}

// Tokenize splits a line into its name and trimmed attribute segments.
func Tokenize(line string) (Segments, error) {
	parts := strings.Split(line, NameDelimiter)
	if len(parts) < 2 {
		return Segments{}, ErrMissingNameDelimiter
	}

	// Descriptions may contain en dashes of their own ("12–15"); only the first one is structural.
	rest := strings.Join(parts[1:], NameDelimiter)

	attrs := strings.Split(rest, SegmentDelimiter)
	for i := range attrs {
		attrs[i] = strings.TrimSpace(attrs[i])
	}
	if len(attrs) < minSegments {
		return Segments{}, ErrTooFewSegments
	}

	return Segments{
		Name:       strings.TrimSpace(parts[0]),
		Attributes: attrs,
	}, nil
}
