package domain

import (
	"fmt"
	"strings"
)

const relPrefix = "REL "

// BuildDisplayMarking renders the banner for a label:
// CLASSIFICATION//COI1-COI2//REL A, B, C//CAVEAT1-CAVEAT2.
// The COI and caveat segments are omitted when empty; releasability
// keeps its input order.
func BuildDisplayMarking(label SecurityLabel) string {
	segments := []string{string(label.Classification)}
	if len(label.COI) > 0 {
		segments = append(segments, strings.Join(label.COI, "-"))
	}
	if len(label.ReleasabilityTo) > 0 {
		segments = append(segments, relPrefix+strings.Join(label.ReleasabilityTo, ", "))
	}
	if len(label.Caveats) > 0 {
		segments = append(segments, strings.Join(label.Caveats, "-"))
	}
	return strings.Join(segments, "//")
}

type ParsedMarking struct {
	Classification  Classification
	COI             []string
	ReleasabilityTo []string
	Caveats         []string
}

// ParseDisplayMarking reverses BuildDisplayMarking. Hyphenated community
// names (NATO-COSMIC) are indistinguishable from joined lists in banner
// form, so list segments come back split on every hyphen.
func ParseDisplayMarking(marking string) (ParsedMarking, error) {
	trimmed := strings.TrimSpace(marking)
	if trimmed == "" {
		return ParsedMarking{}, fmt.Errorf("%w: empty display marking", ErrUnknownClassification)
	}

	segments := strings.Split(trimmed, "//")
	classification, err := ParseClassification(segments[0])
	if err != nil {
		return ParsedMarking{}, err
	}
	parsed := ParsedMarking{Classification: classification}

	relIndex := -1
	for i := 1; i < len(segments); i++ {
		if strings.HasPrefix(strings.TrimSpace(segments[i]), relPrefix) {
			relIndex = i
			break
		}
	}

	if relIndex == -1 {
		if len(segments) > 1 {
			parsed.COI = splitHyphenList(segments[1])
		}
		if len(segments) > 2 {
			parsed.Caveats = splitHyphenList(segments[2])
		}
		return parsed, nil
	}

	if relIndex > 1 {
		parsed.COI = splitHyphenList(segments[1])
	}
	rel := strings.TrimPrefix(strings.TrimSpace(segments[relIndex]), relPrefix)
	for _, code := range strings.Split(rel, ",") {
		code = strings.TrimSpace(code)
		if code != "" {
			parsed.ReleasabilityTo = append(parsed.ReleasabilityTo, code)
		}
	}
	if relIndex+1 < len(segments) {
		parsed.Caveats = splitHyphenList(segments[relIndex+1])
	}
	return parsed, nil
}

func splitHyphenList(segment string) []string {
	parts := strings.Split(segment, "-")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
