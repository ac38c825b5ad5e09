package domain

import (
	"fmt"
	"strings"
)

type Classification string

const (
	ClassificationUnclassified Classification = "UNCLASSIFIED"
	ClassificationConfidential Classification = "CONFIDENTIAL"
	ClassificationSecret       Classification = "SECRET"
	ClassificationTopSecret    Classification = "TOP_SECRET"
)

var classificationRank = map[Classification]int{
	ClassificationUnclassified: 0,
	ClassificationConfidential: 1,
	ClassificationSecret:       2,
	ClassificationTopSecret:    3,
}

func (c Classification) Known() bool {
	_, ok := classificationRank[c]
	return ok
}

// Rank orders known levels ascending; unknown tokens rank below UNCLASSIFIED.
func (c Classification) Rank() int {
	rank, ok := classificationRank[c]
	if !ok {
		return -1
	}
	return rank
}

func CompareClassification(a, b Classification) int {
	ra, rb := a.Rank(), b.Rank()
	if ra < rb {
		return -1
	}
	if ra > rb {
		return 1
	}
	return 0
}

// ParseClassification accepts banner and storage variants ("TOP SECRET",
// "TOP_SECRET", "TS") and returns the normalized token.
func ParseClassification(s string) (Classification, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	switch normalized {
	case "UNCLASSIFIED", "U":
		return ClassificationUnclassified, nil
	case "CONFIDENTIAL", "C":
		return ClassificationConfidential, nil
	case "SECRET", "S":
		return ClassificationSecret, nil
	case "TOP_SECRET", "TOPSECRET", "TS":
		return ClassificationTopSecret, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownClassification, s)
	}
}
