package services

import (
	"strings"
	"unicode"

	"github.com/SscSPs/pricing_engine/internal/core/domain"
)

// DefaultDescriptionMatchThreshold is the minimum score a description match needs.
const DefaultDescriptionMatchThreshold = 0.5

// tokenize lower-cases s and splits it on anything that is not a letter or digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// descriptionSimilarity scores two descriptions in [0, 1].
//
// The base score is the Jaccard index of the token sets. When the token
// sequence of one description appears whole inside the other ("backend dev"
// in "senior backend dev hours") the score is lifted to
// 0.5 + 0.5*len(shorter)/len(longer).
func descriptionSimilarity(a, b string) float64 {
	ta, tb := tokenize(a), tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	sa, sb := tokenSet(ta), tokenSet(tb)
	inter := 0
	for t := range sa {
		if _, ok := sb[t]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	score := float64(inter) / float64(union)

	shorter, longer := ta, tb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	joinedShort := " " + strings.Join(shorter, " ") + " "
	joinedLong := " " + strings.Join(longer, " ") + " "
	if strings.Contains(joinedLong, joinedShort) {
		contained := 0.5 + 0.5*float64(len(shorter))/float64(len(longer))
		if contained > score {
			score = contained
		}
	}
	return score
}

// bestDescriptionMatch returns the highest scoring item at or above threshold.
// Ties go to the most recently created item, then the smallest ID.
func bestDescriptionMatch(description string, items []domain.RateCardItem, threshold float64) (*domain.RateCardItem, float64) {
	var best *domain.RateCardItem
	bestScore := 0.0
	for i := range items {
		item := &items[i]
		score := descriptionSimilarity(description, item.Description)
		if score < threshold {
			continue
		}
		if best == nil || score > bestScore || (score == bestScore && newerItem(item, best)) {
			best, bestScore = item, score
		}
	}
	return best, bestScore
}

// newerItem is the deterministic tie-break between two items: most recent
// CreatedAt first, then lexicographically smallest ID.
func newerItem(a, b *domain.RateCardItem) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.RateCardItemID < b.RateCardItemID
}
