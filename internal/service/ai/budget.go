package ai

import (
	"fmt"
	"strings"

	"mutarjim/internal/model"
)

// exemplarFormat renders one pair as a two-line block plus a blank line.
const exemplarFormat = "English: %s\nArabic: %s\n\n"

// CostFunc measures the budget cost of a piece of prompt text.
type CostFunc func(text string) int

// WordCost counts whitespace-delimited words. Because block separators are
// whitespace, the cost of a concatenation equals the sum of its parts.
func WordCost(text string) int {
	return len(strings.Fields(text))
}

// ExemplarSet is the few-shot block chosen for a personal-style prompt.
type ExemplarSet struct {
	Block    string
	Accepted int
	Cost     int
}

// FormatExemplar renders a pair the way it appears in the prompt.
func FormatExemplar(pair model.ExemplarPair) string {
	return fmt.Sprintf(exemplarFormat, pair.SourceText, pair.Translation)
}

// SelectExemplars takes the longest prefix of pairs whose rendered block
// costs at most budget. Selection stops at the first pair that does not fit;
// later pairs are never considered, so the result depends only on order.
// Pairs with a blank side are skipped. Cost is measured on the whole block,
// since token counts are not additive across block boundaries.
func SelectExemplars(pairs []model.ExemplarPair, budget int, cost CostFunc) ExemplarSet {
	if cost == nil {
		cost = WordCost
	}

	var set ExemplarSet
	if budget <= 0 {
		return set
	}

	var sb strings.Builder
	for _, pair := range pairs {
		if strings.TrimSpace(pair.SourceText) == "" || strings.TrimSpace(pair.Translation) == "" {
			continue
		}
		block := FormatExemplar(pair)
		total := cost(sb.String() + block)
		if total > budget {
			break
		}
		sb.WriteString(block)
		set.Cost = total
		set.Accepted++
	}
	set.Block = sb.String()
	return set
}
