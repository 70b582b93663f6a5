package ledger

import (
	"strings"

	"github.com/deanshub/fintrack/internal/models"
)

// FallbackCategoryID is assigned when no keyword rule matches. A
// transaction that is not manually locked is never left unclassified.
const FallbackCategoryID = "other"

// AutoCategorize assigns a category to each transaction by scanning its
// description for the first matching keyword, in category order then
// rule order. First match wins; a catch-all category should be ordered
// last. Transactions with CategoryManual set pass through unchanged.
//
// The input slice is not mutated; a new slice is returned.
func AutoCategorize(transactions []models.Transaction, categories []models.Category) []models.Transaction {
	out := make([]models.Transaction, len(transactions))
	for i, tx := range transactions {
		out[i] = categorizeOne(tx, categories)
	}
	return out
}

func categorizeOne(tx models.Transaction, categories []models.Category) models.Transaction {
	if tx.CategoryManual {
		return tx
	}

	descLower := strings.ToLower(tx.Description)
	for _, cat := range categories {
		for _, rule := range cat.Rules {
			if rule.Keyword == "" {
				continue
			}
			if strings.Contains(descLower, strings.ToLower(rule.Keyword)) {
				id := cat.ID
				tx.CategoryID = &id
				return tx
			}
		}
	}

	fallback := FallbackCategoryID
	tx.CategoryID = &fallback
	return tx
}
