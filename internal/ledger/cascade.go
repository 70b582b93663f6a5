package ledger

import (
	"errors"
	"fmt"

	"github.com/deanshub/fintrack/internal/models"
)

// ClearCategory reverts every transaction referencing the deleted
// category to uncategorized with the manual lock released, across all
// partitions. Each partition's cascade is independent: a failure on one
// month is recorded and the sweep continues. Returns the number of
// transactions reverted and any per-partition errors joined together.
func ClearCategory(store Store, categoryID string) (int, error) {
	months, err := store.ListTransactionMonths()
	if err != nil {
		return 0, fmt.Errorf("listing partitions: %w", err)
	}

	cleared := 0
	var errs []error
	for _, month := range months {
		txs, err := store.ReadTransactions(month)
		if err != nil {
			errs = append(errs, fmt.Errorf("partition %s: %w", month, err))
			continue
		}

		modified := false
		for i := range txs {
			if txs[i].CategoryID != nil && *txs[i].CategoryID == categoryID {
				txs[i].CategoryID = nil
				txs[i].CategoryManual = false
				modified = true
				cleared++
			}
		}
		if !modified {
			continue
		}
		if err := store.WriteTransactions(month, txs); err != nil {
			errs = append(errs, fmt.Errorf("partition %s: %w", month, err))
		}
	}

	return cleared, errors.Join(errs...)
}

// Recategorize re-runs the classifier over every partition, respecting
// manual locks, and rewrites only the months where assignments changed.
// Returns the number of transactions whose category changed.
func Recategorize(store Store, categories []models.Category) (int, error) {
	months, err := store.ListTransactionMonths()
	if err != nil {
		return 0, fmt.Errorf("listing partitions: %w", err)
	}

	changed := 0
	for _, month := range months {
		txs, err := store.ReadTransactions(month)
		if err != nil {
			return changed, fmt.Errorf("reading partition %s: %w", month, err)
		}

		updated := AutoCategorize(txs, categories)
		monthChanged := 0
		for i := range txs {
			if !sameCategory(txs[i].CategoryID, updated[i].CategoryID) {
				monthChanged++
			}
		}
		if monthChanged == 0 {
			continue
		}
		if err := store.WriteTransactions(month, updated); err != nil {
			return changed, fmt.Errorf("writing partition %s: %w", month, err)
		}
		changed += monthChanged
	}

	return changed, nil
}

func sameCategory(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
