package ledger

import (
	"fmt"
	"sort"

	"github.com/deanshub/fintrack/internal/models"
)

// Store is the persistence contract the merge pipeline needs. Partitions
// are keyed by YYYY-MM month; reads of an unknown month yield an empty
// slice. The store is responsible for serializing concurrent callers.
type Store interface {
	ReadTransactions(month string) ([]models.Transaction, error)
	WriteTransactions(month string, transactions []models.Transaction) error
	ListTransactionMonths() ([]string, error)
}

// NewTransaction is one incoming record headed for the ledger, either
// parsed from a statement or submitted directly.
type NewTransaction struct {
	Date        string                 `json:"date"`
	Amount      int64                  `json:"amount"`
	Description string                 `json:"description"`
	Source      string                 `json:"source"`
	Type        models.TransactionType `json:"type"`
}

// IngestResult reports what the merge pipeline did with a batch.
type IngestResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// FromConversion flattens a parsed statement into ingestible records, all
// carrying the statement's source identifier.
func FromConversion(result *models.ConversionResult) []NewTransaction {
	incoming := make([]NewTransaction, 0, len(result.Transactions))
	for _, tx := range result.Transactions {
		incoming = append(incoming, NewTransaction{
			Date:        tx.Date,
			Amount:      tx.Amount,
			Description: tx.Description,
			Source:      result.Source,
			Type:        tx.Type,
		})
	}
	return incoming
}

// Ingest merges incoming transactions into their month partitions.
//
// Each affected partition is loaded once. For every incoming record the
// content-addressed id is computed; records whose id already exists in
// the partition are counted as skipped, making re-ingestion of the same
// statement a safe no-op. New records are classified (category lock starts
// open) and appended. Every loaded partition is then persisted sorted by
// date descending, in month order.
//
// This is the only code path that creates transaction identities. It
// never touches the categories of records already in the ledger.
func Ingest(store Store, categories []models.Category, incoming []NewTransaction) (IngestResult, error) {
	var result IngestResult

	byMonth := make(map[string][]models.Transaction)
	ids := make(map[string]map[string]struct{})
	var months []string

	for _, tx := range incoming {
		month := monthOf(tx.Date)
		if _, ok := byMonth[month]; ok {
			continue
		}
		existing, err := store.ReadTransactions(month)
		if err != nil {
			return result, fmt.Errorf("reading partition %s: %w", month, err)
		}
		byMonth[month] = existing
		set := make(map[string]struct{}, len(existing))
		for _, t := range existing {
			set[t.ID] = struct{}{}
		}
		ids[month] = set
		months = append(months, month)
	}

	for _, tx := range incoming {
		month := monthOf(tx.Date)
		id := TransactionID(tx.Date, tx.Amount, tx.Description, tx.Source)

		if _, dup := ids[month][id]; dup {
			result.Skipped++
			continue
		}

		newTx := models.Transaction{
			ID:          id,
			Date:        tx.Date,
			Amount:      tx.Amount,
			Description: tx.Description,
			Source:      tx.Source,
			Type:        tx.Type,
		}
		categorized := AutoCategorize([]models.Transaction{newTx}, categories)
		byMonth[month] = append(byMonth[month], categorized[0])
		ids[month][id] = struct{}{}
		result.Added++
	}

	sort.Strings(months)
	for _, month := range months {
		txs := byMonth[month]
		sortByDateDesc(txs)
		if err := store.WriteTransactions(month, txs); err != nil {
			return result, fmt.Errorf("writing partition %s: %w", month, err)
		}
	}

	return result, nil
}

func monthOf(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

func sortByDateDesc(txs []models.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date > txs[j].Date
	})
}
