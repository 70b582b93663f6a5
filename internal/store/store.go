// Package store persists the ledger as JSON files under a single data
// directory: one transaction array per month partition
// (transactions-YYYY-MM.json), plus categories.json and budgets.json.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/deanshub/fintrack/internal/models"
)

const (
	categoriesFile = "categories.json"
	budgetsFile    = "budgets.json"

	cacheTTL     = 5 * time.Minute
	cacheSweep   = 10 * time.Minute
	txnKeyPrefix = "transactions:"
)

var partitionFilePattern = regexp.MustCompile(`^transactions-(\d{4}-\d{2})\.json$`)

// FileStore reads and writes ledger files under a data directory. A
// single mutex serializes all access, giving single-writer-per-partition
// semantics within the process; reads are served from a small TTL cache.
type FileStore struct {
	dir   string
	mu    sync.Mutex
	cache *cache.Cache
}

// NewFileStore creates the data directory if needed and returns a store
// rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory %q: %w", dir, err)
	}
	return &FileStore{
		dir:   dir,
		cache: cache.New(cacheTTL, cacheSweep),
	}, nil
}

// Dir returns the data directory the store is rooted at.
func (s *FileStore) Dir() string {
	return s.dir
}

// ReadTransactions loads one month partition. A missing partition is an
// empty ledger, not an error.
func (s *FileStore) ReadTransactions(month string) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := txnKeyPrefix + month
	if cached, ok := s.cache.Get(key); ok {
		return cloneTransactions(cached.([]models.Transaction)), nil
	}

	var txs []models.Transaction
	if err := s.readJSON(partitionFilename(month), &txs); err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	s.cache.Set(key, cloneTransactions(txs), cache.DefaultExpiration)
	return txs, nil
}

// WriteTransactions persists one month partition and refreshes the cache.
func (s *FileStore) WriteTransactions(month string, txs []models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if txs == nil {
		txs = []models.Transaction{}
	}
	if err := s.writeJSON(partitionFilename(month), txs); err != nil {
		return err
	}
	s.cache.Set(txnKeyPrefix+month, cloneTransactions(txs), cache.DefaultExpiration)
	return nil
}

// ListTransactionMonths returns the partition keys present on disk,
// sorted ascending.
func (s *FileStore) ListTransactionMonths() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing data directory: %w", err)
	}

	var months []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if m := partitionFilePattern.FindStringSubmatch(entry.Name()); m != nil {
			months = append(months, m[1])
		}
	}
	sort.Strings(months)
	return months, nil
}

// ReadCategories loads the ordered category list.
func (s *FileStore) ReadCategories() ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var categories []models.Category
	if err := s.readJSON(categoriesFile, &categories); err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

// WriteCategories persists the ordered category list.
func (s *FileStore) WriteCategories(categories []models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if categories == nil {
		categories = []models.Category{}
	}
	return s.writeJSON(categoriesFile, categories)
}

// ReadBudgets loads the budget list.
func (s *FileStore) ReadBudgets() ([]models.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var budgets []models.Budget
	if err := s.readJSON(budgetsFile, &budgets); err != nil {
		return nil, err
	}
	if budgets == nil {
		budgets = []models.Budget{}
	}
	return budgets, nil
}

// WriteBudgets persists the budget list.
func (s *FileStore) WriteBudgets(budgets []models.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if budgets == nil {
		budgets = []models.Budget{}
	}
	return s.writeJSON(budgetsFile, budgets)
}

// SaveOriginal archives an uploaded statement under <dir>/original.
func (s *FileStore) SaveOriginal(filename string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	origDir := filepath.Join(s.dir, "original")
	if err := os.MkdirAll(origDir, 0o755); err != nil {
		return fmt.Errorf("creating originals directory: %w", err)
	}
	target := filepath.Join(origDir, filepath.Base(filename))
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("saving original %q: %w", filename, err)
	}
	return nil
}

func (s *FileStore) readJSON(filename string, v any) error {
	raw, err := os.ReadFile(filepath.Join(s.dir, filename))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding %s: %w", filename, err)
	}
	return nil
}

func (s *FileStore) writeJSON(filename string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filename, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, filename), raw, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	return nil
}

func partitionFilename(month string) string {
	return fmt.Sprintf("transactions-%s.json", month)
}

// cloneTransactions copies the slice so cache entries are never aliased
// by callers.
func cloneTransactions(txs []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, len(txs))
	copy(out, txs)
	return out
}
