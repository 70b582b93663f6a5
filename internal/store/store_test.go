package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/deanshub/fintrack/internal/models"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	return s
}

func TestFileStore_TransactionsRoundTrip(t *testing.T) {
	s := newTestStore(t)

	category := "groceries"
	txs := []models.Transaction{
		{ID: "abc123", Date: "2024-03-15", Amount: 10250, Description: "סופר מרקט", Source: "isracard-5702", Type: models.TypeExpense, CategoryID: &category},
		{ID: "def456", Date: "2024-03-01", Amount: 12345, Description: "SUPERMARKET X", Source: "hapoalim", Type: models.TypeExpense, CategoryManual: false},
	}

	if err := s.WriteTransactions("2024-03", txs); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := s.ReadTransactions("2024-03")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got, txs) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, txs)
	}
}

func TestFileStore_MissingPartitionIsEmpty(t *testing.T) {
	s := newTestStore(t)

	got, err := s.ReadTransactions("2030-01")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d transactions, want 0", len(got))
	}
}

func TestFileStore_ListTransactionMonths(t *testing.T) {
	s := newTestStore(t)

	for _, month := range []string{"2024-04", "2024-02", "2024-03"} {
		if err := s.WriteTransactions(month, []models.Transaction{}); err != nil {
			t.Fatalf("write %s: %v", month, err)
		}
	}
	// Unrelated files are ignored.
	if err := os.WriteFile(filepath.Join(s.Dir(), "categories.json"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	months, err := s.ListTransactionMonths()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"2024-02", "2024-03", "2024-04"}
	if !reflect.DeepEqual(months, want) {
		t.Errorf("got %v, want %v", months, want)
	}
}

func TestFileStore_CacheNotAliased(t *testing.T) {
	s := newTestStore(t)

	txs := []models.Transaction{{ID: "a", Date: "2024-03-01", Amount: 100, Description: "x", Source: "s", Type: models.TypeExpense}}
	if err := s.WriteTransactions("2024-03", txs); err != nil {
		t.Fatal(err)
	}

	first, _ := s.ReadTransactions("2024-03")
	first[0].Description = "mutated"

	second, _ := s.ReadTransactions("2024-03")
	if second[0].Description != "x" {
		t.Error("mutating a read result leaked into the cache")
	}
}

func TestFileStore_CategoriesRoundTrip(t *testing.T) {
	s := newTestStore(t)

	got, err := s.ReadCategories()
	if err != nil {
		t.Fatalf("read empty: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty category list, got %v", got)
	}

	categories := []models.Category{
		{ID: "groceries", Name: "Groceries", Icon: "cart", Color: "#00aa00", Rules: []models.CategoryRule{{Keyword: "super"}}},
		{ID: "other", Name: "Other", Icon: "dots", Color: "#888888", Rules: []models.CategoryRule{}},
	}
	if err := s.WriteCategories(categories); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err = s.ReadCategories()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got, categories) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, categories)
	}
}

func TestFileStore_BudgetsRoundTrip(t *testing.T) {
	s := newTestStore(t)

	limit := int64(500000)
	budgets := []models.Budget{
		{Month: "2024-03", GlobalLimit: &limit, CategoryLimits: map[string]int64{"groceries": 150000}},
		{Month: "2024-02", GlobalLimit: nil, CategoryLimits: map[string]int64{}},
	}
	if err := s.WriteBudgets(budgets); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := s.ReadBudgets()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got, budgets) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, budgets)
	}
}

func TestFileStore_SaveOriginal(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveOriginal("5702_20240315.pdf", []byte("%PDF-1.4 test")); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(s.Dir(), "original", "5702_20240315.pdf"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(raw) != "%PDF-1.4 test" {
		t.Errorf("content mismatch: %q", raw)
	}

	// Path components in the upload name must not escape the directory.
	if err := s.SaveOriginal("../evil.pdf", []byte("x")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "original", "evil.pdf")); err != nil {
		t.Errorf("expected sanitized filename inside originals dir: %v", err)
	}
}
