package ledger

import (
	"reflect"
	"sort"
	"testing"

	"github.com/deanshub/fintrack/internal/models"
)

// memStore is an in-memory Store for pipeline tests.
type memStore struct {
	partitions map[string][]models.Transaction
	writes     int
}

func newMemStore() *memStore {
	return &memStore{partitions: make(map[string][]models.Transaction)}
}

func (m *memStore) ReadTransactions(month string) ([]models.Transaction, error) {
	return append([]models.Transaction(nil), m.partitions[month]...), nil
}

func (m *memStore) WriteTransactions(month string, txs []models.Transaction) error {
	m.partitions[month] = append([]models.Transaction(nil), txs...)
	m.writes++
	return nil
}

func (m *memStore) ListTransactionMonths() ([]string, error) {
	months := make([]string, 0, len(m.partitions))
	for month := range m.partitions {
		months = append(months, month)
	}
	sort.Strings(months)
	return months, nil
}

func sampleBatch() []NewTransaction {
	return []NewTransaction{
		{Date: "2024-03-01", Amount: 12345, Description: "SUPERMARKET X", Source: "hapoalim", Type: models.TypeExpense},
		{Date: "2024-03-15", Amount: 3000, Description: "בית קפה", Source: "isracard-5702", Type: models.TypeExpense},
		{Date: "2024-04-02", Amount: 1000000, Description: "משכורת", Source: "hapoalim", Type: models.TypeIncome},
	}
}

func TestIngest_AddsAndClassifies(t *testing.T) {
	store := newMemStore()
	categories := []models.Category{
		{ID: "groceries", Rules: rules("supermarket")},
	}

	result, err := Ingest(store, categories, sampleBatch())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Added != 3 || result.Skipped != 0 {
		t.Fatalf("got %+v, want added=3 skipped=0", result)
	}

	march := store.partitions["2024-03"]
	if len(march) != 2 {
		t.Fatalf("march partition: got %d transactions, want 2", len(march))
	}
	april := store.partitions["2024-04"]
	if len(april) != 1 {
		t.Fatalf("april partition: got %d transactions, want 1", len(april))
	}

	for _, tx := range march {
		if tx.ID == "" {
			t.Errorf("transaction %q missing id", tx.Description)
		}
		if tx.CategoryManual {
			t.Errorf("new transaction %q should not be manually locked", tx.Description)
		}
		if tx.CategoryID == nil {
			t.Errorf("new transaction %q left unclassified", tx.Description)
		}
	}

	// "SUPERMARKET X" matches the groceries rule; the café falls back.
	byDesc := map[string]models.Transaction{}
	for _, tx := range march {
		byDesc[tx.Description] = tx
	}
	if got := *byDesc["SUPERMARKET X"].CategoryID; got != "groceries" {
		t.Errorf("classified category: got %q, want %q", got, "groceries")
	}
	if got := *byDesc["בית קפה"].CategoryID; got != FallbackCategoryID {
		t.Errorf("fallback category: got %q, want %q", got, FallbackCategoryID)
	}
}

func TestIngest_Idempotent(t *testing.T) {
	store := newMemStore()

	first, err := Ingest(store, nil, sampleBatch())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Added != 3 || first.Skipped != 0 {
		t.Fatalf("first ingestion: got %+v, want added=3 skipped=0", first)
	}

	before := map[string][]models.Transaction{}
	for month, txs := range store.partitions {
		before[month] = append([]models.Transaction(nil), txs...)
	}

	second, err := Ingest(store, nil, sampleBatch())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Added != 0 || second.Skipped != 3 {
		t.Fatalf("second ingestion: got %+v, want added=0 skipped=3", second)
	}

	if !reflect.DeepEqual(before, store.partitions) {
		t.Error("re-ingestion changed the stored ledger")
	}
}

func TestIngest_DuplicateWithinBatch(t *testing.T) {
	store := newMemStore()
	tx := NewTransaction{Date: "2024-03-01", Amount: 500, Description: "dup", Source: "s", Type: models.TypeExpense}

	result, err := Ingest(store, nil, []NewTransaction{tx, tx})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Added != 1 || result.Skipped != 1 {
		t.Errorf("got %+v, want added=1 skipped=1", result)
	}
}

func TestIngest_SameContentDifferentSource(t *testing.T) {
	store := newMemStore()
	a := NewTransaction{Date: "2024-03-01", Amount: 500, Description: "coffee", Source: "isracard-5702", Type: models.TypeExpense}
	b := a
	b.Source = "isracard-9999"

	result, err := Ingest(store, nil, []NewTransaction{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Added != 2 {
		t.Errorf("distinct sources must not collide: got %+v", result)
	}
}

func TestIngest_SortsPartitionDateDescending(t *testing.T) {
	store := newMemStore()
	batch := []NewTransaction{
		{Date: "2024-03-05", Amount: 100, Description: "middle", Source: "s", Type: models.TypeExpense},
		{Date: "2024-03-01", Amount: 100, Description: "oldest", Source: "s", Type: models.TypeExpense},
		{Date: "2024-03-30", Amount: 100, Description: "newest", Source: "s", Type: models.TypeExpense},
	}

	if _, err := Ingest(store, nil, batch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := store.partitions["2024-03"]
	dates := []string{got[0].Date, got[1].Date, got[2].Date}
	want := []string{"2024-03-30", "2024-03-05", "2024-03-01"}
	if !reflect.DeepEqual(dates, want) {
		t.Errorf("partition order: got %v, want %v", dates, want)
	}
}

func TestIngest_NeverTouchesExistingCategories(t *testing.T) {
	store := newMemStore()
	manual := "groceries"
	existing := models.Transaction{
		ID:             TransactionID("2024-03-01", 100, "existing", "s"),
		Date:           "2024-03-01",
		Amount:         100,
		Description:    "existing",
		Source:         "s",
		Type:           models.TypeExpense,
		CategoryID:     &manual,
		CategoryManual: true,
	}
	store.partitions["2024-03"] = []models.Transaction{existing}

	categories := []models.Category{{ID: "other-cat", Rules: rules("existing")}}
	batch := []NewTransaction{
		{Date: "2024-03-02", Amount: 200, Description: "new one", Source: "s", Type: models.TypeExpense},
	}
	if _, err := Ingest(store, categories, batch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, tx := range store.partitions["2024-03"] {
		if tx.ID == existing.ID {
			if tx.CategoryID == nil || *tx.CategoryID != "groceries" || !tx.CategoryManual {
				t.Errorf("existing transaction was mutated: %+v", tx)
			}
		}
	}
}
