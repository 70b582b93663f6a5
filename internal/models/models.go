package models

// TransactionType tags a transaction as money in or money out.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Valid reports whether t is one of the known type tags.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction is a single persisted ledger entry. Amounts are integer
// agorot (minor currency units), never floats. The id is a content hash
// of (date, amount, description, source) and is immutable once assigned.
type Transaction struct {
	ID             string          `json:"id"`
	Date           string          `json:"date"` // YYYY-MM-DD
	Amount         int64           `json:"amount"`
	Description    string          `json:"description"`
	Source         string          `json:"source"`
	Type           TransactionType `json:"type"`
	CategoryID     *string         `json:"categoryId"`
	CategoryManual bool            `json:"categoryManual"`
}

// Month returns the YYYY-MM partition key this transaction belongs to.
func (t Transaction) Month() string {
	if len(t.Date) < 7 {
		return t.Date
	}
	return t.Date[:7]
}

// ParsedTransaction is the institution-agnostic output of a statement
// parser. It is ephemeral: validated, hashed and merged into the ledger
// immediately after parsing.
type ParsedTransaction struct {
	Date        string          `json:"date"` // YYYY-MM-DD
	Amount      int64           `json:"amount"`
	Description string          `json:"description"`
	Type        TransactionType `json:"type"`
}

// ConversionResult is what a statement parser produces for one document.
// Warnings are non-fatal line-level anomalies; an empty transaction list
// with a warning is a valid result, not an error.
type ConversionResult struct {
	Source       string              `json:"source"` // e.g. "isracard-5702", "hapoalim"
	Transactions []ParsedTransaction `json:"transactions"`
	Warnings     []string            `json:"warnings"`
}

// CategoryRule is a single keyword pattern, matched case-insensitively
// as a substring of a transaction description.
type CategoryRule struct {
	Keyword string `json:"keyword"`
}

// Category groups transactions. Rule order and category order are
// significant: the classifier takes the first match.
type Category struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Icon  string         `json:"icon"`
	Color string         `json:"color"`
	Rules []CategoryRule `json:"rules"`
}

// Budget holds spending limits for one month. Limits are stored and
// served as-is; tracking and alerting live elsewhere.
type Budget struct {
	Month          string           `json:"month"` // YYYY-MM
	GlobalLimit    *int64           `json:"globalLimit"`
	CategoryLimits map[string]int64 `json:"categoryLimits"`
}
