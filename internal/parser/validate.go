package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/deanshub/fintrack/internal/models"
)

// ValidationError carries the full list of structural violations found in
// a ConversionResult. A result failing validation is rejected wholesale;
// a single malformed record could otherwise corrupt deduplication.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid conversion result: %s", strings.Join(e.Violations, "; "))
}

// ValidateResult enforces the structural contract of a parser's output
// before anything downstream trusts it. It returns a *ValidationError
// listing every violation, or nil when the result is well-formed.
func ValidateResult(result *models.ConversionResult) error {
	var violations []string

	if result.Source == "" {
		violations = append(violations, "source is empty")
	}

	for i, tx := range result.Transactions {
		if _, err := time.Parse("2006-01-02", tx.Date); err != nil {
			violations = append(violations, fmt.Sprintf("transaction %d: invalid date %q", i, tx.Date))
		}
		if tx.Amount <= 0 {
			violations = append(violations, fmt.Sprintf("transaction %d: amount must be positive, got %d", i, tx.Amount))
		}
		if tx.Description == "" {
			violations = append(violations, fmt.Sprintf("transaction %d: description is empty", i))
		}
		if !tx.Type.Valid() {
			violations = append(violations, fmt.Sprintf("transaction %d: unknown type %q", i, tx.Type))
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}
