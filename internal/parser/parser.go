package parser

import (
	"errors"
	"fmt"

	"github.com/deanshub/fintrack/internal/models"
)

// ErrUnrecognizedFormat is returned when no registered parser claims a
// filename. The document is rejected before any parsing is attempted.
var ErrUnrecognizedFormat = errors.New("unrecognized statement format")

// Parser converts normalized statement page text from one institution
// into a ConversionResult. Implementations must be deterministic and must
// report recoverable line-level anomalies as warnings, never as errors.
type Parser interface {
	// Name returns the human-readable institution name.
	Name() string
	// Matches reports whether this parser understands the given filename.
	Matches(filename string) bool
	// Parse takes normalized per-page text and the original filename
	// (used to derive the source identifier) and returns the parsed
	// transactions plus non-fatal warnings.
	Parse(pages []string, filename string) (*models.ConversionResult, error)
}

// registry is the ordered list of known statement formats. Detection is
// first-match-wins; adding an institution means appending one entry.
var registry = []Parser{
	&IsracardParser{},
	&HapoalimParser{},
}

// Detect returns the parser whose filename predicate matches, or
// ErrUnrecognizedFormat when none does.
func Detect(filename string) (Parser, error) {
	for _, p := range registry {
		if p.Matches(filename) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnrecognizedFormat, filename)
}
