package ledger

import (
	"fmt"

	"github.com/deanshub/fintrack/internal/extractor"
	"github.com/deanshub/fintrack/internal/models"
	"github.com/deanshub/fintrack/internal/parser"
)

// ConvertDocument runs one statement through the conversion pipeline:
// detect the format from the filename, extract per-page text, normalize
// it (whitespace plus RTL-run repair, applied exactly once), parse, and
// validate the result. Any failure here is fatal for the document;
// nothing has been persisted yet.
func ConvertDocument(data []byte, filename string) (*models.ConversionResult, error) {
	p, err := parser.Detect(filename)
	if err != nil {
		return nil, err
	}

	pages, err := extractor.ExtractPages(data)
	if err != nil {
		return nil, fmt.Errorf("text extraction failed: %w", err)
	}
	for i, page := range pages {
		pages[i] = parser.Normalize(page)
	}

	result, err := p.Parse(pages, filename)
	if err != nil {
		return nil, fmt.Errorf("parsing %s statement: %w", p.Name(), err)
	}

	if err := parser.ValidateResult(result); err != nil {
		return nil, err
	}
	return result, nil
}
