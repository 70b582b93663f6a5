// Package extractor turns statement PDF bytes into ordered per-page
// plain text. It does not correct bidirectional-text artifacts; that is
// the text normalizer's job.
package extractor

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ExtractPages reads a PDF document and returns the text content of each
// page, in order. It tries row-based extraction first (best layout
// preservation) and falls back to plain-text extraction when the result
// is not readable. Image-based or custom-font-encoded documents that
// yield no decodable text are reported as an extraction failure.
func ExtractPages(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}

	numPages := reader.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	pages = extractByRow(reader, numPages)
	if isReadableText(pages) {
		return pages, nil
	}

	pages = extractByPlainText(reader, numPages)
	if isReadableText(pages) {
		return pages, nil
	}

	return nil, fmt.Errorf("no readable text could be extracted; the document may be image-based or use custom font encodings")
}

// extractByRow reconstructs lines from positioned text rows.
func extractByRow(reader *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			line := strings.TrimSpace(strings.Join(parts, " "))
			if line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			pages = append(pages, strings.Join(lines, "\n"))
		}
	}
	return pages
}

// extractByPlainText uses the library's font-mapped plain text path.
func extractByPlainText(reader *pdf.Reader, numPages int) []string {
	fonts := make(map[string]*pdf.Font)
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text != "" {
			pages = append(pages, text)
		}
	}
	return pages
}

// textQuality returns the ratio of readable characters (Hebrew script,
// ASCII letters and digits, whitespace, common statement punctuation) to
// total characters.
func textQuality(pages []string) float64 {
	total, readable := 0, 0
	for _, page := range pages {
		for _, r := range page {
			total++
			switch {
			case r >= 0x0590 && r <= 0x05FF:
				readable++
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
				readable++
			case unicode.IsSpace(r):
				readable++
			case strings.ContainsRune(`.,-/:;()'"%&@#!?+=*₪$€`, r):
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// isReadableText checks that pages contain enough actual text and that
// it is not binary garbage from an undecodable font.
func isReadableText(pages []string) bool {
	totalLen := 0
	for _, p := range pages {
		totalLen += len(p)
	}
	if totalLen <= 50 {
		return false
	}
	return textQuality(pages) > 0.6
}
