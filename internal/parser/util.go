package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// amountPattern matches monetary tokens like 69.90 or 1,234.56 (always
// exactly two decimal places on these statements).
var amountPattern = regexp.MustCompile(`\d[\d,]*\.\d{2}`)

// parseAmount converts an amount token like "1,234.56" to integer agorot
// (123456). Parsing the integer and fraction parts separately keeps the
// conversion exact without going through a float.
func parseAmount(raw string) (int64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	whole, frac, ok := strings.Cut(s, ".")
	if !ok || len(frac) != 2 {
		return 0, fmt.Errorf("malformed amount %q", raw)
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed amount %q: %w", raw, err)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed amount %q: %w", raw, err)
	}
	return w*100 + f, nil
}

// truncate shortens a line for warning messages without splitting a
// multi-byte rune.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
