package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var hebrewRunPattern = regexp.MustCompile(`[\x{0590}-\x{05FF}\s]+`)

// ReverseHebrewRuns reverses the character order inside each maximal run
// of Hebrew-script characters (and interior whitespace), leaving digits,
// Latin text and punctuation outside those runs untouched. PDF text
// extraction emits right-to-left script reversed relative to reading
// order while numbers and Latin substrings stay correctly ordered; a
// full-line reversal would corrupt amounts and dates.
//
// Whitespace at a run's boundary stays in place: only the span from the
// first to the last Hebrew character is reversed, so separators between
// a Hebrew word and an adjacent amount survive.
//
// Not idempotent: it assumes every Hebrew run in the input is reversed,
// so it must be applied exactly once, at the extraction boundary.
func ReverseHebrewRuns(text string) string {
	return hebrewRunPattern.ReplaceAllStringFunc(text, func(run string) string {
		start := strings.IndexFunc(run, isHebrew)
		if start == -1 {
			// Whitespace-only runs match the pattern too.
			return run
		}
		end := strings.LastIndexFunc(run, isHebrew)
		_, size := utf8.DecodeRuneInString(run[end:])
		end += size
		return run[:start] + reverseRunes(run[start:end]) + run[end:]
	})
}

func isHebrew(r rune) bool {
	return r >= 0x0590 && r <= 0x05FF
}

// Normalize prepares one extracted page for parsing: each line has
// whitespace runs collapsed to single spaces and is trimmed, and
// misordered Hebrew runs are repaired.
func Normalize(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = collapseSpaces(ReverseHebrewRuns(line))
	}
	return strings.Join(lines, "\n")
}

// collapseSpaces squeezes whitespace/tab runs to single spaces and trims.
func collapseSpaces(line string) string {
	return strings.Join(strings.Fields(line), " ")
}

func reverseRunes(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}
