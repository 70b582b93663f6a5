package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/deanshub/fintrack/internal/models"
)

// IsracardParser handles Isracard credit-card statements.
//
// The statement has up to two transaction sections: foreign purchases and
// domestic charges. Each record starts at a line with a leading DD/MM/YY
// date token; business names and amounts frequently spill onto following
// lines, which are folded into the record until a boundary marker.
type IsracardParser struct{}

// Statement filenames look like 5702_20240315.pdf: the 4-digit card
// suffix, an underscore and the statement date.
var isracardFilenamePattern = regexp.MustCompile(`^(\d{4})_\d{8}\.pdf$`)

var (
	// DD/MM/YY at the start of a line.
	isracardDatePattern = regexp.MustCompile(`^(\d{2}/\d{2}/\d{2})`)
	// Section headers: foreign purchases and domestic charges.
	foreignHeaderPattern  = regexp.MustCompile(`רכישות\s*בחו"ל`)
	domesticHeaderPattern = regexp.MustCompile(`עסקות\s*שחויבו`)
	// Totals line.
	totalsPattern = regexp.MustCompile(`סה"כ`)
	// Page footer ("page N of M").
	pageFooterPattern = regexp.MustCompile(`עמוד\s+\d+\s+מתוך`)
	// Fee-detail line in the foreign section.
	feeLinePattern = regexp.MustCompile(`^\*\*`)
	// Credit/refund indicator.
	creditPattern = regexp.MustCompile(`זיכוי`)
)

// paymentMethodPrefixes are stripped from the front of descriptions.
var paymentMethodPrefixes = []string{"תש . נייד", "לא הוצג", "ה. קבע"}

// maxAdLineLen is the continuation cutoff for promotional text: a folded
// line longer than this (in runes) that contains no amount token ends the
// record instead of joining it.
const maxAdLineLen = 100

type isracardSection int

const (
	sectionForeign isracardSection = iota
	sectionDomestic
)

func (p *IsracardParser) Name() string {
	return "Isracard"
}

func (p *IsracardParser) Matches(filename string) bool {
	return isracardFilenamePattern.MatchString(filename)
}

func (p *IsracardParser) Parse(pages []string, filename string) (*models.ConversionResult, error) {
	result := &models.ConversionResult{
		Source:   isracardSource(filename),
		Warnings: []string{},
	}

	lines := strings.Split(strings.Join(pages, "\n"), "\n")

	// Locate section boundaries. Either, both, or neither may be present.
	foreignStart, domesticStart := -1, -1
	for i, line := range lines {
		if foreignStart == -1 && foreignHeaderPattern.MatchString(line) {
			foreignStart = i
		}
		if domesticStart == -1 && domesticHeaderPattern.MatchString(line) {
			domesticStart = i
		}
	}

	if foreignStart != -1 {
		end := len(lines)
		if domesticStart != -1 {
			end = domesticStart
		}
		txns := p.parseSection(lines[foreignStart+1:end], sectionForeign, result)
		result.Transactions = append(result.Transactions, txns...)
	}

	// The domestic section may continue across page breaks, so it runs to
	// the end of the document.
	if domesticStart != -1 {
		txns := p.parseSection(lines[domesticStart+1:], sectionDomestic, result)
		result.Transactions = append(result.Transactions, txns...)
	}

	if len(result.Transactions) == 0 {
		result.Warnings = append(result.Warnings, "No transactions found in document")
	}
	if result.Transactions == nil {
		result.Transactions = []models.ParsedTransaction{}
	}

	return result, nil
}

// parseSection walks the lines of one section, folding continuation lines
// into each date-led record and extracting a transaction from it.
func (p *IsracardParser) parseSection(lines []string, section isracardSection, result *models.ConversionResult) []models.ParsedTransaction {
	var transactions []models.ParsedTransaction

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		dateMatch := isracardDatePattern.FindStringSubmatch(line)
		if dateMatch == nil {
			continue
		}
		if totalsPattern.MatchString(line) || pageFooterPattern.MatchString(line) {
			continue
		}

		// Fold continuation lines until a record boundary.
		record := line
		for i+1 < len(lines) {
			next := lines[i+1]
			if next == "" || isracardDatePattern.MatchString(next) ||
				totalsPattern.MatchString(next) || pageFooterPattern.MatchString(next) ||
				feeLinePattern.MatchString(next) {
				break
			}
			if utf8.RuneCountInString(next) > maxAdLineLen && !amountPattern.MatchString(next) {
				break
			}
			record += " " + next
			i++
		}

		date := parseShortDate(dateMatch[1])
		amounts := amountPattern.FindAllString(record, -1)
		if len(amounts) == 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped line (no amounts): %s", truncate(record, 80)))
			continue
		}

		// Foreign: the NIS charge is the last amount, after the original
		// amount and the conversion fee. Domestic: the charge is the
		// second amount; the first is the original, pre-fee amount.
		var chargeRaw string
		if section == sectionForeign {
			chargeRaw = amounts[len(amounts)-1]
		} else if len(amounts) >= 2 {
			chargeRaw = amounts[1]
		} else {
			chargeRaw = amounts[0]
		}
		amount, err := parseAmount(chargeRaw)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped line (bad amount): %s", truncate(record, 80)))
			continue
		}
		if amount <= 0 {
			continue
		}

		// Description is the text between the date token and the first
		// amount token.
		firstAmountIdx := strings.Index(record, amounts[0])
		description := cleanDescription(record[len(dateMatch[0]):firstAmountIdx])
		if description == "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped line (no description): %s", truncate(record, 80)))
			continue
		}

		txnType := models.TypeExpense
		if creditPattern.MatchString(record) {
			txnType = models.TypeIncome
		}

		transactions = append(transactions, models.ParsedTransaction{
			Date:        date,
			Amount:      amount,
			Description: description,
			Type:        txnType,
		})
	}

	return transactions
}

// cleanDescription strips a leading payment-method prefix and squeezes
// whitespace.
func cleanDescription(text string) string {
	desc := strings.TrimSpace(text)
	for _, prefix := range paymentMethodPrefixes {
		if strings.HasPrefix(desc, prefix) {
			desc = desc[len(prefix):]
			break
		}
	}
	return collapseSpaces(desc)
}

// parseShortDate converts DD/MM/YY to ISO YYYY-MM-DD. Two-digit years 50
// and above are read as 19xx, the rest as 20xx.
func parseShortDate(ddmmyy string) string {
	parts := strings.Split(ddmmyy, "/")
	year, _ := strconv.Atoi(parts[2])
	if year >= 50 {
		year += 1900
	} else {
		year += 2000
	}
	return fmt.Sprintf("%04d-%s-%s", year, parts[1], parts[0])
}

// isracardSource derives the source identifier from the filename,
// encoding the card-number suffix so statements of different cards never
// collide in the identity space.
func isracardSource(filename string) string {
	m := isracardFilenamePattern.FindStringSubmatch(filename)
	if m == nil {
		return "isracard-unknown"
	}
	return "isracard-" + m[1]
}
