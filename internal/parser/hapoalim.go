package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/deanshub/fintrack/internal/models"
)

// HapoalimParser handles Bank Hapoalim current-account statements.
//
// Each record spans two lines: a primary line
//
//	DD/MM/YYYY <description> <amount> ₪<balance> ##
//
// followed within two lines by a bare column indicator: 1 means the
// amount sat in the credit column (income), 2 in the debit column
// (expense).
type HapoalimParser struct{}

const hapoalimSource = "hapoalim"

var (
	hapoalimFilenamePattern = regexp.MustCompile(`^current_account_operations`)
	// DD/MM/YYYY at the start of a line.
	hapoalimDatePattern = regexp.MustCompile(`^(\d{2}/\d{2}/\d{4})`)
	// Column header and account metadata lines to skip.
	hapoalimHeaderPattern = regexp.MustCompile(`תאריך\s+פעולה|תנועות בחשבון|תקופה|חשבון\s+סניף|שם חשבון`)
	// The balance is the rightmost ₪-prefixed amount on the line.
	balancePattern = regexp.MustCompile(`₪([\d,]+\.\d{2})\s*$`)
	// The charge amount immediately precedes the balance.
	trailingAmountPattern = regexp.MustCompile(`([\d,]+\.\d{2})\s*$`)
)

// typeIndicatorLookahead bounds the forward scan for the 1/2 indicator.
const typeIndicatorLookahead = 2

func (p *HapoalimParser) Name() string {
	return "Bank Hapoalim"
}

func (p *HapoalimParser) Matches(filename string) bool {
	return hapoalimFilenamePattern.MatchString(filename)
}

func (p *HapoalimParser) Parse(pages []string, filename string) (*models.ConversionResult, error) {
	result := &models.ConversionResult{
		Source:       hapoalimSource,
		Transactions: []models.ParsedTransaction{},
		Warnings:     []string{},
	}

	lines := strings.Split(strings.Join(pages, "\n"), "\n")

	for i, line := range lines {
		dateMatch := hapoalimDatePattern.FindStringSubmatch(line)
		if dateMatch == nil {
			continue
		}
		if hapoalimHeaderPattern.MatchString(line) {
			continue
		}

		// The column indicator sits on its own line shortly after the
		// primary line.
		typeIndicator := ""
		for j := i + 1; j <= i+typeIndicatorLookahead && j < len(lines); j++ {
			trimmed := strings.TrimSpace(lines[j])
			if trimmed == "1" || trimmed == "2" {
				typeIndicator = trimmed
				break
			}
		}
		if typeIndicator == "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped (no type indicator): %s", truncate(line, 80)))
			continue
		}

		date := parseLongDate(dateMatch[1])

		// Isolate the transaction segment: everything up to the trailing
		// ## marker.
		afterDate := strings.TrimSpace(line[len(dateMatch[0]):])
		txPart := afterDate
		if hashIdx := strings.Index(afterDate, "##"); hashIdx != -1 {
			txPart = strings.TrimSpace(afterDate[:hashIdx])
		}

		balanceMatch := balancePattern.FindStringSubmatch(txPart)
		if balanceMatch == nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped (no balance): %s", truncate(line, 80)))
			continue
		}

		beforeBalance := strings.TrimSpace(txPart[:strings.LastIndex(txPart, "₪")])
		amountMatch := trailingAmountPattern.FindStringSubmatch(beforeBalance)
		if amountMatch == nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped (no amount): %s", truncate(line, 80)))
			continue
		}

		amount, err := parseAmount(amountMatch[1])
		if err != nil || amount <= 0 {
			continue
		}

		description := strings.TrimSpace(beforeBalance[:strings.LastIndex(beforeBalance, amountMatch[1])])
		if description == "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped (no description): %s", truncate(line, 80)))
			continue
		}

		txnType := models.TypeExpense
		if typeIndicator == "1" {
			txnType = models.TypeIncome
		}

		result.Transactions = append(result.Transactions, models.ParsedTransaction{
			Date:        date,
			Amount:      amount,
			Description: description,
			Type:        txnType,
		})
	}

	if len(result.Transactions) == 0 {
		result.Warnings = append(result.Warnings, "No transactions found in document")
	}

	return result, nil
}

// parseLongDate converts DD/MM/YYYY to ISO YYYY-MM-DD.
func parseLongDate(ddmmyyyy string) string {
	parts := strings.Split(ddmmyyyy, "/")
	return parts[2] + "-" + parts[1] + "-" + parts[0]
}
