// Package receipt extracts a suggested transaction from OCR'd receipt text.
// Nothing is persisted; the client confirms the suggestion through the
// regular transaction endpoint.
package receipt

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"centsible/internal/finance"
	"centsible/internal/statement"
)

// ErrNoTotal is returned when no amount can be found in the text.
var ErrNoTotal = errors.New("receipt: no total found")

// Suggestion is the parsed receipt.
type Suggestion struct {
	Merchant string              `json:"merchant"`
	Total    int64               `json:"total"`
	Date     *time.Time          `json:"date,omitempty"`
	Category finance.CategoryKey `json:"category"`
}

var (
	amountRe   = regexp.MustCompile(`(\d{1,3}(?:[,.]\d{3})*|\d+)[.,](\d{2})\b`)
	totalRe    = regexp.MustCompile(`(?i)\b(grand\s+total|total\s+due|amount\s+due|balance\s+due|total)\b`)
	subtotalRe = regexp.MustCompile(`(?i)\b(sub\s*-?\s*total|tax|tip|change|cash|tendered)\b`)

	dateLayouts = []struct {
		re     *regexp.Regexp
		layout string
	}{
		{regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`), "2006-01-02"},
		{regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`), "1/2/2006"},
		{regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2}\b`), "1/2/06"},
		{regexp.MustCompile(`\b\d{1,2}\.\d{1,2}\.\d{4}\b`), "2.1.2006"},
	}
)

// Parser turns receipt text into a Suggestion.
type Parser struct {
	categorizer *statement.Categorizer
}

// NewParser returns a parser categorizing merchants with c, or the default
// keyword rules when c is nil.
func NewParser(c *statement.Categorizer) *Parser {
	if c == nil {
		c = statement.NewCategorizer()
	}
	return &Parser{categorizer: c}
}

// Parse reads merchant, total, date and a category from text.
func (p *Parser) Parse(text string) (*Suggestion, error) {
	lines := splitLines(text)

	total, ok := findTotal(lines)
	if !ok {
		return nil, ErrNoTotal
	}

	s := &Suggestion{
		Merchant: findMerchant(lines),
		Total:    total,
		Date:     findDate(lines),
	}
	s.Category = p.categorizer.Categorize(s.Merchant + " " + text)
	return s, nil
}

func splitLines(text string) []string {
	var out []string
	for _, l := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// findMerchant takes the first line that carries letters and no amount.
func findMerchant(lines []string) string {
	for _, l := range lines {
		if amountRe.MatchString(l) || !hasLetter(l) {
			continue
		}
		return l
	}
	return ""
}

// findTotal prefers the last amount on a "total" line and otherwise falls
// back to the largest amount on the receipt.
func findTotal(lines []string) (int64, bool) {
	var labelled int64
	var found bool
	var largest int64
	for _, l := range lines {
		amounts := amountsIn(l)
		if len(amounts) == 0 {
			continue
		}
		last := amounts[len(amounts)-1]
		if totalRe.MatchString(l) && !subtotalRe.MatchString(l) {
			labelled, found = last, true
		}
		for _, a := range amounts {
			if a > largest {
				largest = a
			}
		}
	}
	if found {
		return labelled, true
	}
	return largest, largest > 0
}

func amountsIn(line string) []int64 {
	for _, dl := range dateLayouts {
		line = dl.re.ReplaceAllString(line, " ")
	}
	var out []int64
	for _, m := range amountRe.FindAllStringSubmatch(line, -1) {
		whole := strings.NewReplacer(",", "", ".", "").Replace(m[1])
		d, err := decimal.NewFromString(whole + "." + m[2])
		if err != nil {
			continue
		}
		out = append(out, d.Shift(2).IntPart())
	}
	return out
}

func findDate(lines []string) *time.Time {
	for _, l := range lines {
		for _, dl := range dateLayouts {
			m := dl.re.FindString(l)
			if m == "" {
				continue
			}
			if t, err := time.Parse(dl.layout, m); err == nil {
				return &t
			}
		}
	}
	return nil
}

func hasLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}
