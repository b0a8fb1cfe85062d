package statement

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"centsible/internal/finance"
)

// Rule files a transaction under Category when its text contains any keyword.
type Rule struct {
	Category finance.CategoryKey
	Keywords []string
}

// DefaultRules are checked in order, so more specific keywords come first.
var DefaultRules = []Rule{
	{finance.Dining, []string{"uber eats", "doordash", "deliveroo", "restaurant", "cafe", "coffee", "starbucks", "mcdonald", "pizza", "burger", "bistro"}},
	{finance.Groceries, []string{"grocery", "supermarket", "whole foods", "trader joe", "aldi", "lidl", "kroger", "safeway", "tesco", "carrefour", "migros", "coop"}},
	{finance.Transportation, []string{"uber", "lyft", "taxi", "shell", "chevron", "fuel", "parking", "transit", "railway", "metro", "airline"}},
	{finance.Utilities, []string{"electric", "energy", "water", "internet", "broadband", "comcast", "verizon", "vodafone", "telecom"}},
	{finance.Housing, []string{"rent", "mortgage", "landlord", "property"}},
	{finance.Healthcare, []string{"pharmacy", "apotheke", "cvs", "walgreens", "clinic", "dental", "hospital", "doctor"}},
	{finance.Insurance, []string{"insurance", "versicherung", "geico", "allianz"}},
	{finance.Entertainment, []string{"netflix", "spotify", "disney", "cinema", "theatre", "steam", "playstation"}},
	{finance.Education, []string{"tuition", "university", "school", "udemy", "coursera"}},
	{finance.Debt, []string{"loan", "credit card payment", "repayment"}},
	{finance.Personal, []string{"salon", "barber", "gym", "fitness", "amazon", "clothing"}},
}

// Categorizer maps free text to a category key.
type Categorizer struct {
	rules []Rule
}

// NewCategorizer returns a categorizer using rules, or DefaultRules when none are given.
func NewCategorizer(rules ...Rule) *Categorizer {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Categorizer{rules: rules}
}

// Categorize returns the first matching rule's category, or finance.Other.
func (c *Categorizer) Categorize(text string) finance.CategoryKey {
	lower := strings.ToLower(text)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if containsWord(lower, kw) {
				return r.Category
			}
		}
	}
	return finance.Other
}

// containsWord reports whether kw occurs in s at the start of a word, so
// "rent" matches "Rent May" but not "current account".
func containsWord(s, kw string) bool {
	for i := 0; i+len(kw) <= len(s); {
		j := strings.Index(s[i:], kw)
		if j < 0 {
			return false
		}
		at := i + j
		if at == 0 {
			return true
		}
		prev, _ := utf8.DecodeLastRuneInString(s[:at])
		if !unicode.IsLetter(prev) && !unicode.IsDigit(prev) {
			return true
		}
		i = at + 1
	}
	return false
}
