package sampler

import (
	"strings"
	"unicode/utf8"

	"github.com/leaselens/leaselens/pkg/types"
)

// Header-like fragments that usually carry no negotiable terms.
var metaPatterns = []string{
	"--- page",
	"sample rental agreement",
	"residential lease agreement",
	"this agreement made this",
	"this lease agreement",
	"between the parties",
	"landlord:",
	"tenant:",
	"lessee:",
	"lessor:",
	"date:",
	"property address:",
	"page ",
	"section",
}

// Economic and legal terms that mark a clause as substantive.
var coreTermKeywords = []string{
	"rent",
	"deposit",
	"security deposit",
	"late fee",
	"term",
	"lease term",
	"utilities",
	"maintenance",
	"repair",
	"termination",
	"eviction",
	"sublet",
	"sublease",
	"pet",
	"guest",
	"occupant",
	"parking",
	"insurance",
	"entry",
	"access",
	"notice",
	"renewal",
	"break lease",
	"early termination",
	"grace period",
	"payment",
	"monthly",
	"annual",
	"yearly",
	"prorate",
	"pro-rate",
}

// Classify buckets a clause as meta (headers, party blocks, page markers),
// core_term (economic or legal substance) or other.
func Classify(clauseText string) types.ClauseCategory {
	textLower := strings.ToLower(clauseText)
	trimmed := strings.TrimSpace(clauseText)
	length := utf8.RuneCountInString(clauseText)

	for _, pattern := range metaPatterns {
		if !strings.Contains(textLower, pattern) {
			continue
		}
		if length < 50 && (strings.HasPrefix(trimmed, "---") ||
			strings.Contains(textLower, "page") ||
			strings.HasSuffix(trimmed, ":")) {
			return types.ClauseCategoryMeta
		}
		if length < 100 &&
			(strings.Contains(textLower, "agreement") ||
				strings.Contains(textLower, "lease") ||
				strings.Contains(textLower, "contract")) {
			return types.ClauseCategoryMeta
		}
	}

	for _, keyword := range coreTermKeywords {
		if strings.Contains(textLower, keyword) {
			return types.ClauseCategoryCoreTerm
		}
	}

	return types.ClauseCategoryOther
}
