package sampler

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/leaselens/leaselens/internal/models"
	"github.com/leaselens/leaselens/pkg/types"
)

var dateFragmentRe = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)

var currencyMarkers = []string{"$", "€", "£", "¥"}

// Terms that escalate a caution clause to the high-risk list.
var highRiskKeywords = []string{
	"rent", "fee", "deposit", "termination", "penalty", "late",
	"evict", "break", "cancel",
	"租金", "费用", "押金", "终止", "违约", "滞纳", "驱逐", "解约", "取消",
}

// FilterClauses drops noise fragments and splits out the high-risk subset.
// Both returned slices preserve input order; highRisk is a subset of kept.
func FilterClauses(clauses []models.Clause) (kept, highRisk []models.Clause) {
	kept = lo.Filter(clauses, func(c models.Clause, _ int) bool {
		return !isNoise(c.Text)
	})
	highRisk = lo.Filter(kept, func(c models.Clause, _ int) bool {
		return isHighRisk(c)
	})
	return kept, highRisk
}

// isNoise flags fragments under 15 characters unless they carry a digit, a
// currency marker or a date fragment. Short monetary and date lines are the
// most load-bearing parts of a lease and must never be dropped.
func isNoise(text string) bool {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) >= 15 {
		return false
	}
	if strings.ContainsFunc(trimmed, unicode.IsDigit) {
		return false
	}
	for _, marker := range currencyMarkers {
		if strings.Contains(trimmed, marker) {
			return false
		}
	}
	if dateFragmentRe.MatchString(trimmed) {
		return false
	}
	return true
}

// isHighRisk keeps every danger clause and any caution clause whose text
// names a money or termination term in either language.
func isHighRisk(c models.Clause) bool {
	switch c.RiskLevel {
	case types.RiskLevelDanger:
		return true
	case types.RiskLevelCaution:
		textLower := strings.ToLower(c.Text)
		for _, kw := range highRiskKeywords {
			if strings.Contains(textLower, kw) {
				return true
			}
		}
	}
	return false
}
