package analysis

import (
	"context"
	"strings"
	"time"

	"github.com/leaselens/leaselens/pkg/types"
)

// MaxQuickClauseChars bounds the free preview input.
const MaxQuickClauseChars = 250

// quickHistoryLimit is how many recent previews are kept per user.
const quickHistoryLimit = 3

// QuickResult is one free clause preview. RiskLevel is the display scale
// (High/Medium/Low), not the internal safe/caution/danger scale.
type QuickResult struct {
	ClauseText    string `json:"clause_text"`
	RiskLevel     string `json:"risk_level"`
	ExplanationEN string `json:"explanation_en"`
	ExplanationZH string `json:"explanation_zh"`
	CreatedAt     string `json:"created_at"`
}

var quickHighRiskKeywords = []string{
	"tenant responsible for all",
	"regardless of fault",
	"waive any right",
	"landlord may enter at any time",
	"no refund",
	"tenant liable for",
	"cannot terminate",
	"automatic renewal",
}

var quickMediumRiskKeywords = []string{
	"late fee",
	"additional charges",
	"landlord discretion",
	"may be charged",
	"tenant must pay",
	"non-refundable",
}

// classifyQuickClause rates a single pasted clause by keyword rules alone.
// The free preview deliberately avoids a model call for the rating itself.
func classifyQuickClause(clauseText string) (risk types.RiskLevel, analysis, suggestion string) {
	textLower := strings.ToLower(clauseText)

	for _, kw := range quickHighRiskKeywords {
		if !strings.Contains(textLower, kw) {
			continue
		}
		switch {
		case strings.Contains(textLower, "all") &&
			(strings.Contains(textLower, "repair") || strings.Contains(textLower, "maintenance")):
			return types.RiskLevelDanger,
				"This clause shifts all maintenance responsibility to you, regardless of fault. This is unusual and potentially unfair.",
				"Request to limit your responsibility to damages caused by tenant negligence only. Standard leases don't make tenants responsible for normal wear and tear or structural issues."
		case strings.Contains(textLower, "enter") && strings.Contains(textLower, "any time"):
			return types.RiskLevelDanger,
				"This allows landlord unrestricted access to your apartment. Most jurisdictions require 24-48 hours notice except for emergencies.",
				"Request specific language: 'Landlord may enter with 24-48 hours written notice, except in emergencies.'"
		case strings.Contains(textLower, "waive"):
			return types.RiskLevelDanger,
				"Waiving rights can leave you without legal protection. This type of clause may not be enforceable in many states.",
				"Consult a local tenant rights organization before signing. You may not be able to legally waive certain rights."
		default:
			return types.RiskLevelDanger,
				"This clause contains language that may heavily favor landlord and limit your rights as a tenant.",
				"Have a lawyer review this specific clause before signing, or request it be removed or modified."
		}
	}

	for _, kw := range quickMediumRiskKeywords {
		if !strings.Contains(textLower, kw) {
			continue
		}
		switch {
		case strings.Contains(textLower, "late fee"):
			return types.RiskLevelCaution,
				"Late fees are common, but amounts should be reasonable. Check your state's laws on maximum late fee amounts.",
				"Ensure there's a grace period (typically 3-5 days) and that fee doesn't exceed state limits (often $50 or 5% of rent)."
		case strings.Contains(textLower, "non-refundable"):
			return types.RiskLevelCaution,
				"Non-refundable fees or deposits may not be legal in your state. Security deposits are typically refundable if you leave property in good condition.",
				"Clarify what this fee covers and check local laws. Consider negotiating to make it refundable."
		default:
			return types.RiskLevelCaution,
				"This clause may result in additional costs or give landlord significant discretion. Review carefully.",
				"Ask for specific dollar amounts instead of vague terms like 'additional charges' or 'as determined by landlord.'"
		}
	}

	return types.RiskLevelSafe,
		"This clause appears standard and doesn't contain obvious red flags. However, it's always good to read the full context.",
		"Continue reviewing the complete lease for a comprehensive understanding. Our full analysis can check all clauses together."
}

// shortExplanation condenses the rating into the one-liner shown in the
// preview card.
func shortExplanation(clauseText string, risk types.RiskLevel) string {
	textLower := strings.ToLower(clauseText)

	switch risk {
	case types.RiskLevelDanger:
		switch {
		case strings.Contains(textLower, "all") &&
			(strings.Contains(textLower, "repair") || strings.Contains(textLower, "maintenance")):
			return "This clause shifts most repair costs to the tenant, regardless of fault."
		case strings.Contains(textLower, "enter") && strings.Contains(textLower, "any time"):
			return "This allows landlord to enter your unit at any time without notice."
		case strings.Contains(textLower, "waive"):
			return "This asks you to give up important legal rights as a tenant."
		}
		return "This clause heavily favors the landlord and may limit your rights significantly."
	case types.RiskLevelCaution:
		switch {
		case strings.Contains(textLower, "late fee"):
			return "Late fees are included—check amounts against your state's legal limits."
		case strings.Contains(textLower, "non-refundable"):
			return "This fee may not be refundable—clarify what it covers."
		}
		return "This clause could lead to additional costs. Review the details carefully."
	}
	return "This clause appears standard and doesn't raise obvious concerns."
}

var quickRiskDisplay = map[types.RiskLevel]string{
	types.RiskLevelDanger:  "High",
	types.RiskLevelCaution: "Medium",
	types.RiskLevelSafe:    "Low",
}

// QuickAnalyze rates one short clause and records it in the user's preview
// history. The single model call is for the Chinese rendering only; a model
// failure just leaves that field empty.
func (s *Service) QuickAnalyze(ctx context.Context, userID, clauseText string) QuickResult {
	risk, _, _ := classifyQuickClause(clauseText)
	explanation := shortExplanation(clauseText, risk)
	chinese := s.sampler.ExplainOne(ctx, explanation)

	result := QuickResult{
		ClauseText:    clauseText,
		RiskLevel:     quickRiskDisplay[risk],
		ExplanationEN: explanation,
		ExplanationZH: chinese,
		CreatedAt:     time.Now().Format(time.RFC3339),
	}

	s.historyMu.Lock()
	s.history[userID] = append([]QuickResult{result}, s.history[userID]...)
	if len(s.history[userID]) > quickHistoryLimit {
		s.history[userID] = s.history[userID][:quickHistoryLimit]
	}
	s.historyMu.Unlock()

	s.log.Infow("quick clause preview", "user_id", userID, "risk", risk)
	return result
}

// QuickHistory returns the user's recent previews, newest first.
func (s *Service) QuickHistory(userID string) []QuickResult {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()
	history := s.history[userID]
	out := make([]QuickResult, len(history))
	copy(out, history)
	return out
}
