package models

import (
	"time"

	"github.com/leaselens/leaselens/pkg/types"
)

// OCRLine is one recognized text line with its engine confidence.
type OCRLine struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Clause is one sampled and analyzed lease clause.
type Clause struct {
	Number             int                  `json:"clause_number"`
	Text               string               `json:"clause_text"`
	Category           types.ClauseCategory `json:"category"`
	RiskLevel          types.RiskLevel      `json:"risk_level"`
	ChineseExplanation string               `json:"chinese_explanation"`
	AnalysisEN         string               `json:"analysis_en"`
	AnalysisZH         string               `json:"analysis_zh"`
	SuggestionEN       string               `json:"suggestion_en"`
	SuggestionZH       string               `json:"suggestion_zh"`
}

// KeyInfo is the flat key-term view shown in the report header. Fields that
// could not be extracted carry the literal "Not found"; downstream consumers
// compare against that value, so it must stay bit-exact.
type KeyInfo struct {
	RentAmount string `json:"rent_amount"`
	LeaseTerm  string `json:"lease_term"`
	StartDate  string `json:"start_date"`
	Landlord   string `json:"landlord"`
	Tenant     string `json:"tenant"`
}

// NotFound is the sentinel KeyInfo value for a missing field.
const NotFound = "Not found"

// Summary is the validated structured extraction of the lease. Every field is
// populated with a default after validation; none is ever partially missing.
type Summary struct {
	MonthlyRentAmount      *float64          `json:"monthly_rent_amount"`
	Currency               string            `json:"currency"`
	LeaseStartDate         string            `json:"lease_start_date,omitempty"`
	LeaseEndDate           string            `json:"lease_end_date,omitempty"`
	LeaseDurationMonths    *int              `json:"lease_duration_months"`
	SecurityDepositAmount  *float64          `json:"security_deposit_amount"`
	LandlordName           string            `json:"landlord_name,omitempty"`
	TenantName             string            `json:"tenant_name,omitempty"`
	LateFeeSummaryZH       string            `json:"late_fee_summary_zh"`
	EarlyTerminationRiskZH string            `json:"early_termination_risk_zh"`
	OverallRisk            types.OverallRisk `json:"overall_risk"`
}

// Analysis is one completed lease analysis. Created once per successful
// analyze call and immutable thereafter.
type Analysis struct {
	ID             string    `json:"analysis_id"`
	UserID         string    `json:"user_id"`
	FullText       string    `json:"full_text"`
	KeyInfo        KeyInfo   `json:"key_info"`
	Summary        Summary   `json:"summary"`
	Clauses        []Clause  `json:"clauses"`
	HighRisk       []Clause  `json:"high_risk_clauses"`
	Lines          []OCRLine `json:"lines"`
	PageCount      int       `json:"page_count"`
	ProcessingTime float64   `json:"processing_time"` // seconds, 2dp
	AIDuration     float64   `json:"ai_duration"`     // seconds spent in LLM calls
	CreatedAt      time.Time `json:"created_at"`
}
