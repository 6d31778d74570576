package types

// TransactionStatus tracks the payment lifecycle of a checkout.
// Transitions are one-way: pending -> completed | failed, completed -> refunded.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusRefunded  TransactionStatus = "refunded"
)

// RiskLevel is the per-clause risk classification.
type RiskLevel string

const (
	RiskLevelSafe    RiskLevel = "safe"
	RiskLevelCaution RiskLevel = "caution"
	RiskLevelDanger  RiskLevel = "danger"
)

// ClauseCategory buckets a sampled clause by its structural role.
type ClauseCategory string

const (
	ClauseCategoryMeta     ClauseCategory = "meta"
	ClauseCategoryCoreTerm ClauseCategory = "core_term"
	ClauseCategoryOther    ClauseCategory = "other"
)

// OverallRisk is the document-level risk rating of a lease summary.
type OverallRisk string

const (
	OverallRiskLow    OverallRisk = "low"
	OverallRiskMedium OverallRisk = "medium"
	OverallRiskHigh   OverallRisk = "high"
)

// ParseOverallRisk coerces arbitrary input to a valid rating, defaulting to medium.
func ParseOverallRisk(s string) OverallRisk {
	switch OverallRisk(s) {
	case OverallRiskLow, OverallRiskMedium, OverallRiskHigh:
		return OverallRisk(s)
	default:
		return OverallRiskMedium
	}
}
