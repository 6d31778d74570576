// Package summary extracts the structured lease summary from the recognized
// text and validates it into a fully-populated record.
package summary

import (
	"context"
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"github.com/leaselens/leaselens/internal/platform/llm"
)

// Extraction input is capped; summaries live in the first pages of a lease.
const maxExtractChars = 8000

// rawSchema gates the shape of the model reply before field coercion: a JSON
// object with loosely-typed fields. Coercion in Validate handles the rest, so
// string-typed numbers still pass here.
var rawSchema = jsonschema.MustCompileString("summary.json", `{
	"type": "object",
	"properties": {
		"monthly_rent_amount": {"type": ["number", "string", "null"]},
		"currency": {"type": ["string", "null"]},
		"lease_start_date": {"type": ["string", "null"]},
		"lease_end_date": {"type": ["string", "null"]},
		"lease_duration_months": {"type": ["number", "string", "null"]},
		"security_deposit_amount": {"type": ["number", "string", "null"]},
		"landlord_name": {"type": ["string", "null"]},
		"tenant_name": {"type": ["string", "null"]},
		"late_fee_summary_zh": {"type": ["string", "null"]},
		"early_termination_risk_zh": {"type": ["string", "null"]},
		"overall_risk": {"type": ["string", "null"]}
	}
}`)

type Service struct {
	log *zap.SugaredLogger
	llm llm.Completer
}

func NewService(log *zap.SugaredLogger, completer llm.Completer) *Service {
	return &Service{log: log, llm: completer}
}

// Extract asks the model for the structured summary. Any adapter or parse
// failure returns an empty map; the pipeline proceeds with defaults rather
// than failing the analysis over a missing summary.
func (s *Service) Extract(ctx context.Context, fullText string) map[string]any {
	input := truncateRunes(fullText, maxExtractChars)

	reply, err := s.llm.Complete(ctx, leaseSummarySystemPrompt, input, 0.1, 800)
	if err != nil {
		s.log.Errorw("lease summary extraction failed", "err", err)
		return map[string]any{}
	}

	clean := llm.StripFences(reply)
	var parsed any
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		s.log.Warnw("lease summary reply is not valid json", "err", err)
		return map[string]any{}
	}
	if err := rawSchema.Validate(parsed); err != nil {
		s.log.Warnw("lease summary reply failed schema validation", "err", err)
		return map[string]any{}
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return obj
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
