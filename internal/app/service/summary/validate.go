package summary

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/leaselens/leaselens/internal/models"
	"github.com/leaselens/leaselens/pkg/types"
)

const (
	fallbackLateFeeZH          = "未明确写明滞纳金条款"
	fallbackEarlyTerminationZH = "未明确写明提前解约条款"

	// Average Gregorian month length in days, used to derive duration
	// from the date span when the document states no explicit term.
	daysPerMonth = 30.44
)

// Date layouts tried in order. MM/DD/YYYY outranks DD/MM/YYYY, so an
// ambiguous numeric date resolves US-style.
var dateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
	"02/01/2006",
}

// Validate coerces the raw extraction into a fully-populated Summary. Every
// field ends up with a value or a documented default; a bad raw field only
// costs that field, never the whole summary.
func Validate(raw map[string]any) models.Summary {
	out := models.Summary{
		Currency:               "USD",
		LateFeeSummaryZH:       fallbackLateFeeZH,
		EarlyTerminationRiskZH: fallbackEarlyTerminationZH,
		OverallRisk:            types.OverallRiskMedium,
	}

	out.MonthlyRentAmount = parseAmount(raw["monthly_rent_amount"])
	out.SecurityDepositAmount = parseAmount(raw["security_deposit_amount"])

	if cur := getString(raw, "currency"); cur != "" {
		out.Currency = strings.ToUpper(cur)
	}

	out.LeaseStartDate = parseDate(raw["lease_start_date"])
	out.LeaseEndDate = parseDate(raw["lease_end_date"])

	out.LeaseDurationMonths = parseMonths(raw["lease_duration_months"])
	if out.LeaseDurationMonths == nil && out.LeaseStartDate != "" && out.LeaseEndDate != "" {
		out.LeaseDurationMonths = deriveDuration(out.LeaseStartDate, out.LeaseEndDate)
	}

	out.LandlordName = getString(raw, "landlord_name")
	out.TenantName = getString(raw, "tenant_name")

	if s := getString(raw, "late_fee_summary_zh"); s != "" {
		out.LateFeeSummaryZH = s
	}
	if s := getString(raw, "early_termination_risk_zh"); s != "" {
		out.EarlyTerminationRiskZH = s
	}

	out.OverallRisk = types.ParseOverallRisk(getString(raw, "overall_risk"))

	return out
}

// BuildKeyInfo projects a validated summary onto the flat key-term view. Used
// when the summary carries a rent amount or start date; otherwise the regex
// extractor supplies the key info instead.
func BuildKeyInfo(s models.Summary) models.KeyInfo {
	info := models.KeyInfo{
		RentAmount: models.NotFound,
		LeaseTerm:  models.NotFound,
		StartDate:  models.NotFound,
		Landlord:   models.NotFound,
		Tenant:     models.NotFound,
	}
	if s.MonthlyRentAmount != nil {
		info.RentAmount = fmt.Sprintf("$%.2f/month", *s.MonthlyRentAmount)
	}
	if s.LeaseDurationMonths != nil {
		info.LeaseTerm = fmt.Sprintf("%d months", *s.LeaseDurationMonths)
	}
	if s.LeaseStartDate != "" {
		info.StartDate = s.LeaseStartDate
	}
	if s.LandlordName != "" {
		info.Landlord = s.LandlordName
	}
	if s.TenantName != "" {
		info.Tenant = s.TenantName
	}
	return info
}

// parseAmount coerces numbers and number-like strings. Strings are cleaned of
// thousands separators, dollar signs and spaces before parsing.
func parseAmount(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case string:
		clean := strings.Map(func(r rune) rune {
			switch r {
			case ',', '$', ' ':
				return -1
			}
			return r
		}, n)
		if clean == "" {
			return nil
		}
		f, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// parseDate normalizes a date-like value to ISO YYYY-MM-DD, or "" when no
// layout matches.
func parseDate(v any) string {
	s, _ := v.(string)
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

func parseMonths(v any) *int {
	switch n := v.(type) {
	case float64:
		m := int(n)
		if m > 0 {
			return &m
		}
		return nil
	case string:
		m, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil || m <= 0 {
			return nil
		}
		return &m
	default:
		return nil
	}
}

func deriveDuration(startISO, endISO string) *int {
	start, err := time.Parse("2006-01-02", startISO)
	if err != nil {
		return nil
	}
	end, err := time.Parse("2006-01-02", endISO)
	if err != nil {
		return nil
	}
	days := end.Sub(start).Hours() / 24
	months := int(math.Round(days / daysPerMonth))
	if months <= 0 {
		return nil
	}
	return &months
}

func getString(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return strings.TrimSpace(s)
}
