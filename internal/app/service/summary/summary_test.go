package summary

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/leaselens/leaselens/internal/models"
	"github.com/leaselens/leaselens/pkg/types"
)

type fakeCompleter struct {
	reply     string
	err       error
	lastInput string
}

func (f *fakeCompleter) Complete(_ context.Context, _, userContent string, _ float64, _ int) (string, error) {
	f.lastInput = userContent
	return f.reply, f.err
}

func TestExtractParsesObjectReply(t *testing.T) {
	fake := &fakeCompleter{reply: `{"monthly_rent_amount": 685, "currency": "USD"}`}
	s := NewService(zap.NewNop().Sugar(), fake)

	raw := s.Extract(context.Background(), "some lease text")
	assert.Equal(t, float64(685), raw["monthly_rent_amount"])
	assert.Equal(t, "USD", raw["currency"])
}

func TestExtractStripsCodeFences(t *testing.T) {
	fake := &fakeCompleter{reply: "```json\n{\"overall_risk\": \"low\"}\n```"}
	s := NewService(zap.NewNop().Sugar(), fake)

	raw := s.Extract(context.Background(), "text")
	assert.Equal(t, "low", raw["overall_risk"])
}

func TestExtractDegradesToEmptyMap(t *testing.T) {
	cases := map[string]*fakeCompleter{
		"adapter error": {err: errors.New("upstream down")},
		"invalid json":  {reply: "not json at all"},
		"non-object":    {reply: `["a", "b"]`},
		"wrongly typed": {reply: `{"monthly_rent_amount": {"nested": true}}`},
	}
	for name, fake := range cases {
		s := NewService(zap.NewNop().Sugar(), fake)
		raw := s.Extract(context.Background(), "text")
		assert.Empty(t, raw, name)
	}
}

func TestExtractTruncatesInput(t *testing.T) {
	fake := &fakeCompleter{reply: `{}`}
	s := NewService(zap.NewNop().Sugar(), fake)

	s.Extract(context.Background(), strings.Repeat("x", 10000))
	assert.Len(t, fake.lastInput, maxExtractChars)
}

func TestValidateRoundTrip(t *testing.T) {
	raw := map[string]any{
		"monthly_rent_amount": "1,200.50",
		"lease_start_date":    "July 1, 2012",
		"lease_end_date":      "2013-06-30",
	}
	got := Validate(raw)

	require.NotNil(t, got.MonthlyRentAmount)
	assert.Equal(t, 1200.50, *got.MonthlyRentAmount)
	assert.Equal(t, "2012-07-01", got.LeaseStartDate)
	assert.Equal(t, "2013-06-30", got.LeaseEndDate)
	require.NotNil(t, got.LeaseDurationMonths)
	assert.Equal(t, 12, *got.LeaseDurationMonths)
}

func TestValidateDefaults(t *testing.T) {
	got := Validate(map[string]any{})

	assert.Nil(t, got.MonthlyRentAmount)
	assert.Nil(t, got.SecurityDepositAmount)
	assert.Nil(t, got.LeaseDurationMonths)
	assert.Equal(t, "USD", got.Currency)
	assert.Equal(t, "未明确写明滞纳金条款", got.LateFeeSummaryZH)
	assert.Equal(t, "未明确写明提前解约条款", got.EarlyTerminationRiskZH)
	assert.Equal(t, types.OverallRiskMedium, got.OverallRisk)
}

func TestValidateAmountCoercion(t *testing.T) {
	cases := []struct {
		in   any
		want *float64
	}{
		{in: float64(685), want: ptr(685.0)},
		{in: "$ 1,500", want: ptr(1500.0)},
		{in: "not a number", want: nil},
		{in: nil, want: nil},
		{in: true, want: nil},
	}
	for _, tc := range cases {
		got := Validate(map[string]any{"monthly_rent_amount": tc.in})
		if tc.want == nil {
			assert.Nil(t, got.MonthlyRentAmount)
		} else {
			require.NotNil(t, got.MonthlyRentAmount)
			assert.Equal(t, *tc.want, *got.MonthlyRentAmount)
		}
	}
}

func TestValidateDatePriority(t *testing.T) {
	cases := map[string]string{
		"2020-05-13":      "2020-05-13",
		"January 2, 2024": "2024-01-02",
		"Jan 2, 2024":     "2024-01-02",
		"01/02/2024":      "2024-01-02", // ambiguous, resolves US-style
		"13/05/2020":      "2020-05-13", // month 13 impossible, falls to DD/MM
		"not a date":      "",
	}
	for in, want := range cases {
		got := Validate(map[string]any{"lease_start_date": in})
		assert.Equal(t, want, got.LeaseStartDate, in)
	}
}

func TestValidateDurationDiscardedWhenNotPositive(t *testing.T) {
	got := Validate(map[string]any{
		"lease_start_date": "2024-06-01",
		"lease_end_date":   "2024-06-05",
	})
	assert.Nil(t, got.LeaseDurationMonths)

	got = Validate(map[string]any{
		"lease_start_date":      "2024-06-01",
		"lease_end_date":        "2024-06-05",
		"lease_duration_months": float64(-3),
	})
	assert.Nil(t, got.LeaseDurationMonths)
}

func TestValidateExplicitDurationWins(t *testing.T) {
	got := Validate(map[string]any{
		"lease_start_date":      "2024-01-01",
		"lease_end_date":        "2025-01-01",
		"lease_duration_months": float64(6),
	})
	require.NotNil(t, got.LeaseDurationMonths)
	assert.Equal(t, 6, *got.LeaseDurationMonths)
}

func TestValidateCurrencyUppercased(t *testing.T) {
	got := Validate(map[string]any{"currency": "usd"})
	assert.Equal(t, "USD", got.Currency)
}

func TestValidateOverallRiskCoercion(t *testing.T) {
	assert.Equal(t, types.OverallRiskHigh, Validate(map[string]any{"overall_risk": "high"}).OverallRisk)
	assert.Equal(t, types.OverallRiskMedium, Validate(map[string]any{"overall_risk": "severe"}).OverallRisk)
}

func TestBuildKeyInfo(t *testing.T) {
	rent := 685.0
	months := 12
	s := models.Summary{
		MonthlyRentAmount:   &rent,
		LeaseDurationMonths: &months,
		LeaseStartDate:      "2012-07-01",
		LandlordName:        "Jane Smith",
	}
	info := BuildKeyInfo(s)
	assert.Equal(t, "$685.00/month", info.RentAmount)
	assert.Equal(t, "12 months", info.LeaseTerm)
	assert.Equal(t, "2012-07-01", info.StartDate)
	assert.Equal(t, "Jane Smith", info.Landlord)
	assert.Equal(t, models.NotFound, info.Tenant)
}

func TestExtractKeyInfoLabeledForms(t *testing.T) {
	text := `Monthly Rent: $1,500 per month
Lease Term: 12 months
Commencement Date: 07/01/2012
Landlord: John Smith
123 Main Street
Tenant: Jane Doe
456 College Avenue`

	info := ExtractKeyInfo(text)
	assert.Equal(t, "Monthly Rent: $1,500 per month", info.RentAmount)
	// Alternation prefers the bare "month" branch, so the trailing "s" of
	// "months" is outside the matched span.
	assert.Equal(t, "Lease Term: 12 month", info.LeaseTerm)
	assert.Equal(t, "Commencement Date: 07/01/2012", info.StartDate)
	assert.Equal(t, "John Smith", info.Landlord)
	assert.Equal(t, "Jane Doe", info.Tenant)
}

func TestExtractKeyInfoNotFound(t *testing.T) {
	info := ExtractKeyInfo("nothing lease-like in here")
	assert.Equal(t, models.NotFound, info.RentAmount)
	assert.Equal(t, models.NotFound, info.LeaseTerm)
	assert.Equal(t, models.NotFound, info.StartDate)
	assert.Equal(t, models.NotFound, info.Landlord)
	assert.Equal(t, models.NotFound, info.Tenant)
}

func ptr(f float64) *float64 { return &f }
