package sampler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/leaselens/leaselens/internal/models"
	"github.com/leaselens/leaselens/pkg/types"
)

type fakeCompleter struct {
	replies map[string]string // keyed by system prompt
	err     error
	calls   []string
}

func (f *fakeCompleter) Complete(_ context.Context, systemPrompt, userContent string, _ float64, _ int) (string, error) {
	f.calls = append(f.calls, userContent)
	if f.err != nil {
		return "", f.err
	}
	return f.replies[systemPrompt], nil
}

func newTestService(c *fakeCompleter) *Service {
	return &Service{
		log: zap.NewNop().Sugar(),
		llm: c,
		rnd: rand.New(rand.NewSource(1)),
	}
}

func leaseText(paragraphs int) string {
	var parts []string
	for i := 0; i < paragraphs; i++ {
		parts = append(parts, fmt.Sprintf("Clause %d: the tenant shall pay rent of $%d per month.", i+1, 500+i))
	}
	return strings.Join(parts, "\n\n")
}

func TestSampleFastModeCapsAtThree(t *testing.T) {
	fake := &fakeCompleter{replies: map[string]string{}}
	s := newTestService(fake)

	clauses, _ := s.Sample(context.Background(), leaseText(10), true)
	assert.Len(t, clauses, 3)
}

func TestSampleCountWithinBounds(t *testing.T) {
	fake := &fakeCompleter{replies: map[string]string{}}
	s := newTestService(fake)

	clauses, _ := s.Sample(context.Background(), leaseText(30), false)
	assert.GreaterOrEqual(t, len(clauses), 15)
	assert.LessOrEqual(t, len(clauses), 20)
}

func TestSampleWrapsAroundShortDocuments(t *testing.T) {
	fake := &fakeCompleter{replies: map[string]string{}}
	s := newTestService(fake)

	// Six paragraphs keep paragraph mode but force index wraparound.
	clauses, _ := s.Sample(context.Background(), leaseText(6), false)
	require.GreaterOrEqual(t, len(clauses), 15)
	assert.Equal(t, clauses[0].Text, clauses[6].Text)
	assert.Equal(t, 1, clauses[0].Number)
	assert.Equal(t, 7, clauses[6].Number)
}

func TestSampleTruncatesClauseText(t *testing.T) {
	fake := &fakeCompleter{replies: map[string]string{}}
	s := newTestService(fake)

	long := strings.Repeat("a", 300)
	text := strings.Join([]string{long, long, long, long, long}, "\n\n")
	clauses, _ := s.Sample(context.Background(), text, true)
	require.NotEmpty(t, clauses)
	assert.Len(t, []rune(clauses[0].Text), 200)
}

func TestSampleSentenceFallback(t *testing.T) {
	fake := &fakeCompleter{replies: map[string]string{}}
	s := newTestService(fake)

	// Under five paragraphs, so the text splits on periods instead.
	text := "Rent is due monthly. Deposit equals one month. Late fees apply after five days."
	clauses, _ := s.Sample(context.Background(), text, true)
	require.Len(t, clauses, 3)
	assert.Equal(t, "Rent is due monthly", clauses[0].Text)
}

func TestSampleEmptyTextReturnsNothing(t *testing.T) {
	fake := &fakeCompleter{replies: map[string]string{}}
	s := newTestService(fake)

	clauses, aiDuration := s.Sample(context.Background(), "   ", false)
	assert.Empty(t, clauses)
	assert.Zero(t, aiDuration)
}

func TestSampleUsesModelOutputAndSkips(t *testing.T) {
	analysisReply := `[
		{"analysis_en":"Rent is fixed.","analysis_zh":"租金固定。","suggestion_en":"Confirm the amount.","suggestion_zh":"确认金额。"},
		{"skip": true},
		{"analysis_en":"Deposit terms."}
	]`
	explainerReply := "Clause one text\n中文解释：第一条的解释。\n\nClause two text\n中文解释：第二条的解释。\n\nClause three text\n中文解释：第三条的解释。"
	fake := &fakeCompleter{replies: map[string]string{
		bilingualAnalysisSystemPrompt:  analysisReply,
		bilingualExplainerSystemPrompt: explainerReply,
	}}
	s := newTestService(fake)

	clauses, _ := s.Sample(context.Background(), leaseText(10), true)
	require.Len(t, clauses, 2)

	assert.Equal(t, "Rent is fixed.", clauses[0].AnalysisEN)
	assert.Equal(t, "租金固定。", clauses[0].AnalysisZH)
	assert.Equal(t, "第一条的解释。", clauses[0].ChineseExplanation)

	// The skipped clause drops out but numbering of survivors is preserved.
	assert.Equal(t, 1, clauses[0].Number)
	assert.Equal(t, 3, clauses[1].Number)

	// Partial model output falls back per missing field.
	assert.Equal(t, "Deposit terms.", clauses[1].AnalysisEN)
	assert.Equal(t, defaultAnalysisZH, clauses[1].AnalysisZH)
	assert.Equal(t, defaultSuggestionEN, clauses[1].SuggestionEN)
	assert.Equal(t, defaultSuggestionZH, clauses[1].SuggestionZH)
}

func TestSampleModelFailureFallsBackToDefaults(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("upstream down")}
	s := newTestService(fake)

	clauses, _ := s.Sample(context.Background(), leaseText(10), true)
	require.Len(t, clauses, 3)
	for _, c := range clauses {
		assert.Equal(t, defaultAnalysisEN, c.AnalysisEN)
		assert.Equal(t, defaultAnalysisZH, c.AnalysisZH)
		assert.Equal(t, defaultSuggestionEN, c.SuggestionEN)
		assert.Equal(t, defaultSuggestionZH, c.SuggestionZH)
		assert.Empty(t, c.ChineseExplanation)
	}
}

func TestSampleStripsFencedJSON(t *testing.T) {
	fenced := "```json\n[{\"analysis_en\":\"Fenced analysis.\"}]\n```"
	fake := &fakeCompleter{replies: map[string]string{bilingualAnalysisSystemPrompt: fenced}}
	s := newTestService(fake)

	clauses, _ := s.Sample(context.Background(), leaseText(10), true)
	require.NotEmpty(t, clauses)
	assert.Equal(t, "Fenced analysis.", clauses[0].AnalysisEN)
}

func TestExplainOne(t *testing.T) {
	reply := "Late fees apply after five days.\n中文解释：逾期五天后收取滞纳金。"
	fake := &fakeCompleter{replies: map[string]string{bilingualExplainerSystemPrompt: reply}}
	s := newTestService(fake)

	got := s.ExplainOne(context.Background(), "Late fees apply after five days.")
	assert.Equal(t, "逾期五天后收取滞纳金。", got)
}

func TestParseBilingualBlocks(t *testing.T) {
	reply := "First line\n中文解释：解释一。\n\nOnly english no chinese\nsecond line\n\nThird line\n中文解释：解释三。"
	got := parseBilingualBlocks(reply)
	assert.Equal(t, []string{"解释一。", "解释三。"}, got)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		text string
		want types.ClauseCategory
	}{
		{"--- Page 1 ---", types.ClauseCategoryMeta},
		{"Landlord:", types.ClauseCategoryMeta},
		{"RESIDENTIAL LEASE AGREEMENT", types.ClauseCategoryMeta},
		{"Tenant shall pay rent on the first of each month.", types.ClauseCategoryCoreTerm},
		{"A security deposit of $500 is required.", types.ClauseCategoryCoreTerm},
		{"The premises are located in a quiet neighborhood.", types.ClauseCategoryOther},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.text), tc.text)
	}
}

func TestFilterClausesDropsNoise(t *testing.T) {
	clauses := []models.Clause{
		{Text: "Section 2", RiskLevel: types.RiskLevelSafe},   // short, has digit: kept
		{Text: "Intro", RiskLevel: types.RiskLevelSafe},       // short, no signal: dropped
		{Text: "$500", RiskLevel: types.RiskLevelSafe},        // currency: kept
		{Text: "01/02/2024", RiskLevel: types.RiskLevelSafe},  // date: kept
		{Text: "Tenant shall maintain renter insurance.", RiskLevel: types.RiskLevelSafe},
	}
	kept, _ := FilterClauses(clauses)
	require.Len(t, kept, 4)
	for _, c := range kept {
		assert.NotEqual(t, "Intro", c.Text)
	}
}

func TestFilterClausesHighRisk(t *testing.T) {
	clauses := []models.Clause{
		{Text: "Tenant waives any right to withhold payment.", RiskLevel: types.RiskLevelDanger},
		{Text: "A late fee of $50 applies after the fifth.", RiskLevel: types.RiskLevelCaution},
		{Text: "租客须支付押金一个月。", RiskLevel: types.RiskLevelCaution},
		{Text: "Quiet hours start at ten in the evening.", RiskLevel: types.RiskLevelCaution},
		{Text: "Tenant shall keep the premises clean and tidy.", RiskLevel: types.RiskLevelSafe},
	}
	kept, highRisk := FilterClauses(clauses)
	require.Len(t, kept, 5)
	require.Len(t, highRisk, 3)
	assert.Equal(t, types.RiskLevelDanger, highRisk[0].RiskLevel)
	assert.Contains(t, highRisk[1].Text, "late fee")
	assert.Contains(t, highRisk[2].Text, "押金")
}

func TestFilterClausesIdempotent(t *testing.T) {
	clauses := []models.Clause{
		{Text: "Section 2", RiskLevel: types.RiskLevelSafe},
		{Text: "Intro", RiskLevel: types.RiskLevelSafe},
		{Text: "Tenant waives any right to withhold payment.", RiskLevel: types.RiskLevelDanger},
		{Text: "A late fee of $50 applies after the fifth.", RiskLevel: types.RiskLevelCaution},
		{Text: "Tenant shall keep the premises clean and tidy.", RiskLevel: types.RiskLevelSafe},
	}

	kept, highRisk := FilterClauses(clauses)
	keptAgain, highRiskAgain := FilterClauses(kept)

	// Filtering an already-filtered set changes nothing.
	assert.Equal(t, kept, keptAgain)
	assert.Equal(t, highRisk, highRiskAgain)
}
