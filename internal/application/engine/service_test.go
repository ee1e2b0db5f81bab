package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearclaim/clearclaim/internal/config"
	"github.com/clearclaim/clearclaim/internal/domain/decision"
	"github.com/clearclaim/clearclaim/internal/domain/query"
	"github.com/clearclaim/clearclaim/internal/infrastructure/monitoring/logging"
	"github.com/clearclaim/clearclaim/pkg/errors"
)

type stubRetriever struct {
	passages []decision.Passage
	err      error
	calls    int
}

func (s *stubRetriever) Name() string { return "stub" }

func (s *stubRetriever) Retrieve(_ context.Context, _ *query.Understanding) ([]decision.Passage, error) {
	s.calls++
	return s.passages, s.err
}

func newService(retriever PassageRetriever) *Service {
	return New(config.Defaults(), retriever, nil, logging.NewNopLogger())
}

func TestUnderstandQueryEmptyInput(t *testing.T) {
	s := newService(nil)
	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := s.UnderstandQuery(context.Background(), text)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeQueryEmpty))
	}
}

func TestUnderstandQueryNonText(t *testing.T) {
	s := newService(nil)
	_, err := s.UnderstandQuery(context.Background(), "12345 $$$ !!!")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeQueryNotText))
}

func TestUnderstandQueryTooLong(t *testing.T) {
	s := newService(nil)
	_, err := s.UnderstandQuery(context.Background(), strings.Repeat("knee surgery ", 500))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeQueryTooLong))
}

func TestUnderstandQueryComplete(t *testing.T) {
	s := newService(nil)
	u, err := s.UnderstandQuery(context.Background(),
		"Knee surgery for a 45-year-old male with a 3-month-old premium policy")
	require.NoError(t, err)

	assert.Equal(t, 45, u.Attributes.Age.IntValue)
	assert.Equal(t, "knee surgery", u.Attributes.Procedure.Text)
	assert.Equal(t, "premium", u.Attributes.PolicyTier.Text)
	assert.False(t, u.Validation.HasErrors())
	assert.Empty(t, u.Findings)
	assert.NotEmpty(t, u.Expansion.Terms)
}

func TestDecideNilUnderstanding(t *testing.T) {
	s := newService(nil)
	_, err := s.Decide(context.Background(), nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDecisionNilInput))
}

// Complete, compatible claim: approved with high confidence.
func TestScenarioCompleteClaimApproved(t *testing.T) {
	s := newService(nil)
	ctx := context.Background()

	u, err := s.UnderstandQuery(ctx, "Knee surgery for a 45-year-old male with a 3-month-old premium policy")
	require.NoError(t, err)

	rec, err := s.Decide(ctx, u, nil)
	require.NoError(t, err)

	assert.Equal(t, decision.StatusApproved, rec.Status)
	assert.GreaterOrEqual(t, rec.Confidence.Float(), 0.7)
	assert.Equal(t, int64(100000_00), rec.ApprovedAmount.Amount)
	assert.Equal(t, "INR", rec.ApprovedAmount.Currency)

	ids := make([]decision.ChainID, 0, len(rec.Chains))
	for _, c := range rec.Chains {
		ids = append(ids, c.ID)
		assert.Equal(t, decision.VerdictPass, c.Verdict)
	}
	assert.Equal(t, decision.ChainOrder(), ids)
}

// Vague query: needs_review with a vague finding, never a confident approval.
func TestScenarioVagueQueryNeedsReview(t *testing.T) {
	s := newService(nil)
	ctx := context.Background()

	u, err := s.UnderstandQuery(ctx, "Is surgery covered?")
	require.NoError(t, err)
	assert.True(t, u.HasFinding(query.FindingVague))

	rec, err := s.Decide(ctx, u, nil)
	require.NoError(t, err)
	assert.Equal(t, decision.StatusNeedsReview, rec.Status)
	assert.LessOrEqual(t, rec.Confidence.Float(), 0.6)
}

// Demographically incompatible claim: rejected on the demographic chain.
func TestScenarioDemographicMismatchRejected(t *testing.T) {
	s := newService(nil)
	ctx := context.Background()

	u, err := s.UnderstandQuery(ctx,
		"Maternity care claim for a 35-year-old male with a 12-month-old standard policy")
	require.NoError(t, err)

	rec, err := s.Decide(ctx, u, nil)
	require.NoError(t, err)

	assert.Equal(t, decision.StatusRejected, rec.Status)
	demo, ok := rec.ChainByID(decision.ChainDemographic)
	require.True(t, ok)
	assert.Equal(t, decision.VerdictFail, demo.Verdict)
	assert.Contains(t, rec.Justification, "female patients only")
}

// Waiting period not served: rejected on the policy analysis chain.
func TestScenarioWaitingPeriodRejected(t *testing.T) {
	s := newService(nil)
	ctx := context.Background()

	u, err := s.UnderstandQuery(ctx,
		"Hip replacement for a 50-year-old female with a 3-month-old standard policy")
	require.NoError(t, err)

	rec, err := s.Decide(ctx, u, nil)
	require.NoError(t, err)

	assert.Equal(t, decision.StatusRejected, rec.Status)
	policy, ok := rec.ChainByID(decision.ChainPolicyAnalysis)
	require.True(t, ok)
	assert.Equal(t, decision.VerdictFail, policy.Verdict)
	assert.Contains(t, rec.Justification, "waiting period")
}

// Pre-authorization procedure with every check passing: conditional approval.
func TestScenarioPreAuthConditional(t *testing.T) {
	s := newService(nil)
	ctx := context.Background()

	u, err := s.UnderstandQuery(ctx,
		"Bypass surgery for a 55-year-old male with a 12-month-old premium policy")
	require.NoError(t, err)

	rec, err := s.Decide(ctx, u, nil)
	require.NoError(t, err)

	assert.Equal(t, decision.StatusConditional, rec.Status)
	require.NotEmpty(t, rec.Conditions)
	assert.Contains(t, rec.Conditions[0], "pre-authorization")
	assert.Equal(t, int64(100000_00), rec.ApprovedAmount.Amount)
}

// A missing decision-relevant attribute caps confidence at the configured
// limit.
func TestMissingAttributeCapsConfidence(t *testing.T) {
	s := newService(nil)
	ctx := context.Background()

	u, err := s.UnderstandQuery(ctx, "Is cataract surgery covered?")
	require.NoError(t, err)
	assert.True(t, u.HasFinding(query.FindingMissing))

	rec, err := s.Decide(ctx, u, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, rec.Confidence.Float(), 0.6)
}

func TestDecideDeterministic(t *testing.T) {
	s := newService(nil)
	ctx := context.Background()
	text := "Knee surgery for a 45-year-old male with a 3-month-old premium policy"
	passages := []decision.Passage{
		{SourceID: "policy-1", Text: "Knee surgery is covered for adult members. Cosmetic surgery is excluded."},
	}

	u, err := s.UnderstandQuery(ctx, text)
	require.NoError(t, err)
	first, err := s.Decide(ctx, u, passages)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		u2, err := s.UnderstandQuery(ctx, text)
		require.NoError(t, err)
		again, err := s.Decide(ctx, u2, passages)
		require.NoError(t, err)
		assert.Equal(t, first, again, "iteration %d", i)
	}
}

func TestDecideWithEvidenceCitesClauses(t *testing.T) {
	s := newService(nil)
	ctx := context.Background()

	u, err := s.UnderstandQuery(ctx, "Knee surgery for a 45-year-old male with a 3-month-old premium policy")
	require.NoError(t, err)

	rec, err := s.Decide(ctx, u, []decision.Passage{
		{SourceID: "policy-1", Text: "Knee surgery is covered for adult members. Cosmetic surgery is excluded from this policy."},
	})
	require.NoError(t, err)

	assert.Equal(t, decision.StatusApproved, rec.Status)
	assert.Equal(t, []string{"policy-1#c0"}, rec.SupportingClauses)
	assert.Equal(t, []string{"policy-1#c1"}, rec.OpposingClauses)
	assert.Contains(t, rec.Justification, "policy-1#c0")
}

func TestAskUsesRetriever(t *testing.T) {
	ret := &stubRetriever{passages: []decision.Passage{
		{SourceID: "p1", Text: "Knee surgery is covered for adult members"},
	}}
	s := newService(ret)

	rec, err := s.Ask(context.Background(),
		"Knee surgery for a 45-year-old male with a 3-month-old premium policy")
	require.NoError(t, err)

	assert.Equal(t, 1, ret.calls)
	assert.Equal(t, decision.StatusApproved, rec.Status)
	assert.NotEmpty(t, rec.Clauses)
}

func TestAskDegradesWhenRetrievalFails(t *testing.T) {
	ret := &stubRetriever{err: fmt.Errorf("backend down")}
	s := newService(ret)

	rec, err := s.Ask(context.Background(),
		"Knee surgery for a 45-year-old male with a 3-month-old premium policy")
	require.NoError(t, err)

	assert.Equal(t, decision.StatusApproved, rec.Status)
	assert.Empty(t, rec.Clauses)
}

func TestAskWithoutRetriever(t *testing.T) {
	s := newService(nil)
	rec, err := s.Ask(context.Background(),
		"Knee surgery for a 45-year-old male with a 3-month-old premium policy")
	require.NoError(t, err)
	assert.Equal(t, decision.StatusApproved, rec.Status)
}

func TestUnderstandCancelledContext(t *testing.T) {
	s := newService(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.UnderstandQuery(ctx, "knee surgery")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTimeout))
}
