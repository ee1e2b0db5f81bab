package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerdictWorse(t *testing.T) {
	assert.Equal(t, VerdictFail, VerdictPass.Worse(VerdictFail))
	assert.Equal(t, VerdictFail, VerdictFail.Worse(VerdictIndeterminate))
	assert.Equal(t, VerdictIndeterminate, VerdictPass.Worse(VerdictIndeterminate))
	assert.Equal(t, VerdictPass, VerdictPass.Worse(VerdictPass))
}

func TestChainOrderIsStable(t *testing.T) {
	order := ChainOrder()
	require.Len(t, order, 4)
	assert.Equal(t, ChainDemographic, order[0])
	assert.Equal(t, ChainPolicyAnalysis, order[3])
}

func TestChainFinalizeWorstVerdictWins(t *testing.T) {
	c := Chain{ID: ChainDemographic, Steps: []Step{
		{Name: "age_verification", Verdict: VerdictPass, Confidence: 0.9},
		{Name: "gender_specific_coverage", Verdict: VerdictFail, Confidence: 0.9},
		{Name: "policy_duration_check", Verdict: VerdictPass, Confidence: 0.9},
	}}
	c.Finalize()
	assert.Equal(t, VerdictFail, c.Verdict)
	assert.InDelta(t, 0.9, c.Confidence.Float(), 1e-9)
}

func TestChainFinalizeAdvisoryStepsDoNotGate(t *testing.T) {
	c := Chain{ID: ChainMedicalNecessity, Steps: []Step{
		{Name: "condition_assessment", Verdict: VerdictPass, Confidence: 0.9},
		{Name: "comorbidity_analysis", Verdict: VerdictFail, Confidence: 0.4, Advisory: true},
	}}
	c.Finalize()
	assert.Equal(t, VerdictPass, c.Verdict)
	assert.InDelta(t, 0.65, c.Confidence.Float(), 1e-9)
}

func TestChainFinalizeIndeterminateBeatsPass(t *testing.T) {
	c := Chain{ID: ChainPolicyAnalysis, Steps: []Step{
		{Name: "waiting_period_check", Verdict: VerdictIndeterminate, Confidence: 0.35},
		{Name: "exclusion_verification", Verdict: VerdictPass, Confidence: 0.9},
	}}
	c.Finalize()
	assert.Equal(t, VerdictIndeterminate, c.Verdict)
}

func TestChainFinalizeEmpty(t *testing.T) {
	c := Chain{ID: ChainProcedureCoverage}
	c.Finalize()
	assert.Equal(t, VerdictIndeterminate, c.Verdict)
	assert.Zero(t, c.Confidence)
}

func TestChainFinalizeAllAdvisory(t *testing.T) {
	c := Chain{ID: ChainMedicalNecessity, Steps: []Step{
		{Name: "risk_factor_evaluation", Verdict: VerdictPass, Confidence: 0.8, Advisory: true},
	}}
	c.Finalize()
	assert.Equal(t, VerdictIndeterminate, c.Verdict)
}

func TestFailedSteps(t *testing.T) {
	c := Chain{Steps: []Step{
		{Name: "a", Verdict: VerdictFail},
		{Name: "b", Verdict: VerdictPass},
		{Name: "c", Verdict: VerdictFail, Advisory: true},
	}}
	failed := c.FailedSteps()
	require.Len(t, failed, 1)
	assert.Equal(t, "a", failed[0].Name)
}

func TestClauseIDDeterministic(t *testing.T) {
	assert.Equal(t, "policy-7#c0", ClauseID("policy-7", 0))
	assert.Equal(t, ClauseID("doc", 3), ClauseID("doc", 3))
}

func TestRecordChainByID(t *testing.T) {
	r := Record{Chains: []Chain{
		{ID: ChainDemographic, Verdict: VerdictPass},
		{ID: ChainPolicyAnalysis, Verdict: VerdictFail},
	}}
	c, ok := r.ChainByID(ChainPolicyAnalysis)
	require.True(t, ok)
	assert.Equal(t, VerdictFail, c.Verdict)

	_, ok = r.ChainByID(ChainMedicalNecessity)
	assert.False(t, ok)
}

func TestRecordDecided(t *testing.T) {
	assert.True(t, (&Record{Status: StatusApproved}).Decided())
	assert.True(t, (&Record{Status: StatusRejected}).Decided())
	assert.False(t, (&Record{Status: StatusNeedsReview}).Decided())
}
