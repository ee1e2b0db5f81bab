// Package decision defines the domain model for the decision phase: reasoning
// chains and their steps, policy passages and extracted clauses, and the final
// decision record handed to callers. Like the query package it is pure data;
// all computation lives in the intelligence packages.
package decision

import (
	"github.com/clearclaim/clearclaim/pkg/types/common"
)

// ChainID identifies one of the reasoning chains.
type ChainID string

const (
	ChainDemographic       ChainID = "demographic"
	ChainProcedureCoverage ChainID = "procedure_coverage"
	ChainMedicalNecessity  ChainID = "medical_necessity"
	ChainPolicyAnalysis    ChainID = "policy_analysis"
)

// ChainOrder returns all chain IDs in canonical order. Chains execute
// concurrently but merge into every output structure in this order.
func ChainOrder() []ChainID {
	return []ChainID{
		ChainDemographic,
		ChainProcedureCoverage,
		ChainMedicalNecessity,
		ChainPolicyAnalysis,
	}
}

// Verdict is the outcome of a reasoning step or chain.
type Verdict string

const (
	VerdictPass Verdict = "pass"
	VerdictFail Verdict = "fail"
	// VerdictIndeterminate means the check could not decide because its
	// inputs were unknown. It is never treated as a pass.
	VerdictIndeterminate Verdict = "indeterminate"
)

// severity ranks verdicts for worst-of aggregation: fail > indeterminate >
// pass.
func (v Verdict) severity() int {
	switch v {
	case VerdictFail:
		return 2
	case VerdictIndeterminate:
		return 1
	default:
		return 0
	}
}

// Worse returns the more severe of two verdicts.
func (v Verdict) Worse(other Verdict) Verdict {
	if other.severity() > v.severity() {
		return other
	}
	return v
}

// Step is a single hop inside a reasoning chain.
type Step struct {
	// Name identifies the check, e.g. "age_verification".
	Name    string  `json:"name"`
	Verdict Verdict `json:"verdict"`
	// Confidence reflects how certain the check is of its verdict, not how
	// favourable the verdict is.
	Confidence common.Confidence `json:"confidence"`
	// Rationale is a one-sentence human-readable explanation.
	Rationale string `json:"rationale"`
	// Advisory steps inform the record but are excluded from the chain
	// verdict (e.g. comorbidity analysis notes risk without gating).
	Advisory bool `json:"advisory,omitempty"`
}

// Chain is the executed result of one reasoning chain.
type Chain struct {
	ID    ChainID `json:"id"`
	Steps []Step  `json:"steps"`
	// Verdict is the worst verdict among non-advisory steps.
	Verdict Verdict `json:"verdict"`
	// Confidence is the mean step confidence, rounded to 4 decimals.
	Confidence common.Confidence `json:"confidence"`
}

// Finalize computes the chain verdict and confidence from its steps. A chain
// with no steps is indeterminate with zero confidence.
func (c *Chain) Finalize() {
	if len(c.Steps) == 0 {
		c.Verdict = VerdictIndeterminate
		c.Confidence = 0
		return
	}
	verdict := VerdictPass
	gated := 0
	sum := 0.0
	for _, s := range c.Steps {
		sum += s.Confidence.Float()
		if s.Advisory {
			continue
		}
		verdict = verdict.Worse(s.Verdict)
		gated++
	}
	if gated == 0 {
		verdict = VerdictIndeterminate
	}
	c.Verdict = verdict
	c.Confidence = common.Confidence(sum / float64(len(c.Steps))).Clamp().Round4()
}

// FailedSteps returns the non-advisory steps with a fail verdict, in step
// order.
func (c Chain) FailedSteps() []Step {
	var out []Step
	for _, s := range c.Steps {
		if !s.Advisory && s.Verdict == VerdictFail {
			out = append(out, s)
		}
	}
	return out
}
