// Package reasoner executes the multi-hop reasoning chains over an understood
// query. Each chain is a fixed sequence of checks against the domain tables;
// a check that lacks its inputs returns an indeterminate verdict instead of
// guessing. Chains run concurrently but always merge in canonical order.
package reasoner

import (
	"fmt"

	"github.com/clearclaim/clearclaim/internal/config"
	"github.com/clearclaim/clearclaim/internal/domain/decision"
	"github.com/clearclaim/clearclaim/internal/domain/query"
	"github.com/clearclaim/clearclaim/pkg/types/common"
)

// Step names, fixed per chain.
const (
	StepAgeVerification      = "age_verification"
	StepGenderCoverage       = "gender_specific_coverage"
	StepPolicyDuration       = "policy_duration_check"
	StepProcedureEligibility = "procedure_eligibility"
	StepPreAuthorization     = "pre_authorization_requirements"
	StepNetworkCoverage      = "network_coverage_check"
	StepConditionAssessment  = "condition_assessment"
	StepComorbidityAnalysis  = "comorbidity_analysis"
	StepRiskFactors          = "risk_factor_evaluation"
	StepWaitingPeriod        = "waiting_period_check"
	StepExclusionCheck       = "exclusion_verification"
	StepCoverageLimit        = "coverage_limit_analysis"
)

// Strategy is one reasoning chain.
type Strategy interface {
	ID() decision.ChainID
	Run(u *query.Understanding) decision.Chain
}

// base carries the tables and confidence policy every chain consults.
type base struct {
	domain config.DomainConfig
	policy config.ConfidencePolicy
}

func (b base) pass(name, rationale string) decision.Step {
	return decision.Step{
		Name: name, Verdict: decision.VerdictPass,
		Confidence: common.Confidence(b.policy.StepConfident).Round4(),
		Rationale:  rationale,
	}
}

func (b base) fail(name, rationale string) decision.Step {
	return decision.Step{
		Name: name, Verdict: decision.VerdictFail,
		Confidence: common.Confidence(b.policy.StepConfident).Round4(),
		Rationale:  rationale,
	}
}

func (b base) indeterminate(name, rationale string) decision.Step {
	return decision.Step{
		Name: name, Verdict: decision.VerdictIndeterminate,
		Confidence: common.Confidence(b.policy.StepIndeterminate).Round4(),
		Rationale:  rationale,
	}
}

func advisory(s decision.Step) decision.Step {
	s.Advisory = true
	return s
}

// recognised reports whether the procedure text is a canonical table entry
// (as opposed to a vague or unmatched mention).
func (b base) recognised(procedure string) bool {
	_, ok := b.domain.ProcedureSynonyms[procedure]
	return ok
}

func (b base) excluded(procedure string) bool {
	for _, p := range b.domain.ExcludedProcedures {
		if p == procedure {
			return true
		}
	}
	return false
}

func (b base) requiresPreAuth(procedure string) bool {
	for _, p := range b.domain.PreAuthProcedures {
		if p == procedure {
			return true
		}
	}
	return false
}

func (b base) highRisk(condition string) bool {
	for _, c := range b.domain.HighRiskConditions {
		if c == condition {
			return true
		}
	}
	return false
}

// demographicChain verifies patient eligibility: age band, gender-specific
// coverage, and an active policy.
type demographicChain struct{ base }

func (demographicChain) ID() decision.ChainID { return decision.ChainDemographic }

func (c demographicChain) Run(u *query.Understanding) decision.Chain {
	attrs := u.Attributes
	out := decision.Chain{ID: c.ID()}

	// age_verification: the age must fall in an insurable band and, when the
	// procedure is band-restricted, in a compatible band.
	age := attrs.Age
	proc := attrs.Procedure
	switch {
	case !age.Known:
		out.Steps = append(out.Steps, c.indeterminate(StepAgeVerification, "patient age not stated"))
	default:
		band, ok := c.domain.BandForAge(age.IntValue)
		if !ok {
			out.Steps = append(out.Steps, c.fail(StepAgeVerification,
				fmt.Sprintf("age %d is outside the insurable range", age.IntValue)))
			break
		}
		if proc.Known && c.recognised(proc.Text) {
			if allowed, restricted := c.domain.ProcedureAgeBands[proc.Text]; restricted && !containsString(allowed, band.Name) {
				out.Steps = append(out.Steps, c.fail(StepAgeVerification,
					fmt.Sprintf("%s is not offered for the %s age band", proc.Text, band.Name)))
				break
			}
		}
		out.Steps = append(out.Steps, c.pass(StepAgeVerification,
			fmt.Sprintf("age %d falls in the %s band", age.IntValue, band.Name)))
	}

	// gender_specific_coverage
	gender := attrs.Gender
	switch {
	case proc.Known && c.domain.ProcedureGenderRestrictions[proc.Text] != "":
		required := c.domain.ProcedureGenderRestrictions[proc.Text]
		switch {
		case !gender.Known:
			out.Steps = append(out.Steps, c.indeterminate(StepGenderCoverage,
				fmt.Sprintf("%s is gender-specific but the query states no gender", proc.Text)))
		case gender.Text != required:
			out.Steps = append(out.Steps, c.fail(StepGenderCoverage,
				fmt.Sprintf("%s covers %s patients only", proc.Text, required)))
		default:
			out.Steps = append(out.Steps, c.pass(StepGenderCoverage,
				fmt.Sprintf("gender requirement for %s is met", proc.Text)))
		}
	default:
		out.Steps = append(out.Steps, c.pass(StepGenderCoverage, "no gender restriction applies"))
	}

	// policy_duration_check
	dur := attrs.PolicyDuration
	switch {
	case !dur.Known:
		out.Steps = append(out.Steps, c.indeterminate(StepPolicyDuration, "policy duration not stated"))
	case dur.IntValue <= 0:
		out.Steps = append(out.Steps, c.fail(StepPolicyDuration, "policy is not active"))
	default:
		out.Steps = append(out.Steps, c.pass(StepPolicyDuration,
			fmt.Sprintf("policy has been active for %d months", dur.IntValue)))
	}

	out.Finalize()
	return out
}

// procedureChain verifies the procedure itself: eligibility, pre-auth
// requirements, and network availability.
type procedureChain struct{ base }

func (procedureChain) ID() decision.ChainID { return decision.ChainProcedureCoverage }

func (c procedureChain) Run(u *query.Understanding) decision.Chain {
	proc := u.Attributes.Procedure
	out := decision.Chain{ID: c.ID()}

	switch {
	case !proc.Known:
		out.Steps = append(out.Steps, c.indeterminate(StepProcedureEligibility, "no procedure named"))
	case c.excluded(proc.Text):
		out.Steps = append(out.Steps, c.fail(StepProcedureEligibility,
			fmt.Sprintf("%s is an excluded procedure", proc.Text)))
	case c.recognised(proc.Text):
		out.Steps = append(out.Steps, c.pass(StepProcedureEligibility,
			fmt.Sprintf("%s is a covered procedure", proc.Text)))
	default:
		out.Steps = append(out.Steps, c.indeterminate(StepProcedureEligibility,
			fmt.Sprintf("%q is not specific enough to match a covered procedure", proc.Text)))
	}

	switch {
	case !proc.Known || !c.recognised(proc.Text):
		out.Steps = append(out.Steps, c.indeterminate(StepPreAuthorization,
			"pre-authorization requirements cannot be determined without a specific procedure"))
	case c.requiresPreAuth(proc.Text):
		out.Steps = append(out.Steps, c.pass(StepPreAuthorization,
			fmt.Sprintf("%s requires pre-authorization before admission", proc.Text)))
	default:
		out.Steps = append(out.Steps, c.pass(StepPreAuthorization, "no pre-authorization required"))
	}

	loc := u.Attributes.Location
	if loc.Known {
		out.Steps = append(out.Steps, advisory(c.pass(StepNetworkCoverage,
			fmt.Sprintf("network hospitals available in %s", loc.Text))))
	} else {
		out.Steps = append(out.Steps, advisory(c.pass(StepNetworkCoverage,
			"no location stated; in-network treatment assumed")))
	}

	out.Finalize()
	return out
}

// necessityChain assesses medical necessity; comorbidity and risk evaluation
// inform the record without gating it.
type necessityChain struct{ base }

func (necessityChain) ID() decision.ChainID { return decision.ChainMedicalNecessity }

func (c necessityChain) Run(u *query.Understanding) decision.Chain {
	attrs := u.Attributes
	out := decision.Chain{ID: c.ID()}

	cond := attrs.Condition
	proc := attrs.Procedure
	switch {
	case cond.Known:
		out.Steps = append(out.Steps, c.pass(StepConditionAssessment,
			fmt.Sprintf("%s is a recognised condition", cond.Text)))
	case proc.Known && c.recognised(proc.Text):
		out.Steps = append(out.Steps, c.pass(StepConditionAssessment,
			fmt.Sprintf("medical necessity inferred from the %s procedure", proc.Text)))
	case attrs.Urgency.Known && attrs.Urgency.Text == "high":
		out.Steps = append(out.Steps, c.pass(StepConditionAssessment,
			"emergency context establishes medical necessity"))
	default:
		out.Steps = append(out.Steps, c.indeterminate(StepConditionAssessment,
			"neither a condition nor a specific procedure establishes necessity"))
	}

	switch {
	case cond.Known && c.highRisk(cond.Text):
		out.Steps = append(out.Steps, advisory(c.pass(StepComorbidityAnalysis,
			fmt.Sprintf("%s is a high-risk comorbidity; expect closer scrutiny", cond.Text))))
	case cond.Known:
		out.Steps = append(out.Steps, advisory(c.pass(StepComorbidityAnalysis,
			"no high-risk comorbidity identified")))
	default:
		out.Steps = append(out.Steps, advisory(c.pass(StepComorbidityAnalysis,
			"no comorbidities reported")))
	}

	age := attrs.Age
	urgent := attrs.Urgency.Known && attrs.Urgency.Text == "high"
	switch {
	case !age.Known && !urgent:
		out.Steps = append(out.Steps, advisory(c.indeterminate(StepRiskFactors,
			"age unknown; risk factors not evaluable")))
	case urgent && age.Known && age.IntValue >= 60:
		out.Steps = append(out.Steps, advisory(c.pass(StepRiskFactors,
			fmt.Sprintf("emergency treatment at age %d carries elevated risk", age.IntValue))))
	case urgent:
		out.Steps = append(out.Steps, advisory(c.pass(StepRiskFactors,
			"emergency context raises procedural risk")))
	case age.IntValue >= 60:
		out.Steps = append(out.Steps, advisory(c.pass(StepRiskFactors,
			fmt.Sprintf("age %d adds elevated procedural risk", age.IntValue))))
	default:
		out.Steps = append(out.Steps, advisory(c.pass(StepRiskFactors,
			"no elevated age-related risk")))
	}

	out.Finalize()
	return out
}

// policyChain checks the policy terms: waiting periods, exclusions, and the
// coverage limit for the tier.
type policyChain struct{ base }

func (policyChain) ID() decision.ChainID { return decision.ChainPolicyAnalysis }

func (c policyChain) Run(u *query.Understanding) decision.Chain {
	attrs := u.Attributes
	out := decision.Chain{ID: c.ID()}

	proc := attrs.Procedure
	dur := attrs.PolicyDuration
	switch {
	case !proc.Known || !c.recognised(proc.Text):
		out.Steps = append(out.Steps, c.indeterminate(StepWaitingPeriod,
			"waiting period cannot be checked without a specific procedure"))
	case !dur.Known:
		out.Steps = append(out.Steps, c.indeterminate(StepWaitingPeriod,
			"waiting period cannot be checked without the policy duration"))
	default:
		waiting := c.domain.WaitingMonths(proc.Text)
		if dur.IntValue >= waiting {
			out.Steps = append(out.Steps, c.pass(StepWaitingPeriod,
				fmt.Sprintf("%d-month waiting period for %s is served", waiting, proc.Text)))
		} else {
			out.Steps = append(out.Steps, c.fail(StepWaitingPeriod,
				fmt.Sprintf("%s has a %d-month waiting period; policy is %d months old",
					proc.Text, waiting, dur.IntValue)))
		}
	}

	switch {
	case !proc.Known:
		out.Steps = append(out.Steps, c.indeterminate(StepExclusionCheck, "no procedure to check against exclusions"))
	case c.excluded(proc.Text):
		out.Steps = append(out.Steps, c.fail(StepExclusionCheck,
			fmt.Sprintf("%s appears in the policy exclusion list", proc.Text)))
	default:
		out.Steps = append(out.Steps, c.pass(StepExclusionCheck, "no exclusion applies"))
	}

	limit, _ := c.domain.CoverageLimit(attrs.PolicyTier.Text)
	claim := attrs.ClaimAmount
	switch {
	case claim.Known && !claim.Amount.Zero() && claim.Amount.Amount > limit.Amount:
		out.Steps = append(out.Steps, c.fail(StepCoverageLimit,
			fmt.Sprintf("claimed %s exceeds the %s coverage limit", claim.Amount, limit)))
	case attrs.PolicyTier.Known:
		out.Steps = append(out.Steps, c.pass(StepCoverageLimit,
			fmt.Sprintf("%s tier coverage limit is %s", attrs.PolicyTier.Text, limit)))
	default:
		out.Steps = append(out.Steps, c.pass(StepCoverageLimit,
			fmt.Sprintf("default coverage limit of %s applies", limit)))
	}

	out.Finalize()
	return out
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// Chains returns all strategies in canonical execution order.
func Chains(domain config.DomainConfig, policy config.ConfidencePolicy) []Strategy {
	b := base{domain: domain, policy: policy}
	return []Strategy{
		demographicChain{b},
		procedureChain{b},
		necessityChain{b},
		policyChain{b},
	}
}
