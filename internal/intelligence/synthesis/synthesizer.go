// Package synthesis folds the reasoning chains, ambiguity findings, and
// evidence clauses into the final decision record. Synthesis is mechanical:
// chain verdicts fix the status, configured weights fix the confidence, and
// the evidence clauses are tagged relative to the outcome.
package synthesis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/clearclaim/clearclaim/internal/config"
	"github.com/clearclaim/clearclaim/internal/domain/decision"
	"github.com/clearclaim/clearclaim/internal/domain/query"
	"github.com/clearclaim/clearclaim/internal/intelligence/evidence"
	"github.com/clearclaim/clearclaim/internal/infrastructure/monitoring/logging"
	"github.com/clearclaim/clearclaim/pkg/errors"
	"github.com/clearclaim/clearclaim/pkg/types/common"
)

// Synthesizer builds decision records.
type Synthesizer struct {
	domain config.DomainConfig
	policy config.ConfidencePolicy
	log    logging.Logger
}

// New constructs a Synthesizer.
func New(domain config.DomainConfig, policy config.ConfidencePolicy, log logging.Logger) *Synthesizer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Synthesizer{domain: domain, policy: policy, log: log.Named("synthesis")}
}

// Synthesize produces the record for an understood query given its executed
// chains and mapped clauses. The clause slice is tagged in place.
func (s *Synthesizer) Synthesize(u *query.Understanding, chains []decision.Chain, clauses []decision.Clause) (*decision.Record, error) {
	if u == nil {
		return nil, errors.New(errors.ErrCodeDecisionNilInput, errors.DefaultMessageForCode(errors.ErrCodeDecisionNilInput))
	}
	if len(chains) == 0 {
		return nil, errors.New(errors.ErrCodeDecisionNoChains, errors.DefaultMessageForCode(errors.ErrCodeDecisionNoChains))
	}

	status, conditions := s.resolveStatus(u, chains)

	evidence.TagImpacts(clauses, status)
	supporting, opposing := impactLists(clauses)

	rec := &decision.Record{
		Query:             u.RawQuery,
		Status:            status,
		Confidence:        s.confidence(u, chains),
		Justification:     s.justify(u, status, chains, supporting, opposing),
		Conditions:        conditions,
		Chains:            chains,
		Clauses:           clauses,
		SupportingClauses: supporting,
		OpposingClauses:   opposing,
	}

	if status == decision.StatusApproved || status == decision.StatusConditional {
		if limit, ok := s.domain.CoverageLimit(u.Attributes.PolicyTier.Text); ok {
			rec.ApprovedAmount = limit
		}
	}

	s.log.Info("decision synthesized",
		logging.String("status", string(status)),
		logging.Float64("confidence", rec.Confidence.Float()),
		logging.Int("findings", len(u.Findings)))
	return rec, nil
}

// resolveStatus applies the outcome rules: a failed chain rejects; otherwise
// any indeterminate chain or a validation error defers to review; otherwise
// the claim is approved, conditionally when the procedure needs
// pre-authorization.
func (s *Synthesizer) resolveStatus(u *query.Understanding, chains []decision.Chain) (decision.Status, []string) {
	anyFail, anyIndeterminate := false, false
	for _, c := range chains {
		switch c.Verdict {
		case decision.VerdictFail:
			anyFail = true
		case decision.VerdictIndeterminate:
			anyIndeterminate = true
		}
	}

	switch {
	case anyFail:
		return decision.StatusRejected, nil
	case anyIndeterminate || u.Validation.HasErrors():
		return decision.StatusNeedsReview, nil
	}

	proc := u.Attributes.Procedure
	if proc.Known && s.requiresPreAuth(proc.Text) {
		return decision.StatusConditional, []string{
			fmt.Sprintf("obtain pre-authorization for %s before admission", proc.Text),
		}
	}
	return decision.StatusApproved, nil
}

func (s *Synthesizer) requiresPreAuth(procedure string) bool {
	for _, p := range s.domain.PreAuthProcedures {
		if p == procedure {
			return true
		}
	}
	return false
}

// confidence computes the weighted chain confidence, applies the per-finding
// penalty down to the floor, then the missing-information cap.
func (s *Synthesizer) confidence(u *query.Understanding, chains []decision.Chain) common.Confidence {
	weighted, totalWeight := 0.0, 0.0
	for _, c := range chains {
		w, ok := s.policy.ChainWeights[string(c.ID)]
		if !ok {
			continue
		}
		weighted += w * c.Confidence.Float()
		totalWeight += w
	}
	conf := 0.0
	if totalWeight > 0 {
		conf = weighted / totalWeight
	}

	conf -= s.policy.FindingPenalty * float64(len(u.Findings))
	if conf < s.policy.ConfidenceFloor {
		conf = s.policy.ConfidenceFloor
	}
	if u.HasFinding(query.FindingMissing) && conf > s.policy.MissingInfoCap {
		conf = s.policy.MissingInfoCap
	}
	return common.Confidence(conf).Clamp().Round4()
}

// justify renders the human-readable explanation, citing clause IDs where
// evidence exists.
func (s *Synthesizer) justify(u *query.Understanding, status decision.Status, chains []decision.Chain, supporting, opposing []string) string {
	var b strings.Builder

	switch status {
	case decision.StatusApproved:
		b.WriteString("Approved: every eligibility check passed")
	case decision.StatusConditional:
		b.WriteString("Approved subject to conditions: every eligibility check passed")
	case decision.StatusRejected:
		b.WriteString("Rejected: ")
		b.WriteString(strings.Join(failureReasons(chains), "; "))
	case decision.StatusNeedsReview:
		b.WriteString("Needs review: ")
		b.WriteString(strings.Join(reviewReasons(u, chains), "; "))
	}
	b.WriteString(".")

	if len(supporting) > 0 {
		fmt.Fprintf(&b, " Supporting clauses: %s.", strings.Join(supporting, ", "))
	}
	if len(opposing) > 0 {
		fmt.Fprintf(&b, " Opposing clauses: %s.", strings.Join(opposing, ", "))
	}
	return b.String()
}

func failureReasons(chains []decision.Chain) []string {
	var out []string
	for _, c := range chains {
		for _, step := range c.FailedSteps() {
			out = append(out, step.Rationale)
		}
	}
	if len(out) == 0 {
		out = append(out, "one or more eligibility checks failed")
	}
	return out
}

func reviewReasons(u *query.Understanding, chains []decision.Chain) []string {
	var out []string
	for _, c := range chains {
		if c.Verdict != decision.VerdictIndeterminate {
			continue
		}
		for _, step := range c.Steps {
			if !step.Advisory && step.Verdict == decision.VerdictIndeterminate {
				out = append(out, step.Rationale)
			}
		}
	}
	for _, iss := range u.Validation.ByMinSeverity(query.SeverityError) {
		out = append(out, iss.Message)
	}
	if len(out) == 0 {
		out = append(out, "decision could not be reached mechanically")
	}
	return out
}

// impactLists returns sorted clause ID lists by impact.
func impactLists(clauses []decision.Clause) (supporting, opposing []string) {
	for _, c := range clauses {
		switch c.Impact {
		case decision.ImpactSupporting:
			supporting = append(supporting, c.ID)
		case decision.ImpactOpposing:
			opposing = append(opposing, c.ID)
		}
	}
	sort.Strings(supporting)
	sort.Strings(opposing)
	return supporting, opposing
}
