// Package evidence turns retrieved policy passages into classified, scored
// clauses and links them to the synthesized decision. Clause identifiers are
// derived from the source passage and clause index, so the same passages
// always produce the same evidence.
package evidence

import (
	"regexp"
	"sort"
	"strings"

	"github.com/clearclaim/clearclaim/internal/config"
	"github.com/clearclaim/clearclaim/internal/domain/decision"
	"github.com/clearclaim/clearclaim/internal/domain/query"
	"github.com/clearclaim/clearclaim/internal/infrastructure/monitoring/logging"
	"github.com/clearclaim/clearclaim/pkg/types/common"
)

// minClauseLen filters out fragments too short to carry meaning.
const minClauseLen = 15

// lengthSaturation is the clause length, in runes, at which the length factor
// of the relevance score reaches 1.
const lengthSaturation = 200

var clauseBoundaryRe = regexp.MustCompile(`[.;\n]+`)

// Mapper extracts and scores clauses against an understood query.
type Mapper struct {
	domain config.DomainConfig
	policy config.ConfidencePolicy
	log    logging.Logger
}

// NewMapper builds a Mapper.
func NewMapper(domain config.DomainConfig, policy config.ConfidencePolicy, log logging.Logger) *Mapper {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Mapper{domain: domain, policy: policy, log: log.Named("evidence")}
}

// Map segments each passage into clauses, classifies them against the domain
// lexicons, and scores their relevance to the query. Clauses come back sorted
// by source ID and index with a neutral impact; TagImpacts assigns impacts
// once the decision status is known. No passages yields no clauses.
func (m *Mapper) Map(u *query.Understanding, passages []decision.Passage) []decision.Clause {
	terms := queryTerms(u)

	var out []decision.Clause
	for _, p := range passages {
		for i, text := range segment(p.Text) {
			out = append(out, decision.Clause{
				ID:        decision.ClauseID(p.SourceID, i),
				SourceID:  p.SourceID,
				Index:     i,
				Text:      text,
				Type:      m.classify(text),
				Relevance: m.relevance(text, terms),
				Impact:    decision.ImpactNeutral,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SourceID != out[j].SourceID {
			return out[i].SourceID < out[j].SourceID
		}
		return out[i].Index < out[j].Index
	})

	m.log.Debug("evidence mapped",
		logging.Int("passages", len(passages)),
		logging.Int("clauses", len(out)))
	return out
}

// segment splits passage text into clause candidates on sentence boundaries
// and semicolons, dropping fragments below the minimum length.
func segment(text string) []string {
	var out []string
	for _, part := range clauseBoundaryRe.Split(text, -1) {
		part = strings.TrimSpace(part)
		if len(part) >= minClauseLen {
			out = append(out, part)
		}
	}
	return out
}

// classify assigns the clause type from the domain lexicons. Rejection
// vocabulary dominates, then conditional, then approval; anything else is
// informational.
func (m *Mapper) classify(text string) decision.ClauseType {
	lower := strings.ToLower(text)
	for _, kw := range m.domain.RejectionKeywords {
		if strings.Contains(lower, kw) {
			return decision.ClauseRejection
		}
	}
	for _, kw := range m.domain.ConditionalKeywords {
		if strings.Contains(lower, kw) {
			return decision.ClauseConditional
		}
	}
	for _, kw := range m.domain.ApprovalKeywords {
		if strings.Contains(lower, kw) {
			return decision.ClauseApproval
		}
	}
	return decision.ClauseInformational
}

// relevance combines the fraction of query terms present in the clause with a
// saturating length factor, using the configured weights.
func (m *Mapper) relevance(text string, terms []string) common.Confidence {
	lower := strings.ToLower(text)

	density := 0.0
	if len(terms) > 0 {
		matched := 0
		for _, t := range terms {
			if strings.Contains(lower, t) {
				matched++
			}
		}
		density = float64(matched) / float64(len(terms))
	}

	lengthFactor := float64(len([]rune(text))) / lengthSaturation
	if lengthFactor > 1 {
		lengthFactor = 1
	}

	score := m.policy.RelevanceKeywordWeight*density + m.policy.RelevanceLengthWeight*lengthFactor
	return common.Confidence(score).Clamp().Round4()
}

// queryTerms collects the deduplicated lower-case vocabulary of the query:
// every expansion term plus the surface form of each known attribute.
func queryTerms(u *query.Understanding) []string {
	if u == nil {
		return nil
	}
	seen := map[string]bool{}
	for _, t := range u.Expansion.Terms {
		seen[strings.ToLower(t.Term)] = true
	}
	for _, a := range u.Attributes.All() {
		if a.Known && a.Text != "" {
			seen[strings.ToLower(a.Text)] = true
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// TagImpacts assigns each clause's impact relative to the decision outcome:
// clauses whose classification agrees with the outcome support it, clauses
// pointing the other way oppose it. A needs_review outcome leaves all clauses
// neutral.
func TagImpacts(clauses []decision.Clause, status decision.Status) {
	for i := range clauses {
		clauses[i].Impact = impactFor(clauses[i].Type, status)
	}
}

func impactFor(t decision.ClauseType, status decision.Status) decision.Impact {
	switch status {
	case decision.StatusApproved:
		switch t {
		case decision.ClauseApproval:
			return decision.ImpactSupporting
		case decision.ClauseRejection:
			return decision.ImpactOpposing
		}
	case decision.StatusConditional:
		switch t {
		case decision.ClauseApproval, decision.ClauseConditional:
			return decision.ImpactSupporting
		case decision.ClauseRejection:
			return decision.ImpactOpposing
		}
	case decision.StatusRejected:
		switch t {
		case decision.ClauseRejection:
			return decision.ImpactSupporting
		case decision.ClauseApproval:
			return decision.ImpactOpposing
		}
	}
	return decision.ImpactNeutral
}
