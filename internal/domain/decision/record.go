package decision

import (
	"github.com/clearclaim/clearclaim/pkg/types/common"
)

// Status is the final outcome of a decision.
type Status string

const (
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	// StatusConditional means every check passed but coverage hinges on a
	// requirement such as pre-authorization.
	StatusConditional Status = "conditional"
	// StatusNeedsReview means the engine could not decide mechanically:
	// indeterminate chains, validation errors, or conflicting evidence.
	StatusNeedsReview Status = "needs_review"
)

// Record is the complete decision handed to callers. Records are bit-stable:
// two invocations with identical inputs and configuration produce identical
// records, so the struct deliberately carries no timestamps and no random
// identifiers.
type Record struct {
	Query  string `json:"query"`
	Status Status `json:"status"`

	// Confidence is the weighted chain confidence after ambiguity penalties,
	// rounded to 4 decimals.
	Confidence common.Confidence `json:"confidence"`

	// ApprovedAmount is the applicable coverage limit when Status is approved
	// or conditional; zero otherwise.
	ApprovedAmount common.Money `json:"approved_amount,omitempty"`

	// Justification is the human-readable explanation, citing clause IDs.
	Justification string `json:"justification"`

	// Conditions lists requirements that must be met when Status is
	// conditional, sorted.
	Conditions []string `json:"conditions,omitempty"`

	// Chains holds the executed reasoning chains in canonical order.
	Chains []Chain `json:"chains"`

	// Clauses holds the evidence clauses with final impact tags, sorted by ID.
	Clauses []Clause `json:"clauses,omitempty"`

	// SupportingClauses and OpposingClauses list clause IDs by impact, sorted.
	SupportingClauses []string `json:"supporting_clauses,omitempty"`
	OpposingClauses   []string `json:"opposing_clauses,omitempty"`
}

// ChainByID returns the executed chain with the given ID, or false.
func (r *Record) ChainByID(id ChainID) (Chain, bool) {
	for _, c := range r.Chains {
		if c.ID == id {
			return c, true
		}
	}
	return Chain{}, false
}

// Decided reports whether the engine reached a mechanical outcome rather than
// deferring to review.
func (r *Record) Decided() bool {
	return r.Status != StatusNeedsReview
}
