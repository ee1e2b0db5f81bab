// Package query defines the domain model for query understanding: the
// structured attributes extracted from a raw question, the validation report,
// the expanded term set, and ambiguity findings. The package is pure data
// with no behaviour beyond invariant-preserving accessors, so every layer can
// depend on it without cycles.
package query

import (
	"github.com/clearclaim/clearclaim/pkg/types/common"
)

// AttributeKind identifies one of the structured attributes the engine
// recognises in a claim query.
type AttributeKind string

const (
	KindAge            AttributeKind = "age"
	KindGender         AttributeKind = "gender"
	KindProcedure      AttributeKind = "procedure"
	KindCondition      AttributeKind = "condition"
	KindLocation       AttributeKind = "location"
	KindPolicyDuration AttributeKind = "policy_duration"
	KindPolicyTier     AttributeKind = "policy_tier"
	KindClaimAmount    AttributeKind = "claim_amount"
	KindUrgency        AttributeKind = "urgency"
)

// Kinds returns all attribute kinds in their canonical order. Every loop over
// attributes uses this order so derived collections stay deterministic.
func Kinds() []AttributeKind {
	return []AttributeKind{
		KindAge, KindGender, KindProcedure, KindCondition,
		KindLocation, KindPolicyDuration, KindPolicyTier, KindClaimAmount,
		KindUrgency,
	}
}

// Attribute is a single extracted attribute. Known distinguishes "the query
// did not mention this" from a legitimate zero value; downstream checks that
// need an unknown attribute return an indeterminate verdict rather than
// guessing.
type Attribute struct {
	Kind AttributeKind `json:"kind"`

	// Known is true when the attribute was present in the query text.
	Known bool `json:"known"`

	// Text is the normalized surface form (lower case, trimmed), e.g.
	// "knee surgery" or "female". Empty when !Known.
	Text string `json:"text,omitempty"`

	// IntValue carries the numeric value for age (years) and policy_duration
	// (months). Zero for other kinds.
	IntValue int `json:"int_value,omitempty"`

	// Amount carries the monetary value for claim_amount.
	Amount common.Money `json:"amount,omitempty"`

	// Confidence reflects extraction certainty for this attribute.
	Confidence common.Confidence `json:"confidence"`
}

// Unknown returns the canonical unknown attribute for a kind.
func Unknown(kind AttributeKind) Attribute {
	return Attribute{Kind: kind}
}

// AttributeSet holds one slot per attribute kind. Slots always carry the
// correct Kind even when unknown.
type AttributeSet struct {
	Age            Attribute `json:"age"`
	Gender         Attribute `json:"gender"`
	Procedure      Attribute `json:"procedure"`
	Condition      Attribute `json:"condition"`
	Location       Attribute `json:"location"`
	PolicyDuration Attribute `json:"policy_duration"`
	PolicyTier     Attribute `json:"policy_tier"`
	ClaimAmount    Attribute `json:"claim_amount"`
	Urgency        Attribute `json:"urgency"`
}

// NewAttributeSet returns a set with every slot in the unknown state.
func NewAttributeSet() AttributeSet {
	return AttributeSet{
		Age:            Unknown(KindAge),
		Gender:         Unknown(KindGender),
		Procedure:      Unknown(KindProcedure),
		Condition:      Unknown(KindCondition),
		Location:       Unknown(KindLocation),
		PolicyDuration: Unknown(KindPolicyDuration),
		PolicyTier:     Unknown(KindPolicyTier),
		ClaimAmount:    Unknown(KindClaimAmount),
		Urgency:        Unknown(KindUrgency),
	}
}

// Get returns the slot for kind. Unrecognised kinds return an unknown
// attribute of that kind.
func (s AttributeSet) Get(kind AttributeKind) Attribute {
	switch kind {
	case KindAge:
		return s.Age
	case KindGender:
		return s.Gender
	case KindProcedure:
		return s.Procedure
	case KindCondition:
		return s.Condition
	case KindLocation:
		return s.Location
	case KindPolicyDuration:
		return s.PolicyDuration
	case KindPolicyTier:
		return s.PolicyTier
	case KindClaimAmount:
		return s.ClaimAmount
	case KindUrgency:
		return s.Urgency
	default:
		return Unknown(kind)
	}
}

// Set stores attr in the slot matching attr.Kind. Unrecognised kinds are
// ignored.
func (s *AttributeSet) Set(attr Attribute) {
	switch attr.Kind {
	case KindAge:
		s.Age = attr
	case KindGender:
		s.Gender = attr
	case KindProcedure:
		s.Procedure = attr
	case KindCondition:
		s.Condition = attr
	case KindLocation:
		s.Location = attr
	case KindPolicyDuration:
		s.PolicyDuration = attr
	case KindPolicyTier:
		s.PolicyTier = attr
	case KindClaimAmount:
		s.ClaimAmount = attr
	case KindUrgency:
		s.Urgency = attr
	}
}

// All returns every slot in canonical kind order.
func (s AttributeSet) All() []Attribute {
	out := make([]Attribute, 0, len(Kinds()))
	for _, k := range Kinds() {
		out = append(out, s.Get(k))
	}
	return out
}

// KnownKinds returns the kinds present in the query, in canonical order.
func (s AttributeSet) KnownKinds() []AttributeKind {
	var out []AttributeKind
	for _, k := range Kinds() {
		if s.Get(k).Known {
			out = append(out, k)
		}
	}
	return out
}

// MissingKinds returns the kinds absent from the query, in canonical order.
func (s AttributeSet) MissingKinds() []AttributeKind {
	var out []AttributeKind
	for _, k := range Kinds() {
		if !s.Get(k).Known {
			out = append(out, k)
		}
	}
	return out
}
