package extractor

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/clearclaim/clearclaim/internal/domain/query"
)

// minQueryRunes is the shortest query worth assessing; anything shorter is
// flagged as an error (the pipeline still runs in degraded mode).
const minQueryRunes = 10

// Validator inspects the raw text and extracted attributes and produces the
// advisory validation report. Validation never blocks the pipeline: errors
// steer the final decision to needs_review, warnings and suggestions only
// inform the caller.
type Validator struct{}

// NewValidator constructs a Validator.
func NewValidator() *Validator { return &Validator{} }

// Validate builds the report for a query. Ordering of issues is fixed
// (errors, then warnings, then suggestions, each in attribute order) so the
// report is deterministic.
func (v *Validator) Validate(rawText string, attrs query.AttributeSet) query.ValidationReport {
	var issues []query.ValidationIssue

	if !hasLetters(rawText) {
		issues = append(issues, query.ValidationIssue{
			Severity: query.SeverityError,
			Message:  "query contains no readable text",
		})
	} else if utf8.RuneCountInString(strings.TrimSpace(rawText)) < minQueryRunes {
		issues = append(issues, query.ValidationIssue{
			Severity: query.SeverityError,
			Message:  "query is too short to assess",
		})
	}
	if !attrs.Procedure.Known && !attrs.Condition.Known {
		issues = append(issues, query.ValidationIssue{
			Severity: query.SeverityError,
			Message:  "query names no procedure or medical condition to assess",
		})
	}
	if attrs.Age.Known && (attrs.Age.IntValue < 0 || attrs.Age.IntValue > 120) {
		issues = append(issues, query.ValidationIssue{
			Severity:  query.SeverityError,
			Attribute: query.KindAge,
			Message:   fmt.Sprintf("age %d is outside the plausible range 0-120", attrs.Age.IntValue),
		})
	}
	if attrs.PolicyDuration.Known && attrs.PolicyDuration.IntValue <= 0 {
		issues = append(issues, query.ValidationIssue{
			Severity:  query.SeverityError,
			Attribute: query.KindPolicyDuration,
			Message:   "policy duration must be a positive number of months",
		})
	}

	warnFor := []query.AttributeKind{query.KindAge, query.KindPolicyDuration}
	for _, kind := range warnFor {
		if !attrs.Get(kind).Known {
			issues = append(issues, query.ValidationIssue{
				Severity:  query.SeverityWarning,
				Attribute: kind,
				Message:   fmt.Sprintf("query does not state the %s", label(kind)),
			})
		}
	}

	suggestFor := []query.AttributeKind{query.KindPolicyTier, query.KindLocation}
	for _, kind := range suggestFor {
		if !attrs.Get(kind).Known {
			issues = append(issues, query.ValidationIssue{
				Severity:  query.SeveritySuggestion,
				Attribute: kind,
				Message:   fmt.Sprintf("adding the %s would sharpen the decision", label(kind)),
			})
		}
	}

	return query.ValidationReport{Issues: issues}
}

func label(kind query.AttributeKind) string {
	switch kind {
	case query.KindAge:
		return "patient age"
	case query.KindPolicyDuration:
		return "policy duration"
	case query.KindPolicyTier:
		return "policy tier"
	case query.KindLocation:
		return "treatment location"
	default:
		return string(kind)
	}
}

func hasLetters(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
