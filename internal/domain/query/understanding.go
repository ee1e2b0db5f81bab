package query

import "sort"

// Severity ranks validation issues. Errors mark the query as not decidable
// with confidence; warnings and suggestions never block the pipeline.
type Severity string

const (
	SeverityError      Severity = "error"
	SeverityWarning    Severity = "warning"
	SeveritySuggestion Severity = "suggestion"
)

// ValidationIssue is a single problem or improvement hint about the query.
type ValidationIssue struct {
	Severity  Severity      `json:"severity"`
	Attribute AttributeKind `json:"attribute,omitempty"`
	Message   string        `json:"message"`
}

// ValidationReport aggregates the issues found during query validation.
// Validation is advisory: a report full of errors still flows through the
// pipeline and surfaces as a needs_review decision.
type ValidationReport struct {
	Issues []ValidationIssue `json:"issues,omitempty"`
}

// HasErrors reports whether any issue has error severity.
func (r ValidationReport) HasErrors() bool {
	for _, iss := range r.Issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ByMinSeverity returns the issues at or above the given severity, preserving
// order. Severity ordering: error > warning > suggestion.
func (r ValidationReport) ByMinSeverity(min Severity) []ValidationIssue {
	rank := map[Severity]int{SeverityError: 2, SeverityWarning: 1, SeveritySuggestion: 0}
	var out []ValidationIssue
	for _, iss := range r.Issues {
		if rank[iss.Severity] >= rank[min] {
			out = append(out, iss)
		}
	}
	return out
}

// ExpansionTerm is one alternate phrasing produced by semantic expansion,
// tied to the attribute and canonical term it expands.
type ExpansionTerm struct {
	Attribute AttributeKind `json:"attribute"`
	Canonical string        `json:"canonical"`
	Term      string        `json:"term"`
}

// ExpandedQuery carries the original text plus the deduplicated, sorted
// expansion terms. Running expansion over an already-expanded query yields
// the identical term set.
type ExpandedQuery struct {
	Original string          `json:"original"`
	Terms    []ExpansionTerm `json:"terms,omitempty"`
}

// SortTerms orders terms by attribute (canonical kind order), then canonical
// term, then term, and removes duplicates in place.
func (e *ExpandedQuery) SortTerms() {
	kindRank := make(map[AttributeKind]int, len(Kinds()))
	for i, k := range Kinds() {
		kindRank[k] = i
	}
	sort.SliceStable(e.Terms, func(i, j int) bool {
		a, b := e.Terms[i], e.Terms[j]
		if a.Attribute != b.Attribute {
			return kindRank[a.Attribute] < kindRank[b.Attribute]
		}
		if a.Canonical != b.Canonical {
			return a.Canonical < b.Canonical
		}
		return a.Term < b.Term
	})
	deduped := e.Terms[:0]
	for i, t := range e.Terms {
		if i > 0 && t == e.Terms[i-1] {
			continue
		}
		deduped = append(deduped, t)
	}
	e.Terms = deduped
}

// TermsFor returns the expansion terms for one attribute kind, in sorted
// order.
func (e ExpandedQuery) TermsFor(kind AttributeKind) []string {
	var out []string
	for _, t := range e.Terms {
		if t.Attribute == kind {
			out = append(out, t.Term)
		}
	}
	return out
}

// FindingKind classifies an ambiguity finding.
type FindingKind string

const (
	// FindingVague marks a reference too generic to decide on, e.g. bare
	// "surgery" with no procedure named.
	FindingVague FindingKind = "vague"
	// FindingMissing marks an attribute a decision would need but the query
	// omits.
	FindingMissing FindingKind = "missing"
	// FindingConflicting marks mutually inconsistent statements in the query.
	FindingConflicting FindingKind = "conflicting"
)

// DisambiguationFinding is one detected ambiguity. Findings never block the
// pipeline; they lower confidence and may steer the decision to needs_review.
type DisambiguationFinding struct {
	Kind      FindingKind   `json:"kind"`
	Attribute AttributeKind `json:"attribute,omitempty"`
	// Subject is the query fragment the finding is about.
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
	// Suggestions list concrete clarifications the caller can relay to the
	// user, sorted.
	Suggestions []string `json:"suggestions,omitempty"`
}

// Understanding is the complete result of the query-understanding phase and
// the sole input (besides passages) to the decision phase.
type Understanding struct {
	RawQuery   string                  `json:"raw_query"`
	Attributes AttributeSet            `json:"attributes"`
	Validation ValidationReport        `json:"validation"`
	Expansion  ExpandedQuery           `json:"expansion"`
	Findings   []DisambiguationFinding `json:"findings,omitempty"`
}

// HasFinding reports whether any finding of the given kind is present.
func (u *Understanding) HasFinding(kind FindingKind) bool {
	for _, f := range u.Findings {
		if f.Kind == kind {
			return true
		}
	}
	return false
}

// SortFindings orders findings by kind, then attribute, then subject, so
// identical inputs always yield identical finding order.
func (u *Understanding) SortFindings() {
	sort.SliceStable(u.Findings, func(i, j int) bool {
		a, b := u.Findings[i], u.Findings[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Attribute != b.Attribute {
			return a.Attribute < b.Attribute
		}
		return a.Subject < b.Subject
	})
}
