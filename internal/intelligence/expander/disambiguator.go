package expander

import (
	"fmt"
	"sort"
	"strings"

	"github.com/clearclaim/clearclaim/internal/config"
	"github.com/clearclaim/clearclaim/internal/domain/query"
	"github.com/clearclaim/clearclaim/internal/intelligence/extractor"
)

// decisionRelevantKinds are the attributes the reasoning chains consume
// directly; each one absent from a query yields a missing-information
// finding.
var decisionRelevantKinds = []query.AttributeKind{
	query.KindAge,
	query.KindGender,
	query.KindProcedure,
	query.KindPolicyDuration,
	query.KindPolicyTier,
}

// Disambiguator detects vague references, missing decision-relevant
// attributes, and conflicting statements. Findings are advisory: they lower
// confidence downstream but never stop the pipeline.
type Disambiguator struct {
	domain config.DomainConfig
}

// NewDisambiguator builds a Disambiguator over the domain tables.
func NewDisambiguator(domain config.DomainConfig) *Disambiguator {
	return &Disambiguator{domain: domain}
}

// Findings returns the sorted ambiguity findings for a query.
func (d *Disambiguator) Findings(rawText string, attrs query.AttributeSet) []query.DisambiguationFinding {
	var out []query.DisambiguationFinding

	out = append(out, d.vagueFindings(attrs)...)
	out = append(out, d.missingFindings(attrs)...)
	out = append(out, d.conflictFindings(rawText)...)

	u := query.Understanding{Findings: out}
	u.SortFindings()
	return u.Findings
}

func (d *Disambiguator) vagueFindings(attrs query.AttributeSet) []query.DisambiguationFinding {
	p := attrs.Procedure
	if !p.Known || !d.isVague(p.Text) {
		return nil
	}
	suggestions := d.procedureSuggestions(p.Text)
	return []query.DisambiguationFinding{{
		Kind:        query.FindingVague,
		Attribute:   query.KindProcedure,
		Subject:     p.Text,
		Message:     fmt.Sprintf("%q is too generic to assess; name the specific procedure", p.Text),
		Suggestions: suggestions,
	}}
}

func (d *Disambiguator) isVague(term string) bool {
	for _, v := range d.domain.VagueProcedureTerms {
		if strings.EqualFold(v, term) {
			return true
		}
	}
	return false
}

// procedureSuggestions proposes canonical procedures whose name contains the
// vague term, sorted; capped to keep findings readable.
func (d *Disambiguator) procedureSuggestions(vague string) []string {
	var out []string
	for canonical := range d.domain.ProcedureSynonyms {
		if strings.Contains(canonical, vague) {
			out = append(out, canonical)
		}
	}
	sort.Strings(out)
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

func (d *Disambiguator) missingFindings(attrs query.AttributeSet) []query.DisambiguationFinding {
	var out []query.DisambiguationFinding
	for _, kind := range decisionRelevantKinds {
		if attrs.Get(kind).Known {
			continue
		}
		out = append(out, query.DisambiguationFinding{
			Kind:      query.FindingMissing,
			Attribute: kind,
			Subject:   string(kind),
			Message:   fmt.Sprintf("decision needs the %s but the query omits it", strings.ReplaceAll(string(kind), "_", " ")),
		})
	}
	return out
}

func (d *Disambiguator) conflictFindings(rawText string) []query.DisambiguationFinding {
	var out []query.DisambiguationFinding

	if male, female := extractor.GenderMentions(rawText); male && female {
		out = append(out, query.DisambiguationFinding{
			Kind:      query.FindingConflicting,
			Attribute: query.KindGender,
			Subject:   "gender",
			Message:   "query mentions both male and female; state which applies",
		})
	}

	if ages := extractor.AgeMentions(rawText); len(ages) > 1 {
		parts := make([]string, len(ages))
		for i, a := range ages {
			parts[i] = fmt.Sprintf("%d", a)
		}
		out = append(out, query.DisambiguationFinding{
			Kind:      query.FindingConflicting,
			Attribute: query.KindAge,
			Subject:   "age",
			Message:   fmt.Sprintf("query states multiple ages (%s); state which applies", strings.Join(parts, ", ")),
		})
	}

	return out
}
