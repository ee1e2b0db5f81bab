// Package expander enriches an understood query with domain synonyms and
// detects ambiguities that a decision would have to work around. Expansion is
// driven entirely by the extracted attributes, never by re-parsing text, which
// makes it idempotent: expanding an already-expanded query reproduces the
// identical term set.
package expander

import (
	"strings"

	"github.com/clearclaim/clearclaim/internal/config"
	"github.com/clearclaim/clearclaim/internal/domain/query"
	"github.com/clearclaim/clearclaim/internal/infrastructure/monitoring/logging"
)

// Expander produces the expanded term set for retrieval and evidence scoring.
type Expander struct {
	domain config.DomainConfig
	log    logging.Logger
}

// New builds an Expander over the domain tables.
func New(domain config.DomainConfig, log logging.Logger) *Expander {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Expander{domain: domain, log: log.Named("expander")}
}

// Expand returns the expansion for rawText given its extracted attributes.
// Each known categorical attribute contributes its canonical term plus every
// table synonym; terms are deduplicated and sorted.
func (e *Expander) Expand(rawText string, attrs query.AttributeSet) query.ExpandedQuery {
	out := query.ExpandedQuery{Original: rawText}

	add := func(kind query.AttributeKind, canonical string, table map[string][]string) {
		out.Terms = append(out.Terms, query.ExpansionTerm{
			Attribute: kind, Canonical: canonical, Term: canonical,
		})
		for _, syn := range table[canonical] {
			out.Terms = append(out.Terms, query.ExpansionTerm{
				Attribute: kind, Canonical: canonical, Term: strings.ToLower(syn),
			})
		}
	}

	if p := attrs.Procedure; p.Known {
		add(query.KindProcedure, p.Text, e.domain.ProcedureSynonyms)
	}
	if c := attrs.Condition; c.Known {
		add(query.KindCondition, c.Text, e.domain.ConditionSynonyms)
	}
	if t := attrs.PolicyTier; t.Known {
		add(query.KindPolicyTier, t.Text, e.domain.PolicyTermAliases)
	}
	if a := attrs.Age; a.Known {
		// Age-band descriptors steer retrieval toward age-appropriate
		// clauses ("senior citizen cover" and the like).
		if band, ok := e.domain.BandForAge(a.IntValue); ok {
			out.Terms = append(out.Terms, query.ExpansionTerm{
				Attribute: query.KindAge, Canonical: band.Name, Term: band.Name,
			})
		}
	}
	if u := attrs.Urgency; u.Known && u.Text == "high" {
		for _, term := range e.domain.EmergencyContextTerms {
			out.Terms = append(out.Terms, query.ExpansionTerm{
				Attribute: query.KindUrgency, Canonical: "high", Term: strings.ToLower(term),
			})
		}
	}

	out.SortTerms()
	e.log.Debug("query expanded", logging.Int("terms", len(out.Terms)))
	return out
}
