// Package extractor turns raw query text into the structured AttributeSet and
// produces the advisory validation report. Extraction is pattern- and
// table-driven: numeric attributes come from regular expressions, categorical
// attributes from the domain tables, with longest-match-wins resolution so
// "knee replacement surgery" binds to the knee procedure rather than the
// generic term.
package extractor

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/clearclaim/clearclaim/internal/config"
	"github.com/clearclaim/clearclaim/internal/domain/query"
	"github.com/clearclaim/clearclaim/internal/infrastructure/monitoring/logging"
	"github.com/clearclaim/clearclaim/pkg/types/common"
)

// Extraction certainty by evidence strength. Explicit numeric matches are
// near-certain; table hits are strong; vague fallbacks are weak.
const (
	confExplicit = 0.95
	confTableHit = 0.85
	confVague    = 0.4
)

var (
	ageRe = regexp.MustCompile(`\b(\d{1,3})\s*(?:-?\s*(?:year|yr)s?\s*-?\s*old|years?\s+of\s+age)\b`)
	// bare "age 45" / "aged 45"
	ageLabelRe = regexp.MustCompile(`\bage[d]?\s*[:]?\s*(\d{1,3})\b`)

	// The optional word between "old" and "policy" admits tier mentions such
	// as "3-month-old premium policy".
	durationMonthsRe = regexp.MustCompile(`\b(\d{1,3})\s*-?\s*months?\s*-?\s*(?:old\s+)?(?:[a-z]+\s+)?(?:policy|plan|cover)\b`)
	durationYearsRe  = regexp.MustCompile(`\b(\d{1,2})\s*-?\s*years?\s*-?\s*(?:old\s+)?(?:[a-z]+\s+)?(?:policy|plan|cover)\b`)
	policyForRe      = regexp.MustCompile(`\b(?:policy|plan|cover)\s+(?:of|for|since)\s+(\d{1,3})\s*months?\b`)

	amountRe = regexp.MustCompile(`(?:rs\.?|inr|₹)\s*([\d,]+)`)

	maleRe   = regexp.MustCompile(`\b(?:male|man|gentleman|boy|he|his)\b`)
	femaleRe = regexp.MustCompile(`\b(?:female|woman|lady|girl|she|her)\b`)

	urgentRe = regexp.MustCompile(`\b(?:emergency|urgent(?:ly)?|immediately|asap|critical|life.threatening)\b`)
)

// Extractor performs attribute extraction against an immutable domain
// configuration.
type Extractor struct {
	domain config.DomainConfig
	log    logging.Logger

	// phrase indexes built once at construction, longest phrase first
	procedurePhrases []phrase
	conditionPhrases []phrase
	tierPhrases      []phrase
}

type phrase struct {
	text      string
	canonical string
}

// New builds an Extractor from the domain tables.
func New(domain config.DomainConfig, log logging.Logger) *Extractor {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Extractor{
		domain:           domain,
		log:              log.Named("extractor"),
		procedurePhrases: buildPhrases(domain.ProcedureSynonyms),
		conditionPhrases: buildPhrases(domain.ConditionSynonyms),
		tierPhrases:      buildTierPhrases(domain.PolicyTermAliases),
	}
}

// buildPhrases flattens a canonical→synonyms table into a phrase list sorted
// longest first, then lexicographically for determinism.
func buildPhrases(table map[string][]string) []phrase {
	var out []phrase
	for canonical, synonyms := range table {
		out = append(out, phrase{text: canonical, canonical: canonical})
		for _, s := range synonyms {
			out = append(out, phrase{text: strings.ToLower(s), canonical: canonical})
		}
	}
	sortPhrases(out)
	return out
}

// buildTierPhrases keeps only the tier vocabulary out of the policy-term
// aliases.
func buildTierPhrases(aliases map[string][]string) []phrase {
	tiers := []string{"premium", "standard", "basic"}
	var out []phrase
	for _, tier := range tiers {
		out = append(out, phrase{text: tier, canonical: tier})
		for _, a := range aliases[tier] {
			out = append(out, phrase{text: strings.ToLower(a), canonical: tier})
		}
	}
	sortPhrases(out)
	return out
}

func sortPhrases(ps []phrase) {
	sort.SliceStable(ps, func(i, j int) bool {
		if len(ps[i].text) != len(ps[j].text) {
			return len(ps[i].text) > len(ps[j].text)
		}
		return ps[i].text < ps[j].text
	})
}

// containsPhrase reports whether text contains p as a word-bounded substring.
func containsPhrase(text, p string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], p)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(p)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '-'
}

// matchPhrase returns the canonical value of the longest phrase found in
// text.
func matchPhrase(text string, phrases []phrase) (string, string, bool) {
	for _, p := range phrases {
		if containsPhrase(text, p.text) {
			return p.canonical, p.text, true
		}
	}
	return "", "", false
}

// Extract parses rawText into an AttributeSet. It never fails: attributes it
// cannot find stay in the unknown state.
func (e *Extractor) Extract(rawText string) query.AttributeSet {
	text := normalize(rawText)
	attrs := query.NewAttributeSet()

	if age, ok := extractAge(text); ok {
		attrs.Set(query.Attribute{
			Kind: query.KindAge, Known: true,
			Text: strconv.Itoa(age), IntValue: age,
			Confidence: confExplicit,
		})
	}
	if gender, ok := extractGender(text); ok {
		attrs.Set(query.Attribute{
			Kind: query.KindGender, Known: true,
			Text: gender, Confidence: confExplicit,
		})
	}
	if canonical, _, ok := matchPhrase(text, e.procedurePhrases); ok {
		attrs.Set(query.Attribute{
			Kind: query.KindProcedure, Known: true,
			Text: canonical, Confidence: confTableHit,
		})
	} else if vague, ok := e.vagueProcedureTerm(text); ok {
		// A generic mention still counts as "procedure present"; the
		// disambiguator raises the vague finding from the low confidence
		// surface form.
		attrs.Set(query.Attribute{
			Kind: query.KindProcedure, Known: true,
			Text: vague, Confidence: confVague,
		})
	}
	if canonical, _, ok := matchPhrase(text, e.conditionPhrases); ok {
		attrs.Set(query.Attribute{
			Kind: query.KindCondition, Known: true,
			Text: canonical, Confidence: confTableHit,
		})
	}
	if loc, ok := e.extractLocation(text); ok {
		attrs.Set(query.Attribute{
			Kind: query.KindLocation, Known: true,
			Text: loc, Confidence: confTableHit,
		})
	}
	if months, ok := extractPolicyDuration(text); ok {
		attrs.Set(query.Attribute{
			Kind: query.KindPolicyDuration, Known: true,
			Text: strconv.Itoa(months) + " months", IntValue: months,
			Confidence: confExplicit,
		})
	}
	if canonical, _, ok := matchPhrase(text, e.tierPhrases); ok {
		attrs.Set(query.Attribute{
			Kind: query.KindPolicyTier, Known: true,
			Text: canonical, Confidence: confTableHit,
		})
	}
	if urgentRe.MatchString(text) {
		attrs.Set(query.Attribute{
			Kind: query.KindUrgency, Known: true,
			Text: "high", Confidence: confTableHit,
		})
	}
	if amount, ok := extractAmount(text, e.domain.Currency); ok {
		attrs.Set(query.Attribute{
			Kind: query.KindClaimAmount, Known: true,
			Text: amount.String(), Amount: amount,
			Confidence: confExplicit,
		})
	}

	e.log.Debug("attributes extracted",
		logging.Int("known", len(attrs.KnownKinds())),
		logging.Int("missing", len(attrs.MissingKinds())))
	return attrs
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func extractAge(text string) (int, bool) {
	for _, re := range []*regexp.Regexp{ageRe, ageLabelRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			age, err := strconv.Atoi(m[1])
			if err == nil && age >= 0 && age <= 130 {
				return age, true
			}
		}
	}
	return 0, false
}

func extractGender(text string) (string, bool) {
	male := maleRe.MatchString(text)
	female := femaleRe.MatchString(text)
	switch {
	case male && !female:
		return "male", true
	case female && !male:
		return "female", true
	default:
		// Both or neither: leave unknown; the disambiguator reports the
		// conflicting mention case separately.
		return "", false
	}
}

func extractPolicyDuration(text string) (int, bool) {
	if m := durationMonthsRe.FindStringSubmatch(text); m != nil {
		if months, err := strconv.Atoi(m[1]); err == nil {
			return months, true
		}
	}
	if m := policyForRe.FindStringSubmatch(text); m != nil {
		if months, err := strconv.Atoi(m[1]); err == nil {
			return months, true
		}
	}
	if m := durationYearsRe.FindStringSubmatch(text); m != nil {
		if years, err := strconv.Atoi(m[1]); err == nil {
			return years * 12, true
		}
	}
	return 0, false
}

func extractAmount(text, currency string) (common.Money, bool) {
	m := amountRe.FindStringSubmatch(text)
	if m == nil {
		return common.Money{}, false
	}
	digits := strings.ReplaceAll(m[1], ",", "")
	major, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || major < 0 {
		return common.Money{}, false
	}
	return common.Money{Amount: major * 100, Currency: currency}, true
}

func (e *Extractor) extractLocation(text string) (string, bool) {
	for _, city := range e.domain.KnownLocations {
		if containsPhrase(text, strings.ToLower(city)) {
			return strings.ToLower(city), true
		}
	}
	return "", false
}

func (e *Extractor) vagueProcedureTerm(text string) (string, bool) {
	for _, term := range e.domain.VagueProcedureTerms {
		if containsPhrase(text, strings.ToLower(term)) {
			return strings.ToLower(term), true
		}
	}
	return "", false
}

// GenderMentions reports whether the text mentions male and female vocabulary
// respectively. The disambiguator uses this to detect conflicting statements.
func GenderMentions(rawText string) (male, female bool) {
	text := normalize(rawText)
	return maleRe.MatchString(text), femaleRe.MatchString(text)
}

// AgeMentions returns every distinct age value mentioned, ascending. More
// than one distinct value is a conflict.
func AgeMentions(rawText string) []int {
	text := normalize(rawText)
	seen := map[int]bool{}
	for _, re := range []*regexp.Regexp{ageRe, ageLabelRe} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if age, err := strconv.Atoi(m[1]); err == nil && age >= 0 && age <= 130 {
				seen[age] = true
			}
		}
	}
	out := make([]int, 0, len(seen))
	for age := range seen {
		out = append(out, age)
	}
	sort.Ints(out)
	return out
}
