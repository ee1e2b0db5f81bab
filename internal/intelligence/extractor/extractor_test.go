package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearclaim/clearclaim/internal/config"
	"github.com/clearclaim/clearclaim/internal/domain/query"
	"github.com/clearclaim/clearclaim/internal/infrastructure/monitoring/logging"
)

func newExtractor(t *testing.T) *Extractor {
	t.Helper()
	return New(config.Defaults().Domain, logging.NewNopLogger())
}

func TestExtractFullQuery(t *testing.T) {
	e := newExtractor(t)
	attrs := e.Extract("Knee surgery for a 45-year-old male with a 3-month-old premium policy in Pune")

	age := attrs.Get(query.KindAge)
	require.True(t, age.Known)
	assert.Equal(t, 45, age.IntValue)

	assert.Equal(t, "male", attrs.Gender.Text)
	assert.Equal(t, "knee surgery", attrs.Procedure.Text)
	assert.Equal(t, "pune", attrs.Location.Text)

	dur := attrs.Get(query.KindPolicyDuration)
	require.True(t, dur.Known)
	assert.Equal(t, 3, dur.IntValue)

	assert.Equal(t, "premium", attrs.PolicyTier.Text)
	assert.False(t, attrs.Condition.Known)
	assert.False(t, attrs.ClaimAmount.Known)
}

func TestExtractSynonymMapsToCanonical(t *testing.T) {
	e := newExtractor(t)
	attrs := e.Extract("Is a total hip replacement covered for my father?")
	assert.Equal(t, "hip replacement", attrs.Procedure.Text)
}

func TestExtractConditionSynonym(t *testing.T) {
	e := newExtractor(t)
	attrs := e.Extract("Claim for high blood pressure medication")
	require.True(t, attrs.Condition.Known)
	assert.Equal(t, "hypertension", attrs.Condition.Text)
}

func TestExtractVagueProcedureLowConfidence(t *testing.T) {
	e := newExtractor(t)
	attrs := e.Extract("Is surgery covered?")
	require.True(t, attrs.Procedure.Known)
	assert.Equal(t, "surgery", attrs.Procedure.Text)
	assert.Less(t, attrs.Procedure.Confidence.Float(), 0.5)
}

func TestExtractPolicyDurationVariants(t *testing.T) {
	e := newExtractor(t)

	cases := map[string]int{
		"my policy of 6 months covers dialysis":       6,
		"2-year-old standard policy, cataract surgery": 24,
		"12 month policy for knee surgery":            12,
	}
	for text, months := range cases {
		attrs := e.Extract(text)
		dur := attrs.Get(query.KindPolicyDuration)
		require.True(t, dur.Known, "query: %s", text)
		assert.Equal(t, months, dur.IntValue, "query: %s", text)
	}
}

func TestExtractAmountInMinorUnits(t *testing.T) {
	e := newExtractor(t)
	attrs := e.Extract("knee surgery claim of Rs 30,000")
	require.True(t, attrs.ClaimAmount.Known)
	assert.Equal(t, int64(30000_00), attrs.ClaimAmount.Amount.Amount)
	assert.Equal(t, "INR", attrs.ClaimAmount.Amount.Currency)
}

func TestExtractAmbiguousGenderStaysUnknown(t *testing.T) {
	e := newExtractor(t)
	attrs := e.Extract("knee surgery for a male or female patient")
	assert.False(t, attrs.Gender.Known)

	male, female := GenderMentions("knee surgery for a male or female patient")
	assert.True(t, male)
	assert.True(t, female)
}

func TestFemaleDoesNotMatchMale(t *testing.T) {
	male, female := GenderMentions("maternity care for a female patient")
	assert.False(t, male)
	assert.True(t, female)
}

func TestAgeMentionsDistinct(t *testing.T) {
	ages := AgeMentions("the 45-year-old patient, aged 50")
	assert.Equal(t, []int{45, 50}, ages)

	assert.Empty(t, AgeMentions("knee surgery covered?"))
}

func TestExtractNothing(t *testing.T) {
	e := newExtractor(t)
	attrs := e.Extract("hello there")
	assert.Empty(t, attrs.KnownKinds())
}

func TestValidatorErrorsWhenNoSubject(t *testing.T) {
	v := NewValidator()
	e := newExtractor(t)
	attrs := e.Extract("what does my plan say")

	report := v.Validate("what does my plan say", attrs)
	assert.True(t, report.HasErrors())
}

func TestValidatorWarnsOnMissingAgeAndDuration(t *testing.T) {
	v := NewValidator()
	e := newExtractor(t)
	attrs := e.Extract("Is cataract surgery covered?")

	report := v.Validate("Is cataract surgery covered?", attrs)
	assert.False(t, report.HasErrors())

	warnings := report.ByMinSeverity(query.SeverityWarning)
	kinds := make([]query.AttributeKind, 0, len(warnings))
	for _, w := range warnings {
		kinds = append(kinds, w.Attribute)
	}
	assert.Contains(t, kinds, query.KindAge)
	assert.Contains(t, kinds, query.KindPolicyDuration)
}

func TestValidatorCompleteQueryOnlySuggestions(t *testing.T) {
	v := NewValidator()
	e := newExtractor(t)
	text := "Knee surgery for a 45-year-old male with a 3-month-old premium policy in Pune"
	attrs := e.Extract(text)

	report := v.Validate(text, attrs)
	assert.False(t, report.HasErrors())
	assert.Empty(t, report.ByMinSeverity(query.SeverityWarning))
}

func TestExtractUrgency(t *testing.T) {
	e := newExtractor(t)

	attrs := e.Extract("Emergency bypass surgery needed immediately for a 60-year-old male")
	require.True(t, attrs.Urgency.Known)
	assert.Equal(t, "high", attrs.Urgency.Text)

	attrs = e.Extract("Is knee surgery covered?")
	assert.False(t, attrs.Urgency.Known)
}

func TestValidatorAgeOutOfRange(t *testing.T) {
	v := NewValidator()
	attrs := query.NewAttributeSet()
	attrs.Set(query.Attribute{Kind: query.KindProcedure, Known: true, Text: "knee surgery"})
	attrs.Set(query.Attribute{Kind: query.KindAge, Known: true, IntValue: 125})

	report := v.Validate("knee surgery for a 125-year-old", attrs)
	assert.True(t, report.HasErrors())
}

func TestValidatorNonPositiveDuration(t *testing.T) {
	v := NewValidator()
	attrs := query.NewAttributeSet()
	attrs.Set(query.Attribute{Kind: query.KindProcedure, Known: true, Text: "knee surgery"})
	attrs.Set(query.Attribute{Kind: query.KindPolicyDuration, Known: true, IntValue: 0})

	report := v.Validate("knee surgery, 0-month-old policy", attrs)
	assert.True(t, report.HasErrors())
}

func TestValidatorNonTextQuery(t *testing.T) {
	v := NewValidator()
	report := v.Validate("12345 !!!", query.NewAttributeSet())
	assert.True(t, report.HasErrors())
}

func TestValidatorTooShortQuery(t *testing.T) {
	v := NewValidator()
	attrs := query.NewAttributeSet()
	attrs.Set(query.Attribute{Kind: query.KindProcedure, Known: true, Text: "surgery", Confidence: 0.4})

	report := v.Validate("surgery", attrs)
	assert.True(t, report.HasErrors())
}
