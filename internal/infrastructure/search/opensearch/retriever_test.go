package opensearch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearclaim/clearclaim/internal/domain/query"
	"github.com/clearclaim/clearclaim/pkg/errors"
)

func kneeUnderstanding() *query.Understanding {
	return &query.Understanding{
		RawQuery: "is knee surgery covered",
		Expansion: query.ExpandedQuery{
			Original: "is knee surgery covered",
			Terms: []query.ExpansionTerm{
				{Attribute: query.KindProcedure, Canonical: "knee surgery", Term: "knee surgery"},
				{Attribute: query.KindProcedure, Canonical: "knee surgery", Term: "knee replacement"},
			},
		},
	}
}

func TestBuildQueryIncludesRawAndExpansionTerms(t *testing.T) {
	q := buildQuery(kneeUnderstanding(), 5)

	assert.Equal(t, 5, q["size"])
	boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})
	should := boolQuery["should"].([]map[string]interface{})
	// raw query match plus one phrase per expansion term
	require.Len(t, should, 3)
	assert.Contains(t, should[0], "match")
	assert.Contains(t, should[1], "match_phrase")
	assert.Equal(t, 1, boolQuery["minimum_should_match"])
}

func TestParseResponse(t *testing.T) {
	body := `{
		"hits": {"hits": [
			{"_id": "policy-1", "_score": 3.2, "_source": {"text": "Knee surgery is covered."}},
			{"_id": "policy-2", "_score": 1.1, "_source": {"text": "  "}},
			{"_id": "policy-3", "_score": 0.8, "_source": {"text": "Waiting periods apply."}}
		]}
	}`

	passages, err := parseResponse(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, passages, 2)
	assert.Equal(t, "policy-1", passages[0].SourceID)
	assert.Equal(t, 3.2, passages[0].Score)
	assert.Equal(t, "policy-3", passages[1].SourceID)
}

func TestParseResponseMalformed(t *testing.T) {
	_, err := parseResponse(strings.NewReader("not json"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRetrievalParse))
}

func TestParseResponseEmpty(t *testing.T) {
	passages, err := parseResponse(strings.NewReader(`{"hits":{"hits":[]}}`))
	require.NoError(t, err)
	assert.Empty(t, passages)
}

func TestNewRetrieverValidation(t *testing.T) {
	_, err := NewRetriever(nil, "", 10, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))

	r, err := NewRetriever(nil, "policy-clauses", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "opensearch", r.Name())
	assert.Equal(t, 10, r.topK)
}
