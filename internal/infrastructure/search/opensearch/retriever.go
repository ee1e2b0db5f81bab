package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/clearclaim/clearclaim/internal/domain/decision"
	"github.com/clearclaim/clearclaim/internal/domain/query"
	"github.com/clearclaim/clearclaim/internal/infrastructure/monitoring/logging"
	"github.com/clearclaim/clearclaim/pkg/errors"
)

// Retriever fetches policy passages from an OpenSearch index. Documents are
// expected to carry a "text" field; the document ID becomes the passage
// source ID.
type Retriever struct {
	client *Client
	index  string
	topK   int
	log    logging.Logger
}

// NewRetriever builds a Retriever over an index.
func NewRetriever(client *Client, index string, topK int, log logging.Logger) (*Retriever, error) {
	if index == "" {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "opensearch index is required")
	}
	if topK <= 0 {
		topK = 10
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Retriever{client: client, index: index, topK: topK, log: log.Named("opensearch")}, nil
}

// Name identifies this backend in logs and metrics.
func (r *Retriever) Name() string { return "opensearch" }

// Retrieve runs a term-boosted full-text query built from the understanding's
// expansion and returns the top passages.
func (r *Retriever) Retrieve(ctx context.Context, u *query.Understanding) ([]decision.Passage, error) {
	body, err := json.Marshal(buildQuery(u, r.topK))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "encoding search query")
	}

	req := opensearchapi.SearchRequest{
		Index: []string{r.index},
		Body:  bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, r.client.os)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRetrievalQuery, "executing passage search")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return nil, errors.New(errors.ErrCodeRetrievalQuery, "passage search returned error").
			WithDetail(resp.Status())
	}

	passages, err := parseResponse(resp.Body)
	if err != nil {
		return nil, err
	}
	r.log.Debug("passages retrieved",
		logging.String("index", r.index),
		logging.Int("count", len(passages)))
	return passages, nil
}

// buildQuery assembles a bool query: the raw question matches broadly, each
// expansion term matches as a boosted phrase.
func buildQuery(u *query.Understanding, topK int) map[string]interface{} {
	should := []map[string]interface{}{
		{"match": map[string]interface{}{
			"text": map[string]interface{}{"query": u.RawQuery},
		}},
	}
	for _, t := range u.Expansion.Terms {
		should = append(should, map[string]interface{}{
			"match_phrase": map[string]interface{}{
				"text": map[string]interface{}{"query": t.Term, "boost": 2.0},
			},
		})
	}
	return map[string]interface{}{
		"size": topK,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
			},
		},
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string  `json:"_id"`
			Score  float64 `json:"_score"`
			Source struct {
				Text string `json:"text"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// parseResponse decodes the search body into passages, skipping hits with no
// text.
func parseResponse(body io.Reader) ([]decision.Passage, error) {
	var decoded searchResponse
	if err := json.NewDecoder(body).Decode(&decoded); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRetrievalParse, "decoding search response")
	}

	var out []decision.Passage
	for _, hit := range decoded.Hits.Hits {
		text := strings.TrimSpace(hit.Source.Text)
		if text == "" {
			continue
		}
		out = append(out, decision.Passage{
			SourceID: hit.ID,
			Text:     text,
			Score:    hit.Score,
		})
	}
	return out, nil
}
