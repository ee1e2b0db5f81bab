package decision

import (
	"fmt"

	"github.com/clearclaim/clearclaim/pkg/types/common"
)

// Passage is a retrieved fragment of a policy document. SourceID is the
// caller-supplied stable identifier (document ID, section path); it seeds
// deterministic clause IDs.
type Passage struct {
	SourceID string `json:"source_id" yaml:"source_id"`
	Text     string `json:"text" yaml:"text"`
	// Score is the retriever's relevance score, informational only; the
	// evidence mapper computes its own relevance per clause.
	Score float64 `json:"score,omitempty" yaml:"score,omitempty"`
}

// ClauseType classifies what a clause says about coverage.
type ClauseType string

const (
	ClauseApproval      ClauseType = "approval"
	ClauseRejection     ClauseType = "rejection"
	ClauseConditional   ClauseType = "conditional"
	ClauseInformational ClauseType = "informational"
)

// Impact tags how a clause bears on the synthesized decision.
type Impact string

const (
	ImpactSupporting Impact = "supporting"
	ImpactOpposing   Impact = "opposing"
	ImpactNeutral    Impact = "neutral"
)

// Clause is one policy statement extracted from a passage.
type Clause struct {
	// ID is derived from the source passage and clause index, never from
	// randomness, so identical inputs yield identical IDs.
	ID       string `json:"id"`
	SourceID string `json:"source_id"`
	// Index is the clause's position within its passage.
	Index int        `json:"index"`
	Text  string     `json:"text"`
	Type  ClauseType `json:"type"`
	// Relevance scores how pertinent the clause is to the query, in [0,1].
	Relevance common.Confidence `json:"relevance"`
	// Impact is assigned after the reasoning chains run; a clause starts
	// neutral.
	Impact Impact `json:"impact"`
}

// ClauseID builds the deterministic identifier for the index-th clause of a
// passage.
func ClauseID(sourceID string, index int) string {
	return fmt.Sprintf("%s#c%d", sourceID, index)
}
