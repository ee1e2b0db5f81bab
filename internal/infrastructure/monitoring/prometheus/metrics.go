package prometheus

// EngineMetrics holds every metric the decision engine records. Recording is
// side-channel only: nothing here feeds back into decisions.
type EngineMetrics struct {
	// Query understanding
	QueriesTotal       CounterVec // outcome: ok|rejected_input
	FindingsTotal      CounterVec // kind: vague|missing|conflicting
	UnderstandDuration HistogramVec

	// Decision pipeline
	DecisionsTotal  CounterVec // status: approved|rejected|conditional|needs_review
	DecideDuration  HistogramVec
	ChainVerdicts   CounterVec // chain, verdict
	EvidenceClauses HistogramVec

	// Retrieval
	RetrievalsTotal   CounterVec // backend, status: ok|error
	RetrievalDuration HistogramVec
}

// Default buckets, in seconds unless noted.
var (
	DefaultPipelineDurationBuckets  = []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1}
	DefaultRetrievalDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	DefaultClauseCountBuckets       = []float64{0, 1, 2, 5, 10, 20, 50, 100}
)

// NewEngineMetrics registers the engine metrics on the collector.
func NewEngineMetrics(collector MetricsCollector) *EngineMetrics {
	m := &EngineMetrics{}

	m.QueriesTotal = collector.RegisterCounter("queries_total", "Queries received", "outcome")
	m.FindingsTotal = collector.RegisterCounter("findings_total", "Ambiguity findings raised", "kind")
	m.UnderstandDuration = collector.RegisterHistogram("understand_duration_seconds", "Query understanding duration", DefaultPipelineDurationBuckets)

	m.DecisionsTotal = collector.RegisterCounter("decisions_total", "Decisions synthesized", "status")
	m.DecideDuration = collector.RegisterHistogram("decide_duration_seconds", "Decision pipeline duration", DefaultPipelineDurationBuckets)
	m.ChainVerdicts = collector.RegisterCounter("chain_verdicts_total", "Chain verdicts", "chain", "verdict")
	m.EvidenceClauses = collector.RegisterHistogram("evidence_clauses", "Clauses extracted per decision", DefaultClauseCountBuckets)

	m.RetrievalsTotal = collector.RegisterCounter("retrievals_total", "Passage retrievals", "backend", "status")
	m.RetrievalDuration = collector.RegisterHistogram("retrieval_duration_seconds", "Passage retrieval duration", DefaultRetrievalDurationBuckets)

	return m
}
