// Package engine orchestrates the full pipeline: query understanding,
// passage retrieval, multi-hop reasoning, evidence mapping, and decision
// synthesis. The service owns no domain logic itself; it sequences the
// intelligence components and records logs and metrics around them.
package engine

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/clearclaim/clearclaim/internal/config"
	"github.com/clearclaim/clearclaim/internal/domain/decision"
	"github.com/clearclaim/clearclaim/internal/domain/query"
	"github.com/clearclaim/clearclaim/internal/infrastructure/monitoring/logging"
	"github.com/clearclaim/clearclaim/internal/infrastructure/monitoring/prometheus"
	"github.com/clearclaim/clearclaim/internal/intelligence/evidence"
	"github.com/clearclaim/clearclaim/internal/intelligence/expander"
	"github.com/clearclaim/clearclaim/internal/intelligence/extractor"
	"github.com/clearclaim/clearclaim/internal/intelligence/reasoner"
	"github.com/clearclaim/clearclaim/internal/intelligence/synthesis"
	"github.com/clearclaim/clearclaim/pkg/errors"
)

// PassageRetriever fetches policy passages relevant to an understood query.
// Implementations live in internal/infrastructure/search; the engine treats
// retrieval as an external collaborator and keeps working without one.
type PassageRetriever interface {
	// Name identifies the backend for logs and metrics.
	Name() string
	Retrieve(ctx context.Context, u *query.Understanding) ([]decision.Passage, error)
}

// Service is the application facade over the decision engine.
type Service struct {
	cfg *config.Config

	extractor     *extractor.Extractor
	validator     *extractor.Validator
	expander      *expander.Expander
	disambiguator *expander.Disambiguator
	runner        *reasoner.Runner
	mapper        *evidence.Mapper
	synthesizer   *synthesis.Synthesizer

	retriever PassageRetriever
	metrics   *prometheus.EngineMetrics
	log       logging.Logger
}

// New wires the pipeline from configuration. retriever may be nil, in which
// case Ask decides without evidence; metrics may be nil for a no-op recorder.
func New(cfg *config.Config, retriever PassageRetriever, metrics *prometheus.EngineMetrics, log logging.Logger) *Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = prometheus.NewEngineMetrics(prometheus.NewNopCollector())
	}
	log = log.Named("engine")

	return &Service{
		cfg:           cfg,
		extractor:     extractor.New(cfg.Domain, log),
		validator:     extractor.NewValidator(),
		expander:      expander.New(cfg.Domain, log),
		disambiguator: expander.NewDisambiguator(cfg.Domain),
		runner:        reasoner.NewRunner(cfg.Domain, cfg.Engine.Policy, cfg.Engine.ChainConcurrency, log),
		mapper:        evidence.NewMapper(cfg.Domain, cfg.Engine.Policy, log),
		synthesizer:   synthesis.New(cfg.Domain, cfg.Engine.Policy, log),
		retriever:     retriever,
		metrics:       metrics,
		log:           log,
	}
}

// UnderstandQuery runs the understanding phase over raw text. It fails only
// on unusable input (empty, non-text, oversized); everything else surfaces as
// validation issues and findings on the returned Understanding.
func (s *Service) UnderstandQuery(ctx context.Context, rawText string) (*query.Understanding, error) {
	start := time.Now()
	traceID := uuid.NewString()
	log := s.log.With(logging.String("trace_id", traceID))

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "understanding cancelled")
	}

	trimmed := strings.TrimSpace(rawText)
	if trimmed == "" {
		s.metrics.QueriesTotal.WithLabelValues("rejected_input").Inc()
		return nil, errors.New(errors.ErrCodeQueryEmpty, errors.DefaultMessageForCode(errors.ErrCodeQueryEmpty))
	}
	if !hasLetter(trimmed) {
		s.metrics.QueriesTotal.WithLabelValues("rejected_input").Inc()
		return nil, errors.New(errors.ErrCodeQueryNotText, errors.DefaultMessageForCode(errors.ErrCodeQueryNotText))
	}
	if utf8.RuneCountInString(trimmed) > s.cfg.Engine.MaxQueryLength {
		s.metrics.QueriesTotal.WithLabelValues("rejected_input").Inc()
		return nil, errors.New(errors.ErrCodeQueryTooLong, errors.DefaultMessageForCode(errors.ErrCodeQueryTooLong)).
			WithDetail("max " + strconv.Itoa(s.cfg.Engine.MaxQueryLength) + " runes")
	}

	attrs := s.extractor.Extract(trimmed)
	u := &query.Understanding{
		RawQuery:   trimmed,
		Attributes: attrs,
		Validation: s.validator.Validate(trimmed, attrs),
		Expansion:  s.expander.Expand(trimmed, attrs),
		Findings:   s.disambiguator.Findings(trimmed, attrs),
	}

	s.metrics.QueriesTotal.WithLabelValues("ok").Inc()
	for _, f := range u.Findings {
		s.metrics.FindingsTotal.WithLabelValues(string(f.Kind)).Inc()
	}
	s.metrics.UnderstandDuration.WithLabelValues().Observe(time.Since(start).Seconds())

	log.Info("query understood",
		logging.Int("known_attributes", len(attrs.KnownKinds())),
		logging.Int("expansion_terms", len(u.Expansion.Terms)),
		logging.Int("findings", len(u.Findings)),
		logging.Bool("validation_errors", u.Validation.HasErrors()),
		logging.Duration("elapsed", time.Since(start)))
	return u, nil
}

// Decide runs the decision phase over an understanding and the passages the
// caller retrieved. It never performs retrieval itself.
func (s *Service) Decide(ctx context.Context, u *query.Understanding, passages []decision.Passage) (*decision.Record, error) {
	start := time.Now()
	if u == nil {
		return nil, errors.New(errors.ErrCodeDecisionNilInput, errors.DefaultMessageForCode(errors.ErrCodeDecisionNilInput))
	}

	chains, err := s.runner.Run(ctx, u)
	if err != nil {
		return nil, err
	}
	clauses := s.mapper.Map(u, passages)

	rec, err := s.synthesizer.Synthesize(u, chains, clauses)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDecisionSynthesis, "synthesizing decision")
	}

	for _, c := range chains {
		s.metrics.ChainVerdicts.WithLabelValues(string(c.ID), string(c.Verdict)).Inc()
	}
	s.metrics.DecisionsTotal.WithLabelValues(string(rec.Status)).Inc()
	s.metrics.EvidenceClauses.WithLabelValues().Observe(float64(len(clauses)))
	s.metrics.DecideDuration.WithLabelValues().Observe(time.Since(start).Seconds())

	s.log.Info("decision made",
		logging.String("status", string(rec.Status)),
		logging.Float64("confidence", rec.Confidence.Float()),
		logging.Int("clauses", len(clauses)),
		logging.Duration("elapsed", time.Since(start)))
	return rec, nil
}

// Ask is the end-to-end convenience: understand, retrieve, decide. Retrieval
// failures degrade to an evidence-free decision rather than failing the
// query.
func (s *Service) Ask(ctx context.Context, rawText string) (*decision.Record, error) {
	u, err := s.UnderstandQuery(ctx, rawText)
	if err != nil {
		return nil, err
	}

	var passages []decision.Passage
	if s.retriever != nil {
		retStart := time.Now()
		passages, err = s.retriever.Retrieve(ctx, u)
		elapsed := time.Since(retStart)
		s.metrics.RetrievalDuration.WithLabelValues().Observe(elapsed.Seconds())
		if err != nil {
			s.metrics.RetrievalsTotal.WithLabelValues(s.retriever.Name(), "error").Inc()
			s.log.Warn("passage retrieval failed; deciding without evidence",
				logging.String("backend", s.retriever.Name()),
				logging.Err(errors.Wrap(err, errors.ErrCodeRetrievalQuery, "retrieving passages")))
			passages = nil
		} else {
			s.metrics.RetrievalsTotal.WithLabelValues(s.retriever.Name(), "ok").Inc()
		}
	}

	return s.Decide(ctx, u, passages)
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
