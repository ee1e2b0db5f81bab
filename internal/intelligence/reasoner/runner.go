package reasoner

import (
	"context"
	"sync"

	"github.com/clearclaim/clearclaim/internal/config"
	"github.com/clearclaim/clearclaim/internal/domain/decision"
	"github.com/clearclaim/clearclaim/internal/domain/query"
	"github.com/clearclaim/clearclaim/internal/infrastructure/monitoring/logging"
	"github.com/clearclaim/clearclaim/pkg/errors"
)

// Runner executes the reasoning chains, concurrently when allowed, and merges
// the results in canonical chain order so the output is independent of
// scheduling.
type Runner struct {
	strategies  []Strategy
	concurrency int
	log         logging.Logger
}

// NewRunner builds a Runner. concurrency caps parallel chains; zero or
// negative runs all chains at once.
func NewRunner(domain config.DomainConfig, policy config.ConfidencePolicy, concurrency int, log logging.Logger) *Runner {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Runner{
		strategies:  Chains(domain, policy),
		concurrency: concurrency,
		log:         log.Named("reasoner"),
	}
}

// Run executes every chain over the understanding. The returned slice is
// ordered by decision.ChainOrder regardless of completion order.
func (r *Runner) Run(ctx context.Context, u *query.Understanding) ([]decision.Chain, error) {
	if u == nil {
		return nil, errors.New(errors.ErrCodeDecisionNilInput, errors.DefaultMessageForCode(errors.ErrCodeDecisionNilInput))
	}
	if len(r.strategies) == 0 {
		return nil, errors.New(errors.ErrCodeDecisionNoChains, errors.DefaultMessageForCode(errors.ErrCodeDecisionNoChains))
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "reasoning cancelled")
	}

	limit := r.concurrency
	if limit <= 0 || limit > len(r.strategies) {
		limit = len(r.strategies)
	}
	sem := make(chan struct{}, limit)

	results := make(map[decision.ChainID]decision.Chain, len(r.strategies))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, s := range r.strategies {
		wg.Add(1)
		go func(s Strategy) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			chain := s.Run(u)
			mu.Lock()
			results[chain.ID] = chain
			mu.Unlock()
		}(s)
	}
	wg.Wait()

	out := make([]decision.Chain, 0, len(results))
	for _, id := range decision.ChainOrder() {
		if chain, ok := results[id]; ok {
			out = append(out, chain)
			r.log.Debug("chain complete",
				logging.String("chain", string(id)),
				logging.String("verdict", string(chain.Verdict)),
				logging.Float64("confidence", chain.Confidence.Float()))
		}
	}
	return out, nil
}
