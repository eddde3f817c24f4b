package matching

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/wrenchworks/dispatch/core/logger"
	"github.com/wrenchworks/dispatch/core/metrics"
	"github.com/wrenchworks/dispatch/core/model"
)

// Ranker runs the filter -> score -> sort pipeline. Equal weighted scores
// break by lower workload, then higher rating, then technician ID ascending,
// so rankings are fully deterministic.
type Ranker struct {
	filter *Filter
	scorer Scorer
	cfg    Config
	log    logger.Logger
	sink   metrics.MetricsSink
}

// NewRanker wires a Ranker. sink may be nil.
func NewRanker(filter *Filter, cfg Config, log logger.Logger, sink metrics.MetricsSink) *Ranker {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Ranker{filter: filter, scorer: NewScorer(cfg), cfg: cfg, log: log, sink: sink}
}

// FindBest returns the highest-scoring candidate, or nil when no technician
// passes the hard filter. An empty pool is not an error.
func (r *Ranker) FindBest(ctx context.Context, c Criteria, now time.Time) (*model.MatchCandidate, error) {
	ranked, err := r.FindTopN(ctx, c, 1, now)
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		return nil, nil
	}
	return &ranked[0], nil
}

// FindTopN returns up to n candidates sorted by weighted score descending.
// n <= 0 falls back to the configured default.
func (r *Ranker) FindTopN(ctx context.Context, c Criteria, n int, now time.Time) ([]model.MatchCandidate, error) {
	start := time.Now()
	if n <= 0 {
		n = r.cfg.TopN
	}

	candidates, err := r.filter.FindAvailable(ctx, c, now)
	if err != nil {
		return nil, err
	}

	scored := make([]model.MatchCandidate, 0, len(candidates))
	for _, cand := range candidates {
		scored = append(scored, r.scorer.Score(cand, c.RequiredSkills, now))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].WeightedScore != scored[j].WeightedScore {
			return scored[i].WeightedScore > scored[j].WeightedScore
		}
		if scored[i].Workload != scored[j].Workload {
			return scored[i].Workload < scored[j].Workload
		}
		ri, rj := ratingOf(scored[i].Technician), ratingOf(scored[j].Technician)
		if ri != rj {
			return ri > rj
		}
		return scored[i].Technician.ID < scored[j].Technician.ID
	})

	if len(scored) > n {
		scored = scored[:n]
	}

	ev := metrics.MatchEvent{
		RequestID:  uuid.NewString(),
		CenterID:   c.CenterID,
		Candidates: len(candidates),
		Returned:   len(scored),
		Duration:   time.Since(start),
		Time:       now,
	}
	if len(scored) > 0 {
		ev.BestScore = scored[0].WeightedScore
	}
	if err := r.sink.RecordMatch(ev); err != nil {
		r.log.Warnf("record match metric: %v", err)
	}
	r.log.Debugw("ranked candidates", map[string]any{
		"center":     c.CenterID,
		"candidates": len(candidates),
		"returned":   len(scored),
	})
	return scored, nil
}
