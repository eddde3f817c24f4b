// Package balance analyzes a center's workload distribution and produces
// advisory rebalancing suggestions. It never reassigns work itself.
package balance

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/wrenchworks/dispatch/core/logger"
	"github.com/wrenchworks/dispatch/core/metrics"
	"github.com/wrenchworks/dispatch/core/model"
)

// Directory lists the technician pool.
type Directory interface {
	Technicians(ctx context.Context) ([]model.Technician, error)
}

// WorkloadSource counts a technician's open work orders.
type WorkloadSource interface {
	OpenOrders(ctx context.Context, technicianID string) (int, error)
}

// Config defines balance analysis settings.
type Config struct {
	// StdDevThreshold is the population standard deviation below which a
	// center's distribution counts as balanced.
	StdDevThreshold float64 `json:"stddev_threshold"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.StdDevThreshold == 0 {
		c.StdDevThreshold = 2.0
	}
}

// Validate checks field ranges.
func (c Config) Validate() error {
	if c.StdDevThreshold < 0 {
		return fmt.Errorf("stddev_threshold must not be negative")
	}
	return nil
}

// Advice flags one technician with a human-readable suggestion.
type Advice struct {
	TechnicianID string
	Name         string
	Workload     int
	Message      string
}

// Report is the result of one balance analysis.
type Report struct {
	CenterID    string
	Technicians int
	Mean        float64
	StdDev      float64
	Balanced    bool
	Overloaded  []Advice
	Underloaded []Advice
}

// Balancer computes workload distribution statistics per center.
type Balancer struct {
	dir  Directory
	load WorkloadSource
	cfg  Config
	log  logger.Logger
	sink metrics.MetricsSink
}

// NewBalancer wires a Balancer. sink may be nil.
func NewBalancer(dir Directory, load WorkloadSource, cfg Config, log logger.Logger, sink metrics.MetricsSink) *Balancer {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Balancer{dir: dir, load: load, cfg: cfg, log: log, sink: sink}
}

type loadEntry struct {
	tech     model.Technician
	workload int
}

// Analyze gathers active technicians' workloads for the center and reports
// whether the distribution is balanced. Technicians whose workload count
// cannot be fetched are skipped and logged.
func (b *Balancer) Analyze(ctx context.Context, centerID string) (*Report, error) {
	pool, err := b.dir.Technicians(ctx)
	if err != nil {
		return nil, fmt.Errorf("list technicians: %w", err)
	}

	var entries []loadEntry
	for _, tech := range pool {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !tech.Active || tech.CenterID != centerID {
			continue
		}
		wl, err := b.load.OpenOrders(ctx, tech.ID)
		if err != nil {
			b.log.Warnf("workload lookup for %s failed, skipping: %v", tech.ID, err)
			continue
		}
		entries = append(entries, loadEntry{tech: tech, workload: wl})
	}

	report := &Report{CenterID: centerID, Technicians: len(entries), Balanced: true}
	if len(entries) == 0 {
		return report, nil
	}

	workloads := make([]float64, len(entries))
	for i, e := range entries {
		workloads[i] = float64(e.workload)
	}
	report.Mean = stat.Mean(workloads, nil)
	// Population variance: the pool is the whole population, not a sample.
	report.StdDev = math.Sqrt(stat.MomentAbout(2, workloads, report.Mean, nil))
	report.Balanced = report.StdDev < b.cfg.StdDevThreshold

	if !report.Balanced {
		report.Overloaded = b.overloaded(entries, report.Mean)
		report.Underloaded = b.underloaded(entries, report.Mean)
	}

	if err := b.sink.RecordBalance(metrics.BalanceEvent{
		CenterID:    centerID,
		Technicians: len(entries),
		Mean:        report.Mean,
		StdDev:      report.StdDev,
		Balanced:    report.Balanced,
		Time:        time.Now(),
	}); err != nil {
		b.log.Warnf("record balance metric: %v", err)
	}
	return report, nil
}

// overloaded flags technicians more than 2 orders above the mean, busiest
// first.
func (b *Balancer) overloaded(entries []loadEntry, mean float64) []Advice {
	var out []Advice
	for _, e := range entries {
		if float64(e.workload) > mean+2 {
			out = append(out, Advice{
				TechnicianID: e.tech.ID,
				Name:         e.tech.Name,
				Workload:     e.workload,
				Message: fmt.Sprintf("%s carries %d open orders against a center mean of %.1f; consider moving work elsewhere",
					e.tech.Name, e.workload, mean),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Workload != out[j].Workload {
			return out[i].Workload > out[j].Workload
		}
		return out[i].TechnicianID < out[j].TechnicianID
	})
	return out
}

// underloaded surfaces up to three technicians more than 1 order below the
// mean, least busy first.
func (b *Balancer) underloaded(entries []loadEntry, mean float64) []Advice {
	var out []Advice
	for _, e := range entries {
		if float64(e.workload) < mean-1 {
			out = append(out, Advice{
				TechnicianID: e.tech.ID,
				Name:         e.tech.Name,
				Workload:     e.workload,
				Message: fmt.Sprintf("%s carries %d open orders against a center mean of %.1f; has capacity for more",
					e.tech.Name, e.workload, mean),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Workload != out[j].Workload {
			return out[i].Workload < out[j].Workload
		}
		return out[i].TechnicianID < out[j].TechnicianID
	})
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}
