package matching

import (
	"fmt"
	"math"

	"github.com/wrenchworks/dispatch/core/model"
)

// Weights are the scoring weights applied to the four sub-scores. They must
// sum to 1.
type Weights struct {
	Skill        float64 `json:"skill"`
	Workload     float64 `json:"workload"`
	Performance  float64 `json:"performance"`
	Availability float64 `json:"availability"`
}

// DefaultWeights returns the standard 0.40/0.30/0.20/0.10 weighting.
func DefaultWeights() Weights {
	return Weights{Skill: 0.40, Workload: 0.30, Performance: 0.20, Availability: 0.10}
}

func (w Weights) sum() float64 {
	return w.Skill + w.Workload + w.Performance + w.Availability
}

// Validate checks that weights are non-negative and sum to 1.
func (w Weights) Validate() error {
	for _, v := range []float64{w.Skill, w.Workload, w.Performance, w.Availability} {
		if v < 0 {
			return fmt.Errorf("weights must not be negative")
		}
	}
	if math.Abs(w.sum()-1) > 1e-9 {
		return fmt.Errorf("weights must sum to 1, got %v", w.sum())
	}
	return nil
}

// Config defines matching settings.
type Config struct {
	Weights Weights `json:"weights"`
	// WorkloadCeiling is the maximum concurrent work orders per technician.
	WorkloadCeiling int `json:"workload_ceiling"`
	// TopN is the default result count for ranked listings.
	TopN int `json:"top_n"`
}

// SetDefaults applies sane defaults. A zero-valued Weights struct is replaced
// by the standard weighting.
func (c *Config) SetDefaults() {
	if c.Weights == (Weights{}) {
		c.Weights = DefaultWeights()
	}
	if c.WorkloadCeiling == 0 {
		c.WorkloadCeiling = model.DefaultWorkloadCeiling
	}
	if c.TopN == 0 {
		c.TopN = 5
	}
}

// Validate checks field ranges.
func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.WorkloadCeiling <= 0 {
		return fmt.Errorf("workload_ceiling must be positive")
	}
	if c.TopN <= 0 {
		return fmt.Errorf("top_n must be positive")
	}
	return nil
}
