package workload

import (
	"fmt"
	"math"
	"math/rand"
)

// BurstSampler generates CPU burst lengths.
type BurstSampler interface {
	// Sample returns a positive whole burst (>= 1).
	Sample(rng *rand.Rand) int
}

// DistSpec parameterizes a burst length distribution.
type DistSpec struct {
	Type   string             `yaml:"type" json:"type"`
	Params map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
}

// UniformSampler draws whole values uniformly from [min, max].
type UniformSampler struct {
	min, max int
}

func (s *UniformSampler) Sample(rng *rand.Rand) int {
	return atLeastOne(uniformInt(rng, s.min, s.max))
}

// GaussianSampler produces clamped Gaussian burst lengths.
type GaussianSampler struct {
	mean, stdDev float64
	min, max     int
}

func (s *GaussianSampler) Sample(rng *rand.Rand) int {
	if s.min == s.max {
		return atLeastOne(s.min)
	}
	val := rng.NormFloat64()*s.stdDev + s.mean
	clamped := math.Min(float64(s.max), math.Max(float64(s.min), val))
	return atLeastOne(int(math.Round(clamped)))
}

// ExponentialSampler produces exponentially-distributed burst lengths,
// the classic shape of CPU bursts: many short, a few long.
type ExponentialSampler struct {
	mean float64
}

func (s *ExponentialSampler) Sample(rng *rand.Rand) int {
	val := rng.ExpFloat64() * s.mean
	if math.IsInf(val, 0) || math.IsNaN(val) {
		return 1
	}
	return atLeastOne(int(math.Round(val)))
}

// BimodalSampler mixes short and long bursts: with probability longWeight it
// draws from [longMin, longMax], otherwise from [shortMin, shortMax].
// Produces convoy-prone workloads on demand.
type BimodalSampler struct {
	short, long UniformSampler
	longWeight  float64
}

func (s *BimodalSampler) Sample(rng *rand.Rand) int {
	if rng.Float64() < s.longWeight {
		return s.long.Sample(rng)
	}
	return s.short.Sample(rng)
}

// ConstantSampler always returns the same fixed value.
type ConstantSampler struct {
	value int
}

func (s *ConstantSampler) Sample(_ *rand.Rand) int {
	return atLeastOne(s.value)
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		v, ok := params[k]
		if !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("parameter %q must be a finite number, got %f", k, v)
		}
	}
	return nil
}

// NewBurstSampler creates a BurstSampler from a DistSpec.
func NewBurstSampler(spec DistSpec) (BurstSampler, error) {
	switch spec.Type {
	case "uniform":
		if err := requireParam(spec.Params, "min", "max"); err != nil {
			return nil, err
		}
		return &UniformSampler{min: int(spec.Params["min"]), max: int(spec.Params["max"])}, nil

	case "gaussian":
		if err := requireParam(spec.Params, "mean", "std_dev", "min", "max"); err != nil {
			return nil, err
		}
		return &GaussianSampler{
			mean:   spec.Params["mean"],
			stdDev: spec.Params["std_dev"],
			min:    int(spec.Params["min"]),
			max:    int(spec.Params["max"]),
		}, nil

	case "exponential":
		if err := requireParam(spec.Params, "mean"); err != nil {
			return nil, err
		}
		if spec.Params["mean"] <= 0 {
			return nil, fmt.Errorf("exponential mean must be positive, got %f", spec.Params["mean"])
		}
		return &ExponentialSampler{mean: spec.Params["mean"]}, nil

	case "bimodal":
		if err := requireParam(spec.Params, "short_min", "short_max", "long_min", "long_max", "long_weight"); err != nil {
			return nil, err
		}
		w := spec.Params["long_weight"]
		if w < 0 || w > 1 {
			return nil, fmt.Errorf("long_weight must be in [0, 1], got %f", w)
		}
		return &BimodalSampler{
			short:      UniformSampler{min: int(spec.Params["short_min"]), max: int(spec.Params["short_max"])},
			long:       UniformSampler{min: int(spec.Params["long_min"]), max: int(spec.Params["long_max"])},
			longWeight: w,
		}, nil

	case "constant":
		if err := requireParam(spec.Params, "value"); err != nil {
			return nil, err
		}
		return &ConstantSampler{value: int(spec.Params["value"])}, nil

	default:
		return nil, fmt.Errorf("unknown distribution type %q; valid: uniform, gaussian, exponential, bimodal, constant", spec.Type)
	}
}

// uniformInt returns a whole value in [lo, hi]; swapped bounds are tolerated.
func uniformInt(rng *rand.Rand, lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + rng.Intn(hi-lo+1)
}

func atLeastOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}
