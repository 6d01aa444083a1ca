package fingerbench

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"fingerbench/internal/task"
)

// policy maps the current step and observation to a control vector. Policies
// are fixed scripts or noise sources, not learned controllers; they exist to
// exercise the task and produce reference rollouts.
type policy interface {
	act(step int, obs task.Observation) []float64
}

func policyFromName(name string, seed uint64) (policy, error) {
	switch name {
	case "zero":
		return zeroPolicy{}, nil
	case "random":
		src := rand.New(rand.NewSource(seed + 1000))
		return &randomPolicy{dist: distuv.Uniform{Min: -1, Max: 1, Src: src}}, nil
	case "swirl":
		return swirlPolicy{}, nil
	default:
		return nil, fmt.Errorf("unsupported policy: %s", name)
	}
}

// zeroPolicy applies no control, leaving the arm to gravity.
type zeroPolicy struct{}

func (zeroPolicy) act(int, task.Observation) []float64 {
	return []float64{0, 0}
}

// randomPolicy samples both controls uniformly from [-1, 1] each step.
type randomPolicy struct {
	dist distuv.Uniform
}

func (p *randomPolicy) act(int, task.Observation) []float64 {
	return []float64{p.dist.Rand(), p.dist.Rand()}
}

// swirlPolicy drives the joints with phase-shifted sinusoids, sweeping the
// fingertip through the paddle's arc. It reliably produces contact, which
// makes it a useful smoke source for the touch and spin signals.
type swirlPolicy struct{}

func (swirlPolicy) act(step int, _ task.Observation) []float64 {
	phase := float64(step) * 0.15
	return []float64{math.Sin(phase), math.Cos(phase)}
}
