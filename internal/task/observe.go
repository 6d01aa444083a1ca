package task

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"fingerbench/internal/sim"
)

// TargetObservation is the variant-dependent part of the observation record,
// present only for the turn variants.
type TargetObservation struct {
	// Position of the target disc relative to the spinner hinge.
	Position [2]float64
	// Dist is the distance from the paddle tip to the disc edge; zero or
	// negative means the tip is inside the disc.
	Dist float64
}

// Diagnostics carries the optional per-episode fields enabled by
// Config.Diagnostics.
type Diagnostics struct {
	// QPos0 is the joint configuration the episode started from.
	QPos0 []float64
	// Target is the committed target position, zero for the spin variant.
	Target [2]float64
}

// Observation is the externally visible state record produced once per Reset
// and Step.
type Observation struct {
	Position [4]float64
	Velocity [3]float64
	Touch    [2]float64
	Target   *TargetObservation
	Reward   float64
	Discount float64
	Diag     *Diagnostics
}

// tipPosition is the paddle tip relative to the spinner hinge.
func tipPosition(f sim.Frame) [2]float64 {
	return [2]float64{f.TipX() - f.SpinnerX(), f.TipZ() - f.SpinnerZ()}
}

func targetPosition(f sim.Frame) [2]float64 {
	return [2]float64{f.TargetX() - f.SpinnerX(), f.TargetZ() - f.SpinnerZ()}
}

func toTarget(f sim.Frame) [2]float64 {
	target := targetPosition(f)
	tip := tipPosition(f)
	return [2]float64{target[0] - tip[0], target[1] - tip[1]}
}

func distToTarget(f sim.Frame, targetRadius float64) float64 {
	v := toTarget(f)
	return floats.Norm(v[:], 2) - targetRadius
}

func boundedPosition(f sim.Frame) [4]float64 {
	tip := tipPosition(f)
	return [4]float64{f.Proximal(), f.Distal(), tip[0], tip[1]}
}

func velocity(f sim.Frame) [3]float64 {
	return [3]float64{f.ProximalVelocity(), f.DistalVelocity(), f.HingeVelocity()}
}

// touch log-compresses the contact forces so the otherwise unbounded signal
// stays in a learnable range.
func touch(f sim.Frame) [2]float64 {
	return [2]float64{math.Log1p(f.TouchTop()), math.Log1p(f.TouchBottom())}
}
