package task

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Spec documents the shape and bounds of one observation or action field.
type Spec struct {
	Shape      mat.Vector
	LowerBound mat.Vector
	UpperBound mat.Vector
}

func boundedSpec(n int, low, high float64) Spec {
	lower := mat.NewVecDense(n, nil)
	upper := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		lower.SetVec(i, low)
		upper.SetVec(i, high)
	}
	return Spec{
		Shape:      mat.NewVecDense(n, nil),
		LowerBound: lower,
		UpperBound: upper,
	}
}

// ActionSpec describes the two-dimensional control vector, each component
// clipped to [-1, 1].
func ActionSpec() Spec {
	return boundedSpec(2, -1, 1)
}

// DiscountSpec describes the scalar discount field.
func DiscountSpec() Spec {
	return boundedSpec(1, 0, 1)
}

// ObservationSpec describes the observation fields the variant emits. The
// target fields exist only for the turn variants.
func ObservationSpec(v Variant) map[string]Spec {
	specs := map[string]Spec{
		"position": boundedSpec(4, math.Inf(-1), math.Inf(1)),
		"velocity": boundedSpec(3, math.Inf(-1), math.Inf(1)),
		"touch":    boundedSpec(2, 0, math.Inf(1)),
	}
	if v.HasTarget() {
		specs["target_position"] = boundedSpec(2, math.Inf(-1), math.Inf(1))
		specs["dist_to_target"] = boundedSpec(1, math.Inf(-1), math.Inf(1))
	}
	return specs
}

// ObservationFieldOrder lists the variant's observation fields in their
// canonical record order.
func ObservationFieldOrder(v Variant) []string {
	order := []string{"position", "velocity", "touch"}
	if v.HasTarget() {
		order = append(order, "target_position", "dist_to_target")
	}
	return order
}
