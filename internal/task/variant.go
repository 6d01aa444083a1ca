package task

import "fmt"

// Variant selects one of the three finger task configurations. It is fixed
// for the lifetime of a task instance.
type Variant int

const (
	// Spin rewards driving the paddle past a fixed angular speed.
	Spin Variant = iota
	// TurnEasy rewards rotating the paddle tip into a wide target disc.
	TurnEasy
	// TurnHard is TurnEasy with a much smaller disc.
	TurnHard
)

const (
	easyTargetRadius = 0.07
	hardTargetRadius = 0.03

	// spinVelocity is the angular speed the paddle must exceed (in the
	// negative direction) for the spin variant to score.
	spinVelocity = 15.0

	// spinHingeDamping replaces the scene's hinge damping for the spin
	// variant so the paddle spins freely but not frictionlessly.
	spinHingeDamping = 0.03
)

// ParseVariant maps a task name to its variant. Anything outside the three
// known names fails with ErrInvalidConfiguration.
func ParseVariant(name string) (Variant, error) {
	switch name {
	case "spin":
		return Spin, nil
	case "turn_easy":
		return TurnEasy, nil
	case "turn_hard":
		return TurnHard, nil
	default:
		return 0, fmt.Errorf("%w: unknown task name %q", ErrInvalidConfiguration, name)
	}
}

func (v Variant) String() string {
	switch v {
	case Spin:
		return "spin"
	case TurnEasy:
		return "turn_easy"
	case TurnHard:
		return "turn_hard"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// HasTarget reports whether the variant places a target disc.
func (v Variant) HasTarget() bool { return v != Spin }

// TargetRadius is the disc radius the variant commits each episode, zero for
// the spin variant.
func (v Variant) TargetRadius() float64 {
	switch v {
	case TurnEasy:
		return easyTargetRadius
	case TurnHard:
		return hardTargetRadius
	default:
		return 0
	}
}

// TargetSpec is the target disc committed during one episode reset of a turn
// variant. The same values are written into the scene so the engine renders
// and senses the disc.
type TargetSpec struct {
	Angle  float64
	X      float64
	Z      float64
	Radius float64
}
