package sim

import "golang.org/x/exp/rand"

// Engine is the physics collaborator a task instance drives. A single engine
// is owned by exactly one task instance; none of its methods are safe for
// concurrent use.
type Engine interface {
	// Reset restores the simulation buffers to the scene's initial state.
	Reset()

	// Settle applies constraints after a state change, refreshes the sensor
	// vector, and returns the number of active contacts.
	Settle() int

	// Advance runs subSteps internal integration steps with the given control
	// vector and refreshes the sensor vector.
	Advance(action []float64, subSteps int)

	// Sensors returns the current sensor vector. The slice aliases engine
	// state and is only valid until the next Advance or Settle call.
	Sensors() Frame

	// RandomizeJoints draws a fresh angle for every joint that is limited or
	// freely rotational, respecting declared ranges, and zeroes velocities.
	RandomizeJoints(rng *rand.Rand)

	// QPos returns a copy of the current joint configuration.
	QPos() []float64

	// HingeAnchor returns the world position of the spinner hinge.
	HingeAnchor() (x, z float64)

	// GeomSize returns the three half-extents of a geom.
	GeomSize(geom int) [3]float64

	// SceneWriter grants write access to the mutable model fields. Callers
	// must not retain the writer beyond the reset that requested it.
	SceneWriter() SceneWriter
}

// SceneWriter is the narrow mutation surface a task may use once per episode
// during reset.
type SceneWriter interface {
	SetSiteAlpha(site int, alpha float64)
	SetSitePos(site int, x, z float64)
	SetSiteSize(site int, size float64)
	SetJointDamping(joint int, damping float64)
}
