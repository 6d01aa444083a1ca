package sim

// Sensor vector layout for the finger scene. The ordering is fixed by the
// scene description and shared with the engine; the task layer only ever
// reads through the named accessors below.
const (
	sensorProximal         = 0
	sensorDistal           = 1
	sensorProximalVelocity = 2
	sensorDistalVelocity   = 3
	sensorHingeVelocity    = 4
	sensorTip              = 5  // xyz
	sensorTarget           = 8  // xyz
	sensorSpinner          = 11 // xyz
	sensorTouchTop         = 14
	sensorTouchBottom      = 15

	// SensorCount is the length of a full sensor vector.
	SensorCount = 16
)

// Frame is one per-step sensor reading. It aliases the engine's buffer and is
// only valid until the next Advance or Settle call.
type Frame []float64

func (f Frame) Proximal() float64         { return f[sensorProximal] }
func (f Frame) Distal() float64           { return f[sensorDistal] }
func (f Frame) ProximalVelocity() float64 { return f[sensorProximalVelocity] }
func (f Frame) DistalVelocity() float64   { return f[sensorDistalVelocity] }
func (f Frame) HingeVelocity() float64    { return f[sensorHingeVelocity] }

// Site readings are world positions in the x-z plane; the y component is
// carried for layout compatibility and is always zero for a planar scene.
func (f Frame) TipX() float64     { return f[sensorTip] }
func (f Frame) TipZ() float64     { return f[sensorTip+2] }
func (f Frame) TargetX() float64  { return f[sensorTarget] }
func (f Frame) TargetZ() float64  { return f[sensorTarget+2] }
func (f Frame) SpinnerX() float64 { return f[sensorSpinner] }
func (f Frame) SpinnerZ() float64 { return f[sensorSpinner+2] }

func (f Frame) TouchTop() float64    { return f[sensorTouchTop] }
func (f Frame) TouchBottom() float64 { return f[sensorTouchBottom] }
