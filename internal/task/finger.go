// Package task implements the planar finger benchmark: a two-link
// manipulator that must either spin a free paddle past a velocity threshold
// or rotate its tip into a randomly placed target disc.
package task

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"fingerbench/internal/sim"
)

const (
	DefaultTaskName        = "spin"
	DefaultFrameSkip       = 2
	DefaultMaxEpisodeSteps = 1000

	defaultDiscount  = 1.0
	maxResetAttempts = 1000
)

// Config is the construction surface a pooling engine binds.
type Config struct {
	// TaskName is one of spin, turn_easy, turn_hard.
	TaskName string
	// FrameSkip is the number of internal physics sub-steps per Step call.
	FrameSkip int
	// MaxEpisodeSteps is carried for the external step-count budget; the
	// task itself never terminates episodes.
	MaxEpisodeSteps int
	// BasePath locates the scene description; empty selects the built-in
	// scene.
	BasePath string
	// Seed initializes the episode-local random generator.
	Seed uint64
	// Discount is emitted with every observation, clipped to [0, 1].
	// Zero means the default of 1.
	Discount float64
	// Diagnostics attaches the initial joint configuration and committed
	// target to every observation record.
	Diagnostics bool
}

func (c Config) withDefaults() Config {
	if c.TaskName == "" {
		c.TaskName = DefaultTaskName
	}
	if c.FrameSkip <= 0 {
		c.FrameSkip = DefaultFrameSkip
	}
	if c.MaxEpisodeSteps <= 0 {
		c.MaxEpisodeSteps = DefaultMaxEpisodeSteps
	}
	if c.Discount == 0 {
		c.Discount = defaultDiscount
	}
	return c
}

// Finger is one task instance. It is a sequential state machine owned by a
// single caller: construction, Reset, then Steps. None of its methods are
// safe for concurrent use.
type Finger struct {
	variant         Variant
	eng             sim.Engine
	frameSkip       int
	maxEpisodeSteps int
	discount        float64
	diagnostics     bool

	rng       *rand.Rand
	angleDist distuv.Uniform

	target  *TargetSpec
	qpos0   []float64
	current Observation
}

// New builds a task instance backed by the planar engine, loading the scene
// from cfg.BasePath.
func New(cfg Config) (*Finger, error) {
	scene, err := sim.LoadScene(cfg.BasePath)
	if err != nil {
		return nil, err
	}
	return NewWithEngine(cfg, sim.NewPlanar(scene))
}

// NewWithEngine builds a task instance on an already constructed engine.
func NewWithEngine(cfg Config, eng sim.Engine) (*Finger, error) {
	cfg = cfg.withDefaults()
	variant, err := ParseVariant(cfg.TaskName)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	return &Finger{
		variant:         variant,
		eng:             eng,
		frameSkip:       cfg.FrameSkip,
		maxEpisodeSteps: cfg.MaxEpisodeSteps,
		discount:        clipUnit(cfg.Discount),
		diagnostics:     cfg.Diagnostics,
		rng:             rng,
		angleDist:       distuv.Uniform{Min: -math.Pi, Max: math.Pi, Src: rng},
	}, nil
}

func (f *Finger) Variant() Variant { return f.variant }

func (f *Finger) MaxEpisodeSteps() int { return f.maxEpisodeSteps }

// FrameSkip reports the number of physics sub-steps per Step call.
func (f *Finger) FrameSkip() int { return f.frameSkip }

// Target returns the committed target disc, nil for the spin variant or
// before the first Reset.
func (f *Finger) Target() *TargetSpec { return f.target }

// Observation returns the record written by the most recent Reset or Step.
func (f *Finger) Observation() Observation { return f.current }

// Reset starts a new episode: engine buffers are restored, the variant's
// scene mutations applied, and a contact-free pose committed before the
// first observation is written.
func (f *Finger) Reset() (Observation, error) {
	f.eng.Reset()
	if err := f.initializeEpisode(); err != nil {
		return Observation{}, err
	}
	f.writeObservation()
	return f.current, nil
}

// Step advances the engine by the configured frame skip under the given
// action and writes the new observation record.
func (f *Finger) Step(action []float64) (Observation, error) {
	f.eng.Advance(action, f.frameSkip)
	f.writeObservation()
	return f.current, nil
}

// IsEpisodeTerminal always reports false: episode length is governed
// entirely by the external step-count budget.
func (f *Finger) IsEpisodeTerminal() bool { return false }

// ComputeReward evaluates the binary variant reward against the current
// sensor frame. Boundary equality counts as success.
func (f *Finger) ComputeReward() float64 {
	frame := f.eng.Sensors()
	if f.variant == Spin {
		if frame.HingeVelocity() <= -spinVelocity {
			return 1
		}
		return 0
	}
	if distToTarget(frame, f.target.Radius) <= 0 {
		return 1
	}
	return 0
}

// initializeEpisode performs the once-per-episode scene mutations and then
// searches for a contact-free starting pose.
func (f *Finger) initializeEpisode() error {
	w := f.eng.SceneWriter()
	if f.variant == Spin {
		w.SetSiteAlpha(sim.SiteTarget, 0)
		w.SetSiteAlpha(sim.SiteTip, 0)
		w.SetJointDamping(sim.JointHinge, spinHingeDamping)
		f.target = nil
	} else {
		angle := f.sampleTargetAngle()
		hingeX, hingeZ := f.eng.HingeAnchor()
		size := f.eng.GeomSize(sim.GeomSpinnerCap)
		ring := size[0] + size[1] + size[2]
		spec := TargetSpec{
			Angle:  angle,
			X:      hingeX + ring*math.Sin(angle),
			Z:      hingeZ + ring*math.Cos(angle),
			Radius: f.variant.TargetRadius(),
		}
		w.SetSitePos(sim.SiteTarget, spec.X, spec.Z)
		w.SetSiteSize(sim.SiteTarget, spec.Radius)
		f.target = &spec
	}
	return f.randomizeJointAngles()
}

// randomizeJointAngles rejection-samples a starting pose: randomize, settle,
// accept on zero contacts. The attempt bound turns a misconfigured scene
// into a detectable error instead of an infinite loop.
func (f *Finger) randomizeJointAngles() error {
	for attempt := 0; attempt < maxResetAttempts; attempt++ {
		f.eng.RandomizeJoints(f.rng)
		if f.eng.Settle() == 0 {
			if f.diagnostics {
				f.qpos0 = f.eng.QPos()
			}
			return nil
		}
	}
	return fmt.Errorf("%w after %d attempts", ErrResetExhausted, maxResetAttempts)
}

// sampleTargetAngle draws uniformly over a full turn, open at -pi and closed
// at pi.
func (f *Finger) sampleTargetAngle() float64 {
	return -f.angleDist.Rand()
}

func (f *Finger) writeObservation() {
	frame := f.eng.Sensors()
	obs := Observation{
		Position: boundedPosition(frame),
		Velocity: velocity(frame),
		Touch:    touch(frame),
		Reward:   f.ComputeReward(),
		Discount: f.discount,
	}
	if f.target != nil {
		obs.Target = &TargetObservation{
			Position: targetPosition(frame),
			Dist:     distToTarget(frame, f.target.Radius),
		}
	}
	if f.diagnostics {
		diag := &Diagnostics{QPos0: append([]float64(nil), f.qpos0...)}
		if f.target != nil {
			diag.Target = [2]float64{f.target.X, f.target.Z}
		}
		obs.Diag = diag
	}
	f.current = obs
}

func clipUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
