package task

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/exp/rand"

	"fingerbench/internal/sim"
)

// Sensor offsets mirrored from the engine's frame layout.
const (
	offHingeVelocity = 4
	offTip           = 5
	offTarget        = 8
	offSpinner       = 11
	offTouchTop      = 14
	offTouchBottom   = 15
)

// scriptedEngine is a canned Engine: settle results play back in order and
// the sensor vector is set directly by each test.
type scriptedEngine struct {
	sensors [sim.SensorCount]float64

	settleScript []int
	settleCalls  int
	resetCalls   int

	lastAction   []float64
	lastSubSteps int

	siteAlpha map[int]float64
	sitePos   map[int][2]float64
	siteSize  map[int]float64
	damping   map[int]float64
}

func newScriptedEngine() *scriptedEngine {
	return &scriptedEngine{
		siteAlpha: make(map[int]float64),
		sitePos:   make(map[int][2]float64),
		siteSize:  make(map[int]float64),
		damping:   make(map[int]float64),
	}
}

func (e *scriptedEngine) Reset() { e.resetCalls++ }

func (e *scriptedEngine) Settle() int {
	i := e.settleCalls
	e.settleCalls++
	if i < len(e.settleScript) {
		return e.settleScript[i]
	}
	return 0
}

func (e *scriptedEngine) Advance(action []float64, subSteps int) {
	e.lastAction = append([]float64(nil), action...)
	e.lastSubSteps = subSteps
}

func (e *scriptedEngine) Sensors() sim.Frame { return sim.Frame(e.sensors[:]) }

func (e *scriptedEngine) RandomizeJoints(*rand.Rand) {}

func (e *scriptedEngine) QPos() []float64 { return []float64{0.3, -0.2, 1.1} }

func (e *scriptedEngine) HingeAnchor() (float64, float64) { return 0, 0 }

func (e *scriptedEngine) GeomSize(int) [3]float64 { return [3]float64{0.04, 0.22, 0.02} }

func (e *scriptedEngine) SceneWriter() sim.SceneWriter { return e }

func (e *scriptedEngine) SetSiteAlpha(site int, alpha float64) { e.siteAlpha[site] = alpha }

func (e *scriptedEngine) SetSitePos(site int, x, z float64) { e.sitePos[site] = [2]float64{x, z} }

func (e *scriptedEngine) SetSiteSize(site int, size float64) { e.siteSize[site] = size }

func (e *scriptedEngine) SetJointDamping(joint int, damping float64) { e.damping[joint] = damping }

func TestNewWithEngineRejectsUnknownTask(t *testing.T) {
	_, err := NewWithEngine(Config{TaskName: "cartwheel"}, newScriptedEngine())
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestConfigDefaults(t *testing.T) {
	f, err := NewWithEngine(Config{}, newScriptedEngine())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if f.Variant() != Spin {
		t.Fatalf("default task should be spin, got %s", f.Variant())
	}
	if f.FrameSkip() != 2 || f.MaxEpisodeSteps() != 1000 {
		t.Fatalf("unexpected defaults: frame_skip=%d max_steps=%d", f.FrameSkip(), f.MaxEpisodeSteps())
	}
}

func TestResetSpinHidesMarkersAndRetunesHinge(t *testing.T) {
	eng := newScriptedEngine()
	f, err := NewWithEngine(Config{TaskName: "spin"}, eng)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	obs, err := f.Reset()
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if eng.siteAlpha[sim.SiteTarget] != 0 || eng.siteAlpha[sim.SiteTip] != 0 {
		t.Fatal("spin reset should hide the target and tip markers")
	}
	if eng.damping[sim.JointHinge] != 0.03 {
		t.Fatalf("spin reset should retune hinge damping to 0.03, got %g", eng.damping[sim.JointHinge])
	}
	if f.Target() != nil || obs.Target != nil {
		t.Fatal("spin must not commit a target")
	}
}

func TestResetTurnCommitsTargetOnRing(t *testing.T) {
	eng := newScriptedEngine()
	f, err := NewWithEngine(Config{TaskName: "turn_easy", Seed: 9}, eng)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	seen := make(map[float64]bool)
	for i := 0; i < 20; i++ {
		if _, err := f.Reset(); err != nil {
			t.Fatalf("reset %d: %v", i, err)
		}
		target := f.Target()
		if target == nil {
			t.Fatal("turn reset must commit a target")
		}
		if target.Radius != 0.07 {
			t.Fatalf("expected easy radius 0.07, got %g", target.Radius)
		}
		if target.Angle <= -math.Pi || target.Angle > math.Pi {
			t.Fatalf("target angle %g outside (-pi, pi]", target.Angle)
		}
		if r := math.Hypot(target.X, target.Z); math.Abs(r-0.28) > 1e-9 {
			t.Fatalf("target should sit on the 0.28 ring, got radius %g", r)
		}
		pos := eng.sitePos[sim.SiteTarget]
		if pos[0] != target.X || pos[1] != target.Z {
			t.Fatal("committed target must be written into the scene")
		}
		if eng.siteSize[sim.SiteTarget] != target.Radius {
			t.Fatal("committed radius must be written into the scene")
		}
		seen[target.Angle] = true
	}
	if len(seen) < 2 {
		t.Fatal("target angles should vary across resets")
	}
}

func TestResetHardVariantUsesSmallRadius(t *testing.T) {
	f, err := NewWithEngine(Config{TaskName: "turn_hard"}, newScriptedEngine())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := f.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if f.Target().Radius != 0.03 {
		t.Fatalf("expected hard radius 0.03, got %g", f.Target().Radius)
	}
}

func TestResetExhaustsAttemptsOnPersistentContact(t *testing.T) {
	eng := newScriptedEngine()
	eng.settleScript = make([]int, maxResetAttempts)
	for i := range eng.settleScript {
		eng.settleScript[i] = 1
	}
	f, err := NewWithEngine(Config{TaskName: "spin"}, eng)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := f.Reset(); !errors.Is(err, ErrResetExhausted) {
		t.Fatalf("expected ErrResetExhausted, got %v", err)
	}
	if eng.settleCalls != maxResetAttempts {
		t.Fatalf("expected %d settle attempts, got %d", maxResetAttempts, eng.settleCalls)
	}
}

func TestResetRetriesUntilContactFree(t *testing.T) {
	eng := newScriptedEngine()
	eng.settleScript = []int{2, 1, 0}
	f, err := NewWithEngine(Config{TaskName: "spin"}, eng)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := f.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if eng.settleCalls != 3 {
		t.Fatalf("expected 3 settle attempts, got %d", eng.settleCalls)
	}
}

func TestStepAdvancesByFrameSkip(t *testing.T) {
	eng := newScriptedEngine()
	f, err := NewWithEngine(Config{TaskName: "spin", FrameSkip: 3}, eng)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := f.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := f.Step([]float64{0.5, -0.5}); err != nil {
		t.Fatalf("step: %v", err)
	}
	if eng.lastSubSteps != 3 {
		t.Fatalf("expected 3 sub-steps, got %d", eng.lastSubSteps)
	}
	if len(eng.lastAction) != 2 || eng.lastAction[0] != 0.5 || eng.lastAction[1] != -0.5 {
		t.Fatalf("unexpected forwarded action: %v", eng.lastAction)
	}
}

func TestComputeRewardSpinBoundary(t *testing.T) {
	eng := newScriptedEngine()
	f, err := NewWithEngine(Config{TaskName: "spin"}, eng)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := f.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	cases := []struct {
		velocity float64
		want     float64
	}{
		{-15.0, 1}, // boundary equality counts
		{-15.5, 1},
		{-14.999, 0},
		{15.0, 0}, // only the negative direction scores
		{0, 0},
	}
	for _, tc := range cases {
		eng.sensors[offHingeVelocity] = tc.velocity
		if got := f.ComputeReward(); got != tc.want {
			t.Fatalf("velocity %g: reward %g, want %g", tc.velocity, got, tc.want)
		}
	}
}

func TestComputeRewardTurnBoundary(t *testing.T) {
	eng := newScriptedEngine()
	f, err := NewWithEngine(Config{TaskName: "turn_easy"}, eng)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := f.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	// Spinner and paddle tip at the origin so the edge distance reduces to
	// the target's distance from the origin minus the disc radius.
	cases := []struct {
		targetX float64
		want    float64
	}{
		{0.07, 1}, // exactly on the disc edge
		{0.05, 1},
		{0, 1},
		{0.0701, 0},
		{0.28, 0},
	}
	for _, tc := range cases {
		eng.sensors[offTarget] = tc.targetX
		eng.sensors[offTarget+2] = 0
		if got := f.ComputeReward(); got != tc.want {
			t.Fatalf("target x %g: reward %g, want %g", tc.targetX, got, tc.want)
		}
	}
}

func TestDistToTargetRotationInvariant(t *testing.T) {
	eng := newScriptedEngine()
	f, err := NewWithEngine(Config{TaskName: "turn_easy"}, eng)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := f.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	for _, theta := range []float64{0, 0.7, -2.1, math.Pi / 3} {
		eng.sensors[offTarget] = 0.28 * math.Sin(theta)
		eng.sensors[offTarget+2] = 0.28 * math.Cos(theta)
		eng.sensors[offTip] = 0.21 * math.Sin(theta)
		eng.sensors[offTip+2] = 0.21 * math.Cos(theta)
		obs, err := f.Step(nil)
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		if math.Abs(obs.Target.Dist) > 1e-9 {
			t.Fatalf("angle %g: expected zero edge distance, got %g", theta, obs.Target.Dist)
		}
	}
}

func TestObservationTouchIsLogCompressed(t *testing.T) {
	eng := newScriptedEngine()
	f, err := NewWithEngine(Config{TaskName: "spin"}, eng)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	eng.sensors[offTouchTop] = 3
	eng.sensors[offTouchBottom] = 0
	obs, err := f.Reset()
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if math.Abs(obs.Touch[0]-math.Log1p(3)) > 1e-12 {
		t.Fatalf("expected log1p-compressed top touch, got %g", obs.Touch[0])
	}
	if obs.Touch[1] != 0 {
		t.Fatalf("expected zero bottom touch, got %g", obs.Touch[1])
	}
	if obs.Touch[0] < 0 || obs.Touch[1] < 0 {
		t.Fatal("touch observations must be non-negative")
	}
}

func TestObservationPositionRelativeToSpinner(t *testing.T) {
	eng := newScriptedEngine()
	f, err := NewWithEngine(Config{TaskName: "spin"}, eng)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	eng.sensors[0] = 0.4  // proximal angle
	eng.sensors[1] = -0.3 // distal angle
	eng.sensors[offTip] = 0.35
	eng.sensors[offTip+2] = 0.1
	eng.sensors[offSpinner] = 0.05
	eng.sensors[offSpinner+2] = -0.02
	obs, err := f.Reset()
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	want := [4]float64{0.4, -0.3, 0.3, 0.12}
	for i := range want {
		if math.Abs(obs.Position[i]-want[i]) > 1e-12 {
			t.Fatalf("position[%d] = %g, want %g", i, obs.Position[i], want[i])
		}
	}
}

func TestIsEpisodeTerminalAlwaysFalse(t *testing.T) {
	eng := newScriptedEngine()
	f, err := NewWithEngine(Config{TaskName: "spin", MaxEpisodeSteps: 10}, eng)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := f.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	// Even a scoring state never terminates; only the external step budget
	// ends an episode.
	eng.sensors[offHingeVelocity] = -20
	for i := 0; i < 10; i++ {
		if _, err := f.Step(nil); err != nil {
			t.Fatalf("step: %v", err)
		}
		if f.IsEpisodeTerminal() {
			t.Fatal("episode must never self-terminate")
		}
	}
}

func TestDiscountDefaultsAndClipping(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 1},
		{0.5, 0.5},
		{2, 1},
		{-1, 0},
	}
	for _, tc := range cases {
		f, err := NewWithEngine(Config{TaskName: "spin", Discount: tc.in}, newScriptedEngine())
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		obs, err := f.Reset()
		if err != nil {
			t.Fatalf("reset: %v", err)
		}
		if obs.Discount != tc.want {
			t.Fatalf("discount %g: got %g, want %g", tc.in, obs.Discount, tc.want)
		}
	}
}

func TestDiagnosticsGating(t *testing.T) {
	withDiag, err := NewWithEngine(Config{TaskName: "turn_easy", Diagnostics: true}, newScriptedEngine())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	obs, err := withDiag.Reset()
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if obs.Diag == nil {
		t.Fatal("diagnostics should be attached when enabled")
	}
	if len(obs.Diag.QPos0) != 3 {
		t.Fatalf("expected the full joint configuration, got %v", obs.Diag.QPos0)
	}
	target := withDiag.Target()
	if obs.Diag.Target != [2]float64{target.X, target.Z} {
		t.Fatal("diagnostics target should match the committed spec")
	}

	without, err := NewWithEngine(Config{TaskName: "turn_easy"}, newScriptedEngine())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	obs, err = without.Reset()
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if obs.Diag != nil {
		t.Fatal("diagnostics should be absent when disabled")
	}
}

func TestTurnEasyEndToEnd(t *testing.T) {
	f, err := New(Config{TaskName: "turn_easy", Seed: 3})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	obs, err := f.Reset()
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if obs.Target == nil {
		t.Fatal("turn_easy observation must carry the target fields")
	}
	radius := f.Target().Radius
	norm := math.Hypot(obs.Target.Position[0], obs.Target.Position[1])
	if norm < 3.9*radius || norm > 4.1*radius {
		t.Fatalf("target position norm %g outside [%g, %g]", norm, 3.9*radius, 4.1*radius)
	}
	for i := 0; i < 5; i++ {
		obs, err = f.Step([]float64{0, 0})
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if obs.Touch[0] < 0 || obs.Touch[1] < 0 {
			t.Fatalf("step %d: negative touch observation", i)
		}
	}
}

func TestSpinEndToEnd(t *testing.T) {
	f, err := New(Config{TaskName: "spin", Seed: 4})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	obs, err := f.Reset()
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if obs.Target != nil {
		t.Fatal("spin observation must not carry target fields")
	}
	if obs.Reward != 0 {
		t.Fatal("a freshly settled paddle cannot already score")
	}
	if _, err := f.Step([]float64{1, 1}); err != nil {
		t.Fatalf("step: %v", err)
	}
}
