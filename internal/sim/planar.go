package sim

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
)

// Actuation and contact constants for the planar finger model.
const (
	gainProximal = 0.6
	gainDistal   = 0.45

	inertiaProximal = 0.05
	inertiaDistal   = 0.02
	inertiaHinge    = 0.006

	massProximal = 0.1
	massDistal   = 0.08

	contactStiffness = 500.0
	frictionCoeff    = 0.8
	frictionSlope    = 40.0
)

// Planar is a planar rigid-body engine for the finger scene: a torque-driven
// two-link arm above a free hinge paddle, integrated with semi-implicit
// Euler. Contacts are capsule-capsule penetrations between the arm links and
// the paddle.
type Planar struct {
	base  *Scene
	scene *Scene

	qpos [3]float64
	qvel [3]float64

	sensors [SensorCount]float64
	ncon    int
}

// NewPlanar builds an engine around a scene description. The scene is cloned;
// the caller's copy is never mutated.
func NewPlanar(scene *Scene) *Planar {
	p := &Planar{base: scene.clone()}
	p.Reset()
	return p
}

func (p *Planar) Reset() {
	p.scene = p.base.clone()
	p.qpos = [3]float64{}
	p.qvel = [3]float64{}
	p.sensors[sensorTouchTop] = 0
	p.sensors[sensorTouchBottom] = 0
	p.forward()
}

func (p *Planar) Settle() int {
	p.qvel = [3]float64{}
	p.sensors[sensorTouchTop] = 0
	p.sensors[sensorTouchBottom] = 0
	p.forward()
	return p.ncon
}

func (p *Planar) Sensors() Frame { return Frame(p.sensors[:]) }

func (p *Planar) QPos() []float64 {
	return []float64{p.qpos[0], p.qpos[1], p.qpos[2]}
}

func (p *Planar) HingeAnchor() (float64, float64) {
	return p.scene.HingeX, p.scene.HingeZ
}

func (p *Planar) GeomSize(geom int) [3]float64 {
	return p.scene.Geoms[geom].Size
}

func (p *Planar) SceneWriter() SceneWriter { return p }

func (p *Planar) SetSiteAlpha(site int, alpha float64) { p.scene.Sites[site].Alpha = alpha }

func (p *Planar) SetSitePos(site int, x, z float64) {
	p.scene.Sites[site].PosX = x
	p.scene.Sites[site].PosZ = z
}

func (p *Planar) SetSiteSize(site int, size float64) { p.scene.Sites[site].Size = size }

func (p *Planar) SetJointDamping(joint int, damping float64) {
	p.scene.Joints[joint].Damping = damping
}

// Advance integrates subSteps timesteps under the given control vector.
// Action components map to proximal and distal joint torques; values outside
// [-1, 1] are clipped.
func (p *Planar) Advance(action []float64, subSteps int) {
	var ctrl [2]float64
	for i := 0; i < len(ctrl) && i < len(action); i++ {
		ctrl[i] = clip(action[i], -1, 1)
	}
	for i := 0; i < subSteps; i++ {
		p.step(ctrl)
	}
	p.forward()
}

func (p *Planar) step(ctrl [2]float64) {
	dt := p.scene.Timestep
	g := p.scene.Gravity
	joints := p.scene.Joints

	// Gravity restores the hanging links toward straight down.
	gravP := -g * massProximal * (p.scene.ProximalLength / 2) * math.Sin(p.qpos[0])
	gravD := -g * massDistal * (p.scene.DistalLength / 2) * math.Sin(p.qpos[0]+p.qpos[1])

	hingeTorque, touchTop, touchBottom := p.contactTorque()

	accP := (gainProximal*ctrl[0] + gravP - joints[JointProximal].Damping*p.qvel[0]) / inertiaProximal
	accD := (gainDistal*ctrl[1] + gravD - joints[JointDistal].Damping*p.qvel[1]) / inertiaDistal
	accH := (hingeTorque - joints[JointHinge].Damping*p.qvel[2]) / inertiaHinge

	p.qvel[0] += dt * accP
	p.qvel[1] += dt * accD
	p.qvel[2] += dt * accH
	p.qpos[0] += dt * p.qvel[0]
	p.qpos[1] += dt * p.qvel[1]
	p.qpos[2] = normalizeAngle(p.qpos[2] + dt*p.qvel[2])

	for j := JointProximal; j <= JointDistal; j++ {
		if !joints[j].Limited {
			continue
		}
		if p.qpos[j] < joints[j].Range.Min {
			p.qpos[j] = joints[j].Range.Min
			p.qvel[j] = 0
		} else if p.qpos[j] > joints[j].Range.Max {
			p.qpos[j] = joints[j].Range.Max
			p.qvel[j] = 0
		}
	}

	p.sensors[sensorTouchTop] = touchTop
	p.sensors[sensorTouchBottom] = touchBottom
}

// RandomizeJoints draws each limited joint uniformly within its declared
// range and each free rotational joint uniformly over a full turn, then
// zeroes all velocities.
func (p *Planar) RandomizeJoints(rng *rand.Rand) {
	bounds := make([]r1.Interval, len(p.scene.Joints))
	for i, j := range p.scene.Joints {
		if j.Limited {
			bounds[i] = r1.Interval{Min: j.Range.Min, Max: j.Range.Max}
		} else {
			bounds[i] = r1.Interval{Min: -math.Pi, Max: math.Pi}
		}
	}
	sample := distmv.NewUniform(bounds, rng).Rand(nil)
	for i := range p.qpos {
		p.qpos[i] = sample[i]
	}
	p.qvel = [3]float64{}
}

// forward recomputes kinematics-derived sensor fields and the contact count.
func (p *Planar) forward() {
	p.sensors[sensorProximal] = p.qpos[0]
	p.sensors[sensorDistal] = p.qpos[1]
	p.sensors[sensorProximalVelocity] = p.qvel[0]
	p.sensors[sensorDistalVelocity] = p.qvel[1]
	p.sensors[sensorHingeVelocity] = p.qvel[2]

	tipX := p.scene.HingeX + p.scene.PaddleTipRadius()*math.Sin(p.qpos[2])
	tipZ := p.scene.HingeZ + p.scene.PaddleTipRadius()*math.Cos(p.qpos[2])
	p.sensors[sensorTip] = tipX
	p.sensors[sensorTip+1] = 0
	p.sensors[sensorTip+2] = tipZ

	target := p.scene.Sites[SiteTarget]
	p.sensors[sensorTarget] = target.PosX
	p.sensors[sensorTarget+1] = 0
	p.sensors[sensorTarget+2] = target.PosZ

	p.sensors[sensorSpinner] = p.scene.HingeX
	p.sensors[sensorSpinner+1] = 0
	p.sensors[sensorSpinner+2] = p.scene.HingeZ

	p.ncon = 0
	for _, seg := range p.armSegments() {
		if pen, _, _ := p.paddlePenetration(seg); pen > 0 {
			p.ncon++
		}
	}
}

type capsuleSegment struct {
	ax, az, bx, bz float64
	radius         float64
}

func (p *Planar) armSegments() [2]capsuleSegment {
	ex, ez := p.elbow()
	fx, fz := p.fingertip()
	return [2]capsuleSegment{
		{
			ax: p.scene.ShoulderX, az: p.scene.ShoulderZ,
			bx: ex, bz: ez,
			radius: p.scene.Geoms[GeomProximal].Size[0],
		},
		{
			ax: ex, az: ez,
			bx: fx, bz: fz,
			radius: p.scene.Geoms[GeomDistal].Size[0],
		},
	}
}

func (p *Planar) elbow() (float64, float64) {
	return p.scene.ShoulderX + p.scene.ProximalLength*math.Sin(p.qpos[0]),
		p.scene.ShoulderZ - p.scene.ProximalLength*math.Cos(p.qpos[0])
}

func (p *Planar) fingertip() (float64, float64) {
	ex, ez := p.elbow()
	a := p.qpos[0] + p.qpos[1]
	return ex + p.scene.DistalLength*math.Sin(a), ez - p.scene.DistalLength*math.Cos(a)
}

// paddlePenetration returns the penetration depth of an arm capsule against
// the paddle capsule, the contact point, and the signed lever arm of that
// point along the paddle axis.
func (p *Planar) paddlePenetration(seg capsuleSegment) (pen float64, cx, cz float64) {
	half := p.scene.Geoms[GeomSpinnerCap].Size[1]
	dirX, dirZ := math.Sin(p.qpos[2]), math.Cos(p.qpos[2])
	px0 := p.scene.HingeX - half*dirX
	pz0 := p.scene.HingeZ - half*dirZ
	px1 := p.scene.HingeX + half*dirX
	pz1 := p.scene.HingeZ + half*dirZ

	dist, cx, cz := segmentDistance(seg.ax, seg.az, seg.bx, seg.bz, px0, pz0, px1, pz1)
	pen = seg.radius + p.scene.Geoms[GeomSpinnerCap].Size[0] - dist
	return pen, cx, cz
}

// contactTorque resolves arm-paddle contacts into a hinge torque and the two
// touch-sensor force readings.
func (p *Planar) contactTorque() (torque, touchTop, touchBottom float64) {
	dirX, dirZ := math.Sin(p.qpos[2]), math.Cos(p.qpos[2])
	for i, seg := range p.armSegments() {
		pen, cx, cz := p.paddlePenetration(seg)
		if pen <= 0 {
			continue
		}
		normal := contactStiffness * pen

		rx, rz := cx-p.scene.HingeX, cz-p.scene.HingeZ
		lever := rx*dirX + rz*dirZ

		// Contact-point velocities: the paddle point moves perpendicular to
		// the paddle axis, the arm point with the link it belongs to.
		paddleVX := p.qvel[2] * lever * dirZ
		paddleVZ := -p.qvel[2] * lever * dirX
		armVX, armVZ := p.armPointVelocity(i)

		tx, tz := dirZ, -dirX // paddle surface tangent
		slide := (armVX-paddleVX)*tx + (armVZ-paddleVZ)*tz
		friction := clip(frictionSlope*slide, -frictionCoeff*normal, frictionCoeff*normal)

		// Torque about the hinge from the tangential friction force.
		fx, fz := friction*tx, friction*tz
		torque += rx*fz - rz*fx

		if lever >= 0 {
			touchTop += normal
		} else {
			touchBottom += normal
		}
	}
	return torque, touchTop, touchBottom
}

// armPointVelocity approximates the velocity of the contacting arm link's
// endpoint (elbow for the proximal link, fingertip for the distal one).
func (p *Planar) armPointVelocity(segment int) (float64, float64) {
	vx := p.scene.ProximalLength * p.qvel[0] * math.Cos(p.qpos[0])
	vz := p.scene.ProximalLength * p.qvel[0] * math.Sin(p.qpos[0])
	if segment == 0 {
		return vx, vz
	}
	a := p.qpos[0] + p.qpos[1]
	w := p.qvel[0] + p.qvel[1]
	return vx + p.scene.DistalLength*w*math.Cos(a), vz + p.scene.DistalLength*w*math.Sin(a)
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// segmentDistance approximates the minimum distance between segments AB and
// CD by sampling along AB, returning the point on CD realizing it. The
// capsules here are short enough that the sampling error stays well below the
// contact radii.
func segmentDistance(ax, az, bx, bz, cx, cz, dx, dz float64) (dist, px, pz float64) {
	best := math.Inf(1)
	const samples = 16
	for i := 0; i <= samples; i++ {
		t := float64(i) / samples
		qx := ax + t*(bx-ax)
		qz := az + t*(bz-az)
		d, sx, sz := pointSegmentDistance(qx, qz, cx, cz, dx, dz)
		if d < best {
			best, px, pz = d, sx, sz
		}
	}
	return best, px, pz
}

func pointSegmentDistance(qx, qz, ax, az, bx, bz float64) (dist, px, pz float64) {
	abx, abz := bx-ax, bz-az
	lenSq := abx*abx + abz*abz
	t := 0.0
	if lenSq > 0 {
		t = clip(((qx-ax)*abx+(qz-az)*abz)/lenSq, 0, 1)
	}
	px = ax + t*abx
	pz = az + t*abz
	return math.Hypot(qx-px, qz-pz), px, pz
}
