package sim

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Joint indices for the finger scene.
const (
	JointProximal = 0
	JointDistal   = 1
	JointHinge    = 2
)

// Site indices. Target and tip are visual markers, the touch sites carry the
// contact-force sensors at the two ends of the spinner paddle.
const (
	SiteTarget      = 0
	SiteTip         = 1
	SiteTouchTop    = 2
	SiteTouchBottom = 3
)

// Geom indices.
const (
	GeomProximal   = 0
	GeomDistal     = 1
	GeomSpinnerCap = 2
)

const sceneFileName = "finger.json"

// Range is a closed joint-angle interval in radians.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Joint struct {
	Name    string  `json:"name"`
	Limited bool    `json:"limited"`
	Range   Range   `json:"range"`
	Damping float64 `json:"damping"`
}

// Geom carries the three half-extents of a collision primitive. For capsules
// the slots are radius, half-length, and the end-cap marker offset.
type Geom struct {
	Name string     `json:"name"`
	Size [3]float64 `json:"size"`
}

type Site struct {
	Name  string  `json:"name"`
	PosX  float64 `json:"pos_x"`
	PosZ  float64 `json:"pos_z"`
	Size  float64 `json:"size"`
	Alpha float64 `json:"alpha"`
}

// Scene is the declarative description of the planar finger model: a
// two-link manipulator suspended above a free-spinning paddle.
type Scene struct {
	Name string `json:"name"`

	// Anchors in the x-z plane.
	ShoulderX float64 `json:"shoulder_x"`
	ShoulderZ float64 `json:"shoulder_z"`
	HingeX    float64 `json:"hinge_x"`
	HingeZ    float64 `json:"hinge_z"`

	ProximalLength float64 `json:"proximal_length"`
	DistalLength   float64 `json:"distal_length"`

	Joints []Joint `json:"joints"`
	Geoms  []Geom  `json:"geoms"`
	Sites  []Site  `json:"sites"`

	Timestep float64 `json:"timestep"`
	Gravity  float64 `json:"gravity"`
}

// DefaultScene returns the built-in finger scene. The spinner cap half-extents
// sum to 0.28, which fixes both the paddle-tip radius and the ring on which
// targets are placed.
func DefaultScene() *Scene {
	return &Scene{
		Name:           "finger",
		ShoulderX:      0,
		ShoulderZ:      0.34,
		HingeX:         0,
		HingeZ:         0,
		ProximalLength: 0.17,
		DistalLength:   0.16,
		Joints: []Joint{
			{Name: "proximal", Limited: true, Range: Range{Min: -1.92, Max: 1.92}, Damping: 0.05},
			{Name: "distal", Limited: true, Range: Range{Min: -1.15, Max: 1.15}, Damping: 0.05},
			{Name: "hinge", Damping: 0.1},
		},
		Geoms: []Geom{
			{Name: "proximal", Size: [3]float64{0.03, 0.085, 0}},
			{Name: "distal", Size: [3]float64{0.028, 0.08, 0}},
			{Name: "cap1", Size: [3]float64{0.04, 0.22, 0.02}},
		},
		Sites: []Site{
			{Name: "target", PosX: 0, PosZ: 0.28, Size: 0.03, Alpha: 1},
			{Name: "tip", Size: 0.01, Alpha: 1},
			{Name: "touchtop", Size: 0.04, Alpha: 0.5},
			{Name: "touchbottom", Size: 0.04, Alpha: 0.5},
		},
		Timestep: 0.01,
		Gravity:  9.81,
	}
}

// LoadScene reads the finger scene description from basePath. An empty
// basePath selects the built-in default scene.
func LoadScene(basePath string) (*Scene, error) {
	if basePath == "" {
		return DefaultScene(), nil
	}
	data, err := os.ReadFile(filepath.Join(basePath, sceneFileName))
	if err != nil {
		return nil, fmt.Errorf("load scene: %w", err)
	}
	var scene Scene
	if err := json.Unmarshal(data, &scene); err != nil {
		return nil, fmt.Errorf("load scene: %w", err)
	}
	if err := scene.validate(); err != nil {
		return nil, fmt.Errorf("load scene: %w", err)
	}
	return &scene, nil
}

func (s *Scene) validate() error {
	if len(s.Joints) != 3 {
		return fmt.Errorf("scene %q: want 3 joints, got %d", s.Name, len(s.Joints))
	}
	if len(s.Geoms) != 3 {
		return fmt.Errorf("scene %q: want 3 geoms, got %d", s.Name, len(s.Geoms))
	}
	if len(s.Sites) != 4 {
		return fmt.Errorf("scene %q: want 4 sites, got %d", s.Name, len(s.Sites))
	}
	if s.Timestep <= 0 {
		return fmt.Errorf("scene %q: timestep must be positive", s.Name)
	}
	for _, j := range s.Joints {
		if j.Limited && j.Range.Min >= j.Range.Max {
			return fmt.Errorf("scene %q: joint %s has empty range", s.Name, j.Name)
		}
	}
	return nil
}

// PaddleTipRadius is the distance from the hinge anchor to the spinner's tip
// marker, the sum of the spinner cap's three half-extents.
func (s *Scene) PaddleTipRadius() float64 {
	size := s.Geoms[GeomSpinnerCap].Size
	return size[0] + size[1] + size[2]
}

func (s *Scene) clone() *Scene {
	dup := *s
	dup.Joints = append([]Joint(nil), s.Joints...)
	dup.Geoms = append([]Geom(nil), s.Geoms...)
	dup.Sites = append([]Site(nil), s.Sites...)
	return &dup
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
