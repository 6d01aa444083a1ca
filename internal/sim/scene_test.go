package sim

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultSceneValidates(t *testing.T) {
	scene := DefaultScene()
	if err := scene.validate(); err != nil {
		t.Fatalf("default scene should validate: %v", err)
	}
	if r := scene.PaddleTipRadius(); math.Abs(r-0.28) > 1e-12 {
		t.Fatalf("expected paddle tip radius 0.28, got %g", r)
	}
}

func TestLoadSceneEmptyBasePathUsesDefault(t *testing.T) {
	scene, err := LoadScene("")
	if err != nil {
		t.Fatalf("load scene: %v", err)
	}
	if scene.Name != "finger" || len(scene.Joints) != 3 {
		t.Fatalf("unexpected default scene: %+v", scene)
	}
}

func TestLoadSceneRoundTrip(t *testing.T) {
	dir := t.TempDir()
	scene := DefaultScene()
	scene.Name = "finger_custom"
	scene.Joints[JointHinge].Damping = 0.2
	data, err := json.Marshal(scene)
	if err != nil {
		t.Fatalf("marshal scene: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, sceneFileName), data, 0o644); err != nil {
		t.Fatalf("write scene: %v", err)
	}

	loaded, err := LoadScene(dir)
	if err != nil {
		t.Fatalf("load scene: %v", err)
	}
	if loaded.Name != "finger_custom" {
		t.Fatalf("expected custom scene name, got %q", loaded.Name)
	}
	if loaded.Joints[JointHinge].Damping != 0.2 {
		t.Fatalf("expected hinge damping 0.2, got %g", loaded.Joints[JointHinge].Damping)
	}
	if loaded.PaddleTipRadius() != scene.PaddleTipRadius() {
		t.Fatalf("paddle tip radius changed through round trip")
	}
}

func TestLoadSceneRejectsInvalidDescriptions(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Scene)
	}{
		{"missing joint", func(s *Scene) { s.Joints = s.Joints[:2] }},
		{"missing geom", func(s *Scene) { s.Geoms = s.Geoms[:1] }},
		{"missing site", func(s *Scene) { s.Sites = s.Sites[:3] }},
		{"zero timestep", func(s *Scene) { s.Timestep = 0 }},
		{"empty joint range", func(s *Scene) { s.Joints[JointProximal].Range = Range{Min: 1, Max: 1} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			scene := DefaultScene()
			tc.mutate(scene)
			data, err := json.Marshal(scene)
			if err != nil {
				t.Fatalf("marshal scene: %v", err)
			}
			if err := os.WriteFile(filepath.Join(dir, sceneFileName), data, 0o644); err != nil {
				t.Fatalf("write scene: %v", err)
			}
			if _, err := LoadScene(dir); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadSceneMissingFile(t *testing.T) {
	if _, err := LoadScene(t.TempDir()); err == nil {
		t.Fatal("expected error for missing scene file")
	}
}

func TestNormalizeAngle(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi / 2, math.Pi / 2},
		{-math.Pi / 2, -math.Pi / 2},
		{2 * math.Pi, 0},
		{math.Pi, -math.Pi},
		{3 * math.Pi, -math.Pi},
		{-3 * math.Pi / 2, math.Pi / 2},
	}
	for _, tc := range cases {
		if got := normalizeAngle(tc.in); math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("normalizeAngle(%g) = %g, want %g", tc.in, got, tc.want)
		}
	}
}
