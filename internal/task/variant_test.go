package task

import (
	"errors"
	"testing"
)

func TestParseVariant(t *testing.T) {
	cases := []struct {
		name    string
		want    Variant
		wantErr bool
	}{
		{"spin", Spin, false},
		{"turn_easy", TurnEasy, false},
		{"turn_hard", TurnHard, false},
		{"", 0, true},
		{"turn", 0, true},
		{"Spin", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseVariant(tc.name)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("%q: expected ErrInvalidConfiguration, got %v", tc.name, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%q: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestVariantProperties(t *testing.T) {
	if Spin.HasTarget() {
		t.Fatal("spin must not place a target")
	}
	if !TurnEasy.HasTarget() || !TurnHard.HasTarget() {
		t.Fatal("turn variants must place a target")
	}
	if Spin.TargetRadius() != 0 {
		t.Fatalf("spin radius should be zero, got %g", Spin.TargetRadius())
	}
	if TurnEasy.TargetRadius() != 0.07 || TurnHard.TargetRadius() != 0.03 {
		t.Fatalf("unexpected radii: easy=%g hard=%g", TurnEasy.TargetRadius(), TurnHard.TargetRadius())
	}
	if Spin.String() != "spin" || TurnEasy.String() != "turn_easy" || TurnHard.String() != "turn_hard" {
		t.Fatal("variant names must round-trip through String")
	}
}
