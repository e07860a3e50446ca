package proximity

import (
	"testing"

	modelpkg "museumbot/internal/sim/world/kernel/model"
)

func exhibitsAt(dists ...float64) []modelpkg.Exhibit {
	ids := []string{"A", "B", "C", "D"}
	out := make([]modelpkg.Exhibit, 0, len(dists))
	for i, d := range dists {
		out = append(out, modelpkg.Exhibit{ID: ids[i], Pos: modelpkg.Vec3{X: d}})
	}
	return out
}

func TestFindNearestWithin(t *testing.T) {
	exhibits := exhibitsAt(1.0, 0.5, 2.0)
	cases := []struct {
		name      string
		threshold float64
		wantID    string
		wantOK    bool
	}{
		{name: "nearest inside", threshold: 1.5, wantID: "B", wantOK: true},
		{name: "none inside", threshold: 0.4, wantOK: false},
		{name: "exactly at threshold is outside", threshold: 0.5, wantOK: false},
		{name: "just above", threshold: 0.5000001, wantID: "B", wantOK: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, ok := FindNearestWithin(exhibits, modelpkg.Vec3{}, tc.threshold)
			if ok != tc.wantOK || id != tc.wantID {
				t.Fatalf("got (%q,%v) want (%q,%v)", id, ok, tc.wantID, tc.wantOK)
			}
		})
	}
}

func TestFindNearestWithinTieKeepsRegistryOrder(t *testing.T) {
	exhibits := []modelpkg.Exhibit{
		{ID: "far", Pos: modelpkg.Vec3{X: 3}},
		{ID: "first", Pos: modelpkg.Vec3{X: 1}},
		{ID: "second", Pos: modelpkg.Vec3{X: -1}},
	}
	id, ok := FindNearestWithin(exhibits, modelpkg.Vec3{}, 2)
	if !ok || id != "first" {
		t.Fatalf("got (%q,%v) want first", id, ok)
	}
}

func TestFindNearestWithinEmpty(t *testing.T) {
	if id, ok := FindNearestWithin(nil, modelpkg.Vec3{}, 10); ok || id != "" {
		t.Fatalf("expected none, got %q", id)
	}
}

func TestIsWithin(t *testing.T) {
	e := modelpkg.Exhibit{ID: "A", Pos: modelpkg.Vec3{X: 3, Z: 4}}
	if !IsWithin(e, modelpkg.Vec3{}, 5.01) {
		t.Fatalf("distance 5 should be within 5.01")
	}
	if IsWithin(e, modelpkg.Vec3{}, 5) {
		t.Fatalf("distance 5 should not be within 5")
	}
}
