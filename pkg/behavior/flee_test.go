package behavior

import (
	"math"
	"testing"

	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/geometry"
)

func TestRepulsion_Direction(t *testing.T) {
	center := geometry.Vector2D{X: 50, Y: 50}
	tests := []struct {
		name string
		p    geometry.Vector2D
	}{
		{"East", geometry.Vector2D{X: 51, Y: 50}},
		{"North", geometry.Vector2D{X: 50, Y: 51.5}},
		{"South West", geometry.Vector2D{X: 49, Y: 49}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Repulsion(tt.p, center, 0.1)
			away := tt.p.Sub(center)
			if dot := f.X*away.X + f.Y*away.Y; dot <= 0 {
				t.Errorf("Repulsion(%v) = %v; not pointing away from center", tt.p, f)
			}
		})
	}
}

func TestRepulsion_AtCenterIsZero(t *testing.T) {
	c := geometry.Vector2D{X: 50, Y: 50}
	f := Repulsion(c, c, 0.1)
	if !f.Eq(geometry.Vector2D{}) || !f.IsFinite() {
		t.Errorf("Repulsion at center = %v; want zero vector", f)
	}
}

func TestRepulsion_MonotonicInsideRadius(t *testing.T) {
	center := geometry.Vector2D{X: 50, Y: 50}
	prev := math.Inf(1)
	for _, d := range []float64{0.1, 0.5, 1, 1.9} {
		m := Repulsion(geometry.Vector2D{X: 50 + d, Y: 50}, center, 0.1).Len()
		if m >= prev {
			t.Errorf("magnitude at d=%v is %v; want < %v", d, m, prev)
		}
		prev = m
	}
}

func TestAttraction_Magnitude(t *testing.T) {
	p := geometry.Vector2D{X: 10, Y: 10}
	c := geometry.Vector2D{X: 13, Y: 14}
	got := Attraction(p, c, 0.05).Len()
	want := 0.05 * 5 / ((5 + Softening) * (5 + Softening))
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Attraction magnitude = %v; want %v", got, want)
	}
}

func BenchmarkRepulsion(b *testing.B) {
	p := geometry.Vector2D{X: 51, Y: 50}
	c := geometry.Vector2D{X: 50, Y: 50}
	for i := 0; i < b.N; i++ {
		_ = Repulsion(p, c, 0.1)
	}
}
