package ui

import (
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider is a horizontal drag bar editing a float value in [Min, Max].
// A drag that starts on the track keeps control of the value until release,
// even when the cursor leaves the track.
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
	Format   string // fmt verb for the value, e.g. "%.3f"
	area     rect
	dragging bool
}

func NewSlider(x, y, width float64, label string, min, max, value float64) *Slider {
	return &Slider{
		Label:  label,
		Value:  math.Max(min, math.Min(max, value)),
		Min:    min,
		Max:    max,
		Format: "%.3f",
		area:   rect{x, y, width, 10},
	}
}

func (s *Slider) Update() {
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && s.area.hovered():
		s.dragging = true
	case !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		s.dragging = false
	}
	if !s.dragging || s.area.w <= 0 {
		return
	}
	mx, _ := ebiten.CursorPosition()
	t := math.Max(0, math.Min(1, (float64(mx)-s.area.x)/s.area.w))
	s.Value = s.Min + t*(s.Max-s.Min)
}

// Draw renders the track with the label and current value above it.
func (s *Slider) Draw(screen *ebiten.Image) {
	a := s.area
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s: "+s.Format, s.Label, s.Value), int(a.x), int(a.y)-16)

	vector.FillRect(screen, float32(a.x), float32(a.y), float32(a.w), float32(a.h), colorTrack, true)
	ratio := 0.0
	if s.Max > s.Min {
		ratio = (s.Value - s.Min) / (s.Max - s.Min)
	}
	vector.FillRect(screen, float32(a.x), float32(a.y), float32(a.w*ratio), float32(a.h), colorTrackSet, true)
	if s.dragging {
		vector.StrokeRect(screen, float32(a.x), float32(a.y), float32(a.w), float32(a.h), 1, colorOutline, true)
	}
}

// Extent is the vertical space the slider needs, label included.
func (s *Slider) Extent() float64 { return s.area.h + 25 }
