package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	colorOutline  = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	colorChecked  = color.RGBA{R: 0, G: 160, B: 0, A: 255}
	colorButton   = color.RGBA{R: 80, G: 120, B: 180, A: 255}
	colorHovered  = color.RGBA{R: 100, G: 150, B: 220, A: 255}
	colorPressed  = color.RGBA{R: 60, G: 90, B: 140, A: 255}
	colorTrack    = color.RGBA{R: 80, G: 80, B: 80, A: 255}
	colorTrackSet = color.RGBA{R: 200, G: 200, B: 200, A: 255}
)

// rect is the clickable area of a control.
type rect struct{ x, y, w, h float64 }

func (r rect) hovered() bool {
	mx, my := ebiten.CursorPosition()
	fx, fy := float64(mx), float64(my)
	return fx >= r.x && fx <= r.x+r.w && fy >= r.y && fy <= r.y+r.h
}

// clicked reports a press that started inside r during this frame.
func (r rect) clicked() bool {
	return inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && r.hovered()
}

// Button runs OnClick once per press.
type Button struct {
	Label   string
	OnClick func()
	area    rect
}

func NewButton(x, y, width, height float64, label string, onClick func()) *Button {
	return &Button{Label: label, OnClick: onClick, area: rect{x, y, width, height}}
}

func (b *Button) Update() {
	if b.area.clicked() && b.OnClick != nil {
		b.OnClick()
	}
}

func (b *Button) Draw(screen *ebiten.Image) {
	bg := colorButton
	switch {
	case b.area.hovered() && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		bg = colorPressed
	case b.area.hovered():
		bg = colorHovered
	}
	a := b.area
	vector.FillRect(screen, float32(a.x), float32(a.y), float32(a.w), float32(a.h), bg, true)
	vector.StrokeRect(screen, float32(a.x), float32(a.y), float32(a.w), float32(a.h), 1, colorOutline, true)

	// debug font glyphs are 6x16
	tx := a.x + (a.w-float64(len(b.Label)*6))/2
	ty := a.y + (a.h-16)/2
	ebitenutil.DebugPrintAt(screen, b.Label, int(tx), int(ty))
}

func (b *Button) Extent() float64 { return b.area.h + 8 }

// Checkbox toggles Value when its box or label is clicked.
type Checkbox struct {
	Label string
	Value bool
	box   float64
	area  rect
}

func NewCheckbox(x, y float64, label string, value bool) *Checkbox {
	const box = 14
	return &Checkbox{
		Label: label,
		Value: value,
		box:   box,
		area:  rect{x, y, box + 8 + float64(len(label)*6), box},
	}
}

func (c *Checkbox) Update() {
	if c.area.clicked() {
		c.Value = !c.Value
	}
}

func (c *Checkbox) Draw(screen *ebiten.Image) {
	x, y, s := float32(c.area.x), float32(c.area.y), float32(c.box)
	vector.StrokeRect(screen, x, y, s, s, 1, colorOutline, true)
	if c.Value {
		vector.FillRect(screen, x+3, y+3, s-6, s-6, colorChecked, true)
	}
	ebitenutil.DebugPrintAt(screen, c.Label, int(c.area.x+c.box+8), int(c.area.y)-1)
}

func (c *Checkbox) Extent() float64 { return c.box + 12 }
