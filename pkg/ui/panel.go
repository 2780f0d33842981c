package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Widget is implemented by every control the panel can stack.
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
	Extent() float64
}

// Panel stacks widgets vertically under section headers.
type Panel struct {
	X, Y          float64
	Width, Height float64
	Title         string
	widgets       []Widget
	headers       map[int]string // widget index -> section title shown above it
	next          float64        // y offset for the next widget

	BGColor     color.RGBA
	BorderColor color.RGBA
}

// NewPanel creates a new panel
func NewPanel(x, y, width, height float64, title string) *Panel {
	return &Panel{
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		Title:       title,
		headers:     make(map[int]string),
		next:        30,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// AddSection starts a new section; its header is drawn above the next widget.
func (p *Panel) AddSection(title string) {
	p.headers[len(p.widgets)] = title
	p.next += 25
}

// AddSlider adds a slider widget to the panel
func (p *Panel) AddSlider(label string, min, max, value float64) *Slider {
	s := NewSlider(p.X+10, p.Y+p.next+20, p.Width-20, label, min, max, value)
	p.add(s)
	return s
}

// AddCheckbox adds a checkbox widget to the panel
func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(p.X+10, p.Y+p.next, label, value)
	p.add(c)
	return c
}

// AddButton adds a full-width button to the panel
func (p *Panel) AddButton(label string, onClick func()) *Button {
	b := NewButton(p.X+10, p.Y+p.next, p.Width-20, 24, label, onClick)
	p.add(b)
	return b
}

func (p *Panel) add(w Widget) {
	p.widgets = append(p.widgets, w)
	p.next += w.Extent()
}

// Update handles input for all widgets
func (p *Panel) Update() {
	for _, w := range p.widgets {
		w.Update()
	}
}

// Draw renders the panel and all widgets
func (p *Panel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		2, p.BorderColor, true)

	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	y := p.Y + 30
	for i, w := range p.widgets {
		if title, ok := p.headers[i]; ok {
			vector.FillRect(screen,
				float32(p.X+5), float32(y),
				float32(p.Width-10), 20,
				color.RGBA{R: 60, G: 60, B: 70, A: 255}, true)
			ebitenutil.DebugPrintAt(screen, title, int(p.X+10), int(y+2))
			y += 25
		}
		w.Draw(screen)
		y += w.Extent()
	}
}
