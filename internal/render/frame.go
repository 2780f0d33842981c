// Package render turns simulation snapshots into images, animations and
// run artifacts.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/geo"
	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/simulation"
)

var (
	ColorBackground = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	ColorGrid       = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	ColorText       = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	ColorLand       = color.RGBA{R: 238, G: 232, B: 214, A: 255}
	ColorBorder     = color.RGBA{R: 160, G: 150, B: 130, A: 255}
	ColorCrisis     = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	ColorSafe       = color.RGBA{R: 0, G: 160, B: 0, A: 255}
	ColorFast       = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	ColorMedium     = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	ColorSlow       = color.RGBA{R: 220, G: 0, B: 0, A: 255}
)

// ClassColor returns the dot color of a speed class.
func ClassColor(c simulation.SpeedClass) color.RGBA {
	switch c {
	case simulation.SpeedFast:
		return ColorFast
	case simulation.SpeedMedium:
		return ColorMedium
	default:
		return ColorSlow
	}
}

// Rasterizer draws snapshots onto square RGBA images. North is up: domain y
// grows toward the top of the picture.
type Rasterizer struct {
	Size      int  // image width and height in pixels
	GridLines int  // number of grid cells per axis, 0 disables the grid
	DotRadius int  // agent dot radius in pixels
	Labels    bool // draw the tick counter and class legend

	basemap *Basemap
	base    *image.RGBA // basemap pre-rendered at Size
}

func NewRasterizer(size int) *Rasterizer {
	return &Rasterizer{Size: size, GridLines: 10, DotRadius: 2, Labels: true}
}

// SetBasemap draws b under every following frame. A nil map clears it.
func (r *Rasterizer) SetBasemap(b *Basemap) {
	r.basemap, r.base = b, nil
	if b != nil {
		r.base = b.Image(r.Size)
	}
}

// Render draws s. It never mutates the snapshot and gives equal images for equal snapshots.
func (r *Rasterizer) Render(s simulation.Snapshot) *image.RGBA {
	var img *image.RGBA
	switch {
	case r.base != nil && r.base.Rect.Dx() == r.Size:
		img = image.NewRGBA(r.base.Rect)
		copy(img.Pix, r.base.Pix)
	case r.basemap != nil:
		img = r.basemap.Image(r.Size)
	default:
		img = image.NewRGBA(image.Rect(0, 0, r.Size, r.Size))
		draw.Draw(img, img.Bounds(), &image.Uniform{C: ColorBackground}, image.Point{}, draw.Src)
	}

	grid := s.GridSize
	if grid <= 0 {
		grid = 1
	}
	scale := float64(r.Size) / grid

	if r.GridLines > 0 {
		step := float64(r.Size) / float64(r.GridLines)
		for i := 1; i < r.GridLines; i++ {
			p := int(math.Round(float64(i) * step))
			for k := 0; k < r.Size; k++ {
				img.SetRGBA(p, k, ColorGrid)
				img.SetRGBA(k, p, ColorGrid)
			}
		}
	}

	for _, z := range s.CrisisZones {
		x, y := r.toPixel(z.Center.X, z.Center.Y, scale)
		strokeCircle(img, x, y, z.Radius*scale, ColorCrisis)
	}
	for _, z := range s.SafeZones {
		x, y := r.toPixel(z.Center.X, z.Center.Y, scale)
		strokeCircle(img, x, y, z.Radius*scale, ColorSafe)
	}

	for _, a := range s.Agents {
		x, y := r.toPixel(a.Position.X, a.Position.Y, scale)
		fillDisc(img, int(math.Round(x)), int(math.Round(y)), r.DotRadius, ClassColor(a.Class))
	}

	if r.Labels {
		addLabel(img, 6, 16, fmt.Sprintf("tick %d", s.Tick), ColorText)
		if s.Converged {
			addLabel(img, 6, 30, "converged", ColorSafe)
		}
	}
	return img
}

func (r *Rasterizer) toPixel(x, y, scale float64) (float64, float64) {
	return x * scale, float64(r.Size) - y*scale
}

// strokeCircle draws a one pixel outline of a circle centered on (cx, cy).
func strokeCircle(img *image.RGBA, cx, cy, radius float64, c color.RGBA) {
	if radius < 1 {
		radius = 1
	}
	steps := int(math.Max(16, 2*math.Pi*radius))
	for i := 0; i < steps; i++ {
		theta := 2 * math.Pi * float64(i) / float64(steps)
		x := int(math.Round(cx + radius*math.Cos(theta)))
		y := int(math.Round(cy + radius*math.Sin(theta)))
		if image.Pt(x, y).In(img.Rect) {
			img.SetRGBA(x, y, c)
		}
	}
}

func fillDisc(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			if p := image.Pt(cx+dx, cy+dy); p.In(img.Rect) {
				img.SetRGBA(p.X, p.Y, c)
			}
		}
	}
}

// addLabel draws label with its baseline at (x, y).
func addLabel(img *image.RGBA, x, y int, label string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(label)
}

// Basemap is the country map drawn under the zones. Land is in lon/lat and
// reaches the picture through Projection, then the domain scale.
type Basemap struct {
	Land       orb.MultiPolygon
	Projection geo.Projection
	GridSize   float64
}

// Image returns a size x size background with the land filled and every ring
// outlined.
func (b *Basemap) Image(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: ColorBackground}, image.Point{}, draw.Src)
	if b.GridSize <= 0 {
		return img
	}

	scale := float64(size) / b.GridSize
	for _, poly := range b.Land {
		rings := make([][]pixel, len(poly))
		for i, ring := range poly {
			rings[i] = make([]pixel, len(ring))
			for j, pt := range ring {
				v := b.Projection.ToDomain(geo.Point{Lon: pt[0], Lat: pt[1]})
				rings[i][j] = pixel{x: v.X * scale, y: float64(size) - v.Y*scale}
			}
		}
		fillPolygon(img, rings, ColorLand)
		for _, ring := range rings {
			strokeRing(img, ring, ColorBorder)
		}
	}
	return img
}

type pixel struct{ x, y float64 }

// fillPolygon is an even-odd scanline fill sampled at pixel centers; holes
// are the inner rings.
func fillPolygon(img *image.RGBA, rings [][]pixel, c color.RGBA) {
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, ring := range rings {
		for _, p := range ring {
			minY, maxY = math.Min(minY, p.y), math.Max(maxY, p.y)
		}
	}
	if math.IsInf(minY, 1) {
		return
	}
	y0 := max(int(math.Floor(minY)), img.Rect.Min.Y)
	y1 := min(int(math.Ceil(maxY)), img.Rect.Max.Y-1)

	var nodes []float64
	for y := y0; y <= y1; y++ {
		fy := float64(y) + 0.5
		nodes = nodes[:0]
		for _, ring := range rings {
			for i := range ring {
				a, b := ring[i], ring[(i+1)%len(ring)]
				if (a.y < fy) != (b.y < fy) {
					nodes = append(nodes, a.x+(fy-a.y)/(b.y-a.y)*(b.x-a.x))
				}
			}
		}
		sort.Float64s(nodes)
		for i := 0; i+1 < len(nodes); i += 2 {
			xs := max(int(math.Ceil(nodes[i]-0.5)), img.Rect.Min.X)
			xe := min(int(math.Ceil(nodes[i+1]-0.5)), img.Rect.Max.X)
			for x := xs; x < xe; x++ {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

func strokeRing(img *image.RGBA, ring []pixel, c color.RGBA) {
	for i := 0; i+1 < len(ring); i++ {
		drawLine(img, ring[i], ring[i+1], c)
	}
	if n := len(ring); n > 2 && ring[0] != ring[n-1] {
		drawLine(img, ring[n-1], ring[0], c)
	}
}

// drawLine is Bresenham between the rounded end points.
func drawLine(img *image.RGBA, from, to pixel, c color.RGBA) {
	x1, y1 := int(math.Round(from.x)), int(math.Round(from.y))
	x2, y2 := int(math.Round(to.x)), int(math.Round(to.y))
	dx, dy := abs(x2-x1), -abs(y2-y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	e := dx + dy
	for {
		if image.Pt(x1, y1).In(img.Rect) {
			img.SetRGBA(x1, y1, c)
		}
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x1 += sx
		}
		if e2 <= dx {
			e += dx
			y1 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
