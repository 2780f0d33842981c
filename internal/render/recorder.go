package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"os"

	"github.com/icza/mjpeg"
)

// FrameRecorder accumulates frames into an animation artifact.
type FrameRecorder interface {
	AddFrame(img image.Image) error
	Close() error
}

// gifPalette holds every color the rasterizer uses, so frames convert without dithering.
var gifPalette = color.Palette{
	ColorBackground,
	ColorGrid,
	ColorText,
	ColorLand,
	ColorBorder,
	ColorCrisis,
	ColorSafe,
	ColorFast,
	ColorMedium,
	ColorSlow,
	color.RGBA{R: 128, G: 128, B: 128, A: 255},
}

// GIFRecorder buffers frames and writes an animated GIF on Close. It holds at
// most maxFrames frames: when the buffer is full every other frame is dropped
// and from then on only one incoming frame in stride is kept, with the frame
// delay stretched so the animation keeps its running time.
type GIFRecorder struct {
	path      string
	delay     int // hundredths of a second between incoming frames
	maxFrames int
	stride    int
	seen      int
	tail      image.Image // latest skipped frame, shown last on Close
	anim      gif.GIF
}

// NewGIFRecorder creates a recorder playing at fps frames per second and
// keeping at most maxFrames frames.
func NewGIFRecorder(path string, fps, maxFrames int) (*GIFRecorder, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("gif frame rate must be > 0, got %d", fps)
	}
	if maxFrames < 2 {
		return nil, fmt.Errorf("gif frame cap must be >= 2, got %d", maxFrames)
	}
	delay := 100 / fps
	if delay < 1 {
		delay = 1
	}
	return &GIFRecorder{path: path, delay: delay, maxFrames: maxFrames, stride: 1}, nil
}

func (g *GIFRecorder) AddFrame(img image.Image) error {
	g.seen++
	if (g.seen-1)%g.stride != 0 {
		g.tail = img
		return nil
	}
	g.tail = nil
	g.anim.Image = append(g.anim.Image, paletted(img))
	g.anim.Delay = append(g.anim.Delay, g.delay*g.stride)
	if len(g.anim.Image) > g.maxFrames {
		g.decimate()
	}
	return nil
}

// decimate keeps the even frames and doubles the stride.
func (g *GIFRecorder) decimate() {
	g.stride *= 2
	n := 0
	for i := 0; i < len(g.anim.Image); i += 2 {
		g.anim.Image[n] = g.anim.Image[i]
		n++
	}
	clear(g.anim.Image[n:])
	g.anim.Image = g.anim.Image[:n]
	g.anim.Delay = g.anim.Delay[:n]
	for i := range g.anim.Delay {
		g.anim.Delay[i] = g.delay * g.stride
	}
}

func paletted(img image.Image) *image.Paletted {
	p := image.NewPaletted(img.Bounds(), gifPalette)
	draw.Draw(p, p.Rect, img, img.Bounds().Min, draw.Src)
	return p
}

// Frames returns the number of frames buffered so far.
func (g *GIFRecorder) Frames() int { return len(g.anim.Image) }

func (g *GIFRecorder) Close() error {
	if g.tail != nil {
		last := paletted(g.tail)
		if len(g.anim.Image) < g.maxFrames {
			g.anim.Image = append(g.anim.Image, last)
			g.anim.Delay = append(g.anim.Delay, g.delay*g.stride)
		} else {
			g.anim.Image[len(g.anim.Image)-1] = last
		}
		g.tail = nil
	}
	if len(g.anim.Image) == 0 {
		return nil
	}
	f, err := os.Create(g.path)
	if err != nil {
		return fmt.Errorf("create gif: %w", err)
	}
	if err := gif.EncodeAll(f, &g.anim); err != nil {
		f.Close()
		return fmt.Errorf("encode gif: %w", err)
	}
	return f.Close()
}

// MJPEGRecorder streams frames into an MJPEG AVI file.
type MJPEGRecorder struct {
	w       mjpeg.AviWriter
	quality int
	buf     bytes.Buffer
}

// NewMJPEGRecorder opens path for a size x size video at fps.
func NewMJPEGRecorder(path string, size, fps int) (*MJPEGRecorder, error) {
	w, err := mjpeg.New(path, int32(size), int32(size), int32(fps))
	if err != nil {
		return nil, fmt.Errorf("create mjpeg writer: %w", err)
	}
	return &MJPEGRecorder{w: w, quality: 90}, nil
}

func (m *MJPEGRecorder) AddFrame(img image.Image) error {
	m.buf.Reset()
	if err := jpeg.Encode(&m.buf, img, &jpeg.Options{Quality: m.quality}); err != nil {
		return fmt.Errorf("encode jpeg frame: %w", err)
	}
	return m.w.AddFrame(m.buf.Bytes())
}

func (m *MJPEGRecorder) Close() error {
	return m.w.Close()
}
