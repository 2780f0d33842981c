package render

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/simulation"
)

// Pipeline is a simulation observer that rasterizes every FrameEvery-th
// snapshot (plus any converged one) and hands the frame to its recorders.
// A recorder that fails is logged and dropped; the run goes on.
type Pipeline struct {
	raster     *Rasterizer
	frameEvery int
	recorders  []FrameRecorder
	failed     []bool
	frames     int
	log        *zap.SugaredLogger
}

func NewPipeline(raster *Rasterizer, frameEvery int, log *zap.SugaredLogger, recorders ...FrameRecorder) *Pipeline {
	if frameEvery < 1 {
		frameEvery = 1
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Pipeline{
		raster:     raster,
		frameEvery: frameEvery,
		recorders:  recorders,
		failed:     make([]bool, len(recorders)),
		log:        log,
	}
}

// Observe implements simulation.Observer.
func (p *Pipeline) Observe(s simulation.Snapshot) error {
	if s.Tick%p.frameEvery != 0 && !s.Converged {
		return nil
	}
	img := p.raster.Render(s)
	p.frames++
	for i, r := range p.recorders {
		if p.failed[i] {
			continue
		}
		if err := r.AddFrame(img); err != nil {
			p.failed[i] = true
			p.log.Warnf("frame recorder %d disabled at tick %d: %v", i, s.Tick, err)
		}
	}
	return nil
}

// Frames returns how many frames were rendered.
func (p *Pipeline) Frames() int { return p.frames }

// Close closes every recorder and returns all failures combined.
func (p *Pipeline) Close() error {
	var err error
	for i, r := range p.recorders {
		if cerr := r.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("recorder %d: %w", i, cerr))
		}
	}
	return err
}
