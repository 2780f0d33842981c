package simulation

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/behavior"
)

// StopReason tells why Run returned.
type StopReason int

const (
	StopConverged StopReason = iota
	StopMaxTicks
	StopCancelled
)

func (r StopReason) String() string {
	switch r {
	case StopConverged:
		return "converged"
	case StopMaxTicks:
		return "max ticks reached"
	case StopCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("StopReason(%d)", int(r))
	}
}

// TickResult summarizes one completed tick.
type TickResult struct {
	Tick              int
	AllBelowThreshold bool
	MaxDisplacement   float64
	MeanDisplacement  float64
}

// RunResult summarizes a Run call.
type RunResult struct {
	Ticks  int // ticks executed by this call
	Reason StopReason
	Last   TickResult
}

// World owns the authoritative simulation state: zones, agents and the tick counter.
// It is not safe for concurrent use; a single goroutine drives it.
type World struct {
	cfg    *Config
	forces behavior.Settings
	noise  float64
	rng    *rand.Rand
	log    *zap.SugaredLogger

	crisis []Zone
	safe   []Zone
	agents []Agent

	tick      int
	converged bool
	published bool
	observers []Observer

	// --- progress stats ---
	ticksSinceLog int
	lastLogTime   time.Time
}

// Option configures a World.
type Option func(*World)

// WithLogger sets the logger used for progress and observer failures.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(w *World) { w.log = l }
}

// WithObserver registers an observer that receives every completed snapshot.
func WithObserver(o Observer) Option {
	return func(w *World) { w.observers = append(w.observers, o) }
}

// NewWorld creates an empty world. rng drives the integration noise; two worlds
// built from equal configs and equally seeded sources evolve identically.
func NewWorld(cfg *Config, rng *rand.Rand, opts ...Option) (*World, error) {
	if cfg == nil {
		return nil, configErrorf("", "config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, configErrorf("rng", "random source is required")
	}
	w := &World{
		cfg:         cfg,
		forces:      cfg.Forces(),
		noise:       cfg.NoiseStrength,
		rng:         rng,
		log:         zap.NewNop().Sugar(),
		lastLogTime: time.Now(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// NewRand returns the seeded source used across the simulation.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// AddObserver registers an observer after construction.
func (w *World) AddObserver(o Observer) {
	w.observers = append(w.observers, o)
}

// SetZones installs the crisis and safe zones. Zones are copied; the world
// never mutates them afterwards.
func (w *World) SetZones(crisis, safe []Zone) error {
	for i, z := range crisis {
		if z.Kind != ZoneCrisis {
			return configErrorf(fmt.Sprintf("crisisZones[%d]", i), "kind is %s", z.Kind)
		}
		if z.Radius <= 0 {
			return configErrorf(fmt.Sprintf("crisisZones[%d]", i), "radius must be > 0")
		}
	}
	for i, z := range safe {
		if z.Kind != ZoneSafe {
			return configErrorf(fmt.Sprintf("safeZones[%d]", i), "kind is %s", z.Kind)
		}
		if z.Radius <= 0 {
			return configErrorf(fmt.Sprintf("safeZones[%d]", i), "radius must be > 0")
		}
	}
	w.crisis = append([]Zone(nil), crisis...)
	w.safe = append([]Zone(nil), safe...)
	return nil
}

// SetAgents installs the population. Positions are clamped into the domain.
func (w *World) SetAgents(agents []Agent) {
	w.agents = make([]Agent, len(agents))
	for i, a := range agents {
		a.Position = a.Position.Clamp(0, w.cfg.GridSize)
		w.agents[i] = a
	}
}

// SetForces changes the force constants between ticks.
func (w *World) SetForces(s behavior.Settings) { w.forces = s }

// Forces returns the current force constants.
func (w *World) Forces() behavior.Settings { return w.forces }

// SetNoise changes the noise standard deviation between ticks.
func (w *World) SetNoise(sigma float64) {
	if sigma < 0 {
		sigma = 0
	}
	w.noise = sigma
}

// Noise returns the current noise standard deviation.
func (w *World) Noise() float64 { return w.noise }

func (w *World) Config() *Config     { return w.cfg }
func (w *World) TickCount() int      { return w.tick }
func (w *World) Converged() bool     { return w.converged }
func (w *World) CrisisZones() []Zone { return append([]Zone(nil), w.crisis...) }
func (w *World) SafeZones() []Zone   { return append([]Zone(nil), w.safe...) }
func (w *World) Agents() []Agent     { return append([]Agent(nil), w.agents...) }

// Snapshot returns a deep copy of the current state.
func (w *World) Snapshot() Snapshot {
	return w.buildSnapshot(TickResult{Tick: w.tick, AllBelowThreshold: w.converged})
}

// Tick advances every agent by one step and publishes the resulting snapshot.
// When an error is returned no agent has moved and the tick counter is unchanged.
func (w *World) Tick() (TickResult, error) {
	if len(w.agents) > 0 && len(w.safe) == 0 {
		return TickResult{Tick: w.tick}, ErrNoSafeZones
	}

	res := TickResult{AllBelowThreshold: true}
	var total float64
	for i := range w.agents {
		a := &w.agents[i]
		force, err := a.ComputeForce(w.crisis, w.safe, w.forces)
		if err != nil {
			return TickResult{Tick: w.tick}, fmt.Errorf("agent %d: %w", a.ID, err)
		}
		moved := a.Integrate(force, w.noise, w.cfg.GridSize, w.rng)
		total += moved
		if moved > res.MaxDisplacement {
			res.MaxDisplacement = moved
		}
		if moved > w.cfg.StopThreshold {
			res.AllBelowThreshold = false
		}
	}
	if n := len(w.agents); n > 0 {
		res.MeanDisplacement = total / float64(n)
	}

	w.tick++
	res.Tick = w.tick
	w.converged = res.AllBelowThreshold
	w.logProgress(res)
	w.publish(w.buildSnapshot(res))
	return res, nil
}

// Run ticks until convergence, maxTicks ticks, or ctx cancellation.
// Cancellation is only observed between ticks; a cancelled run returns the
// partial result together with ctx.Err().
func (w *World) Run(ctx context.Context, maxTicks int) (RunResult, error) {
	if maxTicks <= 0 {
		return RunResult{}, configErrorf("maxTicks", "must be > 0, got %d", maxTicks)
	}
	if len(w.agents) > 0 && len(w.safe) == 0 {
		return RunResult{}, ErrNoSafeZones
	}

	w.log.Infof("starting run: %d agents, %d crisis zones, %d safe zones, max %d ticks",
		len(w.agents), len(w.crisis), len(w.safe), maxTicks)
	if !w.published {
		w.publish(w.Snapshot())
	}

	var out RunResult
	for out.Ticks < maxTicks {
		if err := ctx.Err(); err != nil {
			out.Reason = StopCancelled
			w.log.Infof("run cancelled after %d ticks", out.Ticks)
			return out, err
		}
		res, err := w.Tick()
		if err != nil {
			return out, err
		}
		out.Ticks++
		out.Last = res
		if res.AllBelowThreshold {
			out.Reason = StopConverged
			w.log.Infof("converged at tick %d (max displacement %.5f)", res.Tick, res.MaxDisplacement)
			return out, nil
		}
	}
	out.Reason = StopMaxTicks
	w.log.Infof("stopped after %d ticks without convergence (max displacement %.5f)", out.Ticks, out.Last.MaxDisplacement)
	return out, nil
}

func (w *World) publish(s Snapshot) {
	w.published = true
	for _, o := range w.observers {
		if err := o.Observe(s); err != nil {
			w.log.Warnf("observer failed at tick %d: %v", s.Tick, err)
		}
	}
}

func (w *World) logProgress(res TickResult) {
	w.ticksSinceLog++
	if time.Since(w.lastLogTime) >= time.Second {
		w.log.Debugf("📊 TICK RATE: %d/sec | tick %d | max move %.5f | mean move %.5f",
			w.ticksSinceLog, res.Tick, res.MaxDisplacement, res.MeanDisplacement)
		w.ticksSinceLog = 0
		w.lastLogTime = time.Now()
	}
}

// IsConfigurationError reports whether err is, or wraps, a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
