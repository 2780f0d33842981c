package simulation

import "github.com/lao-tseu-is-alive/go-crisis-flight/pkg/geometry"

// AgentState is the read-only view of an agent inside a Snapshot.
type AgentState struct {
	ID       int               `json:"id"`
	Position geometry.Vector2D `json:"position"`
	Class    SpeedClass        `json:"class"`
}

// Snapshot is a deep copy of the world after a completed tick.
// Observers may keep it; the world never touches it again.
type Snapshot struct {
	Tick             int          `json:"tick"`
	GridSize         float64      `json:"gridSize"`
	CrisisZones      []Zone       `json:"crisisZones"`
	SafeZones        []Zone       `json:"safeZones"`
	Agents           []AgentState `json:"agents"`
	MaxDisplacement  float64      `json:"maxDisplacement"`
	MeanDisplacement float64      `json:"meanDisplacement"`
	Converged        bool         `json:"converged"`
}

// Observer receives a snapshot after every completed tick.
// A returned error is logged by the world and never aborts the run.
type Observer interface {
	Observe(s Snapshot) error
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(s Snapshot) error

func (f ObserverFunc) Observe(s Snapshot) error { return f(s) }

// ChannelObserver pushes snapshots onto a channel without blocking.
// When the receiver is busy the snapshot is dropped, the same way a UI skips frames.
type ChannelObserver chan<- *Snapshot

func (c ChannelObserver) Observe(s Snapshot) error {
	select {
	case c <- &s:
	default:
		// receiver busy, skip frame
	}
	return nil
}

func (w *World) buildSnapshot(res TickResult) Snapshot {
	snap := Snapshot{
		Tick:             res.Tick,
		GridSize:         w.cfg.GridSize,
		CrisisZones:      append([]Zone(nil), w.crisis...),
		SafeZones:        append([]Zone(nil), w.safe...),
		Agents:           make([]AgentState, len(w.agents)),
		MaxDisplacement:  res.MaxDisplacement,
		MeanDisplacement: res.MeanDisplacement,
		Converged:        res.AllBelowThreshold,
	}
	for i, a := range w.agents {
		snap.Agents[i] = AgentState{ID: a.ID, Position: a.Position, Class: a.Class}
	}
	return snap
}
