package render

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/simulation"
)

// TrajectoryRecord is one line of a trajectory log.
type TrajectoryRecord struct {
	Tick             int          `json:"tick"`
	MaxDisplacement  float64      `json:"maxDisplacement"`
	MeanDisplacement float64      `json:"meanDisplacement"`
	Converged        bool         `json:"converged"`
	Positions        [][3]float64 `json:"positions"` // x, y, speed class
}

// TrajectoryWriter is an observer appending one zstd-compressed JSONL record
// per snapshot.
type TrajectoryWriter struct {
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

func NewTrajectoryWriter(path string) (*TrajectoryWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create trajectory log: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &TrajectoryWriter{f: f, enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}, nil
}

func (t *TrajectoryWriter) Observe(s simulation.Snapshot) error {
	rec := TrajectoryRecord{
		Tick:             s.Tick,
		MaxDisplacement:  s.MaxDisplacement,
		MeanDisplacement: s.MeanDisplacement,
		Converged:        s.Converged,
		Positions:        make([][3]float64, len(s.Agents)),
	}
	for i, a := range s.Agents {
		rec.Positions[i] = [3]float64{a.Position.X, a.Position.Y, float64(a.Class)}
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := t.w.Write(b); err != nil {
		return err
	}
	return t.w.WriteByte('\n')
}

func (t *TrajectoryWriter) Close() error {
	var err1 error
	if t.w != nil {
		err1 = t.w.Flush()
	}
	if err := t.enc.Close(); err != nil && err1 == nil {
		err1 = err
	}
	if err := t.f.Close(); err != nil && err1 == nil {
		err1 = err
	}
	return err1
}

// ReadTrajectory decodes a whole trajectory log.
func ReadTrajectory(path string) ([]TrajectoryRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []TrajectoryRecord
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	for sc.Scan() {
		var rec TrajectoryRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("trajectory line %d: %w", len(out)+1, err)
		}
		out = append(out, rec)
	}
	return out, sc.Err()
}
