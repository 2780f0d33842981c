package sweep

import (
	"context"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// runner is the actor behind one sweep worker. A seed arrives as a
// wrapped uint64; the outcome leaves through the shared results channel.
type runner struct {
	ctx     context.Context
	sweep   *Sweep
	results chan<- Result
	done    int
}

var _ actor.Actor = (*runner)(nil)

func newRunner(ctx context.Context, s *Sweep, results chan<- Result) *runner {
	return &runner{ctx: ctx, sweep: s, results: results}
}

func seedMessage(seed uint64) *wrapperspb.UInt64Value {
	return wrapperspb.UInt64(seed)
}

func (r *runner) PreStart(*actor.Context) error { return nil }

func (r *runner) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		r.sweep.log.Debugf("%s ready", ctx.Self().Name())
	case *wrapperspb.UInt64Value:
		res := r.sweep.runOne(r.ctx, msg.GetValue())
		r.done++
		r.sweep.log.Debugf("%s finished seed %d (%s after %d ticks)", ctx.Self().Name(), res.Seed, res.Reason, res.Ticks)
		r.results <- res
	default:
		ctx.Unhandled()
	}
}

func (r *runner) PostStop(*actor.Context) error {
	r.sweep.log.Debugf("runner stopped after %d runs", r.done)
	return nil
}
