// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"context"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// connDispatcher is the structural interface for connection operations.
// DispatchConn is non-blocking: it returns iox.ErrWouldBlock while the
// reply it needs has not arrived.
type connDispatcher interface {
	DispatchConn(c *Conn) (kont.Resumed, error)
}

// awaiter is implemented by operations that wait on one Handle, so a
// blocking handler can yield that Handle to the Scheduler or abandon it.
type awaiter interface {
	awaited() Handle
}

// contextDispatcher is implemented by operations whose dispatch may block
// on the transport and should honour the caller's context.
type contextDispatcher interface {
	dispatchContext(ctx context.Context, c *Conn) (kont.Resumed, error)
}

// connHandler implements kont.Handler for connection effects.
// Waits on iox.ErrWouldBlock, converting non-blocking dispatch
// into blocking evaluation for Exec/ExecExpr.
// Value type: passed to evalFrames on the stack, avoiding heap allocation.
type connHandler[R any] struct {
	c *Conn
}

// Dispatch implements kont.Handler via structural interface assertion.
func (h connHandler[R]) Dispatch(op kont.Operation) (kont.Resumed, bool) {
	cop, ok := op.(connDispatcher)
	if !ok {
		panic("resp: unhandled effect in connHandler")
	}
	v, _ := dispatchWait(context.Background(), h.c, cop)
	return v, true
}

// dispatchWait blocks until DispatchConn succeeds. While an Await is
// pending it yields the awaited Handle to the Scheduler, or backs off when
// none is installed. It gives up, abandoning the Handle, once ctx ends.
func dispatchWait(ctx context.Context, c *Conn, cop connDispatcher) (kont.Resumed, error) {
	var bo iox.Backoff
	for {
		var v kont.Resumed
		var err error
		if cd, ok := cop.(contextDispatcher); ok {
			v, err = cd.dispatchContext(ctx, c)
		} else {
			v, err = cop.DispatchConn(c)
		}
		if err == nil {
			return v, nil
		}
		if cerr := ctx.Err(); cerr != nil {
			if a, ok := cop.(awaiter); ok {
				_ = c.Abandon(a.awaited())
			}
			return nil, cerr
		}
		if a, ok := cop.(awaiter); ok && c.opts.scheduler != nil {
			c.opts.scheduler.Yield(a.awaited())
			continue
		}
		bo.Wait()
	}
}
