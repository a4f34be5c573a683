// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"context"

	"code.hybscloud.com/kont"
	"github.com/cockroachdb/errors"
)

// errorDispatcher is the structural interface of kont error operations.
type errorDispatcher[E any] interface {
	DispatchError(ctx *kont.ErrorContext[E]) (kont.Resumed, bool)
}

// connErrorHandler handles both connection and error effects.
// Connection ops wait like connHandler. Error ops short-circuit on Throw.
// Value type: passed to evalFrames on the stack, avoiding heap allocation.
type connErrorHandler[E, A any] struct {
	c      *Conn
	errCtx *kont.ErrorContext[E]
}

// Dispatch implements kont.Handler for the composed Conn+Error handler.
// Dispatch order: Conn → Error.
func (h connErrorHandler[E, A]) Dispatch(op kont.Operation) (kont.Resumed, bool) {
	if cop, ok := op.(connDispatcher); ok {
		v, _ := dispatchWait(context.Background(), h.c, cop)
		return v, true
	}
	if eop, ok := op.(errorDispatcher[E]); ok {
		v, _ := eop.DispatchError(h.errCtx)
		if h.errCtx.HasErr {
			return kont.Left[E, A](h.errCtx.Err), false
		}
		return v, true
	}
	panic("resp: unhandled effect in connErrorHandler")
}

// ExecError runs a protocol with error handling on c.
// Returns Either[E, R]: Right on success, Left on Throw.
// Waiting behaves as in Exec.
func ExecError[E, R any](c *Conn, protocol kont.Eff[R]) kont.Either[E, R] {
	wrapped := kont.Map[kont.Resumed, R, kont.Either[E, R]](protocol, func(r R) kont.Either[E, R] {
		return kont.Right[E, R](r)
	})
	var errCtx kont.ErrorContext[E]
	h := connErrorHandler[E, R]{c: c, errCtx: &errCtx}
	return kont.Handle(wrapped, h)
}

// ExecErrorExpr runs an Expr protocol with error handling on c.
// Returns Either[E, R]: Right on success, Left on Throw.
func ExecErrorExpr[E, R any](c *Conn, protocol kont.Expr[R]) kont.Either[E, R] {
	wrapped := kont.ExprMap(protocol, func(r R) kont.Either[E, R] {
		return kont.Right[E, R](r)
	})
	var errCtx kont.ErrorContext[E]
	h := connErrorHandler[E, R]{c: c, errCtx: &errCtx}
	return kont.HandleExpr(wrapped, h)
}

// ctxHandler is connErrorHandler specialized to error values, with a
// context that ends the wait. A cancelled wait abandons the awaited
// Handle and finishes the protocol with Left(ctx.Err()).
type ctxHandler[A any] struct {
	ctx    context.Context
	c      *Conn
	errCtx *kont.ErrorContext[error]
}

func (h ctxHandler[A]) Dispatch(op kont.Operation) (kont.Resumed, bool) {
	if cop, ok := op.(connDispatcher); ok {
		v, err := dispatchWait(h.ctx, h.c, cop)
		if err != nil {
			return kont.Left[error, A](errors.WithStack(err)), false
		}
		return v, true
	}
	if eop, ok := op.(errorDispatcher[error]); ok {
		v, _ := eop.DispatchError(h.errCtx)
		if h.errCtx.HasErr {
			return kont.Left[error, A](h.errCtx.Err), false
		}
		return v, true
	}
	panic("resp: unhandled effect in ctxHandler")
}

// ExecContext runs a protocol on c until it completes, throws an error, or
// ctx ends. Thrown errors and ctx.Err() are returned as the error.
func ExecContext[R any](ctx context.Context, c *Conn, protocol kont.Eff[R]) (R, error) {
	wrapped := kont.Map[kont.Resumed, R, kont.Either[error, R]](protocol, func(r R) kont.Either[error, R] {
		return kont.Right[error, R](r)
	})
	var errCtx kont.ErrorContext[error]
	h := ctxHandler[R]{ctx: ctx, c: c, errCtx: &errCtx}
	return fromEither(kont.Handle(wrapped, h))
}

// ExecContextExpr is ExecContext for Expr-world protocols.
func ExecContextExpr[R any](ctx context.Context, c *Conn, protocol kont.Expr[R]) (R, error) {
	wrapped := kont.ExprMap(protocol, func(r R) kont.Either[error, R] {
		return kont.Right[error, R](r)
	})
	var errCtx kont.ErrorContext[error]
	h := ctxHandler[R]{ctx: ctx, c: c, errCtx: &errCtx}
	return fromEither(kont.HandleExpr(wrapped, h))
}

func fromEither[R any](e kont.Either[error, R]) (R, error) {
	if err, ok := e.GetLeft(); ok {
		var zero R
		return zero, err
	}
	r, _ := e.GetRight()
	return r, nil
}

// StepError evaluates a protocol with error support until the first
// effect suspension. Returns (Either[E, R], nil) on completion or error,
// or (zero, suspension) if pending.
func StepError[E, R any](protocol kont.Expr[R]) (kont.Either[E, R], *kont.Suspension[kont.Either[E, R]]) {
	wrapped := kont.ExprMap(protocol, func(r R) kont.Either[E, R] {
		return kont.Right[E, R](r)
	})
	return kont.StepExpr(wrapped)
}

// AdvanceError dispatches the suspended operation on c.
// Connection ops are non-blocking (ErrWouldBlock). Error ops are eager:
// Throw discards the suspension and returns Left.
func AdvanceError[E, R any](c *Conn, susp *kont.Suspension[kont.Either[E, R]]) (kont.Either[E, R], *kont.Suspension[kont.Either[E, R]], error) {
	if cop, ok := susp.Op().(connDispatcher); ok {
		v, err := cop.DispatchConn(c)
		if err != nil {
			var zero kont.Either[E, R]
			return zero, susp, err
		}
		result, next := susp.Resume(v)
		return result, next, nil
	}
	if eop, ok := susp.Op().(errorDispatcher[E]); ok {
		var ctx kont.ErrorContext[E]
		v, _ := eop.DispatchError(&ctx)
		if ctx.HasErr {
			susp.Discard()
			return kont.Left[E, R](ctx.Err), nil, nil
		}
		result, next := susp.Resume(v)
		return result, next, nil
	}
	panic("resp: unhandled effect in AdvanceError")
}
