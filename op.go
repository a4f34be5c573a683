// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"context"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// Submit is the effect operation for sending a command.
// Perform(Submit{Command: cmd}) writes cmd and resumes with its Handle.
type Submit struct {
	kont.Phantom[Handle]
	Command Command
}

// DispatchConn handles Submit on the connection. Never blocks on the
// reply. A failed write still resumes with a Handle, already complete with
// the connection error, so the failure surfaces at the matching Await.
func (s Submit) DispatchConn(c *Conn) (kont.Resumed, error) {
	return s.dispatchContext(context.Background(), c)
}

// dispatchContext bounds the redial a broken transport may need by ctx.
func (s Submit) dispatchContext(ctx context.Context, c *Conn) (kont.Resumed, error) {
	h, err := c.Send(ctx, s.Command)
	if err != nil {
		h = c.reject(err)
	}
	return h, nil
}

// Await is the effect operation for waiting on a reply.
// Perform(Await[T]{Handle: h, Decode: f}) resumes with Right(f(result))
// once h completes, or Left(err) when the reply is an error, the
// connection broke, or f fails. The slot is released after f returns, so
// f must copy anything it keeps.
type Await[T any] struct {
	kont.Phantom[kont.Either[error, T]]
	Handle Handle
	Decode func(*Result) (T, error)
}

// DispatchConn handles Await on the connection.
// Non-blocking: polls the transport once and returns iox.ErrWouldBlock
// while the reply is still pending.
func (a Await[T]) DispatchConn(c *Conn) (kont.Resumed, error) {
	r, err := c.check(a.Handle)
	if err != nil {
		return kont.Left[error, T](err), nil
	}
	if r == nil {
		return nil, iox.ErrWouldBlock
	}
	v, err := a.Decode(r)
	_ = c.Release(a.Handle)
	if err != nil {
		return kont.Left[error, T](err), nil
	}
	return kont.Right[error, T](v), nil
}

func (a Await[T]) awaited() Handle { return a.Handle }
