// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"code.hybscloud.com/kont"
)

// SubmitBind sends cmd and passes its Handle to f.
// Fuses Perform(Submit{Command: cmd}) + Bind.
func SubmitBind[B any](cmd Command, f func(Handle) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Submit{Command: cmd}), f)
}

// SubmitThen sends cmd, waits for its reply, and continues with next
// whatever the reply was.
func SubmitThen[B any](cmd Command, next kont.Eff[B]) kont.Eff[B] {
	return SubmitBind(cmd, func(h Handle) kont.Eff[B] {
		return kont.Bind(kont.Perform(Await[struct{}]{Handle: h, Decode: discardReply}), func(kont.Either[error, struct{}]) kont.Eff[B] {
			return next
		})
	})
}

// AwaitBind waits for the reply of h, decodes it, and passes the outcome to f.
// Fuses Perform(Await[T]{...}) + Bind.
func AwaitBind[T, B any](h Handle, decode func(*Result) (T, error), f func(kont.Either[error, T]) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Await[T]{Handle: h, Decode: decode}), f)
}

// Call sends cmd and waits for its decoded reply.
// Fuses Submit + Bind + Await.
func Call[T any](cmd Command, decode func(*Result) (T, error)) kont.Eff[kont.Either[error, T]] {
	return kont.Bind(kont.Perform(Submit{Command: cmd}), func(h Handle) kont.Eff[kont.Either[error, T]] {
		return kont.Perform(Await[T]{Handle: h, Decode: decode})
	})
}

// CallBind sends cmd and passes its decoded reply to f.
func CallBind[T, B any](cmd Command, decode func(*Result) (T, error), f func(kont.Either[error, T]) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(Call(cmd, decode), f)
}

// Must unwraps the outcome of an Await, throwing the error as a kont
// error effect. Run it with ExecError, ExecContext or StepError.
func Must[T any](e kont.Either[error, T]) kont.Eff[T] {
	if err, ok := e.GetLeft(); ok {
		return kont.ThrowError[error, T](err)
	}
	v, _ := e.GetRight()
	return kont.Pure(v)
}

func discardReply(*Result) (struct{}, error) { return struct{}{}, nil }
