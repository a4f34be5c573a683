// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"code.hybscloud.com/kont"
)

// identityResume is the identity resume function for EffectFrame construction.
// Named function produces a static function value, consistent with kont convention.
func identityResume(v kont.Erased) kont.Erased { return v }

func submitBindUnwind[B any](data, _, _ kont.Erased, current kont.Erased) (kont.Erased, kont.Frame) {
	f := data.(func(Handle) kont.Expr[B])
	result := f(current.(Handle))
	return kont.Erased(result.Value), result.Frame
}

// ExprSubmitBind sends cmd and passes its Handle to f.
// Fuses ExprPerform(Submit{Command: cmd}) + ExprBind.
func ExprSubmitBind[B any](cmd Command, f func(Handle) kont.Expr[B]) kont.Expr[B] {
	bf := kont.AcquireUnwindFrame()
	bf.Data1 = f
	bf.Unwind = submitBindUnwind[B]
	ef := kont.AcquireEffectFrame()
	ef.Operation = Submit{Command: cmd}
	ef.Resume = identityResume
	ef.Next = bf
	return kont.ExprSuspend[B](ef)
}

func awaitBindUnwind[T, B any](data, _, _ kont.Erased, current kont.Erased) (kont.Erased, kont.Frame) {
	f := data.(func(kont.Either[error, T]) kont.Expr[B])
	result := f(current.(kont.Either[error, T]))
	return kont.Erased(result.Value), result.Frame
}

// ExprAwaitBind waits for the reply of h, decodes it, and passes the
// outcome to f.
// Fuses ExprPerform(Await[T]{...}) + ExprBind.
func ExprAwaitBind[T, B any](h Handle, decode func(*Result) (T, error), f func(kont.Either[error, T]) kont.Expr[B]) kont.Expr[B] {
	bf := kont.AcquireUnwindFrame()
	bf.Data1 = f
	bf.Unwind = awaitBindUnwind[T, B]
	ef := kont.AcquireEffectFrame()
	ef.Operation = Await[T]{Handle: h, Decode: decode}
	ef.Resume = identityResume
	ef.Next = bf
	return kont.ExprSuspend[B](ef)
}

// ExprAwait waits for the reply of h and returns the decoded outcome.
func ExprAwait[T any](h Handle, decode func(*Result) (T, error)) kont.Expr[kont.Either[error, T]] {
	return kont.ExprPerform(Await[T]{Handle: h, Decode: decode})
}

// ExprCall sends cmd and waits for its decoded reply.
// Fuses ExprSubmitBind + ExprAwait.
func ExprCall[T any](cmd Command, decode func(*Result) (T, error)) kont.Expr[kont.Either[error, T]] {
	return ExprSubmitBind(cmd, func(h Handle) kont.Expr[kont.Either[error, T]] {
		return ExprAwait(h, decode)
	})
}

// ExprCallBind sends cmd and passes its decoded reply to f.
func ExprCallBind[T, B any](cmd Command, decode func(*Result) (T, error), f func(kont.Either[error, T]) kont.Expr[B]) kont.Expr[B] {
	return ExprSubmitBind(cmd, func(h Handle) kont.Expr[B] {
		return ExprAwaitBind(h, decode, f)
	})
}
