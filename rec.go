// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"code.hybscloud.com/kont"
)

// Loop repeats step until it yields Right (Cont-world). It drives cursor
// walks such as SCAN, where each round trip decides the next command.
// step returns Left(nextState) to continue or Right(result) to finish.
func Loop[S, A any](initial S, step func(S) kont.Eff[kont.Either[S, A]]) kont.Eff[A] {
	var round func(S) kont.Eff[A]
	round = func(s S) kont.Eff[A] {
		return kont.Bind(step(s), func(e kont.Either[S, A]) kont.Eff[A] {
			if next, more := e.GetLeft(); more {
				return round(next)
			}
			a, _ := e.GetRight()
			return kont.Pure(a)
		})
	}
	return round(initial)
}

// ExprLoop is Loop for Expr-world protocols. Rounds that finish without
// suspending run in place; the first suspending round chains a frame that
// re-enters the loop with its outcome.
func ExprLoop[S, A any](initial S, step func(S) kont.Expr[kont.Either[S, A]]) kont.Expr[A] {
	state := initial
	for {
		m := step(state)
		if _, pure := m.Frame.(kont.ReturnFrame); !pure {
			return kont.Expr[A]{Frame: kont.ChainFrames(m.Frame, loopFrame(step))}
		}
		next, more := m.Value.GetLeft()
		if !more {
			a, _ := m.Value.GetRight()
			return kont.ExprReturn(a)
		}
		state = next
	}
}

func loopFrame[S, A any](step func(S) kont.Expr[kont.Either[S, A]]) kont.Frame {
	bf := kont.AcquireBindFrame()
	bf.F = func(v kont.Erased) kont.Expr[kont.Erased] {
		e := v.(kont.Either[S, A])
		if next, more := e.GetLeft(); more {
			r := ExprLoop(next, step)
			return kont.Expr[kont.Erased]{Value: kont.Erased(r.Value), Frame: r.Frame}
		}
		a, _ := e.GetRight()
		return kont.Expr[kont.Erased]{Value: kont.Erased(a), Frame: kont.ReturnFrame{}}
	}
	bf.Next = kont.ReturnFrame{}
	return bf
}
