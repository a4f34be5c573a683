// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// Run runs two Cont-world protocols on c and returns both results.
// Interleaves them on the calling goroutine: each advances as soon as its
// own reply is in, regardless of the other. Backs off with iox.Backoff
// when neither can make progress. Does not spawn goroutines.
func Run[A, B any](c *Conn, a kont.Eff[A], b kont.Eff[B]) (A, B) {
	return RunExpr(c, Reify(a), Reify(b))
}

// RunExpr is Run for Expr-world protocols.
func RunExpr[A, B any](c *Conn, a kont.Expr[A], b kont.Expr[B]) (A, B) {
	resultA, suspA := Step[A](a)
	resultB, suspB := Step[B](b)
	var bo iox.Backoff
	for suspA != nil || suspB != nil {
		progress := false
		if suspA != nil {
			var err error
			if resultA, suspA, err = Advance(c, suspA); err == nil {
				progress = true
			}
		}
		if suspB != nil {
			var err error
			if resultB, suspB, err = Advance(c, suspB); err == nil {
				progress = true
			}
		}
		if !progress {
			bo.Wait()
		} else {
			bo.Reset()
		}
	}
	return resultA, resultB
}

// RunAll multiplexes any number of Expr-world protocols on c from the
// calling goroutine and returns their results in argument order.
//
// Each protocol is one logical caller. Their commands share the pipeline,
// so replies come back in the order the Submits were dispatched, and every
// caller resumes as soon as its own Result completes.
func RunAll[R any](c *Conn, protocols ...kont.Expr[R]) []R {
	results := make([]R, len(protocols))
	susps := make([]*kont.Suspension[R], len(protocols))
	live := 0
	for i, p := range protocols {
		results[i], susps[i] = Step[R](p)
		if susps[i] != nil {
			live++
		}
	}
	var bo iox.Backoff
	for live > 0 {
		progress := false
		for i, susp := range susps {
			if susp == nil {
				continue
			}
			result, next, err := Advance(c, susp)
			if err != nil {
				continue
			}
			progress = true
			results[i], susps[i] = result, next
			if next == nil {
				live--
			}
		}
		if !progress {
			bo.Wait()
		} else {
			bo.Reset()
		}
	}
	return results
}
