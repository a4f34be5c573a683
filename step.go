// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"code.hybscloud.com/kont"
)

// Step evaluates a protocol until its first connection effect.
// Returns (result, nil) on completion, or (zero, suspension) if pending.
// A host scheduler parks the suspension and resumes it with Advance.
func Step[R any](protocol kont.Expr[R]) (R, *kont.Suspension[R]) {
	return kont.StepExpr(protocol)
}

// Advance dispatches the suspended operation on c.
//
// On success (nil error), the suspension is consumed and the protocol
// runs to its next effect or to completion.
// On iox.ErrWouldBlock the reply is not there yet: the suspension is left
// untouched and may be advanced again after more bytes arrive.
func Advance[R any](c *Conn, susp *kont.Suspension[R]) (R, *kont.Suspension[R], error) {
	cop, ok := susp.Op().(connDispatcher)
	if !ok {
		panic("resp: unhandled effect in Advance")
	}
	v, err := cop.DispatchConn(c)
	if err != nil {
		var zero R
		return zero, susp, err
	}
	result, next := susp.Resume(v)
	return result, next, nil
}
