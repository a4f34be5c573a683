// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"code.hybscloud.com/kont"
)

// Exec runs a Cont-world protocol on c, blocking the caller until it
// completes. Pending replies yield to the Conn's Scheduler, or are
// busy-polled with adaptive backoff (iox.Backoff) when there is none.
func Exec[R any](c *Conn, protocol kont.Eff[R]) R {
	h := connHandler[R]{c: c}
	return kont.Handle(protocol, h)
}

// ExecExpr runs an Expr-world protocol on c, blocking the caller until it
// completes. Waiting behaves as in Exec.
func ExecExpr[R any](c *Conn, protocol kont.Expr[R]) R {
	h := connHandler[R]{c: c}
	return kont.HandleExpr(protocol, h)
}
