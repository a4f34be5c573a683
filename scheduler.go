// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

// Scheduler is the cooperative hook pair a host installs on a Conn with
// WithScheduler.
//
// Yield is called by a waiter whose Result h is still pending. It should
// run other work and return when the waiter may look again; returning
// immediately is allowed and degrades to polling.
//
// Ready is called by the Conn when h completes, with the connection lock
// held. It must not call back into the Conn.
//
// Without a Scheduler, waiting busy-polls the transport with adaptive
// backoff.
type Scheduler interface {
	Yield(h Handle)
	Ready(h Handle)
}
