// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

// Handle identifies one in-flight command by slot index and generation.
// The generation changes on every release, so a Handle cannot reach a slot
// after it has been recycled for another command.
type Handle struct {
	index uint32
	gen   uint32
}

// Valid reports whether h was returned by Acquire or Send.
// The zero Handle is never valid.
func (h Handle) Valid() bool { return h.gen != 0 }

// slotState tracks which owner currently holds a Result.
type slotState uint8

const (
	slotIdle     slotState = iota
	slotAcquired           // checked out, not yet on the wire
	slotPending            // queued, waiting for its reply
	slotComplete
)

func (s slotState) String() string {
	switch s {
	case slotIdle:
		return "idle"
	case slotAcquired:
		return "acquired"
	case slotPending:
		return "pending"
	}
	return "complete"
}

// Result is a pooled reply slot. It embeds the decoded Value; the accessors
// (Status, Int, Bytes, Array, ...) fail with ErrPending until the reply
// arrives. A Result belongs to the pool, the pending queue, or the caller
// between completion and Release, never to two of them at once.
type Result struct {
	Value
	index     uint32
	gen       uint32
	state     slotState
	abandoned bool
}

// Handle returns the identity of the command that currently owns r.
func (r *Result) Handle() Handle {
	return Handle{index: r.index, gen: r.gen}
}

// Done reports whether the reply (or a connection error) has been stored.
func (r *Result) Done() bool {
	return r.state == slotComplete
}

// complete stores v, marking the slot complete.
func (r *Result) complete(v *Value) {
	r.Value.assign(v)
	r.state = slotComplete
}

// completeErr marks the slot complete with a connection error.
func (r *Result) completeErr(err error) {
	r.Value.reset()
	r.Value.kind = KindConnError
	r.Value.err = err
	r.state = slotComplete
}
