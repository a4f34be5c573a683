// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

// pendingInitial is the starting capacity of the pending ring. Must be a
// power of two.
const pendingInitial = 16

// pending is the FIFO of in-flight Results. Its order is the wire order of
// unanswered commands: replies carry no request ID, so the head is always
// the command the next reply answers.
//
// The ring grows by doubling and never blocks. Backpressure is left to the
// caller, like the protocol itself.
type pending struct {
	ring []*Result
	head int
	n    int
}

func (q *pending) push(r *Result) {
	if q.n == len(q.ring) {
		q.grow()
	}
	q.ring[(q.head+q.n)&(len(q.ring)-1)] = r
	q.n++
}

// pop removes the head. ok is false when nothing is in flight.
func (q *pending) pop() (r *Result, ok bool) {
	if q.n == 0 {
		return nil, false
	}
	r = q.ring[q.head]
	q.ring[q.head] = nil
	q.head = (q.head + 1) & (len(q.ring) - 1)
	q.n--
	return r, true
}

func (q *pending) len() int { return q.n }

func (q *pending) grow() {
	size := len(q.ring) * 2
	if size == 0 {
		size = pendingInitial
	}
	ring := make([]*Result, size)
	for i := 0; i < q.n; i++ {
		ring[i] = q.ring[(q.head+i)&(len(q.ring)-1)]
	}
	q.ring = ring
	q.head = 0
}
