// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"io"

	"code.hybscloud.com/iox"
	"github.com/cockroachdb/errors"
)

// Pipeline correlates encoded commands with decoded replies for one byte
// stream. It owns the Result arena, the pending FIFO, the outbound buffer
// and the reply Decoder, and performs no I/O of its own: Flush hands the
// outbound bytes to a writer and Feed accepts whatever the transport read.
//
// A Pipeline is not safe for concurrent use. Conn serializes access to it.
type Pipeline struct {
	pool  *pool
	queue pending
	dec   *Decoder
	out   []byte
	ready func(Handle)

	sent     uint64
	received uint64
	failed   uint64
}

// NewPipeline returns an empty Pipeline. readBuffer sizes the decoder
// buffer; ready, if non-nil, is called for every Result that completes
// while someone still waits on it.
func NewPipeline(readBuffer int, ready func(Handle)) *Pipeline {
	return &Pipeline{
		pool:  newPool(),
		dec:   NewDecoder(readBuffer),
		ready: ready,
	}
}

// Acquire checks out a Result slot. It never blocks.
func (p *Pipeline) Acquire() Handle {
	return p.pool.acquire().Handle()
}

// Enqueue encodes cmd into the outbound buffer and appends h to the
// pending FIFO. Calls must happen in the order the bytes reach the wire.
func (p *Pipeline) Enqueue(h Handle, cmd Command) error {
	r, err := p.pool.lookup(h)
	if err != nil {
		return err
	}
	if r.state != slotAcquired {
		return errors.Wrapf(ErrStaleHandle, "enqueue of %s slot", r.state)
	}
	p.out = cmd.AppendTo(p.out)
	r.state = slotPending
	p.queue.push(r)
	p.sent++
	return nil
}

// Submit acquires a slot and enqueues cmd on it.
func (p *Pipeline) Submit(cmd Command) Handle {
	r := p.pool.acquire()
	p.out = cmd.AppendTo(p.out)
	r.state = slotPending
	p.queue.push(r)
	p.sent++
	return r.Handle()
}

// Outbound returns the encoded bytes not yet flushed.
func (p *Pipeline) Outbound() []byte { return p.out }

// Flush writes the outbound buffer to w in one call.
// The buffer is kept on error so the caller can decide whether to fail.
func (p *Pipeline) Flush(w io.Writer) error {
	if len(p.out) == 0 {
		return nil
	}
	if _, err := w.Write(p.out); err != nil {
		return errors.WithStack(err)
	}
	p.out = p.out[:0]
	return nil
}

// Feed decodes replies from b and completes the matching queue heads in
// FIFO order. It returns the number of Results completed. A protocol
// error, including a reply that arrives with nothing pending, is returned
// as is and leaves the stream unusable until Fail.
func (p *Pipeline) Feed(b []byte) (int, error) {
	if len(b) > 0 {
		p.dec.Feed(b)
	}
	n := 0
	for {
		v, err := p.dec.Next()
		if err != nil {
			if iox.IsWouldBlock(err) {
				return n, nil
			}
			return n, err
		}
		r, ok := p.queue.pop()
		if !ok {
			err = protocolErrorf("unsolicited %s reply", v.kind)
			p.dec.err = err
			return n, err
		}
		r.complete(&v)
		p.received++
		n++
		p.settle(r)
	}
}

// Fail completes every pending Result with a KindConnError value carrying
// err, head first, then drops unsent bytes and partial replies. The
// arena survives, so Acquire keeps working afterwards.
func (p *Pipeline) Fail(err error) int {
	n := 0
	for {
		r, ok := p.queue.pop()
		if !ok {
			break
		}
		r.completeErr(err)
		p.failed++
		n++
		p.settle(r)
	}
	p.out = p.out[:0]
	p.dec.Reset()
	return n
}

// settle hands a completed slot to its waiter, or straight back to the
// pool when nobody waits any more.
func (p *Pipeline) settle(r *Result) {
	if r.abandoned {
		_ = p.pool.release(r)
		return
	}
	if p.ready != nil {
		p.ready(r.Handle())
	}
}

// Result resolves h. The returned Result is valid until h is released.
func (p *Pipeline) Result(h Handle) (*Result, error) {
	return p.pool.lookup(h)
}

// Release returns a completed (or never enqueued) slot to the pool.
// Releasing a slot that still waits for its reply returns
// ErrReleasePending.
func (p *Pipeline) Release(h Handle) error {
	r, err := p.pool.lookup(h)
	if err != nil {
		return err
	}
	return p.pool.release(r)
}

// Abandon gives up on h. A completed slot is released now; a pending one
// is released when its reply arrives, and that reply is discarded.
func (p *Pipeline) Abandon(h Handle) error {
	r, err := p.pool.lookup(h)
	if err != nil {
		return err
	}
	if r.state == slotPending {
		r.abandoned = true
		return nil
	}
	return p.pool.release(r)
}

// Pending returns the number of commands sent and not yet answered.
// It always equals Sent() - Received() - Failed().
func (p *Pipeline) Pending() int { return p.queue.len() }

// Sent returns the number of commands enqueued since creation.
func (p *Pipeline) Sent() uint64 { return p.sent }

// Received returns the number of replies matched since creation.
func (p *Pipeline) Received() uint64 { return p.received }

// Failed returns the number of commands completed by Fail.
func (p *Pipeline) Failed() uint64 { return p.failed }

// Slots returns the arena size and the number of idle slots.
func (p *Pipeline) Slots() (size, idle int) {
	return p.pool.size(), p.pool.idle()
}
