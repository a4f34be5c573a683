// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
	"github.com/cockroachdb/errors"
)

// Transport is the byte stream a Conn runs on.
//
// Write sends encoded commands. Recv is non-blocking: it returns the next
// received chunk, iox.ErrWouldBlock when nothing has arrived, or the error
// that ended the stream (io.EOF on orderly shutdown). A chunk stays valid
// until the next Recv. Conn never calls Write or Recv concurrently.
type Transport interface {
	io.Writer
	io.Closer
	Recv() ([]byte, error)
}

// Dialer opens a Transport to addr.
type Dialer func(ctx context.Context, addr string) (Transport, error)

// inboxCapacity bounds the chunks a reader may hold ahead of the engine.
const inboxCapacity = 64

// chunk is one read result handed from the reader goroutine to Recv.
type chunk struct {
	b   []byte
	err error
}

// netTransport adapts a net.Conn to the non-blocking Transport contract.
// One reader goroutine fills the inbox; Recv drains it. Buffers travel back
// to the reader through the spare queue, so steady-state reads reuse them.
type netTransport struct {
	conn   net.Conn
	size   int
	inbox  lfq.SPSC[chunk]
	spare  lfq.SPSC[[]byte]
	closed atomix.Uint32
	last   []byte
	err    error
}

// NetDialer returns a Dialer for TCP, or TLS when cfg is non-nil. readBuffer
// sizes each read.
func NetDialer(timeout time.Duration, cfg *tls.Config, readBuffer int) Dialer {
	return func(ctx context.Context, addr string) (Transport, error) {
		d := &net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}
		var (
			conn net.Conn
			err  error
		)
		if cfg != nil {
			td := &tls.Dialer{NetDialer: d, Config: cfg}
			conn, err = td.DialContext(ctx, "tcp", addr)
		} else {
			conn, err = d.DialContext(ctx, "tcp", addr)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "dial %s", addr)
		}
		return NewNetTransport(conn, readBuffer), nil
	}
}

// NewNetTransport wraps conn and starts its reader goroutine.
func NewNetTransport(conn net.Conn, readBuffer int) Transport {
	if readBuffer <= 0 {
		readBuffer = defaultReadBuffer
	}
	t := &netTransport{conn: conn, size: readBuffer}
	t.inbox.Init(inboxCapacity)
	t.spare.Init(inboxCapacity)
	go t.readLoop()
	return t
}

func (t *netTransport) readLoop() {
	var bo iox.Backoff
	for {
		buf, err := t.spare.Dequeue()
		if err != nil {
			buf = make([]byte, t.size)
		}
		n, rerr := t.conn.Read(buf[:cap(buf)])
		if n > 0 {
			c := chunk{b: buf[:n]}
			if !t.push(&c, &bo) {
				return
			}
		}
		if rerr != nil {
			if t.closed.Load() != 0 {
				rerr = net.ErrClosed
			}
			c := chunk{err: rerr}
			t.push(&c, &bo)
			return
		}
	}
}

// push hands c to the engine, backing off while the inbox is full.
// It gives up once the transport is closed.
func (t *netTransport) push(c *chunk, bo *iox.Backoff) bool {
	bo.Reset()
	for {
		if err := t.inbox.Enqueue(c); err == nil {
			return true
		}
		if t.closed.Load() != 0 {
			return false
		}
		bo.Wait()
	}
}

func (t *netTransport) Recv() ([]byte, error) {
	if t.err != nil {
		return nil, t.err
	}
	if t.last != nil {
		// A full spare queue just drops the buffer.
		_ = t.spare.Enqueue(&t.last)
		t.last = nil
	}
	c, err := t.inbox.Dequeue()
	if err != nil {
		return nil, iox.ErrWouldBlock
	}
	if c.err != nil {
		t.err = c.err
		return nil, c.err
	}
	t.last = c.b
	return c.b, nil
}

func (t *netTransport) Write(p []byte) (int, error) {
	n, err := t.conn.Write(p)
	if err != nil {
		return n, errors.WithStack(err)
	}
	return n, nil
}

func (t *netTransport) Close() error {
	if t.closed.Add(1) != 1 {
		return nil
	}
	return errors.WithStack(t.conn.Close())
}
