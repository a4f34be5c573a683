// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"context"
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// State is the lifecycle state of a Conn.
type State uint32

const (
	StateDisconnected State = iota
	StateConnecting
	StateAuthenticating
	StateReady
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// Conn is one client connection. It pairs a Transport with a Pipeline and
// keeps the handshake state (credential, database index) that is replayed
// whenever the transport is replaced.
//
// Conn is safe for concurrent use. One mutex covers the pipeline and every
// transport write, so the order commands are enqueued is the order they
// reach the wire.
type Conn struct {
	mu     sync.Mutex
	opts   options
	log    zerolog.Logger
	serial Serial
	state  atomix.Uint32

	tr       Transport
	p        *Pipeline
	password string
	db       int

	dialed     bool
	closed     bool
	reconnects uint64
	protoErrs  uint64
}

// Stats is a point-in-time snapshot of a Conn's counters.
type Stats struct {
	Serial         Serial
	State          State
	Sent           uint64
	Received       uint64
	Failed         uint64
	Reconnects     uint64
	ProtocolErrors uint64
	Pending        int
	Slots          int
	IdleSlots      int
}

// New returns a disconnected Conn. Nothing is dialed until Connect or the
// first command.
func New(opts ...Option) (*Conn, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}
	if o.dialer == nil {
		o.dialer = NetDialer(o.connectTimeout, o.tls, o.readBuffer)
	}
	c := &Conn{
		opts:     o,
		serial:   nextSerial(),
		password: o.password,
		db:       o.db,
	}
	c.log = o.logger.With().Uint32("serial", c.serial).Str("addr", o.addr).Logger()
	c.p = NewPipeline(o.readBuffer, c.ready)
	return c, nil
}

// Dial is New followed by Connect. A rejected AUTH is returned together
// with the open Conn.
func Dial(ctx context.Context, opts ...Option) (*Conn, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := c.Connect(ctx); err != nil {
		if errors.Is(err, ErrAuth) {
			return c, err
		}
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// Connect dials the server and performs the handshake. It is a no-op on a
// connected Conn.
//
// The handshake replies are awaited with the connection lock held and
// without yielding to the Scheduler, so other callers of c block until
// the handshake ends or ctx is done. The same holds for the redial that
// Send performs on a broken transport.
func (c *Conn) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.tr != nil {
		return nil
	}
	return c.connectLocked(ctx)
}

// Serial returns the process-unique identifier of c.
func (c *Conn) Serial() Serial { return c.serial }

// State returns the lifecycle state. It does not take the lock.
func (c *Conn) State() State { return State(c.state.Load()) }

func (c *Conn) setState(s State) { c.state.Store(uint32(s)) }

// Send encodes cmd, writes it, and returns the Handle of its Result.
// Broken transports are replaced first when reconnection is enabled.
func (c *Conn) Send(ctx context.Context, cmd Command) (Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureLocked(ctx); err != nil {
		return Handle{}, err
	}
	h := c.p.Submit(cmd)
	if err := c.p.Flush(c.tr); err != nil {
		c.breakLocked(err)
		_ = c.p.Release(h)
		return Handle{}, connError(err)
	}
	return h, nil
}

// SendBatch pipelines cmds in a single write. Handles come back in the
// same order.
func (c *Conn) SendBatch(ctx context.Context, cmds ...Command) ([]Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureLocked(ctx); err != nil {
		return nil, err
	}
	hs := make([]Handle, len(cmds))
	for i, cmd := range cmds {
		hs[i] = c.p.Submit(cmd)
	}
	if err := c.p.Flush(c.tr); err != nil {
		c.breakLocked(err)
		for _, h := range hs {
			_ = c.p.Release(h)
		}
		return nil, connError(err)
	}
	return hs, nil
}

// Wait blocks until the Result of h is complete and returns it. The caller
// owns the Result until Release.
//
// While the reply is pending, Wait yields to the installed Scheduler or
// polls with adaptive backoff. If ctx ends first, h is abandoned and its
// reply will be discarded on arrival.
func (c *Conn) Wait(ctx context.Context, h Handle) (*Result, error) {
	var bo iox.Backoff
	for {
		r, err := c.check(h)
		if err != nil {
			return nil, err
		}
		if r != nil {
			return r, nil
		}
		if err := ctx.Err(); err != nil {
			_ = c.Abandon(h)
			return nil, errors.WithStack(err)
		}
		if s := c.opts.scheduler; s != nil {
			s.Yield(h)
		} else {
			bo.Wait()
		}
	}
}

// check polls once and returns the Result of h if it is complete.
func (c *Conn) check(h Handle) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, err := c.p.Result(h)
	if err != nil {
		return nil, err
	}
	switch r.state {
	case slotComplete:
		return r, nil
	case slotAcquired:
		return nil, errors.Wrap(ErrPending, "handle was never sent")
	}
	if c.tr != nil {
		_, _ = c.pollLocked()
	}
	if r.Done() {
		return r, nil
	}
	return nil, nil
}

// Do sends cmd and waits for its Result. The caller must Release it.
func (c *Conn) Do(ctx context.Context, cmd Command) (*Result, error) {
	h, err := c.Send(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return c.Wait(ctx, h)
}

// call runs cmd to completion, hands the Result to decode, and releases it.
func (c *Conn) call(ctx context.Context, cmd Command, decode func(*Result) error) error {
	r, err := c.Do(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { _ = c.Release(r.Handle()) }()
	return decode(r)
}

// Poll drains whatever the transport has received without blocking and
// returns the number of Results completed. Host event loops call it when
// the socket is readable.
func (c *Conn) Poll() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrClosed
	}
	if c.tr == nil {
		return 0, ErrNotConnected
	}
	return c.pollLocked()
}

// pollLocked feeds every chunk the transport has ready into the pipeline.
// Any failure breaks the transport.
func (c *Conn) pollLocked() (int, error) {
	total := 0
	for {
		b, err := c.tr.Recv()
		if err != nil {
			if iox.IsWouldBlock(err) {
				return total, nil
			}
			c.breakLocked(err)
			return total, connError(err)
		}
		n, err := c.p.Feed(b)
		total += n
		if err != nil {
			c.protoErrs++
			c.breakLocked(err)
			return total, err
		}
	}
}

// Release returns the Result of h to the pool.
func (c *Conn) Release(h Handle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.p.Release(h)
}

// Abandon stops waiting on h. The command itself cannot be recalled.
func (c *Conn) Abandon(h Handle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.p.Abandon(h)
}

// Result resolves h without polling.
func (c *Conn) Result(h Handle) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.p.Result(h)
}

// Close shuts the transport. Pending Results complete with a connection
// error wrapping ErrClosed, and every later command fails with ErrClosed.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	var err error
	if c.tr != nil {
		err = c.tr.Close()
		c.tr = nil
	}
	n := c.p.Fail(connError(ErrClosed))
	c.setState(StateDisconnected)
	c.log.Info().Int("failed", n).Msg("connection closed")
	return err
}

// Stats returns a snapshot of c's counters.
func (c *Conn) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	size, idle := c.p.Slots()
	return Stats{
		Serial:         c.serial,
		State:          c.State(),
		Sent:           c.p.Sent(),
		Received:       c.p.Received(),
		Failed:         c.p.Failed(),
		Reconnects:     c.reconnects,
		ProtocolErrors: c.protoErrs,
		Pending:        c.p.Pending(),
		Slots:          size,
		IdleSlots:      idle,
	}
}

func (c *Conn) ready(h Handle) {
	if s := c.opts.scheduler; s != nil {
		s.Ready(h)
	}
}

// reject returns a Handle that is already complete with err, so effect
// protocols observe send failures through Await like any other reply.
func (c *Conn) reject(err error) Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.p.pool.acquire()
	r.completeErr(err)
	return r.Handle()
}
