// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"context"
	"time"

	"code.hybscloud.com/iox"
	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
)

// Auth sends AUTH with password. The credential is replayed on reconnect
// only if the server accepted it. A rejection is marked ErrAuth and leaves
// the connection open.
//
// The reply is awaited like any other command: the lock is not held and
// an installed Scheduler is yielded to.
func (c *Conn) Auth(ctx context.Context, password string) error {
	err := c.exchange(ctx, NewCommand("AUTH", password), func() { c.password = password })
	if err != nil {
		return authError(err)
	}
	return nil
}

// SelectDB switches the connection to database db. The index is replayed
// on reconnect only if the server accepted it. Waiting follows Auth.
func (c *Conn) SelectDB(ctx context.Context, db int) error {
	if db < 0 {
		return errors.Wrapf(ErrInvalidConfig, "db index %d is negative", db)
	}
	if err := c.exchange(ctx, NewCommand("SELECT", db), func() { c.db = db }); err != nil {
		return errors.Wrapf(err, "select %d", db)
	}
	return nil
}

// exchange sends cmd, waits for its reply, and runs commit under the lock
// when the server accepted it.
func (c *Conn) exchange(ctx context.Context, cmd Command, commit func()) error {
	h, err := c.Send(ctx, cmd)
	if err != nil {
		return err
	}
	r, err := c.Wait(ctx, h)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	err = r.Err()
	_ = c.p.Release(h)
	if err == nil {
		commit()
	}
	return err
}

// DB returns the database index replayed on reconnect.
func (c *Conn) DB() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db
}

func authError(err error) error {
	if IsServerError(err) {
		return errors.Mark(errors.Wrap(err, "auth"), ErrAuth)
	}
	return err
}

// ensureLocked makes sure a transport is attached before a command is
// written, redialing a broken one when reconnection is enabled.
func (c *Conn) ensureLocked(ctx context.Context) error {
	if c.closed {
		return ErrClosed
	}
	if c.tr != nil {
		return nil
	}
	if !c.opts.reconnect && c.dialed {
		return ErrNotConnected
	}
	return c.reconnectLocked(ctx)
}

// reconnectLocked redials with exponential backoff. A handshake the server
// rejected stops the retries, since another dial would be refused the same
// way.
func (c *Conn) reconnectLocked(ctx context.Context) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.opts.reconnectInitial
	eb.MaxInterval = c.opts.reconnectMax
	eb.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(c.opts.reconnectAttempts)), ctx)

	again := c.dialed
	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		err := c.connectLocked(ctx)
		if err != nil && IsServerError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, next time.Duration) {
		c.log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", next).Msg("dial failed")
	})
	if err != nil {
		return err
	}
	if again {
		c.reconnects++
		c.log.Info().Int("attempts", attempt).Msg("reconnected")
	}
	return nil
}

// connectLocked dials a fresh transport and replays the handshake. A
// transport still attached from an earlier attempt is torn down first.
func (c *Conn) connectLocked(ctx context.Context) error {
	if c.tr != nil {
		c.breakLocked(errors.New("resp: transport replaced"))
	}
	c.setState(StateConnecting)
	tr, err := c.opts.dialer(ctx, c.opts.addr)
	if err != nil {
		c.setState(StateDisconnected)
		return connError(err)
	}
	c.tr = tr
	c.dialed = true
	c.log.Debug().Msg("connected")

	if c.password != "" {
		c.setState(StateAuthenticating)
		if err := c.handshakeLocked(ctx, NewCommand("AUTH", c.password)); err != nil {
			if !IsServerError(err) {
				c.abortLocked(err)
				return err
			}
			// Open but unauthorized: data commands will see NOAUTH.
			c.setState(StateReady)
			c.log.Warn().Err(err).Msg("auth rejected")
			return authError(err)
		}
	}
	if c.db != 0 {
		if err := c.handshakeLocked(ctx, NewCommand("SELECT", c.db)); err != nil {
			if !IsServerError(err) {
				c.abortLocked(err)
				return err
			}
			c.setState(StateReady)
			c.log.Warn().Err(err).Int("db", c.db).Msg("select rejected")
			return errors.Wrapf(err, "select %d", c.db)
		}
	}
	c.setState(StateReady)
	c.log.Info().Int("db", c.db).Msg("ready")
	return nil
}

// handshakeLocked runs cmd while holding the lock and returns the reply's
// error, if any. Commands already in flight keep their place ahead of it.
func (c *Conn) handshakeLocked(ctx context.Context, cmd Command) error {
	h := c.p.Submit(cmd)
	if err := c.p.Flush(c.tr); err != nil {
		c.breakLocked(err)
		_ = c.p.Release(h)
		return connError(err)
	}
	var bo iox.Backoff
	for {
		r, err := c.p.Result(h)
		if err != nil {
			return err
		}
		if !r.Done() && c.tr != nil {
			_, _ = c.pollLocked()
		}
		if r.Done() {
			err := r.Err()
			_ = c.p.Release(h)
			return err
		}
		if err := ctx.Err(); err != nil {
			_ = c.p.Abandon(h)
			return errors.WithStack(err)
		}
		bo.Wait()
	}
}

// abortLocked drops a transport whose handshake did not finish.
func (c *Conn) abortLocked(err error) {
	if c.tr != nil {
		c.breakLocked(err)
	}
}

// breakLocked tears down a failed transport. Every pending Result completes
// with a connection error, head first; nothing is replayed.
func (c *Conn) breakLocked(cause error) {
	err := connError(cause)
	c.log.Warn().Err(cause).Int("pending", c.p.Pending()).Msg("connection broken")
	if c.tr != nil {
		_ = c.tr.Close()
		c.tr = nil
	}
	c.p.Fail(err)
	c.setState(StateDisconnected)
}
