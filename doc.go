// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package resp is a single-connection client engine for RESP-speaking
// key-value stores.
//
// Commands look synchronous to the caller while socket I/O stays
// asynchronous. Replies carry no request ID, so correlation rests on one
// invariant: the pending FIFO holds in-flight Results in exactly the order
// their commands reached the wire.
//
// # Architecture
//
//   - Encoding: [Command] and [AppendCommand] produce multi-bulk requests.
//   - Decoding: [Decoder] parses a fragmented stream; Next returns [code.hybscloud.com/iox.ErrWouldBlock] until a whole reply is buffered.
//   - Correlation: [Pipeline] owns the Result arena, the pending FIFO and the decoder. A [Handle] (slot index + generation) names one in-flight command.
//   - Connection: [Conn] adds the [Transport], AUTH/SELECT handshake and reconnection. In-flight commands are never replayed; they complete with [KindConnError].
//   - Transport: [NetDialer] reads on its own goroutine into a bounded [code.hybscloud.com/lfq] queue, so [Transport] Recv never blocks.
//
// # Waiting
//
//   - Direct: [Conn.Send] then [Conn.Wait], or [Conn.Do]. Typed methods ([Conn.Get], [Conn.HGetAll], ...) wrap both.
//   - Effects: [Submit] and [Await] are [code.hybscloud.com/kont] operations. [Step] and [Advance] evaluate a protocol one effect at a time for a host event loop; [Exec], [ExecContext] and [RunAll] block the calling goroutine.
//   - Scheduling: a [Scheduler] installed with [WithScheduler] receives Yield while a caller waits and Ready when its Result completes. Without one, waiting polls with adaptive backoff.
//
// # Example
//
//	c, err := resp.Dial(ctx, resp.WithAddr("localhost:6379"))
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//	protocol := resp.ExprCall(resp.NewCommand("INCR", "hits"), resp.IntReply)
//	result, susp := resp.Step(protocol)
//	for susp != nil {
//		var err error
//		if result, susp, err = resp.Advance(c, susp); err != nil {
//			continue // retry on ErrWouldBlock
//		}
//	}
package resp
