// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp_test

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"code.hybscloud.com/resp"
)

func checkCounters(t *testing.T, p *resp.Pipeline) {
	t.Helper()
	if got, want := uint64(p.Pending()), p.Sent()-p.Received()-p.Failed(); got != want {
		t.Fatalf("Pending = %d, Sent-Received-Failed = %d", got, want)
	}
}

func TestPipelineFIFO(t *testing.T) {
	p := resp.NewPipeline(0, nil)
	const n = 100
	hs := make([]resp.Handle, n)
	var replies strings.Builder
	for i := range hs {
		hs[i] = p.Submit(resp.NewCommand("ECHO", i))
		switch i % 3 {
		case 0:
			fmt.Fprintf(&replies, ":%d\r\n", i)
		case 1:
			s := fmt.Sprint(i)
			fmt.Fprintf(&replies, "$%d\r\n%s\r\n", len(s), s)
		default:
			fmt.Fprintf(&replies, "+%d\r\n", i)
		}
	}
	if p.Pending() != n {
		t.Fatalf("Pending = %d, want %d", p.Pending(), n)
	}
	var out bytes.Buffer
	if err := p.Flush(&out); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(p.Outbound()) != 0 {
		t.Fatalf("Outbound not drained: %d bytes", len(p.Outbound()))
	}

	// Feed in odd-sized chunks.
	stream := []byte(replies.String())
	completed := 0
	for len(stream) > 0 {
		k := min(7, len(stream))
		c, err := p.Feed(stream[:k])
		if err != nil {
			t.Fatalf("Feed: %v", err)
		}
		completed += c
		stream = stream[k:]
		checkCounters(t, p)
	}
	if completed != n {
		t.Fatalf("completed %d, want %d", completed, n)
	}
	for i, h := range hs {
		r, err := p.Result(h)
		if err != nil {
			t.Fatalf("Result %d: %v", i, err)
		}
		if !r.Done() {
			t.Fatalf("Result %d not done", i)
		}
		s, _, err := r.Text()
		if r.Kind() == resp.KindInteger {
			var n64 int64
			n64, err = r.Int()
			s = fmt.Sprint(n64)
		}
		if err != nil || s != fmt.Sprint(i) {
			t.Fatalf("Result %d = %q, %v", i, s, err)
		}
		if err := p.Release(h); err != nil {
			t.Fatalf("Release %d: %v", i, err)
		}
	}
	if p.Pending() != 0 || p.Received() != n {
		t.Fatalf("Pending=%d Received=%d", p.Pending(), p.Received())
	}
}

func TestPipelineReuseWithoutResidue(t *testing.T) {
	p := resp.NewPipeline(0, nil)
	h := p.Submit(resp.NewCommand("LRANGE", "l", 0, -1))
	if _, err := p.Feed([]byte("*2\r\n$3\r\nold\r\n$4\r\ndata\r\n")); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if err := p.Release(h); err != nil {
		t.Fatalf("Release: %v", err)
	}

	h2 := p.Acquire()
	if h2 == h {
		t.Fatal("reused slot kept its handle")
	}
	r, err := p.Result(h2)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if r.Kind() != resp.KindPending || r.Done() {
		t.Fatalf("recycled slot = %s, done=%v", r.Kind(), r.Done())
	}
	if _, _, err := r.Array(); !errors.Is(err, resp.ErrPending) {
		t.Fatalf("Array on fresh slot: %v", err)
	}
	if err := p.Enqueue(h2, resp.NewCommand("GET", "k")); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if _, err := p.Feed([]byte("$-1\r\n")); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if !r.IsNil() || r.String() != "(nil)" {
		t.Fatalf("reply = %s", r.String())
	}
	if size, idle := p.Slots(); size != 1 || idle != 0 {
		t.Fatalf("Slots = %d/%d, want 1/0", size, idle)
	}
}

func TestPipelineFailFIFO(t *testing.T) {
	var order []resp.Handle
	p := resp.NewPipeline(0, func(h resp.Handle) { order = append(order, h) })
	hs := []resp.Handle{
		p.Submit(resp.NewCommand("GET", "a")),
		p.Submit(resp.NewCommand("GET", "b")),
		p.Submit(resp.NewCommand("GET", "c")),
	}
	cause := errors.New("reset by peer")
	if n := p.Fail(cause); n != 3 {
		t.Fatalf("Fail = %d, want 3", n)
	}
	checkCounters(t, p)
	if len(order) != 3 {
		t.Fatalf("ready called %d times", len(order))
	}
	for i, h := range hs {
		if order[i] != h {
			t.Fatalf("completion %d out of order", i)
		}
		r, _ := p.Result(h)
		if r.Kind() != resp.KindConnError {
			t.Fatalf("result %d kind = %s", i, r.Kind())
		}
		if !errors.Is(r.Err(), cause) {
			t.Fatalf("result %d err = %v", i, r.Err())
		}
	}
	if len(p.Outbound()) != 0 {
		t.Fatal("unsent bytes survived Fail")
	}
	if h := p.Acquire(); !h.Valid() {
		t.Fatal("Acquire after Fail returned an invalid handle")
	}
}

func TestPipelineStaleHandle(t *testing.T) {
	p := resp.NewPipeline(0, nil)
	h := p.Acquire()
	if err := p.Release(h); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := p.Result(h); !errors.Is(err, resp.ErrStaleHandle) {
		t.Fatalf("Result after release: %v", err)
	}
	if err := p.Release(h); !errors.Is(err, resp.ErrStaleHandle) {
		t.Fatalf("double release: %v", err)
	}
	if err := p.Enqueue(h, resp.NewCommand("PING")); !errors.Is(err, resp.ErrStaleHandle) {
		t.Fatalf("Enqueue stale: %v", err)
	}
	var zero resp.Handle
	if zero.Valid() {
		t.Fatal("zero handle is valid")
	}
}

func TestPipelineReleasePending(t *testing.T) {
	p := resp.NewPipeline(0, nil)
	h := p.Submit(resp.NewCommand("PING"))
	if err := p.Release(h); !errors.Is(err, resp.ErrReleasePending) {
		t.Fatalf("Release pending: %v", err)
	}
	r, _ := p.Result(h)
	if _, err := r.Status(); !errors.Is(err, resp.ErrPending) {
		t.Fatalf("Status while pending: %v", err)
	}
	if err := p.Enqueue(h, resp.NewCommand("PING")); !errors.Is(err, resp.ErrStaleHandle) {
		t.Fatalf("double enqueue: %v", err)
	}
}

func TestPipelineAbandonRecycles(t *testing.T) {
	readied := 0
	p := resp.NewPipeline(0, func(resp.Handle) { readied++ })
	h1 := p.Submit(resp.NewCommand("GET", "a"))
	h2 := p.Submit(resp.NewCommand("GET", "b"))
	if err := p.Abandon(h1); err != nil {
		t.Fatalf("Abandon: %v", err)
	}
	if _, idle := p.Slots(); idle != 0 {
		t.Fatalf("abandoned pending slot freed early")
	}
	if _, err := p.Feed([]byte("$1\r\nA\r\n$1\r\nB\r\n")); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if readied != 1 {
		t.Fatalf("ready called %d times, want 1", readied)
	}
	if _, err := p.Result(h1); !errors.Is(err, resp.ErrStaleHandle) {
		t.Fatalf("abandoned handle still resolves: %v", err)
	}
	r, err := p.Result(h2)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if b, _, _ := r.Bytes(); string(b) != "B" {
		t.Fatalf("h2 got %q, want B (FIFO kept)", b)
	}
	if size, idle := p.Slots(); size != 2 || idle != 1 {
		t.Fatalf("Slots = %d/%d, want 2/1", size, idle)
	}
}

func TestPipelineUnsolicitedReply(t *testing.T) {
	p := resp.NewPipeline(0, nil)
	_, err := p.Feed([]byte("+OK\r\n"))
	if !errors.Is(err, resp.ErrProtocol) {
		t.Fatalf("unsolicited reply: %v", err)
	}
	h := p.Submit(resp.NewCommand("PING"))
	if _, err := p.Feed([]byte("+PONG\r\n")); !errors.Is(err, resp.ErrProtocol) {
		t.Fatalf("stream usable after protocol error: %v", err)
	}
	p.Fail(errors.New("replaced"))
	r, _ := p.Result(h)
	if r.Kind() != resp.KindConnError {
		t.Fatalf("kind = %s", r.Kind())
	}
	h = p.Submit(resp.NewCommand("PING"))
	if n, err := p.Feed([]byte("+PONG\r\n")); err != nil || n != 1 {
		t.Fatalf("after Fail: %d %v", n, err)
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestPipelineFlushKeepsBufferOnError(t *testing.T) {
	p := resp.NewPipeline(0, nil)
	p.Submit(resp.NewCommand("PING"))
	if err := p.Flush(failWriter{}); err == nil {
		t.Fatal("Flush succeeded")
	}
	if string(p.Outbound()) != "*1\r\n$4\r\nPING\r\n" {
		t.Fatalf("Outbound = %q", p.Outbound())
	}
}

func TestPipelineGrowsPastRing(t *testing.T) {
	p := resp.NewPipeline(0, nil)
	// Interleave so the ring wraps before it grows.
	var want []int
	var hs []resp.Handle
	next := 0
	for round := 0; round < 5; round++ {
		for i := 0; i < 13; i++ {
			hs = append(hs, p.Submit(resp.NewCommand("X")))
			want = append(want, next)
			next++
		}
		var b strings.Builder
		for i := 0; i < 7; i++ {
			fmt.Fprintf(&b, ":%d\r\n", want[0])
			want = want[1:]
		}
		if _, err := p.Feed([]byte(b.String())); err != nil {
			t.Fatalf("Feed: %v", err)
		}
	}
	var b strings.Builder
	for _, v := range want {
		fmt.Fprintf(&b, ":%d\r\n", v)
	}
	if _, err := p.Feed([]byte(b.String())); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	for i, h := range hs {
		r, _ := p.Result(h)
		if n, err := r.Int(); err != nil || n != int64(i) {
			t.Fatalf("reply %d = %d, %v", i, n, err)
		}
	}
}
