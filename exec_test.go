// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp_test

import (
	"fmt"
	"testing"

	"code.hybscloud.com/kont"
	"code.hybscloud.com/resp"
)

func TestExecCall(t *testing.T) {
	srv := newMemServer()
	srv.on("GET k", "$5\r\nhello\r\n")
	c := newMemConn(t, srv)

	result := resp.Exec(c, resp.Call(resp.NewCommand("GET", "k"), resp.BytesReply))
	v, ok := result.GetRight()
	if !ok || string(v) != "hello" {
		t.Fatalf("got %v, want Right(hello)", result)
	}
}

func TestExecExprCallBind(t *testing.T) {
	srv := newMemServer()
	srv.on("INCR n", ":41\r\n")
	c := newMemConn(t, srv)

	protocol := resp.ExprCallBind(resp.NewCommand("INCR", "n"), resp.IntReply,
		func(e kont.Either[error, int64]) kont.Expr[string] {
			n, _ := e.GetRight()
			return kont.ExprReturn(fmt.Sprintf("n=%d", n+1))
		})
	if got := resp.ExecExpr(c, protocol); got != "n=42" {
		t.Fatalf("got %q, want %q", got, "n=42")
	}
}

func TestExecWaitsWithScheduler(t *testing.T) {
	srv := newMemServer()
	sched := &recordingScheduler{}
	c := newMemConn(t, srv, resp.WithScheduler(sched))
	sched.tr = srv.last()
	sched.tr.pause()

	result := resp.ExecExpr(c, resp.ExprCall(resp.NewCommand("PING"), resp.StatusReply))
	if s, _ := result.GetRight(); s != "PONG" {
		t.Fatalf("got %v", result)
	}
	sched.mu.Lock()
	defer sched.mu.Unlock()
	if sched.yields == 0 {
		t.Fatal("pending Await did not yield to the scheduler")
	}
	if len(sched.ready) != 1 {
		t.Fatalf("Ready called %d times, want 1", len(sched.ready))
	}
}

func TestRunTwoCallers(t *testing.T) {
	srv := newMemServer()
	srv.on("GET a", "$1\r\nA\r\n")
	srv.on("GET b", "$1\r\nB\r\n")
	c := newMemConn(t, srv)

	a := resp.CallBind(resp.NewCommand("GET", "a"), resp.BytesReply, func(e kont.Either[error, []byte]) kont.Eff[string] {
		v, _ := e.GetRight()
		return kont.Pure(string(v))
	})
	b := resp.CallBind(resp.NewCommand("GET", "b"), resp.BytesReply, func(e kont.Either[error, []byte]) kont.Eff[string] {
		v, _ := e.GetRight()
		return kont.Pure(string(v))
	})

	ra, rb := resp.Run[string, string](c, a, b)
	if ra != "A" || rb != "B" {
		t.Fatalf("got %q %q, want A B", ra, rb)
	}
}

func TestRunExprInterleaves(t *testing.T) {
	srv := newMemServer()
	srv.on("INCR x", ":1\r\n")
	c := newMemConn(t, srv)

	// a needs two round trips, b needs one.
	a := resp.ExprCallBind(resp.NewCommand("INCR", "x"), resp.IntReply, func(e1 kont.Either[error, int64]) kont.Expr[int64] {
		return resp.ExprCallBind(resp.NewCommand("INCR", "x"), resp.IntReply, func(e2 kont.Either[error, int64]) kont.Expr[int64] {
			x, _ := e1.GetRight()
			y, _ := e2.GetRight()
			return kont.ExprReturn(x + y)
		})
	})
	b := resp.ExprCall(resp.NewCommand("PING"), resp.StatusReply)

	ra, rb := resp.RunExpr[int64, kont.Either[error, string]](c, a, b)
	if ra != 2 {
		t.Fatalf("a got %d, want 2", ra)
	}
	if s, _ := rb.GetRight(); s != "PONG" {
		t.Fatalf("b got %v", rb)
	}
	cmds := srv.last().commands()
	if len(cmds) != 3 || cmds[0] != "INCR x" || cmds[1] != "PING" || cmds[2] != "INCR x" {
		t.Fatalf("wire order = %v", cmds)
	}
}

func TestRunAllFIFO(t *testing.T) {
	srv := newMemServer()
	const n = 16
	for i := 0; i < n; i++ {
		s := fmt.Sprint(i)
		srv.on("ECHO "+s, fmt.Sprintf("$%d\r\n%s\r\n", len(s), s))
	}
	c := newMemConn(t, srv)

	protocols := make([]kont.Expr[string], n)
	for i := range protocols {
		protocols[i] = resp.ExprCallBind(resp.NewCommand("ECHO", i), resp.BytesReply, func(e kont.Either[error, []byte]) kont.Expr[string] {
			if err, ok := e.GetLeft(); ok {
				return kont.ExprReturn("error: " + err.Error())
			}
			v, _ := e.GetRight()
			return kont.ExprReturn(string(v))
		})
	}

	results := resp.RunAll(c, protocols...)
	for i, r := range results {
		if r != fmt.Sprint(i) {
			t.Fatalf("caller %d got %q", i, r)
		}
	}
	cmds := srv.last().commands()
	for i, cmd := range cmds {
		if cmd != fmt.Sprintf("ECHO %d", i) {
			t.Fatalf("command %d on the wire = %q", i, cmd)
		}
	}
	st := c.Stats()
	if st.Sent != n || st.Received != n || st.Pending != 0 {
		t.Fatalf("stats = %+v", st)
	}
	if st.IdleSlots != st.Slots {
		t.Fatalf("slots leaked: %d/%d idle", st.IdleSlots, st.Slots)
	}
}

func TestRunAllPure(t *testing.T) {
	srv := newMemServer()
	c := newMemConn(t, srv)
	results := resp.RunAll(c, kont.ExprReturn(1), kont.ExprReturn(2))
	if len(results) != 2 || results[0] != 1 || results[1] != 2 {
		t.Fatalf("got %v", results)
	}
	if c.Stats().Sent != 0 {
		t.Fatal("pure protocols sent commands")
	}
}

func TestReifyReflect(t *testing.T) {
	srv := newMemServer()
	srv.on("ECHO x", "$1\r\nx\r\n")
	c := newMemConn(t, srv)

	eff := resp.Call(resp.NewCommand("ECHO", "x"), resp.BytesReply)
	expr := resp.Reify(eff)
	if v, _ := execExpr(c, expr).GetRight(); string(v) != "x" {
		t.Fatal("reified protocol")
	}
	back := resp.Reflect(resp.ExprCall(resp.NewCommand("ECHO", "x"), resp.BytesReply))
	if v, _ := resp.Exec(c, back).GetRight(); string(v) != "x" {
		t.Fatal("reflected protocol")
	}
}
