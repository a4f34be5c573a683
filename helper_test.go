// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp_test

import (
	"context"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
	"code.hybscloud.com/resp"
	"github.com/tidwall/redcon"
)

// execExpr drives a protocol to completion on c via Step+Advance loop.
// Retries on iox.ErrWouldBlock (reply not in yet).
// Used by stepping tests to exercise the non-blocking path.
func execExpr[R any](c *resp.Conn, protocol kont.Expr[R]) R {
	result, susp := resp.Step[R](protocol)
	for susp != nil {
		var err error
		result, susp, err = resp.Advance(c, susp)
		if err != nil {
			continue
		}
	}
	return result
}

// memServer is a scripted in-memory server. Replies are looked up by the
// full command line ("GET k") first, then by command name ("GET").
type memServer struct {
	mu      sync.Mutex
	replies map[string]string
	seqs    map[string][]string
	conns   []*memTransport
	dialErr error
}

func newMemServer() *memServer {
	s := &memServer{replies: make(map[string]string), seqs: make(map[string][]string)}
	s.on("PING", "+PONG\r\n")
	return s
}

// on scripts the raw reply bytes for a command line or command name.
// An empty reply means the command is never answered.
func (s *memServer) on(cmd, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[cmd] = reply
}

// onSeq scripts successive replies to the same command line. Once they
// run out, on applies again.
func (s *memServer) onSeq(cmd string, replies ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seqs[cmd] = append(s.seqs[cmd], replies...)
}

func (s *memServer) reply(args []string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := strings.Join(args, " ")
	if q := s.seqs[line]; len(q) > 0 {
		s.seqs[line] = q[1:]
		return q[0], q[0] != ""
	}
	if r, ok := s.replies[line]; ok {
		return r, r != ""
	}
	if r, ok := s.replies[strings.ToUpper(args[0])]; ok {
		return r, r != ""
	}
	return "-ERR unknown command '" + args[0] + "'\r\n", true
}

func (s *memServer) dialer() resp.Dialer {
	return func(ctx context.Context, addr string) (resp.Transport, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.dialErr != nil {
			return nil, s.dialErr
		}
		t := &memTransport{srv: s, dec: resp.NewDecoder(256)}
		s.conns = append(s.conns, t)
		return t, nil
	}
}

func (s *memServer) setDialErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialErr = err
}

// last returns the most recently dialed transport.
func (s *memServer) last() *memTransport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conns[len(s.conns)-1]
}

func (s *memServer) dials() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// memTransport answers every written command from its memServer. While
// held, replies queue up until deliver.
type memTransport struct {
	srv *memServer
	dec *resp.Decoder

	mu       sync.Mutex
	inbox    [][]byte
	held     [][]byte
	hold     bool
	recvErr  error
	writeErr error
	closed   bool
	log      []string
}

func (t *memTransport) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, net.ErrClosed
	}
	if t.writeErr != nil {
		return 0, t.writeErr
	}
	t.dec.Feed(p)
	for {
		v, err := t.dec.Next()
		if err != nil {
			if iox.IsWouldBlock(err) {
				return len(p), nil
			}
			return 0, err
		}
		elems, _, err := v.Array()
		if err != nil {
			return 0, err
		}
		args := make([]string, len(elems))
		for i := range elems {
			args[i], _, _ = elems[i].Text()
		}
		t.log = append(t.log, strings.Join(args, " "))
		if r, ok := t.srv.reply(args); ok {
			if t.hold {
				t.held = append(t.held, []byte(r))
			} else {
				t.inbox = append(t.inbox, []byte(r))
			}
		}
	}
}

func (t *memTransport) Recv() ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.inbox) > 0 {
		b := t.inbox[0]
		t.inbox = t.inbox[1:]
		return b, nil
	}
	if t.recvErr != nil {
		return nil, t.recvErr
	}
	return nil, iox.ErrWouldBlock
}

func (t *memTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// pause withholds replies until deliver.
func (t *memTransport) pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hold = true
}

// deliver releases withheld replies, joined into one chunk.
func (t *memTransport) deliver() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hold = false
	var b []byte
	for _, r := range t.held {
		b = append(b, r...)
	}
	t.held = nil
	if len(b) > 0 {
		t.inbox = append(t.inbox, b)
	}
}

// push queues raw bytes as if the server had sent them.
func (t *memTransport) push(raw string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inbox = append(t.inbox, []byte(raw))
}

// fail makes Recv return err once the inbox drains.
func (t *memTransport) fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recvErr = err
}

func (t *memTransport) failWrites(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writeErr = err
}

func (t *memTransport) commands() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.log...)
}

func (t *memTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// newMemConn returns a Conn connected to srv. Reconnects back off for
// milliseconds only.
func newMemConn(tb testing.TB, srv *memServer, opts ...resp.Option) *resp.Conn {
	tb.Helper()
	base := []resp.Option{
		resp.WithDialer(srv.dialer()),
		resp.WithReconnectBackoff(time.Millisecond, 5*time.Millisecond),
	}
	c, err := resp.New(append(base, opts...)...)
	if err != nil {
		tb.Fatalf("New: %v", err)
	}
	if err := c.Connect(context.Background()); err != nil {
		tb.Fatalf("Connect: %v", err)
	}
	tb.Cleanup(func() { _ = c.Close() })
	return c
}

// kvServer is a small RESP server over TCP for connection tests. It knows
// enough commands to exercise the handshake, reconnects and typed calls.
//
// HANG is recorded but never answered; KILL drops the connection.
type kvServer struct {
	addr     string
	password string

	mu   sync.Mutex
	dbs  [16]map[string]string
	log  []string
	ln   net.Listener
	done chan struct{}
}

type kvSession struct {
	authed bool
	db     int
}

func startKVServer(tb testing.TB, password string) *kvServer {
	tb.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		tb.Fatalf("listen: %v", err)
	}
	s := &kvServer{addr: ln.Addr().String(), password: password, ln: ln, done: make(chan struct{})}
	for i := range s.dbs {
		s.dbs[i] = make(map[string]string)
	}
	go func() {
		defer close(s.done)
		_ = redcon.Serve(ln, s.serve,
			func(conn redcon.Conn) bool {
				conn.SetContext(&kvSession{authed: password == ""})
				return true
			},
			func(conn redcon.Conn, err error) {},
		)
	}()
	tb.Cleanup(func() {
		_ = ln.Close()
		select {
		case <-s.done:
		case <-time.After(time.Second):
		}
	})
	return s
}

func (s *kvServer) serve(conn redcon.Conn, cmd redcon.Command) {
	sess := conn.Context().(*kvSession)
	name := strings.ToUpper(string(cmd.Args[0]))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, name)

	if !sess.authed && name != "AUTH" && name != "PING" {
		conn.WriteError("NOAUTH Authentication required.")
		return
	}
	db := s.dbs[sess.db]
	switch name {
	case "PING":
		conn.WriteString("PONG")
	case "ECHO":
		conn.WriteBulk(cmd.Args[1])
	case "AUTH":
		if s.password == "" {
			conn.WriteError("ERR AUTH <password> called without any password configured for the default user")
			return
		}
		if string(cmd.Args[1]) != s.password {
			conn.WriteError("WRONGPASS invalid username-password pair or user is disabled.")
			return
		}
		sess.authed = true
		conn.WriteString("OK")
	case "SELECT":
		n, err := strconv.Atoi(string(cmd.Args[1]))
		if err != nil || n < 0 || n >= len(s.dbs) {
			conn.WriteError("ERR DB index is out of range")
			return
		}
		sess.db = n
		conn.WriteString("OK")
	case "SET":
		db[string(cmd.Args[1])] = string(cmd.Args[2])
		conn.WriteString("OK")
	case "GET":
		v, ok := db[string(cmd.Args[1])]
		if !ok {
			conn.WriteNull()
			return
		}
		conn.WriteBulkString(v)
	case "INCR":
		n, _ := strconv.ParseInt(db[string(cmd.Args[1])], 10, 64)
		n++
		db[string(cmd.Args[1])] = strconv.FormatInt(n, 10)
		conn.WriteInt64(n)
	case "DEL":
		var n int
		for _, k := range cmd.Args[1:] {
			if _, ok := db[string(k)]; ok {
				delete(db, string(k))
				n++
			}
		}
		conn.WriteInt(n)
	case "HANG":
	case "KILL":
		_ = conn.Close()
	default:
		conn.WriteError("ERR unknown command '" + string(cmd.Args[0]) + "'")
	}
}

// count returns how many times the server saw name.
func (s *kvServer) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.log {
		if l == name {
			n++
		}
	}
	return n
}

func (s *kvServer) value(db int, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.dbs[db][key]
	return v, ok
}
