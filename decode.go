// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"bytes"

	"code.hybscloud.com/iox"
)

const (
	// maxBulkLen mirrors the server's proto-max-bulk-len default (512 MiB).
	maxBulkLen = 512 << 20

	// maxArrayPrealloc caps the element capacity reserved from an array
	// header, so a hostile count cannot force a huge allocation up front.
	maxArrayPrealloc = 1024
)

// frame is an array whose header has been read but whose elements are
// still arriving.
type frame struct {
	elems []Value
	want  int
}

// Decoder parses a fragmented reply stream into Values.
//
// Feed appends received bytes; Next returns one complete reply or
// iox.ErrWouldBlock when the buffered bytes end mid-reply. Parse progress
// survives between calls: a header line or bulk payload is consumed exactly
// once, and only the atom that is still incomplete is looked at again.
//
// A protocol error is sticky until Reset. The stream offset is unknown
// after one, so the connection must be replaced.
type Decoder struct {
	buf    []byte
	pos    int // start of the next unconsumed atom
	scan   int // CRLF search resumes here
	stack  []frame
	inBulk bool
	bulk   int
	err    error
}

// NewDecoder returns a Decoder with an initial buffer capacity of size bytes.
func NewDecoder(size int) *Decoder {
	if size <= 0 {
		size = 4096
	}
	return &Decoder{buf: make([]byte, 0, size)}
}

// Feed appends p to the decoder buffer. Values returned by Next before this
// call may be invalidated.
func (d *Decoder) Feed(p []byte) {
	if len(d.stack) == 0 && d.pos > 0 {
		n := copy(d.buf, d.buf[d.pos:])
		d.buf = d.buf[:n]
		d.scan -= d.pos
		d.pos = 0
	}
	d.buf = append(d.buf, p...)
}

// Buffered returns the number of fed bytes not yet consumed.
func (d *Decoder) Buffered() int {
	return len(d.buf) - d.pos
}

// Err returns the sticky protocol error, if any.
func (d *Decoder) Err() error {
	return d.err
}

// Reset discards buffered bytes, partial replies and the sticky error.
func (d *Decoder) Reset() {
	d.buf = d.buf[:0]
	d.pos = 0
	d.scan = 0
	d.stack = d.stack[:0]
	d.inBulk = false
	d.bulk = 0
	d.err = nil
}

// Next decodes one reply. It returns iox.ErrWouldBlock when more bytes are
// needed and an error wrapping ErrProtocol on malformed input.
//
// The returned Value aliases the decoder buffer and stays valid until the
// next call to Feed or Next.
func (d *Decoder) Next() (Value, error) {
	if d.err != nil {
		return Value{}, d.err
	}
	for {
		v, ok, err := d.atom()
		if err != nil {
			if !iox.IsWouldBlock(err) {
				d.err = err
			}
			return Value{}, err
		}
		if !ok {
			continue
		}
		for {
			if len(d.stack) == 0 {
				return v, nil
			}
			top := &d.stack[len(d.stack)-1]
			top.elems = append(top.elems, v)
			if len(top.elems) < top.want {
				break
			}
			v = Value{kind: KindArray, elems: top.elems}
			top.elems = nil
			d.stack = d.stack[:len(d.stack)-1]
		}
	}
}

// atom consumes one header line or bulk payload. ok reports that v is a
// complete value; otherwise an array frame was pushed or a bulk header
// was read and decoding continues.
func (d *Decoder) atom() (v Value, ok bool, err error) {
	if d.inBulk {
		end := d.pos + d.bulk
		if len(d.buf) < end+2 {
			return Value{}, false, iox.ErrWouldBlock
		}
		if d.buf[end] != '\r' || d.buf[end+1] != '\n' {
			return Value{}, false, protocolErrorf("bulk payload of %d bytes not followed by CRLF", d.bulk)
		}
		v = Value{kind: KindBulk, str: d.buf[d.pos:end:end]}
		d.pos = end + 2
		d.scan = d.pos
		d.inBulk = false
		return v, true, nil
	}

	line, err := d.line()
	if err != nil {
		return Value{}, false, err
	}
	body := line[1:]
	switch line[0] {
	case '+':
		return Value{kind: KindStatus, str: body}, true, nil
	case '-':
		return Value{kind: KindError, str: body}, true, nil
	case ':':
		n, err := parseInt64(body)
		if err != nil {
			return Value{}, false, protocolErrorf("invalid integer %q", body)
		}
		return Value{kind: KindInteger, num: n}, true, nil
	case '$':
		n, err := parseInt64(body)
		if err != nil {
			return Value{}, false, protocolErrorf("invalid bulk length %q", body)
		}
		switch {
		case n == -1:
			return Value{kind: KindBulk, null: true}, true, nil
		case n < 0 || n > maxBulkLen:
			return Value{}, false, protocolErrorf("invalid bulk length %d", n)
		}
		d.inBulk = true
		d.bulk = int(n)
		return Value{}, false, nil
	case '*':
		n, err := parseInt64(body)
		if err != nil {
			return Value{}, false, protocolErrorf("invalid array length %q", body)
		}
		switch {
		case n == -1:
			return Value{kind: KindArray, null: true}, true, nil
		case n < 0:
			return Value{}, false, protocolErrorf("invalid array length %d", n)
		case n == 0:
			return Value{kind: KindArray, elems: []Value{}}, true, nil
		}
		d.stack = append(d.stack, frame{
			elems: make([]Value, 0, min(n, maxArrayPrealloc)),
			want:  int(n),
		})
		return Value{}, false, nil
	}
	return Value{}, false, protocolErrorf("unknown reply type %q", line[0])
}

// line returns the next CRLF-terminated line without its terminator.
func (d *Decoder) line() ([]byte, error) {
	from := max(d.scan, d.pos)
	i := bytes.IndexByte(d.buf[from:], '\n')
	if i < 0 {
		d.scan = len(d.buf)
		return nil, iox.ErrWouldBlock
	}
	end := from + i
	if end == d.pos || d.buf[end-1] != '\r' {
		return nil, protocolErrorf("line not terminated by CRLF")
	}
	line := d.buf[d.pos : end-1 : end-1]
	if len(line) == 0 {
		return nil, protocolErrorf("empty line")
	}
	d.pos = end + 1
	d.scan = d.pos
	return line, nil
}

// parseInt64 parses a decimal int64 without allocating.
func parseInt64(b []byte) (int64, error) {
	if len(b) == 0 {
		return 0, ErrProtocol
	}
	neg := false
	i := 0
	switch b[0] {
	case '-':
		neg = true
		i = 1
	case '+':
		i = 1
	}
	if i >= len(b) {
		return 0, ErrProtocol
	}
	var n uint64
	for ; i < len(b); i++ {
		c := b[i]
		if c < '0' || c > '9' {
			return 0, ErrProtocol
		}
		if n > (1<<63)/10 {
			return 0, ErrProtocol
		}
		n = n*10 + uint64(c-'0')
	}
	switch {
	case neg && n > 1<<63:
		return 0, ErrProtocol
	case !neg && n > 1<<63-1:
		return 0, ErrProtocol
	case neg:
		return -int64(n), nil
	}
	return int64(n), nil
}
