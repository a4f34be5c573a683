// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Kind is the tag of a reply.
type Kind uint8

const (
	// KindPending marks a Value that holds no reply yet.
	KindPending Kind = iota
	// KindStatus is a "+" simple string.
	KindStatus
	// KindError is a "-" error reply.
	KindError
	// KindInteger is a ":" signed 64-bit integer.
	KindInteger
	// KindBulk is a "$" binary-safe string, possibly nil.
	KindBulk
	// KindArray is a "*" sequence of replies, possibly nil.
	KindArray
	// KindConnError is set locally when the connection broke before the reply arrived.
	KindConnError
)

var kindNames = [...]string{
	KindPending:   "pending",
	KindStatus:    "status",
	KindError:     "error",
	KindInteger:   "integer",
	KindBulk:      "bulk",
	KindArray:     "array",
	KindConnError: "connection-error",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is one decoded reply: a tagged union over status, error, integer,
// bulk string and array. Arrays nest without a depth limit.
//
// Byte slices returned by accessors alias the Value's storage; a pooled
// Result overwrites that storage when the slot is reused.
type Value struct {
	kind  Kind
	null  bool
	num   int64
	str   []byte
	elems []Value
	err   error
}

// Kind returns the reply tag.
func (v *Value) Kind() Kind { return v.kind }

// IsNil reports a nil bulk string ($-1) or nil array (*-1).
func (v *Value) IsNil() bool {
	return v.null && (v.kind == KindBulk || v.kind == KindArray)
}

// Status returns the text of a status reply.
func (v *Value) Status() (string, error) {
	if err := v.expect(KindStatus); err != nil {
		return "", err
	}
	return string(v.str), nil
}

// Int returns the integer of an integer reply.
func (v *Value) Int() (int64, error) {
	if err := v.expect(KindInteger); err != nil {
		return 0, err
	}
	return v.num, nil
}

// Bytes returns the payload of a bulk string. ok is false for a nil bulk.
func (v *Value) Bytes() (b []byte, ok bool, err error) {
	if err := v.expect(KindBulk); err != nil {
		return nil, false, err
	}
	if v.null {
		return nil, false, nil
	}
	return v.str, true, nil
}

// Text returns the payload of a bulk string or status reply as a string.
// ok is false for a nil bulk.
func (v *Value) Text() (s string, ok bool, err error) {
	switch v.kind {
	case KindStatus:
		return string(v.str), true, nil
	case KindBulk:
		if v.null {
			return "", false, nil
		}
		return string(v.str), true, nil
	}
	return "", false, v.mismatch(KindBulk)
}

// Float parses a bulk or status reply as a float64, the way the server
// encodes scores and INCRBYFLOAT results.
func (v *Value) Float() (f float64, ok bool, err error) {
	s, ok, err := v.Text()
	if err != nil || !ok {
		return 0, ok, err
	}
	f, err = parseFloat(s)
	if err != nil {
		return 0, false, errors.Wrapf(ErrTypeMismatch, "not a float: %q", s)
	}
	return f, true, nil
}

// Array returns the elements of an array reply. ok is false for a nil array.
func (v *Value) Array() (elems []Value, ok bool, err error) {
	if err := v.expect(KindArray); err != nil {
		return nil, false, err
	}
	if v.null {
		return nil, false, nil
	}
	return v.elems, true, nil
}

// Err returns the server error of an error reply, the connection error of a
// KindConnError value, and nil for every other kind.
func (v *Value) Err() error {
	switch v.kind {
	case KindError:
		return &ServerError{Msg: string(v.str)}
	case KindConnError:
		return v.err
	}
	return nil
}

// String formats the value for logs and debugging.
func (v *Value) String() string {
	switch v.kind {
	case KindStatus, KindError:
		return string(v.str)
	case KindInteger:
		return strconv.FormatInt(v.num, 10)
	case KindBulk:
		if v.null {
			return "(nil)"
		}
		return strconv.Quote(string(v.str))
	case KindArray:
		if v.null {
			return "(nil)"
		}
		var sb strings.Builder
		sb.WriteByte('[')
		for i := range v.elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(v.elems[i].String())
		}
		sb.WriteByte(']')
		return sb.String()
	case KindConnError:
		return v.err.Error()
	}
	return kindNames[KindPending]
}

// expect returns nil when v has kind k. Error and connection-error replies
// surface their own error instead of a mismatch.
func (v *Value) expect(k Kind) error {
	if v.kind == k {
		return nil
	}
	return v.mismatch(k)
}

func (v *Value) mismatch(want Kind) error {
	switch v.kind {
	case KindPending:
		return ErrPending
	case KindError, KindConnError:
		return v.Err()
	}
	return errors.Wrapf(ErrTypeMismatch, "want %s, got %s", want, v.kind)
}

// assign overwrites v with src, reusing v's buffers. src may alias decoder memory.
func (v *Value) assign(src *Value) {
	v.kind = src.kind
	v.null = src.null
	v.num = src.num
	v.err = src.err
	v.str = append(v.str[:0], src.str...)
	n := len(src.elems)
	if cap(v.elems) < n {
		v.elems = make([]Value, n)
	} else {
		v.elems = v.elems[:n]
	}
	for i := range src.elems {
		v.elems[i].assign(&src.elems[i])
	}
	if src.kind == KindArray && !src.null && v.elems == nil {
		v.elems = []Value{}
	}
}

// reset clears the payload, keeping buffer capacity for the next reply.
func (v *Value) reset() {
	v.kind = KindPending
	v.null = false
	v.num = 0
	v.err = nil
	v.str = v.str[:0]
	v.elems = v.elems[:0]
}

func parseFloat(s string) (float64, error) {
	switch s {
	case "inf", "+inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	}
	return strconv.ParseFloat(s, 64)
}

// NewStatus returns a detached status value.
func NewStatus(s string) Value { return Value{kind: KindStatus, str: []byte(s)} }

// NewErrorValue returns an error-reply value.
func NewErrorValue(msg string) Value { return Value{kind: KindError, str: []byte(msg)} }

// NewInt returns an integer value.
func NewInt(n int64) Value { return Value{kind: KindInteger, num: n} }

// NewBulk returns a non-nil bulk value.
func NewBulk(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{kind: KindBulk, str: b}
}

// NewNilBulk returns the nil bulk string.
func NewNilBulk() Value { return Value{kind: KindBulk, null: true} }

// NewArray returns a non-nil array value.
func NewArray(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: KindArray, elems: elems}
}

// NewNilArray returns the nil array.
func NewNilArray() Value { return Value{kind: KindArray, null: true} }

// Equal reports structural equality of two values.
func (v *Value) Equal(o *Value) bool {
	if v.kind != o.kind || v.null != o.null {
		return false
	}
	switch v.kind {
	case KindInteger:
		return v.num == o.num
	case KindStatus, KindError, KindBulk:
		return string(v.str) == string(o.str)
	case KindArray:
		if len(v.elems) != len(o.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(&o.elems[i]) {
				return false
			}
		}
		return true
	case KindConnError:
		return errors.Is(v.err, o.err) || errors.Is(o.err, v.err)
	}
	return true
}
