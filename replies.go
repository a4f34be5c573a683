// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"context"
	"strconv"

	"github.com/cockroachdb/errors"
)

// Reply decoders turn a completed Result into a detached Go value. They are
// the Decode functions of Await and of the typed command methods. Error and
// connection-error replies come back as the error.

// StatusReply decodes a status reply.
func StatusReply(r *Result) (string, error) { return r.Status() }

// OKReply accepts only the +OK status.
func OKReply(r *Result) (struct{}, error) {
	s, err := r.Status()
	if err != nil {
		return struct{}{}, err
	}
	if s != "OK" {
		return struct{}{}, errors.Wrapf(ErrTypeMismatch, "want OK, got %q", s)
	}
	return struct{}{}, nil
}

// IntReply decodes an integer reply.
func IntReply(r *Result) (int64, error) { return r.Int() }

// BoolReply decodes an integer reply of 0 or 1.
func BoolReply(r *Result) (bool, error) {
	n, err := r.Int()
	if err != nil {
		return false, err
	}
	switch n {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, errors.Wrapf(ErrTypeMismatch, "want 0 or 1, got %d", n)
}

// BytesReply decodes a bulk reply into a fresh slice. A nil bulk decodes
// to nil, an empty bulk to an empty non-nil slice.
func BytesReply(r *Result) ([]byte, error) {
	b, ok, err := r.Bytes()
	if err != nil || !ok {
		return nil, err
	}
	return append([]byte{}, b...), nil
}

// StringsReply decodes an array of bulk or status replies. Nil elements
// become empty strings.
func StringsReply(r *Result) ([]string, error) {
	elems, _, err := r.Array()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(elems))
	for i := range elems {
		s, _, err := elems[i].Text()
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
		out[i] = s
	}
	return out, nil
}

// ValueReply returns a deep copy of the reply that outlives the slot.
// Error replies are returned as values, not errors; only a broken
// connection fails.
func ValueReply(r *Result) (Value, error) {
	if r.kind == KindConnError {
		return Value{}, r.err
	}
	var v Value
	v.assign(&r.Value)
	return v, nil
}

// optionalBytes decodes a bulk reply, reporting nil as found == false.
func optionalBytes(r *Result) (b []byte, found bool, err error) {
	raw, ok, err := r.Bytes()
	if err != nil || !ok {
		return nil, false, err
	}
	return append([]byte{}, raw...), true, nil
}

// optionalInt decodes an integer or a nil reply.
func optionalInt(r *Result) (n int64, found bool, err error) {
	if r.kind == KindBulk && r.null {
		return 0, false, nil
	}
	if r.kind == KindArray && r.null {
		return 0, false, nil
	}
	n, err = r.Int()
	return n, err == nil, err
}

// pairsReply decodes a flat field/value array into a map.
func pairsReply(r *Result) (map[string]string, error) {
	elems, _, err := r.Array()
	if err != nil {
		return nil, err
	}
	if len(elems)%2 != 0 {
		return nil, errors.Wrapf(ErrTypeMismatch, "odd number of elements: %d", len(elems))
	}
	out := make(map[string]string, len(elems)/2)
	for i := 0; i < len(elems); i += 2 {
		k, _, err := elems[i].Text()
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
		v, _, err := elems[i+1].Text()
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i+1)
		}
		out[k] = v
	}
	return out, nil
}

// BulksReply decodes an array of bulk replies, as MGET and HMGET return
// them. Missing entries are nil; empty values are empty non-nil slices.
func BulksReply(r *Result) ([][]byte, error) {
	elems, _, err := r.Array()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(elems))
	for i := range elems {
		b, ok, err := elems[i].Bytes()
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
		if ok {
			out[i] = append([]byte{}, b...)
		}
	}
	return out, nil
}

// scoredReply decodes a member/score array, as returned WITHSCORES.
func scoredReply(r *Result) ([]Z, error) {
	elems, _, err := r.Array()
	if err != nil {
		return nil, err
	}
	if len(elems)%2 != 0 {
		return nil, errors.Wrapf(ErrTypeMismatch, "odd number of elements: %d", len(elems))
	}
	out := make([]Z, 0, len(elems)/2)
	for i := 0; i < len(elems); i += 2 {
		m, _, err := elems[i].Text()
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
		score, _, err := elems[i+1].Float()
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i+1)
		}
		out = append(out, Z{Member: m, Score: score})
	}
	return out, nil
}

// scanPage is one SCAN reply: the next cursor and a batch of keys.
type scanPage struct {
	cursor string
	keys   []string
}

func scanReply(r *Result) (scanPage, error) {
	elems, _, err := r.Array()
	if err != nil {
		return scanPage{}, err
	}
	if len(elems) != 2 {
		return scanPage{}, errors.Wrapf(ErrTypeMismatch, "scan reply of %d elements", len(elems))
	}
	cursor, _, err := elems[0].Text()
	if err != nil {
		return scanPage{}, err
	}
	if _, err := strconv.ParseUint(cursor, 10, 64); err != nil {
		return scanPage{}, errors.Wrapf(ErrTypeMismatch, "scan cursor %q", cursor)
	}
	keys, _, err := elems[1].Array()
	if err != nil {
		return scanPage{}, err
	}
	page := scanPage{cursor: cursor, keys: make([]string, len(keys))}
	for i := range keys {
		s, _, err := keys[i].Text()
		if err != nil {
			return scanPage{}, err
		}
		page.keys[i] = s
	}
	return page, nil
}

// doReply runs cmd on c and decodes its reply.
func doReply[T any](ctx context.Context, c *Conn, cmd Command, decode func(*Result) (T, error)) (T, error) {
	var out T
	err := c.call(ctx, cmd, func(r *Result) error {
		var err error
		out, err = decode(r)
		return err
	})
	return out, err
}

// doOptional runs cmd on c and decodes a reply that may be nil.
func doOptional[T any](ctx context.Context, c *Conn, cmd Command, decode func(*Result) (T, bool, error)) (v T, found bool, err error) {
	err = c.call(ctx, cmd, func(r *Result) error {
		var err error
		v, found, err = decode(r)
		return err
	})
	return v, found, err
}

// args appends tail to head as command arguments.
func args[T any](head []any, tail ...T) []any {
	out := make([]any, 0, len(head)+len(tail))
	out = append(out, head...)
	for _, t := range tail {
		out = append(out, t)
	}
	return out
}
