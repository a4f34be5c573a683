// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// crlf terminates every RESP header and payload.
const crlf = "\r\n"

// Command is a command keyword plus its binary-safe arguments.
// It is treated as immutable once built and only lives until it is encoded.
type Command struct {
	Name string
	Args [][]byte
}

// NewCommand builds a Command, formatting each argument the way the server
// expects to read it: strings and byte slices verbatim, integers in
// decimal, floats in the shortest exact form (+inf/-inf for infinities),
// bools as 1/0 and durations as whole seconds. Other types go through
// fmt.Sprint.
func NewCommand(name string, args ...any) Command {
	cmd := Command{Name: name, Args: make([][]byte, len(args))}
	for i, a := range args {
		cmd.Args[i] = appendArg(nil, a)
	}
	return cmd
}

// AppendTo appends the multi-bulk encoding of c to dst.
func (c Command) AppendTo(dst []byte) []byte {
	dst = appendHeader(dst, '*', int64(1+len(c.Args)))
	dst = appendBulkString(dst, c.Name)
	for _, arg := range c.Args {
		dst = appendBulk(dst, arg)
	}
	return dst
}

// String renders c for logs. Arguments are quoted when they are not plain words.
func (c Command) String() string {
	var sb strings.Builder
	sb.WriteString(c.Name)
	for _, a := range c.Args {
		sb.WriteByte(' ')
		s := string(a)
		if s == "" || strings.ContainsAny(s, " \t\r\n\"") {
			s = strconv.Quote(s)
		}
		sb.WriteString(s)
	}
	return sb.String()
}

// AppendCommand appends the encoding of name followed by args to dst.
func AppendCommand(dst []byte, name string, args ...[]byte) []byte {
	return Command{Name: name, Args: args}.AppendTo(dst)
}

func appendHeader(dst []byte, prefix byte, n int64) []byte {
	dst = append(dst, prefix)
	dst = strconv.AppendInt(dst, n, 10)
	return append(dst, crlf...)
}

func appendBulk(dst []byte, b []byte) []byte {
	dst = appendHeader(dst, '$', int64(len(b)))
	dst = append(dst, b...)
	return append(dst, crlf...)
}

func appendBulkString(dst []byte, s string) []byte {
	dst = appendHeader(dst, '$', int64(len(s)))
	dst = append(dst, s...)
	return append(dst, crlf...)
}

func appendArg(dst []byte, a any) []byte {
	switch v := a.(type) {
	case string:
		return append(dst, v...)
	case []byte:
		return append(dst, v...)
	case int:
		return strconv.AppendInt(dst, int64(v), 10)
	case int8:
		return strconv.AppendInt(dst, int64(v), 10)
	case int16:
		return strconv.AppendInt(dst, int64(v), 10)
	case int32:
		return strconv.AppendInt(dst, int64(v), 10)
	case int64:
		return strconv.AppendInt(dst, v, 10)
	case uint:
		return strconv.AppendUint(dst, uint64(v), 10)
	case uint8:
		return strconv.AppendUint(dst, uint64(v), 10)
	case uint16:
		return strconv.AppendUint(dst, uint64(v), 10)
	case uint32:
		return strconv.AppendUint(dst, uint64(v), 10)
	case uint64:
		return strconv.AppendUint(dst, v, 10)
	case float32:
		return appendFloat(dst, float64(v), 32)
	case float64:
		return appendFloat(dst, v, 64)
	case bool:
		if v {
			return append(dst, '1')
		}
		return append(dst, '0')
	case time.Duration:
		return strconv.AppendInt(dst, int64(v/time.Second), 10)
	case fmt.Stringer:
		return append(dst, v.String()...)
	case nil:
		return dst
	default:
		return fmt.Append(dst, v)
	}
}

func appendFloat(dst []byte, f float64, bits int) []byte {
	switch {
	case math.IsInf(f, 1):
		return append(dst, "+inf"...)
	case math.IsInf(f, -1):
		return append(dst, "-inf"...)
	}
	return strconv.AppendFloat(dst, f, 'f', -1, bits)
}
