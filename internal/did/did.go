// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package did implements the data-identifier codec table: a mapping from
// 16-bit DID to a codec able to translate between wire bytes and a
// physical value, plus the current stored value for each DID.
//
// Physical values use decimal.Decimal rather than float64. The linear
// codecs' factor/offset round-trip (raw = (physical-offset)/factor,
// truncated toward zero) needs exact decimal arithmetic; decimal.Decimal
// avoids the float rounding error float64 would introduce on values like
// 0.01 that have no exact binary representation.
package did

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ID is a 16-bit data identifier.
type ID uint16

// ErrInvalidValue is returned when a value handed to Encode doesn't match
// the codec's expected shape (wrong kind, wrong ASCII length).
var ErrInvalidValue = errors.New("did: invalid value for codec")

// ErrLengthMismatch is returned when Decode receives a byte count
// different from the codec's declared width.
var ErrLengthMismatch = errors.New("did: length mismatch")

// Value is the tagged union that every codec encodes from and decodes to:
// either an ASCII string or a decimal physical value, never both. An
// explicit variant keeps the stored-value table statically typed instead
// of falling back to an `any` and type-switching at every call site.
type Value struct {
	ascii bool
	str   string
	num   decimal.Decimal
}

// ASCII builds a string-valued Value.
func ASCII(s string) Value { return Value{ascii: true, str: s} }

// Numeric builds a decimal-valued Value.
func Numeric(d decimal.Decimal) Value { return Value{num: d} }

// IsASCII reports whether v holds a string rather than a number.
func (v Value) IsASCII() bool { return v.ascii }

// String returns the ASCII payload; it is the empty string for a numeric Value.
func (v Value) String() string { return v.str }

// Decimal returns the numeric payload; it is the zero decimal for an ASCII Value.
func (v Value) Decimal() decimal.Decimal { return v.num }

// Equal compares two Values for use in tests and round-trip invariants.
func (v Value) Equal(o Value) bool {
	if v.ascii != o.ascii {
		return false
	}
	if v.ascii {
		return v.str == o.str
	}
	return v.num.Equal(o.num)
}

// Codec translates between wire bytes and a physical Value for one DID.
type Codec interface {
	// Encode converts a physical value to its wire representation.
	Encode(v Value) ([]byte, error)
	// Decode converts wire bytes back to a physical value.
	Decode(b []byte) (Value, error)
	// Length returns the codec's fixed wire width in bytes.
	Length() int
}

// asciiCodec is a fixed-length ASCII string codec.
type asciiCodec struct {
	n int
}

// ASCIICodec returns a fixed-length ASCII string codec of width n.
func ASCIICodec(n int) Codec { return asciiCodec{n: n} }

func (c asciiCodec) Length() int { return c.n }

func (c asciiCodec) Encode(v Value) ([]byte, error) {
	if !v.ascii || len(v.str) != c.n {
		return nil, fmt.Errorf("%w: want ascii string of length %d", ErrInvalidValue, c.n)
	}
	return []byte(v.str), nil
}

func (c asciiCodec) Decode(b []byte) (Value, error) {
	if len(b) != c.n {
		return Value{}, fmt.Errorf("%w: want %d bytes, got %d", ErrLengthMismatch, c.n, len(b))
	}
	return ASCII(string(b)), nil
}

// linearCodec implements the four fixed-width numeric codec variants
// (UCharLinear, CharLinear, UShortLinear, ShortLinear). width and signed
// select the wire shape; factor/offset select the physical transform.
type linearCodec struct {
	width  int
	signed bool
	factor decimal.Decimal
	offset decimal.Decimal
}

// UCharLinearCodec is a 1-byte unsigned linear codec: physical = raw*factor + offset.
func UCharLinearCodec(factor, offset decimal.Decimal) Codec {
	return linearCodec{width: 1, signed: false, factor: factor, offset: offset}
}

// CharLinearCodec is a 1-byte signed linear codec.
func CharLinearCodec(factor, offset decimal.Decimal) Codec {
	return linearCodec{width: 1, signed: true, factor: factor, offset: offset}
}

// UShortLinearCodec is a 2-byte big-endian unsigned linear codec.
func UShortLinearCodec(factor, offset decimal.Decimal) Codec {
	return linearCodec{width: 2, signed: false, factor: factor, offset: offset}
}

// ShortLinearCodec is a 2-byte big-endian signed linear codec.
func ShortLinearCodec(factor, offset decimal.Decimal) Codec {
	return linearCodec{width: 2, signed: true, factor: factor, offset: offset}
}

func (c linearCodec) Length() int { return c.width }

func (c linearCodec) Encode(v Value) ([]byte, error) {
	if v.ascii {
		return nil, fmt.Errorf("%w: want numeric value", ErrInvalidValue)
	}
	raw := v.num.Sub(c.offset).Div(c.factor).Truncate(0)
	n := raw.IntPart()

	b := make([]byte, c.width)
	switch {
	case c.width == 1 && !c.signed:
		b[0] = byte(uint8(n))
	case c.width == 1 && c.signed:
		b[0] = byte(int8(n))
	case c.width == 2 && !c.signed:
		binary.BigEndian.PutUint16(b, uint16(n))
	case c.width == 2 && c.signed:
		binary.BigEndian.PutUint16(b, uint16(int16(n)))
	default:
		return nil, fmt.Errorf("did: unsupported codec width %d", c.width)
	}
	return b, nil
}

func (c linearCodec) Decode(b []byte) (Value, error) {
	if len(b) != c.width {
		return Value{}, fmt.Errorf("%w: want %d bytes, got %d", ErrLengthMismatch, c.width, len(b))
	}

	var raw int64
	switch {
	case c.width == 1 && !c.signed:
		raw = int64(b[0])
	case c.width == 1 && c.signed:
		raw = int64(int8(b[0]))
	case c.width == 2 && !c.signed:
		raw = int64(binary.BigEndian.Uint16(b))
	case c.width == 2 && c.signed:
		raw = int64(int16(binary.BigEndian.Uint16(b)))
	}

	phy := decimal.NewFromInt(raw).Mul(c.factor).Add(c.offset)
	return Numeric(phy), nil
}
