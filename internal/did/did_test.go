// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package did

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestASCIICodecRoundTrip(t *testing.T) {
	c := ASCIICodec(17)
	b, err := c.Encode(ASCII("FVB30FKA034ALDFA0"))
	require.NoError(t, err)
	assert.Equal(t, []byte("FVB30FKA034ALDFA0"), b)
	assert.Equal(t, 17, c.Length())

	v, err := c.Decode(b)
	require.NoError(t, err)
	assert.True(t, v.Equal(ASCII("FVB30FKA034ALDFA0")))
}

func TestASCIICodecRejectsWrongLength(t *testing.T) {
	c := ASCIICodec(17)
	_, err := c.Encode(ASCII("short"))
	assert.ErrorIs(t, err, ErrInvalidValue)
	_, err = c.Decode([]byte("short"))
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestUCharLinearRoundTrip(t *testing.T) {
	c := UCharLinearCodec(decimal.NewFromFloat(0.5), decimal.Zero)
	b, err := c.Encode(Numeric(decimal.NewFromInt(100)))
	require.NoError(t, err)
	assert.Equal(t, []byte{200}, b)

	v, err := c.Decode(b)
	require.NoError(t, err)
	assert.True(t, v.Decimal().Equal(decimal.NewFromInt(100)))
}

func TestShortLinearRoundTrip(t *testing.T) {
	c := ShortLinearCodec(decimal.NewFromFloat(0.01), decimal.Zero)
	b, err := c.Encode(Numeric(decimal.NewFromInt(220)))
	require.NoError(t, err)
	require.Len(t, b, 2)

	v, err := c.Decode(b)
	require.NoError(t, err)
	assert.True(t, v.Decimal().Equal(decimal.NewFromInt(220)))
}

func TestCharLinearNegative(t *testing.T) {
	c := CharLinearCodec(decimal.NewFromFloat(0.2), decimal.Zero)
	b, err := c.Encode(Numeric(decimal.NewFromInt(-10)))
	require.NoError(t, err)
	require.Len(t, b, 1)
	assert.Equal(t, int8(-50), int8(b[0]))
}

func TestLinearDecodeLengthMismatch(t *testing.T) {
	c := UShortLinearCodec(decimal.NewFromFloat(0.1), decimal.Zero)
	_, err := c.Decode([]byte{1})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestTableReadWrite(t *testing.T) {
	tbl := NewTable()

	b, err := tbl.Read(0xF191)
	require.NoError(t, err)
	assert.Equal(t, "FVB30FKA034ALDFA0", string(b))

	require.True(t, tbl.Has(0x0021))
	require.NoError(t, tbl.Write(0x0021, []byte{100}))
	b, err = tbl.Read(0x0021)
	require.NoError(t, err)
	assert.Equal(t, []byte{100}, b)
}

func TestTableUnknownDID(t *testing.T) {
	tbl := NewTable()
	_, err := tbl.Read(0x1234)
	assert.Error(t, err)
	assert.False(t, tbl.Has(0x1234))
}
