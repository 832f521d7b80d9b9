// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package dtc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStoreSeeded(t *testing.T) {
	s := NewStore()
	assert.Equal(t, 3, s.Len())

	all := s.QueryByMask(0xFF)
	assert.Len(t, all, 3)
	assert.Equal(t, Value{Pcode: 1, Ftb: 2}, all[0].Value)
	assert.Equal(t, Status(0xCD), all[0].Status)
}

func TestValueEncode(t *testing.T) {
	v := Value{Pcode: 0xD982, Ftb: 0x0F}
	assert.Equal(t, [3]byte{0xD9, 0x82, 0x0F}, v.Encode())
}

func TestClearAll(t *testing.T) {
	s := NewStore()
	s.ClearAll()
	assert.Empty(t, s.QueryByMask(0xFF))
	assert.Equal(t, 0, s.Len())
}

func TestClearByMask(t *testing.T) {
	s := NewStore()
	// 0xCD = 1100_1101 -> bits 1,3,4,7,8. 0xFE -> bits 2-8. 0x2E -> bits 2,3,4,6.
	s.ClearByMask(Status(0x01)) // clears anything with bit 1 set (0xCD)

	remaining := s.QueryByMask(0xFF)
	assert.Len(t, remaining, 2)
	for _, d := range remaining {
		assert.False(t, d.Status.Matches(0x01))
	}
}

func TestQueryByMaskIsSnapshot(t *testing.T) {
	s := NewStore()
	snap := s.QueryByMask(0xFF)
	count := len(snap)
	s.ClearAll()
	assert.Len(t, snap, count, "snapshot unaffected by later mutation")
}

func TestAddAppendsInOrder(t *testing.T) {
	s := &Store{}
	s.Add(0x10, 1, 0x01)
	s.Add(0x20, 2, 0x02)
	got := s.QueryByMask(0xFF)
	assert.Equal(t, uint16(0x10), got[0].Value.Pcode)
	assert.Equal(t, uint16(0x20), got[1].Value.Pcode)
}
