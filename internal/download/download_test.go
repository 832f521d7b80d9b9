// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package download

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStartDownloadActivates(t *testing.T) {
	s := New()
	assert.False(t, s.Active())

	id := s.StartDownload(0x00010000, 0x1000)
	assert.True(t, s.Active())
	assert.NotEqual(t, [16]byte{}, id)

	snap := s.Snapshot()
	assert.Equal(t, uint64(0x00010000), snap.StartAddress)
	assert.Equal(t, uint64(0x1000), snap.TransferredSize)
}

func TestResetClearsEverything(t *testing.T) {
	s := New()
	s.StartDownload(0x10, 0x20)
	s.AppendBlock(1, []byte{0xAA, 0xBB})

	s.Reset()
	assert.False(t, s.Active())
	snap := s.Snapshot()
	assert.Zero(t, snap.StartAddress)
	assert.Zero(t, snap.RevCount)
	assert.Zero(t, snap.BlockCount)
	assert.Zero(t, snap.BufferLen)
}

func TestBlockCounterWrapsModularly(t *testing.T) {
	s := New()
	s.StartDownload(0, 0)

	assert.Equal(t, uint8(1), s.NextExpectedBlock())

	// Drive the counter up to 0xFF and confirm it wraps to 0x00, not -1.
	var next uint8 = 1
	for i := 0; i < 255; i++ {
		s.AppendBlock(next, []byte{0x00})
		next = s.NextExpectedBlock()
	}
	assert.Equal(t, uint8(0), next)
}

func TestRevCountAccumulatesAcrossBlocks(t *testing.T) {
	s := New()
	s.StartDownload(0, 0)

	s.AppendBlock(1, []byte{0x01, 0x02})
	s.AppendBlock(2, []byte{0x03, 0x04})

	snap := s.Snapshot()
	assert.Equal(t, uint64(4), snap.RevCount)
	assert.Equal(t, uint8(2), snap.BlockCount)
	assert.Equal(t, 4, snap.BufferLen)
}

func TestStartEraseResetsThenRecordsFields(t *testing.T) {
	s := New()
	s.StartDownload(0x99, 0x99)

	s.StartErase(0x00010000, 0x1000)
	assert.False(t, s.Active())

	snap := s.Snapshot()
	assert.Equal(t, uint32(0x00010000), snap.EraseStart)
	assert.Equal(t, uint32(0x1000), snap.EraseSize)
	assert.Zero(t, snap.StartAddress)
}
