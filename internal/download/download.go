// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package download implements the EOL (end-of-line programming) firmware
// transfer session state machine: the variables driven by
// RoutineControl/EraseFlash, RequestDownload, TransferData and
// RequestTransferExit. It is a plain struct owned by the simulator and
// injected into handler constructors rather than a package-level
// singleton, so tests get a fresh session per case for free.
package download

import (
	"sync"

	"github.com/google/uuid"
	abool "github.com/tevino/abool/v2"
)

// MaxBlockLength is the fixed maximum TransferData block length
// (0x0FFF), matching the RequestDownload positive response.
const MaxBlockLength uint16 = 0x0FFF

// State holds the download session's variables. active is an
// abool.AtomicBool rather than a plain bool: it is read on every
// TransferData request and only written on Reset/StartDownload, so an
// atomic flag avoids taking the mutex on the hot path while the rest of
// the struct (touched far less often) stays behind the lock.
type State struct {
	active abool.AtomicBool

	mu              sync.Mutex
	sessionID       uuid.UUID
	startAddress    uint64
	transferredSize uint64 // declared size from RequestDownload
	revCount        uint64 // cumulative bytes actually received
	blockCount      uint8  // last accepted TransferData block sequence counter
	buffer          []byte
	eraseStart      uint32
	eraseSize       uint32
}

// New returns a freshly reset State.
func New() *State {
	return &State{}
}

// Reset restores every field to its initial value. It is invoked
// explicitly on erase-routine start and on any error detected mid-download.
func (s *State) Reset() {
	s.active.UnSet()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = uuid.UUID{}
	s.startAddress = 0
	s.transferredSize = 0
	s.revCount = 0
	s.blockCount = 0
	s.buffer = nil
	s.eraseStart = 0
	s.eraseSize = 0
}

// Active reports whether a download session is in progress.
func (s *State) Active() bool {
	return s.active.IsSet()
}

// StartErase records the EraseFlash routine's option record after
// resetting the session.
func (s *State) StartErase(start, size uint32) {
	s.Reset()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eraseStart = start
	s.eraseSize = size
}

// StartDownload activates the session with the address/size parsed from
// RequestDownload and assigns a fresh correlation id.
func (s *State) StartDownload(startAddress, declaredSize uint64) uuid.UUID {
	s.mu.Lock()
	s.sessionID = uuid.New()
	s.startAddress = startAddress
	s.transferredSize = declaredSize
	s.revCount = 0
	s.blockCount = 0
	s.buffer = nil
	id := s.sessionID
	s.mu.Unlock()

	s.active.Set()
	return id
}

// NextExpectedBlock returns the block sequence counter TransferData must
// see next: (blockCount + 1) mod 256, wrapping 0xFF back to 0x00 via
// plain unsigned overflow.
func (s *State) NextExpectedBlock() uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blockCount + 1
}

// AppendBlock appends data to the receive buffer and advances the block
// counter to received. The caller is responsible for having already
// validated received against NextExpectedBlock and the max-block-length
// bound; AppendBlock itself just performs the mutation.
func (s *State) AppendBlock(received uint8, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer = append(s.buffer, data...)
	s.revCount += uint64(len(data))
	s.blockCount = received
}

// Snapshot is a read-only copy of State used by logging and tests.
type Snapshot struct {
	Active          bool
	SessionID       uuid.UUID
	StartAddress    uint64
	TransferredSize uint64
	RevCount        uint64
	BlockCount      uint8
	BufferLen       int
	EraseStart      uint32
	EraseSize       uint32
}

// Snapshot returns a consistent copy of the current state.
func (s *State) Snapshot() Snapshot {
	active := s.Active()
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Active:          active,
		SessionID:       s.sessionID,
		StartAddress:    s.startAddress,
		TransferredSize: s.transferredSize,
		RevCount:        s.revCount,
		BlockCount:      s.blockCount,
		BufferLen:       len(s.buffer),
		EraseStart:      s.eraseStart,
		EraseSize:       s.eraseSize,
	}
}
