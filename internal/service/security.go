// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package service

import (
	"context"
	"sync"

	"github.com/thinkgos/udsecusim/internal/nrc"
)

// SecurityState tracks the single current unlock level. Security access
// is not cryptographically meaningful here: the seed is a fixed constant
// and nothing else in the simulator checks the level it records. A real
// ECU would validate a key derived from the seed; this one only tracks
// which level was last requested, for the key response's echo.
type SecurityState struct {
	mu    sync.Mutex
	level byte
}

func (s *SecurityState) record(level byte) {
	s.mu.Lock()
	s.level = level
	s.mu.Unlock()
}

func (s *SecurityState) current() byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// SecurityAccess implements SID 0x27.
type SecurityAccess struct {
	State *SecurityState
}

const sidSecurityAccess = 0x27

// Odd sub-functions request a seed for the corresponding level; even
// sub-functions submit the key for the level one below.
const (
	seedLevel1 = 1
	seedLevel2 = 3
	seedLevel3 = 5
	seedLevel4 = 7
	keyLevel1  = 2
	keyLevel2  = 4
	keyLevel3  = 6
	keyLevel4  = 8
)

var fixedSeed = [4]byte{1, 2, 3, 4}

var securityAccessSupported = map[nrc.Code]struct{}{
	nrc.RequestOutOfRange: {},
}

func (SecurityAccess) SID() byte { return sidSecurityAccess }

func (h SecurityAccess) Process(_ context.Context, request []byte) ([]byte, error) {
	if request[0] != h.SID() {
		return nil, badSID(request[0], h.SID())
	}
	if len(request) < 2 {
		return negativeResponse(h.SID(), securityAccessSupported, nrc.RequestOutOfRange), nil
	}

	raw := request[1]
	level := subFunction(raw)

	switch level {
	case seedLevel1, seedLevel2, seedLevel3, seedLevel4:
		h.State.record(level)
		if suppressed(raw) {
			return nil, nil
		}
		return []byte{responseSID(h.SID()), level, fixedSeed[0], fixedSeed[1], fixedSeed[2], fixedSeed[3]}, nil
	case keyLevel1, keyLevel2, keyLevel3, keyLevel4:
		unlocked := h.State.current() + 1
		if suppressed(raw) {
			return nil, nil
		}
		return []byte{responseSID(h.SID()), unlocked}, nil
	default:
		return negativeResponse(h.SID(), securityAccessSupported, nrc.RequestOutOfRange), nil
	}
}
