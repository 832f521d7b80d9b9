// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package service

import (
	"context"
	"encoding/binary"

	"github.com/thinkgos/udsecusim/internal/download"
)

// RoutineControl implements SID 0x31. Only StartRoutine against
// EraseFlash and CheckMemory is meaningful; other routine/sub-function
// combinations fall through without a response rather than inventing a
// negative response for a combination no tester is expected to send.
type RoutineControl struct {
	Download *download.State
}

const sidRoutineControl = 0x31

const (
	routineStartRoutine         = 1
	routineStopRoutine          = 2
	routineRequestResults       = 3
	routineIDEraseFlash   = 0x1122
	routineIDCheckMemory  = 0x3344
	routineStatusSucceed  = 0x01
)

func (RoutineControl) SID() byte { return sidRoutineControl }

func (h RoutineControl) Process(_ context.Context, request []byte) ([]byte, error) {
	if request[0] != h.SID() {
		return nil, badSID(request[0], h.SID())
	}
	if len(request) < 4 {
		return nil, nil
	}

	subfunc := request[1]
	routineID := uint16(request[2])<<8 | uint16(request[3])
	option := request[4:]

	if subfunc != routineStartRoutine {
		return nil, nil
	}

	switch routineID {
	case routineIDEraseFlash:
		if len(option) < 8 {
			return nil, nil
		}
		start := binary.BigEndian.Uint32(option[0:4])
		size := binary.BigEndian.Uint32(option[4:8])
		h.Download.StartErase(start, size)
		return []byte{responseSID(h.SID()), subfunc, request[2], request[3], routineStatusSucceed}, nil
	case routineIDCheckMemory:
		return []byte{responseSID(h.SID()), subfunc, request[2], request[3], routineStatusSucceed}, nil
	default:
		return nil, nil
	}
}
