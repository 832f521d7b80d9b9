// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package service

import (
	"context"

	"github.com/thinkgos/udsecusim/internal/logging"
	"github.com/thinkgos/udsecusim/internal/nrc"
)

// ECUReset implements SID 0x11. An unrecognized reset type is logged but
// still answered positively, a deliberate departure from the stricter
// ISO conformance of returning SubFunctionNotSupported.
type ECUReset struct {
	Log logging.Log
}

const sidECUReset = 0x11

const (
	resetISOSAEReserved           = 0
	resetHard                     = 1
	resetKeyOffOn                 = 2
	resetSoft                     = 3
	resetEnableRapidPowerShutDown = 4
	resetDisableRapidPowerShutDown = 5
)

// powerDownTime is the fixed power-down-time byte returned for
// enableRapidPowerShutDown.
const powerDownTime = 0x3B

var ecuResetSupported = map[nrc.Code]struct{}{
	nrc.RequestOutOfRange: {},
}

func (ECUReset) SID() byte { return sidECUReset }

func (h ECUReset) Process(ctx context.Context, request []byte) ([]byte, error) {
	if request[0] != h.SID() {
		return nil, badSID(request[0], h.SID())
	}
	if len(request) < 2 {
		return negativeResponse(h.SID(), ecuResetSupported, nrc.RequestOutOfRange), nil
	}

	raw := request[1]
	resetType := subFunction(raw)
	switch resetType {
	case resetISOSAEReserved, resetHard, resetKeyOffOn, resetSoft, resetEnableRapidPowerShutDown, resetDisableRapidPowerShutDown:
	default:
		h.Log.Warn(ctx, "ECUReset: undefined reset type, responding anyway", "reset_type", resetType)
	}

	if suppressed(raw) {
		return nil, nil
	}
	if resetType == resetEnableRapidPowerShutDown {
		return []byte{responseSID(h.SID()), resetType, powerDownTime}, nil
	}
	return []byte{responseSID(h.SID()), resetType}, nil
}
