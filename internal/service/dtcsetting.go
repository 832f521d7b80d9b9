// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package service

import (
	"context"

	"github.com/thinkgos/udsecusim/internal/nrc"
)

// ControlDTCSetting implements SID 0x85. The simulator does not actually
// suspend DTC recording when settings are turned off; there is no
// fault-injection path to suspend in the first place.
type ControlDTCSetting struct{}

const sidControlDTCSetting = 0x85

const (
	dtcSettingISOSAEReserved = 0
	dtcSettingOn             = 1
	dtcSettingOff            = 2
)

var controlDTCSettingSupported = map[nrc.Code]struct{}{
	nrc.RequestOutOfRange: {},
}

func (ControlDTCSetting) SID() byte { return sidControlDTCSetting }

func (h ControlDTCSetting) Process(_ context.Context, request []byte) ([]byte, error) {
	if request[0] != h.SID() {
		return nil, badSID(request[0], h.SID())
	}
	if len(request) < 2 {
		return negativeResponse(h.SID(), controlDTCSettingSupported, nrc.RequestOutOfRange), nil
	}

	raw := request[1]
	setting := subFunction(raw)
	switch setting {
	case dtcSettingISOSAEReserved, dtcSettingOn, dtcSettingOff:
	default:
		return negativeResponse(h.SID(), controlDTCSettingSupported, nrc.RequestOutOfRange), nil
	}

	if suppressed(raw) {
		return nil, nil
	}
	return []byte{responseSID(h.SID()), setting}, nil
}
