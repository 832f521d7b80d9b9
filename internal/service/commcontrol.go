// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package service

import (
	"context"

	"github.com/thinkgos/udsecusim/internal/nrc"
)

// CommunicationControl implements SID 0x28. The simulator does not
// actually gate any receive/transmit path on this setting; it is echoed
// back for tester conformance only.
type CommunicationControl struct{}

const sidCommunicationControl = 0x28

const (
	commEnableRxAndTx        = 0
	commEnableRxDisableTx    = 1
	commDisableRxEnableTx    = 2
	commDisableRxAndTx       = 3
)

var communicationControlSupported = map[nrc.Code]struct{}{
	nrc.RequestOutOfRange: {},
}

func (CommunicationControl) SID() byte { return sidCommunicationControl }

func (h CommunicationControl) Process(_ context.Context, request []byte) ([]byte, error) {
	if request[0] != h.SID() {
		return nil, badSID(request[0], h.SID())
	}
	if len(request) < 3 {
		return negativeResponse(h.SID(), communicationControlSupported, nrc.RequestOutOfRange), nil
	}

	raw := request[1]
	controlType := subFunction(raw)
	switch controlType {
	case commEnableRxAndTx, commEnableRxDisableTx, commDisableRxEnableTx, commDisableRxAndTx:
	default:
		return negativeResponse(h.SID(), communicationControlSupported, nrc.RequestOutOfRange), nil
	}

	if suppressed(raw) {
		return nil, nil
	}
	return []byte{responseSID(h.SID()), controlType}, nil
}
