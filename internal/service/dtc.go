// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package service

import (
	"context"

	"github.com/thinkgos/udsecusim/internal/dtc"
	"github.com/thinkgos/udsecusim/internal/nrc"
)

// ClearDiagnosticInformation implements SID 0x14.
type ClearDiagnosticInformation struct {
	Store *dtc.Store
}

const sidClearDiagnosticInformation = 0x14

var clearDiagnosticInformationSupported = map[nrc.Code]struct{}{
	nrc.GeneralReject: {},
}

func (ClearDiagnosticInformation) SID() byte { return sidClearDiagnosticInformation }

func (h ClearDiagnosticInformation) Process(_ context.Context, request []byte) ([]byte, error) {
	if len(request) < 4 {
		return negativeResponse(h.SID(), clearDiagnosticInformationSupported, nrc.GeneralReject), nil
	}
	if request[0] != h.SID() {
		return nil, badSID(request[0], h.SID())
	}

	groupHi, groupMid, groupLo := request[1], request[2], request[3]
	if groupHi == 0xFF && groupMid == 0xFF && groupLo == 0xFF {
		h.Store.ClearAll()
	}
	return []byte{responseSID(h.SID())}, nil
}

// ReadDTCInformation implements SID 0x19. Only reportDTCByStatusMask
// (sub-function 0x02) is handled; its positive response follows the
// conventional ISO 14229-1 encoding for that report type: the echoed
// sub-function, a fixed DTC availability mask byte (0xFF), then one
// 4-byte record per matching DTC.
type ReadDTCInformation struct {
	Store *dtc.Store
}

const sidReadDTCInformation = 0x19

const (
	reportDTCByStatusMask = 0x02
	dtcAvailabilityMask   = 0xFF
)

var readDTCInformationSupported = map[nrc.Code]struct{}{
	nrc.GeneralReject:      {},
	nrc.RequestOutOfRange:  {},
}

func (ReadDTCInformation) SID() byte { return sidReadDTCInformation }

func (h ReadDTCInformation) Process(_ context.Context, request []byte) ([]byte, error) {
	if len(request) < 3 {
		return negativeResponse(h.SID(), readDTCInformationSupported, nrc.GeneralReject), nil
	}
	if request[0] != h.SID() {
		return nil, badSID(request[0], h.SID())
	}

	subfunc := request[1]
	if subfunc != reportDTCByStatusMask {
		return negativeResponse(h.SID(), readDTCInformationSupported, nrc.RequestOutOfRange), nil
	}

	mask := dtc.Status(request[2])
	matched := h.Store.QueryByMask(mask)

	res := []byte{responseSID(h.SID()), reportDTCByStatusMask, dtcAvailabilityMask}
	for _, d := range matched {
		enc := d.Value.Encode()
		res = append(res, enc[0], enc[1], enc[2], byte(d.Status))
	}
	return res, nil
}
