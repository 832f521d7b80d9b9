// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package service

import (
	"context"

	"github.com/thinkgos/udsecusim/internal/nrc"
)

// DiagnosticSessionControl implements SID 0x10. The simulator is
// permissive about sessions: every defined session type is accepted and
// there is no per-session behavioural difference elsewhere.
type DiagnosticSessionControl struct{}

const sidDiagnosticSessionControl = 0x10

// Session types, ISO 14229-1 Table.
const (
	sessionISOSAEReserved = 0
	sessionDefault        = 1
	sessionProgramming    = 2
	sessionExtended       = 3
	sessionSafetySystem   = 4
)

var diagnosticSessionControlSupported = map[nrc.Code]struct{}{
	nrc.SubFunctionNotSupported:               {},
	nrc.IncorrectMessageLengthOrInvalidFormat: {},
	nrc.ConditionsNotCorrect:                  {},
	nrc.RequestOutOfRange:                     {},
}

// p2ServerMax and p2StarServerMax are the fixed timing parameters echoed
// in the positive response: 5000 ms and 2000 ms (encoded in 10 ms units,
// so 200).
const (
	p2ServerMax        = 5000
	p2StarServerMaxTen = 2000 / 10
)

func (DiagnosticSessionControl) SID() byte { return sidDiagnosticSessionControl }

func (h DiagnosticSessionControl) Process(_ context.Context, request []byte) ([]byte, error) {
	if request[0] != h.SID() {
		return nil, badSID(request[0], h.SID())
	}
	if len(request) < 2 {
		return negativeResponse(h.SID(), diagnosticSessionControlSupported, nrc.IncorrectMessageLengthOrInvalidFormat), nil
	}

	raw := request[1]
	session := subFunction(raw)
	switch session {
	case sessionISOSAEReserved, sessionDefault, sessionProgramming, sessionExtended, sessionSafetySystem:
	default:
		return negativeResponse(h.SID(), diagnosticSessionControlSupported, nrc.RequestOutOfRange), nil
	}

	if suppressed(raw) {
		return nil, nil
	}
	return []byte{
		responseSID(h.SID()),
		session,
		byte(p2ServerMax >> 8), byte(p2ServerMax),
		byte(p2StarServerMaxTen >> 8), byte(p2StarServerMaxTen),
	}, nil
}
