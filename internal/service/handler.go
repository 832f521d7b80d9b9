// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package service implements one handler per supported UDS service
// identifier. Each handler is a small struct satisfying a narrow
// interface rather than a class hierarchy, sharing a few free functions
// for the framing rules every sub-function service follows.
package service

import (
	"context"

	"github.com/thinkgos/udsecusim/internal/nrc"
)

// Handler parses a UDS request addressed to its own SID and produces a
// response. A nil response with a nil error means "do not transmit" — the
// suppress-positive-response case. A non-nil error indicates request
// bytes that were routed to the wrong handler, a dispatcher bug that must
// never happen in production; callers should treat it as fatal.
type Handler interface {
	SID() byte
	Process(ctx context.Context, request []byte) ([]byte, error)
}

// suppressed reports whether bit 7 of a sub-function byte requests
// suppression of the positive response.
func suppressed(raw byte) bool {
	return raw&0x80 != 0
}

// subFunction masks off the suppress-positive-response bit, leaving the
// 7-bit sub-function value to compare against an enumeration.
func subFunction(raw byte) byte {
	return raw & 0x7F
}

// responseSID returns the positive-response SID, request SID | 0x40.
func responseSID(sid byte) byte {
	return sid + 0x40
}

// negativeResponse builds {0x7F, sid, code}, after verifying code is one
// this handler is actually allowed to emit. An unsupported code is a
// programming error and panics rather than going out on the wire; the
// dispatcher recovers from it.
func negativeResponse(sid byte, supported map[nrc.Code]struct{}, code nrc.Code) []byte {
	if !nrc.IsSupported(code, supported) {
		panic("service: nrc " + nrc.Name(code) + " not declared supported for sid")
	}
	return []byte{0x7F, sid, byte(code)}
}

// badSID reports the dispatcher-bug case: the first request byte does
// not match the handler it was routed to.
func badSID(got, want byte) error {
	return &wrongSIDError{got: got, want: want}
}

type wrongSIDError struct {
	got, want byte
}

func (e *wrongSIDError) Error() string {
	return "service: request sid does not match handler sid"
}
