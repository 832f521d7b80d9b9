// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package service

import (
	"context"

	"github.com/thinkgos/udsecusim/internal/did"
	"github.com/thinkgos/udsecusim/internal/nrc"
)

// ReadDataByIdentifier implements SID 0x22. It has no sub-function; every
// well-formed request is answered.
type ReadDataByIdentifier struct {
	Table *did.Table
}

const sidReadDataByIdentifier = 0x22

var readDataByIdentifierSupported = map[nrc.Code]struct{}{
	nrc.RequestOutOfRange: {},
}

func (ReadDataByIdentifier) SID() byte { return sidReadDataByIdentifier }

func (h ReadDataByIdentifier) Process(_ context.Context, request []byte) ([]byte, error) {
	if request[0] != h.SID() {
		return nil, badSID(request[0], h.SID())
	}

	payload := request[1:]
	if len(payload)%2 != 0 || len(payload) < 2 {
		return negativeResponse(h.SID(), readDataByIdentifierSupported, nrc.RequestOutOfRange), nil
	}

	ids := make([]did.ID, 0, len(payload)/2)
	for i := 0; i < len(payload); i += 2 {
		id := did.ID(uint16(payload[i])<<8 | uint16(payload[i+1]))
		if !h.Table.Has(id) {
			return negativeResponse(h.SID(), readDataByIdentifierSupported, nrc.RequestOutOfRange), nil
		}
		ids = append(ids, id)
	}

	res := []byte{responseSID(h.SID())}
	for _, id := range ids {
		b, err := h.Table.Read(id)
		if err != nil {
			return negativeResponse(h.SID(), readDataByIdentifierSupported, nrc.RequestOutOfRange), nil
		}
		res = append(res, byte(id>>8), byte(id))
		res = append(res, b...)
	}
	return res, nil
}

// WriteDataByIdentifier implements SID 0x2E.
type WriteDataByIdentifier struct {
	Table *did.Table
}

const sidWriteDataByIdentifier = 0x2E

var writeDataByIdentifierSupported = map[nrc.Code]struct{}{
	nrc.RequestOutOfRange: {},
}

func (WriteDataByIdentifier) SID() byte { return sidWriteDataByIdentifier }

func (h WriteDataByIdentifier) Process(_ context.Context, request []byte) ([]byte, error) {
	if request[0] != h.SID() {
		return nil, badSID(request[0], h.SID())
	}

	payload := request[1:]
	if len(payload) <= 2 {
		return negativeResponse(h.SID(), writeDataByIdentifierSupported, nrc.RequestOutOfRange), nil
	}

	id := did.ID(uint16(payload[0])<<8 | uint16(payload[1]))
	codec, ok := h.Table.Codec(id)
	if !ok {
		return negativeResponse(h.SID(), writeDataByIdentifierSupported, nrc.RequestOutOfRange), nil
	}

	want := codec.Length()
	data := payload[2:]
	if len(data) < want {
		return negativeResponse(h.SID(), writeDataByIdentifierSupported, nrc.RequestOutOfRange), nil
	}
	if err := h.Table.Write(id, data[:want]); err != nil {
		return negativeResponse(h.SID(), writeDataByIdentifierSupported, nrc.RequestOutOfRange), nil
	}

	return []byte{responseSID(h.SID()), payload[0], payload[1]}, nil
}
