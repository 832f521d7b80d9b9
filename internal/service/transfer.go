// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package service

import (
	"context"

	"github.com/thinkgos/udsecusim/internal/download"
	"github.com/thinkgos/udsecusim/internal/nrc"
)

// lengthFormatIdentifier is the fixed value the simulator always echoes
// in the RequestDownload positive response.
const lengthFormatIdentifier = 0x20

// RequestDownload implements SID 0x34.
type RequestDownload struct {
	Download *download.State
}

const sidRequestDownload = 0x34

var requestDownloadSupported = map[nrc.Code]struct{}{
	nrc.GeneralReject:         {},
	nrc.RequestSequenceError:  {},
	nrc.TransferDataSuspended: {},
}

func (RequestDownload) SID() byte { return sidRequestDownload }

func (h RequestDownload) Process(_ context.Context, request []byte) ([]byte, error) {
	if request[0] != h.SID() {
		return nil, badSID(request[0], h.SID())
	}
	if len(request) < 3 {
		h.Download.Reset()
		return negativeResponse(h.SID(), requestDownloadSupported, nrc.GeneralReject), nil
	}

	alfi := request[2]
	addressWidth := int(alfi & 0x0F)
	sizeWidth := int(alfi >> 4)
	reserved := request[3:]
	if len(reserved) < addressWidth+sizeWidth {
		h.Download.Reset()
		return negativeResponse(h.SID(), requestDownloadSupported, nrc.GeneralReject), nil
	}

	address := beUint64(reserved[:addressWidth])
	size := beUint64(reserved[addressWidth : addressWidth+sizeWidth])
	h.Download.StartDownload(address, size)

	return []byte{
		responseSID(h.SID()),
		lengthFormatIdentifier,
		byte(download.MaxBlockLength >> 8), byte(download.MaxBlockLength),
	}, nil
}

func beUint64(b []byte) uint64 {
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return v
}

// TransferData implements SID 0x36.
type TransferData struct {
	Download *download.State
}

const sidTransferData = 0x36

var transferDataSupported = map[nrc.Code]struct{}{
	nrc.RequestSequenceError:  {},
	nrc.TransferDataSuspended: {},
}

func (TransferData) SID() byte { return sidTransferData }

func (h TransferData) Process(_ context.Context, request []byte) ([]byte, error) {
	if request[0] != h.SID() {
		return nil, badSID(request[0], h.SID())
	}
	if len(request) < 2 {
		h.Download.Reset()
		return negativeResponse(h.SID(), transferDataSupported, nrc.RequestSequenceError), nil
	}

	blockCounter := request[1]
	data := request[2:]

	if !h.Download.Active() {
		return negativeResponse(h.SID(), transferDataSupported, nrc.RequestSequenceError), nil
	}
	if blockCounter != h.Download.NextExpectedBlock() {
		h.Download.Reset()
		return negativeResponse(h.SID(), transferDataSupported, nrc.RequestSequenceError), nil
	}
	if 2+len(data) > int(download.MaxBlockLength) {
		h.Download.Reset()
		return negativeResponse(h.SID(), transferDataSupported, nrc.TransferDataSuspended), nil
	}

	h.Download.AppendBlock(blockCounter, data)
	return []byte{responseSID(h.SID()), blockCounter}, nil
}

// RequestTransferExit implements SID 0x37.
type RequestTransferExit struct{}

const sidRequestTransferExit = 0x37

func (RequestTransferExit) SID() byte { return sidRequestTransferExit }

func (h RequestTransferExit) Process(_ context.Context, request []byte) ([]byte, error) {
	if request[0] != h.SID() {
		return nil, badSID(request[0], h.SID())
	}
	return []byte{responseSID(h.SID())}, nil
}
