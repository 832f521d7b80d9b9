// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package service

import (
	"context"

	"github.com/thinkgos/udsecusim/internal/nrc"
)

// RequestUpload implements SID 0x35 as an unconditional stub: the
// simulator has no upload path, so every request is rejected outright.
type RequestUpload struct{}

const sidRequestUpload = 0x35

var requestUploadSupported = map[nrc.Code]struct{}{
	nrc.GeneralReject: {},
}

func (RequestUpload) SID() byte { return sidRequestUpload }

func (h RequestUpload) Process(_ context.Context, request []byte) ([]byte, error) {
	if request[0] != h.SID() {
		return nil, badSID(request[0], h.SID())
	}
	return negativeResponse(h.SID(), requestUploadSupported, nrc.GeneralReject), nil
}
