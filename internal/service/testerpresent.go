// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package service

import "context"

// TesterPresent implements SID 0x3E. Any sub-function value is accepted;
// only the suppress bit matters.
type TesterPresent struct{}

const sidTesterPresent = 0x3E

func (TesterPresent) SID() byte { return sidTesterPresent }

func (h TesterPresent) Process(_ context.Context, request []byte) ([]byte, error) {
	if request[0] != h.SID() {
		return nil, badSID(request[0], h.SID())
	}
	if len(request) < 2 {
		return []byte{responseSID(h.SID()), 0x00}, nil
	}

	if suppressed(request[1]) {
		return nil, nil
	}
	return []byte{responseSID(h.SID()), 0x00}, nil
}
