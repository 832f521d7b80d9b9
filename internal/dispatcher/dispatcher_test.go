// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package dispatcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thinkgos/udsecusim/internal/did"
	"github.com/thinkgos/udsecusim/internal/download"
	"github.com/thinkgos/udsecusim/internal/dtc"
	"github.com/thinkgos/udsecusim/internal/logging"
	"github.com/thinkgos/udsecusim/internal/service"
)

func newTestDispatcher() *Dispatcher {
	return New(Deps{
		DIDTable: did.NewTable(),
		DTCStore: dtc.NewStore(),
		Download: download.New(),
		Security: &service.SecurityState{},
		Log:      logging.New(nil, 0),
	})
}

func TestDispatchKnownSID(t *testing.T) {
	d := newTestDispatcher()
	resp := d.Dispatch(context.Background(), []byte{0x3E, 0x00})
	assert.Equal(t, []byte{0x7E, 0x00}, resp)
}

func TestDispatchUnknownSIDReturnsNil(t *testing.T) {
	d := newTestDispatcher()
	resp := d.Dispatch(context.Background(), []byte{0xAB})
	assert.Nil(t, resp)
}

func TestDispatchEmptyRequestReturnsNil(t *testing.T) {
	d := newTestDispatcher()
	resp := d.Dispatch(context.Background(), nil)
	assert.Nil(t, resp)
}

func TestDispatchSuppressedSubFunctionReturnsNil(t *testing.T) {
	d := newTestDispatcher()
	resp := d.Dispatch(context.Background(), []byte{0x3E, 0x80})
	assert.Nil(t, resp)
}

// panicking is a handler stand-in used to verify the dispatcher recovers
// from a handler panic instead of propagating it. It overwrites the 0x10
// slot directly on the handlers map rather than going through New, since
// no real handler in this simulator panics under normal input.
type panicking struct{}

func (panicking) SID() byte { return 0x10 }
func (panicking) Process(context.Context, []byte) ([]byte, error) {
	panic("boom")
}

func TestDispatchRecoversHandlerPanic(t *testing.T) {
	d := newTestDispatcher()
	d.handlers[0x10] = panicking{}

	var resp []byte
	require.NotPanics(t, func() {
		resp = d.Dispatch(context.Background(), []byte{0x10, 0x01})
	})
	assert.Nil(t, resp)
}

func TestDispatchReportsWrongSIDRouting(t *testing.T) {
	d := newTestDispatcher()
	// service.TesterPresent is registered at 0x3E; feeding it a request
	// for a different handler's SID exercises the badSID error path.
	d.handlers[0x99] = service.TesterPresent{}
	resp := d.Dispatch(context.Background(), []byte{0x99, 0x00})
	assert.Nil(t, resp)
}

func TestDispatchUpdatesDTCStoreAndDownloadState(t *testing.T) {
	d := newTestDispatcher()
	require.Equal(t, 3, d.dtcStore.Len())

	d.Dispatch(context.Background(), []byte{0x14, 0xFF, 0xFF, 0xFF})
	assert.Equal(t, 0, d.dtcStore.Len())
	assert.False(t, d.download.Active())

	d.Dispatch(context.Background(), []byte{0x34, 0x00, 0x44, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x10, 0x00})
	assert.True(t, d.download.Active())
}
