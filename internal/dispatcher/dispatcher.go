// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package dispatcher implements the static SID → handler map that routes
// every incoming UDS request to the service responsible for it. The map
// is built once at construction rather than resolved dynamically per
// request, so an unsupported SID is a cheap lookup miss, not a reflective
// failure.
package dispatcher

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/thinkgos/udsecusim/internal/did"
	"github.com/thinkgos/udsecusim/internal/download"
	"github.com/thinkgos/udsecusim/internal/dtc"
	"github.com/thinkgos/udsecusim/internal/logging"
	"github.com/thinkgos/udsecusim/internal/metrics"
	"github.com/thinkgos/udsecusim/internal/nrc"
	"github.com/thinkgos/udsecusim/internal/service"
)

// Dispatcher routes a UDS request to the handler for its first byte (the
// SID) and returns the handler's response, if any.
type Dispatcher struct {
	handlers map[byte]service.Handler
	log      logging.Log
	metrics  *metrics.Registry
	dtcStore *dtc.Store
	download *download.State
}

// Deps bundles the shared process-wide state every handler is
// constructed against: the DID table, the DTC store, the download
// session, and the security-access level, each owned by the caller and
// injected here rather than reached through a package-level singleton.
type Deps struct {
	DIDTable *did.Table
	DTCStore *dtc.Store
	Download *download.State
	Security *service.SecurityState
	Log      logging.Log
	Metrics  *metrics.Registry
}

// New builds the fixed SID → handler map for every supported service
// identifier, plus the RequestUpload stub.
func New(d Deps) *Dispatcher {
	handlers := map[byte]service.Handler{
		0x10: service.DiagnosticSessionControl{},
		0x11: service.ECUReset{Log: d.Log},
		0x14: service.ClearDiagnosticInformation{Store: d.DTCStore},
		0x19: service.ReadDTCInformation{Store: d.DTCStore},
		0x22: service.ReadDataByIdentifier{Table: d.DIDTable},
		0x27: service.SecurityAccess{State: d.Security},
		0x28: service.CommunicationControl{},
		0x2E: service.WriteDataByIdentifier{Table: d.DIDTable},
		0x31: service.RoutineControl{Download: d.Download},
		0x34: service.RequestDownload{Download: d.Download},
		0x35: service.RequestUpload{},
		0x36: service.TransferData{Download: d.Download},
		0x37: service.RequestTransferExit{},
		0x3E: service.TesterPresent{},
		0x85: service.ControlDTCSetting{},
	}
	return &Dispatcher{
		handlers: handlers,
		log:      d.Log,
		metrics:  d.Metrics,
		dtcStore: d.DTCStore,
		download: d.Download,
	}
}

// Dispatch routes request to its handler and returns the response bytes,
// if any. An empty request, an unknown SID, or a panicking handler all
// result in a nil response and are logged, never a crash of the caller's
// receive loop.
func (d *Dispatcher) Dispatch(ctx context.Context, request []byte) (response []byte) {
	if len(request) == 0 {
		d.log.Warn(ctx, "dispatcher: empty request")
		return nil
	}

	sid := request[0]
	d.metrics.IncRequest(sid)

	h, ok := d.handlers[sid]
	if !ok {
		d.log.Warn(ctx, "dispatcher: unknown sid, no response", "sid", fmt.Sprintf("0x%02X", sid))
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			d.log.Critical(ctx, "dispatcher: handler panicked", "sid", fmt.Sprintf("0x%02X", sid), "panic", r, "stack", string(debug.Stack()))
			response = nil
		}
	}()

	resp, err := h.Process(ctx, request)
	if err != nil {
		d.log.Critical(ctx, "dispatcher: handler reported a routing fault", "sid", fmt.Sprintf("0x%02X", sid), "error", err)
		return nil
	}
	if resp != nil && len(resp) >= 3 && resp[0] == 0x7F {
		d.metrics.IncNegativeResponse(nrc.Code(resp[2]))
	}
	d.refreshGauges()
	return resp
}

// refreshGauges reflects the DTC store size and download-session active
// flag after every dispatch, since either can change as a side effect of
// a handler's work rather than being tied to the request that caused it.
func (d *Dispatcher) refreshGauges() {
	if d.dtcStore != nil {
		d.metrics.SetDTCCount(d.dtcStore.Len())
	}
	if d.download != nil {
		d.metrics.SetDownloadActive(d.download.Active())
	}
}
