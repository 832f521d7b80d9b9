// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package simulator runs the ECU's single receive loop: pull one
// reassembled UDS request off the transport, hand it to the dispatcher,
// send back whatever response (if any) comes out.
package simulator

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/thinkgos/udsecusim/internal/dispatcher"
	"github.com/thinkgos/udsecusim/internal/logging"
)

// Transport is what the receive loop needs from the ISO-TP layer. It is
// satisfied by *isotp.Stack; kept as an interface so tests can drive the
// loop with a fake instead of standing up a real CANConn.
type Transport interface {
	Recv(ctx context.Context) ([]byte, error)
	Send(ctx context.Context, payload []byte) error
}

// Simulator owns one Transport and the Dispatcher that answers it.
type Simulator struct {
	Transport  Transport
	Dispatcher *dispatcher.Dispatcher
	Log        logging.Log
}

// New builds a Simulator over transport and d.
func New(transport Transport, d *dispatcher.Dispatcher, log logging.Log) *Simulator {
	return &Simulator{Transport: transport, Dispatcher: d, Log: log}
}

// Run executes the receive loop until ctx is cancelled. A transport error
// (including an isotp.TimeoutError) is logged and the loop continues; it
// never exits the process over a single malformed or timed-out exchange.
func (s *Simulator) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		sessionID := uuid.New()
		sctx := context.WithValue(ctx, sessionKey{}, sessionID)

		request, err := s.Transport.Recv(sctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				if ctx.Err() != nil {
					return ctx.Err()
				}
			}
			s.Log.Error(sctx, "simulator: transport receive failed", "session", sessionID, "error", err)
			continue
		}

		s.Log.Info(sctx, "simulator: request received", "session", sessionID, "bytes", len(request))

		response := s.Dispatcher.Dispatch(sctx, request)
		if response == nil {
			continue
		}

		s.Log.Info(sctx, "simulator: sending response", "session", sessionID, "bytes", len(response))
		if err := s.Transport.Send(sctx, response); err != nil {
			s.Log.Error(sctx, "simulator: transport send failed", "session", sessionID, "error", err)
		}
	}
}

type sessionKey struct{}

// SessionID extracts the UUID correlating every log line produced while
// handling a single request, if ctx was derived from Run's loop.
func SessionID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(sessionKey{}).(uuid.UUID)
	return id, ok
}
