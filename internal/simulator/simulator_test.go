// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package simulator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thinkgos/udsecusim/internal/did"
	"github.com/thinkgos/udsecusim/internal/dispatcher"
	"github.com/thinkgos/udsecusim/internal/download"
	"github.com/thinkgos/udsecusim/internal/dtc"
	"github.com/thinkgos/udsecusim/internal/logging"
	"github.com/thinkgos/udsecusim/internal/service"
)

// fakeTransport feeds a fixed queue of requests to the receive loop and
// records every response sent back, so tests can assert on dispatcher
// wiring without a real isotp.Stack.
type fakeTransport struct {
	requests  [][]byte
	responses chan []byte
}

func (f *fakeTransport) Recv(ctx context.Context) ([]byte, error) {
	if len(f.requests) == 0 {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	req := f.requests[0]
	f.requests = f.requests[1:]
	return req, nil
}

func (f *fakeTransport) Send(ctx context.Context, payload []byte) error {
	f.responses <- payload
	return nil
}

func newTestDispatcher() *dispatcher.Dispatcher {
	return dispatcher.New(dispatcher.Deps{
		DIDTable: did.NewTable(),
		DTCStore: dtc.NewStore(),
		Download: download.New(),
		Security: &service.SecurityState{},
		Log:      logging.New(nil, 0),
	})
}

func TestRunDispatchesRequestAndSendsResponse(t *testing.T) {
	transport := &fakeTransport{
		requests:  [][]byte{{0x3E, 0x00}},
		responses: make(chan []byte, 1),
	}
	sim := New(transport, newTestDispatcher(), logging.New(nil, 0))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := sim.Run(ctx)
	require.True(t, errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled))

	select {
	case resp := <-transport.responses:
		assert.Equal(t, []byte{0x7E, 0x00}, resp)
	default:
		t.Fatal("expected a response to have been sent")
	}
}

func TestRunSkipsSendWhenSuppressed(t *testing.T) {
	transport := &fakeTransport{
		requests:  [][]byte{{0x3E, 0x80}},
		responses: make(chan []byte, 1),
	}
	sim := New(transport, newTestDispatcher(), logging.New(nil, 0))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_ = sim.Run(ctx)

	select {
	case resp := <-transport.responses:
		t.Fatalf("expected no response, got %v", resp)
	default:
	}
}

func TestSessionIDAbsentFromBareContext(t *testing.T) {
	_, ok := SessionID(context.Background())
	assert.False(t, ok)
}

func TestSessionIDRoundTripsThroughContextValue(t *testing.T) {
	id := uuid.New()
	ctx := context.WithValue(context.Background(), sessionKey{}, id)
	got, ok := SessionID(ctx)
	require.True(t, ok)
	assert.Equal(t, id, got)
}
