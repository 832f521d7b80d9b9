// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package isotp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPair() (tester, ecu *Stack) {
	a, b := NewLoopbackPair()
	// tester sends on 0x7E0, listens on 0x7E8; ecu is the mirror image.
	tester = NewStack(a, Address{RxID: 0x7E8, TxID: 0x7E0})
	ecu = NewStack(b, Address{RxID: 0x7E0, TxID: 0x7E8})
	return tester, ecu
}

func TestSingleFrameRoundTrip(t *testing.T) {
	tester, ecu := testPair()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	payload := []byte{0x3E, 0x00}
	require.NoError(t, tester.Send(ctx, payload))

	got, err := ecu.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestMultiFrameRoundTrip(t *testing.T) {
	tester, ecu := testPair()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	payload := make([]byte, 40)
	for i := range payload {
		payload[i] = byte(i)
	}

	done := make(chan error, 1)
	go func() { done <- tester.Send(ctx, payload) }()

	got, err := ecu.Recv(ctx)
	require.NoError(t, err)
	require.NoError(t, <-done)
	assert.Equal(t, payload, got)
}

func TestMultiFrameExactMultipleOfConsecutiveLen(t *testing.T) {
	tester, ecu := testPair()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// 6 (first frame) + 2*7 (two consecutive frames) = 20 bytes exactly.
	payload := make([]byte, 20)
	for i := range payload {
		payload[i] = byte(0xA0 + i)
	}

	done := make(chan error, 1)
	go func() { done <- tester.Send(ctx, payload) }()

	got, err := ecu.Recv(ctx)
	require.NoError(t, err)
	require.NoError(t, <-done)
	assert.Equal(t, payload, got)
}

func TestRecvIgnoresFramesForOtherIDs(t *testing.T) {
	a, b := NewLoopbackPair()
	tester := NewStack(a, Address{RxID: 0x7E8, TxID: 0x7E0})
	ecu := NewStack(b, Address{RxID: 0x7E0, TxID: 0x7E8})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// A frame from some other node on the bus, addressed to neither side.
	require.NoError(t, a.Send(CANFrame{ID: 0x123, Data: []byte{0x00, 0xAA}}))
	require.NoError(t, tester.Send(ctx, []byte{0x3E, 0x00}))

	got, err := ecu.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x3E, 0x00}, got)
}

func TestSendTimesOutWithoutFlowControl(t *testing.T) {
	a, _ := NewLoopbackPair()
	tester := NewStack(a, Address{RxID: 0x7E8, TxID: 0x7E0})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := tester.Send(ctx, make([]byte, 20))
	require.Error(t, err)
	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "flow-control", te.Stage)
}
