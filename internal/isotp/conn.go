// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package isotp

import (
	"context"
	"fmt"
)

// CANConn is the minimum a Stack needs from a CAN link: send one frame,
// receive the next one. Implementations are SocketCANConn (real hardware)
// and LoopbackConn (in-memory, for tests and -loopback mode).
type CANConn interface {
	Send(f CANFrame) error
	Recv(ctx context.Context) (CANFrame, error)
	Close() error
}

// LoopbackConn is an in-memory CANConn backed by a channel. Use
// NewLoopbackPair to get two ends that deliver each other's frames, as if
// both sides shared a bus.
type LoopbackConn struct {
	out chan<- CANFrame
	in  <-chan CANFrame
}

// NewLoopbackPair returns two connected ends of an in-memory bus. Frames
// sent on one are received on the other.
func NewLoopbackPair() (a, b *LoopbackConn) {
	ab := make(chan CANFrame, 64)
	ba := make(chan CANFrame, 64)
	a = &LoopbackConn{out: ab, in: ba}
	b = &LoopbackConn{out: ba, in: ab}
	return a, b
}

func (c *LoopbackConn) Send(f CANFrame) error {
	select {
	case c.out <- f:
		return nil
	default:
		return fmt.Errorf("isotp: loopback buffer full")
	}
}

func (c *LoopbackConn) Recv(ctx context.Context) (CANFrame, error) {
	select {
	case f := <-c.in:
		return f, nil
	case <-ctx.Done():
		return CANFrame{}, ctx.Err()
	}
}

func (c *LoopbackConn) Close() error { return nil }
