// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

//go:build linux

package isotp

import (
	"context"
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"
)

// canFrameWireLen is sizeof(struct can_frame) on Linux: a 4-byte can_id,
// a length byte, three reserved/padding bytes, then 8 data bytes.
const canFrameWireLen = 16

// SocketCANConn is a CANConn backed by a Linux AF_CAN/SOCK_RAW socket
// bound to a named interface (e.g. "can0").
type SocketCANConn struct {
	fd     int
	frames chan CANFrame
	errs   chan error
	done   chan struct{}
}

// NewSocketCANConn opens and binds a raw CAN socket on iface.
func NewSocketCANConn(iface string) (*SocketCANConn, error) {
	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil, fmt.Errorf("isotp: open CAN socket: %w", err)
	}

	ifi, err := unix.NewIfreq(iface)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("isotp: resolve interface %q: %w", iface, err)
	}
	if err := unix.IoctlIfreq(fd, unix.SIOCGIFINDEX, ifi); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("isotp: lookup ifindex for %q: %w", iface, err)
	}
	ifindex, err := ifi.Uint32()
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("isotp: read ifindex for %q: %w", iface, err)
	}

	addr := &unix.SockaddrCAN{Ifindex: int(ifindex)}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("isotp: bind to %q: %w", iface, err)
	}

	c := &SocketCANConn{
		fd:     fd,
		frames: make(chan CANFrame, 64),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *SocketCANConn) readLoop() {
	buf := make([]byte, canFrameWireLen)
	for {
		n, err := unix.Read(c.fd, buf)
		select {
		case <-c.done:
			return
		default:
		}
		if err != nil {
			select {
			case c.errs <- fmt.Errorf("isotp: socketcan read: %w", err):
			default:
			}
			return
		}
		if n < 5 {
			continue
		}
		id := binary.LittleEndian.Uint32(buf[0:4]) & unix.CAN_SFF_MASK
		length := int(buf[4])
		if length > 8 || 8+length > n {
			continue
		}
		data := append([]byte(nil), buf[8:8+length]...)
		c.frames <- CANFrame{ID: id, Data: data}
	}
}

func (c *SocketCANConn) Send(f CANFrame) error {
	buf := make([]byte, canFrameWireLen)
	binary.LittleEndian.PutUint32(buf[0:4], f.ID)
	buf[4] = byte(len(f.Data))
	copy(buf[8:], f.Data)
	_, err := unix.Write(c.fd, buf)
	if err != nil {
		return fmt.Errorf("isotp: socketcan write: %w", err)
	}
	return nil
}

func (c *SocketCANConn) Recv(ctx context.Context) (CANFrame, error) {
	select {
	case f := <-c.frames:
		return f, nil
	case err := <-c.errs:
		return CANFrame{}, err
	case <-ctx.Done():
		return CANFrame{}, ctx.Err()
	}
}

func (c *SocketCANConn) Close() error {
	close(c.done)
	return unix.Close(c.fd)
}
