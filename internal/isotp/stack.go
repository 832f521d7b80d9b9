// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package isotp

import (
	"context"
	"fmt"
)

// TimeoutError reports that a Stack gave up waiting for a flow control
// frame or a consecutive frame within the configured timeout.
type TimeoutError struct {
	Stage string // "flow-control" or "consecutive-frame"
	Cause error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("isotp: timed out waiting for %s: %v", e.Stage, e.Cause)
}

func (e *TimeoutError) Unwrap() error { return e.Cause }

// Stack is a single ISO-TP endpoint: it segments outgoing UDS messages
// into CAN frames on Addr.TxID and reassembles incoming ones from
// Addr.RxID, driving a CANConn underneath.
type Stack struct {
	conn CANConn
	addr Address
}

// NewStack builds a Stack over conn, addressed per addr.
func NewStack(conn CANConn, addr Address) *Stack {
	return &Stack{conn: conn, addr: addr}
}

// Close releases the underlying connection.
func (s *Stack) Close() error { return s.conn.Close() }

// Send transports payload to the peer, segmenting it into a single frame
// or a first-frame/consecutive-frame sequence as needed.
func (s *Stack) Send(ctx context.Context, payload []byte) error {
	if len(payload) > maxPayloadLen {
		return fmt.Errorf("isotp: payload of %d bytes exceeds max %d", len(payload), maxPayloadLen)
	}
	if len(payload) <= maxSingleFrameLen {
		return s.conn.Send(encodeSingleFrame(s.addr.TxID, payload))
	}

	if err := s.conn.Send(encodeFirstFrame(s.addr.TxID, len(payload), payload[:firstFrameDataLen])); err != nil {
		return err
	}
	remaining := payload[firstFrameDataLen:]

	fcCtx, cancel := context.WithTimeout(ctx, RxFlowControlTimeout)
	fc, err := s.recvFrom(fcCtx, s.addr.RxID)
	cancel()
	if err != nil {
		return &TimeoutError{Stage: "flow-control", Cause: err}
	}
	if frameType(fc) != pciFlowControlFrame {
		return fmt.Errorf("isotp: expected flow control frame, got PCI %#x", fc.Data[0]>>4)
	}
	status, _, _, err := decodeFlowControl(fc)
	if err != nil {
		return err
	}
	if status != fcContinueToSend {
		return fmt.Errorf("isotp: peer flow control status %#x, not continue-to-send", status)
	}

	seq := byte(1)
	for len(remaining) > 0 {
		n := consecutiveFrameDataLen
		if n > len(remaining) {
			n = len(remaining)
		}
		if err := s.conn.Send(encodeConsecutiveFrame(s.addr.TxID, seq, remaining[:n])); err != nil {
			return err
		}
		remaining = remaining[n:]
		seq = (seq + 1) & 0x0F
	}
	return nil
}

// Recv reassembles the next complete payload addressed to s.addr.RxID,
// replying with a flow control frame on s.addr.TxID when a multi-frame
// message begins.
func (s *Stack) Recv(ctx context.Context) ([]byte, error) {
	f, err := s.recvFrom(ctx, s.addr.RxID)
	if err != nil {
		return nil, err
	}

	switch frameType(f) {
	case pciSingleFrame:
		return decodeSingleFrame(f)
	case pciFirstFrame:
		totalLen, chunk, err := decodeFirstFrame(f)
		if err != nil {
			return nil, err
		}
		payload := make([]byte, 0, totalLen)
		payload = append(payload, chunk...)

		if err := s.conn.Send(encodeFlowControl(s.addr.TxID)); err != nil {
			return nil, err
		}

		expectedSeq := byte(1)
		for len(payload) < totalLen {
			cfCtx, cancel := context.WithTimeout(ctx, RxConsecutiveFrameTimeout)
			cf, err := s.recvFrom(cfCtx, s.addr.RxID)
			cancel()
			if err != nil {
				return nil, &TimeoutError{Stage: "consecutive-frame", Cause: err}
			}
			if frameType(cf) != pciConsecutiveFrame {
				return nil, fmt.Errorf("isotp: expected consecutive frame, got PCI %#x", cf.Data[0]>>4)
			}
			seq, chunk, err := decodeConsecutiveFrame(cf)
			if err != nil {
				return nil, err
			}
			if seq != expectedSeq {
				return nil, fmt.Errorf("isotp: consecutive frame sequence %d, expected %d", seq, expectedSeq)
			}
			payload = append(payload, chunk...)
			expectedSeq = (expectedSeq + 1) & 0x0F
		}
		if len(payload) > totalLen {
			payload = payload[:totalLen]
		}
		return payload, nil
	default:
		return nil, fmt.Errorf("isotp: unexpected PCI type %#x on a new message", f.Data[0]>>4)
	}
}

// recvFrom reads frames from conn until one arrives on id, discarding any
// addressed to a different CAN ID (normal-addressing buses carry traffic
// for other nodes too).
func (s *Stack) recvFrom(ctx context.Context, id uint32) (CANFrame, error) {
	for {
		f, err := s.conn.Recv(ctx)
		if err != nil {
			return CANFrame{}, err
		}
		if f.ID == id {
			return f, nil
		}
	}
}
