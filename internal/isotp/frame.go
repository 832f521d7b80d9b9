// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package isotp

import "fmt"

// pciType is the high nibble of an ISO-TP frame's first byte.
type pciType byte

const (
	pciSingleFrame       pciType = 0x0
	pciFirstFrame        pciType = 0x1
	pciConsecutiveFrame  pciType = 0x2
	pciFlowControlFrame  pciType = 0x3
)

// flow control status values (low nibble of byte 0 of an FC frame).
const (
	fcContinueToSend byte = 0x0
	fcWait           byte = 0x1
	fcOverflow       byte = 0x2
)

// CANFrame is one classic CAN frame: up to 8 data bytes addressed by ID.
type CANFrame struct {
	ID   uint32
	Data []byte
}

func frameType(f CANFrame) pciType {
	if len(f.Data) == 0 {
		return pciType(0xFF)
	}
	return pciType(f.Data[0] >> 4)
}

// encodeSingleFrame packs payload (<= 7 bytes) into one CAN frame.
func encodeSingleFrame(id uint32, payload []byte) CANFrame {
	data := make([]byte, 1+len(payload))
	data[0] = byte(pciSingleFrame)<<4 | byte(len(payload))
	copy(data[1:], payload)
	return CANFrame{ID: id, Data: data}
}

func decodeSingleFrame(f CANFrame) ([]byte, error) {
	if len(f.Data) == 0 {
		return nil, fmt.Errorf("isotp: empty single frame")
	}
	length := int(f.Data[0] & 0x0F)
	if length > len(f.Data)-1 {
		return nil, fmt.Errorf("isotp: single frame declares length %d, only %d bytes present", length, len(f.Data)-1)
	}
	return append([]byte(nil), f.Data[1:1+length]...), nil
}

// encodeFirstFrame packs the length header and the first firstFrameDataLen
// bytes of payload into one CAN frame.
func encodeFirstFrame(id uint32, totalLen int, payload []byte) CANFrame {
	data := make([]byte, 8)
	data[0] = byte(pciFirstFrame)<<4 | byte(totalLen>>8&0x0F)
	data[1] = byte(totalLen & 0xFF)
	n := copy(data[2:], payload)
	return CANFrame{ID: id, Data: data[:2+n]}
}

func decodeFirstFrame(f CANFrame) (totalLen int, chunk []byte, err error) {
	if len(f.Data) < 2 {
		return 0, nil, fmt.Errorf("isotp: first frame too short")
	}
	totalLen = int(f.Data[0]&0x0F)<<8 | int(f.Data[1])
	return totalLen, append([]byte(nil), f.Data[2:]...), nil
}

// encodeConsecutiveFrame packs a sequence number (mod 16, wraps 0..15,
// starting at 1) and a payload chunk into one CAN frame.
func encodeConsecutiveFrame(id uint32, seq byte, chunk []byte) CANFrame {
	data := make([]byte, 1+len(chunk))
	data[0] = byte(pciConsecutiveFrame)<<4 | seq&0x0F
	copy(data[1:], chunk)
	return CANFrame{ID: id, Data: data}
}

func decodeConsecutiveFrame(f CANFrame) (seq byte, chunk []byte, err error) {
	if len(f.Data) == 0 {
		return 0, nil, fmt.Errorf("isotp: empty consecutive frame")
	}
	return f.Data[0] & 0x0F, append([]byte(nil), f.Data[1:]...), nil
}

// encodeFlowControl emits a ContinueToSend frame with an unbounded block
// size and no separation time; the simulator never throttles a sender.
func encodeFlowControl(id uint32) CANFrame {
	return CANFrame{ID: id, Data: []byte{byte(pciFlowControlFrame)<<4 | fcContinueToSend, 0x00, 0x00}}
}

func decodeFlowControl(f CANFrame) (status byte, blockSize byte, stMin byte, err error) {
	if len(f.Data) < 3 {
		return 0, 0, 0, fmt.Errorf("isotp: flow control frame too short")
	}
	return f.Data[0] & 0x0F, f.Data[1], f.Data[2], nil
}
