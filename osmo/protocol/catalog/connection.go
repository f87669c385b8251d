// Copyright (C) 2025 The go-osmo Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package catalog

import (
	"encoding/binary"
	"fmt"

	"github.com/cybergarage/go-osmo/osmo/protocol"
)

// Handshake verify modes for (0x00,0x19).
const (
	// VerifyModeReconnect is sent when reconnecting to a known peer.
	VerifyModeReconnect = uint8(0)
	// VerifyModePair is sent for a fresh pairing.
	VerifyModePair = uint8(1)
	// VerifyModeCameraDecision marks the camera's own handshake command.
	VerifyModeCameraDecision = uint8(2)
)

const (
	connectionMACLen     = 16
	connectionCommandLen = 33
	connectionReplyLen   = 9
)

// ConnectionRequest is the handshake command payload (0x00,0x19). Both sides
// of the link send this layout: the controller to open the handshake, the
// camera to announce its verdict with VerifyModeCameraDecision.
type ConnectionRequest struct {
	DeviceID  uint32
	MACLen    uint8
	MAC       [connectionMACLen]byte
	FWVersion uint32
	ConnIdx   uint8
	// VerifyMode selects the pairing flow; VerifyData carries a random token
	// on the way out and the camera's verdict (0 = accepted) on the way in.
	VerifyMode uint8
	VerifyData uint16
	Reserved   [4]byte
}

// ConnectionResponse is the handshake response payload (0x00,0x19).
type ConnectionResponse struct {
	DeviceID uint32
	RetCode  uint8
	Reserved [4]byte
}

func encodeConnection(payload any, cmdType protocol.CmdType) ([]byte, error) {
	if !cmdType.IsResponse() {
		cmd, ok := payload.(*ConnectionRequest)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedPayload, payload)
		}
		data := make([]byte, connectionCommandLen)
		binary.LittleEndian.PutUint32(data[0:4], cmd.DeviceID)
		data[4] = cmd.MACLen
		copy(data[5:21], cmd.MAC[:])
		binary.LittleEndian.PutUint32(data[21:25], cmd.FWVersion)
		data[25] = cmd.ConnIdx
		data[26] = cmd.VerifyMode
		binary.LittleEndian.PutUint16(data[27:29], cmd.VerifyData)
		copy(data[29:33], cmd.Reserved[:])
		return data, nil
	}

	res, ok := payload.(*ConnectionResponse)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedPayload, payload)
	}
	data := make([]byte, connectionReplyLen)
	binary.LittleEndian.PutUint32(data[0:4], res.DeviceID)
	data[4] = res.RetCode
	copy(data[5:9], res.Reserved[:])
	return data, nil
}

func decodeConnection(data []byte, cmdType protocol.CmdType) (any, error) {
	if !cmdType.IsResponse() {
		if len(data) < connectionCommandLen {
			return nil, fmt.Errorf("%w: connection command needs %d bytes, got %d", ErrPayloadTooShort, connectionCommandLen, len(data))
		}
		cmd := &ConnectionRequest{
			DeviceID:   binary.LittleEndian.Uint32(data[0:4]),
			MACLen:     data[4],
			FWVersion:  binary.LittleEndian.Uint32(data[21:25]),
			ConnIdx:    data[25],
			VerifyMode: data[26],
			VerifyData: binary.LittleEndian.Uint16(data[27:29]),
		}
		copy(cmd.MAC[:], data[5:21])
		copy(cmd.Reserved[:], data[29:33])
		return cmd, nil
	}

	if len(data) < connectionReplyLen {
		return nil, fmt.Errorf("%w: connection response needs %d bytes, got %d", ErrPayloadTooShort, connectionReplyLen, len(data))
	}
	res := &ConnectionResponse{
		DeviceID: binary.LittleEndian.Uint32(data[0:4]),
		RetCode:  data[4],
	}
	copy(res.Reserved[:], data[5:9])
	return res, nil
}
