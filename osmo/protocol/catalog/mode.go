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

// ModeSwitchCommand switches the camera shooting mode (0x1D,0x04).
type ModeSwitchCommand struct {
	DeviceID uint32
	Mode     CameraMode
	Reserved [4]byte
}

// ModeSwitchResponse acknowledges a mode switch.
type ModeSwitchResponse struct {
	RetCode  uint8
	Reserved [4]byte
}

func encodeModeSwitch(payload any, cmdType protocol.CmdType) ([]byte, error) {
	if cmdType.IsResponse() {
		return nil, fmt.Errorf("%w: mode switch response", ErrNotEncodable)
	}
	cmd, ok := payload.(*ModeSwitchCommand)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedPayload, payload)
	}
	data := make([]byte, 9)
	binary.LittleEndian.PutUint32(data[0:4], cmd.DeviceID)
	data[4] = uint8(cmd.Mode)
	copy(data[5:9], cmd.Reserved[:])
	return data, nil
}

func decodeModeSwitch(data []byte, cmdType protocol.CmdType) (any, error) {
	if !cmdType.IsResponse() {
		return nil, fmt.Errorf("%w: mode switch command", ErrNotDecodable)
	}
	if len(data) < 5 {
		return nil, fmt.Errorf("%w: mode switch response needs 5 bytes, got %d", ErrPayloadTooShort, len(data))
	}
	res := &ModeSwitchResponse{RetCode: data[0]}
	copy(res.Reserved[:], data[1:5])
	return res, nil
}
