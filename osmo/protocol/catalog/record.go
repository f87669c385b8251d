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

// Record control flags for (0x1D,0x03).
const (
	RecordCtrlStart = uint8(0x00)
	RecordCtrlStop  = uint8(0x01)
)

// RecordControlCommand starts or stops recording (0x1D,0x03).
type RecordControlCommand struct {
	DeviceID   uint32
	RecordCtrl uint8
	Reserved   [4]byte
}

// RecordControlResponse acknowledges a record control command.
type RecordControlResponse struct {
	RetCode uint8
}

func encodeRecordControl(payload any, cmdType protocol.CmdType) ([]byte, error) {
	if cmdType.IsResponse() {
		return nil, fmt.Errorf("%w: record control response", ErrNotEncodable)
	}
	cmd, ok := payload.(*RecordControlCommand)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedPayload, payload)
	}
	data := make([]byte, 9)
	binary.LittleEndian.PutUint32(data[0:4], cmd.DeviceID)
	data[4] = cmd.RecordCtrl
	copy(data[5:9], cmd.Reserved[:])
	return data, nil
}

func decodeRecordControl(data []byte, cmdType protocol.CmdType) (any, error) {
	if !cmdType.IsResponse() {
		return nil, fmt.Errorf("%w: record control command", ErrNotDecodable)
	}
	if len(data) < 1 {
		return nil, fmt.Errorf("%w: record control response needs 1 byte", ErrPayloadTooShort)
	}
	return &RecordControlResponse{RetCode: data[0]}, nil
}
