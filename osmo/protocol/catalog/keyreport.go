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

// Key codes reported with (0x00,0x11).
const (
	KeyCodeQS       = uint8(0x02)
	KeyCodeSnapshot = uint8(0x03)
)

// Key report modes.
const (
	// KeyReportModeState reports press/release state transitions.
	KeyReportModeState = uint8(0x00)
	// KeyReportModeEvent reports key events (short press, long press, ...).
	KeyReportModeEvent = uint8(0x01)
)

// Key event values in event mode.
const (
	KeyValueShortPress = uint16(0x00)
	KeyValueLongPress  = uint16(0x01)
	KeyValueDouble     = uint16(0x02)
)

// KeyReportCommand reports a controller key press to the camera (0x00,0x11).
type KeyReportCommand struct {
	KeyCode  uint8
	Mode     uint8
	KeyValue uint16
}

// KeyReportResponse acknowledges a key report.
type KeyReportResponse struct {
	RetCode uint8
}

func encodeKeyReport(payload any, cmdType protocol.CmdType) ([]byte, error) {
	if cmdType.IsResponse() {
		return nil, fmt.Errorf("%w: key report response", ErrNotEncodable)
	}
	cmd, ok := payload.(*KeyReportCommand)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedPayload, payload)
	}
	data := make([]byte, 4)
	data[0] = cmd.KeyCode
	data[1] = cmd.Mode
	binary.LittleEndian.PutUint16(data[2:4], cmd.KeyValue)
	return data, nil
}

func decodeKeyReport(data []byte, cmdType protocol.CmdType) (any, error) {
	if !cmdType.IsResponse() {
		return nil, fmt.Errorf("%w: key report command", ErrNotDecodable)
	}
	if len(data) < 1 {
		return nil, fmt.Errorf("%w: key report response needs 1 byte", ErrPayloadTooShort)
	}
	return &KeyReportResponse{RetCode: data[0]}, nil
}
