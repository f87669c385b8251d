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
	"math"

	"github.com/cybergarage/go-osmo/osmo/protocol"
)

// gpsPushLen is the fixed size of the GPS push record.
const gpsPushLen = 48

// GPSPushCommand carries a location fix to the camera (0x00,0x17).
// Latitude and longitude are scaled by 1e7, the altitude is in millimetres,
// velocities in cm/s, and the time of day is shifted to UTC+8.
type GPSPushCommand struct {
	// YearMonthDay is year*10000 + month*100 + day.
	YearMonthDay int32
	// HourMinuteSecond is (hour+8)*10000 + minute*100 + second.
	HourMinuteSecond int32
	Longitude        int32
	Latitude         int32
	// Height is the altitude in mm.
	Height int32
	// SpeedToNorth, SpeedToEast and SpeedDown are in cm/s.
	SpeedToNorth float32
	SpeedToEast  float32
	SpeedDown    float32
	// VerticalAccuracy and HorizontalAccuracy are estimates in mm.
	VerticalAccuracy   uint32
	HorizontalAccuracy uint32
	// SpeedAccuracy is an estimate in cm/s.
	SpeedAccuracy   uint32
	SatelliteNumber uint32
}

func encodeGPSPush(payload any, cmdType protocol.CmdType) ([]byte, error) {
	if cmdType.IsResponse() {
		return nil, fmt.Errorf("%w: GPS push response", ErrNotEncodable)
	}
	cmd, ok := payload.(*GPSPushCommand)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedPayload, payload)
	}
	data := make([]byte, gpsPushLen)
	binary.LittleEndian.PutUint32(data[0:4], uint32(cmd.YearMonthDay))
	binary.LittleEndian.PutUint32(data[4:8], uint32(cmd.HourMinuteSecond))
	binary.LittleEndian.PutUint32(data[8:12], uint32(cmd.Longitude))
	binary.LittleEndian.PutUint32(data[12:16], uint32(cmd.Latitude))
	binary.LittleEndian.PutUint32(data[16:20], uint32(cmd.Height))
	binary.LittleEndian.PutUint32(data[20:24], math.Float32bits(cmd.SpeedToNorth))
	binary.LittleEndian.PutUint32(data[24:28], math.Float32bits(cmd.SpeedToEast))
	binary.LittleEndian.PutUint32(data[28:32], math.Float32bits(cmd.SpeedDown))
	binary.LittleEndian.PutUint32(data[32:36], cmd.VerticalAccuracy)
	binary.LittleEndian.PutUint32(data[36:40], cmd.HorizontalAccuracy)
	binary.LittleEndian.PutUint32(data[40:44], cmd.SpeedAccuracy)
	binary.LittleEndian.PutUint32(data[44:48], cmd.SatelliteNumber)
	return data, nil
}
