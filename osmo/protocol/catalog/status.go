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

// cameraStatusPushLen is the fixed size of the legacy status record.
const cameraStatusPushLen = 38

// CameraStatusPush is the legacy camera status record the camera pushes as a
// command frame on (0x1D,0x02).
type CameraStatusPush struct {
	CameraMode      CameraMode
	CameraStatus    CameraStatus
	VideoResolution VideoResolution
	FPSIndex        FPSIndex
	EISMode         EISMode
	// RecordTime is the current recording time in seconds, including the
	// pre-recording span. In burst mode it is the burst limit in ms.
	RecordTime        uint16
	FOVType           uint8
	PhotoRatio        uint8
	RealTimeCountdown uint16
	// TimelapseInterval is in 0.1 s units in timelapse mode.
	TimelapseInterval uint16
	TimelapseDuration uint16
	// RemainCapacity is the free SD card space in MB.
	RemainCapacity uint32
	RemainPhotoNum uint32
	// RemainTime is the remaining recording time in seconds.
	RemainTime         uint32
	UserMode           uint8
	PowerMode          uint8
	CameraModeNextFlag CameraMode
	// TempOver escalates from 0 (normal) to 3 (about to shut down).
	TempOver         uint8
	PhotoCountdownMS uint32
	LoopRecordSends  uint16
	BatteryPercent   uint8
}

// IsRecording reports whether the camera is capturing or pre-recording.
func (s *CameraStatusPush) IsRecording() bool {
	return s.CameraStatus == CameraStatusPhotoOrRecording || s.CameraStatus == CameraStatusPreRecording
}

// String returns a printable summary of the status record.
func (s *CameraStatusPush) String() string {
	return fmt.Sprintf("%s/%s %s@%s EIS:%s rec:%ds bat:%d%%",
		s.CameraMode, s.CameraStatus, s.VideoResolution, s.FPSIndex, s.EISMode, s.RecordTime, s.BatteryPercent)
}

func decodeCameraStatusPush(data []byte, cmdType protocol.CmdType) (any, error) {
	// The camera pushes status as a command frame only.
	if cmdType.IsResponse() {
		return nil, fmt.Errorf("%w: camera status response", ErrNotDecodable)
	}
	if len(data) < cameraStatusPushLen {
		return nil, fmt.Errorf("%w: camera status push needs %d bytes, got %d", ErrPayloadTooShort, cameraStatusPushLen, len(data))
	}
	return &CameraStatusPush{
		CameraMode:         CameraMode(data[0]),
		CameraStatus:       CameraStatus(data[1]),
		VideoResolution:    VideoResolution(data[2]),
		FPSIndex:           FPSIndex(data[3]),
		EISMode:            EISMode(data[4]),
		RecordTime:         binary.LittleEndian.Uint16(data[5:7]),
		FOVType:            data[7],
		PhotoRatio:         data[8],
		RealTimeCountdown:  binary.LittleEndian.Uint16(data[9:11]),
		TimelapseInterval:  binary.LittleEndian.Uint16(data[11:13]),
		TimelapseDuration:  binary.LittleEndian.Uint16(data[13:15]),
		RemainCapacity:     binary.LittleEndian.Uint32(data[15:19]),
		RemainPhotoNum:     binary.LittleEndian.Uint32(data[19:23]),
		RemainTime:         binary.LittleEndian.Uint32(data[23:27]),
		UserMode:           data[27],
		PowerMode:          data[28],
		CameraModeNextFlag: CameraMode(data[29]),
		TempOver:           data[30],
		PhotoCountdownMS:   binary.LittleEndian.Uint32(data[31:35]),
		LoopRecordSends:    binary.LittleEndian.Uint16(data[35:37]),
		BatteryPercent:     data[37],
	}, nil
}

const (
	newStatusTagModeName  = uint8(0x01)
	newStatusTagModeParam = uint8(0x02)
	newStatusFieldLen     = 21
	newStatusPushLen      = 2*2 + 2*newStatusFieldLen
)

// NewCameraStatusPush is the new-format status record pushed on (0x1D,0x06)
// for modes the legacy record cannot name.
type NewCameraStatusPush struct {
	// ModeName is the ASCII mode name, at most 20 bytes.
	ModeName string
	// ModeParam is the ASCII mode parameter, at most 20 bytes.
	ModeParam string
}

// String returns a printable summary of the new-format status record.
func (s *NewCameraStatusPush) String() string {
	return fmt.Sprintf("%s %s", s.ModeName, s.ModeParam)
}

func decodeNewCameraStatusPush(data []byte, cmdType protocol.CmdType) (any, error) {
	if cmdType.IsResponse() {
		return nil, fmt.Errorf("%w: new camera status response", ErrNotDecodable)
	}
	if len(data) < newStatusPushLen {
		return nil, fmt.Errorf("%w: new camera status push needs %d bytes, got %d", ErrPayloadTooShort, newStatusPushLen, len(data))
	}
	if data[0] != newStatusTagModeName || data[2+newStatusFieldLen] != newStatusTagModeParam {
		return nil, fmt.Errorf("%w: unexpected field tags 0x%02X/0x%02X", ErrPayloadTooShort, data[0], data[2+newStatusFieldLen])
	}
	nameLen := int(data[1])
	if nameLen > newStatusFieldLen-1 {
		nameLen = newStatusFieldLen - 1
	}
	paramOff := 2 + newStatusFieldLen
	paramLen := int(data[paramOff+1])
	if paramLen > newStatusFieldLen-1 {
		paramLen = newStatusFieldLen - 1
	}
	return &NewCameraStatusPush{
		ModeName:  string(data[2 : 2+nameLen]),
		ModeParam: string(data[paramOff+2 : paramOff+2+paramLen]),
	}, nil
}
