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
	"fmt"
)

// CameraMode enumerates the camera shooting modes.
type CameraMode uint8

const (
	CameraModeSlowMotion      CameraMode = 0x00
	CameraModeVideo           CameraMode = 0x01
	CameraModeTimelapseStatic CameraMode = 0x02
	CameraModePhoto           CameraMode = 0x05
	CameraModeTimelapseMotion CameraMode = 0x0A
	CameraModeLiveStreaming   CameraMode = 0x1A
	CameraModeUVCStreaming    CameraMode = 0x23
	CameraModeLowLightVideo   CameraMode = 0x28
	CameraModeSmartTracking   CameraMode = 0x34
)

// String returns the display name of the camera mode. Values outside this
// table belong to the new-format status push (0x1D,0x06).
func (m CameraMode) String() string {
	switch m {
	case CameraModeSlowMotion:
		return "Slow Motion"
	case CameraModeVideo:
		return "Video"
	case CameraModeTimelapseStatic:
		return "Timelapse"
	case CameraModePhoto:
		return "Photo"
	case CameraModeTimelapseMotion:
		return "Hyperlapse"
	case CameraModeLiveStreaming:
		return "Live Streaming"
	case CameraModeUVCStreaming:
		return "UVC Streaming"
	case CameraModeLowLightVideo:
		return "Super Night Scene"
	case CameraModeSmartTracking:
		return "Subject Tracking"
	}
	return fmt.Sprintf("Mode(0x%02X)", uint8(m))
}

// CameraStatus enumerates the camera run states.
type CameraStatus uint8

const (
	CameraStatusScreenOff        CameraStatus = 0x00
	CameraStatusLiveView         CameraStatus = 0x01
	CameraStatusPlayback         CameraStatus = 0x02
	CameraStatusPhotoOrRecording CameraStatus = 0x03
	CameraStatusPreRecording     CameraStatus = 0x05
)

// String returns the display name of the camera status.
func (s CameraStatus) String() string {
	switch s {
	case CameraStatusScreenOff:
		return "Screen Off"
	case CameraStatusLiveView:
		return "Live View"
	case CameraStatusPlayback:
		return "Playback"
	case CameraStatusPhotoOrRecording:
		return "Recording"
	case CameraStatusPreRecording:
		return "Pre-Recording"
	}
	return fmt.Sprintf("Status(0x%02X)", uint8(s))
}

// VideoResolution enumerates the resolution indices used by the status push.
type VideoResolution uint8

const (
	VideoResolution1080P    VideoResolution = 10
	VideoResolution4K169    VideoResolution = 16
	VideoResolution27K169   VideoResolution = 45
	VideoResolution1080P916 VideoResolution = 66
	VideoResolution27K916   VideoResolution = 67
	VideoResolution27K43    VideoResolution = 95
	VideoResolution4K43     VideoResolution = 103
	VideoResolution4K916    VideoResolution = 109
)

// String returns the display name of the resolution index.
func (r VideoResolution) String() string {
	switch r {
	case VideoResolution1080P:
		return "1080P"
	case VideoResolution4K169:
		return "4K 16:9"
	case VideoResolution27K169:
		return "2.7K 16:9"
	case VideoResolution1080P916:
		return "1080P 9:16"
	case VideoResolution27K916:
		return "2.7K 9:16"
	case VideoResolution27K43:
		return "2.7K 4:3"
	case VideoResolution4K43:
		return "4K 4:3"
	case VideoResolution4K916:
		return "4K 9:16"
	}
	return fmt.Sprintf("Resolution(%d)", uint8(r))
}

// FPSIndex enumerates the frame rate indices used by the status push.
type FPSIndex uint8

const (
	FPS24  FPSIndex = 1
	FPS25  FPSIndex = 2
	FPS30  FPSIndex = 3
	FPS48  FPSIndex = 4
	FPS50  FPSIndex = 5
	FPS60  FPSIndex = 6
	FPS120 FPSIndex = 7
	FPS240 FPSIndex = 8
	FPS100 FPSIndex = 10
	FPS200 FPSIndex = 19
)

// String returns the display name of the frame rate index.
func (f FPSIndex) String() string {
	switch f {
	case FPS24:
		return "24fps"
	case FPS25:
		return "25fps"
	case FPS30:
		return "30fps"
	case FPS48:
		return "48fps"
	case FPS50:
		return "50fps"
	case FPS60:
		return "60fps"
	case FPS100:
		return "100fps"
	case FPS120:
		return "120fps"
	case FPS200:
		return "200fps"
	case FPS240:
		return "240fps"
	}
	return fmt.Sprintf("FPS(%d)", uint8(f))
}

// EISMode enumerates the electronic image stabilization modes.
type EISMode uint8

const (
	EISModeOff    EISMode = 0
	EISModeRS     EISMode = 1
	EISModeHS     EISMode = 2
	EISModeRSPlus EISMode = 3
	EISModeHB     EISMode = 4
)

// String returns the display name of the stabilization mode.
func (m EISMode) String() string {
	switch m {
	case EISModeOff:
		return "Off"
	case EISModeRS:
		return "RS"
	case EISModeHS:
		return "HS"
	case EISModeRSPlus:
		return "RS+"
	case EISModeHB:
		return "HB"
	}
	return fmt.Sprintf("EIS(%d)", uint8(m))
}

// PushMode enumerates the status subscription push modes.
type PushMode uint8

const (
	PushModeOff      PushMode = 0
	PushModeSingle   PushMode = 1
	PushModePeriodic PushMode = 2
	// PushModePeriodicOnChange pushes periodically and once per state change.
	PushModePeriodicOnChange PushMode = 3
)

// PushFreq2Hz is the only push frequency the camera accepts, in 0.1 Hz units.
const PushFreq2Hz = uint8(20)
