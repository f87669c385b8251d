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
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/cybergarage/go-osmo/osmo/protocol"
)

func TestEncodeNilPayload(t *testing.T) {
	data, err := Encode(0x00, 0x00, protocol.CmdWaitResult, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("nil payload encoded to %d bytes, want 0", len(data))
	}
}

func TestEncodeUnknownCommand(t *testing.T) {
	_, err := Encode(0x7F, 0x7F, protocol.CmdNoResponse, &KeyReportCommand{})
	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("err = %v, want ErrUnknownCommand", err)
	}
}

func TestEncodeNotEncodable(t *testing.T) {
	// The version query is decoder-only.
	_, err := Encode(0x00, 0x00, protocol.CmdWaitResult, &VersionQueryResponse{})
	if !errors.Is(err, ErrNotEncodable) {
		t.Errorf("err = %v, want ErrNotEncodable", err)
	}
}

func TestDecodeNotDecodable(t *testing.T) {
	// The GPS push is encoder-only.
	_, err := Decode(0x00, 0x17, protocol.AckNoResponse, []byte{0x00})
	if !errors.Is(err, ErrNotDecodable) {
		t.Errorf("err = %v, want ErrNotDecodable", err)
	}
}

func TestVersionQueryDecode(t *testing.T) {
	payload := make([]byte, 0, 2+16+5)
	payload = binary.LittleEndian.AppendUint16(payload, 0)
	product := make([]byte, 16)
	copy(product, "DJI-Osmo Action6")
	payload = append(payload, product...)
	payload = append(payload, "1.4.0"...)

	v, err := Decode(0x00, 0x00, protocol.AckWaitResult, payload)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	res, ok := v.(*VersionQueryResponse)
	if !ok {
		t.Fatalf("payload type = %T", v)
	}
	if res.ProductID != "DJI-Osmo Action6" {
		t.Errorf("ProductID = %q", res.ProductID)
	}
	if res.SDKVersion != "1.4.0" {
		t.Errorf("SDKVersion = %q", res.SDKVersion)
	}
	if res.AckResult != 0 {
		t.Errorf("AckResult = %d", res.AckResult)
	}
}

func TestVersionQueryDecodeTooShort(t *testing.T) {
	_, err := Decode(0x00, 0x00, protocol.AckWaitResult, make([]byte, 10))
	if !errors.Is(err, ErrPayloadTooShort) {
		t.Errorf("err = %v, want ErrPayloadTooShort", err)
	}
}

func TestKeyReport(t *testing.T) {
	data, err := Encode(0x00, 0x11, protocol.CmdResponseOrNot, &KeyReportCommand{
		KeyCode:  KeyCodeQS,
		Mode:     KeyReportModeEvent,
		KeyValue: KeyValueShortPress,
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.Equal(data, []byte{0x02, 0x01, 0x00, 0x00}) {
		t.Errorf("encoded key report = % X", data)
	}

	v, err := Decode(0x00, 0x11, protocol.AckResponseOrNot, []byte{0x00})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if res := v.(*KeyReportResponse); res.RetCode != 0 {
		t.Errorf("RetCode = %d", res.RetCode)
	}
}

func TestGPSPushEncode(t *testing.T) {
	cmd := &GPSPushCommand{
		YearMonthDay:       20260801,
		HourMinuteSecond:   (12+8)*10000 + 30*100 + 15,
		Longitude:          1139042910,
		Latitude:           224283660,
		Height:             12000,
		SpeedToNorth:       10.5,
		SpeedToEast:        -3.25,
		SpeedDown:          0,
		VerticalAccuracy:   1500,
		HorizontalAccuracy: 900,
		SpeedAccuracy:      50,
		SatelliteNumber:    14,
	}
	data, err := Encode(0x00, 0x17, protocol.CmdNoResponse, cmd)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(data) != 48 {
		t.Fatalf("GPS push length = %d, want 48", len(data))
	}
	if got := int32(binary.LittleEndian.Uint32(data[0:4])); got != cmd.YearMonthDay {
		t.Errorf("date = %d", got)
	}
	if got := int32(binary.LittleEndian.Uint32(data[12:16])); got != cmd.Latitude {
		t.Errorf("latitude = %d", got)
	}
	if got := binary.LittleEndian.Uint32(data[44:48]); got != cmd.SatelliteNumber {
		t.Errorf("satellites = %d", got)
	}
}

func TestConnectionRoundtrip(t *testing.T) {
	cmd := &ConnectionRequest{
		DeviceID:   0x33FF0000,
		MACLen:     6,
		FWVersion:  0x03010000,
		VerifyMode: VerifyModePair,
		VerifyData: 1234,
	}
	copy(cmd.MAC[:], []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66})

	data, err := Encode(0x00, 0x19, protocol.CmdWaitResult, cmd)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(data) != 33 {
		t.Fatalf("connection command length = %d, want 33", len(data))
	}

	v, err := Decode(0x00, 0x19, protocol.CmdWaitResult, data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	got := v.(*ConnectionRequest)
	if *got != *cmd {
		t.Errorf("decoded command mismatch:\n got %+v\nwant %+v", got, cmd)
	}
}

func TestConnectionResponseRoundtrip(t *testing.T) {
	res := &ConnectionResponse{DeviceID: 0xA5A51234, RetCode: 0}
	res.Reserved[0] = 0x01 // camera slot tag

	data, err := Encode(0x00, 0x19, protocol.AckNoResponse, res)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(data) != 9 {
		t.Fatalf("connection response length = %d, want 9", len(data))
	}

	v, err := Decode(0x00, 0x19, protocol.AckNoResponse, data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got := v.(*ConnectionResponse); *got != *res {
		t.Errorf("decoded response mismatch:\n got %+v\nwant %+v", got, res)
	}
}

func TestRecordControl(t *testing.T) {
	data, err := Encode(0x1D, 0x03, protocol.CmdResponseOrNot, &RecordControlCommand{
		DeviceID:   0x33FF0000,
		RecordCtrl: RecordCtrlStart,
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := []byte{0x00, 0x00, 0xFF, 0x33, 0x00, 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(data, want) {
		t.Errorf("encoded record control = % X, want % X", data, want)
	}

	v, err := Decode(0x1D, 0x03, protocol.AckResponseOrNot, []byte{0x00})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if res := v.(*RecordControlResponse); res.RetCode != 0 {
		t.Errorf("RetCode = %d", res.RetCode)
	}
}

func TestModeSwitch(t *testing.T) {
	data, err := Encode(0x1D, 0x04, protocol.CmdResponseOrNot, &ModeSwitchCommand{
		DeviceID: 0x33FF0000,
		Mode:     CameraModePhoto,
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(data) != 9 || data[4] != uint8(CameraModePhoto) {
		t.Errorf("encoded mode switch = % X", data)
	}

	v, err := Decode(0x1D, 0x04, protocol.AckResponseOrNot, []byte{0x01, 0x00, 0x00, 0x00, 0x00})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if res := v.(*ModeSwitchResponse); res.RetCode != 1 {
		t.Errorf("RetCode = %d", res.RetCode)
	}
}

func TestStatusSubscriptionEncode(t *testing.T) {
	data, err := Encode(0x1D, 0x05, protocol.CmdNoResponse, &StatusSubscriptionCommand{
		PushMode: PushModePeriodicOnChange,
		PushFreq: PushFreq2Hz,
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.Equal(data, []byte{0x03, 0x14, 0x00, 0x00, 0x00, 0x00}) {
		t.Errorf("encoded subscription = % X", data)
	}
}

func statusPushFixture(t *testing.T) []byte {
	t.Helper()
	data := make([]byte, cameraStatusPushLen)
	data[0] = uint8(CameraModeVideo)
	data[1] = uint8(CameraStatusPhotoOrRecording)
	data[2] = uint8(VideoResolution4K169)
	data[3] = uint8(FPS60)
	data[4] = uint8(EISModeRSPlus)
	binary.LittleEndian.PutUint16(data[5:7], 95)      // record time
	binary.LittleEndian.PutUint32(data[15:19], 51200) // remaining MB
	binary.LittleEndian.PutUint32(data[23:27], 7200)  // remaining seconds
	data[29] = uint8(CameraModeVideo)
	binary.LittleEndian.PutUint16(data[35:37], 0xFFFF) // loop record: max
	data[37] = 87                                      // battery
	return data
}

func TestCameraStatusPushDecode(t *testing.T) {
	v, err := Decode(0x1D, 0x02, protocol.CmdNoResponse, statusPushFixture(t))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	status := v.(*CameraStatusPush)
	if status.CameraMode != CameraModeVideo {
		t.Errorf("CameraMode = %s", status.CameraMode)
	}
	if status.RecordTime != 95 {
		t.Errorf("RecordTime = %d", status.RecordTime)
	}
	if status.RemainCapacity != 51200 {
		t.Errorf("RemainCapacity = %d", status.RemainCapacity)
	}
	if status.BatteryPercent != 87 {
		t.Errorf("BatteryPercent = %d", status.BatteryPercent)
	}
	if !status.IsRecording() {
		t.Error("IsRecording = false, want true")
	}
}

func TestCameraStatusPushRejectsResponse(t *testing.T) {
	_, err := Decode(0x1D, 0x02, protocol.AckNoResponse, statusPushFixture(t))
	if !errors.Is(err, ErrNotDecodable) {
		t.Errorf("err = %v, want ErrNotDecodable", err)
	}
}

func TestNewCameraStatusPushDecode(t *testing.T) {
	data := make([]byte, newStatusPushLen)
	data[0] = newStatusTagModeName
	data[1] = 8
	copy(data[2:], "Panorama")
	data[23] = newStatusTagModeParam
	data[24] = 5
	copy(data[25:], "12 MP")

	v, err := Decode(0x1D, 0x06, protocol.CmdNoResponse, data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	status := v.(*NewCameraStatusPush)
	if status.ModeName != "Panorama" {
		t.Errorf("ModeName = %q", status.ModeName)
	}
	if status.ModeParam != "12 MP" {
		t.Errorf("ModeParam = %q", status.ModeParam)
	}
}
