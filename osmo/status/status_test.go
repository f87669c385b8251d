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

package status

import (
	"testing"

	"github.com/cybergarage/go-osmo/osmo/protocol/catalog"
)

func TestTrackerUpdate(t *testing.T) {
	tracker := NewTracker()
	if tracker.Initialized() {
		t.Fatal("fresh tracker reports initialized")
	}
	if tracker.IsRecording() {
		t.Fatal("fresh tracker reports recording")
	}

	tracker.Update(&catalog.CameraStatusPush{
		CameraMode:     catalog.CameraModeVideo,
		CameraStatus:   catalog.CameraStatusPhotoOrRecording,
		RecordTime:     12,
		BatteryPercent: 81,
	})
	if !tracker.Initialized() {
		t.Error("tracker not initialized after a push")
	}
	if !tracker.IsRecording() {
		t.Error("IsRecording = false during recording")
	}
	if tracker.Mode() != catalog.CameraModeVideo {
		t.Errorf("Mode = %s", tracker.Mode())
	}
	if tracker.Battery() != 81 {
		t.Errorf("Battery = %d", tracker.Battery())
	}

	tracker.Update(&catalog.CameraStatusPush{
		CameraMode:   catalog.CameraModeVideo,
		CameraStatus: catalog.CameraStatusLiveView,
	})
	if tracker.IsRecording() {
		t.Error("IsRecording = true after recording stopped")
	}
}

func TestTrackerNewFormat(t *testing.T) {
	tracker := NewTracker()
	tracker.UpdateNew(&catalog.NewCameraStatusPush{ModeName: "Panorama", ModeParam: "12 MP"})
	if tracker.ModeName() != "Panorama" {
		t.Errorf("ModeName = %q", tracker.ModeName())
	}
}

func TestTrackerReset(t *testing.T) {
	tracker := NewTracker()
	tracker.Update(&catalog.CameraStatusPush{CameraStatus: catalog.CameraStatusPreRecording})
	tracker.Reset()
	if tracker.Initialized() {
		t.Error("tracker initialized after reset")
	}
	if tracker.IsRecording() {
		t.Error("IsRecording = true after reset")
	}
}
