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

// Package status tracks the camera state reported by the periodic status
// pushes.
package status

import (
	"sync"

	"github.com/cybergarage/go-logger/log"
	"github.com/cybergarage/go-osmo/osmo/protocol/catalog"
)

// Tracker keeps the last camera state seen on the status push channels. Its
// Update methods are meant to be registered as the engine's status listener.
type Tracker struct {
	mu          sync.Mutex
	mode        catalog.CameraMode
	status      catalog.CameraStatus
	resolution  catalog.VideoResolution
	fps         catalog.FPSIndex
	eis         catalog.EISMode
	recordTime  uint16
	battery     uint8
	modeName    string
	modeParam   string
	initialized bool
}

// NewTracker returns an empty camera status tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Update folds a legacy status push into the tracker.
func (t *Tracker) Update(push *catalog.CameraStatusPush) {
	t.mu.Lock()
	changed := t.mode != push.CameraMode ||
		t.status != push.CameraStatus ||
		t.resolution != push.VideoResolution ||
		t.fps != push.FPSIndex ||
		t.eis != push.EISMode ||
		t.recordTime != push.RecordTime ||
		!t.initialized
	t.mode = push.CameraMode
	t.status = push.CameraStatus
	t.resolution = push.VideoResolution
	t.fps = push.FPSIndex
	t.eis = push.EISMode
	t.recordTime = push.RecordTime
	t.battery = push.BatteryPercent
	t.initialized = true
	t.mu.Unlock()

	if changed {
		log.Infof("Camera status: %s", push.String())
	}
}

// UpdateNew folds a new-format status push into the tracker.
func (t *Tracker) UpdateNew(push *catalog.NewCameraStatusPush) {
	t.mu.Lock()
	changed := t.modeName != push.ModeName || t.modeParam != push.ModeParam
	t.modeName = push.ModeName
	t.modeParam = push.ModeParam
	t.mu.Unlock()

	if changed {
		log.Infof("Camera status: %s", push.String())
	}
}

// Reset clears the tracker; called when the session closes.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mode = 0
	t.status = 0
	t.resolution = 0
	t.fps = 0
	t.eis = 0
	t.recordTime = 0
	t.battery = 0
	t.modeName = ""
	t.modeParam = ""
	t.initialized = false
}

// Initialized reports whether any status push arrived this session.
func (t *Tracker) Initialized() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.initialized
}

// IsRecording reports whether the camera is capturing or pre-recording.
func (t *Tracker) IsRecording() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.initialized &&
		(t.status == catalog.CameraStatusPhotoOrRecording || t.status == catalog.CameraStatusPreRecording)
}

// Mode returns the last reported camera mode.
func (t *Tracker) Mode() catalog.CameraMode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mode
}

// Status returns the last reported camera status.
func (t *Tracker) Status() catalog.CameraStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Battery returns the last reported battery percentage.
func (t *Tracker) Battery() uint8 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.battery
}

// ModeName returns the mode name of the last new-format push.
func (t *Tracker) ModeName() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.modeName
}
