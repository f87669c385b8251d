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

package ble

import (
	"bytes"
	"testing"
)

func cameraAdv(name string) []byte {
	adv := []byte{
		0x02, 0x01, 0x06, // flags
		0x06, 0xFF, 0xAA, 0x08, 0x12, 0x34, 0xFA, // manufacturer data with vendor marker
	}
	if name != "" {
		adv = append(adv, byte(len(name)+1), adTypeNameComplete)
		adv = append(adv, name...)
	}
	return adv
}

func TestIsCameraAdvertisement(t *testing.T) {
	tests := []struct {
		name string
		adv  []byte
		want bool
	}{
		{"camera marker", cameraAdv("OsmoAction"), true},
		{"marker without name", cameraAdv(""), true},
		{"empty", nil, false},
		{"flags only", []byte{0x02, 0x01, 0x06}, false},
		{"wrong prefix", []byte{0x06, 0xFF, 0xAB, 0x08, 0x12, 0x34, 0xFA}, false},
		{"wrong tail", []byte{0x06, 0xFF, 0xAA, 0x08, 0x12, 0x34, 0xFB}, false},
		{"marker in non-manufacturer field", []byte{0x06, 0x16, 0xAA, 0x08, 0x12, 0x34, 0xFA}, false},
		{"truncated record", []byte{0x10, 0xFF, 0xAA, 0x08}, false},
		{"zero length record", []byte{0x00, 0xFF, 0xAA, 0x08, 0x12, 0x34, 0xFA}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCameraAdvertisement(tt.adv); got != tt.want {
				t.Errorf("IsCameraAdvertisement = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestLocalName(t *testing.T) {
	if got := LocalName(cameraAdv("OsmoAction")); got != "OsmoAction" {
		t.Errorf("LocalName = %q", got)
	}
	if got := LocalName(cameraAdv("")); got != "" {
		t.Errorf("LocalName = %q, want empty", got)
	}
}

func TestWakeupAdvertisement(t *testing.T) {
	peer := Addr{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}
	adv := WakeupAdvertisement(peer)
	want := []byte{10, 0xFF, 'W', 'K', 'P', 0x66, 0x55, 0x44, 0x33, 0x22, 0x11}
	if !bytes.Equal(adv, want) {
		t.Errorf("wakeup advertisement = % X, want % X", adv, want)
	}
}

func TestAddrString(t *testing.T) {
	addr := Addr{0xAB, 0xCD, 0xEF, 0x01, 0x23, 0x45}
	if got := addr.String(); got != "AB:CD:EF:01:23:45" {
		t.Errorf("Addr.String = %q", got)
	}
	if addr.IsZero() {
		t.Error("IsZero = true for a set address")
	}
	if !(Addr{}).IsZero() {
		t.Error("IsZero = false for the zero address")
	}
}
