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

// Advertising data types used by the engine.
const (
	adTypeNameComplete     = byte(0x09)
	adTypeManufacturerData = byte(0xFF)
)

// The camera marks its advertisement with a manufacturer-specific data field
// beginning AA 08 ?? ?? FA.
const vendorMarkerLen = 5

func isVendorMarker(data []byte) bool {
	return len(data) >= vendorMarkerLen && data[0] == 0xAA && data[1] == 0x08 && data[4] == 0xFA
}

// IsCameraAdvertisement walks the raw advertising data TLV-style and reports
// whether any manufacturer-specific field carries the camera vendor marker.
func IsCameraAdvertisement(adv []byte) bool {
	for i := 0; i < len(adv); {
		length := int(adv[i])
		if length == 0 || i+length+1 > len(adv) {
			break
		}
		adType := adv[i+1]
		data := adv[i+2 : i+1+length]
		if adType == adTypeManufacturerData && isVendorMarker(data) {
			return true
		}
		i += length + 1
	}
	return false
}

// LocalName extracts the complete local name from raw advertising data, or
// the empty string when absent.
func LocalName(adv []byte) string {
	for i := 0; i < len(adv); {
		length := int(adv[i])
		if length == 0 || i+length+1 > len(adv) {
			break
		}
		if adv[i+1] == adTypeNameComplete {
			return string(adv[i+2 : i+1+length])
		}
		i += length + 1
	}
	return ""
}

// WakeupAdvertisement builds the raw advertising record that wakes a sleeping
// camera: one 11-byte manufacturer-specific AD structure (length 10, type
// 0xFF) carrying "WKP" followed by the peer address in byte-reversed order.
func WakeupAdvertisement(peer Addr) []byte {
	adv := make([]byte, 0, 11)
	adv = append(adv, 10, adTypeManufacturerData)
	adv = append(adv, 'W', 'K', 'P')
	for i := AddrLen - 1; i >= 0; i-- {
		adv = append(adv, peer[i])
	}
	return adv
}
