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

// Package store persists the bonded camera peer: its address, the paired
// flag and the derived 32-bit device id.
package store

import (
	"encoding/binary"

	"github.com/cybergarage/go-osmo/osmo/ble"
)

// Store is the persistence contract for the bonded peer.
type Store interface {
	// LastCameraAddr returns the stored camera address, if any.
	LastCameraAddr() (ble.Addr, bool)
	// SetLastCameraAddr stores the camera address.
	SetLastCameraAddr(addr ble.Addr) error
	// ClearLastCameraAddr forgets the stored camera address.
	ClearLastCameraAddr() error
	// Paired reports whether a pairing completed against the stored peer.
	Paired() bool
	// SetPaired stores the paired flag.
	SetPaired(paired bool) error
	// DeviceID returns the controller's device id, deriving and persisting
	// it from the controller's Bluetooth address when absent.
	DeviceID() (uint32, error)
	// FactoryReset drops the stored peer, the paired flag and the device id.
	FactoryReset() error
	// Close releases the underlying storage.
	Close() error
}

// deviceIDSalt whitens the id derived from the Bluetooth address.
const deviceIDSalt = uint32(0xA5A50000)

// DeriveDeviceID derives the controller's device id from its own Bluetooth
// address: the lower four bytes in big-endian order XORed with the salt,
// never zero.
func DeriveDeviceID(mac ble.Addr) uint32 {
	id := binary.BigEndian.Uint32(mac[2:6])
	id ^= deviceIDSalt
	if id == 0 {
		id = deviceIDSalt | 1
	}
	return id
}
