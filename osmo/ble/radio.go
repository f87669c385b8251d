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

// Package ble is the link layer of the engine. It owns the one-at-a-time
// session with a camera: scanning, candidate selection, GATT bring-up,
// writes, notification subscription and the wake-up advertisement. The radio
// itself is an external collaborator reached through the Radio interface.
package ble

import (
	"fmt"
	"time"
)

// AddrLen is the length of a Bluetooth device address.
const AddrLen = 6

// Addr is a 6-byte Bluetooth device address.
type Addr [AddrLen]byte

// IsZero reports whether the address is unset.
func (a Addr) IsZero() bool {
	return a == Addr{}
}

// String returns the canonical colon-separated form of the address.
func (a Addr) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[0], a[1], a[2], a[3], a[4], a[5])
}

// ScanResult is a single advertisement observed during a scan.
type ScanResult struct {
	Addr Addr
	// RSSI is the received signal strength in dBm.
	RSSI int
	// Advertising is the raw advertising data, a TLV sequence of AD structures.
	Advertising []byte
}

// RadioEvents is the callback sink the radio drives. Callbacks run in the
// radio's own context and must not block; handlers that need to do real work
// copy and enqueue.
type RadioEvents struct {
	// OnScanResult reports an advertisement.
	OnScanResult func(ScanResult)
	// OnScanStopped reports that scanning ended, whether stopped or expired.
	OnScanStopped func()
	// OnOpened reports the outcome of an Open call.
	OnOpened func(err error)
	// OnMTU reports the negotiated MTU.
	OnMTU func(mtu int)
	// OnDiscoveryComplete reports that service discovery finished.
	OnDiscoveryComplete func()
	// OnNotify reports bytes received on the subscribed characteristic.
	OnNotify func(data []byte)
	// OnDisconnected reports a closed link with the stack's reason code.
	OnDisconnected func(reason uint8)
}

// ScanParams carries the radio scan window configuration.
type ScanParams struct {
	Interval time.Duration
	Window   time.Duration
	// Active requests scan responses in addition to advertisements.
	Active bool
}

// Radio is the contract of the external radio collaborator. Implementations
// wrap a concrete BLE stack; the engine never talks to a stack directly.
type Radio interface {
	// SetEvents installs the event sink. Must be called before any other use.
	SetEvents(events RadioEvents)
	// SetScanParams configures the scan window.
	SetScanParams(params ScanParams) error
	// StartScan starts scanning for at most the given duration.
	StartScan(duration time.Duration) error
	// StopScan stops a running scan.
	StopScan() error
	// Open initiates a connection to the device address.
	Open(addr Addr) error
	// RequestMTU negotiates the given MTU on the open connection.
	RequestMTU(mtu int) error
	// SearchServices discovers the service with the 16-bit UUID.
	SearchServices(uuid uint16) error
	// CharacteristicByUUID resolves a characteristic handle within the
	// discovered service.
	CharacteristicByUUID(uuid uint16) (uint16, error)
	// DescriptorByCharHandle resolves a descriptor handle of a characteristic.
	DescriptorByCharHandle(charHandle uint16, uuid uint16) (uint16, error)
	// WriteCharacteristic writes a characteristic value.
	WriteCharacteristic(handle uint16, data []byte, withResponse bool) error
	// WriteDescriptor writes a descriptor value.
	WriteDescriptor(handle uint16, data []byte) error
	// RegisterNotify subscribes the stack to notifications on the handle.
	RegisterNotify(charHandle uint16) error
	// Advertise broadcasts a raw advertising record for the given duration.
	Advertise(data []byte, duration time.Duration) error
	// Close tears down the open connection.
	Close() error
}
