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

package main

import (
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cybergarage/go-osmo/osmo/ble"
	"github.com/cybergarage/go-safecast/safecast"
)

// storePath returns the peer store location, overridable with OSMOCTL_STORE.
func storePath() string {
	if path := os.Getenv("OSMOCTL_STORE"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "osmoctl.db"
	}
	return filepath.Join(home, ".osmoctl.db")
}

// cameraSlot returns the camera slot tag from OSMOCTL_SLOT, or zero.
func cameraSlot() uint8 {
	value := os.Getenv("OSMOCTL_SLOT")
	if value == "" {
		return 0
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	var slot uint8
	if err := safecast.ToUint8(parsed, &slot); err != nil {
		return 0
	}
	return slot
}

// localAddr returns the controller's Bluetooth address from OSMOCTL_ADDR, or
// the zero address when unset or unparsable.
func localAddr() ble.Addr {
	var addr ble.Addr
	value := os.Getenv("OSMOCTL_ADDR")
	if value == "" {
		return addr
	}
	mac, err := net.ParseMAC(value)
	if err != nil || len(mac) != ble.AddrLen {
		return addr
	}
	copy(addr[:], mac)
	return addr
}
