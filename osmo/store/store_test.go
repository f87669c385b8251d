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

package store

import (
	"path/filepath"
	"testing"

	"github.com/cybergarage/go-osmo/osmo/ble"
)

var testLocalAddr = ble.Addr{0x24, 0x6F, 0x28, 0xAB, 0xCD, 0xEF}

func TestDeriveDeviceID(t *testing.T) {
	// Lower four MAC bytes big-endian, XOR 0xA5A50000.
	want := uint32(0x28ABCDEF) ^ 0xA5A50000
	if got := DeriveDeviceID(testLocalAddr); got != want {
		t.Errorf("DeriveDeviceID = 0x%08X, want 0x%08X", got, want)
	}
}

func TestDeriveDeviceIDNeverZero(t *testing.T) {
	// A MAC whose lower four bytes equal the salt would derive to zero.
	mac := ble.Addr{0x00, 0x00, 0xA5, 0xA5, 0x00, 0x00}
	if got := DeriveDeviceID(mac); got != 0xA5A50001 {
		t.Errorf("DeriveDeviceID = 0x%08X, want 0xA5A50001", got)
	}
}

func testStore(t *testing.T, s Store) {
	t.Helper()

	if _, ok := s.LastCameraAddr(); ok {
		t.Error("fresh store reports a camera address")
	}
	if s.Paired() {
		t.Error("fresh store reports paired")
	}

	cam := ble.Addr{0x10, 0x20, 0x30, 0x40, 0x50, 0x60}
	if err := s.SetLastCameraAddr(cam); err != nil {
		t.Fatal(err)
	}
	if err := s.SetPaired(true); err != nil {
		t.Fatal(err)
	}

	got, ok := s.LastCameraAddr()
	if !ok || got != cam {
		t.Errorf("LastCameraAddr = %s ok=%t", got, ok)
	}
	if !s.Paired() {
		t.Error("Paired = false after SetPaired(true)")
	}

	id, err := s.DeviceID()
	if err != nil {
		t.Fatal(err)
	}
	if id == 0 {
		t.Error("DeviceID = 0")
	}
	again, err := s.DeviceID()
	if err != nil {
		t.Fatal(err)
	}
	if again != id {
		t.Errorf("DeviceID changed between calls: 0x%08X then 0x%08X", id, again)
	}

	if err := s.FactoryReset(); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.LastCameraAddr(); ok {
		t.Error("camera address survived factory reset")
	}
	if s.Paired() {
		t.Error("paired flag survived factory reset")
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore(testLocalAddr)
	defer s.Close()
	testStore(t, s)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peer.db")
	s, err := NewSQLiteStore(path, testLocalAddr)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peer.db")
	s, err := NewSQLiteStore(path, testLocalAddr)
	if err != nil {
		t.Fatal(err)
	}
	cam := ble.Addr{1, 2, 3, 4, 5, 6}
	if err := s.SetLastCameraAddr(cam); err != nil {
		t.Fatal(err)
	}
	id, err := s.DeviceID()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = NewSQLiteStore(path, testLocalAddr)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, ok := s.LastCameraAddr()
	if !ok || got != cam {
		t.Errorf("LastCameraAddr after reopen = %s ok=%t", got, ok)
	}
	if again, _ := s.DeviceID(); again != id {
		t.Errorf("DeviceID after reopen = 0x%08X, want 0x%08X", again, id)
	}
}

func TestSQLiteStoreRejectsZeroAddr(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peer.db")
	s, err := NewSQLiteStore(path, testLocalAddr)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := s.SetLastCameraAddr(ble.Addr{}); err == nil {
		t.Error("zero address was stored")
	}
}
