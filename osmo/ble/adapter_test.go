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
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeRadio is a scriptable Radio for adapter tests. Scan results are fed by
// the test; opening a connection succeeds immediately and walks the full
// MTU/discovery chain.
type fakeRadio struct {
	mu         sync.Mutex
	events     RadioEvents
	scanning   bool
	opened     Addr
	descWrites [][]byte
	charWrites [][]byte
	registered []uint16
	advertised [][]byte
}

func (r *fakeRadio) SetEvents(events RadioEvents) { r.events = events }

func (r *fakeRadio) SetScanParams(params ScanParams) error { return nil }

func (r *fakeRadio) StartScan(duration time.Duration) error {
	r.mu.Lock()
	r.scanning = true
	r.mu.Unlock()
	return nil
}

func (r *fakeRadio) StopScan() error {
	r.mu.Lock()
	wasScanning := r.scanning
	r.scanning = false
	r.mu.Unlock()
	if wasScanning && r.events.OnScanStopped != nil {
		r.events.OnScanStopped()
	}
	return nil
}

func (r *fakeRadio) Open(addr Addr) error {
	r.mu.Lock()
	r.opened = addr
	r.mu.Unlock()
	r.events.OnOpened(nil)
	return nil
}

func (r *fakeRadio) RequestMTU(mtu int) error {
	r.events.OnMTU(mtu)
	return nil
}

func (r *fakeRadio) SearchServices(uuid uint16) error {
	r.events.OnDiscoveryComplete()
	return nil
}

func (r *fakeRadio) CharacteristicByUUID(uuid uint16) (uint16, error) {
	return uuid, nil
}

func (r *fakeRadio) DescriptorByCharHandle(charHandle uint16, uuid uint16) (uint16, error) {
	return uuid, nil
}

func (r *fakeRadio) WriteCharacteristic(handle uint16, data []byte, withResponse bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.charWrites = append(r.charWrites, append([]byte{}, data...))
	return nil
}

func (r *fakeRadio) WriteDescriptor(handle uint16, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.descWrites = append(r.descWrites, append([]byte{}, data...))
	return nil
}

func (r *fakeRadio) RegisterNotify(charHandle uint16) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registered = append(r.registered, charHandle)
	return nil
}

func (r *fakeRadio) Advertise(data []byte, duration time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advertised = append(r.advertised, append([]byte{}, data...))
	return nil
}

func (r *fakeRadio) Close() error {
	r.events.OnDisconnected(0x16)
	return nil
}

func (r *fakeRadio) scanResult(addr Addr, rssi int, name string) {
	r.events.OnScanResult(ScanResult{Addr: addr, RSSI: rssi, Advertising: cameraAdv(name)})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition never became true")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

var (
	camA = Addr{0x10, 0x20, 0x30, 0x40, 0x50, 0x60}
	camB = Addr{0x11, 0x21, 0x31, 0x41, 0x51, 0x61}
)

func TestScanPicksStrongestCandidate(t *testing.T) {
	radio := &fakeRadio{}
	adapter := NewAdapter(radio)

	if err := adapter.ScanAndConnect(false); err != nil {
		t.Fatal(err)
	}
	radio.scanResult(camA, -70, "CamA")
	radio.scanResult(camB, -50, "CamB")
	// Below the RSSI floor: never a candidate.
	radio.scanResult(Addr{9, 9, 9, 9, 9, 9}, -90, "Far")

	if err := radio.StopScan(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, adapter.IsConnected)

	if radio.opened != camB {
		t.Errorf("opened %s, want %s", radio.opened, camB)
	}
	if err := adapter.WaitHandles(time.Second); err != nil {
		t.Errorf("handles not resolved: %v", err)
	}
	if adapter.Peer() != camB {
		t.Errorf("peer = %s, want %s", adapter.Peer(), camB)
	}
}

func TestScanIgnoresNonCameraAdvertisements(t *testing.T) {
	radio := &fakeRadio{}
	adapter := NewAdapter(radio)

	if err := adapter.ScanAndConnect(false); err != nil {
		t.Fatal(err)
	}
	radio.events.OnScanResult(ScanResult{
		Addr:        camA,
		RSSI:        -10,
		Advertising: []byte{0x02, 0x01, 0x06},
	})
	if err := radio.StopScan(); err != nil {
		t.Fatal(err)
	}

	time.Sleep(50 * time.Millisecond)
	if adapter.IsConnected() {
		t.Error("connected to a non-camera device")
	}
	// The latch must be clear again.
	if err := adapter.ScanAndConnect(false); err != nil {
		t.Errorf("retry rejected: %v", err)
	}
}

func TestReconnectMatchesStoredPeerOnly(t *testing.T) {
	radio := &fakeRadio{}
	adapter := NewAdapter(radio)
	adapter.SetPeer(camA)

	if err := adapter.ScanAndConnect(true); err != nil {
		t.Fatal(err)
	}
	// A stronger foreign camera must not win in reconnect mode.
	radio.scanResult(camB, -30, "Other")
	radio.scanResult(camA, -75, "Mine")

	waitFor(t, adapter.IsConnected)
	if radio.opened != camA {
		t.Errorf("opened %s, want stored peer %s", radio.opened, camA)
	}
}

func TestReconnectWithoutPeerFails(t *testing.T) {
	adapter := NewAdapter(&fakeRadio{})
	if err := adapter.ScanAndConnect(true); !errors.Is(err, ErrNoDevice) {
		t.Errorf("err = %v, want ErrNoDevice", err)
	}
}

func TestSecondConnectRejected(t *testing.T) {
	radio := &fakeRadio{}
	adapter := NewAdapter(radio)

	if err := adapter.ScanAndConnect(false); err != nil {
		t.Fatal(err)
	}
	if err := adapter.ScanAndConnect(false); !errors.Is(err, ErrAlreadyConnecting) {
		t.Errorf("err = %v, want ErrAlreadyConnecting", err)
	}
}

func connect(t *testing.T, adapter *Adapter, radio *fakeRadio) {
	t.Helper()
	if err := adapter.ScanAndConnect(false); err != nil {
		t.Fatal(err)
	}
	radio.scanResult(camA, -40, "Cam")
	if err := radio.StopScan(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, adapter.IsConnected)
	if err := adapter.WaitHandles(time.Second); err != nil {
		t.Fatal(err)
	}
}

func TestSubscribeAndUnsubscribeNotify(t *testing.T) {
	radio := &fakeRadio{}
	adapter := NewAdapter(radio)
	connect(t, adapter, radio)

	if err := adapter.SubscribeNotify(); err != nil {
		t.Fatal(err)
	}
	if len(radio.descWrites) != 1 || !bytes.Equal(radio.descWrites[0], []byte{0x01, 0x00}) {
		t.Errorf("CCCD writes = %v", radio.descWrites)
	}
	if len(radio.registered) != 1 || radio.registered[0] != NotifyCharUUID {
		t.Errorf("registered = %v", radio.registered)
	}

	if err := adapter.UnsubscribeNotify(); err != nil {
		t.Fatal(err)
	}
	if len(radio.descWrites) != 2 || !bytes.Equal(radio.descWrites[1], []byte{0x00, 0x00}) {
		t.Errorf("CCCD writes after unsubscribe = %v", radio.descWrites)
	}
}

func TestWriteRequiresConnection(t *testing.T) {
	adapter := NewAdapter(&fakeRadio{})
	if err := adapter.WriteWithResponse([]byte{0x01}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("err = %v, want ErrNotConnected", err)
	}
}

func TestWriteForwardsFrames(t *testing.T) {
	radio := &fakeRadio{}
	adapter := NewAdapter(radio)
	connect(t, adapter, radio)

	frame := []byte{0xAA, 0x01, 0x02}
	if err := adapter.WriteWithResponse(frame); err != nil {
		t.Fatal(err)
	}
	if err := adapter.WriteWithoutResponse(frame); err != nil {
		t.Fatal(err)
	}
	if len(radio.charWrites) != 2 {
		t.Fatalf("write count = %d", len(radio.charWrites))
	}
}

func TestNotifyAndDisconnectSinks(t *testing.T) {
	radio := &fakeRadio{}
	adapter := NewAdapter(radio)

	var notified [][]byte
	var droppedReason uint8
	adapter.SetNotifyHandler(func(data []byte) { notified = append(notified, data) })
	adapter.SetDisconnectHandler(func(reason uint8) { droppedReason = reason })

	connect(t, adapter, radio)
	radio.events.OnNotify([]byte{0xAA, 0x10})
	if len(notified) != 1 {
		t.Fatalf("notify sink calls = %d", len(notified))
	}

	if err := adapter.Disconnect(); err != nil {
		t.Fatal(err)
	}
	if adapter.IsConnected() {
		t.Error("still connected after Disconnect")
	}
	if droppedReason != 0x16 {
		t.Errorf("disconnect reason = 0x%02X", droppedReason)
	}
}

func TestAdvertiseWakeup(t *testing.T) {
	radio := &fakeRadio{}
	adapter := NewAdapter(radio)

	if err := adapter.AdvertiseWakeup(); !errors.Is(err, ErrNoDevice) {
		t.Errorf("err = %v, want ErrNoDevice without a stored peer", err)
	}

	adapter.SetPeer(camA)
	if err := adapter.AdvertiseWakeup(); err != nil {
		t.Fatal(err)
	}
	if len(radio.advertised) != 1 || !bytes.Equal(radio.advertised[0], WakeupAdvertisement(camA)) {
		t.Errorf("advertised = %v", radio.advertised)
	}
}
