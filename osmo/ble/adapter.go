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
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cybergarage/go-logger/log"
)

var (
	// ErrNotConnected indicates that no camera session is open.
	ErrNotConnected = errors.New("not connected")
	// ErrAlreadyConnecting indicates that a session attempt is in flight.
	ErrAlreadyConnecting = errors.New("already connecting")
	// ErrRadioFailure wraps an error reported by the radio collaborator.
	ErrRadioFailure = errors.New("radio failure")
	// ErrDiscoveryTimeout indicates that GATT discovery did not finish in time.
	ErrDiscoveryTimeout = errors.New("discovery timeout")
	// ErrRejected indicates that the peer refused a link-layer operation.
	ErrRejected = errors.New("rejected by peer")
	// ErrNoDevice indicates that the scan found no acceptable camera.
	ErrNoDevice = errors.New("no device found")
)

// Camera GATT endpoints.
const (
	// ServiceUUID is the vendor service the camera exposes.
	ServiceUUID = uint16(0xFFF0)
	// NotifyCharUUID carries camera responses and pushes.
	NotifyCharUUID = uint16(0xFFF4)
	// WriteCharUUID carries controller requests.
	WriteCharUUID = uint16(0xFFF5)
	// CCCDUUID is the client characteristic configuration descriptor.
	CCCDUUID = uint16(0x2902)
)

// TargetMTU is the MTU requested after a connection opens.
const TargetMTU = 500

const (
	// scanWatchdog hard-stops a scan regardless of the duration handed to the
	// radio. The radio is asked for a longer window (scanDuration) than the
	// watchdog allows; the watchdog wins, as in the camera firmware.
	scanWatchdog = 4 * time.Second
	scanDuration = 6 * time.Second

	// minRSSI is the weakest advertisement considered in normal scan mode.
	minRSSI = -80

	// wakeupAdvDuration bounds the wake-up advertisement.
	wakeupAdvDuration = 2 * time.Second

	pollInterval = 100 * time.Millisecond
)

// Adapter is the single-session link adapter over a Radio.
type Adapter struct {
	mu    sync.Mutex
	radio Radio

	// peer is the address used in reconnect mode and by the wake-up
	// advertisement.
	peer Addr

	connecting bool
	reconnect  bool
	bestAddr   Addr
	bestRSSI   int
	bestName   string
	foundPeer  bool
	connected  bool
	handlesOK  bool
	notifyChar uint16
	writeChar  uint16
	subscribed bool
	watchdog   *time.Timer
	notifySink func([]byte)
	dropSink   func(reason uint8)
}

// NewAdapter returns a link adapter over the given radio collaborator.
func NewAdapter(radio Radio) *Adapter {
	a := &Adapter{
		radio:    radio,
		bestRSSI: minRSSI - 1,
	}
	radio.SetEvents(RadioEvents{
		OnScanResult:        a.onScanResult,
		OnScanStopped:       a.onScanStopped,
		OnOpened:            a.onOpened,
		OnMTU:               a.onMTU,
		OnDiscoveryComplete: a.onDiscoveryComplete,
		OnNotify:            a.onNotify,
		OnDisconnected:      a.onDisconnected,
	})
	return a
}

// SetPeer records the stored camera address for reconnects and wake-ups.
func (a *Adapter) SetPeer(addr Addr) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.peer = addr
}

// Peer returns the camera address of the current or last session.
func (a *Adapter) Peer() Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.peer
}

// SetNotifyHandler installs the sink for notification bytes. The handler runs
// in the radio callback context and must only copy and enqueue.
func (a *Adapter) SetNotifyHandler(handler func(data []byte)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.notifySink = handler
}

// SetDisconnectHandler installs the sink for disconnect events.
func (a *Adapter) SetDisconnectHandler(handler func(reason uint8)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dropSink = handler
}

// IsConnected reports whether a camera session is open.
func (a *Adapter) IsConnected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connected
}

// ScanAndConnect starts a scan and opens a session to the best candidate.
// In reconnect mode the first advertisement from the stored peer wins and
// stops the scan immediately; otherwise the strongest marker-matching
// advertisement at or above the RSSI floor wins when the scan ends. A second
// call while a session attempt is in flight is rejected without side effects.
func (a *Adapter) ScanAndConnect(reconnect bool) error {
	a.mu.Lock()
	if a.connecting {
		a.mu.Unlock()
		return ErrAlreadyConnecting
	}
	if reconnect && a.peer.IsZero() {
		a.mu.Unlock()
		return fmt.Errorf("%w: no stored peer", ErrNoDevice)
	}
	a.connecting = true
	a.reconnect = reconnect
	a.bestAddr = Addr{}
	a.bestRSSI = minRSSI - 1
	a.bestName = ""
	a.foundPeer = false
	radio := a.radio
	a.mu.Unlock()

	if err := radio.SetScanParams(ScanParams{
		Interval: 50 * time.Millisecond,
		Window:   30 * time.Millisecond,
		Active:   true,
	}); err != nil {
		a.clearConnecting()
		return fmt.Errorf("%w: %w", ErrRadioFailure, err)
	}
	if err := radio.StartScan(scanDuration); err != nil {
		a.clearConnecting()
		return fmt.Errorf("%w: %w", ErrRadioFailure, err)
	}

	a.mu.Lock()
	a.watchdog = time.AfterFunc(scanWatchdog, func() {
		log.Debugf("Scan watchdog expired, stopping scan")
		if err := a.radio.StopScan(); err != nil {
			log.Errorf("Failed to stop scan: %v", err)
		}
	})
	a.mu.Unlock()
	return nil
}

func (a *Adapter) clearConnecting() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.connecting = false
	if a.watchdog != nil {
		a.watchdog.Stop()
		a.watchdog = nil
	}
}

func (a *Adapter) onScanResult(result ScanResult) {
	if !IsCameraAdvertisement(result.Advertising) {
		return
	}
	name := LocalName(result.Advertising)
	log.Debugf("Found camera %s (%s) RSSI %d", result.Addr, name, result.RSSI)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.reconnect {
		if result.Addr == a.peer && !a.foundPeer {
			a.foundPeer = true
			a.bestAddr = result.Addr
			a.bestRSSI = result.RSSI
			a.bestName = name
			log.Infof("Found previous camera %s, stopping scan", result.Addr)
			go func() {
				if err := a.radio.StopScan(); err != nil {
					log.Errorf("Failed to stop scan: %v", err)
				}
			}()
		}
		return
	}
	if result.RSSI >= minRSSI && result.RSSI > a.bestRSSI {
		a.bestAddr = result.Addr
		a.bestRSSI = result.RSSI
		a.bestName = name
	}
}

func (a *Adapter) onScanStopped() {
	a.mu.Lock()
	if a.watchdog != nil {
		a.watchdog.Stop()
		a.watchdog = nil
	}
	if !a.connecting {
		a.mu.Unlock()
		return
	}
	candidate := a.bestAddr
	name := a.bestName
	a.mu.Unlock()

	if candidate.IsZero() {
		log.Warnf("Scan finished without an acceptable camera")
		a.clearConnecting()
		return
	}

	log.Infof("Opening connection to %s (%s)", candidate, name)
	if err := a.radio.Open(candidate); err != nil {
		log.Errorf("Failed to open connection to %s: %v", candidate, err)
		a.clearConnecting()
	}
}

func (a *Adapter) onOpened(err error) {
	if err != nil {
		log.Errorf("Connection open failed: %v", err)
		a.clearConnecting()
		return
	}

	a.mu.Lock()
	a.connected = true
	a.peer = a.bestAddr
	a.mu.Unlock()

	if err := a.radio.RequestMTU(TargetMTU); err != nil {
		log.Errorf("MTU request failed: %v", err)
	}
}

func (a *Adapter) onMTU(mtu int) {
	log.Infof("MTU negotiated: %d", mtu)
	if err := a.radio.SearchServices(ServiceUUID); err != nil {
		log.Errorf("Service discovery failed: %v", err)
	}
}

func (a *Adapter) onDiscoveryComplete() {
	notifyChar, err := a.radio.CharacteristicByUUID(NotifyCharUUID)
	if err != nil {
		log.Errorf("Notify characteristic not found: %v", err)
		return
	}
	writeChar, err := a.radio.CharacteristicByUUID(WriteCharUUID)
	if err != nil {
		log.Errorf("Write characteristic not found: %v", err)
		return
	}

	a.mu.Lock()
	a.notifyChar = notifyChar
	a.writeChar = writeChar
	a.handlesOK = true
	a.connecting = false
	a.mu.Unlock()
	log.Infof("Characteristic handles resolved: notify=0x%04X write=0x%04X", notifyChar, writeChar)
}

func (a *Adapter) onNotify(data []byte) {
	a.mu.Lock()
	sink := a.notifySink
	a.mu.Unlock()
	if sink != nil {
		sink(data)
	}
}

func (a *Adapter) onDisconnected(reason uint8) {
	a.mu.Lock()
	a.connected = false
	a.connecting = false
	a.handlesOK = false
	a.subscribed = false
	sink := a.dropSink
	a.mu.Unlock()

	log.Infof("Disconnected, reason=0x%02X", reason)
	if sink != nil {
		sink(reason)
	}
}

// WaitConnected polls for an open connection for at most the given duration.
func (a *Adapter) WaitConnected(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if a.IsConnected() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: connection", ErrDiscoveryTimeout)
		}
		time.Sleep(pollInterval)
	}
}

// WaitHandles polls for resolved characteristic handles for at most the
// given duration.
func (a *Adapter) WaitHandles(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		a.mu.Lock()
		ok := a.handlesOK
		a.mu.Unlock()
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: characteristic handles", ErrDiscoveryTimeout)
		}
		time.Sleep(pollInterval)
	}
}

// SubscribeNotify enables notifications: it writes 0x0001 to the CCCD of the
// notify characteristic and registers with the stack.
func (a *Adapter) SubscribeNotify() error {
	a.mu.Lock()
	if !a.connected || !a.handlesOK {
		a.mu.Unlock()
		return ErrNotConnected
	}
	notifyChar := a.notifyChar
	a.mu.Unlock()

	descr, err := a.radio.DescriptorByCharHandle(notifyChar, CCCDUUID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRadioFailure, err)
	}
	if err := a.radio.WriteDescriptor(descr, []byte{0x01, 0x00}); err != nil {
		return fmt.Errorf("%w: %w", ErrRadioFailure, err)
	}
	if err := a.radio.RegisterNotify(notifyChar); err != nil {
		return fmt.Errorf("%w: %w", ErrRadioFailure, err)
	}

	a.mu.Lock()
	a.subscribed = true
	a.mu.Unlock()
	return nil
}

// UnsubscribeNotify disables notifications by writing 0x0000 to the CCCD.
func (a *Adapter) UnsubscribeNotify() error {
	a.mu.Lock()
	if !a.connected || !a.handlesOK {
		a.mu.Unlock()
		return ErrNotConnected
	}
	notifyChar := a.notifyChar
	a.mu.Unlock()

	descr, err := a.radio.DescriptorByCharHandle(notifyChar, CCCDUUID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRadioFailure, err)
	}
	if err := a.radio.WriteDescriptor(descr, []byte{0x00, 0x00}); err != nil {
		return fmt.Errorf("%w: %w", ErrRadioFailure, err)
	}

	a.mu.Lock()
	a.subscribed = false
	a.mu.Unlock()
	return nil
}

// WriteWithResponse writes a frame to the camera's write characteristic and
// requests a link-layer acknowledgement.
func (a *Adapter) WriteWithResponse(data []byte) error {
	return a.write(data, true)
}

// WriteWithoutResponse writes a frame to the camera's write characteristic.
func (a *Adapter) WriteWithoutResponse(data []byte) error {
	return a.write(data, false)
}

func (a *Adapter) write(data []byte, withResponse bool) error {
	a.mu.Lock()
	if !a.connected || !a.handlesOK {
		a.mu.Unlock()
		return ErrNotConnected
	}
	writeChar := a.writeChar
	a.mu.Unlock()

	if err := a.radio.WriteCharacteristic(writeChar, data, withResponse); err != nil {
		return fmt.Errorf("%w: %w", ErrRadioFailure, err)
	}
	return nil
}

// AdvertiseWakeup broadcasts the wake-up record for the stored peer. The
// advertisement stops on its own after two seconds.
func (a *Adapter) AdvertiseWakeup() error {
	a.mu.Lock()
	peer := a.peer
	a.mu.Unlock()
	if peer.IsZero() {
		return fmt.Errorf("%w: no stored peer", ErrNoDevice)
	}
	if err := a.radio.Advertise(WakeupAdvertisement(peer), wakeupAdvDuration); err != nil {
		return fmt.Errorf("%w: %w", ErrRadioFailure, err)
	}
	return nil
}

// Disconnect closes the open session, if any.
func (a *Adapter) Disconnect() error {
	a.mu.Lock()
	connected := a.connected
	a.mu.Unlock()
	if !connected {
		return nil
	}
	if err := a.radio.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrRadioFailure, err)
	}
	return nil
}
