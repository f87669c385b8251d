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

// Package osmotest provides a scripted camera on a fake radio for end-to-end
// engine tests.
package osmotest

import (
	"sync"
	"time"

	"github.com/cybergarage/go-osmo/osmo/ble"
	"github.com/cybergarage/go-osmo/osmo/protocol"
	"github.com/cybergarage/go-osmo/osmo/protocol/catalog"
)

// CameraAddr is the scripted camera's address.
var CameraAddr = ble.Addr{0xDC, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E}

// Camera is a scripted Osmo camera behind the Radio contract. Frames written
// by the engine are decoded and answered by per-command handlers; tests can
// stall commands and inspect everything the engine sent.
type Camera struct {
	mu     sync.Mutex
	events ble.RadioEvents

	scanning bool
	// HandshakeAsCommand makes the camera skip the handshake response frame
	// and send its own command frame only.
	HandshakeAsCommand bool
	// Stalled suppresses replies for the given (CmdSet, CmdID) pairs.
	Stalled map[[2]uint8]bool

	seq      uint16
	tx       []protocol.Frame
	txRaw    [][]byte
	acks     []uint16
	released [][]byte
}

// NewCamera returns a scripted camera radio.
func NewCamera() *Camera {
	return &Camera{
		seq:     0x5000,
		Stalled: map[[2]uint8]bool{},
	}
}

// TXFrames returns the decoded frames the engine wrote, in order.
func (c *Camera) TXFrames() []protocol.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]protocol.Frame{}, c.tx...)
}

// TXRaw returns the raw frames the engine wrote, in order.
func (c *Camera) TXRaw() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.txRaw))
	for n, frame := range c.txRaw {
		out[n] = append([]byte{}, frame...)
	}
	return out
}

// HandshakeAcks returns the sequences of the handshake acknowledgements the
// engine sent.
func (c *Camera) HandshakeAcks() []uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]uint16{}, c.acks...)
}

// Notify injects a raw notification, as the camera's own pushes do.
func (c *Camera) Notify(frame []byte) {
	c.events.OnNotify(frame)
}

// Release answers all stalled frames recorded so far for the command.
func (c *Camera) Release(cmdSet, cmdID uint8) {
	c.mu.Lock()
	released := c.released
	c.released = nil
	c.mu.Unlock()
	for _, raw := range released {
		frame, err := protocol.Decode(raw)
		if err != nil {
			continue
		}
		if frame.CmdSet() == cmdSet && frame.CmdID() == cmdID {
			c.answer(frame)
		}
	}
}

func (c *Camera) nextSeq() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

func (c *Camera) reply(cmdSet, cmdID uint8, cmdType protocol.CmdType, seq uint16, payload []byte) {
	raw, err := protocol.Encode(cmdSet, cmdID, cmdType, seq, payload)
	if err != nil {
		panic(err)
	}
	c.events.OnNotify(raw)
}

func (c *Camera) answer(frame protocol.Frame) {
	switch {
	case frame.CmdSet() == 0x00 && frame.CmdID() == 0x19:
		c.answerConnection(frame)
	case frame.CmdSet() == 0x00 && frame.CmdID() == 0x00:
		payload := []byte{0x00, 0x00}
		product := make([]byte, 16)
		copy(product, "DJI-Osmo Action6")
		payload = append(payload, product...)
		payload = append(payload, "01.04.00.20"...)
		c.reply(0x00, 0x00, protocol.AckWaitResult, frame.Seq(), payload)
	case frame.CmdSet() == 0x00 && frame.CmdID() == 0x11:
		c.reply(0x00, 0x11, protocol.AckResponseOrNot, frame.Seq(), []byte{0x00})
	case frame.CmdSet() == 0x1D && frame.CmdID() == 0x03:
		c.reply(0x1D, 0x03, protocol.AckResponseOrNot, frame.Seq(), []byte{0x00})
	case frame.CmdSet() == 0x1D && frame.CmdID() == 0x04:
		c.reply(0x1D, 0x04, protocol.AckResponseOrNot, frame.Seq(), []byte{0x00, 0, 0, 0, 0})
	}
}

func (c *Camera) answerConnection(frame protocol.Frame) {
	if frame.CmdType().IsResponse() {
		c.mu.Lock()
		c.acks = append(c.acks, frame.Seq())
		c.mu.Unlock()
		return
	}

	command := &catalog.ConnectionRequest{
		DeviceID:   0xCAFE0001,
		MACLen:     ble.AddrLen,
		VerifyMode: catalog.VerifyModeCameraDecision,
		VerifyData: 0,
	}
	body, err := catalog.Encode(0x00, 0x19, protocol.CmdWaitResult, command)
	if err != nil {
		panic(err)
	}

	if !c.HandshakeAsCommand {
		response, err := catalog.Encode(0x00, 0x19, protocol.AckWaitResult,
			&catalog.ConnectionResponse{DeviceID: 0xCAFE0001, RetCode: 0})
		if err != nil {
			panic(err)
		}
		c.reply(0x00, 0x19, protocol.AckWaitResult, frame.Seq(), response)
	}
	c.reply(0x00, 0x19, protocol.CmdWaitResult, c.nextSeq(), body)
}

// Radio contract below.

func (c *Camera) SetEvents(events ble.RadioEvents)     { c.events = events }
func (c *Camera) SetScanParams(p ble.ScanParams) error { return nil }

func (c *Camera) StartScan(duration time.Duration) error {
	c.mu.Lock()
	c.scanning = true
	c.mu.Unlock()
	go func() {
		c.events.OnScanResult(ble.ScanResult{
			Addr: CameraAddr,
			RSSI: -52,
			Advertising: []byte{
				0x06, 0xFF, 0xAA, 0x08, 0x2A, 0x2B, 0xFA,
				0x0B, 0x09, 'O', 's', 'm', 'o', 'A', 'c', 't', 'i', 'o', 'n',
			},
		})
		time.Sleep(10 * time.Millisecond)
		if err := c.StopScan(); err != nil {
			panic(err)
		}
	}()
	return nil
}

func (c *Camera) StopScan() error {
	c.mu.Lock()
	wasScanning := c.scanning
	c.scanning = false
	c.mu.Unlock()
	if wasScanning {
		c.events.OnScanStopped()
	}
	return nil
}

func (c *Camera) Open(addr ble.Addr) error {
	c.events.OnOpened(nil)
	return nil
}

func (c *Camera) RequestMTU(mtu int) error         { c.events.OnMTU(mtu); return nil }
func (c *Camera) SearchServices(uuid uint16) error { c.events.OnDiscoveryComplete(); return nil }

func (c *Camera) CharacteristicByUUID(uuid uint16) (uint16, error) { return uuid, nil }

func (c *Camera) DescriptorByCharHandle(charHandle, uuid uint16) (uint16, error) {
	return uuid, nil
}

func (c *Camera) WriteDescriptor(handle uint16, data []byte) error { return nil }
func (c *Camera) RegisterNotify(charHandle uint16) error           { return nil }

func (c *Camera) WriteCharacteristic(handle uint16, data []byte, withResponse bool) error {
	frame, err := protocol.Decode(data)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.tx = append(c.tx, frame)
	c.txRaw = append(c.txRaw, append([]byte{}, data...))
	stalled := c.Stalled[[2]uint8{frame.CmdSet(), frame.CmdID()}]
	if stalled {
		c.released = append(c.released, append([]byte{}, data...))
	}
	c.mu.Unlock()

	if !stalled {
		go c.answer(frame)
	}
	return nil
}

func (c *Camera) Advertise(data []byte, duration time.Duration) error { return nil }

func (c *Camera) Close() error {
	c.events.OnDisconnected(0x16)
	return nil
}
