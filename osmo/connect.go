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

package osmo

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/cybergarage/go-logger/log"
	"github.com/cybergarage/go-osmo/osmo/ble"
	"github.com/cybergarage/go-osmo/osmo/protocol"
	"github.com/cybergarage/go-osmo/osmo/protocol/catalog"
)

// Connect scans for a camera, opens the link and runs the protocol
// handshake. With preferLast set, the stored peer is targeted directly; with
// forcePairing set, a fresh pairing is requested even from a known peer.
func (c *controller) Connect(preferLast bool, forcePairing bool) error {
	switch c.State() {
	case StateProtocolConnected:
		return nil
	case StateNotInit:
		return fmt.Errorf("%w: %s", ErrWrongState, c.State())
	case StateScanning, StateDisconnecting:
		return fmt.Errorf("%w: %s", ErrWrongState, c.State())
	}

	// Tear down whatever session was left behind.
	if c.adapter.IsConnected() {
		if err := c.adapter.Disconnect(); err != nil {
			log.Errorf("Failed to tear down prior session: %v", err)
		}
	}
	c.setState(StateScanning)

	reconnect := false
	if preferLast {
		if peer, ok := c.store.LastCameraAddr(); ok {
			c.adapter.SetPeer(peer)
			reconnect = true
		}
	}

	if err := c.adapter.ScanAndConnect(reconnect); err != nil {
		c.setState(StateInitComplete)
		return err
	}
	if err := c.adapter.WaitConnected(connectTimeout); err != nil {
		log.Warnf("BLE connection timed out")
		c.setState(StateInitComplete)
		return err
	}
	if err := c.adapter.WaitHandles(discoveryTimeout); err != nil {
		log.Warnf("Characteristic handles not found within timeout")
		c.teardownLink()
		return err
	}
	if err := c.adapter.SubscribeNotify(); err != nil {
		c.teardownLink()
		return err
	}
	c.setState(StateBleConnected)
	log.Infof("BLE connected to %s", c.adapter.Peer())

	verifyMode := catalog.VerifyModePair
	if reconnect && !forcePairing {
		verifyMode = catalog.VerifyModeReconnect
	}
	if err := c.handshake(verifyMode); err != nil {
		return err
	}

	// The camera expects a version query and a status subscription right
	// after the handshake; the version result itself is not interesting.
	if _, err := c.GetVersion(); err != nil {
		log.Warnf("Version query after handshake failed: %v", err)
	}
	if err := c.SubscribeStatus(catalog.PushModePeriodicOnChange); err != nil {
		log.Warnf("Status subscription failed: %v", err)
	}

	peer := c.adapter.Peer()
	if err := c.store.SetLastCameraAddr(peer); err != nil {
		log.Errorf("Failed to persist peer address: %v", err)
	}
	if err := c.store.SetPaired(true); err != nil {
		log.Errorf("Failed to persist paired flag: %v", err)
	}
	return nil
}

// handshake runs the connection exchange on (0x00,0x19). The camera replies
// either with a response frame on our sequence or directly with its own
// command frame; a short tolerant by-seq wait followed by the authoritative
// by-cmd wait covers both.
func (c *controller) handshake(verifyMode uint8) error {
	deviceID, err := c.store.DeviceID()
	if err != nil {
		log.Errorf("Failed to load device id: %v", err)
		deviceID = 1
	}

	request := &catalog.ConnectionRequest{
		DeviceID:   deviceID,
		MACLen:     ble.AddrLen,
		FWVersion:  c.fwVersion,
		VerifyMode: verifyMode,
		VerifyData: uint16(rand.Intn(10000)),
	}
	copy(request.MAC[:], c.localAddr[:])

	log.Infof("Starting protocol handshake (verify_mode=%d)", verifyMode)

	// Phase 1: a response frame on our sequence, if the camera sends one.
	ourSeq := c.seq.Next()
	reply, err := c.sendCommandWithSeq(0x00, 0x19, protocol.CmdWaitResult, request, ourSeq, handshakeReplyTimeout)
	switch v := reply.(type) {
	case *catalog.ConnectionResponse:
		if v.RetCode != 0 {
			log.Errorf("Handshake refused, ret_code=%d", v.RetCode)
			return c.rejectHandshake()
		}
		log.Infof("Handshake response accepted, waiting for the camera's connection command")
	case *catalog.ConnectionRequest:
		// The camera skipped the response and reused our sequence for its
		// own command frame.
		return c.finishHandshake(deviceID, ourSeq, v)
	default:
		if state := c.State(); state != StateBleConnected && state != StateProtocolConnected {
			// The write itself failed and the link is already torn down.
			return err
		}
		if err != nil {
			log.Infof("No handshake response frame (%v), waiting for the camera's connection command", err)
		}
	}

	// Phase 2: the camera's own command frame is the source of truth.
	seq, payload, err := c.table.WaitForCmd(0x00, 0x19, handshakeCommandTimeout)
	if err != nil {
		log.Errorf("Camera connection command did not arrive: %v", err)
		return c.rejectHandshake()
	}
	command, ok := payload.(*catalog.ConnectionRequest)
	if !ok {
		log.Errorf("Unexpected handshake payload type %T", payload)
		return c.rejectHandshake()
	}
	return c.finishHandshake(deviceID, seq, command)
}

// finishHandshake validates the camera's connection command and sends the
// acknowledgement on the sequence the camera chose.
func (c *controller) finishHandshake(deviceID uint32, seq uint16, command *catalog.ConnectionRequest) error {
	if command.VerifyMode != catalog.VerifyModeCameraDecision {
		log.Errorf("Unexpected verify_mode from camera: %d", command.VerifyMode)
		return c.rejectHandshake()
	}
	if command.VerifyData != 0 {
		log.Warnf("Camera rejected the connection (verify_data=%d)", command.VerifyData)
		return c.rejectHandshake()
	}

	response := &catalog.ConnectionResponse{
		DeviceID: deviceID,
		RetCode:  0,
	}
	response.Reserved[0] = c.cameraSlot

	if _, err := c.sendCommandWithSeq(0x00, 0x19, protocol.AckNoResponse, response, seq, c.cmdTimeout); err != nil {
		log.Errorf("Failed to send handshake acknowledgement: %v", err)
		return c.rejectHandshake()
	}

	c.setState(StateProtocolConnected)
	log.Infof("Protocol connection established")
	return nil
}

func (c *controller) rejectHandshake() error {
	c.signalError(ErrHandshakeRejected)
	c.teardownLink()
	return ErrHandshakeRejected
}

// teardownLink closes the BLE session after a failure below the protocol
// layer and resets the state machine.
func (c *controller) teardownLink() {
	if !c.adapter.IsConnected() {
		c.tracker.Reset()
		c.setState(StateInitComplete)
		return
	}
	c.setState(StateDisconnecting)
	if err := c.adapter.Disconnect(); err != nil {
		log.Errorf("Failed to disconnect: %v", err)
		c.setState(StateInitComplete)
	}
}

// Disconnect closes the protocol session.
func (c *controller) Disconnect() error {
	state := c.State()
	if state == StateNotInit {
		return fmt.Errorf("%w: %s", ErrWrongState, state)
	}
	c.tracker.Reset()
	if !c.adapter.IsConnected() {
		c.setState(StateInitComplete)
		return nil
	}
	c.setState(StateDisconnecting)
	if err := c.adapter.Disconnect(); err != nil {
		c.setState(state)
		return err
	}
	return nil
}

// Wakeup advertises the wake-up record so a sleeping camera powers back on.
func (c *controller) Wakeup() error {
	if peer, ok := c.store.LastCameraAddr(); ok {
		c.adapter.SetPeer(peer)
	}
	err := c.adapter.AdvertiseWakeup()
	if err != nil && errors.Is(err, ble.ErrNoDevice) {
		return fmt.Errorf("%w: no camera was ever paired", err)
	}
	return err
}
