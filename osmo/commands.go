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
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/cybergarage/go-logger/log"
	"github.com/cybergarage/go-osmo/osmo/correlation"
	"github.com/cybergarage/go-osmo/osmo/errors"
	"github.com/cybergarage/go-osmo/osmo/metrics"
	"github.com/cybergarage/go-osmo/osmo/protocol"
	"github.com/cybergarage/go-osmo/osmo/protocol/catalog"
)

// Reference timeouts of the session orchestrator.
const (
	defaultCommandTimeout   = 5 * time.Second
	connectTimeout          = 15 * time.Second
	discoveryTimeout        = 15 * time.Second
	handshakeReplyTimeout   = 1 * time.Second
	handshakeCommandTimeout = 60 * time.Second
	reconnectTimeout        = 30 * time.Second
)

// commandDeviceID is the fixed device id the camera expects in command
// payloads outside the handshake.
const commandDeviceID = uint32(0x33FF0000)

// modeSwitchReserved is the opaque tail the camera expects on mode switches.
var modeSwitchReserved = [4]byte{0x01, 0x47, 0x39, 0x36}

// SendCommand encodes and dispatches a command with a fresh sequence and
// waits for its reply according to the command type's reply policy.
func (c *controller) SendCommand(cmdSet, cmdID uint8, cmdType protocol.CmdType, payload any, timeout time.Duration) (any, error) {
	return c.sendCommandWithSeq(cmdSet, cmdID, cmdType, payload, c.seq.Next(), timeout)
}

func (c *controller) sendCommandWithSeq(cmdSet, cmdID uint8, cmdType protocol.CmdType, payload any, seq uint16, timeout time.Duration) (any, error) {
	if state := c.State(); state != StateBleConnected && state != StateProtocolConnected {
		return nil, fmt.Errorf("%w: %s", ErrWrongState, state)
	}

	body, err := catalog.Encode(cmdSet, cmdID, cmdType, payload)
	if err != nil {
		return nil, err
	}
	frame, err := protocol.Encode(cmdSet, cmdID, cmdType, seq, body)
	if err != nil {
		return nil, err
	}

	policy := cmdType.ReplyPolicy()
	if policy != protocol.ReplyNone {
		if err := c.table.AllocateBySeq(seq); err != nil {
			return nil, err
		}
	}

	log.Debugf("TX seq=0x%04X cmd=(0x%02X,0x%02X) type=%s %d bytes", seq, cmdSet, cmdID, cmdType, len(frame))
	if policy == protocol.ReplyNone {
		err = c.adapter.WriteWithoutResponse(frame)
	} else {
		err = c.adapter.WriteWithResponse(frame)
	}
	if err != nil {
		if policy != protocol.ReplyNone {
			c.table.FreeBySeq(seq)
		}
		// A failed write means the link is gone; tear it down.
		log.Errorf("Write failed, closing link: %v", err)
		c.teardownLink()
		return nil, err
	}
	metrics.FramesSent.Inc()

	if policy == protocol.ReplyNone {
		return nil, nil
	}

	result, err := c.table.WaitForSeq(seq, timeout)
	if err != nil {
		if errors.Is(err, correlation.ErrTimeout) {
			metrics.CommandTimeouts.Inc()
			if policy == protocol.ReplyOptional {
				// A missing reply is tolerated for this policy.
				log.Warnf("No reply for seq=0x%04X, continuing", seq)
				return nil, nil
			}
		}
		return nil, err
	}
	return result, nil
}

// requireProtocol guards the high-level command wrappers.
func (c *controller) requireProtocol() error {
	if state := c.State(); state != StateProtocolConnected {
		return fmt.Errorf("%w: %s", ErrWrongState, state)
	}
	return nil
}

// GetVersion queries the camera product id and SDK version.
func (c *controller) GetVersion() (*catalog.VersionQueryResponse, error) {
	if err := c.requireProtocol(); err != nil {
		return nil, err
	}
	reply, err := c.SendCommand(0x00, 0x00, protocol.CmdWaitResult, nil, c.cmdTimeout)
	if err != nil {
		return nil, err
	}
	res, ok := reply.(*catalog.VersionQueryResponse)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected reply %T", errors.ErrInvalid, reply)
	}
	log.Infof("Camera version: %s", res)
	return res, nil
}

func (c *controller) recordControl(ctrl uint8) (*catalog.RecordControlResponse, error) {
	if err := c.requireProtocol(); err != nil {
		return nil, err
	}
	command := &catalog.RecordControlCommand{
		DeviceID:   commandDeviceID,
		RecordCtrl: ctrl,
	}
	reply, err := c.SendCommand(0x1D, 0x03, protocol.CmdResponseOrNot, command, c.cmdTimeout)
	if err != nil {
		return nil, err
	}
	res, ok := reply.(*catalog.RecordControlResponse)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected reply %T", errors.ErrInvalid, reply)
	}
	return res, nil
}

// StartRecord starts recording.
func (c *controller) StartRecord() (*catalog.RecordControlResponse, error) {
	log.Infof("Starting recording")
	return c.recordControl(catalog.RecordCtrlStart)
}

// StopRecord stops recording.
func (c *controller) StopRecord() (*catalog.RecordControlResponse, error) {
	log.Infof("Stopping recording")
	return c.recordControl(catalog.RecordCtrlStop)
}

// SwitchMode switches the camera shooting mode.
func (c *controller) SwitchMode(mode catalog.CameraMode) (*catalog.ModeSwitchResponse, error) {
	if err := c.requireProtocol(); err != nil {
		return nil, err
	}
	log.Infof("Switching camera mode to %s", mode)
	command := &catalog.ModeSwitchCommand{
		DeviceID: commandDeviceID,
		Mode:     mode,
		Reserved: modeSwitchReserved,
	}
	reply, err := c.SendCommand(0x1D, 0x04, protocol.CmdResponseOrNot, command, c.cmdTimeout)
	if err != nil {
		return nil, err
	}
	res, ok := reply.(*catalog.ModeSwitchResponse)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected reply %T", errors.ErrInvalid, reply)
	}
	return res, nil
}

// PushGPS pushes a location fix to the camera.
func (c *controller) PushGPS(fix *catalog.GPSPushCommand) error {
	if err := c.requireProtocol(); err != nil {
		return err
	}
	if fix == nil {
		return fmt.Errorf("%w: nil GPS fix", errors.ErrInvalid)
	}
	if _, err := c.SendCommand(0x00, 0x17, protocol.CmdNoResponse, fix, c.cmdTimeout); err != nil {
		return err
	}
	metrics.GPSPushes.Inc()
	return nil
}

func (c *controller) keyReport(keyCode uint8) (*catalog.KeyReportResponse, error) {
	if err := c.requireProtocol(); err != nil {
		return nil, err
	}
	command := &catalog.KeyReportCommand{
		KeyCode:  keyCode,
		Mode:     catalog.KeyReportModeEvent,
		KeyValue: catalog.KeyValueShortPress,
	}
	reply, err := c.SendCommand(0x00, 0x11, protocol.CmdResponseOrNot, command, c.cmdTimeout)
	if err != nil {
		return nil, err
	}
	res, ok := reply.(*catalog.KeyReportResponse)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected reply %T", errors.ErrInvalid, reply)
	}
	return res, nil
}

// KeyReportQS reports a quick-switch key press.
func (c *controller) KeyReportQS() (*catalog.KeyReportResponse, error) {
	log.Infof("Reporting quick-switch key press")
	return c.keyReport(catalog.KeyCodeQS)
}

// KeyReportSnapshot reports a snapshot key press.
func (c *controller) KeyReportSnapshot() (*catalog.KeyReportResponse, error) {
	log.Infof("Reporting snapshot key press")
	return c.keyReport(catalog.KeyCodeSnapshot)
}

// SubscribeStatus subscribes to camera status pushes. The push frequency is
// fixed at 2 Hz; the camera accepts no other rate.
func (c *controller) SubscribeStatus(mode catalog.PushMode) error {
	if err := c.requireProtocol(); err != nil {
		return err
	}
	command := &catalog.StatusSubscriptionCommand{
		PushMode: mode,
		PushFreq: catalog.PushFreq2Hz,
	}
	_, err := c.SendCommand(0x1D, 0x05, protocol.CmdNoResponse, command, c.cmdTimeout)
	return err
}

// SendRawBytes writes a pre-encoded frame given as a hex string. Separators
// such as spaces, commas and 0x prefixes are tolerated.
func (c *controller) SendRawBytes(rawHex string) error {
	if state := c.State(); state != StateBleConnected && state != StateProtocolConnected {
		return fmt.Errorf("%w: %s", ErrWrongState, state)
	}

	cleaned := strings.NewReplacer(" ", "", ",", "", "0x", "", "0X", "", "\t", "").Replace(rawHex)
	data, err := hex.DecodeString(cleaned)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalid, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: empty frame", errors.ErrInvalid)
	}
	if err := c.adapter.WriteWithResponse(data); err != nil {
		return err
	}
	metrics.FramesSent.Inc()
	return nil
}
