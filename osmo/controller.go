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

// Package osmo is a BLE-hosted request/response protocol engine for Osmo
// action cameras. The Controller owns the session state machine, the frame
// codec, the correlation table pairing notifications with outstanding
// requests, and the dispatch of unsolicited camera status pushes.
package osmo

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cybergarage/go-logger/log"
	"github.com/cybergarage/go-osmo/osmo/ble"
	"github.com/cybergarage/go-osmo/osmo/correlation"
	"github.com/cybergarage/go-osmo/osmo/metrics"
	"github.com/cybergarage/go-osmo/osmo/protocol"
	"github.com/cybergarage/go-osmo/osmo/protocol/catalog"
	"github.com/cybergarage/go-osmo/osmo/status"
	"github.com/cybergarage/go-osmo/osmo/store"
)

// notifyQueueDepth bounds the raw notification queue between the radio
// callback and the decode worker. Overflow drops the newest buffer.
const notifyQueueDepth = 10

// StatusListener receives unsolicited camera status pushes. Each call gets
// an owned copy; the listener must not retain the pointer across its return.
type StatusListener interface {
	// OnCameraStatus reports a legacy status push (0x1D,0x02).
	OnCameraStatus(push *catalog.CameraStatusPush)
	// OnNewCameraStatus reports a new-format status push (0x1D,0x06).
	OnNewCameraStatus(push *catalog.NewCameraStatusPush)
}

// Controller is the session orchestrator of the engine.
type Controller interface {
	// Start brings up the engine and transitions to InitComplete.
	Start() error
	// Stop tears down the session and the engine workers.
	Stop() error
	// State returns the current session state.
	State() State
	// Connect scans for a camera and establishes the protocol session.
	Connect(preferLast bool, forcePairing bool) error
	// Disconnect closes the protocol session.
	Disconnect() error
	// Wakeup advertises the wake-up record for the stored peer.
	Wakeup() error
	// GetVersion queries the camera product id and SDK version.
	GetVersion() (*catalog.VersionQueryResponse, error)
	// StartRecord starts recording.
	StartRecord() (*catalog.RecordControlResponse, error)
	// StopRecord stops recording.
	StopRecord() (*catalog.RecordControlResponse, error)
	// SwitchMode switches the camera shooting mode.
	SwitchMode(mode catalog.CameraMode) (*catalog.ModeSwitchResponse, error)
	// PushGPS pushes a location fix to the camera.
	PushGPS(fix *catalog.GPSPushCommand) error
	// KeyReportQS reports a quick-switch key press.
	KeyReportQS() (*catalog.KeyReportResponse, error)
	// KeyReportSnapshot reports a snapshot key press.
	KeyReportSnapshot() (*catalog.KeyReportResponse, error)
	// SubscribeStatus subscribes to camera status pushes at 2 Hz.
	SubscribeStatus(mode catalog.PushMode) error
	// SendRawBytes writes a pre-encoded frame given as a hex string.
	SendRawBytes(rawHex string) error
	// SendCommand encodes and dispatches a command, waiting for its reply
	// according to the command type.
	SendCommand(cmdSet, cmdID uint8, cmdType protocol.CmdType, payload any, timeout time.Duration) (any, error)
	// SetStatusListener installs the push listener.
	SetStatusListener(listener StatusListener)
	// SetErrorHandler installs the hook signalled on session-level errors.
	SetErrorHandler(handler func(error))
	// Tracker returns the camera status tracker fed by the push dispatcher.
	Tracker() *status.Tracker
}

type controller struct {
	adapter *ble.Adapter
	table   *correlation.Table
	seq     protocol.SeqGenerator
	store   store.Store
	tracker *status.Tracker

	state atomic.Int32

	localAddr  ble.Addr
	cameraSlot uint8
	fwVersion  uint32
	cmdTimeout time.Duration

	notifyCh   chan []byte
	workerStop chan struct{}
	workerDone chan struct{}

	mu             sync.Mutex
	statusListener StatusListener
	errorHandler   func(error)
}

// ControllerOption configures a Controller.
type ControllerOption func(*controller)

// WithRadio overrides the radio collaborator. The default talks to the host
// Bluetooth stack through go-ble.
func WithRadio(radio ble.Radio) ControllerOption {
	return func(c *controller) { c.adapter = ble.NewAdapter(radio) }
}

// WithStore overrides the peer store. The default is volatile.
func WithStore(s store.Store) ControllerOption {
	return func(c *controller) { c.store = s }
}

// WithLocalAddr sets the controller's own Bluetooth address, which seeds the
// device id and is reported in the handshake.
func WithLocalAddr(addr ble.Addr) ControllerOption {
	return func(c *controller) { c.localAddr = addr }
}

// WithCameraSlot tags the handshake acknowledgement with a camera slot.
func WithCameraSlot(slot uint8) ControllerOption {
	return func(c *controller) { c.cameraSlot = slot }
}

// WithFirmwareVersion overrides the firmware version reported in the handshake.
func WithFirmwareVersion(version uint32) ControllerOption {
	return func(c *controller) { c.fwVersion = version }
}

// WithCommandTimeout overrides the default per-command reply timeout.
func WithCommandTimeout(d time.Duration) ControllerOption {
	return func(c *controller) { c.cmdTimeout = d }
}

// WithStatusListener installs the push listener at construction time.
func WithStatusListener(listener StatusListener) ControllerOption {
	return func(c *controller) { c.statusListener = listener }
}

// NewController returns a new engine controller.
func NewController(opts ...ControllerOption) Controller {
	c := &controller{
		table:      correlation.NewTable(),
		tracker:    status.NewTracker(),
		fwVersion:  FirmwareVersion,
		cmdTimeout: defaultCommandTimeout,
		notifyCh:   make(chan []byte, notifyQueueDepth),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.adapter == nil {
		c.adapter = ble.NewAdapter(ble.NewGoBLERadio())
	}
	if c.store == nil {
		c.store = store.NewMemoryStore(c.localAddr)
	}
	return c
}

// State returns the current session state.
func (c *controller) State() State {
	return State(c.state.Load())
}

func (c *controller) setState(s State) {
	old := State(c.state.Swap(int32(s)))
	if old != s {
		log.Debugf("Session state: %s -> %s", old, s)
	}
}

// Tracker returns the camera status tracker fed by the push dispatcher.
func (c *controller) Tracker() *status.Tracker {
	return c.tracker
}

// SetStatusListener installs the push listener.
func (c *controller) SetStatusListener(listener StatusListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statusListener = listener
}

// SetErrorHandler installs the hook signalled on session-level errors.
func (c *controller) SetErrorHandler(handler func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errorHandler = handler
}

func (c *controller) signalError(err error) {
	c.mu.Lock()
	handler := c.errorHandler
	c.mu.Unlock()
	if handler != nil {
		handler(err)
	}
}

// Start brings up the engine workers and transitions to InitComplete.
func (c *controller) Start() error {
	if c.State() != StateNotInit {
		return nil
	}
	if err := c.table.Start(); err != nil {
		return err
	}

	c.workerStop = make(chan struct{})
	c.workerDone = make(chan struct{})
	go c.notifyWorker()

	c.adapter.SetNotifyHandler(c.onNotify)
	c.adapter.SetDisconnectHandler(c.onDisconnected)

	if peer, ok := c.store.LastCameraAddr(); ok {
		c.adapter.SetPeer(peer)
	}

	c.setState(StateInitComplete)
	log.Infof("Engine started (version %s)", Version)
	return nil
}

// Stop tears down the session and the engine workers.
func (c *controller) Stop() error {
	if c.State() == StateNotInit {
		return nil
	}
	if c.adapter.IsConnected() {
		c.setState(StateDisconnecting)
		if err := c.adapter.Disconnect(); err != nil {
			log.Errorf("Failed to disconnect: %v", err)
		}
	}

	close(c.workerStop)
	<-c.workerDone

	if err := c.table.Stop(); err != nil {
		return err
	}
	c.setState(StateNotInit)
	return nil
}

// onNotify runs in the radio callback context. It only copies the bytes and
// enqueues them; decoding happens in the worker.
func (c *controller) onNotify(data []byte) {
	buf := make([]byte, len(data))
	copy(buf, data)
	select {
	case c.notifyCh <- buf:
	default:
		metrics.NotifyDropped.Inc()
		log.Errorf("Notification queue full, dropping %d bytes", len(data))
	}
}

func (c *controller) notifyWorker() {
	defer close(c.workerDone)
	for {
		select {
		case data := <-c.notifyCh:
			c.processNotification(data)
		case <-c.workerStop:
			return
		}
	}
}

// processNotification decodes one raw notification and routes it: matching
// waiters first, then the push dispatcher for status frames. Codec and
// catalog failures are logged and dropped; stale or adversarial frames must
// not disturb in-flight waiters.
func (c *controller) processNotification(data []byte) {
	frame, err := protocol.Decode(data)
	if err != nil {
		metrics.NotifyDropped.Inc()
		log.Warnf("Dropping notification: %v", err)
		return
	}
	metrics.FramesReceived.Inc()

	if !frame.HasBody() {
		log.Debugf("Dropping bodiless frame seq=0x%04X", frame.Seq())
		return
	}

	payload, err := catalog.Decode(frame.CmdSet(), frame.CmdID(), frame.CmdType(), frame.Payload())
	if err != nil {
		log.Debugf("Dropping frame (0x%02X,0x%02X): %v", frame.CmdSet(), frame.CmdID(), err)
		return
	}

	if err := c.table.Deliver(frame.Seq(), frame.CmdSet(), frame.CmdID(), payload); err != nil {
		log.Warnf("Failed to deliver frame seq=0x%04X: %v", frame.Seq(), err)
	}

	c.dispatchPush(frame.CmdSet(), frame.CmdID(), payload)
}

// dispatchPush fans a copy of a status payload out to the registered
// listener and the tracker. The copy keeps the correlation table's payload
// isolated from listener mutation.
func (c *controller) dispatchPush(cmdSet, cmdID uint8, payload any) {
	if cmdSet != 0x1D {
		return
	}
	c.mu.Lock()
	listener := c.statusListener
	c.mu.Unlock()

	switch cmdID {
	case 0x02:
		push, ok := payload.(*catalog.CameraStatusPush)
		if !ok {
			return
		}
		metrics.StatusPushes.Inc()
		owned := *push
		c.tracker.Update(&owned)
		if listener != nil {
			owned := *push
			listener.OnCameraStatus(&owned)
		}
	case 0x06:
		push, ok := payload.(*catalog.NewCameraStatusPush)
		if !ok {
			return
		}
		metrics.StatusPushes.Inc()
		owned := *push
		c.tracker.UpdateNew(&owned)
		if listener != nil {
			owned := *push
			listener.OnNewCameraStatus(&owned)
		}
	}
}

// onDisconnected runs in the radio callback context and drives the
// reconnection policy.
func (c *controller) onDisconnected(reason uint8) {
	switch c.State() {
	case StateScanning, StateInitComplete, StateNotInit:
		// Nothing to unwind.
	case StateDisconnecting:
		log.Infof("Disconnect completed")
		c.tracker.Reset()
		c.setState(StateInitComplete)
	default:
		log.Warnf("Unexpected disconnect (reason=0x%02X), attempting one reconnect", reason)
		go c.reconnect()
	}
}

// reconnect performs the single reconnection attempt against the stored peer.
func (c *controller) reconnect() {
	metrics.Reconnects.Inc()
	c.setState(StateScanning)

	if err := c.adapter.ScanAndConnect(true); err != nil {
		log.Errorf("Reconnect scan failed: %v", err)
		c.failReconnect()
		return
	}
	if err := c.adapter.WaitConnected(reconnectTimeout); err != nil {
		log.Errorf("Reconnect timed out: %v", err)
		c.failReconnect()
		return
	}
	log.Infof("Reconnected to %s", c.adapter.Peer())
	c.setState(StateBleConnected)
}

func (c *controller) failReconnect() {
	c.tracker.Reset()
	if err := c.adapter.Disconnect(); err != nil {
		log.Errorf("Failed to disconnect after reconnect failure: %v", err)
	}
	c.setState(StateInitComplete)
	c.signalError(ErrReconnectExhausted)
}
