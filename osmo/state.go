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

// State is the session state of the controller.
type State int32

const (
	// StateNotInit means the engine has not been started.
	StateNotInit State = iota
	// StateInitComplete means the engine is started but no session exists.
	StateInitComplete
	// StateScanning means a scan or connection attempt is in flight.
	StateScanning
	// StateBleConnected means the link is up but the protocol handshake is not.
	StateBleConnected
	// StateProtocolConnected means the handshake completed.
	StateProtocolConnected
	// StateDisconnecting means a deliberate teardown is in progress.
	StateDisconnecting
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateNotInit:
		return "NotInit"
	case StateInitComplete:
		return "InitComplete"
	case StateScanning:
		return "Scanning"
	case StateBleConnected:
		return "BleConnected"
	case StateProtocolConnected:
		return "ProtocolConnected"
	case StateDisconnecting:
		return "Disconnecting"
	}
	return "Unknown"
}
