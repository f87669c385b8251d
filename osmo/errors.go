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
)

var (
	// ErrWrongState indicates an operation issued from an incompatible state.
	ErrWrongState = errors.New("wrong session state")
	// ErrHandshakeRejected indicates that the camera refused the handshake.
	ErrHandshakeRejected = errors.New("handshake rejected")
	// ErrReconnectExhausted indicates that the single reconnect attempt failed.
	ErrReconnectExhausted = errors.New("reconnect exhausted")
)
