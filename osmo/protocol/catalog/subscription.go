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

package catalog

import (
	"fmt"

	"github.com/cybergarage/go-osmo/osmo/protocol"
)

// StatusSubscriptionCommand subscribes to camera status pushes (0x1D,0x05).
// The camera only accepts PushFreq2Hz.
type StatusSubscriptionCommand struct {
	PushMode PushMode
	PushFreq uint8
	Reserved [4]byte
}

func encodeStatusSubscription(payload any, cmdType protocol.CmdType) ([]byte, error) {
	if cmdType.IsResponse() {
		return nil, fmt.Errorf("%w: status subscription response", ErrNotEncodable)
	}
	cmd, ok := payload.(*StatusSubscriptionCommand)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedPayload, payload)
	}
	data := make([]byte, 6)
	data[0] = uint8(cmd.PushMode)
	data[1] = cmd.PushFreq
	copy(data[2:6], cmd.Reserved[:])
	return data, nil
}
