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
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/cybergarage/go-osmo/osmo/protocol"
)

// versionProductIDLen is the fixed width of the product identifier field.
const versionProductIDLen = 16

// VersionQueryResponse is the reply to the version query (0x00,0x00).
type VersionQueryResponse struct {
	AckResult uint16
	// ProductID is the zero-padded 16-byte ASCII product name, e.g. "DJI-Osmo Action6".
	ProductID string
	// SDKVersion is the variable-length ASCII SDK version.
	SDKVersion string
}

// String returns a printable summary of the version reply.
func (res *VersionQueryResponse) String() string {
	return fmt.Sprintf("%s (SDK %s)", res.ProductID, res.SDKVersion)
}

func decodeVersionQuery(data []byte, cmdType protocol.CmdType) (any, error) {
	if !cmdType.IsResponse() {
		return nil, fmt.Errorf("%w: version query has no command payload", ErrNotDecodable)
	}
	fixed := 2 + versionProductIDLen
	if len(data) < fixed {
		return nil, fmt.Errorf("%w: version query response needs %d bytes, got %d", ErrPayloadTooShort, fixed, len(data))
	}
	return &VersionQueryResponse{
		AckResult:  binary.LittleEndian.Uint16(data[0:2]),
		ProductID:  string(bytes.TrimRight(data[2:2+versionProductIDLen], "\x00")),
		SDKVersion: string(data[fixed:]),
	}, nil
}
