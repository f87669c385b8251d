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

// Package catalog maps each (CmdSet, CmdID) pair to the typed payload codecs
// of the command family. The catalog is frame-agnostic: encoders produce the
// bytes after CmdID, decoders consume them. A single entry serves command and
// response frames, distinguished by the response bit of the command type.
package catalog

import (
	"errors"
	"fmt"

	"github.com/cybergarage/go-osmo/osmo/protocol"
)

var (
	// ErrUnknownCommand indicates that no catalog entry exists for the command.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrNotEncodable indicates that the command has no encoder for the direction.
	ErrNotEncodable = errors.New("command not encodable")
	// ErrNotDecodable indicates that the command has no decoder for the direction.
	ErrNotDecodable = errors.New("command not decodable")
	// ErrPayloadTooShort indicates that the payload is shorter than the fixed layout.
	ErrPayloadTooShort = errors.New("payload too short")
	// ErrUnsupportedPayload indicates that the payload value has an unexpected type.
	ErrUnsupportedPayload = errors.New("unsupported payload type")
)

// EncodeFunc turns a typed payload into the frame data segment after CmdID.
type EncodeFunc func(payload any, cmdType protocol.CmdType) ([]byte, error)

// DecodeFunc turns the frame data segment after CmdID back into a typed payload.
type DecodeFunc func(data []byte, cmdType protocol.CmdType) (any, error)

// Descriptor binds a command family to its payload codecs. Either codec may be
// nil for push-only or query-only commands.
type Descriptor struct {
	CmdSet  uint8
	CmdID   uint8
	Encoder EncodeFunc
	Decoder DecodeFunc
}

var descriptors = []Descriptor{
	{0x00, 0x00, nil, decodeVersionQuery},
	{0x00, 0x11, encodeKeyReport, decodeKeyReport},
	{0x00, 0x17, encodeGPSPush, nil},
	{0x00, 0x19, encodeConnection, decodeConnection},
	{0x1D, 0x02, nil, decodeCameraStatusPush},
	{0x1D, 0x03, encodeRecordControl, decodeRecordControl},
	{0x1D, 0x04, encodeModeSwitch, decodeModeSwitch},
	{0x1D, 0x05, encodeStatusSubscription, nil},
	{0x1D, 0x06, nil, decodeNewCameraStatusPush},
}

// Lookup returns the descriptor registered for the command family.
func Lookup(cmdSet, cmdID uint8) (*Descriptor, bool) {
	for n := range descriptors {
		if descriptors[n].CmdSet == cmdSet && descriptors[n].CmdID == cmdID {
			return &descriptors[n], true
		}
	}
	return nil, false
}

// Encode serializes the typed payload of the command. A nil payload yields an
// empty data segment for commands sent without one, such as the version query.
func Encode(cmdSet, cmdID uint8, cmdType protocol.CmdType, payload any) ([]byte, error) {
	if payload == nil {
		return nil, nil
	}
	desc, ok := Lookup(cmdSet, cmdID)
	if !ok {
		return nil, fmt.Errorf("%w: (0x%02X,0x%02X)", ErrUnknownCommand, cmdSet, cmdID)
	}
	if desc.Encoder == nil {
		return nil, fmt.Errorf("%w: (0x%02X,0x%02X)", ErrNotEncodable, cmdSet, cmdID)
	}
	return desc.Encoder(payload, cmdType)
}

// Decode parses the data segment of the command into its typed payload.
func Decode(cmdSet, cmdID uint8, cmdType protocol.CmdType, data []byte) (any, error) {
	desc, ok := Lookup(cmdSet, cmdID)
	if !ok {
		return nil, fmt.Errorf("%w: (0x%02X,0x%02X)", ErrUnknownCommand, cmdSet, cmdID)
	}
	if desc.Decoder == nil {
		return nil, fmt.Errorf("%w: (0x%02X,0x%02X)", ErrNotDecodable, cmdSet, cmdID)
	}
	return desc.Decoder(data, cmdType)
}
