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

package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeDecodeRoundtrip(t *testing.T) {
	tests := []struct {
		name    string
		cmdSet  uint8
		cmdID   uint8
		cmdType CmdType
		seq     uint16
		payload []byte
	}{
		{"empty payload", 0x00, 0x00, CmdWaitResult, 1, nil},
		{"record control", 0x1D, 0x03, CmdResponseOrNot, 0x1234, []byte{0x00, 0x00, 0xFF, 0x33, 0x00, 0x00, 0x00, 0x00, 0x00}},
		{"single byte ack", 0x1D, 0x03, AckResponseOrNot, 0xFFFF, []byte{0x00}},
		{"max payload", 0x00, 0x17, CmdNoResponse, 42, bytes.Repeat([]byte{0xA5}, MaxPayloadLen)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Encode(tt.cmdSet, tt.cmdID, tt.cmdType, tt.seq, tt.payload)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			f, err := Decode(raw)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if f.CmdSet() != tt.cmdSet || f.CmdID() != tt.cmdID {
				t.Errorf("command mismatch: got (0x%02X,0x%02X), want (0x%02X,0x%02X)",
					f.CmdSet(), f.CmdID(), tt.cmdSet, tt.cmdID)
			}
			if f.CmdType() != tt.cmdType {
				t.Errorf("CmdType = %s, want %s", f.CmdType(), tt.cmdType)
			}
			if f.Seq() != tt.seq {
				t.Errorf("Seq = 0x%04X, want 0x%04X", f.Seq(), tt.seq)
			}
			if f.Version() != 0 {
				t.Errorf("Version = %d, want 0", f.Version())
			}
			if !bytes.Equal(f.Payload(), tt.payload) {
				t.Errorf("payload mismatch: got %d bytes, want %d bytes", len(f.Payload()), len(tt.payload))
			}
		})
	}
}

func TestEncodeTooLong(t *testing.T) {
	_, err := Encode(0x00, 0x17, CmdNoResponse, 1, make([]byte, MaxPayloadLen+1))
	if !errors.Is(err, ErrFrameTooLong) {
		t.Errorf("err = %v, want ErrFrameTooLong", err)
	}
}

func TestDecodeTooShort(t *testing.T) {
	_, err := Decode(make([]byte, minFrameLen-1))
	if !errors.Is(err, ErrFrameTooShort) {
		t.Errorf("err = %v, want ErrFrameTooShort", err)
	}
}

func TestDecodeBadSOF(t *testing.T) {
	raw, err := Encode(0x1D, 0x03, CmdResponseOrNot, 7, []byte{0x00})
	if err != nil {
		t.Fatal(err)
	}
	raw[0] = 0xAB
	if _, err := Decode(raw); !errors.Is(err, ErrBadSOF) {
		t.Errorf("err = %v, want ErrBadSOF", err)
	}
}

func TestDecodeLengthMismatch(t *testing.T) {
	raw, err := Encode(0x1D, 0x03, CmdResponseOrNot, 7, []byte{0x00})
	if err != nil {
		t.Fatal(err)
	}
	// Extra trailing bytes must not be silently accepted.
	grown := append(append([]byte{}, raw...), 0x00, 0x00)
	if _, err := Decode(grown); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("err = %v, want ErrLengthMismatch", err)
	}
}

// Flipping any single bit of a valid frame must fail decoding with a
// distinguishable error.
func TestDecodeTamperDetection(t *testing.T) {
	raw, err := Encode(0x1D, 0x02, AckNoResponse, 0x55AA, []byte{0x01, 0x02, 0x03, 0x04, 0x05})
	if err != nil {
		t.Fatal(err)
	}
	for i := range raw {
		for bit := 0; bit < 8; bit++ {
			tampered := make([]byte, len(raw))
			copy(tampered, raw)
			tampered[i] ^= 1 << bit
			_, err := Decode(tampered)
			if err == nil {
				t.Fatalf("tampered frame (byte %d bit %d) decoded successfully", i, bit)
			}
			switch {
			case errors.Is(err, ErrBadSOF),
				errors.Is(err, ErrLengthMismatch),
				errors.Is(err, ErrBadCRC16),
				errors.Is(err, ErrBadCRC32):
			default:
				t.Fatalf("tampered frame (byte %d bit %d) failed with unexpected error: %v", i, bit, err)
			}
		}
	}
}

func TestDecodeEmptyBodyFrame(t *testing.T) {
	// A 16-byte frame carries no CmdSet/CmdID at all.
	raw := make([]byte, minFrameLen)
	raw[0] = SOF
	raw[1] = byte(minFrameLen)
	raw[3] = byte(AckNoResponse)
	raw[8] = 0x01
	crc16 := CRC16(raw[:10])
	raw[10] = byte(crc16)
	raw[11] = byte(crc16 >> 8)
	crc32 := CRC32(raw[:12])
	raw[12] = byte(crc32)
	raw[13] = byte(crc32 >> 8)
	raw[14] = byte(crc32 >> 16)
	raw[15] = byte(crc32 >> 24)

	f, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if f.HasBody() {
		t.Error("HasBody = true, want false")
	}
	if len(f.Payload()) != 0 {
		t.Errorf("payload length = %d, want 0", len(f.Payload()))
	}
}

func TestDecodePayloadIsView(t *testing.T) {
	raw, err := Encode(0x00, 0x11, CmdResponseOrNot, 3, []byte{0x02, 0x01, 0x00, 0x00})
	if err != nil {
		t.Fatal(err)
	}
	f, err := Decode(raw)
	if err != nil {
		t.Fatal(err)
	}
	raw[14] = 0x7F
	if f.Payload()[0] != 0x7F {
		t.Error("payload is not a view into the decoded buffer")
	}
}

func TestSeqGenerator(t *testing.T) {
	var g SeqGenerator
	if got := g.Next(); got != 1 {
		t.Errorf("first seq = %d, want 1", got)
	}
	if got := g.Next(); got != 2 {
		t.Errorf("second seq = %d, want 2", got)
	}
}

func TestCmdType(t *testing.T) {
	tests := []struct {
		cmdType  CmdType
		response bool
		policy   ReplyPolicy
	}{
		{CmdNoResponse, false, ReplyNone},
		{CmdResponseOrNot, false, ReplyOptional},
		{CmdWaitResult, false, ReplyRequired},
		{AckNoResponse, true, ReplyNone},
		{AckResponseOrNot, true, ReplyOptional},
		{AckWaitResult, true, ReplyRequired},
	}
	for _, tt := range tests {
		t.Run(tt.cmdType.String(), func(t *testing.T) {
			if tt.cmdType.IsResponse() != tt.response {
				t.Errorf("IsResponse = %t, want %t", tt.cmdType.IsResponse(), tt.response)
			}
			if tt.cmdType.ReplyPolicy() != tt.policy {
				t.Errorf("ReplyPolicy = 0x%02X, want 0x%02X", tt.cmdType.ReplyPolicy(), tt.policy)
			}
		})
	}
}
