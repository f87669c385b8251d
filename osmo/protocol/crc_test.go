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
	"encoding/hex"
	"testing"
)

func TestCRC16KnownHeader(t *testing.T) {
	// Header bytes and checksum captured from a camera notification.
	header, err := hex.DecodeString("AA3800010000000071D5")
	if err != nil {
		t.Fatal(err)
	}
	if crc := CRC16(header); crc != 0x403C {
		t.Errorf("CRC16 = 0x%04X, want 0x403C", crc)
	}
}

func TestCRC16Empty(t *testing.T) {
	if crc := CRC16(nil); crc != crc16Init {
		t.Errorf("CRC16(nil) = 0x%04X, want seed 0x%04X", crc, crc16Init)
	}
}

func TestCRC32Empty(t *testing.T) {
	if crc := CRC32(nil); crc != crc32Init {
		t.Errorf("CRC32(nil) = 0x%08X, want seed 0x%08X", crc, crc32Init)
	}
}

func TestCRCSingleBitSensitivity(t *testing.T) {
	data := []byte{0xAA, 0x12, 0x00, 0x02, 0x00, 0x00, 0x00, 0x00, 0x34, 0x12}
	crc16 := CRC16(data)
	crc32 := CRC32(data)
	for i := range data {
		for bit := 0; bit < 8; bit++ {
			flipped := make([]byte, len(data))
			copy(flipped, data)
			flipped[i] ^= 1 << bit
			if CRC16(flipped) == crc16 {
				t.Errorf("CRC16 unchanged after flipping byte %d bit %d", i, bit)
			}
			if CRC32(flipped) == crc32 {
				t.Errorf("CRC32 unchanged after flipping byte %d bit %d", i, bit)
			}
		}
	}
}
