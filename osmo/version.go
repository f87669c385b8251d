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

// Version is the package version.
const Version = "1.0.0"

// FirmwareVersion is the encoded controller firmware version reported in the
// handshake (major.minor.patch packed as 0xMMmmpp00).
const FirmwareVersion = uint32(1<<24 | 0<<16 | 0<<8)
