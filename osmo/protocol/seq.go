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
	"sync/atomic"
)

// SeqGenerator hands out monotonically increasing 16-bit sequence numbers.
// It is safe for concurrent use. The zero value starts at sequence 1.
type SeqGenerator struct {
	last atomic.Uint32
}

// Next returns the next sequence number.
func (g *SeqGenerator) Next() uint16 {
	return uint16(g.last.Add(1))
}
