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

package store

import (
	"sync"

	"github.com/cybergarage/go-osmo/osmo/ble"
)

// memoryStore is a volatile Store for tests and throwaway sessions.
type memoryStore struct {
	mu        sync.Mutex
	addr      ble.Addr
	hasAddr   bool
	paired    bool
	deviceID  uint32
	localAddr ble.Addr
}

// NewMemoryStore returns a volatile in-memory peer store.
func NewMemoryStore(localAddr ble.Addr) Store {
	return &memoryStore{
		localAddr: localAddr,
	}
}

func (s *memoryStore) LastCameraAddr() (ble.Addr, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr, s.hasAddr
}

func (s *memoryStore) SetLastCameraAddr(addr ble.Addr) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addr = addr
	s.hasAddr = true
	return nil
}

func (s *memoryStore) ClearLastCameraAddr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addr = ble.Addr{}
	s.hasAddr = false
	return nil
}

func (s *memoryStore) Paired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paired
}

func (s *memoryStore) SetPaired(paired bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paired = paired
	return nil
}

func (s *memoryStore) DeviceID() (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deviceID == 0 {
		s.deviceID = DeriveDeviceID(s.localAddr)
	}
	return s.deviceID, nil
}

func (s *memoryStore) FactoryReset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addr = ble.Addr{}
	s.hasAddr = false
	s.paired = false
	s.deviceID = 0
	return nil
}

func (s *memoryStore) Close() error {
	return nil
}
