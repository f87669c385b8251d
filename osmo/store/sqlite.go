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
	"database/sql"
	"errors"
	"fmt"

	"github.com/cybergarage/go-logger/log"
	"github.com/cybergarage/go-osmo/osmo/ble"

	_ "modernc.org/sqlite"
)

// Persisted keys.
const (
	keyCameraAddr = "cam_bda"
	keyPaired     = "paired"
	keyDeviceID   = "dev_id"
)

// sqliteStore keeps the bonded peer in a single-table SQLite database.
type sqliteStore struct {
	db *sql.DB
	// localAddr seeds the device id derivation.
	localAddr ble.Addr
}

// NewSQLiteStore opens (and creates when missing) the peer store at the
// given path. The local controller address seeds the device id derivation.
func NewSQLiteStore(path string, localAddr ble.Addr) (Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS peer (key TEXT PRIMARY KEY, value BLOB)`); err != nil {
		if cerr := db.Close(); cerr != nil {
			log.Errorf("Failed to close peer store: %v", cerr)
		}
		return nil, err
	}
	return &sqliteStore{
		db:        db,
		localAddr: localAddr,
	}, nil
}

func (s *sqliteStore) get(key string) ([]byte, bool) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM peer WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Errorf("Failed to read %q from peer store: %v", key, err)
		}
		return nil, false
	}
	return value, true
}

func (s *sqliteStore) set(key string, value []byte) error {
	_, err := s.db.Exec(`INSERT INTO peer (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

func (s *sqliteStore) delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM peer WHERE key = ?`, key)
	return err
}

// LastCameraAddr returns the stored camera address, if any.
func (s *sqliteStore) LastCameraAddr() (ble.Addr, bool) {
	var addr ble.Addr
	value, ok := s.get(keyCameraAddr)
	if !ok || len(value) != ble.AddrLen {
		return addr, false
	}
	copy(addr[:], value)
	if addr.IsZero() {
		return addr, false
	}
	return addr, true
}

// SetLastCameraAddr stores the camera address.
func (s *sqliteStore) SetLastCameraAddr(addr ble.Addr) error {
	if addr.IsZero() {
		return fmt.Errorf("refusing to store the zero address")
	}
	return s.set(keyCameraAddr, addr[:])
}

// ClearLastCameraAddr forgets the stored camera address.
func (s *sqliteStore) ClearLastCameraAddr() error {
	return s.delete(keyCameraAddr)
}

// Paired reports whether a pairing completed against the stored peer.
func (s *sqliteStore) Paired() bool {
	value, ok := s.get(keyPaired)
	return ok && len(value) == 1 && value[0] != 0
}

// SetPaired stores the paired flag.
func (s *sqliteStore) SetPaired(paired bool) error {
	value := []byte{0}
	if paired {
		value[0] = 1
	}
	return s.set(keyPaired, value)
}

// DeviceID returns the controller's device id, deriving and persisting it
// from the controller's Bluetooth address when absent.
func (s *sqliteStore) DeviceID() (uint32, error) {
	if value, ok := s.get(keyDeviceID); ok && len(value) == 4 {
		id := uint32(value[0])<<24 | uint32(value[1])<<16 | uint32(value[2])<<8 | uint32(value[3])
		if id != 0 {
			return id, nil
		}
	}
	id := DeriveDeviceID(s.localAddr)
	value := []byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)}
	if err := s.set(keyDeviceID, value); err != nil {
		return id, err
	}
	return id, nil
}

// FactoryReset drops the stored peer, the paired flag and the device id.
func (s *sqliteStore) FactoryReset() error {
	for _, key := range []string{keyCameraAddr, keyPaired, keyDeviceID} {
		if err := s.delete(key); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database.
func (s *sqliteStore) Close() error {
	return s.db.Close()
}
