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

// Package correlation pairs asynchronous camera notifications with the
// requests that caused them. A waiter is keyed either by the sequence number
// of an outstanding request or, for unsolicited frames, by the (CmdSet,
// CmdID) pair. The table is a single fixed array with a tagged key per slot
// so that the eviction policies can reason across both key kinds.
package correlation

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cybergarage/go-logger/log"
)

var (
	// ErrTableFull indicates that no slot could be allocated or evicted.
	ErrTableFull = errors.New("correlation table full")
	// ErrNotFound indicates that no matching waiter exists.
	ErrNotFound = errors.New("waiter not found")
	// ErrTimeout indicates that the waiter deadline passed without a delivery.
	ErrTimeout = errors.New("wait timed out")
)

const (
	// DefaultCapacity bounds the number of commands waited on in parallel.
	DefaultCapacity = 10
	// DefaultRetention is how long an untouched entry survives sweeps.
	DefaultRetention = 120 * time.Second
	// DefaultSweepInterval is the period of the staleness sweeper.
	DefaultSweepInterval = 60 * time.Second

	// pollInterval paces the re-check loop while a waiter slot is absent.
	pollInterval = 10 * time.Millisecond
)

type entry struct {
	inUse      bool
	bySeq      bool
	seq        uint16
	cmdSet     uint8
	cmdID      uint8
	payload    any
	hasPayload bool
	signal     chan struct{}
	lastAccess time.Time
}

func (e *entry) reset() {
	*e = entry{}
}

func (e *entry) raise() {
	select {
	case e.signal <- struct{}{}:
	default:
	}
}

// Table is the bounded waiter table. All methods are safe for concurrent use;
// the internal mutex is held only for metadata manipulation, never across a
// blocking wait.
type Table struct {
	mu      sync.Mutex
	entries []entry
	now     func() time.Time

	retention     time.Duration
	sweepInterval time.Duration
	sweepStop     chan struct{}
	sweepDone     chan struct{}
}

// TableOption configures a Table.
type TableOption func(*Table)

// WithCapacity overrides the waiter capacity.
func WithCapacity(n int) TableOption {
	return func(t *Table) { t.entries = make([]entry, n) }
}

// WithRetention overrides how long untouched entries survive sweeps.
func WithRetention(d time.Duration) TableOption {
	return func(t *Table) { t.retention = d }
}

// WithSweepInterval overrides the sweeper period.
func WithSweepInterval(d time.Duration) TableOption {
	return func(t *Table) { t.sweepInterval = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) TableOption {
	return func(t *Table) { t.now = now }
}

// NewTable returns a new waiter table with the default capacity.
func NewTable(opts ...TableOption) *Table {
	t := &Table{
		entries:       make([]entry, DefaultCapacity),
		now:           time.Now,
		retention:     DefaultRetention,
		sweepInterval: DefaultSweepInterval,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Table) findBySeq(seq uint16) *entry {
	for n := range t.entries {
		e := &t.entries[n]
		if e.inUse && e.bySeq && e.seq == seq {
			e.lastAccess = t.now()
			return e
		}
	}
	return nil
}

func (t *Table) findByCmd(cmdSet, cmdID uint8) *entry {
	for n := range t.entries {
		e := &t.entries[n]
		if e.inUse && !e.bySeq && e.cmdSet == cmdSet && e.cmdID == cmdID {
			e.lastAccess = t.now()
			return e
		}
	}
	return nil
}

func (t *Table) allocateBySeq(seq uint16) (*entry, error) {
	// A stale waiter on the same sequence is overwritten.
	if existing := t.findBySeq(seq); existing != nil {
		log.Debugf("Overwriting existing waiter for seq=0x%04X", seq)
		existing.reset()
	}

	var oldest *entry
	for n := range t.entries {
		e := &t.entries[n]
		if !e.inUse {
			oldest = e
			break
		}
		if oldest == nil || e.lastAccess.Before(oldest.lastAccess) {
			oldest = e
		}
	}
	if oldest == nil {
		return nil, fmt.Errorf("%w: seq=0x%04X", ErrTableFull, seq)
	}
	if oldest.inUse {
		log.Warnf("Evicting least recently used waiter for seq=0x%04X", seq)
	}
	oldest.reset()
	oldest.inUse = true
	oldest.bySeq = true
	oldest.seq = seq
	oldest.signal = make(chan struct{}, 1)
	oldest.lastAccess = t.now()
	return oldest, nil
}

func (t *Table) allocateByCmd(cmdSet, cmdID uint8) (*entry, error) {
	// An existing waiter for the same command is reused as-is.
	if existing := t.findByCmd(cmdSet, cmdID); existing != nil {
		return existing, nil
	}

	// Eviction considers by-cmd entries only; by-seq waiters stay.
	var oldest *entry
	for n := range t.entries {
		e := &t.entries[n]
		if !e.inUse {
			oldest = e
			break
		}
		if e.bySeq {
			continue
		}
		if oldest == nil || e.lastAccess.Before(oldest.lastAccess) {
			oldest = e
		}
	}
	if oldest == nil {
		return nil, fmt.Errorf("%w: cmd=(0x%02X,0x%02X)", ErrTableFull, cmdSet, cmdID)
	}
	if oldest.inUse {
		log.Warnf("Evicting least recently used push waiter for cmd=(0x%02X,0x%02X)", cmdSet, cmdID)
	}
	oldest.reset()
	oldest.inUse = true
	oldest.bySeq = false
	oldest.cmdSet = cmdSet
	oldest.cmdID = cmdID
	oldest.signal = make(chan struct{}, 1)
	oldest.lastAccess = t.now()
	return oldest, nil
}

// AllocateBySeq reserves a waiter for an outgoing request. An existing waiter
// on the same sequence is overwritten; with the table full, the least
// recently used entry of any kind is evicted.
func (t *Table) AllocateBySeq(seq uint16) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := t.allocateBySeq(seq)
	return err
}

// AllocateByCmd reserves a waiter for an expected unsolicited command. An
// existing waiter for the same command is reused; with the table full, only
// the least recently used by-cmd entry may be evicted.
func (t *Table) AllocateByCmd(cmdSet, cmdID uint8) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := t.allocateByCmd(cmdSet, cmdID)
	return err
}

// FreeBySeq releases a waiter that will never be delivered, such as after a
// write without response or a failed write.
func (t *Table) FreeBySeq(seq uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e := t.findBySeq(seq); e != nil {
		e.reset()
	}
}

// Deliver hands a decoded notification payload to its waiter. A matching
// by-seq waiter wins; otherwise the payload is parked on a by-cmd entry
// stamped with the incoming sequence so a later WaitForCmd can pick it up.
func (t *Table) Deliver(seq uint16, cmdSet, cmdID uint8, payload any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e := t.findBySeq(seq); e != nil {
		e.payload = payload
		e.hasPayload = true
		e.raise()
		return nil
	}

	e, err := t.allocateByCmd(cmdSet, cmdID)
	if err != nil {
		return err
	}
	e.seq = seq
	e.payload = payload
	e.hasPayload = true
	e.lastAccess = t.now()
	e.raise()
	return nil
}

// WaitForSeq blocks until the response for the sequence arrives or the
// timeout passes. On success the waiter is freed and the payload ownership
// transfers to the caller. A waiter evicted under pressure is reported as a
// timeout once the deadline passes.
func (t *Table) WaitForSeq(seq uint16, timeout time.Duration) (any, error) {
	deadline := time.Now().Add(timeout)

	for {
		t.mu.Lock()
		e := t.findBySeq(seq)
		if e == nil {
			t.mu.Unlock()
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("%w: seq=0x%04X", ErrTimeout, seq)
			}
			time.Sleep(pollInterval)
			continue
		}
		if e.hasPayload {
			payload := e.payload
			e.reset()
			t.mu.Unlock()
			return payload, nil
		}
		signal := e.signal
		t.mu.Unlock()

		remaining := time.Until(deadline)
		if remaining <= 0 {
			t.FreeBySeq(seq)
			return nil, fmt.Errorf("%w: seq=0x%04X", ErrTimeout, seq)
		}

		timer := time.NewTimer(remaining)
		select {
		case <-signal:
			timer.Stop()
		case <-timer.C:
			t.FreeBySeq(seq)
			return nil, fmt.Errorf("%w: seq=0x%04X", ErrTimeout, seq)
		}

		t.mu.Lock()
		e = t.findBySeq(seq)
		if e == nil {
			t.mu.Unlock()
			return nil, fmt.Errorf("%w: seq=0x%04X", ErrNotFound, seq)
		}
		if !e.hasPayload {
			e.reset()
			t.mu.Unlock()
			return nil, fmt.Errorf("%w: seq=0x%04X delivered no payload", ErrNotFound, seq)
		}
		payload := e.payload
		e.reset()
		t.mu.Unlock()
		return payload, nil
	}
}

// WaitForCmd blocks until an unsolicited frame for the command arrives or the
// timeout passes, returning the sequence the camera chose together with the
// payload. The waiter slot is allocated up front so a delivery racing this
// call is never lost.
func (t *Table) WaitForCmd(cmdSet, cmdID uint8, timeout time.Duration) (uint16, any, error) {
	t.mu.Lock()
	e, err := t.allocateByCmd(cmdSet, cmdID)
	if err != nil {
		t.mu.Unlock()
		return 0, nil, err
	}
	if e.hasPayload {
		seq := e.seq
		payload := e.payload
		e.reset()
		t.mu.Unlock()
		return seq, payload, nil
	}
	signal := e.signal
	t.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-signal:
	case <-timer.C:
		t.mu.Lock()
		if e := t.findByCmd(cmdSet, cmdID); e != nil {
			e.reset()
		}
		t.mu.Unlock()
		return 0, nil, fmt.Errorf("%w: cmd=(0x%02X,0x%02X)", ErrTimeout, cmdSet, cmdID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	e = t.findByCmd(cmdSet, cmdID)
	if e == nil {
		return 0, nil, fmt.Errorf("%w: cmd=(0x%02X,0x%02X)", ErrNotFound, cmdSet, cmdID)
	}
	if !e.hasPayload {
		e.reset()
		return 0, nil, fmt.Errorf("%w: cmd=(0x%02X,0x%02X) delivered no payload", ErrNotFound, cmdSet, cmdID)
	}
	seq := e.seq
	payload := e.payload
	e.reset()
	return seq, payload, nil
}

// Sweep frees every entry untouched for longer than the retention bound.
func (t *Table) Sweep() {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	for n := range t.entries {
		e := &t.entries[n]
		if !e.inUse || now.Sub(e.lastAccess) <= t.retention {
			continue
		}
		if e.bySeq {
			log.Debugf("Sweeping stale waiter seq=0x%04X", e.seq)
		} else {
			log.Debugf("Sweeping stale waiter cmd=(0x%02X,0x%02X)", e.cmdSet, e.cmdID)
		}
		e.reset()
	}
}

// Start launches the periodic staleness sweeper.
func (t *Table) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sweepStop != nil {
		return nil
	}
	t.sweepStop = make(chan struct{})
	t.sweepDone = make(chan struct{})
	go t.sweepLoop(t.sweepStop, t.sweepDone)
	return nil
}

// Stop terminates the sweeper and drops all entries.
func (t *Table) Stop() error {
	t.mu.Lock()
	stop, done := t.sweepStop, t.sweepDone
	t.sweepStop, t.sweepDone = nil, nil
	t.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	t.mu.Lock()
	for n := range t.entries {
		t.entries[n].reset()
	}
	t.mu.Unlock()
	return nil
}

func (t *Table) sweepLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(t.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.Sweep()
		case <-stop:
			return
		}
	}
}
