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

package gps

import (
	"bufio"
	"context"
	"io"

	"github.com/cybergarage/go-logger/log"
	"github.com/cybergarage/go-osmo/osmo/protocol/catalog"
	"go.bug.st/serial"
	"golang.org/x/time/rate"
)

// DefaultBaudRate is the usual GNSS receiver UART rate.
const DefaultBaudRate = 9600

// PushFunc delivers a location frame to the camera; usually
// Controller.PushGPS.
type PushFunc func(fix *catalog.GPSPushCommand) error

// Feeder reads NMEA sentences from a serial GNSS receiver and pushes
// location frames at a bounded rate.
type Feeder struct {
	parser  *Parser
	push    PushFunc
	limiter *rate.Limiter
}

// NewFeeder returns a feeder pushing through the given function, at most
// once per second.
func NewFeeder(push PushFunc) *Feeder {
	return &Feeder{
		parser:  NewParser(),
		push:    push,
		limiter: rate.NewLimiter(rate.Limit(1), 1),
	}
}

// Parser exposes the underlying NMEA parser.
func (f *Feeder) Parser() *Parser {
	return f.parser
}

// RunPort opens the serial port and feeds from it until the context ends.
func (f *Feeder) RunPort(ctx context.Context, portName string, baudRate int) error {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	port, err := serial.Open(portName, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		if err := port.Close(); err != nil {
			log.Errorf("Failed to close GNSS port: %v", err)
		}
	}()
	return f.Run(ctx, port)
}

// Run feeds NMEA sentences from the reader until the context ends or the
// reader is exhausted. Malformed sentences are logged and skipped; a
// complete fix is pushed at most once per second.
func (f *Feeder) Run(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := f.parser.Feed(scanner.Text()); err != nil {
			log.Debugf("Skipping NMEA sentence: %v", err)
			continue
		}
		if !f.parser.HasFix() || !f.limiter.Allow() {
			continue
		}
		frame, err := f.parser.Frame()
		if err != nil {
			continue
		}
		if err := f.push(frame); err != nil {
			log.Warnf("GPS push failed: %v", err)
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
