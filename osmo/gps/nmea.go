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

// Package gps turns NMEA sentences from a serial GNSS receiver into the
// location frames the camera consumes.
package gps

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/cybergarage/go-osmo/osmo/protocol/catalog"
)

var (
	// ErrBadSentence indicates a malformed or checksum-failing NMEA sentence.
	ErrBadSentence = errors.New("bad NMEA sentence")
	// ErrNoFix indicates that the receiver has no position fix yet.
	ErrNoFix = errors.New("no GNSS fix")
)

// knots→cm/s.
const knotsToCmPerSec = 51.4444

// Fix is the merged state of the last RMC and GGA sentences.
type Fix struct {
	rmcValid bool
	ggaValid bool

	latitude  float64
	longitude float64
	// altitude in metres from GGA.
	altitude float64
	// speed over ground in knots and course in degrees from RMC.
	speedKnots float64
	courseDeg  float64
	// day/month/year from RMC, hour/minute/second UTC from RMC.
	day, month, year     int
	hour, minute, second int
	satellites           int
	hdop                 float64
}

// Parser folds NMEA sentences into a current fix. Safe for concurrent use.
type Parser struct {
	mu  sync.Mutex
	fix Fix
}

// NewParser returns an empty NMEA parser.
func NewParser() *Parser {
	return &Parser{}
}

// checksumOK verifies the sentence checksum between '$' and '*'.
func checksumOK(sentence string) bool {
	star := strings.LastIndexByte(sentence, '*')
	if !strings.HasPrefix(sentence, "$") || star < 0 || star+3 > len(sentence) {
		return false
	}
	want, err := strconv.ParseUint(strings.TrimSpace(sentence[star+1:]), 16, 8)
	if err != nil {
		return false
	}
	var sum byte
	for i := 1; i < star; i++ {
		sum ^= sentence[i]
	}
	return sum == byte(want)
}

// parseCoordinate converts the NMEA ddmm.mmmm form into decimal degrees.
func parseCoordinate(value, hemisphere string) (float64, error) {
	if value == "" || hemisphere == "" {
		return 0, fmt.Errorf("%w: empty coordinate", ErrBadSentence)
	}
	dot := strings.IndexByte(value, '.')
	if dot < 3 {
		return 0, fmt.Errorf("%w: coordinate %q", ErrBadSentence, value)
	}
	degrees, err := strconv.ParseFloat(value[:dot-2], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: coordinate %q", ErrBadSentence, value)
	}
	minutes, err := strconv.ParseFloat(value[dot-2:], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: coordinate %q", ErrBadSentence, value)
	}
	deg := degrees + minutes/60
	if hemisphere == "S" || hemisphere == "W" {
		deg = -deg
	}
	return deg, nil
}

// Feed parses one NMEA sentence. Unknown sentence types are ignored without
// error; RMC and GGA update the current fix.
func (p *Parser) Feed(sentence string) error {
	sentence = strings.TrimSpace(sentence)
	if sentence == "" {
		return nil
	}
	if !checksumOK(sentence) {
		return fmt.Errorf("%w: checksum", ErrBadSentence)
	}

	star := strings.LastIndexByte(sentence, '*')
	fields := strings.Split(sentence[1:star], ",")
	if len(fields) == 0 {
		return fmt.Errorf("%w: no fields", ErrBadSentence)
	}

	// Talker-agnostic: GPRMC, GNRMC, BDGGA all match on the last three.
	kind := fields[0]
	if len(kind) >= 3 {
		kind = kind[len(kind)-3:]
	}
	switch kind {
	case "RMC":
		return p.feedRMC(fields)
	case "GGA":
		return p.feedGGA(fields)
	}
	return nil
}

func (p *Parser) feedRMC(fields []string) error {
	// $..RMC,time,status,lat,NS,lon,EW,speed,course,date,...
	if len(fields) < 10 {
		return fmt.Errorf("%w: short RMC", ErrBadSentence)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if fields[2] != "A" {
		p.fix.rmcValid = false
		return nil
	}

	lat, err := parseCoordinate(fields[3], fields[4])
	if err != nil {
		return err
	}
	lon, err := parseCoordinate(fields[5], fields[6])
	if err != nil {
		return err
	}

	if t := fields[1]; len(t) >= 6 {
		p.fix.hour, _ = strconv.Atoi(t[0:2])
		p.fix.minute, _ = strconv.Atoi(t[2:4])
		p.fix.second, _ = strconv.Atoi(t[4:6])
	}
	if d := fields[9]; len(d) == 6 {
		p.fix.day, _ = strconv.Atoi(d[0:2])
		p.fix.month, _ = strconv.Atoi(d[2:4])
		year, _ := strconv.Atoi(d[4:6])
		p.fix.year = 2000 + year
	}
	p.fix.speedKnots, _ = strconv.ParseFloat(fields[7], 64)
	if fields[8] != "" {
		p.fix.courseDeg, _ = strconv.ParseFloat(fields[8], 64)
	}
	p.fix.latitude = lat
	p.fix.longitude = lon
	p.fix.rmcValid = true
	return nil
}

func (p *Parser) feedGGA(fields []string) error {
	// $..GGA,time,lat,NS,lon,EW,quality,numSV,HDOP,alt,M,...
	if len(fields) < 10 {
		return fmt.Errorf("%w: short GGA", ErrBadSentence)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	quality, _ := strconv.Atoi(fields[6])
	if quality == 0 {
		p.fix.ggaValid = false
		return nil
	}

	p.fix.satellites, _ = strconv.Atoi(fields[7])
	p.fix.hdop, _ = strconv.ParseFloat(fields[8], 64)
	p.fix.altitude, _ = strconv.ParseFloat(fields[9], 64)
	p.fix.ggaValid = true
	return nil
}

// HasFix reports whether both sentence types delivered a valid fix.
func (p *Parser) HasFix() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fix.rmcValid && p.fix.ggaValid
}

// Frame builds the camera location frame from the current fix. The time of
// day is shifted to UTC+8 and coordinates are scaled by 1e7, as the camera
// expects.
func (p *Parser) Frame() (*catalog.GPSPushCommand, error) {
	p.mu.Lock()
	fix := p.fix
	p.mu.Unlock()

	if !fix.rmcValid || !fix.ggaValid {
		return nil, ErrNoFix
	}

	speedCm := fix.speedKnots * knotsToCmPerSec
	courseRad := fix.courseDeg * math.Pi / 180

	// HDOP scaled against a nominal 5 m base error, reported in mm.
	accuracy := uint32(fix.hdop * 5000)
	if accuracy == 0 {
		accuracy = 5000
	}

	return &catalog.GPSPushCommand{
		YearMonthDay:       int32(fix.year*10000 + fix.month*100 + fix.day),
		HourMinuteSecond:   int32((fix.hour+8)*10000 + fix.minute*100 + fix.second),
		Longitude:          int32(fix.longitude * 1e7),
		Latitude:           int32(fix.latitude * 1e7),
		Height:             int32(fix.altitude * 1000),
		SpeedToNorth:       float32(speedCm * math.Cos(courseRad)),
		SpeedToEast:        float32(speedCm * math.Sin(courseRad)),
		SpeedDown:          0,
		VerticalAccuracy:   accuracy,
		HorizontalAccuracy: accuracy,
		SpeedAccuracy:      100,
		SatelliteNumber:    uint32(fix.satellites),
	}, nil
}
