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

// Package metrics exposes the engine's operational counters on the default
// Prometheus registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FramesSent counts frames written to the camera.
	FramesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "osmo",
		Name:      "frames_sent_total",
		Help:      "Frames written to the camera.",
	})
	// FramesReceived counts frames decoded from notifications.
	FramesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "osmo",
		Name:      "frames_received_total",
		Help:      "Frames decoded from camera notifications.",
	})
	// NotifyDropped counts notifications dropped before decoding.
	NotifyDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "osmo",
		Name:      "notify_dropped_total",
		Help:      "Notifications dropped on queue overflow or codec failure.",
	})
	// CommandTimeouts counts commands whose reply never arrived.
	CommandTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "osmo",
		Name:      "command_timeouts_total",
		Help:      "Commands whose reply did not arrive in time.",
	})
	// Reconnects counts reconnection attempts after unexpected disconnects.
	Reconnects = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "osmo",
		Name:      "reconnects_total",
		Help:      "Reconnection attempts after unexpected disconnects.",
	})
	// StatusPushes counts unsolicited camera status pushes.
	StatusPushes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "osmo",
		Name:      "status_pushes_total",
		Help:      "Unsolicited camera status pushes.",
	})
	// GPSPushes counts location frames pushed to the camera.
	GPSPushes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "osmo",
		Name:      "gps_pushes_total",
		Help:      "Location frames pushed to the camera.",
	})
)
