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

package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/cybergarage/go-logger/log"
	"github.com/cybergarage/go-osmo/osmo/gps"
	"github.com/spf13/cobra"
)

const (
	GPSPortParamStr = "port"
	GPSBaudParamStr = "baud"
)

func init() {
	gpsCmd.Flags().String(GPSPortParamStr, "/dev/ttyUSB0", "GNSS receiver serial port")
	gpsCmd.Flags().Int(GPSBaudParamStr, gps.DefaultBaudRate, "GNSS receiver baud rate")
	rootCmd.AddCommand(gpsCmd)
}

var gpsCmd = &cobra.Command{ // nolint:exhaustruct
	Use:   "gps",
	Short: "Feed GNSS fixes from a serial receiver to the camera.",
	Long:  "Read NMEA sentences from a serial GNSS receiver and push location frames to the camera until interrupted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := cmd.Flags().GetString(GPSPortParamStr)
		if err != nil {
			return err
		}
		baud, err := cmd.Flags().GetInt(GPSBaudParamStr)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log.Infof("Feeding GNSS fixes from %s (%d baud)", port, baud)
		feeder := gps.NewFeeder(SharedController().PushGPS)
		return feeder.RunPort(ctx, port, baud)
	}}
