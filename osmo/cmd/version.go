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
	"fmt"

	"github.com/cybergarage/go-osmo/osmo/protocol/catalog"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(rawCmd)
	rootCmd.AddCommand(subscribeCmd)
}

var versionCmd = &cobra.Command{ // nolint:exhaustruct
	Use:   "version",
	Short: "Query the camera product id and SDK version.",
	Long:  "Query the camera product id and SDK version.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := SharedController().GetVersion()
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", res)
		return nil
	}}

var statusCmd = &cobra.Command{ // nolint:exhaustruct
	Use:   "status",
	Short: "Show the session state and the last camera status.",
	Long:  "Show the session state and the last camera status.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		controller := SharedController()
		fmt.Printf("session: %s\n", controller.State())
		tracker := controller.Tracker()
		if !tracker.Initialized() {
			fmt.Println("camera: no status received yet")
			return nil
		}
		fmt.Printf("camera: %s/%s battery %d%%\n", tracker.Mode(), tracker.Status(), tracker.Battery())
		if name := tracker.ModeName(); name != "" {
			fmt.Printf("mode: %s\n", name)
		}
		return nil
	}}

var subscribeCmd = &cobra.Command{ // nolint:exhaustruct
	Use:   "subscribe",
	Short: "Subscribe to periodic camera status pushes.",
	Long:  "Subscribe to periodic camera status pushes at 2 Hz.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return SharedController().SubscribeStatus(catalog.PushModePeriodicOnChange)
	}}

var rawCmd = &cobra.Command{ // nolint:exhaustruct
	Use:   "raw <hex bytes>",
	Short: "Write a pre-encoded frame to the camera.",
	Long:  "Write a pre-encoded frame given as hex bytes, e.g. 'AA 1D 00 ...'.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := ""
		for _, arg := range args {
			raw += arg + " "
		}
		return SharedController().SendRawBytes(raw)
	}}
