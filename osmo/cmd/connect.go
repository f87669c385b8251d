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
	"github.com/cybergarage/go-logger/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	connectCmd.Flags().Bool(FreshParamStr, false, "force a fresh pairing even with a stored peer")
	if err := viper.BindPFlag(FreshParamStr, connectCmd.Flags().Lookup(FreshParamStr)); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(disconnectCmd)
	rootCmd.AddCommand(wakeupCmd)
}

var connectCmd = &cobra.Command{ // nolint:exhaustruct
	Use:   "connect",
	Short: "Scan for a camera and establish the protocol session.",
	Long:  "Scan for a camera and establish the protocol session.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fresh := viper.GetBool(FreshParamStr)
		if err := SharedController().Connect(!fresh, fresh); err != nil {
			return err
		}
		log.Infof("Connected, state: %s", SharedController().State())
		return nil
	}}

var disconnectCmd = &cobra.Command{ // nolint:exhaustruct
	Use:   "disconnect",
	Short: "Close the camera session.",
	Long:  "Close the camera session.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return SharedController().Disconnect()
	}}

var wakeupCmd = &cobra.Command{ // nolint:exhaustruct
	Use:   "wakeup",
	Short: "Wake a sleeping camera by advertising.",
	Long:  "Wake a sleeping camera by advertising the stored peer's wake-up record.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return SharedController().Wakeup()
	}}
