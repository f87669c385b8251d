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
	"errors"

	"github.com/cybergarage/go-logger/log"
	"github.com/cybergarage/go-osmo/osmo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	ProgramName     = "osmoctl"
	VerboseParamStr = "verbose"
	DebugParamStr   = "debug"
	FreshParamStr   = "fresh"
	SlotParamStr    = "slot"
)

var rootCmd = &cobra.Command{ // nolint:exhaustruct
	Use:               ProgramName,
	Version:           osmo.Version,
	Short:             "Control an Osmo action camera over BLE.",
	Long:              "osmoctl scans for, pairs with and drives an Osmo action camera over BLE.",
	DisableAutoGenTag: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.SetSharedLogger(nil)
		verbose := viper.GetBool(VerboseParamStr)
		debug := viper.GetBool(DebugParamStr)
		if debug {
			verbose = true
		}
		if verbose {
			log.Infof("%s version %s", ProgramName, osmo.Version)
			if debug {
				log.SetSharedLogger(log.NewStdoutLogger(log.LevelDebug))
			} else {
				log.SetSharedLogger(log.NewStdoutLogger(log.LevelInfo))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP(VerboseParamStr, "v", false, "enable verbose messages")
	rootCmd.PersistentFlags().BoolP(DebugParamStr, "d", false, "enable debug messages")
	if err := viper.BindPFlag(VerboseParamStr, rootCmd.PersistentFlags().Lookup(VerboseParamStr)); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag(DebugParamStr, rootCmd.PersistentFlags().Lookup(DebugParamStr)); err != nil {
		panic(err)
	}
}

// RootCommand returns the root command.
func RootCommand() *cobra.Command {
	return rootCmd
}

var sharedController osmo.Controller

// SharedController returns the controller the subcommands drive.
func SharedController() osmo.Controller {
	return sharedController
}

// Execute starts the controller and runs the command line.
func Execute(controller osmo.Controller) error {
	sharedController = controller
	if err := sharedController.Start(); err != nil {
		return err
	}
	err := rootCmd.Execute()
	return errors.Join(err, sharedController.Stop())
}
