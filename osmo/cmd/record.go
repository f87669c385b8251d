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

	"github.com/cybergarage/go-logger/log"
	"github.com/cybergarage/go-osmo/osmo/protocol/catalog"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(modeCmd)
	rootCmd.AddCommand(keyCmd)
}

var recordCmd = &cobra.Command{ // nolint:exhaustruct
	Use:   "record <start|stop>",
	Short: "Start or stop recording.",
	Long:  "Start or stop recording.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var res *catalog.RecordControlResponse
		var err error
		switch args[0] {
		case "start":
			res, err = SharedController().StartRecord()
		case "stop":
			res, err = SharedController().StopRecord()
		default:
			return fmt.Errorf("unknown record action %q", args[0])
		}
		if err != nil {
			return err
		}
		if res != nil && res.RetCode != 0 {
			return fmt.Errorf("camera refused record control, ret_code=%d", res.RetCode)
		}
		return nil
	}}

var cameraModes = map[string]catalog.CameraMode{
	"slowmotion": catalog.CameraModeSlowMotion,
	"video":      catalog.CameraModeVideo,
	"timelapse":  catalog.CameraModeTimelapseStatic,
	"photo":      catalog.CameraModePhoto,
	"hyperlapse": catalog.CameraModeTimelapseMotion,
	"live":       catalog.CameraModeLiveStreaming,
	"uvc":        catalog.CameraModeUVCStreaming,
	"night":      catalog.CameraModeLowLightVideo,
	"tracking":   catalog.CameraModeSmartTracking,
}

var modeCmd = &cobra.Command{ // nolint:exhaustruct
	Use:   "mode <name>",
	Short: "Switch the camera shooting mode.",
	Long:  "Switch the camera shooting mode (video, photo, timelapse, ...).",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, ok := cameraModes[args[0]]
		if !ok {
			return fmt.Errorf("unknown camera mode %q", args[0])
		}
		res, err := SharedController().SwitchMode(mode)
		if err != nil {
			return err
		}
		if res != nil && res.RetCode != 0 {
			return fmt.Errorf("camera refused mode switch, ret_code=%d", res.RetCode)
		}
		log.Infof("Camera mode switched to %s", mode)
		return nil
	}}

var keyCmd = &cobra.Command{ // nolint:exhaustruct
	Use:   "key <qs|snapshot>",
	Short: "Report a controller key press.",
	Long:  "Report a controller key press (quick-switch or snapshot).",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var res *catalog.KeyReportResponse
		var err error
		switch args[0] {
		case "qs":
			res, err = SharedController().KeyReportQS()
		case "snapshot":
			res, err = SharedController().KeyReportSnapshot()
		default:
			return fmt.Errorf("unknown key %q", args[0])
		}
		if err != nil {
			return err
		}
		if res != nil && res.RetCode != 0 {
			return fmt.Errorf("camera refused key report, ret_code=%d", res.RetCode)
		}
		return nil
	}}
