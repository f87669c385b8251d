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

/*
osmoctl is a control utility for Osmo action cameras.

	NAME
	osmoctl

	SYNOPSIS
	osmoctl [OPTIONS] <command>

	osmoctl scans for, pairs with and drives an Osmo action camera over BLE.

	RETURN VALUE
	  Return EXIT_SUCCESS or EXIT_FAILURE
*/
package main

import (
	"os"

	"github.com/cybergarage/go-logger/log"
	"github.com/cybergarage/go-osmo/osmo"
	"github.com/cybergarage/go-osmo/osmo/cmd"
	"github.com/cybergarage/go-osmo/osmo/store"
)

func main() {
	peerStore, err := store.NewSQLiteStore(storePath(), localAddr())
	if err != nil {
		log.Errorf("Failed to open peer store: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := peerStore.Close(); err != nil {
			log.Errorf("Failed to close peer store: %v", err)
		}
	}()

	controller := osmo.NewController(
		osmo.WithStore(peerStore),
		osmo.WithLocalAddr(localAddr()),
		osmo.WithCameraSlot(cameraSlot()),
	)
	if err := cmd.Execute(controller); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
	os.Exit(0)
}
