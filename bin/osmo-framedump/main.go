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
osmo-framedump is an offline checker for captured protocol frames.

	NAME
	osmo-framedump

	SYNOPSIS
	osmo-framedump [OPTIONS] [HEX FRAME ...]

	osmo-framedump validates and dumps protocol frames given as hex bytes on
	the command line, or read line by line from standard input.

	RETURN VALUE
	  Return EXIT_SUCCESS or EXIT_FAILURE
*/
package main

import (
	"bufio"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cybergarage/go-osmo/osmo/protocol"
	"github.com/cybergarage/go-osmo/osmo/protocol/catalog"
)

func dumpFrame(input string) bool {
	cleaned := strings.NewReplacer(" ", "", ",", "", "0x", "", "0X", "", "\t", "").Replace(input)
	data, err := hex.DecodeString(cleaned)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad hex input: %v\n", err)
		return false
	}

	frame, err := protocol.Decode(data)
	if err != nil {
		fmt.Printf("INVALID (%d bytes): %v\n", len(data), err)
		return false
	}

	fmt.Printf("VALID   (%d bytes): type=%s seq=0x%04X", len(data), frame.CmdType(), frame.Seq())
	if !frame.HasBody() {
		fmt.Println(" (no body)")
		return true
	}
	fmt.Printf(" cmd=(0x%02X,0x%02X) payload=%d bytes\n", frame.CmdSet(), frame.CmdID(), len(frame.Payload()))

	payload, err := catalog.Decode(frame.CmdSet(), frame.CmdID(), frame.CmdType(), frame.Payload())
	if err != nil {
		fmt.Printf("        payload not decodable: %v\n", err)
		return true
	}
	fmt.Printf("        %+v\n", payload)
	return true
}

func main() {
	flag.Parse()

	ok := true
	if flag.NArg() > 0 {
		ok = dumpFrame(strings.Join(flag.Args(), " "))
	} else {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if !dumpFrame(line) {
				ok = false
			}
		}
	}

	if !ok {
		os.Exit(1)
	}
	os.Exit(0)
}
