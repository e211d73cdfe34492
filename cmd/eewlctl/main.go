/*
   EEWL - EEPROM wear-leveling toolkit
   Copyright (c) 2025, Alexander Vollschwitz

   This file is part of EEWL.

   EEWL is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   EEWL is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with EEWL. If not, see <http://www.gnu.org/licenses/>.
*/

package main

import (
	"fmt"
	"os"

	"github.com/xelalexv/eewl/pkg/run"
)

//
var EEWLVersion string

//
func synopsis() {
	fmt.Print(`
synopsis: eewlctl {serve|get|put|clear|dump|status|version} ...

run 'eewlctl {action} -h|--help' to see detailed info

`)
}

//
func version() {
	fmt.Printf("\nEEWL %s\n\n", EEWLVersion)
}

//
func main() {

	var action string
	var args []string

	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	if len(os.Args) > 2 {
		args = os.Args[2:]
	}

	switch action {

	case "serve":
		version()
		run.DieOnError(run.NewServe().Execute(args))

	case "get":
		run.DieOnError(run.NewGet().Execute(args))

	case "put":
		run.DieOnError(run.NewPut().Execute(args))

	case "clear":
		run.DieOnError(run.NewClear().Execute(args))

	case "dump":
		run.DieOnError(run.NewDump().Execute(args))

	case "status":
		run.DieOnError(run.NewStatus().Execute(args))

	case "version":
		version()

	case "":
		fallthrough
	case "-h":
		fallthrough
	case "--help":
		synopsis()

	default:
		run.Die("unknown action: %s\n", action)
	}
}
