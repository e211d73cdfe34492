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

package run

import (
	"io"
	"os"
)

//
func NewGet() *Get {

	g := &Get{}
	g.Runner = *NewRunner(
		"get [-o|--output {file}] [-p|--port {port}]",
		"read the stored state",
		`
Use the get command to read the current state from the EEPROM. The state is
written to stdout, or to a file when --output is given.`,
		g.Run)

	g.AddBaseSettings()
	g.AddSetting(&g.File, "output", "o", "", nil, "state output file", false)

	return g
}

//
type Get struct {
	//
	Runner
	//
	File string
}

//
func (g *Get) Run() error {

	g.ParseSettings()

	resp, err := g.apiCall("GET", "/state", false, nil)
	if err != nil {
		return err
	}
	defer resp.Close()

	var out io.Writer = os.Stdout
	if g.File != "" {
		f, err := os.Create(g.File)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	_, err = io.Copy(out, resp)
	return err
}
