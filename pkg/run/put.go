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
	"bufio"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

//
func NewPut() *Put {

	p := &Put{}
	p.Runner = *NewRunner(
		"put [-i|--input {file}] [-p|--port {port}]",
		"store new state",
		`
Use the put command to store new state in the EEPROM. The state is read from
stdin, or from a file when --input is given. The daemon pads it to record size
and writes it to the next sector in rotation.`,
		p.Run)

	p.AddBaseSettings()
	p.AddSetting(&p.File, "input", "i", "", nil, "state input file", false)

	return p
}

//
type Put struct {
	//
	Runner
	//
	File string
}

//
func (p *Put) Run() error {

	p.ParseSettings()

	var in io.Reader = os.Stdin
	if p.File != "" {
		f, err := os.Open(p.File)
		if err != nil {
			return err
		}
		defer f.Close()
		in = bufio.NewReader(f)
	}

	resp, err := p.apiCall("PUT", "/state", false, in)
	if err != nil {
		return err
	}
	defer resp.Close()

	if _, err := io.Copy(os.Stdout, resp); err != nil {
		log.Errorf("problem reading daemon reply: %v", err)
	}

	return nil
}
