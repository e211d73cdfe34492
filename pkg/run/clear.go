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
func NewClear() *Clear {

	c := &Clear{}
	c.Runner = *NewRunner(
		"clear [-f|--force] [-p|--port {port}]",
		"clear all sectors",
		`
Use the clear command to wipe all sectors of the EEPROM. The stored state is
lost, and the store starts over at sector 0 with a zeroed record.`,
		c.Run)

	c.AddBaseSettings()
	c.AddSetting(&c.Force, "force", "f", "", nil,
		"clear without confirmation", false)

	return c
}

//
type Clear struct {
	//
	Runner
	//
	Force bool
}

//
func (c *Clear) Run() error {

	c.ParseSettings()

	if !c.Force && !GetUserConfirmation(
		"This wipes the stored state. Continue?") {
		return nil
	}

	resp, err := c.apiCall("POST", "/clear", false, nil)
	if err != nil {
		return err
	}
	defer resp.Close()

	_, err = io.Copy(os.Stdout, resp)
	return err
}
