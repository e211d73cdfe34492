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

package mem

import (
	"fmt"
)

// ErrPowerLoss is returned by Write once a device's write budget is
// exhausted; see FailAfter.
var ErrPowerLoss = fmt.Errorf("power loss")

/*
	Device is an in-memory EEPROM, used by the serve command's memory
	mode and by tests. A fresh device reads as all 0xFF, like an erased
	EEPROM. FailAfter arms a write budget for simulating power loss at a
	chosen point within a sequence of transport writes.
*/
type Device struct {
	data   []byte
	writes int
	budget int // remaining writes until simulated power loss; -1 = unlimited
}

// NewDevice creates a memory device of the given size, filled with 0xFF.
func NewDevice(size int) *Device {
	d := &Device{data: make([]byte, size), budget: -1}
	for ix := range d.data {
		d.data[ix] = 0xff
	}
	return d
}

//
func (d *Device) Read(address uint16, data []byte) error {
	if int(address)+len(data) > len(d.data) {
		return fmt.Errorf("read of %d bytes at 0x%04x beyond end of memory",
			len(data), address)
	}
	copy(data, d.data[address:])
	return nil
}

//
func (d *Device) Write(address uint16, data []byte) error {

	if d.budget == 0 {
		return ErrPowerLoss
	}
	if d.budget > 0 {
		d.budget--
	}

	if int(address)+len(data) > len(d.data) {
		return fmt.Errorf("write of %d bytes at 0x%04x beyond end of memory",
			len(data), address)
	}

	copy(d.data[address:], data)
	d.writes++
	return nil
}

/*
	FailAfter lets the next n Write calls take effect and makes every
	Write after that fail with ErrPowerLoss, without touching memory.
	This freezes the device in whatever intermediate state an
	interrupted operation left behind, for recovery testing. Pass a
	negative n to disarm, i.e. to power the device back up.
*/
func (d *Device) FailAfter(n int) {
	d.budget = n
}

// Writes returns the number of writes that have taken effect.
func (d *Device) Writes() int {
	return d.writes
}
