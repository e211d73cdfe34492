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

package eeprom

/*
	Device is a byte-addressable non-volatile memory, typically an I2C
	EEPROM behind some transport. Both operations are synchronous and
	blocking, and atomic at byte-write granularity, which is the standard
	EEPROM contract. A transport error is returned unchanged; there are
	no retries at this level.

	Implementations are not required to be safe for concurrent use. All
	higher layers serialize their calls.
*/
type Device interface {

	// Read reads len(data) bytes starting at address into data.
	Read(address uint16, data []byte) error

	// Write writes len(data) bytes from data starting at address.
	Write(address uint16, data []byte) error
}
