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

package crc

//
const (
	polynomial   = 0x1021 // CRC-16/CCITT
	initialValue = 0xffff
	highBitMask  = 0x8000
)

/*
	Func computes a 16-bit checksum over data. The wear-leveling layer is
	polymorphic over the concrete checksum; the only requirement is that
	the same function is used for writing and loading a given device.
*/
type Func func(data []byte) uint16

// Checksum is the default integrity primitive, CRC-16/CCITT-FALSE:
// polynomial 0x1021, initial value 0xFFFF, no final XOR.
func Checksum(data []byte) uint16 {

	crc := uint16(initialValue)

	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&highBitMask != 0 {
				crc = (crc << 1) ^ polynomial
			} else {
				crc <<= 1
			}
		}
	}

	return crc
}

// Put stores c in the two trailing bytes of record, little endian. This
// is the byte order in which records keep their checksum on the device,
// so writers and readers agree regardless of host.
func Put(record []byte, c uint16) {
	record[len(record)-2] = byte(c)
	record[len(record)-1] = byte(c >> 8)
}

// Get reads the checksum from the two trailing bytes of record.
func Get(record []byte) uint16 {
	return uint16(record[len(record)-2]) | uint16(record[len(record)-1])<<8
}

// Seal computes the checksum over all of record except its two trailing
// bytes, using f, and stores it in those bytes.
func Seal(record []byte, f Func) {
	Put(record, f(record[:len(record)-2]))
}

// Valid reports whether the trailing checksum of record matches a
// recomputation over the preceding bytes.
func Valid(record []byte, f Func) bool {
	return f(record[:len(record)-2]) == Get(record)
}
