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

import (
	"testing"
)

//
func TestChecksum(t *testing.T) {

	cases := []struct {
		name string
		data []byte
		want uint16
	}{
		{"empty", []byte{}, 0xffff},
		{"check value", []byte("123456789"), 0x29b1},
		{"single zero", []byte{0x00}, 0xe1f0},
		{"single byte", []byte{0xff}, 0xff00},
		{"ascending", []byte{1, 2, 3, 4}, 0x89c3},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Checksum(c.data); got != c.want {
				t.Fatalf("checksum 0x%04x, want 0x%04x", got, c.want)
			}
		})
	}
}

//
func TestPutGetRoundTrip(t *testing.T) {

	record := make([]byte, 10)

	for _, c := range []uint16{0x0000, 0x1234, 0xabcd, 0xffff} {
		Put(record, c)
		if got := Get(record); got != c {
			t.Fatalf("got 0x%04x back, want 0x%04x", got, c)
		}
	}
}

//
func TestPutIsLittleEndian(t *testing.T) {

	record := make([]byte, 4)
	Put(record, 0x1234)

	if record[2] != 0x34 || record[3] != 0x12 {
		t.Fatalf("stored as %02x %02x, want 34 12", record[2], record[3])
	}
}

//
func TestSealValid(t *testing.T) {

	record := []byte{9, 8, 7, 6, 5, 0, 0}

	Seal(record, Checksum)

	if !Valid(record, Checksum) {
		t.Fatal("sealed record does not validate")
	}

	record[1]++
	if Valid(record, Checksum) {
		t.Fatal("corrupted record validates")
	}
}
