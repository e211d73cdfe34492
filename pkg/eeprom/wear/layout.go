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

package wear

import (
	"fmt"
	"io/ioutil"
	"sort"

	"gopkg.in/yaml.v3"
)

// number of bytes a record spends on its trailing checksum
const checksumLength = 2

//
const DefaultRecordSize = 66

//
type Sector struct {
	Status  uint16 `yaml:"status"`
	Payload uint16 `yaml:"payload"`
}

/*
	Layout describes the physical sector map of a device: where each
	sector keeps its status byte and its payload, and how long a record
	is, including the trailing two checksum bytes. A layout is immutable
	once handed to a store; it is the single source of truth for the
	memory map, no other component hard-codes addresses.
*/
type Layout struct {
	RecordSize int      `yaml:"record_size"`
	Sectors    []Sector `yaml:"sectors"`
}

// DefaultLayout returns the reference memory map: four sectors with
// status bytes at 0x0000, 0x1000, 0x2000, 0x3000, payloads directly
// after, and a record size of 66 bytes (64 data + 2 checksum).
func DefaultLayout() Layout {
	return Layout{
		RecordSize: DefaultRecordSize,
		Sectors: []Sector{
			{Status: 0x0000, Payload: 0x0002},
			{Status: 0x1000, Payload: 0x1002},
			{Status: 0x2000, Payload: 0x2002},
			{Status: 0x3000, Payload: 0x3002},
		},
	}
}

/*
	LoadLayout reads a layout from a YAML file, e.g.:

		record_size: 66
		sectors:
		  - status: 0x0000
		    payload: 0x0002
		  - status: 0x1000
		    payload: 0x1002

	Addresses may be given in hex or decimal. The layout is validated
	before it is returned.
*/
func LoadLayout(file string) (Layout, error) {

	var ret Layout

	data, err := ioutil.ReadFile(file)
	if err != nil {
		return ret, fmt.Errorf("error reading layout file: %v", err)
	}

	if err := yaml.Unmarshal(data, &ret); err != nil {
		return ret, fmt.Errorf("error parsing layout file: %v", err)
	}

	return ret, ret.Validate()
}

//
func (l Layout) Validate() error {

	if len(l.Sectors) == 0 {
		return fmt.Errorf("layout has no sectors")
	}

	if l.RecordSize < checksumLength {
		return fmt.Errorf(
			"record size %d below minimum of %d (checksum only)",
			l.RecordSize, checksumLength)
	}

	type span struct {
		start, end int // end exclusive
		sector     int
	}

	var spans []span
	for ix, s := range l.Sectors {
		if int(s.Payload)+l.RecordSize > 0x10000 {
			return fmt.Errorf(
				"sector %d payload region exceeds address space", ix)
		}
		spans = append(spans,
			span{int(s.Status), int(s.Status) + 1, ix},
			span{int(s.Payload), int(s.Payload) + l.RecordSize, ix})
	}

	sort.Slice(spans, func(i, j int) bool {
		return spans[i].start < spans[j].start
	})

	for ix := 1; ix < len(spans); ix++ {
		if spans[ix].start < spans[ix-1].end {
			return fmt.Errorf("sectors %d and %d overlap",
				spans[ix-1].sector, spans[ix].sector)
		}
	}

	return nil
}

// DataSize returns the number of payload bytes in a record that are
// available to the application, i.e. record size less the checksum.
func (l Layout) DataSize() int {
	return l.RecordSize - checksumLength
}
