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

package control

import (
	"fmt"

	"github.com/xelalexv/eewl/pkg/daemon"
)

//
type Status struct {
	Ready        bool     `json:"ready"`
	Memory       bool     `json:"memory"`
	Port         string   `json:"port,omitempty"`
	ActiveSector int      `json:"activeSector"`
	RecordSize   int      `json:"recordSize"`
	DataSize     int      `json:"dataSize"`
	Sectors      []Sector `json:"sectors"`
}

//
type Sector struct {
	Status byte `json:"status"`
	Valid  bool `json:"valid"`
}

//
func (s *Status) fill(st *daemon.StoreStatus) {
	s.Ready = st.Ready
	s.Memory = st.Memory
	s.Port = st.Port
	s.ActiveSector = st.ActiveSector
	s.RecordSize = st.RecordSize
	s.DataSize = st.DataSize
	for _, sec := range st.Sectors {
		s.Sectors = append(s.Sectors, Sector{Status: sec.Status, Valid: sec.Valid})
	}
}

//
func (s *Status) String() string {

	device := s.Port
	if s.Memory {
		device = "memory"
	}

	ret := fmt.Sprintf("\ndevice: %s\nready:  %v\nrecord: %d bytes (%d data)\n",
		device, s.Ready, s.RecordSize, s.DataSize)

	for ix, sec := range s.Sectors {
		marker := ' '
		if ix == s.ActiveSector {
			marker = '*'
		}
		valid := "invalid"
		if sec.Valid {
			valid = "valid"
		}
		ret = fmt.Sprintf("%s%c %d: status=0x%02x %s\n",
			ret, marker, ix, sec.Status, valid)
	}

	return ret
}

//
type State struct {
	Sector int    `json:"sector"`
	Data   string `json:"data"`
}
