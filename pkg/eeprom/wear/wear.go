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

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/eewl/pkg/eeprom"
	"github.com/xelalexv/eewl/pkg/eeprom/crc"
)

// observable sector states; any status byte other than SectorActive is
// treated as inactive
const (
	SectorInactive byte = 0
	SectorActive   byte = 1
)

/*
	Store cycles writes of a single fixed-size record across the sectors
	of its layout, so that no one EEPROM location takes all the erase
	cycles. A record is opaque payload bytes with a trailing two-byte
	checksum; the store validates the checksum when loading, but it is
	the caller who seals a record before writing (see crc.Seal).

	The device is borrowed for the duration of each operation. A store
	holds no mutable state of its own; the caller keeps the active
	sector index returned by Load and passes it to each Write. Store
	operations must not be invoked concurrently on the same device.
*/
type Store struct {
	dev      eeprom.Device
	layout   Layout
	checksum crc.Func
}

// NewStore creates a store over dev with the given layout. When f is
// nil, crc.Checksum is used. The same checksum function must be used
// over the lifetime of the data on the device.
func NewStore(dev eeprom.Device, l Layout, f crc.Func) (*Store, error) {

	if dev == nil {
		return nil, fmt.Errorf("no device")
	}

	if err := l.Validate(); err != nil {
		return nil, err
	}

	if f == nil {
		f = crc.Checksum
	}

	return &Store{dev: dev, layout: l, checksum: f}, nil
}

//
func (s *Store) Layout() Layout {
	return s.layout
}

// SectorCount returns the number of sectors in this store's layout.
func (s *Store) SectorCount() int {
	return len(s.layout.Sectors)
}

// RecordSize returns the record length in bytes, including checksum.
func (s *Store) RecordSize() int {
	return s.layout.RecordSize
}

/*
	ClearSector marks the given sector inactive and zeroes its payload.
	There is no read-back verification. The payload must be zeroed and
	not just the status byte, since a later bootstrap load returns the
	cleared payload as the initial record.
*/
func (s *Store) ClearSector(sector int) error {

	if err := s.validateSector(sector); err != nil {
		return err
	}

	sec := s.layout.Sectors[sector]

	if err := s.dev.Write(sec.Status, []byte{SectorInactive}); err != nil {
		return fmt.Errorf("error clearing status of sector %d: %v",
			sector, err)
	}

	if err := s.dev.Write(
		sec.Payload, make([]byte, s.layout.RecordSize)); err != nil {
		return fmt.Errorf("error clearing payload of sector %d: %v",
			sector, err)
	}

	return nil
}

// ClearAll clears every sector in ascending order. Afterwards, the
// device is in the fresh state, and the next Load bootstraps sector 0.
func (s *Store) ClearAll() error {
	for ix := range s.layout.Sectors {
		if err := s.ClearSector(ix); err != nil {
			return err
		}
	}
	return nil
}

/*
	Load scans the sectors in ascending order and copies the first
	active record with a valid checksum into buf, returning its sector
	index. The caller keeps that index and passes it verbatim to the
	next Write.

	Ascending order with first match is essential for crash recovery:
	after an interrupted write, at most two sectors are active, and
	whichever of them validates first is a consistent state to resume
	from. There are no timestamps, so no "most recent" selection is
	attempted.

	When no active sector validates, which is also the case on a virgin
	device, all sectors are cleared, sector 0 is activated with a zeroed
	record, and 0 is returned with buf zeroed.

	buf must be exactly RecordSize bytes long and is fully overwritten
	on success.
*/
func (s *Store) Load(buf []byte) (int, error) {

	if err := s.validateRecord(buf); err != nil {
		return -1, err
	}

	staging := make([]byte, s.layout.RecordSize)
	status := make([]byte, 1)

	for ix, sec := range s.layout.Sectors {

		if err := s.dev.Read(sec.Status, status); err != nil {
			return -1, fmt.Errorf("error reading status of sector %d: %v",
				ix, err)
		}

		if status[0] != SectorActive {
			continue
		}

		if err := s.dev.Read(sec.Payload, staging); err != nil {
			return -1, fmt.Errorf("error reading payload of sector %d: %v",
				ix, err)
		}

		if crc.Valid(staging, s.checksum) {
			log.Debugf("loaded record from sector %d", ix)
			copy(buf, staging)
			return ix, nil
		}

		log.Debugf("sector %d is active but fails checksum, skipping", ix)
	}

	log.Debug("no valid sector found, bootstrapping")

	if err := s.ClearAll(); err != nil {
		return -1, err
	}

	sec := s.layout.Sectors[0]

	if err := s.dev.Write(sec.Status, []byte{SectorActive}); err != nil {
		return -1, fmt.Errorf("error activating sector 0: %v", err)
	}

	zero := make([]byte, s.layout.RecordSize)
	if err := s.dev.Write(sec.Payload, zero); err != nil {
		return -1, fmt.Errorf("error initializing sector 0: %v", err)
	}

	copy(buf, zero)
	return 0, nil
}

/*
	Write stores buf into the sector after current, and returns the new
	sector index. The steps are issued in exactly this order:

		1. mark current sector inactive
		2. mark next sector active
		3. write payload to next sector

	Invalidating before committing the new payload is what makes a
	power loss at any point recoverable by the next Load: between 1 and
	2 no sector is active (Load bootstraps), between 2 and 3 the next
	sector is active but fails its checksum (Load falls through, or
	bootstraps if nothing else validates).

	buf must be exactly RecordSize bytes long, with its checksum already
	sealed into the trailing two bytes; the store treats it as opaque.
*/
func (s *Store) Write(buf []byte, current int) (int, error) {

	if err := s.validateRecord(buf); err != nil {
		return -1, err
	}

	if err := s.validateSector(current); err != nil {
		return -1, err
	}

	if err := s.dev.Write(
		s.layout.Sectors[current].Status, []byte{SectorInactive}); err != nil {
		return -1, fmt.Errorf("error deactivating sector %d: %v",
			current, err)
	}

	next := (current + 1) % len(s.layout.Sectors)
	sec := s.layout.Sectors[next]

	if err := s.dev.Write(sec.Status, []byte{SectorActive}); err != nil {
		return -1, fmt.Errorf("error activating sector %d: %v", next, err)
	}

	if err := s.dev.Write(sec.Payload, buf); err != nil {
		return -1, fmt.Errorf("error writing payload to sector %d: %v",
			next, err)
	}

	log.Debugf("rotated record from sector %d to %d", current, next)
	return next, nil
}

//
func (s *Store) validateSector(sector int) error {
	if sector < 0 || sector >= len(s.layout.Sectors) {
		return fmt.Errorf(
			"invalid sector index: %d; valid indexes are 0 through %d",
			sector, len(s.layout.Sectors)-1)
	}
	return nil
}

//
func (s *Store) validateRecord(buf []byte) error {
	if len(buf) != s.layout.RecordSize {
		return fmt.Errorf("record buffer length %d, need %d",
			len(buf), s.layout.RecordSize)
	}
	return nil
}
