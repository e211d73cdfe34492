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

package daemon

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/eewl/pkg/eeprom"
	"github.com/xelalexv/eewl/pkg/eeprom/crc"
	"github.com/xelalexv/eewl/pkg/eeprom/mem"
	"github.com/xelalexv/eewl/pkg/eeprom/wear"
)

//
const keepAliveInterval = 10 * time.Second
const memoryDeviceSize = 0x10000

//
var ErrDaemonStopped = fmt.Errorf("daemon stopped")
var ErrNotReady = fmt.Errorf("not connected to a device")

//
type SectorState struct {
	Status byte
	Valid  bool
}

//
type StoreStatus struct {
	Ready        bool
	Memory       bool
	Port         string
	ActiveSector int
	RecordSize   int
	DataSize     int
	Sectors      []SectorState
}

//
type SectorDump struct {
	Sector  int
	Status  byte
	Payload []byte
}

/*
	Daemon manages the connection to the EEPROM, either via a serial
	programmer adapter or an in-memory device, and owns the wear-leveled
	store on top of it, including the active sector cursor. All store
	operations go through the daemon, which serializes them; the store
	itself has no locking.
*/
type Daemon struct {
	port   string
	memory bool
	layout wear.Layout

	mx     sync.Mutex
	dev    eeprom.Device
	con    *conduit
	store  *wear.Store
	cursor int
	ready  bool

	stop chan struct{}
}

// NewDaemon creates a daemon for an EEPROM behind the serial programmer
// adapter at the given port.
func NewDaemon(port string, l wear.Layout) *Daemon {
	return &Daemon{port: port, layout: l, stop: make(chan struct{})}
}

// NewMemoryDaemon creates a daemon over an in-memory device, for
// running without hardware.
func NewMemoryDaemon(l wear.Layout) *Daemon {
	return &Daemon{memory: true, layout: l, stop: make(chan struct{})}
}

/*
	Serve runs the daemon until Stop is called, reconnecting and
	resyncing with the adapter as needed. It always returns
	ErrDaemonStopped on a regular shutdown.
*/
func (d *Daemon) Serve() error {

	if d.memory {
		log.Info("running on in-memory device")
		if err := d.attach(mem.NewDevice(memoryDeviceSize)); err != nil {
			return err
		}
		<-d.stop
		d.detach()
		return ErrDaemonStopped
	}

	for {
		if err := d.resetConduit(); err != nil {
			return err
		}

		if err := d.con.syncOnHello(); err != nil {
			log.Errorf("error syncing with adapter: %v", err)
			continue
		}

		if err := d.attach(d.con); err != nil {
			log.Errorf("error opening store: %v", err)
			continue
		}

		if err := d.keepAlive(); err == ErrDaemonStopped {
			d.detach()
			return err
		}

		d.detach()
	}
}

// Stop shuts the daemon down.
func (d *Daemon) Stop() {
	close(d.stop)
}

// resetConduit closes the current conduit, if any, and opens a fresh
// one, backing off with a cap between attempts. Aborts with
// ErrDaemonStopped when the daemon is stopped while retrying.
func (d *Daemon) resetConduit() error {

	if d.con != nil {
		log.Infof("closing port %s", d.port)
		if err := d.con.close(); err != nil {
			log.Errorf("error closing port: %v", err)
		}
		d.con = nil
	}

	maxBackoff := 15 * time.Second

	for backoff := time.Second; ; {
		log.Infof("opening port %s", d.port)

		con, err := newConduit(d.port)
		if err == nil {
			d.con = con
			return nil
		}

		log.Errorf("cannot open serial port: %v", err)
		if backoff < maxBackoff {
			backoff *= 2
		}

		select {
		case <-d.stop:
			return ErrDaemonStopped
		case <-time.After(backoff):
		}
	}
}

// keepAlive pings the adapter periodically, returning on ping failure
// or daemon stop.
func (d *Daemon) keepAlive() error {

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {

		case <-d.stop:
			return ErrDaemonStopped

		case <-ticker.C:
			d.mx.Lock()
			err := d.con.ping()
			d.mx.Unlock()
			if err != nil {
				log.Errorf("adapter ping failed: %v", err)
				return err
			}
		}
	}
}

// attach opens the wear-leveled store over dev and loads the current
// record to establish the active sector cursor.
func (d *Daemon) attach(dev eeprom.Device) error {

	store, err := wear.NewStore(dev, d.layout, nil)
	if err != nil {
		return err
	}

	buf := make([]byte, store.RecordSize())
	sector, err := store.Load(buf)
	if err != nil {
		return fmt.Errorf("error loading store: %v", err)
	}

	d.mx.Lock()
	d.dev = dev
	d.store = store
	d.cursor = sector
	d.ready = true
	d.mx.Unlock()

	log.Infof("store loaded, active sector %d", sector)
	return nil
}

//
func (d *Daemon) detach() {
	d.mx.Lock()
	d.ready = false
	d.dev = nil
	d.store = nil
	d.mx.Unlock()
}

/*
	State loads the current record from the device and returns its data
	bytes, without the trailing checksum, along with the active sector
	index. The cursor is refreshed from the load, so a device that was
	modified out of band gets picked up here.
*/
func (d *Daemon) State() ([]byte, int, error) {

	d.mx.Lock()
	defer d.mx.Unlock()

	if !d.ready {
		return nil, -1, ErrNotReady
	}

	buf := make([]byte, d.store.RecordSize())
	sector, err := d.store.Load(buf)
	if err != nil {
		return nil, -1, err
	}

	d.cursor = sector
	return buf[:d.layout.DataSize()], sector, nil
}

/*
	Put seals data into a record and writes it to the sector after the
	current one. Data shorter than the record's data portion is zero
	padded at the end; longer data is rejected. Returns the new active
	sector index.
*/
func (d *Daemon) Put(data []byte) (int, error) {

	d.mx.Lock()
	defer d.mx.Unlock()

	if !d.ready {
		return -1, ErrNotReady
	}

	if len(data) > d.layout.DataSize() {
		return -1, fmt.Errorf("state of %d bytes exceeds record capacity %d",
			len(data), d.layout.DataSize())
	}

	rec := make([]byte, d.store.RecordSize())
	copy(rec, data)
	crc.Seal(rec, crc.Checksum)

	sector, err := d.store.Write(rec, d.cursor)
	if err != nil {
		return -1, err
	}

	d.cursor = sector
	return sector, nil
}

// Clear clears all sectors, then loads, which bootstraps sector 0 with
// a zeroed record. Returns the new active sector index, which is
// always 0.
func (d *Daemon) Clear() (int, error) {

	d.mx.Lock()
	defer d.mx.Unlock()

	if !d.ready {
		return -1, ErrNotReady
	}

	if err := d.store.ClearAll(); err != nil {
		return -1, err
	}

	buf := make([]byte, d.store.RecordSize())
	sector, err := d.store.Load(buf)
	if err != nil {
		return -1, err
	}

	d.cursor = sector
	return sector, nil
}

// Status reports the daemon state and a per-sector survey of status
// bytes and record checksum validity.
func (d *Daemon) Status() (*StoreStatus, error) {

	d.mx.Lock()
	defer d.mx.Unlock()

	ret := &StoreStatus{
		Memory:       d.memory,
		Port:         d.port,
		ActiveSector: -1,
	}

	if !d.ready {
		return ret, nil
	}

	ret.Ready = true
	ret.ActiveSector = d.cursor
	ret.RecordSize = d.layout.RecordSize
	ret.DataSize = d.layout.DataSize()

	status := make([]byte, 1)
	payload := make([]byte, d.layout.RecordSize)

	for ix, sec := range d.layout.Sectors {
		if err := d.dev.Read(sec.Status, status); err != nil {
			return nil, fmt.Errorf("error reading status of sector %d: %v",
				ix, err)
		}
		if err := d.dev.Read(sec.Payload, payload); err != nil {
			return nil, fmt.Errorf("error reading payload of sector %d: %v",
				ix, err)
		}
		ret.Sectors = append(ret.Sectors, SectorState{
			Status: status[0],
			Valid:  crc.Valid(payload, crc.Checksum),
		})
	}

	return ret, nil
}

// Dump returns the raw contents of every sector.
func (d *Daemon) Dump() ([]SectorDump, error) {

	d.mx.Lock()
	defer d.mx.Unlock()

	if !d.ready {
		return nil, ErrNotReady
	}

	var ret []SectorDump

	status := make([]byte, 1)

	for ix, sec := range d.layout.Sectors {
		if err := d.dev.Read(sec.Status, status); err != nil {
			return nil, fmt.Errorf("error reading status of sector %d: %v",
				ix, err)
		}
		payload := make([]byte, d.layout.RecordSize)
		if err := d.dev.Read(sec.Payload, payload); err != nil {
			return nil, fmt.Errorf("error reading payload of sector %d: %v",
				ix, err)
		}
		ret = append(ret, SectorDump{
			Sector:  ix,
			Status:  status[0],
			Payload: payload,
		})
	}

	return ret, nil
}
