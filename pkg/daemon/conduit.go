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
	"bytes"
	"fmt"
	"io"

	"github.com/jacobsa/go-serial/serial"
	log "github.com/sirupsen/logrus"
)

//
const commandLength = 4
const maxChunkLength = 255

// adapter protocol commands; the daemon is the master, the adapter only
// ever sends hello, ack, nak, pong, and debug frames
const cmdHello = 'h' // hello (receive from adapter, reply from daemon)
const cmdPing = 'P'  // ping/pong (send to/receive from adapter)
const cmdRead = 'r'  // read span from EEPROM (send to adapter)
const cmdWrite = 'w' // write span to EEPROM (send to adapter)
const cmdAck = 'a'   // request confirmed (receive from adapter)
const cmdNak = 'n'   // request rejected (receive from adapter)
const cmdDebug = 'd' // debug message (receive from adapter)

//
var helloAdapter = []byte("hloe")
var helloDaemon = []byte("hlod")
var ping = []byte{cmdPing, 'i', 'n', 'g'}
var pong = []byte{cmdPing, 'o', 'n', 'g'}

// the adapter restarted mid-conversation; the daemon needs to resync
// and reload
var errAdapterRestart = fmt.Errorf("adapter sent hello, restarting sync")

/*
	conduit is the serial connection to the EEPROM programmer adapter.
	It speaks a small framed protocol: every exchange starts with a four
	byte command frame, followed by raw payload bytes where the command
	calls for them. The conduit implements eeprom.Device, so the
	wear-leveling store can run directly on top of it.
*/
type conduit struct {
	port io.ReadWriteCloser
}

//
func newConduit(port string) (*conduit, error) {
	p, err := openPort(port)
	if err != nil {
		return nil, err
	}
	return &conduit{port: p}, nil
}

//
func openPort(p string) (io.ReadWriteCloser, error) {
	return serial.Open(serial.OpenOptions{
		PortName:        p,
		BaudRate:        1000000,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	})
}

//
func (c *conduit) close() error {
	return c.port.Close()
}

//
func (c *conduit) receive(data []byte) error {
	_, err := io.ReadFull(c.port, data)
	return err
}

//
func (c *conduit) send(data []byte) error {
	_, err := c.port.Write(data)
	return err
}

/*
	syncOnHello scans the inbound byte stream for the adapter's hello,
	and acknowledges it with the daemon hello. The adapter keeps
	repeating its hello until it sees the reply, so scanning byte by
	byte eventually aligns the two, regardless of what partial frame the
	port buffer held when the daemon attached.
*/
func (c *conduit) syncOnHello() error {

	log.Info("syncing with adapter")
	hello := make([]byte, commandLength)

	for !bytes.Equal(hello, helloAdapter) {
		shiftLeft(hello)
		if err := c.receive(hello[len(hello)-1:]); err != nil {
			return err
		}
	}

	if err := c.send(helloDaemon); err != nil {
		return fmt.Errorf("error sending daemon hello: %v", err)
	}

	log.Info("synced with adapter")
	return nil
}

// ping checks that the adapter is still alive and in sync.
func (c *conduit) ping() error {

	if err := c.send(ping); err != nil {
		return err
	}

	frame := make([]byte, commandLength)
	if err := c.receiveFrame(frame); err != nil {
		return err
	}

	if !bytes.Equal(frame, pong) {
		return fmt.Errorf("unexpected ping reply: %v", frame)
	}

	return nil
}

/*
	receiveFrame reads the next command frame, transparently handling
	frames the adapter may interject at any time: debug messages get
	logged and skipped, a hello aborts with errAdapterRestart, since it
	means the adapter rebooted and any conversation state is gone.
*/
func (c *conduit) receiveFrame(frame []byte) error {

	for {
		if err := c.receive(frame); err != nil {
			return err
		}

		switch frame[0] {

		case cmdDebug:
			msg := make([]byte, int(frame[1]))
			if err := c.receive(msg); err != nil {
				return fmt.Errorf("error reading debug message: %v", err)
			}
			log.Debugf("adapter: %s", string(msg))

		case cmdHello:
			return errAdapterRestart

		default:
			return nil
		}
	}
}

//
func (c *conduit) awaitAck() error {

	frame := make([]byte, commandLength)
	if err := c.receiveFrame(frame); err != nil {
		return err
	}

	switch frame[0] {

	case cmdAck:
		return nil

	case cmdNak:
		return fmt.Errorf("adapter rejected request, code %d", frame[1])
	}

	return fmt.Errorf("corrupted reply frame: %v", frame)
}

// Read implements eeprom.Device. Spans longer than what a single frame
// can request are read in chunks.
func (c *conduit) Read(address uint16, data []byte) error {

	for len(data) > 0 {

		chunk := len(data)
		if chunk > maxChunkLength {
			chunk = maxChunkLength
		}

		if err := c.send([]byte{cmdRead,
			byte(address >> 8), byte(address), byte(chunk)}); err != nil {
			return fmt.Errorf("error sending read request: %v", err)
		}

		if err := c.awaitAck(); err != nil {
			return err
		}

		if err := c.receive(data[:chunk]); err != nil {
			return fmt.Errorf("error reading span data: %v", err)
		}

		log.Tracef("read %d bytes at 0x%04x", chunk, address)

		address += uint16(chunk)
		data = data[chunk:]
	}

	return nil
}

// Write implements eeprom.Device.
func (c *conduit) Write(address uint16, data []byte) error {

	for len(data) > 0 {

		chunk := len(data)
		if chunk > maxChunkLength {
			chunk = maxChunkLength
		}

		if err := c.send([]byte{cmdWrite,
			byte(address >> 8), byte(address), byte(chunk)}); err != nil {
			return fmt.Errorf("error sending write request: %v", err)
		}

		if err := c.send(data[:chunk]); err != nil {
			return fmt.Errorf("error sending span data: %v", err)
		}

		if err := c.awaitAck(); err != nil {
			return err
		}

		log.Tracef("wrote %d bytes at 0x%04x", chunk, address)

		address += uint16(chunk)
		data = data[chunk:]
	}

	return nil
}

//
func shiftLeft(data []byte) {
	for ix := 0; ix < len(data)-1; ix++ {
		data[ix] = data[ix+1]
	}
}
