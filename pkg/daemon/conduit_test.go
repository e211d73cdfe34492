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
	"testing"
)

// fakePort scripts the adapter side of a conversation: whatever the
// adapter would send is preloaded into in, whatever the daemon sends
// accumulates in out
type fakePort struct {
	in     bytes.Buffer
	out    bytes.Buffer
	closed bool
}

func (f *fakePort) Read(p []byte) (int, error)  { return f.in.Read(p) }
func (f *fakePort) Write(p []byte) (int, error) { return f.out.Write(p) }
func (f *fakePort) Close() error                { f.closed = true; return nil }

//
func newFakeConduit() (*conduit, *fakePort) {
	port := &fakePort{}
	return &conduit{port: port}, port
}

//
func TestSyncOnHello(t *testing.T) {

	con, port := newFakeConduit()

	// partial leftover frame, then the adapter hello
	port.in.Write([]byte{0x00, 'o', 'e'})
	port.in.Write(helloAdapter)

	if err := con.syncOnHello(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	if !bytes.Equal(port.out.Bytes(), helloDaemon) {
		t.Fatalf("daemon sent %v, want hello", port.out.Bytes())
	}
}

//
func TestConduitRead(t *testing.T) {

	con, port := newFakeConduit()

	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	port.in.Write([]byte{cmdAck, 0, 0, 0})
	port.in.Write(data)

	buf := make([]byte, len(data))
	if err := con.Read(0x1234, buf); err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if !bytes.Equal(buf, data) {
		t.Fatalf("read %v", buf)
	}

	want := []byte{cmdRead, 0x12, 0x34, 8}
	if !bytes.Equal(port.out.Bytes(), want) {
		t.Fatalf("request frame %v, want %v", port.out.Bytes(), want)
	}
}

// reads longer than one frame can carry must be chunked
func TestConduitReadChunked(t *testing.T) {

	con, port := newFakeConduit()

	first := make([]byte, maxChunkLength)
	second := make([]byte, 45)
	for ix := range first {
		first[ix] = byte(ix)
	}
	for ix := range second {
		second[ix] = byte(ix + 7)
	}

	port.in.Write([]byte{cmdAck, 0, 0, 0})
	port.in.Write(first)
	port.in.Write([]byte{cmdAck, 0, 0, 0})
	port.in.Write(second)

	buf := make([]byte, len(first)+len(second))
	if err := con.Read(0x0100, buf); err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if !bytes.Equal(buf[:maxChunkLength], first) ||
		!bytes.Equal(buf[maxChunkLength:], second) {
		t.Fatal("chunked read returned wrong data")
	}

	want := append(
		[]byte{cmdRead, 0x01, 0x00, maxChunkLength},
		cmdRead, 0x01, 0xff, 45)
	if !bytes.Equal(port.out.Bytes(), want) {
		t.Fatalf("request frames %v, want %v", port.out.Bytes(), want)
	}
}

//
func TestConduitWrite(t *testing.T) {

	con, port := newFakeConduit()
	port.in.Write([]byte{cmdAck, 0, 0, 0})

	data := []byte{0xca, 0xfe, 0xba, 0xbe, 0x42}
	if err := con.Write(0x2002, data); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	want := append([]byte{cmdWrite, 0x20, 0x02, 5}, data...)
	if !bytes.Equal(port.out.Bytes(), want) {
		t.Fatalf("sent %v, want %v", port.out.Bytes(), want)
	}
}

//
func TestConduitNak(t *testing.T) {

	con, port := newFakeConduit()
	port.in.Write([]byte{cmdNak, 3, 0, 0})

	if err := con.Read(0x0000, make([]byte, 4)); err == nil {
		t.Fatal("nak'ed read did not fail")
	}
}

// debug frames may arrive at any time and must not disturb a request
func TestConduitDebugInterleaved(t *testing.T) {

	con, port := newFakeConduit()

	msg := []byte("brownout")
	port.in.Write([]byte{cmdDebug, byte(len(msg)), 0, 0})
	port.in.Write(msg)
	port.in.Write([]byte{cmdAck, 0, 0, 0})
	port.in.Write([]byte{9, 9})

	buf := make([]byte, 2)
	if err := con.Read(0x0010, buf); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if buf[0] != 9 || buf[1] != 9 {
		t.Fatalf("read %v", buf)
	}
}

//
func TestConduitAdapterRestart(t *testing.T) {

	con, port := newFakeConduit()
	port.in.Write(helloAdapter)

	err := con.Read(0x0000, make([]byte, 4))
	if err != errAdapterRestart {
		t.Fatalf("got %v, want adapter restart", err)
	}
}

//
func TestConduitPing(t *testing.T) {

	con, port := newFakeConduit()
	port.in.Write(pong)

	if err := con.ping(); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
	if !bytes.Equal(port.out.Bytes(), ping) {
		t.Fatalf("sent %v, want ping", port.out.Bytes())
	}

	con, port = newFakeConduit()
	port.in.Write([]byte{cmdAck, 0, 0, 0})
	if err := con.ping(); err == nil {
		t.Fatal("ping with wrong reply did not fail")
	}
}
