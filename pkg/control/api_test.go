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
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xelalexv/eewl/pkg/daemon"
	"github.com/xelalexv/eewl/pkg/eeprom/wear"
)

//
func newTestAPI(t *testing.T) (*api, func()) {

	t.Helper()

	d := daemon.NewMemoryDaemon(wear.DefaultLayout())
	go d.Serve()

	deadline := time.Now().Add(time.Second)
	for {
		st, err := d.Status()
		if err != nil {
			t.Fatalf("status failed: %v", err)
		}
		if st.Ready {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("daemon did not become ready")
		}
		time.Sleep(time.Millisecond)
	}

	return &api{daemon: d}, d.Stop
}

//
func TestAPIStatusJSON(t *testing.T) {

	a, stop := newTestAPI(t)
	defer stop()

	req := httptest.NewRequest("GET", "/status", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	a.status(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", rec.Code)
	}

	var st Status
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("cannot decode reply: %v", err)
	}
	if !st.Ready || !st.Memory {
		t.Fatalf("unexpected status: %+v", st)
	}
	if len(st.Sectors) != 4 {
		t.Fatalf("want 4 sectors, got %d", len(st.Sectors))
	}
	if st.DataSize != 64 {
		t.Fatalf("want data size 64, got %d", st.DataSize)
	}
}

//
func TestAPIStatusText(t *testing.T) {

	a, stop := newTestAPI(t)
	defer stop()

	req := httptest.NewRequest("GET", "/status", nil)
	rec := httptest.NewRecorder()
	a.status(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "device: memory") {
		t.Fatalf("unexpected reply: %q", rec.Body.String())
	}
}

//
func TestAPIStateRoundTrip(t *testing.T) {

	a, stop := newTestAPI(t)
	defer stop()

	rec := httptest.NewRecorder()
	a.putState(rec, httptest.NewRequest(
		"PUT", "/state", strings.NewReader("hello")))
	if rec.Code != http.StatusOK {
		t.Fatalf("put failed: %d - %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	a.state(rec, httptest.NewRequest("GET", "/state", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get failed: %d", rec.Code)
	}

	data := rec.Body.Bytes()
	if len(data) != 64 {
		t.Fatalf("want 64 bytes of state, got %d", len(data))
	}
	if !bytes.Equal(data[:5], []byte("hello")) {
		t.Fatalf("unexpected state: %q", data[:5])
	}
	if rec.Header().Get("X-Active-Sector") != "1" {
		t.Fatalf("unexpected active sector: %q",
			rec.Header().Get("X-Active-Sector"))
	}
}

//
func TestAPIStateJSON(t *testing.T) {

	a, stop := newTestAPI(t)
	defer stop()

	rec := httptest.NewRecorder()
	a.putState(rec, httptest.NewRequest(
		"PUT", "/state", bytes.NewReader([]byte{0xca, 0xfe})))
	if rec.Code != http.StatusOK {
		t.Fatalf("put failed: %d", rec.Code)
	}

	req := httptest.NewRequest("GET", "/state", nil)
	req.Header.Set("Accept", "application/json")
	rec = httptest.NewRecorder()
	a.state(rec, req)

	var st State
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("cannot decode reply: %v", err)
	}
	if st.Sector != 1 {
		t.Fatalf("unexpected sector: %d", st.Sector)
	}

	data, err := hex.DecodeString(st.Data)
	if err != nil {
		t.Fatalf("cannot decode state data: %v", err)
	}
	if len(data) != 64 || data[0] != 0xca || data[1] != 0xfe {
		t.Fatalf("unexpected state data: %x", data)
	}
}

//
func TestAPIPutOversized(t *testing.T) {

	a, stop := newTestAPI(t)
	defer stop()

	rec := httptest.NewRecorder()
	a.putState(rec, httptest.NewRequest(
		"PUT", "/state", bytes.NewReader(make([]byte, 65))))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("want 422, got %d", rec.Code)
	}
}

//
func TestAPIClear(t *testing.T) {

	a, stop := newTestAPI(t)
	defer stop()

	rec := httptest.NewRecorder()
	a.putState(rec, httptest.NewRequest(
		"PUT", "/state", strings.NewReader("scrap this")))
	if rec.Code != http.StatusOK {
		t.Fatalf("put failed: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	a.clear(rec, httptest.NewRequest("POST", "/clear", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("clear failed: %d - %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	a.state(rec, httptest.NewRequest("GET", "/state", nil))
	for _, b := range rec.Body.Bytes() {
		if b != 0 {
			t.Fatal("state not zeroed after clear")
		}
	}
}

//
func TestAPIDump(t *testing.T) {

	a, stop := newTestAPI(t)
	defer stop()

	rec := httptest.NewRecorder()
	a.dump(rec, httptest.NewRequest("GET", "/dump", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("dump failed: %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{"sector 0", "sector 1", "sector 2",
		"sector 3"} {
		if !strings.Contains(body, want) {
			t.Fatalf("dump misses %q:\n%s", want, body)
		}
	}
}

//
func TestAPINotReady(t *testing.T) {

	a := &api{daemon: daemon.NewMemoryDaemon(wear.DefaultLayout())}

	rec := httptest.NewRecorder()
	a.state(rec, httptest.NewRequest("GET", "/state", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("want 503, got %d", rec.Code)
	}
}
