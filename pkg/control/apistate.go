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
	"encoding/hex"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// payloads larger than this are rejected outright, well above any
// plausible record size for a 16 bit address space
const maxPayloadSize = 1048576

//
func (a *api) state(w http.ResponseWriter, req *http.Request) {

	data, sector, err := a.daemon.State()
	if handleError(err, statusForError(err), w) {
		return
	}

	if wantsJSON(req) {
		sendJSONReply(&State{
			Sector: sector,
			Data:   hex.EncodeToString(data),
		}, http.StatusOK, w)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("X-Active-Sector", fmt.Sprintf("%d", sector))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Errorf("problem sending state: %v", err)
	}
}

//
func (a *api) putState(w http.ResponseWriter, req *http.Request) {

	data, err := ioutil.ReadAll(io.LimitReader(req.Body, maxPayloadSize))
	if handleError(err, http.StatusBadRequest, w) {
		return
	}

	sector, err := a.daemon.Put(data)
	if handleError(err, statusForError(err), w) {
		return
	}

	sendReply([]byte(fmt.Sprintf("stored in sector %d", sector)),
		http.StatusOK, w)
}
