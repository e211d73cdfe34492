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
	"net/http"
	"strings"
)

//
func (a *api) dump(w http.ResponseWriter, req *http.Request) {

	sectors, err := a.daemon.Dump()
	if handleError(err, statusForError(err), w) {
		return
	}

	var b strings.Builder
	for _, s := range sectors {
		fmt.Fprintf(&b, "sector %d, status 0x%02x:\n", s.Sector, s.Status)
		b.WriteString(hex.Dump(s.Payload))
	}

	sendReply([]byte(b.String()), http.StatusOK, w)
}
