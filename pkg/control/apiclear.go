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
	"net/http"
)

//
func (a *api) clear(w http.ResponseWriter, req *http.Request) {

	sector, err := a.daemon.Clear()
	if handleError(err, statusForError(err), w) {
		return
	}

	sendReply([]byte(fmt.Sprintf("cleared, active sector is %d", sector)),
		http.StatusOK, w)
}
