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

package run

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/eewl/pkg/control"
	"github.com/xelalexv/eewl/pkg/daemon"
)

//
func NewServe() *Serve {

	s := &Serve{}
	s.Runner = *NewRunner(
		`serve -d|--device {device}|-m|--memory [-a|--address {address}]
      [-l|--layout {layout file}]`,
		"daemon & API server command",
		`Use the serve command for running the daemon and API server. The daemon talks to
the EEPROM via the programmer adapter on the given serial device, or simulates
one in memory when --memory is set. The sector layout defaults to four sectors
with 66 byte records, and can be changed with a layout file.`,
		s.Run)

	s.AddBaseSettings()
	s.AddSetting(&s.Device, "device", "d", "EEWL_DEVICE", nil,
		"serial port device for programmer adapter", false)
	s.AddSetting(&s.Memory, "memory", "m", "", nil,
		"use an in-memory device instead of hardware", false)
	s.AddSetting(&s.Address, "address", "a", "EEWL_ADDRESS", nil,
		"listen address for API server", false)
	s.AddSetting(&s.Layout, "layout", "l", "EEWL_LAYOUT", nil,
		"sector layout file", false)

	return s
}

//
type Serve struct {
	//
	Runner
	//
	Device  string
	Memory  bool
	Address string
	Layout  string
}

//
func (s *Serve) Run() error {

	s.ParseSettings()

	if s.Device == "" && !s.Memory {
		return fmt.Errorf("need either --device or --memory")
	}
	if s.Device != "" && s.Memory {
		return fmt.Errorf("--device and --memory are mutually exclusive")
	}

	layout, err := getLayout(s.Layout)
	if err != nil {
		return err
	}

	var d *daemon.Daemon
	if s.Memory {
		d = daemon.NewMemoryDaemon(layout)
	} else {
		d = daemon.NewDaemon(s.Device, layout)
	}

	wg := &sync.WaitGroup{}
	wg.Add(2)

	go func() {
		defer wg.Done()
		err := d.Serve()
		if err != nil && err != daemon.ErrDaemonStopped {
			log.Errorf("daemon closed with error: %v", err)
		} else {
			log.Info("daemon stopped")
		}
	}()

	addr := s.Address
	if addr == "" {
		addr = fmt.Sprintf(":%d", s.Port)
	}

	api := control.NewAPIServer(addr, d)
	go func() {
		defer wg.Done()
		if err := api.Serve(); err != nil {
			log.Errorf("API server closed with error: %v", err)
		} else {
			log.Info("API server stopped")
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sigCount := 0
	done := make(chan bool)

	for {

		select {

		case sig := <-sigs: // interrupt signal
			log.WithField("signal", sig).Info("signal received")
			sigCount++

			switch sigCount {

			case 1:
				go func() {
					log.Info("shutting down, hit Ctrl-C twice to force exit...")
					api.Stop()
					d.Stop()
					wg.Wait()
					log.Info("EEWL stopped")
					done <- true
				}()

			case 2:
				log.Warn("shutdown in progress, hit Ctrl-C again to force exit")

			default:
				log.Warn("forcing daemon to stop immediately")
				os.Exit(1)
			}

		case <-done: // shutdown sequence complete
			return nil
		}
	}
}
