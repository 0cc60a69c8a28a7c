// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sen5x

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/airquality/common"
)

// fakeBus emulates the register file of a SEN55 well enough to round trip
// values and follow mode changes. Unlike i2ctest.Playback it does not care
// about the exact order of transactions.
type fakeBus struct {
	addr      uint16
	regs      map[cmd][]uint16
	measuring bool
	status    uint32
	pending   cmd
	// Every command word received, in order.
	cmds []cmd
}

func newFakeBus() *fakeBus {
	return &fakeBus{
		addr: DefaultAddress,
		regs: map[cmd][]uint16{
			cmdGetProductName.cmdWord:      stringWords("SEN55"),
			cmdGetSerialNumber.cmdWord:     stringWords("A1B2C3D4E5F6"),
			cmdGetFirmwareVersion.cmdWord:  {0x0200},
			cmdReadMeasuredValues.cmdWord:  {52, 85, 103, 110, 4567, 4600, 1000, 10},
			cmdGetTempCompensation.cmdWord: {0, 0, 0},
			cmdGetWarmStart.cmdWord:        {0},
			cmdGetVOCTuning.cmdWord:        {100, 12, 12, 180, 50, 230},
			cmdGetNOxTuning.cmdWord:        {1, 12, 12, 720, 50, 230},
			cmdGetRHTMode.cmdWord:          {0},
			cmdGetVOCState.cmdWord:         {0, 0, 0, 0},
			cmdGetAutoCleaning.cmdWord:     {0x0009, 0x3a80},
		},
	}
}

// stringWords packs s NUL terminated into 16 words.
func stringWords(s string) []uint16 {
	b := make([]byte, 32)
	copy(b, s)
	w := make([]uint16, 16)
	for ix := range w {
		w[ix] = uint16(b[ix*2])<<8 | uint16(b[ix*2+1])
	}
	return w
}

func (f *fakeBus) String() string {
	return "fakeBus"
}

func (f *fakeBus) SetSpeed(physic.Frequency) error {
	return nil
}

func (f *fakeBus) Tx(addr uint16, w, r []byte) error {
	if addr != f.addr {
		return errors.New("fakeBus: nack")
	}
	if len(w) >= 2 {
		c := cmd(uint16(w[0])<<8 | uint16(w[1]))
		f.cmds = append(f.cmds, c)
		if data := w[2:]; len(data) > 0 {
			return f.write(c, data)
		}
		f.pending = c
		switch c {
		case cmdStartMeasurement.cmdWord, cmdStartMeasurementRHTGas.cmdWord:
			f.measuring = true
		case cmdStopMeasurement.cmdWord:
			f.measuring = false
		case cmdReset.cmdWord:
			f.measuring = false
			f.regs[cmdGetVOCState.cmdWord] = []uint16{0, 0, 0, 0}
		case cmdClearStatus.cmdWord:
			f.status = 0
		case cmdStartFanCleaning.cmdWord:
			f.status |= uint32(StatusFanCleaning)
		}
	}
	if len(r) > 0 {
		return f.read(r)
	}
	return nil
}

func (f *fakeBus) write(c cmd, data []byte) error {
	if len(data)%3 != 0 {
		return fmt.Errorf("fakeBus: 0x%04x: %d bytes is not whole words", c, len(data))
	}
	words := make([]uint16, len(data)/3)
	for ix := range words {
		if common.CRC8(data[ix*3:ix*3+2]) != data[ix*3+2] {
			return fmt.Errorf("fakeBus: 0x%04x: crc error on word %d", c, ix)
		}
		words[ix] = uint16(data[ix*3])<<8 | uint16(data[ix*3+1])
	}
	f.regs[c] = words
	return nil
}

func (f *fakeBus) read(r []byte) error {
	if len(r)%3 != 0 {
		// Presence probe.
		clear(r)
		return nil
	}
	var words []uint16
	switch f.pending {
	case cmdReadDataReady.cmdWord:
		words = []uint16{0}
		if f.measuring {
			words[0] = 1
		}
	case cmdReadStatus.cmdWord:
		words = []uint16{uint16(f.status >> 16), uint16(f.status)}
	default:
		words = f.regs[f.pending]
	}
	if len(words) < len(r)/3 {
		for ix := range r {
			r[ix] = 0xff
		}
		return nil
	}
	for ix := range len(r) / 3 {
		r[ix*3] = byte(words[ix] >> 8)
		r[ix*3+1] = byte(words[ix])
		r[ix*3+2] = common.CRC8(r[ix*3 : ix*3+2])
	}
	return nil
}

// scanBus adds a bus scan to fakeBus.
type scanBus struct {
	*fakeBus
	found []uint16
	err   error
}

func (s *scanBus) Scan() ([]uint16, error) {
	return s.found, s.err
}

var _ i2c.Bus = &fakeBus{}
var _ Scanner = &scanBus{}
