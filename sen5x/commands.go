// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sen5x

import (
	"fmt"
	"time"

	"github.com/GermanBionicSystems/airquality/common"
)

type cmd uint16

type direction int

const (
	// Send the command word only.
	dirExecute direction = iota
	// Send the command word, wait, then read words.
	dirRead
	// Send the command word followed by words in one transaction.
	dirWrite
)

// guard is the device mode an operation requires.
type guard int

const (
	anyMode guard = iota
	idleOnly
	measuringOnly
)

// Structure to simplify sending commands to the device.
type command struct {
	name    string
	cmdWord cmd
	dir     direction
	// Number of data words read or written. Each is 3 bytes on the wire.
	words int
	// Time the device needs before the next transaction. 0 means
	// minExecTime.
	delay time.Duration
	guard guard
}

const (
	// Minimum time to execute a command per datasheet.
	minExecTime = 20 * time.Millisecond

	// The largest payload is the 16 word product name and serial number.
	maxWords  = 16
	frameSize = 2 + maxWords*3
)

// The register catalog.

var cmdStartMeasurement = command{
	name:    "start measurement",
	cmdWord: 0x0021,
	delay:   50 * time.Millisecond,
}
var cmdStartMeasurementRHTGas = command{
	name:    "start measurement rht/gas only",
	cmdWord: 0x0037,
	delay:   50 * time.Millisecond,
}
var cmdStopMeasurement = command{
	name:    "stop measurement",
	cmdWord: 0x0104,
	delay:   200 * time.Millisecond,
}
var cmdReadDataReady = command{
	name:    "read data ready",
	cmdWord: 0x0202,
	dir:     dirRead,
	words:   1,
}
var cmdReadMeasuredValues = command{
	name:    "read measured values",
	cmdWord: 0x03c4,
	dir:     dirRead,
	words:   8,
}
var cmdGetTempCompensation = command{
	name:    "get temperature compensation",
	cmdWord: 0x60b2,
	dir:     dirRead,
	words:   3,
}
var cmdSetTempCompensation = command{
	name:    "set temperature compensation",
	cmdWord: 0x60b2,
	dir:     dirWrite,
	words:   3,
}
var cmdGetWarmStart = command{
	name:    "get warm start",
	cmdWord: 0x60c6,
	dir:     dirRead,
	words:   1,
}
var cmdSetWarmStart = command{
	name:    "set warm start",
	cmdWord: 0x60c6,
	dir:     dirWrite,
	words:   1,
}
var cmdGetVOCTuning = command{
	name:    "get voc tuning",
	cmdWord: 0x60d0,
	dir:     dirRead,
	words:   6,
	guard:   idleOnly,
}
var cmdSetVOCTuning = command{
	name:    "set voc tuning",
	cmdWord: 0x60d0,
	dir:     dirWrite,
	words:   6,
	guard:   idleOnly,
}
var cmdGetNOxTuning = command{
	name:    "get nox tuning",
	cmdWord: 0x60e1,
	dir:     dirRead,
	words:   6,
	guard:   idleOnly,
}
var cmdSetNOxTuning = command{
	name:    "set nox tuning",
	cmdWord: 0x60e1,
	dir:     dirWrite,
	words:   6,
	guard:   idleOnly,
}
var cmdGetRHTMode = command{
	name:    "get rht acceleration mode",
	cmdWord: 0x60f7,
	dir:     dirRead,
	words:   1,
}
var cmdSetRHTMode = command{
	name:    "set rht acceleration mode",
	cmdWord: 0x60f7,
	dir:     dirWrite,
	words:   1,
}
var cmdGetVOCState = command{
	name:    "get voc algorithm state",
	cmdWord: 0x6181,
	dir:     dirRead,
	words:   4,
}
var cmdSetVOCState = command{
	name:    "set voc algorithm state",
	cmdWord: 0x6181,
	dir:     dirWrite,
	words:   4,
}
var cmdStartFanCleaning = command{
	name:    "start fan cleaning",
	cmdWord: 0x5607,
	guard:   measuringOnly,
}
var cmdGetAutoCleaning = command{
	name:    "get auto cleaning interval",
	cmdWord: 0x8004,
	dir:     dirRead,
	words:   2,
}
var cmdSetAutoCleaning = command{
	name:    "set auto cleaning interval",
	cmdWord: 0x8004,
	dir:     dirWrite,
	words:   2,
}
var cmdGetProductName = command{
	name:    "get product name",
	cmdWord: 0xd014,
	dir:     dirRead,
	words:   16,
}
var cmdGetSerialNumber = command{
	name:    "get serial number",
	cmdWord: 0xd033,
	dir:     dirRead,
	words:   16,
}
var cmdGetFirmwareVersion = command{
	name:    "get firmware version",
	cmdWord: 0xd100,
	dir:     dirRead,
	words:   1,
}
var cmdReadStatus = command{
	name:    "read device status",
	cmdWord: 0xd206,
	dir:     dirRead,
	words:   2,
}
var cmdClearStatus = command{
	name:    "clear device status",
	cmdWord: 0xd210,
}
var cmdReset = command{
	name:    "reset",
	cmdWord: 0xd304,
	delay:   100 * time.Millisecond,
}

func (c command) settle() time.Duration {
	if c.delay == 0 {
		return minExecTime
	}
	return c.delay
}

// check enforces the command's mode requirement. The data ready flag is the
// only record of the mode, so it is read from the device every time.
func (d *Dev) check(c command) error {
	if c.guard == anyMode {
		return nil
	}
	ready, err := d.DataReady()
	if err != nil {
		return err
	}
	switch {
	case c.guard == idleOnly && ready:
		return &InvalidModeError{Op: c.name, Want: Idle}
	case c.guard == measuringOnly && !ready:
		return &InvalidModeError{Op: c.name, Want: Measuring}
	}
	return nil
}

// execute sends the command word and waits for the device to process it.
func (d *Dev) execute(c command) error {
	if err := d.check(c); err != nil {
		return err
	}
	return d.send(c)
}

func (d *Dev) send(c command) error {
	d.frame[0] = byte(c.cmdWord >> 8)
	d.frame[1] = byte(c.cmdWord)
	if err := d.d.Tx(d.frame[:2], nil); err != nil {
		return fmt.Errorf("sen5x: %s: %w", c.name, err)
	}
	d.sleep(c.settle())
	return nil
}

// readWords executes c and returns the words of the response with the CRC
// bytes verified and stripped. The returned slice aliases the device word
// buffer and is only valid until the next call.
func (d *Dev) readWords(c command) ([]uint16, error) {
	if err := d.execute(c); err != nil {
		return nil, err
	}
	r := d.frame[:c.words*3]
	if err := d.d.Tx(nil, r); err != nil {
		return nil, fmt.Errorf("sen5x: %s: %w", c.name, err)
	}
	// The device answers with 0xff bytes while data is not available yet.
	// Those frames fail the CRC check too, so look for them first.
	if allOnes(r) {
		return nil, &ReadUnavailableError{Cmd: c.name}
	}
	for ix := range c.words {
		msb, lsb := r[ix*3], r[ix*3+1]
		if common.CRC8Word(msb, lsb) != r[ix*3+2] {
			return nil, &CRCError{Cmd: c.name, Word: ix}
		}
		d.words[ix] = uint16(msb)<<8 | uint16(lsb)
	}
	return d.words[:c.words], nil
}

// writeWords sends the command word followed by data, each word with its
// CRC, as a single write.
func (d *Dev) writeWords(c command, data ...uint16) error {
	if len(data) != c.words {
		return fmt.Errorf("sen5x: %s: expected %d words, got %d", c.name, c.words, len(data))
	}
	if err := d.check(c); err != nil {
		return err
	}
	w := d.frame[:2+len(data)*3]
	w[0] = byte(c.cmdWord >> 8)
	w[1] = byte(c.cmdWord)
	for ix, val := range data {
		b := w[2+ix*3:]
		b[0] = byte(val >> 8)
		b[1] = byte(val)
		b[2] = common.CRC8Word(b[0], b[1])
	}
	if err := d.d.Tx(w, nil); err != nil {
		return fmt.Errorf("sen5x: %s: %w", c.name, err)
	}
	d.sleep(c.settle())
	return nil
}

func allOnes(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, v := range b {
		if v != 0xff {
			return false
		}
	}
	return true
}
