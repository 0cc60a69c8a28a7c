// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sen5x

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
)

const (
	// DefaultAddress is the only I²C address these devices support.
	DefaultAddress uint16 = 0x69

	// DefaultStartPolls is the number of data ready checks Start performs
	// after starting a measurement. Data is typically ready after ~800ms.
	DefaultStartPolls = 100

	pollInterval = 100 * time.Millisecond
)

// Opts holds the configuration options for the device.
type Opts struct {
	// Addr is the I²C address. 0 selects DefaultAddress.
	Addr uint16
	// StartPolls is the number of data ready checks performed by Start. 0
	// starts the measurement without waiting.
	StartPolls int
	// Store receives VOC algorithm state backups. It may be nil, in which case
	// Start skips the restore and the backup operations return ErrNoStore.
	Store Store
}

// DefaultOpts holds the default configuration options for the device.
var DefaultOpts = Opts{
	Addr:       DefaultAddress,
	StartPolls: DefaultStartPolls,
}

// Scanner is implemented by buses that can list the addresses answering on
// them. CheckBus uses it when available and falls back to a read probe.
type Scanner interface {
	Scan() ([]uint16, error)
}

// Dev represents a SEN5x device.
//
// Dev is not safe for concurrent use. Every transaction is followed by a
// settle delay during which the device must not be addressed, so callers
// sharing a Dev between goroutines must serialize access themselves.
type Dev struct {
	// The i2c bus device.
	d    *i2c.Dev
	opts Opts
	// Replaced in tests.
	sleep func(time.Duration)

	// Scratch buffers reused by every transaction.
	frame [frameSize]byte
	words [maxWords]uint16
}

// NewI2C returns a SEN5x device on the supplied bus. No bus traffic happens
// until a method is called; use Start to run the full startup sequence. The
// Opts can be nil.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	o := *opts
	if o.Addr == 0 {
		o.Addr = DefaultAddress
	}
	if o.StartPolls < 0 {
		return nil, &ParameterError{Param: "start polls", Value: o.StartPolls}
	}
	return &Dev{d: &i2c.Dev{Bus: b, Addr: o.Addr}, opts: o, sleep: time.Sleep}, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("sen5x: %s", d.d.String())
}

// Halt stops measuring and returns the device to idle mode. Implements
// conn.Resource.
func (d *Dev) Halt() error {
	return d.StopMeasurement()
}

// CheckBus verifies the device answers on the bus.
func (d *Dev) CheckBus() error {
	if s, ok := d.d.Bus.(Scanner); ok {
		addrs, err := s.Scan()
		if err != nil {
			return &NotFoundError{Addr: d.d.Addr, Err: err}
		}
		if !slices.Contains(addrs, d.d.Addr) {
			return &NotFoundError{Addr: d.d.Addr}
		}
		return nil
	}
	if err := d.d.Tx(nil, d.frame[:1]); err != nil {
		return &NotFoundError{Addr: d.d.Addr, Err: err}
	}
	return nil
}

// Start runs the startup sequence and leaves the device measuring: it checks
// the bus, resets the device, restores any saved VOC algorithm state, starts
// a measurement and fails if the device reports a fault.
func (d *Dev) Start() error {
	if err := d.CheckBus(); err != nil {
		return err
	}
	// Reset whatever mode a previous run left behind.
	if err := d.Reset(); err != nil {
		return err
	}
	if d.opts.Store != nil {
		if err := d.RestoreVOCAlgorithmState(); err != nil && !errors.Is(err, ErrNoBackup) {
			return err
		}
	}
	if _, err := d.StartMeasurement(d.opts.StartPolls); err != nil {
		return err
	}
	return d.CheckForErrors()
}

// Stop ends a session started with Start.
func (d *Dev) Stop() error {
	return d.StopMeasurement()
}

// Run starts a session, calls fn, and stops the session again however fn
// returns. If Start fails, fn is not called and the device is left as is.
func (d *Dev) Run(fn func(d *Dev) error) (err error) {
	if err := d.Start(); err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, d.Stop())
	}()
	return fn(d)
}

// Reset performs a device reset. Any measurement in progress is stopped and
// the VOC algorithm state is lost.
func (d *Dev) Reset() error {
	return d.execute(cmdReset)
}

// ProductName returns the product name, for example "SEN55".
func (d *Dev) ProductName() (string, error) {
	return d.readString(cmdGetProductName)
}

// SerialNumber returns the serial number set at the factory.
func (d *Dev) SerialNumber() (string, error) {
	return d.readString(cmdGetSerialNumber)
}

// FirmwareVersion returns the firmware major version.
func (d *Dev) FirmwareVersion() (uint8, error) {
	words, err := d.readWords(cmdGetFirmwareVersion)
	if err != nil {
		return 0, err
	}
	return uint8(words[0] >> 8), nil
}

// readString reads a NUL terminated ASCII string, two characters per word.
func (d *Dev) readString(c command) (string, error) {
	words, err := d.readWords(c)
	if err != nil {
		return "", err
	}
	b := make([]byte, 0, len(words)*2)
	for _, w := range words {
		for _, ch := range []byte{byte(w >> 8), byte(w)} {
			if ch == 0 {
				return string(b), nil
			}
			b = append(b, ch)
		}
	}
	return "", fmt.Errorf("sen5x: %s: string not terminated", c.name)
}

var _ conn.Resource = &Dev{}
