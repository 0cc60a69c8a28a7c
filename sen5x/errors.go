// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sen5x

import (
	"errors"
	"fmt"
)

var (
	// ErrNoBackup is returned by RestoreVOCAlgorithmState when the store holds
	// no saved state. Start treats it as "use the device defaults".
	ErrNoBackup = errors.New("sen5x: no saved voc algorithm state")
	// ErrNoStore is returned by the backup operations when Opts.Store is nil.
	ErrNoStore = errors.New("sen5x: no state store configured")
)

// NotFoundError is returned when the device does not answer on the bus.
type NotFoundError struct {
	Addr uint16
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sen5x: device not found at 0x%02x: %v", e.Addr, e.Err)
	}
	return fmt.Sprintf("sen5x: device not found at 0x%02x", e.Addr)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// CRCError is returned when the checksum of a received word does not match.
// Word is the zero based index of the first bad word.
type CRCError struct {
	Cmd  string
	Word int
}

func (e *CRCError) Error() string {
	return fmt.Sprintf("sen5x: %s: crc mismatch on word %d", e.Cmd, e.Word)
}

// ReadUnavailableError is returned when the device answers a read with a
// frame of all one bits, which it does while the requested data does not
// exist yet.
type ReadUnavailableError struct {
	Cmd string
}

func (e *ReadUnavailableError) Error() string {
	return fmt.Sprintf("sen5x: %s: response not available", e.Cmd)
}

// StatusError reports a fault flagged in the device status register.
type StatusError struct {
	Fault  Fault
	Status Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sen5x: %s (status 0x%08x)", e.Fault, uint32(e.Status))
}

// InvalidModeError is returned when an operation is attempted while the
// device is in the wrong mode. The operation itself is not sent.
type InvalidModeError struct {
	Op   string
	Want Mode
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("sen5x: %s requires %s mode", e.Op, e.Want)
}

// ParameterError is returned when a caller supplied value is outside the
// range accepted by the device. It is detected before any bus transaction.
type ParameterError struct {
	Param string
	Value any
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("sen5x: %s out of range: %v", e.Param, e.Value)
}
