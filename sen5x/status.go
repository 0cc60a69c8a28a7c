// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sen5x

// Status is the device status register.
type Status uint32

const (
	// Fan speed is more than 10% off target for a minute or more.
	StatusFanSpeedError Status = 1 << 21
	// Set while a fan cleaning cycle is running.
	StatusFanCleaning Status = 1 << 19
	// Gas sensor (VOC/NOx) error.
	StatusGasSensorError Status = 1 << 7
	// Humidity and temperature sensor error.
	StatusRHTError Status = 1 << 6
	// Laser failure.
	StatusLaserError Status = 1 << 5
	// Fan is switched on but not turning.
	StatusFanFailError Status = 1 << 4
)

// Fault is a device reported hardware fault.
type Fault int

const (
	FaultFanSpeed Fault = iota
	FaultGasSensor
	FaultRHT
	FaultLaser
	FaultFanFail
)

// faultOrder lists faults by the priority CheckForErrors reports them in.
var faultOrder = []struct {
	fault Fault
	mask  Status
}{
	{FaultFanSpeed, StatusFanSpeedError},
	{FaultGasSensor, StatusGasSensorError},
	{FaultRHT, StatusRHTError},
	{FaultLaser, StatusLaserError},
	{FaultFanFail, StatusFanFailError},
}

func (f Fault) String() string {
	switch f {
	case FaultFanSpeed:
		return "fan speed error"
	case FaultGasSensor:
		return "gas sensor error"
	case FaultRHT:
		return "rht error"
	case FaultLaser:
		return "laser error"
	case FaultFanFail:
		return "fan fail error"
	default:
		return "unknown fault"
	}
}

// Fault returns the highest priority fault set in s.
func (s Status) Fault() (Fault, bool) {
	for _, f := range faultOrder {
		if s&f.mask != 0 {
			return f.fault, true
		}
	}
	return 0, false
}

// Faults returns every fault set in s, highest priority first.
func (s Status) Faults() []Fault {
	var faults []Fault
	for _, f := range faultOrder {
		if s&f.mask != 0 {
			faults = append(faults, f.fault)
		}
	}
	return faults
}

// Status reads the device status register.
func (d *Dev) Status() (Status, error) {
	words, err := d.readWords(cmdReadStatus)
	if err != nil {
		return 0, err
	}
	return Status(uint32(words[0])<<16 | uint32(words[1])), nil
}

// CheckForErrors reads the status register and returns a *StatusError for
// the highest priority fault set. Other faults set at the same time are not
// reported; use Status().Faults() to see them all.
func (d *Dev) CheckForErrors() error {
	s, err := d.Status()
	if err != nil {
		return err
	}
	if f, ok := s.Fault(); ok {
		return &StatusError{Fault: f, Status: s}
	}
	return nil
}

// FanCleaningActive reports whether a fan cleaning cycle is running.
func (d *Dev) FanCleaningActive() (bool, error) {
	s, err := d.Status()
	if err != nil {
		return false, err
	}
	return s&StatusFanCleaning != 0, nil
}

// ClearStatus clears the status register.
func (d *Dev) ClearStatus() error {
	return d.execute(cmdClearStatus)
}
