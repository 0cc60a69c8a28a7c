// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sen5x

// Mode is the operating mode of the device.
type Mode int

const (
	// Idle is the mode after power up, reset and stop measurement.
	Idle Mode = iota
	// Measuring is the mode after start measurement.
	Measuring
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Measuring:
		return "measuring"
	default:
		return "unknown"
	}
}

// DataReady reports whether a new measurement can be read. The flag is only
// ever set in measuring mode, so it doubles as the mode indicator.
func (d *Dev) DataReady() (bool, error) {
	words, err := d.readWords(cmdReadDataReady)
	if err != nil {
		return false, err
	}
	return words[0]&0xff != 0, nil
}

// Mode reads the current mode from the device. It is never cached: an
// external reset or power cycle returns the device to Idle behind the
// driver's back.
func (d *Dev) Mode() (Mode, error) {
	ready, err := d.DataReady()
	if err != nil {
		return Idle, err
	}
	if ready {
		return Measuring, nil
	}
	return Idle, nil
}

// StartMeasurement starts a measurement of all channels and then checks the
// data ready flag up to polls times, 100ms apart. It returns true once data
// is ready, or false if polls ran out, which is not an error. With polls = 0
// it returns false immediately after starting.
func (d *Dev) StartMeasurement(polls int) (bool, error) {
	return d.startMeasurement(cmdStartMeasurement, polls)
}

// StartMeasurementRHTGasOnly is StartMeasurement without the particulate
// matter channels. The fan and laser stay off, which saves power; the PM
// channels read as unknown.
func (d *Dev) StartMeasurementRHTGasOnly(polls int) (bool, error) {
	return d.startMeasurement(cmdStartMeasurementRHTGas, polls)
}

func (d *Dev) startMeasurement(c command, polls int) (bool, error) {
	if polls < 0 {
		return false, &ParameterError{Param: "polls", Value: polls}
	}
	if err := d.execute(c); err != nil {
		return false, err
	}
	for range polls {
		ready, err := d.DataReady()
		if err != nil {
			return false, err
		}
		if ready {
			return true, nil
		}
		d.sleep(pollInterval)
	}
	return false, nil
}

// StopMeasurement returns the device to idle mode.
func (d *Dev) StopMeasurement() error {
	return d.execute(cmdStopMeasurement)
}

// StartFanCleaning runs the fan at maximum speed for 10 seconds. The device
// must be measuring.
func (d *Dev) StartFanCleaning() error {
	return d.execute(cmdStartFanCleaning)
}
