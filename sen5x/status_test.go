// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sen5x

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStatusFault(t *testing.T) {
	for _, tc := range []struct {
		s      Status
		want   Fault
		ok     bool
		faults []Fault
	}{
		{0, 0, false, nil},
		{StatusFanCleaning, 0, false, nil},
		{StatusLaserError, FaultLaser, true, []Fault{FaultLaser}},
		{StatusFanFailError | StatusRHTError, FaultRHT, true, []Fault{FaultRHT, FaultFanFail}},
		{StatusLaserError | StatusFanSpeedError | StatusGasSensorError, FaultFanSpeed, true, []Fault{FaultFanSpeed, FaultGasSensor, FaultLaser}},
	} {
		f, ok := tc.s.Fault()
		if f != tc.want || ok != tc.ok {
			t.Errorf("Status(0x%08x).Fault()=%s, %t expected %s, %t", uint32(tc.s), f, ok, tc.want, tc.ok)
		}
		if diff := cmp.Diff(tc.faults, tc.s.Faults()); diff != "" {
			t.Errorf("Status(0x%08x).Faults() mismatch (-want +got):\n%s", uint32(tc.s), diff)
		}
	}
}

func TestCheckForErrors(t *testing.T) {
	dev, _ := playbackDev(t, nil,
		opRead(cmdReadStatus, 0, 0),
		opRead(cmdReadStatus, 0x0008, 0),
		opRead(cmdReadStatus, 0, 0x0020),
		opRead(cmdReadStatus, 0x0020, 0x00a0))

	if err := dev.CheckForErrors(); err != nil {
		t.Errorf("clear status returned %v", err)
	}
	// Fan cleaning is not a fault.
	if err := dev.CheckForErrors(); err != nil {
		t.Errorf("fan cleaning status returned %v", err)
	}

	var se *StatusError
	if err := dev.CheckForErrors(); !errors.As(err, &se) || se.Fault != FaultLaser {
		t.Errorf("laser status returned %v", err)
	}
	// Only the highest priority fault is reported.
	if err := dev.CheckForErrors(); !errors.As(err, &se) || se.Fault != FaultFanSpeed {
		t.Errorf("fan speed status returned %v", err)
	} else if len(se.Status.Faults()) != 3 {
		t.Errorf("Faults()=%v expected 3 faults", se.Status.Faults())
	}
}

func TestClearStatus(t *testing.T) {
	bus := newFakeBus()
	bus.status = uint32(StatusFanSpeedError | StatusFanCleaning)
	dev := fakeDev(t, bus, nil)

	active, err := dev.FanCleaningActive()
	if err != nil {
		t.Fatal(err)
	}
	if !active {
		t.Error("FanCleaningActive()=false")
	}
	s, err := dev.Status()
	if err != nil {
		t.Fatal(err)
	}
	if s != StatusFanSpeedError|StatusFanCleaning {
		t.Errorf("Status()=0x%08x", uint32(s))
	}
	if err = dev.ClearStatus(); err != nil {
		t.Fatal(err)
	}
	if err = dev.CheckForErrors(); err != nil {
		t.Errorf("CheckForErrors() after ClearStatus() returned %v", err)
	}
}
