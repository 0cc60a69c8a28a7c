// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/GermanBionicSystems/airquality/common"
	"github.com/GermanBionicSystems/airquality/sen5x"
)

func wordFrame(words ...uint16) []byte {
	b := make([]byte, 0, len(words)*3)
	for _, w := range words {
		msb, lsb := byte(w>>8), byte(w)
		b = append(b, msb, lsb, common.CRC8Word(msb, lsb))
	}
	return b
}

func TestMetricsUpdate(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newMetrics(reg)
	const sn = "A1B2C3"
	r := sen5x.Reading{
		PM2_5:       sen5x.Value{V: 8.5, Valid: true},
		Temperature: sen5x.Value{V: 23, Valid: true},
	}
	m.update(sn, &r, sen5x.StatusLaserError)

	if got := testutil.ToFloat64(m.pm25.WithLabelValues(sn)); got != 8.5 {
		t.Errorf("air_pm2_5=%g expected 8.5", got)
	}
	if got := testutil.ToFloat64(m.temperature.WithLabelValues(sn)); got != 23 {
		t.Errorf("air_temperature=%g expected 23", got)
	}
	if got := testutil.ToFloat64(m.fault.WithLabelValues(sn, sen5x.FaultLaser.String())); got != 1 {
		t.Errorf("laser fault=%g expected 1", got)
	}
	if got := testutil.ToFloat64(m.fault.WithLabelValues(sn, sen5x.FaultRHT.String())); got != 0 {
		t.Errorf("rht fault=%g expected 0", got)
	}
	if n := testutil.CollectAndCount(m.voc); n != 0 {
		t.Errorf("%d unknown voc series exported", n)
	}

	// A channel becoming unknown drops its series.
	r.PM2_5 = sen5x.Value{}
	m.update(sn, &r, 0)
	if n := testutil.CollectAndCount(m.pm25); n != 0 {
		t.Errorf("%d pm2.5 series after unknown reading", n)
	}
	if got := testutil.ToFloat64(m.fault.WithLabelValues(sn, sen5x.FaultLaser.String())); got != 0 {
		t.Errorf("laser fault=%g after clear expected 0", got)
	}
}

func TestWaitReading(t *testing.T) {
	pb := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: sen5x.DefaultAddress, W: []byte{0x02, 0x02}},
			{Addr: sen5x.DefaultAddress, R: wordFrame(0)},
			{Addr: sen5x.DefaultAddress, W: []byte{0x02, 0x02}},
			{Addr: sen5x.DefaultAddress, R: wordFrame(1)},
			{Addr: sen5x.DefaultAddress, W: []byte{0x03, 0xc4}},
			{Addr: sen5x.DefaultAddress, R: wordFrame(52, 85, 103, 110, 4567, 4600, 1000, 10)},
		},
		DontPanic: true,
	}
	d, err := sen5x.NewI2C(pb, nil)
	if err != nil {
		t.Fatal(err)
	}
	r, err := waitReading(context.Background(), d, 0, d.MeasuredValuesRaw)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(r.String(), "Temperature: 23 °C") {
		t.Errorf("unexpected reading %s", r.String())
	}
	if err := pb.Close(); err != nil {
		t.Error(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := waitReading(ctx, d, time.Hour, d.MeasuredValuesRaw); ignoreCanceled(err) != nil || err == nil {
		t.Errorf("waitReading() on canceled context returned %v", err)
	}
	if !errors.Is(sleep(ctx, time.Hour), context.Canceled) {
		t.Error("sleep() ignored cancellation")
	}
}

func TestCommands(t *testing.T) {
	for _, name := range []string{"info", "read", "watch", "serve", "clean", "reset", "clear-status", "state"} {
		if c, _, err := rootCmd.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("command %s not registered: %v", name, err)
		}
	}
	for _, name := range []string{"backup", "restore", "purge"} {
		if c, _, err := rootCmd.Find([]string{"state", name}); err != nil || c.Name() != name {
			t.Errorf("command state %s not registered: %v", name, err)
		}
	}
}
