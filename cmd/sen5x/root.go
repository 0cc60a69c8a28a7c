// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/airquality/sen5x"
	"github.com/GermanBionicSystems/airquality/statestore"
)

var (
	busName    string
	addr       uint16
	stateDir   string
	logLevel   string
	startPolls int
)

var rootCmd = &cobra.Command{
	Use:   "sen5x",
	Short: "Sensirion SEN5x air quality sensor tool",
	Long: `sen5x talks to a Sensirion SEN50, SEN54 or SEN55 on an I²C bus.

Commands that measure start the device, restoring the VOC algorithm state
saved in --state-dir if there is one, and stop it again when done.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&busName, "bus", "", "I²C bus name or number, empty for the first one")
	rootCmd.PersistentFlags().Uint16Var(&addr, "addr", sen5x.DefaultAddress, "I²C address")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "Directory for the VOC algorithm state backup, empty to disable")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().IntVar(&startPolls, "start-polls", sen5x.DefaultStartPolls, "Data ready checks after starting a measurement")
}

func setupLogging(*cobra.Command, []string) error {
	lvl, err := log.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
	return nil
}

// openDev initializes the host and opens the device on the configured bus.
// The returned bus must be closed by the caller.
func openDev() (*sen5x.Dev, i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, err
	}
	b, err := i2creg.Open(busName)
	if err != nil {
		return nil, nil, err
	}
	opts := sen5x.DefaultOpts
	opts.Addr = addr
	opts.StartPolls = startPolls
	if stateDir != "" {
		opts.Store = &statestore.Dir{Root: stateDir}
	}
	d, err := sen5x.NewI2C(b, &opts)
	if err != nil {
		_ = b.Close()
		return nil, nil, err
	}
	log.Debugf("opened %s on %s", d, b)
	return d, b, nil
}

// withDev runs fn on an open device without starting it.
func withDev(fn func(d *sen5x.Dev) error) (err error) {
	d, b, err := openDev()
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, b.Close())
	}()
	if err := d.CheckBus(); err != nil {
		return err
	}
	return fn(d)
}

// withSession runs fn between Start and Stop.
func withSession(fn func(d *sen5x.Dev) error) error {
	return withDev(func(d *sen5x.Dev) error {
		return d.Run(func(d *sen5x.Dev) error {
			log.Debug("measurement started")
			return fn(d)
		})
	})
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// waitReading waits interval, then until a new measurement is available,
// and returns it.
func waitReading(ctx context.Context, d *sen5x.Dev, interval time.Duration, read func() (sen5x.Reading, error)) (sen5x.Reading, error) {
	if err := sleep(ctx, interval); err != nil {
		return sen5x.Reading{}, err
	}
	for range 20 {
		ready, err := d.DataReady()
		if err != nil {
			return sen5x.Reading{}, err
		}
		if ready {
			return read()
		}
		if err := sleep(ctx, 100*time.Millisecond); err != nil {
			return sen5x.Reading{}, err
		}
	}
	return sen5x.Reading{}, fmt.Errorf("no measurement available after %s", interval+2*time.Second)
}

// ignoreCanceled turns the end of a loop by signal into a clean exit.
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
