// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/GermanBionicSystems/airquality/sen5x"
)

var (
	readRaw      bool
	readImperial bool
	readCount    int
	readInterval time.Duration
	readGasOnly  bool
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Start a measurement and print readings",
	Long: `Start a measurement, print --count readings --interval apart and stop.

Readings are rounded to the accuracy of each channel unless --raw is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if readRaw && readImperial {
			return errors.New("--raw and --imperial are mutually exclusive")
		}
		return withDev(func(d *sen5x.Dev) error {
			if err := d.Reset(); err != nil {
				return err
			}
			err := d.RestoreVOCAlgorithmState()
			if err != nil && !errors.Is(err, sen5x.ErrNoBackup) && !errors.Is(err, sen5x.ErrNoStore) {
				return err
			}
			start := d.StartMeasurement
			if readGasOnly {
				start = d.StartMeasurementRHTGasOnly
			}
			if _, err := start(0); err != nil {
				return err
			}
			defer func() {
				if err := d.StopMeasurement(); err != nil {
					log.Error(err)
				}
			}()
			read := readFunc(d)
			for i := 0; readCount == 0 || i < readCount; i++ {
				r, err := waitReading(cmd.Context(), d, readInterval, read)
				if err != nil {
					return ignoreCanceled(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), r.String())
			}
			return d.CheckForErrors()
		})
	},
}

func init() {
	readCmd.Flags().BoolVar(&readRaw, "raw", false, "Print values at full device resolution")
	readCmd.Flags().BoolVar(&readImperial, "imperial", false, "Print the temperature in °F")
	readCmd.Flags().IntVarP(&readCount, "count", "n", 1, "Number of readings, 0 for no limit")
	readCmd.Flags().DurationVarP(&readInterval, "interval", "i", time.Second, "Time between readings")
	readCmd.Flags().BoolVar(&readGasOnly, "rht-gas-only", false, "Leave the fan and laser off; PM channels read as unknown")
	rootCmd.AddCommand(readCmd)
}

func readFunc(d *sen5x.Dev) func() (sen5x.Reading, error) {
	switch {
	case readRaw:
		return d.MeasuredValuesRaw
	case readImperial:
		return d.MeasuredValuesImperial
	default:
		return d.MeasuredValues
	}
}
