// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/airquality/sen5x"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print device identity, status and settings",
	Long: `Print the product name, serial number, firmware version, status and the
configurable parameters. The algorithm tuning parameters can only be read
while the device is idle and are skipped otherwise.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDev(func(d *sen5x.Dev) error {
			return printInfo(cmd.OutOrStdout(), d)
		})
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func printInfo(w io.Writer, d *sen5x.Dev) error {
	name, err := d.ProductName()
	if err != nil {
		return err
	}
	sn, err := d.SerialNumber()
	if err != nil {
		return err
	}
	fw, err := d.FirmwareVersion()
	if err != nil {
		return err
	}
	mode, err := d.Mode()
	if err != nil {
		return err
	}
	status, err := d.Status()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Product:       %s\n", name)
	fmt.Fprintf(w, "Serial number: %s\n", sn)
	fmt.Fprintf(w, "Firmware:      %d\n", fw)
	fmt.Fprintf(w, "Mode:          %s\n", mode)
	fmt.Fprintf(w, "Status:        0x%08x %v\n", uint32(status), status.Faults())

	tc, err := d.TempCompensation()
	if err != nil {
		return err
	}
	// Offset is a difference; Temperature.String() would print it relative to 0°C.
	offset := float64(tc.Offset) / float64(physic.Celsius)
	fmt.Fprintf(w, "Temperature compensation: offset %gK slope %g time constant %s\n", offset, tc.Slope, tc.TimeConstant)
	ws, err := d.WarmStart()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Warm start:    %d\n", ws)
	rht, err := d.RHTMode()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "RHT mode:      %s\n", rht)
	ac, err := d.AutoCleaningInterval()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Auto cleaning: %s\n", ac)

	if mode != sen5x.Idle {
		return nil
	}
	voc, err := d.VOCTuning()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "VOC tuning:    %+v\n", voc)
	nox, err := d.NOxTuning()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "NOx tuning:    %+v\n", nox)
	return nil
}
