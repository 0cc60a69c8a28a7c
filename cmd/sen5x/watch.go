// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/GermanBionicSystems/airquality/airbar"
	"github.com/GermanBionicSystems/airquality/sen5x"
)

var (
	watchInterval time.Duration
	watchWidth    int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show live readings as colored gauges",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bar := airbar.New(&airbar.Opts{Width: watchWidth})
		err := withSession(func(d *sen5x.Dev) error {
			for {
				r, err := waitReading(cmd.Context(), d, watchInterval, d.MeasuredValues)
				if err != nil {
					return ignoreCanceled(err)
				}
				if err := bar.Show(&r); err != nil {
					return err
				}
			}
		})
		return errors.Join(err, bar.Halt())
	},
}

func init() {
	watchCmd.Flags().DurationVarP(&watchInterval, "interval", "i", time.Second, "Time between updates")
	watchCmd.Flags().IntVarP(&watchWidth, "width", "w", 8, "Blocks per gauge")
	rootCmd.AddCommand(watchCmd)
}
