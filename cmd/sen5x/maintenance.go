// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/GermanBionicSystems/airquality/sen5x"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Run a fan cleaning cycle",
	Long:  `Start a measurement, run the fan at full speed for 10 seconds and wait for the cycle to end.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(d *sen5x.Dev) error {
			if err := d.StartFanCleaning(); err != nil {
				return err
			}
			log.Info("fan cleaning started")
			for range 30 {
				if err := sleep(cmd.Context(), time.Second); err != nil {
					return err
				}
				active, err := d.FanCleaningActive()
				if err != nil {
					return err
				}
				if !active {
					log.Info("fan cleaning done")
					return nil
				}
			}
			return errors.New("fan cleaning did not finish")
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the device",
	Long: `Reset the device. It returns to idle mode, and the volatile settings and the
VOC algorithm state revert to their defaults.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDev(func(d *sen5x.Dev) error {
			return d.Reset()
		})
	},
}

var clearStatusCmd = &cobra.Command{
	Use:   "clear-status",
	Short: "Clear the device status register",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDev(func(d *sen5x.Dev) error {
			return d.ClearStatus()
		})
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd, resetCmd, clearStatusCmd)
}
