// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/GermanBionicSystems/airquality/sen5x"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Manage the saved VOC algorithm state",
	Long: `The VOC algorithm state is what the device learned about the usual air in
its environment. A reset loses it; saving it to --state-dir lets the commands
that measure restore it on startup.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(cmd, args); err != nil {
			return err
		}
		if stateDir == "" {
			return errors.New("--state-dir is required")
		}
		return nil
	},
}

var stateBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Save the device VOC algorithm state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDev(func(d *sen5x.Dev) error {
			return d.BackupVOCAlgorithmState()
		})
	},
}

var stateRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Write the saved VOC algorithm state to the device",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDev(func(d *sen5x.Dev) error {
			err := d.RestoreVOCAlgorithmState()
			if errors.Is(err, sen5x.ErrNoBackup) {
				log.Warn("no saved state, the device keeps its current state")
				return nil
			}
			return err
		})
	},
}

var statePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete the saved VOC algorithm state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDev(func(d *sen5x.Dev) error {
			d.PurgeVOCAlgorithmState()
			return nil
		})
	},
}

func init() {
	stateCmd.AddCommand(stateBackupCmd, stateRestoreCmd, statePurgeCmd)
	rootCmd.AddCommand(stateCmd)
}
