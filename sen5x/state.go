// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sen5x

import (
	"errors"
	"fmt"
	"io/fs"
)

// Store is a key addressed blob store used to keep the VOC algorithm state
// across device resets. Keys use "/" separated namespaces.
type Store interface {
	// Get returns the blob stored under key. A missing key must produce an
	// error matching fs.ErrNotExist.
	Get(key string) ([]byte, error)
	Put(key string, b []byte) error
	// Delete removes key. Deleting a namespace removes it once it is empty.
	Delete(key string) error
}

const (
	stateNamespace = "data"
	// StateKey is the store key holding the VOC algorithm state backup.
	StateKey = stateNamespace + "/voc_algorithm_state.bin"
)

// BackupVOCAlgorithmState saves the current VOC algorithm state to the
// store so it can be restored after a reset.
func (d *Dev) BackupVOCAlgorithmState() error {
	if d.opts.Store == nil {
		return ErrNoStore
	}
	state, err := d.VOCAlgorithmState()
	if err != nil {
		return err
	}
	if err := d.opts.Store.Put(StateKey, state); err != nil {
		return fmt.Errorf("sen5x: backup voc algorithm state: %w", err)
	}
	return nil
}

// RestoreVOCAlgorithmState writes the saved VOC algorithm state back to the
// device. It returns ErrNoBackup when nothing was saved, in which case the
// device keeps its default state.
func (d *Dev) RestoreVOCAlgorithmState() error {
	if d.opts.Store == nil {
		return ErrNoStore
	}
	state, err := d.opts.Store.Get(StateKey)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNoBackup
	}
	if err != nil {
		return fmt.Errorf("sen5x: restore voc algorithm state: %w", err)
	}
	return d.SetVOCAlgorithmState(state)
}

// PurgeVOCAlgorithmState deletes the saved state and its namespace. Errors
// are ignored.
func (d *Dev) PurgeVOCAlgorithmState() {
	if d.opts.Store == nil {
		return
	}
	_ = d.opts.Store.Delete(StateKey)
	_ = d.opts.Store.Delete(stateNamespace)
}
