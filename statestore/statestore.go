// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package statestore provides byte stores for sen5x.Store: Dir keeps each
// key in a file below a directory, Mem keeps them in memory.
//
// Keys are slash separated paths as accepted by fs.ValidPath. A missing key
// produces an error matching fs.ErrNotExist.
package statestore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var errInvalidKey = errors.New("statestore: invalid key")

func checkKey(op, key string) error {
	if key == "." || !fs.ValidPath(key) {
		return &fs.PathError{Op: op, Path: key, Err: errInvalidKey}
	}
	return nil
}

// Dir stores each key as a file below Root. Namespaces are directories.
type Dir struct {
	Root string
}

func (d *Dir) path(key string) string {
	return filepath.Join(d.Root, filepath.FromSlash(key))
}

// Get implements sen5x.Store.
func (d *Dir) Get(key string) ([]byte, error) {
	if err := checkKey("get", key); err != nil {
		return nil, err
	}
	return os.ReadFile(d.path(key))
}

// Put implements sen5x.Store. The file is replaced atomically so a power
// loss never leaves a truncated state behind.
func (d *Dir) Put(key string, b []byte) error {
	if err := checkKey("put", key); err != nil {
		return err
	}
	p := d.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "."+filepath.Base(p)+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	_, err = f.Write(b)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, p)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("statestore: put %s: %w", key, err)
	}
	return nil
}

// Delete implements sen5x.Store. A namespace is only removed when empty.
func (d *Dir) Delete(key string) error {
	if err := checkKey("delete", key); err != nil {
		return err
	}
	return os.Remove(d.path(key))
}

func (d *Dir) String() string {
	return "statestore.Dir(" + d.Root + ")"
}

// Mem stores keys in memory. The zero value is ready to use.
type Mem struct {
	mu   sync.Mutex
	blob map[string][]byte
}

// Get implements sen5x.Store.
func (m *Mem) Get(key string) ([]byte, error) {
	if err := checkKey("get", key); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blob[key]
	if !ok {
		return nil, &fs.PathError{Op: "get", Path: key, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), b...), nil
}

// Put implements sen5x.Store.
func (m *Mem) Put(key string, b []byte) error {
	if err := checkKey("put", key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.blob {
		if strings.HasPrefix(key, k+"/") {
			return &fs.PathError{Op: "put", Path: key, Err: fs.ErrExist}
		}
	}
	if m.blob == nil {
		m.blob = map[string][]byte{}
	}
	m.blob[key] = append([]byte(nil), b...)
	return nil
}

// Delete implements sen5x.Store. Namespaces exist as long as a key below
// them does, so deleting one only fails when it is not empty.
func (m *Mem) Delete(key string) error {
	if err := checkKey("delete", key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blob[key]; ok {
		delete(m.blob, key)
		return nil
	}
	for k := range m.blob {
		if strings.HasPrefix(k, key+"/") {
			return &fs.PathError{Op: "delete", Path: key, Err: errors.New("namespace not empty")}
		}
	}
	return &fs.PathError{Op: "delete", Path: key, Err: fs.ErrNotExist}
}

// Len returns the number of stored keys.
func (m *Mem) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blob)
}
