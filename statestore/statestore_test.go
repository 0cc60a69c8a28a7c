// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package statestore

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type store interface {
	Get(key string) ([]byte, error)
	Put(key string, b []byte) error
	Delete(key string) error
}

func testStore(t *testing.T, s store) {
	const key = "data/state.bin"
	if _, err := s.Get(key); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Get() on empty store returned %v, expected fs.ErrNotExist", err)
	}
	want := []byte{0, 1, 2, 3, 0xfe, 0xff, 0x34, 0}
	if err := s.Put(key, want); err != nil {
		t.Fatal(err)
	}
	// The store must not alias the caller's slice.
	want[0] = 0x55
	got, err := s.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0, 1, 2, 3, 0xfe, 0xff, 0x34, 0}, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}

	// Overwrite.
	if err := s.Put(key, []byte{9}); err != nil {
		t.Fatal(err)
	}
	if got, _ = s.Get(key); !cmp.Equal([]byte{9}, got) {
		t.Errorf("Get() after overwrite returned %#v", got)
	}

	if err := s.Delete("data"); err == nil {
		t.Error("Delete() of a non-empty namespace succeeded")
	}
	if err := s.Delete(key); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("data"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Delete() of empty namespace returned %v", err)
	}
	if _, err := s.Get(key); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Get() after Delete() returned %v", err)
	}
	if err := s.Delete(key); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("second Delete() returned %v, expected fs.ErrNotExist", err)
	}
}

func TestDir(t *testing.T) {
	root := t.TempDir()
	testStore(t, &Dir{Root: root})
	if _, err := os.Stat(filepath.Join(root, "data")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("namespace directory still present: %v", err)
	}
}

func TestMem(t *testing.T) {
	m := &Mem{}
	testStore(t, m)
	if m.Len() != 0 {
		t.Errorf("Len()=%d after deleting everything", m.Len())
	}
}

func TestInvalidKeys(t *testing.T) {
	for _, s := range []store{&Dir{Root: t.TempDir()}, &Mem{}} {
		for _, key := range []string{"", ".", "../escape", "/abs", "a//b"} {
			if err := s.Put(key, []byte{1}); err == nil {
				t.Errorf("%T.Put(%q) succeeded", s, key)
			}
			if _, err := s.Get(key); err == nil {
				t.Errorf("%T.Get(%q) succeeded", s, key)
			}
		}
	}
}
