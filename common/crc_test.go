// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package common

import "testing"

func TestCRC8(t *testing.T) {
	var tests = []struct {
		bytes  []byte
		result byte
	}{
		{bytes: []byte{0xbe, 0xef}, result: 0x92},
		{bytes: []byte{0x01, 0xa4}, result: 0x4d},
		{bytes: []byte{0xab, 0xcd}, result: 0x6f},
		{bytes: []byte{0x00, 0x00}, result: 0x81},
		{bytes: []byte{0xff, 0xff}, result: 0xac},
		{bytes: []byte{0x00, 0x01}, result: 0xb0},
	}
	for _, test := range tests {
		res := CRC8(test.bytes)
		if res != test.result {
			t.Errorf("CRC8(%#v)!=0x%x received 0x%x", test.bytes, test.result, res)
		}
		res = CRC8Word(test.bytes[0], test.bytes[1])
		if res != test.result {
			t.Errorf("CRC8Word(0x%x, 0x%x)!=0x%x received 0x%x", test.bytes[0], test.bytes[1], test.result, res)
		}
	}
}

// The table must match the bit-wise polynomial division it replaces.
func TestCRC8Table(t *testing.T) {
	for i := range 256 {
		crc := byte(i)
		for range 8 {
			if (crc & 0x80) == 0 {
				crc <<= 1
			} else {
				crc = (crc << 1) ^ 0x31
			}
		}
		if crc8Table[i] != crc {
			t.Errorf("crc8Table[0x%02x]=0x%02x expected 0x%02x", i, crc8Table[i], crc)
		}
	}
}

func TestCRC8WordAllWords(t *testing.T) {
	for w := range 0x10000 {
		msb, lsb := byte(w>>8), byte(w)
		if a, b := CRC8Word(msb, lsb), CRC8([]byte{msb, lsb}); a != b {
			t.Fatalf("word 0x%04x: CRC8Word=0x%x CRC8=0x%x", w, a, b)
		}
	}
}
