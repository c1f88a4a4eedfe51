// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package codec

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestIntToBytes(t *testing.T) {
	tests := []struct {
		value uint64
		size  int
		data  []byte
		valid bool
	}{
		{0, 0, []byte{}, true},
		{0, 1, []byte{0x00}, true},
		{0xFF, 1, []byte{0xFF}, true},
		{1430, 5, []byte{0x00, 0x00, 0x00, 0x05, 0x96}, true},
		{0x0102, 1, []byte{0x02}, true},
		{math.MaxUint64, 8, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, true},
		{1, 9, nil, false},
		{1, -1, nil, false},
	}

	for _, test := range tests {
		data, err := IntToBytes(test.value, test.size)
		if (err == nil) != test.valid {
			t.Fatalf("Error state was not expected for %d/%d; valid := %t, got := %v",
				test.value, test.size, test.valid, err)
		} else if !test.valid {
			if !errors.Is(err, ErrEncode) {
				t.Fatalf("Error %v is not an encode error", err)
			}
			continue
		}

		if !bytes.Equal(data, test.data) {
			t.Fatalf("Data does not match, expected %x and got %x", test.data, data)
		}
	}
}

func TestBytesNeeded(t *testing.T) {
	tests := []struct {
		value  uint64
		needed int
	}{
		{0, 1},
		{1, 1},
		{0xFF, 1},
		{0x100, 2},
		{0xFFFF, 2},
		{0x10000, 3},
		{math.MaxUint32, 4},
		{math.MaxUint32 + 1, 5},
		{math.MaxUint64, 8},
	}

	for _, test := range tests {
		if needed := BytesNeeded(test.value); needed != test.needed {
			t.Fatalf("BytesNeeded(%d) = %d, expected %d", test.value, needed, test.needed)
		}
	}
}

func TestBytesToInt(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09}

	if v, err := BytesToInt[uint64](data, 1, 8); err != nil {
		t.Fatal(err)
	} else if v != 0x0203040506070809 {
		t.Fatalf("Expected %x, got %x", uint64(0x0203040506070809), v)
	}

	if v, err := BytesToInt[uint16](data, 0, 2); err != nil {
		t.Fatal(err)
	} else if v != 0x0102 {
		t.Fatalf("Expected %x, got %x", 0x0102, v)
	}

	if v, err := BytesToInt[uint8](data, 8, 1); err != nil {
		t.Fatal(err)
	} else if v != 0x09 {
		t.Fatalf("Expected %x, got %x", 0x09, v)
	}

	if v, err := BytesToInt[uint32](data, 4, 0); err != nil {
		t.Fatal(err)
	} else if v != 0 {
		t.Fatalf("Expected 0 for an empty chunk, got %d", v)
	}

	if _, err := BytesToInt[uint16](data, 0, 3); !errors.Is(err, ErrValueTooWide) {
		t.Fatalf("Expected ErrValueTooWide, got %v", err)
	} else if !errors.Is(err, ErrDecode) {
		t.Fatalf("Error %v is not a decode error", err)
	}

	if _, err := BytesToInt[uint8](data, 0, 2); !errors.Is(err, ErrValueTooWide) {
		t.Fatalf("Expected ErrValueTooWide, got %v", err)
	}
}

func TestBytesToIntBounds(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}

	tests := []struct {
		offset int
		size   int
	}{
		{0, 4},
		{1, 3},
		{3, 1},
		{4, 0},
		{-1, 1},
		{0, -1},
		{math.MaxInt, 1},
		{1, math.MaxInt},
	}

	for _, test := range tests {
		if _, err := BytesToInt[uint64](data, test.offset, test.size); !errors.Is(err, ErrTooShort) {
			t.Fatalf("Offset %d, size %d: expected ErrTooShort, got %v", test.offset, test.size, err)
		}
		if _, err := BytesToString(data, test.offset, test.size); !errors.Is(err, ErrTooShort) {
			t.Fatalf("Offset %d, size %d: expected ErrTooShort, got %v", test.offset, test.size, err)
		}
	}

	if _, err := BytesToInt[uint64](nil, 0, 1); !errors.Is(err, ErrTooShort) {
		t.Fatalf("Expected ErrTooShort for nil buffer, got %v", err)
	}
	if v, err := BytesToInt[uint64](data, 3, 0); err != nil || v != 0 {
		t.Fatalf("Empty chunk at the buffer's end failed: %d, %v", v, err)
	}
}

func TestWidthInvariant(t *testing.T) {
	values := []uint64{0, 1, 0x7F, 0xFF, 0x100, 1430, 0xDEADBEEF, 0x0123456789, math.MaxUint64}

	for _, value := range values {
		for size := BytesNeeded(value); size <= MaxFieldWidth; size++ {
			data, err := IntToBytes(value, size)
			if err != nil {
				t.Fatal(err)
			} else if len(data) != size {
				t.Fatalf("IntToBytes(%d, %d) returned %d octets", value, size, len(data))
			}

			if v, err := BytesToInt[uint64](data, 0, size); err != nil {
				t.Fatal(err)
			} else if v != value {
				t.Fatalf("Round trip of %d with size %d resulted in %d", value, size, v)
			}
		}
	}
}

func TestReadLengthValue(t *testing.T) {
	tests := []struct {
		data   []byte
		offset int
		value  []byte
		valid  bool
	}{
		{[]byte{0x03, 'a', 'b', 'c'}, 0, []byte("abc"), true},
		{[]byte{0xFF, 0x02, 'x', 'y', 'z'}, 1, []byte("xy"), true},
		{[]byte{0x00}, 0, []byte{}, true},
		{[]byte{}, 0, nil, false},
		{[]byte{0x03, 'a', 'b'}, 0, nil, false},
		{[]byte{0x01, 'a'}, 2, nil, false},
		{[]byte{0x01, 'a'}, -1, nil, false},
	}

	for _, test := range tests {
		value, err := ReadLengthValue(test.data, test.offset)
		if (err == nil) != test.valid {
			t.Fatalf("Error state was not expected for %x; valid := %t, got := %v", test.data, test.valid, err)
		} else if !test.valid {
			if !errors.Is(err, ErrTooShort) {
				t.Fatalf("Expected ErrTooShort, got %v", err)
			}
			continue
		}

		if !bytes.Equal(value, test.value) {
			t.Fatalf("Value does not match, expected %x and got %x", test.value, value)
		}
	}
}

func TestReadLengthValueCopies(t *testing.T) {
	data := []byte{0x02, 'o', 'k'}

	value, err := ReadLengthValue(data, 0)
	if err != nil {
		t.Fatal(err)
	}

	data[1] = 'n'
	if string(value) != "ok" {
		t.Fatalf("Value %q references the caller's buffer", value)
	}
}

func TestBytesToString(t *testing.T) {
	data := []byte("hello world")

	if s, err := BytesToString(data, 6, 5); err != nil {
		t.Fatal(err)
	} else if s != "world" {
		t.Fatalf("Expected %q, got %q", "world", s)
	}

	if s, err := BytesToString(data, 11, 0); err != nil || s != "" {
		t.Fatalf("Empty string at the buffer's end failed: %q, %v", s, err)
	}
}

func TestCheckWidthAndFits(t *testing.T) {
	if err := CheckWidth("entity ID", 0); !errors.Is(err, ErrZeroWidth) || !errors.Is(err, ErrConstruction) {
		t.Fatalf("Expected ErrZeroWidth construction error, got %v", err)
	}
	if err := CheckWidth("entity ID", 9); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("Expected ErrInvalidValue, got %v", err)
	}
	if err := CheckWidth("entity ID", 8); err != nil {
		t.Fatal(err)
	}

	if err := CheckFits("entity ID", 0x100, 1); !errors.Is(err, ErrFieldTooWide) {
		t.Fatalf("Expected ErrFieldTooWide, got %v", err)
	}
	if err := CheckFits("entity ID", 0xFF, 1); err != nil {
		t.Fatal(err)
	}
}
