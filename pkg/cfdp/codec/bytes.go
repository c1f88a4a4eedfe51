// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package codec

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// MaxFieldWidth is the widest variable-width integer field in octets.
const MaxFieldWidth = 8

// IntToBytes returns the size least significant octets of value in big-endian
// order.
func IntToBytes(value uint64, size int) ([]byte, error) {
	if size < 0 || size > MaxFieldWidth {
		return nil, NewEncodeError("size of %d octets is not within [0, %d]", size, MaxFieldWidth)
	}

	data := make([]byte, size)
	for i := size - 1; i >= 0; i-- {
		data[i] = byte(value)
		value >>= 8
	}
	return data, nil
}

// PutInt appends the size octet big-endian representation of value to data.
func PutInt(data []byte, value uint64, size int) ([]byte, error) {
	b, err := IntToBytes(value, size)
	if err != nil {
		return data, err
	}
	return append(data, b...), nil
}

// BytesNeeded returns the minimal number of octets required to hold value.
// Zero requires one octet.
func BytesNeeded(value uint64) int {
	if value == 0 {
		return 1
	}
	return (bits.Len64(value) + 7) / 8
}

// bounds checks if size octets starting at offset are within a buffer of
// length n.
func bounds(n, offset, size int) error {
	if offset < 0 || size < 0 || offset > n || size > n-offset {
		return NewDecodeError(ErrTooShort,
			"buffer of %d octets does not contain %d octets at offset %d", n, size, offset)
	}
	return nil
}

// BytesToInt decodes size big-endian octets starting at offset into an
// unsigned integer of type T.
func BytesToInt[T constraints.Unsigned](data []byte, offset, size int) (T, error) {
	if err := bounds(len(data), offset, size); err != nil {
		return 0, err
	}

	if width := bits.Len64(uint64(^T(0))) / 8; size > width {
		return 0, NewDecodeError(ErrValueTooWide, "%d octets do not fit into %d octets", size, width)
	}

	var result uint64
	for _, b := range data[offset : offset+size] {
		result = result<<8 | uint64(b)
	}
	return T(result), nil
}

// ReadLengthValue reads a one octet length prefix at offset and returns a copy
// of the following length octets.
func ReadLengthValue(data []byte, offset int) ([]byte, error) {
	if err := bounds(len(data), offset, 1); err != nil {
		return nil, err
	}

	length := int(data[offset])
	if err := bounds(len(data), offset+1, length); err != nil {
		return nil, err
	}

	value := make([]byte, length)
	copy(value, data[offset+1:offset+1+length])
	return value, nil
}

// BytesToString converts size octets starting at offset into a string.
func BytesToString(data []byte, offset, size int) (string, error) {
	if err := bounds(len(data), offset, size); err != nil {
		return "", err
	}
	return string(data[offset : offset+size]), nil
}

// CheckWidth checks if a variable-width field's width is within [1, 8] octets.
func CheckWidth(name string, width int) error {
	if width == 0 {
		return NewConstructionError(ErrZeroWidth, "%s has a width of zero octets", name)
	} else if width < 0 || width > MaxFieldWidth {
		return NewConstructionError(ErrInvalidValue,
			"%s width of %d octets is not within [1, %d]", name, width, MaxFieldWidth)
	}
	return nil
}

// CheckFits checks if value can be stored in a field of width octets.
func CheckFits(name string, value uint64, width int) error {
	if needed := BytesNeeded(value); needed > width {
		return NewConstructionError(ErrFieldTooWide,
			"%s %d needs %d octets, but only %d are available", name, value, needed, width)
	}
	return nil
}
