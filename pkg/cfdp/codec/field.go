// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package codec

// Field describes a span of bits within a single octet. Shift is the position
// of the span's least significant bit, counted from the octet's LSB.
//
// The CFDP header's first octet, for example, is described as:
//
//	    0   1   2   3   4   5   6   7
//	  +---+---+---+---+---+---+---+---+
//	  |  Version  |Typ|Dir|Mod|CRC|LF |
//	  +---+---+---+---+---+---+---+---+
//
//	Version = Field{Shift: 5, Width: 3}
//	LF      = Field{Shift: 0, Width: 1}
type Field struct {
	Shift uint8
	Width uint8
}

// Mask of this Field's bits, already shifted into place.
func (f Field) Mask() byte {
	return byte((1<<f.Width)-1) << f.Shift
}

// Get extracts this Field's value from an octet.
func (f Field) Get(b byte) uint8 {
	return (b & f.Mask()) >> f.Shift
}

// Put shifts a value into this Field's position. Excess bits are discarded.
func (f Field) Put(v uint8) byte {
	return (v << f.Shift) & f.Mask()
}

// Fits checks if a value can be stored within this Field without truncation.
func (f Field) Fits(v uint8) bool {
	return v <= f.Mask()>>f.Shift
}
