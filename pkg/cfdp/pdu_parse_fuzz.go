// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

//go:build gofuzz
// +build gofuzz

package cfdp

import "reflect"

func Fuzz(data []byte) int {
	// Headers are between 7 and 28 octets, data fields at most 65535
	if len(data) < 7 || len(data) > 1024 {
		return -1
	}

	pdu, err := ParsePdu(data)
	if err != nil {
		return 0
	}

	enc, err := pdu.MarshalBinary()
	if err != nil {
		panic(err)
	}

	// Spare bits are not preserved, compare the parsed values instead
	if pdu2, err := ParsePdu(enc); err != nil {
		panic(err)
	} else if !reflect.DeepEqual(pdu, pdu2) {
		panic("re-encoded PDU differs")
	}

	return 1
}
