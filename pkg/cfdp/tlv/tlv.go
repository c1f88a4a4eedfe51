// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package tlv implements the CFDP Type-Length-Value structures which are
// carried as sub-fields of file directive PDUs.
//
// Each TLV starts with a one octet type tag, followed by a one octet length
// of the value and the value itself:
//
//	+------+--------+----------------------+
//	| Type | Length | Value (Length octets)|
//	+------+--------+----------------------+
package tlv

import (
	"fmt"
	"math"

	"github.com/dtn7/cfdp-go/pkg/cfdp/codec"
)

// Type is the TLV type tag, the first octet of each TLV.
type Type uint8

const (
	FilestoreRequestType     Type = 0b000
	FilestoreResponseType    Type = 0b001
	MessageToUserType        Type = 0b010
	FaultHandlerOverrideType Type = 0b100
	FlowLabelType            Type = 0b101
	EntityIdType             Type = 0b110
)

func (t Type) String() string {
	switch t {
	case FilestoreRequestType:
		return "filestore request"
	case FilestoreResponseType:
		return "filestore response"
	case MessageToUserType:
		return "message to user"
	case FaultHandlerOverrideType:
		return "fault handler override"
	case FlowLabelType:
		return "flow label"
	case EntityIdType:
		return "entity ID"
	default:
		return "INVALID"
	}
}

// IsValid checks if this Type represents a defined TLV type.
func (t Type) IsValid() bool {
	return t.String() != "INVALID"
}

// headerSize is the size of the type and length octets.
const headerSize = 2

// maxValueLength is the largest value representable by the length octet.
const maxValueLength = math.MaxUint8

// TLV is implemented by all supported Type-Length-Value structures.
type TLV interface {
	fmt.Stringer

	// Type returns the TLV's type tag.
	Type() Type

	// RawSize returns the encoded size in octets, including type and length.
	RawSize() int

	// MarshalBinary encodes the TLV into its wire representation.
	MarshalBinary() ([]byte, error)
}

// checkHeader validates the type and length octets of a TLV at the beginning
// of data and returns the value's length.
func checkHeader(data []byte, expected Type) (int, error) {
	if len(data) < headerSize {
		return 0, codec.NewDecodeError(codec.ErrTooShort,
			"%v TLV requires at least %d octets, got %d", expected, headerSize, len(data))
	}

	if t := Type(data[0]); t != expected {
		return 0, codec.NewDecodeError(codec.ErrWrongType,
			"TLV type is %v (%d) instead of %v (%d)", t, uint8(t), expected, uint8(expected))
	}

	length := int(data[1])
	if len(data) < headerSize+length {
		return 0, codec.NewDecodeError(codec.ErrTooShort,
			"%v TLV declares %d value octets, but only %d are available", expected, length, len(data)-headerSize)
	}

	return length, nil
}

// ParseTLV parses the TLV at the beginning of data based on its type tag.
func ParseTLV(data []byte) (TLV, error) {
	if len(data) < 1 {
		return nil, codec.NewDecodeError(codec.ErrTooShort, "TLV is empty")
	}

	var (
		t   TLV
		err error
	)

	switch typ := Type(data[0]); typ {
	case EntityIdType:
		t, err = ParseEntityId(data)
	case FilestoreRequestType:
		t, err = ParseFilestoreRequest(data)
	case MessageToUserType:
		t, err = ParseMessageToUser(data)
	default:
		err = codec.NewDecodeError(codec.ErrWrongType, "no TLV codec for type %v (%d)", typ, uint8(typ))
	}

	if err != nil {
		return nil, err
	}
	return t, nil
}

// ParseAll parses consecutive TLVs until data is exhausted.
func ParseAll(data []byte) (tlvs []TLV, err error) {
	for offset := 0; offset < len(data); {
		var t TLV
		if t, err = ParseTLV(data[offset:]); err != nil {
			return nil, fmt.Errorf("TLV at offset %d: %w", offset, err)
		}

		tlvs = append(tlvs, t)
		offset += t.RawSize()
	}
	return
}
