// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cfdp composes the CFDP PDU header with its data field, either a file
// directive or file data, and moves encoded PDUs over a Transport.
//
// A PDU is laid out as follows:
//
//	+------------+-----------------------------+----------------+
//	| PDU header | Data field (length by hdr)  | CRC (optional) |
//	|  7 to 28   |      0 to 65535 octets      |   4 octets     |
//	+------------+-----------------------------+----------------+
//
// The CRC is treated as an opaque value.
package cfdp

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"

	"github.com/dtn7/cfdp-go/pkg/cfdp/codec"
	"github.com/dtn7/cfdp-go/pkg/cfdp/directive"
	"github.com/dtn7/cfdp-go/pkg/cfdp/header"
)

// crcSize is the size of the optional CRC trailer.
const crcSize = 4

// Payload is the data field of a Pdu. It is implemented by DirectivePayload
// and FileData only.
type Payload interface {
	fmt.Stringer

	// RawSize returns the encoded size of the data field in octets.
	RawSize() int

	// MarshalBinary encodes the data field.
	MarshalBinary() ([]byte, error)

	// pduType is the header's PduType for this kind of payload.
	pduType() header.PduType
}

// DirectivePayload makes a file directive PDU a Payload.
type DirectivePayload struct {
	directive.Pdu
}

func (dp DirectivePayload) pduType() header.PduType {
	return header.FileDirective
}

func (dp DirectivePayload) MarshalJSON() ([]byte, error) {
	return json.Marshal(dp.Pdu)
}

var (
	_ Payload = DirectivePayload{}
	_ Payload = FileData{}
)

// payloadLargeFileFlag returns the LargeFileFlag of payloads with file size
// related fields.
func payloadLargeFileFlag(p Payload) (header.LargeFileFlag, bool) {
	type largeFileFlagged interface {
		LargeFileFlag() header.LargeFileFlag
	}

	switch p := p.(type) {
	case FileData:
		return p.largeFileFlag, true
	case DirectivePayload:
		if lff, ok := p.Pdu.(largeFileFlagged); ok {
			return lff.LargeFileFlag(), true
		}
	}
	return 0, false
}

// Pdu is a complete CFDP PDU: a header, its data field and an optional CRC.
type Pdu struct {
	header  header.PduHeader
	payload Payload
	crc     uint32
}

// NewPdu composes a Pdu. The header must describe the payload's type, length
// and LargeFileFlag. A non-zero crc requires the header's CrcFlag to be set.
func NewPdu(h header.PduHeader, payload Payload, crc uint32) (Pdu, error) {
	if err := checkPdu(h, payload, crc); err != nil {
		return Pdu{}, err
	}
	return Pdu{header: h, payload: payload, crc: crc}, nil
}

// ComposePdu creates the header from the given fields after overwriting their
// PduType and PduDataFieldLength by the payload's, and composes the Pdu.
func ComposePdu(f header.Fields, payload Payload, crc uint32) (Pdu, error) {
	if isNilPayload(payload) {
		return Pdu{}, codec.NewConstructionError(codec.ErrFieldMissing, "PDU requires a payload")
	}

	size := payload.RawSize()
	if f.CrcFlag == header.CrcPresent {
		size += crcSize
	}
	if size > math.MaxUint16 {
		return Pdu{}, codec.NewConstructionError(codec.ErrFieldTooWide,
			"data field of %d octets exceeds the header's length field", size)
	}

	f.PduType = payload.pduType()
	f.PduDataFieldLength = uint16(payload.RawSize())

	h, err := header.New(f)
	if err != nil {
		return Pdu{}, err
	}
	return NewPdu(h, payload, crc)
}

func isNilPayload(payload Payload) bool {
	if payload == nil {
		return true
	}
	dp, ok := payload.(DirectivePayload)
	return ok && dp.Pdu == nil
}

// checkPdu aggregates every violated invariant between a header and its payload.
func checkPdu(h header.PduHeader, payload Payload, crc uint32) (errs error) {
	if isNilPayload(payload) {
		return codec.NewConstructionError(codec.ErrFieldMissing, "PDU requires a payload")
	}

	if h.PduType() != payload.pduType() {
		errs = multierror.Append(errs, codec.NewConstructionError(codec.ErrInvalidValue,
			"header's PDU type is %v, but the payload is %v", h.PduType(), payload.pduType()))
	}

	if int(h.PduDataFieldLength()) != payload.RawSize() {
		errs = multierror.Append(errs, codec.NewConstructionError(codec.ErrInvalidValue,
			"header's data field length is %d, but the payload has %d octets", h.PduDataFieldLength(), payload.RawSize()))
	}

	if lf, ok := payloadLargeFileFlag(payload); ok && lf != h.LargeFileFlag() {
		errs = multierror.Append(errs, codec.NewConstructionError(codec.ErrInvalidValue,
			"header indicates a %v, but the payload a %v", h.LargeFileFlag(), lf))
	}

	if dp, ok := payload.(DirectivePayload); ok {
		if eof, ok := dp.Pdu.(directive.EndOfFilePdu); ok {
			if fl, ok := eof.FaultLocation(); ok && fl.Length() != h.LengthOfEntityIDs() {
				errs = multierror.Append(errs, codec.NewConstructionError(codec.ErrInvalidValue,
					"fault location has %d octets, but the header's entity IDs %d", fl.Length(), h.LengthOfEntityIDs()))
			}
		}
	}

	if _, isFileData := payload.(FileData); isFileData && h.SegmentMetadataFlag() == header.MetadataPresent {
		errs = multierror.Append(errs, codec.NewConstructionError(codec.ErrFieldForbidden,
			"segment metadata is not supported"))
	}

	if crc != 0 && !h.HasCRC() {
		errs = multierror.Append(errs, codec.NewConstructionError(codec.ErrFieldForbidden,
			"CRC %08x given, but the header's CRC flag is not set", crc))
	}

	return
}

// ParsePdu parses a complete Pdu. The data must end exactly after the data
// field, or after the CRC if present.
func ParsePdu(data []byte) (Pdu, error) {
	h, err := header.Parse(data)
	if err != nil {
		return Pdu{}, fmt.Errorf("PDU header: %w", err)
	}

	start := h.RawSize()
	end := start + int(h.PduDataFieldLength())
	total := end
	if h.HasCRC() {
		total += crcSize
	}

	if len(data) < total {
		return Pdu{}, codec.NewDecodeError(codec.ErrTooShort,
			"header announces %d octets, got %d", total, len(data))
	} else if len(data) > total {
		return Pdu{}, codec.NewDecodeError(codec.ErrWrongSize,
			"header announces %d octets, got %d", total, len(data))
	}

	field := data[start:end]

	var payload Payload
	switch h.PduType() {
	case header.FileDirective:
		d, err := directive.Parse(field, h.LargeFileFlag(), h.LengthOfEntityIDs())
		if err != nil {
			return Pdu{}, fmt.Errorf("file directive: %w", err)
		}
		payload = DirectivePayload{d}

	case header.FileData:
		if h.SegmentMetadataFlag() == header.MetadataPresent {
			return Pdu{}, codec.NewDecodeError(codec.ErrInvalidField, "segment metadata is not supported")
		}

		fd, err := ParseFileData(field, h.LargeFileFlag())
		if err != nil {
			return Pdu{}, fmt.Errorf("file data: %w", err)
		}
		payload = fd

	default:
		return Pdu{}, codec.NewDecodeError(codec.ErrInvalidField, "unknown PDU type %d", uint8(h.PduType()))
	}

	var crc uint32
	if h.HasCRC() {
		if crc, err = codec.BytesToInt[uint32](data, end, crcSize); err != nil {
			return Pdu{}, err
		}
	}

	return Pdu{header: h, payload: payload, crc: crc}, nil
}

func (p Pdu) Header() header.PduHeader {
	return p.header
}

func (p Pdu) Payload() Payload {
	return p.payload
}

// Directive returns the file directive PDU, if this is one.
func (p Pdu) Directive() (directive.Pdu, bool) {
	dp, ok := p.payload.(DirectivePayload)
	if !ok {
		return nil, false
	}
	return dp.Pdu, true
}

// FileData returns the file data, if this is a file data PDU.
func (p Pdu) FileData() (FileData, bool) {
	fd, ok := p.payload.(FileData)
	return fd, ok
}

// CRC returns the opaque CRC trailer and if it is present.
func (p Pdu) CRC() (uint32, bool) {
	return p.crc, p.header.HasCRC()
}

// RawSize returns the encoded size of this Pdu in octets.
func (p Pdu) RawSize() int {
	size := p.header.RawSize()
	if p.payload != nil {
		size += p.payload.RawSize()
	}
	if p.header.HasCRC() {
		size += crcSize
	}
	return size
}

// MarshalBinary encodes this Pdu: header, data field and the CRC if present.
func (p Pdu) MarshalBinary() ([]byte, error) {
	if p.payload == nil {
		return nil, codec.NewEncodeError("PDU has no payload")
	}

	hdr, err := p.header.MarshalBinary()
	if err != nil {
		return nil, err
	}
	field, err := p.payload.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if len(field) != int(p.header.PduDataFieldLength()) {
		return nil, codec.NewEncodeError("data field has %d octets, header announces %d",
			len(field), p.header.PduDataFieldLength())
	}

	data := make([]byte, 0, p.RawSize())
	data = append(data, hdr...)
	data = append(data, field...)

	if p.header.HasCRC() {
		return codec.PutInt(data, uint64(p.crc), crcSize)
	}
	return data, nil
}

func (p Pdu) MarshalJSON() ([]byte, error) {
	var crc *uint32
	if p.header.HasCRC() {
		crc = &p.crc
	}

	return json.Marshal(&struct {
		Header  header.PduHeader `json:"header"`
		Payload Payload          `json:"payload"`
		CRC     *uint32          `json:"crc,omitempty"`
	}{p.header, p.payload, crc})
}

func (p Pdu) String() string {
	if p.header.HasCRC() {
		return fmt.Sprintf("PDU(%v, crc=%08x)", p.payload, p.crc)
	}
	return fmt.Sprintf("PDU(%v)", p.payload)
}
