// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package header

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/dtn7/cfdp-go/pkg/cfdp/codec"
)

// The first and the fourth header octet carry several bit fields:
//
//	    0   1   2   3   4   5   6   7
//	  +---+---+---+---+---+---+---+---+
//	  |  Version  |Typ|Dir|Mod|CRC|LF |   octet 0
//	  +---+---+---+---+---+---+---+---+
//	  |SC | Entity ID Len |SM | TSN Len   octet 3
//	  +---+---+---+---+---+---+---+---+
//
// Both length fields are stored as length - 1 to fit the range [1, 8] into
// three bits.
var (
	versionField          = codec.Field{Shift: 5, Width: 3}
	pduTypeField          = codec.Field{Shift: 4, Width: 1}
	directionField        = codec.Field{Shift: 3, Width: 1}
	transmissionModeField = codec.Field{Shift: 2, Width: 1}
	crcFlagField          = codec.Field{Shift: 1, Width: 1}
	largeFileFlagField    = codec.Field{Shift: 0, Width: 1}

	segmentationControlField = codec.Field{Shift: 7, Width: 1}
	entityIDLengthField      = codec.Field{Shift: 4, Width: 3}
	segmentMetadataField     = codec.Field{Shift: 3, Width: 1}
	transactionLengthField   = codec.Field{Shift: 0, Width: 3}
)

const (
	// fixedSize is the size of the header without its three variable-width fields.
	fixedSize = 4

	// minSize is the smallest possible header; each variable-width field has at least one octet.
	minSize = fixedSize + 3

	// crcLength is folded into the wire's data field length when a CRC is present.
	crcLength = 4
)

// Fields are the plain values of a PduHeader. They are checked by New.
type Fields struct {
	// Version of the CFDP protocol, within [0, 7].
	Version             uint8
	PduType             PduType
	Direction           Direction
	TransmissionMode    TransmissionMode
	CrcFlag             CrcFlag
	LargeFileFlag       LargeFileFlag
	PduDataFieldLength  uint16
	SegmentationControl SegmentationControl
	// LengthOfEntityIDs in octets, within [1, 8].
	LengthOfEntityIDs   uint8
	SegmentMetadataFlag SegmentMetadataFlag
	// LengthOfTransaction in octets, within [1, 8].
	LengthOfTransaction       uint8
	SourceEntityID            uint64
	TransactionSequenceNumber uint64
	DestinationEntityID       uint64
}

// CheckValid returns all violated header invariants, aggregated as a
// multierror. Each contained error is a *codec.ConstructionError.
func (f Fields) CheckValid() (errs error) {
	bitFields := []struct {
		name  string
		field codec.Field
		value uint8
	}{
		{"version", versionField, f.Version},
		{"PDU type", pduTypeField, uint8(f.PduType)},
		{"direction", directionField, uint8(f.Direction)},
		{"transmission mode", transmissionModeField, uint8(f.TransmissionMode)},
		{"CRC flag", crcFlagField, uint8(f.CrcFlag)},
		{"large file flag", largeFileFlagField, uint8(f.LargeFileFlag)},
		{"segmentation control", segmentationControlField, uint8(f.SegmentationControl)},
		{"segment metadata flag", segmentMetadataField, uint8(f.SegmentMetadataFlag)},
	}
	for _, bf := range bitFields {
		if !bf.field.Fits(bf.value) {
			errs = multierror.Append(errs, codec.NewConstructionError(codec.ErrInvalidValue,
				"%s %d does not fit into %d bits", bf.name, bf.value, bf.field.Width))
		}
	}

	if f.CrcFlag == CrcPresent && f.PduDataFieldLength > math.MaxUint16-crcLength {
		errs = multierror.Append(errs, codec.NewConstructionError(codec.ErrFieldTooWide,
			"PDU data field length %d leaves no room for the CRC", f.PduDataFieldLength))
	}

	entityWidthErr := codec.CheckWidth("length of entity IDs", int(f.LengthOfEntityIDs))
	if entityWidthErr != nil {
		errs = multierror.Append(errs, entityWidthErr)
	} else {
		if err := codec.CheckFits("source entity ID", f.SourceEntityID, int(f.LengthOfEntityIDs)); err != nil {
			errs = multierror.Append(errs, err)
		}
		if err := codec.CheckFits("destination entity ID", f.DestinationEntityID, int(f.LengthOfEntityIDs)); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	if err := codec.CheckWidth("length of transaction", int(f.LengthOfTransaction)); err != nil {
		errs = multierror.Append(errs, err)
	} else if err := codec.CheckFits("transaction sequence number", f.TransactionSequenceNumber, int(f.LengthOfTransaction)); err != nil {
		errs = multierror.Append(errs, err)
	}

	if f.SourceEntityID == f.DestinationEntityID {
		errs = multierror.Append(errs, codec.NewConstructionError(codec.ErrSameEntityIDs,
			"both entity IDs are %d", f.SourceEntityID))
	}

	return
}

// PduHeader is the immutable header in front of every CFDP PDU.
type PduHeader struct {
	f Fields
}

// New creates a PduHeader after checking all invariants of the given Fields.
func New(f Fields) (PduHeader, error) {
	if err := f.CheckValid(); err != nil {
		return PduHeader{}, err
	}
	return PduHeader{f: f}, nil
}

// Parse a PduHeader from the beginning of data. Bytes after the header are
// ignored; use RawSize to locate the data field.
func Parse(data []byte) (PduHeader, error) {
	if len(data) < minSize {
		return PduHeader{}, codec.NewDecodeError(codec.ErrTooShort,
			"header requires at least %d octets, got %d", minSize, len(data))
	}

	var f Fields

	first := data[0]
	f.Version = versionField.Get(first)
	f.PduType = PduType(pduTypeField.Get(first))
	f.Direction = Direction(directionField.Get(first))
	f.TransmissionMode = TransmissionMode(transmissionModeField.Get(first))
	f.CrcFlag = CrcFlag(crcFlagField.Get(first))
	f.LargeFileFlag = LargeFileFlag(largeFileFlagField.Get(first))

	rawLength, err := codec.BytesToInt[uint16](data, 1, 2)
	if err != nil {
		return PduHeader{}, err
	}
	if f.CrcFlag == CrcPresent {
		if rawLength < crcLength {
			return PduHeader{}, codec.NewDecodeError(codec.ErrInvalidField,
				"PDU data field length %d cannot contain a CRC", rawLength)
		}
		rawLength -= crcLength
	}
	f.PduDataFieldLength = rawLength

	fourth := data[3]
	f.SegmentationControl = SegmentationControl(segmentationControlField.Get(fourth))
	f.LengthOfEntityIDs = entityIDLengthField.Get(fourth) + 1
	f.SegmentMetadataFlag = SegmentMetadataFlag(segmentMetadataField.Get(fourth))
	f.LengthOfTransaction = transactionLengthField.Get(fourth) + 1

	eidLen, tsnLen := int(f.LengthOfEntityIDs), int(f.LengthOfTransaction)

	if f.SourceEntityID, err = codec.BytesToInt[uint64](data, fixedSize, eidLen); err != nil {
		return PduHeader{}, err
	}
	if f.TransactionSequenceNumber, err = codec.BytesToInt[uint64](data, fixedSize+eidLen, tsnLen); err != nil {
		return PduHeader{}, err
	}
	if f.DestinationEntityID, err = codec.BytesToInt[uint64](data, fixedSize+eidLen+tsnLen, eidLen); err != nil {
		return PduHeader{}, err
	}

	if err := f.CheckValid(); err != nil {
		return PduHeader{}, codec.AsDecodeError(err)
	}
	return PduHeader{f: f}, nil
}

// MarshalBinary encodes this PduHeader into its wire representation.
func (h PduHeader) MarshalBinary() ([]byte, error) {
	f := h.f

	rawLength := uint32(f.PduDataFieldLength)
	if f.CrcFlag == CrcPresent {
		rawLength += crcLength
	}
	if rawLength > math.MaxUint16 {
		return nil, codec.NewEncodeError("PDU data field length %d exceeds 16 bits", rawLength)
	}

	data := make([]byte, 0, h.RawSize())

	data = append(data,
		versionField.Put(f.Version)|
			pduTypeField.Put(uint8(f.PduType))|
			directionField.Put(uint8(f.Direction))|
			transmissionModeField.Put(uint8(f.TransmissionMode))|
			crcFlagField.Put(uint8(f.CrcFlag))|
			largeFileFlagField.Put(uint8(f.LargeFileFlag)))

	var err error
	if data, err = codec.PutInt(data, uint64(rawLength), 2); err != nil {
		return nil, err
	}

	data = append(data,
		segmentationControlField.Put(uint8(f.SegmentationControl))|
			entityIDLengthField.Put(f.LengthOfEntityIDs-1)|
			segmentMetadataField.Put(uint8(f.SegmentMetadataFlag))|
			transactionLengthField.Put(f.LengthOfTransaction-1))

	variableFields := []struct {
		value uint64
		width uint8
	}{
		{f.SourceEntityID, f.LengthOfEntityIDs},
		{f.TransactionSequenceNumber, f.LengthOfTransaction},
		{f.DestinationEntityID, f.LengthOfEntityIDs},
	}
	for _, vf := range variableFields {
		if data, err = codec.PutInt(data, vf.value, int(vf.width)); err != nil {
			return nil, err
		}
	}

	return data, nil
}

// RawSize returns the encoded size of this PduHeader in octets.
func (h PduHeader) RawSize() int {
	return fixedSize + 2*int(h.f.LengthOfEntityIDs) + int(h.f.LengthOfTransaction)
}

// Fields returns a copy of this PduHeader's values.
func (h PduHeader) Fields() Fields {
	return h.f
}

func (h PduHeader) Version() uint8 { return h.f.Version }
func (h PduHeader) PduType() PduType { return h.f.PduType }
func (h PduHeader) Direction() Direction { return h.f.Direction }
func (h PduHeader) TransmissionMode() TransmissionMode { return h.f.TransmissionMode }
func (h PduHeader) CrcFlag() CrcFlag { return h.f.CrcFlag }
func (h PduHeader) LargeFileFlag() LargeFileFlag { return h.f.LargeFileFlag }
func (h PduHeader) SegmentationControl() SegmentationControl { return h.f.SegmentationControl }
func (h PduHeader) SegmentMetadataFlag() SegmentMetadataFlag { return h.f.SegmentMetadataFlag }
func (h PduHeader) LengthOfEntityIDs() uint8 { return h.f.LengthOfEntityIDs }
func (h PduHeader) LengthOfTransaction() uint8 { return h.f.LengthOfTransaction }
func (h PduHeader) SourceEntityID() uint64 { return h.f.SourceEntityID }
func (h PduHeader) TransactionSequenceNumber() uint64 { return h.f.TransactionSequenceNumber }
func (h PduHeader) DestinationEntityID() uint64 { return h.f.DestinationEntityID }

// PduDataFieldLength is the length of the data field following this header,
// excluding a present CRC.
func (h PduHeader) PduDataFieldLength() uint16 {
	return h.f.PduDataFieldLength
}

// HasCRC returns true if a CRC trailer follows the data field.
func (h PduHeader) HasCRC() bool {
	return h.f.CrcFlag == CrcPresent
}

// WithPduDataFieldLength returns a copy of this PduHeader with another data
// field length, checked as by New.
func (h PduHeader) WithPduDataFieldLength(length uint16) (PduHeader, error) {
	f := h.f
	f.PduDataFieldLength = length
	return New(f)
}

// MarshalJSON writes a JSON object representing this PduHeader.
func (h PduHeader) MarshalJSON() ([]byte, error) {
	f := h.f
	return json.Marshal(&struct {
		Version                   uint8  `json:"version"`
		PduType                   string `json:"pduType"`
		Direction                 string `json:"direction"`
		TransmissionMode          string `json:"transmissionMode"`
		CrcFlag                   string `json:"crcFlag"`
		LargeFileFlag             string `json:"largeFileFlag"`
		PduDataFieldLength        uint16 `json:"pduDataFieldLength"`
		SegmentationControl       string `json:"segmentationControl"`
		LengthOfEntityIDs         uint8  `json:"lengthOfEntityIDs"`
		SegmentMetadataFlag       string `json:"segmentMetadataFlag"`
		LengthOfTransaction       uint8  `json:"lengthOfTransaction"`
		SourceEntityID            uint64 `json:"sourceEntityID"`
		TransactionSequenceNumber uint64 `json:"transactionSequenceNumber"`
		DestinationEntityID       uint64 `json:"destinationEntityID"`
	}{
		Version:                   f.Version,
		PduType:                   f.PduType.String(),
		Direction:                 f.Direction.String(),
		TransmissionMode:          f.TransmissionMode.String(),
		CrcFlag:                   f.CrcFlag.String(),
		LargeFileFlag:             f.LargeFileFlag.String(),
		PduDataFieldLength:        f.PduDataFieldLength,
		SegmentationControl:       f.SegmentationControl.String(),
		LengthOfEntityIDs:         f.LengthOfEntityIDs,
		SegmentMetadataFlag:       f.SegmentMetadataFlag.String(),
		LengthOfTransaction:       f.LengthOfTransaction,
		SourceEntityID:            f.SourceEntityID,
		TransactionSequenceNumber: f.TransactionSequenceNumber,
		DestinationEntityID:       f.DestinationEntityID,
	})
}

func (h PduHeader) String() string {
	var b strings.Builder

	_, _ = fmt.Fprintf(&b, "version: %d, ", h.f.Version)
	_, _ = fmt.Fprintf(&b, "type: %v, ", h.f.PduType)
	_, _ = fmt.Fprintf(&b, "direction: %v, ", h.f.Direction)
	_, _ = fmt.Fprintf(&b, "mode: %v, ", h.f.TransmissionMode)
	_, _ = fmt.Fprintf(&b, "crc: %v, ", h.f.CrcFlag)
	_, _ = fmt.Fprintf(&b, "%v, ", h.f.LargeFileFlag)
	_, _ = fmt.Fprintf(&b, "data field length: %d, ", h.f.PduDataFieldLength)
	_, _ = fmt.Fprintf(&b, "segmentation: %v, ", h.f.SegmentationControl)
	_, _ = fmt.Fprintf(&b, "segment metadata: %v, ", h.f.SegmentMetadataFlag)
	_, _ = fmt.Fprintf(&b, "source: %d, ", h.f.SourceEntityID)
	_, _ = fmt.Fprintf(&b, "transaction: %d, ", h.f.TransactionSequenceNumber)
	_, _ = fmt.Fprintf(&b, "destination: %d", h.f.DestinationEntityID)

	return b.String()
}
