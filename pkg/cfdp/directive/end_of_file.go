// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package directive

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dtn7/cfdp-go/pkg/cfdp/codec"
	"github.com/dtn7/cfdp-go/pkg/cfdp/header"
	"github.com/dtn7/cfdp-go/pkg/cfdp/tlv"
)

var eofConditionField = codec.Field{Shift: 4, Width: 4}

const (
	eofChecksumOffset = 2
	eofChecksumSize   = 4
	eofFileSizeOffset = eofChecksumOffset + eofChecksumSize
)

// EndOfFilePdu announces the end of a file's transmission:
//
//	+------+-----------+----------+-----------+----------------+
//	| Code | Condition | Checksum | File size | Fault location |
//	|  1   |     1     |    4     |   4 / 8   |  EntityId TLV  |
//	+------+-----------+----------+-----------+----------------+
//
// The fault location is present iff the condition code is not NoError.
type EndOfFilePdu struct {
	conditionCode Condition
	checksum      uint32
	fileSize      uint64
	largeFileFlag header.LargeFileFlag
	faultLocation *tlv.EntityId
}

// NewEndOfFile creates an EndOfFilePdu. A faultLocation must be given for
// every condition code except NoError, for which it must be nil.
func NewEndOfFile(conditionCode Condition, checksum uint32, fileSize uint64,
	largeFileFlag header.LargeFileFlag, faultLocation *tlv.EntityId) (EndOfFilePdu, error) {
	if !conditionCode.IsValid() {
		return EndOfFilePdu{}, codec.NewConstructionError(codec.ErrInvalidValue,
			"unknown condition code %d", uint8(conditionCode))
	}
	if err := checkFileSizeField("file size", fileSize, largeFileFlag); err != nil {
		return EndOfFilePdu{}, err
	}

	if conditionCode == NoError && faultLocation != nil {
		return EndOfFilePdu{}, codec.NewConstructionError(codec.ErrFieldForbidden,
			"fault location must be omitted with condition code %v", conditionCode)
	} else if conditionCode != NoError && faultLocation == nil {
		return EndOfFilePdu{}, codec.NewConstructionError(codec.ErrFieldMissing,
			"fault location is mandatory with condition code %v", conditionCode)
	}

	eof := EndOfFilePdu{
		conditionCode: conditionCode,
		checksum:      checksum,
		fileSize:      fileSize,
		largeFileFlag: largeFileFlag,
	}
	if faultLocation != nil {
		fl := *faultLocation
		eof.faultLocation = &fl
	}
	return eof, nil
}

// ParseEndOfFile parses an EndOfFilePdu. Both the LargeFileFlag and the length
// of entity IDs are not part of the data field and must be taken from the PDU
// header. The fault location's length must equal lengthOfEntityIDs.
func ParseEndOfFile(data []byte, largeFileFlag header.LargeFileFlag, lengthOfEntityIDs uint8) (EndOfFilePdu, error) {
	if err := checkLargeFileFlag(largeFileFlag); err != nil {
		return EndOfFilePdu{}, codec.AsDecodeError(err)
	}

	fixedSize := eofFileSizeOffset + largeFileFlag.FieldWidth()
	if len(data) < fixedSize {
		return EndOfFilePdu{}, codec.NewDecodeError(codec.ErrTooShort,
			"EOF requires at least %d octets, got %d", fixedSize, len(data))
	}
	if err := checkDirective(data, Eof); err != nil {
		return EndOfFilePdu{}, err
	}

	eof := EndOfFilePdu{
		conditionCode: Condition(eofConditionField.Get(data[1])),
		largeFileFlag: largeFileFlag,
	}
	if !eof.conditionCode.IsValid() {
		return EndOfFilePdu{}, codec.NewDecodeError(codec.ErrInvalidField,
			"unknown condition code %d", uint8(eof.conditionCode))
	}

	var err error
	if eof.checksum, err = codec.BytesToInt[uint32](data, eofChecksumOffset, eofChecksumSize); err != nil {
		return EndOfFilePdu{}, err
	}
	if eof.fileSize, err = codec.BytesToInt[uint64](data, eofFileSizeOffset, largeFileFlag.FieldWidth()); err != nil {
		return EndOfFilePdu{}, err
	}

	rest := data[fixedSize:]
	if eof.conditionCode == NoError {
		if len(rest) != 0 {
			return EndOfFilePdu{}, codec.NewDecodeError(codec.ErrWrongSize,
				"EOF without fault has %d trailing octets", len(rest))
		}
		return eof, nil
	}

	fl, err := tlv.ParseEntityId(rest)
	if err != nil {
		return EndOfFilePdu{}, fmt.Errorf("EOF fault location: %w", err)
	}
	if fl.Length() != lengthOfEntityIDs {
		return EndOfFilePdu{}, codec.NewDecodeError(codec.ErrInvalidField,
			"fault location has %d octets instead of %d", fl.Length(), lengthOfEntityIDs)
	}
	if len(rest) != fl.RawSize() {
		return EndOfFilePdu{}, codec.NewDecodeError(codec.ErrWrongSize,
			"EOF has %d trailing octets after its fault location", len(rest)-fl.RawSize())
	}

	eof.faultLocation = &fl
	return eof, nil
}

func (eof EndOfFilePdu) ConditionCode() Condition {
	return eof.conditionCode
}

// Checksum of the file, opaque to this package.
func (eof EndOfFilePdu) Checksum() uint32 {
	return eof.checksum
}

// FileSize in octets.
func (eof EndOfFilePdu) FileSize() uint64 {
	return eof.fileSize
}

func (eof EndOfFilePdu) LargeFileFlag() header.LargeFileFlag {
	return eof.largeFileFlag
}

// FaultLocation returns the fault location and if it is present.
func (eof EndOfFilePdu) FaultLocation() (tlv.EntityId, bool) {
	if eof.faultLocation == nil {
		return tlv.EntityId{}, false
	}
	return *eof.faultLocation, true
}

// IsError returns true if this EOF was caused by a fault.
func (eof EndOfFilePdu) IsError() bool {
	return eof.conditionCode != NoError
}

func (eof EndOfFilePdu) Directive() Directive {
	return Eof
}

func (eof EndOfFilePdu) RawSize() int {
	size := eofFileSizeOffset + eof.largeFileFlag.FieldWidth()
	if eof.faultLocation != nil {
		size += eof.faultLocation.RawSize()
	}
	return size
}

func (eof EndOfFilePdu) MarshalBinary() ([]byte, error) {
	data := make([]byte, 0, eof.RawSize())
	data = append(data, byte(Eof), eofConditionField.Put(uint8(eof.conditionCode)))

	var err error
	if data, err = codec.PutInt(data, uint64(eof.checksum), eofChecksumSize); err != nil {
		return nil, err
	}
	if data, err = codec.PutInt(data, eof.fileSize, eof.largeFileFlag.FieldWidth()); err != nil {
		return nil, err
	}

	if eof.faultLocation == nil {
		return data, nil
	}

	fl, err := eof.faultLocation.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(data, fl...), nil
}

func (eof EndOfFilePdu) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Directive     string        `json:"directive"`
		ConditionCode string        `json:"conditionCode"`
		Checksum      uint32        `json:"checksum"`
		FileSize      uint64        `json:"fileSize"`
		LargeFileFlag string        `json:"largeFileFlag"`
		FaultLocation *tlv.EntityId `json:"faultLocation,omitempty"`
	}{
		Directive:     Eof.String(),
		ConditionCode: eof.conditionCode.String(),
		Checksum:      eof.checksum,
		FileSize:      eof.fileSize,
		LargeFileFlag: eof.largeFileFlag.String(),
		FaultLocation: eof.faultLocation,
	})
}

func (eof EndOfFilePdu) String() string {
	var b strings.Builder

	_, _ = fmt.Fprintf(&b, "EOF(condition=%v, ", eof.conditionCode)
	_, _ = fmt.Fprintf(&b, "checksum=%08x, ", eof.checksum)
	_, _ = fmt.Fprintf(&b, "file size=%d, %v", eof.fileSize, eof.largeFileFlag)
	if eof.faultLocation != nil {
		_, _ = fmt.Fprintf(&b, ", fault location=%d", eof.faultLocation.ID())
	}
	b.WriteString(")")

	return b.String()
}
