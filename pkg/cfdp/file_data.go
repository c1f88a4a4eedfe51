// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cfdp

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/dtn7/cfdp-go/pkg/cfdp/codec"
	"github.com/dtn7/cfdp-go/pkg/cfdp/header"
)

// FileData is the data field of a file data PDU, a file segment at an offset:
//
//	+-----------------+------------------------+
//	| Offset (4 / 8)  | File data (remaining)  |
//	+-----------------+------------------------+
//
// Segment metadata is not supported.
type FileData struct {
	offset        uint64
	largeFileFlag header.LargeFileFlag
	data          []byte
}

// NewFileData creates a FileData of a segment starting at offset. The data is
// copied.
func NewFileData(offset uint64, largeFileFlag header.LargeFileFlag, data []byte) (FileData, error) {
	if largeFileFlag != header.SmallFile && largeFileFlag != header.LargeFile {
		return FileData{}, codec.NewConstructionError(codec.ErrInvalidValue,
			"unknown large file flag %d", uint8(largeFileFlag))
	}
	if err := codec.CheckFits("offset", offset, largeFileFlag.FieldWidth()); err != nil {
		return FileData{}, err
	}

	return FileData{
		offset:        offset,
		largeFileFlag: largeFileFlag,
		data:          append([]byte(nil), data...),
	}, nil
}

// ParseFileData parses a FileData data field. The LargeFileFlag is taken from
// the PDU header.
func ParseFileData(data []byte, largeFileFlag header.LargeFileFlag) (FileData, error) {
	if largeFileFlag != header.SmallFile && largeFileFlag != header.LargeFile {
		return FileData{}, codec.NewDecodeError(codec.ErrInvalidField,
			"unknown large file flag %d", uint8(largeFileFlag))
	}

	width := largeFileFlag.FieldWidth()
	offset, err := codec.BytesToInt[uint64](data, 0, width)
	if err != nil {
		return FileData{}, err
	}

	return FileData{
		offset:        offset,
		largeFileFlag: largeFileFlag,
		data:          append([]byte(nil), data[width:]...),
	}, nil
}

// Offset of this segment within the file in octets.
func (fd FileData) Offset() uint64 {
	return fd.offset
}

func (fd FileData) LargeFileFlag() header.LargeFileFlag {
	return fd.largeFileFlag
}

// Data returns a copy of this segment's file data.
func (fd FileData) Data() []byte {
	return append([]byte(nil), fd.data...)
}

func (fd FileData) RawSize() int {
	return fd.largeFileFlag.FieldWidth() + len(fd.data)
}

func (fd FileData) MarshalBinary() ([]byte, error) {
	data := make([]byte, 0, fd.RawSize())
	data, err := codec.PutInt(data, fd.offset, fd.largeFileFlag.FieldWidth())
	if err != nil {
		return nil, err
	}
	return append(data, fd.data...), nil
}

func (fd FileData) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Offset        uint64 `json:"offset"`
		LargeFileFlag string `json:"largeFileFlag"`
		Data          string `json:"data"`
	}{fd.offset, fd.largeFileFlag.String(), hex.EncodeToString(fd.data)})
}

func (fd FileData) String() string {
	return fmt.Sprintf("FILE_DATA(offset=%d, length=%d, %v)", fd.offset, len(fd.data), fd.largeFileFlag)
}

func (fd FileData) pduType() header.PduType {
	return header.FileData
}
