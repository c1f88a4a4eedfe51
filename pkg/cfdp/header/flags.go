// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package header

// PduType distinguishes file directive PDUs from file data PDUs.
type PduType uint8

const (
	FileDirective PduType = 0b0
	FileData      PduType = 0b1
)

func (pt PduType) String() string {
	switch pt {
	case FileDirective:
		return "file directive"
	case FileData:
		return "file data"
	default:
		return "unknown"
	}
}

// Direction of a PDU, relative to the file's flow.
type Direction uint8

const (
	TowardsReceiver Direction = 0b0
	TowardsSender   Direction = 0b1
)

func (d Direction) String() string {
	switch d {
	case TowardsReceiver:
		return "towards receiver"
	case TowardsSender:
		return "towards sender"
	default:
		return "unknown"
	}
}

// TransmissionMode of the transaction this PDU belongs to.
type TransmissionMode uint8

const (
	Acknowledged   TransmissionMode = 0b0
	Unacknowledged TransmissionMode = 0b1
)

func (tm TransmissionMode) String() string {
	switch tm {
	case Acknowledged:
		return "acknowledged"
	case Unacknowledged:
		return "unacknowledged"
	default:
		return "unknown"
	}
}

// CrcFlag indicates a CRC trailer after the PDU data field.
type CrcFlag uint8

const (
	CrcNotPresent CrcFlag = 0b0
	CrcPresent    CrcFlag = 0b1
)

func (cf CrcFlag) String() string {
	switch cf {
	case CrcNotPresent:
		return "not present"
	case CrcPresent:
		return "present"
	default:
		return "unknown"
	}
}

// LargeFileFlag selects the width of file size related fields.
type LargeFileFlag uint8

const (
	// SmallFile uses 32 bit fields.
	SmallFile LargeFileFlag = 0b0

	// LargeFile uses 64 bit fields.
	LargeFile LargeFileFlag = 0b1
)

// Octets of file size related fields, e.g., progress, file size or offsets.
const (
	SmallFileFieldWidth = 4
	LargeFileFieldWidth = 8
)

func (lf LargeFileFlag) String() string {
	switch lf {
	case SmallFile:
		return "small file"
	case LargeFile:
		return "large file"
	default:
		return "unknown"
	}
}

// FieldWidth returns the octets of a file size related field.
func (lf LargeFileFlag) FieldWidth() int {
	if lf == LargeFile {
		return LargeFileFieldWidth
	}
	return SmallFileFieldWidth
}

// SegmentationControl indicates if record boundaries are respected by file
// data segmentation.
type SegmentationControl uint8

const (
	BoundariesNotPreserved SegmentationControl = 0b0
	BoundariesPreserved    SegmentationControl = 0b1
)

func (sc SegmentationControl) String() string {
	switch sc {
	case BoundariesNotPreserved:
		return "boundaries not preserved"
	case BoundariesPreserved:
		return "boundaries preserved"
	default:
		return "unknown"
	}
}

// SegmentMetadataFlag indicates segment metadata within file data PDUs.
type SegmentMetadataFlag uint8

const (
	MetadataNotPresent SegmentMetadataFlag = 0b0
	MetadataPresent    SegmentMetadataFlag = 0b1
)

func (smf SegmentMetadataFlag) String() string {
	switch smf {
	case MetadataNotPresent:
		return "not present"
	case MetadataPresent:
		return "present"
	default:
		return "unknown"
	}
}
