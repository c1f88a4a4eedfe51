// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package directive implements the CFDP file directive PDUs. Each directive's
// data field starts with a one octet directive code, followed by its
// parameters.
package directive

import (
	"fmt"

	"github.com/dtn7/cfdp-go/pkg/cfdp/codec"
	"github.com/dtn7/cfdp-go/pkg/cfdp/header"
)

// Directive is the directive code, the first octet of a file directive PDU's
// data field.
type Directive uint8

const (
	Eof       Directive = 0b0100
	Finished  Directive = 0b0101
	Ack       Directive = 0b0110
	Metadata  Directive = 0b0111
	Nak       Directive = 0b1000
	Prompt    Directive = 0b1001
	KeepAlive Directive = 0b1100
)

func (d Directive) String() string {
	switch d {
	case Eof:
		return "EOF"
	case Finished:
		return "Finished"
	case Ack:
		return "ACK"
	case Metadata:
		return "Metadata"
	case Nak:
		return "NAK"
	case Prompt:
		return "Prompt"
	case KeepAlive:
		return "Keep Alive"
	default:
		return "INVALID"
	}
}

// IsValid checks if this Directive represents a defined directive code.
func (d Directive) IsValid() bool {
	return d.String() != "INVALID"
}

// Condition is the four bit condition code of EOF, Finished and ACK PDUs.
type Condition uint8

const (
	NoError                    Condition = 0b0000
	PositiveAckLimitReached    Condition = 0b0001
	KeepAliveLimitReached      Condition = 0b0010
	InvalidTransmissionReached Condition = 0b0011
	FilestoreRejection         Condition = 0b0100
	FileChecksumFailure        Condition = 0b0101
	FileSizeError              Condition = 0b0110
	NakLimitReached            Condition = 0b0111
	InactivityDetected         Condition = 0b1000
	InvalidFileStructure       Condition = 0b1001
	CheckLimitReached          Condition = 0b1010
	UnsupportedChecksumType    Condition = 0b1011
	SuspendRequestReceived     Condition = 0b1110
	CancelRequestReceived      Condition = 0b1111
)

func (c Condition) String() string {
	switch c {
	case NoError:
		return "No error"
	case PositiveAckLimitReached:
		return "Positive ACK limit reached"
	case KeepAliveLimitReached:
		return "Keep alive limit reached"
	case InvalidTransmissionReached:
		return "Invalid transmission mode"
	case FilestoreRejection:
		return "Filestore rejection"
	case FileChecksumFailure:
		return "File checksum failure"
	case FileSizeError:
		return "File size error"
	case NakLimitReached:
		return "NAK limit reached"
	case InactivityDetected:
		return "Inactivity detected"
	case InvalidFileStructure:
		return "Invalid file structure"
	case CheckLimitReached:
		return "Check limit reached"
	case UnsupportedChecksumType:
		return "Unsupported checksum type"
	case SuspendRequestReceived:
		return "Suspend request received"
	case CancelRequestReceived:
		return "Cancel request received"
	default:
		return "INVALID"
	}
}

// IsValid checks if this Condition represents a defined condition code.
func (c Condition) IsValid() bool {
	return c.String() != "INVALID"
}

// TransactionStatus is the two bit status of an acknowledged transaction.
type TransactionStatus uint8

const (
	Undefined    TransactionStatus = 0b00
	Active       TransactionStatus = 0b01
	Terminated   TransactionStatus = 0b10
	Unrecognized TransactionStatus = 0b11
)

func (ts TransactionStatus) String() string {
	switch ts {
	case Undefined:
		return "Undefined"
	case Active:
		return "Active"
	case Terminated:
		return "Terminated"
	case Unrecognized:
		return "Unrecognized"
	default:
		return "INVALID"
	}
}

// IsValid checks if this TransactionStatus represents a defined status.
func (ts TransactionStatus) IsValid() bool {
	return ts.String() != "INVALID"
}

// DirectiveSubtype is derived from the acknowledged directive.
type DirectiveSubtype uint8

const (
	EofSubtype      DirectiveSubtype = 0b0
	FinishedSubtype DirectiveSubtype = 0b1
)

// directiveCodeSize is the size of the leading directive code octet.
const directiveCodeSize = 1

// PeekDirective returns the directive code at the beginning of data.
func PeekDirective(data []byte) (Directive, error) {
	if len(data) < directiveCodeSize {
		return 0, codec.NewDecodeError(codec.ErrTooShort, "file directive PDU is empty")
	}
	return Directive(data[0]), nil
}

// checkDirective validates the leading directive code of data.
func checkDirective(data []byte, expected Directive) error {
	d, err := PeekDirective(data)
	if err != nil {
		return err
	}
	if d != expected {
		return codec.NewDecodeError(codec.ErrWrongDirective,
			"directive code is %v (%d) instead of %v (%d)", d, uint8(d), expected, uint8(expected))
	}
	return nil
}

// checkLargeFileFlag validates a caller supplied LargeFileFlag.
func checkLargeFileFlag(lf header.LargeFileFlag) error {
	if lf != header.SmallFile && lf != header.LargeFile {
		return codec.NewConstructionError(codec.ErrInvalidValue, "unknown large file flag %d", uint8(lf))
	}
	return nil
}

// checkFileSizeField validates that a file size related value fits its field.
func checkFileSizeField(name string, value uint64, lf header.LargeFileFlag) error {
	if err := checkLargeFileFlag(lf); err != nil {
		return err
	}
	return codec.CheckFits(name, value, lf.FieldWidth())
}

// Pdu is implemented by all file directive PDUs of this package.
type Pdu interface {
	fmt.Stringer

	// Directive returns the PDU's directive code.
	Directive() Directive

	// RawSize returns the encoded size of the data field in octets.
	RawSize() int

	// MarshalBinary encodes the PDU's data field.
	MarshalBinary() ([]byte, error)
}

var (
	_ Pdu = KeepAlivePdu{}
	_ Pdu = AckPdu{}
	_ Pdu = EndOfFilePdu{}
	_ Pdu = PromptPdu{}
)

// Parse a file directive PDU's data field based on its directive code. The
// header's LargeFileFlag and length of entity IDs are required for PDUs which
// do not describe them by themselves.
func Parse(data []byte, largeFileFlag header.LargeFileFlag, lengthOfEntityIDs uint8) (Pdu, error) {
	d, err := PeekDirective(data)
	if err != nil {
		return nil, err
	}

	switch d {
	case KeepAlive:
		ka, err := ParseKeepAlive(data)
		if err != nil {
			return nil, err
		} else if ka.LargeFileFlag() != largeFileFlag {
			return nil, codec.NewDecodeError(codec.ErrWrongSize,
				"keep alive's size indicates a %v, but the header a %v", ka.LargeFileFlag(), largeFileFlag)
		}
		return ka, nil

	case Ack:
		return nilOnError(ParseAck(data))

	case Eof:
		return nilOnError(ParseEndOfFile(data, largeFileFlag, lengthOfEntityIDs))

	case Prompt:
		return nilOnError(ParsePrompt(data))

	case Finished, Metadata, Nak:
		return nil, codec.NewDecodeError(codec.ErrUnsupportedDirective, "no codec for %v PDUs", d)

	default:
		return nil, codec.NewDecodeError(codec.ErrWrongDirective, "unknown directive code %d", uint8(d))
	}
}

// nilOnError avoids non-nil Pdu interfaces holding zero values next to an error.
func nilOnError(pdu Pdu, err error) (Pdu, error) {
	if err != nil {
		return nil, err
	}
	return pdu, nil
}
