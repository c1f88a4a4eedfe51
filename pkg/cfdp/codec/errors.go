// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package codec

import (
	"errors"
	"fmt"
)

// Error families. Every error returned by the CFDP codec matches exactly one
// of them with errors.Is.
var (
	ErrEncode       = errors.New("cfdp: encode error")
	ErrDecode       = errors.New("cfdp: decode error")
	ErrConstruction = errors.New("cfdp: construction error")
)

// Decode reasons.
var (
	// ErrTooShort indicates a buffer ending before a field.
	ErrTooShort = errors.New("buffer too short")

	// ErrWrongDiscriminator is matched by both ErrWrongDirective and ErrWrongType.
	ErrWrongDiscriminator = errors.New("wrong discriminator")

	// ErrWrongDirective indicates a leading directive code not belonging to the parsed PDU.
	ErrWrongDirective = &discriminatorError{"wrong directive code"}

	// ErrWrongType indicates a TLV type tag not belonging to the parsed TLV.
	ErrWrongType = &discriminatorError{"wrong TLV type"}

	// ErrValueTooWide indicates a byte chunk which does not fit the requested integer type.
	ErrValueTooWide = errors.New("value too wide")

	// ErrWrongSize indicates a buffer whose length is not the exact length of the parsed structure.
	ErrWrongSize = errors.New("wrong size")

	// ErrInvalidField indicates a decoded field violating a protocol invariant.
	ErrInvalidField = errors.New("invalid field")

	// ErrUnsupportedDirective indicates a known directive without a codec.
	ErrUnsupportedDirective = errors.New("unsupported directive")
)

// Construction reasons.
var (
	ErrZeroWidth      = errors.New("field width is zero")
	ErrFieldTooWide   = errors.New("value exceeds declared field width")
	ErrSameEntityIDs  = errors.New("source and destination entity IDs are equal")
	ErrFieldMissing   = errors.New("mandatory field is missing")
	ErrFieldForbidden = errors.New("field must be omitted")
	ErrDisallowedCode = errors.New("code is not allowed here")
	ErrInvalidValue   = errors.New("invalid value")
)

type discriminatorError struct {
	msg string
}

func (de *discriminatorError) Error() string {
	return de.msg
}

func (de *discriminatorError) Is(target error) bool {
	return target == ErrWrongDiscriminator
}

// EncodeError is returned when a value cannot be serialized.
type EncodeError struct {
	Msg string
}

// NewEncodeError creates an EncodeError with a formatted message.
func NewEncodeError(format string, a ...interface{}) error {
	return &EncodeError{Msg: fmt.Sprintf(format, a...)}
}

func (ee *EncodeError) Error() string {
	return "encode: " + ee.Msg
}

func (ee *EncodeError) Is(target error) bool {
	return target == ErrEncode
}

// DecodeError is returned when a byte buffer cannot be parsed. Reason is one
// of the decode reason errors of this package.
type DecodeError struct {
	Reason error
	Msg    string
}

// NewDecodeError creates a DecodeError for a reason with a formatted message.
func NewDecodeError(reason error, format string, a ...interface{}) error {
	return &DecodeError{Reason: reason, Msg: fmt.Sprintf(format, a...)}
}

func (de *DecodeError) Error() string {
	return fmt.Sprintf("decode: %v: %s", de.Reason, de.Msg)
}

func (de *DecodeError) Unwrap() error {
	return de.Reason
}

func (de *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// ConstructionError is returned when explicit field values violate a protocol
// invariant. Reason is one of the construction reason errors of this package.
type ConstructionError struct {
	Reason error
	Msg    string
}

// NewConstructionError creates a ConstructionError for a reason with a formatted message.
func NewConstructionError(reason error, format string, a ...interface{}) error {
	return &ConstructionError{Reason: reason, Msg: fmt.Sprintf(format, a...)}
}

func (ce *ConstructionError) Error() string {
	return fmt.Sprintf("construction: %v: %s", ce.Reason, ce.Msg)
}

func (ce *ConstructionError) Unwrap() error {
	return ce.Reason
}

func (ce *ConstructionError) Is(target error) bool {
	return target == ErrConstruction
}

// AsDecodeError converts a ConstructionError, raised while re-validating
// decoded fields, into a DecodeError with ErrInvalidField as its reason. Other
// errors are returned unchanged.
func AsDecodeError(err error) error {
	var ce *ConstructionError
	if err == nil || !errors.As(err, &ce) {
		return err
	}
	return NewDecodeError(ErrInvalidField, "%s", err.Error())
}
