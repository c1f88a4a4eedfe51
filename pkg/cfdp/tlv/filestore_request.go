// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package tlv

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dtn7/cfdp-go/pkg/cfdp/codec"
)

// ActionCode is the four bit action of a FilestoreRequest.
type ActionCode uint8

const (
	CreateFile      ActionCode = 0b0000
	DeleteFile      ActionCode = 0b0001
	RenameFile      ActionCode = 0b0010
	AppendFile      ActionCode = 0b0011
	ReplaceFile     ActionCode = 0b0100
	CreateDirectory ActionCode = 0b0101
	RemoveDirectory ActionCode = 0b0110
	DenyFile        ActionCode = 0b0111
	DenyDirectory   ActionCode = 0b1000
)

func (ac ActionCode) String() string {
	switch ac {
	case CreateFile:
		return "create file"
	case DeleteFile:
		return "delete file"
	case RenameFile:
		return "rename file"
	case AppendFile:
		return "append file"
	case ReplaceFile:
		return "replace file"
	case CreateDirectory:
		return "create directory"
	case RemoveDirectory:
		return "remove directory"
	case DenyFile:
		return "deny file"
	case DenyDirectory:
		return "deny directory"
	default:
		return "INVALID"
	}
}

// IsValid checks if this ActionCode represents a defined action.
func (ac ActionCode) IsValid() bool {
	return ac.String() != "INVALID"
}

// HasSecondFileName returns true for actions operating on two files.
func (ac ActionCode) HasSecondFileName() bool {
	return ac == RenameFile || ac == AppendFile || ac == ReplaceFile
}

// actionCodeField is the action code's position in the value's first octet.
var actionCodeField = codec.Field{Shift: 4, Width: 4}

// FilestoreRequest is the filestore request TLV:
//
//	+------+--------+--------+---+-------------+---+--------------+
//	| Type | Length | Action | L | First name  | L | Second name  |
//	+------+--------+--------+---+-------------+---+--------------+
//
// The second name is only present for rename, append and replace actions.
type FilestoreRequest struct {
	action     ActionCode
	firstName  string
	secondName string
}

// NewFilestoreRequest creates a FilestoreRequest for an action on a single
// file or directory.
func NewFilestoreRequest(action ActionCode, firstName string) (FilestoreRequest, error) {
	if err := checkAction(action); err != nil {
		return FilestoreRequest{}, err
	}
	if action.HasSecondFileName() {
		return FilestoreRequest{}, codec.NewConstructionError(codec.ErrFieldMissing,
			"action %v requires a second file name", action)
	}

	fr := FilestoreRequest{action: action, firstName: firstName}
	if err := fr.checkLengths(); err != nil {
		return FilestoreRequest{}, err
	}
	return fr, nil
}

// NewFilestoreRequestTwoFiles creates a FilestoreRequest for a rename, append
// or replace action.
func NewFilestoreRequestTwoFiles(action ActionCode, firstName, secondName string) (FilestoreRequest, error) {
	if err := checkAction(action); err != nil {
		return FilestoreRequest{}, err
	}
	if !action.HasSecondFileName() {
		return FilestoreRequest{}, codec.NewConstructionError(codec.ErrFieldForbidden,
			"action %v must not have a second file name", action)
	}

	fr := FilestoreRequest{action: action, firstName: firstName, secondName: secondName}
	if err := fr.checkLengths(); err != nil {
		return FilestoreRequest{}, err
	}
	return fr, nil
}

func checkAction(action ActionCode) error {
	if !action.IsValid() {
		return codec.NewConstructionError(codec.ErrInvalidValue, "unknown action code %d", uint8(action))
	}
	return nil
}

func (fr FilestoreRequest) checkLengths() error {
	names := []string{fr.firstName}
	if fr.action.HasSecondFileName() {
		names = append(names, fr.secondName)
	}

	for _, name := range names {
		if len(name) > maxValueLength {
			return codec.NewConstructionError(codec.ErrFieldTooWide,
				"file name of %d octets exceeds %d octets", len(name), maxValueLength)
		}
	}

	if l := fr.valueSize(); l > maxValueLength {
		return codec.NewConstructionError(codec.ErrFieldTooWide,
			"filestore request value of %d octets exceeds %d octets", l, maxValueLength)
	}
	return nil
}

// ParseFilestoreRequest parses a FilestoreRequest TLV from the beginning of data.
func ParseFilestoreRequest(data []byte) (FilestoreRequest, error) {
	length, err := checkHeader(data, FilestoreRequestType)
	if err != nil {
		return FilestoreRequest{}, err
	}

	// All further reads are limited to the declared value.
	value := data[headerSize : headerSize+length]
	if len(value) < 1 {
		return FilestoreRequest{}, codec.NewDecodeError(codec.ErrTooShort, "filestore request has no action code")
	}

	var fr FilestoreRequest

	fr.action = ActionCode(actionCodeField.Get(value[0]))
	if !fr.action.IsValid() {
		return FilestoreRequest{}, codec.NewDecodeError(codec.ErrInvalidField,
			"unknown action code %d", uint8(fr.action))
	}

	first, err := codec.ReadLengthValue(value, 1)
	if err != nil {
		return FilestoreRequest{}, fmt.Errorf("first file name: %w", err)
	}
	fr.firstName = string(first)

	offset := 1 + 1 + len(first)
	if fr.action.HasSecondFileName() {
		second, err := codec.ReadLengthValue(value, offset)
		if err != nil {
			return FilestoreRequest{}, fmt.Errorf("second file name: %w", err)
		}
		fr.secondName = string(second)
		offset += 1 + len(second)
	}

	if offset != len(value) {
		return FilestoreRequest{}, codec.NewDecodeError(codec.ErrWrongSize,
			"filestore request declares %d value octets, but uses %d", len(value), offset)
	}

	return fr, nil
}

// Action of this request.
func (fr FilestoreRequest) Action() ActionCode {
	return fr.action
}

// FirstFileName is the name of the file or directory to operate on.
func (fr FilestoreRequest) FirstFileName() string {
	return fr.firstName
}

// SecondFileName returns the second name and if it is present.
func (fr FilestoreRequest) SecondFileName() (string, bool) {
	return fr.secondName, fr.action.HasSecondFileName()
}

func (fr FilestoreRequest) valueSize() int {
	size := 1 + 1 + len(fr.firstName)
	if fr.action.HasSecondFileName() {
		size += 1 + len(fr.secondName)
	}
	return size
}

func (fr FilestoreRequest) Type() Type {
	return FilestoreRequestType
}

func (fr FilestoreRequest) RawSize() int {
	return headerSize + fr.valueSize()
}

func (fr FilestoreRequest) MarshalBinary() ([]byte, error) {
	if l := fr.valueSize(); l > maxValueLength {
		return nil, codec.NewEncodeError("filestore request value of %d octets exceeds %d octets", l, maxValueLength)
	}

	data := make([]byte, 0, fr.RawSize())
	data = append(data, byte(FilestoreRequestType), byte(fr.valueSize()), actionCodeField.Put(uint8(fr.action)))

	data = append(data, byte(len(fr.firstName)))
	data = append(data, fr.firstName...)

	if fr.action.HasSecondFileName() {
		data = append(data, byte(len(fr.secondName)))
		data = append(data, fr.secondName...)
	}

	return data, nil
}

func (fr FilestoreRequest) MarshalJSON() ([]byte, error) {
	type jsonFr struct {
		Action     string  `json:"action"`
		FirstName  string  `json:"firstFileName"`
		SecondName *string `json:"secondFileName,omitempty"`
	}

	j := jsonFr{Action: fr.action.String(), FirstName: fr.firstName}
	if second, ok := fr.SecondFileName(); ok {
		j.SecondName = &second
	}
	return json.Marshal(j)
}

func (fr FilestoreRequest) String() string {
	var b strings.Builder

	_, _ = fmt.Fprintf(&b, "FilestoreRequest(action=%v, first=%q", fr.action, fr.firstName)
	if second, ok := fr.SecondFileName(); ok {
		_, _ = fmt.Fprintf(&b, ", second=%q", second)
	}
	b.WriteString(")")

	return b.String()
}
