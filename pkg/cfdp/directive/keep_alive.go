// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package directive

import (
	"encoding/json"
	"fmt"

	"github.com/dtn7/cfdp-go/pkg/cfdp/codec"
	"github.com/dtn7/cfdp-go/pkg/cfdp/header"
)

// KeepAlivePdu reports the receiver's progress, i.e., the number of
// contiguous octets received from the file's start.
type KeepAlivePdu struct {
	progress      uint64
	largeFileFlag header.LargeFileFlag
}

// NewKeepAlive creates a KeepAlivePdu. For small files, progress must fit
// into 32 bits.
func NewKeepAlive(progress uint64, largeFileFlag header.LargeFileFlag) (KeepAlivePdu, error) {
	if err := checkFileSizeField("progress", progress, largeFileFlag); err != nil {
		return KeepAlivePdu{}, err
	}
	return KeepAlivePdu{progress: progress, largeFileFlag: largeFileFlag}, nil
}

// ParseKeepAlive parses a KeepAlivePdu. Its LargeFileFlag is inferred from the
// data's length: more than the small file size indicates a large file.
func ParseKeepAlive(data []byte) (KeepAlivePdu, error) {
	const (
		smallSize = directiveCodeSize + header.SmallFileFieldWidth
		largeSize = directiveCodeSize + header.LargeFileFieldWidth
	)

	if len(data) < smallSize {
		return KeepAlivePdu{}, codec.NewDecodeError(codec.ErrTooShort,
			"keep alive requires at least %d octets, got %d", smallSize, len(data))
	}
	if err := checkDirective(data, KeepAlive); err != nil {
		return KeepAlivePdu{}, err
	}

	lf := header.SmallFile
	if len(data) > smallSize {
		lf = header.LargeFile
	}

	if size := directiveCodeSize + lf.FieldWidth(); len(data) < size {
		return KeepAlivePdu{}, codec.NewDecodeError(codec.ErrTooShort,
			"large file keep alive requires %d octets, got %d", largeSize, len(data))
	} else if len(data) > size {
		return KeepAlivePdu{}, codec.NewDecodeError(codec.ErrWrongSize,
			"keep alive has %d octets instead of %d", len(data), size)
	}

	progress, err := codec.BytesToInt[uint64](data, directiveCodeSize, lf.FieldWidth())
	if err != nil {
		return KeepAlivePdu{}, err
	}
	return KeepAlivePdu{progress: progress, largeFileFlag: lf}, nil
}

// Progress in octets.
func (ka KeepAlivePdu) Progress() uint64 {
	return ka.progress
}

func (ka KeepAlivePdu) LargeFileFlag() header.LargeFileFlag {
	return ka.largeFileFlag
}

func (ka KeepAlivePdu) Directive() Directive {
	return KeepAlive
}

func (ka KeepAlivePdu) RawSize() int {
	return directiveCodeSize + ka.largeFileFlag.FieldWidth()
}

func (ka KeepAlivePdu) MarshalBinary() ([]byte, error) {
	data := make([]byte, 0, ka.RawSize())
	data = append(data, byte(KeepAlive))
	return codec.PutInt(data, ka.progress, ka.largeFileFlag.FieldWidth())
}

func (ka KeepAlivePdu) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Directive     string `json:"directive"`
		Progress      uint64 `json:"progress"`
		LargeFileFlag string `json:"largeFileFlag"`
	}{KeepAlive.String(), ka.progress, ka.largeFileFlag.String()})
}

func (ka KeepAlivePdu) String() string {
	return fmt.Sprintf("KEEP_ALIVE(progress=%d, %v)", ka.progress, ka.largeFileFlag)
}
