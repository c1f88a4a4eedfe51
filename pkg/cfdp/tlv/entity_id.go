// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package tlv

import (
	"encoding/json"
	"fmt"

	"github.com/dtn7/cfdp-go/pkg/cfdp/codec"
)

// EntityId is the entity ID TLV, e.g., used as an End-of-File's fault location.
type EntityId struct {
	length uint8
	id     uint64
}

// NewEntityId creates an EntityId TLV of an ID with a width of length octets.
func NewEntityId(length uint8, id uint64) (EntityId, error) {
	if err := codec.CheckWidth("entity ID length", int(length)); err != nil {
		return EntityId{}, err
	}
	if err := codec.CheckFits("entity ID", id, int(length)); err != nil {
		return EntityId{}, err
	}

	return EntityId{length: length, id: id}, nil
}

// ParseEntityId parses an EntityId TLV from the beginning of data.
func ParseEntityId(data []byte) (EntityId, error) {
	length, err := checkHeader(data, EntityIdType)
	if err != nil {
		return EntityId{}, err
	}

	if length == 0 {
		return EntityId{}, codec.NewDecodeError(codec.ErrInvalidField, "entity ID has a length of zero")
	}

	// Lengths above eight octets are rejected by BytesToInt as too wide.
	id, err := codec.BytesToInt[uint64](data, headerSize, length)
	if err != nil {
		return EntityId{}, err
	}

	return EntityId{length: uint8(length), id: id}, nil
}

// Length of the entity ID in octets.
func (e EntityId) Length() uint8 {
	return e.length
}

// ID returns the entity ID.
func (e EntityId) ID() uint64 {
	return e.id
}

func (e EntityId) Type() Type {
	return EntityIdType
}

func (e EntityId) RawSize() int {
	return headerSize + int(e.length)
}

func (e EntityId) MarshalBinary() ([]byte, error) {
	data := make([]byte, 0, e.RawSize())
	data = append(data, byte(EntityIdType), e.length)
	return codec.PutInt(data, e.id, int(e.length))
}

func (e EntityId) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Length uint8  `json:"length"`
		ID     uint64 `json:"id"`
	}{e.length, e.id})
}

func (e EntityId) String() string {
	return fmt.Sprintf("EntityId(length=%d, id=%d)", e.length, e.id)
}
