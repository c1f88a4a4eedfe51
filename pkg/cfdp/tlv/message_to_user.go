// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package tlv

import (
	"encoding/json"
	"fmt"

	"github.com/dtn7/cfdp-go/pkg/cfdp/codec"
)

// MessageToUser is a TLV carrying an opaque message for the receiving user.
type MessageToUser struct {
	message string
}

// NewMessageToUser creates a MessageToUser of at most 255 octets.
func NewMessageToUser(message string) (MessageToUser, error) {
	if len(message) > maxValueLength {
		return MessageToUser{}, codec.NewConstructionError(codec.ErrFieldTooWide,
			"message of %d octets exceeds %d octets", len(message), maxValueLength)
	}
	return MessageToUser{message: message}, nil
}

// ParseMessageToUser parses a MessageToUser TLV from the beginning of data.
func ParseMessageToUser(data []byte) (MessageToUser, error) {
	length, err := checkHeader(data, MessageToUserType)
	if err != nil {
		return MessageToUser{}, err
	}

	message, err := codec.BytesToString(data, headerSize, length)
	if err != nil {
		return MessageToUser{}, err
	}
	return MessageToUser{message: message}, nil
}

// Message returns the message's content.
func (m MessageToUser) Message() string {
	return m.message
}

func (m MessageToUser) Type() Type {
	return MessageToUserType
}

func (m MessageToUser) RawSize() int {
	return headerSize + len(m.message)
}

func (m MessageToUser) MarshalBinary() ([]byte, error) {
	if len(m.message) > maxValueLength {
		return nil, codec.NewEncodeError("message of %d octets exceeds %d octets", len(m.message), maxValueLength)
	}

	data := make([]byte, 0, m.RawSize())
	data = append(data, byte(MessageToUserType), byte(len(m.message)))
	return append(data, m.message...), nil
}

func (m MessageToUser) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Message string `json:"message"`
	}{m.message})
}

func (m MessageToUser) String() string {
	return fmt.Sprintf("MessageToUser(%q)", m.message)
}
