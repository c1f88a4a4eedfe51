// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package directive

import (
	"encoding/json"
	"fmt"

	"github.com/dtn7/cfdp-go/pkg/cfdp/codec"
)

// ResponseRequired selects the PDU a Prompt asks for.
type ResponseRequired uint8

const (
	ResponseNak       ResponseRequired = 0b0
	ResponseKeepAlive ResponseRequired = 0b1
)

func (rr ResponseRequired) String() string {
	switch rr {
	case ResponseNak:
		return "NAK"
	case ResponseKeepAlive:
		return "Keep Alive"
	default:
		return "INVALID"
	}
}

var promptResponseField = codec.Field{Shift: 7, Width: 1}

const promptSize = 2

// PromptPdu requests either a NAK or a Keep Alive PDU from the receiver.
type PromptPdu struct {
	response ResponseRequired
}

// NewPrompt creates a PromptPdu.
func NewPrompt(response ResponseRequired) (PromptPdu, error) {
	if !promptResponseField.Fits(uint8(response)) {
		return PromptPdu{}, codec.NewConstructionError(codec.ErrInvalidValue,
			"unknown response required %d", uint8(response))
	}
	return PromptPdu{response: response}, nil
}

// ParsePrompt parses a PromptPdu, which has a fixed size of two octets.
func ParsePrompt(data []byte) (PromptPdu, error) {
	if len(data) != promptSize {
		return PromptPdu{}, codec.NewDecodeError(codec.ErrWrongSize,
			"Prompt has %d octets instead of %d", len(data), promptSize)
	}
	if err := checkDirective(data, Prompt); err != nil {
		return PromptPdu{}, err
	}

	return PromptPdu{response: ResponseRequired(promptResponseField.Get(data[1]))}, nil
}

func (p PromptPdu) Response() ResponseRequired {
	return p.response
}

func (p PromptPdu) Directive() Directive {
	return Prompt
}

func (p PromptPdu) RawSize() int {
	return promptSize
}

func (p PromptPdu) MarshalBinary() ([]byte, error) {
	return []byte{byte(Prompt), promptResponseField.Put(uint8(p.response))}, nil
}

func (p PromptPdu) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Directive string `json:"directive"`
		Response  string `json:"response"`
	}{Prompt.String(), p.response.String()})
}

func (p PromptPdu) String() string {
	return fmt.Sprintf("PROMPT(response=%v)", p.response)
}
