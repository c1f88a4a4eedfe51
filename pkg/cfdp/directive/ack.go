// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package directive

import (
	"encoding/json"
	"fmt"

	"github.com/dtn7/cfdp-go/pkg/cfdp/codec"
)

//	    0   1   2   3   4   5   6   7
//	  +---+---+---+---+---+---+---+---+
//	  |     Directive code (ACK)      |   octet 0
//	  +---+---+---+---+---+---+---+---+
//	  |  Acked directive  |  Subtype  |   octet 1
//	  +---+---+---+---+---+---+---+---+
//	  |   Condition code  | Spare |TS |   octet 2
//	  +---+---+---+---+---+---+---+---+
var (
	ackDirectiveField         = codec.Field{Shift: 4, Width: 4}
	ackSubtypeField           = codec.Field{Shift: 0, Width: 4}
	ackConditionField         = codec.Field{Shift: 4, Width: 4}
	ackTransactionStatusField = codec.Field{Shift: 0, Width: 2}
)

const ackSize = 3

// AckPdu acknowledges an EOF or a Finished PDU.
type AckPdu struct {
	directiveCode     Directive
	directiveSubtype  DirectiveSubtype
	conditionCode     Condition
	transactionStatus TransactionStatus
}

// subtypeFor derives the DirectiveSubtype of an acknowledgeable directive.
func subtypeFor(d Directive) (DirectiveSubtype, bool) {
	switch d {
	case Eof:
		return EofSubtype, true
	case Finished:
		return FinishedSubtype, true
	default:
		return 0, false
	}
}

// NewAck creates an AckPdu. Only EOF and Finished PDUs can be acknowledged.
func NewAck(directiveCode Directive, conditionCode Condition, transactionStatus TransactionStatus) (AckPdu, error) {
	subtype, ok := subtypeFor(directiveCode)
	if !ok {
		return AckPdu{}, codec.NewConstructionError(codec.ErrDisallowedCode,
			"only EOF and Finished PDUs can be acknowledged, not %v", directiveCode)
	}
	if !conditionCode.IsValid() {
		return AckPdu{}, codec.NewConstructionError(codec.ErrInvalidValue,
			"unknown condition code %d", uint8(conditionCode))
	}
	if !transactionStatus.IsValid() {
		return AckPdu{}, codec.NewConstructionError(codec.ErrInvalidValue,
			"unknown transaction status %d", uint8(transactionStatus))
	}

	return AckPdu{
		directiveCode:     directiveCode,
		directiveSubtype:  subtype,
		conditionCode:     conditionCode,
		transactionStatus: transactionStatus,
	}, nil
}

// ParseAck parses an AckPdu, which has a fixed size of three octets.
func ParseAck(data []byte) (AckPdu, error) {
	if len(data) != ackSize {
		return AckPdu{}, codec.NewDecodeError(codec.ErrWrongSize,
			"ACK has %d octets instead of %d", len(data), ackSize)
	}
	if err := checkDirective(data, Ack); err != nil {
		return AckPdu{}, err
	}

	ack := AckPdu{
		directiveCode:     Directive(ackDirectiveField.Get(data[1])),
		directiveSubtype:  DirectiveSubtype(ackSubtypeField.Get(data[1])),
		conditionCode:     Condition(ackConditionField.Get(data[2])),
		transactionStatus: TransactionStatus(ackTransactionStatusField.Get(data[2])),
	}

	if subtype, ok := subtypeFor(ack.directiveCode); !ok {
		return AckPdu{}, codec.NewDecodeError(codec.ErrInvalidField,
			"ACK acknowledges %v (%d)", ack.directiveCode, uint8(ack.directiveCode))
	} else if subtype != ack.directiveSubtype {
		return AckPdu{}, codec.NewDecodeError(codec.ErrInvalidField,
			"ACK subtype %d does not match %v", ack.directiveSubtype, ack.directiveCode)
	}
	if !ack.conditionCode.IsValid() {
		return AckPdu{}, codec.NewDecodeError(codec.ErrInvalidField,
			"unknown condition code %d", uint8(ack.conditionCode))
	}

	return ack, nil
}

// DirectiveCode is the acknowledged directive, either EOF or Finished.
func (ack AckPdu) DirectiveCode() Directive {
	return ack.directiveCode
}

func (ack AckPdu) DirectiveSubtype() DirectiveSubtype {
	return ack.directiveSubtype
}

func (ack AckPdu) ConditionCode() Condition {
	return ack.conditionCode
}

func (ack AckPdu) TransactionStatus() TransactionStatus {
	return ack.transactionStatus
}

func (ack AckPdu) Directive() Directive {
	return Ack
}

func (ack AckPdu) RawSize() int {
	return ackSize
}

func (ack AckPdu) MarshalBinary() ([]byte, error) {
	return []byte{
		byte(Ack),
		ackDirectiveField.Put(uint8(ack.directiveCode)) | ackSubtypeField.Put(uint8(ack.directiveSubtype)),
		ackConditionField.Put(uint8(ack.conditionCode)) | ackTransactionStatusField.Put(uint8(ack.transactionStatus)),
	}, nil
}

func (ack AckPdu) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Directive         string `json:"directive"`
		DirectiveCode     string `json:"directiveCode"`
		DirectiveSubtype  uint8  `json:"directiveSubtype"`
		ConditionCode     string `json:"conditionCode"`
		TransactionStatus string `json:"transactionStatus"`
	}{
		Directive:         Ack.String(),
		DirectiveCode:     ack.directiveCode.String(),
		DirectiveSubtype:  uint8(ack.directiveSubtype),
		ConditionCode:     ack.conditionCode.String(),
		TransactionStatus: ack.transactionStatus.String(),
	})
}

func (ack AckPdu) String() string {
	return fmt.Sprintf("ACK(directive=%v, condition=%v, status=%v)",
		ack.directiveCode, ack.conditionCode, ack.transactionStatus)
}
