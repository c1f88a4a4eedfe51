// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/dtn7/cfdp-go/pkg/cfdp"
	"github.com/dtn7/cfdp-go/pkg/cfdp/directive"
	"github.com/dtn7/cfdp-go/pkg/cfdp/header"
	"github.com/dtn7/cfdp-go/pkg/cfdp/tlv"
)

// pduDescription is the TOML description of a single PDU. Exactly one of the
// payload blocks must be present.
type pduDescription struct {
	Header headerDesc

	KeepAlive *keepAliveDesc `toml:"keep-alive"`
	Ack       *ackDesc
	Eof       *eofDesc
	Prompt    *promptDesc
	FileData  *fileDataDesc `toml:"file-data"`
}

type headerDesc struct {
	Version              uint8
	TowardsSender        bool   `toml:"towards-sender"`
	Unacknowledged       bool   `toml:"unacknowledged"`
	LargeFile            bool   `toml:"large-file"`
	BoundariesPreserved  bool   `toml:"boundaries-preserved"`
	LengthOfEntityIDs    uint8  `toml:"entity-id-length"`
	LengthOfTransaction  uint8  `toml:"transaction-length"`
	SourceEntityID       uint64 `toml:"source"`
	TransactionSeqNumber uint64 `toml:"transaction"`
	DestinationEntityID  uint64 `toml:"destination"`
	Crc                  *uint32
}

type keepAliveDesc struct {
	Progress uint64
}

type ackDesc struct {
	Directive string
	Condition uint8
	Status    uint8
}

type eofDesc struct {
	Condition     uint8
	Checksum      uint32
	FileSize      uint64  `toml:"file-size"`
	FaultLocation *uint64 `toml:"fault-location"`
}

type promptDesc struct {
	Response string
}

type fileDataDesc struct {
	Offset uint64
	Data   string
	Hex    string
}

// parseDescription decodes a pduDescription from TOML.
func parseDescription(data string) (desc pduDescription, err error) {
	md, err := toml.Decode(data, &desc)
	if err != nil {
		return
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		err = fmt.Errorf("unknown keys in description: %v", undecoded)
	}
	return
}

func (hd headerDesc) fields() header.Fields {
	f := header.Fields{
		Version:                   hd.Version,
		LengthOfEntityIDs:         hd.LengthOfEntityIDs,
		LengthOfTransaction:       hd.LengthOfTransaction,
		SourceEntityID:            hd.SourceEntityID,
		TransactionSequenceNumber: hd.TransactionSeqNumber,
		DestinationEntityID:       hd.DestinationEntityID,
	}

	if hd.TowardsSender {
		f.Direction = header.TowardsSender
	}
	if hd.Unacknowledged {
		f.TransmissionMode = header.Unacknowledged
	}
	if hd.LargeFile {
		f.LargeFileFlag = header.LargeFile
	}
	if hd.BoundariesPreserved {
		f.SegmentationControl = header.BoundariesPreserved
	}
	if hd.Crc != nil {
		f.CrcFlag = header.CrcPresent
	}

	return f
}

// payload builds the single described payload.
func (desc pduDescription) payload(lf header.LargeFileFlag, lengthOfEntityIDs uint8) (cfdp.Payload, error) {
	var (
		payload cfdp.Payload
		count   int
	)

	if ka := desc.KeepAlive; ka != nil {
		count++
		p, err := directive.NewKeepAlive(ka.Progress, lf)
		if err != nil {
			return nil, err
		}
		payload = cfdp.DirectivePayload{Pdu: p}
	}

	if ack := desc.Ack; ack != nil {
		count++
		var code directive.Directive
		switch ack.Directive {
		case "eof":
			code = directive.Eof
		case "finished":
			code = directive.Finished
		default:
			return nil, fmt.Errorf("ACK's directive must be eof or finished, not %q", ack.Directive)
		}

		p, err := directive.NewAck(code, directive.Condition(ack.Condition), directive.TransactionStatus(ack.Status))
		if err != nil {
			return nil, err
		}
		payload = cfdp.DirectivePayload{Pdu: p}
	}

	if eof := desc.Eof; eof != nil {
		count++
		var faultLocation *tlv.EntityId
		if eof.FaultLocation != nil {
			fl, err := tlv.NewEntityId(lengthOfEntityIDs, *eof.FaultLocation)
			if err != nil {
				return nil, err
			}
			faultLocation = &fl
		}

		p, err := directive.NewEndOfFile(directive.Condition(eof.Condition), eof.Checksum, eof.FileSize, lf, faultLocation)
		if err != nil {
			return nil, err
		}
		payload = cfdp.DirectivePayload{Pdu: p}
	}

	if prompt := desc.Prompt; prompt != nil {
		count++
		var response directive.ResponseRequired
		switch prompt.Response {
		case "nak":
			response = directive.ResponseNak
		case "keep-alive":
			response = directive.ResponseKeepAlive
		default:
			return nil, fmt.Errorf("Prompt's response must be nak or keep-alive, not %q", prompt.Response)
		}

		p, err := directive.NewPrompt(response)
		if err != nil {
			return nil, err
		}
		payload = cfdp.DirectivePayload{Pdu: p}
	}

	if fd := desc.FileData; fd != nil {
		count++
		data := []byte(fd.Data)
		if fd.Hex != "" {
			if fd.Data != "" {
				return nil, fmt.Errorf("file data must be given either as data or as hex")
			}

			var err error
			if data, err = hex.DecodeString(fd.Hex); err != nil {
				return nil, fmt.Errorf("file data's hex: %w", err)
			}
		}

		p, err := cfdp.NewFileData(fd.Offset, lf, data)
		if err != nil {
			return nil, err
		}
		payload = p
	}

	if count != 1 {
		return nil, fmt.Errorf("description must contain exactly one payload, got %d", count)
	}
	return payload, nil
}

// pdu builds the described Pdu.
func (desc pduDescription) pdu() (cfdp.Pdu, error) {
	f := desc.Header.fields()

	payload, err := desc.payload(f.LargeFileFlag, f.LengthOfEntityIDs)
	if err != nil {
		return cfdp.Pdu{}, err
	}

	var crc uint32
	if desc.Header.Crc != nil {
		crc = *desc.Header.Crc
	}

	return cfdp.ComposePdu(f, payload, crc)
}
