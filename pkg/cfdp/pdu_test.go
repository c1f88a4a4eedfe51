// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cfdp

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"

	"github.com/dtn7/cfdp-go/pkg/cfdp/codec"
	"github.com/dtn7/cfdp-go/pkg/cfdp/directive"
	"github.com/dtn7/cfdp-go/pkg/cfdp/header"
	"github.com/dtn7/cfdp-go/pkg/cfdp/tlv"
)

func exampleFields(crc header.CrcFlag, lf header.LargeFileFlag) header.Fields {
	return header.Fields{
		Version:                   1,
		Direction:                 header.TowardsReceiver,
		TransmissionMode:          header.Acknowledged,
		CrcFlag:                   crc,
		LargeFileFlag:             lf,
		SegmentationControl:       header.BoundariesNotPreserved,
		LengthOfEntityIDs:         1,
		SegmentMetadataFlag:       header.MetadataNotPresent,
		LengthOfTransaction:       1,
		SourceEntityID:            1,
		TransactionSequenceNumber: 7,
		DestinationEntityID:       2,
	}
}

func TestPduKeepAliveWithCrc(t *testing.T) {
	ka, err := directive.NewKeepAlive(0x01020304, header.SmallFile)
	if err != nil {
		t.Fatal(err)
	}

	pdu, err := ComposePdu(exampleFields(header.CrcPresent, header.SmallFile), DirectivePayload{ka}, 0xCAFEBABE)
	if err != nil {
		t.Fatal(err)
	}

	expected := []byte{34, 0, 9, 0, 1, 7, 2, 12, 1, 2, 3, 4, 0xCA, 0xFE, 0xBA, 0xBE}
	data, err := pdu.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	} else if !bytes.Equal(data, expected) {
		t.Fatalf("Data does not match, expected %v and got %v", expected, data)
	} else if len(data) != pdu.RawSize() {
		t.Fatalf("Encoded %d octets, but RawSize is %d", len(data), pdu.RawSize())
	}

	dec, err := ParsePdu(data)
	if err != nil {
		t.Fatal(err)
	} else if !reflect.DeepEqual(dec, pdu) {
		t.Fatalf("PDUs differ: %v and %v", dec, pdu)
	}

	if crc, ok := dec.CRC(); !ok || crc != 0xCAFEBABE {
		t.Fatalf("CRC is %08x, %t", crc, ok)
	}
	if d, ok := dec.Directive(); !ok || d.Directive() != directive.KeepAlive {
		t.Fatalf("Directive is %v, %t", d, ok)
	}
	if _, ok := dec.FileData(); ok {
		t.Fatal("Keep alive PDU reports file data")
	}
}

func TestPduRoundTrip(t *testing.T) {
	ka, _ := directive.NewKeepAlive(1<<40, header.LargeFile)
	ack, _ := directive.NewAck(directive.Eof, directive.NoError, directive.Active)
	prompt, _ := directive.NewPrompt(directive.ResponseNak)

	fault, _ := tlv.NewEntityId(1, 2)
	eof, _ := directive.NewEndOfFile(directive.FileSizeError, 23, 42, header.SmallFile, &fault)
	eofLarge, _ := directive.NewEndOfFile(directive.NoError, 0, 1<<33, header.LargeFile, nil)

	fdSmall, _ := NewFileData(512, header.SmallFile, []byte("hello world"))
	fdLarge, _ := NewFileData(1<<35, header.LargeFile, []byte{0xFF})
	fdEmpty, _ := NewFileData(0, header.SmallFile, nil)

	tests := []struct {
		payload Payload
		lf      header.LargeFileFlag
	}{
		{DirectivePayload{ka}, header.LargeFile},
		{DirectivePayload{ack}, header.SmallFile},
		{DirectivePayload{ack}, header.LargeFile},
		{DirectivePayload{prompt}, header.SmallFile},
		{DirectivePayload{eof}, header.SmallFile},
		{DirectivePayload{eofLarge}, header.LargeFile},
		{fdSmall, header.SmallFile},
		{fdLarge, header.LargeFile},
		{fdEmpty, header.SmallFile},
	}

	for _, test := range tests {
		for _, crc := range []header.CrcFlag{header.CrcNotPresent, header.CrcPresent} {
			var crcValue uint32
			if crc == header.CrcPresent {
				crcValue = 0x11223344
			}

			pdu, err := ComposePdu(exampleFields(crc, test.lf), test.payload, crcValue)
			if err != nil {
				t.Fatalf("Composing %v failed: %v", test.payload, err)
			}

			data, err := pdu.MarshalBinary()
			if err != nil {
				t.Fatal(err)
			}

			if dec, err := ParsePdu(data); err != nil {
				t.Fatalf("Parsing %v failed: %v", pdu, err)
			} else if !reflect.DeepEqual(dec, pdu) {
				t.Fatalf("PDUs differ: %v and %v", dec, pdu)
			}
		}
	}
}

func TestPduFileData(t *testing.T) {
	fd, err := NewFileData(0x0A0B, header.SmallFile, []byte{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}

	pdu, err := ComposePdu(exampleFields(header.CrcNotPresent, header.SmallFile), fd, 0)
	if err != nil {
		t.Fatal(err)
	}

	expected := []byte{0x30, 0, 7, 0, 1, 7, 2, 0, 0, 0x0A, 0x0B, 1, 2, 3}
	if data, err := pdu.MarshalBinary(); err != nil {
		t.Fatal(err)
	} else if !bytes.Equal(data, expected) {
		t.Fatalf("Data does not match, expected %v and got %v", expected, data)
	}

	dec, err := ParsePdu(expected)
	if err != nil {
		t.Fatal(err)
	}

	if decFd, ok := dec.FileData(); !ok {
		t.Fatal("File data PDU reports no file data")
	} else if decFd.Offset() != 0x0A0B || !bytes.Equal(decFd.Data(), []byte{1, 2, 3}) {
		t.Fatalf("File data differs: %v", decFd)
	}
	if _, ok := dec.CRC(); ok {
		t.Fatal("CRC reported without CRC flag")
	}
}

func TestFileDataCopies(t *testing.T) {
	buf := []byte{1, 2, 3}

	fd, err := NewFileData(0, header.SmallFile, buf)
	if err != nil {
		t.Fatal(err)
	}

	buf[0] = 0xFF
	if fd.Data()[0] != 1 {
		t.Fatal("FileData references the caller's buffer")
	}

	data := fd.Data()
	data[1] = 0xFF
	if fd.Data()[1] != 2 {
		t.Fatal("FileData exposes its internal buffer")
	}
}

func TestFileDataErrors(t *testing.T) {
	if _, err := NewFileData(1<<32, header.SmallFile, nil); !errors.Is(err, codec.ErrFieldTooWide) {
		t.Fatalf("Expected ErrFieldTooWide, got %v", err)
	}
	if _, err := NewFileData(0, header.LargeFileFlag(2), nil); !errors.Is(err, codec.ErrInvalidValue) {
		t.Fatalf("Expected ErrInvalidValue, got %v", err)
	}
	if _, err := ParseFileData([]byte{0, 0, 0}, header.SmallFile); !errors.Is(err, codec.ErrTooShort) {
		t.Fatalf("Expected ErrTooShort, got %v", err)
	}
	if _, err := ParseFileData([]byte{0, 0, 0, 0, 0}, header.LargeFile); !errors.Is(err, codec.ErrTooShort) {
		t.Fatalf("Expected ErrTooShort, got %v", err)
	}
}

func TestNewPduErrors(t *testing.T) {
	ka, _ := directive.NewKeepAlive(1, header.SmallFile)
	fd, _ := NewFileData(1, header.SmallFile, []byte{1})

	wideFault, _ := tlv.NewEntityId(2, 7)
	eof, _ := directive.NewEndOfFile(directive.FileChecksumFailure, 1, 2, header.SmallFile, &wideFault)

	hdrFor := func(f header.Fields) header.PduHeader {
		h, err := header.New(f)
		if err != nil {
			t.Fatal(err)
		}
		return h
	}

	f := exampleFields(header.CrcNotPresent, header.SmallFile)
	f.PduType = header.FileDirective
	f.PduDataFieldLength = uint16(ka.RawSize())
	valid := hdrFor(f)

	if _, err := NewPdu(valid, DirectivePayload{ka}, 0); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		header  header.PduHeader
		payload Payload
		crc     uint32
		reason  error
		count   int
	}{
		{"nil payload", valid, nil, 0, codec.ErrFieldMissing, 0},
		{"nil directive", valid, DirectivePayload{}, 0, codec.ErrFieldMissing, 0},
		{"wrong type", valid, fd, 0, codec.ErrInvalidValue, 1},
		{"crc without flag", valid, DirectivePayload{ka}, 1, codec.ErrFieldForbidden, 1},
		{"wrong length", func() header.PduHeader {
			f := f
			f.PduDataFieldLength++
			return hdrFor(f)
		}(), DirectivePayload{ka}, 0, codec.ErrInvalidValue, 1},
		{"wrong large file flag", func() header.PduHeader {
			f := f
			f.LargeFileFlag = header.LargeFile
			return hdrFor(f)
		}(), DirectivePayload{ka}, 0, codec.ErrInvalidValue, 1},
		{"everything wrong", func() header.PduHeader {
			f := f
			f.LargeFileFlag = header.LargeFile
			f.PduDataFieldLength = 0
			return hdrFor(f)
		}(), fd, 1, codec.ErrInvalidValue, 4},
		{"segment metadata", func() header.PduHeader {
			f := f
			f.PduType = header.FileData
			f.PduDataFieldLength = uint16(fd.RawSize())
			f.SegmentMetadataFlag = header.MetadataPresent
			return hdrFor(f)
		}(), fd, 0, codec.ErrFieldForbidden, 1},
		{"fault location width", func() header.PduHeader {
			f := f
			f.PduDataFieldLength = uint16(eof.RawSize())
			return hdrFor(f)
		}(), DirectivePayload{eof}, 0, codec.ErrInvalidValue, 1},
	}

	for _, test := range tests {
		_, err := NewPdu(test.header, test.payload, test.crc)
		if !errors.Is(err, codec.ErrConstruction) || !errors.Is(err, test.reason) {
			t.Fatalf("%s: expected %v, got %v", test.name, test.reason, err)
		}

		if test.count == 0 {
			continue
		}

		var merr *multierror.Error
		if !errors.As(err, &merr) {
			t.Fatalf("%s: error is no multierror: %v", test.name, err)
		} else if len(merr.Errors) != test.count {
			t.Fatalf("%s: expected %d errors, got %d: %v", test.name, test.count, len(merr.Errors), err)
		}
	}
}

func TestComposePduErrors(t *testing.T) {
	if _, err := ComposePdu(exampleFields(header.CrcNotPresent, header.SmallFile), nil, 0); !errors.Is(err, codec.ErrFieldMissing) {
		t.Fatalf("Expected ErrFieldMissing, got %v", err)
	}

	fd, _ := NewFileData(0, header.SmallFile, make([]byte, 65535-4))
	if _, err := ComposePdu(exampleFields(header.CrcNotPresent, header.SmallFile), fd, 0); err != nil {
		t.Fatalf("Largest data field was rejected: %v", err)
	}
	if _, err := ComposePdu(exampleFields(header.CrcPresent, header.SmallFile), fd, 0); !errors.Is(err, codec.ErrFieldTooWide) {
		t.Fatalf("Expected ErrFieldTooWide, got %v", err)
	}

	f := exampleFields(header.CrcNotPresent, header.SmallFile)
	f.DestinationEntityID = f.SourceEntityID
	if _, err := ComposePdu(f, fd, 0); !errors.Is(err, codec.ErrSameEntityIDs) {
		t.Fatalf("Expected ErrSameEntityIDs, got %v", err)
	}
}

func TestComposePduFaultLocation(t *testing.T) {
	for _, length := range []uint8{1, 2} {
		fault, _ := tlv.NewEntityId(length, 7)
		eof, err := directive.NewEndOfFile(directive.FileChecksumFailure, 1, 2, header.SmallFile, &fault)
		if err != nil {
			t.Fatal(err)
		}

		pdu, err := ComposePdu(exampleFields(header.CrcNotPresent, header.SmallFile), DirectivePayload{eof}, 0)
		if length != 1 {
			if !errors.Is(err, codec.ErrInvalidValue) {
				t.Fatalf("Fault location of %d octets: expected ErrInvalidValue, got %v", length, err)
			}
			continue
		} else if err != nil {
			t.Fatal(err)
		}

		data, err := pdu.MarshalBinary()
		if err != nil {
			t.Fatal(err)
		}
		if dec, err := ParsePdu(data); err != nil {
			t.Fatal(err)
		} else if !reflect.DeepEqual(dec, pdu) {
			t.Fatalf("Expected %v and got %v", pdu, dec)
		}
	}
}

func TestPduZeroValue(t *testing.T) {
	var pdu Pdu
	if size := pdu.RawSize(); size != pdu.Header().RawSize() {
		t.Fatalf("Expected %d octets for a zero Pdu, got %d", pdu.Header().RawSize(), size)
	}
	if _, err := pdu.MarshalBinary(); err == nil {
		t.Fatal("Encoding a zero Pdu succeeded")
	}
}

func TestParsePduErrors(t *testing.T) {
	ka, _ := directive.NewKeepAlive(1, header.SmallFile)
	pdu, _ := ComposePdu(exampleFields(header.CrcPresent, header.SmallFile), DirectivePayload{ka}, 3)
	valid, _ := pdu.MarshalBinary()

	withByte := func(data []byte, i int, b byte) []byte {
		data = append([]byte(nil), data...)
		data[i] = b
		return data
	}

	tests := []struct {
		name   string
		data   []byte
		reason error
	}{
		{"empty", []byte{}, codec.ErrTooShort},
		{"header only", valid[:7], codec.ErrTooShort},
		{"missing crc", valid[:len(valid)-1], codec.ErrTooShort},
		{"trailing octet", append(append([]byte(nil), valid...), 0), codec.ErrWrongSize},
		// Announces two more octets than available
		{"keep alive too long", withByte(valid, 2, 11), codec.ErrTooShort},
		{"wrong directive", withByte(valid, 7, 0xFF), codec.ErrWrongDirective},
		{"finished", []byte{0x20, 0, 2, 0, 1, 7, 2, byte(directive.Finished), 0}, codec.ErrUnsupportedDirective},
		{"metadata", []byte{0x20, 0, 2, 0, 1, 7, 2, byte(directive.Metadata), 0}, codec.ErrUnsupportedDirective},
		{"nak", []byte{0x20, 0, 2, 0, 1, 7, 2, byte(directive.Nak), 0}, codec.ErrUnsupportedDirective},
		{"keep alive size", []byte{0x21, 0, 5, 0, 1, 7, 2, 12, 0, 0, 0, 0}, codec.ErrWrongSize},
		{"segment metadata", []byte{0x30, 0, 4, 0x08, 1, 7, 2, 0, 0, 0, 0}, codec.ErrInvalidField},
		{"short file data", []byte{0x30, 0, 3, 0, 1, 7, 2, 0, 0, 0}, codec.ErrTooShort},
		{"same entity IDs", []byte{0x20, 0, 3, 0, 1, 7, 1, byte(directive.Ack), 0x40, 0}, codec.ErrInvalidField},
	}

	for _, test := range tests {
		if _, err := ParsePdu(test.data); !errors.Is(err, codec.ErrDecode) || !errors.Is(err, test.reason) {
			t.Fatalf("%s: expected %v, got %v", test.name, test.reason, err)
		}
	}
}

func TestPduJSON(t *testing.T) {
	ka, _ := directive.NewKeepAlive(5, header.SmallFile)
	pdu, err := ComposePdu(exampleFields(header.CrcPresent, header.SmallFile), DirectivePayload{ka}, 1)
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(pdu)
	if err != nil {
		t.Fatal(err)
	}

	for _, needle := range []string{`"header":{`, `"directive":"Keep Alive"`, `"progress":5`, `"crc":1`} {
		if !strings.Contains(string(data), needle) {
			t.Fatalf("JSON %s does not contain %s", data, needle)
		}
	}

	fd, _ := NewFileData(0, header.SmallFile, []byte{0xAB})
	pdu, _ = ComposePdu(exampleFields(header.CrcNotPresent, header.SmallFile), fd, 0)
	if data, err = json.Marshal(pdu); err != nil {
		t.Fatal(err)
	} else if !strings.Contains(string(data), `"data":"ab"`) || strings.Contains(string(data), `"crc"`) {
		t.Fatalf("Unexpected JSON %s", data)
	}
}
