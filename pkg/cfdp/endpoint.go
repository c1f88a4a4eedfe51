// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cfdp

import (
	"fmt"
	"io"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Endpoint sends and receives Pdus over a Transport. Received datagrams which
// cannot be parsed are logged and dropped.
//
// An Endpoint supports one sending and one receiving goroutine at a time.
type Endpoint struct {
	transport Transport
	logger    *log.Entry
	pduChan   chan Pdu

	closeOnce sync.Once
	closedSyn chan struct{}
	closedAck chan struct{}
}

// NewEndpoint creates an Endpoint for a Transport and starts receiving. A nil
// logger falls back to logrus' standard logger.
func NewEndpoint(transport Transport, logger *log.Entry) *Endpoint {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}

	e := &Endpoint{
		transport: transport,
		logger:    logger,
		pduChan:   make(chan Pdu, 16),

		closedSyn: make(chan struct{}),
		closedAck: make(chan struct{}),
	}

	go e.handler()

	return e
}

func (e *Endpoint) handler() {
	defer close(e.closedAck)
	defer close(e.pduChan)

	for {
		data, err := e.transport.Receive()

		select {
		case <-e.closedSyn:
			e.logger.Debug("Received close signal, stopping handler")
			return
		default:
		}

		if err == io.EOF {
			e.logger.Info("Read EOF, stopping handler")
			return
		} else if err != nil {
			e.logger.WithError(err).Warn("Receiving from Transport errored")
			continue
		}

		pdu, err := ParsePdu(data)
		if err != nil {
			e.logger.WithError(err).WithField("length", len(data)).Warn("Dropping malformed PDU")
			continue
		}

		e.logger.WithField("pdu", pdu).Debug("Received PDU")

		select {
		case e.pduChan <- pdu:
		case <-e.closedSyn:
			return
		}
	}
}

// SendPdu encodes a Pdu and sends it over the Transport.
func (e *Endpoint) SendPdu(pdu Pdu) error {
	logger := e.logger.WithField("pdu", pdu)

	data, err := pdu.MarshalBinary()
	if err != nil {
		logger.WithError(err).Warn("Encoding PDU errored")
		return err
	}

	if err := e.transport.Send(data); err != nil {
		logger.WithError(err).Warn("Transmitting PDU errored")
		return fmt.Errorf("sending PDU: %w", err)
	}

	logger.Debug("Transmitted PDU")
	return nil
}

// ReceivePdu waits for the next valid Pdu. After the Transport has been
// closed or reached its end, io.EOF is returned.
func (e *Endpoint) ReceivePdu() (Pdu, error) {
	pdu, ok := <-e.pduChan
	if !ok {
		return Pdu{}, io.EOF
	}
	return pdu, nil
}

// Close the Endpoint and its Transport.
func (e *Endpoint) Close() (err error) {
	e.closeOnce.Do(func() {
		close(e.closedSyn)

		if err = e.transport.Close(); err != nil {
			e.logger.WithError(err).Warn("Closing Transport errored")
		}

		<-e.closedAck
	})
	return
}
