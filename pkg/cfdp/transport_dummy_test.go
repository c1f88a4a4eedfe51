// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cfdp

import (
	"fmt"
	"io"
	"sync"
)

// dummyHub connects multiple dummyTransports and helps mocking a network.
type dummyHub struct {
	sync.Mutex
	transports []*dummyTransport

	datagramCounter int
	datagramDrop    int
}

// newDummyHub creates a new dummyHub.
func newDummyHub() *dummyHub {
	return &dummyHub{}
}

// newDummyHubDrop creates a new dummyHub which drops each nth datagram.
func newDummyHubDrop(n int) *dummyHub {
	return &dummyHub{datagramDrop: n}
}

// connect a dummyTransport to this dummyHub. This method is called from the newDummyTransport function.
func (dh *dummyHub) connect(t *dummyTransport) {
	dh.Lock()
	defer dh.Unlock()

	dh.transports = append(dh.transports, t)
}

// receive a datagram from sender and distribute it to all other dummyTransports.
func (dh *dummyHub) receive(sender *dummyTransport, data []byte) {
	dh.Lock()
	defer dh.Unlock()

	dh.datagramCounter++
	if dh.datagramDrop != 0 && dh.datagramCounter%dh.datagramDrop == 0 {
		return
	}

	for _, t := range dh.transports {
		if t != sender {
			t.deliver(append([]byte(nil), data...))
		}
	}
}

// dummyTransport is a mocking Transport used for testing.
type dummyTransport struct {
	name   string
	hub    *dummyHub
	inChan chan []byte

	closeOnce sync.Once
	closed    chan struct{}
}

// newDummyTransport creates a new dummyTransport and connects itself to a dummyHub.
func newDummyTransport(name string, hub *dummyHub) *dummyTransport {
	t := &dummyTransport{
		name:   name,
		hub:    hub,
		inChan: make(chan []byte, 64),
		closed: make(chan struct{}),
	}
	hub.connect(t)

	return t
}

// deliver a datagram from a dummyHub to this dummyTransport.
func (t *dummyTransport) deliver(data []byte) {
	t.inChan <- data
}

func (t *dummyTransport) Send(data []byte) error {
	select {
	case <-t.closed:
		return fmt.Errorf("%v is closed", t)
	default:
	}

	t.hub.receive(t, data)
	return nil
}

func (t *dummyTransport) Receive() ([]byte, error) {
	select {
	case data := <-t.inChan:
		return data, nil
	case <-t.closed:
		return nil, io.EOF
	}
}

func (t *dummyTransport) Close() error {
	t.closeOnce.Do(func() { close(t.closed) })
	return nil
}

func (t *dummyTransport) String() string {
	return fmt.Sprintf("dummytransport/%s", t.name)
}
