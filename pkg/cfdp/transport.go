// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cfdp

// Transport moves encoded PDUs as datagrams, one PDU per datagram. Address
// resolution and delivery guarantees are up to the implementation.
type Transport interface {
	// Send transmits one encoded PDU. This method might block.
	Send([]byte) error

	// Receive waits for the next datagram. This method blocks. After Close,
	// Receive must return io.EOF.
	Receive() ([]byte, error)

	// Close this Transport and unblock pending Receive calls.
	Close() error
}
