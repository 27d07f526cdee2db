// Package protocol defines the line protocol of the sink's ingest listener.
// Used to enforce incoming and outgoing messages.
package protocol

import (
	"errors"
)

const (
	Unknown = iota
	// Put carries "<destination> <json object>"; the object supplies value
	// fields only.
	Put
	// Send carries a full record envelope with destination, key and value.
	Send
	// Ping is a connection health probe.
	Ping
)

var (
	// ErrUnknown is returned when the operation is not part of the protocol
	ErrUnknown = errors.New("unknown sink protocol")
)

// Decode decodes a buffer into a sink protocol operation and returns the payload
func Decode(buf []byte) (int, []byte, error) {
	if len(buf) < 4 { // Minimum length for protocols
		return Unknown, nil, ErrUnknown
	}

	// Early return based on first byte
	switch buf[0] {
	case 'P':
		if buf[1] == 'U' && buf[2] == 'T' && buf[3] == ' ' {
			return Put, buf[4:], nil
		}
		if buf[1] == 'I' && buf[2] == 'N' && buf[3] == 'G' {
			return Ping, nil, nil
		}
	case 'S': // SEND
		if len(buf) >= 5 && buf[1] == 'E' && buf[2] == 'N' && buf[3] == 'D' && buf[4] == ' ' {
			return Send, buf[5:], nil
		}
	}

	return Unknown, nil, ErrUnknown
}
