// Package pcapendian provides the primitive readers every decoder layer is
// built from: fixed-width integer reads in an explicitly chosen byte order,
// fixed-length byte array takes, and bounds-checked slicing. Every function
// here returns either the decoded value plus the remaining slice, or a
// pcaperrors.Error distinguishing "incomplete" (need more bytes) from any
// structural failure detected by the caller.
package pcapendian

import (
	"encoding/binary"

	"github.com/netcap/pcapflow/pkg/pcaperrors"
)

// Order selects the byte order used to decode a pcap global/record header.
// Every protocol header at layer 2 and above is always big-endian network
// byte order regardless of this value (spec.md §4.1).
type Order int

const (
	// BigEndian decodes pcap headers as big-endian (magic byte sequence
	// a1 b2 c3 d4, or a1 b2 3c 4d for the nanosecond variant).
	BigEndian Order = iota
	// LittleEndian decodes pcap headers as little-endian (the common case
	// for captures written on x86 hosts).
	LittleEndian
)

func (o Order) byteOrder() binary.ByteOrder {
	if o == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// Take returns the first n bytes of b and the remainder, or an Incomplete
// error naming how many more bytes would have been needed.
func Take(b []byte, n int) (head, rest []byte, err error) {
	if len(b) < n {
		return nil, nil, pcaperrors.Incomplete(n - len(b))
	}
	return b[:n], b[n:], nil
}

// Uint8 reads one byte.
func Uint8(b []byte) (v uint8, rest []byte, err error) {
	head, rest, err := Take(b, 1)
	if err != nil {
		return 0, nil, err
	}
	return head[0], rest, nil
}

// Uint16 reads a 16-bit integer in network (big-endian) byte order, the
// fixed order used by every protocol header above the pcap record layer.
func Uint16(b []byte) (v uint16, rest []byte, err error) {
	head, rest, err := Take(b, 2)
	if err != nil {
		return 0, nil, err
	}
	return binary.BigEndian.Uint16(head), rest, nil
}

// Uint32 reads a 32-bit integer in network (big-endian) byte order.
func Uint32(b []byte) (v uint32, rest []byte, err error) {
	head, rest, err := Take(b, 4)
	if err != nil {
		return 0, nil, err
	}
	return binary.BigEndian.Uint32(head), rest, nil
}

// OrderedUint16 reads a 16-bit integer using the given pcap header byte
// order. Only the global/record header fields use this; everything above
// Ethernet uses Uint16/Uint32 (always big-endian).
func OrderedUint16(b []byte, order Order) (v uint16, rest []byte, err error) {
	head, rest, err := Take(b, 2)
	if err != nil {
		return 0, nil, err
	}
	return order.byteOrder().Uint16(head), rest, nil
}

// OrderedUint32 reads a 32-bit integer using the given pcap header byte
// order.
func OrderedUint32(b []byte, order Order) (v uint32, rest []byte, err error) {
	head, rest, err := Take(b, 4)
	if err != nil {
		return 0, nil, err
	}
	return order.byteOrder().Uint32(head), rest, nil
}

// OrderedInt32 reads a signed 32-bit integer using the given pcap header
// byte order (used for the global header's signed timezone offset).
func OrderedInt32(b []byte, order Order) (v int32, rest []byte, err error) {
	u, rest, err := OrderedUint32(b, order)
	if err != nil {
		return 0, nil, err
	}
	return int32(u), rest, nil
}
