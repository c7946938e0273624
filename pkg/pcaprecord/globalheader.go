// Package pcaprecord decodes the pcap file layer (global header) and the
// per-record layer (timestamp + captured/original length + raw frame
// bytes), per spec.md §4.2–§4.3.
package pcaprecord

import (
	"go.uber.org/zap"

	"github.com/netcap/pcapflow/pkg/pcapendian"
	"github.com/netcap/pcapflow/pkg/pcaperrors"
	"github.com/netcap/pcapflow/pkg/pcaplog"
)

// TimestampUnit names the unit a pcap variant's per-record fractional
// timestamp field is expressed in, selected by which magic value matched
// (spec.md §9 open question 1).
type TimestampUnit int

const (
	Microseconds TimestampUnit = iota
	Nanoseconds
)

// Canonical libpcap magic byte sequences (spec.md §4.1). Each selects both
// the byte order used for every subsequent pcap-layer header field and the
// per-record fractional timestamp unit; every protocol header above the
// pcap layer remains big-endian regardless of this choice.
var (
	magicBigMicro    = [4]byte{0xa1, 0xb2, 0xc3, 0xd4}
	magicLittleMicro = [4]byte{0xd4, 0xc3, 0xb2, 0xa1}
	magicBigNano     = [4]byte{0xa1, 0xb2, 0x3c, 0x4d}
	magicLittleNano  = [4]byte{0x4d, 0x3c, 0xb2, 0xa1}
)

// GlobalHeader is the 24-byte pcap file header. Endianness and
// TimestampUnit are derived from the magic value and are not present on
// the wire as separate fields.
type GlobalHeader struct {
	VersionMajor uint16
	VersionMinor uint16
	ThisZone     int32 // GMT to local correction, seconds
	SigFigs      uint32
	SnapLen      uint32
	LinkType     uint32

	Endianness    pcapendian.Order
	TimestampUnit TimestampUnit
}

// ParseGlobalHeader decodes a pcap global header from b per spec.md §4.2.
// Fails BadMagic if the first 4 bytes do not match any known libpcap magic
// variant, Incomplete if fewer than 24 bytes are supplied.
func ParseGlobalHeader(b []byte, logger *zap.Logger) (GlobalHeader, []byte, error) {
	logger = pcaplog.ForLayer(logger, "file")

	magicBytes, rest, err := pcapendian.Take(b, 4)
	if err != nil {
		return GlobalHeader{}, nil, err
	}

	var order pcapendian.Order
	var unit TimestampUnit
	switch [4]byte(magicBytes) {
	case magicBigMicro:
		order, unit = pcapendian.BigEndian, Microseconds
	case magicLittleMicro:
		order, unit = pcapendian.LittleEndian, Microseconds
	case magicBigNano:
		order, unit = pcapendian.BigEndian, Nanoseconds
	case magicLittleNano:
		order, unit = pcapendian.LittleEndian, Nanoseconds
	default:
		return GlobalHeader{}, nil, pcaperrors.New(pcaperrors.KindBadMagic, "unrecognized pcap magic number")
	}

	logger.Debug("discovered pcap endianness", zap.Int("order", int(order)), zap.Int("timestamp_unit", int(unit)))

	h := GlobalHeader{Endianness: order, TimestampUnit: unit}

	if h.VersionMajor, rest, err = pcapendian.OrderedUint16(rest, order); err != nil {
		return GlobalHeader{}, nil, err
	}
	if h.VersionMinor, rest, err = pcapendian.OrderedUint16(rest, order); err != nil {
		return GlobalHeader{}, nil, err
	}
	if h.ThisZone, rest, err = pcapendian.OrderedInt32(rest, order); err != nil {
		return GlobalHeader{}, nil, err
	}
	if h.SigFigs, rest, err = pcapendian.OrderedUint32(rest, order); err != nil {
		return GlobalHeader{}, nil, err
	}
	if h.SnapLen, rest, err = pcapendian.OrderedUint32(rest, order); err != nil {
		return GlobalHeader{}, nil, err
	}
	if h.LinkType, rest, err = pcapendian.OrderedUint32(rest, order); err != nil {
		return GlobalHeader{}, nil, err
	}

	logger.Debug("parsed global header",
		zap.Uint16("version_major", h.VersionMajor),
		zap.Uint16("version_minor", h.VersionMinor),
		zap.Uint32("snaplen", h.SnapLen),
		zap.Uint32("link_type", h.LinkType))

	return h, rest, nil
}
