package layer4

import (
	"go.uber.org/zap"

	"github.com/netcap/pcapflow/pkg/pcapendian"
	"github.com/netcap/pcapflow/pkg/pcaperrors"
	"github.com/netcap/pcapflow/pkg/pcaplog"
)

// Tcp is a decoded TCP segment header. Options and Payload borrow from the
// input buffer; no bytes are copied during decode.
type Tcp struct {
	SrcPort    uint16
	DstPort    uint16
	Seq        uint32
	Ack        uint32
	DataOffset uint8 // in 4-byte words, minimum 5
	Flags      uint16
	Window     uint16
	Checksum   uint16
	Urgent     uint16
	Options    []byte
	Payload    []byte
}

// ParseTcp decodes a TCP header from b. Per spec.md §4.7: fixed 20-byte
// header, then (DataOffset*4 - 20) bytes of options, then the remainder as
// payload. Fails BadDataOffset if the data offset is below the 5-word
// minimum, Incomplete if the buffer is too short for the declared offset.
func ParseTcp(b []byte, logger *zap.Logger) (Tcp, []byte, error) {
	logger = pcaplog.ForLayer(logger, "layer4")
	pcaplog.Trace(logger, "parsing tcp header", zap.Int("available", len(b)))

	var t Tcp
	var rest []byte
	var err error

	if t.SrcPort, rest, err = pcapendian.Uint16(b); err != nil {
		return Tcp{}, nil, err
	}
	if t.DstPort, rest, err = pcapendian.Uint16(rest); err != nil {
		return Tcp{}, nil, err
	}
	if t.Seq, rest, err = pcapendian.Uint32(rest); err != nil {
		return Tcp{}, nil, err
	}
	if t.Ack, rest, err = pcapendian.Uint32(rest); err != nil {
		return Tcp{}, nil, err
	}

	var offsetFlagsByte uint8
	if offsetFlagsByte, rest, err = pcapendian.Uint8(rest); err != nil {
		return Tcp{}, nil, err
	}
	t.DataOffset = offsetFlagsByte >> 4
	if t.DataOffset < 5 {
		return Tcp{}, nil, pcaperrors.NewWithValue(pcaperrors.KindBadDataOffset, int64(t.DataOffset), "tcp data offset below minimum of 5")
	}

	var flagsLowByte uint8
	if flagsLowByte, rest, err = pcapendian.Uint8(rest); err != nil {
		return Tcp{}, nil, err
	}
	t.Flags = uint16(offsetFlagsByte&0x0f)<<8 | uint16(flagsLowByte)

	if t.Window, rest, err = pcapendian.Uint16(rest); err != nil {
		return Tcp{}, nil, err
	}
	if t.Checksum, rest, err = pcapendian.Uint16(rest); err != nil {
		return Tcp{}, nil, err
	}
	if t.Urgent, rest, err = pcapendian.Uint16(rest); err != nil {
		return Tcp{}, nil, err
	}

	optionsLen := int(t.DataOffset)*4 - 20
	if t.Options, rest, err = pcapendian.Take(rest, optionsLen); err != nil {
		return Tcp{}, nil, err
	}
	t.Payload = rest

	return t, nil, nil
}

// FlowInfo projects a decoded Tcp header into a FlowInfo.
func (t Tcp) FlowInfo() FlowInfo {
	return FlowInfo{Protocol: ProtocolTCP, SrcPort: t.SrcPort, DstPort: t.DstPort}
}
