package layer4

import (
	"go.uber.org/zap"

	"github.com/netcap/pcapflow/pkg/pcapendian"
	"github.com/netcap/pcapflow/pkg/pcaperrors"
	"github.com/netcap/pcapflow/pkg/pcaplog"
)

// Udp is a decoded UDP datagram header.
type Udp struct {
	SrcPort  uint16
	DstPort  uint16
	Length   uint16
	Checksum uint16
	Payload  []byte
}

// ParseUdp decodes a UDP header from b. Per spec.md §4.7: src port, dst
// port, length, checksum, then (length - 8) bytes of payload. Fails
// BadLength if the declared length is below the 8-byte minimum, Incomplete
// if the declared length exceeds the supplied buffer.
func ParseUdp(b []byte, logger *zap.Logger) (Udp, []byte, error) {
	logger = pcaplog.ForLayer(logger, "layer4")
	pcaplog.Trace(logger, "parsing udp header", zap.Int("available", len(b)))

	var u Udp
	var rest []byte
	var err error

	if u.SrcPort, rest, err = pcapendian.Uint16(b); err != nil {
		return Udp{}, nil, err
	}
	if u.DstPort, rest, err = pcapendian.Uint16(rest); err != nil {
		return Udp{}, nil, err
	}
	if u.Length, rest, err = pcapendian.Uint16(rest); err != nil {
		return Udp{}, nil, err
	}
	if u.Checksum, rest, err = pcapendian.Uint16(rest); err != nil {
		return Udp{}, nil, err
	}

	if u.Length < 8 {
		return Udp{}, nil, pcaperrors.NewWithValue(pcaperrors.KindBadLength, int64(u.Length), "udp length below minimum of 8")
	}

	payloadLen := int(u.Length) - 8
	if u.Payload, rest, err = pcapendian.Take(rest, payloadLen); err != nil {
		return Udp{}, nil, err
	}

	return u, rest, nil
}

// FlowInfo projects a decoded Udp header into a FlowInfo.
func (u Udp) FlowInfo() FlowInfo {
	return FlowInfo{Protocol: ProtocolUDP, SrcPort: u.SrcPort, DstPort: u.DstPort}
}
