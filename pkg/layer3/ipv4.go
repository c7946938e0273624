package layer3

import (
	"net/netip"

	"go.uber.org/zap"

	"github.com/netcap/pcapflow/pkg/layer4"
	"github.com/netcap/pcapflow/pkg/pcapendian"
	"github.com/netcap/pcapflow/pkg/pcaperrors"
	"github.com/netcap/pcapflow/pkg/pcaplog"
)

// IPv4 is a decoded IPv4 header per RFC 791.
type IPv4 struct {
	Version     uint8
	IHL         uint8 // header length in 4-byte words, minimum 5
	TOS         uint8
	TotalLength uint16
	ID          uint16
	FlagsFrag   uint16
	TTL         uint8
	Protocol    InternetProtocol
	Checksum    uint16
	SrcIP       netip.Addr
	DstIP       netip.Addr
	Options     []byte
	Payload     []byte
}

// ParseIPv4 decodes an IPv4 header from b per spec.md §4.5. Fails
// BadVersion if the version nibble is not 4, BadHeaderLength if the IHL is
// below the 5-word minimum, Incomplete if the declared total length exceeds
// the supplied buffer.
func ParseIPv4(b []byte, logger *zap.Logger) (IPv4, []byte, error) {
	logger = pcaplog.ForLayer(logger, "layer3")
	pcaplog.Trace(logger, "parsing ipv4 header", zap.Int("available", len(b)))

	var ip IPv4
	var rest []byte
	var err error

	var versionIHL uint8
	if versionIHL, rest, err = pcapendian.Uint8(b); err != nil {
		return IPv4{}, nil, err
	}
	ip.Version = versionIHL >> 4
	ip.IHL = versionIHL & 0x0f

	if ip.Version != 4 {
		return IPv4{}, nil, pcaperrors.NewWithValue(pcaperrors.KindBadVersion, int64(ip.Version), "ipv4 version must be 4")
	}
	if ip.IHL < 5 {
		return IPv4{}, nil, pcaperrors.NewWithValue(pcaperrors.KindBadHeaderLength, int64(ip.IHL), "ipv4 IHL below minimum of 5")
	}

	if ip.TOS, rest, err = pcapendian.Uint8(rest); err != nil {
		return IPv4{}, nil, err
	}
	if ip.TotalLength, rest, err = pcapendian.Uint16(rest); err != nil {
		return IPv4{}, nil, err
	}
	if ip.ID, rest, err = pcapendian.Uint16(rest); err != nil {
		return IPv4{}, nil, err
	}
	if ip.FlagsFrag, rest, err = pcapendian.Uint16(rest); err != nil {
		return IPv4{}, nil, err
	}
	if ip.TTL, rest, err = pcapendian.Uint8(rest); err != nil {
		return IPv4{}, nil, err
	}

	var proto uint8
	if proto, rest, err = pcapendian.Uint8(rest); err != nil {
		return IPv4{}, nil, err
	}
	ip.Protocol = InternetProtocol(proto)

	if ip.Checksum, rest, err = pcapendian.Uint16(rest); err != nil {
		return IPv4{}, nil, err
	}

	var srcBytes, dstBytes []byte
	if srcBytes, rest, err = pcapendian.Take(rest, 4); err != nil {
		return IPv4{}, nil, err
	}
	ip.SrcIP = netip.AddrFrom4([4]byte(srcBytes))
	if dstBytes, rest, err = pcapendian.Take(rest, 4); err != nil {
		return IPv4{}, nil, err
	}
	ip.DstIP = netip.AddrFrom4([4]byte(dstBytes))

	optionsLen := int(ip.IHL)*4 - 20
	if ip.Options, rest, err = pcapendian.Take(rest, optionsLen); err != nil {
		return IPv4{}, nil, err
	}

	if int(ip.TotalLength) < int(ip.IHL)*4 {
		return IPv4{}, nil, pcaperrors.NewWithValue(pcaperrors.KindBadHeaderLength, int64(ip.TotalLength), "ipv4 total length shorter than header length")
	}
	payloadLen := int(ip.TotalLength) - int(ip.IHL)*4
	if ip.Payload, rest, err = pcapendian.Take(rest, payloadLen); err != nil {
		return IPv4{}, nil, err
	}

	return ip, rest, nil
}

// FlowInfo dispatches on the IPv4 protocol field to the matching layer 4
// decoder and projects the result into a FlowInfo. Per spec.md §4.8, only
// TCP and UDP produce a FlowInfo; anything else yields UnsupportedL4.
// Residue left over inside the IPv4 payload after decoding the layer 4
// header fails with IncompleteParse when strict is true (spec.md §9 open
// question 5); when strict is false it is tolerated and silently discarded.
func (ip IPv4) FlowInfo(logger *zap.Logger, strict bool) (FlowInfo, error) {
	l4, err := dispatchLayer4(ip.Protocol, ip.Payload, logger, strict)
	if err != nil {
		return FlowInfo{}, err
	}
	return FlowInfo{SrcIP: ip.SrcIP, DstIP: ip.DstIP, Layer4: l4}, nil
}

func dispatchLayer4(proto InternetProtocol, payload []byte, logger *zap.Logger, strict bool) (layer4.FlowInfo, error) {
	switch proto {
	case ProtoTCP:
		tcp, rest, err := layer4.ParseTcp(payload, logger)
		if err != nil {
			return layer4.FlowInfo{}, pcaperrors.Wrap(err, "parsing tcp payload")
		}
		if strict && len(rest) != 0 {
			return layer4.FlowInfo{}, pcaperrors.IncompleteParse(len(rest))
		}
		return tcp.FlowInfo(), nil
	case ProtoUDP:
		udp, rest, err := layer4.ParseUdp(payload, logger)
		if err != nil {
			return layer4.FlowInfo{}, pcaperrors.Wrap(err, "parsing udp payload")
		}
		if strict && len(rest) != 0 {
			return layer4.FlowInfo{}, pcaperrors.IncompleteParse(len(rest))
		}
		return udp.FlowInfo(), nil
	default:
		return layer4.FlowInfo{}, pcaperrors.NewWithValue(pcaperrors.KindUnsupportedL4, int64(proto), "layer4 protocol unsupported for flow projection")
	}
}
