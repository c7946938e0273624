package layer3

import (
	"net/netip"

	"go.uber.org/zap"

	"github.com/netcap/pcapflow/pkg/pcapendian"
	"github.com/netcap/pcapflow/pkg/pcaperrors"
	"github.com/netcap/pcapflow/pkg/pcaplog"
)

// IPv6 is a decoded IPv6 header plus its extension-header chain collapsed
// down to the terminal (non-extension) protocol, per spec.md §4.6.
type IPv6 struct {
	Version       uint8
	TrafficClass  uint8
	FlowLabel     uint32
	PayloadLength uint16
	HopLimit      uint8
	SrcIP         netip.Addr
	DstIP         netip.Addr
	// Protocol is the terminal (non-extension) next-header value reached
	// after walking every extension header in the chain.
	Protocol InternetProtocol
	// Extensions records the chain actually walked, outermost first, for
	// callers that want to inspect it (flow projection does not).
	Extensions []InternetProtocol
	Payload    []byte
}

const ipv6HeaderLength = 40

// ParseIPv6 decodes a fixed 40-byte IPv6 header from b, then walks its
// extension-header chain per RFC 8200 until a terminal (non-extension)
// protocol is reached. Each extension's own length encoding is honored
// (spec.md §9 open question 2 — this corrects the original source's
// incorrect 1-byte-per-step shortcut). maxExtensions bounds the chain walk
// against a pathological or corrupt packet looping the chain forever.
// Fails BadVersion if the version nibble is not 6, Incomplete if the
// declared payload length, or any extension header's declared length,
// exceeds the supplied buffer.
func ParseIPv6(b []byte, logger *zap.Logger, maxExtensions int) (IPv6, []byte, error) {
	logger = pcaplog.ForLayer(logger, "layer3")
	pcaplog.Trace(logger, "parsing ipv6 header", zap.Int("available", len(b)))

	header, rest, err := pcapendian.Take(b, ipv6HeaderLength)
	if err != nil {
		return IPv6{}, nil, err
	}

	versionClassFlow := uint32(header[0])<<24 | uint32(header[1])<<16 | uint32(header[2])<<8 | uint32(header[3])
	version := uint8(versionClassFlow >> 28)
	if version != 6 {
		return IPv6{}, nil, pcaperrors.NewWithValue(pcaperrors.KindBadVersion, int64(version), "ipv6 version must be 6")
	}

	ip := IPv6{
		Version:      version,
		TrafficClass: uint8((versionClassFlow >> 20) & 0xff),
		FlowLabel:    versionClassFlow & 0x000fffff,
	}
	ip.PayloadLength = uint16(header[4])<<8 | uint16(header[5])
	nextHeader := InternetProtocol(header[6])
	ip.HopLimit = header[7]
	ip.SrcIP = netip.AddrFrom16([16]byte(header[8:24]))
	ip.DstIP = netip.AddrFrom16([16]byte(header[24:40]))

	// The payload region is bounded by the declared payload length, not by
	// whatever remains in the outer buffer (spec.md §3 invariant: a layer
	// hands its inner layer exactly its declared length).
	region, rest, err := pcapendian.Take(rest, int(ip.PayloadLength))
	if err != nil {
		return IPv6{}, nil, err
	}

	terminal, extensions, payload, err := walkExtensionChain(region, nextHeader, logger, maxExtensions)
	if err != nil {
		return IPv6{}, nil, err
	}
	ip.Protocol = terminal
	ip.Extensions = extensions
	ip.Payload = payload

	return ip, rest, nil
}

// walkExtensionChain steps through region's extension-header chain
// starting at next, honoring each extension type's own length encoding,
// until it reaches a non-extension protocol. It returns the terminal
// protocol, the ordered list of extension protocols walked, and whatever
// of region remains as the layer 4 payload.
func walkExtensionChain(region []byte, next InternetProtocol, logger *zap.Logger, maxExtensions int) (InternetProtocol, []InternetProtocol, []byte, error) {
	var walked []InternetProtocol

	for IsIPv6Extension(next) {
		if len(walked) >= maxExtensions {
			return 0, nil, nil, pcaperrors.NewWithValue(pcaperrors.KindLimitExceeded, int64(len(walked)), "ipv6 extension header chain exceeds configured limit")
		}
		pcaplog.Trace(logger, "walking ipv6 extension header", zap.String("protocol", next.String()), zap.Int("available", len(region)))
		walked = append(walked, next)

		if next == ProtoESP {
			// ESP encrypts everything after its SPI/sequence-number fields,
			// including the true next header, so the chain cannot be
			// walked any further without the decryption key. Treat ESP
			// itself as terminal with the remaining bytes as opaque
			// payload (spec.md §4.6 "AH/ESP have their own rules").
			return ProtoESP, walked, region, nil
		}

		if len(region) < 2 {
			return 0, nil, nil, pcaperrors.Incomplete(2 - len(region))
		}
		newNext := InternetProtocol(region[0])

		var extLen int
		switch next {
		case ProtoFragment:
			// Fragment header is always exactly 8 bytes.
			extLen = 8
		case ProtoAH:
			// AH: Payload Len is in 4-octet units, minus 2.
			payloadLenUnits := int(region[1])
			extLen = (payloadLenUnits + 2) * 4
		default:
			// Hop-by-Hop, Routing, Destination Options, Mobility: Hdr Ext
			// Len is in 8-octet units, not counting the first 8 octets.
			hdrExtLenUnits := int(region[1])
			extLen = (hdrExtLenUnits + 1) * 8
		}

		_, remainder, err := pcapendian.Take(region, extLen)
		if err != nil {
			return 0, nil, nil, err
		}

		region = remainder
		next = newNext
	}

	return next, walked, region, nil
}

// FlowInfo dispatches on the IPv6 chain's terminal protocol to the matching
// layer 4 decoder and projects the result into a FlowInfo. Per spec.md
// §4.8, only TCP and UDP produce a FlowInfo. strict controls whether
// residue left inside the payload after layer 4 decoding fails the
// projection (spec.md §9 open question 5).
func (ip IPv6) FlowInfo(logger *zap.Logger, strict bool) (FlowInfo, error) {
	l4, err := dispatchLayer4(ip.Protocol, ip.Payload, logger, strict)
	if err != nil {
		return FlowInfo{}, err
	}
	return FlowInfo{SrcIP: ip.SrcIP, DstIP: ip.DstIP, Layer4: l4}, nil
}
