// Package layer2 decodes Ethernet II frames, including zero or more
// stacked 802.1Q/802.1ad VLAN tags, and projects the result into a
// Layer2FlowInfo for flow construction.
package layer2

import (
	"net"

	"go.uber.org/zap"

	"github.com/netcap/pcapflow/pkg/layer3"
	"github.com/netcap/pcapflow/pkg/pcapendian"
	"github.com/netcap/pcapflow/pkg/pcaperrors"
	"github.com/netcap/pcapflow/pkg/pcaplog"
)

const macLength = 6
const vlanTagLength = 4
const ethernetMaxPayloadLength = 1500

// L3Kind names a terminal EtherType that identifies an upper-layer
// protocol, as opposed to a length-encoded Ethernet II payload.
type L3Kind int

const (
	L3IPv4 L3Kind = iota
	L3IPv6
	L3ARP
	L3LLDP
)

func (k L3Kind) String() string {
	switch k {
	case L3IPv4:
		return "IPv4"
	case L3IPv6:
		return "IPv6"
	case L3ARP:
		return "ARP"
	case L3LLDP:
		return "LLDP"
	default:
		return "unknown"
	}
}

// Known L3 EtherType values, per spec.md §4.4.
const (
	etherTypeIPv4 uint16 = 0x0800
	etherTypeARP  uint16 = 0x0806
	etherTypeIPv6 uint16 = 0x86dd
	etherTypeLLDP uint16 = 0x88cc
)

// EtherTypeKind classifies the terminal EtherType value an Ethernet frame
// ends its header chain with.
type EtherTypeKind int

const (
	// EtherTypePayloadLength marks an Ethernet II frame that uses the
	// EtherType slot to encode a payload length (value <= 1500) rather
	// than a protocol identifier.
	EtherTypePayloadLength EtherTypeKind = iota
	// EtherTypeL3 marks a recognized upper-layer protocol identifier.
	EtherTypeL3
	// EtherTypeUnknown marks a value that is neither a known L3 protocol
	// nor a valid payload length.
	EtherTypeUnknown
)

// EtherType is the terminal value ending an Ethernet header's EtherType
// chain (spec.md §4.4), discriminated by Kind.
type EtherType struct {
	Kind  EtherTypeKind
	L3    L3Kind // meaningful when Kind == EtherTypeL3
	Value uint16 // the raw 16-bit value, always populated
}

func classifyEtherType(value uint16) EtherType {
	switch value {
	case etherTypeIPv4:
		return EtherType{Kind: EtherTypeL3, L3: L3IPv4, Value: value}
	case etherTypeIPv6:
		return EtherType{Kind: EtherTypeL3, L3: L3IPv6, Value: value}
	case etherTypeARP:
		return EtherType{Kind: EtherTypeL3, L3: L3ARP, Value: value}
	case etherTypeLLDP:
		return EtherType{Kind: EtherTypeL3, L3: L3LLDP, Value: value}
	default:
		if value <= ethernetMaxPayloadLength {
			return EtherType{Kind: EtherTypePayloadLength, Value: value}
		}
		return EtherType{Kind: EtherTypeUnknown, Value: value}
	}
}

// Ethernet is a decoded Ethernet II frame: source/destination MAC, zero or
// more stacked VLAN tags (outermost first), a terminal EtherType, and the
// full remaining payload.
type Ethernet struct {
	DstMAC    net.HardwareAddr
	SrcMAC    net.HardwareAddr
	VLANs     []VlanTag
	EtherType EtherType
	Payload   []byte
}

// VID returns the outermost VLAN tag's VID, or 0 when the frame carries no
// VLAN tag (spec.md §4.4 vlan_id() accessor).
func (e Ethernet) VID() uint16 {
	if len(e.VLANs) == 0 {
		return 0
	}
	return e.VLANs[0].VID()
}

// ParseEthernet decodes an Ethernet II frame from b per spec.md §4.4.
// maxVlanTags bounds the stacking loop against a pathological or corrupt
// frame claiming an unbounded tag stack; pcapconfig.DefaultOptions()
// supplies a sane default. The decoded Ethernet value's Payload always
// spans the remainder of b — Ethernet II frames do not declare their own
// payload length when type-encoded, so nothing is left as "rest".
func ParseEthernet(b []byte, logger *zap.Logger, maxVlanTags int) (Ethernet, error) {
	logger = pcaplog.ForLayer(logger, "layer2")
	pcaplog.Trace(logger, "parsing ethernet frame", zap.Int("available", len(b)))

	dstBytes, rest, err := pcapendian.Take(b, macLength)
	if err != nil {
		return Ethernet{}, err
	}
	srcBytes, rest, err := pcapendian.Take(rest, macLength)
	if err != nil {
		return Ethernet{}, err
	}

	raw, rest, err := pcapendian.Uint16(rest)
	if err != nil {
		return Ethernet{}, err
	}

	var vlans []VlanTag
	for raw == TPID8021Q || raw == TPID8021ad {
		if len(vlans) >= maxVlanTags {
			return Ethernet{}, pcaperrors.NewWithValue(pcaperrors.KindLimitExceeded, int64(len(vlans)), "vlan tag stack exceeds configured limit")
		}
		var tagBytes []byte
		tagBytes, rest, err = pcapendian.Take(rest, vlanTagLength)
		if err != nil {
			return Ethernet{}, err
		}
		tag := VlanTag{Kind: vlanTagKind(raw), Raw: [4]byte(tagBytes)}
		vlans = append(vlans, tag)
		raw = tag.nextTag()
	}

	etherType := classifyEtherType(raw)
	if etherType.Kind == EtherTypeUnknown {
		pcaplog.ForLayer(logger, "layer2").Warn("unrecognized ethertype", zap.Uint16("value", raw))
	}

	return Ethernet{
		DstMAC:    net.HardwareAddr(dstBytes),
		SrcMAC:    net.HardwareAddr(srcBytes),
		VLANs:     vlans,
		EtherType: etherType,
		Payload:   rest,
	}, nil
}

// FlowInfo dispatches on the frame's terminal L3 EtherType to the matching
// layer 3 decoder and projects the result into a Layer2FlowInfo. Per
// spec.md §4.8, only IPv4 and IPv6 produce a flow; anything else
// (including ARP and LLDP, which are recognized but never projected —
// spec.md §9 open question 4) yields UnsupportedL3. Residual bytes left
// inside the Ethernet payload after layer 3 decoding fail with
// IncompleteParse when strict is true (spec.md §9 open question 5); when
// strict is false they are tolerated and silently discarded.
func (e Ethernet) FlowInfo(logger *zap.Logger, maxExtensions int, strict bool) (Layer2FlowInfo, error) {
	if e.EtherType.Kind != EtherTypeL3 {
		return Layer2FlowInfo{}, pcaperrors.NewWithValue(pcaperrors.KindUnsupportedL3, int64(e.EtherType.Value), "ethernet payload is not a recognized layer 3 protocol")
	}

	var l3 layer3.FlowInfo
	var err error
	switch e.EtherType.L3 {
	case L3IPv4:
		var ip layer3.IPv4
		var rest []byte
		ip, rest, err = layer3.ParseIPv4(e.Payload, logger)
		if err != nil {
			return Layer2FlowInfo{}, pcaperrors.Wrap(err, "parsing ipv4 payload")
		}
		if strict && len(rest) != 0 {
			return Layer2FlowInfo{}, pcaperrors.IncompleteParse(len(rest))
		}
		l3, err = ip.FlowInfo(logger, strict)
	case L3IPv6:
		var ip layer3.IPv6
		var rest []byte
		ip, rest, err = layer3.ParseIPv6(e.Payload, logger, maxExtensions)
		if err != nil {
			return Layer2FlowInfo{}, pcaperrors.Wrap(err, "parsing ipv6 payload")
		}
		if strict && len(rest) != 0 {
			return Layer2FlowInfo{}, pcaperrors.IncompleteParse(len(rest))
		}
		l3, err = ip.FlowInfo(logger, strict)
	default:
		return Layer2FlowInfo{}, pcaperrors.NewWithValue(pcaperrors.KindUnsupportedL3, int64(e.EtherType.Value), "ethernet payload is not a recognized layer 3 protocol")
	}
	if err != nil {
		return Layer2FlowInfo{}, err
	}

	return Layer2FlowInfo{
		SrcMAC: e.SrcMAC,
		DstMAC: e.DstMAC,
		VID:    e.VID(),
		Layer3: l3,
	}, nil
}

// Layer2FlowInfo is the minimal projection of an Ethernet frame a Flow
// needs: the two MAC addresses, the outermost VLAN id, and the embedded
// layer 3 projection.
type Layer2FlowInfo struct {
	SrcMAC net.HardwareAddr
	DstMAC net.HardwareAddr
	VID    uint16
	Layer3 layer3.FlowInfo
}
