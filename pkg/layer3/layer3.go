// Package layer3 decodes IPv4 and IPv6 headers, including IPv6's
// extension-header chain, and projects either into a FlowInfo for flow
// construction.
package layer3

import (
	"net/netip"

	"github.com/netcap/pcapflow/pkg/layer4"
)

// InternetProtocol is an IANA protocol number, used both as an IPv4
// "protocol" field and an IPv6 "next header" field.
type InternetProtocol uint8

// Protocol numbers this decoder recognizes, per spec.md §4.6 and the IANA
// protocol number registry.
const (
	ProtoHopByHop          InternetProtocol = 0
	ProtoICMP              InternetProtocol = 1
	ProtoTCP               InternetProtocol = 6
	ProtoUDP               InternetProtocol = 17
	ProtoRouting           InternetProtocol = 43
	ProtoFragment          InternetProtocol = 44
	ProtoESP               InternetProtocol = 50
	ProtoAH                InternetProtocol = 51
	ProtoDestinationOptions InternetProtocol = 60
	ProtoMobility          InternetProtocol = 135
	ProtoNoNextHeader      InternetProtocol = 59
)

// IsIPv6Extension reports whether proto is one of the IPv6 extension header
// types the chain walk must step through rather than treat as terminal
// (spec.md §4.6).
func IsIPv6Extension(proto InternetProtocol) bool {
	switch proto {
	case ProtoHopByHop, ProtoRouting, ProtoFragment, ProtoDestinationOptions, ProtoAH, ProtoESP, ProtoMobility:
		return true
	default:
		return false
	}
}

func (p InternetProtocol) String() string {
	switch p {
	case ProtoHopByHop:
		return "Hop-by-Hop Options"
	case ProtoICMP:
		return "ICMP"
	case ProtoTCP:
		return "TCP"
	case ProtoUDP:
		return "UDP"
	case ProtoRouting:
		return "Routing"
	case ProtoFragment:
		return "Fragment"
	case ProtoESP:
		return "ESP"
	case ProtoAH:
		return "AH"
	case ProtoDestinationOptions:
		return "Destination Options"
	case ProtoMobility:
		return "Mobility"
	case ProtoNoNextHeader:
		return "No Next Header"
	default:
		return "Unknown"
	}
}

// FlowInfo is the minimal projection of a layer 3 header a Flow needs: the
// two addresses (as a tagged v4/v6 union via netip.Addr) plus the embedded
// layer 4 projection.
type FlowInfo struct {
	SrcIP  netip.Addr
	DstIP  netip.Addr
	Layer4 layer4.FlowInfo
}
