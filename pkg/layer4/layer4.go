// Package layer4 decodes TCP and UDP headers and projects either into a
// FlowInfo for flow construction.
package layer4

// Protocol identifies which layer 4 decoder produced a FlowInfo.
type Protocol int

const (
	// ProtocolTCP marks a FlowInfo built from a Tcp header.
	ProtocolTCP Protocol = iota
	// ProtocolUDP marks a FlowInfo built from a Udp header.
	ProtocolUDP
)

func (p Protocol) String() string {
	switch p {
	case ProtocolTCP:
		return "TCP"
	case ProtocolUDP:
		return "UDP"
	default:
		return "unknown"
	}
}

// FlowInfo is the minimal projection of a layer 4 header a Flow needs: the
// two ports plus which protocol produced them.
type FlowInfo struct {
	Protocol Protocol
	SrcPort  uint16
	DstPort  uint16
}
