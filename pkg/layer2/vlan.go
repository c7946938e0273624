package layer2

import "encoding/binary"

// VLAN tag protocol identifiers recognized in the stacking loop (spec.md
// §4.4): 802.1Q customer tags and 802.1ad (QinQ) service tags.
const (
	TPID8021Q  uint16 = 0x8100
	TPID8021ad uint16 = 0x88a8
)

// VlanTagKind distinguishes an 802.1Q customer VLAN tag from an 802.1ad
// service-provider tag. The original source collapses both into one
// reinterpreted value; this module keeps the distinction spec.md's
// glossary draws between "C-VLAN 0x8100" and "S-VLAN 0x88a8" (see
// SPEC_FULL.md §9).
type VlanTagKind int

const (
	VlanTagCustomer VlanTagKind = iota
	VlanTagServiceProvider
)

func vlanTagKind(tpid uint16) VlanTagKind {
	if tpid == TPID8021ad {
		return VlanTagServiceProvider
	}
	return VlanTagCustomer
}

// VlanTag is one stacked 802.1Q/802.1ad tag. Raw holds the 4 bytes that
// follow the TPID on the wire: 2 bytes of TCI (PCP+DEI+VID) followed by 2
// bytes naming the next tag or terminal EtherType.
type VlanTag struct {
	Kind VlanTagKind
	Raw  [4]byte
}

// tci returns the tag's 2-byte Tag Control Information field.
func (v VlanTag) tci() uint16 {
	return binary.BigEndian.Uint16(v.Raw[0:2])
}

// VID returns the tag's 12-bit VLAN identifier: the low 12 bits of the
// big-endian TCI. The original source instead reinterprets bytes 2-3 of
// the raw tag (the embedded next-tag/EtherType slot) as the VID, which is
// endianness-sensitive and wrong (spec.md §9 open question 3); this masks
// the correct field.
func (v VlanTag) VID() uint16 {
	return v.tci() & 0x0fff
}

// PCP returns the tag's 3-bit Priority Code Point.
func (v VlanTag) PCP() uint8 {
	return uint8(v.tci() >> 13)
}

// DEI returns the tag's 1-bit Drop Eligible Indicator.
func (v VlanTag) DEI() bool {
	return v.tci()&0x1000 != 0
}

// nextTag returns the 2-byte value embedded in bytes 2-3 of Raw: either
// another TPID (if the stack continues) or the frame's terminal EtherType.
func (v VlanTag) nextTag() uint16 {
	return binary.BigEndian.Uint16(v.Raw[2:4])
}
