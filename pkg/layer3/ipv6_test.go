package layer3

import (
	"encoding/binary"
	"errors"
	"net/netip"
	"testing"

	"github.com/netcap/pcapflow/pkg/pcaperrors"
)

func ipv6Header(nextHeader InternetProtocol, payloadLength uint16, src, dst [16]byte) []byte {
	h := make([]byte, 40)
	binary.BigEndian.PutUint32(h[0:4], 0x60000000) // version 6, class 0, flow label 0
	binary.BigEndian.PutUint16(h[4:6], payloadLength)
	h[6] = byte(nextHeader)
	h[7] = 64 // hop limit
	copy(h[8:24], src[:])
	copy(h[24:40], dst[:])
	return h
}

func TestParseIPv6DirectTCP(t *testing.T) {
	tcp := tcpSegmentFixture()
	header := ipv6Header(ProtoTCP, uint16(len(tcp)), [16]byte{0: 0x20, 15: 1}, [16]byte{0: 0x20, 15: 2})
	b := append(header, tcp...)

	ip, rest, err := ParseIPv6(b, nil, 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("expected no residue, got %d bytes", len(rest))
	}
	if ip.Protocol != ProtoTCP {
		t.Fatalf("expected terminal protocol TCP, got %v", ip.Protocol)
	}
	if len(ip.Extensions) != 0 {
		t.Fatalf("expected no extensions walked, got %v", ip.Extensions)
	}
	if ip.SrcIP != netip.AddrFrom16([16]byte{0: 0x20, 15: 1}) {
		t.Fatalf("unexpected SrcIP: %v", ip.SrcIP)
	}

	info, err := ip.FlowInfo(nil, true)
	if err != nil {
		t.Fatalf("unexpected error projecting FlowInfo: %v", err)
	}
	if info.Layer4.Protocol.String() != "TCP" {
		t.Fatalf("expected TCP protocol, got %v", info.Layer4.Protocol)
	}
}

func TestParseIPv6HopByHopThenUDP(t *testing.T) {
	udp := udpPayload(1234, 53, []byte("q"))

	// Hop-by-Hop: next header = UDP, hdr ext len = 0 (8 bytes total).
	hopByHop := make([]byte, 8)
	hopByHop[0] = byte(ProtoUDP)
	hopByHop[1] = 0

	payload := append(hopByHop, udp...)
	header := ipv6Header(ProtoHopByHop, uint16(len(payload)), [16]byte{}, [16]byte{})
	b := append(header, payload...)

	ip, rest, err := ParseIPv6(b, nil, 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("expected no residue, got %d bytes", len(rest))
	}
	if ip.Protocol != ProtoUDP {
		t.Fatalf("expected terminal protocol UDP, got %v", ip.Protocol)
	}
	if len(ip.Extensions) != 1 || ip.Extensions[0] != ProtoHopByHop {
		t.Fatalf("expected [HopByHop] walked, got %v", ip.Extensions)
	}
}

func TestParseIPv6HopByHopWithOptions(t *testing.T) {
	udp := udpPayload(1, 2, nil)

	// hdr ext len = 1 -> (1+1)*8 = 16 bytes total.
	hopByHop := make([]byte, 16)
	hopByHop[0] = byte(ProtoUDP)
	hopByHop[1] = 1

	payload := append(hopByHop, udp...)
	header := ipv6Header(ProtoHopByHop, uint16(len(payload)), [16]byte{}, [16]byte{})
	b := append(header, payload...)

	ip, _, err := ParseIPv6(b, nil, 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ip.Protocol != ProtoUDP {
		t.Fatalf("expected terminal protocol UDP, got %v", ip.Protocol)
	}
}

func TestParseIPv6FragmentIsFixedEightBytes(t *testing.T) {
	udp := udpPayload(1, 2, nil)

	fragment := make([]byte, 8)
	fragment[0] = byte(ProtoUDP)
	// bytes[1] is reserved for Fragment, not a length field.

	payload := append(fragment, udp...)
	header := ipv6Header(ProtoFragment, uint16(len(payload)), [16]byte{}, [16]byte{})
	b := append(header, payload...)

	ip, _, err := ParseIPv6(b, nil, 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ip.Extensions) != 1 || ip.Extensions[0] != ProtoFragment {
		t.Fatalf("expected [Fragment] walked, got %v", ip.Extensions)
	}
}

func TestParseIPv6AHLengthAccounting(t *testing.T) {
	udp := udpPayload(1, 2, nil)

	// AH: Payload Len in 4-octet units minus 2. Want total 12 bytes:
	// (payloadLenUnits+2)*4 = 12 -> payloadLenUnits = 1.
	ah := make([]byte, 12)
	ah[0] = byte(ProtoUDP)
	ah[1] = 1

	payload := append(ah, udp...)
	header := ipv6Header(ProtoAH, uint16(len(payload)), [16]byte{}, [16]byte{})
	b := append(header, payload...)

	ip, _, err := ParseIPv6(b, nil, 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ip.Protocol != ProtoUDP {
		t.Fatalf("expected terminal protocol UDP, got %v", ip.Protocol)
	}
}

func TestParseIPv6ESPIsTerminal(t *testing.T) {
	// ESP's content is opaque (encrypted); whatever follows is not walked.
	espBlob := []byte{0, 0, 0, 1, 0, 0, 0, 1, 0xde, 0xad, 0xbe, 0xef}
	header := ipv6Header(ProtoESP, uint16(len(espBlob)), [16]byte{}, [16]byte{})
	b := append(header, espBlob...)

	ip, rest, err := ParseIPv6(b, nil, 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("expected no residue, got %d bytes", len(rest))
	}
	if ip.Protocol != ProtoESP {
		t.Fatalf("expected terminal protocol ESP, got %v", ip.Protocol)
	}
	if string(ip.Payload) != string(espBlob) {
		t.Fatalf("expected ESP payload to be the full opaque blob")
	}
}

func TestParseIPv6ExtensionLimitExceeded(t *testing.T) {
	// Three chained Hop-by-Hop headers (each the minimal 8 bytes), limit 2.
	one := make([]byte, 8)
	one[0] = byte(ProtoHopByHop)
	two := make([]byte, 8)
	two[0] = byte(ProtoHopByHop)
	three := make([]byte, 8)
	three[0] = byte(ProtoUDP)

	payload := append(append(one, two...), three...)
	header := ipv6Header(ProtoHopByHop, uint16(len(payload)), [16]byte{}, [16]byte{})
	b := append(header, payload...)

	_, _, err := ParseIPv6(b, nil, 2)
	var decodeErr *pcaperrors.Error
	if !errors.As(err, &decodeErr) || decodeErr.Kind != pcaperrors.KindLimitExceeded {
		t.Fatalf("expected KindLimitExceeded, got %v", err)
	}
}

func TestParseIPv6BadVersion(t *testing.T) {
	header := ipv6Header(ProtoTCP, 0, [16]byte{}, [16]byte{})
	header[0] = 0x40 // version 4 in the ipv6 slot
	_, _, err := ParseIPv6(header, nil, 16)
	var decodeErr *pcaperrors.Error
	if !errors.As(err, &decodeErr) || decodeErr.Kind != pcaperrors.KindBadVersion {
		t.Fatalf("expected KindBadVersion, got %v", err)
	}
}

func TestParseIPv6TruncatedIsIncomplete(t *testing.T) {
	header := ipv6Header(ProtoTCP, 20, [16]byte{}, [16]byte{})
	_, _, err := ParseIPv6(header[:30], nil, 16)
	var decodeErr *pcaperrors.Error
	if !errors.As(err, &decodeErr) || decodeErr.Kind != pcaperrors.KindIncomplete {
		t.Fatalf("expected KindIncomplete, got %v", err)
	}
}

func tcpSegmentFixture() []byte {
	b := make([]byte, 20)
	binary.BigEndian.PutUint16(b[0:2], 443)
	binary.BigEndian.PutUint16(b[2:4], 51000)
	b[12] = 5 << 4 // data offset 5 words, no options
	return b
}
