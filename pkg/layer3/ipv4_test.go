package layer3

import (
	"encoding/binary"
	"errors"
	"net/netip"
	"testing"

	"github.com/netcap/pcapflow/pkg/pcaperrors"
)

func udpPayload(srcPort, dstPort uint16, body []byte) []byte {
	b := make([]byte, 8+len(body))
	binary.BigEndian.PutUint16(b[0:2], srcPort)
	binary.BigEndian.PutUint16(b[2:4], dstPort)
	binary.BigEndian.PutUint16(b[4:6], uint16(8+len(body)))
	copy(b[8:], body)
	return b
}

func ipv4Fixture(proto InternetProtocol, src, dst [4]byte, payload []byte) []byte {
	totalLen := 20 + len(payload)
	b := make([]byte, totalLen)
	b[0] = 0x45 // version 4, IHL 5
	binary.BigEndian.PutUint16(b[2:4], uint16(totalLen))
	b[8] = 64 // TTL
	b[9] = byte(proto)
	copy(b[12:16], src[:])
	copy(b[16:20], dst[:])
	copy(b[20:], payload)
	return b
}

func TestParseIPv4WithUDP(t *testing.T) {
	payload := udpPayload(5353, 53, []byte("query"))
	b := ipv4Fixture(ProtoUDP, [4]byte{192, 168, 0, 1}, [4]byte{192, 168, 0, 2}, payload)

	ip, rest, err := ParseIPv4(b, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("expected no residue, got %d bytes", len(rest))
	}
	if ip.SrcIP != netip.AddrFrom4([4]byte{192, 168, 0, 1}) {
		t.Fatalf("unexpected SrcIP: %v", ip.SrcIP)
	}

	info, err := ip.FlowInfo(nil, true)
	if err != nil {
		t.Fatalf("unexpected error projecting FlowInfo: %v", err)
	}
	if info.Layer4.SrcPort != 5353 || info.Layer4.DstPort != 53 {
		t.Fatalf("unexpected layer4 ports: %+v", info.Layer4)
	}
}

func TestParseIPv4WithOptions(t *testing.T) {
	payload := udpPayload(1, 2, []byte("x"))
	optionBytes := []byte{0, 0, 0, 0} // 1 extra 32-bit word of options
	totalLen := 24 + len(payload)
	b := make([]byte, totalLen)
	b[0] = 0x46 // IHL 6 words = 24 bytes
	binary.BigEndian.PutUint16(b[2:4], uint16(totalLen))
	b[9] = byte(ProtoUDP)
	copy(b[20:24], optionBytes)
	copy(b[24:], payload)

	ip, _, err := ParseIPv4(b, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ip.Options) != 4 {
		t.Fatalf("expected 4 option bytes, got %d", len(ip.Options))
	}
}

func TestParseIPv4BadVersion(t *testing.T) {
	b := ipv4Fixture(ProtoUDP, [4]byte{}, [4]byte{}, udpPayload(1, 2, nil))
	b[0] = 0x55 // version 5
	_, _, err := ParseIPv4(b, nil)
	var decodeErr *pcaperrors.Error
	if !errors.As(err, &decodeErr) || decodeErr.Kind != pcaperrors.KindBadVersion {
		t.Fatalf("expected KindBadVersion, got %v", err)
	}
}

func TestParseIPv4BadHeaderLength(t *testing.T) {
	b := ipv4Fixture(ProtoUDP, [4]byte{}, [4]byte{}, udpPayload(1, 2, nil))
	b[0] = 0x44 // IHL 4, below the minimum
	_, _, err := ParseIPv4(b, nil)
	var decodeErr *pcaperrors.Error
	if !errors.As(err, &decodeErr) || decodeErr.Kind != pcaperrors.KindBadHeaderLength {
		t.Fatalf("expected KindBadHeaderLength, got %v", err)
	}
}

func TestParseIPv4UnsupportedL4(t *testing.T) {
	b := ipv4Fixture(ProtoICMP, [4]byte{1, 2, 3, 4}, [4]byte{5, 6, 7, 8}, []byte{0, 0, 0, 0})
	ip, _, err := ParseIPv4(b, nil)
	if err != nil {
		t.Fatalf("unexpected error parsing header: %v", err)
	}
	_, err = ip.FlowInfo(nil, true)
	var decodeErr *pcaperrors.Error
	if !errors.As(err, &decodeErr) || decodeErr.Kind != pcaperrors.KindUnsupportedL4 {
		t.Fatalf("expected KindUnsupportedL4, got %v", err)
	}
}

func TestParseIPv4TruncatedPrefixesAreIncomplete(t *testing.T) {
	payload := udpPayload(1, 2, []byte("abcdef"))
	b := ipv4Fixture(ProtoUDP, [4]byte{1, 1, 1, 1}, [4]byte{2, 2, 2, 2}, payload)

	for n := 0; n < len(b); n++ {
		_, _, err := ParseIPv4(b[:n], nil)
		if err == nil {
			continue // a short prefix may still fully decode a minimal header
		}
		var decodeErr *pcaperrors.Error
		if !errors.As(err, &decodeErr) || decodeErr.Kind != pcaperrors.KindIncomplete {
			t.Fatalf("prefix length %d: expected KindIncomplete or nil, got %v", n, err)
		}
	}
}
