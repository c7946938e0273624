package pcaprecord

import (
	"errors"
	"testing"

	"github.com/netcap/pcapflow/pkg/pcapendian"
	"github.com/netcap/pcapflow/pkg/pcaperrors"
)

// globalHeaderFixture builds a 24-byte pcap global header. Scenario S1
// (spec.md §8): big-endian magic, version 4.2, snaplen 1555, network 2.
func globalHeaderFixture(magic [4]byte) []byte {
	b := make([]byte, 24)
	copy(b[0:4], magic[:])
	b[4], b[5] = 0x00, 0x04 // version major 4
	b[6], b[7] = 0x00, 0x02 // version minor 2
	// thiszone = 0
	b[16], b[17], b[18], b[19] = 0x00, 0x00, 0x06, 0x13 // snaplen 1555
	b[20], b[21], b[22], b[23] = 0x00, 0x00, 0x00, 0x02 // linktype 2
	return b
}

func TestParseGlobalHeaderBigEndianMicro(t *testing.T) {
	b := globalHeaderFixture([4]byte{0xa1, 0xb2, 0xc3, 0xd4})

	h, rest, err := ParseGlobalHeader(b, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("expected no remaining bytes, got %d", len(rest))
	}
	if h.Endianness != pcapendian.BigEndian {
		t.Fatalf("expected BigEndian, got %v", h.Endianness)
	}
	if h.TimestampUnit != Microseconds {
		t.Fatalf("expected Microseconds, got %v", h.TimestampUnit)
	}
	if h.VersionMajor != 4 || h.VersionMinor != 2 {
		t.Fatalf("expected version 4.2, got %d.%d", h.VersionMajor, h.VersionMinor)
	}
	if h.SnapLen != 1555 {
		t.Fatalf("expected snaplen 1555, got %d", h.SnapLen)
	}
	if h.LinkType != 2 {
		t.Fatalf("expected linktype 2, got %d", h.LinkType)
	}
}

func TestParseGlobalHeaderLittleEndianNano(t *testing.T) {
	b := globalHeaderFixture([4]byte{0x4d, 0x3c, 0xb2, 0xa1})
	h, _, err := ParseGlobalHeader(b, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Endianness != pcapendian.LittleEndian {
		t.Fatalf("expected LittleEndian, got %v", h.Endianness)
	}
	if h.TimestampUnit != Nanoseconds {
		t.Fatalf("expected Nanoseconds, got %v", h.TimestampUnit)
	}
}

func TestParseGlobalHeaderBadMagic(t *testing.T) {
	b := globalHeaderFixture([4]byte{0xde, 0xad, 0xbe, 0xef})
	_, _, err := ParseGlobalHeader(b, nil)
	var decodeErr *pcaperrors.Error
	if !errors.As(err, &decodeErr) || decodeErr.Kind != pcaperrors.KindBadMagic {
		t.Fatalf("expected KindBadMagic, got %v", err)
	}
}

func TestParseGlobalHeaderTruncated(t *testing.T) {
	b := globalHeaderFixture([4]byte{0xa1, 0xb2, 0xc3, 0xd4})
	for n := 0; n < 24; n++ {
		_, _, err := ParseGlobalHeader(b[:n], nil)
		var decodeErr *pcaperrors.Error
		if !errors.As(err, &decodeErr) || decodeErr.Kind != pcaperrors.KindIncomplete {
			t.Fatalf("prefix length %d: expected KindIncomplete, got %v", n, err)
		}
	}
}
