// Package pcaperrors defines the error taxonomy shared by every decoder
// layer: a small set of well-known kinds, each optionally wrapping a cause
// from the layer below.
package pcaperrors

import (
	"errors"
	"fmt"
)

// Kind identifies the class of decode failure. It does not identify which
// layer produced it; callers that need that should match on the wrapped
// cause chain with errors.As.
type Kind int

const (
	// KindIncomplete means the buffer ended mid-structure. Value reports
	// how many additional bytes would have been required to continue.
	KindIncomplete Kind = iota
	// KindBadMagic means the pcap global header's magic number did not
	// match any known libpcap variant.
	KindBadMagic
	// KindBadVersion means an IP header declared a version other than the
	// one its parser expects (4 for IPv4, 6 for IPv6).
	KindBadVersion
	// KindBadHeaderLength means an IPv4 IHL was below the minimum of 5, or
	// the IPv4 total length was shorter than the header length IHL declares.
	KindBadHeaderLength
	// KindBadDataOffset means a TCP data offset was below the minimum of 5.
	KindBadDataOffset
	// KindBadLength means a UDP length field was below the 8-byte minimum.
	KindBadLength
	// KindUnknownEtherType means the Ethernet terminal type was neither a
	// known L3 type, a VLAN tag, nor a length-encoded payload.
	KindUnknownEtherType
	// KindUnsupportedL3 means the Ethernet payload's protocol is not one
	// flow projection can build from (anything but IPv4/IPv6).
	KindUnsupportedL3
	// KindUnsupportedL4 means the L3 payload's protocol is not one flow
	// projection can build from (anything but TCP/UDP).
	KindUnsupportedL4
	// KindIncompleteParse means an inner layer left residual bytes inside
	// the outer layer's declared region.
	KindIncompleteParse
	// KindFlowParse wraps a lower-layer error encountered while building a
	// Flow, preserving the chain.
	KindFlowParse
	// KindLimitExceeded means a configured safety guard (pcapconfig's
	// MaxVlanTags or MaxExtensionHeaders) was tripped by a pathological or
	// corrupt input. This kind has no equivalent in spec.md's error
	// taxonomy — it exists purely to bound the decoder's VLAN/extension
	// stacking loops against malformed input that would otherwise spin
	// until the buffer is exhausted.
	KindLimitExceeded
)

func (k Kind) String() string {
	switch k {
	case KindIncomplete:
		return "incomplete"
	case KindBadMagic:
		return "bad magic"
	case KindBadVersion:
		return "bad version"
	case KindBadHeaderLength:
		return "bad header length"
	case KindBadDataOffset:
		return "bad data offset"
	case KindBadLength:
		return "bad length"
	case KindUnknownEtherType:
		return "unknown ethertype"
	case KindUnsupportedL3:
		return "unsupported layer 3 protocol"
	case KindUnsupportedL4:
		return "unsupported layer 4 protocol"
	case KindIncompleteParse:
		return "incomplete parse"
	case KindFlowParse:
		return "flow parse failure"
	case KindLimitExceeded:
		return "configured limit exceeded"
	default:
		return "unknown error kind"
	}
}

// Error is the concrete error type returned by every decoder function. It
// carries the offending kind plus whatever context (a byte count, a raw
// protocol value) explains why that kind fired, and optionally wraps a
// cause from an inner layer.
type Error struct {
	Kind  Kind
	Value int64  // offending value or needed-byte count, kind-dependent
	Note  string // short human-readable context, e.g. a field name
	Cause error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Note != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Note)
	}
	if e.Kind == KindIncomplete {
		msg = fmt.Sprintf("%s (needed %d more bytes)", msg, e.Value)
	} else if e.Kind == KindIncompleteParse {
		msg = fmt.Sprintf("%s (%d bytes remain)", msg, e.Value)
	} else if e.Value != 0 && e.Note == "" {
		msg = fmt.Sprintf("%s (value=%d)", msg, e.Value)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target's Kind matches e's Kind, so callers can write
// errors.Is(err, pcaperrors.Incomplete(0)) style checks against a kind
// regardless of the Value/Note/Cause carried on either side.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// Incomplete builds a KindIncomplete error reporting that needed more
// bytes were required to continue the current structure.
func Incomplete(needed int) *Error {
	return &Error{Kind: KindIncomplete, Value: int64(needed)}
}

// IncompleteParse builds a KindIncompleteParse error reporting that
// remaining residual bytes were left unconsumed inside an outer layer's
// declared region.
func IncompleteParse(remaining int) *Error {
	return &Error{Kind: KindIncompleteParse, Value: int64(remaining)}
}

// New builds an error of the given kind with a note and no cause.
func New(kind Kind, note string) *Error {
	return &Error{Kind: kind, Note: note}
}

// NewWithValue builds an error of the given kind carrying an offending
// value (a protocol discriminant, a declared length, ...).
func NewWithValue(kind Kind, value int64, note string) *Error {
	return &Error{Kind: kind, Value: value, Note: note}
}

// Wrap builds a KindFlowParse error chaining cause, matching the source's
// "preserve the chain" propagation policy for Flow construction.
func Wrap(cause error, note string) *Error {
	return &Error{Kind: KindFlowParse, Note: note, Cause: cause}
}
