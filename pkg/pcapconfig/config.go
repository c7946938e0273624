// Package pcapconfig holds decode-time options. It shapes configuration
// data the way the teacher's cmd/telemetry-agent Config struct does
// (yaml-tagged, nested, with a documented zero-value default) without
// performing any file I/O itself — the caller owns reading bytes from
// wherever its configuration lives.
package pcapconfig

import "gopkg.in/yaml.v3"

// DecodeOptions controls the optional guards and strictness knobs a caller
// can apply across the decoder.
type DecodeOptions struct {
	// Strict gates the flow-projection residue check (spec.md §4.8,
	// §7 "IncompleteParse"): when true, residual bytes left inside the
	// Ethernet payload after IPv4/IPv6 decoding, or inside the IPv4/IPv6
	// payload after TCP/UDP decoding, fail flow.FromRecord with
	// IncompleteParse. When false, that residue is tolerated and silently
	// discarded instead. Either way, ConvertRecords' own lenient/strict
	// batch-level behavior (skip-and-continue vs. abort-on-first-error) is
	// independent of this flag.
	Strict bool `yaml:"strict"`

	// Limits bounds pathological inputs (a corrupt capture claiming an
	// unbounded VLAN or extension-header stack) without changing normal
	// decode semantics.
	Limits struct {
		MaxVlanTags        int `yaml:"max_vlan_tags"`
		MaxExtensionHeaders int `yaml:"max_extension_headers"`
	} `yaml:"limits"`
}

// DefaultOptions returns the zero-value-equivalent options a caller gets
// when it supplies no configuration: non-strict flow conversion, and
// generous but finite stacking limits that only guard against malformed
// input looping forever.
func DefaultOptions() DecodeOptions {
	opts := DecodeOptions{Strict: false}
	opts.Limits.MaxVlanTags = 8
	opts.Limits.MaxExtensionHeaders = 16
	return opts
}

// ParseOptions decodes a yaml document into DecodeOptions, starting from
// DefaultOptions so a partial document only overrides the fields it names.
func ParseOptions(data []byte) (DecodeOptions, error) {
	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return DecodeOptions{}, err
	}
	return opts, nil
}
