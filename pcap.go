// Package pcapflow decodes libpcap capture buffers into structured records
// and projects them into flows. It composes pcaprecord (file and record
// headers), layer2/layer3/layer4 (frame decoding), and flow (5-tuple
// projection) behind the package-level entry points a caller needs: parse a
// whole buffer, or parse records incrementally against an already-known
// GlobalHeader.
package pcapflow

import (
	"go.uber.org/zap"

	"github.com/netcap/pcapflow/pkg/flow"
	"github.com/netcap/pcapflow/pkg/pcapconfig"
	"github.com/netcap/pcapflow/pkg/pcapendian"
	"github.com/netcap/pcapflow/pkg/pcaprecord"
)

// Capture is a fully decoded pcap buffer: the file header plus every record
// successfully decoded from it.
type Capture struct {
	Header  pcaprecord.GlobalHeader
	Records []pcaprecord.PcapRecord
}

// ParseFile decodes a complete pcap buffer: the global header followed by
// its record stream. Any bytes left after the last fully-decoded record are
// returned as rest (spec.md §6 ParseFile).
func ParseFile(b []byte, logger *zap.Logger) (Capture, []byte, error) {
	header, rest, err := pcaprecord.ParseGlobalHeader(b, logger)
	if err != nil {
		return Capture{}, nil, err
	}

	records, rest, err := pcaprecord.ParseRecords(rest, header.Endianness, logger)
	if err != nil {
		return Capture{}, rest, err
	}

	return Capture{Header: header, Records: records}, rest, nil
}

// ParseRecords decodes a sequence of pcap records from b using order,
// stopping gracefully at a truncated tail record (spec.md §6 ParseRecords).
// Use this when the GlobalHeader has already been parsed separately.
func ParseRecords(b []byte, order pcapendian.Order, logger *zap.Logger) ([]pcaprecord.PcapRecord, []byte, error) {
	return pcaprecord.ParseRecords(b, order, logger)
}

// ParseRecord decodes a single pcap record from b using order (spec.md §6
// ParseRecord).
func ParseRecord(b []byte, order pcapendian.Order, logger *zap.Logger) (pcaprecord.PcapRecord, []byte, error) {
	return pcaprecord.ParseRecord(b, order, logger)
}

// ConvertRecords projects a Capture's records into flows using opts.
// Convenience wrapper over flow.ConvertRecords bound to the Capture's own
// GlobalHeader timestamp unit.
func (c Capture) ConvertRecords(lenient bool, opts pcapconfig.DecodeOptions, logger *zap.Logger) ([]flow.Flow, error) {
	return flow.ConvertRecords(c.Records, c.Header.TimestampUnit, lenient, opts, logger)
}

// ConvertRecordsParallel is ConvertRecords partitioned across workers
// workers (spec.md §6 ConvertRecordsParallel, SPEC_FULL.md §5.1).
func (c Capture) ConvertRecordsParallel(lenient bool, workers int, opts pcapconfig.DecodeOptions, logger *zap.Logger) ([]flow.Flow, error) {
	return flow.ConvertRecordsParallel(c.Records, c.Header.TimestampUnit, lenient, workers, opts, logger)
}
