// Package flow projects decoded pcap records down to a 5-tuple-plus-VLAN
// summary, composing the layer2/layer3/layer4 decoders, the first stage in
// the pipeline where decoded data is copied out of the input buffer rather
// than borrowed.
package flow

import (
	"net"
	"net/netip"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/netcap/pcapflow/pkg/layer2"
	"github.com/netcap/pcapflow/pkg/layer4"
	"github.com/netcap/pcapflow/pkg/pcapconfig"
	"github.com/netcap/pcapflow/pkg/pcaperrors"
	"github.com/netcap/pcapflow/pkg/pcaplog"
	"github.com/netcap/pcapflow/pkg/pcaprecord"
)

// Endpoint is one side of a flow's 5-tuple: an address and a port.
type Endpoint struct {
	IP   netip.Addr
	Port uint16
}

// Flow is the minimal projection a caller wants out of a captured frame:
// when it arrived, which MACs and VLAN it rode in on, and the 5-tuple it
// carried. Unlike every decoder layer above, its fields are owned copies —
// Flow is built at record-processing time and is expected to outlive the
// PcapRecord it was derived from.
type Flow struct {
	Timestamp time.Time
	SrcMAC    net.HardwareAddr
	DstMAC    net.HardwareAddr
	VID       uint16
	Protocol  layer4.Protocol
	Src       Endpoint
	Dst       Endpoint
}

// FromRecord decodes record's frame through the Ethernet/IP/TCP-UDP layers
// and projects the result into a Flow. unit selects how the record's raw
// timestamp fields are interpreted (spec.md §9 open question 1); opts
// supplies the VLAN/extension-header stacking limits.
func FromRecord(record pcaprecord.PcapRecord, unit pcaprecord.TimestampUnit, opts pcapconfig.DecodeOptions, logger *zap.Logger) (Flow, error) {
	logger = pcaplog.ForLayer(logger, "flow")

	eth, err := layer2.ParseEthernet(record.Frame, logger, opts.Limits.MaxVlanTags)
	if err != nil {
		return Flow{}, pcaperrors.Wrap(err, "parsing ethernet frame")
	}

	l2, err := eth.FlowInfo(logger, opts.Limits.MaxExtensionHeaders, opts.Strict)
	if err != nil {
		return Flow{}, pcaperrors.Wrap(err, "projecting flow info")
	}

	srcMAC := make(net.HardwareAddr, len(l2.SrcMAC))
	copy(srcMAC, l2.SrcMAC)
	dstMAC := make(net.HardwareAddr, len(l2.DstMAC))
	copy(dstMAC, l2.DstMAC)

	return Flow{
		Timestamp: record.Timestamp(unit),
		SrcMAC:    srcMAC,
		DstMAC:    dstMAC,
		VID:       l2.VID,
		Protocol:  l2.Layer3.Layer4.Protocol,
		Src:       Endpoint{IP: l2.Layer3.SrcIP, Port: l2.Layer3.Layer4.SrcPort},
		Dst:       Endpoint{IP: l2.Layer3.DstIP, Port: l2.Layer3.Layer4.DstPort},
	}, nil
}

// ConvertRecords projects a batch of records into flows. In lenient mode a
// record that fails to decode is skipped and logged; in strict mode the
// first error aborts the batch and is returned.
func ConvertRecords(records []pcaprecord.PcapRecord, unit pcaprecord.TimestampUnit, lenient bool, opts pcapconfig.DecodeOptions, logger *zap.Logger) ([]Flow, error) {
	logger = pcaplog.ForLayer(logger, "flow")

	flows := make([]Flow, 0, len(records))
	for i, record := range records {
		f, err := FromRecord(record, unit, opts, logger)
		if err != nil {
			if lenient {
				logger.Warn("skipping record that failed to convert", zap.Int("index", i), zap.Error(err))
				continue
			}
			return flows, err
		}
		flows = append(flows, f)
	}
	return flows, nil
}

// ConvertRecordsParallel behaves like ConvertRecords but partitions records
// across a bounded pool of workers bound by an errgroup.Group, per
// spec.md §5's note that batch conversion is trivially parallelized by
// partitioning the input record slice. Results preserve the input order.
// In strict mode, the first error any worker observes is returned; workers
// already in flight are allowed to finish but their results are discarded.
func ConvertRecordsParallel(records []pcaprecord.PcapRecord, unit pcaprecord.TimestampUnit, lenient bool, workers int, opts pcapconfig.DecodeOptions, logger *zap.Logger) ([]Flow, error) {
	logger = pcaplog.ForLayer(logger, "flow")

	if workers < 1 {
		workers = 1
	}

	results := make([]*Flow, len(records))
	g := new(errgroup.Group)
	g.SetLimit(workers)

	for i, record := range records {
		i, record := i, record
		g.Go(func() error {
			f, err := FromRecord(record, unit, opts, logger)
			if err != nil {
				if lenient {
					logger.Warn("skipping record that failed to convert", zap.Int("index", i), zap.Error(err))
					return nil
				}
				return err
			}
			results[i] = &f
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	flows := make([]Flow, 0, len(records))
	for _, f := range results {
		if f != nil {
			flows = append(flows, *f)
		}
	}
	return flows, nil
}
