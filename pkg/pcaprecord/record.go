package pcaprecord

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/netcap/pcapflow/pkg/pcapendian"
	"github.com/netcap/pcapflow/pkg/pcaperrors"
	"github.com/netcap/pcapflow/pkg/pcaplog"
)

// PcapRecord is one pcap-format record: a timestamp, the captured and
// original frame lengths, and the captured frame bytes. Frame borrows
// directly from the buffer ParseRecord was given.
type PcapRecord struct {
	TsSeconds uint32
	TsFrac    uint32 // microseconds or nanoseconds, per the owning GlobalHeader's TimestampUnit
	InclLen   uint32 // bytes of Frame actually captured
	OrigLen   uint32 // bytes the frame occupied on the wire
	Frame     []byte
}

// Timestamp normalizes TsSeconds/TsFrac into a time.Time using unit to
// interpret the fractional field (spec.md §9 open question 1).
func (r PcapRecord) Timestamp(unit TimestampUnit) time.Time {
	if unit == Nanoseconds {
		return time.Unix(int64(r.TsSeconds), int64(r.TsFrac))
	}
	return time.Unix(int64(r.TsSeconds), int64(r.TsFrac)*int64(time.Microsecond))
}

// ParseRecord decodes a single pcap record header and its frame from b,
// per spec.md §4.3. Fails Incomplete if incl_len exceeds the remaining
// buffer.
func ParseRecord(b []byte, order pcapendian.Order, logger *zap.Logger) (PcapRecord, []byte, error) {
	logger = pcaplog.ForLayer(logger, "record")

	var r PcapRecord
	var rest []byte
	var err error

	if r.TsSeconds, rest, err = pcapendian.OrderedUint32(b, order); err != nil {
		return PcapRecord{}, nil, err
	}
	if r.TsFrac, rest, err = pcapendian.OrderedUint32(rest, order); err != nil {
		return PcapRecord{}, nil, err
	}
	if r.InclLen, rest, err = pcapendian.OrderedUint32(rest, order); err != nil {
		return PcapRecord{}, nil, err
	}
	if r.OrigLen, rest, err = pcapendian.OrderedUint32(rest, order); err != nil {
		return PcapRecord{}, nil, err
	}

	if len(rest) < int(r.InclLen) {
		return PcapRecord{}, nil, pcaperrors.Incomplete(int(r.InclLen) - len(rest))
	}
	r.Frame, rest, err = pcapendian.Take(rest, int(r.InclLen))
	if err != nil {
		return PcapRecord{}, nil, err
	}

	pcaplog.Trace(logger, "parsed record", zap.Uint32("incl_len", r.InclLen), zap.Uint32("orig_len", r.OrigLen))

	return r, rest, nil
}

// ParseRecords decodes a sequence of pcap records from b until either the
// buffer is exhausted or a tail Incomplete is reached (spec.md §4.3: this
// is treated as graceful end-of-stream, not an error). Any other error
// aborts the loop and is returned immediately alongside the records
// decoded so far.
func ParseRecords(b []byte, order pcapendian.Order, logger *zap.Logger) ([]PcapRecord, []byte, error) {
	logger = pcaplog.ForLayer(logger, "record")

	var records []PcapRecord
	current := b

	for {
		pcaplog.Trace(logger, "record loop", zap.Int("remaining", len(current)))

		if len(current) == 0 {
			break
		}

		record, rest, err := ParseRecord(current, order, logger)
		if err != nil {
			var decodeErr *pcaperrors.Error
			if errors.As(err, &decodeErr) && decodeErr.Kind == pcaperrors.KindIncomplete {
				logger.Debug("incomplete record at tail, stopping gracefully", zap.Int("remaining", len(current)))
				break
			}
			return records, current, err
		}

		records = append(records, record)
		current = rest
	}

	return records, current, nil
}
