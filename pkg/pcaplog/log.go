// Package pcaplog wires a zap.Logger into the decoder layers without the
// decoder owning a concrete sink. Routing (where log lines end up) is the
// caller's responsibility, per spec.md §6 — this package only standardizes
// how each layer names and tags the logger it is handed.
package pcaplog

import "go.uber.org/zap"

// Nop is the default logger used whenever a caller does not supply one. It
// discards everything, matching the decoder's "logging is an external
// collaborator" contract.
var Nop = zap.NewNop()

// ForLayer returns a named child logger scoped to one decoder layer
// ("layer2", "layer3", "layer4", "record", "file", "flow"), mirroring the
// teacher's logger.Named(...) convention for its collector subsystems. A
// nil base logger is treated as Nop so every call site can pass through an
// optional logger without nil-checking first.
func ForLayer(base *zap.Logger, layer string) *zap.Logger {
	if base == nil {
		base = Nop
	}
	return base.Named(layer)
}

// Trace emits the decoder's finest-grained tracing level. zap has no
// dedicated Trace level, so this logs at Debug with a "trace" marker field,
// the distinction spec.md §6 draws between "trace" and "debug" severities.
func Trace(logger *zap.Logger, msg string, fields ...zap.Field) {
	logger.Debug(msg, append(fields, zap.Bool("trace", true))...)
}
