//go:build !debug

package browser

import "log/slog"

func protocolViolation(log *slog.Logger, op, reason string) {
	log.Warn("protocol violation ignored", "op", op, "reason", reason)
}
