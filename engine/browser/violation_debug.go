//go:build debug

package browser

import (
	"fmt"
	"log/slog"
)

// Debug builds stop at the first misuse of the window protocol.
func protocolViolation(_ *slog.Logger, op, reason string) {
	panic(fmt.Sprintf("browser: %s: %s", op, reason))
}
