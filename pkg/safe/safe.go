package safe

import (
	"log/slog"
	"runtime/debug"
	"strings"
)

// Run executes fn and recovers from any panic it raises.
func Run(fn func()) {
	RunWithLog(fn, "safe.Run")
}

// RunWithLog is a wrapper that executes fn and logs any panic with its stack trace
func RunWithLog(fn func(), component string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic recovered",
				slog.Any("recover", r),
				slog.String("component", component),
				slog.String("stack", stackTrace(20)),
			)
		}
	}()

	fn()
}

func stackTrace(maxLines int) string {
	lines := strings.Split(string(debug.Stack()), "\n")
	var formatted []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		formatted = append(formatted, line)
		if len(formatted) == maxLines {
			formatted = append(formatted, "... (truncated)")
			break
		}
	}
	return strings.Join(formatted, "\n")
}
