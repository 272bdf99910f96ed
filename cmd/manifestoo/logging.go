// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"

	"github.com/manifestoo/manifestoo/internal/config"
)

// newLogHandler returns a charmbracelet/log handler writing to w at level.
// Library packages log through slog, so installing it as the slog default
// styles their warnings too.
func newLogHandler(w io.Writer, level config.LogLevel) slog.Handler {
	return log.NewWithOptions(w, log.Options{
		Level:           charmLevel(level),
		ReportTimestamp: level == config.LogLevelDebug,
		Prefix:          "manifestoo",
	})
}

func charmLevel(level config.LogLevel) log.Level {
	switch level {
	case config.LogLevelDebug:
		return log.DebugLevel
	case config.LogLevelInfo:
		return log.InfoLevel
	case config.LogLevelError:
		return log.ErrorLevel
	default:
		return log.WarnLevel
	}
}
