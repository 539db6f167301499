package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyCommand    = "command"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyRule       = "rule"
	KeyNodeID     = "node_id"
	KeyBreadcrumb = "breadcrumb"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr { return slog.String(KeyRunID, id) }
func Command(name string) slog.Attr { return slog.String(KeyCommand, name) }
func Path(p string) slog.Attr { return slog.String(KeyPath, p) }
func File(f string) slog.Attr { return slog.String(KeyFile, f) }
func Rule(match string) slog.Attr { return slog.String(KeyRule, match) }
func NodeID(id string) slog.Attr { return slog.String(KeyNodeID, id) }
func Count(n int) slog.Attr { return slog.Int(KeyCount, n) }
func Breadcrumb(b string) slog.Attr { return slog.String(KeyBreadcrumb, b) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
