// Package errs provides the error handling pipeline: a fixed taxonomy of
// error kinds with severities, classification of raw Go errors into it,
// per-kind throttling, bounded history with statistics, pluggable recovery
// strategies, and forwarding of serious errors to a telemetry reporter.
package errs

import (
	"fmt"
	"log/slog"
)

// Kind identifies a category of failure. Kinds are string-based for
// debuggability and natural JSON serialization.
type Kind string

const (
	KindNetwork        Kind = "network"
	KindTimeout        Kind = "timeout"
	KindValidation     Kind = "validation"
	KindNotFound       Kind = "not_found"
	KindUnauthorized   Kind = "unauthorized"
	KindForbidden      Kind = "forbidden"
	KindCancelled      Kind = "cancelled"
	KindStorage        Kind = "storage"
	KindServer         Kind = "server"
	KindProcessing     Kind = "processing"
	KindDatabase       Kind = "database"
	KindEncoding       Kind = "encoding"
	KindDecoding       Kind = "decoding"
	KindUnknown        Kind = "unknown"
	KindDataCorruption Kind = "data_corruption"
)

// Severity ranks how serious an error kind is. The ordering drives
// visibility (warning and above) and reporting (error and above).
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Level maps a severity to the slog level used when logging an accepted
// error. Critical has no slog counterpart and logs at error level; the
// severity attribute carries the distinction.
func (s Severity) Level() slog.Level {
	switch s {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// MarshalJSON renders the severity as its lowercase name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON parses a severity from its lowercase name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"info"`:
		*s = SeverityInfo
	case `"warning"`:
		*s = SeverityWarning
	case `"error"`:
		*s = SeverityError
	case `"critical"`:
		*s = SeverityCritical
	default:
		return fmt.Errorf("unknown severity %s", data)
	}
	return nil
}

// severityByKind is the fixed taxonomy mapping.
var severityByKind = map[Kind]Severity{
	KindNetwork:        SeverityWarning,
	KindTimeout:        SeverityWarning,
	KindValidation:     SeverityInfo,
	KindNotFound:       SeverityInfo,
	KindUnauthorized:   SeverityWarning,
	KindForbidden:      SeverityWarning,
	KindCancelled:      SeverityInfo,
	KindStorage:        SeverityError,
	KindServer:         SeverityError,
	KindProcessing:     SeverityError,
	KindDatabase:       SeverityError,
	KindEncoding:       SeverityWarning,
	KindDecoding:       SeverityWarning,
	KindUnknown:        SeverityCritical,
	KindDataCorruption: SeverityCritical,
}

// Severity returns the severity assigned to the kind. Kinds outside the
// taxonomy rank critical.
func (k Kind) Severity() Severity {
	if sev, ok := severityByKind[k]; ok {
		return sev
	}
	return SeverityCritical
}
