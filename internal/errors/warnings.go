package errors

import (
	"fmt"
	"log/slog"
)

// WarningKind classifies a recoverable numerical condition.
type WarningKind string

const (
	WarnConvergence    WarningKind = "CONVERGENCE"
	WarnRankDeficiency WarningKind = "RANK_DEFICIENCY"
	WarnSeparation     WarningKind = "SEPARATION"
	WarnZeroVariance   WarningKind = "ZERO_VARIANCE"
	WarnUndefinedRate  WarningKind = "UNDEFINED_RATE"
	WarnEmptyVolume    WarningKind = "EMPTY_VOLUME"
)

// Warning is a non-fatal condition. The stage that raised it substituted a
// defined sentinel and carried on; the warning travels with the result so it
// reaches logs and reports.
type Warning struct {
	Kind    WarningKind            `json:"kind"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// NewWarning creates a warning of the given kind
func NewWarning(kind WarningKind, format string, args ...interface{}) Warning {
	return Warning{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// With returns a copy of the warning with an extra context entry
func (w Warning) With(key string, value interface{}) Warning {
	ctx := make(map[string]interface{}, len(w.Context)+1)
	for k, v := range w.Context {
		ctx[k] = v
	}
	ctx[key] = value
	w.Context = ctx
	return w
}

// String implements fmt.Stringer
func (w Warning) String() string {
	return fmt.Sprintf("%sWarning: %s", kindLabel(w.Kind), w.Message)
}

// LogValue implements slog.LogValuer
func (w Warning) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", string(w.Kind)),
		slog.String("message", w.Message),
	}
	for k, v := range w.Context {
		attrs = append(attrs, slog.Any(k, v))
	}
	return slog.GroupValue(attrs...)
}

// HasKind reports whether any warning in ws has the given kind.
func HasKind(ws []Warning, kind WarningKind) bool {
	for _, w := range ws {
		if w.Kind == kind {
			return true
		}
	}
	return false
}

func kindLabel(kind WarningKind) string {
	switch kind {
	case WarnConvergence:
		return "Convergence"
	case WarnRankDeficiency:
		return "RankDeficiency"
	case WarnSeparation:
		return "Separation"
	case WarnZeroVariance:
		return "ZeroVariance"
	case WarnUndefinedRate:
		return "UndefinedRate"
	case WarnEmptyVolume:
		return "EmptyVolume"
	default:
		return string(kind)
	}
}
