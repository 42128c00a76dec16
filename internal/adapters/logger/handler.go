package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"go.trai.ch/ipkg/internal/ui/output"
	"go.trai.ch/ipkg/internal/ui/style"
)

// PackageKey is the attribute naming the package a record is about.
// The pretty handler prints it as a prefix instead of a key=value pair.
const PackageKey = "package"

const redacted = "***"

// PrettyHandler is a slog.Handler producing one colored line per record:
// a level glyph, the package prefix, the message, then the remaining attributes muted.
type PrettyHandler struct {
	out    *termenv.Output
	level  slog.Leveler
	pkg    string
	attrs  []string
	prefix string
}

// NewPrettyHandler creates a new PrettyHandler writing to w.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{
		out:   output.New(w),
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and writes the record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	glyph, color := levelStyle(r.Level)

	pkg := h.pkg
	attrs := append([]string(nil), h.attrs...)
	r.Attrs(func(attr slog.Attr) bool {
		if name, ok := h.packageOf(attr); ok {
			pkg = name
			return true
		}
		attrs = append(attrs, h.format(attr))
		return true
	})

	var line strings.Builder
	if glyph != "" {
		line.WriteString(h.out.String(glyph + " ").Foreground(color).String())
	}
	if pkg != "" {
		line.WriteString(h.out.String(pkg + ": ").Foreground(termenv.RGBColor(string(style.Iris))).Bold().String())
	}
	line.WriteString(h.out.String(r.Message).Foreground(color).String())
	if len(attrs) > 0 {
		muted := h.out.String(" " + strings.Join(attrs, " ")).Foreground(termenv.RGBColor(string(style.Slate)))
		line.WriteString(muted.String())
	}
	line.WriteByte('\n')

	_, err := h.out.WriteString(line.String())
	return err
}

func levelStyle(level slog.Level) (string, termenv.Color) {
	switch {
	case level >= slog.LevelError:
		return style.Cross, termenv.RGBColor(string(style.Red))
	case level >= slog.LevelWarn:
		return style.Warning, termenv.RGBColor(string(style.Yellow))
	case level < slog.LevelInfo:
		return style.Dot, termenv.RGBColor(string(style.Slate))
	default:
		return "", termenv.RGBColor(string(style.Slate))
	}
}

// packageOf extracts the package prefix. Only an ungrouped PackageKey qualifies.
func (h *PrettyHandler) packageOf(attr slog.Attr) (string, bool) {
	if h.prefix != "" || attr.Key != PackageKey {
		return "", false
	}
	return attr.Value.Resolve().String(), true
}

// format renders attr as key=value. Credentials are never printed.
func (h *PrettyHandler) format(attr slog.Attr) string {
	key := h.prefix + attr.Key
	if strings.Contains(strings.ToLower(attr.Key), "token") {
		return key + "=" + redacted
	}
	return key + "=" + attr.Value.Resolve().String()
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	for _, attr := range attrs {
		if name, ok := h.packageOf(attr); ok {
			next.pkg = name
			continue
		}
		next.attrs = append(next.attrs, h.format(attr))
	}
	return next
}

// WithGroup returns a new Handler qualifying later keys with name.
// Nested groups join with a dot.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.prefix = h.prefix + name + "."
	return next
}

func (h *PrettyHandler) clone() *PrettyHandler {
	return &PrettyHandler{
		out:    h.out,
		level:  h.level,
		pkg:    h.pkg,
		attrs:  append([]string(nil), h.attrs...),
		prefix: h.prefix,
	}
}
