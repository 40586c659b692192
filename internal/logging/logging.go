// Package logging builds the process logger and the coloured console printer.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// New creates a *slog.Logger writing to w and sets it as the default logger.
//
// Format "json" produces JSON lines; anything else produces text.
// Level is one of: debug, info, warn, error (case-insensitive); defaults to info.
func New(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Console prints user-facing status lines.
type Console struct {
	out io.Writer
}

// NewConsole returns a Console on out. Colour is turned off when out is not
// a terminal.
func NewConsole(out io.Writer) *Console {
	if f, ok := out.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		color.NoColor = true
	}
	return &Console{out: out}
}

// Stage announces the start of a step.
func (c *Console) Stage(format string, args ...any) {
	fmt.Fprintln(c.out, color.CyanString(format, args...))
}

// Info prints a plain line.
func (c *Console) Info(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

// Success prints a green line.
func (c *Console) Success(format string, args ...any) {
	fmt.Fprintln(c.out, color.GreenString(format, args...))
}

// Warn prints a yellow line.
func (c *Console) Warn(format string, args ...any) {
	fmt.Fprintln(c.out, color.YellowString(format, args...))
}

// Fail prints a red line.
func (c *Console) Fail(format string, args ...any) {
	fmt.Fprintln(c.out, color.RedString(format, args...))
}
