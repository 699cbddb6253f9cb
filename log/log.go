// Package log provides the daemon's structured logging. Output goes to
// stdout so journald picks it up when running under systemd.
package log

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// The active logger is published through an atomic pointer so a reload can
// change the level while other goroutines write. nil until Init runs; every
// helper is a no-op then.
var active atomic.Pointer[zerolog.Logger]

// ParseLevel maps a config log_level value to a zerolog level. Accepts the
// standard severity names case-insensitively, plus "warning" as an alias.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

func Init(level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	l := zerolog.New(consoleWriter).With().Timestamp().Int("pid", os.Getpid()).Logger().Level(lvl)
	active.Store(&l)
	return nil
}

// SetLevel adjusts verbosity at runtime, used when a reload changes log_level.
func SetLevel(level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	if cur := active.Load(); cur != nil {
		l := cur.Level(lvl)
		active.Store(&l)
	}
	return nil
}

func Debugf(format string, args ...any) {
	if l := active.Load(); l != nil {
		l.Debug().Msg(fmt.Sprintf(format, args...))
	}
}

func Info(msg string) {
	if l := active.Load(); l != nil {
		l.Info().Msg(msg)
	}
}

func Infof(format string, args ...any) {
	if l := active.Load(); l != nil {
		l.Info().Msg(fmt.Sprintf(format, args...))
	}
}

func Warnf(format string, args ...any) {
	if l := active.Load(); l != nil {
		l.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func Errorf(format string, args ...any) {
	if l := active.Load(); l != nil {
		l.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Detection(label string, score float64) {
	l := active.Load()
	if l == nil {
		return
	}
	l.Info().
		Str("wakeword", label).
		Float64("score", score).
		Msg("detection")
}

func Dispatch(label, command string) {
	l := active.Load()
	if l == nil {
		return
	}
	l.Info().
		Str("wakeword", label).
		Str("command", command).
		Msg("dispatch")
}

func DispatchFailed(label, command string, err error) {
	l := active.Load()
	if l == nil {
		return
	}
	l.Warn().
		Str("wakeword", label).
		Str("command", command).
		Err(err).
		Msg("dispatch_failed")
}

func ReloadApplied(path string, labels int) {
	l := active.Load()
	if l == nil {
		return
	}
	l.Info().
		Str("config", path).
		Int("wakewords", labels).
		Msg("reload_applied")
}

// ReloadRejected is always emitted at error level: the user must be able to
// tell that their edit had no effect and the old configuration stays active.
func ReloadRejected(path string, err error) {
	l := active.Load()
	if l == nil {
		return
	}
	l.Error().
		Str("config", path).
		Err(err).
		Msg("reload_rejected: previous configuration remains active")
}

func DeviceFault(err error) {
	if l := active.Load(); l != nil {
		l.Error().Err(err).Msg("device_fault")
	}
}
