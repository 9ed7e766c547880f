package logger

import (
	"fmt"
	log "log/slog"
	"strings"
)

// BadgerLogger 适配 badger.Logger 到 slog
type BadgerLogger struct {
	l *log.Logger
}

func NewBadgerLogger() *BadgerLogger {
	return &BadgerLogger{l: log.Default().With(log.String("component", "badger"))}
}

func (b *BadgerLogger) Errorf(format string, args ...interface{}) {
	b.l.Error(line(format, args))
}

func (b *BadgerLogger) Warningf(format string, args ...interface{}) {
	b.l.Warn(line(format, args))
}

func (b *BadgerLogger) Infof(format string, args ...interface{}) {
	b.l.Debug(line(format, args))
}

func (b *BadgerLogger) Debugf(format string, args ...interface{}) {
	b.l.Debug(line(format, args))
}

func line(format string, args []interface{}) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}
