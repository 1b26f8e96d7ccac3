// Package logging builds the JSON line logger shared by the API, the
// migration runner and the operations CLI.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"

	"staffingapi/internal/config"
)

// locationFormatter renders entry timestamps in a fixed location.
type locationFormatter struct {
	loc  *time.Location
	next logrus.Formatter
}

func (f locationFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Time = e.Time.In(f.loc)
	return f.next.Format(e)
}

// NewJSON returns a logger writing one JSON object per line to w.
// Keys follow the ts/level/msg convention used across the service logs.
func NewJSON(w io.Writer, loc *time.Location) *logrus.Logger {
	if loc == nil {
		loc = time.UTC
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(locationFormatter{
		loc: loc,
		next: &logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "ts",
				logrus.FieldKeyMsg:  "msg",
			},
		},
	})
	return l
}

// New builds the application logger from configuration. When a log file is
// configured, output is rotated by lumberjack instead of going to stdout.
func New(cfg config.LogConfig, loc *time.Location) *logrus.Logger {
	var w io.Writer = os.Stdout
	if cfg.File != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
	}

	l := NewJSON(w, loc)
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	return l
}
