// Package logging builds the structured logger shared by the client and the
// reference server.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options select level and sink. File, when set, wins over Output and is
// rotated by size.
type Options struct {
	Level  string
	File   string
	Output io.Writer
}

// New returns a JSON logger. An unknown level falls back to info.
func New(opt Options) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "ts",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	switch {
	case strings.TrimSpace(opt.File) != "":
		l.SetOutput(&lumberjack.Logger{
			Filename:   opt.File,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	case opt.Output != nil:
		l.SetOutput(opt.Output)
	default:
		l.SetOutput(io.Discard)
	}

	l.SetLevel(logrus.InfoLevel)
	if opt.Level != "" {
		if lvl, err := logrus.ParseLevel(opt.Level); err == nil {
			l.SetLevel(lvl)
		}
	}
	return l
}
