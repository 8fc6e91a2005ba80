// Package logging configures the process wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
)

// Options selects the level and destination of the log.
type Options struct {
	Level string
	// File, when set, receives the log through a rotating writer in
	// addition to stderr.
	File        string
	RotateEvery time.Duration
	MaxAge      time.Duration
}

// LineFormatter renders one entry per line:
//
//	[time] [level] [id] message key=value ...
//
// id is the request id when the entry carries one.
type LineFormatter struct{}

func (f *LineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	id, _ := entry.Data["request_id"].(string)
	if id == "" {
		id = "-"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] [%s] %s",
		entry.Time.UTC().Format(time.RFC3339),
		entry.Level,
		id,
		entry.Message,
	)
	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k != "request_id" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// New builds a logger from opts.
func New(opts Options) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetFormatter(&LineFormatter{})

	level := logrus.InfoLevel
	if opts.Level != "" {
		lv, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, err
		}
		level = lv
	}
	l.SetLevel(level)

	var out io.Writer = os.Stderr
	if opts.File != "" {
		every := opts.RotateEvery
		if every <= 0 {
			every = 24 * time.Hour
		}
		ropts := []rotatelogs.Option{rotatelogs.WithRotationTime(every)}
		if opts.MaxAge > 0 {
			ropts = append(ropts, rotatelogs.WithMaxAge(opts.MaxAge))
		}
		writer, err := rotatelogs.New(opts.File+"_%Y%m%d%H%M", ropts...)
		if err != nil {
			return nil, fmt.Errorf("rotatelogs: %w", err)
		}
		out = io.MultiWriter(os.Stderr, writer)
	}
	l.SetOutput(out)
	return l, nil
}

// Discard returns a logger that drops everything; used by tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
