package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	Level slog.Level
	// File, when set, receives a rotated copy of every record.
	File string
	// Console is where records go besides File. Nil discards them, which the
	// interactive CLI uses so logs do not interleave with its output.
	Console io.Writer
}

// New builds the process logger. The returned closer flushes the file sink
// and is safe to call when no file is configured.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	var writers []io.Writer
	if opts.Console != nil {
		writers = append(writers, opts.Console)
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, err
		}
		fw := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		writers = append(writers, fw)
		closer = fw
	}

	var w io.Writer
	switch len(writers) {
	case 0:
		w = io.Discard
	case 1:
		w = writers[0]
	default:
		w = io.MultiWriter(writers...)
	}

	log := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: opts.Level}))
	return log, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
