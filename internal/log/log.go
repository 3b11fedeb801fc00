// Package log builds the logrus loggers handed to every component. Nothing in
// this module logs through a package level logger; callers pass an entry down.
package log

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gillesdemey/go-deid/internal/errors"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// New creates a logger writing to out with the given level ("debug", "info",
// "warning", ...) and format ("text" or "json").
func New(level, format string, out io.Writer) (*logrus.Entry, error) {
	if out == nil {
		out = os.Stderr
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", FormatText:
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, errors.Errorf("unknown log format %q", format)
	}

	return logrus.NewEntry(logger), nil
}

// Discard returns an entry that drops everything. Components fall back to it
// when handed a nil logger.
func Discard() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)

	return logrus.NewEntry(logger)
}

// OrDiscard returns logger, or a discarding entry if logger is nil.
func OrDiscard(logger *logrus.Entry) *logrus.Entry {
	if logger == nil {
		return Discard()
	}

	return logger
}
