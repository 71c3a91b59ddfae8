package tests

import (
	"io"

	"github.com/sirupsen/logrus"
)

// newTestLogger returns a logger that discards output.
func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
