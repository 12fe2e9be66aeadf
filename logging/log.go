package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Options of the application log and the access log.
type Options struct {
	// ApplicationLogPrefix starts every application log line. It tells
	// the application log apart from the access log when both are
	// written to the same output.
	ApplicationLogPrefix string

	// ApplicationLogOutput defaults to os.Stderr.
	ApplicationLogOutput io.Writer

	// ApplicationLogLevel, e.g. "INFO" or "debug". Empty keeps the
	// current level.
	ApplicationLogLevel string

	ApplicationLogJSONEnabled bool

	// AccessLogOutput defaults to os.Stderr.
	AccessLogOutput io.Writer

	AccessLogDisabled    bool
	AccessLogJSONEnabled bool
}

type prefixed struct {
	prefix []byte
	next   logrus.Formatter
}

func (p prefixed) Format(e *logrus.Entry) ([]byte, error) {
	line, err := p.next.Format(e)
	if err != nil {
		return nil, err
	}

	return append(append([]byte(nil), p.prefix...), line...), nil
}

func applicationFormatter(o Options) logrus.Formatter {
	var f logrus.Formatter = &logrus.TextFormatter{}
	if o.ApplicationLogJSONEnabled {
		f = &logrus.JSONFormatter{}
	}

	if o.ApplicationLogPrefix == "" {
		return f
	}

	return prefixed{prefix: []byte(o.ApplicationLogPrefix), next: f}
}

func accessFormatter(o Options) logrus.Formatter {
	if o.AccessLogJSONEnabled {
		return &logrus.JSONFormatter{DisableTimestamp: true}
	}

	return accessLogFormatter{}
}

// Init configures the logrus standard logger as the application log, and
// creates the access log. It fails only on an invalid log level.
func Init(o Options) error {
	if o.ApplicationLogLevel != "" {
		level, err := logrus.ParseLevel(o.ApplicationLogLevel)
		if err != nil {
			return fmt.Errorf("invalid application log level: %w", err)
		}

		logrus.SetLevel(level)
	}

	logrus.SetFormatter(applicationFormatter(o))
	if o.ApplicationLogOutput != nil {
		logrus.SetOutput(o.ApplicationLogOutput)
	}

	if o.AccessLogDisabled {
		accessLog = nil
		return nil
	}

	out := o.AccessLogOutput
	if out == nil {
		out = os.Stderr
	}

	accessLog = &logrus.Logger{
		Out:       out,
		Formatter: accessFormatter(o),
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.InfoLevel,
	}

	return nil
}
