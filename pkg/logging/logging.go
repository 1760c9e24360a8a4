package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm/logger"

	"github.com/doodlesbykumbi/iam-admin/pkg/config"
)

// Setup applies the configured level and format to the standard logrus logger.
func Setup(cfg *config.IAMConfig) error {
	return Configure(logrus.StandardLogger(), cfg.LogLevel, cfg.LogFormat, os.Stderr)
}

// Configure sets level, format and output of l.
func Configure(l *logrus.Logger, level, format string, out io.Writer) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	l.SetLevel(lvl)
	l.SetOutput(out)

	switch format {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return nil
}

// AccessLog returns the writer HTTP access log lines go to. Lines are logged
// at info level with an "access" component field.
func AccessLog() *io.PipeWriter {
	return logrus.WithField("component", "access").WriterLevel(logrus.InfoLevel)
}

// GormLogLevel maps the logrus level to a gorm logger mode. SQL is only
// logged at debug level and above.
func GormLogLevel() logger.LogLevel {
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		return logger.Info
	}
	return logger.Silent
}
