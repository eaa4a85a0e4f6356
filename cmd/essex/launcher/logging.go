package launcher

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/evalphobia/logrus_sentry"
	"github.com/sirupsen/logrus"
)

// sentryTimeout bounds how long an error entry may block on delivery.
const sentryTimeout = 2 * time.Second

var verbosityLevels = []logrus.Level{
	logrus.FatalLevel,
	logrus.ErrorLevel,
	logrus.WarnLevel,
	logrus.InfoLevel,
	logrus.DebugLevel,
	logrus.TraceLevel,
}

func verbosityLevel(v int) (logrus.Level, error) {
	if v < 0 || v >= len(verbosityLevels) {
		return logrus.InfoLevel, fmt.Errorf("log verbosity %d out of range 0..%d", v, len(verbosityLevels)-1)
	}
	return verbosityLevels[v], nil
}

// setupLogging builds the node logger. Error level entries and above are
// also sent to Sentry when a DSN is configured.
func setupLogging(cfg LoggingConfig, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	level, err := verbosityLevel(cfg.Verbosity)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   cfg.Color,
			DisableColors: !cfg.Color,
		})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	if cfg.SentryDSN != "" {
		hook, err := logrus_sentry.NewSentryHook(cfg.SentryDSN, []logrus.Level{
			logrus.PanicLevel,
			logrus.FatalLevel,
			logrus.ErrorLevel,
		})
		if err != nil {
			return nil, fmt.Errorf("sentry: %w", err)
		}
		hook.Timeout = sentryTimeout
		logger.AddHook(hook)
	}
	return logger, nil
}
