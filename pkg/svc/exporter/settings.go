package exporter

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Environment variables read by the exporter. In-cluster they come from the
// workload ConfigMap; locally they can be set directly.
const (
	EnvPort           = "PORT"
	EnvScrapeInterval = "SCRAPE_INTERVAL"
	EnvLogLevel       = "LOG_LEVEL"
)

const (
	// DefaultPort is the HTTP listen port.
	DefaultPort = 8080
	// DefaultScrapeInterval is the pause between collection cycles.
	DefaultScrapeInterval = 30 * time.Second
	// DefaultLogLevel is the exporter's log level.
	DefaultLogLevel = "info"

	maxPort = 65535
)

var (
	// ErrInvalidPort is returned when PORT is not a usable TCP port.
	ErrInvalidPort = errors.New("invalid port")
	// ErrInvalidInterval is returned when SCRAPE_INTERVAL cannot be parsed
	// or is not positive.
	ErrInvalidInterval = errors.New("invalid scrape interval")
)

// Settings configures the exporter process.
type Settings struct {
	// Port is the HTTP listen port.
	Port int
	// ScrapeInterval is the pause between collection cycles.
	ScrapeInterval time.Duration
	// LogLevel is the logrus level for exporter output.
	LogLevel logrus.Level
}

// SettingsFromEnv resolves the exporter settings from the environment,
// falling back to defaults. The scrape interval accepts bare seconds ("30")
// as well as a Go duration ("45s").
func SettingsFromEnv() (Settings, error) {
	viperInstance := viper.New()
	viperInstance.AutomaticEnv()
	viperInstance.SetDefault(EnvPort, DefaultPort)
	viperInstance.SetDefault(EnvScrapeInterval, strconv.Itoa(int(DefaultScrapeInterval/time.Second)))
	viperInstance.SetDefault(EnvLogLevel, DefaultLogLevel)

	settings := Settings{Port: viperInstance.GetInt(EnvPort)}
	if settings.Port <= 0 || settings.Port > maxPort {
		return Settings{}, fmt.Errorf("%w: %q", ErrInvalidPort, viperInstance.GetString(EnvPort))
	}

	interval, err := parseInterval(viperInstance.GetString(EnvScrapeInterval))
	if err != nil {
		return Settings{}, err
	}

	settings.ScrapeInterval = interval

	level, err := logrus.ParseLevel(viperInstance.GetString(EnvLogLevel))
	if err != nil {
		return Settings{}, fmt.Errorf("parse %s: %w", EnvLogLevel, err)
	}

	settings.LogLevel = level

	return settings, nil
}

func parseInterval(raw string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(raw); err == nil {
		if seconds <= 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidInterval, raw)
		}

		return time.Duration(seconds) * time.Second, nil
	}

	interval, err := time.ParseDuration(raw)
	if err != nil || interval <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidInterval, raw)
	}

	return interval, nil
}

// NewLogger builds the exporter's logger at the given level. Output goes to
// stdout so container runtimes pick it up as application logs.
func NewLogger(level logrus.Level) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return logger
}
