package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	xcurrency "golang.org/x/text/currency"
	"golang.org/x/text/language"

	"github.com/efreitasn/tipcalc/internal/currency"
)

// Config holds all runtime configuration for the tip calculator.
type Config struct {
	Port            int
	LogLevel        string
	Locale          language.Tag
	Currency        string // ISO 4217 override; empty uses the locale's currency
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
//
// LOCALE names the formatting locale. When unset, the POSIX variables
// LC_ALL, LC_MONETARY and LANG are consulted, then en-US.
func Load() (*Config, error) {
	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("invalid PORT: %d out of range 1-65535", port)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	locale := currency.LocaleFromEnv(os.LookupEnv)
	if v := os.Getenv("LOCALE"); v != "" {
		locale, err = currency.ResolveLocale(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LOCALE: %w", err)
		}
	}

	cur := strings.ToUpper(getStr("CURRENCY", ""))
	if cur != "" {
		if _, err := xcurrency.ParseISO(cur); err != nil {
			return nil, fmt.Errorf("invalid CURRENCY: %q is not an ISO 4217 code", cur)
		}
	}

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		Port:            port,
		LogLevel:        logLevel,
		Locale:          locale,
		Currency:        cur,
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		IdleTimeout:     idleTimeout,
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
