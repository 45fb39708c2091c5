package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var DefaultEnvConfig *envConfig

// DefaultTargetSheets are the service-area sheets of the customer export.
var DefaultTargetSheets = []string{"DMP", "DKP", "NGL", "RKT", "GDN"}

type envConfig struct {
	// comparison config
	KEY_FIELD     string
	TARGET_SHEETS []string
	// report config
	OUTPUT_DIR        string
	REPORT_THEME_PATH string
	// history config
	HISTORY_FILE_PATH string
	HISTORY_LIMIT     int
	// reader config
	READ_TIMEOUT time.Duration
	// logger config
	LOG_FILE_PATH string
	LOG_LEVEL     string
}

// LoadEnvConfig reads the given env files and the process environment into
// DefaultEnvConfig. Without files it reads .env when present; named files must exist.
func LoadEnvConfig(files ...string) error {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	} else if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("loading env file: %w", err)
	}

	DefaultEnvConfig = &envConfig{
		KEY_FIELD:         getEnvString("KEY_FIELD", "IDPEL"),
		TARGET_SHEETS:     getEnvList("TARGET_SHEETS", DefaultTargetSheets),
		OUTPUT_DIR:        getEnvString("OUTPUT_DIR", "."),
		REPORT_THEME_PATH: getEnvString("REPORT_THEME_PATH", ""),
		HISTORY_FILE_PATH: getEnvString("HISTORY_FILE_PATH", "processing_history.json"),
		HISTORY_LIMIT:     getEnvInt("HISTORY_LIMIT", 20),
		READ_TIMEOUT:      getEnvDuration("READ_TIMEOUT", 2*time.Minute),
		LOG_FILE_PATH:     getEnvString("LOG_FILE_PATH", ""),
		LOG_LEVEL:         getEnvString("LOG_LEVEL", "info"),
	}
	return nil
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}

// getEnvList splits a comma separated value, dropping blanks and repeats.
func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return append([]string(nil), fallback...)
	}
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}
