package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the attendance service.
type Config struct {
	HTTPPort         int
	SQLiteDSN        string
	SessionSecret    string
	SessionTTL       time.Duration
	Location         *time.Location
	LateGrace        time.Duration
	FCMCredentials   string
	LocationCacheTTL time.Duration
}

// PushEnabled reports whether push delivery has credentials configured.
func (c Config) PushEnabled() bool {
	return strings.TrimSpace(c.FCMCredentials) != ""
}

// Load parses configuration values from the current process environment.
//
// A .env file in the working directory is read first when present; variables
// already set in the environment take precedence over the file.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:         8080,
		SQLiteDSN:        "attendance.db",
		SessionTTL:       24 * time.Hour,
		Location:         time.UTC,
		LateGrace:        15 * time.Minute,
		LocationCacheTTL: 30 * time.Second,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 4)

	if portValue := strings.TrimSpace(os.Getenv("ATTENDANCE_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "ATTENDANCE_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("ATTENDANCE_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := strings.TrimSpace(os.Getenv("ATTENDANCE_SESSION_SECRET")); secret == "" {
		missing = append(missing, "ATTENDANCE_SESSION_SECRET")
	} else {
		cfg.SessionSecret = secret
	}

	if ttl, ok := parsePositiveDuration("ATTENDANCE_SESSION_TTL", &invalid); ok {
		cfg.SessionTTL = ttl
	}

	if tz := strings.TrimSpace(os.Getenv("ATTENDANCE_TIMEZONE")); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			invalid = append(invalid, "ATTENDANCE_TIMEZONE")
		} else {
			cfg.Location = loc
		}
	}

	if graceValue := strings.TrimSpace(os.Getenv("ATTENDANCE_LATE_GRACE")); graceValue != "" {
		grace, err := time.ParseDuration(graceValue)
		if err != nil || grace < 0 {
			invalid = append(invalid, "ATTENDANCE_LATE_GRACE")
		} else {
			cfg.LateGrace = grace
		}
	}

	cfg.FCMCredentials = strings.TrimSpace(os.Getenv("ATTENDANCE_FCM_CREDENTIALS"))

	if ttl, ok := parsePositiveDuration("ATTENDANCE_LOCATION_CACHE_TTL", &invalid); ok {
		cfg.LocationCacheTTL = ttl
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func parsePositiveDuration(key string, invalid *[]string) (time.Duration, bool) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return 0, false
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		*invalid = append(*invalid, key)
		return 0, false
	}
	return d, true
}
