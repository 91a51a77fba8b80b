package application

import (
	"errors"
	"kabinet-assist/internal/report"
	"kabinet-assist/pkg/configutil"
	"kabinet-assist/pkg/sqliteutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// EnvCookie overrides the configured portal cookies with a `Cookie` header value.
	EnvCookie = "KABINET_COOKIE"
	// EnvBaseUrl overrides the configured portal base url.
	EnvBaseUrl = "KABINET_BASE_URL"
)

type PortalConfig struct {
	BaseUrl string            `json:"base_url"`
	Cookies map[string]string `json:"cookies"`
	// Cookie is a raw `Cookie` header copied from the browser.
	Cookie            string  `json:"cookie"`
	DelayMs           *int    `json:"delay_ms"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	CloudflareBypass  bool    `json:"cloudflare_bypass"`
}

type ScheduleConfig struct {
	// Cron is a standard 5 field cron spec evaluated in the portal's timezone.
	Cron     string `json:"cron"`
	Year     string `json:"year"`
	Semester string `json:"semester"`
	MailTo   string `json:"mail_to"`
}

type ServerConfig struct {
	Port        int            `json:"port"`
	AccessToken string         `json:"access_token"`
	Schedule    ScheduleConfig `json:"schedule"`
}

type Config struct {
	Portal      PortalConfig      `json:"portal"`
	Preferences sqliteutil.Config `json:"preferences"`
	Server      ServerConfig      `json:"server"`
	Smtp        report.SmtpConfig `json:"smtp"`
}

// DefaultPreferencesFile is where preferences live when no database is configured.
func DefaultPreferencesFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "kabinet-assist", "preferences.db")
}

// LoadConfig reads `path` (and its .local override) and applies the
// environment, a missing file is not an error.
func LoadConfig(path string) (Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := configutil.ReadConfig[Config](path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	if cookie := strings.TrimSpace(os.Getenv(EnvCookie)); cookie != "" {
		cfg.Portal.Cookies = nil
		cfg.Portal.Cookie = cookie
	}
	if baseUrl := strings.TrimSpace(os.Getenv(EnvBaseUrl)); baseUrl != "" {
		cfg.Portal.BaseUrl = baseUrl
	}
	if cfg.Preferences.File == "" && cfg.Preferences.Url == "" {
		cfg.Preferences.File = DefaultPreferencesFile()
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	return cfg, nil
}
