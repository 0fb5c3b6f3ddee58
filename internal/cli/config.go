package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	kerrors "github.com/jmorten/keggpull/pkg/errors"
)

// Config holds the defaults read from the optional config file at
// ~/.config/keggpull/config.toml. Command-line flags override these values.
type Config struct {
	// BaseURL overrides the production KEGG REST endpoint.
	BaseURL string `toml:"base-url"`
	// NTries is the default number of tries per KEGG request.
	NTries int `toml:"n-tries"`
	// TimeOut is the default per-try timeout in seconds.
	TimeOut int `toml:"time-out"`
	// SleepTime is the default wait in seconds after a timed-out try.
	SleepTime float64 `toml:"sleep-time"`
	// CacheDir overrides where the organism set cache lives.
	CacheDir string `toml:"cache-dir"`
	// CacheTTLHours bounds how long the cached organism set is reused.
	CacheTTLHours int `toml:"cache-ttl-hours"`
}

func defaultConfig() Config {
	return Config{
		NTries:        3,
		TimeOut:       60,
		SleepTime:     0,
		CacheTTLHours: 7 * 24,
	}
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "keggpull", "config.toml"), nil
}

// loadConfig reads the config file, returning defaults when it does not
// exist. A malformed file is an error rather than silently ignored.
func loadConfig() (Config, error) {
	cfg := defaultConfig()
	path, err := configPath()
	if err != nil {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "parsing config file %s", path)
	}
	return cfg, nil
}

// Timeout returns the per-try timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeOut) * time.Second
}

// Sleep returns the post-timeout sleep as a duration.
func (c Config) Sleep() time.Duration {
	return time.Duration(c.SleepTime * float64(time.Second))
}
