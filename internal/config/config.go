// Package config loads afroradio settings from an optional YAML file,
// overridden by AFRORADIO_* environment variables (a .env file counts).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	AppName        = "afroradio"
	DefaultCountry = "Nigeria"
	DefaultVolume  = 60
	EnvPrefix      = "AFRORADIO_"
)

type Config struct {
	Country   string    `yaml:"country"`
	Volume    int       `yaml:"volume"`
	Directory Directory `yaml:"directory"`
	Favorites Favorites `yaml:"favorites"`
	Log       Log       `yaml:"log"`
	Discord   Discord   `yaml:"discord"`
	MediaKeys MediaKeys `yaml:"media_keys"`
}

type Directory struct {
	BaseURL     string        `yaml:"base_url"`
	UserAgent   string        `yaml:"user_agent"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
}

type Favorites struct {
	Path string `yaml:"path"`
}

type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type Discord struct {
	AppID string `yaml:"app_id"`
}

type MediaKeys struct {
	Signals bool `yaml:"signals"`
}

type environment map[string]string

// Dir is the per-user configuration directory.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppName)
	}
	return filepath.Join(base, AppName)
}

func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

func Default() Config {
	return Config{
		Country: DefaultCountry,
		Volume:  DefaultVolume,
		Directory: Directory{
			BaseURL:     "https://de1.api.radio-browser.info/json/stations",
			UserAgent:   "afroradio/1.0 (terminal radio)",
			Timeout:     10 * time.Second,
			MaxAttempts: 10,
			CacheTTL:    10 * time.Minute,
		},
		Favorites: Favorites{Path: filepath.Join(Dir(), "favorites.db")},
		Log:       Log{Level: "info", File: filepath.Join(Dir(), "afroradio.log")},
		MediaKeys: MediaKeys{Signals: true},
	}
}

// Environ returns environ with variables from the dotenv file at path added
// where environ does not already set them. A missing file is not an error.
func Environ(environ []string, path string) ([]string, error) {
	if path == "" {
		return environ, nil
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return environ, nil
		}
		return environ, fmt.Errorf("failed to read %s: %w", path, err)
	}
	env := parseEnviron(environ)
	out := append([]string(nil), environ...)
	for k, v := range vars {
		if _, set := env[k]; !set {
			out = append(out, k+"="+v)
		}
	}
	return out, nil
}

// Load reads the YAML file at path, then applies environment overrides.
// environ has the format of os.Environ(). A missing file at the default
// path is fine; a missing file that was asked for explicitly is not.
func Load(path string, environ []string) (Config, []error) {
	cfg := Default()
	var errs []error

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if err := loadFile(path, &cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || explicit {
			errs = append(errs, err)
		}
	}

	errs = append(errs, applyEnv(parseEnviron(environ), &cfg)...)
	errs = append(errs, cfg.validate()...)
	return cfg, errs
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: %s: %w", path, err)
	}
	return nil
}

func parseEnviron(environ []string) environment {
	env := make(environment, len(environ))
	for _, e := range environ {
		k, v, ok := strings.Cut(e, "=")
		if !ok {
			continue
		}
		env[k] = v
	}
	return env
}

func applyEnv(env environment, cfg *Config) []error {
	var errs []error

	if v, ok := env[EnvPrefix+"COUNTRY"]; ok {
		cfg.Country = v
	}
	if v, ok := env[EnvPrefix+"VOLUME"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, newError(EnvPrefix+"VOLUME", "must be an integer"))
		} else {
			cfg.Volume = n
		}
	}
	if v, ok := env[EnvPrefix+"DIRECTORY_URL"]; ok {
		cfg.Directory.BaseURL = v
	}
	if v, ok := env[EnvPrefix+"DIRECTORY_TIMEOUT"]; ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, newError(EnvPrefix+"DIRECTORY_TIMEOUT", "must be a duration like 10s"))
		} else {
			cfg.Directory.Timeout = d
		}
	}
	if v, ok := env[EnvPrefix+"CACHE_TTL"]; ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, newError(EnvPrefix+"CACHE_TTL", "must be a duration like 10m"))
		} else {
			cfg.Directory.CacheTTL = d
		}
	}
	if v, ok := env[EnvPrefix+"FAVORITES_DB"]; ok {
		cfg.Favorites.Path = v
	}
	if v, ok := env[EnvPrefix+"LOG_LEVEL"]; ok {
		cfg.Log.Level = v
	}
	if v, ok := env[EnvPrefix+"LOG_FILE"]; ok {
		cfg.Log.File = v
	}
	if v, ok := env[EnvPrefix+"DISCORD_APP_ID"]; ok {
		cfg.Discord.AppID = v
	}
	if v, ok := env[EnvPrefix+"MEDIA_KEYS"]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, newError(EnvPrefix+"MEDIA_KEYS", "must be true or false"))
		} else {
			cfg.MediaKeys.Signals = b
		}
	}
	return errs
}

func (c Config) validate() []error {
	var errs []error
	if strings.TrimSpace(c.Country) == "" {
		errs = append(errs, newError("country", "must not be empty"))
	}
	if c.Volume < 0 || c.Volume > 100 {
		errs = append(errs, newError("volume", "must be between 0 and 100"))
	}
	if !strings.HasPrefix(c.Directory.BaseURL, "http://") && !strings.HasPrefix(c.Directory.BaseURL, "https://") {
		errs = append(errs, newError("directory.base_url", "must be an http(s) URL"))
	}
	if c.Directory.Timeout <= 0 {
		errs = append(errs, newError("directory.timeout", "must be positive"))
	}
	if c.Directory.MaxAttempts < 1 {
		errs = append(errs, newError("directory.max_attempts", "must be at least 1"))
	}
	if c.Directory.CacheTTL < 0 {
		errs = append(errs, newError("directory.cache_ttl", "must not be negative"))
	}
	if c.Favorites.Path == "" {
		errs = append(errs, newError("favorites.path", "must not be empty"))
	}
	return errs
}
