package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Keys of the config document. Process environment variables with the same
// names take precedence over the file.
const (
	KeyWorkspace = "TOGGL_WORKSPACE"
	KeyAPIKey    = "TOGGL_API_KEY"
	KeyProjects  = "PROJECTS_LIST"
	KeyMySQLDSN  = "MYSQL_DSN"
	KeySyncTZ    = "SYNC_TZ"
	KeyHTTPAddr  = "HTTP_ADDR"
)

const (
	defaultTimezone = "UTC"
	defaultHTTPAddr = "127.0.0.1:8089"
)

// Config holds the user's settings.
type Config struct {
	Toggl struct {
		WorkspaceID string
		APIKey      string
	}
	// Projects is the allow-list of project names, lowercased. Empty means
	// every project is offered.
	Projects []string
	MySQL    struct {
		DSN string // e.g., user:pass@tcp(host:3306)/dbname?parseTime=true&multiStatements=true
	}
	Sync struct {
		Timezone string // e.g., UTC (default), Europe/Berlin
	}
	HTTP struct {
		Addr string
	}
}

// Dir returns the directory holding the config document.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".toggl-assistant"), nil
}

// DefaultPath returns ~/.toggl-assistant/.env.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".env"), nil
}

// Load reads the document at path. A missing file yields an empty config
// with defaults applied so that first-run setup can fill it in.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault(KeySyncTZ, defaultTimezone)
	v.SetDefault(KeyHTTPAddr, defaultHTTPAddr)
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, err
	}

	var cfg Config
	cfg.Toggl.WorkspaceID = strings.TrimSpace(v.GetString(KeyWorkspace))
	cfg.Toggl.APIKey = strings.TrimSpace(v.GetString(KeyAPIKey))
	projects, err := parseList(v.GetString(KeyProjects))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", KeyProjects, err)
	}
	cfg.Projects = projects
	cfg.MySQL.DSN = v.GetString(KeyMySQLDSN)
	cfg.Sync.Timezone = v.GetString(KeySyncTZ)
	cfg.HTTP.Addr = v.GetString(KeyHTTPAddr)
	return cfg, nil
}

// Save writes cfg to path as KEY='VALUE' lines. Single quotes keep the
// dotenv reader from stripping " #..." as a comment or expanding $VARS.
func Save(path string, cfg Config) error {
	list, err := formatList(cfg.Projects)
	if err != nil {
		return err
	}
	pairs := [][2]string{
		{KeyWorkspace, cfg.Toggl.WorkspaceID},
		{KeyAPIKey, cfg.Toggl.APIKey},
		{KeyProjects, list},
	}
	if cfg.MySQL.DSN != "" {
		pairs = append(pairs, [2]string{KeyMySQLDSN, cfg.MySQL.DSN})
	}
	if cfg.Sync.Timezone != "" {
		pairs = append(pairs, [2]string{KeySyncTZ, cfg.Sync.Timezone})
	}
	if cfg.HTTP.Addr != "" {
		pairs = append(pairs, [2]string{KeyHTTPAddr, cfg.HTTP.Addr})
	}

	var b strings.Builder
	for _, kv := range pairs {
		v, err := quoteValue(kv[1])
		if err != nil {
			return fmt.Errorf("%s: %w", kv[0], err)
		}
		b.WriteString(kv[0])
		b.WriteByte('=')
		b.WriteString(v)
		b.WriteByte('\n')
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(b.String()), 0o600)
}

// quoteValue wraps v in single quotes. Nothing inside single quotes is
// escaped by the reader, so a quote or line break cannot be represented,
// and a trailing backslash reads as an escaped closing quote.
func quoteValue(v string) (string, error) {
	if v == "" {
		return "", nil
	}
	if strings.ContainsAny(v, "'\r\n") {
		return "", errors.New("value must not contain single quotes or line breaks")
	}
	if strings.HasSuffix(v, `\`) {
		return "", errors.New("value must not end with a backslash")
	}
	return "'" + v + "'", nil
}

// FileStore saves the config to a fixed path.
type FileStore struct {
	Path string
}

func (s FileStore) Save(cfg Config) error { return Save(s.Path, cfg) }

// Validate reports missing or malformed Toggl credentials.
func (c Config) Validate() error {
	var errs []error
	if c.Toggl.WorkspaceID == "" {
		errs = append(errs, fmt.Errorf("%s is required", KeyWorkspace))
	} else if _, err := strconv.ParseInt(c.Toggl.WorkspaceID, 10, 64); err != nil {
		errs = append(errs, fmt.Errorf("%s must be an integer", KeyWorkspace))
	}
	if c.Toggl.APIKey == "" {
		errs = append(errs, fmt.Errorf("%s is required", KeyAPIKey))
	}
	return errors.Join(errs...)
}

// AllowsProject reports whether name passes the allow-list. Comparison is
// case-insensitive.
func (c Config) AllowsProject(name string) bool {
	if len(c.Projects) == 0 {
		return true
	}
	for _, p := range c.Projects {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}

// parseList accepts the bracketed form ["a","b"] and, for values coming from
// the environment, a bare comma separated list.
func parseList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var items []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return nil, fmt.Errorf("expected a list like [\"a\",\"b\"]: %w", err)
		}
	} else {
		items = strings.Split(raw, ",")
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.ToLower(strings.TrimSpace(it))
		if it != "" {
			out = append(out, it)
		}
	}
	return out, nil
}

func formatList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	// JSON never carries raw line breaks; quotes become \u0027 so the
	// document can be single-quoted.
	return strings.ReplaceAll(string(b), "'", `\u0027`), nil
}
