// Package config loads the habits configuration from an XDG-compliant path
// (typically ~/.config/habits/config.yaml) and merges it over the defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"habits/internal/fsutil"

	"gopkg.in/yaml.v3"
)

const (
	appName = "habits"

	defaultResync      = 15 * time.Minute
	minResync          = time.Minute
	defaultHeatmapDays = 91
)

// Config represents the application configuration.
type Config struct {
	// DataDir overrides the default data directory (~/.habits)
	DataDir string `yaml:"data_dir,omitempty"`

	Storage       StorageConfig      `yaml:"storage,omitempty"`
	Theme         ThemeConfig        `yaml:"theme,omitempty"`
	Keys          KeysConfig         `yaml:"keys,omitempty"`
	UX            UXConfig           `yaml:"ux,omitempty"`
	Notifications NotificationConfig `yaml:"notifications,omitempty"`
	Log           LogConfig          `yaml:"log,omitempty"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Backend is "json" (default) or "sqlite"
	Backend string `yaml:"backend,omitempty"`
}

// NotificationConfig defines reminder delivery settings.
type NotificationConfig struct {
	Enabled bool `yaml:"enabled"` // default: true
	Sound   bool `yaml:"sound"`

	// Title and Body override the reminder text. Body takes one %s, the
	// habit title.
	Title string `yaml:"title,omitempty"`
	Body  string `yaml:"body,omitempty"`

	// ResyncInterval is how often the reminder daemon reloads habits and
	// rebuilds the reminder window (Go duration, default "15m")
	ResyncInterval string `yaml:"resync_interval,omitempty"`
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	Level      string `yaml:"level,omitempty"` // debug, info, warn, error
	File       string `yaml:"file,omitempty"`  // default: <data_dir>/logs/habits.log
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty"`
}

// ThemeConfig defines color settings (hex, e.g. "#FF5733").
type ThemeConfig struct {
	Primary    string `yaml:"primary,omitempty"`
	Accent     string `yaml:"accent,omitempty"`
	Muted      string `yaml:"muted,omitempty"`
	Background string `yaml:"background,omitempty"`
	Text       string `yaml:"text,omitempty"`
}

// KeysConfig defines customizable keyboard shortcuts.
// Each field accepts a comma-separated list of key bindings.
// Examples: "q,ctrl+c", "tab", "j,down"
type KeysConfig struct {
	Quit     string `yaml:"quit,omitempty"`      // default: "q,ctrl+c"
	Help     string `yaml:"help,omitempty"`      // default: "?"
	NextView string `yaml:"next_view,omitempty"` // default: "tab"
	Today    string `yaml:"today,omitempty"`     // default: "1"
	Archived string `yaml:"archived,omitempty"`  // default: "2"
	Stats    string `yaml:"stats,omitempty"`     // default: "3"

	Up     string `yaml:"up,omitempty"`     // default: "k,up"
	Down   string `yaml:"down,omitempty"`   // default: "j,down"
	Top    string `yaml:"top,omitempty"`    // default: "g,home"
	Bottom string `yaml:"bottom,omitempty"` // default: "G,end"

	Add       string `yaml:"add,omitempty"`       // default: "a"
	Edit      string `yaml:"edit,omitempty"`      // default: "e"
	Toggle    string `yaml:"toggle,omitempty"`    // default: "enter,space"
	Increment string `yaml:"increment,omitempty"` // default: "+,="
	Decrement string `yaml:"decrement,omitempty"` // default: "-,_"
	Archive   string `yaml:"archive,omitempty"`   // default: "x"
	Restore   string `yaml:"restore,omitempty"`   // default: "r"
	Delete    string `yaml:"delete,omitempty"`    // default: "D"
	MoveUp    string `yaml:"move_up,omitempty"`   // default: "K,shift+up"
	MoveDown  string `yaml:"move_down,omitempty"` // default: "J,shift+down"
	ShiftDay  string `yaml:"shift_day,omitempty"` // default: "t"

	Confirm string `yaml:"confirm,omitempty"` // default: "enter"
	Cancel  string `yaml:"cancel,omitempty"`  // default: "esc"
}

// UXConfig defines user experience settings.
type UXConfig struct {
	ConfirmDeletions bool `yaml:"confirm_deletions"`      // default: true
	HeatmapDays      int  `yaml:"heatmap_days,omitempty"` // default: 91
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir: defaultDataDir(),
		Storage: StorageConfig{Backend: "json"},
		Theme: ThemeConfig{
			Primary: "#F59E0B", // Amber
			Accent:  "#10B981", // Emerald
			Muted:   "#6B7280", // Gray
		},
		UX: UXConfig{
			ConfirmDeletions: true,
			HeatmapDays:      defaultHeatmapDays,
		},
		Notifications: NotificationConfig{
			Enabled:        true,
			ResyncInterval: defaultResync.String(),
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  5,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + appName
	}
	return filepath.Join(home, "."+appName)
}

// configDir returns the configuration directory path (XDG compliant).
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// Path returns the default config file path, or "" when no home directory
// can be found.
func Path() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config from the default path.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads configuration from path, merging with defaults. A missing
// file yields the defaults; malformed YAML or invalid values are errors.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var userCfg Config
	if err := yaml.Unmarshal(data, &userCfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var doc yaml.Node
	_ = yaml.Unmarshal(data, &doc) // best-effort; without it the merge only applies non-empty values

	cfg.mergeFromYAML(&userCfg, &doc)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values the rest of the program relies on.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Storage.Backend) {
	case "", "json", "sqlite":
	default:
		return fmt.Errorf("storage.backend must be json or sqlite, got %q", c.Storage.Backend)
	}
	if c.Notifications.ResyncInterval != "" {
		if _, err := time.ParseDuration(c.Notifications.ResyncInterval); err != nil {
			return fmt.Errorf("notifications.resync_interval: %w", err)
		}
	}
	if c.Notifications.Body != "" && !validBodyFormat(c.Notifications.Body) {
		return fmt.Errorf("notifications.body must contain exactly one %%s and no other verbs (write %%%% for a literal %%)")
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

// validBodyFormat reports whether body has exactly one %s and no other
// formatting verb. %% is allowed.
func validBodyFormat(body string) bool {
	rest := strings.ReplaceAll(body, "%%", "")
	if strings.Count(rest, "%s") != 1 {
		return false
	}
	return !strings.Contains(strings.Replace(rest, "%s", "", 1), "%")
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func mergeInt(dst *int, src int) {
	if src > 0 {
		*dst = src
	}
}

// mergeNonEmpty applies non-empty values from other to c.
// Booleans need presence-aware merging and are left to mergeFromYAML.
func (c *Config) mergeNonEmpty(other *Config) {
	mergeString(&c.DataDir, other.DataDir)
	mergeString(&c.Storage.Backend, other.Storage.Backend)

	mergeString(&c.Theme.Primary, other.Theme.Primary)
	mergeString(&c.Theme.Accent, other.Theme.Accent)
	mergeString(&c.Theme.Muted, other.Theme.Muted)
	mergeString(&c.Theme.Background, other.Theme.Background)
	mergeString(&c.Theme.Text, other.Theme.Text)

	k, o := &c.Keys, &other.Keys
	for _, pair := range []struct {
		dst *string
		src string
	}{
		{&k.Quit, o.Quit}, {&k.Help, o.Help}, {&k.NextView, o.NextView},
		{&k.Today, o.Today}, {&k.Archived, o.Archived}, {&k.Stats, o.Stats},
		{&k.Up, o.Up}, {&k.Down, o.Down}, {&k.Top, o.Top}, {&k.Bottom, o.Bottom},
		{&k.Add, o.Add}, {&k.Edit, o.Edit}, {&k.Toggle, o.Toggle},
		{&k.Increment, o.Increment}, {&k.Decrement, o.Decrement},
		{&k.Archive, o.Archive}, {&k.Restore, o.Restore}, {&k.Delete, o.Delete},
		{&k.MoveUp, o.MoveUp}, {&k.MoveDown, o.MoveDown}, {&k.ShiftDay, o.ShiftDay},
		{&k.Confirm, o.Confirm}, {&k.Cancel, o.Cancel},
	} {
		mergeString(pair.dst, pair.src)
	}

	mergeInt(&c.UX.HeatmapDays, other.UX.HeatmapDays)

	mergeString(&c.Notifications.Title, other.Notifications.Title)
	mergeString(&c.Notifications.Body, other.Notifications.Body)
	mergeString(&c.Notifications.ResyncInterval, other.Notifications.ResyncInterval)

	mergeString(&c.Log.Level, other.Log.Level)
	mergeString(&c.Log.File, other.Log.File)
	mergeInt(&c.Log.MaxSizeMB, other.Log.MaxSizeMB)
	mergeInt(&c.Log.MaxBackups, other.Log.MaxBackups)
	mergeInt(&c.Log.MaxAgeDays, other.Log.MaxAgeDays)
}

func (c *Config) mergeFromYAML(other *Config, doc *yaml.Node) {
	c.mergeNonEmpty(other)
	if doc == nil || len(doc.Content) == 0 {
		return
	}

	// Booleans only when present, so an omitted key keeps its default.
	if yamlHasPath(doc, "ux", "confirm_deletions") {
		c.UX.ConfirmDeletions = other.UX.ConfirmDeletions
	}
	if yamlHasPath(doc, "notifications", "enabled") {
		c.Notifications.Enabled = other.Notifications.Enabled
	}
	if yamlHasPath(doc, "notifications", "sound") {
		c.Notifications.Sound = other.Notifications.Sound
	}
}

func yamlHasPath(doc *yaml.Node, path ...string) bool {
	if doc == nil || len(path) == 0 {
		return false
	}

	n := doc
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	for _, key := range path {
		if n == nil || n.Kind != yaml.MappingNode {
			return false
		}
		var next *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			if k := n.Content[i]; k.Kind == yaml.ScalarNode && k.Value == key {
				next = n.Content[i+1]
				break
			}
		}
		if next == nil {
			return false
		}
		n = next
	}
	return true
}

// Save writes the configuration to path, or to the default path when path
// is empty.
func (c *Config) Save(path string) error {
	if path == "" {
		path = Path()
	}
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data, 0600)
}

// GetDataDir returns the resolved data directory path.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	return expandHome(c.DataDir)
}

// LogPath returns the resolved log file path.
func (c *Config) LogPath() string {
	if c.Log.File != "" {
		return expandHome(c.Log.File)
	}
	return filepath.Join(c.GetDataDir(), "logs", appName+".log")
}

// ResyncInterval returns the reminder daemon resync period, never shorter
// than a minute.
func (c *Config) ResyncInterval() time.Duration {
	d, err := time.ParseDuration(c.Notifications.ResyncInterval)
	if err != nil || d <= 0 {
		return defaultResync
	}
	if d < minResync {
		return minResync
	}
	return d
}

// HeatmapDays returns the number of days the stats heatmap covers.
func (c *Config) HeatmapDays() int {
	if c.UX.HeatmapDays <= 0 {
		return defaultHeatmapDays
	}
	return c.UX.HeatmapDays
}

func expandHome(p string) string {
	if p == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return p
	}
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
