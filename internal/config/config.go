// Package config provides configuration management for the key overlay.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"keyoverlay/internal/filter"
	"keyoverlay/internal/logging"
)

const (
	appDirName = "keyoverlay"
	fileName   = "config.toml"

	DefaultPort = 8000
	MinPort     = 1000
	MaxPort     = 65535
)

// Config represents the application configuration
type Config struct {
	// Port is the local HTTP port for the overlay and control panel
	Port int `toml:"port" json:"port"`

	// Language is the control panel language code
	Language string `toml:"language" json:"language"`

	// LogLevel is a zerolog level name
	LogLevel string `toml:"log_level" json:"log_level"`

	// Target selects which foreground window's input is shown
	Target filter.Target `toml:"target" json:"target"`

	// Overlay contains the overlay appearance
	Overlay OverlayConfig `toml:"overlay" json:"overlay"`

	// Capture contains input capture tuning
	Capture CaptureConfig `toml:"capture" json:"capture"`

	// General contains general application settings
	General GeneralConfig `toml:"general" json:"general"`
}

// OverlayConfig controls how key chips are drawn in the browser overlay
type OverlayConfig struct {
	FadeInMs        int    `toml:"fade_in_ms" json:"fade_in_ms"`
	FadeOutMs       int    `toml:"fade_out_ms" json:"fade_out_ms"`
	ChipBg          string `toml:"chip_bg" json:"chip_bg"`
	ChipFg          string `toml:"chip_fg" json:"chip_fg"`
	ChipGap         int    `toml:"chip_gap" json:"chip_gap"`
	ChipPadV        int    `toml:"chip_pad_v" json:"chip_pad_v"`
	ChipPadH        int    `toml:"chip_pad_h" json:"chip_pad_h"`
	ChipRadius      int    `toml:"chip_radius" json:"chip_radius"`
	ChipFontPx      int    `toml:"chip_font_px" json:"chip_font_px"`
	ChipFontWeight  int    `toml:"chip_font_weight" json:"chip_font_weight"`
	Background      string `toml:"background" json:"background"`
	Cols            int    `toml:"cols" json:"cols"`
	Rows            int    `toml:"rows" json:"rows"`
	SingleLine      bool   `toml:"single_line" json:"single_line"`
	SingleLineScale int    `toml:"single_line_scale" json:"single_line_scale"`
	Align           string `toml:"align" json:"align"`
	Direction       string `toml:"direction" json:"direction"`
}

// CaptureConfig tunes the input capture strategy
type CaptureConfig struct {
	// Strategy is "hook", "polling", "tap" or "auto"
	Strategy string `toml:"strategy" json:"strategy"`

	// HookSource is "native", "gohook", "evdev" or "auto"
	HookSource string `toml:"hook_source" json:"hook_source"`

	PollIntervalMs      int `toml:"poll_interval_ms" json:"poll_interval_ms"`
	FilterRefreshEvents int `toml:"filter_refresh_events" json:"filter_refresh_events"`
	FilterMaxAgeMs      int `toml:"filter_max_age_ms" json:"filter_max_age_ms"`
	FocusCheckMs        int `toml:"focus_check_ms" json:"focus_check_ms"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	// StartOnBoot determines if app starts on login
	StartOnBoot bool `toml:"start_on_boot" json:"start_on_boot"`

	// OpenControlOnStart opens the control panel in a browser at startup
	OpenControlOnStart bool `toml:"open_control_on_start" json:"open_control_on_start"`

	// ResetHotkey is the global shortcut that clears held keys (e.g. "Ctrl+Shift+F12")
	ResetHotkey string `toml:"reset_hotkey" json:"reset_hotkey"`
}

// DefaultConfig returns a new Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Port:     DefaultPort,
		Language: "ko",
		LogLevel: "info",
		Target:   filter.Target{Mode: filter.Disabled},
		Overlay:  DefaultOverlay(),
		Capture: CaptureConfig{
			Strategy:            "auto",
			HookSource:          "auto",
			PollIntervalMs:      16,
			FilterRefreshEvents: 20,
			FilterMaxAgeMs:      250,
			FocusCheckMs:        100,
		},
		General: GeneralConfig{
			OpenControlOnStart: true,
		},
	}
}

// DefaultOverlay returns the default overlay appearance
func DefaultOverlay() OverlayConfig {
	return OverlayConfig{
		FadeInMs:        120,
		FadeOutMs:       120,
		ChipBg:          "rgba(0,0,0,0.6)",
		ChipFg:          "#ffffff",
		ChipGap:         8,
		ChipPadV:        10,
		ChipPadH:        14,
		ChipRadius:      10,
		ChipFontPx:      24,
		ChipFontWeight:  700,
		Background:      "rgba(0,0,0,0.0)",
		Cols:            8,
		Rows:            1,
		SingleLineScale: 90,
		Align:           "center",
		Direction:       "ltr",
	}
}

// Normalize clamps overlay values into their valid ranges.
func (o *OverlayConfig) Normalize() {
	o.FadeInMs = max(0, o.FadeInMs)
	o.FadeOutMs = max(0, o.FadeOutMs)
	o.ChipGap = max(0, o.ChipGap)
	o.ChipPadV = max(0, o.ChipPadV)
	o.ChipPadH = max(0, o.ChipPadH)
	o.ChipRadius = max(0, o.ChipRadius)
	o.ChipFontPx = max(8, o.ChipFontPx)
	o.ChipFontWeight = max(100, o.ChipFontWeight)
	o.Cols = max(1, o.Cols)
	o.Rows = max(0, o.Rows)
	o.SingleLineScale = min(120, max(50, o.SingleLineScale))

	o.Align = strings.ToLower(o.Align)
	if o.Align != "left" && o.Align != "center" && o.Align != "right" {
		o.Align = "center"
	}
	o.Direction = strings.ToLower(o.Direction)
	if o.Direction != "ltr" && o.Direction != "rtl" {
		o.Direction = "ltr"
	}
}

var validStrategies = []string{"", "auto", "hook", "polling", "tap"}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if c.Port < MinPort || c.Port > MaxPort {
		return fmt.Errorf("port must be between %d and %d, got %d", MinPort, MaxPort, c.Port)
	}
	if c.Target.Mode != "" {
		if _, err := filter.ParseMode(string(c.Target.Mode)); err != nil {
			return fmt.Errorf("target: %w", err)
		}
	}
	strategy := strings.ToLower(c.Capture.Strategy)
	valid := false
	for _, s := range validStrategies {
		if strategy == s {
			valid = true
		}
	}
	if !valid {
		return fmt.Errorf("unknown capture strategy %q", c.Capture.Strategy)
	}
	return nil
}

// Manager handles loading and saving configuration
type Manager struct {
	mu         sync.Mutex
	configPath string
	config     *Config
	onChanged  func()
}

// NewManager creates a configuration manager for the per-user config file
func NewManager() (*Manager, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return NewManagerAt(filepath.Join(dir, fileName)), nil
}

// NewManagerAt creates a configuration manager for an explicit file path
func NewManagerAt(path string) *Manager {
	return &Manager{
		configPath: path,
		config:     DefaultConfig(),
	}
}

// Dir returns the per-user configuration directory, creating it if needed
func Dir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", appDirName)
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		configDir = filepath.Join(appData, appDirName)
	default:
		base := os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			base = filepath.Join(home, ".config")
		}
		configDir = filepath.Join(base, appDirName)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}

// Path returns the configuration file path
func (m *Manager) Path() string {
	return m.configPath
}

// Load reads the configuration from disk. A missing file keeps defaults.
// Fields absent from the file keep their default values.
func (m *Manager) Load() error {
	log := logging.For("config")

	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(m.configPath, cfg)
	if errors.Is(err, os.ErrNotExist) {
		log.Info().Str("path", m.configPath).Msg("No config file, using defaults")
		return nil
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", m.configPath, err)
	}
	for _, key := range meta.Undecoded() {
		log.Warn().Str("key", key.String()).Msg("Ignoring unknown config key")
	}

	cfg.Overlay.Normalize()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", m.configPath, err)
	}

	m.mu.Lock()
	m.config = cfg
	cb := m.onChanged
	m.mu.Unlock()

	if cb != nil {
		cb()
	}
	return nil
}

// Save writes the configuration to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked()
}

func (m *Manager) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return err
	}

	tmp := m.configPath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(m.config); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode config: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	log := logging.For("config")
	log.Debug().Str("path", m.configPath).Msg("Saving configuration")
	return os.Rename(tmp, m.configPath)
}

// Get returns a copy of the current configuration
func (m *Manager) Get() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.config
}

// Update applies fn to a copy of the configuration, validates it, stores
// and saves it. The stored configuration is unchanged if fn's result is
// invalid.
func (m *Manager) Update(fn func(*Config)) error {
	m.mu.Lock()
	next := *m.config
	fn(&next)
	next.Overlay.Normalize()
	if err := next.Validate(); err != nil {
		m.mu.Unlock()
		return err
	}
	m.config = &next
	err := m.saveLocked()
	cb := m.onChanged
	m.mu.Unlock()

	if cb != nil {
		cb()
	}
	return err
}

// Target returns the current target filter
func (m *Manager) Target() filter.Target {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config.Target
}

// SetTarget validates and stores a new target filter
func (m *Manager) SetTarget(t filter.Target) error {
	mode, err := filter.ParseMode(string(t.Mode))
	if err != nil {
		return err
	}
	t.Mode = mode
	t.Value = strings.TrimSpace(t.Value)
	return m.Update(func(c *Config) { c.Target = t })
}

// Reset restores every setting to its default and saves
func (m *Manager) Reset() error {
	m.mu.Lock()
	m.config = DefaultConfig()
	err := m.saveLocked()
	cb := m.onChanged
	m.mu.Unlock()

	if cb != nil {
		cb()
	}
	return err
}

// RegisterChangeCallback registers a function to be called when config changes
func (m *Manager) RegisterChangeCallback(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChanged = fn
}
