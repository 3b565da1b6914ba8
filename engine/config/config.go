// Package config loads the sandbox configuration from YAML and converts it
// into the options the engine packages take.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hubastard/webgrove/engine/browser"
	"github.com/hubastard/webgrove/engine/core"
)

type Config struct {
	Host    HostConfig    `yaml:"host"`
	Window  WindowConfig  `yaml:"window"`
	Browser BrowserConfig `yaml:"browser"`
	Log     LogConfig     `yaml:"log"`
}

// HostConfig describes the desktop window the scene is drawn into.
type HostConfig struct {
	Title      string     `yaml:"title"`
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	VSync      bool       `yaml:"vsync"`
	ClearColor [4]float32 `yaml:"clear_color"`
}

// WindowConfig holds the defaults for every browser window the sandbox opens.
type WindowConfig struct {
	RequestWidth  int     `yaml:"request_width"`
	RequestHeight int     `yaml:"request_height"`
	DisplayWidth  float32 `yaml:"display_width"`
	FlipX         bool    `yaml:"flip_x"`
	FlipY         bool    `yaml:"flip_y"`
	Collider      string  `yaml:"collider"`
}

type BrowserConfig struct {
	// CreateTimeout of zero waits forever for the native engine.
	CreateTimeout time.Duration `yaml:"create_timeout"`
	Homepage      string        `yaml:"homepage"`
	// Format is the pixel format the loopback engine reports.
	Format          string        `yaml:"format"`
	CreateLatency   time.Duration `yaml:"create_latency"`
	ResizeLatency   time.Duration `yaml:"resize_latency"`
	DropCreates     int           `yaml:"drop_creates"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	// Background is an image file drawn behind every page.
	Background string `yaml:"background"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		Host: HostConfig{
			Title:      "webgrove",
			Width:      1280,
			Height:     720,
			VSync:      true,
			ClearColor: [4]float32{0.08, 0.08, 0.1, 1},
		},
		Window: WindowConfig{
			RequestWidth:  browser.DefaultRequestWidth,
			RequestHeight: browser.DefaultRequestHeight,
			DisplayWidth:  browser.DefaultDisplayWidth,
			Collider:      "box",
		},
		Browser: BrowserConfig{
			Homepage:        "https://servo.org/",
			Format:          "rgba32",
			CreateLatency:   50 * time.Millisecond,
			ResizeLatency:   20 * time.Millisecond,
			RefreshInterval: time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFromPath reads the YAML file at path over the defaults. A missing file
// yields the defaults. Unknown keys are rejected.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := decodeStrictYAML(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return nil
}

type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (c *Config) Validate() error {
	if c.Host.Width <= 0 || c.Host.Height <= 0 {
		return &ValidationError{Path: "host", Err: fmt.Errorf("width and height must be > 0")}
	}
	for i, v := range c.Host.ClearColor {
		if v < 0 || v > 1 {
			return &ValidationError{Path: fmt.Sprintf("host.clear_color[%d]", i), Err: fmt.Errorf("must be within [0, 1]")}
		}
	}
	if c.Window.RequestWidth <= 0 || c.Window.RequestHeight <= 0 {
		return &ValidationError{Path: "window", Err: fmt.Errorf("request_width and request_height must be > 0")}
	}
	if c.Window.DisplayWidth <= 0 {
		return &ValidationError{Path: "window.display_width", Err: fmt.Errorf("display_width must be > 0")}
	}
	if _, err := parseCollider(c.Window.Collider); err != nil {
		return &ValidationError{Path: "window.collider", Err: err}
	}
	if c.Browser.CreateTimeout < 0 {
		return &ValidationError{Path: "browser.create_timeout", Err: fmt.Errorf("create_timeout must be >= 0")}
	}
	if c.Browser.CreateLatency < 0 || c.Browser.ResizeLatency < 0 {
		return &ValidationError{Path: "browser", Err: fmt.Errorf("latencies must be >= 0")}
	}
	if c.Browser.DropCreates < 0 {
		return &ValidationError{Path: "browser.drop_creates", Err: fmt.Errorf("drop_creates must be >= 0")}
	}
	if c.Browser.RefreshInterval < 0 {
		return &ValidationError{Path: "browser.refresh_interval", Err: fmt.Errorf("refresh_interval must be >= 0")}
	}
	if strings.TrimSpace(c.Browser.Homepage) == "" {
		return &ValidationError{Path: "browser.homepage", Err: fmt.Errorf("homepage is required")}
	}
	if _, err := parseFormat(c.Browser.Format); err != nil {
		return &ValidationError{Path: "browser.format", Err: err}
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return &ValidationError{Path: "log.level", Err: err}
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return &ValidationError{Path: "log.format", Err: fmt.Errorf("format must be one of: text, json")}
	}
	return nil
}

func parseCollider(s string) (browser.ColliderKind, error) {
	switch s {
	case "none", "":
		return browser.ColliderNone, nil
	case "box":
		return browser.ColliderBox, nil
	case "mesh":
		return browser.ColliderMesh, nil
	}
	return browser.ColliderNone, fmt.Errorf("collider must be one of: none, box, mesh")
}

func parseFormat(s string) (browser.PixelFormat, error) {
	switch strings.ToLower(s) {
	case "rgba32":
		return browser.PixelFormatRGBA32, nil
	case "bgra32":
		return browser.PixelFormatBGRA32, nil
	}
	return browser.PixelFormatInvalid, fmt.Errorf("format must be one of: rgba32, bgra32")
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("level must be one of: debug, info, warning, error")
}

// EngineConfig returns the host window settings.
func (c *Config) EngineConfig() core.Config {
	return core.Config{
		Title:      c.Host.Title,
		Width:      c.Host.Width,
		Height:     c.Host.Height,
		VSync:      c.Host.VSync,
		ClearColor: c.Host.ClearColor,
	}
}

func (c *Config) WindowOptions(name string) browser.WindowOptions {
	collider, _ := parseCollider(c.Window.Collider)
	return browser.WindowOptions{
		Name:          name,
		RequestWidth:  c.Window.RequestWidth,
		RequestHeight: c.Window.RequestHeight,
		DisplayWidth:  c.Window.DisplayWidth,
		FlipX:         c.Window.FlipX,
		FlipY:         c.Window.FlipY,
		Collider:      collider,
	}
}

func (c *Config) ManagerOptions(log *slog.Logger) browser.ManagerOptions {
	return browser.ManagerOptions{
		CreateTimeout: c.Browser.CreateTimeout,
		Logger:        log,
	}
}

// NewLogger builds the slog logger described by the log section, writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
