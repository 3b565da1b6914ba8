package config

import (
	"fmt"
	"log/slog"

	"github.com/hubastard/webgrove/engine/assets"
	"github.com/hubastard/webgrove/engine/native/loopback"
)

// LoopbackOptions returns the in-process engine settings, loading the
// background image when one is configured.
func (c *Config) LoopbackOptions(log *slog.Logger) (loopback.Options, error) {
	format, err := parseFormat(c.Browser.Format)
	if err != nil {
		return loopback.Options{}, &ValidationError{Path: "browser.format", Err: err}
	}
	opts := loopback.Options{
		CreateLatency:   c.Browser.CreateLatency,
		ResizeLatency:   c.Browser.ResizeLatency,
		DropCreates:     c.Browser.DropCreates,
		Homepage:        c.Browser.Homepage,
		Format:          format,
		RefreshInterval: c.Browser.RefreshInterval,
		Logger:          log,
	}
	if c.Browser.Background != "" {
		img, err := assets.LoadImage(c.Browser.Background)
		if err != nil {
			return loopback.Options{}, fmt.Errorf("config: browser.background: %w", err)
		}
		opts.Background = img
	}
	return opts, nil
}
