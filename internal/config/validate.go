package config

import (
	"errors"
	"fmt"
	"strings"
)

var knownStrategies = map[string]struct{}{
	"candidates": {},
	"window":     {},
	"manual":     {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateRange(); err != nil {
		return err
	}
	if err := c.validateHost(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "", "console", "json":
		return nil
	default:
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
}

func (c *Config) validateRange() error {
	strategy := strings.ToLower(strings.TrimSpace(c.Range.Strategy))
	if strategy == "" {
		return errors.New("range.strategy must be set")
	}
	if _, ok := knownStrategies[strategy]; !ok {
		return fmt.Errorf("range.strategy must be candidates, window, or manual, got %q", c.Range.Strategy)
	}
	if c.Range.PrePad < 0 || c.Range.PostPad < 0 {
		return errors.New("range.pre_pad and range.post_pad must not be negative")
	}
	return nil
}

func (c *Config) validateHost() error {
	if c.Host.TimeoutSeconds < 0 {
		return errors.New("host.timeout_seconds must not be negative")
	}
	return nil
}
