package config

import (
	"errors"
	"fmt"
	"os"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCanvas(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCanvas() error {
	if c.Canvas.Width <= 0 {
		return errors.New("canvas.width must be positive")
	}
	if c.Canvas.Height <= 0 {
		return errors.New("canvas.height must be positive")
	}
	if c.Canvas.WebcamPercent < 0 || c.Canvas.WebcamPercent > 99 {
		return fmt.Errorf("canvas.webcam_percent must be between 0 and 99, got %d", c.Canvas.WebcamPercent)
	}
	if c.Canvas.Backdrop != "" {
		info, err := os.Stat(c.Canvas.Backdrop)
		if err != nil {
			return fmt.Errorf("canvas.backdrop: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("canvas.backdrop: %s is a directory", c.Canvas.Backdrop)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
}
