package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. It runs before any
// phase starts so a bad value can never corrupt a half-finished run.
func (c *Config) Validate() error {
	if err := c.validatePlex(); err != nil {
		return err
	}
	if err := c.validateInference(); err != nil {
		return err
	}
	if err := c.validatePolicies(); err != nil {
		return err
	}
	if err := c.validatePacing(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePlex() error {
	if c.Plex.URL == "" {
		return errors.New("plex.url must be set")
	}
	if c.Plex.Token == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/plexrate/config.toml"
		}
		return fmt.Errorf("plex.token is required; edit %s (create with 'plexrate config init')", defaultPath)
	}
	if c.Plex.Library == "" {
		return errors.New("plex.library must be set")
	}
	return nil
}

func (c *Config) validateInference() error {
	if c.Inference.Confidence <= 0 {
		return errors.New("inference.confidence must be positive")
	}
	if c.Inference.CriticWeight < 0 {
		return errors.New("inference.critic_weight must not be negative")
	}
	if c.Inference.GlobalWeight <= 0 {
		return errors.New("inference.global_weight must be positive")
	}
	if c.Inference.CriticBias < 0 {
		return errors.New("inference.critic_bias must not be negative")
	}
	if c.Inference.AlbumGravity < 0 || c.Inference.AlbumGravity > 1 {
		return errors.New("inference.album_gravity must be between 0 and 1")
	}
	if c.Inference.TrackGravity < 0 || c.Inference.TrackGravity > 1 {
		return errors.New("inference.track_gravity must be between 0 and 1")
	}
	return nil
}

func (c *Config) validatePolicies() error {
	if c.Noise.MinDurationSeconds < 0 {
		return errors.New("noise.min_duration_seconds must not be negative")
	}
	if c.Twins.DurationToleranceSeconds < 0 {
		return errors.New("twins.duration_tolerance_seconds must not be negative")
	}
	return nil
}

func (c *Config) validatePacing() error {
	if c.Pacing.CooldownBatch < 1 {
		return errors.New("pacing.cooldown_batch must be at least 1")
	}
	if c.Pacing.CooldownSeconds < 0 {
		return errors.New("pacing.cooldown_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
